// Package replay contains the pure planning logic for draining the mutation log.
// Planners take pre-fetched log snapshots and outcomes and decide what the
// imperative shell should send, keep, or discard.
package replay

import (
	"encoding/json"
	"fmt"

	"github.com/example/finq/internal/core/mutation"
)

// Selection is the part of a log snapshot one drain cycle will replay.
type Selection struct {
	// Cursor is the highest sequence number in the snapshot. Settling through
	// it never touches entries appended after the snapshot was taken.
	Cursor int64
	// Owned are the entries queued for the current identity, in log order.
	Owned []mutation.Entry
	// Foreign counts entries queued for other identities.
	Foreign int
}

// Select picks the entries belonging to ownerID, preserving log order.
// Entries with no recorded owner (legacy updates and deletes carry only an
// id) are replayed as ownerID.
func Select(snapshot []mutation.Entry, ownerID string) Selection {
	var sel Selection
	for _, e := range snapshot {
		if e.Seq > sel.Cursor {
			sel.Cursor = e.Seq
		}
		if owner := e.Mutation.Owner(); owner == "" || owner == ownerID {
			sel.Owned = append(sel.Owned, e)
		} else {
			sel.Foreign++
		}
	}
	return sel
}

// Status is the result of replaying one entry.
type Status int

const (
	StatusApplied Status = iota
	StatusFailed
	StatusUnknownKind
)

// Outcome records how one entry fared during a drain cycle.
type Outcome struct {
	Entry  mutation.Entry
	Status Status
	Err    error
}

// Summary aggregates the outcomes of a drain cycle.
type Summary struct {
	Replayed  int
	Applied   int
	Failed    int
	Unknown   int
	Retained  int
	Discarded int
}

// PlanSettle decides which entries survive the settle step.
// A failed entry is retained, with its attempt count incremented, while it
// has been tried fewer than maxAttempts times. maxAttempts <= 1 retains
// nothing, which drops failures after a single try. Applied and
// unknown-kind entries are never retained.
func PlanSettle(outcomes []Outcome, maxAttempts int) []mutation.Entry {
	var retained []mutation.Entry
	for _, o := range outcomes {
		if o.Status != StatusFailed {
			continue
		}
		e := o.Entry
		e.Mutation.Attempts++
		if e.Mutation.Attempts < maxAttempts {
			retained = append(retained, e)
		}
	}
	return retained
}

// Summarize counts outcomes. foreign is the number of other identities'
// entries the settle step discards alongside this cycle's failures.
func Summarize(outcomes []Outcome, retained []mutation.Entry, foreign int) Summary {
	s := Summary{Replayed: len(outcomes), Retained: len(retained)}
	for _, o := range outcomes {
		switch o.Status {
		case StatusApplied:
			s.Applied++
		case StatusFailed:
			s.Failed++
		case StatusUnknownKind:
			s.Unknown++
		}
	}
	s.Discarded = s.Failed - s.Retained + s.Unknown + foreign
	return s
}

// IDMap records the server identifiers assigned to placeholder records
// created earlier in the same drain cycle.
type IDMap map[string]string

// Record notes that placeholder now exists on the server as serverID.
func (ids IDMap) Record(placeholder, serverID string) {
	if mutation.IsPlaceholderID(placeholder) && serverID != "" {
		ids[placeholder] = serverID
	}
}

// Rewrite returns m with its payload id replaced by the server id when it
// references a placeholder created earlier in the cycle. Other mutations are
// returned unchanged.
func (ids IDMap) Rewrite(m mutation.Mutation) (mutation.Mutation, error) {
	if m.Kind.IsCreate() || len(ids) == 0 {
		return m, nil
	}
	target := m.TargetID()
	serverID, ok := ids[target]
	if !ok {
		return m, nil
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(m.Payload, &fields); err != nil {
		return m, fmt.Errorf("failed to rewrite %s payload: %w", m.Kind, err)
	}
	encoded, err := json.Marshal(serverID)
	if err != nil {
		return m, err
	}
	fields["id"] = encoded
	payload, err := json.Marshal(fields)
	if err != nil {
		return m, fmt.Errorf("failed to rewrite %s payload: %w", m.Kind, err)
	}
	m.Payload = payload
	return m, nil
}
