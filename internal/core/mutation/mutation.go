// Package mutation contains the pure business logic for queued write intents.
// This is part of the Functional Core - no I/O, only pure functions.
package mutation

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrUnknownKind is returned when a mutation carries a kind this build cannot replay.
var ErrUnknownKind = errors.New("unknown mutation kind")

// Kind identifies the operation a mutation describes.
// The string values are the tags persisted in the log.
type Kind string

const (
	KindCreateDebt  Kind = "ADD_DEBT"
	KindUpdateDebt  Kind = "UPDATE_DEBT"
	KindDeleteDebt  Kind = "DELETE_DEBT"
	KindCreateAsset Kind = "ADD_ASSET"
	KindUpdateAsset Kind = "UPDATE_ASSET"
	KindDeleteAsset Kind = "DELETE_ASSET"
)

// Entity names a cached collection.
type Entity string

const (
	EntityDebts  Entity = "debts"
	EntityAssets Entity = "assets"
)

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindCreateDebt, KindUpdateDebt, KindDeleteDebt,
		KindCreateAsset, KindUpdateAsset, KindDeleteAsset:
		return true
	}
	return false
}

// Entity returns the collection a kind writes to, or "" for unknown kinds.
func (k Kind) Entity() Entity {
	switch k {
	case KindCreateDebt, KindUpdateDebt, KindDeleteDebt:
		return EntityDebts
	case KindCreateAsset, KindUpdateAsset, KindDeleteAsset:
		return EntityAssets
	}
	return ""
}

// IsCreate reports whether k inserts a new record.
func (k Kind) IsCreate() bool {
	return k == KindCreateDebt || k == KindCreateAsset
}

// Mutation is one queued write intent. It is never modified after it is
// appended, except for the Attempts counter maintained by the replay planner.
type Mutation struct {
	Kind     Kind            `json:"type"`
	Payload  json.RawMessage `json:"payload"`
	OwnerID  string          `json:"owner_id,omitempty"`
	QueuedAt time.Time       `json:"queued_at,omitempty"`
	Attempts int             `json:"attempts,omitempty"`
}

// Entry is a mutation together with the sequence number the log assigned it.
type Entry struct {
	Seq      int64    `json:"seq"`
	Mutation Mutation `json:"mutation"`
}

// idPayload is the subset of every payload shape carrying identity fields.
type idPayload struct {
	ID     string `json:"id"`
	UserID string `json:"user_id"`
}

// Owner returns the identity the mutation was queued for. Entries written
// before the envelope carried an owner fall back to the payload's user_id,
// and legacy updates and deletes carry neither, returning "".
func (m Mutation) Owner() string {
	if m.OwnerID != "" {
		return m.OwnerID
	}
	var p idPayload
	if err := json.Unmarshal(m.Payload, &p); err != nil {
		return ""
	}
	return p.UserID
}

// TargetID returns the record identifier the payload refers to.
func (m Mutation) TargetID() string {
	var p idPayload
	if err := json.Unmarshal(m.Payload, &p); err != nil {
		return ""
	}
	return p.ID
}

// New builds a mutation of the given kind with payload marshaled to JSON.
func New(kind Kind, ownerID string, payload any, at time.Time) (Mutation, error) {
	if !kind.Valid() {
		return Mutation{}, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return Mutation{}, fmt.Errorf("failed to encode %s payload: %w", kind, err)
	}
	return Mutation{
		Kind:     kind,
		Payload:  raw,
		OwnerID:  ownerID,
		QueuedAt: at.UTC(),
	}, nil
}

// DeletePayload is the payload shape of both delete kinds.
type DeletePayload struct {
	ID string `json:"id"`
}

// Decode unmarshals the payload of m into T.
func Decode[T any](m Mutation) (T, error) {
	var v T
	if len(m.Payload) == 0 {
		return v, fmt.Errorf("%s payload is empty", m.Kind)
	}
	if err := json.Unmarshal(m.Payload, &v); err != nil {
		return v, fmt.Errorf("failed to decode %s payload: %w", m.Kind, err)
	}
	return v, nil
}
