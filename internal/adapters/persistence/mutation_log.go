// Package persistence contains adapters that layer domain storage on top of
// lower-level secondary ports.
package persistence

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/example/finq/internal/core/mutation"
	"github.com/example/finq/internal/ports/secondary"
)

// QueueKey is the storage key the mutation log is kept under.
const QueueKey = "offline_mutation_queue"

// logDocument is the stored form of the log. Sequence numbers are never
// reused, so next_seq survives the log becoming empty.
type logDocument struct {
	NextSeq int64            `json:"next_seq"`
	Entries []mutation.Entry `json:"entries"`
}

// MutationLog implements secondary.MutationLog as a single JSON document
// in a KeyValueStore.
type MutationLog struct {
	store  secondary.KeyValueStore
	logger *slog.Logger

	// mu serializes read-modify-write cycles within this process.
	mu sync.Mutex
}

// NewMutationLog creates a mutation log backed by store.
func NewMutationLog(store secondary.KeyValueStore, logger *slog.Logger) *MutationLog {
	if logger == nil {
		logger = slog.Default()
	}
	return &MutationLog{store: store, logger: logger}
}

// Append adds m to the end of the log.
func (l *MutationLog) Append(ctx context.Context, m mutation.Mutation) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var seq int64
	err := l.store.Update(ctx, QueueKey, func(current string, ok bool) (string, bool, error) {
		doc := l.load(current, ok)
		seq = doc.NextSeq
		doc.NextSeq++
		doc.Entries = append(doc.Entries, mutation.Entry{Seq: seq, Mutation: m})
		next, err := encodeLog(doc)
		return next, false, err
	})
	if err != nil {
		return 0, fmt.Errorf("failed to append %s: %w", m.Kind, err)
	}

	l.logger.Debug("mutation queued", "kind", m.Kind, "seq", seq, "owner", m.Owner())
	return seq, nil
}

// ReadAll returns every pending entry in insertion order.
func (l *MutationLog) ReadAll(ctx context.Context) ([]mutation.Entry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	raw, ok, err := l.store.GetItem(ctx, QueueKey)
	if err != nil {
		return nil, fmt.Errorf("failed to read mutation log: %w", err)
	}
	doc := l.load(raw, ok)
	if doc.Entries == nil {
		return []mutation.Entry{}, nil
	}
	return doc.Entries, nil
}

// Clear deletes every entry. The sequence counter is kept.
func (l *MutationLog) Clear(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	err := l.store.Update(ctx, QueueKey, func(current string, ok bool) (string, bool, error) {
		if !ok {
			return "", true, nil
		}
		doc := l.load(current, ok)
		doc.Entries = nil
		next, err := encodeLog(doc)
		return next, false, err
	})
	if err != nil {
		return fmt.Errorf("failed to clear mutation log: %w", err)
	}
	return nil
}

// Settle removes the entries a drain cycle consumed. Entries with
// Seq <= through are dropped unless they appear in retained, in which case
// the retained copy replaces them in place.
func (l *MutationLog) Settle(ctx context.Context, through int64, retained []mutation.Entry) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	keep := make(map[int64]mutation.Entry, len(retained))
	for _, e := range retained {
		keep[e.Seq] = e
	}

	err := l.store.Update(ctx, QueueKey, func(current string, ok bool) (string, bool, error) {
		if !ok {
			return "", true, nil
		}
		doc := l.load(current, ok)
		entries := make([]mutation.Entry, 0, len(doc.Entries))
		for _, e := range doc.Entries {
			if e.Seq > through {
				entries = append(entries, e)
				continue
			}
			if r, ok := keep[e.Seq]; ok {
				entries = append(entries, r)
			}
		}
		doc.Entries = entries
		next, err := encodeLog(doc)
		return next, false, err
	})
	if err != nil {
		return fmt.Errorf("failed to settle mutation log: %w", err)
	}
	return nil
}

// load parses the stored value, treating a missing or unreadable log as empty.
func (l *MutationLog) load(raw string, ok bool) logDocument {
	if !ok {
		return logDocument{NextSeq: 1}
	}
	doc, err := decodeLog(raw)
	if err != nil {
		l.logger.Warn("discarding unreadable mutation log", "key", QueueKey, "error", err)
		return logDocument{NextSeq: 1}
	}
	return doc
}

// decodeLog accepts both the current document and the legacy bare array of
// {type, payload} objects, which is numbered 1..n in stored order.
func decodeLog(raw string) (logDocument, error) {
	data := bytes.TrimSpace([]byte(raw))
	if len(data) == 0 {
		return logDocument{NextSeq: 1}, nil
	}

	var doc logDocument
	if data[0] == '[' {
		var legacy []mutation.Mutation
		if err := json.Unmarshal(data, &legacy); err != nil {
			return logDocument{}, err
		}
		for i, m := range legacy {
			doc.Entries = append(doc.Entries, mutation.Entry{Seq: int64(i + 1), Mutation: m})
		}
		doc.NextSeq = int64(len(legacy) + 1)
		return doc, nil
	}

	if err := json.Unmarshal(data, &doc); err != nil {
		return logDocument{}, err
	}
	for _, e := range doc.Entries {
		if e.Seq >= doc.NextSeq {
			doc.NextSeq = e.Seq + 1
		}
	}
	if doc.NextSeq < 1 {
		doc.NextSeq = 1
	}
	return doc, nil
}

func encodeLog(doc logDocument) (string, error) {
	if doc.Entries == nil {
		doc.Entries = []mutation.Entry{}
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("failed to encode mutation log: %w", err)
	}
	return string(data), nil
}

var _ secondary.MutationLog = (*MutationLog)(nil)
