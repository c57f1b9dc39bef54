package ttl

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/cuemby/kvs/pkg/kvserr"
	"github.com/cuemby/kvs/pkg/metrics"
)

type editorState int32

const (
	stateOpen editorState = iota
	stateCommitting
	stateCommitted
	stateFailed
)

type pendingPut struct {
	value    string
	duration *time.Duration // nil means "use the store default TTL"
}

// TtlEditor is the TTL-store counterpart to kvs.Editor: the same single-use
// Open -> Committing -> {Committed | Failed} state machine, but each put may
// carry its own expiration override, resolved to an absolute instant only
// at Commit time via the engine's Manager.
type TtlEditor struct {
	mu        sync.Mutex
	state     editorState
	cell      cell
	store     string
	manager   *Manager
	encrypted bool

	additions map[string]pendingPut
	removals  map[string]struct{}
	clearAll  bool
}

func newTtlEditor(c cell, store string, manager *Manager, encrypted bool) *TtlEditor {
	return &TtlEditor{
		cell:      c,
		store:     store,
		manager:   manager,
		encrypted: encrypted,
		additions: make(map[string]pendingPut),
		removals:  make(map[string]struct{}),
	}
}

func (e *TtlEditor) mutate(apply func()) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != stateOpen {
		metrics.EditorInvalidStateTotal.WithLabelValues(e.store).Inc()
		return kvserr.InvalidState("ttl editor mutation attempted outside the open state")
	}
	apply()
	return nil
}

func (e *TtlEditor) putString(key, value string, duration *time.Duration) error {
	return e.mutate(func() {
		delete(e.removals, key)
		e.additions[key] = pendingPut{value: value, duration: duration}
	})
}

// PutString stages key=value with the store's default TTL.
func (e *TtlEditor) PutString(key, value string) error {
	return e.putString(key, value, nil)
}

// PutStringWithTTL stages key=value, expiring after ttl regardless of any
// store-wide default.
func (e *TtlEditor) PutStringWithTTL(key, value string, ttl time.Duration) error {
	return e.putString(key, value, &ttl)
}

// PutInt32 stages key with value's decimal text representation and the
// store's default TTL.
func (e *TtlEditor) PutInt32(key string, value int32) error {
	return e.PutString(key, strconv.FormatInt(int64(value), 10))
}

// PutInt64 stages key with value's decimal text representation and the
// store's default TTL.
func (e *TtlEditor) PutInt64(key string, value int64) error {
	return e.PutString(key, strconv.FormatInt(value, 10))
}

// PutFloat32 stages key with value's shortest round-trippable text and the
// store's default TTL.
func (e *TtlEditor) PutFloat32(key string, value float32) error {
	return e.PutString(key, strconv.FormatFloat(float64(value), 'g', -1, 32))
}

// PutBool stages key with "true" or "false" and the store's default TTL.
func (e *TtlEditor) PutBool(key string, value bool) error {
	return e.PutString(key, strconv.FormatBool(value))
}

// Remove stages key for deletion, discarding any pending put of key.
func (e *TtlEditor) Remove(key string) error {
	return e.mutate(func() {
		delete(e.additions, key)
		e.removals[key] = struct{}{}
	})
}

// Clear stages a full-state reset: on Commit, every key not re-added by a
// put staged after Clear is dropped.
func (e *TtlEditor) Clear() error {
	return e.mutate(func() {
		e.clearAll = true
		e.additions = make(map[string]pendingPut)
		e.removals = make(map[string]struct{})
	})
}

// Commit transitions Open -> Committing, resolves every staged put's
// absolute expiration via the Manager, and applies clear/removals/additions
// to the underlying cell in a single UpdateData call. Pre-existing entries
// are carried over untouched — their expiresAt is not recomputed.
func (e *TtlEditor) Commit(ctx context.Context) error {
	e.mu.Lock()
	if e.state != stateOpen {
		e.mu.Unlock()
		metrics.EditorInvalidStateTotal.WithLabelValues(e.store).Inc()
		return kvserr.InvalidState("ttl editor already committed, failed, or committing")
	}
	e.state = stateCommitting
	clearAll := e.clearAll
	additions := e.additions
	removals := e.removals
	e.mu.Unlock()

	_, err := e.cell.UpdateData(ctx, func(state map[string]Entry) map[string]Entry {
		var next map[string]Entry
		if clearAll {
			next = make(map[string]Entry, len(additions))
		} else {
			next = make(map[string]Entry, len(state)+len(additions))
			for k, v := range state {
				next[k] = v
			}
		}
		for k := range removals {
			delete(next, k)
		}
		for k, put := range additions {
			expiresAt := e.manager.CalculateExpiration(put.duration)
			var durationText *DurationText
			if put.duration != nil {
				dt := NewDurationText(*put.duration)
				durationText = &dt
			}
			next[k] = Entry{
				Key:       k,
				Value:     put.value,
				Duration:  durationText,
				ExpiresAt: expiresAt,
				Encrypted: e.encrypted,
			}
		}
		return next
	})

	e.mu.Lock()
	defer e.mu.Unlock()
	if err != nil {
		e.state = stateFailed
		return kvserr.Wrap(kvserr.KindWrite, "commit ttl editor", err)
	}
	e.state = stateCommitted
	metrics.EditorCommitsTotal.WithLabelValues(e.store).Inc()
	return nil
}
