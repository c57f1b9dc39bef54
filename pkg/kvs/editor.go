package kvs

import (
	"context"
	"strconv"
	"sync"

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

// Editor accumulates a batch of mutations and applies them atomically on
// Commit. It is single-use: Open -> Committing -> Committed is terminal on
// success, Open -> Failed is terminal on a commit error, and any mutation
// or second Commit attempted outside Open fails with an InvalidState error.
type Editor struct {
	mu    sync.Mutex
	state editorState
	cell  Cell
	store string

	additions map[string]string
	removals  map[string]struct{}
	clearAll  bool
}

func newEditor(cell Cell, store string) *Editor {
	return &Editor{
		cell:      cell,
		store:     store,
		additions: make(map[string]string),
		removals:  make(map[string]struct{}),
	}
}

func (e *Editor) mutate(apply func()) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != stateOpen {
		metrics.EditorInvalidStateTotal.WithLabelValues(e.store).Inc()
		return kvserr.InvalidState("editor mutation attempted outside the open state")
	}
	apply()
	return nil
}

// PutString stages key=value, overwriting any pending removal of key.
func (e *Editor) PutString(key, value string) error {
	return e.mutate(func() {
		delete(e.removals, key)
		e.additions[key] = value
	})
}

// PutInt32 stages key with value's decimal text representation.
func (e *Editor) PutInt32(key string, value int32) error {
	return e.PutString(key, strconv.FormatInt(int64(value), 10))
}

// PutInt64 stages key with value's decimal text representation.
func (e *Editor) PutInt64(key string, value int64) error {
	return e.PutString(key, strconv.FormatInt(value, 10))
}

// PutFloat32 stages key with value's shortest round-trippable text
// representation.
func (e *Editor) PutFloat32(key string, value float32) error {
	return e.PutString(key, strconv.FormatFloat(float64(value), 'g', -1, 32))
}

// PutBool stages key with "true" or "false".
func (e *Editor) PutBool(key string, value bool) error {
	return e.PutString(key, strconv.FormatBool(value))
}

// Remove stages key for deletion, discarding any pending put of key.
func (e *Editor) Remove(key string) error {
	return e.mutate(func() {
		delete(e.additions, key)
		e.removals[key] = struct{}{}
	})
}

// Clear stages a full-state reset: on Commit, every key not re-added by a
// put staged after Clear is dropped.
func (e *Editor) Clear() error {
	return e.mutate(func() {
		e.clearAll = true
		e.additions = make(map[string]string)
		e.removals = make(map[string]struct{})
	})
}

// Commit transitions Open -> Committing, snapshots the accumulators, and
// applies them to the underlying cell in a single UpdateData call: clear
// (if staged) or copy the current state, then removals, then additions.
// On success the editor becomes Committed; on failure it becomes Failed
// and the cell's state is left untouched — no partial mutation persists.
// The one exception is a ctx cancelled while the write is in progress: the
// commit is then fully applied, and Commit still returns the cancellation
// as the cause of its KindWrite error.
func (e *Editor) Commit(ctx context.Context) error {
	e.mu.Lock()
	if e.state != stateOpen {
		e.mu.Unlock()
		metrics.EditorInvalidStateTotal.WithLabelValues(e.store).Inc()
		return kvserr.InvalidState("editor already committed, failed, or committing")
	}
	e.state = stateCommitting
	clearAll := e.clearAll
	additions := e.additions
	removals := e.removals
	e.mu.Unlock()

	_, err := e.cell.UpdateData(ctx, func(state map[string]string) map[string]string {
		var next map[string]string
		if clearAll {
			next = make(map[string]string, len(additions))
		} else {
			next = make(map[string]string, len(state)+len(additions))
			for k, v := range state {
				next[k] = v
			}
		}
		for k := range removals {
			delete(next, k)
		}
		for k, v := range additions {
			next[k] = v
		}
		return next
	})

	e.mu.Lock()
	defer e.mu.Unlock()
	if err != nil {
		e.state = stateFailed
		return kvserr.Wrap(kvserr.KindWrite, "commit editor", err)
	}
	e.state = stateCommitted
	metrics.EditorCommitsTotal.WithLabelValues(e.store).Inc()
	return nil
}
