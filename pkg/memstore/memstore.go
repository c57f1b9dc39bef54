// Package memstore supplies an in-process, file-free Cell for pkg/kvs: a
// PreferenceStore backed by nothing but a mutex, a map, and the same
// broadcast stream PersistentCell uses, for tests and transient caches
// that want the full Kvs contract without touching disk.
package memstore

import (
	"context"
	"sync"

	"github.com/cuemby/kvs/pkg/kvs"
	"github.com/cuemby/kvs/pkg/stream"
)

type memCell struct {
	mu          sync.Mutex
	state       map[string]string
	broadcaster *stream.Broadcaster[map[string]string]
}

func newMemCell() *memCell {
	c := &memCell{state: make(map[string]string), broadcaster: stream.New[map[string]string]()}
	c.broadcaster.Publish(copyMap(c.state))
	return c
}

func copyMap(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (c *memCell) Read(ctx context.Context) (map[string]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return copyMap(c.state), nil
}

func (c *memCell) Snapshot() *stream.Subscription[map[string]string] {
	return c.broadcaster.Subscribe()
}

func (c *memCell) UpdateData(ctx context.Context, transform func(map[string]string) map[string]string) (map[string]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	next := transform(copyMap(c.state))
	c.state = next
	out := copyMap(next)
	c.broadcaster.Publish(out)
	return out, nil
}

// NewStore builds a PreferenceStore with no backing file: every
// PreferenceStore method (GetString, Edit, streams, ...) works identically
// to the persistent variant, since pkg/kvs depends only on the Cell
// interface, not on any file-backed concrete type.
func NewStore(name string) *kvs.PreferenceStore {
	return kvs.NewPreferenceStore(newMemCell(), name)
}
