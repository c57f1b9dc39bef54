package ttl

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/cuemby/kvs/pkg/crypto"
	"github.com/cuemby/kvs/pkg/metrics"
	"github.com/cuemby/kvs/pkg/storage"
	"github.com/cuemby/kvs/pkg/stream"
)

// Entry.Encrypted is informational only: the whole store file is already
// encrypted (or not) as one blob by the underlying PersistentCell, the same
// way a preference store is. The field simply records, for introspection
// and the on-disk schema, whether the store the entry lives in was opened
// with encryption enabled.

// cell is the subset of storage.PersistentCell[map[string]Entry]'s API the
// engine depends on, mirroring pkg/kvs.Cell so both stores follow the same
// shape over different value types.
type cell interface {
	Read(ctx context.Context) (map[string]Entry, error)
	Snapshot() *stream.Subscription[map[string]Entry]
	UpdateData(ctx context.Context, transform func(map[string]Entry) map[string]Entry) (map[string]Entry, error)
}

// Engine is the TTL-aware counterpart to kvs.PreferenceStore: every get is
// lazy (an expired entry reads back as the caller's default and is never
// written by the read path), GetAll performs a single batch cleanup, and a
// background CleanupJob may be attached to sweep expired entries on a
// schedule independent of reads.
type Engine struct {
	cell      cell
	store     string
	manager   *Manager
	encrypted bool
}

// NewEngine wraps cell as an Engine. store names the store for metrics and
// log lines; manager computes expirations for puts made through Edit.
// encrypted records, for the Entry.Encrypted field only, whether the
// backing cell was opened with a real (non-passthrough) Encryptor; the
// engine itself never encrypts per-entry, since the whole store file is
// already transformed as one blob by the cell.
func NewEngine(cell cell, store string, manager *Manager, encrypted bool) *Engine {
	return &Engine{cell: cell, store: store, manager: manager, encrypted: encrypted}
}

// NewPersistentEngine is a convenience constructor building the Engine over
// a fresh storage.PersistentCell[map[string]Entry] at path.
func NewPersistentEngine(path, store string, manager *Manager, enc crypto.Encryptor, encrypted bool) *Engine {
	c := storage.NewPersistentCell[map[string]Entry](path, store, storage.NewTtlMapCodec[Entry](), enc)
	return NewEngine(c, store, manager, encrypted)
}

func (e *Engine) liveEntry(ctx context.Context, key string) (Entry, bool, error) {
	m, err := e.cell.Read(ctx)
	if err != nil {
		var zero Entry
		return zero, false, err
	}
	entry, ok := m[key]
	if !ok {
		var zero Entry
		return zero, false, nil
	}
	if e.manager.IsExpired(entry.ExpiresAt) {
		var zero Entry
		return zero, false, nil
	}
	return entry, true, nil
}

func (e *Engine) liveValue(ctx context.Context, key string) (string, bool, error) {
	entry, ok, err := e.liveEntry(ctx, key)
	if err != nil || !ok {
		return "", ok, err
	}
	return entry.Value, true, nil
}

// GetString returns key's live text, or def if key is absent or expired.
// A lazy read never writes: the expired entry is removed only by a later
// GetAll or cleanup cycle.
func (e *Engine) GetString(ctx context.Context, key, def string) (string, error) {
	v, ok, err := e.liveValue(ctx, key)
	if err != nil {
		return def, err
	}
	if !ok {
		return def, nil
	}
	return v, nil
}

// GetInt32 parses key's live text as a base-10 int32, returning def if the
// key is absent, expired, or the text does not parse.
func (e *Engine) GetInt32(ctx context.Context, key string, def int32) (int32, error) {
	v, ok, err := e.liveValue(ctx, key)
	if err != nil {
		return def, err
	}
	if !ok {
		return def, nil
	}
	n, perr := strconv.ParseInt(v, 10, 32)
	if perr != nil {
		return def, nil
	}
	return int32(n), nil
}

// GetInt64 parses key's live text as a base-10 int64, returning def if the
// key is absent, expired, or the text does not parse.
func (e *Engine) GetInt64(ctx context.Context, key string, def int64) (int64, error) {
	v, ok, err := e.liveValue(ctx, key)
	if err != nil {
		return def, err
	}
	if !ok {
		return def, nil
	}
	n, perr := strconv.ParseInt(v, 10, 64)
	if perr != nil {
		return def, nil
	}
	return n, nil
}

// GetFloat32 parses key's live text as a float32, returning def if the key
// is absent, expired, or the text does not parse.
func (e *Engine) GetFloat32(ctx context.Context, key string, def float32) (float32, error) {
	v, ok, err := e.liveValue(ctx, key)
	if err != nil {
		return def, err
	}
	if !ok {
		return def, nil
	}
	n, perr := strconv.ParseFloat(v, 32)
	if perr != nil {
		return def, nil
	}
	return float32(n), nil
}

// GetBool parses key's live text as "true"/"false", returning def if the
// key is absent, expired, or the text is neither.
func (e *Engine) GetBool(ctx context.Context, key string, def bool) (bool, error) {
	v, ok, err := e.liveValue(ctx, key)
	if err != nil {
		return def, err
	}
	if !ok {
		return def, nil
	}
	switch {
	case strings.EqualFold(v, "true"):
		return true, nil
	case strings.EqualFold(v, "false"):
		return false, nil
	default:
		return def, nil
	}
}

// Contains reports whether key is present and not expired.
func (e *Engine) Contains(ctx context.Context, key string) (bool, error) {
	_, ok, err := e.liveEntry(ctx, key)
	return ok, err
}

// GetAll returns every live key/value pair, removing expired entries from
// the backing state in the same pass if any were found. A single
// UpdateData call is issued only when expirations are detected, so a store
// with nothing expired pays no write cost on a read.
func (e *Engine) GetAll(ctx context.Context) (map[string]string, error) {
	m, err := e.cell.Read(ctx)
	if err != nil {
		return nil, err
	}

	live := make(map[string]string, len(m))
	expiredKeys := make([]string, 0)
	for k, entry := range m {
		if e.manager.IsExpired(entry.ExpiresAt) {
			expiredKeys = append(expiredKeys, k)
			continue
		}
		live[k] = entry.Value
	}

	if len(expiredKeys) == 0 {
		return live, nil
	}

	_, err = e.cell.UpdateData(ctx, func(state map[string]Entry) map[string]Entry {
		next := make(map[string]Entry, len(state))
		for k, v := range state {
			next[k] = v
		}
		for _, k := range expiredKeys {
			delete(next, k)
		}
		return next
	})
	if err != nil {
		return live, err
	}
	metrics.TTLExpirationsTotal.WithLabelValues(e.store, "get_all").Add(float64(len(expiredKeys)))
	return live, nil
}

// Edit returns a new single-use TtlEditor for batching mutations.
func (e *Engine) Edit() *TtlEditor {
	return newTtlEditor(e.cell, e.store, e.manager, e.encrypted)
}

// GetStringAsStream mirrors GetString as a live stream, emitting the
// projected value on every state change that alters it, with expired
// entries treated identically to absent ones.
func (e *Engine) GetStringAsStream(ctx context.Context, key, def string) <-chan string {
	sub := e.cell.Snapshot()
	out := stream.Derive(ctx, sub, func(m map[string]Entry) string {
		entry, ok := m[key]
		if !ok || e.manager.IsExpired(entry.ExpiresAt) {
			return def
		}
		return entry.Value
	})
	go func() { <-ctx.Done(); sub.Unsubscribe() }()
	return out
}

// GetInt32AsStream mirrors GetInt32 as a live, deduplicated stream.
func (e *Engine) GetInt32AsStream(ctx context.Context, key string, def int32) <-chan int32 {
	sub := e.cell.Snapshot()
	out := stream.Derive(ctx, sub, func(m map[string]Entry) int32 {
		entry, ok := m[key]
		if !ok || e.manager.IsExpired(entry.ExpiresAt) {
			return def
		}
		n, err := strconv.ParseInt(entry.Value, 10, 32)
		if err != nil {
			return def
		}
		return int32(n)
	})
	go func() { <-ctx.Done(); sub.Unsubscribe() }()
	return out
}

// GetInt64AsStream mirrors GetInt64 as a live, deduplicated stream.
func (e *Engine) GetInt64AsStream(ctx context.Context, key string, def int64) <-chan int64 {
	sub := e.cell.Snapshot()
	out := stream.Derive(ctx, sub, func(m map[string]Entry) int64 {
		entry, ok := m[key]
		if !ok || e.manager.IsExpired(entry.ExpiresAt) {
			return def
		}
		n, err := strconv.ParseInt(entry.Value, 10, 64)
		if err != nil {
			return def
		}
		return n
	})
	go func() { <-ctx.Done(); sub.Unsubscribe() }()
	return out
}

// GetFloat32AsStream mirrors GetFloat32 as a live, deduplicated stream.
func (e *Engine) GetFloat32AsStream(ctx context.Context, key string, def float32) <-chan float32 {
	sub := e.cell.Snapshot()
	out := stream.Derive(ctx, sub, func(m map[string]Entry) float32 {
		entry, ok := m[key]
		if !ok || e.manager.IsExpired(entry.ExpiresAt) {
			return def
		}
		n, err := strconv.ParseFloat(entry.Value, 32)
		if err != nil {
			return def
		}
		return float32(n)
	})
	go func() { <-ctx.Done(); sub.Unsubscribe() }()
	return out
}

// GetBoolAsStream mirrors GetBool as a live, deduplicated stream.
func (e *Engine) GetBoolAsStream(ctx context.Context, key string, def bool) <-chan bool {
	sub := e.cell.Snapshot()
	out := stream.Derive(ctx, sub, func(m map[string]Entry) bool {
		entry, ok := m[key]
		if !ok || e.manager.IsExpired(entry.ExpiresAt) {
			return def
		}
		switch {
		case strings.EqualFold(entry.Value, "true"):
			return true
		case strings.EqualFold(entry.Value, "false"):
			return false
		default:
			return def
		}
	})
	go func() { <-ctx.Done(); sub.Unsubscribe() }()
	return out
}

// GetAllAsStream emits a copy of the live (non-expired) key set on every
// state change that alters its canonical encoding. Expired entries are
// filtered out of each emission but are not removed from the backing
// state; removal is left to GetAll and the cleanup job.
func (e *Engine) GetAllAsStream(ctx context.Context) <-chan map[string]string {
	sub := e.cell.Snapshot()
	out := make(chan map[string]string, 1)
	go func() {
		defer close(out)
		defer sub.Unsubscribe()
		var lastKey string
		hasLast := false
		for {
			select {
			case <-ctx.Done():
				return
			case m, ok := <-sub.C():
				if !ok {
					return
				}
				live := make(map[string]string, len(m))
				for k, entry := range m {
					if e.manager.IsExpired(entry.ExpiresAt) {
						continue
					}
					live[k] = entry.Value
				}
				key := canonicalStringMapKey(live)
				if hasLast && key == lastKey {
					continue
				}
				hasLast = true
				lastKey = key
				select {
				case out <- live:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out
}

func canonicalStringMapKey(m map[string]string) string {
	data, _ := json.Marshal(m)
	return string(data)
}
