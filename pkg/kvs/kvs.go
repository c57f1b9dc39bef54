package kvs

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/cuemby/kvs/pkg/stream"
)

// Cell is the subset of storage.PersistentCell[map[string]string]'s API
// that PreferenceStore depends on. It is satisfied both by
// *storage.PersistentCell[map[string]string] (the persistent variant) and
// by pkg/memstore's in-process cell, so the two stores can share this
// entire package instead of duplicating the Kvs contract.
type Cell interface {
	Read(ctx context.Context) (map[string]string, error)
	Snapshot() *stream.Subscription[map[string]string]
	UpdateData(ctx context.Context, transform func(map[string]string) map[string]string) (map[string]string, error)
}

// PreferenceStore is a typed map[string]string store: the Kvs contract from
// the spec (snapshot getters, streams, Contains, Edit).
type PreferenceStore struct {
	cell  Cell
	store string
}

// NewPreferenceStore wraps cell as a PreferenceStore. store names the
// store for metrics and log lines.
func NewPreferenceStore(cell Cell, store string) *PreferenceStore {
	return &PreferenceStore{cell: cell, store: store}
}

func (s *PreferenceStore) getRaw(ctx context.Context, key string) (string, bool, error) {
	m, err := s.cell.Read(ctx)
	if err != nil {
		return "", false, err
	}
	v, ok := m[key]
	return v, ok, nil
}

// GetString returns the stored text for key, or def if the key is absent.
func (s *PreferenceStore) GetString(ctx context.Context, key, def string) (string, error) {
	v, ok, err := s.getRaw(ctx, key)
	if err != nil {
		return def, err
	}
	if !ok {
		return def, nil
	}
	return v, nil
}

// GetInt32 parses the stored text as a base-10 int32, returning def if the
// key is absent or the text does not parse.
func (s *PreferenceStore) GetInt32(ctx context.Context, key string, def int32) (int32, error) {
	v, ok, err := s.getRaw(ctx, key)
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

// GetInt64 parses the stored text as a base-10 int64, returning def if the
// key is absent or the text does not parse.
func (s *PreferenceStore) GetInt64(ctx context.Context, key string, def int64) (int64, error) {
	v, ok, err := s.getRaw(ctx, key)
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

// GetFloat32 parses the stored text as a float32, returning def if the key
// is absent or the text does not parse.
func (s *PreferenceStore) GetFloat32(ctx context.Context, key string, def float32) (float32, error) {
	v, ok, err := s.getRaw(ctx, key)
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

// GetBool parses the stored text as "true"/"false" (case-insensitive,
// strict), returning def if the key is absent or the text is neither.
func (s *PreferenceStore) GetBool(ctx context.Context, key string, def bool) (bool, error) {
	v, ok, err := s.getRaw(ctx, key)
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

// GetAll returns a snapshot copy of the current state.
func (s *PreferenceStore) GetAll(ctx context.Context) (map[string]string, error) {
	m, err := s.cell.Read(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out, nil
}

// Contains reports whether key is present in the current state.
func (s *PreferenceStore) Contains(ctx context.Context, key string) (bool, error) {
	_, ok, err := s.getRaw(ctx, key)
	return ok, err
}

// Edit returns a new single-use Editor for batching mutations.
func (s *PreferenceStore) Edit() *Editor {
	return newEditor(s.cell, s.store)
}

// GetStringAsStream mirrors GetString as a live stream: it emits the
// interpreted value of key on every committed state change, applying
// distinctUntilChanged so an unrelated key's change never produces a
// spurious emission. The returned channel is closed when ctx is done.
func (s *PreferenceStore) GetStringAsStream(ctx context.Context, key, def string) <-chan string {
	sub := s.cell.Snapshot()
	out := stream.Derive(ctx, sub, func(m map[string]string) string {
		if v, ok := m[key]; ok {
			return v
		}
		return def
	})
	go unsubscribeOnDone(ctx, sub)
	return out
}

// GetInt32AsStream mirrors GetInt32 as a live, deduplicated stream.
func (s *PreferenceStore) GetInt32AsStream(ctx context.Context, key string, def int32) <-chan int32 {
	sub := s.cell.Snapshot()
	out := stream.Derive(ctx, sub, func(m map[string]string) int32 {
		v, ok := m[key]
		if !ok {
			return def
		}
		n, err := strconv.ParseInt(v, 10, 32)
		if err != nil {
			return def
		}
		return int32(n)
	})
	go unsubscribeOnDone(ctx, sub)
	return out
}

// GetInt64AsStream mirrors GetInt64 as a live, deduplicated stream.
func (s *PreferenceStore) GetInt64AsStream(ctx context.Context, key string, def int64) <-chan int64 {
	sub := s.cell.Snapshot()
	out := stream.Derive(ctx, sub, func(m map[string]string) int64 {
		v, ok := m[key]
		if !ok {
			return def
		}
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return def
		}
		return n
	})
	go unsubscribeOnDone(ctx, sub)
	return out
}

// GetFloat32AsStream mirrors GetFloat32 as a live, deduplicated stream.
func (s *PreferenceStore) GetFloat32AsStream(ctx context.Context, key string, def float32) <-chan float32 {
	sub := s.cell.Snapshot()
	out := stream.Derive(ctx, sub, func(m map[string]string) float32 {
		v, ok := m[key]
		if !ok {
			return def
		}
		n, err := strconv.ParseFloat(v, 32)
		if err != nil {
			return def
		}
		return float32(n)
	})
	go unsubscribeOnDone(ctx, sub)
	return out
}

// GetBoolAsStream mirrors GetBool as a live, deduplicated stream.
func (s *PreferenceStore) GetBoolAsStream(ctx context.Context, key string, def bool) <-chan bool {
	sub := s.cell.Snapshot()
	out := stream.Derive(ctx, sub, func(m map[string]string) bool {
		v, ok := m[key]
		if !ok {
			return def
		}
		switch {
		case strings.EqualFold(v, "true"):
			return true
		case strings.EqualFold(v, "false"):
			return false
		default:
			return def
		}
	})
	go unsubscribeOnDone(ctx, sub)
	return out
}

// GetAllAsStream emits a copy of the full map on every state change that
// alters its canonical encoding, applying the same distinctUntilChanged
// discipline as the per-key streams (map[string]string is not a comparable
// type, so dedup compares each snapshot's canonical JSON encoding instead).
func (s *PreferenceStore) GetAllAsStream(ctx context.Context) <-chan map[string]string {
	sub := s.cell.Snapshot()
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
				snapshot := make(map[string]string, len(m))
				for k, v := range m {
					snapshot[k] = v
				}
				key := canonicalMapKey(snapshot)
				if hasLast && key == lastKey {
					continue
				}
				hasLast = true
				lastKey = key
				select {
				case out <- snapshot:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out
}

func canonicalMapKey(m map[string]string) string {
	data, _ := json.Marshal(m) // encoding/json sorts map keys; error impossible for map[string]string
	return string(data)
}

func unsubscribeOnDone(ctx context.Context, sub *stream.Subscription[map[string]string]) {
	<-ctx.Done()
	sub.Unsubscribe()
}
