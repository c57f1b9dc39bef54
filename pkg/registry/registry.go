package registry

import (
	"fmt"
	"sync"

	"github.com/cuemby/kvs/pkg/kvserr"
	"github.com/cuemby/kvs/pkg/metrics"
	"github.com/cuemby/kvs/pkg/storage"
)

// cells is the process-wide name->cell map, keyed by absolute file path.
// Reads go through sync.Map's lock-free fast path; only a miss takes mu.
var (
	mu    sync.Mutex
	cells sync.Map // map[string]any, value is *storage.PersistentCell[T] for some T
)

// GetOrCreate returns the single PersistentCell[T] registered for path,
// building it with factory on first request. Every subsequent call for the
// same path — from any caller, for the lifetime of the process — returns
// the same cell, satisfying the store's one-cell-per-path invariant.
//
// factory is only invoked when no cell is yet registered for path. If path
// was already registered with a different T, GetOrCreate returns an
// InvalidState error rather than silently constructing a second cell over
// the same file.
func GetOrCreate[T any](path string, factory func() (*storage.PersistentCell[T], error)) (*storage.PersistentCell[T], error) {
	if v, ok := cells.Load(path); ok {
		return assertCell[T](path, v)
	}

	mu.Lock()
	defer mu.Unlock()

	// Re-check under the lock: another goroutine may have won the race
	// between our optimistic Load and acquiring mu.
	if v, ok := cells.Load(path); ok {
		return assertCell[T](path, v)
	}

	cell, err := factory()
	if err != nil {
		return nil, err
	}
	cells.Store(path, cell)
	metrics.CellsOpenTotal.Inc()
	return cell, nil
}

func assertCell[T any](path string, v any) (*storage.PersistentCell[T], error) {
	cell, ok := v.(*storage.PersistentCell[T])
	if !ok {
		return nil, kvserr.New(kvserr.KindInvalidState,
			fmt.Sprintf("path %q is already registered with a different value type", path))
	}
	return cell, nil
}

// Count returns the number of distinct cells currently registered. Exposed
// for health checks and tests; not part of the store's public contract.
func Count() int {
	n := 0
	cells.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

// reset clears the registry. Test-only: production code never needs to
// forget a cell, since the registry's whole purpose is to outlive callers.
func reset() {
	mu.Lock()
	defer mu.Unlock()
	cells.Range(func(k, _ any) bool {
		cells.Delete(k)
		return true
	})
}
