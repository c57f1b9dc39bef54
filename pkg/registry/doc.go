/*
Package registry is the process-wide name->cell singleton map: it guarantees
that every caller asking for the store at a given absolute path receives the
same *storage.PersistentCell, never two cells racing over one file.

# Double-checked lookup

	GetOrCreate(path, factory)
	      │
	      ▼
	cells.Load(path) — lock-free fast path
	      │  hit                    miss
	      ▼                          ▼
	  return cell              mu.Lock()
	                                 │
	                           cells.Load(path) again
	                                 │  hit           miss
	                                 ▼                 ▼
	                           return cell        factory() → cells.Store(path, cell)

The second Load under mu exists because two goroutines can both miss the
lock-free Load before either acquires mu; without the re-check, the second
one to reach the lock would call factory again and briefly construct a
second PersistentCell over the same file.

# Type erasure

sync.Map's value type is `any`: a single process may hold a
PersistentCell[map[string]string] for one store name and a
PersistentCell[string] for a document store. GetOrCreate's type parameter is
recovered with a type assertion on lookup; reopening a path with a
different T returns an InvalidState error instead of silently handing back
a cell that doesn't match the caller's expected type.
*/
package registry
