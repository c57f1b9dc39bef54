/*
Package kvs implements the preference store: a typed map[string]string
store with snapshot getters, per-key live streams, and a batched Editor.

# Typed getters over untyped storage

Every value is persisted as text (decimal for numbers, "true"/"false" for
bools); GetInt32/GetInt64/GetFloat32/GetBool parse on read and fall back to
the caller's default on a missing key or a parse failure — never an error.
This is what lets PersistentCell stay generic over map[string]string while
still serving five scalar kinds.

# Cell abstraction

PreferenceStore depends only on the Cell interface, not on
*storage.PersistentCell directly. pkg/memstore implements Cell with an
in-process map guarded by a mutex instead of a file, so InMemoryStore reuses
this entire package — construction is the only difference between a
persisted and a transient preference store.

# Editor

Edit() returns a single-use Editor: PutString/PutInt32/.../Remove/Clear
accumulate into two maps and a clearAll flag, and Commit applies them in one
UpdateData call, so a batch of N mutations produces exactly one file
replacement and one stream emission. A committed or failed Editor rejects
further mutation with an InvalidState error — it is not meant to be reused
or shared across goroutines before Commit.
*/
package kvs
