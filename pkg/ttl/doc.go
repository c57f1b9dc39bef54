/*
Package ttl is the expiring counterpart to pkg/kvs: a map[string]Entry
cell where each entry carries an optional absolute expiry instant.

# Expiration

Expiration is computed once, at commit time, by Manager.CalculateExpiration:
a per-key duration passed to TtlEditor.PutStringWithTTL overrides the
store's default TTL; with neither, the entry never expires. The stored
Entry keeps both the resolved expiresAt (milliseconds since epoch, for
comparison) and the original duration text (for audit/reconstruction).

# Removal paths

An expired entry is never surfaced by a get. A single-key get (GetString,
Contains, ...) that sees an expired entry returns the caller's default and
issues no write: it removes nothing and is not counted. Removing the entry
from the backing map happens through one of two paths, each counted
separately under kvs_ttl_expirations_total{path=...}:

  - get_all: GetAll computes the full expired set in one pass and, only if
    non-empty, removes all of them in a single UpdateData call.
  - cleanup_job: CleanupJob sweeps on a fixed interval independent of reads,
    so state does not accumulate indefinitely in an idle store.

# Streams

Per-key and whole-map streams treat an expired entry identically to an
absent one; GetAllAsStream filters expired entries out of each emission
without removing them from the cell, leaving removal to GetAll or the
cleanup job.

# Editor

TtlEditor is the same single-use Open -> Committing -> {Committed |
Failed} state machine as kvs.Editor; see that package's doc for the
rationale. The only addition is per-put TTL overrides, resolved to an
absolute instant at Commit, not at Put.
*/
package ttl
