/*
Package storage implements PersistentCell, the file-backed atomic container
that every store variant (preferences, TTL, document) is built on.

A PersistentCell owns exactly one backing file and one in-memory value of
type T. Readers observe a cached snapshot; writers submit a transform that is
applied, encoded, optionally encrypted, and durably committed before the new
value is published.

# Architecture

	┌──────────────────── PERSISTENTCELL[T] ───────────────────┐
	│                                                            │
	│  UpdateData(ctx, transform)                                │
	│        │                                                   │
	│        ▼  (cell mutex held for the whole pipeline)         │
	│  ensureLoadedLocked() ─── on first call ───► loadFromDisk  │
	│        │                                                   │
	│        ▼                                                   │
	│  next := transform(current)                                │
	│        │                                                   │
	│        ▼                                                   │
	│  Codec.Encode(next) ──► Encryptor.Encrypt ──► atomicWrite  │
	│        │                                                   │
	│        ▼                                                   │
	│  current = next; broadcaster.Publish(next)                 │
	└─────────────────────────────────────────────────────────────┘

# Write path

UpdateData acquires the cell's mutex for its entire pipeline, so transforms
from concurrent callers are totally ordered. atomicWrite writes to
"<path>.tmp", fsyncs it, then renames over path — a crash before the rename
leaves the previous file untouched, and no reader ever observes a
half-written file.

# Read path

The first Read, UpdateData, or Snapshot call loads state from disk; every
later call serves the in-memory cache. A missing file, an empty file, an
unreadable file, a decrypt failure, or a decode failure all fall back to
Codec.Default(). A missing or empty file falls back silently; an unreadable
file is logged (via pkg/log); a decrypt or decode failure is logged and
counted (metrics.CellDecodeFallbacksTotal). None of them is returned to the
caller as an error: a corrupt or absent store behaves exactly like an empty
one.

# Cancellation

UpdateData checks ctx before touching disk and returns immediately if it is
already cancelled. Once the write pipeline has started, cancellation is not
allowed to abort a partially-applied commit: the encode/encrypt/rename
sequence always runs to completion, and ctx.Err() is only consulted again
after the rename succeeds, to decide whether to surface it to the caller
alongside the now-durable result.

# Codec

Codec[T] is the (de)serialization contract. NewStringMapCodec and
NewTtlMapCodec produce canonical sorted-key JSON codecs for the preference
and TTL states (encoding/json sorts map keys on Marshal, satisfying the
on-disk schema's key-ordering requirement for free); NewStringCodec is the
identity codec DocumentStore uses over its opaque string payload.
*/
package storage
