package storage

import (
	"context"
	"os"
	"sync"

	"github.com/cuemby/kvs/pkg/crypto"
	"github.com/cuemby/kvs/pkg/kvserr"
	"github.com/cuemby/kvs/pkg/log"
	"github.com/cuemby/kvs/pkg/metrics"
	"github.com/cuemby/kvs/pkg/stream"
)

// PersistentCell owns the on-disk representation of a single value of type
// T and publishes its in-memory snapshot through a stream. One mutex per
// cell serializes both file I/O and readers that have not yet loaded state,
// matching the registry's one-cell-per-path guarantee.
type PersistentCell[T any] struct {
	path  string
	store string
	codec Codec[T]
	enc   crypto.Encryptor

	mu      sync.Mutex
	loaded  bool
	current T

	broadcaster *stream.Broadcaster[T]
}

// NewPersistentCell builds a cell over path, using codec for (de)serializing
// T and enc for the symmetric transform applied to the encoded bytes. State
// is not read from disk until the first Read, UpdateData, or Snapshot call.
func NewPersistentCell[T any](path, store string, codec Codec[T], enc crypto.Encryptor) *PersistentCell[T] {
	return &PersistentCell[T]{
		path:        path,
		store:       store,
		codec:       codec,
		enc:         enc,
		broadcaster: stream.New[T](),
	}
}

// Path returns the cell's absolute backing file path.
func (c *PersistentCell[T]) Path() string { return c.path }

// Read returns the cell's current value, loading it from disk on first call.
func (c *PersistentCell[T]) Read(ctx context.Context) (T, error) {
	if err := ctx.Err(); err != nil {
		var zero T
		return zero, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ensureLoadedLocked()
	metrics.CellReadsTotal.WithLabelValues(c.store).Inc()
	return c.current, nil
}

// Snapshot returns a live subscription to the cell's committed states. The
// subscription immediately yields the current value (loading it from disk
// if this is the first access) and then every subsequently committed value.
func (c *PersistentCell[T]) Snapshot() *stream.Subscription[T] {
	c.mu.Lock()
	c.ensureLoadedLocked()
	c.mu.Unlock()
	return c.broadcaster.Subscribe()
}

// UpdateData applies transform to the cell's current state and durably
// commits the result: encode, encrypt, atomic tmp-write-then-rename, then
// publish the new value to every subscriber. Concurrent callers are
// serialized by the cell's mutex.
//
// If ctx is already cancelled, UpdateData returns without touching disk.
// If ctx is cancelled after the commit has begun, the write still completes
// (the file replacement is all-or-nothing) and the cancellation is surfaced
// only after the rename — the caller's mutation is never half-applied.
func (c *PersistentCell[T]) UpdateData(ctx context.Context, transform func(T) T) (T, error) {
	if err := ctx.Err(); err != nil {
		var zero T
		return zero, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.ensureLoadedLocked()

	next := transform(c.current)

	timer := metrics.NewTimer()
	encoded, err := c.codec.Encode(next)
	if err != nil {
		metrics.CellWriteErrorsTotal.WithLabelValues(c.store).Inc()
		var zero T
		return zero, kvserr.Wrap(kvserr.KindWrite, "encode state", err)
	}

	ciphertext, err := c.enc.Encrypt(encoded)
	if err != nil {
		metrics.CellWriteErrorsTotal.WithLabelValues(c.store).Inc()
		var zero T
		return zero, kvserr.Wrap(kvserr.KindEncrypt, "encrypt state", err)
	}

	if err := atomicWrite(c.path, ciphertext); err != nil {
		metrics.CellWriteErrorsTotal.WithLabelValues(c.store).Inc()
		var zero T
		return zero, kvserr.Wrap(kvserr.KindWrite, "replace store file", err)
	}

	c.current = next
	c.broadcaster.Publish(next)

	timer.ObserveDurationVec(metrics.CommitDuration, c.store)
	metrics.CellWritesTotal.WithLabelValues(c.store).Inc()

	log.WithStore(c.store).Debug().Str("path", c.path).Msg("commit applied")

	if err := ctx.Err(); err != nil {
		return next, err
	}
	return next, nil
}

// ensureLoadedLocked must be called with c.mu held. It is a no-op once
// state has been loaded once; first call reads the backing file (or adopts
// the codec default if absent/unreadable) and seeds the broadcaster so
// Current()/Subscribe() observe the initial state immediately.
func (c *PersistentCell[T]) ensureLoadedLocked() {
	if c.loaded {
		return
	}
	v := c.loadFromDisk()
	c.current = v
	c.loaded = true
	c.broadcaster.Publish(v)
}

func (c *PersistentCell[T]) loadFromDisk() T {
	data, err := os.ReadFile(c.path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.WithStore(c.store).Warn().Err(err).Str("path", c.path).
				Msg("failed to read store file, falling back to default")
		}
		return c.codec.Default()
	}
	if len(data) == 0 {
		return c.codec.Default()
	}

	plain, err := c.enc.Decrypt(data)
	if err != nil {
		log.WithStore(c.store).Warn().Err(err).Str("path", c.path).
			Msg("decrypt failed, falling back to default")
		metrics.CellDecodeFallbacksTotal.WithLabelValues(c.store).Inc()
		return c.codec.Default()
	}

	v, err := c.codec.Decode(plain)
	if err != nil {
		log.WithStore(c.store).Warn().Err(err).Str("path", c.path).
			Msg("decode failed, falling back to default")
		metrics.CellDecodeFallbacksTotal.WithLabelValues(c.store).Inc()
		return c.codec.Default()
	}
	return v
}
