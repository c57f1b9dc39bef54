package stream

import (
	"context"
	"sync"
)

// Broadcaster is a hot, last-value-cached, multi-subscriber stream of
// committed snapshots. Every new subscriber immediately receives the
// current value (if any) and then every subsequently published value.
//
// Each subscriber has a bounded, coalescing buffer of depth 1: if the
// subscriber is slower than the publisher, intermediate values are dropped
// and only the most recent value is ever delivered. This mirrors the
// replay-latest/coalesce semantics the store requires of its snapshot
// stream (spec §9 "Reactive stream").
type Broadcaster[T any] struct {
	mu       sync.Mutex
	current  T
	hasValue bool
	subs     map[*subscriber[T]]struct{}
}

type subscriber[T any] struct {
	mu sync.Mutex
	ch chan T
}

// New creates an empty broadcaster with no cached value.
func New[T any]() *Broadcaster[T] {
	return &Broadcaster[T]{subs: make(map[*subscriber[T]]struct{})}
}

// Publish commits a new snapshot and delivers it to every live subscriber,
// coalescing with any value a lagging subscriber has not yet consumed.
func (b *Broadcaster[T]) Publish(v T) {
	b.mu.Lock()
	b.current = v
	b.hasValue = true
	subs := make([]*subscriber[T], 0, len(b.subs))
	for s := range b.subs {
		subs = append(subs, s)
	}
	b.mu.Unlock()

	for _, s := range subs {
		s.send(v)
	}
}

// Current returns the most recently published value and whether any value
// has been published yet.
func (b *Broadcaster[T]) Current() (T, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.current, b.hasValue
}

// Subscribe registers a new subscriber and returns a handle to its stream.
// If a value has already been published, it is buffered as the first
// value the subscription will yield.
func (b *Broadcaster[T]) Subscribe() *Subscription[T] {
	b.mu.Lock()
	defer b.mu.Unlock()

	sub := &subscriber[T]{ch: make(chan T, 1)}
	if b.hasValue {
		sub.ch <- b.current
	}
	b.subs[sub] = struct{}{}
	return &Subscription[T]{broadcaster: b, sub: sub}
}

func (s *subscriber[T]) send(v T) {
	s.mu.Lock()
	defer s.mu.Unlock()

	select {
	case s.ch <- v:
		return
	default:
	}

	// Buffer full: drop the stale value and replace it with the latest one.
	select {
	case <-s.ch:
	default:
	}
	select {
	case s.ch <- v:
	default:
	}
}

// Subscription is a live registration against a Broadcaster. Callers must
// call Unsubscribe when done to release the subscriber slot.
type Subscription[T any] struct {
	broadcaster *Broadcaster[T]
	sub         *subscriber[T]
}

// C returns the channel values are delivered on. Reading from C never
// blocks the publisher; a slow consumer only ever sees the latest value.
func (s *Subscription[T]) C() <-chan T {
	return s.sub.ch
}

// Unsubscribe removes this subscription from the broadcaster. Safe to call
// more than once.
func (s *Subscription[T]) Unsubscribe() {
	s.broadcaster.mu.Lock()
	delete(s.broadcaster.subs, s.sub)
	s.broadcaster.mu.Unlock()
}

// Derive maps every value delivered on sub through fn and forwards it on
// the returned channel, applying distinctUntilChanged: a mapped value is
// only forwarded when it differs from the last one forwarded. This is the
// mechanism behind every per-key typed stream (PreferenceStore.GetStringAsStream
// and friends): the underlying map may change without the interpreted value
// changing, and subscribers should not be woken for a no-op.
//
// The returned channel is closed when ctx is cancelled. Unsubscribe does not
// close sub's channel, so unsubscribing alone does not end Derive's
// goroutine. Derive spawns exactly one goroutine per call.
func Derive[S any, T comparable](ctx context.Context, sub *Subscription[S], fn func(S) T) <-chan T {
	out := make(chan T, 1)
	go func() {
		defer close(out)
		var last T
		hasLast := false
		for {
			select {
			case <-ctx.Done():
				return
			case snap, ok := <-sub.C():
				if !ok {
					return
				}
				v := fn(snap)
				if hasLast && v == last {
					continue
				}
				hasLast = true
				last = v
				select {
				case out <- v:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out
}
