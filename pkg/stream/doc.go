/*
Package stream provides the broadcast primitive underlying every store's
live read path: a hot, last-value-cached, multi-subscriber stream of
committed snapshots, plus a distinctUntilChanged derivation helper for
per-key typed streams.

# Architecture

	┌───────────────────── BROADCASTER[T] ──────────────────────┐
	│                                                             │
	│   PersistentCell.updateData(fn)                            │
	│         │                                                   │
	│         ▼                                                   │
	│   Broadcaster.Publish(next)───────────┐                    │
	│         │                              │                    │
	│         ▼                              ▼                    │
	│   current = next                  subscriber[T] (×N)        │
	│   hasValue = true                 ch chan T, depth 1        │
	│                                   coalesce-on-full           │
	│                                        │                    │
	│                                        ▼                    │
	│                                  Subscription.C()            │
	└─────────────────────────────────────────────────────────────┘

A Broadcaster caches the last published value so a new Subscribe() call
observes the current state immediately, without waiting for the next
write — this is what gives PersistentCell.Snapshot() its "every new
subscriber immediately receives the current state" contract.

# Coalescing backpressure

Each subscriber's channel has capacity 1. A publish that finds the channel
already full does not block and does not queue: it drains the stale value
and replaces it with the new one. A lagging subscriber therefore never sees
every intermediate state, only the latest one as of whenever it next reads —
this bounds memory use under a fast writer / slow reader without requiring
subscribers to keep up.

# Derived per-key streams

Derive wraps a Subscription[S] with a projection S → T and applies
distinctUntilChanged on T: PreferenceStore.GetStringAsStream("key", def) is
built by deriving a subscription to the PersistentCell's
map[string]string stream with a projection that looks up "key" and falls
back to def. Two consecutive map snapshots that happen to produce the same
interpreted value for that key yield exactly one emission, not two — this is
what the store's property P8 requires.

# Usage

	b := stream.New[map[string]string]()
	b.Publish(map[string]string{"a": "1"})

	sub := b.Subscribe()          // immediately buffers {"a":"1"}
	defer sub.Unsubscribe()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	vals := stream.Derive(ctx, sub, func(m map[string]string) string {
		return m["a"]
	})
	v := <-vals // "1"
*/
package stream
