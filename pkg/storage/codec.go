package storage

import (
	"encoding/json"

	"github.com/cuemby/kvs/pkg/kvserr"
)

// Codec serializes and deserializes a cell's in-memory state T to and from
// bytes, and supplies the value a cell adopts when its file is missing,
// empty, or unreadable.
type Codec[T any] interface {
	Encode(v T) ([]byte, error)
	Decode(data []byte) (T, error)
	Default() T
}

// jsonMapCodec encodes map[string]V as canonical JSON: encoding/json sorts
// object keys lexicographically on Marshal, which is what the on-disk
// preference and TTL schemas require (spec §6).
type jsonMapCodec[V any] struct{}

// NewStringMapCodec returns the canonical codec for the preference store's
// map[string]string state.
func NewStringMapCodec() Codec[map[string]string] {
	return jsonMapCodec[string]{}
}

// NewTtlMapCodec returns the canonical codec for the TTL store's
// map[string]TtlEntry state. V is left generic here so pkg/ttl can supply
// its own entry type without this package importing it.
func NewTtlMapCodec[V any]() Codec[map[string]V] {
	return jsonMapCodec[V]{}
}

func (jsonMapCodec[V]) Encode(v map[string]V) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, kvserr.Wrap(kvserr.KindWrite, "encode map state", err)
	}
	return data, nil
}

func (jsonMapCodec[V]) Decode(data []byte) (map[string]V, error) {
	out := make(map[string]V)
	if len(data) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, kvserr.Wrap(kvserr.KindRead, "decode map state", err)
	}
	return out, nil
}

func (jsonMapCodec[V]) Default() map[string]V {
	return make(map[string]V)
}

// stringCodec is the identity codec used by DocumentStore: the payload is
// opaque UTF-8 text, so no decoding happens above the byte/string boundary.
type stringCodec struct{}

// NewStringCodec returns the identity codec over a single string value.
func NewStringCodec() Codec[string] {
	return stringCodec{}
}

func (stringCodec) Encode(v string) ([]byte, error) { return []byte(v), nil }
func (stringCodec) Decode(data []byte) (string, error) { return string(data), nil }
func (stringCodec) Default() string { return "" }
