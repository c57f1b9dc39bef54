package document

import (
	"context"

	"github.com/cuemby/kvs/pkg/crypto"
	"github.com/cuemby/kvs/pkg/storage"
)

// Store wraps a PersistentCell[string] with the identity codec over UTF-8
// bytes: a single opaque text value replacing a whole preference map. The
// engine never interprets the payload; callers that want typed documents
// serialize externally and pass the result through Read/Write.
type Store struct {
	cell *storage.PersistentCell[string]
}

// NewStore builds a Store backed by a fresh PersistentCell at path.
func NewStore(path, name string, enc crypto.Encryptor) *Store {
	return NewStoreFromCell(storage.NewPersistentCell[string](path, name, storage.NewStringCodec(), enc))
}

// NewStoreFromCell wraps an already-constructed cell, letting callers that
// share a single cell through pkg/registry (e.g. the CLI) avoid
// constructing a second cell over the same path.
func NewStoreFromCell(cell *storage.PersistentCell[string]) *Store {
	return &Store{cell: cell}
}

// Read returns the document's current text, or the empty string if the
// backing file has never been written.
func (s *Store) Read(ctx context.Context) (string, error) {
	return s.cell.Read(ctx)
}

// Write replaces the document's entire text.
func (s *Store) Write(ctx context.Context, text string) error {
	_, err := s.cell.UpdateData(ctx, func(string) string { return text })
	return err
}
