package memstore

import (
	"context"
	"testing"
)

func TestInMemoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewStore("cache")

	editor := store.Edit()
	if err := editor.PutString("a", "1"); err != nil {
		t.Fatalf("PutString: %v", err)
	}
	if err := editor.Commit(ctx); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	v, err := store.GetString(ctx, "a", "?")
	if err != nil || v != "1" {
		t.Fatalf("GetString = %q, %v; want 1, nil", v, err)
	}
}

func TestInMemoryStoreIsolatedBetweenInstances(t *testing.T) {
	ctx := context.Background()
	a := NewStore("a")
	b := NewStore("b")

	editor := a.Edit()
	_ = editor.PutString("k", "v")
	if err := editor.Commit(ctx); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	if ok, _ := b.Contains(ctx, "k"); ok {
		t.Fatal("expected separate NewStore instances not to share state")
	}
}
