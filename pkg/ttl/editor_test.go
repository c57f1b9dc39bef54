package ttl

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cuemby/kvs/pkg/kvserr"
)

func TestTtlEditorReuseAfterCommitFails(t *testing.T) {
	ctx := context.Background()
	engine, _ := newTestEngine(&fakeClock{millis: 0})

	editor := engine.Edit()
	if err := editor.PutString("name", "Santiago"); err != nil {
		t.Fatalf("PutString: %v", err)
	}
	if err := editor.Commit(ctx); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	if err := editor.PutString("x", "y"); !kvserr.Is(err, kvserr.KindInvalidState) {
		t.Fatalf("PutString after commit: got %v, want InvalidState", err)
	}
	if err := editor.Commit(ctx); !kvserr.Is(err, kvserr.KindInvalidState) {
		t.Fatalf("second Commit: got %v, want InvalidState", err)
	}
}

func TestTtlClearRemovesAllUnlessReAdded(t *testing.T) {
	ctx := context.Background()
	engine, _ := newTestEngine(&fakeClock{millis: 0})

	seed := engine.Edit()
	_ = seed.PutString("a", "1")
	_ = seed.PutString("b", "2")
	if err := seed.Commit(ctx); err != nil {
		t.Fatalf("seed Commit: %v", err)
	}

	editor := engine.Edit()
	if err := editor.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if err := editor.PutString("c", "3"); err != nil {
		t.Fatalf("PutString: %v", err)
	}
	if err := editor.Commit(ctx); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	all, err := engine.GetAll(ctx)
	if err != nil {
		t.Fatalf("GetAll: %v", err)
	}
	if len(all) != 1 || all["c"] != "3" {
		t.Fatalf("GetAll = %v, want only c=3", all)
	}
}

func TestTtlRemoveThenPutSameKeyKeepsPut(t *testing.T) {
	engine, _ := newTestEngine(&fakeClock{millis: 0})
	editor := engine.Edit()
	if err := editor.Remove("k"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if err := editor.PutString("k", "v"); err != nil {
		t.Fatalf("PutString: %v", err)
	}
	if _, removed := editor.removals["k"]; removed {
		t.Fatal("expected put to clear the pending removal")
	}
	if editor.additions["k"].value != "v" {
		t.Fatalf("additions[k].value = %q, want v", editor.additions["k"].value)
	}
}

func TestTtlCommitFailurePutsEditorInFailedState(t *testing.T) {
	ctx := context.Background()
	manager := NewManagerWithClock(nil, &fakeClock{millis: 0})
	failing := &failingCell{testCell: newTestCell()}
	engine := NewEngine(failing, "test", manager, false)

	editor := engine.Edit()
	_ = editor.PutString("a", "1")
	if err := editor.Commit(ctx); err == nil {
		t.Fatal("expected Commit to fail")
	}
	if err := editor.PutString("b", "2"); !kvserr.Is(err, kvserr.KindInvalidState) {
		t.Fatalf("PutString after failed commit: got %v, want InvalidState", err)
	}
}

func TestPerKeyTTLOverridesStoreDefault(t *testing.T) {
	ctx := context.Background()
	def := 100 * time.Second
	clock := &fakeClock{millis: 0}
	manager := NewManagerWithClock(&def, clock)
	cell := newTestCell()
	engine := NewEngine(cell, "test", manager, false)

	editor := engine.Edit()
	_ = editor.PutStringWithTTL("short", "v", 1*time.Second)
	_ = editor.PutString("uses-default", "v")
	if err := editor.Commit(ctx); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	clock.millis = 2000
	if ok, _ := engine.Contains(ctx, "short"); ok {
		t.Fatal("expected short-TTL entry to have expired")
	}
	if ok, _ := engine.Contains(ctx, "uses-default"); !ok {
		t.Fatal("expected default-TTL entry to still be live at 2s")
	}
}

type failingCell struct {
	*testCell
}

func (f *failingCell) UpdateData(ctx context.Context, transform func(map[string]Entry) map[string]Entry) (map[string]Entry, error) {
	return nil, errors.New("simulated write failure")
}
