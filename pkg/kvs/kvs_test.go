package kvs

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/cuemby/kvs/pkg/stream"
)

// testCell is a minimal in-memory Cell used to exercise PreferenceStore and
// Editor without touching the filesystem.
type testCell struct {
	mu          sync.Mutex
	state       map[string]string
	broadcaster *stream.Broadcaster[map[string]string]
}

func newTestCell() *testCell {
	c := &testCell{state: make(map[string]string), broadcaster: stream.New[map[string]string]()}
	c.broadcaster.Publish(copyTestMap(c.state))
	return c
}

func copyTestMap(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (c *testCell) Read(ctx context.Context) (map[string]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return copyTestMap(c.state), nil
}

func (c *testCell) Snapshot() *stream.Subscription[map[string]string] {
	return c.broadcaster.Subscribe()
}

func (c *testCell) UpdateData(ctx context.Context, transform func(map[string]string) map[string]string) (map[string]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	next := transform(copyTestMap(c.state))
	c.state = next
	out := copyTestMap(next)
	c.broadcaster.Publish(out)
	return out, nil
}

func TestPreferenceStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewPreferenceStore(newTestCell(), "test")

	editor := store.Edit()
	if err := editor.PutString("name", "Santiago"); err != nil {
		t.Fatalf("PutString: %v", err)
	}
	if err := editor.PutInt32("age", 30); err != nil {
		t.Fatalf("PutInt32: %v", err)
	}
	if err := editor.PutBool("premium", true); err != nil {
		t.Fatalf("PutBool: %v", err)
	}
	if err := editor.Commit(ctx); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	if v, err := store.GetString(ctx, "name", "?"); err != nil || v != "Santiago" {
		t.Fatalf("GetString = %q, %v; want Santiago, nil", v, err)
	}
	if v, err := store.GetInt32(ctx, "age", 0); err != nil || v != 30 {
		t.Fatalf("GetInt32 = %d, %v; want 30, nil", v, err)
	}
	if v, err := store.GetBool(ctx, "premium", false); err != nil || v != true {
		t.Fatalf("GetBool = %v, %v; want true, nil", v, err)
	}
	all, err := store.GetAll(ctx)
	if err != nil {
		t.Fatalf("GetAll: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("GetAll size = %d, want 3", len(all))
	}
	if ok, err := store.Contains(ctx, "name"); err != nil || !ok {
		t.Fatalf("Contains = %v, %v; want true, nil", ok, err)
	}
}

func TestGetIntFallsBackOnParseFailure(t *testing.T) {
	ctx := context.Background()
	store := NewPreferenceStore(newTestCell(), "test")

	editor := store.Edit()
	if err := editor.PutString("age", "not-a-number"); err != nil {
		t.Fatalf("PutString: %v", err)
	}
	if err := editor.Commit(ctx); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	v, err := store.GetInt32(ctx, "age", 99)
	if err != nil {
		t.Fatalf("GetInt32: %v", err)
	}
	if v != 99 {
		t.Fatalf("GetInt32 = %d, want default 99 on parse failure", v)
	}
}

func TestMissingKeyReturnsDefault(t *testing.T) {
	ctx := context.Background()
	store := NewPreferenceStore(newTestCell(), "test")

	v, err := store.GetString(ctx, "missing", "fallback")
	if err != nil {
		t.Fatalf("GetString: %v", err)
	}
	if v != "fallback" {
		t.Fatalf("GetString = %q, want fallback", v)
	}
	if ok, err := store.Contains(ctx, "missing"); err != nil || ok {
		t.Fatalf("Contains = %v, %v; want false, nil", ok, err)
	}
}

func TestGetStringAsStreamDeduplicatesUnrelatedChanges(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	store := NewPreferenceStore(newTestCell(), "test")

	vals := store.GetStringAsStream(ctx, "a", "def")

	select {
	case v := <-vals:
		if v != "def" {
			t.Fatalf("initial emission = %q, want def", v)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for initial emission")
	}

	editor := store.Edit()
	_ = editor.PutString("a", "1")
	if err := editor.Commit(ctx); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	select {
	case v := <-vals:
		if v != "1" {
			t.Fatalf("got %q, want 1", v)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for a=1 emission")
	}

	// Changing an unrelated key must not produce another emission of "a".
	editor2 := store.Edit()
	_ = editor2.PutString("b", "extra")
	if err := editor2.Commit(ctx); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	select {
	case v := <-vals:
		t.Fatalf("unexpected emission %q after unrelated key change", v)
	case <-time.After(50 * time.Millisecond):
	}
}
