package ttl

import (
	"context"
	"testing"
	"time"
)

func TestGetStringAsStreamDeduplicatesUnrelatedChanges(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	clock := &fakeClock{millis: 0}
	engine, _ := newTestEngine(clock)

	vals := engine.GetStringAsStream(ctx, "a", "def")

	select {
	case v := <-vals:
		if v != "def" {
			t.Fatalf("initial emission = %q, want def", v)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for initial emission")
	}

	editor := engine.Edit()
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
	editor2 := engine.Edit()
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

func TestGetStringAsStreamTreatsExpiredAsAbsent(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	clock := &fakeClock{millis: 0}
	engine, _ := newTestEngine(clock)

	editor := engine.Edit()
	_ = editor.PutStringWithTTL("a", "1", 1*time.Second)
	if err := editor.Commit(ctx); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	vals := engine.GetStringAsStream(ctx, "a", "gone")
	select {
	case v := <-vals:
		if v != "1" {
			t.Fatalf("initial emission = %q, want 1", v)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for initial emission")
	}

	// Advance past expiration, then publish an unrelated change so the
	// broadcaster emits a new state for Derive to re-evaluate against.
	clock.millis = 5000
	editor2 := engine.Edit()
	_ = editor2.PutString("b", "extra")
	if err := editor2.Commit(ctx); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	select {
	case v := <-vals:
		if v != "gone" {
			t.Fatalf("got %q, want default after expiration", v)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for post-expiration emission")
	}
}

func TestGetInt32AsStream(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	clock := &fakeClock{millis: 0}
	engine, _ := newTestEngine(clock)

	vals := engine.GetInt32AsStream(ctx, "n", -1)
	drainInitial(t, vals, int32(-1))

	editor := engine.Edit()
	_ = editor.PutInt32("n", 42)
	if err := editor.Commit(ctx); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	select {
	case v := <-vals:
		if v != 42 {
			t.Fatalf("got %d, want 42", v)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for n=42 emission")
	}
}

func TestGetInt64AsStream(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	clock := &fakeClock{millis: 0}
	engine, _ := newTestEngine(clock)

	vals := engine.GetInt64AsStream(ctx, "n", -1)
	drainInitial(t, vals, int64(-1))

	editor := engine.Edit()
	_ = editor.PutInt64("n", 9000000000)
	if err := editor.Commit(ctx); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	select {
	case v := <-vals:
		if v != 9000000000 {
			t.Fatalf("got %d, want 9000000000", v)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for emission")
	}
}

func TestGetFloat32AsStream(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	clock := &fakeClock{millis: 0}
	engine, _ := newTestEngine(clock)

	vals := engine.GetFloat32AsStream(ctx, "f", -1)
	drainInitial(t, vals, float32(-1))

	editor := engine.Edit()
	_ = editor.PutFloat32("f", 3.5)
	if err := editor.Commit(ctx); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	select {
	case v := <-vals:
		if v != 3.5 {
			t.Fatalf("got %v, want 3.5", v)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for emission")
	}
}

func TestGetBoolAsStream(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	clock := &fakeClock{millis: 0}
	engine, _ := newTestEngine(clock)

	vals := engine.GetBoolAsStream(ctx, "b", false)
	drainInitial(t, vals, false)

	editor := engine.Edit()
	_ = editor.PutBool("b", true)
	if err := editor.Commit(ctx); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	select {
	case v := <-vals:
		if !v {
			t.Fatal("got false, want true")
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for emission")
	}
}

func TestGetAllAsStreamFiltersExpiredWithoutRemovingThem(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	clock := &fakeClock{millis: 0}
	engine, cell := newTestEngine(clock)

	editor := engine.Edit()
	_ = editor.PutStringWithTTL("soon", "a", 1*time.Second)
	_ = editor.PutStringWithTTL("later", "b", 100*time.Second)
	if err := editor.Commit(ctx); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	vals := engine.GetAllAsStream(ctx)
	select {
	case m := <-vals:
		if len(m) != 2 {
			t.Fatalf("initial emission = %v, want both keys live", m)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for initial emission")
	}

	clock.millis = 2000
	editor2 := engine.Edit()
	_ = editor2.PutString("unrelated", "x")
	if err := editor2.Commit(ctx); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	select {
	case m := <-vals:
		if _, ok := m["soon"]; ok {
			t.Fatalf("emission %v still contains expired key", m)
		}
		if m["later"] != "b" {
			t.Fatalf("emission %v missing live key later=b", m)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for post-expiration emission")
	}

	raw, _ := cell.Read(ctx)
	if _, stillThere := raw["soon"]; !stillThere {
		t.Fatal("GetAllAsStream must not remove the expired entry from backing state")
	}
}

func drainInitial[T comparable](t *testing.T, vals <-chan T, want T) {
	t.Helper()
	select {
	case v := <-vals:
		if v != want {
			t.Fatalf("initial emission = %v, want %v", v, want)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for initial emission")
	}
}
