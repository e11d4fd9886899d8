package schedule

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	logx "modewatch/pkg/logx"
)

func TestBridgeLoadsOnceThenCaches(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := newMemSettings()
	store.data["schedules"] = json.RawMessage(`{"list":[{"id":"a","modeId":"night","time":"22:00","days":["mon"],"enabled":true}]}`)

	b := NewBridge(store, logx.Nop())

	first := b.Load(ctx)
	if len(first) != 1 || first[0].ID != "a" {
		t.Fatalf("first Load = %+v", first)
	}
	second := b.Load(ctx)
	if len(second) != 1 {
		t.Fatalf("second Load = %+v", second)
	}
	if store.gets != 1 {
		t.Fatalf("store read %d times, want 1 (cache hit)", store.gets)
	}
}

func TestBridgeLoadHandlesAbsentAndCorrupt(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	if got := NewBridge(newMemSettings(), logx.Nop()).Load(ctx); len(got) != 0 {
		t.Fatalf("absent key should load empty, got %v", got)
	}

	store := newMemSettings()
	store.data["schedules"] = json.RawMessage(`{not json`)
	if got := NewBridge(store, logx.Nop()).Load(ctx); len(got) != 0 {
		t.Fatalf("corrupt value should load empty, got %v", got)
	}

	// nil store disables persistence entirely
	if got := NewBridge(nil, logx.Nop()).Load(ctx); len(got) != 0 {
		t.Fatalf("nil store should load empty, got %v", got)
	}
}

func TestBridgeSaveSwallowsErrors(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := newMemSettings()
	store.failPut = errors.New("disk full")

	b := NewBridge(store, logx.Nop())
	// Must not panic or propagate; the in-memory cache still updates.
	b.Save(ctx, []Schedule{{ID: "a", ModeID: "m", Time: "10:00", Enabled: true}})

	got := b.Load(ctx)
	if len(got) != 1 || got[0].ID != "a" {
		t.Fatalf("cache not updated after failed save: %v", got)
	}
	if store.puts != 1 {
		t.Fatalf("store.Put called %d times, want 1", store.puts)
	}
}

func TestBridgeSaveRoundTrip(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := newMemSettings()

	in := []Schedule{{
		ID:       "r1",
		ModeID:   "night",
		Time:     "22:00",
		Days:     []string{"mon", "fri"},
		RevertAt: "07:00",
		Enabled:  true,
	}}
	NewBridge(store, logx.Nop()).Save(ctx, in)

	// A fresh bridge sees exactly what was written.
	out := NewBridge(store, logx.Nop()).Load(ctx)
	if len(out) != 1 {
		t.Fatalf("Load length = %d, want 1", len(out))
	}
	if out[0].ID != "r1" || out[0].RevertAt != "07:00" || len(out[0].Days) != 2 {
		t.Fatalf("round trip mismatch: %+v", out[0])
	}
}
