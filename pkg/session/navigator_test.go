package session

import (
	"context"
	"sync"
	"testing"
)

// syncRecorder records remote index sync calls.
type syncRecorder struct {
	mu      sync.Mutex
	indexes []int
}

func (r *syncRecorder) record(_ context.Context, index int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.indexes = append(r.indexes, index)
}

func TestNavigator_StepClamps(t *testing.T) {
	n := NewNavigator(nil)
	n.SetCount(5)
	ctx := context.Background()

	// Step past the upper bound.
	for i := 0; i < 20; i++ {
		n.Step(ctx, +1)
	}
	if n.Index() != 4 {
		t.Fatalf("index after 20 steps right: got %d, want 4", n.Index())
	}

	// One step back from the boundary works immediately; clamping does not
	// accumulate overshoot.
	n.Step(ctx, -1)
	if n.Index() != 3 {
		t.Fatalf("index after step left: got %d, want 3", n.Index())
	}

	for i := 0; i < 20; i++ {
		n.Step(ctx, -1)
	}
	if n.Index() != 0 {
		t.Fatalf("index after 20 steps left: got %d, want 0", n.Index())
	}
}

func TestNavigator_EmptySequence(t *testing.T) {
	n := NewNavigator(nil)
	ctx := context.Background()

	if n.Step(ctx, +1) {
		t.Error("step on empty sequence reported a change")
	}
	if n.Index() != 0 {
		t.Fatalf("index on empty sequence: got %d, want 0", n.Index())
	}
}

func TestNavigator_SetCountReclamps(t *testing.T) {
	n := NewNavigator(nil)
	n.SetCount(10)
	n.JumpTo(context.Background(), 9)

	if !n.SetCount(3) {
		t.Fatal("shrinking the sequence did not move the index")
	}
	if n.Index() != 2 {
		t.Fatalf("index after shrink: got %d, want 2", n.Index())
	}
}

func TestNavigator_SyncReportsChangesInOrder(t *testing.T) {
	rec := &syncRecorder{}
	n := NewNavigator(rec.record)
	n.SetCount(3)
	ctx := context.Background()

	n.Step(ctx, +1)  // 0 -> 1, syncs
	n.Step(ctx, +1)  // 1 -> 2, syncs
	n.Step(ctx, +1)  // clamped, no change, no sync
	n.JumpTo(ctx, 2) // no change, no sync
	n.JumpTo(ctx, 0) // 2 -> 0, syncs

	// Reports arrive synchronously and in change order; consecutive moves
	// must never reach the store reordered, or it ends on a stale index.
	rec.mu.Lock()
	defer rec.mu.Unlock()
	want := []int{1, 2, 0}
	if len(rec.indexes) != len(want) {
		t.Fatalf("synced indexes: got %v, want %v", rec.indexes, want)
	}
	for i := range want {
		if rec.indexes[i] != want[i] {
			t.Fatalf("synced indexes: got %v, want %v", rec.indexes, want)
		}
	}
}
