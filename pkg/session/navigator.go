package session

import "context"

// Navigator maintains the current position in the bounded carousel
// sequence. The index is always clamped to [0, count-1], or 0 when the
// feed is empty, no matter how large the cumulative step delta gets.
type Navigator struct {
	index int
	count int

	// sync reports a successful index change to the remote store.
	// Invoked synchronously, in change order, on the caller's goroutine;
	// implementations must hand the value off without blocking so local
	// navigation never waits on remote acknowledgement.
	sync func(ctx context.Context, index int)
}

// NewNavigator creates a navigator over an empty sequence.
func NewNavigator(sync func(ctx context.Context, index int)) *Navigator {
	return &Navigator{sync: sync}
}

// Index returns the current position.
func (n *Navigator) Index() int { return n.index }

// Count returns the sequence length.
func (n *Navigator) Count() int { return n.count }

// SetCount updates the sequence length and re-clamps the index.
// Returns true if the index moved.
func (n *Navigator) SetCount(count int) bool {
	if count < 0 {
		count = 0
	}
	n.count = count
	old := n.index
	n.index = clampIndex(n.index, count)
	return n.index != old
}

// Step moves the index by delta, clamped. Returns true if it changed.
func (n *Navigator) Step(ctx context.Context, delta int) bool {
	return n.moveTo(ctx, n.index+delta)
}

// JumpTo moves the index to i, clamped. Returns true if it changed.
func (n *Navigator) JumpTo(ctx context.Context, i int) bool {
	return n.moveTo(ctx, i)
}

func (n *Navigator) moveTo(ctx context.Context, target int) bool {
	next := clampIndex(target, n.count)
	if next == n.index {
		return false
	}
	n.index = next

	if n.sync != nil {
		n.sync(ctx, next)
	}
	return true
}

func clampIndex(i, count int) int {
	if count <= 0 {
		return 0
	}
	if i < 0 {
		return 0
	}
	if i >= count {
		return count - 1
	}
	return i
}
