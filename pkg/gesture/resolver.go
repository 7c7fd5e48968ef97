// Package gesture converts the raw GestureFrame stream into edge-triggered
// discrete commands plus per-frame hold-progress updates.
package gesture

import "github.com/copylaradio/go-vitrine/pkg/protocol"

// Resolution is the outcome of resolving one frame against the previous
// stream state. Command is ActionNone unless this frame carries a semantic
// edge. ForceDetailClose bypasses the edge detector entirely: a fist while
// the detail overlay is open must interrupt regardless of prior action.
type Resolution struct {
	Command          protocol.Action
	ForceDetailClose bool

	// Hold progress is forwarded on every frame, not edge-gated, so
	// indicators animate smoothly.
	ThumbsUpProgress float64
	OpenHandProgress float64

	// Hide flags fire on the held-to-released transition so the view can
	// drop the corresponding indicator.
	HideThumbsUp bool
	HideOpenHand bool
}

// Resolver maintains the last seen action value and derives commands from
// value transitions. It is not safe for concurrent use; the session event
// loop is its only caller.
type Resolver struct {
	lastAction   protocol.Action
	lastThumbsUp float64
	lastOpenHand float64
}

// NewResolver creates a resolver with no prior action.
func NewResolver() *Resolver {
	return &Resolver{lastAction: protocol.ActionNone}
}

// Resolve processes one frame. detailOpen reports whether the Detail
// overlay is currently showing; it gates the fist override only.
//
// The edge rule: a command is dispatched exactly when frame.Action differs
// from the previous frame's action, including the transition back to none
// (which dispatches nothing but re-arms the detector). A repeated
// non-none value dispatches nothing until the gesture is released and
// re-asserted.
func (r *Resolver) Resolve(frame protocol.GestureFrame, detailOpen bool) Resolution {
	res := Resolution{
		Command:          protocol.ActionNone,
		ThumbsUpProgress: frame.ThumbsUpProgress,
		OpenHandProgress: frame.OpenHandProgress,
	}

	action := frame.Action
	if action == "" {
		action = protocol.ActionNone
	}
	if action != r.lastAction {
		r.lastAction = action
		if action != protocol.ActionNone {
			res.Command = action
		}
	}

	// Same-frame override, not gated by the edge detector.
	if frame.IsFist && detailOpen {
		res.ForceDetailClose = true
	}

	held := frame.IsThumbsUp && frame.ThumbsUpProgress > 0
	if !held && r.lastThumbsUp > 0 {
		res.HideThumbsUp = true
	}
	r.lastThumbsUp = frame.ThumbsUpProgress
	if !frame.IsThumbsUp {
		r.lastThumbsUp = 0
	}

	heldOpen := frame.IsOpenHand && frame.OpenHandProgress > 0
	if !heldOpen && r.lastOpenHand > 0 {
		res.HideOpenHand = true
	}
	r.lastOpenHand = frame.OpenHandProgress
	if !frame.IsOpenHand {
		r.lastOpenHand = 0
	}

	return res
}

// Reset clears the edge detector, e.g. after a transport outage, so the
// first frame of a new signal is treated as a fresh edge.
func (r *Resolver) Reset() {
	r.lastAction = protocol.ActionNone
	r.lastThumbsUp = 0
	r.lastOpenHand = 0
}
