package session

import "time"

// OverlayKind identifies the modal overlay currently showing. Exactly one
// kind is active at any instant; mutual exclusion is enforced here and
// nowhere else.
type OverlayKind int

const (
	OverlayNone OverlayKind = iota
	OverlayDetail
	OverlayCapture
)

func (k OverlayKind) String() string {
	switch k {
	case OverlayDetail:
		return "detail"
	case OverlayCapture:
		return "capture"
	default:
		return "none"
	}
}

// Overlays enforces the overlay mutual-exclusion invariant and owns the
// QR auto-dismiss countdown. All methods run on the session event loop.
type Overlays struct {
	current     OverlayKind
	qrRemaining int
	qrTicker    *time.Ticker

	// tick is the countdown granularity; one second in production,
	// shortened in tests.
	tick time.Duration
}

// NewOverlays creates the coordinator with no overlay showing.
func NewOverlays() *Overlays {
	return &Overlays{tick: time.Second}
}

// Current returns the active overlay kind.
func (o *Overlays) Current() OverlayKind { return o.current }

// QRRemaining returns the seconds left on the capture countdown, or 0.
func (o *Overlays) QRRemaining() int { return o.qrRemaining }

// OpenDetail shows the detail overlay. The request is refused while any
// other overlay is active, which keeps the invariant unbreakable by
// construction: there is no code path that stacks overlays.
func (o *Overlays) OpenDetail() bool {
	if o.current != OverlayNone && o.current != OverlayDetail {
		return false
	}
	o.current = OverlayDetail
	return true
}

// CloseDetail hides the detail overlay; no-op if it is not showing.
func (o *Overlays) CloseDetail() bool {
	if o.current != OverlayDetail {
		return false
	}
	o.current = OverlayNone
	return true
}

// OpenCapture shows the capture/QR overlay with a countdown of the given
// number of seconds. Refused while another overlay is active.
func (o *Overlays) OpenCapture(seconds int) bool {
	if o.current != OverlayNone && o.current != OverlayCapture {
		return false
	}
	o.stopCountdown()
	o.current = OverlayCapture
	o.qrRemaining = seconds
	o.qrTicker = time.NewTicker(o.tick)
	return true
}

// CloseCapture hides the capture overlay and cancels the countdown timer.
// The timer must be stopped here — not left to expire — so a manual
// dismissal can never be followed by a stale auto-close tick.
func (o *Overlays) CloseCapture() bool {
	if o.current != OverlayCapture {
		return false
	}
	o.stopCountdown()
	o.current = OverlayNone
	o.qrRemaining = 0
	return true
}

// CountdownC returns the countdown tick channel, or nil when no countdown
// is running. A nil channel never fires, so the event loop can select on
// it unconditionally.
func (o *Overlays) CountdownC() <-chan time.Time {
	if o.qrTicker == nil {
		return nil
	}
	return o.qrTicker.C
}

// TickCountdown consumes one countdown tick. When the countdown reaches
// zero the capture overlay closes automatically and closed is true.
func (o *Overlays) TickCountdown() (remaining int, closed bool) {
	if o.current != OverlayCapture {
		return 0, false
	}
	o.qrRemaining--
	if o.qrRemaining <= 0 {
		o.CloseCapture()
		return 0, true
	}
	return o.qrRemaining, false
}

func (o *Overlays) stopCountdown() {
	if o.qrTicker != nil {
		o.qrTicker.Stop()
		o.qrTicker = nil
	}
}
