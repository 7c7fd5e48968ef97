// Package session owns all per-session kiosk state: carousel position,
// modal overlays, theme mode and the derived view snapshot. Every mutation
// happens on a single event-loop goroutine; other components feed it
// through channels and never touch the state directly.
package session

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/copylaradio/go-vitrine/internal/log"
	"github.com/copylaradio/go-vitrine/pkg/gesture"
	"github.com/copylaradio/go-vitrine/pkg/protocol"
	"github.com/copylaradio/go-vitrine/pkg/transport"
)

// Shop is the slice of the backend client the session needs: position
// sync and capture. Both are collaborator-owned contracts.
type Shop interface {
	SetIndex(ctx context.Context, index int) error
	Capture(ctx context.Context) (*protocol.CaptureResult, error)
}

// Snapshot is the JSON view of the whole session published to the display
// after every state change.
type Snapshot struct {
	SessionID string `json:"session_id"`

	HandDetected     bool             `json:"hand_detected"`
	HandX            float64          `json:"hand_x"`
	Gesture          protocol.Gesture `json:"gesture_name"`
	ThumbsUpProgress float64          `json:"thumbs_up_progress"`
	OpenHandProgress float64          `json:"open_hand_progress"`

	CurrentIndex int `json:"current_index"`
	ItemCount    int `json:"item_count"`

	Overlay     string `json:"overlay"`
	QRRemaining int    `json:"qr_remaining"`

	LightMode     bool    `json:"light_mode"`
	TimeUntilDark float64 `json:"time_until_dark"`

	SignalLost    bool   `json:"signal_lost"`
	UsingPush     bool   `json:"using_push"`
	StatusMessage string `json:"status_message,omitempty"`

	Capture *protocol.CaptureResult `json:"capture,omitempty"`
}

// Config holds session tuning knobs.
type Config struct {
	QRSeconds    int           // capture overlay countdown, default 10
	StatusExpiry time.Duration // transient status message lifetime
}

// DefaultConfig returns production defaults.
func DefaultConfig() Config {
	return Config{
		QRSeconds:    10,
		StatusExpiry: 5 * time.Second,
	}
}

// Session is the per-client state machine. Create with New, feed it via
// HandleFrame/HandleStatus/SetFeed, and drive it with Run.
type Session struct {
	ID string

	cfg      Config
	resolver *gesture.Resolver
	nav      *Navigator
	overlays *Overlays
	theme    *ThemeMode
	shop     Shop

	frames   chan protocol.GestureFrame
	statuses chan transport.Status
	modes    chan bool
	captures chan captureOutcome
	feed     chan []protocol.FeedItem
	jumps    chan int
	syncs    chan int

	// onSnapshot publishes every state change to the view layer.
	onSnapshot func(Snapshot)
	// onBanner is the one-time theme flip side effect.
	onBanner func(light bool)

	// View-facing state, loop-owned.
	lastFrame      protocol.GestureFrame
	signalLost     bool
	usingPush      bool
	statusMsg      string
	statusTimer    *time.Timer
	capturePending bool
	lastCapture    *protocol.CaptureResult

	// bannerLight is the last state actually delivered to the banner;
	// flips swallowed while the QR overlay owns the screen are replayed
	// from it when the overlay closes.
	bannerLight bool
}

type captureOutcome struct {
	result *protocol.CaptureResult
	err    error
}

// New creates a session bound to the given shop client.
func New(cfg Config, shop Shop) *Session {
	s := &Session{
		ID:       uuid.NewString(),
		cfg:      cfg,
		resolver: gesture.NewResolver(),
		overlays: NewOverlays(),
		shop:     shop,
		frames:   make(chan protocol.GestureFrame, 16),
		statuses: make(chan transport.Status, 4),
		modes:    make(chan bool, 4),
		captures: make(chan captureOutcome, 1),
		feed:     make(chan []protocol.FeedItem, 1),
		jumps:    make(chan int, 4),
		syncs:    make(chan int, 16),
	}
	s.nav = NewNavigator(s.syncIndex)
	s.theme = NewThemeMode(func(light bool) {
		// The banner stays put while the QR overlay owns the screen.
		if s.overlays.Current() == OverlayCapture {
			return
		}
		s.emitBanner(light)
	})
	return s
}

// OnSnapshot sets the snapshot publisher. Set before Run.
func (s *Session) OnSnapshot(fn func(Snapshot)) { s.onSnapshot = fn }

// OnBannerToggle sets the ambient banner side effect. Set before Run.
func (s *Session) OnBannerToggle(fn func(light bool)) { s.onBanner = fn }

// HandleFrame enqueues a gesture frame for the event loop. Frames are
// processed strictly in delivery order; under load the transport blocks
// here rather than skipping or reordering.
func (s *Session) HandleFrame(frame protocol.GestureFrame) {
	s.frames <- frame
}

// HandleStatus enqueues a transport status change.
func (s *Session) HandleStatus(status transport.Status) {
	s.statuses <- status
}

// HandleModeChange enqueues a transport mode change for display.
func (s *Session) HandleModeChange(push bool) {
	s.modes <- push
}

// SetFeed replaces the carousel content. The index is re-clamped to the
// new item count on the event loop.
func (s *Session) SetFeed(items []protocol.FeedItem) {
	// Only the latest feed matters; drop a stale pending update.
	select {
	case <-s.feed:
	default:
	}
	s.feed <- items
}

// RequestJump asks the loop to move to an absolute index (display-driven
// navigation, e.g. tapping a carousel dot).
func (s *Session) RequestJump(index int) {
	select {
	case s.jumps <- index:
	default:
	}
}

// Run drives the event loop until ctx is cancelled. All timers are owned
// here and cancelled deterministically on every exit path.
func (s *Session) Run(ctx context.Context) {
	log.Info("session started", "id", s.ID)
	defer func() {
		s.overlays.stopCountdown()
		s.stopStatusTimer()
		log.Info("session ended", "id", s.ID)
	}()

	go s.syncWorker(ctx)

	for {
		select {
		case <-ctx.Done():
			return

		case frame := <-s.frames:
			s.processFrame(ctx, frame)

		case status := <-s.statuses:
			s.processStatus(status)

		case push := <-s.modes:
			s.usingPush = push
			s.publish()

		case outcome := <-s.captures:
			s.processCaptureOutcome(outcome)

		case items := <-s.feed:
			s.nav.SetCount(len(items))
			s.publish()

		case index := <-s.jumps:
			if s.overlays.Current() == OverlayNone {
				if s.nav.JumpTo(ctx, index) {
					s.publish()
				}
			}

		case <-s.overlays.CountdownC():
			if _, closed := s.overlays.TickCountdown(); closed {
				log.Debug("qr countdown expired, capture overlay closed")
				s.restoreBanner()
			}
			s.publish()

		case <-s.statusTimerC():
			s.statusMsg = ""
			s.statusTimer = nil
			s.publish()
		}
	}
}

// processFrame is the core per-frame pipeline: theme first (independent
// of action edges), then edge resolution, then command effects.
func (s *Session) processFrame(ctx context.Context, frame protocol.GestureFrame) {
	s.lastFrame = frame
	s.theme.Observe(frame)

	res := s.resolver.Resolve(frame, s.overlays.Current() == OverlayDetail)

	if res.ForceDetailClose {
		s.overlays.CloseDetail()
	}
	if res.Command != protocol.ActionNone {
		s.applyCommand(ctx, res.Command)
	}

	s.publish()
}

// applyCommand maps a resolved command to its effect. Navigation maps
// inverted on purpose: a hand on the left pulls content leftward, which
// means stepping right through the sequence. Do not "fix" this.
func (s *Session) applyCommand(ctx context.Context, cmd protocol.Action) {
	overlay := s.overlays.Current()

	switch cmd {
	case protocol.ActionNavLeft:
		if overlay == OverlayNone {
			s.nav.Step(ctx, +1)
		}

	case protocol.ActionNavRight:
		if overlay == OverlayNone {
			s.nav.Step(ctx, -1)
		}

	case protocol.ActionDetail:
		if overlay != OverlayCapture {
			s.overlays.OpenDetail()
		}

	case protocol.ActionDetailClose:
		s.overlays.CloseDetail()

	case protocol.ActionCapture:
		if overlay != OverlayCapture && !s.capturePending {
			s.capturePending = true
			go s.requestCapture(ctx)
		}
	}
}

// requestCapture calls the external capture endpoint off-loop and feeds
// the outcome back through the captures channel.
func (s *Session) requestCapture(ctx context.Context) {
	result, err := s.shop.Capture(ctx)
	select {
	case s.captures <- captureOutcome{result: result, err: err}:
	case <-ctx.Done():
	}
}

func (s *Session) processCaptureOutcome(outcome captureOutcome) {
	s.capturePending = false

	if outcome.err != nil || outcome.result == nil || !outcome.result.Success {
		if outcome.err != nil {
			log.Warn("capture request failed", "err", outcome.err)
		} else if outcome.result != nil {
			log.Warn("capture refused by backend", "reason", outcome.result.Error)
		}
		s.setTransientStatus("capture failed")
		s.publish()
		return
	}

	s.lastCapture = outcome.result
	// QR takes over the screen: the detail overlay yields to it.
	s.overlays.CloseDetail()
	s.overlays.OpenCapture(s.cfg.QRSeconds)
	log.Info("capture succeeded", "cid", outcome.result.IPFSCid, "faces", len(outcome.result.Faces))
	s.publish()
}

func (s *Session) processStatus(status transport.Status) {
	lost := status == transport.StatusNoSignal
	if lost == s.signalLost {
		return
	}
	s.signalLost = lost
	if lost {
		// Stale edge state must not suppress the first command of a
		// recovered signal.
		s.resolver.Reset()
	}
	s.publish()
}

// setTransientStatus shows an auto-expiring status message.
func (s *Session) setTransientStatus(msg string) {
	s.statusMsg = msg
	s.stopStatusTimer()
	s.statusTimer = time.NewTimer(s.cfg.StatusExpiry)
}

func (s *Session) statusTimerC() <-chan time.Time {
	if s.statusTimer == nil {
		return nil
	}
	return s.statusTimer.C
}

func (s *Session) stopStatusTimer() {
	if s.statusTimer != nil {
		s.statusTimer.Stop()
		s.statusTimer = nil
	}
}

// syncIndex queues a navigation change for the remote store without
// blocking the event loop. When the store lags far enough to fill the
// queue, the oldest pending report is dropped in favor of the newer
// index; the store converges on the latest position either way.
func (s *Session) syncIndex(_ context.Context, index int) {
	if s.shop == nil {
		return
	}
	for {
		select {
		case s.syncs <- index:
			return
		default:
		}
		select {
		case <-s.syncs:
		default:
		}
	}
}

// syncWorker applies queued index reports one at a time, so the remote
// store sees changes in the order they happened locally. Fire-and-forget:
// failures are logged, never retried, and never roll back local state.
func (s *Session) syncWorker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case index := <-s.syncs:
			if err := s.shop.SetIndex(ctx, index); err != nil {
				log.Warn("index sync failed", "index", index, "err", err)
			}
		}
	}
}

// emitBanner delivers a banner toggle and remembers what was shown.
func (s *Session) emitBanner(light bool) {
	s.bannerLight = light
	if s.onBanner != nil {
		s.onBanner(light)
	}
}

// restoreBanner replays a theme flip that was swallowed while the capture
// overlay owned the screen. Runs on every capture-close path so the
// banner never stays stale past the overlay.
func (s *Session) restoreBanner() {
	if s.theme.Light() != s.bannerLight {
		s.emitBanner(s.theme.Light())
	}
}

// publish builds and emits the current snapshot.
func (s *Session) publish() {
	if s.onSnapshot == nil {
		return
	}
	s.onSnapshot(s.snapshot())
}

func (s *Session) snapshot() Snapshot {
	return Snapshot{
		SessionID:        s.ID,
		HandDetected:     s.lastFrame.HandDetected,
		HandX:            s.lastFrame.HandX,
		Gesture:          s.lastFrame.GestureName,
		ThumbsUpProgress: s.lastFrame.ThumbsUpProgress,
		OpenHandProgress: s.lastFrame.OpenHandProgress,
		CurrentIndex:     s.nav.Index(),
		ItemCount:        s.nav.Count(),
		Overlay:          s.overlays.Current().String(),
		QRRemaining:      s.overlays.QRRemaining(),
		LightMode:        s.theme.Light(),
		TimeUntilDark:    s.theme.TimeUntilDark(),
		SignalLost:       s.signalLost,
		UsingPush:        s.usingPush,
		StatusMessage:    s.statusMsg,
		Capture:          s.lastCapture,
	}
}
