// Package transport delivers GestureFrames from the sensing service to a
// single subscriber over exactly one of two delivery paths: a persistent
// WebSocket push channel, or a fixed-interval HTTP poll loop. Failover is
// automatic and mutually exclusive; at any instant at most one path is
// live, and frames are delivered strictly in arrival order.
package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/copylaradio/go-vitrine/internal/httpc"
	"github.com/copylaradio/go-vitrine/internal/log"
	"github.com/copylaradio/go-vitrine/pkg/protocol"
)

// Status reports signal health to the subscriber. Status changes are not
// frames: an individual poll failure degrades to StatusNoSignal and the
// loop keeps its schedule.
type Status int

const (
	StatusOK Status = iota
	StatusNoSignal
)

func (s Status) String() string {
	if s == StatusNoSignal {
		return "no_signal"
	}
	return "ok"
}

// Default transport timings.
const (
	DefaultPollInterval     = 50 * time.Millisecond
	DefaultReconnectBackoff = 2 * time.Second
	handshakeTimeout        = 5 * time.Second
	readWait                = 30 * time.Second
	pingPeriod              = 10 * time.Second
	pollRequestTimeout      = 2 * time.Second
)

// Client maintains exactly one active delivery path for GestureFrames.
type Client struct {
	baseURL      string
	pollInterval time.Duration
	backoff      time.Duration

	// Subscriber callbacks. Set before Start; never invoked concurrently.
	onFrame  func(protocol.GestureFrame)
	onStatus func(Status)
	onMode   func(push bool)

	usingPush  atomic.Bool
	pollActive atomic.Bool

	// deliverMu serializes frame delivery across a mode switch so an
	// in-flight poll response can never interleave with push frames.
	deliverMu sync.Mutex

	ws   *websocket.Conn
	wsMu sync.Mutex

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	noSignal bool // poll outage latch, owned by the poll goroutine
}

// Option configures a Client.
type Option func(*Client)

// WithPollInterval overrides the default 50ms poll interval.
func WithPollInterval(d time.Duration) Option {
	return func(c *Client) { c.pollInterval = d }
}

// WithReconnectBackoff overrides the push reconnect backoff.
func WithReconnectBackoff(d time.Duration) Option {
	return func(c *Client) { c.backoff = d }
}

// NewClient creates a transport client for the sensing service at baseURL
// (http:// or https://; the push channel endpoint is derived from it).
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		pollInterval: DefaultPollInterval,
		backoff:      DefaultReconnectBackoff,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// OnFrame sets the single subscriber callback for gesture frames.
func (c *Client) OnFrame(fn func(protocol.GestureFrame)) { c.onFrame = fn }

// OnStatus sets the callback for signal status changes.
func (c *Client) OnStatus(fn func(Status)) { c.onStatus = fn }

// OnModeChange sets the callback invoked when the delivery path changes.
func (c *Client) OnModeChange(fn func(push bool)) { c.onMode = fn }

// PushActive reports whether the push channel is the live delivery path.
func (c *Client) PushActive() bool { return c.usingPush.Load() }

// PollActive reports whether the poll loop is the live delivery path.
// A poll goroutine that has lost the flag race to a push reconnect may
// still be winding down; it is no longer the live path and is not
// reported here, so PushActive and PollActive are never both true.
func (c *Client) PollActive() bool {
	return c.pollActive.Load() && !c.usingPush.Load()
}

// Start attempts the push handshake and falls back to polling on failure.
// It returns immediately; delivery happens on background goroutines until
// ctx is cancelled or Close is called.
func (c *Client) Start(ctx context.Context) {
	c.ctx, c.cancel = context.WithCancel(ctx)

	if err := c.connectPush(); err != nil {
		log.Warn("push handshake failed, falling back to poll", "err", err)
		c.startPoll()
	}

	c.wg.Add(1)
	go c.reconnectLoop()
}

// Close cancels whichever delivery path is live and waits for the
// background goroutines to exit. No frame is delivered after Close returns.
func (c *Client) Close() {
	if c.cancel != nil {
		c.cancel()
	}
	c.wsMu.Lock()
	if c.ws != nil {
		c.ws.Close()
	}
	c.wsMu.Unlock()
	c.wg.Wait()
}

// pushURL derives the ws:// endpoint from the HTTP base URL.
func (c *Client) pushURL() (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid sensor URL %q: %w", c.baseURL, err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	}
	u.Path = "/ws/gesture"
	return u.String(), nil
}

// connectPush performs the push handshake. On success the push flag flips
// before the read loop starts, so a concurrent poll loop observes it
// before scheduling its next request.
func (c *Client) connectPush() error {
	wsURL, err := c.pushURL()
	if err != nil {
		return err
	}

	dialer := websocket.Dialer{HandshakeTimeout: handshakeTimeout}
	conn, _, err := dialer.DialContext(c.ctx, wsURL, nil)
	if err != nil {
		return fmt.Errorf("push handshake: %w", err)
	}

	c.wsMu.Lock()
	c.ws = conn
	c.wsMu.Unlock()

	c.usingPush.Store(true)
	if c.onMode != nil {
		c.onMode(true)
	}
	log.Info("push channel established", "url", wsURL)

	c.wg.Add(2)
	go c.readLoop(conn)
	go c.keepAlive(conn)
	return nil
}

// readLoop forwards every server-pushed frame immediately. A read error
// demotes the client to poll mode.
func (c *Client) readLoop(conn *websocket.Conn) {
	defer c.wg.Done()

	conn.SetReadDeadline(time.Now().Add(readWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(readWait))
		return nil
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if c.ctx.Err() != nil {
				return
			}
			log.Warn("push channel lost, failing over to poll", "err", err)
			c.usingPush.Store(false)
			if c.onMode != nil {
				c.onMode(false)
			}
			c.startPoll()
			return
		}
		conn.SetReadDeadline(time.Now().Add(readWait))
		c.handlePushMessage(conn, data)
	}
}

// keepAlive pings the push channel so half-open connections are detected
// within readWait rather than hanging forever.
func (c *Client) keepAlive(conn *websocket.Conn) {
	defer c.wg.Done()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-c.ctx.Done():
			return
		case <-ticker.C:
			c.wsMu.Lock()
			err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(handshakeTimeout))
			c.wsMu.Unlock()
			if err != nil {
				return
			}
		}
	}
}

func (c *Client) handlePushMessage(conn *websocket.Conn, data []byte) {
	msg, err := protocol.ParseMessage(data)
	if err != nil {
		log.Debug("discarding malformed push message", "err", err)
		return
	}

	switch msg.Type {
	case protocol.TypeFrame:
		frame, err := msg.GetFrame()
		if err != nil {
			log.Debug("discarding malformed frame", "err", err)
			return
		}
		c.deliver(*frame)

	case protocol.TypeStatus:
		status, err := msg.GetStatus()
		if err != nil {
			return
		}
		if c.onStatus != nil {
			if status.Signal {
				c.onStatus(StatusOK)
			} else {
				c.onStatus(StatusNoSignal)
			}
		}

	case protocol.TypePing:
		pong, err := protocol.NewMessage(protocol.TypePong, nil)
		if err != nil {
			return
		}
		payload, err := pong.Bytes()
		if err != nil {
			return
		}
		c.wsMu.Lock()
		conn.WriteMessage(websocket.TextMessage, payload)
		c.wsMu.Unlock()
	}
}

// startPoll launches the poll loop unless one is already running.
func (c *Client) startPoll() {
	if !c.pollActive.CompareAndSwap(false, true) {
		return
	}
	c.wg.Add(1)
	go c.pollLoop()
}

// pollLoop issues one frame request per interval, never overlapping. The
// push flag is checked before every request: after a push reconnection the
// loop stops cleanly without issuing another one.
func (c *Client) pollLoop() {
	defer c.wg.Done()
	defer c.pollActive.Store(false)

	client := httpc.NewClient(pollRequestTimeout)
	timer := time.NewTimer(0) // first request immediately
	defer timer.Stop()

	for {
		select {
		case <-c.ctx.Done():
			return
		case <-timer.C:
		}

		if c.usingPush.Load() {
			return
		}

		frame, err := c.fetchFrame(client)
		if err != nil {
			if !c.noSignal {
				c.noSignal = true
				log.Warn("poll request failed, signal lost", "err", err)
				if c.onStatus != nil {
					c.onStatus(StatusNoSignal)
				}
			}
		} else {
			if c.noSignal {
				c.noSignal = false
				if c.onStatus != nil {
					c.onStatus(StatusOK)
				}
			}
			// A push reconnect may have landed while this request was in
			// flight; the frame would then race the push stream, so drop it.
			if c.usingPush.Load() {
				return
			}
			c.deliver(*frame)
		}

		timer.Reset(c.pollInterval)
	}
}

// fetchFrame issues a single poll request against the frame endpoint.
func (c *Client) fetchFrame(client *http.Client) (*protocol.GestureFrame, error) {
	req, err := http.NewRequestWithContext(c.ctx, http.MethodGet, c.baseURL+"/api/gesture", nil)
	if err != nil {
		return nil, fmt.Errorf("build poll request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("poll request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("poll request returned %d", resp.StatusCode)
	}

	var frame protocol.GestureFrame
	if err := json.NewDecoder(resp.Body).Decode(&frame); err != nil {
		return nil, fmt.Errorf("failed to decode frame: %w", err)
	}
	return &frame, nil
}

// deliver hands a frame to the subscriber under the delivery lock so
// push and poll can never interleave during a mode switch.
func (c *Client) deliver(frame protocol.GestureFrame) {
	c.deliverMu.Lock()
	defer c.deliverMu.Unlock()
	if c.onFrame != nil {
		c.onFrame(frame)
	}
}

// reconnectLoop retries the push handshake while polling is the live path.
func (c *Client) reconnectLoop() {
	defer c.wg.Done()

	ticker := time.NewTicker(c.backoff)
	defer ticker.Stop()

	for {
		select {
		case <-c.ctx.Done():
			return
		case <-ticker.C:
			if c.usingPush.Load() {
				continue
			}
			if err := c.connectPush(); err != nil {
				log.Debug("push reconnect attempt failed", "err", err)
			}
		}
	}
}
