// Package web serves the kiosk display: the state snapshot API and the
// live websocket feed the front-end renders from.
package web

import (
	"encoding/json"
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"

	"github.com/copylaradio/go-vitrine/internal/log"
	"github.com/copylaradio/go-vitrine/pkg/hub"
	"github.com/copylaradio/go-vitrine/pkg/protocol"
	"github.com/copylaradio/go-vitrine/pkg/session"
)

// Server is the display HTTP/websocket server.
type Server struct {
	app  *fiber.App
	port string

	// Latest published snapshot, replayed to newly connected displays.
	snapshot   session.Snapshot
	snapshotMu sync.RWMutex

	// Current feed content for /api/feed.
	feed   []protocol.FeedItem
	feedMu sync.RWMutex

	// Standing shop QR for /api/qr.
	qr   *protocol.QRPayload
	qrMu sync.RWMutex

	// Hub for websocket broadcast (thread-safe!)
	stateHub *hub.Hub

	// OnJump is called when a display requests an absolute carousel index.
	OnJump func(index int)
}

// NewServer creates the display server listening on the given port.
func NewServer(port string) *Server {
	s := &Server{
		port:     port,
		stateHub: hub.New("state"),
	}

	app := fiber.New(fiber.Config{
		AppName:               "go-vitrine display",
		DisableStartupMessage: true,
	})

	// CORS for local development
	app.Use(cors.New())

	// Static files
	app.Static("/", "./web")

	api := app.Group("/api")
	api.Get("/state", s.handleState)
	api.Get("/feed", s.handleFeed)
	api.Get("/qr", s.handleQR)
	api.Post("/index", s.handleSetIndex)

	app.Get("/healthz", s.handleHealth)

	// WebSocket upgrade middleware
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/state", websocket.New(s.handleStateWS))

	s.app = app
	return s
}

// Start runs the server. Blocks until shutdown.
func (s *Server) Start() error {
	log.Info("display server listening", "port", s.port)
	go s.stateHub.Run()
	return s.app.Listen(":" + s.port)
}

// StartAsync starts the server in a goroutine.
func (s *Server) StartAsync() {
	go func() {
		if err := s.Start(); err != nil {
			log.Error("display server error", "err", err)
		}
	}()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// PublishSnapshot stores the latest session snapshot and broadcasts it to
// every connected display.
func (s *Server) PublishSnapshot(snap session.Snapshot) {
	s.snapshotMu.Lock()
	s.snapshot = snap
	s.snapshotMu.Unlock()

	if err := s.stateHub.BroadcastJSON(snap); err != nil {
		log.Warn("snapshot broadcast failed", "err", err)
	}
}

// SetFeed stores the current feed content for /api/feed.
func (s *Server) SetFeed(items []protocol.FeedItem) {
	s.feedMu.Lock()
	s.feed = items
	s.feedMu.Unlock()
}

// SetStandingQR stores the shop QR payload for /api/qr.
func (s *Server) SetStandingQR(qr *protocol.QRPayload) {
	s.qrMu.Lock()
	s.qr = qr
	s.qrMu.Unlock()
}

// ClientCount returns the number of connected displays.
func (s *Server) ClientCount() int {
	return s.stateHub.ClientCount()
}

// handleStateWS replays the latest snapshot and then streams updates.
func (s *Server) handleStateWS(c *websocket.Conn) {
	s.snapshotMu.RLock()
	snap := s.snapshot
	s.snapshotMu.RUnlock()

	if data, err := json.Marshal(snap); err == nil {
		c.WriteMessage(websocket.TextMessage, data)
	}

	client := hub.NewClient(s.stateHub, c)
	client.Run()
}
