package web

import (
	"github.com/gofiber/fiber/v2"

	"github.com/copylaradio/go-vitrine/pkg/protocol"
)

// handleState returns the latest session snapshot.
func (s *Server) handleState(c *fiber.Ctx) error {
	s.snapshotMu.RLock()
	defer s.snapshotMu.RUnlock()
	return c.JSON(s.snapshot)
}

// handleFeed returns the current carousel content.
func (s *Server) handleFeed(c *fiber.Ctx) error {
	s.feedMu.RLock()
	items := s.feed
	s.feedMu.RUnlock()

	if items == nil {
		items = []protocol.FeedItem{}
	}
	return c.JSON(protocol.FeedResponse{
		Events: items,
		Count:  len(items),
	})
}

// handleQR returns the standing shop QR, 404 until it has been fetched.
func (s *Server) handleQR(c *fiber.Ctx) error {
	s.qrMu.RLock()
	qr := s.qr
	s.qrMu.RUnlock()

	if qr == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "qr not loaded",
		})
	}
	return c.JSON(qr)
}

// SetIndexRequest is the request body for display-driven navigation.
type SetIndexRequest struct {
	Index int `json:"index"`
}

// handleSetIndex forwards a display tap to the session event loop.
func (s *Server) handleSetIndex(c *fiber.Ctx) error {
	var req SetIndexRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid body",
		})
	}

	if s.OnJump == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "navigation not configured",
		})
	}
	s.OnJump(req.Index)

	return c.JSON(fiber.Map{"index": req.Index})
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "ok",
		"clients": s.ClientCount(),
	})
}
