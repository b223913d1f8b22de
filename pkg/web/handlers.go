package web

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/sipsense/go-sipsense/pkg/hub"
)

// handleStatus returns the current live status.
func (s *Server) handleStatus(c *fiber.Ctx) error {
	s.stateMu.Lock()
	s.refreshStoreFieldsLocked(time.Now())
	state := s.state
	s.stateMu.Unlock()
	return c.JSON(state)
}

// handleStats returns the aggregate hydration numbers.
func (s *Server) handleStats(c *fiber.Ctx) error {
	now := time.Now()

	stats := fiber.Map{
		"today_count":         s.store.TodayCount(now),
		"overdue":             s.store.IsOverdue(now),
		"interval_minutes":    s.store.IntervalMinutes(),
		"tracking_started_at": s.store.TrackingStartedAt().Format(time.RFC3339),
		"fully_initialized":   s.store.IsFullyInitialized(),
	}
	if elapsed, ok := s.store.TimeSinceLastHydration(now); ok {
		stats["minutes_since_last"] = elapsed.Minutes()
	}
	return c.JSON(stats)
}

// handleEvents returns the full event log.
func (s *Server) handleEvents(c *fiber.Ctx) error {
	return c.JSON(s.store.Events())
}

// ConfigRequest is the body for PUT /api/config. Absent fields are left
// unchanged.
type ConfigRequest struct {
	IntervalMinutes *int  `json:"interval_minutes"`
	SoundEnabled    *bool `json:"sound_enabled"`
}

// handleUpdateConfig updates the reminder interval and sound preference.
func (s *Server) handleUpdateConfig(c *fiber.Ctx) error {
	var req ConfigRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	if req.IntervalMinutes != nil {
		if err := s.store.SetInterval(*req.IntervalMinutes); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
	}
	if req.SoundEnabled != nil {
		s.store.SetSoundEnabled(*req.SoundEnabled)
	}

	// Push the new settings to status subscribers
	s.UpdateState(func(*Status) {})

	return c.JSON(fiber.Map{
		"interval_minutes": s.store.IntervalMinutes(),
		"sound_enabled":    s.store.SoundEnabled(),
	})
}

// handleReset clears the hydration history and abandons any in-flight
// drinking session.
func (s *Server) handleReset(c *fiber.Ctx) error {
	s.store.Reset()
	if s.OnReset != nil {
		s.OnReset()
	}
	s.UpdateState(func(*Status) {})
	return c.JSON(fiber.Map{"reset": true})
}

// handleStatusWS streams live status updates. The current status is sent
// on connect.
func (s *Server) handleStatusWS(c *websocket.Conn) {
	s.stateMu.Lock()
	s.refreshStoreFieldsLocked(time.Now())
	state := s.state
	s.stateMu.Unlock()
	c.WriteJSON(state)

	client := hub.NewClient(s.statusHub, c)
	client.Run() // Blocks until connection closes
}

// handleEventsWS streams confirmed hydration events as they happen.
func (s *Server) handleEventsWS(c *websocket.Conn) {
	client := hub.NewClient(s.eventHub, c)
	client.Run()
}

// handleCameraWS streams the annotated camera feed as binary JPEG frames.
func (s *Server) handleCameraWS(c *websocket.Conn) {
	client := hub.NewClient(s.cameraHub, c)
	client.Run()
}
