// Package web provides the real-time hydration dashboard and its REST API.
package web

import (
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"

	"github.com/sipsense/go-sipsense/internal/log"
	"github.com/sipsense/go-sipsense/pkg/hub"
	"github.com/sipsense/go-sipsense/pkg/hydration"
)

// Status is the dashboard's live view of the tracker.
type Status struct {
	Readiness hydration.Readiness `json:"readiness"`

	FaceDetected   bool   `json:"face_detected"`
	ObjectDetected bool   `json:"object_detected"`
	CurrentClass   string `json:"current_class,omitempty"`
	Drinking       bool   `json:"drinking"`
	SessionState   string `json:"session_state"`

	TodayCount      int     `json:"today_count"`
	MinutesSince    float64 `json:"minutes_since_last"`
	Overdue         bool    `json:"overdue"`
	IntervalMinutes int     `json:"interval_minutes"`
	SoundEnabled    bool    `json:"sound_enabled"`
}

// Server hosts the dashboard: REST under /api, live streams under /ws.
type Server struct {
	app   *fiber.App
	port  string
	store *hydration.Store

	state   Status
	stateMu sync.RWMutex

	// Hubs for websocket broadcast (thread-safe!)
	statusHub *hub.Hub
	eventHub  *hub.Hub
	cameraHub *hub.Hub

	// OnReset fires after a history reset so the detection pipeline can
	// abandon any in-flight drinking session. A sip that spans the reset
	// must not complete into the cleared history.
	OnReset func()
}

// NewServer creates the dashboard server over the given store.
func NewServer(port string, store *hydration.Store) *Server {
	s := &Server{
		port:      port,
		store:     store,
		statusHub: hub.New("status"),
		eventHub:  hub.New("events"),
		cameraHub: hub.New("camera"),
	}

	app := fiber.New(fiber.Config{
		AppName:               "SipSense Dashboard",
		DisableStartupMessage: true,
	})

	// CORS for local development
	app.Use(cors.New())

	// API routes
	api := app.Group("/api")
	api.Get("/status", s.handleStatus)
	api.Get("/stats", s.handleStats)
	api.Get("/events", s.handleEvents)
	api.Put("/config", s.handleUpdateConfig)
	api.Post("/reset", s.handleReset)

	// WebSocket upgrade middleware
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	// WebSocket routes
	app.Get("/ws/status", websocket.New(s.handleStatusWS))
	app.Get("/ws/events", websocket.New(s.handleEventsWS))
	app.Get("/ws/camera", websocket.New(s.handleCameraWS))

	// Embedded dashboard assets, after the API and websocket routes
	app.Use("/", staticHandler())

	s.app = app
	return s
}

// Start starts the web server
func (s *Server) Start() error {
	log.Info("dashboard listening", "addr", "http://localhost:"+s.port)

	// Start all hubs
	go s.statusHub.Run()
	go s.eventHub.Run()
	go s.cameraHub.Run()

	return s.app.Listen(":" + s.port)
}

// StartAsync starts the web server in a goroutine
func (s *Server) StartAsync() {
	go func() {
		if err := s.Start(); err != nil {
			log.Error("web server stopped", "error", err)
		}
	}()
}

// UpdateState applies a mutation to the live status and broadcasts the
// result to every connected client.
func (s *Server) UpdateState(update func(*Status)) {
	s.stateMu.Lock()
	update(&s.state)
	s.refreshStoreFieldsLocked(time.Now())
	state := s.state // Copy for broadcast
	s.stateMu.Unlock()

	s.statusHub.BroadcastJSON(state)
}

// refreshStoreFieldsLocked pulls the store-derived fields into the status.
// Callers hold stateMu.
func (s *Server) refreshStoreFieldsLocked(now time.Time) {
	s.state.Readiness = s.store.Readiness()
	s.state.TodayCount = s.store.TodayCount(now)
	s.state.Overdue = s.store.IsOverdue(now)
	s.state.IntervalMinutes = s.store.IntervalMinutes()
	s.state.SoundEnabled = s.store.SoundEnabled()
	if elapsed, ok := s.store.TimeSinceLastHydration(now); ok {
		s.state.MinutesSince = elapsed.Minutes()
	}
}

// BroadcastEvent pushes a confirmed hydration event to event subscribers.
func (s *Server) BroadcastEvent(ev hydration.Event) {
	s.eventHub.BroadcastJSON(ev)
}

// SendCameraFrame sends a camera frame to all connected clients
func (s *Server) SendCameraFrame(jpegData []byte) {
	s.cameraHub.BroadcastBinary(jpegData)
}

// Shutdown gracefully stops the web server
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}
