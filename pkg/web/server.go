// Package web provides a local observability and control bridge for a
// running assistant engine: a small Fiber server exposing the session
// log and engine status over HTTP, plus live event streams over
// websockets.
package web

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"

	"github.com/solace-ai/go-concierge/internal/log"
	"github.com/solace-ai/go-concierge/pkg/assistant"
	"github.com/solace-ai/go-concierge/pkg/hub"
)

// StateEvent is one subsystem state change pushed to /ws/state.
type StateEvent struct {
	Component string `json:"component"`
	State     string `json:"state"`
}

// Server is the bridge server for one engine instance.
type Server struct {
	app    *fiber.App
	addr   string
	engine *assistant.Engine
	logger *slog.Logger

	messageHub *hub.Hub
	stateHub   *hub.Hub
}

// NewServer wires a bridge around an engine. It installs itself as the
// engine's event observer, so create it before Init.
func NewServer(addr string, engine *assistant.Engine) *Server {
	s := &Server{
		addr:       addr,
		engine:     engine,
		logger:     log.Component("web"),
		messageHub: hub.New("messages"),
		stateHub:   hub.New("state"),
	}

	engine.SetEvents(assistant.Events{
		Message: func(m assistant.Message) {
			if err := s.messageHub.BroadcastJSON(m); err != nil {
				s.logger.Warn("message broadcast failed", "error", err)
			}
		},
		State: func(component, state string) {
			s.stateHub.BroadcastJSON(StateEvent{Component: component, State: state})
		},
	})

	app := fiber.New(fiber.Config{
		AppName:               "concierge bridge",
		DisableStartupMessage: true,
	})

	// CORS for local development.
	app.Use(cors.New())

	api := app.Group("/api")
	api.Get("/status", s.handleStatus)
	api.Get("/conversation", s.handleConversation)
	api.Post("/message", s.handleMessage)
	api.Post("/gesture", s.handleGesture)
	api.Post("/persona/:id", s.handlePersona)
	api.Post("/language/:code", s.handleLanguage)

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/messages", websocket.New(s.handleMessagesWS))
	app.Get("/ws/state", websocket.New(s.handleStateWS))

	s.app = app
	return s
}

// Start runs the hubs and serves until Shutdown.
func (s *Server) Start() error {
	s.logger.Info("bridge listening", "addr", s.addr)
	go s.messageHub.Run()
	go s.stateHub.Run()
	return s.app.Listen(s.addr)
}

// StartAsync serves in a goroutine.
func (s *Server) StartAsync() {
	go func() {
		if err := s.Start(); err != nil {
			s.logger.Error("bridge server stopped", "error", err)
		}
	}()
}

// Shutdown stops the server and disconnects stream clients.
func (s *Server) Shutdown() error {
	s.messageHub.Stop()
	s.stateHub.Stop()
	return s.app.Shutdown()
}

// App exposes the Fiber app for tests.
func (s *Server) App() *fiber.App {
	return s.app
}
