package web

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/solace-ai/go-concierge/pkg/assistant"
	"github.com/solace-ai/go-concierge/pkg/hub"
)

// handleStatus returns the engine's point-in-time status.
func (s *Server) handleStatus(c *fiber.Ctx) error {
	return c.JSON(s.engine.Status())
}

// handleConversation returns the session message log.
func (s *Server) handleConversation(c *fiber.Ctx) error {
	return c.JSON(s.engine.Messages())
}

// MessageRequest is the body for POST /api/message.
type MessageRequest struct {
	Text string `json:"text"`
}

// handleMessage routes one user utterance through the engine and
// returns the assistant's reply.
func (s *Server) handleMessage(c *fiber.Ctx) error {
	var req MessageRequest
	if err := c.BodyParser(&req); err != nil || req.Text == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "text required",
		})
	}

	reply, err := s.engine.HandleText(c.Context(), req.Text)
	switch {
	case errors.Is(err, assistant.ErrBusy):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "a reply is already in flight",
		})
	case err != nil:
		// The engine already appended a user-facing notice; surface
		// both.
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error":   err.Error(),
			"message": reply,
		})
	}
	return c.JSON(reply)
}

// handleGesture reports a user gesture, releasing deferred audio.
func (s *Server) handleGesture(c *fiber.Ctx) error {
	s.engine.NotifyGesture(c.Context())
	return c.SendStatus(fiber.StatusNoContent)
}

// handlePersona switches the active persona.
func (s *Server) handlePersona(c *fiber.Ctx) error {
	s.engine.SetPersona(c.Context(), c.Params("id"))
	return c.JSON(s.engine.Persona())
}

// handleLanguage switches the session language.
func (s *Server) handleLanguage(c *fiber.Ctx) error {
	s.engine.SetLanguage(c.Params("code"))
	return c.JSON(s.engine.Language())
}

// handleMessagesWS streams appended messages. The backlog is replayed
// on connect.
func (s *Server) handleMessagesWS(c *websocket.Conn) {
	for _, msg := range s.engine.Messages() {
		if err := c.WriteJSON(msg); err != nil {
			c.Close()
			return
		}
	}
	hub.NewClient(s.messageHub, c).Run()
}

// handleStateWS streams subsystem state changes.
func (s *Server) handleStateWS(c *websocket.Conn) {
	hub.NewClient(s.stateHub, c).Run()
}
