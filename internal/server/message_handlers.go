package server

import (
	"hushwall/internal/models"
	"hushwall/internal/service"
	"hushwall/internal/shape"

	"github.com/gofiber/fiber/v2"
)

// ListConversations handles GET /message: one row per correspondent with a
// running message count.
func (s *Server) ListConversations(c *fiber.Ctx) error {
	conversations, err := s.messages.Conversations(c.Context(), s.callerIdentity(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(conversations)
}

// SendMessage handles POST /message
func (s *Server) SendMessage(c *fiber.Ctx) error {
	id := s.callerIdentity(c)

	var req struct {
		service.SendMessageInput
		BotCheck string `json:"bot_check"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if err := s.checkBot(c, req.BotCheck); err != nil {
		return nil
	}

	message, err := s.messages.Send(c.Context(), id, req.SendMessageInput)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(shape.Message(message, id.Role(), false))
}

// GetThread handles GET /message/:handle: the two-way thread with one
// correspondent, newest first.
func (s *Server) GetThread(c *fiber.Ctx) error {
	id := s.callerIdentity(c)
	handle := c.Params("handle")
	page := parsePagination(c, 50)

	thread, err := s.messages.Thread(c.Context(), id, handle, page.Limit, page.Offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(shape.Messages(thread, id.Role(), true))
}
