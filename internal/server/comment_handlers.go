package server

import (
	"hushwall/internal/models"
	"hushwall/internal/service"
	"hushwall/internal/shape"

	"github.com/gofiber/fiber/v2"
)

// ListComments handles GET /comment
func (s *Server) ListComments(c *fiber.Ctx) error {
	id := s.callerIdentity(c)
	page := parsePagination(c, 20)

	list, err := s.comments.List(c.Context(), id, service.ListCommentsInput{
		ConfessionID: queryUint(c, "confession"),
		Own:          c.QueryBool("own"),
		Limit:        page.Limit,
		Offset:       page.Offset,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(shape.Comments(list, id.Role()))
}

// CreateComment handles POST /comment
func (s *Server) CreateComment(c *fiber.Ctx) error {
	id := s.callerIdentity(c)

	var req struct {
		service.CreateCommentInput
		BotCheck string `json:"bot_check"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if err := s.checkBot(c, req.BotCheck); err != nil {
		return nil
	}

	comment, err := s.comments.Create(c.Context(), id, req.CreateCommentInput)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(shape.Comment(comment, id.Role()))
}

// GetComment handles GET /comment/:id
func (s *Server) GetComment(c *fiber.Ctx) error {
	commentID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	comment, err := s.comments.Get(c.Context(), commentID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(shape.Comment(comment, s.callerIdentity(c).Role()))
}

// DeleteComment handles DELETE /comment/:id
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	commentID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.comments.Delete(c.Context(), s.callerIdentity(c), commentID); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
