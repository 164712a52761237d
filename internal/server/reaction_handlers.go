package server

import (
	"hushwall/internal/models"
	"hushwall/internal/service"
	"hushwall/internal/shape"

	"github.com/gofiber/fiber/v2"
)

// ListReactions handles GET /reaction
// @Summary List reactions
// @Description With own=true, the caller's reactions; otherwise the per-emoji histogram for one confession or comment
// @Tags reaction
// @Produce json
// @Param own query bool false "Caller's own reactions"
// @Param confession query int false "Histogram target confession"
// @Param comment query int false "Histogram target comment"
// @Success 200 {array} models.EmojiBucket
// @Failure 400 {object} models.ErrorResponse
// @Router /reaction [get]
func (s *Server) ListReactions(c *fiber.Ctx) error {
	id := s.callerIdentity(c)

	if c.QueryBool("own") {
		page := parsePagination(c, 50)
		list, err := s.reactions.ListOwn(c.Context(), id, page.Limit, page.Offset)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(shape.Reactions(list, id.Role()))
	}

	buckets, err := s.reactions.Histogram(c.Context(), id, service.HistogramInput{
		ConfessionID: queryUint(c, "confession"),
		CommentID:    queryUint(c, "comment"),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(buckets)
}

// CreateReaction handles POST /reaction
func (s *Server) CreateReaction(c *fiber.Ctx) error {
	id := s.callerIdentity(c)

	var req struct {
		service.CreateReactionInput
		BotCheck string `json:"bot_check"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if err := s.checkBot(c, req.BotCheck); err != nil {
		return nil
	}

	reaction, err := s.reactions.Create(c.Context(), id, req.CreateReactionInput)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(shape.Reaction(reaction, id.Role()))
}

// DeleteReaction handles DELETE /reaction/:id
func (s *Server) DeleteReaction(c *fiber.Ctx) error {
	reactionID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.reactions.Delete(c.Context(), s.callerIdentity(c), reactionID); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
