package server

import (
	"time"

	"hushwall/internal/models"
	"hushwall/internal/repository"
	"hushwall/internal/service"

	"github.com/gofiber/fiber/v2"
)

// ListBlocks handles GET /blocklist (admin only)
func (s *Server) ListBlocks(c *fiber.Ctx) error {
	page := parsePagination(c, 20)

	entries, err := s.blocklist.List(c.Context(), s.callerIdentity(c), repository.BlocklistListOptions{
		SessionAddress: c.Query("session"),
		OrderBy:        c.Query("order_by"),
		Limit:          page.Limit,
		Offset:         page.Offset,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(entries)
}

// CreateBlock handles POST /blocklist (admin only)
// @Summary Ban an account or a session
// @Description Targets an account by handle or a session by address, never both; a missing expiry is a permanent ban
// @Tags blocklist
// @Accept json
// @Produce json
// @Param request body service.BlockInput true "Block target"
// @Success 201 {object} models.BlocklistEntry
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Router /blocklist [post]
func (s *Server) CreateBlock(c *fiber.Ctx) error {
	var req service.BlockInput
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	entry, err := s.blocklist.Block(c.Context(), s.callerIdentity(c), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(entry)
}

// GetBlock handles GET /blocklist/:id (admin only)
func (s *Server) GetBlock(c *fiber.Ctx) error {
	entryID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	entry, err := s.blocklist.Get(c.Context(), s.callerIdentity(c), entryID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(entry)
}

// UpdateBlock handles PUT /blocklist/:id: only the expiry is mutable.
func (s *Server) UpdateBlock(c *fiber.Ctx) error {
	entryID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Expires *time.Time `json:"expires"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	entry, err := s.blocklist.Update(c.Context(), s.callerIdentity(c), entryID, req.Expires)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(entry)
}

// DeleteBlock handles DELETE /blocklist/:id (admin only)
func (s *Server) DeleteBlock(c *fiber.Ctx) error {
	entryID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.blocklist.Unblock(c.Context(), s.callerIdentity(c), entryID); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
