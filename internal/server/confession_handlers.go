package server

import (
	"hushwall/internal/models"
	"hushwall/internal/service"
	"hushwall/internal/shape"

	"github.com/gofiber/fiber/v2"
)

// ListConfessions handles GET /entry
// @Summary List confessions
// @Description Approved confessions for everyone, own unapproved ones for the author, everything for staff
// @Tags entry
// @Produce json
// @Param own query bool false "Only the caller's confessions"
// @Param search query string false "Title substring filter"
// @Param sort_by query string false "created, -created, popularity"
// @Success 200 {array} models.Confession
// @Router /entry [get]
func (s *Server) ListConfessions(c *fiber.Ctx) error {
	id := s.callerIdentity(c)
	page := parsePagination(c, 20)

	list, err := s.confessions.List(c.Context(), id, service.ListConfessionsInput{
		Own:    c.QueryBool("own"),
		Search: c.Query("search"),
		SortBy: c.Query("sort_by"),
		Limit:  page.Limit,
		Offset: page.Offset,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(shape.Confessions(list, id.Role()))
}

// CreateConfession handles POST /entry
// @Summary Create a confession
// @Description Anonymous callers get an account provisioned; its credentials are returned exactly once
// @Tags entry
// @Accept json
// @Produce json
// @Success 201 {object} models.Confession
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Router /entry [post]
func (s *Server) CreateConfession(c *fiber.Ctx) error {
	id := s.callerIdentity(c)

	var req struct {
		service.CreateConfessionInput
		BotCheck string `json:"bot_check"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if err := s.checkBot(c, req.BotCheck); err != nil {
		return nil
	}

	confession, provisioned, err := s.confessions.Create(c.Context(), id, req.CreateConfessionInput)
	if err != nil {
		return respondError(c, err)
	}

	shaped := shape.Confession(confession, id.Role())
	if provisioned != nil {
		// First anonymous confession: hand back the generated credentials.
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"confession": shaped,
			"account": fiber.Map{
				"handle":   provisioned.Account.Handle,
				"password": provisioned.Password,
			},
		})
	}
	return c.Status(fiber.StatusCreated).JSON(shaped)
}

// GetConfession handles GET /entry/:id
func (s *Server) GetConfession(c *fiber.Ctx) error {
	confessionID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	id := s.callerIdentity(c)

	confession, err := s.confessions.Get(c.Context(), id, confessionID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(shape.Confession(confession, id.Role()))
}

// UpdateConfession handles PUT and PATCH /entry/:id. Fields the caller may
// not write are silently dropped, not rejected.
func (s *Server) UpdateConfession(c *fiber.Ctx) error {
	confessionID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	id := s.callerIdentity(c)

	var patch shape.ConfessionPatch
	if err := c.BodyParser(&patch); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	confession, err := s.confessions.Update(c.Context(), id, confessionID, patch)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(shape.Confession(confession, id.Role()))
}

// DeleteConfession handles DELETE /entry/:id
func (s *Server) DeleteConfession(c *fiber.Ctx) error {
	confessionID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.confessions.Delete(c.Context(), s.callerIdentity(c), confessionID); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
