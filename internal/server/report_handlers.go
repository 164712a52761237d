package server

import (
	"hushwall/internal/models"
	"hushwall/internal/service"
	"hushwall/internal/shape"

	"github.com/gofiber/fiber/v2"
)

// ListReports handles GET /report (staff only)
func (s *Server) ListReports(c *fiber.Ctx) error {
	id := s.callerIdentity(c)
	page := parsePagination(c, 20)

	list, err := s.reports.List(c.Context(), id, service.ListReportsInput{
		ConfessionID: queryUint(c, "confession"),
		CommentID:    queryUint(c, "comment"),
		SortBy:       c.Query("sort_by"),
		Limit:        page.Limit,
		Offset:       page.Offset,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(shape.Reports(list, id.Role()))
}

// CreateReport handles POST /report
func (s *Server) CreateReport(c *fiber.Ctx) error {
	id := s.callerIdentity(c)

	var req struct {
		service.CreateReportInput
		BotCheck string `json:"bot_check"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if err := s.checkBot(c, req.BotCheck); err != nil {
		return nil
	}

	report, err := s.reports.Create(c.Context(), id, req.CreateReportInput)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(shape.Report(report, id.Role()))
}

// GetReport handles GET /report/:id (staff only)
func (s *Server) GetReport(c *fiber.Ctx) error {
	reportID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	id := s.callerIdentity(c)

	report, err := s.reports.Get(c.Context(), id, reportID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(shape.Report(report, id.Role()))
}

// VoteReport handles POST /report/:id/vote
// @Summary Vote for removal of a reported target
// @Description At three distinct voters the reported confession or comment is removed; the report survives with its reference nulled
// @Tags report
// @Produce json
// @Success 200 {object} models.Report
// @Failure 400 {object} models.ErrorResponse "Duplicate vote"
// @Failure 403 {object} models.ErrorResponse
// @Router /report/{id}/vote [post]
func (s *Server) VoteReport(c *fiber.Ctx) error {
	reportID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	id := s.callerIdentity(c)

	report, err := s.reports.Vote(c.Context(), id, reportID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(shape.Report(report, id.Role()))
}

// DeleteReport handles DELETE /report/:id (staff only)
func (s *Server) DeleteReport(c *fiber.Ctx) error {
	reportID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.reports.Delete(c.Context(), s.callerIdentity(c), reportID); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
