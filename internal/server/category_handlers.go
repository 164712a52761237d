package server

import (
	"hushwall/internal/models"
	"hushwall/internal/service"

	"github.com/gofiber/fiber/v2"
)

// ListCategories handles GET /category
func (s *Server) ListCategories(c *fiber.Ctx) error {
	categories, err := s.categories.List(c.Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(categories)
}

// GetCategory handles GET /category/:id
func (s *Server) GetCategory(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	category, err := s.categories.Get(c.Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(category)
}

// CreateCategory handles POST /category (admin only)
func (s *Server) CreateCategory(c *fiber.Ctx) error {
	var req service.CategoryInput
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	category, err := s.categories.Create(c.Context(), s.callerIdentity(c), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(category)
}

// UpdateCategory handles PUT /category/:id (admin only)
func (s *Server) UpdateCategory(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req service.CategoryInput
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	category, err := s.categories.Update(c.Context(), s.callerIdentity(c), id, req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(category)
}

// DeleteCategory handles DELETE /category/:id (admin only)
func (s *Server) DeleteCategory(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.categories.Delete(c.Context(), s.callerIdentity(c), id); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
