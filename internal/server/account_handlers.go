package server

import (
	"time"

	"hushwall/internal/cache"
	"hushwall/internal/models"
	"hushwall/internal/service"
	"hushwall/internal/shape"

	"github.com/gofiber/fiber/v2"
)

// ListAccounts handles GET /user (admin only)
func (s *Server) ListAccounts(c *fiber.Ctx) error {
	id := s.callerIdentity(c)
	page := parsePagination(c, 20)

	list, err := s.accounts.List(c.Context(), id, service.ListAccountsInput{
		Role:        c.Query("role"),
		OldestFirst: c.QueryBool("oldest_first"),
		Limit:       page.Limit,
		Offset:      page.Offset,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(shape.Accounts(list, id.Role()))
}

// GetMyAccount handles GET /user/me
func (s *Server) GetMyAccount(c *fiber.Ctx) error {
	id := s.callerIdentity(c)
	if !id.Authenticated() {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Not logged in"))
	}

	account, err := s.accounts.Get(c.Context(), id, *id.AccountID())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(shape.Account(account, id.Role()))
}

// Login handles POST /user/me
// @Summary Authenticate with handle and password
// @Description Generated passwords are compared verbatim until the owner customizes them; a second login while authenticated is rejected
// @Tags user
// @Accept json
// @Produce json
// @Param request body service.CredentialsInput true "Credentials"
// @Success 200 {object} object{token=string,account=models.Account}
// @Failure 400 {object} models.ErrorResponse
// @Router /user/me [post]
func (s *Server) Login(c *fiber.Ctx) error {
	id := s.callerIdentity(c)

	var req service.CredentialsInput
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	account, err := s.accounts.Authenticate(c.Context(), id, req)
	if err != nil {
		return respondError(c, err)
	}

	token, err := s.generateToken(account.ID, account.Handle)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	id.Account = account
	return c.JSON(fiber.Map{
		"token":   token,
		"account": shape.Account(account, id.Role()),
	})
}

// UpdateMyAccount handles PUT and PATCH /user/me
func (s *Server) UpdateMyAccount(c *fiber.Ctx) error {
	id := s.callerIdentity(c)
	if !id.Authenticated() {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Not logged in"))
	}

	var req service.UpdateAccountInput
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	account, err := s.accounts.Update(c.Context(), id, *id.AccountID(), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(shape.Account(account, id.Role()))
}

// Logout handles GET /user/logout: unbinds the session and revokes the
// presented token until its natural expiry.
func (s *Server) Logout(c *fiber.Ctx) error {
	id := s.callerIdentity(c)

	if jti, ok := c.Locals("tokenJTI").(string); ok && jti != "" {
		ttl := time.Hour * 24 * 7
		if exp, ok := c.Locals("tokenExp").(time.Time); ok {
			ttl = time.Until(exp)
		}
		cache.RevokeToken(c.Context(), jti, ttl)
	}

	if err := s.accounts.Logout(c.Context(), id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Logged out"})
}

// SetAccountRole handles POST /user/:id/role (admin only)
func (s *Server) SetAccountRole(c *fiber.Ctx) error {
	accountID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	id := s.callerIdentity(c)

	var req struct {
		Role string `json:"role"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	account, err := s.accounts.SetRole(c.Context(), id, accountID, req.Role)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(shape.Account(account, id.Role()))
}

// GetAccount handles GET /user/:id
func (s *Server) GetAccount(c *fiber.Ctx) error {
	accountID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	id := s.callerIdentity(c)

	account, err := s.accounts.Get(c.Context(), id, accountID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(shape.Account(account, id.Role()))
}
