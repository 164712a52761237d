package server

import (
	"errors"
	"strings"

	"hushwall/internal/identity"
	"hushwall/internal/models"
	"hushwall/internal/validation"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// errResponseWritten is a sentinel indicating the HTTP response was already
// committed by a helper.  Handlers must return nil (not this error) to avoid
// Fiber's ErrorHandler overwriting the response.
var errResponseWritten = errors.New("response already written")

const identityLocal = "identity"

// skipIdentityPaths lists route prefixes that never need a resolved session.
var skipIdentityPaths = []string{"/health", "/metrics", "/swagger"}

// WithIdentity resolves the caller into an Identity: the address-keyed
// session plus, when a valid bearer token was presented, the account. The
// result is stored in locals for the handlers.
func (s *Server) WithIdentity() fiber.Handler {
	return func(c *fiber.Ctx) error {
		path := c.Path()
		for _, prefix := range skipIdentityPaths {
			if strings.HasPrefix(path, prefix) {
				return c.Next()
			}
		}

		var tokenAccountID *uint
		if v, ok := c.Locals("accountID").(uint); ok {
			tokenAccountID = &v
		}

		id, err := s.resolver.Resolve(c.Context(), c.IP(), tokenAccountID)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(err))
		}

		c.Locals(identityLocal, id)
		return c.Next()
	}
}

// callerIdentity returns the identity resolved by WithIdentity. The zero
// identity is returned on routes that skip resolution.
func (s *Server) callerIdentity(c *fiber.Ctx) identity.Identity {
	if id, ok := c.Locals(identityLocal).(identity.Identity); ok {
		return id
	}
	return identity.Identity{}
}

// Pagination holds parsed limit/offset query parameters.
type Pagination struct {
	Limit  int
	Offset int
}

const maxPaginationLimit = 100

// parsePagination extracts limit and offset query parameters with the given default limit.
func parsePagination(c *fiber.Ctx, defaultLimit int) Pagination {
	limit := c.QueryInt("limit", defaultLimit)
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxPaginationLimit {
		limit = maxPaginationLimit
	}

	offset := c.QueryInt("offset", 0)
	if offset < 0 {
		offset = 0
	}

	return Pagination{
		Limit:  limit,
		Offset: offset,
	}
}

// parseID extracts a route parameter by name as a positive uint.
// On failure it writes a 400 JSON response and returns errResponseWritten.
// Callers should check: if err != nil { return nil }
func (s *Server) parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := c.ParamsInt(param)
	if err != nil || id <= 0 {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid ID"))
		return 0, errResponseWritten
	}
	return uint(id), nil
}

// queryUint reads an optional positive-integer query parameter.
func queryUint(c *fiber.Ctx, name string) *uint {
	v := c.QueryInt(name, 0)
	if v <= 0 {
		return nil
	}
	u := uint(v)
	return &u
}

// statusForCode maps application error codes to HTTP status codes. Policy
// violations share 403 with authorization denials; duplicates and malformed
// input are 400.
func statusForCode(code string) int {
	switch code {
	case "VALIDATION_ERROR":
		return fiber.StatusBadRequest
	case "UNAUTHORIZED":
		return fiber.StatusUnauthorized
	case "FORBIDDEN", "POLICY_VIOLATION":
		return fiber.StatusForbidden
	case "NOT_FOUND":
		return fiber.StatusNotFound
	default:
		return fiber.StatusInternalServerError
	}
}

// respondError renders a service error with the right status code.
func respondError(c *fiber.Ctx, err error) error {
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		return models.RespondWithError(c, statusForCode(appErr.Code), appErr)
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewValidationError("Not found"))
	}
	return models.RespondWithError(c, fiber.StatusInternalServerError,
		models.NewInternalError(err))
}

// checkBot verifies the bot_check token carried by create-type requests.
// On failure it writes a 400 response and returns errResponseWritten.
func (s *Server) checkBot(c *fiber.Ctx, token string) error {
	if err := s.botChecker.Verify(c.Context(), token); err != nil {
		if errors.Is(err, validation.ErrBotCheckFailed) {
			_ = models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Bot check failed"))
		} else {
			_ = models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(err))
		}
		return errResponseWritten
	}
	return nil
}
