// Package middleware provides authentication and authorization middleware for the application.
package middleware

import (
	"strconv"
	"strings"
	"time"

	"hushwall/internal/cache"
	"hushwall/internal/config"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

var cfg *config.Config

// InitMiddleware initializes authentication middleware with the given config.
func InitMiddleware(c *config.Config) {
	cfg = c
}

// unauthorized writes a 401 response and reports the request as handled.
func unauthorized(c *fiber.Ctx, msg string) (bool, error) {
	return true, c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"error": msg,
	})
}

// parseBearer validates the bearer token and stores the account id and token
// id in Fiber locals. handled is true when a response was already written; a
// missing header is not an error here.
func parseBearer(c *fiber.Ctx) (handled bool, err error) {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return false, nil
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return unauthorized(c, "Invalid authorization header format")
	}

	token, parseErr := jwt.Parse(parts[1], func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid signing method")
		}
		return []byte(cfg.JWTSecret), nil
	})
	if parseErr != nil || !token.Valid {
		return unauthorized(c, "Invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return unauthorized(c, "Invalid token claims")
	}

	subStr, ok := claims["sub"].(string)
	if !ok {
		return unauthorized(c, "Invalid token structure - missing subject")
	}
	accountIDVal, convErr := strconv.ParseUint(subStr, 10, 32)
	if convErr != nil {
		return unauthorized(c, "Invalid account ID in token")
	}

	// Logout revokes the token id until its natural expiry.
	if jti, ok := claims["jti"].(string); ok {
		if cache.TokenRevoked(c.Context(), jti) {
			return unauthorized(c, "Token has been revoked")
		}
		c.Locals("tokenJTI", jti)
		if exp, ok := claims["exp"].(float64); ok {
			c.Locals("tokenExp", time.Unix(int64(exp), 0))
		}
	}

	c.Locals("accountID", uint(accountIDVal))
	return false, nil
}

// AuthOptional validates a bearer token when one is supplied but lets
// anonymous requests through. Most of the API works this way: the caller's
// session carries identity even without a token.
func AuthOptional(c *fiber.Ctx) error {
	if handled, err := parseBearer(c); handled {
		return err
	}
	return c.Next()
}

// AuthRequired is a middleware that enforces authentication for protected routes.
func AuthRequired(c *fiber.Ctx) error {
	if c.Get("Authorization") == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Authorization header required",
		})
	}
	if handled, err := parseBearer(c); handled {
		return err
	}
	return c.Next()
}
