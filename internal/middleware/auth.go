// Package middleware provides authentication, logging, rate limiting, and
// metrics middleware for the application.
package middleware

import (
	"strconv"
	"strings"

	"reverie/internal/config"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

var cfg *config.Config

// InitMiddleware initializes authentication middleware with the given config.
func InitMiddleware(c *config.Config) {
	cfg = c
}

func unauthorized(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": msg})
}

// bearerToken extracts the token from an "Authorization: Bearer x" header.
func bearerToken(c *fiber.Ctx) (string, bool) {
	header := c.Get("Authorization")
	parts := strings.Split(header, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// AuthRequired rejects requests without a valid bearer token and stores the
// authenticated user ID in Locals for downstream handlers.
func AuthRequired(c *fiber.Ctx) error {
	token, ok := bearerToken(c)
	if !ok {
		return unauthorized(c, "Authorization header required")
	}

	userID, err := parseUserID(token)
	if err != nil {
		return unauthorized(c, err.Error())
	}

	c.Locals("userID", userID)
	return c.Next()
}

// WebSocketAuthRequired accepts the token from the "token" query parameter,
// since browser WebSocket clients cannot set request headers, and falls back
// to the Authorization header for other clients.
func WebSocketAuthRequired(c *fiber.Ctx) error {
	token := c.Query("token")
	if token == "" {
		var ok bool
		if token, ok = bearerToken(c); !ok {
			return unauthorized(c, "Token required")
		}
	}

	userID, err := parseUserID(token)
	if err != nil {
		return unauthorized(c, err.Error())
	}

	c.Locals("userID", userID)
	return c.Next()
}

// parseUserID validates the signature and expiry, then reads the user ID
// from the registered "sub" claim.
func parseUserID(tokenString string) (uint, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid signing method")
		}
		return []byte(cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return 0, fiber.NewError(fiber.StatusUnauthorized, "Invalid or expired token")
	}

	if claims.Subject == "" {
		return 0, fiber.NewError(fiber.StatusUnauthorized, "Token missing subject")
	}
	id, err := strconv.ParseUint(claims.Subject, 10, 32)
	if err != nil {
		return 0, fiber.NewError(fiber.StatusUnauthorized, "Invalid user ID in token")
	}
	return uint(id), nil
}
