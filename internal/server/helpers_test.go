package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"reverie/internal/config"
	"reverie/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHumanizeParam(t *testing.T) {
	tests := []struct {
		param    string
		expected string
	}{
		{"id", "ID"},
		{"userId", "user ID"},
		{"commentId", "comment ID"},
		{"stepId", "step ID"},
		{"something", "something"},
	}
	for _, tt := range tests {
		t.Run(tt.param, func(t *testing.T) {
			assert.Equal(t, tt.expected, humanizeParam(tt.param))
		})
	}
}

func TestParsePagination(t *testing.T) {
	app := fiber.New()
	app.Get("/items", func(c *fiber.Ctx) error {
		p := parsePagination(c, 25)
		return c.JSON(fiber.Map{"limit": p.Limit, "offset": p.Offset})
	})

	tests := []struct {
		name           string
		target         string
		expectedLimit  int
		expectedOffset int
	}{
		{"defaults", "/items", 25, 0},
		{"explicit", "/items?limit=10&offset=30", 10, 30},
		{"zero limit falls back", "/items?limit=0", 25, 0},
		{"negative offset clamped", "/items?offset=-5", 25, 0},
		{"limit capped", "/items?limit=9999", maxPaginationLimit, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			resp, err := app.Test(req)
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()

			var body struct {
				Limit  int `json:"limit"`
				Offset int `json:"offset"`
			}
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.Equal(t, tt.expectedLimit, body.Limit)
			assert.Equal(t, tt.expectedOffset, body.Offset)
		})
	}
}

func TestParseUintParam(t *testing.T) {
	app := fiber.New()
	app.Get("/users/:id", func(c *fiber.Ctx) error {
		id, err := parseUintParam(c, "id")
		if err != nil {
			return nil
		}
		return c.JSON(fiber.Map{"id": id})
	})

	t.Run("valid", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/users/42", nil))
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("not a number", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/users/abc", nil))
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("zero rejected", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/users/0", nil))
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestRespondAppError(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		expectedStatus int
	}{
		{"validation", models.NewValidationError("bad"), http.StatusBadRequest},
		{"unauthorized", models.NewUnauthorizedError("no"), http.StatusUnauthorized},
		{"forbidden", models.NewForbiddenError("no"), http.StatusForbidden},
		{"not found", models.NewNotFoundError("dream", "abc"), http.StatusNotFound},
		{"conflict", models.NewConflictError("dup"), http.StatusConflict},
		{"plain error", assert.AnError, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			app.Get("/fail", func(c *fiber.Ctx) error {
				return respondAppError(c, tt.err)
			})
			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/fail", nil))
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
		})
	}
}

func TestOptionalUserID(t *testing.T) {
	s := &Server{config: &config.Config{JWTSecret: "test_secret"}}

	app := fiber.New()
	app.Get("/whoami", func(c *fiber.Ctx) error {
		id, ok := s.optionalUserID(c)
		return c.JSON(fiber.Map{"id": id, "ok": ok})
	})

	token, err := s.generateToken(7, "dreamer")
	require.NoError(t, err)

	tests := []struct {
		name       string
		authHeader string
		expectedID uint
		expectedOK bool
	}{
		{"no header", "", 0, false},
		{"valid token", "Bearer " + token, 7, true},
		{"malformed header", "Token abc", 0, false},
		{"garbage token", "Bearer not-a-jwt", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()

			var body struct {
				ID uint `json:"id"`
				OK bool `json:"ok"`
			}
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.Equal(t, tt.expectedID, body.ID)
			assert.Equal(t, tt.expectedOK, body.OK)
		})
	}
}
