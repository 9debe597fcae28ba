package server

import (
	"net/http"
	"testing"
	"time"

	"reverie/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSubscriptionTestApp(s *Server, userID uint) *fiber.App {
	app := fiber.New()
	app.Post("/subscriptions/webhook", s.SubscriptionWebhook)

	authed := app.Group("", func(c *fiber.Ctx) error {
		c.Locals("userID", userID)
		return c.Next()
	})
	authed.Get("/subscriptions/me", s.GetMySubscription)
	authed.Delete("/subscriptions/me", s.CancelSubscription)
	return app
}

func TestGetMySubscription_DefaultsToCanceled(t *testing.T) {
	t.Parallel()

	s, db := newTestServer(t)
	user := createTestUser(t, db, "freeloader")
	app := newSubscriptionTestApp(s, user.ID)

	resp, err := app.Test(jsonRequest(t, http.MethodGet, "/subscriptions/me", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var sub models.Subscription
	decodeBody(t, resp, &sub)
	assert.Equal(t, "canceled", sub.Status)
}

func TestSubscriptionWebhook(t *testing.T) {
	t.Parallel()

	s, db := newTestServer(t)
	s.config.FunctionsAPIKey = "hook_secret"
	user := createTestUser(t, db, "subscriber")
	require.NoError(t, db.Create(&models.Subscription{
		UserID:            user.ID,
		Plan:              "dreamer-monthly",
		Status:            "pending",
		CheckoutSessionID: "cs_123",
	}).Error)

	app := newSubscriptionTestApp(s, user.ID)
	periodEnd := time.Now().Add(30 * 24 * time.Hour).UTC().Format(time.RFC3339)

	t.Run("missing key rejected", func(t *testing.T) {
		req := jsonRequest(t, http.MethodPost, "/subscriptions/webhook", map[string]interface{}{
			"userId":    user.ID,
			"sessionId": "cs_123",
			"periodEnd": periodEnd,
		})
		resp, err := app.Test(req)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("session mismatch conflicts", func(t *testing.T) {
		req := jsonRequest(t, http.MethodPost, "/subscriptions/webhook", map[string]interface{}{
			"userId":    user.ID,
			"sessionId": "cs_wrong",
			"periodEnd": periodEnd,
		})
		req.Header.Set("X-Api-Key", "hook_secret")
		resp, err := app.Test(req)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
	})

	t.Run("activates pending subscription", func(t *testing.T) {
		req := jsonRequest(t, http.MethodPost, "/subscriptions/webhook", map[string]interface{}{
			"userId":    user.ID,
			"sessionId": "cs_123",
			"periodEnd": periodEnd,
		})
		req.Header.Set("X-Api-Key", "hook_secret")
		resp, err := app.Test(req)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var stored models.Subscription
		require.NoError(t, db.Where("user_id = ?", user.ID).First(&stored).Error)
		assert.Equal(t, "active", stored.Status)
		require.NotNil(t, stored.CurrentPeriodEnd)
	})
}

func TestCancelSubscription(t *testing.T) {
	t.Parallel()

	s, db := newTestServer(t)
	user := createTestUser(t, db, "quitter")
	require.NoError(t, db.Create(&models.Subscription{
		UserID: user.ID,
		Plan:   "dreamer-monthly",
		Status: "active",
	}).Error)

	app := newSubscriptionTestApp(s, user.ID)
	resp, err := app.Test(jsonRequest(t, http.MethodDelete, "/subscriptions/me", nil))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var stored models.Subscription
	require.NoError(t, db.Where("user_id = ?", user.ID).First(&stored).Error)
	assert.Equal(t, "canceled", stored.Status)
}
