package server

import (
	"net/http"
	"testing"

	"reverie/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newNotificationTestApp(s *Server, userID uint) *fiber.App {
	app := fiber.New()
	app.Get("/announcements", s.GetAnnouncements)

	authed := app.Group("", func(c *fiber.Ctx) error {
		c.Locals("userID", userID)
		return c.Next()
	})
	authed.Get("/notifications", s.GetNotifications)
	authed.Get("/notifications/unread-count", s.GetUnreadCount)
	authed.Post("/notifications/read", s.MarkNotificationsRead)
	authed.Post("/notifications/read-all", s.MarkAllNotificationsRead)
	return app
}

func TestNotificationFlow(t *testing.T) {
	t.Parallel()

	s, db := newTestServer(t)
	user := createTestUser(t, db, "recipient")
	actor := createTestUser(t, db, "actor")

	first := &models.Notification{UserID: user.ID, ActorID: actor.ID, Kind: models.NotificationKindFollow}
	second := &models.Notification{UserID: user.ID, ActorID: actor.ID, Kind: models.NotificationKindLike}
	require.NoError(t, db.Create(first).Error)
	require.NoError(t, db.Create(second).Error)

	app := newNotificationTestApp(s, user.ID)

	var countBody struct {
		Count int64 `json:"count"`
	}
	resp, err := app.Test(jsonRequest(t, http.MethodGet, "/notifications/unread-count", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &countBody)
	assert.Equal(t, int64(2), countBody.Count)

	resp, err = app.Test(jsonRequest(t, http.MethodPost, "/notifications/read", map[string]interface{}{
		"ids": []uint{first.ID},
	}))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	_ = resp.Body.Close()

	resp, err = app.Test(jsonRequest(t, http.MethodGet, "/notifications/unread-count", nil))
	require.NoError(t, err)
	decodeBody(t, resp, &countBody)
	assert.Equal(t, int64(1), countBody.Count)

	resp, err = app.Test(jsonRequest(t, http.MethodPost, "/notifications/read-all", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	_ = resp.Body.Close()

	resp, err = app.Test(jsonRequest(t, http.MethodGet, "/notifications/unread-count", nil))
	require.NoError(t, err)
	decodeBody(t, resp, &countBody)
	assert.Equal(t, int64(0), countBody.Count)
}

func TestGetNotifications_OwnOnly(t *testing.T) {
	t.Parallel()

	s, db := newTestServer(t)
	user := createTestUser(t, db, "recipient")
	other := createTestUser(t, db, "other")
	require.NoError(t, db.Create(&models.Notification{UserID: user.ID, ActorID: other.ID, Kind: models.NotificationKindLike}).Error)
	require.NoError(t, db.Create(&models.Notification{UserID: other.ID, ActorID: user.ID, Kind: models.NotificationKindLike}).Error)

	app := newNotificationTestApp(s, user.ID)
	resp, err := app.Test(jsonRequest(t, http.MethodGet, "/notifications", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Notifications []models.Notification `json:"notifications"`
	}
	decodeBody(t, resp, &body)
	require.Len(t, body.Notifications, 1)
	assert.Equal(t, user.ID, body.Notifications[0].UserID)
}
