package server

import (
	"reverie/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetNotifications handles GET /api/notifications
func (s *Server) GetNotifications(c *fiber.Ctx) error {
	p := parsePagination(c, 50)

	notifs, err := s.notificationService.List(c.UserContext(), currentUserID(c), p.Limit, p.Offset)
	if err != nil {
		return respondAppError(c, err)
	}
	return c.JSON(fiber.Map{"notifications": notifs})
}

// GetUnreadCount handles GET /api/notifications/unread-count
func (s *Server) GetUnreadCount(c *fiber.Ctx) error {
	count, err := s.notificationService.UnreadCount(c.UserContext(), currentUserID(c))
	if err != nil {
		return respondAppError(c, err)
	}
	return c.JSON(fiber.Map{"count": count})
}

// MarkNotificationsRead handles POST /api/notifications/read
func (s *Server) MarkNotificationsRead(c *fiber.Ctx) error {
	var req struct {
		IDs []uint `json:"ids"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	if err := s.notificationService.MarkRead(c.UserContext(), currentUserID(c), req.IDs); err != nil {
		return respondAppError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Notifications marked read"})
}

// MarkAllNotificationsRead handles POST /api/notifications/read-all
func (s *Server) MarkAllNotificationsRead(c *fiber.Ctx) error {
	if err := s.notificationService.MarkAllRead(c.UserContext(), currentUserID(c)); err != nil {
		return respondAppError(c, err)
	}
	return c.JSON(fiber.Map{"message": "All notifications marked read"})
}

// GetAnnouncements handles GET /api/announcements
func (s *Server) GetAnnouncements(c *fiber.Ctx) error {
	announcements, err := s.notificationService.ActiveAnnouncements(c.UserContext())
	if err != nil {
		return respondAppError(c, err)
	}
	return c.JSON(fiber.Map{"announcements": announcements})
}
