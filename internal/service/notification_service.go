package service

import (
	"context"

	"reverie/internal/models"
	"reverie/internal/repository"
)

// NotificationService serves a user's notification inbox and active
// site-wide announcements.
type NotificationService struct {
	notifRepo repository.NotificationRepository
}

// NewNotificationService creates a notification service.
func NewNotificationService(notifRepo repository.NotificationRepository) *NotificationService {
	return &NotificationService{notifRepo: notifRepo}
}

func (s *NotificationService) List(ctx context.Context, userID uint, limit, offset int) ([]*models.Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	notifications, err := s.notifRepo.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return notifications, nil
}

func (s *NotificationService) UnreadCount(ctx context.Context, userID uint) (int64, error) {
	count, err := s.notifRepo.UnreadCount(ctx, userID)
	if err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

// MarkRead marks the given notification IDs read. Only the owner's rows
// are touched.
func (s *NotificationService) MarkRead(ctx context.Context, userID uint, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	if err := s.notifRepo.MarkRead(ctx, userID, ids); err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID uint) error {
	if err := s.notifRepo.MarkAllRead(ctx, userID); err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (s *NotificationService) ActiveAnnouncements(ctx context.Context) ([]*models.Announcement, error) {
	announcements, err := s.notifRepo.ActiveAnnouncements(ctx)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return announcements, nil
}
