package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"reverie/internal/models"
	"reverie/internal/notifications"
	"reverie/internal/repository"

	"gorm.io/gorm"
)

const maxCommentLen = 2000

// CommentService owns comment CRUD on dreams.
type CommentService struct {
	commentRepo repository.CommentRepository
	dreamRepo   repository.DreamRepository
	notifRepo   repository.NotificationRepository
	notifier    *notifications.Notifier
}

// NewCommentService creates a comment service.
func NewCommentService(
	commentRepo repository.CommentRepository,
	dreamRepo repository.DreamRepository,
	notifRepo repository.NotificationRepository,
	notifier *notifications.Notifier,
) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		dreamRepo:   dreamRepo,
		notifRepo:   notifRepo,
		notifier:    notifier,
	}
}

func (s *CommentService) CreateComment(ctx context.Context, userID uint, dreamID, body string) (*models.Comment, error) {
	if strings.TrimSpace(body) == "" {
		return nil, models.NewValidationError("Comment body is required")
	}
	if len(body) > maxCommentLen {
		return nil, models.NewValidationError("Comment too long (max 2000 characters)")
	}

	dream, err := s.dreamRepo.GetByID(ctx, dreamID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Dream", dreamID)
		}
		return nil, models.NewInternalError(err)
	}
	if !dream.IsPublic && dream.UserID != userID {
		return nil, models.NewNotFoundError("Dream", dreamID)
	}

	comment := &models.Comment{DreamID: dreamID, UserID: userID, Body: body}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, models.NewInternalError(err)
	}

	s.notifyAuthor(ctx, dream, userID)
	return comment, nil
}

func (s *CommentService) ListComments(ctx context.Context, dreamID string, limit, offset int, viewerID uint) ([]*models.Comment, error) {
	dream, err := s.dreamRepo.GetByID(ctx, dreamID, viewerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Dream", dreamID)
		}
		return nil, models.NewInternalError(err)
	}
	if !dream.IsPublic && dream.UserID != viewerID {
		return nil, models.NewNotFoundError("Dream", dreamID)
	}

	if limit <= 0 || limit > 100 {
		limit = 50
	}
	comments, err := s.commentRepo.GetByDreamID(ctx, dreamID, limit, offset)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return comments, nil
}

func (s *CommentService) UpdateComment(ctx context.Context, commentID uint, userID uint, body string) (*models.Comment, error) {
	if strings.TrimSpace(body) == "" {
		return nil, models.NewValidationError("Comment body is required")
	}

	comment, err := s.ownedComment(ctx, commentID, userID)
	if err != nil {
		return nil, err
	}
	comment.Body = body
	if err := s.commentRepo.Update(ctx, comment); err != nil {
		return nil, models.NewInternalError(err)
	}
	return comment, nil
}

func (s *CommentService) DeleteComment(ctx context.Context, commentID uint, userID uint) error {
	if _, err := s.ownedComment(ctx, commentID, userID); err != nil {
		return err
	}
	if err := s.commentRepo.Delete(ctx, commentID); err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (s *CommentService) ownedComment(ctx context.Context, commentID, userID uint) (*models.Comment, error) {
	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Comment", commentID)
		}
		return nil, models.NewInternalError(err)
	}
	if comment.UserID != userID {
		return nil, models.NewForbiddenError("Only the author can modify this comment")
	}
	return comment, nil
}

func (s *CommentService) notifyAuthor(ctx context.Context, dream *models.Dream, actorID uint) {
	if dream.UserID == actorID || s.notifRepo == nil {
		return
	}
	notification := &models.Notification{
		UserID:  dream.UserID,
		ActorID: actorID,
		Kind:    models.NotificationKindComment,
		DreamID: &dream.ID,
	}
	if err := s.notifRepo.Create(ctx, notification); err != nil {
		return
	}
	if s.notifier != nil {
		if payload, err := json.Marshal(notification); err == nil {
			_ = s.notifier.PublishUser(ctx, dream.UserID, string(payload))
		}
	}
}
