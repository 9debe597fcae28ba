// Package service contains the application's business logic layer.
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

const (
	maxTitleLen = 200
	maxBodyLen  = 50000
)

// DreamService owns dream CRUD plus like and comment-count concerns.
type DreamService struct {
	dreamRepo repository.DreamRepository
	tagRepo   repository.TagRepository
	notifRepo repository.NotificationRepository
	notifier  *notifications.Notifier
}

// CreateDreamInput is the payload for creating a dream entry.
type CreateDreamInput struct {
	UserID   uint
	Title    string
	Body     string
	Mood     string
	IsLucid  bool
	IsPublic bool
	ImageURL string
	AudioURL string
	TagIDs   []string
}

// UpdateDreamInput is the payload for editing a dream entry.
type UpdateDreamInput struct {
	UserID  uint
	DreamID string
	Title   string
	Body    string
	Mood    string
	IsLucid bool
	TagIDs  []string
}

// NewDreamService creates a dream service.
func NewDreamService(
	dreamRepo repository.DreamRepository,
	tagRepo repository.TagRepository,
	notifRepo repository.NotificationRepository,
	notifier *notifications.Notifier,
) *DreamService {
	return &DreamService{
		dreamRepo: dreamRepo,
		tagRepo:   tagRepo,
		notifRepo: notifRepo,
		notifier:  notifier,
	}
}

func validateDreamContent(title, body string) error {
	if strings.TrimSpace(title) == "" {
		return models.NewValidationError("Title is required")
	}
	if len(title) > maxTitleLen {
		return models.NewValidationError("Title too long (max 200 characters)")
	}
	if len(body) > maxBodyLen {
		return models.NewValidationError("Body too long (max 50000 characters)")
	}
	return nil
}

func (s *DreamService) CreateDream(ctx context.Context, in CreateDreamInput) (*models.Dream, error) {
	if in.UserID == 0 {
		return nil, models.NewUnauthorizedError("Sign in required")
	}
	if err := validateDreamContent(in.Title, in.Body); err != nil {
		return nil, err
	}

	dream := &models.Dream{
		UserID:   in.UserID,
		Title:    in.Title,
		Body:     in.Body,
		Mood:     in.Mood,
		IsLucid:  in.IsLucid,
		IsPublic: in.IsPublic,
		ImageURL: in.ImageURL,
		AudioURL: in.AudioURL,
	}
	if err := s.dreamRepo.Create(ctx, dream); err != nil {
		return nil, models.NewInternalError(err)
	}
	if len(in.TagIDs) > 0 {
		if err := s.tagRepo.ReplaceDreamTags(ctx, dream, in.TagIDs); err != nil {
			return nil, models.NewInternalError(err)
		}
	}
	return dream, nil
}

// GetDream returns one dream with viewer-scoped counters. Private dreams
// are only visible to their author.
func (s *DreamService) GetDream(ctx context.Context, dreamID string, viewerID uint) (*models.Dream, error) {
	return s.visibleDream(ctx, dreamID, viewerID)
}

// ListUserDreams returns a user's journal. Private entries are included
// only when the viewer is the author.
func (s *DreamService) ListUserDreams(ctx context.Context, userID uint, limit, offset int, viewerID uint) ([]*models.Dream, error) {
	includePrivate := userID == viewerID
	dreams, err := s.dreamRepo.GetByUserID(ctx, userID, limit, offset, viewerID, includePrivate)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return dreams, nil
}

func (s *DreamService) UpdateDream(ctx context.Context, in UpdateDreamInput) (*models.Dream, error) {
	dream, err := s.authorOwned(ctx, in.DreamID, in.UserID)
	if err != nil {
		return nil, err
	}
	if err := validateDreamContent(in.Title, in.Body); err != nil {
		return nil, err
	}

	dream.Title = in.Title
	dream.Body = in.Body
	dream.Mood = in.Mood
	dream.IsLucid = in.IsLucid
	if err := s.dreamRepo.Update(ctx, dream); err != nil {
		return nil, models.NewInternalError(err)
	}
	if in.TagIDs != nil {
		if err := s.tagRepo.ReplaceDreamTags(ctx, dream, in.TagIDs); err != nil {
			return nil, models.NewInternalError(err)
		}
	}
	return dream, nil
}

// SetVisibility flips a dream public or private. Author-only.
func (s *DreamService) SetVisibility(ctx context.Context, dreamID string, userID uint, isPublic bool) error {
	if _, err := s.authorOwned(ctx, dreamID, userID); err != nil {
		return err
	}
	if err := s.dreamRepo.SetVisibility(ctx, dreamID, isPublic); err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// DeleteDream hard-deletes a dream and its likes and comments. Author-only.
func (s *DreamService) DeleteDream(ctx context.Context, dreamID string, userID uint) error {
	if _, err := s.authorOwned(ctx, dreamID, userID); err != nil {
		return err
	}
	if err := s.dreamRepo.Delete(ctx, dreamID); err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// Like records the viewer's like on a dream and notifies the author. The
// session mutators call this directly; they track the toggle direction
// themselves.
func (s *DreamService) Like(ctx context.Context, dreamID string, userID uint) error {
	dream, err := s.visibleDream(ctx, dreamID, userID)
	if err != nil {
		return err
	}
	if err := s.dreamRepo.Like(ctx, userID, dreamID); err != nil {
		return models.NewInternalError(err)
	}
	s.notifyAuthor(ctx, dream, userID, models.NotificationKindLike)
	return nil
}

// Unlike removes the viewer's like. Removing an absent like is a no-op.
func (s *DreamService) Unlike(ctx context.Context, dreamID string, userID uint) error {
	if err := s.dreamRepo.Unlike(ctx, userID, dreamID); err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// ToggleLike flips the viewer's like and returns the new liked state and
// count. The author gets a notification the first time a like lands.
func (s *DreamService) ToggleLike(ctx context.Context, dreamID string, userID uint) (liked bool, likeCount int, err error) {
	dream, err := s.visibleDream(ctx, dreamID, userID)
	if err != nil {
		return false, 0, err
	}

	if dream.ViewerHasLiked {
		if err := s.Unlike(ctx, dreamID, userID); err != nil {
			return false, 0, err
		}
	} else {
		if err := s.Like(ctx, dreamID, userID); err != nil {
			return false, 0, err
		}
	}

	count, err := s.dreamRepo.LikeCount(ctx, dreamID)
	if err != nil {
		return !dream.ViewerHasLiked, 0, models.NewInternalError(err)
	}
	return !dream.ViewerHasLiked, count, nil
}

// visibleDream loads a dream the viewer is allowed to see. Private dreams
// read by anyone but their author surface as not-found.
func (s *DreamService) visibleDream(ctx context.Context, dreamID string, viewerID uint) (*models.Dream, error) {
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
	return dream, nil
}

func (s *DreamService) authorOwned(ctx context.Context, dreamID string, userID uint) (*models.Dream, error) {
	dream, err := s.dreamRepo.GetByID(ctx, dreamID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Dream", dreamID)
		}
		return nil, models.NewInternalError(err)
	}
	if dream.UserID != userID {
		return nil, models.NewForbiddenError("Only the author can modify this dream")
	}
	return dream, nil
}

// notifyAuthor persists a notification and pushes it to the author's live
// connections. Best-effort: a delivery failure never fails the mutation.
func (s *DreamService) notifyAuthor(ctx context.Context, dream *models.Dream, actorID uint, kind string) {
	if dream.UserID == actorID || s.notifRepo == nil {
		return
	}
	notification := &models.Notification{
		UserID:  dream.UserID,
		ActorID: actorID,
		Kind:    kind,
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
