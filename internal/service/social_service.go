package service

import (
	"context"
	"encoding/json"

	"reverie/internal/models"
	"reverie/internal/notifications"
	"reverie/internal/repository"
)

// SocialService owns follow and block relations.
type SocialService struct {
	socialRepo repository.SocialRepository
	userRepo   repository.UserRepository
	notifRepo  repository.NotificationRepository
	notifier   *notifications.Notifier
}

// NewSocialService creates a social service.
func NewSocialService(
	socialRepo repository.SocialRepository,
	userRepo repository.UserRepository,
	notifRepo repository.NotificationRepository,
	notifier *notifications.Notifier,
) *SocialService {
	return &SocialService{
		socialRepo: socialRepo,
		userRepo:   userRepo,
		notifRepo:  notifRepo,
		notifier:   notifier,
	}
}

// Follow inserts the follow relation and notifies the followed user.
// Blocked pairs in either direction cannot follow each other.
func (s *SocialService) Follow(ctx context.Context, followerID, followedID uint) error {
	if followerID == followedID {
		return models.NewValidationError("Cannot follow yourself")
	}

	blocked, err := s.socialRepo.IsBlockedEitherWay(ctx, followerID, followedID)
	if err != nil {
		return models.NewInternalError(err)
	}
	if blocked {
		return models.NewForbiddenError("Cannot follow this user")
	}

	if err := s.socialRepo.Follow(ctx, followerID, followedID); err != nil {
		return models.NewInternalError(err)
	}
	s.notifyFollow(ctx, followedID, followerID)
	return nil
}

// Unfollow removes the follow relation. Unfollowing someone not followed
// is a no-op.
func (s *SocialService) Unfollow(ctx context.Context, followerID, followedID uint) error {
	if err := s.socialRepo.Unfollow(ctx, followerID, followedID); err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// IsFollowing reports the stored follow status. The session mutators
// re-read this after every follow write for the authoritative answer.
func (s *SocialService) IsFollowing(ctx context.Context, followerID, followedID uint) (bool, error) {
	following, err := s.socialRepo.IsFollowing(ctx, followerID, followedID)
	if err != nil {
		return false, models.NewInternalError(err)
	}
	return following, nil
}

// Followers lists the users following userID.
func (s *SocialService) Followers(ctx context.Context, userID uint) ([]*models.User, error) {
	ids, err := s.socialRepo.FollowerIDs(ctx, userID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	users, err := s.userRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}

// Following lists the users userID follows.
func (s *SocialService) Following(ctx context.Context, userID uint) ([]*models.User, error) {
	ids, err := s.socialRepo.FollowedIDs(ctx, userID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	users, err := s.userRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}

// Block inserts the block relation and severs follows in both directions.
func (s *SocialService) Block(ctx context.Context, blockerID, blockedID uint) error {
	if blockerID == blockedID {
		return models.NewValidationError("Cannot block yourself")
	}
	if err := s.socialRepo.BlockUser(ctx, blockerID, blockedID); err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// Unblock removes the block relation.
func (s *SocialService) Unblock(ctx context.Context, blockerID, blockedID uint) error {
	if err := s.socialRepo.UnblockUser(ctx, blockerID, blockedID); err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// BlockedIDs returns the blocker's set for session population.
func (s *SocialService) BlockedIDs(ctx context.Context, userID uint) ([]uint, error) {
	ids, err := s.socialRepo.BlockedIDs(ctx, userID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return ids, nil
}

func (s *SocialService) notifyFollow(ctx context.Context, followedID, actorID uint) {
	if s.notifRepo == nil {
		return
	}
	notification := &models.Notification{
		UserID:  followedID,
		ActorID: actorID,
		Kind:    models.NotificationKindFollow,
	}
	if err := s.notifRepo.Create(ctx, notification); err != nil {
		return
	}
	if s.notifier != nil {
		if payload, err := json.Marshal(notification); err == nil {
			_ = s.notifier.PublishUser(ctx, followedID, string(payload))
		}
	}
}
