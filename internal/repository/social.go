package repository

import (
	"context"

	"reverie/internal/cache"
	"reverie/internal/models"

	"gorm.io/gorm"
)

// SocialRepository defines the interface for follow and block relations.
// Follows are directed; blocks are directed but checked in both directions
// at read time.
type SocialRepository interface {
	Follow(ctx context.Context, followerID, followedID uint) error
	Unfollow(ctx context.Context, followerID, followedID uint) error
	IsFollowing(ctx context.Context, followerID, followedID uint) (bool, error)
	FollowedIDs(ctx context.Context, userID uint) ([]uint, error)
	FollowerIDs(ctx context.Context, userID uint) ([]uint, error)
	RemoveFollowsBetween(ctx context.Context, a, b uint) error
	BlockUser(ctx context.Context, blockerID, blockedID uint) error
	UnblockUser(ctx context.Context, blockerID, blockedID uint) error
	BlockedIDs(ctx context.Context, userID uint) ([]uint, error)
	IsBlockedEitherWay(ctx context.Context, a, b uint) (bool, error)
}

type socialRepository struct {
	db *gorm.DB
}

// NewSocialRepository creates a new social repository
func NewSocialRepository(db *gorm.DB) SocialRepository {
	return &socialRepository{db: db}
}

func (r *socialRepository) Follow(ctx context.Context, followerID, followedID uint) error {
	result := r.db.WithContext(ctx).Exec(
		`INSERT INTO follows (follower_id, followed_id, created_at)
		 VALUES (?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT (follower_id, followed_id) DO NOTHING`,
		followerID, followedID,
	)
	if result.Error == nil {
		cache.InvalidateRelations(ctx, followerID)
		cache.InvalidateUser(ctx, followerID)
		cache.InvalidateUser(ctx, followedID)
	}
	return result.Error
}

func (r *socialRepository) Unfollow(ctx context.Context, followerID, followedID uint) error {
	err := r.db.WithContext(ctx).
		Where("follower_id = ? AND followed_id = ?", followerID, followedID).
		Delete(&models.Follow{}).Error
	if err == nil {
		cache.InvalidateRelations(ctx, followerID)
		cache.InvalidateUser(ctx, followerID)
		cache.InvalidateUser(ctx, followedID)
	}
	return err
}

func (r *socialRepository) IsFollowing(ctx context.Context, followerID, followedID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Follow{}).
		Where("follower_id = ? AND followed_id = ?", followerID, followedID).
		Count(&count).Error
	return count > 0, err
}

func (r *socialRepository) FollowedIDs(ctx context.Context, userID uint) ([]uint, error) {
	var ids []uint
	err := cache.Aside(ctx, cache.FollowedIDsKey(userID), &ids, cache.RelationTTL, func() error {
		return r.db.WithContext(ctx).
			Model(&models.Follow{}).
			Where("follower_id = ?", userID).
			Pluck("followed_id", &ids).Error
	})
	return ids, err
}

func (r *socialRepository) FollowerIDs(ctx context.Context, userID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).
		Model(&models.Follow{}).
		Where("followed_id = ?", userID).
		Pluck("follower_id", &ids).Error
	return ids, err
}

// RemoveFollowsBetween deletes follows in both directions in one statement.
// Blocking a user severs the relationship entirely.
func (r *socialRepository) RemoveFollowsBetween(ctx context.Context, a, b uint) error {
	err := r.db.WithContext(ctx).
		Where("(follower_id = ? AND followed_id = ?) OR (follower_id = ? AND followed_id = ?)", a, b, b, a).
		Delete(&models.Follow{}).Error
	if err == nil {
		cache.InvalidateRelations(ctx, a)
		cache.InvalidateRelations(ctx, b)
		cache.InvalidateUser(ctx, a)
		cache.InvalidateUser(ctx, b)
	}
	return err
}

func (r *socialRepository) BlockUser(ctx context.Context, blockerID, blockedID uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(
			`INSERT INTO blocks (blocker_id, blocked_id, created_at)
			 VALUES (?, ?, CURRENT_TIMESTAMP)
			 ON CONFLICT (blocker_id, blocked_id) DO NOTHING`,
			blockerID, blockedID,
		).Error; err != nil {
			return err
		}
		return tx.
			Where("(follower_id = ? AND followed_id = ?) OR (follower_id = ? AND followed_id = ?)",
				blockerID, blockedID, blockedID, blockerID).
			Delete(&models.Follow{}).Error
	})
	if err == nil {
		cache.InvalidateRelations(ctx, blockerID)
		cache.InvalidateRelations(ctx, blockedID)
		cache.InvalidateUser(ctx, blockerID)
		cache.InvalidateUser(ctx, blockedID)
	}
	return err
}

func (r *socialRepository) UnblockUser(ctx context.Context, blockerID, blockedID uint) error {
	err := r.db.WithContext(ctx).
		Where("blocker_id = ? AND blocked_id = ?", blockerID, blockedID).
		Delete(&models.Block{}).Error
	if err == nil {
		cache.InvalidateRelations(ctx, blockerID)
	}
	return err
}

func (r *socialRepository) BlockedIDs(ctx context.Context, userID uint) ([]uint, error) {
	var ids []uint
	err := cache.Aside(ctx, cache.BlockedIDsKey(userID), &ids, cache.RelationTTL, func() error {
		return r.db.WithContext(ctx).
			Model(&models.Block{}).
			Where("blocker_id = ?", userID).
			Pluck("blocked_id", &ids).Error
	})
	return ids, err
}

func (r *socialRepository) IsBlockedEitherWay(ctx context.Context, a, b uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Block{}).
		Where("(blocker_id = ? AND blocked_id = ?) OR (blocker_id = ? AND blocked_id = ?)", a, b, b, a).
		Count(&count).Error
	return count > 0, err
}
