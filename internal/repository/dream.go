// Package repository provides data access layer implementations for the application.
package repository

import (
	"context"
	"strings"

	"reverie/internal/cache"
	"reverie/internal/models"
	"reverie/internal/observability"

	"gorm.io/gorm"
)

// DreamRepository defines the interface for dream data operations
type DreamRepository interface {
	Create(ctx context.Context, dream *models.Dream) error
	GetByID(ctx context.Context, id string, viewerID uint) (*models.Dream, error)
	GetByUserID(ctx context.Context, userID uint, limit, offset int, viewerID uint, includePrivate bool) ([]*models.Dream, error)
	ListPublic(ctx context.Context, limit, offset int, viewerID uint) ([]*models.Dream, error)
	ListPublicByAuthors(ctx context.Context, authorIDs []uint, limit int, viewerID uint) ([]*models.Dream, error)
	SearchPublic(ctx context.Context, query string, limit int, viewerID uint) ([]*models.Dream, error)
	Update(ctx context.Context, dream *models.Dream) error
	SetVisibility(ctx context.Context, id string, isPublic bool) error
	Delete(ctx context.Context, id string) error
	IsLiked(ctx context.Context, userID uint, dreamID string) (bool, error)
	LikeCount(ctx context.Context, dreamID string) (int, error)
	CommentCount(ctx context.Context, dreamID string) (int, error)
	Like(ctx context.Context, userID uint, dreamID string) error
	Unlike(ctx context.Context, userID uint, dreamID string) error
}

// dreamRepository implements DreamRepository
type dreamRepository struct {
	db *gorm.DB
}

// NewDreamRepository creates a new dream repository
func NewDreamRepository(db *gorm.DB) DreamRepository {
	return &dreamRepository{db: db}
}

func (r *dreamRepository) Create(ctx context.Context, dream *models.Dream) error {
	err := r.db.WithContext(ctx).Create(dream).Error
	if err == nil {
		cache.InvalidateRecentFeed(ctx)
	}
	return err
}

func (r *dreamRepository) GetByID(ctx context.Context, id string, viewerID uint) (*models.Dream, error) {
	var dream models.Dream
	fetch := func() error {
		return r.applyDreamDetails(r.db.WithContext(ctx), viewerID).
			Preload("User").
			Preload("Tags").
			Where("dreams.id = ?", id).
			First(&dream).Error
	}

	// viewer_has_liked is viewer-scoped, so only anonymous reads go through
	// the shared cache.
	if viewerID != 0 {
		if err := fetch(); err != nil {
			return nil, err
		}
		return &dream, nil
	}
	if err := cache.Aside(ctx, cache.DreamKey(id), &dream, cache.DreamTTL, fetch); err != nil {
		return nil, err
	}
	return &dream, nil
}

func (r *dreamRepository) GetByUserID(ctx context.Context, userID uint, limit, offset int, viewerID uint, includePrivate bool) ([]*models.Dream, error) {
	var dreams []*models.Dream
	q := r.applyDreamDetails(r.db.WithContext(ctx), viewerID).
		Preload("User").
		Preload("Tags").
		Where("user_id = ?", userID)
	if !includePrivate {
		q = q.Where("is_public = ?", true)
	}
	err := q.Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&dreams).Error
	return dreams, err
}

func (r *dreamRepository) ListPublic(ctx context.Context, limit, offset int, viewerID uint) ([]*models.Dream, error) {
	ctx, span := observability.TraceRepositoryMethod(ctx, "ListPublic", "dreams")
	defer span.End()

	var dreams []*models.Dream
	fetch := func() error {
		return r.applyDreamDetails(r.db.WithContext(ctx), viewerID).
			Preload("User").
			Preload("Tags").
			Where("is_public = ?", true).
			Order("created_at DESC").
			Limit(limit).
			Offset(offset).
			Find(&dreams).Error
	}

	// Only the anonymous first page is hot enough to cache; it is also the
	// only variant free of viewer-scoped fields and pagination cursors.
	if viewerID != 0 || offset != 0 {
		return dreams, fetch()
	}
	err := cache.Aside(ctx, cache.RecentFeedKey, &dreams, cache.RecentFeedTTL, fetch)
	return dreams, err
}

func (r *dreamRepository) ListPublicByAuthors(ctx context.Context, authorIDs []uint, limit int, viewerID uint) ([]*models.Dream, error) {
	if len(authorIDs) == 0 {
		return nil, nil
	}
	ctx, span := observability.TraceRepositoryMethod(ctx, "ListPublicByAuthors", "dreams")
	defer span.End()

	var dreams []*models.Dream
	err := r.applyDreamDetails(r.db.WithContext(ctx), viewerID).
		Preload("User").
		Preload("Tags").
		Where("is_public = ? AND user_id IN ?", true, authorIDs).
		Order("created_at DESC").
		Limit(limit).
		Find(&dreams).Error
	return dreams, err
}

func (r *dreamRepository) SearchPublic(ctx context.Context, query string, limit int, viewerID uint) ([]*models.Dream, error) {
	ctx, span := observability.TraceRepositoryMethod(ctx, "SearchPublic", "dreams")
	defer span.End()

	var dreams []*models.Dream
	like := "%" + strings.ToLower(query) + "%"
	err := r.applyDreamDetails(r.db.WithContext(ctx), viewerID).
		Preload("User").
		Preload("Tags").
		Where("is_public = ? AND (LOWER(title) LIKE ? OR LOWER(body) LIKE ?)", true, like, like).
		Order("created_at DESC").
		Limit(limit).
		Find(&dreams).Error
	return dreams, err
}

// applyDreamDetails adds subqueries to fetch counts and liked status in a single query.
func (r *dreamRepository) applyDreamDetails(db *gorm.DB, viewerID uint) *gorm.DB {
	selectQuery := "dreams.*, " +
		"(SELECT COUNT(*) FROM comments WHERE comments.dream_id = dreams.id AND comments.deleted_at IS NULL) as comment_count, " +
		"(SELECT COUNT(*) FROM dream_likes WHERE dream_likes.dream_id = dreams.id) as like_count"

	if viewerID != 0 {
		return db.Select(selectQuery+", EXISTS(SELECT 1 FROM dream_likes WHERE dream_likes.dream_id = dreams.id AND dream_likes.user_id = ?) as viewer_has_liked", viewerID)
	}

	return db.Select(selectQuery + ", false as viewer_has_liked")
}

func (r *dreamRepository) Update(ctx context.Context, dream *models.Dream) error {
	if err := r.db.WithContext(ctx).Save(dream).Error; err != nil {
		return err
	}
	cache.InvalidateDream(ctx, dream.ID)
	cache.InvalidateRecentFeed(ctx)
	return nil
}

func (r *dreamRepository) SetVisibility(ctx context.Context, id string, isPublic bool) error {
	if err := r.db.WithContext(ctx).
		Model(&models.Dream{}).
		Where("id = ?", id).
		Update("is_public", isPublic).Error; err != nil {
		return err
	}
	cache.InvalidateDream(ctx, id)
	cache.InvalidateRecentFeed(ctx)
	return nil
}

func (r *dreamRepository) Delete(ctx context.Context, id string) error {
	// Hard-cascade likes and comments with the dream; clients never model this.
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("dream_id = ?", id).Delete(&models.DreamLike{}).Error; err != nil {
			return err
		}
		if err := tx.Where("dream_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Dream{}, "id = ?", id).Error
	})
	if err != nil {
		return err
	}
	cache.InvalidateDream(ctx, id)
	cache.InvalidateRecentFeed(ctx)
	return nil
}

func (r *dreamRepository) IsLiked(ctx context.Context, userID uint, dreamID string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.DreamLike{}).
		Where("user_id = ? AND dream_id = ?", userID, dreamID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *dreamRepository) LikeCount(ctx context.Context, dreamID string) (int, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.DreamLike{}).
		Where("dream_id = ?", dreamID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return int(count), nil
}

func (r *dreamRepository) CommentCount(ctx context.Context, dreamID string) (int, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Comment{}).
		Where("dream_id = ?", dreamID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return int(count), nil
}

func (r *dreamRepository) Like(ctx context.Context, userID uint, dreamID string) error {
	// INSERT ... ON CONFLICT DO NOTHING handles double-submit races atomically.
	result := r.db.WithContext(ctx).Exec(
		`INSERT INTO dream_likes (user_id, dream_id, created_at)
		 VALUES (?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT (user_id, dream_id) DO NOTHING`,
		userID, dreamID,
	)
	if result.Error == nil {
		cache.InvalidateDream(ctx, dreamID)
	}
	return result.Error
}

func (r *dreamRepository) Unlike(ctx context.Context, userID uint, dreamID string) error {
	// Hard delete the like record (not soft delete)
	err := r.db.WithContext(ctx).Unscoped().
		Where("user_id = ? AND dream_id = ?", userID, dreamID).
		Delete(&models.DreamLike{}).Error
	if err == nil {
		cache.InvalidateDream(ctx, dreamID)
	}
	return err
}
