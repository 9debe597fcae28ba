package repository

import (
	"context"

	"reverie/internal/cache"
	"reverie/internal/models"

	"gorm.io/gorm"
)

// TagRepository defines the interface for the tag vocabulary.
type TagRepository interface {
	List(ctx context.Context) ([]models.Tag, error)
	GetByIDs(ctx context.Context, ids []string) ([]models.Tag, error)
	ReplaceDreamTags(ctx context.Context, dream *models.Dream, tagIDs []string) error
}

type tagRepository struct {
	db *gorm.DB
}

// NewTagRepository creates a new tag repository
func NewTagRepository(db *gorm.DB) TagRepository {
	return &tagRepository{db: db}
}

// List returns the full vocabulary, cached since it changes rarely.
func (r *tagRepository) List(ctx context.Context) ([]models.Tag, error) {
	var tags []models.Tag
	err := cache.Aside(ctx, cache.TagVocabularyKey, &tags, cache.TagVocabularyTTL, func() error {
		return r.db.WithContext(ctx).Order("name ASC").Find(&tags).Error
	})
	return tags, err
}

func (r *tagRepository) GetByIDs(ctx context.Context, ids []string) ([]models.Tag, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var tags []models.Tag
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&tags).Error
	return tags, err
}

func (r *tagRepository) ReplaceDreamTags(ctx context.Context, dream *models.Dream, tagIDs []string) error {
	tags, err := r.GetByIDs(ctx, tagIDs)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Model(dream).Association("Tags").Replace(tags); err != nil {
		return err
	}
	dream.Tags = tags
	cache.InvalidateDream(ctx, dream.ID)
	return nil
}
