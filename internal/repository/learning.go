package repository

import (
	"context"
	"time"

	"reverie/internal/cache"
	"reverie/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LearningRepository defines the interface for learning path data operations.
// The catalog is write-once-per-boot (synced from the path definitions file);
// only step completions are per-user writes.
type LearningRepository interface {
	SyncCatalog(ctx context.Context, paths []models.LearningPath) error
	ListPaths(ctx context.Context) ([]models.LearningPath, error)
	GetStep(ctx context.Context, stepID string) (*models.LearningStep, error)
	CompleteStep(ctx context.Context, userID uint, stepID string) error
	CompletedStepIDs(ctx context.Context, userID uint) ([]string, error)
}

type learningRepository struct {
	db *gorm.DB
}

// NewLearningRepository creates a new learning repository
func NewLearningRepository(db *gorm.DB) LearningRepository {
	return &learningRepository{db: db}
}

// SyncCatalog upserts the path catalog. Removed steps are kept so old
// completions keep resolving; the catalog file is append-mostly anyway.
func (r *learningRepository) SyncCatalog(ctx context.Context, paths []models.LearningPath) error {
	if len(paths) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range paths {
			path := paths[i]
			steps := path.Steps
			path.Steps = nil
			if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&path).Error; err != nil {
				return err
			}
			for j := range steps {
				steps[j].PathID = path.ID
				if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&steps[j]).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err == nil {
		cache.Invalidate(ctx, cache.LearningCatalogKey)
	}
	return err
}

func (r *learningRepository) ListPaths(ctx context.Context) ([]models.LearningPath, error) {
	var paths []models.LearningPath
	err := cache.Aside(ctx, cache.LearningCatalogKey, &paths, cache.TagVocabularyTTL, func() error {
		return r.db.WithContext(ctx).
			Preload("Steps", func(db *gorm.DB) *gorm.DB {
				return db.Order("ord ASC")
			}).
			Order("id ASC").
			Find(&paths).Error
	})
	return paths, err
}

func (r *learningRepository) GetStep(ctx context.Context, stepID string) (*models.LearningStep, error) {
	var step models.LearningStep
	if err := r.db.WithContext(ctx).First(&step, "id = ?", stepID).Error; err != nil {
		return nil, err
	}
	return &step, nil
}

func (r *learningRepository) CompleteStep(ctx context.Context, userID uint, stepID string) error {
	completion := models.StepCompletion{
		UserID:      userID,
		StepID:      stepID,
		CompletedAt: time.Now(),
	}
	// Completing an already-completed step is a no-op.
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&completion).Error
}

func (r *learningRepository) CompletedStepIDs(ctx context.Context, userID uint) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&models.StepCompletion{}).
		Where("user_id = ?", userID).
		Pluck("step_id", &ids).Error
	return ids, err
}
