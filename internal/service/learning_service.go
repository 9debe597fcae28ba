package service

import (
	"context"
	"errors"
	"fmt"
	"os"

	"reverie/internal/models"
	"reverie/internal/repository"
	"reverie/internal/validation"

	"gorm.io/gorm"
	"gopkg.in/yaml.v3"
)

// LearningService serves the lucid-dreaming practice catalog and tracks
// per-user step completions.
type LearningService struct {
	learningRepo repository.LearningRepository
}

// PathProgress is a catalog path annotated with the viewer's completions.
type PathProgress struct {
	models.LearningPath
	CompletedStepIDs []string `json:"completed_step_ids"`
	TotalSteps       int      `json:"total_steps"`
	CompletedSteps   int      `json:"completed_steps"`
}

// NewLearningService creates a learning service.
func NewLearningService(learningRepo repository.LearningRepository) *LearningService {
	return &LearningService{learningRepo: learningRepo}
}

// catalogFile is the YAML shape of the path definitions file.
type catalogFile struct {
	Paths []struct {
		ID          string `yaml:"id"`
		Title       string `yaml:"title"`
		Description string `yaml:"description"`
		Steps       []struct {
			ID    string `yaml:"id"`
			Title string `yaml:"title"`
			Body  string `yaml:"body"`
		} `yaml:"steps"`
	} `yaml:"paths"`
}

// LoadCatalog parses the path definitions file. Step order follows file
// order; ord is assigned here, not read from the file.
func LoadCatalog(path string) ([]models.LearningPath, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading learning catalog: %w", err)
	}

	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing learning catalog: %w", err)
	}

	paths := make([]models.LearningPath, 0, len(file.Paths))
	for _, p := range file.Paths {
		if err := validation.ValidateSlug(p.ID); err != nil {
			return nil, fmt.Errorf("learning path %q: %w", p.ID, err)
		}
		lp := models.LearningPath{
			ID:          p.ID,
			Title:       p.Title,
			Description: p.Description,
		}
		for i, s := range p.Steps {
			lp.Steps = append(lp.Steps, models.LearningStep{
				ID:     s.ID,
				PathID: p.ID,
				Ord:    i + 1,
				Title:  s.Title,
				Body:   s.Body,
			})
		}
		paths = append(paths, lp)
	}
	return paths, nil
}

// SyncCatalogFromFile loads the definitions file and upserts it.
func (s *LearningService) SyncCatalogFromFile(ctx context.Context, path string) error {
	paths, err := LoadCatalog(path)
	if err != nil {
		return err
	}
	return s.learningRepo.SyncCatalog(ctx, paths)
}

// ListPaths returns the catalog with the viewer's progress folded in.
func (s *LearningService) ListPaths(ctx context.Context, userID uint) ([]PathProgress, error) {
	paths, err := s.learningRepo.ListPaths(ctx)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	completed := map[string]struct{}{}
	if userID != 0 {
		ids, err := s.learningRepo.CompletedStepIDs(ctx, userID)
		if err != nil {
			return nil, models.NewInternalError(err)
		}
		for _, id := range ids {
			completed[id] = struct{}{}
		}
	}

	progress := make([]PathProgress, 0, len(paths))
	for _, p := range paths {
		pp := PathProgress{LearningPath: p, CompletedStepIDs: []string{}, TotalSteps: len(p.Steps)}
		for _, step := range p.Steps {
			if _, ok := completed[step.ID]; ok {
				pp.CompletedStepIDs = append(pp.CompletedStepIDs, step.ID)
				pp.CompletedSteps++
			}
		}
		progress = append(progress, pp)
	}
	return progress, nil
}

// CompleteStep marks a step done for the user. Completing the same step
// twice is a no-op.
func (s *LearningService) CompleteStep(ctx context.Context, userID uint, stepID string) error {
	if userID == 0 {
		return models.NewUnauthorizedError("Sign in required")
	}
	if _, err := s.learningRepo.GetStep(ctx, stepID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NewNotFoundError("Step", stepID)
		}
		return models.NewInternalError(err)
	}
	if err := s.learningRepo.CompleteStep(ctx, userID, stepID); err != nil {
		return models.NewInternalError(err)
	}
	return nil
}
