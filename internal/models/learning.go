package models

import "time"

// LearningPath is a gamified sequence of lucid-dreaming practice steps.
// Paths and steps form a static catalog loaded from the path definitions
// file at boot; only completions are user data.
type LearningPath struct {
	ID          string         `gorm:"primaryKey" json:"id"`
	Title       string         `gorm:"not null" json:"title"`
	Description string         `gorm:"type:text" json:"description"`
	Steps       []LearningStep `gorm:"foreignKey:PathID" json:"steps"`
}

// LearningStep is one practice exercise within a path.
type LearningStep struct {
	ID     string `gorm:"primaryKey" json:"id"`
	PathID string `gorm:"not null;index" json:"path_id"`
	Ord    int    `gorm:"not null" json:"ord"`
	Title  string `gorm:"not null" json:"title"`
	Body   string `gorm:"type:text" json:"body"`
}

// StepCompletion records that a user finished a step.
type StepCompletion struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"not null;uniqueIndex:idx_step_completions_user_step" json:"user_id"`
	StepID      string    `gorm:"not null;uniqueIndex:idx_step_completions_user_step" json:"step_id"`
	CompletedAt time.Time `json:"completed_at"`
}
