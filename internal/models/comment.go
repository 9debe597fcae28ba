package models

import (
	"time"

	"gorm.io/gorm"
)

// Comment represents a comment on a dream.
type Comment struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	DreamID   string         `gorm:"type:uuid;not null;index" json:"dream_id"`
	UserID    uint           `gorm:"not null;index" json:"user_id"`
	User      User           `gorm:"foreignKey:UserID" json:"user"`
	Body      string         `gorm:"type:text;not null" json:"body"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
