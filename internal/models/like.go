package models

import "time"

// DreamLike records that a user liked a dream. The (user_id, dream_id) pair
// is unique; likes are hard-deleted on unlike.
type DreamLike struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_dream_likes_user_dream" json:"user_id"`
	DreamID   string    `gorm:"type:uuid;not null;uniqueIndex:idx_dream_likes_user_dream;index" json:"dream_id"`
	CreatedAt time.Time `json:"created_at"`
}
