package models

import "time"

// Notification kinds.
const (
	NotificationKindLike    = "like"
	NotificationKindComment = "comment"
	NotificationKindFollow  = "follow"
)

// Notification is delivered to a user when another user interacts with them.
type Notification struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	ActorID   uint      `gorm:"not null" json:"actor_id"`
	Actor     User      `gorm:"foreignKey:ActorID" json:"actor"`
	Kind      string    `gorm:"not null" json:"kind"`
	DreamID   *string   `gorm:"type:uuid" json:"dream_id,omitempty"`
	Read      bool      `gorm:"default:false;index" json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

// Announcement is a site-wide banner shown to all users while active.
type Announcement struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	Title     string     `gorm:"not null" json:"title"`
	Body      string     `gorm:"type:text" json:"body"`
	StartsAt  time.Time  `json:"starts_at"`
	EndsAt    *time.Time `json:"ends_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}
