package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Dream represents a single journal entry. IDs are server-assigned opaque
// UUID strings so clients never infer ordering or ownership from them.
type Dream struct {
	ID       string `gorm:"type:uuid;primaryKey" json:"id"`
	UserID   uint   `gorm:"not null;index" json:"user_id"`
	User     User   `gorm:"foreignKey:UserID" json:"user"`
	Title    string `gorm:"not null" json:"title"`
	Body     string `gorm:"type:text" json:"body"`
	Mood     string `json:"mood,omitempty"`
	IsLucid  bool   `gorm:"default:false" json:"is_lucid"`
	IsPublic bool   `gorm:"default:false;index" json:"is_public"`
	ImageURL string `json:"image_url,omitempty"`
	AudioURL string `json:"audio_url,omitempty"`
	Tags     []Tag  `gorm:"many2many:dream_tags" json:"tags"`
	// LikeCount is not persisted; computed at query time
	LikeCount int `gorm:"->" json:"like_count"`
	// CommentCount is not persisted; computed at query time
	CommentCount int `gorm:"->" json:"comment_count"`
	// ViewerHasLiked indicates whether the requesting user liked this dream (computed)
	ViewerHasLiked bool           `gorm:"->" json:"viewer_has_liked"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}

// BeforeCreate assigns the opaque ID when the caller did not provide one.
func (d *Dream) BeforeCreate(_ *gorm.DB) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	return nil
}
