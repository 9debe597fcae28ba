// Package feed assembles, normalizes, reconciles, and filters dream feeds.
package feed

import "time"

// AuthorSnapshot is the author's display data captured at fetch time.
// It is a snapshot, not kept live-synced with the users table.
type AuthorSnapshot struct {
	ID          uint   `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	AvatarURL   string `json:"avatar_url"`
}

// DreamRecord is the canonical normalized unit every feed works with.
// Only the normalizer constructs these from raw rows; legacy field names
// never leak past that boundary.
type DreamRecord struct {
	ID             string         `json:"id"`
	AuthorID       uint           `json:"author_id"`
	Author         AuthorSnapshot `json:"author"`
	Title          string         `json:"title"`
	Body           string         `json:"body"`
	Mood           string         `json:"mood,omitempty"`
	IsLucid        bool           `json:"is_lucid"`
	IsPublic       bool           `json:"is_public"`
	ImageURL       string         `json:"image_url,omitempty"`
	AudioURL       string         `json:"audio_url,omitempty"`
	Tags           []string       `json:"tags"`
	LikeCount      int            `json:"like_count"`
	CommentCount   int            `json:"comment_count"`
	ViewerHasLiked bool           `json:"viewer_has_liked"`
	CreatedAt      time.Time      `json:"created_at"`
}
