package feed

import "time"

// RawDream unions the legacy and current server field names for a dream
// row. Older rows carry camelCase names, newer rows snake_case; some carry
// both. Pointers distinguish absent from zero.
type RawDream struct {
	ID     string `json:"id"`
	UserID uint   `json:"user_id"`

	Title string `json:"title"`
	Body  string `json:"body"`
	Mood  string `json:"mood"`

	IsLucid       *bool `json:"is_lucid"`
	IsLucidLegacy *bool `json:"isLucid"`

	IsPublic       *bool `json:"is_public"`
	IsPublicLegacy *bool `json:"isPublic"`

	LikeCount       *int `json:"like_count"`
	LikeCountLegacy *int `json:"likesCount"`

	CommentCount       *int `json:"comment_count"`
	CommentCountLegacy *int `json:"commentsCount"`

	ViewerHasLiked       *bool `json:"viewer_has_liked"`
	ViewerHasLikedLegacy *bool `json:"viewerHasLiked"`

	ImageURL       *string `json:"image_url"`
	ImageURLLegacy *string `json:"imageUrl"`

	AudioURL       *string `json:"audio_url"`
	AudioURLLegacy *string `json:"audioUrl"`

	Tags []string `json:"tags"`

	Username          string  `json:"username"`
	DisplayName       *string `json:"display_name"`
	DisplayNameLegacy *string `json:"displayName"`
	AvatarURL         *string `json:"avatar_url"`
	AvatarURLLegacy   *string `json:"avatarUrl"`

	CreatedAt       *time.Time `json:"created_at"`
	CreatedAtLegacy *time.Time `json:"createdAt"`
}

// Normalize maps a raw row onto one DreamRecord. Pure, no failure mode:
// absent or malformed optionals default to zero values rather than erroring.
// Canonical names win when a row carries both spellings.
func Normalize(raw RawDream) DreamRecord {
	tags := raw.Tags
	if tags == nil {
		tags = []string{}
	}

	return DreamRecord{
		ID:       raw.ID,
		AuthorID: raw.UserID,
		Author: AuthorSnapshot{
			ID:          raw.UserID,
			Username:    raw.Username,
			DisplayName: firstString(raw.DisplayName, raw.DisplayNameLegacy),
			AvatarURL:   firstString(raw.AvatarURL, raw.AvatarURLLegacy),
		},
		Title:          raw.Title,
		Body:           raw.Body,
		Mood:           raw.Mood,
		IsLucid:        firstBool(raw.IsLucid, raw.IsLucidLegacy),
		IsPublic:       firstBool(raw.IsPublic, raw.IsPublicLegacy),
		ImageURL:       firstString(raw.ImageURL, raw.ImageURLLegacy),
		AudioURL:       firstString(raw.AudioURL, raw.AudioURLLegacy),
		Tags:           tags,
		LikeCount:      firstCount(raw.LikeCount, raw.LikeCountLegacy),
		CommentCount:   firstCount(raw.CommentCount, raw.CommentCountLegacy),
		ViewerHasLiked: firstBool(raw.ViewerHasLiked, raw.ViewerHasLikedLegacy),
		CreatedAt:      firstTime(raw.CreatedAt, raw.CreatedAtLegacy),
	}
}

func firstString(candidates ...*string) string {
	for _, c := range candidates {
		if c != nil && *c != "" {
			return *c
		}
	}
	return ""
}

func firstBool(candidates ...*bool) bool {
	for _, c := range candidates {
		if c != nil {
			return *c
		}
	}
	return false
}

// firstCount floors at zero; a malformed negative count is treated as absent.
func firstCount(candidates ...*int) int {
	for _, c := range candidates {
		if c != nil {
			if *c < 0 {
				return 0
			}
			return *c
		}
	}
	return 0
}

func firstTime(candidates ...*time.Time) time.Time {
	for _, c := range candidates {
		if c != nil {
			return *c
		}
	}
	return time.Time{}
}
