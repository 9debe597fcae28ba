package feed

import "context"

// Gateway is the narrow read surface the assemblers need from the backing
// store. The production implementation adapts the GORM repositories; tests
// substitute fakes.
type Gateway interface {
	// FollowedIDs resolves the viewer's follow set.
	FollowedIDs(ctx context.Context, viewerID uint) ([]uint, error)

	// RecentPublic returns public dreams across all authors, newest first.
	RecentPublic(ctx context.Context, limit int) ([]RawDream, error)

	// PublicByAuthors returns public dreams by the given authors, newest first.
	PublicByAuthors(ctx context.Context, authorIDs []uint, limit int) ([]RawDream, error)

	// SearchAuthors resolves author IDs whose username matches the query,
	// case-insensitive substring.
	SearchAuthors(ctx context.Context, query string) ([]uint, error)

	// SearchPublic returns public dreams whose title or body matches the
	// query, case-insensitive substring.
	SearchPublic(ctx context.Context, query string, limit int) ([]RawDream, error)

	// Per-record enrichment lookups, issued independently per dream.
	LikeCount(ctx context.Context, dreamID string) (int, error)
	CommentCount(ctx context.Context, dreamID string) (int, error)
	HasLiked(ctx context.Context, viewerID uint, dreamID string) (bool, error)
}
