package session

import "context"

// Gateway is the narrow write surface the mutators need. The production
// implementation delegates to the service layer; tests substitute fakes.
type Gateway interface {
	Like(ctx context.Context, userID uint, dreamID string) error
	Unlike(ctx context.Context, userID uint, dreamID string) error

	AddComment(ctx context.Context, userID uint, dreamID, body string) error

	Follow(ctx context.Context, followerID, followedID uint) error
	Unfollow(ctx context.Context, followerID, followedID uint) error
	// IsFollowing is re-fetched after every follow write; the authoritative
	// answer also drives follower/following counts elsewhere in the UI.
	IsFollowing(ctx context.Context, followerID, followedID uint) (bool, error)

	// Block removes any follow relation in either direction and inserts the
	// block relation, atomically.
	Block(ctx context.Context, blockerID, blockedID uint) error
	Unblock(ctx context.Context, blockerID, blockedID uint) error
	BlockedIDs(ctx context.Context, userID uint) ([]uint, error)

	SetDreamVisibility(ctx context.Context, userID uint, dreamID string, isPublic bool) error
}
