package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	UserKeyPrefix      = "user:%d"
	DreamKeyPrefix     = "dream:%s"
	RecentFeedKey      = "feed:recent"
	TagVocabularyKey   = "tags:vocabulary"
	AnnouncementsKey   = "announcements:active"
	BlockedIDsPrefix   = "blocks:%d"
	FollowedIDsPrefix  = "follows:%d"
	LearningCatalogKey = "learning:catalog"
)

const (
	UserTTL          = 5 * time.Minute
	DreamTTL         = 30 * time.Minute
	RecentFeedTTL    = 1 * time.Minute
	TagVocabularyTTL = 1 * time.Hour
	AnnouncementsTTL = 2 * time.Minute
	RelationTTL      = 5 * time.Minute
)

func UserKey(userID uint) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

func DreamKey(dreamID string) string {
	return fmt.Sprintf(DreamKeyPrefix, dreamID)
}

func BlockedIDsKey(userID uint) string {
	return fmt.Sprintf(BlockedIDsPrefix, userID)
}

func FollowedIDsKey(userID uint) string {
	return fmt.Sprintf(FollowedIDsPrefix, userID)
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

func InvalidateUser(ctx context.Context, userID uint) {
	Invalidate(ctx, UserKey(userID))
}

func InvalidateDream(ctx context.Context, dreamID string) {
	Invalidate(ctx, DreamKey(dreamID))
}

func InvalidateRecentFeed(ctx context.Context) {
	Invalidate(ctx, RecentFeedKey)
}

func InvalidateRelations(ctx context.Context, userID uint) {
	Invalidate(ctx, BlockedIDsKey(userID))
	Invalidate(ctx, FollowedIDsKey(userID))
}
