// Package gateway adapts the data layer to the narrow interfaces the feed
// assemblers and session mutators consume. Reads go straight to the GORM
// repositories; writes go through the service layer so authorization and
// notification side effects stay in one place.
package gateway

import (
	"context"

	"reverie/internal/feed"
	"reverie/internal/models"
	"reverie/internal/repository"
	"reverie/internal/service"
)

// Gateway satisfies feed.Gateway and session.Gateway.
type Gateway struct {
	dreams repository.DreamRepository
	users  repository.UserRepository
	social repository.SocialRepository

	dreamService   *service.DreamService
	commentService *service.CommentService
	socialService  *service.SocialService
}

// New creates a gateway over the repositories and services.
func New(
	dreams repository.DreamRepository,
	users repository.UserRepository,
	social repository.SocialRepository,
	dreamService *service.DreamService,
	commentService *service.CommentService,
	socialService *service.SocialService,
) *Gateway {
	return &Gateway{
		dreams:         dreams,
		users:          users,
		social:         social,
		dreamService:   dreamService,
		commentService: commentService,
		socialService:  socialService,
	}
}

// --- feed.Gateway ---

func (g *Gateway) FollowedIDs(ctx context.Context, viewerID uint) ([]uint, error) {
	return g.social.FollowedIDs(ctx, viewerID)
}

func (g *Gateway) RecentPublic(ctx context.Context, limit int) ([]feed.RawDream, error) {
	dreams, err := g.dreams.ListPublic(ctx, limit, 0, 0)
	if err != nil {
		return nil, err
	}
	return rawDreams(dreams), nil
}

func (g *Gateway) PublicByAuthors(ctx context.Context, authorIDs []uint, limit int) ([]feed.RawDream, error) {
	dreams, err := g.dreams.ListPublicByAuthors(ctx, authorIDs, limit, 0)
	if err != nil {
		return nil, err
	}
	return rawDreams(dreams), nil
}

func (g *Gateway) SearchAuthors(ctx context.Context, query string) ([]uint, error) {
	users, err := g.users.SearchByUsername(ctx, query, feed.PageSize)
	if err != nil {
		return nil, err
	}
	ids := make([]uint, 0, len(users))
	for _, user := range users {
		ids = append(ids, user.ID)
	}
	return ids, nil
}

func (g *Gateway) SearchPublic(ctx context.Context, query string, limit int) ([]feed.RawDream, error) {
	dreams, err := g.dreams.SearchPublic(ctx, query, limit, 0)
	if err != nil {
		return nil, err
	}
	return rawDreams(dreams), nil
}

func (g *Gateway) LikeCount(ctx context.Context, dreamID string) (int, error) {
	return g.dreams.LikeCount(ctx, dreamID)
}

func (g *Gateway) CommentCount(ctx context.Context, dreamID string) (int, error) {
	return g.dreams.CommentCount(ctx, dreamID)
}

func (g *Gateway) HasLiked(ctx context.Context, viewerID uint, dreamID string) (bool, error) {
	if viewerID == 0 {
		return false, nil
	}
	return g.dreams.IsLiked(ctx, viewerID, dreamID)
}

// --- session.Gateway ---

func (g *Gateway) Like(ctx context.Context, userID uint, dreamID string) error {
	return g.dreamService.Like(ctx, dreamID, userID)
}

func (g *Gateway) Unlike(ctx context.Context, userID uint, dreamID string) error {
	return g.dreamService.Unlike(ctx, dreamID, userID)
}

func (g *Gateway) AddComment(ctx context.Context, userID uint, dreamID, body string) error {
	_, err := g.commentService.CreateComment(ctx, userID, dreamID, body)
	return err
}

func (g *Gateway) Follow(ctx context.Context, followerID, followedID uint) error {
	return g.socialService.Follow(ctx, followerID, followedID)
}

func (g *Gateway) Unfollow(ctx context.Context, followerID, followedID uint) error {
	return g.socialService.Unfollow(ctx, followerID, followedID)
}

func (g *Gateway) IsFollowing(ctx context.Context, followerID, followedID uint) (bool, error) {
	return g.socialService.IsFollowing(ctx, followerID, followedID)
}

func (g *Gateway) Block(ctx context.Context, blockerID, blockedID uint) error {
	return g.socialService.Block(ctx, blockerID, blockedID)
}

func (g *Gateway) Unblock(ctx context.Context, blockerID, blockedID uint) error {
	return g.socialService.Unblock(ctx, blockerID, blockedID)
}

func (g *Gateway) BlockedIDs(ctx context.Context, userID uint) ([]uint, error) {
	return g.socialService.BlockedIDs(ctx, userID)
}

func (g *Gateway) SetDreamVisibility(ctx context.Context, userID uint, dreamID string, isPublic bool) error {
	return g.dreamService.SetVisibility(ctx, dreamID, userID, isPublic)
}

// rawDreams maps stored rows into the normalizer's input shape. Rows from
// our own store always carry canonical names; the legacy aliases exist for
// rows replayed from older exports.
func rawDreams(dreams []*models.Dream) []feed.RawDream {
	raws := make([]feed.RawDream, 0, len(dreams))
	for _, d := range dreams {
		raws = append(raws, rawDream(d))
	}
	return raws
}

func rawDream(d *models.Dream) feed.RawDream {
	isLucid := d.IsLucid
	isPublic := d.IsPublic
	likeCount := d.LikeCount
	commentCount := d.CommentCount
	viewerHasLiked := d.ViewerHasLiked
	createdAt := d.CreatedAt

	tags := make([]string, 0, len(d.Tags))
	for _, tag := range d.Tags {
		tags = append(tags, tag.ID)
	}

	raw := feed.RawDream{
		ID:             d.ID,
		UserID:         d.UserID,
		Title:          d.Title,
		Body:           d.Body,
		Mood:           d.Mood,
		IsLucid:        &isLucid,
		IsPublic:       &isPublic,
		LikeCount:      &likeCount,
		CommentCount:   &commentCount,
		ViewerHasLiked: &viewerHasLiked,
		Tags:           tags,
		Username:       d.User.Username,
		CreatedAt:      &createdAt,
	}
	if d.ImageURL != "" {
		raw.ImageURL = &d.ImageURL
	}
	if d.AudioURL != "" {
		raw.AudioURL = &d.AudioURL
	}
	if d.User.DisplayName != "" {
		raw.DisplayName = &d.User.DisplayName
	}
	if d.User.AvatarURL != "" {
		raw.AvatarURL = &d.User.AvatarURL
	}
	return raw
}
