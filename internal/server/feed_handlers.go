package server

import (
	"context"
	"strings"

	"reverie/internal/feed"
	"reverie/internal/models"
	"reverie/internal/session"

	"github.com/gofiber/fiber/v2"
)

// RecentFeed handles GET /api/feed/recent. Anonymous browsers get the
// assembled page as-is; signed-in viewers get it reconciled through their
// session store so optimistic local state survives refetches.
func (s *Server) RecentFeed(c *fiber.Ctx) error {
	viewerID, authed := s.optionalUserID(c)
	ctx := c.UserContext()

	if !authed {
		records := s.assembler.Recent(ctx, 0, session.NewBlockList())
		return c.JSON(fiber.Map{"dreams": records})
	}

	sess, err := s.sessions.acquire(ctx, viewerID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	records := s.assembler.Recent(ctx, viewerID, sess.Blocks())
	sess.Store().Apply(records)
	return c.JSON(fiber.Map{"dreams": sess.VisibleRecords()})
}

// FollowingFeed handles GET /api/feed/following
func (s *Server) FollowingFeed(c *fiber.Ctx) error {
	userID := currentUserID(c)
	ctx := c.UserContext()

	sess, err := s.sessions.acquire(ctx, userID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	records := s.assembler.Following(ctx, userID, sess.Blocks())
	sess.Store().Apply(records)
	return c.JSON(fiber.Map{"dreams": sess.VisibleRecords()})
}

// SearchFeed handles GET /api/feed/search?q=...&tags=a,b. The gateway
// search runs server-side; the query and tag filter run again locally so
// session-reconciled records obey the same match rules the client sees.
func (s *Server) SearchFeed(c *fiber.Ctx) error {
	query := strings.TrimSpace(c.Query("q"))
	tagIDs := splitTagIDs(c.Query("tags"))

	viewerID, authed := s.optionalUserID(c)
	ctx := c.UserContext()

	vocabulary, err := s.tagVocabulary(ctx)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	if !authed {
		records := s.assembler.Search(ctx, 0, query, session.NewBlockList())
		return c.JSON(fiber.Map{"dreams": feed.Filter(records, query, tagIDs, vocabulary)})
	}

	sess, err := s.sessions.acquire(ctx, viewerID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	records := s.assembler.Search(ctx, viewerID, query, sess.Blocks())
	sess.Store().Apply(records)
	return c.JSON(fiber.Map{"dreams": feed.Filter(sess.VisibleRecords(), query, tagIDs, vocabulary)})
}

// GetTags handles GET /api/tags
func (s *Server) GetTags(c *fiber.Ctx) error {
	tags, err := s.tagRepo.List(c.UserContext())
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}
	return c.JSON(fiber.Map{"tags": tags})
}

// tagVocabulary maps tag IDs to display names for the local search filter.
func (s *Server) tagVocabulary(ctx context.Context) (map[string]string, error) {
	tags, err := s.tagRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	vocabulary := make(map[string]string, len(tags))
	for _, tag := range tags {
		vocabulary[tag.ID] = tag.Name
	}
	return vocabulary, nil
}

func splitTagIDs(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	ids := make([]string, 0, len(parts))
	for _, part := range parts {
		if id := strings.TrimSpace(part); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}
