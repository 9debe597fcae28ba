package server

import (
	"reverie/internal/models"
	"reverie/internal/session"

	"github.com/gofiber/fiber/v2"
)

// ToggleFollow handles POST /api/social/follow/:userId. The session
// mutator re-fetches the authoritative follow status after the write, so
// the response reflects what the server actually holds.
func (s *Server) ToggleFollow(c *fiber.Ctx) error {
	userID := currentUserID(c)
	targetID, err := parseUintParam(c, "userId")
	if err != nil {
		return nil
	}
	ctx := c.UserContext()

	sess, err := s.sessions.acquire(ctx, userID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	following, res := sess.ToggleFollow(ctx, targetID)
	status := fiber.StatusOK
	if res.Status == session.StatusPending {
		status = fiber.StatusConflict
	}
	return c.Status(status).JSON(fiber.Map{
		"status":    res.Status.String(),
		"reason":    res.Reason,
		"following": following,
	})
}

// GetFollowers handles GET /api/social/followers
func (s *Server) GetFollowers(c *fiber.Ctx) error {
	users, err := s.socialService.Followers(c.UserContext(), currentUserID(c))
	if err != nil {
		return respondAppError(c, err)
	}
	return c.JSON(fiber.Map{"users": users})
}

// GetFollowing handles GET /api/social/following
func (s *Server) GetFollowing(c *fiber.Ctx) error {
	users, err := s.socialService.Following(c.UserContext(), currentUserID(c))
	if err != nil {
		return respondAppError(c, err)
	}
	return c.JSON(fiber.Map{"users": users})
}

// BlockUser handles POST /api/social/block/:userId. The session updates
// its in-memory block set before the write lands, so the next feed render
// already filters the blocked author.
func (s *Server) BlockUser(c *fiber.Ctx) error {
	userID := currentUserID(c)
	targetID, err := parseUintParam(c, "userId")
	if err != nil {
		return nil
	}
	ctx := c.UserContext()

	sess, err := s.sessions.acquire(ctx, userID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	return respondMutation(c, sess.Block(ctx, targetID))
}

// UnblockUser handles DELETE /api/social/block/:userId
func (s *Server) UnblockUser(c *fiber.Ctx) error {
	userID := currentUserID(c)
	targetID, err := parseUintParam(c, "userId")
	if err != nil {
		return nil
	}
	ctx := c.UserContext()

	sess, err := s.sessions.acquire(ctx, userID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	return respondMutation(c, sess.Unblock(ctx, targetID))
}

// GetBlockedUsers handles GET /api/social/blocked
func (s *Server) GetBlockedUsers(c *fiber.Ctx) error {
	ids, err := s.socialService.BlockedIDs(c.UserContext(), currentUserID(c))
	if err != nil {
		return respondAppError(c, err)
	}
	return c.JSON(fiber.Map{"blockedIds": ids})
}
