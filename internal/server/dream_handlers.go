package server

import (
	"context"

	"reverie/internal/cache"
	"reverie/internal/models"
	"reverie/internal/service"
	"reverie/internal/session"

	"github.com/gofiber/fiber/v2"
)

// CreateDream handles POST /api/dreams
func (s *Server) CreateDream(c *fiber.Ctx) error {
	userID := currentUserID(c)

	var req struct {
		Title    string   `json:"title"`
		Body     string   `json:"body"`
		Mood     string   `json:"mood"`
		IsLucid  bool     `json:"isLucid"`
		IsPublic bool     `json:"isPublic"`
		ImageURL string   `json:"imageUrl"`
		AudioURL string   `json:"audioUrl"`
		TagIDs   []string `json:"tagIds"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	dream, err := s.dreamService.CreateDream(c.UserContext(), service.CreateDreamInput{
		UserID:   userID,
		Title:    req.Title,
		Body:     req.Body,
		Mood:     req.Mood,
		IsLucid:  req.IsLucid,
		IsPublic: req.IsPublic,
		ImageURL: req.ImageURL,
		AudioURL: req.AudioURL,
		TagIDs:   req.TagIDs,
	})
	if err != nil {
		return respondAppError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dream)
}

// GetDream handles GET /api/dreams/:id. Private dreams resolve only for
// their author; everyone else gets a 404 rather than a hint the dream exists.
func (s *Server) GetDream(c *fiber.Ctx) error {
	viewerID, _ := s.optionalUserID(c)

	dream, err := s.dreamService.GetDream(c.UserContext(), c.Params("id"), viewerID)
	if err != nil {
		return respondAppError(c, err)
	}
	return c.JSON(dream)
}

// GetUserDreams handles GET /api/users/:id/dreams
func (s *Server) GetUserDreams(c *fiber.Ctx) error {
	targetID, err := parseUintParam(c, "id")
	if err != nil {
		return nil
	}
	viewerID, _ := s.optionalUserID(c)
	p := parsePagination(c, 20)

	dreams, err := s.dreamService.ListUserDreams(c.UserContext(), targetID, p.Limit, p.Offset, viewerID)
	if err != nil {
		return respondAppError(c, err)
	}
	return c.JSON(fiber.Map{"dreams": dreams})
}

// UpdateDream handles PUT /api/dreams/:id
func (s *Server) UpdateDream(c *fiber.Ctx) error {
	userID := currentUserID(c)

	var req struct {
		Title   string   `json:"title"`
		Body    string   `json:"body"`
		Mood    string   `json:"mood"`
		IsLucid bool     `json:"isLucid"`
		TagIDs  []string `json:"tagIds"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	dream, err := s.dreamService.UpdateDream(c.UserContext(), service.UpdateDreamInput{
		UserID:  userID,
		DreamID: c.Params("id"),
		Title:   req.Title,
		Body:    req.Body,
		Mood:    req.Mood,
		IsLucid: req.IsLucid,
		TagIDs:  req.TagIDs,
	})
	if err != nil {
		return respondAppError(c, err)
	}
	return c.JSON(dream)
}

// DeleteDream handles DELETE /api/dreams/:id
func (s *Server) DeleteDream(c *fiber.Ctx) error {
	userID := currentUserID(c)

	if err := s.dreamService.DeleteDream(c.UserContext(), c.Params("id"), userID); err != nil {
		return respondAppError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Dream deleted"})
}

// ToggleDreamLike handles POST /api/dreams/:id/like. The session mutator
// owns the optimistic flip; dreams that never entered a feed fall back to
// the canonical service toggle.
func (s *Server) ToggleDreamLike(c *fiber.Ctx) error {
	userID := currentUserID(c)
	dreamID := c.Params("id")
	ctx := c.UserContext()

	sess, err := s.sessions.acquire(ctx, userID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	res := sess.ToggleLike(ctx, dreamID)
	if res.Status == session.StatusFailed && res.Reason == session.ReasonNotInLocalState {
		liked, likeCount, err := s.dreamService.ToggleLike(ctx, dreamID, userID)
		if err != nil {
			return respondAppError(c, err)
		}
		return c.JSON(fiber.Map{
			"status":    session.StatusCommitted.String(),
			"liked":     liked,
			"likeCount": likeCount,
		})
	}
	return respondMutation(c, res)
}

// ToggleDreamVisibility handles POST /api/dreams/:id/visibility. Making a
// dream private invalidates the recent-feed cache shortly after, matching
// the detail-view close delay.
func (s *Server) ToggleDreamVisibility(c *fiber.Ctx) error {
	userID := currentUserID(c)
	dreamID := c.Params("id")
	ctx := c.UserContext()

	sess, err := s.sessions.acquire(ctx, userID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	res := sess.ToggleVisibility(ctx, dreamID, func() {
		cache.InvalidateRecentFeed(context.Background())
	})
	if res.Status == session.StatusFailed && res.Reason == session.ReasonNotInLocalState {
		return s.toggleVisibilityDirect(c, dreamID, userID)
	}
	return respondMutation(c, res)
}

// toggleVisibilityDirect flips visibility through the service layer for
// dreams absent from the session store.
func (s *Server) toggleVisibilityDirect(c *fiber.Ctx, dreamID string, userID uint) error {
	ctx := c.UserContext()

	dream, err := s.dreamService.GetDream(ctx, dreamID, userID)
	if err != nil {
		return respondAppError(c, err)
	}

	makePublic := !dream.IsPublic
	if err := s.dreamService.SetVisibility(ctx, dreamID, userID, makePublic); err != nil {
		return respondAppError(c, err)
	}
	if !makePublic {
		cache.InvalidateRecentFeed(context.Background())
	}
	return c.JSON(fiber.Map{
		"status":   session.StatusCommitted.String(),
		"isPublic": makePublic,
	})
}

// AnalyzeDream handles POST /api/dreams/:id/analysis
func (s *Server) AnalyzeDream(c *fiber.Ctx) error {
	userID := currentUserID(c)

	if !s.featureFlags.Enabled("dream_analysis", userID) {
		return respondAppError(c, models.NewForbiddenError("Dream analysis is not available for this account"))
	}

	analysis, err := s.analysisService.AnalyzeDream(c.UserContext(), c.Params("id"), userID)
	if err != nil {
		return respondAppError(c, err)
	}
	return c.JSON(analysis)
}

// respondMutation writes an optimistic mutation result. A pending result
// means an earlier mutation on the same target has not settled yet.
func respondMutation(c *fiber.Ctx, res session.MutationResult) error {
	status := fiber.StatusOK
	if res.Status == session.StatusPending {
		status = fiber.StatusConflict
	}
	return c.Status(status).JSON(fiber.Map{
		"status": res.Status.String(),
		"reason": res.Reason,
	})
}
