package server

import (
	"reverie/internal/models"

	"github.com/gofiber/fiber/v2"
)

// CreateComment handles POST /api/dreams/:id/comments. The session mutator
// bumps the local count optimistically; the write itself always goes
// through the service so author notifications fire in one place.
func (s *Server) CreateComment(c *fiber.Ctx) error {
	userID := currentUserID(c)
	dreamID := c.Params("id")
	ctx := c.UserContext()

	var req struct {
		Body string `json:"body"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	sess, err := s.sessions.acquire(ctx, userID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	res := sess.Comment(ctx, dreamID, req.Body)
	return respondMutation(c, res)
}

// GetComments handles GET /api/dreams/:id/comments
func (s *Server) GetComments(c *fiber.Ctx) error {
	viewerID, _ := s.optionalUserID(c)
	p := parsePagination(c, 50)

	comments, err := s.commentService.ListComments(c.UserContext(), c.Params("id"), p.Limit, p.Offset, viewerID)
	if err != nil {
		return respondAppError(c, err)
	}
	return c.JSON(fiber.Map{"comments": comments})
}

// UpdateComment handles PUT /api/dreams/:id/comments/:commentId
func (s *Server) UpdateComment(c *fiber.Ctx) error {
	userID := currentUserID(c)
	commentID, err := parseUintParam(c, "commentId")
	if err != nil {
		return nil
	}

	var req struct {
		Body string `json:"body"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	comment, err := s.commentService.UpdateComment(c.UserContext(), commentID, userID, req.Body)
	if err != nil {
		return respondAppError(c, err)
	}
	return c.JSON(comment)
}

// DeleteComment handles DELETE /api/dreams/:id/comments/:commentId
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	userID := currentUserID(c)
	commentID, err := parseUintParam(c, "commentId")
	if err != nil {
		return nil
	}

	if err := s.commentService.DeleteComment(c.UserContext(), commentID, userID); err != nil {
		return respondAppError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Comment deleted"})
}
