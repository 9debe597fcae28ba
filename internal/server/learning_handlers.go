package server

import (
	"github.com/gofiber/fiber/v2"
)

// GetLearningPaths handles GET /api/learning/paths
func (s *Server) GetLearningPaths(c *fiber.Ctx) error {
	paths, err := s.learningService.ListPaths(c.UserContext(), currentUserID(c))
	if err != nil {
		return respondAppError(c, err)
	}
	return c.JSON(fiber.Map{"paths": paths})
}

// CompleteLearningStep handles POST /api/learning/steps/:stepId/complete
func (s *Server) CompleteLearningStep(c *fiber.Ctx) error {
	if err := s.learningService.CompleteStep(c.UserContext(), currentUserID(c), c.Params("stepId")); err != nil {
		return respondAppError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Step completed"})
}
