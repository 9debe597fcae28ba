package server

import "github.com/gofiber/fiber/v2"

// GetFeatureFlags handles GET /api/flags. Clients use the evaluated map to
// decide which affordances to render for the signed-in user.
func (s *Server) GetFeatureFlags(c *fiber.Ctx) error {
	userID := currentUserID(c)

	return c.JSON(fiber.Map{
		"raw":       s.featureFlags.Raw(),
		"evaluated": s.featureFlags.Snapshot(userID),
	})
}
