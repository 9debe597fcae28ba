package server

import (
	"crypto/subtle"
	"time"

	"reverie/internal/models"

	"github.com/gofiber/fiber/v2"
)

// StartCheckout handles POST /api/subscriptions/checkout
func (s *Server) StartCheckout(c *fiber.Ctx) error {
	var req struct {
		Plan string `json:"plan"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	checkout, err := s.subscriptionService.StartCheckout(c.UserContext(), currentUserID(c), req.Plan)
	if err != nil {
		return respondAppError(c, err)
	}
	return c.JSON(checkout)
}

// GetMySubscription handles GET /api/subscriptions/me
func (s *Server) GetMySubscription(c *fiber.Ctx) error {
	sub, err := s.subscriptionService.GetSubscription(c.UserContext(), currentUserID(c))
	if err != nil {
		return respondAppError(c, err)
	}
	return c.JSON(sub)
}

// CancelSubscription handles DELETE /api/subscriptions/me
func (s *Server) CancelSubscription(c *fiber.Ctx) error {
	if err := s.subscriptionService.Cancel(c.UserContext(), currentUserID(c)); err != nil {
		return respondAppError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Subscription canceled"})
}

// SubscriptionWebhook handles POST /api/subscriptions/webhook. Called by
// the payment function after checkout completes; authenticated with the
// shared functions API key rather than a user token.
func (s *Server) SubscriptionWebhook(c *fiber.Ctx) error {
	key := c.Get("X-Api-Key")
	if s.config.FunctionsAPIKey == "" ||
		subtle.ConstantTimeCompare([]byte(key), []byte(s.config.FunctionsAPIKey)) != 1 {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Invalid webhook key"))
	}

	var req struct {
		UserID    uint   `json:"userId"`
		SessionID string `json:"sessionId"`
		PeriodEnd string `json:"periodEnd"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	periodEnd, err := time.Parse(time.RFC3339, req.PeriodEnd)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid periodEnd"))
	}

	if err := s.subscriptionService.ActivateFromWebhook(c.UserContext(), req.UserID, req.SessionID, periodEnd); err != nil {
		return respondAppError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Subscription activated"})
}
