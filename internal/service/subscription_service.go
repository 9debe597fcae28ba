package service

import (
	"context"
	"errors"
	"time"

	"reverie/internal/functions"
	"reverie/internal/models"
	"reverie/internal/repository"

	"gorm.io/gorm"
)

var supportedPlans = map[string]struct{}{
	"dreamer-monthly": {},
	"dreamer-yearly":  {},
}

// SubscriptionService drives checkout through the remote payments function
// and tracks the resulting subscription state.
type SubscriptionService struct {
	subscriptionRepo repository.SubscriptionRepository
	fns              *functions.Client
}

// NewSubscriptionService creates a subscription service.
func NewSubscriptionService(subscriptionRepo repository.SubscriptionRepository, fns *functions.Client) *SubscriptionService {
	return &SubscriptionService{subscriptionRepo: subscriptionRepo, fns: fns}
}

// StartCheckout creates a remote checkout session and records the pending
// subscription locally.
func (s *SubscriptionService) StartCheckout(ctx context.Context, userID uint, plan string) (*functions.CheckoutSession, error) {
	if userID == 0 {
		return nil, models.NewUnauthorizedError("Sign in required")
	}
	if _, ok := supportedPlans[plan]; !ok {
		return nil, models.NewValidationError("Unknown plan")
	}

	session, err := s.fns.CreateCheckoutSession(ctx, userID, plan)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	sub := &models.Subscription{
		UserID:            userID,
		Plan:              plan,
		Status:            models.SubscriptionStatusPending,
		CheckoutSessionID: session.SessionID,
	}
	if err := s.subscriptionRepo.Upsert(ctx, sub); err != nil {
		return nil, models.NewInternalError(err)
	}
	return session, nil
}

// GetSubscription returns the user's subscription, or a canceled-equivalent
// zero record when they never subscribed.
func (s *SubscriptionService) GetSubscription(ctx context.Context, userID uint) (*models.Subscription, error) {
	sub, err := s.subscriptionRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &models.Subscription{UserID: userID, Status: models.SubscriptionStatusCanceled}, nil
		}
		return nil, models.NewInternalError(err)
	}
	return sub, nil
}

// ActivateFromWebhook flips a pending subscription active once the payment
// processor confirms the checkout session.
func (s *SubscriptionService) ActivateFromWebhook(ctx context.Context, userID uint, sessionID string, periodEnd time.Time) error {
	sub, err := s.subscriptionRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NewNotFoundError("Subscription", userID)
		}
		return models.NewInternalError(err)
	}
	if sub.CheckoutSessionID != sessionID {
		return models.NewConflictError("Checkout session does not match")
	}

	sub.Status = models.SubscriptionStatusActive
	sub.CurrentPeriodEnd = &periodEnd
	if err := s.subscriptionRepo.Upsert(ctx, sub); err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// Cancel marks the subscription canceled at the period end.
func (s *SubscriptionService) Cancel(ctx context.Context, userID uint) error {
	sub, err := s.subscriptionRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NewNotFoundError("Subscription", userID)
		}
		return models.NewInternalError(err)
	}
	sub.Status = models.SubscriptionStatusCanceled
	if err := s.subscriptionRepo.Upsert(ctx, sub); err != nil {
		return models.NewInternalError(err)
	}
	return nil
}
