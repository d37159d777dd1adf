// Package billing applies Stripe subscription events to user profiles.
package billing

import (
	"context"
	"errors"
	"fmt"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"

	"github.com/intentiq/intentiq/internal/domain"
	"github.com/intentiq/intentiq/internal/logger"
)

// ProfileStore is the slice of the profile repository billing needs.
type ProfileStore interface {
	UpdateSubscription(ctx context.Context, userID string, tier domain.PlanTier, status, subscriptionID string) error
	FindBySubscriptionID(ctx context.Context, subscriptionID string) (*domain.UserProfile, error)
}

// Service verifies Stripe webhooks and reconciles subscription state.
type Service struct {
	profiles      ProfileStore
	webhookSecret string
	log           logger.Logger
}

func NewService(profiles ProfileStore, webhookSecret string, log logger.Logger) *Service {
	return &Service{profiles: profiles, webhookSecret: webhookSecret, log: log}
}

// VerifyAndParse checks the webhook signature and decodes the event.
func (s *Service) VerifyAndParse(payload []byte, signature string) (*stripe.Event, error) {
	event, err := webhook.ConstructEvent(payload, signature, s.webhookSecret)
	if err != nil {
		return nil, fmt.Errorf("webhook signature verification failed: %w", err)
	}
	return &event, nil
}

// HandleEvent applies one verified event. Unrecognized event types are
// acknowledged without action so Stripe does not retry them.
func (s *Service) HandleEvent(ctx context.Context, event *stripe.Event) error {
	switch event.Type {
	case "checkout.session.completed":
		return s.handleCheckoutCompleted(ctx, event)
	case "invoice.payment_failed":
		return s.handlePaymentFailed(ctx, event)
	case "customer.subscription.deleted":
		return s.handleSubscriptionDeleted(ctx, event)
	default:
		s.log.Debug("Ignoring billing event", logger.String("type", string(event.Type)))
		return nil
	}
}

// handleCheckoutCompleted activates the tier purchased at checkout. The user
// and tier ride along in the session metadata set when the checkout was
// created.
func (s *Service) handleCheckoutCompleted(ctx context.Context, event *stripe.Event) error {
	var sess stripe.CheckoutSession
	if err := sess.UnmarshalJSON(event.Data.Raw); err != nil {
		return fmt.Errorf("unmarshal checkout session: %w", err)
	}

	userID := sess.Metadata["user_id"]
	tier := domain.PlanTier(sess.Metadata["tier"])
	if userID == "" || !tier.Valid() {
		return domain.InvalidInputf("checkout session %s missing user_id/tier metadata", sess.ID)
	}

	subscriptionID := ""
	if sess.Subscription != nil {
		subscriptionID = sess.Subscription.ID
	}

	if err := s.profiles.UpdateSubscription(ctx, userID, tier, "active", subscriptionID); err != nil {
		return fmt.Errorf("activate subscription: %w", err)
	}

	s.log.Info("Subscription activated",
		logger.String("user_id", userID),
		logger.String("tier", string(tier)),
		logger.String("subscription_id", subscriptionID),
	)
	return nil
}

// handlePaymentFailed marks the subscription past due; the tier stays until
// the subscription is actually cancelled.
func (s *Service) handlePaymentFailed(ctx context.Context, event *stripe.Event) error {
	var inv stripe.Invoice
	if err := inv.UnmarshalJSON(event.Data.Raw); err != nil {
		return fmt.Errorf("unmarshal invoice: %w", err)
	}

	subscriptionID := subscriptionIDFromInvoice(&inv)
	if subscriptionID == "" {
		s.log.Warn("Payment failed event without subscription", logger.String("invoice", inv.ID))
		return nil
	}

	profile, err := s.profiles.FindBySubscriptionID(ctx, subscriptionID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.log.Warn("Payment failed for unknown subscription",
				logger.String("subscription_id", subscriptionID))
			return nil
		}
		return err
	}

	if err := s.profiles.UpdateSubscription(ctx, profile.UserID, profile.SubscriptionTier, "past_due", subscriptionID); err != nil {
		return fmt.Errorf("mark past due: %w", err)
	}

	s.log.Warn("Subscription past due",
		logger.String("user_id", profile.UserID),
		logger.String("subscription_id", subscriptionID),
	)
	return nil
}

// handleSubscriptionDeleted downgrades the user to the free tier.
func (s *Service) handleSubscriptionDeleted(ctx context.Context, event *stripe.Event) error {
	var sub stripe.Subscription
	if err := sub.UnmarshalJSON(event.Data.Raw); err != nil {
		return fmt.Errorf("unmarshal subscription: %w", err)
	}

	profile, err := s.profiles.FindBySubscriptionID(ctx, sub.ID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.log.Warn("Cancellation for unknown subscription", logger.String("subscription_id", sub.ID))
			return nil
		}
		return err
	}

	if err := s.profiles.UpdateSubscription(ctx, profile.UserID, domain.TierFree, "canceled", ""); err != nil {
		return fmt.Errorf("downgrade subscription: %w", err)
	}

	s.log.Info("Subscription canceled, user downgraded to free",
		logger.String("user_id", profile.UserID),
	)
	return nil
}

func subscriptionIDFromInvoice(inv *stripe.Invoice) string {
	if inv.Parent != nil && inv.Parent.SubscriptionDetails != nil && inv.Parent.SubscriptionDetails.Subscription != nil {
		return inv.Parent.SubscriptionDetails.Subscription.ID
	}
	return ""
}
