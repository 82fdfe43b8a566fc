package billing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v79"

	"github.com/wolfman30/schedulepay/internal/payments"
)

// Register attaches the subscription processors to the Stripe webhook.
func (s *Service) Register(h *payments.WebhookHandler) {
	h.On("checkout.session.completed", s.onCheckoutCompleted)
	h.On("customer.subscription.created", s.onSubscriptionChanged)
	h.On("customer.subscription.updated", s.onSubscriptionChanged)
	h.On("customer.subscription.deleted", s.onSubscriptionChanged)
}

func (s *Service) onCheckoutCompleted(ctx context.Context, evt stripe.Event) error {
	var session stripe.CheckoutSession
	if err := json.Unmarshal(evt.Data.Raw, &session); err != nil {
		return fmt.Errorf("billing: decode checkout session: %w", err)
	}
	if session.Mode != stripe.CheckoutSessionModeSubscription {
		return nil
	}
	professionalID := strings.TrimSpace(session.Metadata["professional_id"])
	if professionalID == "" {
		professionalID = strings.TrimSpace(session.ClientReferenceID)
	}
	if professionalID == "" {
		s.logger.Warn("subscription checkout without professional reference", "session_id", session.ID)
		return nil
	}

	rec := &Record{ProfessionalID: professionalID, Status: string(stripe.SubscriptionStatusActive)}
	if session.Customer != nil {
		rec.CustomerID = session.Customer.ID
	}
	if session.Subscription != nil {
		rec.SubscriptionID = session.Subscription.ID
	}
	if err := s.Refresh(ctx, rec); err != nil {
		return err
	}
	s.logger.ForProfessional(professionalID).Info("subscription checkout completed", "customer_id", rec.CustomerID)
	return nil
}

func (s *Service) onSubscriptionChanged(ctx context.Context, evt stripe.Event) error {
	var sub stripe.Subscription
	if err := json.Unmarshal(evt.Data.Raw, &sub); err != nil {
		return fmt.Errorf("billing: decode subscription: %w", err)
	}

	professionalID := strings.TrimSpace(sub.Metadata["professional_id"])
	if professionalID == "" && sub.Customer != nil {
		existing, err := s.store.FindByCustomer(ctx, sub.Customer.ID)
		switch {
		case errors.Is(err, ErrNoSubscription):
		case err != nil:
			return err
		default:
			professionalID = existing.ProfessionalID
		}
	}
	if professionalID == "" {
		s.logger.Warn("subscription event for unknown professional", "subscription_id", sub.ID, "event_type", evt.Type)
		return nil
	}

	rec := &Record{ProfessionalID: professionalID}
	applySubscription(rec, &sub)
	if evt.Type == "customer.subscription.deleted" {
		rec.Status = string(stripe.SubscriptionStatusCanceled)
	}
	if err := s.Refresh(ctx, rec); err != nil {
		return err
	}
	s.logger.ForProfessional(professionalID).Info("subscription updated", "status", rec.Status, "subscription_id", sub.ID)
	return nil
}
