// Package billing manages the professional's own SaaS subscription through
// Stripe: status checks, subscription checkout and the customer portal.
package billing

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/stripe/stripe-go/v79"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/wolfman30/schedulepay/internal/observability/metrics"
	"github.com/wolfman30/schedulepay/internal/payments"
	"github.com/wolfman30/schedulepay/pkg/logging"
)

var billingTracer = otel.Tracer("schedulepay.internal.billing")

// Account identifies the signed-in professional.
type Account struct {
	ProfessionalID string
	Email          string
}

func (a Account) validate() error {
	if strings.TrimSpace(a.ProfessionalID) == "" {
		return ErrMissingTenantID
	}
	if strings.TrimSpace(a.Email) == "" {
		return ErrMissingEmail
	}
	return nil
}

type Service struct {
	gateway   payments.Gateway
	store     Store
	cache     *StatusCache
	returnURL string
	metrics   *metrics.BookingMetrics
	logger    *logging.Logger
}

// NewService wires billing. cache may be nil.
func NewService(gateway payments.Gateway, store Store, cache *StatusCache, returnURL string, m *metrics.BookingMetrics, logger *logging.Logger) *Service {
	if gateway == nil || store == nil {
		panic("billing: gateway and store required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		gateway:   gateway,
		store:     store,
		cache:     cache,
		returnURL: returnURL,
		metrics:   m,
		logger:    logger,
	}
}

// CheckSubscription reports whether the account's Stripe customer has an
// active subscription. Answers are cached and persisted.
func (s *Service) CheckSubscription(ctx context.Context, acct Account) (*Status, error) {
	ctx, span := billingTracer.Start(ctx, "billing.check_subscription")
	defer span.End()
	span.SetAttributes(attribute.String("schedulepay.professional_id", acct.ProfessionalID))

	if err := acct.validate(); err != nil {
		return nil, err
	}
	log := s.logger.ForProfessional(acct.ProfessionalID)

	if cached, err := s.cache.Get(ctx, acct.ProfessionalID); err != nil {
		log.Warn("subscription cache read failed", "error", err)
	} else if cached != nil {
		return cached, nil
	}

	customerID, err := s.gateway.FindCustomerByEmail(ctx, acct.Email)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	rec := &Record{ProfessionalID: acct.ProfessionalID, CustomerID: customerID, Status: "none"}
	if customerID != "" {
		sub, err := s.gateway.ActiveSubscription(ctx, customerID)
		if err != nil {
			span.RecordError(err)
			return nil, err
		}
		if sub != nil {
			applySubscription(rec, sub)
		}
	}

	if err := s.store.Upsert(ctx, rec); err != nil {
		return nil, err
	}
	st := rec.ToStatus()
	if err := s.cache.Set(ctx, acct.ProfessionalID, st); err != nil {
		log.Warn("subscription cache write failed", "error", err)
	}
	log.Info("subscription checked", "subscribed", st.Subscribed, "customer_id", customerID)
	return &st, nil
}

// CreateCheckout opens a subscription Checkout Session for priceID.
func (s *Service) CreateCheckout(ctx context.Context, acct Account, priceID, origin string) (string, error) {
	ctx, span := billingTracer.Start(ctx, "billing.create_checkout")
	defer span.End()

	url, err := s.createCheckout(ctx, acct, priceID, origin)
	s.metrics.ObserveCheckout("subscription", err)
	if err != nil {
		span.RecordError(err)
		return "", err
	}
	return url, nil
}

func (s *Service) createCheckout(ctx context.Context, acct Account, priceID, origin string) (string, error) {
	if err := acct.validate(); err != nil {
		return "", err
	}
	priceID = strings.TrimSpace(priceID)
	if priceID == "" {
		return "", ErrMissingPriceID
	}
	customerID, err := s.gateway.FindCustomerByEmail(ctx, acct.Email)
	if err != nil {
		return "", err
	}

	origin = strings.TrimRight(origin, "/")
	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		ClientReferenceID: stripe.String(acct.ProfessionalID),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{Price: stripe.String(priceID), Quantity: stripe.Int64(1)},
		},
		SuccessURL: stripe.String(origin + "/dashboard?subscription=success"),
		CancelURL:  stripe.String(origin + "/dashboard?subscription=cancelled"),
		Metadata:   map[string]string{"professional_id": acct.ProfessionalID},
		SubscriptionData: &stripe.CheckoutSessionSubscriptionDataParams{
			Metadata: map[string]string{"professional_id": acct.ProfessionalID},
		},
	}
	if customerID != "" {
		params.Customer = stripe.String(customerID)
	} else {
		params.CustomerEmail = stripe.String(acct.Email)
	}

	sess, err := s.gateway.CreateCheckoutSession(ctx, params)
	if err != nil {
		return "", err
	}
	s.logger.ForProfessional(acct.ProfessionalID).Info("subscription checkout created", "session_id", sess.ID, "price_id", priceID)
	return sess.URL, nil
}

// CustomerPortal returns a billing portal URL for the account's customer.
func (s *Service) CustomerPortal(ctx context.Context, acct Account) (string, error) {
	ctx, span := billingTracer.Start(ctx, "billing.customer_portal")
	defer span.End()

	if err := acct.validate(); err != nil {
		return "", err
	}
	customerID, err := s.gateway.FindCustomerByEmail(ctx, acct.Email)
	if err != nil {
		span.RecordError(err)
		return "", err
	}
	if customerID == "" {
		return "", ErrNoCustomer
	}
	sess, err := s.gateway.CreatePortalSession(ctx, customerID, s.returnURL)
	if err != nil {
		span.RecordError(err)
		return "", err
	}
	return sess.URL, nil
}

// Refresh stores rec and drops the cached answer for its professional.
func (s *Service) Refresh(ctx context.Context, rec *Record) error {
	if err := s.store.Upsert(ctx, rec); err != nil {
		return err
	}
	if err := s.cache.Invalidate(ctx, rec.ProfessionalID); err != nil {
		return fmt.Errorf("billing: refresh %s: %w", rec.ProfessionalID, err)
	}
	return nil
}

func applySubscription(rec *Record, sub *stripe.Subscription) {
	rec.SubscriptionID = sub.ID
	rec.Status = string(sub.Status)
	if sub.CurrentPeriodEnd > 0 {
		end := time.Unix(sub.CurrentPeriodEnd, 0).UTC()
		rec.CurrentPeriodEnd = &end
	}
	if sub.Items != nil {
		for _, item := range sub.Items.Data {
			if item != nil && item.Price != nil && item.Price.Product != nil {
				rec.ProductID = item.Price.Product.ID
				break
			}
		}
	}
	if sub.Customer != nil && sub.Customer.ID != "" {
		rec.CustomerID = sub.Customer.ID
	}
}
