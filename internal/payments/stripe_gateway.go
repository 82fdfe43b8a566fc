package payments

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/wolfman30/schedulepay/pkg/logging"
)

var stripeTracer = otel.Tracer("schedulepay.internal.payments.stripe")

// ErrGateway wraps any failure reported by the payment provider.
var ErrGateway = errors.New("payment gateway error")

// Gateway is the subset of Stripe the booking and billing flows call.
type Gateway interface {
	// FindCustomerByEmail returns "" when no customer matches.
	FindCustomerByEmail(ctx context.Context, email string) (string, error)
	CreateCheckoutSession(ctx context.Context, params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
	// ActiveSubscription returns nil when the customer has none.
	ActiveSubscription(ctx context.Context, customerID string) (*stripe.Subscription, error)
	CreatePortalSession(ctx context.Context, customerID, returnURL string) (*stripe.BillingPortalSession, error)
}

// StripeGateway calls the Stripe API through stripe-go.
type StripeGateway struct {
	api    *client.API
	logger *logging.Logger
}

// GatewayOption customizes a StripeGateway.
type GatewayOption func(*stripe.BackendConfig)

// WithBackendURL points the client at another API host (for testing).
func WithBackendURL(url string) GatewayOption {
	return func(c *stripe.BackendConfig) {
		if url != "" {
			c.URL = stripe.String(strings.TrimRight(url, "/"))
		}
	}
}

func NewStripeGateway(secretKey string, logger *logging.Logger, opts ...GatewayOption) *StripeGateway {
	if logger == nil {
		logger = logging.Default()
	}
	cfg := &stripe.BackendConfig{
		MaxNetworkRetries: stripe.Int64(0),
		LeveledLogger:     &stripe.LeveledLogger{Level: stripe.LevelError},
	}
	for _, opt := range opts {
		opt(cfg)
	}
	backend := stripe.GetBackendWithConfig(stripe.APIBackend, cfg)
	api := client.New(secretKey, &stripe.Backends{
		API:     backend,
		Connect: backend,
		Uploads: backend,
	})
	return &StripeGateway{api: api, logger: logger}
}

func (g *StripeGateway) FindCustomerByEmail(ctx context.Context, email string) (string, error) {
	ctx, span := stripeTracer.Start(ctx, "stripe.find_customer")
	defer span.End()

	params := &stripe.CustomerListParams{Email: stripe.String(email)}
	params.Limit = stripe.Int64(1)
	params.Single = true
	params.Context = ctx

	it := g.api.Customers.List(params)
	if it.Next() {
		return it.Customer().ID, nil
	}
	if err := it.Err(); err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("%w: list customers: %v", ErrGateway, err)
	}
	return "", nil
}

func (g *StripeGateway) CreateCheckoutSession(ctx context.Context, params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	ctx, span := stripeTracer.Start(ctx, "stripe.create_checkout_session")
	defer span.End()
	if params.Mode != nil {
		span.SetAttributes(attribute.String("schedulepay.checkout_mode", *params.Mode))
	}

	params.Context = ctx
	sess, err := g.api.CheckoutSessions.New(params)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("%w: create checkout session: %v", ErrGateway, err)
	}
	if sess.URL == "" {
		return nil, fmt.Errorf("%w: checkout session %s has no url", ErrGateway, sess.ID)
	}
	return sess, nil
}

func (g *StripeGateway) ActiveSubscription(ctx context.Context, customerID string) (*stripe.Subscription, error) {
	ctx, span := stripeTracer.Start(ctx, "stripe.active_subscription")
	defer span.End()

	params := &stripe.SubscriptionListParams{
		Customer: stripe.String(customerID),
		Status:   stripe.String(string(stripe.SubscriptionStatusActive)),
	}
	params.Limit = stripe.Int64(1)
	params.Single = true
	params.Context = ctx

	it := g.api.Subscriptions.List(params)
	if it.Next() {
		return it.Subscription(), nil
	}
	if err := it.Err(); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("%w: list subscriptions: %v", ErrGateway, err)
	}
	return nil, nil
}

func (g *StripeGateway) CreatePortalSession(ctx context.Context, customerID, returnURL string) (*stripe.BillingPortalSession, error) {
	ctx, span := stripeTracer.Start(ctx, "stripe.create_portal_session")
	defer span.End()

	params := &stripe.BillingPortalSessionParams{
		Customer:  stripe.String(customerID),
		ReturnURL: stripe.String(returnURL),
	}
	params.Context = ctx
	sess, err := g.api.BillingPortalSessions.New(params)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("%w: create portal session: %v", ErrGateway, err)
	}
	return sess, nil
}

// DryRunGateway fabricates Stripe objects without network calls.
type DryRunGateway struct {
	logger *logging.Logger
}

func NewDryRunGateway(logger *logging.Logger) *DryRunGateway {
	if logger == nil {
		logger = logging.Default()
	}
	return &DryRunGateway{logger: logger}
}

func (d *DryRunGateway) FindCustomerByEmail(_ context.Context, email string) (string, error) {
	return "", nil
}

func (d *DryRunGateway) CreateCheckoutSession(_ context.Context, params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	fakeID := "cs_dryrun_" + uuid.New().String()[:8]
	d.logger.Info("stripe dry run: skipping checkout session creation", "session_id", fakeID)
	return &stripe.CheckoutSession{
		ID:  fakeID,
		URL: fmt.Sprintf("https://checkout.stripe.com/dry-run/%s", fakeID),
	}, nil
}

func (d *DryRunGateway) ActiveSubscription(_ context.Context, customerID string) (*stripe.Subscription, error) {
	return nil, nil
}

func (d *DryRunGateway) CreatePortalSession(_ context.Context, customerID, returnURL string) (*stripe.BillingPortalSession, error) {
	fakeID := "bps_dryrun_" + uuid.New().String()[:8]
	d.logger.Info("stripe dry run: skipping portal session creation", "customer_id", customerID)
	return &stripe.BillingPortalSession{
		ID:        fakeID,
		URL:       fmt.Sprintf("https://billing.stripe.com/dry-run/%s", fakeID),
		ReturnURL: returnURL,
		Created:   time.Now().Unix(),
	}, nil
}
