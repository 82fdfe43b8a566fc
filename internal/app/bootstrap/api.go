// Package bootstrap wires configuration, storage and handlers into the API.
package bootstrap

import (
	"context"
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/wolfman30/schedulepay/internal/api/router"
	"github.com/wolfman30/schedulepay/internal/appointments"
	"github.com/wolfman30/schedulepay/internal/auth"
	"github.com/wolfman30/schedulepay/internal/availability"
	"github.com/wolfman30/schedulepay/internal/billing"
	"github.com/wolfman30/schedulepay/internal/booking"
	"github.com/wolfman30/schedulepay/internal/catalog"
	appconfig "github.com/wolfman30/schedulepay/internal/config"
	"github.com/wolfman30/schedulepay/internal/dashboard"
	httpmiddleware "github.com/wolfman30/schedulepay/internal/http/middleware"
	"github.com/wolfman30/schedulepay/internal/observability/metrics"
	"github.com/wolfman30/schedulepay/internal/payments"
	"github.com/wolfman30/schedulepay/internal/professionals"
	"github.com/wolfman30/schedulepay/pkg/logging"
)

// Deps are the external resources the API runs against. Nil Redis and a
// Stores built without a pool give a self-contained process.
type Deps struct {
	Stores   *Stores
	Redis    *redis.Client
	Gateway  payments.Gateway
	Registry *prometheus.Registry
	// Ping reports storage health for /health.
	Ping func(ctx context.Context) error
}

// BuildGateway picks the live Stripe client or the dry-run stand-in.
func BuildGateway(cfg *appconfig.Config, logger *logging.Logger) payments.Gateway {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.StripeDryRun || strings.TrimSpace(cfg.StripeSecretKey) == "" {
		logger.Warn("stripe running in dry-run mode")
		return payments.NewDryRunGateway(logger)
	}
	return payments.NewStripeGateway(cfg.StripeSecretKey, logger)
}

// NewAPI assembles the HTTP handler.
func NewAPI(cfg *appconfig.Config, deps Deps, logger *logging.Logger) http.Handler {
	if logger == nil {
		logger = logging.Default()
	}
	reg := deps.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	m := metrics.NewBookingMetrics(reg)
	loc := cfg.Location()
	stores := deps.Stores

	var revocations auth.RevocationStore = auth.NewMemoryRevocations()
	if deps.Redis != nil {
		revocations = auth.NewRedisRevocations(deps.Redis)
	}
	verifier := auth.NewVerifier(cfg.AuthJWTSecret, revocations)
	if strings.TrimSpace(cfg.AuthJWTSecret) == "" {
		logger.Warn("AUTH_JWT_SECRET not set; professional routes disabled")
		verifier = nil
	}

	appts := appointments.NewService(stores.Appointments, m, logger)
	bookingSvc := booking.NewService(stores.Professionals, stores.Services, stores.Rules, appts, logger,
		booking.WithLocation(loc),
		booking.WithMetrics(m),
	)

	var summarySource dashboard.Source = dashboard.NewListSource(appts)
	if stores.SQL != nil {
		summarySource = dashboard.NewSQLSource(stores.SQL)
	}

	checkout := payments.NewCheckoutService(deps.Gateway, appts, cfg.StripeCurrency, m, logger)
	billingSvc := billing.NewService(deps.Gateway, stores.Subscriptions,
		billing.NewStatusCache(deps.Redis, cfg.SubscriptionCacheTTL),
		cfg.BillingReturnURL, m, logger)

	webhooks := payments.NewWebhookHandler(cfg.StripeWebhookSecret, stores.Ledger, m, logger)
	webhooks.On("checkout.session.completed", payments.ConfirmPaidAppointments(appts, logger))
	billingSvc.Register(webhooks)

	routerCfg := &router.Config{
		Logger:             logger,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		MetricsHandler:     promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		MetricsGatherer:    reg,
		HealthCheck:        deps.Ping,
		RateLimiter:        httpmiddleware.NewRateLimiter(deps.Redis, cfg.PublicRateLimit, cfg.PublicRateWindow, true, logger),
		Booking:            booking.NewHandler(bookingSvc, logger),
		Checkout:           payments.NewCheckoutHandler(checkout, cfg.PublicBaseURL, logger),
		StripeWebhook:      webhooks,
	}
	if verifier != nil {
		routerCfg.Verifier = verifier
		routerCfg.Auth = auth.NewHandler(verifier, stores.Professionals, logger)
		routerCfg.Services = catalog.NewHandler(stores.Services, logger)
		routerCfg.Availability = availability.NewHandler(stores.Rules, logger)
		routerCfg.Appointments = appointments.NewHandler(appts, logger)
		routerCfg.Professionals = professionals.NewHandler(stores.Professionals, logger)
		routerCfg.Dashboard = dashboard.NewHandler(dashboard.NewService(summarySource, loc), logger)
		routerCfg.Billing = billing.NewHandler(billingSvc, cfg.PublicBaseURL, logger)
	}
	return router.New(routerCfg)
}
