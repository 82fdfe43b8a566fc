package router

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/wolfman30/schedulepay/internal/appointments"
	"github.com/wolfman30/schedulepay/internal/auth"
	"github.com/wolfman30/schedulepay/internal/availability"
	"github.com/wolfman30/schedulepay/internal/billing"
	"github.com/wolfman30/schedulepay/internal/booking"
	"github.com/wolfman30/schedulepay/internal/catalog"
	"github.com/wolfman30/schedulepay/internal/dashboard"
	httpmiddleware "github.com/wolfman30/schedulepay/internal/http/middleware"
	"github.com/wolfman30/schedulepay/internal/http/respond"
	"github.com/wolfman30/schedulepay/internal/observability/metrics"
	"github.com/wolfman30/schedulepay/internal/payments"
	"github.com/wolfman30/schedulepay/internal/professionals"
	"github.com/wolfman30/schedulepay/pkg/logging"
)

// Config holds router configuration. Nil handlers leave their routes unmounted.
type Config struct {
	Logger             *logging.Logger
	CORSAllowedOrigins []string
	MetricsHandler     http.Handler
	// MetricsGatherer backs the JSON booking counters at /metrics/booking.
	MetricsGatherer prometheus.Gatherer
	// HealthCheck reports dependency health; nil means always healthy.
	HealthCheck func(ctx context.Context) error

	Verifier    *auth.Verifier
	RateLimiter *httpmiddleware.RateLimiter

	// Public surface
	Booking       *booking.Handler
	Checkout      *payments.CheckoutHandler
	StripeWebhook *payments.WebhookHandler

	// Professional dashboard
	Auth          *auth.Handler
	Services      *catalog.Handler
	Availability  *availability.Handler
	Appointments  *appointments.Handler
	Professionals *professionals.Handler
	Dashboard     *dashboard.Handler
	Billing       *billing.Handler
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	r.Get("/health", healthHandler(cfg.HealthCheck))
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}
	if cfg.MetricsGatherer != nil {
		gatherer := cfg.MetricsGatherer
		r.Get("/metrics/booking", func(w http.ResponseWriter, _ *http.Request) {
			respond.JSON(w, http.StatusOK, metrics.TakeSnapshot(gatherer))
		})
	}
	if cfg.StripeWebhook != nil {
		r.Post("/webhooks/stripe", cfg.StripeWebhook.Handle)
	}

	// Client-facing booking flow
	r.Group(func(public chi.Router) {
		if cfg.RateLimiter != nil {
			public.Use(cfg.RateLimiter.Middleware)
		}
		if cfg.Checkout != nil {
			public.Post("/public/payments/checkout", cfg.Checkout.Handle)
		}
		if cfg.Booking != nil {
			public.Route("/public/{publicLink}", cfg.Booking.Routes)
		}
	})

	if cfg.Verifier == nil {
		return r
	}

	// Professional routes, scoped to the token subject
	r.Group(func(pro chi.Router) {
		pro.Use(httpmiddleware.RequireProfessional(cfg.Verifier, cfg.Logger))

		if cfg.Auth != nil {
			pro.Route("/auth", cfg.Auth.Routes)
		}
		if cfg.Services != nil {
			pro.Route("/services", cfg.Services.Routes)
		}
		if cfg.Availability != nil {
			pro.Route("/availability", cfg.Availability.Routes)
		}
		if cfg.Appointments != nil {
			pro.Route("/appointments", cfg.Appointments.Routes)
		}
		if cfg.Professionals != nil {
			cfg.Professionals.Routes(pro)
		}
		if cfg.Dashboard != nil {
			pro.Route("/dashboard", cfg.Dashboard.Routes)
		}
		if cfg.Billing != nil {
			pro.Route("/billing", cfg.Billing.Routes)
		}
	})

	return r
}

func healthHandler(check func(context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if check != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := check(ctx); err != nil {
				respond.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded", "error": err.Error()})
				return
			}
		}
		respond.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
