package payments

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/webhook"

	"github.com/wolfman30/schedulepay/internal/events"
	"github.com/wolfman30/schedulepay/internal/observability/metrics"
	"github.com/wolfman30/schedulepay/pkg/logging"
)

const (
	stripeProvider     = "stripe"
	maxWebhookBodySize = 65536
)

// EventProcessor handles one verified Stripe event.
type EventProcessor func(ctx context.Context, evt stripe.Event) error

// WebhookHandler verifies Stripe signatures, drops replays and dispatches
// events by type. Unregistered types are acknowledged and ignored.
type WebhookHandler struct {
	secret     string
	tolerance  time.Duration
	ledger     events.Ledger
	processors map[string][]EventProcessor
	metrics    *metrics.BookingMetrics
	logger     *logging.Logger
}

func NewWebhookHandler(secret string, ledger events.Ledger, m *metrics.BookingMetrics, logger *logging.Logger) *WebhookHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &WebhookHandler{
		secret:     strings.TrimSpace(secret),
		tolerance:  webhook.DefaultTolerance,
		ledger:     ledger,
		processors: make(map[string][]EventProcessor),
		metrics:    m,
		logger:     logger,
	}
}

// WithTolerance overrides the accepted signature age.
func (h *WebhookHandler) WithTolerance(d time.Duration) *WebhookHandler {
	if d > 0 {
		h.tolerance = d
	}
	return h
}

// On registers p for eventType. Processors run in registration order.
func (h *WebhookHandler) On(eventType string, p EventProcessor) {
	h.processors[eventType] = append(h.processors[eventType], p)
}

func (h *WebhookHandler) Handle(w http.ResponseWriter, r *http.Request) {
	if h.secret == "" {
		http.Error(w, "stripe webhook not configured", http.StatusServiceUnavailable)
		return
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBodySize))
	if err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	evt, err := webhook.ConstructEventWithTolerance(body, r.Header.Get("Stripe-Signature"), h.secret, h.tolerance)
	if err != nil {
		h.logger.Warn("stripe webhook signature rejected", "error", err)
		h.metrics.ObserveWebhook("unknown", "invalid_signature")
		http.Error(w, "invalid signature", http.StatusUnauthorized)
		return
	}
	evtType := string(evt.Type)

	processors := h.processors[evtType]
	if len(processors) == 0 {
		h.metrics.ObserveWebhook(evtType, "ignored")
		w.WriteHeader(http.StatusOK)
		return
	}

	if h.ledger != nil {
		seen, err := h.ledger.AlreadyProcessed(r.Context(), stripeProvider, evt.ID)
		if err != nil {
			h.logger.Error("processed lookup failed", "error", err, "event_id", evt.ID)
			http.Error(w, "server error", http.StatusInternalServerError)
			return
		}
		if seen {
			h.logger.Info("stripe event duplicate ignored", "event_id", evt.ID, "event_type", evtType)
			h.metrics.ObserveWebhook(evtType, "duplicate")
			w.WriteHeader(http.StatusOK)
			return
		}
	}

	for _, p := range processors {
		if err := p(r.Context(), evt); err != nil {
			h.logger.Error("stripe event processing failed", "error", err, "event_id", evt.ID, "event_type", evtType)
			h.metrics.ObserveWebhook(evtType, "error")
			http.Error(w, "server error", http.StatusInternalServerError)
			return
		}
	}

	if h.ledger != nil {
		if _, err := h.ledger.MarkProcessed(r.Context(), stripeProvider, evt.ID, evtType); err != nil {
			h.logger.Error("failed to record processed event", "error", err, "event_id", evt.ID)
		}
	}
	h.metrics.ObserveWebhook(evtType, "processed")
	w.WriteHeader(http.StatusOK)
}
