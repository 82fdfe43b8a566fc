package billing

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/wolfman30/schedulepay/internal/http/respond"
	"github.com/wolfman30/schedulepay/internal/payments"
	"github.com/wolfman30/schedulepay/internal/tenancy"
	"github.com/wolfman30/schedulepay/pkg/logging"
)

type Handler struct {
	svc           *Service
	defaultOrigin string
	logger        *logging.Logger
}

func NewHandler(svc *Service, defaultOrigin string, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{svc: svc, defaultOrigin: strings.TrimRight(defaultOrigin, "/"), logger: logger}
}

// Routes mounts under /billing.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/check-subscription", h.CheckSubscription)
	r.Post("/create-checkout", h.CreateCheckout)
	r.Post("/customer-portal", h.CustomerPortal)
}

func (h *Handler) account(r *http.Request) (Account, bool) {
	id, ok := tenancy.ProfessionalIDFromContext(r.Context())
	if !ok {
		return Account{}, false
	}
	email, _ := tenancy.EmailFromContext(r.Context())
	return Account{ProfessionalID: id, Email: email}, true
}

func (h *Handler) CheckSubscription(w http.ResponseWriter, r *http.Request) {
	acct, ok := h.account(r)
	if !ok {
		respond.Error(w, "missing professional context", http.StatusUnauthorized)
		return
	}
	st, err := h.svc.CheckSubscription(r.Context(), acct)
	if err != nil {
		h.writeError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, st)
}

type createCheckoutRequest struct {
	PriceID string `json:"price_id"`
}

func (h *Handler) CreateCheckout(w http.ResponseWriter, r *http.Request) {
	acct, ok := h.account(r)
	if !ok {
		respond.Error(w, "missing professional context", http.StatusUnauthorized)
		return
	}
	var req createCheckoutRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	origin := strings.TrimSpace(r.Header.Get("Origin"))
	if origin == "" {
		origin = h.defaultOrigin
	}
	url, err := h.svc.CreateCheckout(r.Context(), acct, req.PriceID, origin)
	if err != nil {
		h.writeError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]string{"url": url})
}

func (h *Handler) CustomerPortal(w http.ResponseWriter, r *http.Request) {
	acct, ok := h.account(r)
	if !ok {
		respond.Error(w, "missing professional context", http.StatusUnauthorized)
		return
	}
	url, err := h.svc.CustomerPortal(r.Context(), acct)
	if err != nil {
		h.writeError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]string{"url": url})
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrMissingEmail), errors.Is(err, ErrMissingPriceID), errors.Is(err, ErrMissingTenantID):
		respond.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrNoCustomer):
		respond.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, payments.ErrGateway):
		h.logger.Error("billing gateway failure", "error", err)
		respond.Error(w, err.Error(), http.StatusBadGateway)
	default:
		h.logger.Error("billing request failed", "error", err)
		respond.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
