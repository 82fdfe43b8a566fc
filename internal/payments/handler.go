package payments

import (
	"errors"
	"net/http"
	"strings"

	"github.com/wolfman30/schedulepay/internal/appointments"
	"github.com/wolfman30/schedulepay/internal/http/respond"
	"github.com/wolfman30/schedulepay/pkg/logging"
)

// CheckoutHandler serves POST /public/payments/checkout.
type CheckoutHandler struct {
	svc           *CheckoutService
	defaultOrigin string
	logger        *logging.Logger
}

// NewCheckoutHandler builds the handler; defaultOrigin is used when the
// request carries no Origin header.
func NewCheckoutHandler(svc *CheckoutService, defaultOrigin string, logger *logging.Logger) *CheckoutHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &CheckoutHandler{svc: svc, defaultOrigin: strings.TrimRight(defaultOrigin, "/"), logger: logger}
}

func (h *CheckoutHandler) Handle(w http.ResponseWriter, r *http.Request) {
	var req CheckoutRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	origin := strings.TrimSpace(r.Header.Get("Origin"))
	if origin == "" {
		origin = h.defaultOrigin
	}

	res, err := h.svc.CreateAppointmentCheckout(r.Context(), origin, &req)
	if err != nil {
		switch {
		case errors.Is(err, ErrMissingAppointment), errors.Is(err, ErrMissingEmail):
			respond.Error(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, appointments.ErrAppointmentNotFound):
			respond.Error(w, err.Error(), http.StatusNotFound)
		case errors.Is(err, ErrGateway):
			h.logger.Error("appointment checkout failed", "error", err, "appointment_id", req.AppointmentID)
			respond.Error(w, err.Error(), http.StatusBadGateway)
		default:
			h.logger.Error("appointment checkout failed", "error", err, "appointment_id", req.AppointmentID)
			respond.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}
	respond.JSON(w, http.StatusOK, res)
}
