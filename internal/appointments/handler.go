package appointments

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/wolfman30/schedulepay/internal/http/respond"
	"github.com/wolfman30/schedulepay/internal/tenancy"
	"github.com/wolfman30/schedulepay/pkg/logging"
)

// Handler exposes the professional's appointment list and status actions.
type Handler struct {
	svc    *Service
	logger *logging.Logger
}

func NewHandler(svc *Service, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{svc: svc, logger: logger}
}

// ListResponse is the payload for list and transition endpoints.
type ListResponse struct {
	Appointments []AppointmentView `json:"appointments"`
	Count        int               `json:"count"`
}

// AppointmentView adds the actions available from the current status.
type AppointmentView struct {
	*Appointment
	Actions []Status `json:"actions"`
}

func newListResponse(list []*Appointment) ListResponse {
	views := make([]AppointmentView, 0, len(list))
	for _, a := range list {
		views = append(views, AppointmentView{Appointment: a, Actions: a.Status.Next()})
	}
	return ListResponse{Appointments: views, Count: len(views)}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.List)
	r.Route("/{appointmentID}", func(r chi.Router) {
		r.Post("/confirm", h.transitionTo(StatusConfirmed))
		r.Post("/cancel", h.transitionTo(StatusCancelled))
		r.Post("/confirm-payment", h.ConfirmPayment)
		r.Patch("/status", h.UpdateStatus)
	})
}

// List handles GET /appointments?status=...; the status filter runs in memory.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	professionalID, ok := tenancy.ProfessionalIDFromContext(r.Context())
	if !ok {
		respond.Error(w, "missing professional context", http.StatusUnauthorized)
		return
	}
	var filter *Status
	if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" && raw != "all" {
		st, err := ParseStatus(raw)
		if err != nil {
			respond.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		filter = &st
	}

	list, err := h.svc.List(r.Context(), professionalID)
	if err != nil {
		h.logger.Error("failed to list appointments", "error", err, "professional_id", professionalID)
		respond.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	respond.JSON(w, http.StatusOK, newListResponse(FilterByStatus(list, filter)))
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

// UpdateStatus handles PATCH /appointments/{appointmentID}/status
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req updateStatusRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	target, err := ParseStatus(req.Status)
	if err != nil {
		respond.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	h.transitionTo(target)(w, r)
}

func (h *Handler) ConfirmPayment(w http.ResponseWriter, r *http.Request) {
	professionalID, ok := tenancy.ProfessionalIDFromContext(r.Context())
	if !ok {
		respond.Error(w, "missing professional context", http.StatusUnauthorized)
		return
	}
	list, err := h.svc.ConfirmPayment(r.Context(), professionalID, chi.URLParam(r, "appointmentID"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, newListResponse(list))
}

func (h *Handler) transitionTo(target Status) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		professionalID, ok := tenancy.ProfessionalIDFromContext(r.Context())
		if !ok {
			respond.Error(w, "missing professional context", http.StatusUnauthorized)
			return
		}
		list, err := h.svc.Transition(r.Context(), professionalID, chi.URLParam(r, "appointmentID"), target)
		if err != nil {
			h.writeError(w, err)
			return
		}
		respond.JSON(w, http.StatusOK, newListResponse(list))
	}
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case IsValidation(err):
		respond.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrAppointmentNotFound):
		respond.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, ErrInvalidTransition):
		respond.Error(w, err.Error(), http.StatusConflict)
	default:
		h.logger.Error("appointment request failed", "error", err)
		respond.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
