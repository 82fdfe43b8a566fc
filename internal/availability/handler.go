package availability

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/wolfman30/schedulepay/internal/http/respond"
	"github.com/wolfman30/schedulepay/internal/tenancy"
	"github.com/wolfman30/schedulepay/pkg/logging"
)

// Handler serves the weekly availability schedule of the signed-in professional.
type Handler struct {
	repo   Repository
	logger *logging.Logger
}

func NewHandler(repo Repository, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{repo: repo, logger: logger}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Post("/{ruleID}/toggle", h.Toggle)
	r.Delete("/{ruleID}", h.Delete)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	professionalID, ok := tenancy.ProfessionalIDFromContext(r.Context())
	if !ok {
		respond.Error(w, "missing professional context", http.StatusUnauthorized)
		return
	}
	rules, err := h.repo.List(r.Context(), professionalID)
	if err != nil {
		h.logger.Error("failed to list availability", "error", err, "professional_id", professionalID)
		respond.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]any{"rules": rules})
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	professionalID, ok := tenancy.ProfessionalIDFromContext(r.Context())
	if !ok {
		respond.Error(w, "missing professional context", http.StatusUnauthorized)
		return
	}
	var req CreateRuleRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	req.ProfessionalID = professionalID

	rule, err := h.repo.Create(r.Context(), &req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.logger.Info("availability rule created", "professional_id", professionalID, "rule_id", rule.ID, "day_of_week", rule.DayOfWeek)
	respond.JSON(w, http.StatusCreated, rule)
}

func (h *Handler) Toggle(w http.ResponseWriter, r *http.Request) {
	professionalID, ok := tenancy.ProfessionalIDFromContext(r.Context())
	if !ok {
		respond.Error(w, "missing professional context", http.StatusUnauthorized)
		return
	}
	rule, err := h.repo.ToggleActive(r.Context(), professionalID, chi.URLParam(r, "ruleID"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, rule)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	professionalID, ok := tenancy.ProfessionalIDFromContext(r.Context())
	if !ok {
		respond.Error(w, "missing professional context", http.StatusUnauthorized)
		return
	}
	if err := h.repo.Delete(r.Context(), professionalID, chi.URLParam(r, "ruleID")); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case IsValidation(err):
		respond.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrRuleNotFound):
		respond.Error(w, err.Error(), http.StatusNotFound)
	default:
		h.logger.Error("availability request failed", "error", err)
		respond.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
