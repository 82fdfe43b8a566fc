package dashboard

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/wolfman30/schedulepay/internal/http/respond"
	"github.com/wolfman30/schedulepay/internal/tenancy"
	"github.com/wolfman30/schedulepay/pkg/logging"
)

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

func (h *Handler) Routes(r chi.Router) {
	r.Get("/summary", h.GetSummary)
}

// GetSummary serves GET /dashboard/summary.
func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	professionalID, ok := tenancy.ProfessionalIDFromContext(r.Context())
	if !ok {
		respond.Error(w, "missing professional context", http.StatusUnauthorized)
		return
	}
	sum, err := h.svc.Summary(r.Context(), professionalID)
	if err != nil {
		h.logger.ForProfessional(professionalID).Error("dashboard summary failed", "error", err)
		respond.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	respond.JSON(w, http.StatusOK, sum)
}
