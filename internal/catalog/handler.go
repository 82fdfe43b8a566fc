package catalog

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/wolfman30/schedulepay/internal/http/respond"
	"github.com/wolfman30/schedulepay/internal/tenancy"
	"github.com/wolfman30/schedulepay/pkg/logging"
)

// Handler serves the professional's service catalog.
type Handler struct {
	repo   Repository
	logger *logging.Logger
}

// NewHandler creates a new catalog handler
func NewHandler(repo Repository, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{repo: repo, logger: logger}
}

// Routes mounts the catalog endpoints; callers must install auth first.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Route("/{serviceID}", func(r chi.Router) {
		r.Get("/", h.Get)
		r.Patch("/", h.Update)
		r.Put("/", h.Update)
		r.Delete("/", h.Delete)
	})
}

// List handles GET /services
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	professionalID, ok := tenancy.ProfessionalIDFromContext(r.Context())
	if !ok {
		respond.Error(w, "missing professional context", http.StatusUnauthorized)
		return
	}
	services, err := h.repo.List(r.Context(), professionalID)
	if err != nil {
		h.logger.Error("failed to list services", "error", err, "professional_id", professionalID)
		respond.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]any{"services": services})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	professionalID, ok := tenancy.ProfessionalIDFromContext(r.Context())
	if !ok {
		respond.Error(w, "missing professional context", http.StatusUnauthorized)
		return
	}
	svc, err := h.repo.Get(r.Context(), professionalID, chi.URLParam(r, "serviceID"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, svc)
}

// Create handles POST /services
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	professionalID, ok := tenancy.ProfessionalIDFromContext(r.Context())
	if !ok {
		respond.Error(w, "missing professional context", http.StatusUnauthorized)
		return
	}
	var req CreateServiceRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	req.ProfessionalID = professionalID

	svc, err := h.repo.Create(r.Context(), &req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.logger.Info("service created", "professional_id", professionalID, "service_id", svc.ID)
	respond.JSON(w, http.StatusCreated, svc)
}

// Update handles PATCH/PUT /services/{serviceID}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	professionalID, ok := tenancy.ProfessionalIDFromContext(r.Context())
	if !ok {
		respond.Error(w, "missing professional context", http.StatusUnauthorized)
		return
	}
	var req UpdateServiceRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	svc, err := h.repo.Update(r.Context(), professionalID, chi.URLParam(r, "serviceID"), &req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, svc)
}

// Delete handles DELETE /services/{serviceID}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	professionalID, ok := tenancy.ProfessionalIDFromContext(r.Context())
	if !ok {
		respond.Error(w, "missing professional context", http.StatusUnauthorized)
		return
	}
	serviceID := chi.URLParam(r, "serviceID")
	if err := h.repo.Delete(r.Context(), professionalID, serviceID); err != nil {
		h.writeError(w, err)
		return
	}
	h.logger.Info("service deleted", "professional_id", professionalID, "service_id", serviceID)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case IsValidation(err):
		respond.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrServiceNotFound):
		respond.Error(w, err.Error(), http.StatusNotFound)
	default:
		h.logger.Error("catalog request failed", "error", err)
		respond.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
