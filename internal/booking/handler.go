package booking

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/wolfman30/schedulepay/internal/appointments"
	"github.com/wolfman30/schedulepay/internal/catalog"
	"github.com/wolfman30/schedulepay/internal/http/respond"
	"github.com/wolfman30/schedulepay/internal/professionals"
	"github.com/wolfman30/schedulepay/pkg/logging"
)

// Handler exposes the unauthenticated booking endpoints.
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

// Routes mounts under /public/{publicLink}.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.GetPage)
	r.Get("/slots", h.GetSlots)
	r.Post("/appointments", h.CreateAppointment)
}

func (h *Handler) GetPage(w http.ResponseWriter, r *http.Request) {
	page, err := h.svc.Page(r.Context(), chi.URLParam(r, "publicLink"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, page)
}

// GetSlots handles GET /public/{publicLink}/slots?date=YYYY-MM-DD&service_id=...
func (h *Handler) GetSlots(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	res, err := h.svc.Slots(r.Context(), chi.URLParam(r, "publicLink"), q.Get("date"), q.Get("service_id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, res)
}

func (h *Handler) CreateAppointment(w http.ResponseWriter, r *http.Request) {
	var req BookRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	conf, err := h.svc.Book(r.Context(), chi.URLParam(r, "publicLink"), &req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	respond.JSON(w, http.StatusCreated, conf)
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case IsValidation(err), appointments.IsValidation(err):
		respond.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, professionals.ErrProfessionalNotFound),
		errors.Is(err, catalog.ErrServiceNotFound):
		respond.Error(w, err.Error(), http.StatusNotFound)
	default:
		h.logger.Error("public booking request failed", "error", err)
		respond.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
