package professionals

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/wolfman30/schedulepay/internal/http/respond"
	"github.com/wolfman30/schedulepay/internal/tenancy"
	"github.com/wolfman30/schedulepay/pkg/logging"
)

// Handler serves the signed-in professional's profile and payment key.
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

// Routes mounts /profile and /settings/payment-key on an authenticated router.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/profile", h.GetProfile)
	r.Put("/profile", h.PutProfile)
	r.Get("/settings/payment-key", h.GetPaymentKey)
	r.Put("/settings/payment-key", h.PutPaymentKey)
}

func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	professionalID, ok := tenancy.ProfessionalIDFromContext(r.Context())
	if !ok {
		respond.Error(w, "missing professional context", http.StatusUnauthorized)
		return
	}
	p, err := h.repo.Get(r.Context(), professionalID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, p)
}

func (h *Handler) PutProfile(w http.ResponseWriter, r *http.Request) {
	professionalID, ok := tenancy.ProfessionalIDFromContext(r.Context())
	if !ok {
		respond.Error(w, "missing professional context", http.StatusUnauthorized)
		return
	}
	var req UpsertProfileRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	req.ProfessionalID = professionalID

	p, err := h.repo.Upsert(r.Context(), &req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.logger.ForProfessional(professionalID).Info("profile saved", "public_link", p.PublicLink)
	respond.JSON(w, http.StatusOK, p)
}

type paymentKeyBody struct {
	PixKey string `json:"pix_key"`
}

func (h *Handler) GetPaymentKey(w http.ResponseWriter, r *http.Request) {
	professionalID, ok := tenancy.ProfessionalIDFromContext(r.Context())
	if !ok {
		respond.Error(w, "missing professional context", http.StatusUnauthorized)
		return
	}
	key, err := h.repo.GetPaymentKey(r.Context(), professionalID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, paymentKeyBody{PixKey: key})
}

// PutPaymentKey stores the key as given; an empty value clears it.
func (h *Handler) PutPaymentKey(w http.ResponseWriter, r *http.Request) {
	professionalID, ok := tenancy.ProfessionalIDFromContext(r.Context())
	if !ok {
		respond.Error(w, "missing professional context", http.StatusUnauthorized)
		return
	}
	var body paymentKeyBody
	if err := respond.Decode(r, &body); err != nil {
		respond.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.repo.UpdatePaymentKey(r.Context(), professionalID, body.PixKey); err != nil {
		h.writeError(w, err)
		return
	}
	key, err := h.repo.GetPaymentKey(r.Context(), professionalID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, paymentKeyBody{PixKey: key})
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case IsValidation(err):
		respond.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrProfessionalNotFound):
		respond.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, ErrPublicLinkTaken):
		respond.Error(w, err.Error(), http.StatusConflict)
	default:
		h.logger.Error("professional request failed", "error", err)
		respond.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
