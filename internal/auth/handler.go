package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/wolfman30/schedulepay/internal/http/respond"
	"github.com/wolfman30/schedulepay/internal/professionals"
	"github.com/wolfman30/schedulepay/pkg/logging"
)

// ProfileSource looks up the professional's stored profile.
type ProfileSource interface {
	Get(ctx context.Context, professionalID string) (*professionals.Profile, error)
}

// CurrentUser is returned by GET /auth/me.
type CurrentUser struct {
	ID      string                  `json:"id"`
	Email   string                  `json:"email"`
	Profile *professionals.Profile `json:"profile"`
}

type Handler struct {
	verifier *Verifier
	profiles ProfileSource
	logger   *logging.Logger
}

func NewHandler(verifier *Verifier, profiles ProfileSource, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{verifier: verifier, profiles: profiles, logger: logger}
}

// Routes mounts /me and /signout behind the auth middleware.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/me", h.Me)
	r.Post("/signout", h.SignOut)
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		respond.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	user := CurrentUser{ID: claims.Subject, Email: claims.Email}
	if h.profiles != nil {
		profile, err := h.profiles.Get(r.Context(), claims.Subject)
		switch {
		case err == nil:
			user.Profile = profile
		case errors.Is(err, professionals.ErrProfessionalNotFound):
		default:
			h.logger.ForProfessional(claims.Subject).Error("profile lookup failed", "error", err)
			respond.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
	}
	respond.JSON(w, http.StatusOK, user)
}

func (h *Handler) SignOut(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		respond.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	if err := h.verifier.SignOut(r.Context(), claims); err != nil {
		h.logger.ForProfessional(claims.Subject).Error("sign out failed", "error", err)
		respond.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	h.logger.ForProfessional(claims.Subject).Info("signed out", "token_id", claims.ID)
	w.WriteHeader(http.StatusNoContent)
}
