package middleware

import (
	"errors"
	"net/http"

	"github.com/wolfman30/schedulepay/internal/auth"
	"github.com/wolfman30/schedulepay/internal/http/respond"
	"github.com/wolfman30/schedulepay/internal/tenancy"
	"github.com/wolfman30/schedulepay/pkg/logging"
)

// RequireProfessional verifies the bearer token and scopes the request to
// the token's subject.
func RequireProfessional(verifier *auth.Verifier, logger *logging.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := verifier.FromHeader(r.Context(), r.Header.Get("Authorization"))
			if err != nil {
				switch {
				case errors.Is(err, auth.ErrMissingToken):
					respond.Error(w, "missing authorization header", http.StatusUnauthorized)
				case errors.Is(err, auth.ErrDisabled):
					respond.Error(w, "auth disabled", http.StatusUnauthorized)
				case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrRevoked):
					respond.Error(w, "invalid token", http.StatusUnauthorized)
				default:
					logger.Error("token verification failed", "error", err)
					respond.Error(w, "internal error", http.StatusInternalServerError)
				}
				return
			}
			ctx := auth.WithClaims(r.Context(), claims)
			ctx = tenancy.WithProfessionalID(ctx, claims.Subject)
			if claims.Email != "" {
				ctx = tenancy.WithEmail(ctx, claims.Email)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
