package tenancy

import "context"

type ctxKey string

const (
	professionalKey ctxKey = "schedulepay.professional_id"
	emailKey        ctxKey = "schedulepay.email"
)

// WithProfessionalID stores the authenticated professional id in context.
func WithProfessionalID(ctx context.Context, professionalID string) context.Context {
	return context.WithValue(ctx, professionalKey, professionalID)
}

// ProfessionalIDFromContext extracts the professional id if present.
func ProfessionalIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(professionalKey).(string)
	return id, ok && id != ""
}

// WithEmail stores the account email of the authenticated professional.
func WithEmail(ctx context.Context, email string) context.Context {
	return context.WithValue(ctx, emailKey, email)
}

// EmailFromContext returns the account email if present.
func EmailFromContext(ctx context.Context) (string, bool) {
	email, ok := ctx.Value(emailKey).(string)
	return email, ok && email != ""
}
