package professionals

import "errors"

var (
	ErrMissingProfessional  = errors.New("professional id is required")
	ErrInvalidFullName      = errors.New("full_name is required")
	ErrInvalidPublicLink    = errors.New("public_link may only contain lowercase letters, digits and hyphens")
	ErrPublicLinkTaken      = errors.New("public_link already in use")
	ErrProfessionalNotFound = errors.New("professional not found")
)

// IsValidation reports whether err came from request validation.
func IsValidation(err error) bool {
	return errors.Is(err, ErrMissingProfessional) ||
		errors.Is(err, ErrInvalidFullName) ||
		errors.Is(err, ErrInvalidPublicLink)
}
