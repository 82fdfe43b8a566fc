package booking

import "errors"

var (
	ErrMissingService = errors.New("service_id is required")
	ErrInvalidDate    = errors.New("date must be YYYY-MM-DD")
	ErrPastDate       = errors.New("date is in the past")
)

// IsValidation reports whether err came from request validation.
func IsValidation(err error) bool {
	return errors.Is(err, ErrMissingService) ||
		errors.Is(err, ErrInvalidDate) ||
		errors.Is(err, ErrPastDate)
}
