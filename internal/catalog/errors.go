package catalog

import "errors"

var (
	// ErrMissingProfessional is returned when a request is not scoped to a professional
	ErrMissingProfessional = errors.New("professional id is required")

	// ErrInvalidName is returned when the service name is blank
	ErrInvalidName = errors.New("service name is required")

	// ErrInvalidDuration is returned when duration is not a positive number of minutes
	ErrInvalidDuration = errors.New("duration_minutes must be greater than zero")

	// ErrInvalidPrice is returned for negative prices
	ErrInvalidPrice = errors.New("price must not be negative")

	// ErrServiceNotFound is returned when the service does not exist for the professional
	ErrServiceNotFound = errors.New("service not found")
)

// IsValidation reports whether err came from request validation.
func IsValidation(err error) bool {
	return errors.Is(err, ErrMissingProfessional) ||
		errors.Is(err, ErrInvalidName) ||
		errors.Is(err, ErrInvalidDuration) ||
		errors.Is(err, ErrInvalidPrice)
}
