package appointments

import "errors"

var (
	ErrMissingProfessional = errors.New("professional id is required")
	ErrMissingFields       = errors.New("service, date, time, client name and client phone are required")
	ErrInvalidDate         = errors.New("appointment_date must be YYYY-MM-DD")
	ErrInvalidTime         = errors.New("appointment_time must be HH:MM or HH:MM:SS")
	ErrUnknownStatus       = errors.New("unknown appointment status")

	// ErrInvalidTransition is returned when the requested status is not reachable.
	ErrInvalidTransition = errors.New("status transition not allowed")

	ErrAppointmentNotFound = errors.New("appointment not found")
)

// IsValidation reports whether err came from request validation.
func IsValidation(err error) bool {
	return errors.Is(err, ErrMissingProfessional) ||
		errors.Is(err, ErrMissingFields) ||
		errors.Is(err, ErrInvalidDate) ||
		errors.Is(err, ErrInvalidTime) ||
		errors.Is(err, ErrUnknownStatus)
}
