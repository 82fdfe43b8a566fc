package availability

import "errors"

var (
	ErrMissingProfessional = errors.New("professional id is required")
	ErrInvalidDayOfWeek    = errors.New("day_of_week must be between 0 (Sunday) and 6 (Saturday)")
	ErrInvalidTime         = errors.New("time must be HH:MM or HH:MM:SS")
	ErrInvalidWindow       = errors.New("start_time must be before end_time")
	ErrRuleNotFound        = errors.New("availability rule not found")
)

// IsValidation reports whether err came from request validation.
func IsValidation(err error) bool {
	return errors.Is(err, ErrMissingProfessional) ||
		errors.Is(err, ErrInvalidDayOfWeek) ||
		errors.Is(err, ErrInvalidTime) ||
		errors.Is(err, ErrInvalidWindow)
}
