package availability

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Rule is a recurring weekly window during which a professional accepts bookings.
type Rule struct {
	ID             string    `json:"id"`
	ProfessionalID string    `json:"professional_id"`
	DayOfWeek      int       `json:"day_of_week"`
	StartTime      string    `json:"start_time"`
	EndTime        string    `json:"end_time"`
	Active         bool      `json:"is_active"`
	CreatedAt      time.Time `json:"created_at"`
}

// CreateRuleRequest is the body for adding a weekly window.
type CreateRuleRequest struct {
	ProfessionalID string `json:"-"`
	DayOfWeek      *int   `json:"day_of_week"`
	StartTime      string `json:"start_time"`
	EndTime        string `json:"end_time"`
}

// Validate checks the weekday range and that start precedes end. Times are
// normalized to HH:MM:SS.
func (r *CreateRuleRequest) Validate() error {
	if strings.TrimSpace(r.ProfessionalID) == "" {
		return ErrMissingProfessional
	}
	if r.DayOfWeek == nil || *r.DayOfWeek < 0 || *r.DayOfWeek > 6 {
		return ErrInvalidDayOfWeek
	}
	start, err := ParseClock(r.StartTime)
	if err != nil {
		return err
	}
	end, err := ParseClock(r.EndTime)
	if err != nil {
		return err
	}
	if start >= end {
		return ErrInvalidWindow
	}
	r.StartTime = start.String()
	r.EndTime = end.String()
	return nil
}

// Clock is a wall-clock time of day in seconds since midnight.
type Clock int

// ParseClock accepts HH:MM or HH:MM:SS.
func ParseClock(s string) (Clock, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTime, s)
	}
	limits := []int{23, 59, 59}
	var fields [3]int
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || len(p) > 2 || n < 0 || n > limits[i] {
			return 0, fmt.Errorf("%w: %q", ErrInvalidTime, s)
		}
		fields[i] = n
	}
	return Clock(fields[0]*3600 + fields[1]*60 + fields[2]), nil
}

// Hour returns the hour component.
func (c Clock) Hour() int { return int(c) / 3600 }

// Minute returns the minute component.
func (c Clock) Minute() int { return int(c) % 3600 / 60 }

// String formats as HH:MM:SS.
func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", c.Hour(), c.Minute(), int(c)%60)
}
