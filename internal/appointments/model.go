package appointments

import (
	"strings"
	"time"

	"github.com/wolfman30/schedulepay/internal/availability"
)

// Appointment is a client booking for one service at a date and start time.
// Price is copied from the service when the appointment is created.
type Appointment struct {
	ID             string    `json:"id"`
	ProfessionalID string    `json:"professional_id"`
	ServiceID      string    `json:"service_id"`
	ServiceName    string    `json:"service_name,omitempty"`
	Date           string    `json:"appointment_date"`
	Time           string    `json:"appointment_time"`
	ClientName     string    `json:"client_name"`
	ClientPhone    string    `json:"client_phone"`
	Price          float64   `json:"price"`
	Status         Status    `json:"status"`
	Notes          *string   `json:"notes,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// NewAppointment holds the fields captured by the booking flow.
type NewAppointment struct {
	ProfessionalID string
	ServiceID      string
	Date           string
	Time           string
	ClientName     string
	ClientPhone    string
	Price          float64
	Notes          string

	// ServiceName is informational; Postgres reads it back through a join.
	ServiceName string
}

// Validate requires every booking field and normalizes date and time.
func (n *NewAppointment) Validate() error {
	if strings.TrimSpace(n.ProfessionalID) == "" {
		return ErrMissingProfessional
	}
	n.ClientName = strings.TrimSpace(n.ClientName)
	n.ClientPhone = strings.TrimSpace(n.ClientPhone)
	if n.ServiceID == "" || n.Date == "" || n.Time == "" || n.ClientName == "" || n.ClientPhone == "" {
		return ErrMissingFields
	}
	d, err := time.Parse(availability.DateLayout, n.Date)
	if err != nil {
		return ErrInvalidDate
	}
	n.Date = d.Format(availability.DateLayout)
	c, err := availability.ParseClock(n.Time)
	if err != nil {
		return ErrInvalidTime
	}
	n.Time = c.String()
	return nil
}

// FilterByStatus returns the appointments in status, or all of them when
// status is nil. It never touches storage.
func FilterByStatus(list []*Appointment, status *Status) []*Appointment {
	if status == nil {
		return list
	}
	out := make([]*Appointment, 0, len(list))
	for _, a := range list {
		if a.Status == *status {
			out = append(out, a)
		}
	}
	return out
}
