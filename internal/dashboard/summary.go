// Package dashboard aggregates a professional's appointment counters for the
// dashboard landing page.
package dashboard

import (
	"context"
	"errors"
	"time"

	"github.com/wolfman30/schedulepay/internal/appointments"
	"github.com/wolfman30/schedulepay/internal/availability"
)

const defaultUpcomingLimit = 5

var ErrMissingProfessional = errors.New("professional id is required")

var (
	revenueStatuses  = []appointments.Status{appointments.StatusConfirmed, appointments.StatusCompleted}
	pendingStatuses  = []appointments.Status{appointments.StatusScheduled, appointments.StatusPendingPayment}
	upcomingStatuses = []appointments.Status{appointments.StatusScheduled, appointments.StatusPendingPayment, appointments.StatusConfirmed}
)

// Summary is the dashboard payload. Cancelled appointments never count.
type Summary struct {
	Date              string     `json:"date"`
	TodayAppointments int        `json:"today_appointments"`
	MonthAppointments int        `json:"month_appointments"`
	MonthRevenue      float64    `json:"month_revenue"`
	TotalClients      int        `json:"total_clients"`
	PendingCount      int        `json:"pending_count"`
	Upcoming          []Upcoming `json:"upcoming"`
}

type Upcoming struct {
	ID          string              `json:"id"`
	ServiceName string              `json:"service_name"`
	Date        string              `json:"appointment_date"`
	Time        string              `json:"appointment_time"`
	ClientName  string              `json:"client_name"`
	Price       float64             `json:"price"`
	Status      appointments.Status `json:"status"`
}

// Window is the calendar frame a summary is computed over, in the booking
// timezone. Dates are YYYY-MM-DD; MonthEnd is exclusive.
type Window struct {
	Today      string
	Now        string
	MonthStart string
	MonthEnd   string
	Limit      int
}

// NewWindow frames now in loc.
func NewWindow(now time.Time, loc *time.Location, limit int) Window {
	if loc == nil {
		loc = time.UTC
	}
	if limit <= 0 {
		limit = defaultUpcomingLimit
	}
	local := now.In(loc)
	first := time.Date(local.Year(), local.Month(), 1, 0, 0, 0, 0, loc)
	return Window{
		Today:      local.Format(availability.DateLayout),
		Now:        local.Format("15:04:05"),
		MonthStart: first.Format(availability.DateLayout),
		MonthEnd:   first.AddDate(0, 1, 0).Format(availability.DateLayout),
		Limit:      limit,
	}
}

// Source computes a summary for one professional.
type Source interface {
	Summarize(ctx context.Context, professionalID string, w Window) (*Summary, error)
}

type Service struct {
	source Source
	loc    *time.Location
	now    func() time.Time
}

func NewService(source Source, loc *time.Location) *Service {
	if source == nil {
		panic("dashboard: source required")
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Service{source: source, loc: loc, now: time.Now}
}

func (s *Service) Summary(ctx context.Context, professionalID string) (*Summary, error) {
	if professionalID == "" {
		return nil, ErrMissingProfessional
	}
	w := NewWindow(s.now(), s.loc, defaultUpcomingLimit)
	sum, err := s.source.Summarize(ctx, professionalID, w)
	if err != nil {
		return nil, err
	}
	sum.Date = w.Today
	if sum.Upcoming == nil {
		sum.Upcoming = []Upcoming{}
	}
	return sum, nil
}

func statusStrings(statuses []appointments.Status) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}

func contains(statuses []appointments.Status, s appointments.Status) bool {
	for _, candidate := range statuses {
		if candidate == s {
			return true
		}
	}
	return false
}
