package dashboard

import (
	"context"
	"sort"

	"github.com/wolfman30/schedulepay/internal/appointments"
)

// AppointmentLister is satisfied by the appointments service.
type AppointmentLister interface {
	List(ctx context.Context, professionalID string) ([]*appointments.Appointment, error)
}

// ListSource aggregates in process over the professional's appointment list.
// It backs in-memory deployments.
type ListSource struct {
	appts AppointmentLister
}

func NewListSource(appts AppointmentLister) *ListSource {
	return &ListSource{appts: appts}
}

func (s *ListSource) Summarize(ctx context.Context, professionalID string, w Window) (*Summary, error) {
	list, err := s.appts.List(ctx, professionalID)
	if err != nil {
		return nil, err
	}
	sum := &Summary{}
	clients := make(map[string]struct{})
	var upcoming []*appointments.Appointment

	for _, a := range list {
		if a.Status == appointments.StatusCancelled {
			continue
		}
		clients[a.ClientPhone] = struct{}{}
		inMonth := a.Date >= w.MonthStart && a.Date < w.MonthEnd
		if a.Date == w.Today {
			sum.TodayAppointments++
		}
		if inMonth {
			sum.MonthAppointments++
			if contains(revenueStatuses, a.Status) {
				sum.MonthRevenue += a.Price
			}
		}
		if contains(pendingStatuses, a.Status) {
			sum.PendingCount++
		}
		if contains(upcomingStatuses, a.Status) && (a.Date > w.Today || (a.Date == w.Today && a.Time >= w.Now)) {
			upcoming = append(upcoming, a)
		}
	}
	sum.TotalClients = len(clients)

	sort.SliceStable(upcoming, func(i, j int) bool {
		if upcoming[i].Date != upcoming[j].Date {
			return upcoming[i].Date < upcoming[j].Date
		}
		return upcoming[i].Time < upcoming[j].Time
	})
	if len(upcoming) > w.Limit {
		upcoming = upcoming[:w.Limit]
	}
	for _, a := range upcoming {
		sum.Upcoming = append(sum.Upcoming, Upcoming{
			ID:          a.ID,
			ServiceName: a.ServiceName,
			Date:        a.Date,
			Time:        a.Time,
			ClientName:  a.ClientName,
			Price:       a.Price,
			Status:      a.Status,
		})
	}
	return sum, nil
}
