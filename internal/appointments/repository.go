package appointments

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/wolfman30/schedulepay/internal/availability"
)

// Repository defines appointment storage.
type Repository interface {
	// Create inserts the appointment in StatusScheduled.
	Create(ctx context.Context, req *NewAppointment) (*Appointment, error)
	// List returns the professional's appointments ordered by date then time.
	List(ctx context.Context, professionalID string) ([]*Appointment, error)
	GetForProfessional(ctx context.Context, professionalID, id string) (*Appointment, error)
	// Get loads an appointment by id alone, for the public payment flow.
	Get(ctx context.Context, id string) (*Appointment, error)
	// UpdateStatus writes the status column only.
	UpdateStatus(ctx context.Context, professionalID, id string, status Status) error
	// ListBooked returns the (date, time) pairs that block new bookings.
	ListBooked(ctx context.Context, professionalID string) ([]availability.BookedSlot, error)
}

type InMemoryRepository struct {
	mu           sync.RWMutex
	appointments map[string]*Appointment
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{appointments: make(map[string]*Appointment)}
}

func (r *InMemoryRepository) Create(ctx context.Context, req *NewAppointment) (*Appointment, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	appt := &Appointment{
		ID:             uuid.New().String(),
		ProfessionalID: req.ProfessionalID,
		ServiceID:      req.ServiceID,
		ServiceName:    req.ServiceName,
		Date:           req.Date,
		Time:           req.Time,
		ClientName:     req.ClientName,
		ClientPhone:    req.ClientPhone,
		Price:          req.Price,
		Status:         StatusScheduled,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if req.Notes != "" {
		notes := req.Notes
		appt.Notes = &notes
	}

	r.mu.Lock()
	r.appointments[appt.ID] = appt
	r.mu.Unlock()

	cp := *appt
	return &cp, nil
}

func (r *InMemoryRepository) List(ctx context.Context, professionalID string) ([]*Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Appointment, 0)
	for _, a := range r.appointments {
		if a.ProfessionalID == professionalID {
			cp := *a
			out = append(out, &cp)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		if out[i].Time != out[j].Time {
			return out[i].Time < out[j].Time
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *InMemoryRepository) GetForProfessional(ctx context.Context, professionalID, id string) (*Appointment, error) {
	appt, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if appt.ProfessionalID != professionalID {
		return nil, ErrAppointmentNotFound
	}
	return appt, nil
}

func (r *InMemoryRepository) Get(ctx context.Context, id string) (*Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	appt, ok := r.appointments[id]
	if !ok {
		return nil, ErrAppointmentNotFound
	}
	cp := *appt
	return &cp, nil
}

func (r *InMemoryRepository) UpdateStatus(ctx context.Context, professionalID, id string, status Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	appt, ok := r.appointments[id]
	if !ok || appt.ProfessionalID != professionalID {
		return ErrAppointmentNotFound
	}
	appt.Status = status
	appt.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *InMemoryRepository) ListBooked(ctx context.Context, professionalID string) ([]availability.BookedSlot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]availability.BookedSlot, 0)
	for _, a := range r.appointments {
		if a.ProfessionalID == professionalID && a.Status.Blocking() {
			out = append(out, availability.BookedSlot{Date: a.Date, Time: a.Time})
		}
	}
	return out, nil
}
