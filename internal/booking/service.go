// Package booking serves the client-facing flow behind a professional's
// public link: profile and services, open slots for a date, and booking.
package booking

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/wolfman30/schedulepay/internal/appointments"
	"github.com/wolfman30/schedulepay/internal/availability"
	"github.com/wolfman30/schedulepay/internal/catalog"
	"github.com/wolfman30/schedulepay/internal/observability/metrics"
	"github.com/wolfman30/schedulepay/internal/professionals"
	"github.com/wolfman30/schedulepay/pkg/logging"
)

var bookingTracer = otel.Tracer("schedulepay.internal.booking")

// ProfileSource resolves public links and payment keys.
type ProfileSource interface {
	GetByPublicLink(ctx context.Context, publicLink string) (*professionals.Profile, error)
	GetPaymentKey(ctx context.Context, professionalID string) (string, error)
}

// ServiceSource lists a professional's services.
type ServiceSource interface {
	List(ctx context.Context, professionalID string) ([]*catalog.Service, error)
	Get(ctx context.Context, professionalID, id string) (*catalog.Service, error)
}

// RuleSource returns the active weekly windows.
type RuleSource interface {
	ListActive(ctx context.Context, professionalID string) ([]*availability.Rule, error)
}

// AppointmentBooker creates appointments and reports blocked slots.
type AppointmentBooker interface {
	Create(ctx context.Context, req *appointments.NewAppointment) (*appointments.Appointment, error)
	BookedSlots(ctx context.Context, professionalID string) ([]availability.BookedSlot, error)
}

// Page is what a client sees when opening a public link.
type Page struct {
	Professional professionals.PublicProfile `json:"professional"`
	Services     []*catalog.Service          `json:"services"`
}

// SlotsResult lists open start times for one service on one date.
type SlotsResult struct {
	Date      string   `json:"date"`
	ServiceID string   `json:"service_id"`
	Times     []string `json:"times"`
}

// BookRequest is the client booking form.
type BookRequest struct {
	ServiceID   string `json:"service_id"`
	Date        string `json:"appointment_date"`
	Time        string `json:"appointment_time"`
	ClientName  string `json:"client_name"`
	ClientPhone string `json:"client_phone"`
	Notes       string `json:"notes,omitempty"`
}

// Confirmation is returned after booking; PixKey is empty when unset.
type Confirmation struct {
	Appointment *appointments.Appointment `json:"appointment"`
	PixKey      string                    `json:"pix_key"`
}

// Service wires the public flow over the tenant-scoped stores.
type Service struct {
	profiles     ProfileSource
	services     ServiceSource
	rules        RuleSource
	appointments AppointmentBooker
	location     *time.Location
	metrics      *metrics.BookingMetrics
	logger       *logging.Logger
	now          func() time.Time
}

// Option customizes a booking Service.
type Option func(*Service)

func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.location = loc
		}
	}
}

func WithMetrics(m *metrics.BookingMetrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func NewService(profiles ProfileSource, services ServiceSource, rules RuleSource, appts AppointmentBooker, logger *logging.Logger, opts ...Option) *Service {
	if profiles == nil || services == nil || rules == nil || appts == nil {
		panic("booking: all stores are required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	s := &Service{
		profiles:     profiles,
		services:     services,
		rules:        rules,
		appointments: appts,
		location:     time.UTC,
		logger:       logger,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Page loads the professional behind publicLink and their services by name.
func (s *Service) Page(ctx context.Context, publicLink string) (*Page, error) {
	pro, err := s.profiles.GetByPublicLink(ctx, publicLink)
	if err != nil {
		return nil, err
	}
	svcs, err := s.services.List(ctx, pro.ID)
	if err != nil {
		return nil, err
	}
	return &Page{Professional: pro.Public(), Services: svcs}, nil
}

// Slots resolves open start times for serviceID on date.
func (s *Service) Slots(ctx context.Context, publicLink, date, serviceID string) (*SlotsResult, error) {
	ctx, span := bookingTracer.Start(ctx, "booking.slots")
	defer span.End()

	if strings.TrimSpace(serviceID) == "" {
		return nil, ErrMissingService
	}
	day, err := s.parseFutureDate(date)
	if err != nil {
		return nil, err
	}
	pro, err := s.profiles.GetByPublicLink(ctx, publicLink)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(
		attribute.String("schedulepay.professional_id", pro.ID),
		attribute.String("schedulepay.date", day.Format(availability.DateLayout)),
	)

	svc, err := s.services.Get(ctx, pro.ID, serviceID)
	if err != nil {
		return nil, err
	}
	rules, err := s.rules.ListActive(ctx, pro.ID)
	if err != nil {
		return nil, err
	}
	booked, err := s.appointments.BookedSlots(ctx, pro.ID)
	if err != nil {
		return nil, err
	}

	times := availability.ResolveSlots(day, derefRules(rules), svc.DurationMinutes, booked)
	s.metrics.ObserveSlotsResolved(day.Weekday().String(), len(times))
	return &SlotsResult{
		Date:      day.Format(availability.DateLayout),
		ServiceID: svc.ID,
		Times:     times,
	}, nil
}

// Book creates a scheduled appointment with the service price copied in.
// Availability is not re-checked at insert time.
func (s *Service) Book(ctx context.Context, publicLink string, req *BookRequest) (*Confirmation, error) {
	ctx, span := bookingTracer.Start(ctx, "booking.book")
	defer span.End()

	if strings.TrimSpace(req.ServiceID) == "" {
		return nil, appointments.ErrMissingFields
	}
	if strings.TrimSpace(req.Date) != "" {
		if _, err := s.parseFutureDate(req.Date); err != nil {
			return nil, err
		}
	}
	pro, err := s.profiles.GetByPublicLink(ctx, publicLink)
	if err != nil {
		return nil, err
	}
	svc, err := s.services.Get(ctx, pro.ID, req.ServiceID)
	if err != nil {
		return nil, err
	}

	appt, err := s.appointments.Create(ctx, &appointments.NewAppointment{
		ProfessionalID: pro.ID,
		ServiceID:      svc.ID,
		ServiceName:    svc.Name,
		Date:           req.Date,
		Time:           req.Time,
		ClientName:     req.ClientName,
		ClientPhone:    req.ClientPhone,
		Price:          svc.Price,
		Notes:          strings.TrimSpace(req.Notes),
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	key, err := s.profiles.GetPaymentKey(ctx, pro.ID)
	if err != nil {
		return nil, fmt.Errorf("booking: load payment key: %w", err)
	}
	return &Confirmation{Appointment: appt, PixKey: key}, nil
}

// parseFutureDate rejects dates before today in the booking timezone.
func (s *Service) parseFutureDate(date string) (time.Time, error) {
	day, err := time.ParseInLocation(availability.DateLayout, strings.TrimSpace(date), s.location)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	today := s.now().In(s.location).Format(availability.DateLayout)
	if day.Format(availability.DateLayout) < today {
		return time.Time{}, ErrPastDate
	}
	return day, nil
}

func derefRules(rules []*availability.Rule) []availability.Rule {
	out := make([]availability.Rule, 0, len(rules))
	for _, r := range rules {
		if r != nil {
			out = append(out, *r)
		}
	}
	return out
}
