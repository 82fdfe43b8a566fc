package appointments

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/wolfman30/schedulepay/internal/availability"
	"github.com/wolfman30/schedulepay/internal/observability/metrics"
	"github.com/wolfman30/schedulepay/pkg/logging"
)

var appointmentsTracer = otel.Tracer("schedulepay.internal.appointments")

// Service drives the appointment lifecycle on top of a Repository.
type Service struct {
	repo    Repository
	metrics *metrics.BookingMetrics
	logger  *logging.Logger
}

// NewService constructs an appointments service. metrics may be nil.
func NewService(repo Repository, m *metrics.BookingMetrics, logger *logging.Logger) *Service {
	if repo == nil {
		panic("appointments: repository required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{repo: repo, metrics: m, logger: logger}
}

// Create books a new appointment. The stored status is always scheduled.
func (s *Service) Create(ctx context.Context, req *NewAppointment) (*Appointment, error) {
	ctx, span := appointmentsTracer.Start(ctx, "appointments.create")
	defer span.End()
	span.SetAttributes(
		attribute.String("schedulepay.professional_id", req.ProfessionalID),
		attribute.String("schedulepay.service_id", req.ServiceID),
	)

	appt, err := s.repo.Create(ctx, req)
	s.metrics.ObserveAppointmentCreated(err)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	s.logger.Info("appointment created",
		"professional_id", appt.ProfessionalID,
		"appointment_id", appt.ID,
		"date", appt.Date,
		"time", appt.Time,
	)
	return appt, nil
}

// List returns the professional's appointments ordered by date and time.
func (s *Service) List(ctx context.Context, professionalID string) ([]*Appointment, error) {
	return s.repo.List(ctx, professionalID)
}

// Get loads one appointment without tenant scoping.
func (s *Service) Get(ctx context.Context, id string) (*Appointment, error) {
	return s.repo.Get(ctx, id)
}

// BookedSlots returns the slots that block new bookings for the professional.
func (s *Service) BookedSlots(ctx context.Context, professionalID string) ([]availability.BookedSlot, error) {
	return s.repo.ListBooked(ctx, professionalID)
}

// Transition moves an appointment to target and returns the freshly re-read
// list for the professional. Re-applying the current status writes nothing.
func (s *Service) Transition(ctx context.Context, professionalID, id string, target Status) ([]*Appointment, error) {
	ctx, span := appointmentsTracer.Start(ctx, "appointments.transition")
	defer span.End()
	span.SetAttributes(
		attribute.String("schedulepay.professional_id", professionalID),
		attribute.String("schedulepay.appointment_id", id),
		attribute.String("schedulepay.target_status", string(target)),
	)

	err := s.apply(ctx, professionalID, id, target, nil)
	s.metrics.ObserveTransition(string(target), err)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return s.repo.List(ctx, professionalID)
}

// Confirm moves a scheduled or pending-payment appointment to confirmed.
func (s *Service) Confirm(ctx context.Context, professionalID, id string) ([]*Appointment, error) {
	return s.Transition(ctx, professionalID, id, StatusConfirmed)
}

// Cancel moves a scheduled or pending-payment appointment to cancelled.
func (s *Service) Cancel(ctx context.Context, professionalID, id string) ([]*Appointment, error) {
	return s.Transition(ctx, professionalID, id, StatusCancelled)
}

// ConfirmPayment records a payment confirmation; only pending_payment qualifies.
func (s *Service) ConfirmPayment(ctx context.Context, professionalID, id string) ([]*Appointment, error) {
	ctx, span := appointmentsTracer.Start(ctx, "appointments.confirm_payment")
	defer span.End()
	span.SetAttributes(
		attribute.String("schedulepay.professional_id", professionalID),
		attribute.String("schedulepay.appointment_id", id),
	)

	err := s.apply(ctx, professionalID, id, StatusConfirmed, []Status{StatusPendingPayment})
	s.metrics.ObserveTransition(string(StatusConfirmed), err)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return s.repo.List(ctx, professionalID)
}

func (s *Service) apply(ctx context.Context, professionalID, id string, target Status, from []Status) error {
	current, err := s.repo.GetForProfessional(ctx, professionalID, id)
	if err != nil {
		return err
	}
	if current.Status == target {
		return nil
	}
	if from != nil && !containsStatus(from, current.Status) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current.Status, target)
	}
	if !current.Status.CanTransitionTo(target) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current.Status, target)
	}
	if err := s.repo.UpdateStatus(ctx, professionalID, id, target); err != nil {
		return err
	}
	s.logger.Info("appointment status changed",
		"professional_id", professionalID,
		"appointment_id", id,
		"from", current.Status,
		"to", target,
	)
	return nil
}

func containsStatus(list []Status, s Status) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
