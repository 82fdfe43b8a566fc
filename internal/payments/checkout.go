// Package payments creates Stripe checkout sessions for booked appointments
// and routes verified Stripe webhook events to their handlers.
package payments

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/stripe/stripe-go/v79"
	"go.opentelemetry.io/otel/attribute"

	"github.com/wolfman30/schedulepay/internal/appointments"
	"github.com/wolfman30/schedulepay/internal/availability"
	"github.com/wolfman30/schedulepay/internal/observability/metrics"
	"github.com/wolfman30/schedulepay/pkg/logging"
)

const defaultProductName = "Serviço"

var (
	ErrMissingAppointment = errors.New("appointment_id is required")
	ErrMissingEmail       = errors.New("email is required")
)

// AppointmentSource loads an appointment by id without tenant scoping.
type AppointmentSource interface {
	Get(ctx context.Context, id string) (*appointments.Appointment, error)
}

// CheckoutRequest starts payment for one appointment.
type CheckoutRequest struct {
	AppointmentID string `json:"appointment_id"`
	Email         string `json:"email"`
}

func (r *CheckoutRequest) Validate() error {
	r.AppointmentID = strings.TrimSpace(r.AppointmentID)
	r.Email = strings.TrimSpace(r.Email)
	if r.AppointmentID == "" {
		return ErrMissingAppointment
	}
	if r.Email == "" {
		return ErrMissingEmail
	}
	return nil
}

// CheckoutResult carries the hosted payment page.
type CheckoutResult struct {
	URL       string `json:"url"`
	SessionID string `json:"-"`
}

// CheckoutService builds one-off payment sessions priced from the
// appointment's snapshot.
type CheckoutService struct {
	gateway      Gateway
	appointments AppointmentSource
	currency     string
	metrics      *metrics.BookingMetrics
	logger       *logging.Logger
}

func NewCheckoutService(gateway Gateway, appts AppointmentSource, currency string, m *metrics.BookingMetrics, logger *logging.Logger) *CheckoutService {
	if gateway == nil || appts == nil {
		panic("payments: gateway and appointment source required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	currency = strings.ToLower(strings.TrimSpace(currency))
	if currency == "" {
		currency = string(stripe.CurrencyBRL)
	}
	return &CheckoutService{gateway: gateway, appointments: appts, currency: currency, metrics: m, logger: logger}
}

// CreateAppointmentCheckout opens a Stripe payment session for the appointment.
// origin is the client site the success and cancel pages live on.
func (s *CheckoutService) CreateAppointmentCheckout(ctx context.Context, origin string, req *CheckoutRequest) (*CheckoutResult, error) {
	ctx, span := stripeTracer.Start(ctx, "payments.appointment_checkout")
	defer span.End()

	res, err := s.createAppointmentCheckout(ctx, origin, req)
	s.metrics.ObserveCheckout("appointment", err)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	span.SetAttributes(attribute.String("schedulepay.checkout_session_id", res.SessionID))
	return res, nil
}

func (s *CheckoutService) createAppointmentCheckout(ctx context.Context, origin string, req *CheckoutRequest) (*CheckoutResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	appt, err := s.appointments.Get(ctx, req.AppointmentID)
	if err != nil {
		return nil, err
	}

	customerID, err := s.gateway.FindCustomerByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}

	origin = strings.TrimRight(origin, "/")
	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(s.currency),
					UnitAmount: stripe.Int64(MinorUnits(appt.Price)),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name:        stripe.String(productName(appt)),
						Description: stripe.String(describeAppointment(appt)),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(fmt.Sprintf("%s/booking/%s?payment=success&appointment=%s", origin, appt.ProfessionalID, appt.ID)),
		CancelURL:  stripe.String(fmt.Sprintf("%s/booking/%s?payment=cancelled", origin, appt.ProfessionalID)),
		Metadata: map[string]string{
			"appointment_id":  appt.ID,
			"professional_id": appt.ProfessionalID,
		},
	}
	if customerID != "" {
		params.Customer = stripe.String(customerID)
	} else {
		params.CustomerEmail = stripe.String(req.Email)
	}

	sess, err := s.gateway.CreateCheckoutSession(ctx, params)
	if err != nil {
		return nil, err
	}
	s.logger.ForProfessional(appt.ProfessionalID).Info("appointment checkout created",
		"appointment_id", appt.ID,
		"session_id", sess.ID,
		"amount_minor", MinorUnits(appt.Price),
	)
	return &CheckoutResult{URL: sess.URL, SessionID: sess.ID}, nil
}

// MinorUnits converts a decimal price to cents, rounding half away from zero.
func MinorUnits(price float64) int64 {
	return int64(math.Round(price * 100))
}

func productName(appt *appointments.Appointment) string {
	if name := strings.TrimSpace(appt.ServiceName); name != "" {
		return name
	}
	return defaultProductName
}

// describeAppointment renders "Agendamento em 10/03/2025 às 09:00:00".
func describeAppointment(appt *appointments.Appointment) string {
	date := appt.Date
	if d, err := time.Parse(availability.DateLayout, appt.Date); err == nil {
		date = d.Format("02/01/2006")
	}
	return fmt.Sprintf("Agendamento em %s às %s", date, appt.Time)
}
