package payments

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v79"

	"github.com/wolfman30/schedulepay/internal/appointments"
	"github.com/wolfman30/schedulepay/pkg/logging"
)

// AppointmentConfirmer moves a paid appointment forward.
type AppointmentConfirmer interface {
	Get(ctx context.Context, id string) (*appointments.Appointment, error)
	Transition(ctx context.Context, professionalID, id string, target appointments.Status) ([]*appointments.Appointment, error)
}

// ConfirmPaidAppointments returns a processor for checkout.session.completed
// that confirms the appointment named in the session metadata once paid.
// Sessions from other flows, unpaid sessions and appointments that can no
// longer be confirmed are acknowledged without change.
func ConfirmPaidAppointments(appts AppointmentConfirmer, logger *logging.Logger) EventProcessor {
	if logger == nil {
		logger = logging.Default()
	}
	return func(ctx context.Context, evt stripe.Event) error {
		var session stripe.CheckoutSession
		if err := json.Unmarshal(evt.Data.Raw, &session); err != nil {
			return fmt.Errorf("payments: decode checkout session: %w", err)
		}
		if session.Mode != stripe.CheckoutSessionModePayment {
			return nil
		}
		appointmentID := strings.TrimSpace(session.Metadata["appointment_id"])
		if appointmentID == "" {
			return nil
		}
		if session.PaymentStatus != stripe.CheckoutSessionPaymentStatusPaid {
			logger.Info("checkout completed without payment", "appointment_id", appointmentID, "payment_status", session.PaymentStatus)
			return nil
		}

		appt, err := appts.Get(ctx, appointmentID)
		if errors.Is(err, appointments.ErrAppointmentNotFound) {
			logger.Warn("paid checkout for unknown appointment", "appointment_id", appointmentID, "session_id", session.ID)
			return nil
		}
		if err != nil {
			return err
		}

		_, err = appts.Transition(ctx, appt.ProfessionalID, appt.ID, appointments.StatusConfirmed)
		if errors.Is(err, appointments.ErrInvalidTransition) {
			logger.ForProfessional(appt.ProfessionalID).Warn("paid appointment cannot be confirmed",
				"appointment_id", appt.ID, "status", appt.Status)
			return nil
		}
		if err != nil {
			return err
		}
		logger.ForProfessional(appt.ProfessionalID).Info("appointment confirmed by payment",
			"appointment_id", appt.ID, "session_id", session.ID)
		return nil
	}
}
