package metrics

import "github.com/prometheus/client_golang/prometheus"

// BookingMetrics exposes counters/histograms for the booking and payment flows.
type BookingMetrics struct {
	appointmentsCreated *prometheus.CounterVec
	transitions         *prometheus.CounterVec
	slotsResolved       *prometheus.HistogramVec
	checkoutSessions    *prometheus.CounterVec
	webhookEvents       *prometheus.CounterVec
}

func NewBookingMetrics(reg prometheus.Registerer) *BookingMetrics {
	m := &BookingMetrics{
		appointmentsCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "schedulepay",
			Subsystem: "appointments",
			Name:      "created_total",
			Help:      "Appointments created through the public booking flow",
		}, []string{"result"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "schedulepay",
			Subsystem: "appointments",
			Name:      "transitions_total",
			Help:      "Appointment status transitions by target status and result",
		}, []string{"target", "result"}),
		slotsResolved: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "schedulepay",
			Subsystem: "availability",
			Name:      "slots_resolved",
			Help:      "Number of open start times returned per resolution",
			Buckets:   []float64{0, 1, 2, 4, 8, 16, 32, 64},
		}, []string{"weekday"}),
		checkoutSessions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "schedulepay",
			Subsystem: "payments",
			Name:      "checkout_sessions_total",
			Help:      "Hosted checkout sessions requested from the payment processor",
		}, []string{"kind", "status"}),
		webhookEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "schedulepay",
			Subsystem: "payments",
			Name:      "webhook_events_total",
			Help:      "Payment processor webhook events by type and outcome",
		}, []string{"event_type", "outcome"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.appointmentsCreated, m.transitions, m.slotsResolved, m.checkoutSessions, m.webhookEvents)
	return m
}

func (m *BookingMetrics) ObserveAppointmentCreated(err error) {
	if m == nil {
		return
	}
	m.appointmentsCreated.WithLabelValues(resultLabel(err)).Inc()
}

func (m *BookingMetrics) ObserveTransition(target string, err error) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(target, resultLabel(err)).Inc()
}

func (m *BookingMetrics) ObserveSlotsResolved(weekday string, count int) {
	if m == nil {
		return
	}
	m.slotsResolved.WithLabelValues(weekday).Observe(float64(count))
}

func (m *BookingMetrics) ObserveCheckout(kind string, err error) {
	if m == nil {
		return
	}
	m.checkoutSessions.WithLabelValues(kind, resultLabel(err)).Inc()
}

func (m *BookingMetrics) ObserveWebhook(eventType, outcome string) {
	if m == nil {
		return
	}
	m.webhookEvents.WithLabelValues(eventType, outcome).Inc()
}

func resultLabel(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
