package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// Snapshot is a JSON-friendly roll-up of the booking counters.
type Snapshot struct {
	AppointmentsCreated float64            `json:"appointments_created"`
	AppointmentErrors   float64            `json:"appointment_errors"`
	Transitions         map[string]float64 `json:"transitions"`
	CheckoutSessions    map[string]float64 `json:"checkout_sessions"`
	WebhookEvents       map[string]float64 `json:"webhook_events"`
}

// TakeSnapshot reads the booking families from gatherer. Missing families
// read as zero.
func TakeSnapshot(gatherer prometheus.Gatherer) Snapshot {
	snap := Snapshot{
		Transitions:      map[string]float64{},
		CheckoutSessions: map[string]float64{},
		WebhookEvents:    map[string]float64{},
	}
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	mfs, err := gatherer.Gather()
	if err != nil {
		return snap
	}
	for _, mf := range mfs {
		if mf == nil {
			continue
		}
		switch mf.GetName() {
		case "schedulepay_appointments_created_total":
			for _, m := range mf.Metric {
				if labelValue(m, "result") == "ok" {
					snap.AppointmentsCreated += counterValue(m)
				} else {
					snap.AppointmentErrors += counterValue(m)
				}
			}
		case "schedulepay_appointments_transitions_total":
			for _, m := range mf.Metric {
				if labelValue(m, "result") == "ok" {
					snap.Transitions[labelValue(m, "target")] += counterValue(m)
				}
			}
		case "schedulepay_payments_checkout_sessions_total":
			for _, m := range mf.Metric {
				if labelValue(m, "status") == "ok" {
					snap.CheckoutSessions[labelValue(m, "kind")] += counterValue(m)
				}
			}
		case "schedulepay_payments_webhook_events_total":
			for _, m := range mf.Metric {
				snap.WebhookEvents[labelValue(m, "outcome")] += counterValue(m)
			}
		}
	}
	return snap
}

func counterValue(m *dto.Metric) float64 {
	if m == nil || m.GetCounter() == nil {
		return 0
	}
	return m.GetCounter().GetValue()
}

func labelValue(m *dto.Metric, name string) string {
	if m == nil {
		return ""
	}
	for _, lp := range m.Label {
		if lp != nil && lp.GetName() == name {
			return lp.GetValue()
		}
	}
	return ""
}
