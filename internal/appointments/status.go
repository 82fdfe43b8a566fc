package appointments

import (
	"fmt"
	"strings"
)

// Status is the lifecycle state of an appointment.
type Status string

const (
	StatusPendingPayment Status = "pending_payment"
	StatusScheduled      Status = "scheduled"
	StatusConfirmed      Status = "confirmed"
	StatusCancelled      Status = "cancelled"
	// StatusCompleted is a valid stored value; nothing transitions into it yet.
	StatusCompleted Status = "completed"
)

// transitions lists the allowed professional-initiated edges.
var transitions = map[Status][]Status{
	StatusScheduled:      {StatusConfirmed, StatusCancelled},
	StatusPendingPayment: {StatusConfirmed, StatusCancelled},
}

// ParseStatus validates a stored or requested status string.
func ParseStatus(s string) (Status, error) {
	switch st := Status(strings.ToLower(strings.TrimSpace(s))); st {
	case StatusPendingPayment, StatusScheduled, StatusConfirmed, StatusCancelled, StatusCompleted:
		return st, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownStatus, s)
	}
}

// Next returns the statuses reachable from s.
func (s Status) Next() []Status {
	next := transitions[s]
	out := make([]Status, len(next))
	copy(out, next)
	return out
}

// CanTransitionTo reports whether target is reachable from s in one step.
// Re-applying the current status is not an edge; callers treat it as a no-op.
func (s Status) CanTransitionTo(target Status) bool {
	for _, next := range transitions[s] {
		if next == target {
			return true
		}
	}
	return false
}

// Terminal reports whether no transition leaves s.
func (s Status) Terminal() bool {
	return len(transitions[s]) == 0
}

// Blocking reports whether an appointment in s occupies its slot for new bookings.
func (s Status) Blocking() bool {
	return s == StatusScheduled
}
