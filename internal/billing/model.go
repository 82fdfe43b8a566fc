package billing

import (
	"errors"
	"time"
)

var (
	ErrMissingEmail    = errors.New("account email is required")
	ErrMissingPriceID  = errors.New("price_id is required")
	ErrNoCustomer      = errors.New("no billing customer for this account")
	ErrNoSubscription  = errors.New("subscription not found")
	ErrMissingTenantID = errors.New("professional id is required")
)

// Status is the check-subscription response.
type Status struct {
	Subscribed      bool       `json:"subscribed"`
	ProductID       *string    `json:"product_id"`
	SubscriptionEnd *time.Time `json:"subscription_end"`
}

// Record mirrors one row of the subscriptions table.
type Record struct {
	ProfessionalID   string
	CustomerID       string
	SubscriptionID   string
	ProductID        string
	Status           string
	CurrentPeriodEnd *time.Time
	UpdatedAt        time.Time
}

// Subscribed reports whether the record grants access.
func (r *Record) Subscribed() bool {
	return r.Status == "active" || r.Status == "trialing"
}

func (r *Record) ToStatus() Status {
	st := Status{Subscribed: r.Subscribed()}
	if !st.Subscribed {
		return st
	}
	if r.ProductID != "" {
		id := r.ProductID
		st.ProductID = &id
	}
	if r.CurrentPeriodEnd != nil {
		end := r.CurrentPeriodEnd.UTC()
		st.SubscriptionEnd = &end
	}
	return st
}
