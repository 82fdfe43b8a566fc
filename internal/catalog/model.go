package catalog

import (
	"strings"
	"time"
)

// Service is a bookable offering of one professional.
type Service struct {
	ID              string    `json:"id"`
	ProfessionalID  string    `json:"professional_id"`
	Name            string    `json:"name"`
	DurationMinutes int       `json:"duration_minutes"`
	Price           float64   `json:"price"`
	CreatedAt       time.Time `json:"created_at"`
}

// CreateServiceRequest is the body for adding a service.
type CreateServiceRequest struct {
	ProfessionalID  string  `json:"-"`
	Name            string  `json:"name"`
	DurationMinutes int     `json:"duration_minutes"`
	Price           float64 `json:"price"`
}

// Validate normalizes the name and checks the numeric fields.
func (r *CreateServiceRequest) Validate() error {
	if strings.TrimSpace(r.ProfessionalID) == "" {
		return ErrMissingProfessional
	}
	r.Name = strings.TrimSpace(r.Name)
	if r.Name == "" {
		return ErrInvalidName
	}
	if r.DurationMinutes <= 0 {
		return ErrInvalidDuration
	}
	if r.Price < 0 {
		return ErrInvalidPrice
	}
	return nil
}

// UpdateServiceRequest carries a partial update; nil fields are left untouched.
type UpdateServiceRequest struct {
	Name            *string  `json:"name,omitempty"`
	DurationMinutes *int     `json:"duration_minutes,omitempty"`
	Price           *float64 `json:"price,omitempty"`
}

func (r *UpdateServiceRequest) Validate() error {
	if r.Name != nil {
		name := strings.TrimSpace(*r.Name)
		if name == "" {
			return ErrInvalidName
		}
		r.Name = &name
	}
	if r.DurationMinutes != nil && *r.DurationMinutes <= 0 {
		return ErrInvalidDuration
	}
	if r.Price != nil && *r.Price < 0 {
		return ErrInvalidPrice
	}
	return nil
}

func (r *UpdateServiceRequest) apply(svc *Service) {
	if r.Name != nil {
		svc.Name = *r.Name
	}
	if r.DurationMinutes != nil {
		svc.DurationMinutes = *r.DurationMinutes
	}
	if r.Price != nil {
		svc.Price = *r.Price
	}
}
