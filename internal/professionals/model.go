package professionals

import (
	"strings"
	"time"
)

// Profile is the professional's public identity and settings.
type Profile struct {
	ID           string    `json:"id"`
	FullName     string    `json:"full_name"`
	BusinessName string    `json:"business_name"`
	BusinessType string    `json:"business_type"`
	PixKey       string    `json:"pix_key"`
	PublicLink   string    `json:"public_link"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// PublicProfile is the subset shown to clients on the booking page.
type PublicProfile struct {
	ID           string `json:"id"`
	FullName     string `json:"full_name"`
	BusinessName string `json:"business_name"`
	BusinessType string `json:"business_type"`
}

func (p *Profile) Public() PublicProfile {
	return PublicProfile{
		ID:           p.ID,
		FullName:     p.FullName,
		BusinessName: p.BusinessName,
		BusinessType: p.BusinessType,
	}
}

// UpsertProfileRequest bootstraps or edits a profile. An empty PublicLink
// keeps the stored one, or generates a new one on first insert.
type UpsertProfileRequest struct {
	ProfessionalID string `json:"-"`
	FullName       string `json:"full_name"`
	BusinessName   string `json:"business_name"`
	BusinessType   string `json:"business_type"`
	PublicLink     string `json:"public_link"`
}

func (r *UpsertProfileRequest) Validate() error {
	if strings.TrimSpace(r.ProfessionalID) == "" {
		return ErrMissingProfessional
	}
	r.FullName = strings.TrimSpace(r.FullName)
	r.BusinessName = strings.TrimSpace(r.BusinessName)
	r.BusinessType = strings.TrimSpace(r.BusinessType)
	r.PublicLink = strings.TrimSpace(r.PublicLink)
	if r.FullName == "" {
		return ErrInvalidFullName
	}
	if r.PublicLink != "" && !validSlug(r.PublicLink) {
		return ErrInvalidPublicLink
	}
	return nil
}
