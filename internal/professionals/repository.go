package professionals

import (
	"context"
	"strings"
	"sync"
	"time"
)

// Repository persists professional profiles and their payment key.
type Repository interface {
	Get(ctx context.Context, id string) (*Profile, error)
	GetByPublicLink(ctx context.Context, publicLink string) (*Profile, error)
	// Upsert creates the profile on first call and updates names afterwards.
	Upsert(ctx context.Context, req *UpsertProfileRequest) (*Profile, error)
	// GetPaymentKey returns "" when no key has been stored.
	GetPaymentKey(ctx context.Context, professionalID string) (string, error)
	UpdatePaymentKey(ctx context.Context, professionalID, key string) error
}

type InMemoryRepository struct {
	mu       sync.RWMutex
	profiles map[string]*Profile
	byLink   map[string]string
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		profiles: make(map[string]*Profile),
		byLink:   make(map[string]string),
	}
}

func (r *InMemoryRepository) Get(ctx context.Context, id string) (*Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.profiles[id]
	if !ok {
		return nil, ErrProfessionalNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *InMemoryRepository) GetByPublicLink(ctx context.Context, publicLink string) (*Profile, error) {
	r.mu.RLock()
	id, ok := r.byLink[strings.ToLower(strings.TrimSpace(publicLink))]
	r.mu.RUnlock()
	if !ok {
		return nil, ErrProfessionalNotFound
	}
	return r.Get(ctx, id)
}

func (r *InMemoryRepository) Upsert(ctx context.Context, req *UpsertProfileRequest) (*Profile, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	p, exists := r.profiles[req.ProfessionalID]
	if !exists {
		p = &Profile{ID: req.ProfessionalID, CreatedAt: now}
	}
	link := req.PublicLink
	if link == "" {
		link = p.PublicLink
	}
	if link == "" {
		link = NewPublicLink(req.BusinessName, req.FullName)
	}
	if owner, taken := r.byLink[link]; taken && owner != p.ID {
		return nil, ErrPublicLinkTaken
	}
	if p.PublicLink != "" && p.PublicLink != link {
		delete(r.byLink, p.PublicLink)
	}

	p.FullName = req.FullName
	p.BusinessName = req.BusinessName
	p.BusinessType = req.BusinessType
	p.PublicLink = link
	p.UpdatedAt = now
	r.profiles[p.ID] = p
	r.byLink[link] = p.ID

	cp := *p
	return &cp, nil
}

func (r *InMemoryRepository) GetPaymentKey(ctx context.Context, professionalID string) (string, error) {
	p, err := r.Get(ctx, professionalID)
	if err != nil {
		return "", err
	}
	return p.PixKey, nil
}

func (r *InMemoryRepository) UpdatePaymentKey(ctx context.Context, professionalID, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.profiles[professionalID]
	if !ok {
		return ErrProfessionalNotFound
	}
	p.PixKey = strings.TrimSpace(key)
	p.UpdatedAt = time.Now().UTC()
	return nil
}
