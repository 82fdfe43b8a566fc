package catalog

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Repository defines storage for services. Every call is scoped by professional id.
type Repository interface {
	List(ctx context.Context, professionalID string) ([]*Service, error)
	Get(ctx context.Context, professionalID, id string) (*Service, error)
	Create(ctx context.Context, req *CreateServiceRequest) (*Service, error)
	Update(ctx context.Context, professionalID, id string, req *UpdateServiceRequest) (*Service, error)
	Delete(ctx context.Context, professionalID, id string) error
}

// InMemoryRepository keeps services in a map, for tests and local runs.
type InMemoryRepository struct {
	mu       sync.RWMutex
	services map[string]*Service
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{services: make(map[string]*Service)}
}

// List returns the professional's services ordered by name.
func (r *InMemoryRepository) List(ctx context.Context, professionalID string) ([]*Service, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Service, 0)
	for _, svc := range r.services {
		if svc.ProfessionalID == professionalID {
			cp := *svc
			out = append(out, &cp)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *InMemoryRepository) Get(ctx context.Context, professionalID, id string) (*Service, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	svc, ok := r.services[id]
	if !ok || svc.ProfessionalID != professionalID {
		return nil, ErrServiceNotFound
	}
	cp := *svc
	return &cp, nil
}

func (r *InMemoryRepository) Create(ctx context.Context, req *CreateServiceRequest) (*Service, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	svc := &Service{
		ID:              uuid.New().String(),
		ProfessionalID:  req.ProfessionalID,
		Name:            req.Name,
		DurationMinutes: req.DurationMinutes,
		Price:           req.Price,
		CreatedAt:       time.Now().UTC(),
	}

	r.mu.Lock()
	r.services[svc.ID] = svc
	r.mu.Unlock()

	cp := *svc
	return &cp, nil
}

func (r *InMemoryRepository) Update(ctx context.Context, professionalID, id string, req *UpdateServiceRequest) (*Service, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	svc, ok := r.services[id]
	if !ok || svc.ProfessionalID != professionalID {
		return nil, ErrServiceNotFound
	}
	req.apply(svc)
	cp := *svc
	return &cp, nil
}

func (r *InMemoryRepository) Delete(ctx context.Context, professionalID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	svc, ok := r.services[id]
	if !ok || svc.ProfessionalID != professionalID {
		return ErrServiceNotFound
	}
	delete(r.services, id)
	return nil
}
