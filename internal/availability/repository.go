package availability

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Repository stores weekly availability rules scoped by professional.
type Repository interface {
	// List returns every rule ordered by day of week, then start time.
	List(ctx context.Context, professionalID string) ([]*Rule, error)
	// ListActive returns only rules with Active set, in the same order.
	ListActive(ctx context.Context, professionalID string) ([]*Rule, error)
	Create(ctx context.Context, req *CreateRuleRequest) (*Rule, error)
	ToggleActive(ctx context.Context, professionalID, id string) (*Rule, error)
	Delete(ctx context.Context, professionalID, id string) error
}

type InMemoryRepository struct {
	mu    sync.RWMutex
	rules map[string]*Rule
	order []string
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{rules: make(map[string]*Rule)}
}

func (r *InMemoryRepository) List(ctx context.Context, professionalID string) ([]*Rule, error) {
	return r.list(professionalID, false), nil
}

func (r *InMemoryRepository) ListActive(ctx context.Context, professionalID string) ([]*Rule, error) {
	return r.list(professionalID, true), nil
}

func (r *InMemoryRepository) list(professionalID string, activeOnly bool) []*Rule {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Rule, 0)
	for _, id := range r.order {
		rule, ok := r.rules[id]
		if !ok || rule.ProfessionalID != professionalID {
			continue
		}
		if activeOnly && !rule.Active {
			continue
		}
		cp := *rule
		out = append(out, &cp)
	}
	SortRules(out)
	return out
}

func (r *InMemoryRepository) Create(ctx context.Context, req *CreateRuleRequest) (*Rule, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	rule := &Rule{
		ID:             uuid.New().String(),
		ProfessionalID: req.ProfessionalID,
		DayOfWeek:      *req.DayOfWeek,
		StartTime:      req.StartTime,
		EndTime:        req.EndTime,
		Active:         true,
		CreatedAt:      time.Now().UTC(),
	}

	r.mu.Lock()
	r.rules[rule.ID] = rule
	r.order = append(r.order, rule.ID)
	r.mu.Unlock()

	cp := *rule
	return &cp, nil
}

func (r *InMemoryRepository) ToggleActive(ctx context.Context, professionalID, id string) (*Rule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rule, ok := r.rules[id]
	if !ok || rule.ProfessionalID != professionalID {
		return nil, ErrRuleNotFound
	}
	rule.Active = !rule.Active
	cp := *rule
	return &cp, nil
}

func (r *InMemoryRepository) Delete(ctx context.Context, professionalID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rule, ok := r.rules[id]
	if !ok || rule.ProfessionalID != professionalID {
		return ErrRuleNotFound
	}
	delete(r.rules, id)
	for i, existing := range r.order {
		if existing == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

// SortRules orders by day of week then start time, keeping insertion order for ties.
func SortRules(rules []*Rule) {
	sort.SliceStable(rules, func(i, j int) bool {
		if rules[i].DayOfWeek != rules[j].DayOfWeek {
			return rules[i].DayOfWeek < rules[j].DayOfWeek
		}
		return rules[i].StartTime < rules[j].StartTime
	})
}
