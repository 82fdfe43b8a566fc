package billing

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store persists the last known subscription state per professional.
type Store interface {
	Get(ctx context.Context, professionalID string) (*Record, error)
	FindByCustomer(ctx context.Context, customerID string) (*Record, error)
	Upsert(ctx context.Context, rec *Record) error
}

type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const subscriptionColumns = `professional_id, COALESCE(stripe_customer_id, ''), COALESCE(stripe_subscription_id, ''),
	COALESCE(product_id, ''), status, current_period_end, updated_at`

type PostgresStore struct {
	db querier
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	if pool == nil {
		panic("billing: pgx pool required")
	}
	return &PostgresStore{db: pool}
}

func newPostgresStoreWithDB(db querier) *PostgresStore {
	if db == nil {
		panic("billing: db required")
	}
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Get(ctx context.Context, professionalID string) (*Record, error) {
	return s.getOne(ctx, `SELECT `+subscriptionColumns+` FROM subscriptions WHERE professional_id = $1`, professionalID)
}

func (s *PostgresStore) FindByCustomer(ctx context.Context, customerID string) (*Record, error) {
	return s.getOne(ctx, `SELECT `+subscriptionColumns+` FROM subscriptions WHERE stripe_customer_id = $1`, customerID)
}

func (s *PostgresStore) getOne(ctx context.Context, sql string, args ...any) (*Record, error) {
	var rec Record
	err := s.db.QueryRow(ctx, sql, args...).Scan(
		&rec.ProfessionalID, &rec.CustomerID, &rec.SubscriptionID,
		&rec.ProductID, &rec.Status, &rec.CurrentPeriodEnd, &rec.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNoSubscription
		}
		return nil, fmt.Errorf("billing: select subscription: %w", err)
	}
	return &rec, nil
}

// Upsert keeps stored identifiers when the new record leaves them empty.
func (s *PostgresStore) Upsert(ctx context.Context, rec *Record) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO subscriptions (professional_id, stripe_customer_id, stripe_subscription_id, product_id, status, current_period_end)
		VALUES ($1, NULLIF($2, ''), NULLIF($3, ''), NULLIF($4, ''), $5, $6)
		ON CONFLICT (professional_id) DO UPDATE SET
			stripe_customer_id = COALESCE(EXCLUDED.stripe_customer_id, subscriptions.stripe_customer_id),
			stripe_subscription_id = COALESCE(EXCLUDED.stripe_subscription_id, subscriptions.stripe_subscription_id),
			product_id = COALESCE(EXCLUDED.product_id, subscriptions.product_id),
			status = EXCLUDED.status,
			current_period_end = EXCLUDED.current_period_end,
			updated_at = NOW()
	`, rec.ProfessionalID, rec.CustomerID, rec.SubscriptionID, rec.ProductID, rec.Status, rec.CurrentPeriodEnd)
	if err != nil {
		return fmt.Errorf("billing: upsert subscription: %w", err)
	}
	return nil
}

// MemoryStore is the Store used with USE_MEMORY_STORE.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]*Record
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]*Record)}
}

func (m *MemoryStore) Get(_ context.Context, professionalID string) (*Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.records[professionalID]
	if !ok {
		return nil, ErrNoSubscription
	}
	cp := *rec
	return &cp, nil
}

func (m *MemoryStore) FindByCustomer(_ context.Context, customerID string) (*Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, rec := range m.records {
		if customerID != "" && rec.CustomerID == customerID {
			cp := *rec
			return &cp, nil
		}
	}
	return nil, ErrNoSubscription
}

func (m *MemoryStore) Upsert(_ context.Context, rec *Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	next := *rec
	if prev, ok := m.records[rec.ProfessionalID]; ok {
		if next.CustomerID == "" {
			next.CustomerID = prev.CustomerID
		}
		if next.SubscriptionID == "" {
			next.SubscriptionID = prev.SubscriptionID
		}
		if next.ProductID == "" {
			next.ProductID = prev.ProductID
		}
	}
	next.UpdatedAt = time.Now().UTC()
	m.records[rec.ProfessionalID] = &next
	return nil
}
