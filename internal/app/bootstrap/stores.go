package bootstrap

import (
	"database/sql"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/wolfman30/schedulepay/internal/appointments"
	"github.com/wolfman30/schedulepay/internal/availability"
	"github.com/wolfman30/schedulepay/internal/billing"
	"github.com/wolfman30/schedulepay/internal/catalog"
	"github.com/wolfman30/schedulepay/internal/events"
	"github.com/wolfman30/schedulepay/internal/professionals"
)

// Stores groups every repository the API needs. SQL is nil in memory mode.
type Stores struct {
	Professionals professionals.Repository
	Services      catalog.Repository
	Rules         availability.Repository
	Appointments  appointments.Repository
	Subscriptions billing.Store
	Ledger        events.Ledger
	SQL           *sql.DB
}

// BuildStores returns Postgres-backed stores when pool is set and
// in-memory ones otherwise.
func BuildStores(pool *pgxpool.Pool) *Stores {
	if pool == nil {
		return &Stores{
			Professionals: professionals.NewInMemoryRepository(),
			Services:      catalog.NewInMemoryRepository(),
			Rules:         availability.NewInMemoryRepository(),
			Appointments:  appointments.NewInMemoryRepository(),
			Subscriptions: billing.NewMemoryStore(),
			Ledger:        events.NewMemoryLedger(),
		}
	}
	return &Stores{
		Professionals: professionals.NewPostgresRepository(pool),
		Services:      catalog.NewPostgresRepository(pool),
		Rules:         availability.NewPostgresRepository(pool),
		Appointments:  appointments.NewPostgresRepository(pool),
		Subscriptions: billing.NewPostgresStore(pool),
		Ledger:        events.NewProcessedStore(pool),
		SQL:           stdlib.OpenDBFromPool(pool),
	}
}
