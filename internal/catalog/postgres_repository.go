package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const serviceColumns = `id, professional_id, name, duration_minutes, price, created_at`

// PostgresRepository stores services in the relational database.
type PostgresRepository struct {
	db querier
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	if pool == nil {
		panic("catalog: pgx pool required")
	}
	return &PostgresRepository{db: pool}
}

func newPostgresRepositoryWithDB(db querier) *PostgresRepository {
	if db == nil {
		panic("catalog: db required")
	}
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) List(ctx context.Context, professionalID string) ([]*Service, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+serviceColumns+`
		FROM services
		WHERE professional_id = $1
		ORDER BY name ASC
	`, professionalID)
	if err != nil {
		return nil, fmt.Errorf("catalog: list services: %w", err)
	}
	defer rows.Close()

	out := make([]*Service, 0)
	for rows.Next() {
		svc, err := scanService(rows)
		if err != nil {
			return nil, fmt.Errorf("catalog: scan service: %w", err)
		}
		out = append(out, svc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("catalog: list services: %w", err)
	}
	return out, nil
}

func (r *PostgresRepository) Get(ctx context.Context, professionalID, id string) (*Service, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrServiceNotFound
	}
	row := r.db.QueryRow(ctx, `
		SELECT `+serviceColumns+`
		FROM services
		WHERE id = $1 AND professional_id = $2
	`, id, professionalID)
	svc, err := scanService(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrServiceNotFound
		}
		return nil, fmt.Errorf("catalog: select service: %w", err)
	}
	return svc, nil
}

func (r *PostgresRepository) Create(ctx context.Context, req *CreateServiceRequest) (*Service, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	id := uuid.New()
	row := r.db.QueryRow(ctx, `
		INSERT INTO services (id, professional_id, name, duration_minutes, price)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+serviceColumns,
		id, req.ProfessionalID, req.Name, req.DurationMinutes, req.Price,
	)
	svc, err := scanService(row)
	if err != nil {
		return nil, fmt.Errorf("catalog: insert service: %w", err)
	}
	return svc, nil
}

// Update applies only the non-nil fields; COALESCE keeps the stored value otherwise.
func (r *PostgresRepository) Update(ctx context.Context, professionalID, id string, req *UpdateServiceRequest) (*Service, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrServiceNotFound
	}
	row := r.db.QueryRow(ctx, `
		UPDATE services
		SET name = COALESCE($3, name),
			duration_minutes = COALESCE($4, duration_minutes),
			price = COALESCE($5, price)
		WHERE id = $1 AND professional_id = $2
		RETURNING `+serviceColumns,
		id, professionalID, req.Name, req.DurationMinutes, req.Price,
	)
	svc, err := scanService(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrServiceNotFound
		}
		return nil, fmt.Errorf("catalog: update service: %w", err)
	}
	return svc, nil
}

// Delete removes the service. Appointments keep their dangling service_id.
func (r *PostgresRepository) Delete(ctx context.Context, professionalID, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrServiceNotFound
	}
	tag, err := r.db.Exec(ctx, `DELETE FROM services WHERE id = $1 AND professional_id = $2`, id, professionalID)
	if err != nil {
		return fmt.Errorf("catalog: delete service: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrServiceNotFound
	}
	return nil
}

func scanService(row pgx.Row) (*Service, error) {
	var svc Service
	if err := row.Scan(
		&svc.ID,
		&svc.ProfessionalID,
		&svc.Name,
		&svc.DurationMinutes,
		&svc.Price,
		&svc.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &svc, nil
}
