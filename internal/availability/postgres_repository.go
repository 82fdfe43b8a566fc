package availability

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

// Times are read back as text so they round-trip as HH:MM:SS.
const ruleColumns = `id, professional_id, day_of_week, start_time::text, end_time::text, is_active, created_at`

type PostgresRepository struct {
	db querier
}

func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	if pool == nil {
		panic("availability: pgx pool required")
	}
	return &PostgresRepository{db: pool}
}

func newPostgresRepositoryWithDB(db querier) *PostgresRepository {
	if db == nil {
		panic("availability: db required")
	}
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) List(ctx context.Context, professionalID string) ([]*Rule, error) {
	return r.query(ctx, `
		SELECT `+ruleColumns+`
		FROM available_slots
		WHERE professional_id = $1
		ORDER BY day_of_week ASC, start_time ASC
	`, professionalID)
}

func (r *PostgresRepository) ListActive(ctx context.Context, professionalID string) ([]*Rule, error) {
	return r.query(ctx, `
		SELECT `+ruleColumns+`
		FROM available_slots
		WHERE professional_id = $1 AND is_active = true
		ORDER BY day_of_week ASC, start_time ASC
	`, professionalID)
}

func (r *PostgresRepository) query(ctx context.Context, sql string, args ...any) ([]*Rule, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("availability: list rules: %w", err)
	}
	defer rows.Close()

	out := make([]*Rule, 0)
	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			return nil, fmt.Errorf("availability: scan rule: %w", err)
		}
		out = append(out, rule)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("availability: list rules: %w", err)
	}
	return out, nil
}

func (r *PostgresRepository) Create(ctx context.Context, req *CreateRuleRequest) (*Rule, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	row := r.db.QueryRow(ctx, `
		INSERT INTO available_slots (id, professional_id, day_of_week, start_time, end_time, is_active)
		VALUES ($1, $2, $3, $4::time, $5::time, true)
		RETURNING `+ruleColumns,
		uuid.New(), req.ProfessionalID, *req.DayOfWeek, req.StartTime, req.EndTime,
	)
	rule, err := scanRule(row)
	if err != nil {
		return nil, fmt.Errorf("availability: insert rule: %w", err)
	}
	return rule, nil
}

func (r *PostgresRepository) ToggleActive(ctx context.Context, professionalID, id string) (*Rule, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrRuleNotFound
	}
	row := r.db.QueryRow(ctx, `
		UPDATE available_slots
		SET is_active = NOT is_active
		WHERE id = $1 AND professional_id = $2
		RETURNING `+ruleColumns,
		id, professionalID,
	)
	rule, err := scanRule(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRuleNotFound
		}
		return nil, fmt.Errorf("availability: toggle rule: %w", err)
	}
	return rule, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, professionalID, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrRuleNotFound
	}
	tag, err := r.db.Exec(ctx, `DELETE FROM available_slots WHERE id = $1 AND professional_id = $2`, id, professionalID)
	if err != nil {
		return fmt.Errorf("availability: delete rule: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrRuleNotFound
	}
	return nil
}

func scanRule(row pgx.Row) (*Rule, error) {
	var rule Rule
	if err := row.Scan(
		&rule.ID,
		&rule.ProfessionalID,
		&rule.DayOfWeek,
		&rule.StartTime,
		&rule.EndTime,
		&rule.Active,
		&rule.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &rule, nil
}
