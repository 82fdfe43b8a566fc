package professionals

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const profileColumns = `id, full_name, COALESCE(business_name, ''), COALESCE(business_type, ''),
	COALESCE(pix_key, ''), public_link, created_at, updated_at`

const uniqueViolation = "23505"

type PostgresRepository struct {
	db querier
}

func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	if pool == nil {
		panic("professionals: pgx pool required")
	}
	return &PostgresRepository{db: pool}
}

func newPostgresRepositoryWithDB(db querier) *PostgresRepository {
	if db == nil {
		panic("professionals: db required")
	}
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (*Profile, error) {
	return r.getOne(ctx, `SELECT `+profileColumns+` FROM professionals WHERE id = $1`, id)
}

func (r *PostgresRepository) GetByPublicLink(ctx context.Context, publicLink string) (*Profile, error) {
	link := strings.ToLower(strings.TrimSpace(publicLink))
	if link == "" {
		return nil, ErrProfessionalNotFound
	}
	return r.getOne(ctx, `SELECT `+profileColumns+` FROM professionals WHERE public_link = $1`, link)
}

func (r *PostgresRepository) getOne(ctx context.Context, sql string, args ...any) (*Profile, error) {
	var p Profile
	err := r.db.QueryRow(ctx, sql, args...).Scan(
		&p.ID, &p.FullName, &p.BusinessName, &p.BusinessType,
		&p.PixKey, &p.PublicLink, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProfessionalNotFound
		}
		return nil, fmt.Errorf("professionals: select failed: %w", err)
	}
	return &p, nil
}

// Upsert inserts with a generated link, or updates names and keeps the stored
// link unless the request names a new one.
func (r *PostgresRepository) Upsert(ctx context.Context, req *UpsertProfileRequest) (*Profile, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	insertLink := req.PublicLink
	if insertLink == "" {
		insertLink = NewPublicLink(req.BusinessName, req.FullName)
	}
	var p Profile
	err := r.db.QueryRow(ctx, `
		INSERT INTO professionals (id, full_name, business_name, business_type, public_link)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			full_name = EXCLUDED.full_name,
			business_name = EXCLUDED.business_name,
			business_type = EXCLUDED.business_type,
			public_link = COALESCE(NULLIF($6, ''), professionals.public_link),
			updated_at = NOW()
		RETURNING `+profileColumns,
		req.ProfessionalID, req.FullName, req.BusinessName, req.BusinessType, insertLink, req.PublicLink,
	).Scan(
		&p.ID, &p.FullName, &p.BusinessName, &p.BusinessType,
		&p.PixKey, &p.PublicLink, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, ErrPublicLinkTaken
		}
		return nil, fmt.Errorf("professionals: upsert failed: %w", err)
	}
	return &p, nil
}

func (r *PostgresRepository) GetPaymentKey(ctx context.Context, professionalID string) (string, error) {
	var key string
	err := r.db.QueryRow(ctx, `SELECT COALESCE(pix_key, '') FROM professionals WHERE id = $1`, professionalID).Scan(&key)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrProfessionalNotFound
		}
		return "", fmt.Errorf("professionals: get payment key failed: %w", err)
	}
	return key, nil
}

func (r *PostgresRepository) UpdatePaymentKey(ctx context.Context, professionalID, key string) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE professionals SET pix_key = NULLIF($2, ''), updated_at = NOW()
		WHERE id = $1
	`, professionalID, strings.TrimSpace(key))
	if err != nil {
		return fmt.Errorf("professionals: update payment key failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrProfessionalNotFound
	}
	return nil
}
