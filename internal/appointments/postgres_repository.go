package appointments

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wolfman30/schedulepay/internal/availability"
)

type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const selectAppointments = `
	SELECT a.id, a.professional_id, a.service_id, COALESCE(s.name, ''),
		a.appointment_date::text, a.appointment_time::text,
		a.client_name, a.client_phone, a.price, a.status, a.notes,
		a.created_at, a.updated_at
	FROM appointments a
	LEFT JOIN services s ON s.id = a.service_id
`

// PostgresRepository stores appointments in the relational database.
type PostgresRepository struct {
	db querier
}

func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	if pool == nil {
		panic("appointments: pgx pool required")
	}
	return &PostgresRepository{db: pool}
}

func newPostgresRepositoryWithDB(db querier) *PostgresRepository {
	if db == nil {
		panic("appointments: db required")
	}
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, req *NewAppointment) (*Appointment, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	var notes *string
	if req.Notes != "" {
		notes = &req.Notes
	}
	id := uuid.New()
	appt := &Appointment{
		ID:             id.String(),
		ProfessionalID: req.ProfessionalID,
		ServiceID:      req.ServiceID,
		ServiceName:    req.ServiceName,
		Date:           req.Date,
		Time:           req.Time,
		ClientName:     req.ClientName,
		ClientPhone:    req.ClientPhone,
		Price:          req.Price,
		Status:         StatusScheduled,
		Notes:          notes,
	}
	if err := r.db.QueryRow(ctx, `
		INSERT INTO appointments (id, professional_id, service_id, appointment_date, appointment_time,
			client_name, client_phone, price, status, notes)
		VALUES ($1, $2, $3, $4::date, $5::time, $6, $7, $8, $9, $10)
		RETURNING created_at, updated_at
	`,
		id,
		req.ProfessionalID,
		req.ServiceID,
		req.Date,
		req.Time,
		req.ClientName,
		req.ClientPhone,
		req.Price,
		string(StatusScheduled),
		notes,
	).Scan(&appt.CreatedAt, &appt.UpdatedAt); err != nil {
		return nil, fmt.Errorf("appointments: insert failed: %w", err)
	}
	return appt, nil
}

func (r *PostgresRepository) List(ctx context.Context, professionalID string) ([]*Appointment, error) {
	rows, err := r.db.Query(ctx, selectAppointments+`
		WHERE a.professional_id = $1
		ORDER BY a.appointment_date ASC, a.appointment_time ASC
	`, professionalID)
	if err != nil {
		return nil, fmt.Errorf("appointments: list failed: %w", err)
	}
	defer rows.Close()

	out := make([]*Appointment, 0)
	for rows.Next() {
		appt, err := scanAppointment(rows)
		if err != nil {
			return nil, fmt.Errorf("appointments: scan failed: %w", err)
		}
		out = append(out, appt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("appointments: list failed: %w", err)
	}
	return out, nil
}

func (r *PostgresRepository) GetForProfessional(ctx context.Context, professionalID, id string) (*Appointment, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrAppointmentNotFound
	}
	return r.getOne(ctx, selectAppointments+`WHERE a.id = $1 AND a.professional_id = $2`, id, professionalID)
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (*Appointment, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrAppointmentNotFound
	}
	return r.getOne(ctx, selectAppointments+`WHERE a.id = $1`, id)
}

func (r *PostgresRepository) getOne(ctx context.Context, sql string, args ...any) (*Appointment, error) {
	appt, err := scanAppointment(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAppointmentNotFound
		}
		return nil, fmt.Errorf("appointments: select failed: %w", err)
	}
	return appt, nil
}

func (r *PostgresRepository) UpdateStatus(ctx context.Context, professionalID, id string, status Status) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrAppointmentNotFound
	}
	tag, err := r.db.Exec(ctx, `
		UPDATE appointments
		SET status = $3, updated_at = NOW()
		WHERE id = $1 AND professional_id = $2
	`, id, professionalID, string(status))
	if err != nil {
		return fmt.Errorf("appointments: update status failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrAppointmentNotFound
	}
	return nil
}

func (r *PostgresRepository) ListBooked(ctx context.Context, professionalID string) ([]availability.BookedSlot, error) {
	rows, err := r.db.Query(ctx, `
		SELECT appointment_date::text, appointment_time::text
		FROM appointments
		WHERE professional_id = $1 AND status = $2
	`, professionalID, string(StatusScheduled))
	if err != nil {
		return nil, fmt.Errorf("appointments: list booked failed: %w", err)
	}
	defer rows.Close()

	out := make([]availability.BookedSlot, 0)
	for rows.Next() {
		var slot availability.BookedSlot
		if err := rows.Scan(&slot.Date, &slot.Time); err != nil {
			return nil, fmt.Errorf("appointments: scan booked failed: %w", err)
		}
		out = append(out, slot)
	}
	return out, rows.Err()
}

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var (
		appt   Appointment
		status string
	)
	if err := row.Scan(
		&appt.ID,
		&appt.ProfessionalID,
		&appt.ServiceID,
		&appt.ServiceName,
		&appt.Date,
		&appt.Time,
		&appt.ClientName,
		&appt.ClientPhone,
		&appt.Price,
		&status,
		&appt.Notes,
		&appt.CreatedAt,
		&appt.UpdatedAt,
	); err != nil {
		return nil, err
	}
	parsed, err := ParseStatus(status)
	if err != nil {
		return nil, err
	}
	appt.Status = parsed
	return &appt, nil
}
