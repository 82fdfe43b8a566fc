package dashboard

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
)

// SQLSource aggregates directly in Postgres.
type SQLSource struct {
	db *sql.DB
}

func NewSQLSource(db *sql.DB) *SQLSource {
	if db == nil {
		panic("dashboard: db required")
	}
	return &SQLSource{db: db}
}

func (s *SQLSource) Summarize(ctx context.Context, professionalID string, w Window) (*Summary, error) {
	var sum Summary
	err := s.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*) FILTER (WHERE appointment_date = $2::date),
			COUNT(*) FILTER (WHERE appointment_date >= $3::date AND appointment_date < $4::date),
			COALESCE(SUM(price) FILTER (WHERE appointment_date >= $3::date AND appointment_date < $4::date AND status = ANY($5)), 0)::float8,
			COUNT(DISTINCT client_phone),
			COUNT(*) FILTER (WHERE status = ANY($6))
		FROM appointments
		WHERE professional_id = $1 AND status <> 'cancelled'
	`, professionalID, w.Today, w.MonthStart, w.MonthEnd,
		pq.Array(statusStrings(revenueStatuses)),
		pq.Array(statusStrings(pendingStatuses)),
	).Scan(&sum.TodayAppointments, &sum.MonthAppointments, &sum.MonthRevenue, &sum.TotalClients, &sum.PendingCount)
	if err != nil {
		return nil, fmt.Errorf("dashboard: counters: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT a.id, COALESCE(s.name, ''), a.appointment_date::text, a.appointment_time::text,
			a.client_name, a.price::float8, a.status
		FROM appointments a
		LEFT JOIN services s ON s.id = a.service_id
		WHERE a.professional_id = $1
		  AND a.status = ANY($2)
		  AND (a.appointment_date > $3::date OR (a.appointment_date = $3::date AND a.appointment_time >= $4::time))
		ORDER BY a.appointment_date ASC, a.appointment_time ASC
		LIMIT $5
	`, professionalID, pq.Array(statusStrings(upcomingStatuses)), w.Today, w.Now, w.Limit)
	if err != nil {
		return nil, fmt.Errorf("dashboard: upcoming: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var u Upcoming
		if err := rows.Scan(&u.ID, &u.ServiceName, &u.Date, &u.Time, &u.ClientName, &u.Price, &u.Status); err != nil {
			return nil, fmt.Errorf("dashboard: scan upcoming: %w", err)
		}
		sum.Upcoming = append(sum.Upcoming, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("dashboard: upcoming rows: %w", err)
	}
	return &sum, nil
}
