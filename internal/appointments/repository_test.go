package appointments

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var appointmentColumns = []string{
	"id", "professional_id", "service_id", "name", "appointment_date", "appointment_time",
	"client_name", "client_phone", "price", "status", "notes", "created_at", "updated_at",
}

func TestPostgresRepository_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	now := time.Now().UTC()
	mock.ExpectQuery(`INSERT INTO appointments`).
		WithArgs(pgxmock.AnyArg(), "pro-1", "svc-1", "2025-03-10", "09:00:00", "Ana", "11999990000", 50.0, "scheduled", pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

	repo := newPostgresRepositoryWithDB(mock)
	appt, err := repo.Create(context.Background(), newAppointment("pro-1", "2025-03-10", "09:00"))
	require.NoError(t, err)
	assert.Equal(t, StatusScheduled, appt.Status)
	assert.Equal(t, now, appt.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_List(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	now := time.Now().UTC()
	notes := "primeira vez"
	mock.ExpectQuery(`FROM appointments a\s+LEFT JOIN services s ON s.id = a.service_id\s+WHERE a.professional_id = \$1\s+ORDER BY a.appointment_date ASC, a.appointment_time ASC`).
		WithArgs("pro-1").
		WillReturnRows(pgxmock.NewRows(appointmentColumns).
			AddRow("a-1", "pro-1", "svc-1", "Corte", "2025-03-10", "09:00:00", "Ana", "119", 40.0, "scheduled", (*string)(nil), now, now).
			AddRow("a-2", "pro-1", "svc-1", "Corte", "2025-03-10", "10:00:00", "Bia", "118", 40.0, "confirmed", &notes, now, now))

	repo := newPostgresRepositoryWithDB(mock)
	list, err := repo.List(context.Background(), "pro-1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Corte", list[0].ServiceName)
	assert.Nil(t, list[0].Notes)
	assert.Equal(t, StatusConfirmed, list[1].Status)
	require.NotNil(t, list[1].Notes)
	assert.Equal(t, notes, *list[1].Notes)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_GetNotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	id := "6f1f7d2e-1c0b-4f0e-9b1a-2f0c8e6d4a10"
	mock.ExpectQuery(`WHERE a.id = \$1 AND a.professional_id = \$2`).
		WithArgs(id, "pro-1").
		WillReturnError(pgx.ErrNoRows)

	repo := newPostgresRepositoryWithDB(mock)
	_, err = repo.GetForProfessional(context.Background(), "pro-1", id)
	assert.ErrorIs(t, err, ErrAppointmentNotFound)

	// malformed ids never reach the database
	_, err = repo.Get(context.Background(), "not-a-uuid")
	assert.ErrorIs(t, err, ErrAppointmentNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_UpdateStatus(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	id := "6f1f7d2e-1c0b-4f0e-9b1a-2f0c8e6d4a10"
	mock.ExpectExec(`UPDATE appointments\s+SET status = \$3, updated_at = NOW\(\)`).
		WithArgs(id, "pro-1", "confirmed").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(`UPDATE appointments`).
		WithArgs(id, "pro-2", "cancelled").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	repo := newPostgresRepositoryWithDB(mock)
	require.NoError(t, repo.UpdateStatus(context.Background(), "pro-1", id, StatusConfirmed))
	assert.ErrorIs(t, repo.UpdateStatus(context.Background(), "pro-2", id, StatusCancelled), ErrAppointmentNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_ListBookedOnlyScheduled(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`WHERE professional_id = \$1 AND status = \$2`).
		WithArgs("pro-1", "scheduled").
		WillReturnRows(pgxmock.NewRows([]string{"appointment_date", "appointment_time"}).
			AddRow("2025-03-10", "09:00:00"))

	repo := newPostgresRepositoryWithDB(mock)
	booked, err := repo.ListBooked(context.Background(), "pro-1")
	require.NoError(t, err)
	require.Len(t, booked, 1)
	assert.Equal(t, "09:00:00", booked[0].Time)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_ListError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`FROM appointments a`).WithArgs("pro-1").WillReturnError(errors.New("boom"))

	repo := newPostgresRepositoryWithDB(mock)
	_, err = repo.List(context.Background(), "pro-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "appointments: list failed")
}
