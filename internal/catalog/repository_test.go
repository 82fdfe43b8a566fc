package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryRepository_ListOrderedByNameAndScoped(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryRepository()

	for _, name := range []string{"Pedicure", "Corte", "Manicure"} {
		_, err := repo.Create(ctx, &CreateServiceRequest{ProfessionalID: "pro-a", Name: name, DurationMinutes: 30, Price: 40})
		require.NoError(t, err)
	}
	_, err := repo.Create(ctx, &CreateServiceRequest{ProfessionalID: "pro-b", Name: "Barba", DurationMinutes: 20, Price: 25})
	require.NoError(t, err)

	services, err := repo.List(ctx, "pro-a")
	require.NoError(t, err)
	require.Len(t, services, 3)
	assert.Equal(t, "Corte", services[0].Name)
	assert.Equal(t, "Manicure", services[1].Name)
	assert.Equal(t, "Pedicure", services[2].Name)

	other, err := repo.List(ctx, "pro-b")
	require.NoError(t, err)
	require.Len(t, other, 1)
	assert.Equal(t, "Barba", other[0].Name)
}

func TestInMemoryRepository_CreateValidation(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	tests := []struct {
		name string
		req  CreateServiceRequest
		want error
	}{
		{"missing professional", CreateServiceRequest{Name: "Corte", DurationMinutes: 30}, ErrMissingProfessional},
		{"blank name", CreateServiceRequest{ProfessionalID: "p", Name: "   ", DurationMinutes: 30}, ErrInvalidName},
		{"zero duration", CreateServiceRequest{ProfessionalID: "p", Name: "Corte"}, ErrInvalidDuration},
		{"negative price", CreateServiceRequest{ProfessionalID: "p", Name: "Corte", DurationMinutes: 30, Price: -1}, ErrInvalidPrice},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := repo.Create(ctx, &tt.req)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	svc, err := repo.Create(ctx, &CreateServiceRequest{ProfessionalID: "p", Name: "  Corte  ", DurationMinutes: 30, Price: 0})
	require.NoError(t, err)
	assert.Equal(t, "Corte", svc.Name)
}

func TestInMemoryRepository_UpdateAndDeleteAreScoped(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryRepository()
	svc, err := repo.Create(ctx, &CreateServiceRequest{ProfessionalID: "pro-a", Name: "Corte", DurationMinutes: 30, Price: 50})
	require.NoError(t, err)

	price := 65.0
	_, err = repo.Update(ctx, "pro-b", svc.ID, &UpdateServiceRequest{Price: &price})
	assert.ErrorIs(t, err, ErrServiceNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, "pro-b", svc.ID), ErrServiceNotFound)

	updated, err := repo.Update(ctx, "pro-a", svc.ID, &UpdateServiceRequest{Price: &price})
	require.NoError(t, err)
	assert.Equal(t, 65.0, updated.Price)
	assert.Equal(t, "Corte", updated.Name)
	assert.Equal(t, 30, updated.DurationMinutes)

	zero := 0
	_, err = repo.Update(ctx, "pro-a", svc.ID, &UpdateServiceRequest{DurationMinutes: &zero})
	assert.ErrorIs(t, err, ErrInvalidDuration)

	require.NoError(t, repo.Delete(ctx, "pro-a", svc.ID))
	_, err = repo.Get(ctx, "pro-a", svc.ID)
	assert.ErrorIs(t, err, ErrServiceNotFound)
}

func TestPostgresRepository_List(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	created := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`SELECT id, professional_id, name, duration_minutes, price, created_at\s+FROM services\s+WHERE professional_id = \$1\s+ORDER BY name ASC`).
		WithArgs("pro-1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "professional_id", "name", "duration_minutes", "price", "created_at"}).
			AddRow("svc-1", "pro-1", "Corte", 30, 50.0, created).
			AddRow("svc-2", "pro-1", "Manicure", 45, 35.5, created))

	repo := newPostgresRepositoryWithDB(mock)
	services, err := repo.List(context.Background(), "pro-1")
	require.NoError(t, err)
	require.Len(t, services, 2)
	assert.Equal(t, "Corte", services[0].Name)
	assert.Equal(t, 35.5, services[1].Price)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_CreateAndUpdate(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := newPostgresRepositoryWithDB(mock)
	created := time.Now().UTC()
	cols := []string{"id", "professional_id", "name", "duration_minutes", "price", "created_at"}

	mock.ExpectQuery("INSERT INTO services").
		WithArgs(pgxmock.AnyArg(), "pro-1", "Corte", 30, 50.0).
		WillReturnRows(pgxmock.NewRows(cols).AddRow("5f0c6d5e-4b43-4c09-9b5e-0d2a3e1f7a10", "pro-1", "Corte", 30, 50.0, created))

	svc, err := repo.Create(context.Background(), &CreateServiceRequest{ProfessionalID: "pro-1", Name: "Corte", DurationMinutes: 30, Price: 50})
	require.NoError(t, err)
	assert.Equal(t, "5f0c6d5e-4b43-4c09-9b5e-0d2a3e1f7a10", svc.ID)

	mock.ExpectQuery("UPDATE services").
		WithArgs(svc.ID, "pro-1", pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(pgx.ErrNoRows)
	name := "Corte masculino"
	_, err = repo.Update(context.Background(), "pro-1", svc.ID, &UpdateServiceRequest{Name: &name})
	assert.ErrorIs(t, err, ErrServiceNotFound)

	_, err = repo.Update(context.Background(), "pro-1", "not-a-uuid", &UpdateServiceRequest{Name: &name})
	assert.ErrorIs(t, err, ErrServiceNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_DeleteMissing(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	id := "5f0c6d5e-4b43-4c09-9b5e-0d2a3e1f7a10"
	mock.ExpectExec("DELETE FROM services").
		WithArgs(id, "pro-1").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	repo := newPostgresRepositoryWithDB(mock)
	assert.ErrorIs(t, repo.Delete(context.Background(), "pro-1", id), ErrServiceNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
