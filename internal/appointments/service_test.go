package appointments

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/schedulepay/internal/observability/metrics"
	"github.com/wolfman30/schedulepay/pkg/logging"
)

func newAppointment(pro, date, tm string) *NewAppointment {
	return &NewAppointment{
		ProfessionalID: pro,
		ServiceID:      "svc-1",
		Date:           date,
		Time:           tm,
		ClientName:     "Ana",
		ClientPhone:    "11999990000",
		Price:          50,
	}
}

func TestStatusTransitions(t *testing.T) {
	tests := []struct {
		from   Status
		to     Status
		expect bool
	}{
		{StatusScheduled, StatusConfirmed, true},
		{StatusScheduled, StatusCancelled, true},
		{StatusPendingPayment, StatusConfirmed, true},
		{StatusPendingPayment, StatusCancelled, true},
		{StatusConfirmed, StatusCancelled, false},
		{StatusConfirmed, StatusScheduled, false},
		{StatusCancelled, StatusConfirmed, false},
		{StatusCompleted, StatusCancelled, false},
		{StatusScheduled, StatusCompleted, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.expect, tt.from.CanTransitionTo(tt.to))
		})
	}

	assert.True(t, StatusConfirmed.Terminal())
	assert.True(t, StatusCancelled.Terminal())
	assert.False(t, StatusScheduled.Terminal())
	assert.True(t, StatusScheduled.Blocking())
	assert.False(t, StatusConfirmed.Blocking())
	assert.False(t, StatusPendingPayment.Blocking())
}

func TestParseStatus(t *testing.T) {
	st, err := ParseStatus(" Confirmed ")
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, st)

	_, err = ParseStatus("done")
	assert.ErrorIs(t, err, ErrUnknownStatus)
}

func TestService_CreateStoresScheduledWithSnapshot(t *testing.T) {
	ctx := context.Background()
	reg := prometheus.NewRegistry()
	m := metrics.NewBookingMetrics(reg)
	svc := NewService(NewInMemoryRepository(), m, logging.Default())

	appt, err := svc.Create(ctx, newAppointment("pro-1", "2025-03-10", "09:00"))
	require.NoError(t, err)
	assert.Equal(t, StatusScheduled, appt.Status)
	assert.Equal(t, "09:00:00", appt.Time)
	assert.Equal(t, 50.0, appt.Price)
	count, err := testutil.GatherAndCount(reg, "schedulepay_appointments_created_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	booked, err := svc.BookedSlots(ctx, "pro-1")
	require.NoError(t, err)
	require.Len(t, booked, 1)
	assert.Equal(t, "2025-03-10", booked[0].Date)
	assert.Equal(t, "09:00:00", booked[0].Time)
}

func TestService_CreateValidation(t *testing.T) {
	svc := NewService(NewInMemoryRepository(), nil, nil)
	req := newAppointment("pro-1", "2025-03-10", "09:00")
	req.ClientPhone = "  "
	_, err := svc.Create(context.Background(), req)
	assert.ErrorIs(t, err, ErrMissingFields)

	req = newAppointment("pro-1", "10/03/2025", "09:00")
	_, err = svc.Create(context.Background(), req)
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestService_TransitionLifecycle(t *testing.T) {
	ctx := context.Background()
	svc := NewService(NewInMemoryRepository(), nil, logging.Default())

	appt, err := svc.Create(ctx, newAppointment("pro-1", "2025-03-10", "09:00"))
	require.NoError(t, err)

	list, err := svc.Confirm(ctx, "pro-1", appt.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, StatusConfirmed, list[0].Status)

	// confirming twice changes nothing
	list, err = svc.Confirm(ctx, "pro-1", appt.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, list[0].Status)

	_, err = svc.Cancel(ctx, "pro-1", appt.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	booked, err := svc.BookedSlots(ctx, "pro-1")
	require.NoError(t, err)
	assert.Empty(t, booked)
}

func TestService_CancelFreesSlot(t *testing.T) {
	ctx := context.Background()
	svc := NewService(NewInMemoryRepository(), nil, nil)

	appt, err := svc.Create(ctx, newAppointment("pro-1", "2025-03-10", "10:00"))
	require.NoError(t, err)

	list, err := svc.Cancel(ctx, "pro-1", appt.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, list[0].Status)

	_, err = svc.Confirm(ctx, "pro-1", appt.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	booked, err := svc.BookedSlots(ctx, "pro-1")
	require.NoError(t, err)
	assert.Empty(t, booked)
}

func TestService_TransitionScopedToProfessional(t *testing.T) {
	ctx := context.Background()
	svc := NewService(NewInMemoryRepository(), nil, nil)

	appt, err := svc.Create(ctx, newAppointment("pro-1", "2025-03-10", "10:00"))
	require.NoError(t, err)

	_, err = svc.Confirm(ctx, "pro-2", appt.ID)
	assert.ErrorIs(t, err, ErrAppointmentNotFound)

	_, err = svc.Confirm(ctx, "pro-1", "missing")
	assert.ErrorIs(t, err, ErrAppointmentNotFound)
}

func TestService_ConfirmPaymentRequiresPendingPayment(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryRepository()
	svc := NewService(repo, nil, nil)

	appt, err := svc.Create(ctx, newAppointment("pro-1", "2025-03-10", "10:00"))
	require.NoError(t, err)

	_, err = svc.ConfirmPayment(ctx, "pro-1", appt.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	require.NoError(t, repo.UpdateStatus(ctx, "pro-1", appt.ID, StatusPendingPayment))
	list, err := svc.ConfirmPayment(ctx, "pro-1", appt.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, list[0].Status)

	_, err = svc.ConfirmPayment(ctx, "pro-1", appt.ID)
	assert.NoError(t, err)
}

func TestInMemoryRepository_ListOrder(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryRepository()
	for _, in := range []struct{ date, tm string }{
		{"2025-03-11", "08:00"},
		{"2025-03-10", "14:00"},
		{"2025-03-10", "09:30"},
	} {
		_, err := repo.Create(ctx, newAppointment("pro-1", in.date, in.tm))
		require.NoError(t, err)
	}
	_, err := repo.Create(ctx, newAppointment("pro-2", "2025-03-01", "08:00"))
	require.NoError(t, err)

	list, err := repo.List(ctx, "pro-1")
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "09:30:00", list[0].Time)
	assert.Equal(t, "14:00:00", list[1].Time)
	assert.Equal(t, "2025-03-11", list[2].Date)
}

func TestFilterByStatus(t *testing.T) {
	list := []*Appointment{
		{ID: "a", Status: StatusScheduled},
		{ID: "b", Status: StatusConfirmed},
		{ID: "c", Status: StatusScheduled},
	}
	assert.Len(t, FilterByStatus(list, nil), 3)

	st := StatusScheduled
	got := FilterByStatus(list, &st)
	require.Len(t, got, 2)
	assert.Equal(t, "c", got[1].ID)
}
