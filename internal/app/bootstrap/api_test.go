package bootstrap

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/webhook"

	"github.com/wolfman30/schedulepay/internal/appointments"
	"github.com/wolfman30/schedulepay/internal/auth"
	"github.com/wolfman30/schedulepay/internal/availability"
	appconfig "github.com/wolfman30/schedulepay/internal/config"
	"github.com/wolfman30/schedulepay/internal/observability/metrics"
	"github.com/wolfman30/schedulepay/internal/payments"
	"github.com/wolfman30/schedulepay/internal/professionals"
	"github.com/wolfman30/schedulepay/pkg/logging"
)

const (
	testJWTSecret     = "jwt-secret"
	testWebhookSecret = "whsec_test"
)

func testConfig() *appconfig.Config {
	return &appconfig.Config{
		PublicBaseURL:        "http://localhost:5173",
		AuthJWTSecret:        testJWTSecret,
		StripeWebhookSecret:  testWebhookSecret,
		StripeDryRun:         true,
		StripeCurrency:       "brl",
		BillingReturnURL:     "http://localhost:5173/dashboard",
		BookingTimezone:      "UTC",
		PublicRateLimit:      100,
		PublicRateWindow:     time.Minute,
		SubscriptionCacheTTL: time.Minute,
	}
}

func call(t *testing.T, h http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func signedEvent(t *testing.T, eventID, eventType string, object any) *http.Request {
	t.Helper()
	raw, err := json.Marshal(map[string]any{
		"id":          eventID,
		"object":      "event",
		"type":        eventType,
		"api_version": stripe.APIVersion,
		"created":     time.Now().Unix(),
		"data":        map[string]any{"object": object},
	})
	require.NoError(t, err)
	now := time.Now()
	sig := hex.EncodeToString(webhook.ComputeSignature(now, raw, testWebhookSecret))
	req := httptest.NewRequest(http.MethodPost, "/webhooks/stripe", bytes.NewReader(raw))
	req.Header.Set("Stripe-Signature", fmt.Sprintf("t=%d,v1=%s", now.Unix(), sig))
	return req
}

func TestNewAPI_BookPayAndConfirm(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := testConfig()
	cfg.RedisAddr = mr.Addr()
	logger := logging.New("error")

	rdb := BuildRedisClient(context.Background(), cfg, logger, true)
	require.NotNil(t, rdb)
	t.Cleanup(func() { _ = rdb.Close() })

	stores := BuildStores(nil)
	api := NewAPI(cfg, Deps{Stores: stores, Redis: rdb, Gateway: BuildGateway(cfg, logger)}, logger)

	token, err := auth.NewVerifier(testJWTSecret, nil).Sign("pro-1", "ana@example.com", time.Hour)
	require.NoError(t, err)

	rec := call(t, api, http.MethodPut, "/profile", token, map[string]string{"full_name": "Ana Souza"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var profile professionals.Profile
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&profile))

	rec = call(t, api, http.MethodPost, "/services", token, map[string]any{"name": "Escova", "duration_minutes": 30, "price": 45.9})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var svc struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&svc))

	day := time.Now().UTC().AddDate(0, 0, 3)
	rec = call(t, api, http.MethodPost, "/availability", token, map[string]any{
		"day_of_week": int(day.Weekday()),
		"start_time":  "14:00",
		"end_time":    "15:00",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = call(t, api, http.MethodPost, "/public/"+profile.PublicLink+"/appointments", "", map[string]string{
		"service_id":       svc.ID,
		"appointment_date": day.Format(availability.DateLayout),
		"appointment_time": "14:30",
		"client_name":      "Bia",
		"client_phone":     "11988887777",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var confirmation struct {
		Appointment appointments.Appointment `json:"appointment"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&confirmation))
	apptID := confirmation.Appointment.ID

	rec = call(t, api, http.MethodPost, "/public/payments/checkout", "", map[string]string{
		"appointment_id": apptID,
		"email":          "bia@example.com",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "checkout.stripe.com/dry-run")

	req := signedEvent(t, "evt_paid_1", "checkout.session.completed", map[string]any{
		"id":             "cs_test_1",
		"object":         "checkout.session",
		"mode":           "payment",
		"payment_status": "paid",
		"metadata":       map[string]string{"appointment_id": apptID, "professional_id": "pro-1"},
	})
	rec = httptest.NewRecorder()
	api.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	appt, err := stores.Appointments.Get(context.Background(), apptID)
	require.NoError(t, err)
	assert.Equal(t, appointments.StatusConfirmed, appt.Status)

	processed, err := stores.Ledger.AlreadyProcessed(context.Background(), "stripe", "evt_paid_1")
	require.NoError(t, err)
	assert.True(t, processed)

	rec = call(t, api, http.MethodPost, "/billing/check-subscription", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"subscribed":false,"product_id":null,"subscription_end":null}`, rec.Body.String())

	rec = call(t, api, http.MethodGet, "/metrics/booking", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var snap metrics.Snapshot
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&snap))
	assert.Equal(t, 1.0, snap.AppointmentsCreated)
	assert.Equal(t, 1.0, snap.CheckoutSessions["appointment"])
	assert.Equal(t, 1.0, snap.WebhookEvents["processed"])
}

func TestNewAPI_WithoutAuthSecret(t *testing.T) {
	cfg := testConfig()
	cfg.AuthJWTSecret = ""
	api := NewAPI(cfg, Deps{Stores: BuildStores(nil), Gateway: BuildGateway(cfg, nil)}, nil)

	assert.Equal(t, http.StatusOK, call(t, api, http.MethodGet, "/health", "", nil).Code)
	assert.Equal(t, http.StatusNotFound, call(t, api, http.MethodGet, "/services", "", nil).Code)
}

func TestBuildRedisClientDisabledOrUnreachable(t *testing.T) {
	assert.Nil(t, BuildRedisClient(context.Background(), &appconfig.Config{}, nil, true))

	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()
	assert.Nil(t, BuildRedisClient(context.Background(), &appconfig.Config{RedisAddr: addr}, nil, true))
}

func TestConnectPostgresEmptyURL(t *testing.T) {
	pool, err := ConnectPostgres(context.Background(), "", nil)
	assert.NoError(t, err)
	assert.Nil(t, pool)

	_, err = ConnectPostgres(context.Background(), "://bad", nil)
	assert.Error(t, err)
}

func TestBuildGateway(t *testing.T) {
	cfg := testConfig()
	logger := logging.New("error")
	assert.IsType(t, &payments.DryRunGateway{}, BuildGateway(cfg, logger))

	cfg.StripeDryRun = false
	assert.IsType(t, &payments.DryRunGateway{}, BuildGateway(cfg, logger), "no key still dry-runs")

	cfg.StripeSecretKey = "sk_test_123"
	assert.IsType(t, &payments.StripeGateway{}, BuildGateway(cfg, logger))
}

func TestBuildGatewayNilLogger(t *testing.T) {
	cfg := testConfig()
	require.NotPanics(t, func() {
		assert.IsType(t, &payments.DryRunGateway{}, BuildGateway(cfg, nil))
	})

	cfg.StripeDryRun = false
	cfg.StripeSecretKey = "sk_test_123"
	require.NotPanics(t, func() {
		assert.IsType(t, &payments.StripeGateway{}, BuildGateway(cfg, nil))
	})
}
