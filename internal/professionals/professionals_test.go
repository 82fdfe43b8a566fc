package professionals

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/schedulepay/internal/tenancy"
	"github.com/wolfman30/schedulepay/pkg/logging"
)

func TestSlugify(t *testing.T) {
	tests := map[string]string{
		"Salão da Ana":          "salao-da-ana",
		"  Barbearia  do Zé!! ": "barbearia-do-ze",
		"Studio 21":             "studio-21",
		"***":                   "",
	}
	for in, want := range tests {
		assert.Equal(t, want, Slugify(in), in)
	}
	assert.LessOrEqual(t, len(Slugify(strings.Repeat("a", 100))), maxSlugBase)
}

func TestNewPublicLink(t *testing.T) {
	link := NewPublicLink("", "Unhas da Bia")
	assert.Regexp(t, regexp.MustCompile(`^unhas-da-bia-[0-9a-f]{6}$`), link)
	assert.True(t, validSlug(link))

	assert.Regexp(t, regexp.MustCompile(`^agenda-[0-9a-f]{6}$`), NewPublicLink("!!"))
}

func TestInMemoryRepository_UpsertAndLookup(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryRepository()

	_, err := repo.Upsert(ctx, &UpsertProfileRequest{ProfessionalID: "pro-1"})
	assert.ErrorIs(t, err, ErrInvalidFullName)

	p, err := repo.Upsert(ctx, &UpsertProfileRequest{ProfessionalID: "pro-1", FullName: "Ana", BusinessName: "Salão da Ana", BusinessType: "manicure"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(p.PublicLink, "salao-da-ana-"))

	again, err := repo.Upsert(ctx, &UpsertProfileRequest{ProfessionalID: "pro-1", FullName: "Ana Souza"})
	require.NoError(t, err)
	assert.Equal(t, p.PublicLink, again.PublicLink)
	assert.Equal(t, "Ana Souza", again.FullName)

	found, err := repo.GetByPublicLink(ctx, strings.ToUpper(p.PublicLink))
	require.NoError(t, err)
	assert.Equal(t, "pro-1", found.ID)

	_, err = repo.Upsert(ctx, &UpsertProfileRequest{ProfessionalID: "pro-2", FullName: "Bia", PublicLink: p.PublicLink})
	assert.ErrorIs(t, err, ErrPublicLinkTaken)

	_, err = repo.GetByPublicLink(ctx, "nobody")
	assert.ErrorIs(t, err, ErrProfessionalNotFound)
}

func TestInMemoryRepository_PaymentKey(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryRepository()
	_, err := repo.Upsert(ctx, &UpsertProfileRequest{ProfessionalID: "pro-1", FullName: "Ana"})
	require.NoError(t, err)

	key, err := repo.GetPaymentKey(ctx, "pro-1")
	require.NoError(t, err)
	assert.Empty(t, key)

	require.NoError(t, repo.UpdatePaymentKey(ctx, "pro-1", " ana@pix.com "))
	key, err = repo.GetPaymentKey(ctx, "pro-1")
	require.NoError(t, err)
	assert.Equal(t, "ana@pix.com", key)

	assert.ErrorIs(t, repo.UpdatePaymentKey(ctx, "pro-9", "x"), ErrProfessionalNotFound)
}

func TestPostgresRepository_GetByPublicLink(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	now := time.Now().UTC()
	mock.ExpectQuery(`FROM professionals WHERE public_link = \$1`).
		WithArgs("salao-da-ana").
		WillReturnRows(pgxmock.NewRows([]string{"id", "full_name", "business_name", "business_type", "pix_key", "public_link", "created_at", "updated_at"}).
			AddRow("pro-1", "Ana", "Salão da Ana", "manicure", "", "salao-da-ana", now, now))
	mock.ExpectQuery(`FROM professionals WHERE public_link = \$1`).
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	repo := newPostgresRepositoryWithDB(mock)
	p, err := repo.GetByPublicLink(context.Background(), "Salao-da-Ana")
	require.NoError(t, err)
	assert.Equal(t, "manicure", p.BusinessType)

	_, err = repo.GetByPublicLink(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrProfessionalNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_UpsertLinkConflict(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`INSERT INTO professionals`).
		WithArgs("pro-2", "Bia", "", "", "taken", "taken").
		WillReturnError(&pgconn.PgError{Code: "23505"})

	repo := newPostgresRepositoryWithDB(mock)
	_, err = repo.Upsert(context.Background(), &UpsertProfileRequest{ProfessionalID: "pro-2", FullName: "Bia", PublicLink: "taken"})
	assert.ErrorIs(t, err, ErrPublicLinkTaken)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_PaymentKey(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec(`UPDATE professionals SET pix_key = NULLIF\(\$2, ''\)`).
		WithArgs("pro-1", "11999990000").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectQuery(`SELECT COALESCE\(pix_key, ''\) FROM professionals`).
		WithArgs("pro-1").
		WillReturnRows(pgxmock.NewRows([]string{"pix_key"}).AddRow("11999990000"))
	mock.ExpectExec(`UPDATE professionals`).
		WithArgs("pro-9", "").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	repo := newPostgresRepositoryWithDB(mock)
	require.NoError(t, repo.UpdatePaymentKey(context.Background(), "pro-1", "11999990000"))
	key, err := repo.GetPaymentKey(context.Background(), "pro-1")
	require.NoError(t, err)
	assert.Equal(t, "11999990000", key)
	assert.ErrorIs(t, repo.UpdatePaymentKey(context.Background(), "pro-9", ""), ErrProfessionalNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func newTestRouter(repo Repository, professionalID string) http.Handler {
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if professionalID != "" {
				req = req.WithContext(tenancy.WithProfessionalID(req.Context(), professionalID))
			}
			next.ServeHTTP(w, req)
		})
	})
	r.Group(NewHandler(repo, logging.Default()).Routes)
	return r
}

func TestHandler_ProfileAndPaymentKey(t *testing.T) {
	repo := NewInMemoryRepository()
	router := newTestRouter(repo, "pro-1")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/profile", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/profile", strings.NewReader(`{"full_name":"Ana","business_name":"Salão da Ana","business_type":"manicure"}`)))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var p Profile
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&p))
	assert.NotEmpty(t, p.PublicLink)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/settings/payment-key", strings.NewReader(`{"pix_key":"ana@pix.com"}`)))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"pix_key":"ana@pix.com"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/settings/payment-key", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"pix_key":"ana@pix.com"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/profile", strings.NewReader(`{"full_name":"Ana","public_link":"Bad Link"}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_RequiresProfessional(t *testing.T) {
	router := newTestRouter(NewInMemoryRepository(), "")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/settings/payment-key", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
