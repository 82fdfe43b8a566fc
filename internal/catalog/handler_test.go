package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/schedulepay/internal/tenancy"
	"github.com/wolfman30/schedulepay/pkg/logging"
)

func newTestRouter(h *Handler, professionalID string) http.Handler {
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if professionalID != "" {
				req = req.WithContext(tenancy.WithProfessionalID(req.Context(), professionalID))
			}
			next.ServeHTTP(w, req)
		})
	})
	r.Route("/services", h.Routes)
	return r
}

func TestHandler_CreateAndList(t *testing.T) {
	repo := NewInMemoryRepository()
	router := newTestRouter(NewHandler(repo, logging.Default()), "pro-1")

	req := httptest.NewRequest(http.MethodPost, "/services", strings.NewReader(`{"name":"Manicure","duration_minutes":45,"price":35.5}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created Service
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&created))
	assert.Equal(t, "pro-1", created.ProfessionalID)
	assert.Equal(t, 45, created.DurationMinutes)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/services", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Services []Service `json:"services"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp.Services, 1)
	assert.Equal(t, "Manicure", resp.Services[0].Name)
}

func TestHandler_CreateRejectsNonNumericDuration(t *testing.T) {
	router := newTestRouter(NewHandler(NewInMemoryRepository(), logging.Default()), "pro-1")

	req := httptest.NewRequest(http.MethodPost, "/services", strings.NewReader(`{"name":"Corte","duration_minutes":"abc","price":10}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_CreateValidationError(t *testing.T) {
	router := newTestRouter(NewHandler(NewInMemoryRepository(), logging.Default()), "pro-1")

	req := httptest.NewRequest(http.MethodPost, "/services", strings.NewReader(`{"name":"Corte","duration_minutes":0,"price":10}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), ErrInvalidDuration.Error())
}

func TestHandler_UpdateAndDeleteOtherProfessional(t *testing.T) {
	repo := NewInMemoryRepository()
	svc, err := repo.Create(context.Background(), &CreateServiceRequest{ProfessionalID: "pro-1", Name: "Corte", DurationMinutes: 30, Price: 50})
	require.NoError(t, err)

	intruder := newTestRouter(NewHandler(repo, logging.Default()), "pro-2")
	rec := httptest.NewRecorder()
	intruder.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/services/"+svc.ID, nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	owner := newTestRouter(NewHandler(repo, logging.Default()), "pro-1")
	rec = httptest.NewRecorder()
	owner.ServeHTTP(rec, httptest.NewRequest(http.MethodPatch, "/services/"+svc.ID, strings.NewReader(`{"price":60}`)))
	require.Equal(t, http.StatusOK, rec.Code)
	var updated Service
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&updated))
	assert.Equal(t, 60.0, updated.Price)

	rec = httptest.NewRecorder()
	owner.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/services/"+svc.ID, nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestHandler_MissingProfessional(t *testing.T) {
	router := newTestRouter(NewHandler(NewInMemoryRepository(), logging.Default()), "")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/services", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

type failingRepository struct{ *InMemoryRepository }

func (*failingRepository) List(context.Context, string) ([]*Service, error) {
	return nil, errors.New("connection refused")
}

func TestHandler_ListSurfacesStorageError(t *testing.T) {
	router := newTestRouter(NewHandler(&failingRepository{NewInMemoryRepository()}, logging.Default()), "pro-1")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/services", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "connection refused")
}
