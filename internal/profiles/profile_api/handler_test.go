package profile_api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"ms-scheduler/internal/apperrors"
	"ms-scheduler/internal/logger"
	"ms-scheduler/internal/models"
	"ms-scheduler/internal/timezone"
	"ms-scheduler/internal/utils"
)

type MockProfileService struct {
	mock.Mock
}

func (m *MockProfileService) ListProfiles(ctx context.Context) ([]models.Profile, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Profile), args.Error(1)
}

func (m *MockProfileService) CreateProfile(ctx context.Context, req models.CreateProfileRequest) (*models.Profile, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Profile), args.Error(1)
}

func (m *MockProfileService) UpdateTimezone(ctx context.Context, id string, req models.UpdateProfileRequest) (*models.Profile, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Profile), args.Error(1)
}

func setupRouter(svc *MockProfileService) *chi.Mux {
	r := chi.NewRouter()
	r.Route("/api", NewHandler(svc, logger.NewWriterLogger(io.Discard)).Routes)
	return r
}

func send(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestListTimezones(t *testing.T) {
	rec := send(setupRouter(new(MockProfileService)), http.MethodGet, "/api/timezones", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	var zones []timezone.Zone
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&zones))
	assert.Equal(t, timezone.Known(), zones)
}

func TestListProfiles(t *testing.T) {
	svc := new(MockProfileService)
	svc.On("ListProfiles", mock.Anything).Return([]models.Profile{{ID: "p1", Name: "Alice", Timezone: "UTC"}}, nil)

	rec := send(setupRouter(svc), http.MethodGet, "/api/profiles", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	var list []map[string]interface{}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&list))
	require.Len(t, list, 1)
	assert.Equal(t, "p1", list[0]["_id"])
	assert.Equal(t, "Alice", list[0]["name"])
}

func TestCreateProfile(t *testing.T) {
	svc := new(MockProfileService)
	svc.On("CreateProfile", mock.Anything, models.CreateProfileRequest{Name: "Alice", Timezone: "Asia/Kolkata"}).
		Return(&models.Profile{ID: "p1", Name: "Alice", Timezone: "Asia/Kolkata"}, nil)

	rec := send(setupRouter(svc), http.MethodPost, "/api/profiles", `{"name":"Alice","timezone":"Asia/Kolkata"}`)
	assert.Equal(t, http.StatusCreated, rec.Code)
	svc.AssertExpectations(t)
}

func TestCreateProfile_Conflict(t *testing.T) {
	svc := new(MockProfileService)
	svc.On("CreateProfile", mock.Anything, mock.Anything).
		Return(nil, apperrors.Wrap(apperrors.Conflict, "Profile with this name already exists", apperrors.ErrDuplicateName))

	rec := send(setupRouter(svc), http.MethodPost, "/api/profiles", `{"name":"Alice"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	var resp utils.APIResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.False(t, resp.Success)
	assert.Equal(t, "Profile with this name already exists", resp.Message)
}

func TestUpdateProfile(t *testing.T) {
	svc := new(MockProfileService)
	svc.On("UpdateTimezone", mock.Anything, "p1", models.UpdateProfileRequest{Timezone: "Europe/Paris"}).
		Return(&models.Profile{ID: "p1", Timezone: "Europe/Paris"}, nil)
	svc.On("UpdateTimezone", mock.Anything, "ghost", mock.Anything).
		Return(nil, apperrors.Wrap(apperrors.NotFound, "Profile not found", apperrors.ErrNotFound))
	r := setupRouter(svc)

	rec := send(r, http.MethodPut, "/api/profiles/p1", `{"timezone":"Europe/Paris"}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = send(r, http.MethodPut, "/api/profiles/ghost", `{"timezone":"Europe/Paris"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = send(r, http.MethodPut, "/api/profiles/p1", `not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
