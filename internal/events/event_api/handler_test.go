package event_api

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
	"ms-scheduler/internal/auth"
	"ms-scheduler/internal/logger"
	"ms-scheduler/internal/models"
	"ms-scheduler/internal/sse"
	"ms-scheduler/internal/utils"
)

type MockEventService struct {
	mock.Mock
}

func (m *MockEventService) CreateEvent(ctx context.Context, req models.CreateEventRequest) (*models.EventResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.EventResponse), args.Error(1)
}

func (m *MockEventService) UpdateEvent(ctx context.Context, eventID string, req models.UpdateEventRequest) (*models.EventResponse, error) {
	args := m.Called(ctx, eventID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.EventResponse), args.Error(1)
}

func (m *MockEventService) GetEvent(ctx context.Context, id, displayZone string) (*models.EventResponse, error) {
	args := m.Called(ctx, id, displayZone)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.EventResponse), args.Error(1)
}

func (m *MockEventService) ListEventsForProfile(ctx context.Context, profileID, displayZone string) ([]models.EventResponse, error) {
	args := m.Called(ctx, profileID, displayZone)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.EventResponse), args.Error(1)
}

func (m *MockEventService) ListLogsForEvent(ctx context.Context, eventID, displayZone string) ([]models.EventLogResponse, error) {
	args := m.Called(ctx, eventID, displayZone)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.EventLogResponse), args.Error(1)
}

func setupRouter(svc *MockEventService) *chi.Mux {
	log := logger.NewWriterLogger(io.Discard)
	h := NewHandler(svc, NewSSEHandler(log, sse.NewEventChangeEmitter()), log)

	r := chi.NewRouter()
	r.Use(auth.Middleware())
	r.Route("/api", h.Routes)
	return r
}

func do(r http.Handler, method, path string, body interface{}, header map[string]string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) utils.APIResponse {
	var resp utils.APIResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func TestCreateEventHandler(t *testing.T) {
	svc := new(MockEventService)
	req := models.CreateEventRequest{ProfileIDs: []string{"alice"}, Timezone: "UTC", StartDateTime: "2030-01-15T09:00", EndDateTime: "2030-01-15T10:00"}
	svc.On("CreateEvent", mock.Anything, req).Return(&models.EventResponse{ID: "e1"}, nil)

	rec := do(setupRouter(svc), http.MethodPost, "/api/events", req, nil)
	assert.Equal(t, http.StatusCreated, rec.Code)

	var resp models.EventResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "e1", resp.ID)
}

func TestCreateEventHandler_BadBody(t *testing.T) {
	svc := new(MockEventService)
	r := setupRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/events", bytes.NewBufferString("{nope"))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeError(t, rec)
	assert.False(t, resp.Success)
	assert.Equal(t, "Invalid request body", resp.Message)
	svc.AssertNotCalled(t, "CreateEvent", mock.Anything, mock.Anything)
}

func TestErrorStatusMapping(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{apperrors.New(apperrors.BadRequest, "Valid timezone is required"), http.StatusBadRequest},
		{apperrors.New(apperrors.NotFound, "Event not found"), http.StatusNotFound},
		{apperrors.Wrap(apperrors.Forbidden, "You are not authorized to edit this event", apperrors.ErrUnauthorized), http.StatusForbidden},
		{apperrors.New(apperrors.Conflict, "taken"), http.StatusConflict},
		{io.ErrUnexpectedEOF, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		svc := new(MockEventService)
		svc.On("GetEvent", mock.Anything, "e1", "").Return(nil, tc.err)

		rec := do(setupRouter(svc), http.MethodGet, "/api/events/e1", nil, nil)
		assert.Equal(t, tc.code, rec.Code, tc.err.Error())
		resp := decodeError(t, rec)
		assert.False(t, resp.Success)
		if tc.code == http.StatusInternalServerError {
			assert.Equal(t, "Server error", resp.Message)
		} else {
			assert.Equal(t, apperrors.MessageOf(tc.err), resp.Message)
		}
	}
}

func TestUpdateEventHandler_BodyProfileWins(t *testing.T) {
	svc := new(MockEventService)
	svc.On("UpdateEvent", mock.Anything, "e1", models.UpdateEventRequest{ProfileID: "bob", Timezone: "UTC"}).
		Return(&models.EventResponse{ID: "e1"}, nil)

	rec := do(setupRouter(svc), http.MethodPut, "/api/events/e1",
		map[string]string{"profileId": "bob", "timezone": "UTC"},
		map[string]string{auth.ProfileHeader: "alice"})
	assert.Equal(t, http.StatusOK, rec.Code)
	svc.AssertExpectations(t)
}

func TestUpdateEventHandler_HeaderFallback(t *testing.T) {
	svc := new(MockEventService)
	svc.On("UpdateEvent", mock.Anything, "e1", models.UpdateEventRequest{ProfileID: "alice", Timezone: "UTC"}).
		Return(&models.EventResponse{ID: "e1"}, nil)

	rec := do(setupRouter(svc), http.MethodPut, "/api/events/e1",
		map[string]string{"timezone": "UTC"},
		map[string]string{auth.ProfileHeader: "alice"})
	assert.Equal(t, http.StatusOK, rec.Code)
	svc.AssertExpectations(t)
}

func TestListEventsHandler(t *testing.T) {
	svc := new(MockEventService)
	svc.On("ListEventsForProfile", mock.Anything, "alice", "Asia/Tokyo").Return([]models.EventResponse{{ID: "e1"}, {ID: "e2"}}, nil)

	rec := do(setupRouter(svc), http.MethodGet, "/api/events?profileId=alice&timezone=Asia/Tokyo", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	var list []models.EventResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&list))
	assert.Len(t, list, 2)
}

func TestExportCalendarHandler(t *testing.T) {
	svc := new(MockEventService)
	svc.On("ListEventsForProfile", mock.Anything, "alice", "").Return([]models.EventResponse{
		{ID: "e1", ProfileIDs: []models.ProfileRef{{ID: "alice", Name: "Alice"}}},
	}, nil)

	rec := do(setupRouter(svc), http.MethodGet, "/api/events/calendar.ics", nil, map[string]string{auth.ProfileHeader: "alice"})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/calendar")
	assert.Contains(t, rec.Body.String(), "UID:e1@ms-scheduler")
	assert.Contains(t, rec.Body.String(), "SUMMARY:Event with Alice")
	svc.AssertNotCalled(t, "GetEvent", mock.Anything, mock.Anything, mock.Anything)
}

func TestExportCalendarHandler_MissingProfile(t *testing.T) {
	svc := new(MockEventService)
	svc.On("ListEventsForProfile", mock.Anything, "", "").
		Return(nil, apperrors.New(apperrors.BadRequest, "Profile ID is required"))

	rec := do(setupRouter(svc), http.MethodGet, "/api/events/calendar.ics", nil, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListLogsHandler(t *testing.T) {
	svc := new(MockEventService)
	svc.On("ListLogsForEvent", mock.Anything, "e1", "").Return([]models.EventLogResponse{
		{ID: "l1", Action: models.ActionCreated, Display: models.LogDisplay{Message: "Event created"}},
	}, nil)

	rec := do(setupRouter(svc), http.MethodGet, "/api/logs/event/e1", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	var logs []models.EventLogResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&logs))
	require.Len(t, logs, 1)
	assert.Equal(t, "Event created", logs[0].Display.Message)
}

func TestStreamRequiresProfile(t *testing.T) {
	rec := do(setupRouter(new(MockEventService)), http.MethodGet, "/api/events/stream", nil, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
