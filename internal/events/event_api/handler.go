package event_api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"ms-scheduler/internal/apperrors"
	"ms-scheduler/internal/auth"
	"ms-scheduler/internal/calendar"
	"ms-scheduler/internal/logger"
	"ms-scheduler/internal/models"
	"ms-scheduler/internal/utils"
)

type EventService interface {
	CreateEvent(ctx context.Context, req models.CreateEventRequest) (*models.EventResponse, error)
	UpdateEvent(ctx context.Context, eventID string, req models.UpdateEventRequest) (*models.EventResponse, error)
	GetEvent(ctx context.Context, id, displayZone string) (*models.EventResponse, error)
	ListEventsForProfile(ctx context.Context, profileID, displayZone string) ([]models.EventResponse, error)
	ListLogsForEvent(ctx context.Context, eventID, displayZone string) ([]models.EventLogResponse, error)
}

type Handler struct {
	EventService EventService
	Stream       *SSEHandler
	Logger       *logger.Logger
}

func NewHandler(eventService EventService, stream *SSEHandler, log *logger.Logger) *Handler {
	return &Handler{EventService: eventService, Stream: stream, Logger: log}
}

// Routes mounts the event and event log endpoints.
func (h *Handler) Routes(r chi.Router) {
	r.Route("/events", func(r chi.Router) {
		r.Get("/", h.ListEvents)
		r.Post("/", h.CreateEvent)
		if h.Stream != nil {
			r.Get("/stream", h.Stream.HandleProfileStream)
		}
		r.Get("/calendar.ics", h.ExportCalendar)
		r.Get("/{id}", h.GetEvent)
		r.Put("/{id}", h.UpdateEvent)
	})
	r.Get("/logs/event/{eventId}", h.ListLogs)
}

// ListEvents serves ?profileId=&timezone=; the caller header stands in for
// a missing profileId.
func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	profileID := r.URL.Query().Get("profileId")
	if profileID == "" {
		profileID = auth.ProfileID(r.Context())
	}

	events, err := h.EventService.ListEventsForProfile(r.Context(), profileID, r.URL.Query().Get("timezone"))
	if err != nil {
		h.Logger.Warn("API", fmt.Sprintf("ListEvents: %v", err))
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, events)
}

// ExportCalendar serves the same selection as ListEvents as text/calendar.
func (h *Handler) ExportCalendar(w http.ResponseWriter, r *http.Request) {
	profileID := r.URL.Query().Get("profileId")
	if profileID == "" {
		profileID = auth.ProfileID(r.Context())
	}

	events, err := h.EventService.ListEventsForProfile(r.Context(), profileID, r.URL.Query().Get("timezone"))
	if err != nil {
		h.Logger.Warn("API", fmt.Sprintf("ExportCalendar: %v", err))
		utils.WriteError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="events.ics"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(calendar.Export(events)))
}

func (h *Handler) GetEvent(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	event, err := h.EventService.GetEvent(r.Context(), id, r.URL.Query().Get("timezone"))
	if err != nil {
		h.Logger.Warn("API", fmt.Sprintf("GetEvent %s: %v", id, err))
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, event)
}

func (h *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req models.CreateEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, apperrors.Wrap(apperrors.BadRequest, "Invalid request body", err))
		return
	}

	event, err := h.EventService.CreateEvent(r.Context(), req)
	if err != nil {
		h.Logger.Warn("API", fmt.Sprintf("CreateEvent: %v", err))
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, event)
}

func (h *Handler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req models.UpdateEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, apperrors.Wrap(apperrors.BadRequest, "Invalid request body", err))
		return
	}
	if req.ProfileID == "" {
		req.ProfileID = auth.ProfileID(r.Context())
	}

	event, err := h.EventService.UpdateEvent(r.Context(), id, req)
	if err != nil {
		h.Logger.Warn("API", fmt.Sprintf("UpdateEvent %s: %v", id, err))
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, event)
}

func (h *Handler) ListLogs(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventId")

	logs, err := h.EventService.ListLogsForEvent(r.Context(), eventID, r.URL.Query().Get("timezone"))
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("ListLogs %s: %v", eventID, err))
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, logs)
}
