package events

import (
	"context"
	"fmt"
	"strings"

	"ms-scheduler/internal/apperrors"
	"ms-scheduler/internal/audit"
	"ms-scheduler/internal/clock"
	"ms-scheduler/internal/logger"
	"ms-scheduler/internal/models"
	"ms-scheduler/internal/timezone"
)

type EventDBLayer interface {
	GetEventByID(ctx context.Context, id string) (*models.Event, error)
	GetEventsByProfile(ctx context.Context, profileID string) ([]models.Event, error)
	CreateEventWithLog(ctx context.Context, event models.Event, entry models.EventLog) error
	UpdateEventWithLogs(ctx context.Context, event models.Event, entries []models.EventLog) error
	GetLogsByEvent(ctx context.Context, eventID string) ([]models.EventLog, error)
}

type ProfileLookup interface {
	GetProfile(ctx context.Context, id string) (*models.Profile, error)
	FindByIDs(ctx context.Context, ids []string) (map[string]models.Profile, error)
}

// Publisher forwards committed changes to the message bus.
type Publisher interface {
	Publish(ctx context.Context, change models.EventChange) error
}

// Notifier pushes committed changes to connected clients.
type Notifier interface {
	Notify(change models.EventChange)
}

type EventService struct {
	DB          EventDBLayer
	Profiles    ProfileLookup
	Clock       clock.Clock
	Publisher   Publisher
	Notifier    Notifier
	Logger      *logger.Logger
	DefaultZone string
}

func NewEventService(db EventDBLayer, profiles ProfileLookup, clk clock.Clock, log *logger.Logger) *EventService {
	if clk == nil {
		clk = clock.NewSystem()
	}
	return &EventService{
		DB:          db,
		Profiles:    profiles,
		Clock:       clk,
		Logger:      log,
		DefaultZone: timezone.DefaultZone,
	}
}

func (s *EventService) CreateEvent(ctx context.Context, req models.CreateEventRequest) (*models.EventResponse, error) {
	known, err := s.resolveProfiles(ctx, req.ProfileIDs)
	if err != nil {
		return nil, err
	}

	authorZone := ""
	if len(req.ProfileIDs) > 0 {
		authorZone = known[req.ProfileIDs[0]].Timezone
	}

	event, created, err := audit.NewEvent(req, authorZone, s.Clock.Now())
	if err != nil {
		return nil, err
	}

	if err := s.DB.CreateEventWithLog(ctx, event, created); err != nil {
		s.Logger.Error("EVENTS", fmt.Sprintf("Failed to store event: %v", err))
		return nil, fmt.Errorf("failed to create event: %w", err)
	}
	s.Logger.LogEvent("CREATE", event.ID, fmt.Sprintf("%d participants in %s", len(event.ProfileIDs), event.Timezone))
	s.Logger.LogAudit(event.ID, 1)

	s.announce(ctx, models.EventChange{
		Type:       models.ChangeCreated,
		EventID:    event.ID,
		ActorID:    created.ProfileID,
		ProfileIDs: event.ProfileIDs,
		At:         event.CreatedAt,
	})

	return s.buildResponse(event, known, event.Timezone)
}

// UpdateEvent applies the changes on behalf of req.ProfileID and writes the
// event and its log entries atomically.
func (s *EventService) UpdateEvent(ctx context.Context, eventID string, req models.UpdateEventRequest) (*models.EventResponse, error) {
	if strings.TrimSpace(req.ProfileID) == "" {
		return nil, apperrors.New(apperrors.BadRequest, "Profile ID is required")
	}

	event, err := s.DB.GetEventByID(ctx, eventID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindOf(err), "Event not found", err)
	}
	if !event.HasParticipant(req.ProfileID) {
		return nil, apperrors.Wrap(apperrors.Forbidden, "You are not authorized to edit this event", apperrors.ErrUnauthorized)
	}

	actor, err := s.Profiles.GetProfile(ctx, req.ProfileID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindOf(err), "Profile not found", err)
	}

	var known map[string]models.Profile
	if req.ProfileIDs != nil {
		if known, err = s.resolveProfiles(ctx, req.ProfileIDs); err != nil {
			return nil, err
		}
	}

	updated, entries, err := audit.ApplyChanges(*event, *actor, req, known, s.Clock.Now())
	if err != nil {
		return nil, err
	}

	if err := s.DB.UpdateEventWithLogs(ctx, updated, entries); err != nil {
		s.Logger.Error("EVENTS", fmt.Sprintf("Failed to store update of %s: %v", eventID, err))
		return nil, fmt.Errorf("failed to update event: %w", err)
	}
	s.Logger.LogEvent("UPDATE", eventID, fmt.Sprintf("by %s", actor.ID))
	s.Logger.LogAudit(eventID, len(entries))

	if len(entries) > 0 {
		fields := make([]string, 0, len(entries))
		for _, e := range entries {
			fields = append(fields, e.Field)
		}
		_, removed := audit.Participants(event.ProfileIDs, updated.ProfileIDs)
		s.announce(ctx, models.EventChange{
			Type:       models.ChangeUpdated,
			EventID:    eventID,
			ActorID:    actor.ID,
			ProfileIDs: updated.ProfileIDs,
			Removed:    removed,
			Fields:     fields,
			At:         updated.UpdatedAt,
		})
	}

	participants, err := s.Profiles.FindByIDs(ctx, updated.ProfileIDs)
	if err != nil {
		return nil, err
	}
	return s.buildResponse(updated, participants, actor.Timezone)
}

func (s *EventService) GetEvent(ctx context.Context, id, displayZone string) (*models.EventResponse, error) {
	event, err := s.DB.GetEventByID(ctx, id)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindOf(err), "Event not found", err)
	}
	participants, err := s.Profiles.FindByIDs(ctx, event.ProfileIDs)
	if err != nil {
		return nil, err
	}
	return s.buildResponse(*event, participants, s.zoneOrDefault(displayZone))
}

// ListEventsForProfile returns the events profileID takes part in, earliest
// start first, displayed in displayZone.
func (s *EventService) ListEventsForProfile(ctx context.Context, profileID, displayZone string) ([]models.EventResponse, error) {
	if strings.TrimSpace(profileID) == "" {
		return nil, apperrors.New(apperrors.BadRequest, "Profile ID is required")
	}
	zone := s.zoneOrDefault(displayZone)

	list, err := s.DB.GetEventsByProfile(ctx, profileID)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}

	var ids []string
	for _, e := range list {
		ids = append(ids, e.ProfileIDs...)
	}
	participants, err := s.Profiles.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]models.EventResponse, 0, len(list))
	for _, e := range list {
		resp, err := s.buildResponse(e, participants, zone)
		if err != nil {
			return nil, err
		}
		out = append(out, *resp)
	}
	return out, nil
}

// ListLogsForEvent returns the history of eventID, newest first. Entries are
// formatted in displayZone, or in the zone recorded on each entry when
// displayZone is empty.
func (s *EventService) ListLogsForEvent(ctx context.Context, eventID, displayZone string) ([]models.EventLogResponse, error) {
	entries, err := s.DB.GetLogsByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to list logs: %w", err)
	}

	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.ProfileID)
	}
	actors, err := s.Profiles.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]models.EventLogResponse, 0, len(entries))
	for _, e := range entries {
		zone := e.Timezone
		if timezone.IsValidTimezone(displayZone) {
			zone = displayZone
		}
		display, err := timezone.FormatForDisplay(e.Timestamp, zone)
		if err != nil {
			display, _ = timezone.FormatForDisplay(e.Timestamp, s.DefaultZone)
		}

		actor := actors[e.ProfileID]
		out = append(out, models.EventLogResponse{
			ID:           e.ID,
			EventID:      e.EventID,
			ProfileID:    models.ProfileRef{ID: e.ProfileID, Name: actor.Name},
			Action:       e.Action,
			Field:        e.Field,
			ValueKind:    e.ValueKind,
			OldValue:     e.OldValue,
			NewValue:     e.NewValue,
			ProfileNames: e.ProfileNames,
			Timestamp:    e.Timestamp,
			Timezone:     e.Timezone,
			Display: models.LogDisplay{
				Formatted: display.Full,
				Message:   audit.Message(e, actor.Name),
			},
		})
	}
	return out, nil
}

// resolveProfiles requires every id to name an existing profile.
func (s *EventService) resolveProfiles(ctx context.Context, ids []string) (map[string]models.Profile, error) {
	if len(ids) == 0 {
		return map[string]models.Profile{}, nil
	}
	found, err := s.Profiles.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load profiles: %w", err)
	}
	for _, id := range ids {
		if _, ok := found[id]; !ok {
			return nil, apperrors.Wrap(apperrors.BadRequest, "One or more profiles not found", apperrors.ErrNotFound)
		}
	}
	return found, nil
}

func (s *EventService) zoneOrDefault(zone string) string {
	if timezone.IsValidTimezone(zone) {
		return zone
	}
	if timezone.IsValidTimezone(s.DefaultZone) {
		return s.DefaultZone
	}
	return timezone.DefaultZone
}

// announce is best effort: the change is already committed.
func (s *EventService) announce(ctx context.Context, change models.EventChange) {
	if s.Publisher != nil {
		if err := s.Publisher.Publish(ctx, change); err != nil {
			s.Logger.Warn("KAFKA", fmt.Sprintf("Failed to publish %s change for %s: %v", change.Type, change.EventID, err))
		}
	}
	if s.Notifier != nil {
		s.Notifier.Notify(change)
	}
}

func (s *EventService) buildResponse(event models.Event, participants map[string]models.Profile, zone string) (*models.EventResponse, error) {
	start, err := timezone.FormatForDisplay(event.StartDateTime, zone)
	if err != nil {
		return nil, err
	}
	end, err := timezone.FormatForDisplay(event.EndDateTime, zone)
	if err != nil {
		return nil, err
	}
	created, err := timezone.FormatForDisplay(event.CreatedAt, zone)
	if err != nil {
		return nil, err
	}
	updated, err := timezone.FormatForDisplay(event.UpdatedAt, zone)
	if err != nil {
		return nil, err
	}

	refs := make([]models.ProfileRef, 0, len(event.ProfileIDs))
	for _, id := range event.ProfileIDs {
		p, ok := participants[id]
		if !ok {
			// profile deleted out from under the event
			refs = append(refs, models.ProfileRef{ID: id})
			continue
		}
		refs = append(refs, models.ProfileRef{ID: p.ID, Name: p.Name, Timezone: p.Timezone})
	}

	return &models.EventResponse{
		ID:            event.ID,
		ProfileIDs:    refs,
		Timezone:      event.Timezone,
		StartDateTime: event.StartDateTime,
		EndDateTime:   event.EndDateTime,
		CreatedAt:     event.CreatedAt,
		UpdatedAt:     event.UpdatedAt,
		Display: models.EventDisplay{
			Start:   start,
			End:     end,
			Created: created,
			Updated: updated,
		},
	}, nil
}
