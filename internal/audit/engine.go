// Package audit computes event mutations and the audit entries that
// describe them. It performs no I/O: callers load the event and profiles,
// pass the current instant in and persist what comes back.
package audit

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"ms-scheduler/internal/apperrors"
	"ms-scheduler/internal/models"
	"ms-scheduler/internal/timezone"
)

// NewEvent validates a creation request and builds the event together with
// its single "created" entry. The entry is attributed to the first
// participant and displayed in authorZone, that participant's home zone.
func NewEvent(req models.CreateEventRequest, authorZone string, now time.Time) (models.Event, models.EventLog, error) {
	if len(req.ProfileIDs) == 0 {
		return models.Event{}, models.EventLog{}, apperrors.New(apperrors.BadRequest, "At least one profile is required")
	}
	loc, err := timezone.Load(req.Timezone)
	if err != nil {
		return models.Event{}, models.EventLog{}, apperrors.Wrap(apperrors.BadRequest, "Valid timezone is required", err)
	}
	zone := loc.String()
	if strings.TrimSpace(req.StartDateTime) == "" || strings.TrimSpace(req.EndDateTime) == "" {
		return models.Event{}, models.EventLog{}, apperrors.New(apperrors.BadRequest, "Start and end date/time are required")
	}

	start, err := timezone.ToAbsolute(req.StartDateTime, zone)
	if err != nil {
		return models.Event{}, models.EventLog{}, apperrors.Wrap(apperrors.BadRequest, "Invalid start date/time", err)
	}
	end, err := timezone.ToAbsolute(req.EndDateTime, zone)
	if err != nil {
		return models.Event{}, models.EventLog{}, apperrors.Wrap(apperrors.BadRequest, "Invalid end date/time", err)
	}

	if !end.After(start) {
		return models.Event{}, models.EventLog{}, apperrors.Wrap(apperrors.BadRequest, "End date/time must be after start date/time", apperrors.ErrInvalidWindow)
	}
	if end.Before(now) {
		return models.Event{}, models.EventLog{}, apperrors.Wrap(apperrors.BadRequest, "End date/time cannot be in the past", apperrors.ErrPastWindow)
	}

	if author, err := timezone.Load(authorZone); err == nil {
		authorZone = author.String()
	} else {
		authorZone = zone
	}

	event := models.Event{
		ID:            uuid.NewString(),
		ProfileIDs:    append([]string(nil), req.ProfileIDs...),
		Timezone:      zone,
		StartDateTime: start,
		EndDateTime:   end,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	created := models.EventLog{
		ID:        uuid.NewString(),
		EventID:   event.ID,
		ProfileID: req.ProfileIDs[0],
		Action:    models.ActionCreated,
		Timestamp: now,
		Timezone:  authorZone,
	}
	return event, created, nil
}

// ApplyChanges applies changes to a copy of event on behalf of actor and
// returns the updated event plus one entry per field that actually changed.
//
// Fields are processed in a fixed order: timezone, start, end, participants.
// A new timezone is applied before start and end are read, so wall-clock
// inputs in the same request are interpreted in the new zone. profiles must
// contain every id of changes.ProfileIDs that should appear in the names
// snapshot. The input event is never modified; on error nothing is applied.
func ApplyChanges(event models.Event, actor models.Profile, changes models.UpdateEventRequest, profiles map[string]models.Profile, now time.Time) (models.Event, []models.EventLog, error) {
	if !event.HasParticipant(actor.ID) {
		return models.Event{}, nil, apperrors.Wrap(apperrors.Forbidden, "You are not authorized to edit this event", apperrors.ErrUnauthorized)
	}

	updated := event
	updated.ProfileIDs = append([]string(nil), event.ProfileIDs...)
	logs := make([]models.EventLog, 0, 4)

	entry := func(action models.LogAction, field, oldValue, newValue string) models.EventLog {
		return models.EventLog{
			ID:        uuid.NewString(),
			EventID:   event.ID,
			ProfileID: actor.ID,
			Action:    action,
			Field:     field,
			ValueKind: models.KindForField(field),
			OldValue:  oldValue,
			NewValue:  newValue,
			Timestamp: now,
			Timezone:  actor.Timezone,
			Seq:       len(logs),
		}
	}

	if loc, err := timezone.Load(changes.Timezone); err == nil && loc.String() != updated.Timezone {
		logs = append(logs, entry(models.ActionUpdated, models.FieldTimezone, updated.Timezone, loc.String()))
		updated.Timezone = loc.String()
	}

	if changes.StartDateTime != "" {
		values, changed, err := retime(&updated.StartDateTime, changes.StartDateTime, updated.Timezone, actor.Timezone)
		if err != nil {
			return models.Event{}, nil, apperrors.Wrap(apperrors.BadRequest, "Invalid start date/time", err)
		}
		if changed {
			logs = append(logs, entry(models.ActionUpdated, models.FieldStartDateTime, values[0], values[1]))
		}
	}

	if changes.EndDateTime != "" {
		values, changed, err := retime(&updated.EndDateTime, changes.EndDateTime, updated.Timezone, actor.Timezone)
		if err != nil {
			return models.Event{}, nil, apperrors.Wrap(apperrors.BadRequest, "Invalid end date/time", err)
		}
		if changed {
			logs = append(logs, entry(models.ActionUpdated, models.FieldEndDateTime, values[0], values[1]))
		}
	}

	if changes.ProfileIDs != nil {
		if len(changes.ProfileIDs) == 0 {
			return models.Event{}, nil, apperrors.New(apperrors.BadRequest, "At least one profile is required")
		}
		added, removed := Participants(updated.ProfileIDs, changes.ProfileIDs)
		if len(added) > 0 || len(removed) > 0 {
			l := entry(models.ActionProfileUpdated, models.FieldProfiles,
				strings.Join(updated.ProfileIDs, ","), strings.Join(changes.ProfileIDs, ","))
			l.ProfileNames = namesOf(changes.ProfileIDs, profiles)
			logs = append(logs, l)
			updated.ProfileIDs = append([]string(nil), changes.ProfileIDs...)
		}
	}

	if !updated.EndDateTime.After(updated.StartDateTime) {
		return models.Event{}, nil, apperrors.Wrap(apperrors.BadRequest, "End date/time must be after start date/time", apperrors.ErrInvalidWindow)
	}

	updated.UpdatedAt = now
	return updated, logs, nil
}

// retime converts wallClock in eventZone and stores it in *field when the
// instant differs. The returned pair holds the old and new values rendered
// in displayZone.
func retime(field *time.Time, wallClock, eventZone, displayZone string) ([2]string, bool, error) {
	next, err := timezone.ToAbsolute(wallClock, eventZone)
	if err != nil {
		return [2]string{}, false, err
	}
	if next.Equal(*field) {
		return [2]string{}, false, nil
	}
	before, err := timezone.FromAbsolute(*field, displayZone)
	if err != nil {
		return [2]string{}, false, fmt.Errorf("render previous value: %w", err)
	}
	after, err := timezone.FromAbsolute(next, displayZone)
	if err != nil {
		return [2]string{}, false, fmt.Errorf("render new value: %w", err)
	}
	*field = next
	return [2]string{before.LogString(), after.LogString()}, true, nil
}

// Participants compares two id lists as sets.
func Participants(current, next []string) (added, removed []string) {
	have := make(map[string]struct{}, len(current))
	for _, id := range current {
		have[id] = struct{}{}
	}
	want := make(map[string]struct{}, len(next))
	for _, id := range next {
		want[id] = struct{}{}
		if _, ok := have[id]; !ok {
			added = append(added, id)
		}
	}
	for _, id := range current {
		if _, ok := want[id]; !ok {
			removed = append(removed, id)
		}
	}
	return added, removed
}

func namesOf(ids []string, profiles map[string]models.Profile) string {
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		if p, ok := profiles[id]; ok {
			names = append(names, p.Name)
		}
	}
	return strings.Join(names, ", ")
}
