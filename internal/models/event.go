package models

import (
	"time"

	"github.com/uptrace/bun"

	"ms-scheduler/internal/timezone"
)

type Event struct {
	bun.BaseModel `bun:"table:events"`

	ID            string    `bun:"id,pk"`
	Timezone      string    `bun:"timezone,notnull"`
	StartDateTime time.Time `bun:"start_date_time,notnull"`
	EndDateTime   time.Time `bun:"end_date_time,notnull"`
	CreatedAt     time.Time `bun:"created_at,notnull"`
	UpdatedAt     time.Time `bun:"updated_at,notnull"`

	// ProfileIDs is kept in event_profiles, ordered by position.
	ProfileIDs []string `bun:"-"`
}

// EventProfile is one participant slot of an event.
type EventProfile struct {
	bun.BaseModel `bun:"table:event_profiles"`

	EventID   string `bun:"event_id,pk"`
	Position  int    `bun:"position,pk"`
	ProfileID string `bun:"profile_id,notnull"`
}

// HasParticipant reports whether profileID is among the event's participants.
func (e Event) HasParticipant(profileID string) bool {
	for _, id := range e.ProfileIDs {
		if id == profileID {
			return true
		}
	}
	return false
}

type CreateEventRequest struct {
	ProfileIDs    []string `json:"profileIds"`
	Timezone      string   `json:"timezone"`
	StartDateTime string   `json:"startDateTime"`
	EndDateTime   string   `json:"endDateTime"`
}

// UpdateEventRequest carries the acting profile and the optional changes.
// A nil ProfileIDs leaves participants untouched.
type UpdateEventRequest struct {
	ProfileID     string   `json:"profileId"`
	Timezone      string   `json:"timezone,omitempty"`
	StartDateTime string   `json:"startDateTime,omitempty"`
	EndDateTime   string   `json:"endDateTime,omitempty"`
	ProfileIDs    []string `json:"profileIds,omitempty"`
}

type EventDisplay struct {
	Start   timezone.Display `json:"start"`
	End     timezone.Display `json:"end"`
	Created timezone.Display `json:"created"`
	Updated timezone.Display `json:"updated"`
}

type EventResponse struct {
	ID            string       `json:"_id"`
	ProfileIDs    []ProfileRef `json:"profileIds"`
	Timezone      string       `json:"timezone"`
	StartDateTime time.Time    `json:"startDateTime"`
	EndDateTime   time.Time    `json:"endDateTime"`
	CreatedAt     time.Time    `json:"createdAt"`
	UpdatedAt     time.Time    `json:"updatedAt"`
	Display       EventDisplay `json:"display"`
}
