package models

import (
	"time"

	"github.com/uptrace/bun"
)

type LogAction string

const (
	ActionCreated        LogAction = "created"
	ActionUpdated        LogAction = "updated"
	ActionProfileAdded   LogAction = "profile_added"
	ActionProfileRemoved LogAction = "profile_removed"
	ActionProfileUpdated LogAction = "profile_updated"
)

const (
	FieldTimezone      = "timezone"
	FieldStartDateTime = "startDateTime"
	FieldEndDateTime   = "endDateTime"
	FieldProfiles      = "profiles"
)

// ValueKind tags the old/new values of a log entry.
type ValueKind string

const (
	ValueNone      ValueKind = ""
	ValueString    ValueKind = "string"
	ValueTimestamp ValueKind = "timestamp"
	ValueTimezone  ValueKind = "timezone"
)

// KindForField returns the value kind recorded for changes of field.
func KindForField(field string) ValueKind {
	switch field {
	case FieldTimezone:
		return ValueTimezone
	case FieldStartDateTime, FieldEndDateTime:
		return ValueTimestamp
	case "":
		return ValueNone
	default:
		return ValueString
	}
}

type EventLog struct {
	bun.BaseModel `bun:"table:event_logs"`

	ID           string    `bun:"id,pk"`
	EventID      string    `bun:"event_id,notnull"`
	ProfileID    string    `bun:"profile_id,notnull"`
	Action       LogAction `bun:"action,notnull"`
	Field        string    `bun:"field,nullzero"`
	ValueKind    ValueKind `bun:"value_kind,nullzero"`
	OldValue     string    `bun:"old_value,nullzero"`
	NewValue     string    `bun:"new_value,nullzero"`
	ProfileNames string    `bun:"profile_names,nullzero"`
	Timestamp    time.Time `bun:"timestamp,notnull"`
	Timezone     string    `bun:"timezone,notnull"`
	// Seq orders the entries written by one update.
	Seq int `bun:"seq,notnull,default:0"`
}

type LogDisplay struct {
	Formatted string `json:"formatted"`
	Message   string `json:"message"`
}

type EventLogResponse struct {
	ID           string     `json:"_id"`
	EventID      string     `json:"eventId"`
	ProfileID    ProfileRef `json:"profileId"`
	Action       LogAction  `json:"action"`
	Field        string     `json:"field,omitempty"`
	ValueKind    ValueKind  `json:"valueKind,omitempty"`
	OldValue     string     `json:"oldValue,omitempty"`
	NewValue     string     `json:"newValue,omitempty"`
	ProfileNames string     `json:"profileNames,omitempty"`
	Timestamp    time.Time  `json:"timestamp"`
	Timezone     string     `json:"timezone"`
	Display      LogDisplay `json:"display"`
}
