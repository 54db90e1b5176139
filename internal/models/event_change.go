package models

import "time"

type ChangeType string

const (
	ChangeCreated ChangeType = "created"
	ChangeUpdated ChangeType = "updated"
)

// EventChange is published to Kafka and pushed to stream subscribers after a
// create or update commits.
type EventChange struct {
	Type       ChangeType `json:"type"`
	EventID    string     `json:"eventId"`
	ActorID    string     `json:"actorId"`
	ProfileIDs []string   `json:"profileIds"`
	Removed    []string   `json:"removedProfileIds,omitempty"`
	Fields     []string   `json:"fields,omitempty"`
	At         time.Time  `json:"at"`
}

// Audience lists every profile that should hear about the change, including
// participants the change removed.
func (c EventChange) Audience() []string {
	out := make([]string, 0, len(c.ProfileIDs)+len(c.Removed))
	seen := make(map[string]struct{}, cap(out))
	for _, ids := range [][]string{c.ProfileIDs, c.Removed} {
		for _, id := range ids {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	return out
}
