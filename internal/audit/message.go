package audit

import (
	"fmt"

	"ms-scheduler/internal/models"
)

var fieldLabels = map[string]string{
	models.FieldStartDateTime: "Start date/time",
	models.FieldEndDateTime:   "End date/time",
	models.FieldTimezone:      "Timezone",
}

// Message returns the human readable line shown for entry in the history.
// actorName is the display name of the entry's acting profile.
func Message(entry models.EventLog, actorName string) string {
	switch entry.Action {
	case models.ActionCreated:
		return "Event created"
	case models.ActionUpdated:
		if label, ok := fieldLabels[entry.Field]; ok {
			return label + " updated"
		}
		return fmt.Sprintf("%s updated", entry.Field)
	case models.ActionProfileUpdated:
		return "Profiles changed to: " + entry.ProfileNames
	case models.ActionProfileAdded:
		return "Profile added: " + actorName
	case models.ActionProfileRemoved:
		return "Profile removed: " + actorName
	}
	return ""
}
