// Package calendar exports scheduled events as an iCalendar feed.
package calendar

import (
	"fmt"
	"strings"

	ical "github.com/arran4/golang-ical"

	"ms-scheduler/internal/models"
	"ms-scheduler/internal/timezone"
)

const productID = "-//ms-scheduler//Event Scheduler//EN"

// Export renders events as a VCALENDAR with one VEVENT per event. Instants
// are written in UTC; the event's own zone is kept in the description.
func Export(events []models.EventResponse) string {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(productID)

	for _, e := range events {
		ev := cal.AddEvent(e.ID + "@ms-scheduler")
		ev.SetDtStampTime(e.UpdatedAt)
		ev.SetCreatedTime(e.CreatedAt)
		ev.SetModifiedAt(e.UpdatedAt)
		ev.SetStartAt(e.StartDateTime)
		ev.SetEndAt(e.EndDateTime)
		ev.SetSummary(Summary(e))
		ev.SetDescription(description(e))
	}
	return cal.Serialize()
}

// description shows the start in the event's own zone, whatever zone the
// response was displayed in.
func description(e models.EventResponse) string {
	start, err := timezone.FormatForDisplay(e.StartDateTime, e.Timezone)
	if err != nil {
		return e.Display.Start.Full
	}
	return fmt.Sprintf("%s (%s)", start.Full, timezone.Label(e.Timezone))
}

// Summary names an event by its participants.
func Summary(e models.EventResponse) string {
	names := make([]string, 0, len(e.ProfileIDs))
	for _, p := range e.ProfileIDs {
		if p.Name != "" {
			names = append(names, p.Name)
		}
	}
	if len(names) == 0 {
		return "Event"
	}
	return "Event with " + strings.Join(names, ", ")
}
