// Package timezone converts between zone-local wall-clock strings and
// absolute instants. Instants are the only values that are stored or
// compared; wall-clock strings exist at the input and output boundary.
package timezone

import (
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"

	"ms-scheduler/internal/apperrors"
)

const (
	DateLayout  = "Jan 2, 2006"
	TimeLayout  = "3:04 PM"
	FullLayout  = "Jan 2, 2006 at 3:04 PM"
	LogLayout   = "2006-01-02 15:04"
	DefaultZone = "America/New_York"
)

// naive layouts accepted by ToAbsolute, tried in order
var wallClockLayouts = []string{
	"2006-01-02T15:04",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05.000",
	"2006-01-02 15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// offset-carrying layouts denote their own instant
var instantLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04Z07:00",
}

// WallClock is an instant projected into a zone.
type WallClock struct {
	Year   int
	Month  time.Month
	Day    int
	Hour   int
	Minute int
	Second int
	Zone   string
}

func (w WallClock) String() string {
	return fmt.Sprintf("%04d-%02d-%02dT%02d:%02d:%02d", w.Year, int(w.Month), w.Day, w.Hour, w.Minute, w.Second)
}

// LogString renders the value the way audit entries store it.
func (w WallClock) LogString() string {
	return fmt.Sprintf("%04d-%02d-%02d %02d:%02d", w.Year, int(w.Month), w.Day, w.Hour, w.Minute)
}

// Display holds the three human readable renderings of an instant.
type Display struct {
	Date string `json:"date"`
	Time string `json:"time"`
	Full string `json:"full"`
}

// IsValidTimezone reports whether name is a loadable IANA zone.
func IsValidTimezone(name string) bool {
	_, err := load(name)
	return err == nil
}

// Load returns the location for an IANA zone name.
func Load(name string) (*time.Location, error) {
	return load(name)
}

func load(name string) (*time.Location, error) {
	name = strings.TrimSpace(name)
	// LoadLocation maps "" to UTC and "Local" to the host zone; neither is an IANA identifier.
	if name == "" || name == "Local" {
		return nil, fmt.Errorf("%w: %q", apperrors.ErrInvalidTimezone, name)
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", apperrors.ErrInvalidTimezone, name)
	}
	return loc, nil
}

// ToAbsolute interprets wallClock as a local date-time in zone.
func ToAbsolute(wallClock, zone string) (time.Time, error) {
	loc, err := load(zone)
	if err != nil {
		return time.Time{}, err
	}
	value := strings.TrimSpace(wallClock)
	if value == "" {
		return time.Time{}, fmt.Errorf("%w: empty value", apperrors.ErrInvalidDateTime)
	}
	for _, layout := range wallClockLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t.UTC(), nil
		}
	}
	for _, layout := range instantLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", apperrors.ErrInvalidDateTime, wallClock)
}

// FromAbsolute projects instant into zone.
func FromAbsolute(instant time.Time, zone string) (WallClock, error) {
	loc, err := load(zone)
	if err != nil {
		return WallClock{}, err
	}
	t := instant.In(loc)
	return WallClock{
		Year:   t.Year(),
		Month:  t.Month(),
		Day:    t.Day(),
		Hour:   t.Hour(),
		Minute: t.Minute(),
		Second: t.Second(),
		Zone:   loc.String(),
	}, nil
}

// FormatForDisplay renders instant in zone as date, time and combined strings.
func FormatForDisplay(instant time.Time, zone string) (Display, error) {
	loc, err := load(zone)
	if err != nil {
		return Display{}, err
	}
	t := instant.In(loc)
	return Display{
		Date: t.Format(DateLayout),
		Time: t.Format(TimeLayout),
		Full: t.Format(FullLayout),
	}, nil
}
