package timezone

// Zone is a selectable timezone with a short label.
type Zone struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

var known = []Zone{
	{Value: "America/New_York", Label: "Eastern Time (ET)"},
	{Value: "America/Chicago", Label: "Central Time (CT)"},
	{Value: "America/Denver", Label: "Mountain Time (MT)"},
	{Value: "America/Los_Angeles", Label: "Pacific Time (PT)"},
	{Value: "Asia/Kolkata", Label: "India (IST)"},
	{Value: "Europe/London", Label: "London (GMT)"},
	{Value: "Europe/Paris", Label: "Paris (CET)"},
	{Value: "Asia/Tokyo", Label: "Tokyo (JST)"},
	{Value: "Australia/Sydney", Label: "Sydney (AEST)"},
}

// Known returns the zones offered to users when picking a timezone.
func Known() []Zone {
	out := make([]Zone, len(known))
	copy(out, known)
	return out
}

// Label returns the short label for zone, or zone itself when it is not in Known.
func Label(zone string) string {
	for _, z := range known {
		if z.Value == zone {
			return z.Label
		}
	}
	return zone
}
