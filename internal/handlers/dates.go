package handlers

import "time"

// dueDateLayouts are the accepted due date formats: RFC3339 from API
// clients, plus the zone-less shapes an HTML datetime-local input submits.
var dueDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// parseDueDate parses a due date string. Empty or unparseable input yields
// nil rather than an error; a missing due date is a normal state, not a
// validation failure.
func parseDueDate(value string) *time.Time {
	if value == "" {
		return nil
	}
	for _, layout := range dueDateLayouts {
		if t, err := time.ParseInLocation(layout, value, time.Local); err == nil {
			return &t
		}
	}
	return nil
}
