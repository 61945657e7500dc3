package normalize

import (
	"strconv"
	"strings"
	"time"

	"github.com/datamartlab/logmart/internal/logrec"
)

func fromSerialDays(n int64) time.Time {
	return logrec.FromSerialDays(n)
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// isoLayouts are unambiguous layouts tried before any slash-date guessing.
var isoLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006-01-02",
}

// dayFirstLayouts interpret slash/dash dates with the day leading, the
// convention of the operational system's locale.
var dayFirstLayouts = []string{
	"02/01/2006 15:04:05",
	"02/01/2006",
	"2/1/2006",
	"02-01-2006",
	"02.01.2006",
}

// monthFirstLayouts interpret slash/dash dates with the month leading.
var monthFirstLayouts = []string{
	"01/02/2006 15:04:05",
	"01/02/2006",
	"1/2/2006",
	"01-02-2006",
}

// parseDateString parses free-text dates. ISO forms always win; for
// ambiguous slash dates the preferred convention is tried first and the
// other used as a fallback, so "25/12/2024" still parses under a
// month-first preference.
func parseDateString(s string, dayFirst bool) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range isoLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	preferred, fallback := monthFirstLayouts, dayFirstLayouts
	if dayFirst {
		preferred, fallback = dayFirstLayouts, monthFirstLayouts
	}
	for _, layout := range preferred {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	for _, layout := range fallback {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// parseEventTime resolves a raw date cell into the entry's event time.
// Accepts native time values, spreadsheet serial day counts, and free
// text (month-first preference, then day-first). Records whose event
// time cannot be resolved are dropped entirely by the caller.
func parseEventTime(v any) (time.Time, bool) {
	switch val := v.(type) {
	case time.Time:
		return val, true
	case int:
		return fromSerialDays(int64(val)), true
	case int64:
		return fromSerialDays(val), true
	case float64:
		if val == float64(int64(val)) {
			return fromSerialDays(int64(val)), true
		}
		return time.Time{}, false
	case string:
		s := strings.TrimSpace(val)
		if isDigits(s) {
			n, err := strconv.ParseInt(s, 10, 64)
			if err == nil {
				return fromSerialDays(n), true
			}
		}
		return parseDateString(s, false)
	case nil:
		return time.Time{}, false
	default:
		return time.Time{}, false
	}
}
