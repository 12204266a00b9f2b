package validation

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

// Menu is a validated menu write payload.
type Menu struct {
	Date    time.Time
	MealIDs []string
}

// dateLayouts are the string forms accepted for a menu date, tried in order.
// Layouts without a zone are interpreted in the caller's location.
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ValidateMenu checks a create or update payload for a menu.
// loc is used for dates that carry no zone; nil means time.Local.
func ValidateMenu(payload map[string]any, loc *time.Location) (*Menu, error) {
	if loc == nil {
		loc = time.Local
	}

	raw, ok := payload["date"]
	if !ok {
		return nil, newError("date", "%q is required", "date")
	}
	date, ok := parseDate(raw, loc)
	if !ok {
		return nil, newError("date", "%q must be a number of milliseconds or valid date string", "date")
	}

	meals, err := checkStringArray(payload, "meals", true)
	if err != nil {
		return nil, err
	}

	if err := checkUnknown(payload, "date", "meals"); err != nil {
		return nil, err
	}

	if err := checkReferences("meals", meals); err != nil {
		return nil, err
	}

	return &Menu{Date: date, MealIDs: meals}, nil
}

// parseDate accepts Unix milliseconds (number or digit string) or a date string.
func parseDate(raw any, loc *time.Location) (time.Time, bool) {
	switch v := raw.(type) {
	case json.Number:
		return fromMillis(v.String())
	case float64:
		return fromMillis(strconv.FormatFloat(v, 'f', -1, 64))
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return time.Time{}, false
		}
		if t, ok := fromMillis(s); ok {
			return t, true
		}
		for _, layout := range dateLayouts {
			if t, err := time.ParseInLocation(layout, s, loc); err == nil {
				return t, true
			}
		}
	}
	return time.Time{}, false
}

func fromMillis(s string) (time.Time, bool) {
	ms, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(ms) || math.IsInf(ms, 0) {
		return time.Time{}, false
	}
	return time.UnixMilli(int64(ms)), true
}
