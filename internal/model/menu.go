package model

import "time"

// Menu is the set of meals offered on one calendar day.
type Menu struct {
	ID        string    `json:"id"`
	Date      time.Time `json:"date"`
	MealIDs   []string  `json:"meals"`
	Day       time.Time `json:"-"` // start of Date's calendar day
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

// CalendarDay returns the [start, end) window of the day containing t in loc.
// Two menus conflict when their dates share the same window.
func CalendarDay(t time.Time, loc *time.Location) (start, end time.Time) {
	if loc == nil {
		loc = time.Local
	}
	local := t.In(loc)
	start = time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	end = start.AddDate(0, 0, 1)
	return start, end
}

// SameCalendarDay reports whether a and b fall on the same day in loc.
func SameCalendarDay(a, b time.Time, loc *time.Location) bool {
	start, end := CalendarDay(a, loc)
	return !b.Before(start) && b.Before(end)
}
