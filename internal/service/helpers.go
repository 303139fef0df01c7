package service

import (
	"strconv"
	"strings"
	"time"

	"backoffice/internal/apperr"
)

const dateLayout = "2006-01-02"

func parseDate(field, s string) (time.Time, error) {
	t, err := time.ParseInLocation(dateLayout, strings.TrimSpace(s), time.UTC)
	if err != nil {
		return time.Time{}, apperr.Validation("%s must be a date in YYYY-MM-DD format", field)
	}
	return t, nil
}

// parseClock validates an HH:MM time of day and returns minutes since midnight.
func parseClock(field, s string) (int, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return 0, apperr.Validation("%s must be a time in HH:MM format", field)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// parseWeekdays validates a set of weekday numbers (0 = Sunday) and returns it as canonical CSV.
func parseWeekdays(days []int) (string, error) {
	if len(days) == 0 {
		return "", apperr.Validation("days_of_week must not be empty")
	}
	var set [7]bool
	for _, d := range days {
		if d < 0 || d > 6 {
			return "", apperr.Validation("days_of_week values must be between 0 (Sunday) and 6 (Saturday)")
		}
		set[d] = true
	}
	parts := make([]string, 0, 7)
	for d, ok := range set {
		if ok {
			parts = append(parts, strconv.Itoa(d))
		}
	}
	return strings.Join(parts, ","), nil
}

func weekdaysOf(csv string) []int {
	var out []int
	for _, p := range strings.Split(csv, ",") {
		if d, err := strconv.Atoi(strings.TrimSpace(p)); err == nil && d >= 0 && d <= 6 {
			out = append(out, d)
		}
	}
	return out
}

func hasWeekday(csv string, day time.Weekday) bool {
	for _, d := range weekdaysOf(csv) {
		if d == int(day) {
			return true
		}
	}
	return false
}
