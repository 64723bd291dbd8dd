// Package schedule expands week compositions of day type references into
// the TRVZB wire format: six "HH:MM/temperature" tokens per day, always
// beginning with "00:00/".
package schedule

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"heating_control/internal/models"
)

// WeekendDayType is the template substituted for the current day in
// stay-home mode.
const WeekendDayType = "weekend_day"

const tokensPerDay = 6

var tokenRe = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d/\d+(\.\d+)?$`)

// ValidateDaySchedule checks a TRVZB day string: exactly six HH:MM/temp
// tokens, the first at 00:00.
func ValidateDaySchedule(s string) error {
	tokens := strings.Fields(s)
	if len(tokens) != tokensPerDay {
		return fmt.Errorf("day schedule has %d tokens, want %d", len(tokens), tokensPerDay)
	}
	if !strings.HasPrefix(tokens[0], "00:00/") {
		return fmt.Errorf("day schedule must start at 00:00, got %q", tokens[0])
	}
	for _, tok := range tokens {
		if !tokenRe.MatchString(tok) {
			return fmt.Errorf("malformed schedule token %q", tok)
		}
	}
	return nil
}

// ExpandWeek resolves every day of a week plan to its day type's wire
// string. Missing day references fail the whole expansion.
func ExpandWeek(week models.WeekPlan, dayTypes map[string]string) (map[string]string, error) {
	out := make(map[string]string, len(models.Weekdays))
	for _, day := range models.Weekdays {
		dayTypeID, ok := week[day]
		if !ok {
			return nil, fmt.Errorf("week plan missing %s", day)
		}
		wire, ok := dayTypes[dayTypeID]
		if !ok {
			return nil, fmt.Errorf("day type %q not found for %s", dayTypeID, day)
		}
		out[day] = wire
	}
	return out, nil
}

// StayHomePlan returns a copy of the base plan with swapDay replaced by the
// weekend pattern. The base plan is not modified.
func StayHomePlan(base models.WeekPlan, swapDay string) models.WeekPlan {
	out := make(models.WeekPlan, len(base))
	for day, dayType := range base {
		out[day] = dayType
	}
	out[swapDay] = WeekendDayType
	return out
}

// DayName returns the lowercase weekday name for t, "monday".."sunday".
func DayName(t time.Time) string {
	// time.Weekday has Sunday=0; the plan uses Monday-first ordering.
	idx := (int(t.Weekday()) + 6) % 7
	return models.Weekdays[idx]
}

// NextMidnight returns the first local midnight after t.
func NextMidnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location()).AddDate(0, 0, 1)
}
