package utils

import (
	"fmt"
	"time"

	cal "github.com/rickar/cal/v2"
	"github.com/rickar/cal/v2/us"
)

// Monday–Friday, minus observed US federal holidays.
var businessDays = cal.NewBusinessCalendar()

func init() {
	businessDays.AddHoliday(
		us.NewYear,
		us.MlkDay,
		us.PresidentsDay,
		us.MemorialDay,
		us.Juneteenth,
		us.IndependenceDay,
		us.LaborDay,
		us.ThanksgivingDay,
		us.ChristmasDay,
	)
}

// ParseClock parses "HH:MM" into minutes after midnight.
func ParseClock(s string) (int, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("invalid clock value %q: %w", s, err)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// IsBusinessHours reports whether now, viewed in loc, falls on a business day
// between start and end inclusive.
func IsBusinessHours(now time.Time, start, end string, loc *time.Location) (bool, error) {
	startMin, err := ParseClock(start)
	if err != nil {
		return false, err
	}
	endMin, err := ParseClock(end)
	if err != nil {
		return false, err
	}
	if loc == nil {
		loc = time.UTC
	}

	local := now.In(loc)
	if !businessDays.IsWorkday(local) {
		return false, nil
	}
	current := local.Hour()*60 + local.Minute()
	return current >= startMin && current <= endMin, nil
}
