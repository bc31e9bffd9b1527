package ctdf

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// TimeOfDay is a timezone naive HH:MM wall clock time. Hours of 24 and above follow the GTFS
// convention and refer to the following calendar day.
type TimeOfDay struct {
	Hour   int
	Minute int
}

func ParseTimeOfDay(value string) (TimeOfDay, error) {
	parts := strings.Split(strings.TrimSpace(value), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return TimeOfDay{}, fmt.Errorf("time of day %q is not HH:MM", value)
	}

	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 47 {
		return TimeOfDay{}, fmt.Errorf("time of day %q has an invalid hour", value)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 || len(parts[1]) != 2 {
		return TimeOfDay{}, fmt.Errorf("time of day %q has an invalid minute", value)
	}

	return TimeOfDay{Hour: hour, Minute: minute}, nil
}

func TimeOfDayFromTime(t time.Time) TimeOfDay {
	return TimeOfDay{Hour: t.Hour(), Minute: t.Minute()}
}

// On resolves the wall clock time against the calendar day of date, in date's location
func (t TimeOfDay) On(date time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location()).
		Add(time.Duration(t.Hour)*time.Hour + time.Duration(t.Minute)*time.Minute)
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour%24, t.Minute)
}

func (t TimeOfDay) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *TimeOfDay) UnmarshalText(text []byte) error {
	parsed, err := ParseTimeOfDay(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// ClockString formats t as HH:MM in its own location
func ClockString(t time.Time) string {
	return t.Format("15:04")
}
