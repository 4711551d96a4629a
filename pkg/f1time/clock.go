package f1time

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

var timeOfDayPattern = regexp.MustCompile(`^(\d{2}):(\d{2}):(\d{2})(Z?)$`)

// Date is a calendar date without a time zone, as published by the API (YYYY-MM-DD).
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// ParseDate parses a YYYY-MM-DD date.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return Date{}, parseErr(KindDate, s, err.Error())
	}
	return Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}, nil
}

// String renders the date as YYYY-MM-DD.
func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// IsZero reports whether d is the zero Date.
func (d Date) IsZero() bool {
	return d == Date{}
}

// TimeOfDay is a wall-clock time, e.g. a session start or the moment a pit stop happened.
// UTC records whether the source carried a trailing Z.
type TimeOfDay struct {
	Hour   int
	Minute int
	Second int
	UTC    bool
}

// ParseTimeOfDay parses HH:MM:SS with an optional trailing Z.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	m := timeOfDayPattern.FindStringSubmatch(s)
	if m == nil {
		return TimeOfDay{}, parseErr(KindTimeOfDay, s, "expected HH:MM:SS with optional Z suffix")
	}

	hour, _ := strconv.Atoi(m[1])
	minute, _ := strconv.Atoi(m[2])
	second, _ := strconv.Atoi(m[3])

	switch {
	case hour > 23:
		return TimeOfDay{}, parseErr(KindTimeOfDay, s, "hour out of range")
	case minute > 59:
		return TimeOfDay{}, parseErr(KindTimeOfDay, s, "minute out of range")
	case second > 59:
		return TimeOfDay{}, parseErr(KindTimeOfDay, s, "second out of range")
	}

	return TimeOfDay{Hour: hour, Minute: minute, Second: second, UTC: m[4] == "Z"}, nil
}

// String renders the time in the same shape it was parsed from.
func (t TimeOfDay) String() string {
	s := fmt.Sprintf("%02d:%02d:%02d", t.Hour, t.Minute, t.Second)
	if t.UTC {
		s += "Z"
	}
	return s
}

// SinceMidnight returns the offset of t from 00:00:00.
func (t TimeOfDay) SinceMidnight() time.Duration {
	return time.Duration(t.Hour)*time.Hour + time.Duration(t.Minute)*time.Minute + time.Duration(t.Second)*time.Second
}

// NullTimeOfDay is an optional TimeOfDay that stays comparable with ==.
type NullTimeOfDay struct {
	TimeOfDay TimeOfDay
	Valid     bool
}

// NullTimeOfDayFrom converts an optional pointer into its comparable form.
func NullTimeOfDayFrom(t *TimeOfDay) NullTimeOfDay {
	if t == nil {
		return NullTimeOfDay{}
	}
	return NullTimeOfDay{TimeOfDay: *t, Valid: true}
}

// At combines a date and a time of day into an instant. Times without a Z suffix are
// interpreted as UTC as well; the API publishes no other zone.
func At(d Date, t TimeOfDay) time.Time {
	return time.Date(d.Year, d.Month, d.Day, t.Hour, t.Minute, t.Second, 0, time.UTC)
}
