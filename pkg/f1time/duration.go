package f1time

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	// Group 1 is the hour when group 2 is present, otherwise the minute.
	durationPattern = regexp.MustCompile(`^(?:(\d{1,2}):)?(?:(\d{1,2}):)?(\d{1,2})\.(\d{1,3})$`)

	deltaPattern = regexp.MustCompile(`^\+(?:(\d{1,2}):)?(\d{1,3})\.(\d{1,3})$`)
)

// HMS builds a duration from hours, minutes, seconds and milliseconds.
func HMS(hours, minutes, seconds, millis int) time.Duration {
	return time.Duration(hours)*time.Hour +
		time.Duration(minutes)*time.Minute +
		time.Duration(seconds)*time.Second +
		time.Duration(millis)*time.Millisecond
}

// Millis builds a duration from a millisecond count.
func Millis(ms int64) time.Duration {
	return time.Duration(ms) * time.Millisecond
}

// Components splits d into hours, minutes, seconds and milliseconds. Sub-millisecond
// precision is truncated.
func Components(d time.Duration) (hours, minutes, seconds, millis int) {
	ms := d.Milliseconds()
	hours = int(ms / 3_600_000)
	ms %= 3_600_000
	minutes = int(ms / 60_000)
	ms %= 60_000
	seconds = int(ms / 1000)
	millis = int(ms % 1000)
	return hours, minutes, seconds, millis
}

// ParseDuration parses a lap or race duration in the form [[H:]M:]S.fff.
//
// The fractional part holds one to three digits and is right-padded to milliseconds, so
// "10.1" is ten seconds and 100ms. Minutes and seconds are 0-59; hours have one or two digits.
func ParseDuration(s string) (time.Duration, error) {
	m := durationPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, parseErr(KindDuration, s, "expected [[H:]M:]S.fff")
	}

	hourGroup, minuteGroup := "", m[1]
	if m[2] != "" {
		hourGroup, minuteGroup = m[1], m[2]
	}

	hours, err := atoi(hourGroup)
	if err != nil {
		return 0, parseErr(KindDuration, s, "hours out of range")
	}
	minutes, err := atoi(minuteGroup)
	if err != nil {
		return 0, parseErr(KindDuration, s, "minutes out of range")
	}
	seconds, err := atoi(m[3])
	if err != nil {
		return 0, parseErr(KindDuration, s, "seconds out of range")
	}
	millis, err := subsecondMillis(m[4])
	if err != nil {
		return 0, parseErr(KindDuration, s, "milliseconds out of range")
	}

	if minutes > 59 {
		return 0, parseErr(KindDuration, s, "minutes out of range")
	}
	if seconds > 59 {
		return 0, parseErr(KindDuration, s, "seconds out of range")
	}

	return HMS(hours, minutes, seconds, millis), nil
}

// ParseDelta parses a gap to the leader in the form +[M:]S.fff. The leading + is required
// and is not part of the value. Without a minute component the seconds may exceed 59, as
// in "+103.588".
func ParseDelta(s string) (time.Duration, error) {
	m := deltaPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, parseErr(KindDelta, s, "expected +[M:]S.fff")
	}

	minutes, err := atoi(m[1])
	if err != nil {
		return 0, parseErr(KindDelta, s, "minutes out of range")
	}
	seconds, err := atoi(m[2])
	if err != nil {
		return 0, parseErr(KindDelta, s, "seconds out of range")
	}
	millis, err := subsecondMillis(m[3])
	if err != nil {
		return 0, parseErr(KindDelta, s, "milliseconds out of range")
	}

	if m[1] != "" && seconds > 59 {
		return 0, parseErr(KindDelta, s, "seconds out of range")
	}

	return HMS(0, minutes, seconds, millis), nil
}

// FormatDuration renders d in the shortest [[H:]M:]S.fff form. Durations under 100 hours
// round-trip through ParseDuration.
func FormatDuration(d time.Duration) string {
	h, m, s, ms := Components(d)
	switch {
	case h > 0:
		return fmt.Sprintf("%d:%02d:%02d.%03d", h, m, s, ms)
	case m > 0:
		return fmt.Sprintf("%d:%02d.%03d", m, s, ms)
	default:
		return fmt.Sprintf("%d.%03d", s, ms)
	}
}

// FormatDelta renders d with a leading +. Deltas under an hour round-trip through ParseDelta.
func FormatDelta(d time.Duration) string {
	return "+" + FormatDuration(d)
}

// subsecondMillis converts "1", "12" or "123" into 100, 120 or 123 milliseconds.
func subsecondMillis(frac string) (int, error) {
	return atoi(frac + strings.Repeat("0", 3-len(frac)))
}

// atoi parses an optional regexp digit group. An absent group is 0.
func atoi(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	n, err := strconv.ParseUint(s, 10, 16)
	if err != nil {
		return 0, err
	}
	return int(n), nil
}
