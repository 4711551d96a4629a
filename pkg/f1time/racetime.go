package f1time

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// QualifyingTime is a single qualifying-stage result: either a lap time or no time set.
type QualifyingTime struct {
	time time.Duration
	set  bool
}

// NoTimeSet is the QualifyingTime of a driver who took part without setting a lap.
func NoTimeSet() QualifyingTime {
	return QualifyingTime{}
}

// QualifyingTimeOf wraps a set lap time.
func QualifyingTimeOf(d time.Duration) QualifyingTime {
	return QualifyingTime{time: d, set: true}
}

// ParseQualifyingTime maps "" to NoTimeSet and anything else through ParseDuration.
func ParseQualifyingTime(s string) (QualifyingTime, error) {
	if s == "" {
		return NoTimeSet(), nil
	}
	d, err := ParseDuration(s)
	if err != nil {
		return QualifyingTime{}, parseErr(KindQualifyingTime, s, err.Error())
	}
	return QualifyingTimeOf(d), nil
}

// HasTime reports whether a lap time was set.
func (q QualifyingTime) HasTime() bool { return q.set }

// Time returns the lap time and whether one was set.
func (q QualifyingTime) Time() (time.Duration, bool) { return q.time, q.set }

func (q QualifyingTime) String() string {
	if !q.set {
		return "no time set"
	}
	return FormatDuration(q.time)
}

// RaceTime is a finishing time: the total elapsed race time plus the gap to the leader.
// The leader's delta is zero; every other delta is strictly below its total.
type RaceTime struct {
	total time.Duration
	delta time.Duration
}

// LeaderTime returns the RaceTime of the winner.
func LeaderTime(total time.Duration) RaceTime {
	return RaceTime{total: total}
}

// RaceTimeWithDelta returns the RaceTime of a classified non-leader.
func RaceTimeWithDelta(total, delta time.Duration) (RaceTime, error) {
	if delta >= total {
		return RaceTime{}, fmt.Errorf("delta %s must be less than total %s", delta, total)
	}
	return RaceTime{total: total, delta: delta}, nil
}

// Total is the elapsed time from the start of the race.
func (r RaceTime) Total() time.Duration { return r.total }

// Delta is the gap to the leader, zero for the leader.
func (r RaceTime) Delta() time.Duration { return r.delta }

// IsLeader reports whether r is the winner's time.
func (r RaceTime) IsLeader() bool { return r.delta == 0 }

func (r RaceTime) String() string {
	if r.IsLeader() {
		return FormatDuration(r.total)
	}
	return FormatDelta(r.delta)
}

// ParseRaceTime validates the millis/time pair published for a race or sprint result.
//
// A time starting with + is a delta and the total comes from millis; the delta must be
// smaller than the total. Any other time is the leader's duration and must equal millis.
func ParseRaceTime(millis, s string) (RaceTime, error) {
	if s == "" {
		return RaceTime{}, parseErr(KindRaceTime, s, "unexpected empty time")
	}

	ms, err := strconv.ParseUint(millis, 10, 32)
	if err != nil {
		return RaceTime{}, parseErr(KindRaceTime, millis, "millis is not an unsigned integer")
	}
	total := Millis(int64(ms))

	if strings.HasPrefix(s, "+") {
		delta, err := ParseDelta(s)
		if err != nil {
			return RaceTime{}, err
		}
		if delta >= total {
			return RaceTime{}, parseErr(KindRaceTime, s,
				fmt.Sprintf("delta must be less than millis %s", millis))
		}
		return RaceTime{total: total, delta: delta}, nil
	}

	d, err := ParseDuration(s)
	if err != nil {
		return RaceTime{}, err
	}
	if d != total {
		return RaceTime{}, parseErr(KindRaceTime, s,
			fmt.Sprintf("non-delta time must match millis %s", millis))
	}
	return LeaderTime(total), nil
}

var hoursMinutesPattern = regexp.MustCompile(`^(\d{1,2}):(\d{1,2})$`)

// ParseBuggyRaceTime wraps ParseRaceTime with the tolerances needed for records the
// upstream service is known to publish incorrectly. A nil RaceTime with a nil error
// means the time is unavailable.
//
//   - "+-..." deltas (e.g. 2023 round 3, P15 "+-1:24:07.342") carry no trustworthy value.
//   - "H:MM" without seconds (e.g. 1950 round 5 winner "2:47") is rebuilt from millis when
//     the two agree to within 60s.
//   - The 2020 round 9 winner has millis one below its time; see isKnownOffByOneMillisRecord.
func ParseBuggyRaceTime(millis, s string) (*RaceTime, error) {
	if strings.HasPrefix(s, "+-") {
		return nil, nil
	}

	if m := hoursMinutesPattern.FindStringSubmatch(s); m != nil {
		ms, err := strconv.ParseUint(millis, 10, 32)
		if err != nil {
			return nil, parseErr(KindRaceTime, millis, "millis is not an unsigned integer")
		}
		hours, _ := atoi(m[1])
		minutes, _ := atoi(m[2])
		fromTime := HMS(hours, minutes, 0, 0).Milliseconds()
		if diff := int64(ms) - fromTime; diff > 60_000 || diff < -60_000 {
			return nil, parseErr(KindRaceTime, s,
				fmt.Sprintf("buggy delta does not match millis %s to within 60s", millis))
		}
		rt := LeaderTime(Millis(int64(ms)))
		return &rt, nil
	}

	if isKnownOffByOneMillisRecord(millis, s) {
		rt := LeaderTime(Millis(8375060))
		return &rt, nil
	}

	rt, err := ParseRaceTime(millis, s)
	if err != nil {
		return nil, err
	}
	return &rt, nil
}

// isKnownOffByOneMillisRecord matches the 2020 round 9 winning time, published with
// millis 8375059 although "2:19:35.060" is 8375060.
func isKnownOffByOneMillisRecord(millis, s string) bool {
	return millis == "8375059" && s == "2:19:35.060"
}
