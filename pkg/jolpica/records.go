package jolpica

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/ramonrsv/f1-data/pkg/f1time"
)

// Season is a championship year.
type Season struct {
	Season uint32
	URL    string
}

// Driver is a Formula 1 driver.
type Driver struct {
	DriverID        string
	PermanentNumber *uint32
	Code            *string
	URL             string
	GivenName       string
	FamilyName      string
	DateOfBirth     f1time.Date
	Nationality     string
}

// FullName returns "GivenName FamilyName".
func (d Driver) FullName() string {
	return d.GivenName + " " + d.FamilyName
}

// Constructor is a team entry.
type Constructor struct {
	ConstructorID string
	URL           string
	Name          string
	Nationality   string
}

// Location places a circuit.
type Location struct {
	Lat      float64
	Long     float64
	Locality string
	Country  string
}

// Circuit is a track that hosted at least one event.
type Circuit struct {
	CircuitID   string
	URL         string
	CircuitName string
	Location    Location
}

// Status is a finishing status and how often it occurred for the query.
type Status struct {
	StatusID uint32
	Count    uint32
	Status   string
}

// NoNumber is the car number of race results published without one.
const NoNumber uint32 = math.MaxUint32

// PositionStatus classifies a sprint or race outcome.
type PositionStatus int

const (
	Finished PositionStatus = iota
	Retired
	Disqualified
	Excluded
	Withdrawn
	FailedToQualify
	NotClassified
)

var positionCodes = map[string]PositionStatus{
	"R": Retired,
	"D": Disqualified,
	"E": Excluded,
	"W": Withdrawn,
	"F": FailedToQualify,
	"N": NotClassified,
}

// Position is the positionText of a sprint or race result: a classified place or an outcome code.
type Position struct {
	Status PositionStatus
	Place  uint32 // set only when Status is Finished
}

// FinishedAt returns a classified position.
func FinishedAt(place uint32) Position {
	return Position{Status: Finished, Place: place}
}

// ParsePosition decodes a positionText: a number, or one of R, D, E, W, F, N.
func ParsePosition(s string) (Position, error) {
	if status, ok := positionCodes[s]; ok {
		return Position{Status: status}, nil
	}
	place, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return Position{}, fmt.Errorf("invalid position text %q", s)
	}
	return FinishedAt(uint32(place)), nil
}

func (p Position) String() string {
	if p.Status == Finished {
		return strconv.FormatUint(uint64(p.Place), 10)
	}
	for code, status := range positionCodes {
		if status == p.Status {
			return code
		}
	}
	return "?"
}

// AverageSpeed is the speed over a fastest lap. Units is always "kph".
type AverageSpeed struct {
	Units string
	Speed float64
}

// FastestLap is a driver's quickest lap in a session.
type FastestLap struct {
	Rank         *uint32
	Lap          uint32
	Time         time.Duration
	AverageSpeed *AverageSpeed
}

// QualifyingResult is one driver's qualifying outcome. Stages the driver did not take part
// in are nil.
type QualifyingResult struct {
	Number      uint32
	Position    uint32
	Driver      Driver
	Constructor Constructor
	Q1          *f1time.QualifyingTime
	Q2          *f1time.QualifyingTime
	Q3          *f1time.QualifyingTime
}

// SprintResult is one driver's sprint outcome.
type SprintResult struct {
	Number       uint32
	Position     uint32
	PositionText Position
	Points       float64
	Driver       Driver
	Constructor  Constructor
	Grid         uint32
	Laps         uint32
	Status       string
	Time         *f1time.RaceTime
	FastestLap   *FastestLap
}

// RaceResult is one driver's race outcome. Number is NoNumber when the source has none.
type RaceResult struct {
	Number       uint32
	Position     uint32
	PositionText Position
	Points       float64
	Driver       Driver
	Constructor  Constructor
	Grid         uint32
	Laps         uint32
	Status       string
	Time         *f1time.RaceTime
	FastestLap   *FastestLap
}

// Timing is one driver's time on a lap.
type Timing struct {
	DriverID string
	Position uint32
	Time     time.Duration
}

// Lap holds the timings of every driver requested for one lap.
type Lap struct {
	Number  uint32
	Timings []Timing
}

// DriverLap flattens a Lap that holds exactly one driver's Timing.
type DriverLap struct {
	Number   uint32
	Position uint32
	Time     time.Duration
}

// NewDriverLap verifies lap holds a single timing belonging to driverID.
func NewDriverLap(lap Lap, driverID string) (DriverLap, error) {
	timing, err := One(lap.Timings)
	if err != nil {
		return DriverLap{}, fmt.Errorf("lap %d timings: %w", lap.Number, err)
	}
	if timing.DriverID != driverID {
		return DriverLap{}, fmt.Errorf("%w: expected driver %q but got %q",
			ErrUnexpectedData, driverID, timing.DriverID)
	}
	return DriverLap{Number: lap.Number, Position: timing.Position, Time: timing.Time}, nil
}

// PitStop is a single stop by one driver.
type PitStop struct {
	DriverID string
	Lap      uint32
	Stop     uint32
	Time     f1time.TimeOfDay
	Duration time.Duration
}
