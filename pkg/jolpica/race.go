package jolpica

import "github.com/ramonrsv/f1-data/pkg/f1time"

// Race is a single event: the fields every race request returns plus a Payload whose shape
// depends on the resource that was requested.
type Race[P any] struct {
	Season   uint32
	Round    uint32
	URL      string
	RaceName string
	Circuit  Circuit
	Date     f1time.Date
	Time     *f1time.TimeOfDay
	Payload  P
}

// RaceIdentity is every field of a Race except its Payload. It is comparable, so it can be
// used with == and as a map key.
//
// It must list the same fields as Race; TestRaceIdentityCoversRaceFields enforces this.
type RaceIdentity struct {
	Season   uint32
	Round    uint32
	URL      string
	RaceName string
	Circuit  Circuit
	Date     f1time.Date
	Time     f1time.NullTimeOfDay
}

// Identity projects r onto its identifying fields.
func (r Race[P]) Identity() RaceIdentity {
	return RaceIdentity{
		Season:   r.Season,
		Round:    r.Round,
		URL:      r.URL,
		RaceName: r.RaceName,
		Circuit:  r.Circuit,
		Date:     r.Date,
		Time:     f1time.NullTimeOfDayFrom(r.Time),
	}
}

// SameEvent reports whether a and b describe the same event, regardless of payload.
func SameEvent[P, Q any](a Race[P], b Race[Q]) bool {
	return a.Identity() == b.Identity()
}

// WithPayload returns a copy of r carrying payload instead.
func WithPayload[P, Q any](r Race[P], payload Q) Race[Q] {
	return Race[Q]{
		Season:   r.Season,
		Round:    r.Round,
		URL:      r.URL,
		RaceName: r.RaceName,
		Circuit:  r.Circuit,
		Date:     r.Date,
		Time:     r.Time,
		Payload:  payload,
	}
}

// PayloadKind names a Payload variant by its wire tag.
type PayloadKind string

const (
	PayloadQualifyingResults PayloadKind = "QualifyingResults"
	PayloadSprintResults     PayloadKind = "SprintResults"
	PayloadRaceResults       PayloadKind = "Results"
	PayloadLaps              PayloadKind = "Laps"
	PayloadPitStops          PayloadKind = "PitStops"
	PayloadSchedule          PayloadKind = "Schedule"
)

// taggedPayloads are the payload kinds selected by a key in the race object. Schedule is
// never tagged; it is what a race decodes to when none of these keys is present.
var taggedPayloads = []PayloadKind{
	PayloadQualifyingResults,
	PayloadSprintResults,
	PayloadRaceResults,
	PayloadLaps,
	PayloadPitStops,
}

// Payload is the variable part of a Race. It is one of QualifyingResults, SprintResults,
// RaceResults, Laps, PitStops or Schedule.
type Payload interface {
	Kind() PayloadKind
	// Rows is the number of upstream rows the payload accounts for in pagination.
	Rows() int
	records() any
}

// PayloadRecord is a type held in a list Payload.
type PayloadRecord interface {
	QualifyingResult | SprintResult | RaceResult | Lap | PitStop
}

type (
	QualifyingResults []QualifyingResult
	SprintResults     []SprintResult
	RaceResults       []RaceResult
	Laps              []Lap
	PitStops          []PitStop
)

func (QualifyingResults) Kind() PayloadKind { return PayloadQualifyingResults }
func (SprintResults) Kind() PayloadKind     { return PayloadSprintResults }
func (RaceResults) Kind() PayloadKind       { return PayloadRaceResults }
func (Laps) Kind() PayloadKind              { return PayloadLaps }
func (PitStops) Kind() PayloadKind          { return PayloadPitStops }
func (Schedule) Kind() PayloadKind          { return PayloadSchedule }

func (p QualifyingResults) Rows() int { return len(p) }
func (p SprintResults) Rows() int     { return len(p) }
func (p RaceResults) Rows() int       { return len(p) }
func (p PitStops) Rows() int          { return len(p) }
func (Schedule) Rows() int            { return 1 }

// Rows counts timings, since the API paginates lap data by timing.
func (p Laps) Rows() int {
	n := 0
	for _, lap := range p {
		n += len(lap.Timings)
	}
	return n
}

func (p QualifyingResults) records() any { return []QualifyingResult(p) }
func (p SprintResults) records() any     { return []SprintResult(p) }
func (p RaceResults) records() any       { return []RaceResult(p) }
func (p Laps) records() any              { return []Lap(p) }
func (p PitStops) records() any          { return []PitStop(p) }
func (Schedule) records() any            { return nil }

// DateTime is the start of a session. Time is nil for older seasons.
type DateTime struct {
	Date f1time.Date
	Time *f1time.TimeOfDay
}

// Schedule lists the non-race sessions of an event. Every field is optional.
type Schedule struct {
	FirstPractice    *DateTime
	SecondPractice   *DateTime
	ThirdPractice    *DateTime
	Qualifying       *DateTime
	Sprint           *DateTime
	SprintShootout   *DateTime
	SprintQualifying *DateTime
}

// payloadKindOf returns the variant that holds []T.
func payloadKindOf[T PayloadRecord]() PayloadKind {
	switch any(*new(T)).(type) {
	case QualifyingResult:
		return PayloadQualifyingResults
	case SprintResult:
		return PayloadSprintResults
	case RaceResult:
		return PayloadRaceResults
	case Lap:
		return PayloadLaps
	default:
		return PayloadPitStops
	}
}

// AppendPayload concatenates two payloads of the same kind. Appending two Schedules keeps the
// first, since a schedule is not paginated.
func AppendPayload(a, b Payload) (Payload, error) {
	if a.Kind() != b.Kind() {
		return nil, &WrongVariantError{Layer: "payload", Want: string(a.Kind()), Got: string(b.Kind())}
	}
	switch a := a.(type) {
	case QualifyingResults:
		return append(a[:len(a):len(a)], b.(QualifyingResults)...), nil
	case SprintResults:
		return append(a[:len(a):len(a)], b.(SprintResults)...), nil
	case RaceResults:
		return append(a[:len(a):len(a)], b.(RaceResults)...), nil
	case Laps:
		return appendLaps(a, b.(Laps)), nil
	case PitStops:
		return append(a[:len(a):len(a)], b.(PitStops)...), nil
	default:
		return a, nil
	}
}

// appendLaps merges b into a. A lap split across pages has its timings joined.
func appendLaps(a, b Laps) Laps {
	out := make(Laps, len(a), len(a)+len(b))
	copy(out, a)
	for _, lap := range b {
		if n := len(out); n > 0 && out[n-1].Number == lap.Number {
			timings := make([]Timing, 0, len(out[n-1].Timings)+len(lap.Timings))
			timings = append(timings, out[n-1].Timings...)
			out[n-1].Timings = append(timings, lap.Timings...)
			continue
		}
		out = append(out, lap)
	}
	return out
}
