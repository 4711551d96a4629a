package jolpica

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// ResourceKind selects an API endpoint.
type ResourceKind int

const (
	ResourceSeasonList ResourceKind = iota
	ResourceDriverInfo
	ResourceConstructorInfo
	ResourceCircuitInfo
	ResourceRaceSchedule
	ResourceQualifyingResults
	ResourceSprintResults
	ResourceRaceResults
	ResourceFinishingStatus
	ResourceLapTimes
	ResourcePitStops
)

var resourceKeys = map[ResourceKind]string{
	ResourceSeasonList:        "/seasons",
	ResourceDriverInfo:        "/drivers",
	ResourceConstructorInfo:   "/constructors",
	ResourceCircuitInfo:       "/circuits",
	ResourceRaceSchedule:      "/races",
	ResourceQualifyingResults: "/qualifying",
	ResourceSprintResults:     "/sprint",
	ResourceRaceResults:       "/results",
	ResourceFinishingStatus:   "/status",
	ResourceLapTimes:          "/laps",
	ResourcePitStops:          "/pitstops",
}

// String returns the endpoint name without its leading slash, e.g. "results".
func (k ResourceKind) String() string {
	if key, ok := resourceKeys[k]; ok {
		return key[1:]
	}
	return "unknown"
}

// Filters narrow a Resource. Nil fields are not applied.
type Filters struct {
	Season          *uint32
	Round           *uint32
	DriverID        *string
	ConstructorID   *string
	CircuitID       *string
	QualifyingPos   *uint32
	GridPos         *uint32
	SprintPos       *uint32
	FinishPos       *uint32
	FastestLapRank  *uint32
	FinishingStatus *uint32

	// Lap and PitStop apply only to ResourceLapTimes and ResourcePitStops.
	Lap     *uint32
	PitStop *uint32
}

func (f Filters) WithSeason(season uint32) Filters       { f.Season = &season; return f }
func (f Filters) WithRound(round uint32) Filters         { f.Round = &round; return f }
func (f Filters) WithDriverID(id string) Filters         { f.DriverID = &id; return f }
func (f Filters) WithConstructorID(id string) Filters    { f.ConstructorID = &id; return f }
func (f Filters) WithCircuitID(id string) Filters        { f.CircuitID = &id; return f }
func (f Filters) WithQualifyingPos(pos uint32) Filters   { f.QualifyingPos = &pos; return f }
func (f Filters) WithGridPos(pos uint32) Filters         { f.GridPos = &pos; return f }
func (f Filters) WithSprintPos(pos uint32) Filters       { f.SprintPos = &pos; return f }
func (f Filters) WithFinishPos(pos uint32) Filters       { f.FinishPos = &pos; return f }
func (f Filters) WithFastestLapRank(rank uint32) Filters { f.FastestLapRank = &rank; return f }
func (f Filters) WithFinishingStatus(id uint32) Filters  { f.FinishingStatus = &id; return f }
func (f Filters) WithLap(lap uint32) Filters             { f.Lap = &lap; return f }
func (f Filters) WithPitStop(stop uint32) Filters        { f.PitStop = &stop; return f }

// Resource is an endpoint plus the filters applied to it.
type Resource struct {
	Kind    ResourceKind
	Filters Filters
}

// NewResource is shorthand for Resource{Kind: kind, Filters: filters}.
func NewResource(kind ResourceKind, filters Filters) Resource {
	return Resource{Kind: kind, Filters: filters}
}

// ErrInvalidFilters is returned for filter combinations the API cannot serve.
var ErrInvalidFilters = errors.New("invalid filters")

type pathPair struct {
	key   string
	value string
}

func optUint(v *uint32) string {
	if v == nil {
		return ""
	}
	return "/" + strconv.FormatUint(uint64(*v), 10)
}

// optString renders an id filter as a single escaped path segment.
func optString(v *string) string {
	if v == nil {
		return ""
	}
	return "/" + url.PathEscape(*v)
}

func (r Resource) validate() error {
	f := r.Filters
	if f.Round != nil && f.Season == nil {
		return fmt.Errorf("%w: round requires season", ErrInvalidFilters)
	}
	switch r.Kind {
	case ResourceLapTimes, ResourcePitStops:
		if f.Season == nil || f.Round == nil {
			return fmt.Errorf("%w: %s requires season and round", ErrInvalidFilters, r.Kind)
		}
		if r.Kind == ResourceLapTimes && f.PitStop != nil {
			return fmt.Errorf("%w: pit stop filter not supported for %s", ErrInvalidFilters, r.Kind)
		}
	default:
		if f.Lap != nil || f.PitStop != nil {
			return fmt.Errorf("%w: lap and pit stop filters not supported for %s", ErrInvalidFilters, r.Kind)
		}
	}
	return nil
}

func (r Resource) pairs() []pathPair {
	f := r.Filters
	switch r.Kind {
	case ResourceLapTimes:
		return []pathPair{
			{"", optUint(f.Season)},
			{"", optUint(f.Round)},
			{"/laps", optUint(f.Lap)},
			{"/drivers", optString(f.DriverID)},
		}
	case ResourcePitStops:
		return []pathPair{
			{"", optUint(f.Season)},
			{"", optUint(f.Round)},
			{"/laps", optUint(f.Lap)},
			{"/drivers", optString(f.DriverID)},
			{"/pitstops", optUint(f.PitStop)},
		}
	default:
		return []pathPair{
			{"", optUint(f.Season)},
			{"", optUint(f.Round)},
			{"/drivers", optString(f.DriverID)},
			{"/constructors", optString(f.ConstructorID)},
			{"/circuits", optString(f.CircuitID)},
			{"/qualifying", optUint(f.QualifyingPos)},
			{"/grid", optUint(f.GridPos)},
			{"/sprint", optUint(f.SprintPos)},
			{"/results", optUint(f.FinishPos)},
			{"/fastest", optUint(f.FastestLapRank)},
			{"/status", optUint(f.FinishingStatus)},
		}
	}
}

// Endpoint renders the request path, e.g. "/2023/4/drivers/leclerc/laps/1". The resource key
// is always last, carrying its own filter value when it doubles as a filter.
func (r Resource) Endpoint() (string, error) {
	resourceKey, ok := resourceKeys[r.Kind]
	if !ok {
		return "", fmt.Errorf("%w: unknown resource kind %d", ErrInvalidFilters, int(r.Kind))
	}
	if err := r.validate(); err != nil {
		return "", err
	}

	pairs := r.pairs()
	resource := pathPair{key: resourceKey}
	for i, p := range pairs {
		if p.key == resourceKey {
			resource = p
			pairs = append(pairs[:i], pairs[i+1:]...)
			break
		}
	}
	pairs = append(pairs, resource)

	var b strings.Builder
	for _, p := range pairs {
		if p.value == "" && p.key != resourceKey {
			continue
		}
		b.WriteString(p.key)
		b.WriteString(p.value)
	}
	return b.String(), nil
}

// URL renders the full request URL against base. A nil page omits limit and offset, so the
// API applies its defaults.
func (r Resource) URL(base string, page *Page) (string, error) {
	endpoint, err := r.Endpoint()
	if err != nil {
		return "", err
	}
	u, err := url.Parse(strings.TrimSuffix(base, "/") + endpoint + ".json")
	if err != nil {
		return "", fmt.Errorf("parse url: %w", err)
	}
	if page != nil {
		q := u.Query()
		q.Set("limit", strconv.FormatUint(uint64(page.Limit), 10))
		q.Set("offset", strconv.FormatUint(uint64(page.Offset), 10))
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}
