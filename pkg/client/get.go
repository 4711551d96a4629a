package client

import (
	"context"
	"fmt"

	"github.com/ramonrsv/f1-data/pkg/jolpica"
)

// SessionRecord is a per-driver result of one session.
type SessionRecord interface {
	jolpica.QualifyingResult | jolpica.SprintResult | jolpica.RaceResult
}

func sessionResourceOf[T SessionRecord]() jolpica.ResourceKind {
	switch any(*new(T)).(type) {
	case jolpica.QualifyingResult:
		return jolpica.ResourceQualifyingResults
	case jolpica.SprintResult:
		return jolpica.ResourceSprintResults
	default:
		return jolpica.ResourceRaceResults
	}
}

func (c *Client) query(ctx context.Context, kind jolpica.ResourceKind, filters jolpica.Filters) (*jolpica.Response, error) {
	return c.GetResponse(ctx, jolpica.NewResource(kind, filters))
}

// GetTable fetches kind and extracts its records as T.
func GetTable[T jolpica.TableRecord](ctx context.Context, c *Client, kind jolpica.ResourceKind, filters jolpica.Filters) ([]T, error) {
	resp, err := c.query(ctx, kind, filters)
	if err != nil {
		return nil, err
	}
	return jolpica.Extract[T](resp.Table)
}

// GetTableOne fetches kind and requires exactly one record.
func GetTableOne[T jolpica.TableRecord](ctx context.Context, c *Client, kind jolpica.ResourceKind, filters jolpica.Filters) (T, error) {
	resp, err := c.query(ctx, kind, filters)
	if err != nil {
		var zero T
		return zero, err
	}
	return jolpica.ExtractOne[T](resp.Table)
}

// GetSeasons returns the seasons matching filters.
func (c *Client) GetSeasons(ctx context.Context, filters jolpica.Filters) ([]jolpica.Season, error) {
	return GetTable[jolpica.Season](ctx, c, jolpica.ResourceSeasonList, filters)
}

// GetSeason returns one season.
func (c *Client) GetSeason(ctx context.Context, season uint32) (jolpica.Season, error) {
	return GetTableOne[jolpica.Season](ctx, c, jolpica.ResourceSeasonList, jolpica.Filters{}.WithSeason(season))
}

// GetDrivers returns the drivers matching filters.
func (c *Client) GetDrivers(ctx context.Context, filters jolpica.Filters) ([]jolpica.Driver, error) {
	return GetTable[jolpica.Driver](ctx, c, jolpica.ResourceDriverInfo, filters)
}

// GetDriver returns the driver with driverID.
func (c *Client) GetDriver(ctx context.Context, driverID string) (jolpica.Driver, error) {
	return GetTableOne[jolpica.Driver](ctx, c, jolpica.ResourceDriverInfo, jolpica.Filters{}.WithDriverID(driverID))
}

// GetConstructors returns the constructors matching filters.
func (c *Client) GetConstructors(ctx context.Context, filters jolpica.Filters) ([]jolpica.Constructor, error) {
	return GetTable[jolpica.Constructor](ctx, c, jolpica.ResourceConstructorInfo, filters)
}

// GetConstructor returns the constructor with constructorID.
func (c *Client) GetConstructor(ctx context.Context, constructorID string) (jolpica.Constructor, error) {
	return GetTableOne[jolpica.Constructor](ctx, c, jolpica.ResourceConstructorInfo, jolpica.Filters{}.WithConstructorID(constructorID))
}

// GetCircuits returns the circuits matching filters.
func (c *Client) GetCircuits(ctx context.Context, filters jolpica.Filters) ([]jolpica.Circuit, error) {
	return GetTable[jolpica.Circuit](ctx, c, jolpica.ResourceCircuitInfo, filters)
}

// GetCircuit returns the circuit with circuitID.
func (c *Client) GetCircuit(ctx context.Context, circuitID string) (jolpica.Circuit, error) {
	return GetTableOne[jolpica.Circuit](ctx, c, jolpica.ResourceCircuitInfo, jolpica.Filters{}.WithCircuitID(circuitID))
}

// GetStatuses returns the finishing statuses matching filters, with their counts.
func (c *Client) GetStatuses(ctx context.Context, filters jolpica.Filters) ([]jolpica.Status, error) {
	return GetTable[jolpica.Status](ctx, c, jolpica.ResourceFinishingStatus, filters)
}

// GetRaceSchedules returns the schedules of the events matching filters.
func (c *Client) GetRaceSchedules(ctx context.Context, filters jolpica.Filters) ([]jolpica.Race[jolpica.Schedule], error) {
	resp, err := c.query(ctx, jolpica.ResourceRaceSchedule, filters)
	if err != nil {
		return nil, err
	}
	races, err := resp.Races()
	if err != nil {
		return nil, err
	}
	return jolpica.ExtractSchedules(races)
}

// GetRaceSchedule returns the schedule of one event.
func (c *Client) GetRaceSchedule(ctx context.Context, season, round uint32) (jolpica.Race[jolpica.Schedule], error) {
	schedules, err := c.GetRaceSchedules(ctx, jolpica.Filters{}.WithSeason(season).WithRound(round))
	if err != nil {
		return jolpica.Race[jolpica.Schedule]{}, err
	}
	schedule, err := jolpica.One(schedules)
	if err != nil {
		return jolpica.Race[jolpica.Schedule]{}, fmt.Errorf("race %d/%d: %w", season, round, err)
	}
	return schedule, nil
}

func sessionRaces[T SessionRecord](ctx context.Context, c *Client, filters jolpica.Filters) ([]jolpica.Race[jolpica.Payload], error) {
	resp, err := c.query(ctx, sessionResourceOf[T](), filters)
	if err != nil {
		return nil, err
	}
	return resp.Races()
}

// SessionResults returns every event matching filters with all of its results.
func SessionResults[T SessionRecord](ctx context.Context, c *Client, filters jolpica.Filters) ([]jolpica.Race[[]T], error) {
	races, err := sessionRaces[T](ctx, c, filters)
	if err != nil {
		return nil, err
	}
	return jolpica.ExtractRacePayloads[T](races)
}

// SessionResultsForEvent requires filters to match exactly one event and returns all of its
// results.
func SessionResultsForEvent[T SessionRecord](ctx context.Context, c *Client, filters jolpica.Filters) (jolpica.Race[[]T], error) {
	races, err := sessionRaces[T](ctx, c, filters)
	if err != nil {
		return jolpica.Race[[]T]{}, err
	}
	race, err := jolpica.One(races)
	if err != nil {
		return jolpica.Race[[]T]{}, fmt.Errorf("races: %w", err)
	}
	return jolpica.ExtractPayload[T](race)
}

// SessionResultForEvents returns every event matching filters, each of which must hold
// exactly one result, e.g. the winner of every race of a season.
func SessionResultForEvents[T SessionRecord](ctx context.Context, c *Client, filters jolpica.Filters) ([]jolpica.Race[T], error) {
	races, err := sessionRaces[T](ctx, c, filters)
	if err != nil {
		return nil, err
	}
	return jolpica.ExtractRacePayloadOnes[T](races)
}

// SessionResult requires filters to match exactly one result of exactly one event.
func SessionResult[T SessionRecord](ctx context.Context, c *Client, filters jolpica.Filters) (jolpica.Race[T], error) {
	races, err := sessionRaces[T](ctx, c, filters)
	if err != nil {
		return jolpica.Race[T]{}, err
	}
	race, err := jolpica.One(races)
	if err != nil {
		return jolpica.Race[T]{}, fmt.Errorf("races: %w", err)
	}
	return jolpica.ExtractPayloadOne[T](race)
}

// GetQualifyingResults returns the qualifying results of every event matching filters.
func (c *Client) GetQualifyingResults(ctx context.Context, filters jolpica.Filters) ([]jolpica.Race[[]jolpica.QualifyingResult], error) {
	return SessionResults[jolpica.QualifyingResult](ctx, c, filters)
}

// GetQualifyingResultsForEvent returns the qualifying results of the one event matching filters.
func (c *Client) GetQualifyingResultsForEvent(ctx context.Context, filters jolpica.Filters) (jolpica.Race[[]jolpica.QualifyingResult], error) {
	return SessionResultsForEvent[jolpica.QualifyingResult](ctx, c, filters)
}

// GetSprintResults returns the sprint results of every event matching filters.
func (c *Client) GetSprintResults(ctx context.Context, filters jolpica.Filters) ([]jolpica.Race[[]jolpica.SprintResult], error) {
	return SessionResults[jolpica.SprintResult](ctx, c, filters)
}

// GetSprintResultsForEvent returns the sprint results of the one event matching filters.
func (c *Client) GetSprintResultsForEvent(ctx context.Context, filters jolpica.Filters) (jolpica.Race[[]jolpica.SprintResult], error) {
	return SessionResultsForEvent[jolpica.SprintResult](ctx, c, filters)
}

// GetRaceResults returns the race results of every event matching filters.
func (c *Client) GetRaceResults(ctx context.Context, filters jolpica.Filters) ([]jolpica.Race[[]jolpica.RaceResult], error) {
	return SessionResults[jolpica.RaceResult](ctx, c, filters)
}

// GetRaceResultsForEvent returns the race results of the one event matching filters.
func (c *Client) GetRaceResultsForEvent(ctx context.Context, filters jolpica.Filters) (jolpica.Race[[]jolpica.RaceResult], error) {
	return SessionResultsForEvent[jolpica.RaceResult](ctx, c, filters)
}

// GetRaceResultForEvents returns one race result per event, e.g. with a finish position filter.
func (c *Client) GetRaceResultForEvents(ctx context.Context, filters jolpica.Filters) ([]jolpica.Race[jolpica.RaceResult], error) {
	return SessionResultForEvents[jolpica.RaceResult](ctx, c, filters)
}

// GetRaceResult returns the single race result matching filters.
func (c *Client) GetRaceResult(ctx context.Context, filters jolpica.Filters) (jolpica.Race[jolpica.RaceResult], error) {
	return SessionResult[jolpica.RaceResult](ctx, c, filters)
}

// GetLapTimings returns every driver's timing on one lap of one event.
func (c *Client) GetLapTimings(ctx context.Context, season, round, lap uint32) ([]jolpica.Timing, error) {
	resp, err := c.query(ctx, jolpica.ResourceLapTimes,
		jolpica.Filters{}.WithSeason(season).WithRound(round).WithLap(lap))
	if err != nil {
		return nil, err
	}
	return resp.LapTimings()
}

// GetDriverLaps returns every lap driverID completed in one event.
func (c *Client) GetDriverLaps(ctx context.Context, season, round uint32, driverID string) ([]jolpica.DriverLap, error) {
	resp, err := c.query(ctx, jolpica.ResourceLapTimes,
		jolpica.Filters{}.WithSeason(season).WithRound(round).WithDriverID(driverID))
	if err != nil {
		return nil, err
	}
	return resp.DriverLaps(driverID)
}

// GetPitStops returns the pit stops of the one event filters select. Season and round are
// required.
func (c *Client) GetPitStops(ctx context.Context, filters jolpica.Filters) ([]jolpica.PitStop, error) {
	resp, err := c.query(ctx, jolpica.ResourcePitStops, filters)
	if err != nil {
		return nil, err
	}
	return resp.PitStopList()
}
