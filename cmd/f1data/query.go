package main

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/pflag"

	"github.com/ramonrsv/f1-data/pkg/client"
	"github.com/ramonrsv/f1-data/pkg/f1time"
	"github.com/ramonrsv/f1-data/pkg/jolpica"
)

// filterParam is a filter settable as a flag or an HTTP query parameter.
type filterParam struct {
	name  string
	usage string
	apply func(f jolpica.Filters, value string) (jolpica.Filters, error)
}

func uintFilter(with func(jolpica.Filters, uint32) jolpica.Filters) func(jolpica.Filters, string) (jolpica.Filters, error) {
	return func(f jolpica.Filters, value string) (jolpica.Filters, error) {
		n, err := strconv.ParseUint(value, 10, 32)
		if err != nil {
			return f, fmt.Errorf("expected a non-negative number, got %q", value)
		}
		return with(f, uint32(n)), nil
	}
}

func stringFilter(with func(jolpica.Filters, string) jolpica.Filters) func(jolpica.Filters, string) (jolpica.Filters, error) {
	return func(f jolpica.Filters, value string) (jolpica.Filters, error) {
		if value == "" {
			return f, fmt.Errorf("expected an id")
		}
		return with(f, value), nil
	}
}

var filterParams = []filterParam{
	{"season", "season year", uintFilter(jolpica.Filters.WithSeason)},
	{"round", "round within the season (requires season)", uintFilter(jolpica.Filters.WithRound)},
	{"driver", "driver id, e.g. max_verstappen", stringFilter(jolpica.Filters.WithDriverID)},
	{"constructor", "constructor id, e.g. red_bull", stringFilter(jolpica.Filters.WithConstructorID)},
	{"circuit", "circuit id, e.g. monza", stringFilter(jolpica.Filters.WithCircuitID)},
	{"qualifying", "qualifying position", uintFilter(jolpica.Filters.WithQualifyingPos)},
	{"grid", "grid position", uintFilter(jolpica.Filters.WithGridPos)},
	{"sprint", "sprint finishing position", uintFilter(jolpica.Filters.WithSprintPos)},
	{"position", "race finishing position", uintFilter(jolpica.Filters.WithFinishPos)},
	{"fastest", "fastest lap rank", uintFilter(jolpica.Filters.WithFastestLapRank)},
	{"status", "finishing status id", uintFilter(jolpica.Filters.WithFinishingStatus)},
	{"lap", "lap number (laps, pitstops)", uintFilter(jolpica.Filters.WithLap)},
	{"stop", "pit stop number (pitstops)", uintFilter(jolpica.Filters.WithPitStop)},
}

func addFilterFlags(fs *pflag.FlagSet) {
	for _, p := range filterParams {
		fs.String(p.name, "", p.usage)
	}
}

// parseFilters builds Filters from whichever parameters lookup reports as set.
func parseFilters(lookup func(name string) (string, bool)) (jolpica.Filters, error) {
	var f jolpica.Filters
	for _, p := range filterParams {
		value, ok := lookup(p.name)
		if !ok {
			continue
		}
		var err error
		if f, err = p.apply(f, value); err != nil {
			return f, fmt.Errorf("--%s: %w", p.name, err)
		}
	}
	return f, nil
}

// flagLookup reads filters from flags given on the command line.
func flagLookup(fs *pflag.FlagSet) func(string) (string, bool) {
	return func(name string) (string, bool) {
		if !fs.Changed(name) {
			return "", false
		}
		value, _ := fs.GetString(name)
		return value, true
	}
}

// queryFunc runs one query and tabulates the result.
type queryFunc func(ctx context.Context, c *client.Client, f jolpica.Filters) (table.Writer, error)

type command struct {
	usage string
	run   queryFunc
}

var commands = map[string]command{
	"seasons":      {"list seasons", querySeasons},
	"drivers":      {"list drivers", queryDrivers},
	"constructors": {"list constructors", queryConstructors},
	"circuits":     {"list circuits", queryCircuits},
	"status":       {"count finishing statuses", queryStatuses},
	"schedule":     {"list race weekends", querySchedule},
	"qualifying":   {"qualifying results", queryQualifying},
	"sprint":       {"sprint results", querySprint},
	"results":      {"race results", queryResults},
	"laps":         {"lap timings (requires season and round)", queryLaps},
	"pitstops":     {"pit stops (requires season and round)", queryPitStops},
}

// commandNames returns the query commands in alphabetical order.
func commandNames() []string {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func newTable(header ...any) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row(header))
	return t
}

func querySeasons(ctx context.Context, c *client.Client, f jolpica.Filters) (table.Writer, error) {
	seasons, err := c.GetSeasons(ctx, f)
	if err != nil {
		return nil, err
	}
	t := newTable("Season", "URL")
	for _, s := range seasons {
		t.AppendRow(table.Row{s.Season, s.URL})
	}
	return t, nil
}

func queryDrivers(ctx context.Context, c *client.Client, f jolpica.Filters) (table.Writer, error) {
	drivers, err := c.GetDrivers(ctx, f)
	if err != nil {
		return nil, err
	}
	t := newTable("ID", "Code", "No.", "Name", "Born", "Nationality")
	for _, d := range drivers {
		t.AppendRow(table.Row{d.DriverID, optString(d.Code), optUint(d.PermanentNumber), d.FullName(), d.DateOfBirth, d.Nationality})
	}
	return t, nil
}

func queryConstructors(ctx context.Context, c *client.Client, f jolpica.Filters) (table.Writer, error) {
	constructors, err := c.GetConstructors(ctx, f)
	if err != nil {
		return nil, err
	}
	t := newTable("ID", "Name", "Nationality")
	for _, con := range constructors {
		t.AppendRow(table.Row{con.ConstructorID, con.Name, con.Nationality})
	}
	return t, nil
}

func queryCircuits(ctx context.Context, c *client.Client, f jolpica.Filters) (table.Writer, error) {
	circuits, err := c.GetCircuits(ctx, f)
	if err != nil {
		return nil, err
	}
	t := newTable("ID", "Name", "Locality", "Country")
	for _, ci := range circuits {
		t.AppendRow(table.Row{ci.CircuitID, ci.CircuitName, ci.Location.Locality, ci.Location.Country})
	}
	return t, nil
}

func queryStatuses(ctx context.Context, c *client.Client, f jolpica.Filters) (table.Writer, error) {
	statuses, err := c.GetStatuses(ctx, f)
	if err != nil {
		return nil, err
	}
	t := newTable("ID", "Status", "Count")
	total := 0
	for _, s := range statuses {
		t.AppendRow(table.Row{s.StatusID, s.Status, s.Count})
		total += int(s.Count)
	}
	t.AppendFooter(table.Row{"", "Total", total})
	return t, nil
}

func querySchedule(ctx context.Context, c *client.Client, f jolpica.Filters) (table.Writer, error) {
	races, err := c.GetRaceSchedules(ctx, f)
	if err != nil {
		return nil, err
	}
	t := newTable("Season", "Round", "Race", "Circuit", "Date", "Time", "Sprint")
	for _, r := range races {
		sprint := ""
		if r.Payload.Sprint != nil {
			sprint = r.Payload.Sprint.Date.String()
		}
		t.AppendRow(table.Row{r.Season, r.Round, r.RaceName, r.Circuit.CircuitName, r.Date, optTime(r.Time), sprint})
	}
	return t, nil
}

func queryQualifying(ctx context.Context, c *client.Client, f jolpica.Filters) (table.Writer, error) {
	races, err := c.GetQualifyingResults(ctx, f)
	if err != nil {
		return nil, err
	}
	t := newTable("Season", "Round", "Race", "Pos", "Driver", "Constructor", "Q1", "Q2", "Q3")
	for _, r := range races {
		for _, q := range r.Payload {
			t.AppendRow(table.Row{r.Season, r.Round, r.RaceName, q.Position, q.Driver.FullName(), q.Constructor.Name,
				optQualifying(q.Q1), optQualifying(q.Q2), optQualifying(q.Q3)})
		}
		t.AppendSeparator()
	}
	return t, nil
}

func querySprint(ctx context.Context, c *client.Client, f jolpica.Filters) (table.Writer, error) {
	races, err := c.GetSprintResults(ctx, f)
	if err != nil {
		return nil, err
	}
	t := resultTable()
	for _, r := range races {
		for _, s := range r.Payload {
			appendResult(t, r.Season, r.Round, r.RaceName, jolpica.RaceResult(s))
		}
		t.AppendSeparator()
	}
	return t, nil
}

func queryResults(ctx context.Context, c *client.Client, f jolpica.Filters) (table.Writer, error) {
	races, err := c.GetRaceResults(ctx, f)
	if err != nil {
		return nil, err
	}
	t := resultTable()
	for _, r := range races {
		for _, res := range r.Payload {
			appendResult(t, r.Season, r.Round, r.RaceName, res)
		}
		t.AppendSeparator()
	}
	return t, nil
}

func resultTable() table.Writer {
	t := newTable("Season", "Round", "Race", "Pos", "Driver", "Constructor", "Grid", "Laps", "Status", "Points", "Time")
	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: "Points", Align: text.AlignRight},
		{Name: "Time", Align: text.AlignRight},
	})
	return t
}

func appendResult(t table.Writer, season, round uint32, race string, r jolpica.RaceResult) {
	t.AppendRow(table.Row{season, round, race, r.PositionText, r.Driver.FullName(), r.Constructor.Name,
		r.Grid, r.Laps, r.Status, strconv.FormatFloat(r.Points, 'f', -1, 64), optRaceTime(r.Time)})
}

func queryLaps(ctx context.Context, c *client.Client, f jolpica.Filters) (table.Writer, error) {
	if f.Season == nil || f.Round == nil {
		return nil, fmt.Errorf("%w: laps requires --season and --round", jolpica.ErrInvalidFilters)
	}

	// One driver over the whole race.
	if f.DriverID != nil && f.Lap == nil {
		laps, err := c.GetDriverLaps(ctx, *f.Season, *f.Round, *f.DriverID)
		if err != nil {
			return nil, err
		}
		t := newTable("Lap", "Pos", "Time")
		for _, l := range laps {
			t.AppendRow(table.Row{l.Number, l.Position, f1time.FormatDuration(l.Time)})
		}
		return t, nil
	}

	resp, err := c.GetResponse(ctx, jolpica.NewResource(jolpica.ResourceLapTimes, f))
	if err != nil {
		return nil, err
	}
	races, err := resp.Races()
	if err != nil {
		return nil, err
	}
	laps, err := jolpica.ExtractRacePayloads[jolpica.Lap](races)
	if err != nil {
		return nil, err
	}
	t := newTable("Lap", "Driver", "Pos", "Time")
	for _, r := range laps {
		for _, l := range r.Payload {
			for _, timing := range l.Timings {
				t.AppendRow(table.Row{l.Number, timing.DriverID, timing.Position, f1time.FormatDuration(timing.Time)})
			}
		}
	}
	return t, nil
}

func queryPitStops(ctx context.Context, c *client.Client, f jolpica.Filters) (table.Writer, error) {
	stops, err := c.GetPitStops(ctx, f)
	if err != nil {
		return nil, err
	}
	t := newTable("Driver", "Lap", "Stop", "Time", "Duration")
	for _, s := range stops {
		t.AppendRow(table.Row{s.DriverID, s.Lap, s.Stop, s.Time, f1time.FormatDuration(s.Duration)})
	}
	return t, nil
}

// render writes t in format. Unknown formats render as a table.
func render(t table.Writer, format string) string {
	switch strings.ToLower(format) {
	case "csv":
		return t.RenderCSV()
	case "markdown":
		return t.RenderMarkdown()
	case "html":
		return t.RenderHTML()
	default:
		return t.Render()
	}
}

func optString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func optUint(n *uint32) string {
	if n == nil {
		return ""
	}
	return strconv.FormatUint(uint64(*n), 10)
}

func optTime(t *f1time.TimeOfDay) string {
	if t == nil {
		return ""
	}
	return t.String()
}

func optQualifying(q *f1time.QualifyingTime) string {
	if q == nil {
		return ""
	}
	return q.String()
}

func optRaceTime(r *f1time.RaceTime) string {
	if r == nil {
		return ""
	}
	return r.String()
}
