package pagination

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ramonrsv/f1-data/pkg/f1time"
	"github.com/ramonrsv/f1-data/pkg/jolpica"
)

const testURL = "http://api.jolpi.ca/ergast/f1/seasons.json"

// seasonsPage returns the page of a seasons query starting at offset, holding
// min(limit, total-offset) seasons numbered from 1950+offset.
func seasonsPage(limit, offset, total uint32) *jolpica.Response {
	n := min(limit, total-min(offset, total))
	seasons := make(jolpica.Seasons, 0, n)
	for i := uint32(0); i < n; i++ {
		year := 1950 + offset + i
		seasons = append(seasons, jolpica.Season{
			Season: year,
			URL:    fmt.Sprintf("https://en.wikipedia.org/wiki/%d_Formula_One_season", year),
		})
	}
	return &jolpica.Response{
		Series:     "f1",
		URL:        testURL,
		Pagination: jolpica.Pagination{Limit: limit, Offset: offset, Total: total},
		Table:      seasons,
	}
}

func racesPage(limit, offset, total uint32, races ...jolpica.Race[jolpica.Payload]) *jolpica.Response {
	return &jolpica.Response{
		Series:     "f1",
		URL:        "http://api.jolpi.ca/ergast/f1/2023/results.json",
		Pagination: jolpica.Pagination{Limit: limit, Offset: offset, Total: total},
		Table:      jolpica.Races(races),
	}
}

func race(round uint32, payload jolpica.Payload) jolpica.Race[jolpica.Payload] {
	return jolpica.Race[jolpica.Payload]{
		Season:   2023,
		Round:    round,
		URL:      fmt.Sprintf("https://en.wikipedia.org/wiki/2023_round_%d", round),
		RaceName: fmt.Sprintf("Round %d Grand Prix", round),
		Circuit:  jolpica.Circuit{CircuitID: fmt.Sprintf("circuit_%d", round)},
		Date:     f1time.Date{Year: 2023, Month: time.March, Day: int(round)},
		Payload:  payload,
	}
}

func results(drivers ...string) jolpica.RaceResults {
	out := make(jolpica.RaceResults, len(drivers))
	for i, d := range drivers {
		out[i] = jolpica.RaceResult{Driver: jolpica.Driver{DriverID: d}}
	}
	return out
}

// fakeFetcher serves prepared pages by offset and records every request.
type fakeFetcher struct {
	mu    sync.Mutex
	pages map[uint32]*jolpica.Response
	errs  map[uint32]error
	calls []jolpica.Page
}

func newFakeFetcher(pages ...*jolpica.Response) *fakeFetcher {
	f := &fakeFetcher{
		pages: make(map[uint32]*jolpica.Response),
		errs:  make(map[uint32]error),
	}
	for _, p := range pages {
		f.pages[p.Offset] = p
	}
	return f
}

func (f *fakeFetcher) FetchPage(_ context.Context, _ jolpica.Resource, page jolpica.Page) (*jolpica.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, page)
	if err := f.errs[page.Offset]; err != nil {
		return nil, err
	}
	resp, ok := f.pages[page.Offset]
	if !ok {
		return nil, errors.New("no page at offset " + fmt.Sprint(page.Offset))
	}
	return resp, nil
}

func (f *fakeFetcher) Calls() []jolpica.Page {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]jolpica.Page(nil), f.calls...)
}
