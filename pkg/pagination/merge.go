package pagination

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/ramonrsv/f1-data/pkg/jolpica"
)

// Merge combines the pages of one query, in fetch order, into a single Response.
//
// Every page must carry the same ResponseInfo and Table kind. The first page must start at
// offset 0, each page must start where the previous one ended, and the last page must be the
// last. Races describing the same event are combined into one race whose payload lists
// follow first-seen order.
//
// The merged Pagination has Offset 0, Limit equal to the number of records aggregated (for
// races, the number of payload rows) and Total equal to the largest total any page reported.
// The inputs are not modified.
func Merge(pages []*jolpica.Response) (*jolpica.Response, error) {
	if len(pages) == 0 {
		return nil, errors.New("merge: no pages")
	}

	for i, page := range pages {
		if page == nil || page.Table == nil {
			return nil, &InconsistentError{Field: "table", Page: i + 1, Want: "table", Got: "nil"}
		}
	}

	first := pages[0]
	if first.Offset != 0 {
		return nil, &InconsistentError{Field: "offset", Page: 1, Want: "0", Got: fmtUint(first.Offset)}
	}
	if last := pages[len(pages)-1]; !last.IsLastPage() {
		return nil, &InconsistentError{
			Field: "pagination",
			Page:  len(pages),
			Want:  "last page",
			Got:   fmt.Sprintf("%+v", last.Pagination),
		}
	}

	info := first.Info()
	kind := first.Table.Kind()
	total := first.Total

	var races *raceMerger
	if r, ok := first.Table.(jolpica.Races); ok {
		races = newRaceMerger(len(r))
		if err := races.add(r, 1); err != nil {
			return nil, err
		}
	}
	table := first.Table

	for i, page := range pages[1:] {
		n := i + 2
		prev := pages[i]

		if got := page.Info(); got != info {
			return nil, &InconsistentError{Field: "info", Page: n, Want: fmt.Sprintf("%+v", info), Got: fmt.Sprintf("%+v", got)}
		}
		if got := page.Table.Kind(); got != kind {
			return nil, &InconsistentError{Field: "table", Page: n, Want: string(kind), Got: string(got)}
		}
		if want := uint64(prev.Offset) + uint64(prev.Limit); uint64(page.Offset) != want {
			return nil, &InconsistentError{Field: "offset", Page: n, Want: strconv.FormatUint(want, 10), Got: fmtUint(page.Offset)}
		}
		total = max(total, page.Total)

		if races != nil {
			if err := races.add(page.Table.(jolpica.Races), n); err != nil {
				return nil, err
			}
			continue
		}
		var err error
		if table, err = jolpica.AppendTable(table, page.Table); err != nil {
			return nil, &InconsistentError{Field: "table", Page: n, Err: err}
		}
	}

	if races != nil {
		table = races.races
	}

	return &jolpica.Response{
		XMLNS:  info.XMLNS,
		Series: info.Series,
		URL:    info.URL,
		Pagination: jolpica.Pagination{
			Limit:  uint32(table.Rows()),
			Offset: 0,
			Total:  total,
		},
		Table: table,
	}, nil
}

// raceMerger groups races by identity, keeping the order in which events first appear.
type raceMerger struct {
	races jolpica.Races
	index map[jolpica.RaceIdentity]int
}

func newRaceMerger(capacity int) *raceMerger {
	return &raceMerger{
		races: make(jolpica.Races, 0, capacity),
		index: make(map[jolpica.RaceIdentity]int, capacity),
	}
}

func (m *raceMerger) add(races jolpica.Races, page int) error {
	for _, race := range races {
		id := race.Identity()
		i, seen := m.index[id]
		if !seen {
			m.index[id] = len(m.races)
			m.races = append(m.races, race)
			continue
		}
		payload, err := jolpica.AppendPayload(m.races[i].Payload, race.Payload)
		if err != nil {
			return &InconsistentError{Field: "payload", Page: page, Err: err}
		}
		m.races[i].Payload = payload
	}
	return nil
}

func fmtUint(v uint32) string {
	return strconv.FormatUint(uint64(v), 10)
}
