package jolpica

import "fmt"

// Response is one decoded page. It is never modified after decoding; merging pages produces
// a new Response.
type Response struct {
	XMLNS  string
	Series string
	URL    string
	Pagination
	Table Table
}

// ResponseInfo is the part of a Response that must not differ between pages of one query.
type ResponseInfo struct {
	XMLNS  string
	Series string
	URL    string
}

// Info returns the non-pagination metadata of r.
func (r *Response) Info() ResponseInfo {
	return ResponseInfo{XMLNS: r.XMLNS, Series: r.Series, URL: r.URL}
}

// TableKind names a Table variant by its wire key.
type TableKind string

const (
	TableSeasons      TableKind = "SeasonTable"
	TableDrivers      TableKind = "DriverTable"
	TableConstructors TableKind = "ConstructorTable"
	TableCircuits     TableKind = "CircuitTable"
	TableRaces        TableKind = "RaceTable"
	TableStatuses     TableKind = "StatusTable"
)

// Table is the list a Response carries. It is one of Seasons, Drivers, Constructors,
// Circuits, Races or Statuses.
type Table interface {
	Kind() TableKind
	// Rows is the number of upstream rows the table accounts for in pagination.
	Rows() int
	records() any
}

// TableRecord is a type held in a Table.
type TableRecord interface {
	Season | Driver | Constructor | Circuit | Race[Payload] | Status
}

type (
	Seasons      []Season
	Drivers      []Driver
	Constructors []Constructor
	Circuits     []Circuit
	Races        []Race[Payload]
	Statuses     []Status
)

func (Seasons) Kind() TableKind      { return TableSeasons }
func (Drivers) Kind() TableKind      { return TableDrivers }
func (Constructors) Kind() TableKind { return TableConstructors }
func (Circuits) Kind() TableKind     { return TableCircuits }
func (Races) Kind() TableKind        { return TableRaces }
func (Statuses) Kind() TableKind     { return TableStatuses }

func (t Seasons) Rows() int      { return len(t) }
func (t Drivers) Rows() int      { return len(t) }
func (t Constructors) Rows() int { return len(t) }
func (t Circuits) Rows() int     { return len(t) }
func (t Statuses) Rows() int     { return len(t) }

// Rows sums the payload rows of every race.
func (t Races) Rows() int {
	n := 0
	for _, race := range t {
		if race.Payload != nil {
			n += race.Payload.Rows()
		}
	}
	return n
}

func (t Seasons) records() any      { return []Season(t) }
func (t Drivers) records() any      { return []Driver(t) }
func (t Constructors) records() any { return []Constructor(t) }
func (t Circuits) records() any     { return []Circuit(t) }
func (t Races) records() any        { return []Race[Payload](t) }
func (t Statuses) records() any     { return []Status(t) }

// tableKindOf returns the variant that holds []T.
func tableKindOf[T TableRecord]() TableKind {
	switch any(*new(T)).(type) {
	case Season:
		return TableSeasons
	case Driver:
		return TableDrivers
	case Constructor:
		return TableConstructors
	case Circuit:
		return TableCircuits
	case Race[Payload]:
		return TableRaces
	default:
		return TableStatuses
	}
}

// AppendTable concatenates two tables of the same kind, preserving order. Races are appended
// as-is; grouping races of the same event is left to the caller.
func AppendTable(a, b Table) (Table, error) {
	if a.Kind() != b.Kind() {
		return nil, &WrongVariantError{Layer: "table", Want: string(a.Kind()), Got: string(b.Kind())}
	}
	switch a := a.(type) {
	case Seasons:
		return append(a[:len(a):len(a)], b.(Seasons)...), nil
	case Drivers:
		return append(a[:len(a):len(a)], b.(Drivers)...), nil
	case Constructors:
		return append(a[:len(a):len(a)], b.(Constructors)...), nil
	case Circuits:
		return append(a[:len(a):len(a)], b.(Circuits)...), nil
	case Races:
		return append(a[:len(a):len(a)], b.(Races)...), nil
	case Statuses:
		return append(a[:len(a):len(a)], b.(Statuses)...), nil
	default:
		return nil, fmt.Errorf("append table: unsupported kind %s", a.Kind())
	}
}
