package jolpica

import (
	"fmt"
	"time"

	"github.com/ramonrsv/f1-data/pkg/f1time"
)

const driverPerezJSON = `{
	"driverId": "perez",
	"permanentNumber": "11",
	"code": "PER",
	"url": "http://en.wikipedia.org/wiki/Sergio_P%C3%A9rez",
	"givenName": "Sergio",
	"familyName": "Pérez",
	"dateOfBirth": "1990-01-26",
	"nationality": "Mexican"
}`

const constructorRedBullJSON = `{
	"constructorId": "red_bull",
	"url": "http://en.wikipedia.org/wiki/Red_Bull_Racing",
	"name": "Red Bull",
	"nationality": "Austrian"
}`

const circuitBakuJSON = `{
	"circuitId": "baku",
	"url": "https://en.wikipedia.org/wiki/Baku_City_Circuit",
	"circuitName": "Baku City Circuit",
	"Location": {
		"lat": "40.3725",
		"long": "49.8533",
		"locality": "Baku",
		"country": "Azerbaijan"
	}
}`

// race2023R4Fields is the event part of the 2023 Azerbaijan Grand Prix, without braces.
var race2023R4Fields = `
	"season": "2023",
	"round": "4",
	"url": "https://en.wikipedia.org/wiki/2023_Azerbaijan_Grand_Prix",
	"raceName": "Azerbaijan Grand Prix",
	"Circuit": ` + circuitBakuJSON + `,
	"date": "2023-04-30",
	"time": "11:00:00Z"`

var raceResultP1JSON = `{
	"number": "11",
	"position": "1",
	"positionText": "1",
	"points": "25",
	"Driver": ` + driverPerezJSON + `,
	"Constructor": ` + constructorRedBullJSON + `,
	"grid": "3",
	"laps": "51",
	"status": "Finished",
	"Time": {"millis": "5562436", "time": "1:32:42.436"},
	"FastestLap": {
		"rank": "5",
		"lap": "50",
		"Time": {"time": "1:44.589"},
		"AverageSpeed": {"units": "kph", "speed": "206.625"}
	}
}`

// envelope wraps a table object in the MRData envelope.
func envelope(limit, offset, total int, tableKey, table string) string {
	return fmt.Sprintf(`{
	"MRData": {
		"xmlns": "",
		"series": "f1",
		"url": "http://api.jolpi.ca/ergast/f1/2023/4/results.json",
		"limit": "%d",
		"offset": "%d",
		"total": "%d",
		%q: %s
	}
}`, limit, offset, total, tableKey, table)
}

func raceTable(races ...string) string {
	out := `{"season": "2023", "round": "4", "Races": [`
	for i, r := range races {
		if i > 0 {
			out += ","
		}
		out += r
	}
	return out + "]}"
}

// raceWith builds a 2023 round 4 race object with extra fields appended.
func raceWith(extra string) string {
	if extra == "" {
		return "{" + race2023R4Fields + "}"
	}
	return "{" + race2023R4Fields + ",\n" + extra + "}"
}

func ptr[T any](v T) *T { return &v }

var driverPerez = Driver{
	DriverID:        "perez",
	PermanentNumber: ptr(uint32(11)),
	Code:            ptr("PER"),
	URL:             "http://en.wikipedia.org/wiki/Sergio_P%C3%A9rez",
	GivenName:       "Sergio",
	FamilyName:      "Pérez",
	DateOfBirth:     f1time.Date{Year: 1990, Month: time.January, Day: 26},
	Nationality:     "Mexican",
}

var constructorRedBull = Constructor{
	ConstructorID: "red_bull",
	URL:           "http://en.wikipedia.org/wiki/Red_Bull_Racing",
	Name:          "Red Bull",
	Nationality:   "Austrian",
}

var circuitBaku = Circuit{
	CircuitID:   "baku",
	URL:         "https://en.wikipedia.org/wiki/Baku_City_Circuit",
	CircuitName: "Baku City Circuit",
	Location:    Location{Lat: 40.3725, Long: 49.8533, Locality: "Baku", Country: "Azerbaijan"},
}

func race2023R4[P any](payload P) Race[P] {
	return Race[P]{
		Season:   2023,
		Round:    4,
		URL:      "https://en.wikipedia.org/wiki/2023_Azerbaijan_Grand_Prix",
		RaceName: "Azerbaijan Grand Prix",
		Circuit:  circuitBaku,
		Date:     f1time.Date{Year: 2023, Month: time.April, Day: 30},
		Time:     &f1time.TimeOfDay{Hour: 11, UTC: true},
		Payload:  payload,
	}
}
