// Package jolpica models responses of the jolpica-f1 API (the successor of the Ergast API)
// and the requests that produce them.
//
// Every response page decodes into a Response whose Table holds exactly one kind of record.
// Race tables additionally carry a Payload per race that depends on the requested resource:
//
//	resp, err := jolpica.Decode(body)
//	races, err := jolpica.Extract[jolpica.Race[jolpica.Payload]](resp.Table)
//	results, err := jolpica.ExtractRacePayloads[jolpica.RaceResult](races)
//
// Extraction fails with ErrWrongVariant when the table or payload holds a different kind of
// record, and the single-element forms fail with ErrNotFound or ErrTooMany, so "no such
// record" can be told apart from asking for the wrong thing.
//
// Resource and Filters build request URLs:
//
//	r := jolpica.NewResource(jolpica.ResourceLapTimes,
//		jolpica.Filters{}.WithSeason(2023).WithRound(4).WithDriverID("leclerc").WithLap(1))
//	r.Endpoint() // "/2023/4/drivers/leclerc/laps/1"
package jolpica
