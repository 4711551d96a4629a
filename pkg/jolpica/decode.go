package jolpica

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/ramonrsv/f1-data/pkg/f1time"
)

// tableLists maps each table key to the key of the list inside it.
var tableLists = map[TableKind]string{
	TableSeasons:      "Seasons",
	TableDrivers:      "Drivers",
	TableConstructors: "Constructors",
	TableCircuits:     "Circuits",
	TableRaces:        "Races",
	TableStatuses:     "Status",
}

// raceObjectKeys are the capitalised keys of a race object that do not select a payload.
var raceObjectKeys = map[string]bool{
	"Circuit":          true,
	"FirstPractice":    true,
	"SecondPractice":   true,
	"ThirdPractice":    true,
	"Qualifying":       true,
	"Sprint":           true,
	"SprintShootout":   true,
	"SprintQualifying": true,
}

// Decode parses one page body.
func Decode(body []byte) (*Response, error) {
	r, err := decodeResponse(body)
	if err != nil {
		if errors.Is(err, ErrDecode) {
			return nil, err
		}
		return nil, decodeErr("", err)
	}
	return r, nil
}

// UnmarshalJSON implements json.Unmarshaler using the same rules as Decode.
func (r *Response) UnmarshalJSON(data []byte) error {
	decoded, err := Decode(data)
	if err != nil {
		return err
	}
	*r = *decoded
	return nil
}

type wireEnvelope struct {
	MRData json.RawMessage `json:"MRData"`
}

type wireMRData struct {
	XMLNS  string `json:"xmlns"`
	Series string `json:"series"`
	URL    string `json:"url"`
	Limit  string `json:"limit"`
	Offset string `json:"offset"`
	Total  string `json:"total"`
}

func decodeResponse(body []byte) (*Response, error) {
	var env wireEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, err
	}
	if env.MRData == nil {
		return nil, errors.New("missing MRData")
	}

	var meta wireMRData
	if err := json.Unmarshal(env.MRData, &meta); err != nil {
		return nil, err
	}
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(env.MRData, &keys); err != nil {
		return nil, err
	}

	var p fieldParser
	pagination := Pagination{
		Limit:  p.uint("limit", meta.Limit),
		Offset: p.uint("offset", meta.Offset),
		Total:  p.uint("total", meta.Total),
	}
	if p.err != nil {
		return nil, p.err
	}

	kind, raw, err := findTable(keys)
	if err != nil {
		return nil, err
	}
	table, err := decodeTable(kind, raw)
	if err != nil {
		return nil, err
	}

	return &Response{
		XMLNS:      meta.XMLNS,
		Series:     meta.Series,
		URL:        meta.URL,
		Pagination: pagination,
		Table:      table,
	}, nil
}

// findTable returns the single *Table key of MRData.
func findTable(keys map[string]json.RawMessage) (TableKind, json.RawMessage, error) {
	var (
		kind  TableKind
		raw   json.RawMessage
		found int
	)
	for key, value := range keys {
		if !strings.HasSuffix(key, "Table") {
			continue
		}
		if _, ok := tableLists[TableKind(key)]; !ok {
			return "", nil, &UnknownVariantError{Layer: "table", Tag: key}
		}
		kind, raw = TableKind(key), value
		found++
	}
	switch found {
	case 0:
		return "", nil, errors.New("missing table")
	case 1:
		return kind, raw, nil
	default:
		return "", nil, fmt.Errorf("expected one table, found %d", found)
	}
}

func decodeTable(kind TableKind, raw json.RawMessage) (Table, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, decodeErr(string(kind), err)
	}
	listKey := tableLists[kind]
	list, ok := obj[listKey]
	if !ok {
		return nil, decodeErr(string(kind), fmt.Errorf("missing %s list", listKey))
	}

	table, err := decodeTableList(kind, list)
	if err != nil {
		if errors.Is(err, ErrDecode) {
			return nil, err
		}
		return nil, decodeErr(string(kind), err)
	}
	return table, nil
}

func decodeTableList(kind TableKind, list json.RawMessage) (Table, error) {
	switch kind {
	case TableSeasons:
		return decodeList[wireSeason, Season, Seasons](list)
	case TableDrivers:
		return decodeList[wireDriver, Driver, Drivers](list)
	case TableConstructors:
		return decodeList[wireConstructor, Constructor, Constructors](list)
	case TableCircuits:
		return decodeList[wireCircuit, Circuit, Circuits](list)
	case TableStatuses:
		return decodeList[wireStatus, Status, Statuses](list)
	case TableRaces:
		var raws []json.RawMessage
		if err := json.Unmarshal(list, &raws); err != nil {
			return nil, err
		}
		races := make(Races, 0, len(raws))
		for i, raw := range raws {
			race, err := decodeRace(raw)
			if err != nil {
				return nil, fmt.Errorf("race %d: %w", i, err)
			}
			races = append(races, race)
		}
		return races, nil
	default:
		return nil, &UnknownVariantError{Layer: "table", Tag: string(kind)}
	}
}

// wireRecord is a JSON shape that converts to a record type.
type wireRecord[R any] interface {
	convert(p *fieldParser) R
}

func decodeList[W wireRecord[R], R any, L ~[]R](raw json.RawMessage) (L, error) {
	var wires []W
	if err := json.Unmarshal(raw, &wires); err != nil {
		return nil, err
	}
	out := make(L, 0, len(wires))
	for i, w := range wires {
		var p fieldParser
		rec := w.convert(&p)
		if p.err != nil {
			return nil, fmt.Errorf("element %d: %w", i, p.err)
		}
		out = append(out, rec)
	}
	return out, nil
}

type wireRace struct {
	Season           string        `json:"season"`
	Round            string        `json:"round"`
	URL              string        `json:"url"`
	RaceName         string        `json:"raceName"`
	Circuit          wireCircuit   `json:"Circuit"`
	Date             string        `json:"date"`
	Time             *string       `json:"time"`
	FirstPractice    *wireDateTime `json:"FirstPractice"`
	SecondPractice   *wireDateTime `json:"SecondPractice"`
	ThirdPractice    *wireDateTime `json:"ThirdPractice"`
	Qualifying       *wireDateTime `json:"Qualifying"`
	Sprint           *wireDateTime `json:"Sprint"`
	SprintShootout   *wireDateTime `json:"SprintShootout"`
	SprintQualifying *wireDateTime `json:"SprintQualifying"`
}

type wireDateTime struct {
	Date string  `json:"date"`
	Time *string `json:"time"`
}

// decodeRace reads the event fields of a race object, then its payload. The payload tag is
// located before anything is parsed so a malformed tagged payload fails with the tag's name
// instead of decoding as an empty Schedule.
func decodeRace(raw json.RawMessage) (Race[Payload], error) {
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(raw, &keys); err != nil {
		return Race[Payload]{}, err
	}

	var tag PayloadKind
	for key := range keys {
		if !startsUpper(key) || raceObjectKeys[key] {
			continue
		}
		if !isTaggedPayload(PayloadKind(key)) {
			return Race[Payload]{}, &UnknownVariantError{Layer: "payload", Tag: key}
		}
		if tag != "" {
			return Race[Payload]{}, decodeErr(key, fmt.Errorf("race has payloads %s and %s", tag, key))
		}
		tag = PayloadKind(key)
	}

	var w wireRace
	if err := json.Unmarshal(raw, &w); err != nil {
		return Race[Payload]{}, err
	}
	var p fieldParser
	race := Race[Payload]{
		Season:   p.uint("season", w.Season),
		Round:    p.uint("round", w.Round),
		URL:      w.URL,
		RaceName: w.RaceName,
		Circuit:  w.Circuit.convert(&p),
		Date:     p.date("date", w.Date),
		Time:     p.optTimeOfDay("time", w.Time),
	}
	if p.err != nil {
		return Race[Payload]{}, p.err
	}

	if tag == "" {
		race.Payload = w.schedule(&p)
		if p.err != nil {
			return Race[Payload]{}, decodeErr(string(PayloadSchedule), p.err)
		}
		return race, nil
	}

	payload, err := decodePayload(tag, keys[string(tag)])
	if err != nil {
		return Race[Payload]{}, decodeErr(string(tag), err)
	}
	race.Payload = payload
	return race, nil
}

func decodePayload(tag PayloadKind, raw json.RawMessage) (Payload, error) {
	switch tag {
	case PayloadQualifyingResults:
		return decodeList[wireQualifyingResult, QualifyingResult, QualifyingResults](raw)
	case PayloadSprintResults:
		return decodeList[wireSprintResult, SprintResult, SprintResults](raw)
	case PayloadRaceResults:
		return decodeList[wireRaceResult, RaceResult, RaceResults](raw)
	case PayloadLaps:
		return decodeList[wireLap, Lap, Laps](raw)
	case PayloadPitStops:
		return decodeList[wirePitStop, PitStop, PitStops](raw)
	default:
		return nil, &UnknownVariantError{Layer: "payload", Tag: string(tag)}
	}
}

func (w wireRace) schedule(p *fieldParser) Schedule {
	return Schedule{
		FirstPractice:    w.FirstPractice.convert(p, "FirstPractice"),
		SecondPractice:   w.SecondPractice.convert(p, "SecondPractice"),
		ThirdPractice:    w.ThirdPractice.convert(p, "ThirdPractice"),
		Qualifying:       w.Qualifying.convert(p, "Qualifying"),
		Sprint:           w.Sprint.convert(p, "Sprint"),
		SprintShootout:   w.SprintShootout.convert(p, "SprintShootout"),
		SprintQualifying: w.SprintQualifying.convert(p, "SprintQualifying"),
	}
}

func (w *wireDateTime) convert(p *fieldParser, name string) *DateTime {
	if w == nil {
		return nil
	}
	return &DateTime{
		Date: p.date(name+".date", w.Date),
		Time: p.optTimeOfDay(name+".time", w.Time),
	}
}

func isTaggedPayload(kind PayloadKind) bool {
	for _, k := range taggedPayloads {
		if k == kind {
			return true
		}
	}
	return false
}

func startsUpper(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return unicode.IsUpper(r)
}

// Wire shapes for table records. All numbers arrive as strings.

type wireSeason struct {
	Season string `json:"season"`
	URL    string `json:"url"`
}

func (w wireSeason) convert(p *fieldParser) Season {
	return Season{Season: p.uint("season", w.Season), URL: w.URL}
}

type wireDriver struct {
	DriverID        string  `json:"driverId"`
	PermanentNumber *string `json:"permanentNumber"`
	Code            *string `json:"code"`
	URL             string  `json:"url"`
	GivenName       string  `json:"givenName"`
	FamilyName      string  `json:"familyName"`
	DateOfBirth     string  `json:"dateOfBirth"`
	Nationality     string  `json:"nationality"`
}

func (w wireDriver) convert(p *fieldParser) Driver {
	return Driver{
		DriverID:        w.DriverID,
		PermanentNumber: p.optUint("permanentNumber", w.PermanentNumber),
		Code:            w.Code,
		URL:             w.URL,
		GivenName:       w.GivenName,
		FamilyName:      w.FamilyName,
		DateOfBirth:     p.date("dateOfBirth", w.DateOfBirth),
		Nationality:     w.Nationality,
	}
}

type wireConstructor struct {
	ConstructorID string `json:"constructorId"`
	URL           string `json:"url"`
	Name          string `json:"name"`
	Nationality   string `json:"nationality"`
}

func (w wireConstructor) convert(*fieldParser) Constructor {
	return Constructor(w)
}

type wireLocation struct {
	Lat      string `json:"lat"`
	Long     string `json:"long"`
	Locality string `json:"locality"`
	Country  string `json:"country"`
}

type wireCircuit struct {
	CircuitID   string       `json:"circuitId"`
	URL         string       `json:"url"`
	CircuitName string       `json:"circuitName"`
	Location    wireLocation `json:"Location"`
}

func (w wireCircuit) convert(p *fieldParser) Circuit {
	return Circuit{
		CircuitID:   w.CircuitID,
		URL:         w.URL,
		CircuitName: w.CircuitName,
		Location: Location{
			Lat:      p.float("lat", w.Location.Lat),
			Long:     p.float("long", w.Location.Long),
			Locality: w.Location.Locality,
			Country:  w.Location.Country,
		},
	}
}

type wireStatus struct {
	StatusID string `json:"statusId"`
	Count    string `json:"count"`
	Status   string `json:"status"`
}

func (w wireStatus) convert(p *fieldParser) Status {
	return Status{
		StatusID: p.uint("statusId", w.StatusID),
		Count:    p.uint("count", w.Count),
		Status:   w.Status,
	}
}

// Wire shapes for payload records.

type wireQualifyingResult struct {
	Number      string          `json:"number"`
	Position    string          `json:"position"`
	Driver      wireDriver      `json:"Driver"`
	Constructor wireConstructor `json:"Constructor"`
	Q1          *string         `json:"Q1"`
	Q2          *string         `json:"Q2"`
	Q3          *string         `json:"Q3"`
}

func (w wireQualifyingResult) convert(p *fieldParser) QualifyingResult {
	return QualifyingResult{
		Number:      p.uint("number", w.Number),
		Position:    p.uint("position", w.Position),
		Driver:      w.Driver.convert(p),
		Constructor: w.Constructor.convert(p),
		Q1:          p.optQualifyingTime("Q1", w.Q1),
		Q2:          p.optQualifyingTime("Q2", w.Q2),
		Q3:          p.optQualifyingTime("Q3", w.Q3),
	}
}

type wireRaceTime struct {
	Millis string `json:"millis"`
	Time   string `json:"time"`
}

type wireLapTime struct {
	Time string `json:"time"`
}

type wireAverageSpeed struct {
	Units string `json:"units"`
	Speed string `json:"speed"`
}

type wireFastestLap struct {
	Rank         *string           `json:"rank"`
	Lap          string            `json:"lap"`
	Time         wireLapTime       `json:"Time"`
	AverageSpeed *wireAverageSpeed `json:"AverageSpeed"`
}

func (w *wireFastestLap) convert(p *fieldParser) *FastestLap {
	if w == nil {
		return nil
	}
	fl := &FastestLap{
		Rank: p.optUint("FastestLap.rank", w.Rank),
		Lap:  p.uint("FastestLap.lap", w.Lap),
		Time: p.duration("FastestLap.Time", w.Time.Time),
	}
	if w.AverageSpeed != nil {
		fl.AverageSpeed = &AverageSpeed{
			Units: w.AverageSpeed.Units,
			Speed: p.float("AverageSpeed.speed", w.AverageSpeed.Speed),
		}
	}
	return fl
}

// wireResult is shared by sprint and race results, which have the same shape.
type wireResult struct {
	Number       string          `json:"number"`
	Position     string          `json:"position"`
	PositionText string          `json:"positionText"`
	Points       string          `json:"points"`
	Driver       wireDriver      `json:"Driver"`
	Constructor  wireConstructor `json:"Constructor"`
	Grid         string          `json:"grid"`
	Laps         string          `json:"laps"`
	Status       string          `json:"status"`
	Time         *wireRaceTime   `json:"Time"`
	FastestLap   *wireFastestLap `json:"FastestLap"`
}

type (
	wireSprintResult struct{ wireResult }
	wireRaceResult   struct{ wireResult }
)

func (w wireResult) convert(p *fieldParser, number uint32) RaceResult {
	return RaceResult{
		Number:       number,
		Position:     p.uint("position", w.Position),
		PositionText: p.position("positionText", w.PositionText),
		Points:       p.float("points", w.Points),
		Driver:       w.Driver.convert(p),
		Constructor:  w.Constructor.convert(p),
		Grid:         p.uint("grid", w.Grid),
		Laps:         p.uint("laps", w.Laps),
		Status:       w.Status,
		Time:         p.raceTime("Time", w.Time),
		FastestLap:   w.FastestLap.convert(p),
	}
}

func (w wireSprintResult) convert(p *fieldParser) SprintResult {
	return SprintResult(w.wireResult.convert(p, p.uint("number", w.Number)))
}

func (w wireRaceResult) convert(p *fieldParser) RaceResult {
	number := NoNumber
	if w.Number != "None" {
		number = p.uint("number", w.Number)
	}
	return w.wireResult.convert(p, number)
}

type wireTiming struct {
	DriverID string `json:"driverId"`
	Position string `json:"position"`
	Time     string `json:"time"`
}

type wireLap struct {
	Number  string       `json:"number"`
	Timings []wireTiming `json:"Timings"`
}

func (w wireLap) convert(p *fieldParser) Lap {
	lap := Lap{Number: p.uint("number", w.Number), Timings: make([]Timing, 0, len(w.Timings))}
	for _, t := range w.Timings {
		lap.Timings = append(lap.Timings, Timing{
			DriverID: t.DriverID,
			Position: p.uint("Timings.position", t.Position),
			Time:     p.duration("Timings.time", t.Time),
		})
	}
	return lap
}

type wirePitStop struct {
	DriverID string `json:"driverId"`
	Lap      string `json:"lap"`
	Stop     string `json:"stop"`
	Time     string `json:"time"`
	Duration string `json:"duration"`
}

func (w wirePitStop) convert(p *fieldParser) PitStop {
	return PitStop{
		DriverID: w.DriverID,
		Lap:      p.uint("lap", w.Lap),
		Stop:     p.uint("stop", w.Stop),
		Time:     p.timeOfDay("time", w.Time),
		Duration: p.duration("duration", w.Duration),
	}
}

// fieldParser converts string fields, keeping the first error so conversions can be written
// as a single struct literal and checked once.
type fieldParser struct {
	err error
}

func (p *fieldParser) fail(field string, err error) {
	if p.err == nil {
		p.err = fmt.Errorf("field %s: %w", field, err)
	}
}

func (p *fieldParser) uint(field, s string) uint32 {
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		p.fail(field, err)
		return 0
	}
	return uint32(v)
}

func (p *fieldParser) optUint(field string, s *string) *uint32 {
	if s == nil {
		return nil
	}
	v := p.uint(field, *s)
	return &v
}

func (p *fieldParser) float(field, s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		p.fail(field, err)
		return 0
	}
	return v
}

func (p *fieldParser) date(field, s string) f1time.Date {
	d, err := f1time.ParseDate(s)
	if err != nil {
		p.fail(field, err)
	}
	return d
}

func (p *fieldParser) timeOfDay(field, s string) f1time.TimeOfDay {
	t, err := f1time.ParseTimeOfDay(s)
	if err != nil {
		p.fail(field, err)
	}
	return t
}

func (p *fieldParser) optTimeOfDay(field string, s *string) *f1time.TimeOfDay {
	if s == nil {
		return nil
	}
	t := p.timeOfDay(field, *s)
	return &t
}

func (p *fieldParser) duration(field, s string) time.Duration {
	d, err := f1time.ParseDuration(s)
	if err != nil {
		p.fail(field, err)
	}
	return d
}

func (p *fieldParser) optQualifyingTime(field string, s *string) *f1time.QualifyingTime {
	if s == nil {
		return nil
	}
	q, err := f1time.ParseQualifyingTime(*s)
	if err != nil {
		p.fail(field, err)
		return nil
	}
	return &q
}

func (p *fieldParser) position(field, s string) Position {
	pos, err := ParsePosition(s)
	if err != nil {
		p.fail(field, err)
	}
	return pos
}

func (p *fieldParser) raceTime(field string, w *wireRaceTime) *f1time.RaceTime {
	if w == nil {
		return nil
	}
	rt, err := f1time.ParseBuggyRaceTime(w.Millis, w.Time)
	if err != nil {
		p.fail(field, err)
		return nil
	}
	return rt
}
