package jolpica

import (
	"errors"
	"testing"
)

func TestOne(t *testing.T) {
	tests := []struct {
		name    string
		items   []int
		want    int
		wantErr error
	}{
		{"empty", nil, 0, ErrNotFound},
		{"one", []int{7}, 7, nil},
		{"two", []int{7, 8}, 0, ErrTooMany},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := One(tt.items)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("One() error = %v, want %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("One() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestExtract_WrongVariant(t *testing.T) {
	table := Seasons{{Season: 2023}}

	_, err := Extract[Driver](table)
	if !errors.Is(err, ErrWrongVariant) {
		t.Fatalf("Extract[Driver] error = %v, want ErrWrongVariant", err)
	}
	var wv *WrongVariantError
	if !errors.As(err, &wv) {
		t.Fatalf("error %v is not a *WrongVariantError", err)
	}
	if wv.Want != string(TableDrivers) || wv.Got != string(TableSeasons) {
		t.Errorf("WrongVariantError = %+v", wv)
	}

	if _, err := Extract[Season](nil); !errors.Is(err, ErrWrongVariant) {
		t.Errorf("Extract on nil table error = %v, want ErrWrongVariant", err)
	}
}

func TestExtractOne(t *testing.T) {
	tests := []struct {
		name    string
		table   Table
		wantErr error
	}{
		{"none", Drivers{}, ErrNotFound},
		{"one", Drivers{driverPerez}, nil},
		{"two", Drivers{driverPerez, driverPerez}, ErrTooMany},
		{"wrong variant", Constructors{constructorRedBull}, ErrWrongVariant},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := ExtractOne[Driver](tt.table)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("ExtractOne() error = %v, want %v", err, tt.wantErr)
			}
			if err == nil && d.DriverID != "perez" {
				t.Errorf("ExtractOne() = %+v", d)
			}
		})
	}
}

func TestExtractPayload(t *testing.T) {
	race := race2023R4[Payload](PitStops{{DriverID: "leclerc", Lap: 11, Stop: 1}})

	stops, err := ExtractPayload[PitStop](race)
	if err != nil {
		t.Fatalf("ExtractPayload[PitStop] error = %v", err)
	}
	if len(stops.Payload) != 1 || stops.Payload[0].DriverID != "leclerc" {
		t.Errorf("Payload = %+v", stops.Payload)
	}
	if !SameEvent(race, stops) {
		t.Error("extracted race should be the same event")
	}

	if _, err := ExtractPayload[Lap](race); !errors.Is(err, ErrWrongVariant) {
		t.Errorf("ExtractPayload[Lap] error = %v, want ErrWrongVariant", err)
	}
	if _, err := ExtractSchedule(race); !errors.Is(err, ErrWrongVariant) {
		t.Errorf("ExtractSchedule error = %v, want ErrWrongVariant", err)
	}

	schedule := race2023R4[Payload](Schedule{})
	if _, err := ExtractPayload[RaceResult](schedule); !errors.Is(err, ErrWrongVariant) {
		t.Errorf("ExtractPayload on schedule error = %v, want ErrWrongVariant", err)
	}
}

func TestExtractPayloadOne(t *testing.T) {
	tests := []struct {
		name    string
		payload Payload
		wantErr error
	}{
		{"none", RaceResults{}, ErrNotFound},
		{"one", RaceResults{{Number: 11}}, nil},
		{"two", RaceResults{{Number: 11}, {Number: 1}}, ErrTooMany},
		{"wrong variant", SprintResults{{Number: 11}}, ErrWrongVariant},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			race, err := ExtractPayloadOne[RaceResult](race2023R4(tt.payload))
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("ExtractPayloadOne() error = %v, want %v", err, tt.wantErr)
			}
			if err == nil && race.Payload.Number != 11 {
				t.Errorf("Payload = %+v", race.Payload)
			}
		})
	}
}

func TestExtractRacePayloads(t *testing.T) {
	races := []Race[Payload]{
		race2023R4[Payload](QualifyingResults{{Position: 1}, {Position: 2}}),
		race2023R4[Payload](QualifyingResults{{Position: 1}}),
	}

	got, err := ExtractRacePayloads[QualifyingResult](races)
	if err != nil {
		t.Fatalf("ExtractRacePayloads error = %v", err)
	}
	if len(got) != 2 || len(got[0].Payload) != 2 || len(got[1].Payload) != 1 {
		t.Errorf("ExtractRacePayloads = %+v", got)
	}

	if _, err := ExtractRacePayloadOnes[QualifyingResult](races); !errors.Is(err, ErrTooMany) {
		t.Errorf("ExtractRacePayloadOnes error = %v, want ErrTooMany", err)
	}
	if _, err := ExtractSchedules(races); !errors.Is(err, ErrWrongVariant) {
		t.Errorf("ExtractSchedules error = %v, want ErrWrongVariant", err)
	}
}

func TestResponse_DriverLaps(t *testing.T) {
	laps := Laps{
		{Number: 1, Timings: []Timing{{DriverID: "leclerc", Position: 1}}},
		{Number: 2, Timings: []Timing{{DriverID: "leclerc", Position: 2}}},
	}
	resp := &Response{Table: Races{race2023R4[Payload](laps)}}

	got, err := resp.DriverLaps("leclerc")
	if err != nil {
		t.Fatalf("DriverLaps() error = %v", err)
	}
	want := []DriverLap{{Number: 1, Position: 1}, {Number: 2, Position: 2}}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("DriverLaps() = %+v, want %+v", got, want)
	}

	if _, err := resp.DriverLaps("max_verstappen"); !errors.Is(err, ErrUnexpectedData) {
		t.Errorf("DriverLaps(other driver) error = %v, want ErrUnexpectedData", err)
	}

	if _, err := resp.LapTimings(); !errors.Is(err, ErrTooMany) {
		t.Errorf("LapTimings() over two laps error = %v, want ErrTooMany", err)
	}

	empty := &Response{Table: Races{}}
	if _, err := empty.PitStopList(); !errors.Is(err, ErrNotFound) {
		t.Errorf("PitStopList() on no races error = %v, want ErrNotFound", err)
	}
}
