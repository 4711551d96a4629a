package jolpica

import "fmt"

// One returns the single element of items, or ErrNotFound / ErrTooMany.
func One[T any](items []T) (T, error) {
	var zero T
	switch len(items) {
	case 0:
		return zero, ErrNotFound
	case 1:
		return items[0], nil
	default:
		return zero, fmt.Errorf("%w: got %d", ErrTooMany, len(items))
	}
}

// Extract returns the records of t if it holds the variant for T.
func Extract[T TableRecord](t Table) ([]T, error) {
	want := tableKindOf[T]()
	if t == nil {
		return nil, &WrongVariantError{Layer: "table", Want: string(want), Got: "none"}
	}
	rows, ok := t.records().([]T)
	if !ok {
		return nil, &WrongVariantError{Layer: "table", Want: string(want), Got: string(t.Kind())}
	}
	return rows, nil
}

// ExtractOne returns the only record of t.
func ExtractOne[T TableRecord](t Table) (T, error) {
	rows, err := Extract[T](t)
	if err != nil {
		var zero T
		return zero, err
	}
	return One(rows)
}

// ExtractPayload narrows the payload of r to []T.
func ExtractPayload[T PayloadRecord](r Race[Payload]) (Race[[]T], error) {
	want := payloadKindOf[T]()
	if r.Payload == nil {
		return Race[[]T]{}, &WrongVariantError{Layer: "payload", Want: string(want), Got: "none"}
	}
	rows, ok := r.Payload.records().([]T)
	if !ok {
		return Race[[]T]{}, &WrongVariantError{Layer: "payload", Want: string(want), Got: string(r.Payload.Kind())}
	}
	return WithPayload(r, rows), nil
}

// ExtractPayloadOne narrows the payload of r to its only T.
func ExtractPayloadOne[T PayloadRecord](r Race[Payload]) (Race[T], error) {
	race, err := ExtractPayload[T](r)
	if err != nil {
		return Race[T]{}, err
	}
	one, err := One(race.Payload)
	if err != nil {
		return Race[T]{}, err
	}
	return WithPayload(race, one), nil
}

// ExtractSchedule narrows the payload of r to a Schedule.
func ExtractSchedule(r Race[Payload]) (Race[Schedule], error) {
	schedule, ok := r.Payload.(Schedule)
	if !ok {
		got := "none"
		if r.Payload != nil {
			got = string(r.Payload.Kind())
		}
		return Race[Schedule]{}, &WrongVariantError{Layer: "payload", Want: string(PayloadSchedule), Got: got}
	}
	return WithPayload(r, schedule), nil
}

// ExtractRacePayloads applies ExtractPayload to every race.
func ExtractRacePayloads[T PayloadRecord](races []Race[Payload]) ([]Race[[]T], error) {
	out := make([]Race[[]T], 0, len(races))
	for _, r := range races {
		race, err := ExtractPayload[T](r)
		if err != nil {
			return nil, err
		}
		out = append(out, race)
	}
	return out, nil
}

// ExtractRacePayloadOnes applies ExtractPayloadOne to every race.
func ExtractRacePayloadOnes[T PayloadRecord](races []Race[Payload]) ([]Race[T], error) {
	out := make([]Race[T], 0, len(races))
	for _, r := range races {
		race, err := ExtractPayloadOne[T](r)
		if err != nil {
			return nil, err
		}
		out = append(out, race)
	}
	return out, nil
}

// ExtractSchedules applies ExtractSchedule to every race.
func ExtractSchedules(races []Race[Payload]) ([]Race[Schedule], error) {
	out := make([]Race[Schedule], 0, len(races))
	for _, r := range races {
		race, err := ExtractSchedule(r)
		if err != nil {
			return nil, err
		}
		out = append(out, race)
	}
	return out, nil
}

// Races returns the races of r.
func (r *Response) Races() ([]Race[Payload], error) {
	return Extract[Race[Payload]](r.Table)
}

// singleRace returns the only race of r, for lap and pit stop queries scoped to one event.
func (r *Response) singleRace() (Race[Payload], error) {
	races, err := r.Races()
	if err != nil {
		return Race[Payload]{}, err
	}
	race, err := One(races)
	if err != nil {
		return Race[Payload]{}, fmt.Errorf("races: %w", err)
	}
	return race, nil
}

// LapTimings returns the timings of the single lap of the single race in r.
func (r *Response) LapTimings() ([]Timing, error) {
	race, err := r.singleRace()
	if err != nil {
		return nil, err
	}
	laps, err := ExtractPayload[Lap](race)
	if err != nil {
		return nil, err
	}
	lap, err := One(laps.Payload)
	if err != nil {
		return nil, fmt.Errorf("laps: %w", err)
	}
	return lap.Timings, nil
}

// DriverLaps returns the laps of driverID in the single race in r. Every lap must hold only
// that driver's timing.
func (r *Response) DriverLaps(driverID string) ([]DriverLap, error) {
	race, err := r.singleRace()
	if err != nil {
		return nil, err
	}
	laps, err := ExtractPayload[Lap](race)
	if err != nil {
		return nil, err
	}
	out := make([]DriverLap, 0, len(laps.Payload))
	for _, lap := range laps.Payload {
		dl, err := NewDriverLap(lap, driverID)
		if err != nil {
			return nil, err
		}
		out = append(out, dl)
	}
	return out, nil
}

// PitStopList returns the pit stops of the single race in r.
func (r *Response) PitStopList() ([]PitStop, error) {
	race, err := r.singleRace()
	if err != nil {
		return nil, err
	}
	stops, err := ExtractPayload[PitStop](race)
	if err != nil {
		return nil, err
	}
	return stops.Payload, nil
}
