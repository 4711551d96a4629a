package f1time

import (
	"errors"
	"testing"
	"time"
)

func TestParseTimeOfDay(t *testing.T) {
	tests := []struct {
		input string
		want  TimeOfDay
	}{
		{"12:00:00Z", TimeOfDay{12, 0, 0, true}},
		{"11:30:00Z", TimeOfDay{11, 30, 0, true}},
		{"05:10:00Z", TimeOfDay{5, 10, 0, true}},
		{"15:13:22", TimeOfDay{15, 13, 22, false}},
		{"16:36:20", TimeOfDay{16, 36, 20, false}},
		{"23:59:59Z", TimeOfDay{23, 59, 59, true}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseTimeOfDay(tt.input)
			if err != nil {
				t.Fatalf("ParseTimeOfDay(%q) error = %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseTimeOfDay(%q) = %+v, want %+v", tt.input, got, tt.want)
			}
			if got.String() != tt.input {
				t.Errorf("String() = %q, want %q", got.String(), tt.input)
			}
		})
	}
}

func TestParseTimeOfDay_Invalid(t *testing.T) {
	for _, input := range []string{"12:00:0Z", "25:00:00Z", "12:00Z", "12:60:00", "12:00:00ZZ", ""} {
		if _, err := ParseTimeOfDay(input); !errors.Is(err, ErrInvalidFormat) {
			t.Errorf("ParseTimeOfDay(%q) error = %v, want ErrInvalidFormat", input, err)
		}
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2023-04-30")
	if err != nil {
		t.Fatalf("ParseDate error = %v", err)
	}
	if d != (Date{2023, time.April, 30}) {
		t.Errorf("ParseDate = %+v", d)
	}
	if d.String() != "2023-04-30" {
		t.Errorf("String() = %q", d.String())
	}

	if _, err := ParseDate("2023-13-01"); !errors.Is(err, ErrInvalidFormat) {
		t.Errorf("ParseDate(bad month) error = %v, want ErrInvalidFormat", err)
	}
}

func TestNullTimeOfDayFrom(t *testing.T) {
	if got := NullTimeOfDayFrom(nil); got.Valid {
		t.Error("nil should produce invalid NullTimeOfDay")
	}
	tod := TimeOfDay{Hour: 11}
	if got := NullTimeOfDayFrom(&tod); !got.Valid || got.TimeOfDay != tod {
		t.Errorf("NullTimeOfDayFrom = %+v", got)
	}
}

func TestAt(t *testing.T) {
	got := At(Date{2023, time.April, 30}, TimeOfDay{Hour: 11, UTC: true})
	want := time.Date(2023, time.April, 30, 11, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("At = %v, want %v", got, want)
	}
}
