package f1time

import (
	"errors"
	"fmt"
)

// ErrInvalidFormat is matched by every ParseError.
var ErrInvalidFormat = errors.New("invalid time format")

// Kind names the grammar a ParseError was raised for.
type Kind string

const (
	KindDate           Kind = "date"
	KindTimeOfDay      Kind = "time of day"
	KindDuration       Kind = "duration"
	KindDelta          Kind = "delta"
	KindQualifyingTime Kind = "qualifying time"
	KindRaceTime       Kind = "race time"
)

// ParseError reports an input that does not match the documented grammar for Kind.
type ParseError struct {
	Kind   Kind
	Input  string
	Reason string
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("invalid %s %q: %s", e.Kind, e.Input, e.Reason)
	}
	return fmt.Sprintf("invalid %s %q", e.Kind, e.Input)
}

// Is reports whether target is ErrInvalidFormat.
func (e *ParseError) Is(target error) bool {
	return target == ErrInvalidFormat
}

func parseErr(kind Kind, input, reason string) error {
	return &ParseError{Kind: kind, Input: input, Reason: reason}
}
