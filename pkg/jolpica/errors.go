package jolpica

import (
	"errors"
	"fmt"
)

// Errors returned while decoding and extracting responses.
var (
	// ErrDecode is matched by every *DecodeError and *UnknownVariantError.
	ErrDecode = errors.New("decode failed")

	// ErrUnknownVariant is returned when a table or payload tag is not one of the known set.
	ErrUnknownVariant = errors.New("unknown variant")

	// ErrWrongVariant is returned when a caller asks for a shape the table or payload does not hold.
	ErrWrongVariant = errors.New("wrong variant")

	// ErrNotFound is returned when exactly one element was expected and there were none.
	ErrNotFound = errors.New("not found")

	// ErrTooMany is returned when exactly one element was expected and there were more.
	ErrTooMany = errors.New("too many elements")

	// ErrUnexpectedData is returned when decoded data contradicts the request that produced it.
	ErrUnexpectedData = errors.New("unexpected data")
)

// DecodeError reports a body, or a tagged part of a body, that failed to decode.
// Variant names the table or payload tag being decoded, if any.
type DecodeError struct {
	Variant string
	Err     error
}

// Error implements the error interface.
func (e *DecodeError) Error() string {
	if e.Variant != "" {
		return fmt.Sprintf("decode %s: %v", e.Variant, e.Err)
	}
	return fmt.Sprintf("decode response: %v", e.Err)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrDecode.
func (e *DecodeError) Is(target error) bool {
	return target == ErrDecode
}

// UnknownVariantError reports a table or payload tag outside the known set.
type UnknownVariantError struct {
	Layer string // "table" or "payload"
	Tag   string
}

// Error implements the error interface.
func (e *UnknownVariantError) Error() string {
	return fmt.Sprintf("unknown %s variant %q", e.Layer, e.Tag)
}

// Is reports whether target is ErrUnknownVariant or ErrDecode.
func (e *UnknownVariantError) Is(target error) bool {
	return target == ErrUnknownVariant || target == ErrDecode
}

// WrongVariantError reports an extraction of a shape the value does not currently hold.
type WrongVariantError struct {
	Layer string // "table" or "payload"
	Want  string
	Got   string
}

// Error implements the error interface.
func (e *WrongVariantError) Error() string {
	return fmt.Sprintf("wrong %s variant: want %s, got %s", e.Layer, e.Want, e.Got)
}

// Is reports whether target is ErrWrongVariant.
func (e *WrongVariantError) Is(target error) bool {
	return target == ErrWrongVariant
}

func decodeErr(variant string, err error) error {
	return &DecodeError{Variant: variant, Err: err}
}
