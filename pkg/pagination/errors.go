package pagination

import (
	"errors"
	"fmt"
)

var (
	// ErrMultiPage is returned when a query spans several pages and multi-page handling is
	// disabled.
	ErrMultiPage = errors.New("response spans multiple pages")

	// ErrExceededMaxPageCount is matched by every *ExceededMaxPageCountError.
	ErrExceededMaxPageCount = errors.New("exceeded maximum page count")

	// ErrInconsistent is matched by every *InconsistentError.
	ErrInconsistent = errors.New("inconsistent response pages")
)

// ExceededMaxPageCountError reports a query needing more pages than allowed.
type ExceededMaxPageCountError struct {
	Required int
	Max      int
}

func (e *ExceededMaxPageCountError) Error() string {
	return fmt.Sprintf("%v: %d pages required, maximum is %d", ErrExceededMaxPageCount, e.Required, e.Max)
}

// Is reports whether target is ErrExceededMaxPageCount.
func (e *ExceededMaxPageCountError) Is(target error) bool {
	return target == ErrExceededMaxPageCount
}

// InconsistentError reports pages of one query that cannot belong together: their metadata,
// table kind, offsets or race payloads disagree. Page is the 1-based position of the
// offending page.
type InconsistentError struct {
	Field string
	Page  int
	Want  string
	Got   string
	Err   error
}

func (e *InconsistentError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%v: page %d %s: %v", ErrInconsistent, e.Page, e.Field, e.Err)
	}
	return fmt.Sprintf("%v: page %d %s = %s, want %s", ErrInconsistent, e.Page, e.Field, e.Got, e.Want)
}

// Unwrap returns the underlying error, if any.
func (e *InconsistentError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrInconsistent.
func (e *InconsistentError) Is(target error) bool {
	return target == ErrInconsistent
}
