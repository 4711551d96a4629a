package pagination

import "strconv"

// MultiPageOption controls whether a query may span more than one page.
type MultiPageOption struct {
	enabled  bool
	maxPages int // 0 means unbounded
}

// Disabled rejects queries that do not fit in one page.
func Disabled() MultiPageOption {
	return MultiPageOption{}
}

// Enabled allows multi-page queries, bounded by *maxPages when it is non-nil.
func Enabled(maxPages *int) MultiPageOption {
	o := MultiPageOption{enabled: true}
	if maxPages != nil {
		o.maxPages = max(*maxPages, 1)
	}
	return o
}

// MaxPages is shorthand for Enabled(&n).
func MaxPages(n int) MultiPageOption {
	return Enabled(&n)
}

// IsEnabled reports whether multi-page queries are allowed.
func (o MultiPageOption) IsEnabled() bool {
	return o.enabled
}

// MaxPageCount returns the page bound, if any.
func (o MultiPageOption) MaxPageCount() (int, bool) {
	return o.maxPages, o.enabled && o.maxPages > 0
}

func (o MultiPageOption) String() string {
	switch {
	case !o.enabled:
		return "disabled"
	case o.maxPages > 0:
		return "max " + strconv.Itoa(o.maxPages) + " pages"
	default:
		return "enabled"
	}
}
