package jolpica

import "fmt"

// Pagination describes which slice of a result set a Response holds.
type Pagination struct {
	Limit  uint32
	Offset uint32
	Total  uint32
}

// IsLastPage reports whether no records follow this page.
func (p Pagination) IsLastPage() bool {
	return uint64(p.Offset)+uint64(p.Limit) >= uint64(p.Total)
}

// IsSinglePage reports whether this page holds the whole result set.
func (p Pagination) IsSinglePage() bool {
	return p.Offset == 0 && p.IsLastPage()
}

// NextPage returns the pagination of the following page, or false on the last page.
func (p Pagination) NextPage() (Pagination, bool) {
	if p.IsLastPage() {
		return Pagination{}, false
	}
	return Pagination{Limit: p.Limit, Offset: p.Offset + p.Limit, Total: p.Total}, true
}

// PageCount returns how many pages of this limit, starting at this offset, cover Total.
func (p Pagination) PageCount() int {
	if p.Limit == 0 || p.IsLastPage() {
		return 1
	}
	remaining := uint64(p.Total) - uint64(p.Offset)
	return int((remaining + uint64(p.Limit) - 1) / uint64(p.Limit))
}

// Page is the limit/offset pair sent with a request.
type Page struct {
	Limit  uint32
	Offset uint32
}

// NewPage returns a page, rejecting limits above MaxLimit.
func NewPage(limit, offset uint32) (Page, error) {
	if limit > MaxLimit {
		return Page{}, fmt.Errorf("page limit %d exceeds maximum %d", limit, MaxLimit)
	}
	return Page{Limit: limit, Offset: offset}, nil
}

// DefaultPage is the page the API serves when no limit or offset is given.
func DefaultPage() Page {
	return Page{Limit: DefaultLimit, Offset: DefaultOffset}
}

// MaxPage is the first page at the largest allowed limit.
func MaxPage() Page {
	return Page{Limit: MaxLimit, Offset: DefaultOffset}
}

// Next returns the page that follows p.
func (p Page) Next() Page {
	return Page{Limit: p.Limit, Offset: p.Offset + p.Limit}
}

// PageOf returns the request page that produced a Pagination.
func PageOf(p Pagination) Page {
	return Page{Limit: p.Limit, Offset: p.Offset}
}
