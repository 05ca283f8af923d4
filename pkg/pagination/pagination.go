// Package pagination splits ordered collections into fixed-size pages, both
// for stateless listing requests and for the stateful Pager.
package pagination

import (
	"net/http"
	"strconv"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Params addresses one 1-based page.
type Params struct {
	Page    int `json:"page"`
	PerPage int `json:"per_page"`
}

// DefaultParams addresses the first page at the default size.
func DefaultParams() Params {
	return Params{Page: 1, PerPage: DefaultPageSize}
}

// Offset is the index of the first item on the page.
func (p Params) Offset() int {
	return (p.Page - 1) * p.PerPage
}

// FromRequest reads the page and per_page query parameters. A value that
// does not parse, is not positive, or exceeds MaxPageSize keeps its default.
func FromRequest(r *http.Request) Params {
	q := r.URL.Query()
	p := DefaultParams()
	p.Page = positive(q.Get("page"), p.Page, 0)
	p.PerPage = positive(q.Get("per_page"), p.PerPage, MaxPageSize)
	return p
}

func positive(raw string, fallback, limit int) int {
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 || (limit > 0 && v > limit) {
		return fallback
	}
	return v
}

// TotalPages returns ceil(total / perPage), or 0 when either is not positive.
func TotalPages(total, perPage int) int {
	if perPage <= 0 || total <= 0 {
		return 0
	}
	return (total + perPage - 1) / perPage
}

// window returns items[offset:offset+size] clamped to the slice bounds.
func window[T any](items []T, offset, size int) []T {
	start := min(max(offset, 0), len(items))
	end := min(start+max(size, 0), len(items))
	return items[start:end]
}

// Result is one page of a collection plus the numbers a client needs to
// render page controls.
type Result[T any] struct {
	Data       []T  `json:"data"`
	TotalCount int  `json:"total_count"`
	Page       int  `json:"page"`
	PerPage    int  `json:"per_page"`
	TotalPages int  `json:"total_pages"`
	HasNext    bool `json:"has_next"`
	HasPrev    bool `json:"has_prev"`
}

// Paginate returns the page of items addressed by params. The page shares
// its backing array with items.
func Paginate[T any](items []T, params Params) Result[T] {
	return newResult(window(items, params.Offset(), params.PerPage), len(items), params)
}

func newResult[T any](data []T, total int, params Params) Result[T] {
	pages := TotalPages(total, params.PerPage)
	return Result[T]{
		Data:       data,
		TotalCount: total,
		Page:       params.Page,
		PerPage:    params.PerPage,
		TotalPages: pages,
		HasNext:    params.Page < pages,
		HasPrev:    params.Page > 1,
	}
}
