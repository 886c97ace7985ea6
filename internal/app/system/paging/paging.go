// internal/app/system/paging/paging.go
package paging

import (
	"net/http"
	"strconv"

	"github.com/dalemusser/waffle/pantry/query"
)

// DefaultLimit is the page size used when the request does not name one.
const DefaultLimit = 10

// MaxLimit caps the page size a caller can request.
const MaxLimit = 100

// Params is a normalized page request. Page is 1-based.
type Params struct {
	Page  int
	Limit int
}

// New clamps page to >= 1 and limit to [1, MaxLimit].
// A non-positive limit falls back to DefaultLimit.
func New(page, limit int) Params {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return Params{Page: page, Limit: limit}
}

// Parse reads the "page" and "limit" query parameters.
// Missing or malformed values fall back to the defaults.
func Parse(r *http.Request) Params {
	return New(atoi(query.Get(r, "page")), atoi(query.Get(r, "limit")))
}

// Skip returns the number of rows to skip, as Mongo expects it.
func (p Params) Skip() int64 { return int64((p.Page - 1) * p.Limit) }

// Take returns the page size, as Mongo expects it.
func (p Params) Take() int64 { return int64(p.Limit) }

// Meta is the pagination block returned alongside a page of results.
type Meta struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"totalPages"`
}

// MetaFor computes the pagination block for total matching rows.
func (p Params) MetaFor(total int64) Meta {
	pages := total / int64(p.Limit)
	if total%int64(p.Limit) != 0 {
		pages++
	}
	return Meta{Page: p.Page, Limit: p.Limit, Total: total, TotalPages: pages}
}

func atoi(s string) int {
	if s == "" {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
