// Package pagination parses page/limit query parameters and builds the
// metadata returned alongside list responses.
package pagination

import (
	"net/url"
	"strconv"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

type Page struct {
	Page  int
	Limit int
}

func (p Page) Offset() int { return (p.Page - 1) * p.Limit }

// Parse reads page and limit from q. Missing or malformed values fall back
// to page 1 and DefaultLimit; limit is capped at MaxLimit.
func Parse(q url.Values) Page {
	p := Page{Page: 1, Limit: DefaultLimit}
	if n, err := strconv.Atoi(q.Get("page")); err == nil && n > 0 {
		p.Page = n
	}
	if n, err := strconv.Atoi(q.Get("limit")); err == nil && n > 0 {
		p.Limit = min(n, MaxLimit)
	}
	return p
}

type Meta struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

func NewMeta(p Page, total int) Meta {
	pages := 0
	if p.Limit > 0 {
		pages = (total + p.Limit - 1) / p.Limit
	}
	return Meta{Page: p.Page, Limit: p.Limit, Total: total, Pages: pages}
}
