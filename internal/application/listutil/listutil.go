// Package listutil parses list query parameters and pages in-memory results
// for the JSON list endpoints.
package listutil

import (
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// DefaultPerPage is the default number of rows per page.
const DefaultPerPage = 50

// MaxPerPage caps per_page.
const MaxPerPage = 500

// Params carries the list parameters parsed from a request.
type Params struct {
	Page    int    // 1-indexed
	PerPage int    // rows per page
	Sort    string // one of the allowed keys, or "" for natural order
	Desc    bool
	Search  string // lower-cased free-text query
}

// ParseParams extracts page, per_page, sort, dir and q from query values.
// PRE: allowedSort lists the sort keys the caller understands
// POST: returns Params with defaults applied; unknown sort keys are dropped
func ParseParams(q url.Values, allowedSort []string) Params {
	p := Params{Page: 1, PerPage: DefaultPerPage}
	if n, err := strconv.Atoi(q.Get("page")); err == nil && n > 1 {
		p.Page = n
	}
	if n, err := strconv.Atoi(q.Get("per_page")); err == nil && n > 0 {
		p.PerPage = min(n, MaxPerPage)
	}
	for _, key := range allowedSort {
		if q.Get("sort") == key {
			p.Sort = key
			break
		}
	}
	p.Desc = q.Get("dir") == "desc"
	p.Search = strings.ToLower(strings.TrimSpace(q.Get("q")))
	return p
}

// Matches reports whether any field contains the search query.
// An empty query matches everything.
func (p Params) Matches(fields ...string) bool {
	if p.Search == "" {
		return true
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), p.Search) {
			return true
		}
	}
	return false
}

// PageInfo carries pagination metadata.
type PageInfo struct {
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// NewPageInfo computes pagination metadata.
// PRE: total >= 0
// POST: TotalPages >= 1; Page clamped to [1, TotalPages]
func NewPageInfo(page, perPage, total int) PageInfo {
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	totalPages := max((total+perPage-1)/perPage, 1)
	page = min(max(page, 1), totalPages)
	return PageInfo{Page: page, PerPage: perPage, Total: total, TotalPages: totalPages}
}

// Offset returns the index of the first row on the current page.
func (p PageInfo) Offset() int {
	return (p.Page - 1) * p.PerPage
}

// Page is one page of a list response.
type Page[T any] struct {
	Items []T      `json:"items"`
	Page  PageInfo `json:"page"`
}

// Paginate filters, sorts and slices items.
// less maps each allowed sort key to an ascending comparison; keep decides
// which items pass the search. Items is never nil.
func Paginate[T any](items []T, p Params, less map[string]func(a, b T) bool, keep func(T) bool) Page[T] {
	filtered := make([]T, 0, len(items))
	for _, it := range items {
		if keep == nil || keep(it) {
			filtered = append(filtered, it)
		}
	}
	if cmp, ok := less[p.Sort]; ok {
		sort.SliceStable(filtered, func(i, j int) bool {
			if p.Desc {
				return cmp(filtered[j], filtered[i])
			}
			return cmp(filtered[i], filtered[j])
		})
	}
	info := NewPageInfo(p.Page, p.PerPage, len(filtered))
	start := min(info.Offset(), len(filtered))
	end := min(start+info.PerPage, len(filtered))
	return Page[T]{Items: filtered[start:end], Page: info}
}
