package listing

import (
	"fmt"
	"strconv"
)

// PageSize is a page length; All disables paging.
type PageSize int

// All returns every row on a single page.
const All PageSize = 0

// DefaultPageSize matches the results table default.
const DefaultPageSize PageSize = 25

// ParsePageSize accepts "all" or a positive integer. Empty input yields def.
func ParsePageSize(raw string, def PageSize) (PageSize, error) {
	switch raw {
	case "":
		return def, nil
	case "all":
		return All, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("page size must be \"all\" or a positive integer, got %q", raw)
	}
	return PageSize(n), nil
}

// String renders the size the way ParsePageSize reads it.
func (p PageSize) String() string {
	if p <= All {
		return "all"
	}
	return strconv.Itoa(int(p))
}

// MarshalText keeps the "all" sentinel readable in JSON.
func (p PageSize) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// TotalPages returns the page count for n rows; an empty list still has one page.
func TotalPages(n int, size PageSize) int {
	if size <= All || n == 0 {
		return 1
	}
	return (n-1)/int(size) + 1
}

// Paginate returns rows [(page-1)*size, page*size). Pages below 1 read as 1;
// pages past the end are empty.
func Paginate[T any](items []T, size PageSize, page int) []T {
	if size <= All {
		return items
	}
	if page < 1 {
		page = 1
	}
	if len(items) == 0 || page-1 > (len(items)-1)/int(size) {
		return []T{}
	}
	start := (page - 1) * int(size)
	end := start + min(int(size), len(items)-start)
	return items[start:end]
}

// View is the caller-held table state: sort selection, page size and page number.
type View struct {
	Sort SortState `json:"sort"`
	Size PageSize  `json:"page_size"`
	Page int       `json:"page"`
}

// NewView starts on page one, unsorted.
func NewView(size PageSize) View {
	return View{Size: size, Page: 1}
}

// SortOn toggles the sort key and returns to page one.
func (v View) SortOn(key string) View {
	v.Sort = v.Sort.Request(key)
	v.Page = 1
	return v
}

// Resize changes the page size and returns to page one.
func (v View) Resize(size PageSize) View {
	v.Size = size
	v.Page = 1
	return v
}

// Goto moves to page, clamped to at least one.
func (v View) Goto(page int) View {
	v.Page = max(page, 1)
	return v
}

// Page is one rendered slice of a listing.
type Page[T any] struct {
	Items      []T  `json:"items"`
	Total      int  `json:"total"`
	TotalPages int  `json:"total_pages"`
	View       View `json:"view"`
}

// Render sorts and slices items according to the view.
func Render[T any](items []T, view View, keys map[string]Key[T]) (Page[T], error) {
	sorted, err := Apply(items, view.Sort, keys)
	if err != nil {
		return Page[T]{}, err
	}
	if view.Page < 1 {
		view.Page = 1
	}
	return Page[T]{
		Items:      Paginate(sorted, view.Size, view.Page),
		Total:      len(sorted),
		TotalPages: TotalPages(len(sorted), view.Size),
		View:       view,
	}, nil
}
