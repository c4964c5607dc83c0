// Package listview holds the explicit state of a paginated, filtered worklist
// and folds it into list query parameters.
package listview

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/zatekoja/limsgateway/internal/query/filter"
	"github.com/zatekoja/limsgateway/internal/query/keys"
)

// PageSizes are the page sizes a worklist offers
var PageSizes = []int{10, 20, 30, 40, 50}

// DefaultPageSize is used when no page size is configured
const DefaultPageSize = 10

var (
	// ErrInvalidPage is returned for page numbers below 1
	ErrInvalidPage = errors.New("listview: page number must be at least 1")
	// ErrInvalidPageSize is returned for page sizes outside PageSizes
	ErrInvalidPageSize = errors.New("listview: unsupported page size")
)

// Options configures how a State maps onto backend fields
type Options struct {
	// StatusField is matched against the status multi-select
	StatusField string
	// SearchFields are searched, case-insensitively, for the free text
	SearchFields []string
	DefaultSort  filter.Sort
	PageSize     int
	// Scope qualifies every list key this state produces
	Scope map[string]string
}

// State is the view state of one worklist
type State struct {
	opts     Options
	page     int
	pageSize int
	sort     filter.Sort
	statuses []string
	search   string
}

// New returns a state on page 1 with the configured defaults
func New(opts Options) *State {
	size := opts.PageSize
	if !slices.Contains(PageSizes, size) {
		size = DefaultPageSize
	}
	if opts.StatusField == "" {
		opts.StatusField = "status"
	}
	return &State{
		opts:     opts,
		page:     1,
		pageSize: size,
		sort:     slices.Clone(opts.DefaultSort),
	}
}

// Page returns the 1-based page number
func (s *State) Page() int { return s.page }

// PageSize returns the current page size
func (s *State) PageSize() int { return s.pageSize }

// Sort returns the current sort order
func (s *State) Sort() filter.Sort { return slices.Clone(s.sort) }

// Statuses returns the selected statuses in selection order
func (s *State) Statuses() []string { return slices.Clone(s.statuses) }

// Search returns the free-text search
func (s *State) Search() string { return s.search }

// SetPage moves to page n
func (s *State) SetPage(n int) error {
	if n < 1 {
		return fmt.Errorf("%w: %d", ErrInvalidPage, n)
	}
	s.page = n
	return nil
}

// SetPageSize changes the page size and returns to page 1
func (s *State) SetPageSize(n int) error {
	if !slices.Contains(PageSizes, n) {
		return fmt.Errorf("%w: %d", ErrInvalidPageSize, n)
	}
	if n != s.pageSize {
		s.pageSize = n
		s.page = 1
	}
	return nil
}

// SetSort replaces the sort order. An empty sort restores the default.
func (s *State) SetSort(sort filter.Sort) {
	if len(sort) == 0 {
		sort = s.opts.DefaultSort
	}
	s.sort = slices.Clone(sort)
}

// SetSearch changes the free-text search and returns to page 1
func (s *State) SetSearch(text string) {
	text = strings.TrimSpace(text)
	if text == s.search {
		return
	}
	s.search = text
	s.page = 1
}

// SetStatuses replaces the status selection and returns to page 1.
// Duplicates and blanks are dropped.
func (s *State) SetStatuses(statuses ...string) {
	next := make([]string, 0, len(statuses))
	for _, st := range statuses {
		st = strings.TrimSpace(st)
		if st != "" && !slices.Contains(next, st) {
			next = append(next, st)
		}
	}
	if slices.Equal(next, s.statuses) {
		return
	}
	s.statuses = next
	s.page = 1
}

// ToggleStatus adds or removes one status from the selection
func (s *State) ToggleStatus(status string) {
	if i := slices.Index(s.statuses, status); i >= 0 {
		s.SetStatuses(slices.Delete(slices.Clone(s.statuses), i, i+1)...)
		return
	}
	s.SetStatuses(append(slices.Clone(s.statuses), status)...)
}

// ResetFilters clears the free text and the status selection and returns to page 1
func (s *State) ResetFilters() {
	s.search = ""
	s.statuses = nil
	s.page = 1
}

// Filter returns the combined filter expression, nil when nothing is selected
func (s *State) Filter() filter.Expr {
	var terms []filter.Expr
	if len(s.statuses) > 0 {
		terms = append(terms, filter.AnyOf(s.opts.StatusField, s.statuses...))
	}
	if s.search != "" && len(s.opts.SearchFields) > 0 {
		terms = append(terms, filter.ContainsAny(s.search, s.opts.SearchFields...))
	}
	if len(terms) == 0 {
		return nil
	}
	return filter.And(terms...)
}

// Params folds the state into list parameters
func (s *State) Params() keys.ListParams {
	return keys.ListParams{
		PageNumber: s.page,
		PageSize:   s.pageSize,
		Filters:    filter.Render(s.Filter()),
		SortOrder:  s.sort.Render(),
		Scope:      s.opts.Scope,
	}
}
