// Package query turns a complaint listing request into filter, ordering and page
// criteria. Store drivers translate Criteria natively where they can and fall back to
// Filter.Matches, Less and Apply where they cannot, so every driver returns the same
// page for the same request.
package query

import (
	"net/url"
	"sort"
	"strings"

	"civicsolve/internal/domain/entity"
	"civicsolve/pkg/utils"
)

// All is the sentinel that disables an enum filter.
const All = "All"

type SortOrder string

const (
	SortNewest   SortOrder = "newest"
	SortOldest   SortOrder = "oldest"
	SortSupport  SortOrder = "support"
	SortPriority SortOrder = "priority"
)

// Request is the raw listing request as received from a client.
type Request struct {
	Search   string
	Category string
	Status   string
	Priority string
	SortBy   string
	Page     string
	Limit    string
}

// FromValues reads a Request from URL query values.
func FromValues(v url.Values) Request {
	return Request{
		Search:   v.Get("search"),
		Category: v.Get("category"),
		Status:   v.Get("status"),
		Priority: v.Get("priority"),
		SortBy:   v.Get("sortBy"),
		Page:     v.Get("page"),
		Limit:    v.Get("limit"),
	}
}

// Filter is the AND of every active term. Empty strings are inactive terms; any other
// value is matched exactly, so values outside the enums match nothing.
type Filter struct {
	Search     string
	Category   string
	Status     string
	Priority   string
	ReportedBy string
}

type Criteria struct {
	Filter Filter
	Sort   SortOrder
	Page   utils.PaginationParams
}

// Normalize applies defaults and never fails.
func Normalize(req Request) Criteria {
	return Criteria{
		Filter: Filter{
			Search:   strings.TrimSpace(req.Search),
			Category: enumTerm(req.Category),
			Status:   enumTerm(req.Status),
			Priority: enumTerm(req.Priority),
		},
		Sort: ResolveSort(req.SortBy),
		Page: utils.ParsePaginationParams(req.Page, req.Limit),
	}
}

func enumTerm(v string) string {
	if v == All {
		return ""
	}
	return v
}

// ResolveSort maps a sortBy value to an ordering, falling back to newest.
func ResolveSort(s string) SortOrder {
	switch SortOrder(s) {
	case SortOldest, SortSupport, SortPriority:
		return SortOrder(s)
	}
	return SortNewest
}

// Equalities returns the exact-match terms keyed by stored field name.
func (f Filter) Equalities() map[string]string {
	eq := make(map[string]string)
	if f.Category != "" {
		eq["category"] = f.Category
	}
	if f.Status != "" {
		eq["status"] = f.Status
	}
	if f.Priority != "" {
		eq["priority"] = f.Priority
	}
	if f.ReportedBy != "" {
		eq["reportedBy"] = f.ReportedBy
	}
	return eq
}

// Matches evaluates the filter against one complaint.
func (f Filter) Matches(c *entity.Complaint) bool {
	if f.Category != "" && string(c.Category) != f.Category {
		return false
	}
	if f.Status != "" && string(c.Status) != f.Status {
		return false
	}
	if f.Priority != "" && string(c.Priority) != f.Priority {
		return false
	}
	if f.ReportedBy != "" && c.ReportedBy != f.ReportedBy {
		return false
	}
	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		return strings.Contains(strings.ToLower(c.Title), needle) ||
			strings.Contains(strings.ToLower(c.Description), needle) ||
			strings.Contains(strings.ToLower(c.Location), needle)
	}
	return true
}

// SortKey is one ordering term over a stored field.
type SortKey struct {
	Field string
	Desc  bool
}

// Keys returns the full ordering for s, ending with the id tie-breaker.
func (s SortOrder) Keys() []SortKey {
	var keys []SortKey
	switch s {
	case SortOldest:
		keys = []SortKey{{Field: "createdDate"}}
	case SortSupport:
		keys = []SortKey{{Field: "upvotes", Desc: true}, {Field: "createdDate", Desc: true}}
	case SortPriority:
		keys = []SortKey{{Field: "priorityRank", Desc: true}, {Field: "createdDate", Desc: true}}
	default:
		keys = []SortKey{{Field: "createdDate", Desc: true}}
	}
	return append(keys, SortKey{Field: "id"})
}

// Less reports whether a sorts before b under s.
func Less(s SortOrder, a, b *entity.Complaint) bool {
	switch s {
	case SortSupport:
		if a.Upvotes != b.Upvotes {
			return a.Upvotes > b.Upvotes
		}
	case SortPriority:
		ra, rb := a.Priority.Rank(), b.Priority.Rank()
		if ra != rb {
			return ra > rb
		}
	case SortOldest:
		if !a.CreatedDate.Equal(b.CreatedDate) {
			return a.CreatedDate.Before(b.CreatedDate)
		}
		return a.ID < b.ID
	}
	if !a.CreatedDate.Equal(b.CreatedDate) {
		return a.CreatedDate.After(b.CreatedDate)
	}
	return a.ID < b.ID
}

// Apply filters, orders and pages an in-memory candidate set. It returns the page and the
// size of the full filtered set.
func Apply(candidates []*entity.Complaint, c Criteria) ([]*entity.Complaint, int64) {
	matched := make([]*entity.Complaint, 0, len(candidates))
	for _, complaint := range candidates {
		if c.Filter.Matches(complaint) {
			matched = append(matched, complaint)
		}
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return Less(c.Sort, matched[i], matched[j])
	})

	total := int64(len(matched))
	start := c.Page.Offset
	if start >= len(matched) {
		return []*entity.Complaint{}, total
	}
	end := start + c.Page.PageSize
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total
}

// Meta is the pagination block returned with every listing.
type Meta struct {
	CurrentPage  int
	TotalPages   int
	TotalItems   int64
	ItemsPerPage int
}

func (c Criteria) Meta(total int64) Meta {
	return Meta{
		CurrentPage:  c.Page.Page,
		TotalPages:   utils.TotalPages(total, c.Page.PageSize),
		TotalItems:   total,
		ItemsPerPage: c.Page.PageSize,
	}
}

// Result is one page of a listing.
type Result struct {
	Items []*entity.Complaint
	Meta  Meta
}
