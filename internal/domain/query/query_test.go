package query

import (
	"fmt"
	"math/rand"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"civicsolve/internal/domain/entity"
)

var base = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

func complaint(id string, minutes int, upvotes int, p entity.Priority) *entity.Complaint {
	return &entity.Complaint{
		ID:           id,
		Title:        "Issue " + id,
		Description:  "Description of " + id,
		Location:     "Ward 7",
		Category:     entity.CategoryRoadTransport,
		Status:       entity.StatusReported,
		Priority:     p,
		PriorityRank: p.Rank(),
		Upvotes:      upvotes,
		CreatedDate:  base.Add(time.Duration(minutes) * time.Minute),
	}
}

func ids(items []*entity.Complaint) []string {
	out := make([]string, len(items))
	for i, c := range items {
		out[i] = c.ID
	}
	return out
}

func TestNormalizeDefaults(t *testing.T) {
	c := Normalize(FromValues(url.Values{}))

	assert.Equal(t, Filter{}, c.Filter)
	assert.Equal(t, SortNewest, c.Sort)
	assert.Equal(t, 1, c.Page.Page)
	assert.Equal(t, 10, c.Page.PageSize)
}

func TestNormalizeAllSentinelAndSearch(t *testing.T) {
	c := Normalize(Request{Category: "All", Status: "resolved", Priority: "All", Search: "  pothole "})

	assert.Equal(t, "", c.Filter.Category)
	assert.Equal(t, "resolved", c.Filter.Status)
	assert.Equal(t, "pothole", c.Filter.Search)
}

func TestResolveSortFallsBackToNewest(t *testing.T) {
	assert.Equal(t, SortSupport, ResolveSort("support"))
	assert.Equal(t, SortNewest, ResolveSort("random"))
	assert.Equal(t, SortNewest, ResolveSort(""))
}

func TestSearchIsCaseInsensitiveAcrossFields(t *testing.T) {
	c := complaint("a", 0, 0, entity.PriorityLow)
	c.Location = "MG Road, Bengaluru"

	assert.True(t, Filter{Search: "mg road"}.Matches(c))
	assert.True(t, Filter{Search: "ISSUE"}.Matches(c))
	assert.False(t, Filter{Search: "water"}.Matches(c))
	assert.False(t, Filter{Search: "(["}.Matches(c))
}

func TestUnknownEnumMatchesNothing(t *testing.T) {
	items := []*entity.Complaint{complaint("a", 0, 0, entity.PriorityLow)}

	page, total := Apply(items, Normalize(Request{Category: "Potholes"}))

	assert.Empty(t, page)
	assert.Zero(t, total)
}

func TestSupportSortBreaksTiesByNewest(t *testing.T) {
	items := []*entity.Complaint{
		complaint("old-5", 0, 5, entity.PriorityLow),
		complaint("new-5", 10, 5, entity.PriorityLow),
		complaint("top", 5, 9, entity.PriorityLow),
	}

	page, _ := Apply(items, Normalize(Request{SortBy: "support"}))

	assert.Equal(t, []string{"top", "new-5", "old-5"}, ids(page))
}

func TestPrioritySortRanksHighFirst(t *testing.T) {
	items := []*entity.Complaint{
		complaint("low", 30, 0, entity.PriorityLow),
		complaint("high-old", 0, 0, entity.PriorityHigh),
		complaint("medium", 20, 0, entity.PriorityMedium),
		complaint("high-new", 10, 0, entity.PriorityHigh),
	}

	page, _ := Apply(items, Normalize(Request{SortBy: "priority"}))

	assert.Equal(t, []string{"high-new", "high-old", "medium", "low"}, ids(page))
}

func TestOldestAndNewest(t *testing.T) {
	items := []*entity.Complaint{
		complaint("b", 10, 0, entity.PriorityLow),
		complaint("a", 0, 0, entity.PriorityLow),
		complaint("c", 20, 0, entity.PriorityLow),
	}

	newest, _ := Apply(items, Normalize(Request{}))
	oldest, _ := Apply(items, Normalize(Request{SortBy: "oldest"}))

	assert.Equal(t, []string{"c", "b", "a"}, ids(newest))
	assert.Equal(t, []string{"a", "b", "c"}, ids(oldest))
}

func TestPageBeyondEndIsEmptyWithMeta(t *testing.T) {
	items := []*entity.Complaint{complaint("a", 0, 0, entity.PriorityLow), complaint("b", 1, 0, entity.PriorityLow)}
	criteria := Normalize(Request{Page: "5", Limit: "1"})

	page, total := Apply(items, criteria)
	meta := criteria.Meta(total)

	assert.Empty(t, page)
	assert.Equal(t, Meta{CurrentPage: 5, TotalPages: 2, TotalItems: 2, ItemsPerPage: 1}, meta)
}

func TestPagesAreSlicesOfTheFullOrdering(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	statuses := []string{"All", "reported", "in_progress", "resolved", "closed", "bogus"}
	priorities := []string{"All", "high", "medium", "low"}
	sorts := []string{"newest", "oldest", "support", "priority", "nonsense"}

	var items []*entity.Complaint
	for i := 0; i < 60; i++ {
		c := complaint(fmt.Sprintf("c%02d", i), rng.Intn(20), rng.Intn(4), entity.Priorities[rng.Intn(3)])
		c.Status = entity.Statuses[rng.Intn(4)]
		c.Category = entity.Categories[rng.Intn(len(entity.Categories))]
		if i%3 == 0 {
			c.Description = "Broken streetlight near school"
		}
		items = append(items, c)
	}

	for trial := 0; trial < 200; trial++ {
		req := Request{
			Status:   statuses[rng.Intn(len(statuses))],
			Priority: priorities[rng.Intn(len(priorities))],
			SortBy:   sorts[rng.Intn(len(sorts))],
		}
		if rng.Intn(2) == 0 {
			req.Search = "STREETLIGHT"
		}

		full, fullTotal := Apply(items, Normalize(Request{Status: req.Status, Priority: req.Priority, SortBy: req.SortBy, Search: req.Search, Limit: "100"}))
		require.Equal(t, int64(len(full)), fullTotal)

		limit := rng.Intn(7) + 1
		page := rng.Intn(12) + 1
		req.Limit = fmt.Sprint(limit)
		req.Page = fmt.Sprint(page)

		got, total := Apply(items, Normalize(req))
		assert.Equal(t, fullTotal, total)

		start := (page - 1) * limit
		var want []string
		if start < len(full) {
			end := start + limit
			if end > len(full) {
				end = len(full)
			}
			want = ids(full[start:end])
		}
		if want == nil {
			want = []string{}
		}
		assert.Equal(t, want, ids(got))
	}
}
