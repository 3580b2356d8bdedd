package repository

import (
	"sort"

	"civicsolve/internal/domain/entity"
)

// sortCategoryCounts orders by count desc, then category name asc, dropping empty buckets.
func sortCategoryCounts(counts map[entity.Category]int64) []entity.CategoryCount {
	out := make([]entity.CategoryCount, 0, len(counts))
	for category, n := range counts {
		if n > 0 {
			out = append(out, entity.CategoryCount{Category: category, Count: n})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Category < out[j].Category
	})
	return out
}

// statusCounts takes Total from a count over every document, so complaints stored with a
// status outside the enum still count, matching the other drivers.
func statusCounts(total int64, byStatus map[entity.Status]int64) entity.StatusCounts {
	var counts entity.StatusCounts
	for s, n := range byStatus {
		counts.Add(s, n)
	}
	counts.Total = total
	return counts
}
