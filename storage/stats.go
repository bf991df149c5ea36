package storage

import (
	"cmp"
	"slices"
	"strings"

	"github.com/poiesic/scout/core"
)

// TagKey is the grouping key of a tag set. Tag order is significant.
func TagKey(tags []string) string {
	return strings.Join(tags, ",")
}

// SortTagCounts flattens tag groups ordered by count descending, then tag key.
func SortTagCounts(groups map[string]*core.TagCount) []core.TagCount {
	stats := make([]core.TagCount, 0, len(groups))
	for _, g := range groups {
		stats = append(stats, *g)
	}
	slices.SortFunc(stats, func(a, b core.TagCount) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(TagKey(a.Tags), TagKey(b.Tags))
	})
	return stats
}
