package cli

import (
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"sales-dashboard/services"
)

const maxSuggestions = 3

// resolveCategory maps user input to a category filter. "all" selects every
// category; otherwise an exact match wins, then a unique case-insensitive
// one. On failure it returns the closest known categories.
func resolveCategory(query string, categories []string) (services.FilterState, []string, bool) {
	query = strings.TrimSpace(query)
	if strings.EqualFold(query, "all") {
		return services.AllCategories(), nil, true
	}

	var folded []string
	for _, c := range categories {
		if c == query {
			return services.CategoryFilter(c), nil, true
		}
		if strings.EqualFold(c, query) {
			folded = append(folded, c)
		}
	}
	if len(folded) == 1 {
		return services.CategoryFilter(folded[0]), nil, true
	}

	return services.FilterState{}, suggestCategories(query, categories), false
}

func suggestCategories(query string, categories []string) []string {
	ranks := fuzzy.RankFindNormalizedFold(query, categories)
	sort.Sort(ranks)

	out := make([]string, 0, maxSuggestions)
	for _, r := range ranks {
		if len(out) == maxSuggestions {
			break
		}
		out = append(out, r.Target)
	}
	return out
}
