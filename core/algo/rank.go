package algo

import (
	"cmp"
	"slices"
)

// Count is a term with its number of occurrences.
type Count struct {
	Term  string
	Count int
}

// RankCounts sorts terms by their count in descending order, keeps those with
// at least minCount occurrences and returns the top 'limit' terms. Ties are
// broken alphabetically so that the ranking is deterministic. A limit of zero
// or less returns every qualifying term.
func RankCounts(counts map[string]int, minCount, limit int) []Count {
	ranked := make([]Count, 0, len(counts))
	for term, n := range counts {
		if n >= minCount {
			ranked = append(ranked, Count{Term: term, Count: n})
		}
	}
	slices.SortFunc(ranked, func(a, b Count) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Term, b.Term)
	})
	if limit > 0 && len(ranked) > limit {
		return ranked[:limit]
	}
	return ranked
}

// RankTerms is RankCounts without the counts.
func RankTerms(counts map[string]int, minCount, limit int) []string {
	ranked := RankCounts(counts, minCount, limit)
	terms := make([]string, len(ranked))
	for i, c := range ranked {
		terms[i] = c.Term
	}
	return terms
}

// Dedupe returns the items with case-insensitive duplicates and empty strings
// removed, preserving first occurrence order.
func Dedupe(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, it := range items {
		if it == "" {
			continue
		}
		key := Fold(it)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, it)
	}
	return out
}
