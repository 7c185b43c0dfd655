package patch

import "sort"

// SymbolOverlap returns the Jaccard overlap between the affected symbol
// sets of two candidates. Returns 0 when either set is empty.
func SymbolOverlap(a, b Candidate) float64 {
	if len(a.Symbols) == 0 || len(b.Symbols) == 0 {
		return 0
	}

	set := make(map[string]bool, len(a.Symbols))
	for _, s := range a.Symbols {
		set[s] = true
	}

	intersection := 0
	union := len(set)
	for _, s := range b.Symbols {
		if set[s] {
			intersection++
		} else {
			union++
		}
	}

	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

// UniqueSymbols collects the distinct affected symbols across candidates,
// sorted for stable output.
func UniqueSymbols(candidates []Candidate) []string {
	seen := make(map[string]bool)
	var symbols []string
	for _, c := range candidates {
		for _, s := range c.Symbols {
			if !seen[s] {
				seen[s] = true
				symbols = append(symbols, s)
			}
		}
	}
	sort.Strings(symbols)
	return symbols
}

// SortByID orders candidates ascending by id. Candidate id ordering is the
// documented tie-breaking convention everywhere scores are equal.
func SortByID(candidates []Candidate) {
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].ID < candidates[j].ID
	})
}

// ByID builds a lookup map from candidate id to candidate.
func ByID(candidates []Candidate) map[string]Candidate {
	m := make(map[string]Candidate, len(candidates))
	for _, c := range candidates {
		m[c.ID] = c
	}
	return m
}
