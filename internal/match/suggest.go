package match

import (
	"cmp"
	"slices"
)

// MinSimilarity is the lowest score a candidate needs to be suggested.
const MinSimilarity = 0.6

type scored struct {
	name  string
	score float64
}

// Suggest returns up to limit candidates resembling name, most similar
// first and ties broken alphabetically. name itself is never suggested.
func Suggest(name string, candidates []string, limit int) []string {
	if limit <= 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(candidates))

	var ranked []scored

	for _, c := range candidates {
		if c == name {
			continue
		}

		if _, dup := seen[c]; dup {
			continue
		}

		seen[c] = struct{}{}

		if s := Similarity(name, c); s >= MinSimilarity {
			ranked = append(ranked, scored{name: c, score: s})
		}
	}

	slices.SortFunc(ranked, func(a, b scored) int {
		if c := cmp.Compare(b.score, a.score); c != 0 {
			return c
		}

		return cmp.Compare(a.name, b.name)
	})

	out := make([]string, 0, min(limit, len(ranked)))
	for _, r := range ranked[:min(limit, len(ranked))] {
		out = append(out, r.name)
	}

	return out
}
