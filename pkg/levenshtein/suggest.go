package levenshtein

import "slices"

// Suggest returns the candidate closest to word, or "" when none is within
// a third of the word's length (at least one edit). Ties go to the
// lexically smaller candidate.
func Suggest(word string, candidates []string) string {
	limit := max(1, len([]rune(word))/3)

	sorted := slices.Clone(candidates)
	slices.Sort(sorted)

	var (
		ctx  Context
		best string
	)

	bestDist := limit + 1

	for _, candidate := range sorted {
		if candidate == word {
			return ""
		}

		if d := ctx.Distance(word, candidate); d < bestDist {
			best, bestDist = candidate, d
		}
	}

	return best
}
