package match

// Levenshtein computes the edit distance between a and b: the minimum number
// of single-rune insertions, deletions or substitutions turning one into the
// other.
func Levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)

	// Keep the row as short as possible.
	if len(ra) > len(rb) {
		ra, rb = rb, ra
	}

	if len(ra) == 0 {
		return len(rb)
	}

	row := make([]int, len(ra)+1)
	for i := range row {
		row[i] = i
	}

	for j := 1; j <= len(rb); j++ {
		diag := row[0]
		row[0] = j

		for i := 1; i <= len(ra); i++ {
			above := row[i]

			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}

			row[i] = min(above+1, row[i-1]+1, diag+cost)
			diag = above
		}
	}

	return row[len(ra)]
}

// Similarity returns 1 - distance/longest for the normalized forms of a and
// b. Identical names score 1, unrelated names approach 0.
func Similarity(a, b string) float64 {
	na, nb := []rune(NormalizeName(a)), []rune(NormalizeName(b))

	longest := max(len(na), len(nb))
	if longest == 0 {
		return 1.0
	}

	return 1.0 - float64(Levenshtein(string(na), string(nb)))/float64(longest)
}
