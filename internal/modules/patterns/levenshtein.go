package patterns

// Levenshtein returns the edit distance between a and b, counted in runes.
//
// When maxDistance is non-negative the computation stops as soon as every cell
// of the current DP row exceeds it, returning (maxDistance, false). A completed
// computation returns (distance, true); the distance may still exceed
// maxDistance, so callers needing a bound check compare it themselves.
// A negative maxDistance disables the early exit.
func Levenshtein(a, b string, maxDistance int) (int, bool) {
	if a == b {
		return 0, true
	}

	long, short := []rune(a), []rune(b)
	if len(long) < len(short) {
		long, short = short, long
	}

	if len(short) == 0 {
		if maxDistance >= 0 && len(long) > maxDistance {
			return maxDistance, false
		}
		return len(long), true
	}

	previous := make([]int, len(short)+1)
	current := make([]int, len(short)+1)
	for j := range previous {
		previous[j] = j
	}

	for i, c1 := range long {
		current[0] = i + 1
		rowMin := current[0]
		for j, c2 := range short {
			cost := 1
			if c1 == c2 {
				cost = 0
			}
			current[j+1] = min(
				previous[j+1]+1, // insertion
				current[j]+1,    // deletion
				previous[j]+cost,
			)
			rowMin = min(rowMin, current[j+1])
		}
		previous, current = current, previous

		if maxDistance >= 0 && rowMin > maxDistance {
			return maxDistance, false
		}
	}

	return previous[len(short)], true
}

// WithinDistance reports whether a and b are at most maxDistance edits apart.
func WithinDistance(a, b string, maxDistance int) bool {
	d, completed := Levenshtein(a, b, maxDistance)
	return completed && d <= maxDistance
}
