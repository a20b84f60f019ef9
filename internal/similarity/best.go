package similarity

// Match is a pattern index paired with its similarity score.
type Match struct {
	Index int
	Score float64
}

// Best finds the highest score in a row of pattern scores.
// Ties keep the first index. A row of zeros selects index 0 with score 0.
// Returns -1 only for an empty row.
func Best(scores []float64) Match {
	if len(scores) == 0 {
		return Match{Index: -1}
	}

	best := Match{Index: 0, Score: 0}
	for i, s := range scores {
		if s > best.Score {
			best = Match{Index: i, Score: s}
		}
	}
	return best
}

// Above returns the indexes of scores strictly greater than threshold, in order.
func Above(scores []float64, threshold float64) []int {
	var idx []int
	for i, s := range scores {
		if s > threshold {
			idx = append(idx, i)
		}
	}
	return idx
}
