package clustering

import (
	"github.com/todmy/snowball/internal/pattern"
	"github.com/todmy/snowball/internal/relation"
	"github.com/todmy/snowball/internal/similarity"
)

// ScoreFunc scores a tuple against a pattern
type ScoreFunc func(t *relation.Tuple, p *pattern.Pattern) float64

// SinglePass clusters tuples onto existing patterns in one pass.
//
// When there are no patterns the first tuple seeds one. Every other tuple
// joins the pattern it scores highest against if that score reaches the
// threshold; ties keep the earlier pattern. Otherwise it starts a new
// singleton pattern. The returned slice may share storage with patterns.
func SinglePass(patterns []*pattern.Pattern, tuples []*relation.Tuple, score ScoreFunc, threshold float64) ([]*pattern.Pattern, error) {
	if len(tuples) == 0 {
		return patterns, nil
	}

	start := 0
	if len(patterns) == 0 {
		patterns = append(patterns, pattern.New(tuples[0]))
		start = 1
	}

	for _, t := range tuples[start:] {
		scores := make([]float64, len(patterns))
		for j, p := range patterns {
			scores[j] = score(t, p)
		}

		best := similarity.Best(scores)
		if best.Index < 0 || best.Score < threshold {
			patterns = append(patterns, pattern.New(t))
			continue
		}
		if err := patterns[best.Index].AddMember(t); err != nil {
			return nil, err
		}
	}

	return patterns, nil
}

// Prune drops patterns with fewer than minSupport members, keeping order.
func Prune(patterns []*pattern.Pattern, minSupport int) []*pattern.Pattern {
	kept := make([]*pattern.Pattern, 0, len(patterns))
	for _, p := range patterns {
		if p.Size() >= minSupport {
			kept = append(kept, p)
		}
	}
	return kept
}
