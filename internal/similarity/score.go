package similarity

import (
	"github.com/todmy/snowball/internal/relation"
	"github.com/todmy/snowball/internal/vsm"
)

// Centroids is anything that exposes one centroid vector per context.
// A nil centroid means the context has no representation.
type Centroids interface {
	Centroid(c relation.Context) vsm.Vector
}

// Weights are the per-context contributions to the similarity score.
// Alpha weighs the before context, Beta the between and Gamma the after.
type Weights struct {
	Alpha float64
	Beta  float64
	Gamma float64
}

// Of returns the weight of context c
func (w Weights) Of(c relation.Context) float64 {
	switch c {
	case relation.Before:
		return w.Alpha
	case relation.Between:
		return w.Beta
	case relation.After:
		return w.Gamma
	}
	return 0
}

// Sum returns alpha + beta + gamma
func (w Weights) Sum() float64 {
	return w.Alpha + w.Beta + w.Gamma
}

// Score calculates the weighted similarity between a tuple and a pattern:
//
//	alpha*cos(before) + beta*cos(between) + gamma*cos(after)
//
// A context contributes 0 when either the tuple vector or the centroid is
// missing. The score is tuple-versus-pattern, not a symmetric measure.
func Score(t *relation.Tuple, p Centroids, w Weights, cosine func(a, b vsm.Vector) float64) float64 {
	if cosine == nil {
		cosine = vsm.Cosine
	}

	var score float64
	for _, c := range relation.Contexts {
		weight := w.Of(c)
		if weight == 0 {
			continue
		}
		tv := t.Vector(c)
		pv := p.Centroid(c)
		if tv == nil || pv == nil {
			continue
		}
		score += weight * cosine(tv, pv)
	}
	return score
}
