package vsm

import (
	"sort"

	"gonum.org/v1/gonum/floats"
)

// Term is one weighted dimension of a sparse vector.
type Term struct {
	ID     int
	Weight float64
}

// Vector is a sparse weighted-term vector sorted by term ID.
// A nil Vector means the context was never vectorised; an empty non-nil
// Vector means it was vectorised but produced no known terms.
type Vector []Term

// NewVector builds a Vector from an id -> weight map. Zero weights are kept.
func NewVector(weights map[int]float64) Vector {
	v := make(Vector, 0, len(weights))
	for id, w := range weights {
		v = append(v, Term{ID: id, Weight: w})
	}
	sort.Slice(v, func(i, j int) bool { return v[i].ID < v[j].ID })
	return v
}

// IsEmpty reports whether the vector has no terms (nil or empty).
func (v Vector) IsEmpty() bool {
	return len(v) == 0
}

// Weight returns the weight of term id, or 0 when absent.
func (v Vector) Weight(id int) float64 {
	i := sort.Search(len(v), func(i int) bool { return v[i].ID >= id })
	if i < len(v) && v[i].ID == id {
		return v[i].Weight
	}
	return 0
}

// Clone returns a deep copy, preserving nil.
func (v Vector) Clone() Vector {
	if v == nil {
		return nil
	}
	out := make(Vector, len(v))
	copy(out, v)
	return out
}

// Weights returns the weights in term order.
func (v Vector) Weights() []float64 {
	w := make([]float64, len(v))
	for i, t := range v {
		w[i] = t.Weight
	}
	return w
}

// Norm returns the L2 norm of the vector.
func (v Vector) Norm() float64 {
	if len(v) == 0 {
		return 0
	}
	return floats.Norm(v.Weights(), 2)
}

// Cosine calculates the cosine similarity between two sparse vectors.
// Returns 0 when either vector is empty or has zero magnitude.
func Cosine(a, b Vector) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	magA := a.Norm()
	magB := b.Norm()
	if magA == 0 || magB == 0 {
		return 0
	}

	// Align the shared terms so the dot product can run on dense slices
	var left, right []float64
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i].ID == b[j].ID:
			left = append(left, a[i].Weight)
			right = append(right, b[j].Weight)
			i++
			j++
		case a[i].ID < b[j].ID:
			i++
		default:
			j++
		}
	}
	if len(left) == 0 {
		return 0
	}

	sim := floats.Dot(left, right) / (magA * magB)
	if sim > 1 {
		sim = 1
	}
	return sim
}
