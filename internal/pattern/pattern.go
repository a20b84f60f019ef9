package pattern

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/todmy/snowball/internal/relation"
	"github.com/todmy/snowball/internal/vsm"
)

// ErrCentroidOutOfRange signals a centroid weight outside [0,1]. Input
// vectors are normalised tf-idf weights, so this indicates corrupt data.
var ErrCentroidOutOfRange = errors.New("centroid weight out of range")

// ConfidenceWeights penalise negative and unknown evidence in the
// 2003 confidence formula.
type ConfidenceWeights struct {
	WNeg float64
	WUnk float64
}

// Pattern is a cluster of tuples generalised into an extraction rule.
type Pattern struct {
	tuples    []*relation.Tuple
	centroids [3]vsm.Vector

	Positive int
	Negative int
	Unknown  int

	Confidence         float64
	PreviousConfidence float64
}

// New creates a pattern. When t is non-nil it becomes the only member and
// its vectors are the centroids verbatim.
func New(t *relation.Tuple) *Pattern {
	p := &Pattern{}
	if t != nil {
		p.tuples = append(p.tuples, t)
		for _, c := range relation.Contexts {
			p.centroids[c] = t.Vector(c)
		}
	}
	return p
}

// Tuples returns the members in insertion order.
func (p *Pattern) Tuples() []*relation.Tuple {
	return p.tuples
}

// Size returns the number of members
func (p *Pattern) Size() int {
	return len(p.tuples)
}

// Centroid returns the centroid vector for context c.
func (p *Pattern) Centroid(c relation.Context) vsm.Vector {
	return p.centroids[c]
}

// AddMember appends t and recomputes all three centroids.
func (p *Pattern) AddMember(t *relation.Tuple) error {
	p.tuples = append(p.tuples, t)
	return p.recompute()
}

func (p *Pattern) recompute() error {
	for _, c := range relation.Contexts {
		v, err := Centroid(p.tuples, c)
		if err != nil {
			return err
		}
		p.centroids[c] = v
	}
	return nil
}

// Centroid calculates the mean vector of one context across members.
//
// With no members the result is nil. With one member it is that member's
// vector unchanged. With more, every term weight is summed across members
// and divided by the member count, members lacking a term contributing 0.
// When the first member has no vector for the context the centroid is nil.
func Centroid(tuples []*relation.Tuple, c relation.Context) (vsm.Vector, error) {
	switch len(tuples) {
	case 0:
		return nil, nil
	case 1:
		return tuples[0].Vector(c), nil
	}

	if tuples[0].Vector(c) == nil {
		return nil, nil
	}

	sum := make(map[int]float64)
	for _, t := range tuples {
		for _, term := range t.Vector(c) {
			sum[term.ID] += term.Weight
		}
	}

	n := float64(len(tuples))
	for id, w := range sum {
		mean := w / n
		if mean < 0 || mean > 1 || math.IsNaN(mean) {
			return nil, fmt.Errorf("%w: term %d in %s context has weight %g", ErrCentroidOutOfRange, id, c, mean)
		}
		sum[id] = mean
	}

	return vsm.NewVector(sum), nil
}

// UpdateSelectivity counts how the tuple agrees with the seed sets and then
// recomputes the confidence with UpdateConfidence2003.
//
// For every positive seed whose first entity matches the tuple (exactly or
// after trimming whitespace), a matching second entity counts as positive
// and a mismatch as negative. For every positive seed that does not match,
// each negative seed matching both entities counts as negative. Unknown is
// incremented once per positive seed whatever the outcome.
func (p *Pattern) UpdateSelectivity(t *relation.Tuple, positives, negatives *relation.SeedSet, w ConfidenceWeights) {
	for _, seed := range positives.Seeds() {
		if entityMatches(seed.E1, t.E1) {
			if entityMatches(seed.E2, t.E2) {
				p.Positive++
			} else {
				p.Negative++
			}
		} else {
			for _, neg := range negatives.Seeds() {
				if entityMatches(neg.E1, t.E1) && entityMatches(neg.E2, t.E2) {
					p.Negative++
				}
			}
		}
		// TODO: count unknown only for unmatched seeds once reference results are re-baselined
		p.Unknown++
	}

	p.UpdateConfidence2003(w)
}

func entityMatches(seed, entity string) bool {
	return seed == entity || strings.TrimSpace(seed) == strings.TrimSpace(entity)
}

// UpdateConfidence2003 sets confidence to
// log2(pos) * pos / (pos + unk*wUnk + neg*wNeg), or 0 with no positive support.
func (p *Pattern) UpdateConfidence2003(w ConfidenceWeights) {
	p.Confidence = Confidence2003(p.Positive, p.Negative, p.Unknown, w)
}

// Confidence2003 is the information-weighted precision of a pattern.
func Confidence2003(positive, negative, unknown int, w ConfidenceWeights) float64 {
	if positive <= 0 {
		return 0
	}
	pos := float64(positive)
	denom := pos + float64(unknown)*w.WUnk + float64(negative)*w.WNeg
	return math.Log2(pos) * pos / denom
}

// UpdateConfidence sets confidence to SimpleConfidence when there is any
// evidence, leaving it unchanged otherwise.
func (p *Pattern) UpdateConfidence() {
	if p.Positive > 0 || p.Negative > 0 {
		p.Confidence = p.SimpleConfidence()
	}
}

// SimpleConfidence returns pos / (pos + neg), or 0 without evidence.
func (p *Pattern) SimpleConfidence() float64 {
	total := p.Positive + p.Negative
	if total == 0 {
		return 0
	}
	return float64(p.Positive) / float64(total)
}

// Equal reports whether two patterns have the same set of members,
// irrespective of order.
func (p *Pattern) Equal(other *Pattern) bool {
	if p == nil || other == nil {
		return p == other
	}
	return keySet(p.tuples).equal(keySet(other.tuples))
}

// BetweenPhrases returns the distinct between contexts of the members,
// in member order.
func (p *Pattern) BetweenPhrases() []string {
	seen := make(map[string]bool)
	var out []string
	for _, t := range p.tuples {
		phrase := t.Text(relation.Between)
		if seen[phrase] {
			continue
		}
		seen[phrase] = true
		out = append(out, phrase)
	}
	return out
}

func (p *Pattern) String() string {
	var b strings.Builder
	for _, t := range p.tuples {
		b.WriteString(t.String())
		b.WriteByte('|')
	}
	return b.String()
}

type keys map[relation.Key]struct{}

func keySet(tuples []*relation.Tuple) keys {
	set := make(keys, len(tuples))
	for _, t := range tuples {
		set[t.Key()] = struct{}{}
	}
	return set
}

func (k keys) equal(other keys) bool {
	if len(k) != len(other) {
		return false
	}
	for key := range k {
		if _, ok := other[key]; !ok {
			return false
		}
	}
	return true
}
