package similarity

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/todmy/snowball/internal/relation"
	"github.com/todmy/snowball/internal/vsm"
)

// rowsPerTask is how many tuples one worker scores before checking ctx.
const rowsPerTask = 256

// Service scores tuples against patterns with fixed weights.
type Service struct {
	weights Weights
	cosine  func(a, b vsm.Vector) float64
	workers int
}

// NewService creates a new similarity service. The provider supplies the
// cosine primitive; nil falls back to vsm.Cosine.
func NewService(weights Weights, provider vsm.Provider) *Service {
	s := &Service{
		weights: weights,
		cosine:  vsm.Cosine,
		workers: runtime.GOMAXPROCS(0),
	}
	if provider != nil {
		s.cosine = provider.Cosine
	}
	return s
}

// SetWorkers limits the parallelism of Matrix. Values below 1 are ignored.
func (s *Service) SetWorkers(n int) {
	if n > 0 {
		s.workers = n
	}
}

// Weights returns the configured context weights
func (s *Service) Weights() Weights {
	return s.weights
}

// Score calculates the similarity between one tuple and one pattern
func (s *Service) Score(t *relation.Tuple, p Centroids) float64 {
	return Score(t, p, s.weights, s.cosine)
}

// Scores returns the similarity of t against every pattern, in pattern order.
func (s *Service) Scores(t *relation.Tuple, patterns []Centroids) []float64 {
	row := make([]float64, len(patterns))
	for j, p := range patterns {
		row[j] = s.Score(t, p)
	}
	return row
}

// Matrix computes an len(tuples) x len(patterns) score matrix.
// Rows are computed in parallel; patterns must not change while it runs.
// Element [i][j] is the similarity between tuples[i] and patterns[j].
func (s *Service) Matrix(ctx context.Context, tuples []*relation.Tuple, patterns []Centroids) ([][]float64, error) {
	matrix := make([][]float64, len(tuples))
	if len(tuples) == 0 || len(patterns) == 0 {
		for i := range matrix {
			matrix[i] = []float64{}
		}
		return matrix, nil
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	for start := 0; start < len(tuples); start += rowsPerTask {
		end := min(start+rowsPerTask, len(tuples))
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			for i := start; i < end; i++ {
				matrix[i] = s.Scores(tuples[i], patterns)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return matrix, nil
}
