package similarity

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/todmy/snowball/internal/relation"
	"github.com/todmy/snowball/internal/vsm"
)

type centroids [3]vsm.Vector

func (c centroids) Centroid(ctx relation.Context) vsm.Vector { return c[ctx] }

func TestScore(t *testing.T) {
	tuple := &relation.Tuple{
		BeforeVector:  vsm.Vector{{ID: 1, Weight: 1.0}},
		BetweenVector: vsm.Vector{{ID: 0, Weight: 1.0}},
	}

	tests := []struct {
		name    string
		pattern centroids
		weights Weights
		want    float64
	}{
		{
			name:    "between only",
			pattern: centroids{nil, vsm.Vector{{ID: 0, Weight: 1.0}}, nil},
			weights: Weights{Alpha: 0, Beta: 1, Gamma: 0},
			want:    1.0,
		},
		{
			name:    "weighted sum of contexts",
			pattern: centroids{vsm.Vector{{ID: 1, Weight: 1.0}}, vsm.Vector{{ID: 0, Weight: 1.0}}, vsm.Vector{{ID: 2, Weight: 1.0}}},
			weights: Weights{Alpha: 0.2, Beta: 0.6, Gamma: 0.2},
			want:    0.8,
		},
		{
			name:    "missing centroid contributes zero",
			pattern: centroids{nil, nil, nil},
			weights: Weights{Alpha: 0.2, Beta: 0.6, Gamma: 0.2},
			want:    0,
		},
		{
			name:    "missing tuple vector contributes zero",
			pattern: centroids{nil, nil, vsm.Vector{{ID: 2, Weight: 1.0}}},
			weights: Weights{Alpha: 0, Beta: 0, Gamma: 1},
			want:    0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Score(tuple, tt.pattern, tt.weights, nil), 1e-12)
		})
	}
}

func TestBest(t *testing.T) {
	tests := []struct {
		name   string
		scores []float64
		want   Match
	}{
		{name: "empty", scores: nil, want: Match{Index: -1}},
		{name: "all zero picks first", scores: []float64{0, 0}, want: Match{Index: 0, Score: 0}},
		{name: "tie keeps first", scores: []float64{0.2, 0.7, 0.7}, want: Match{Index: 1, Score: 0.7}},
		{name: "last wins when highest", scores: []float64{0.1, 0.2, 0.9}, want: Match{Index: 2, Score: 0.9}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Best(tt.scores))
		})
	}
}

func TestAbove(t *testing.T) {
	assert.Equal(t, []int{1, 3}, Above([]float64{0.5, 0.6, 0.4, 0.9}, 0.5))
	assert.Nil(t, Above([]float64{0.1}, 0.5))
}

func TestService_Matrix(t *testing.T) {
	svc := NewService(Weights{Beta: 1}, vsm.CosineProvider{})
	svc.SetWorkers(2)

	tuples := make([]*relation.Tuple, 600)
	for i := range tuples {
		tuples[i] = &relation.Tuple{BetweenVector: vsm.Vector{{ID: i % 2, Weight: 1.0}}}
	}
	patterns := []Centroids{
		centroids{nil, vsm.Vector{{ID: 0, Weight: 1.0}}, nil},
		centroids{nil, vsm.Vector{{ID: 1, Weight: 1.0}}, nil},
	}

	matrix, err := svc.Matrix(context.Background(), tuples, patterns)
	require.NoError(t, err)
	require.Len(t, matrix, len(tuples))

	for i, row := range matrix {
		require.Len(t, row, 2)
		assert.Equal(t, Best(row).Index, i%2)
	}
}

func TestService_MatrixCancelled(t *testing.T) {
	svc := NewService(Weights{Beta: 1}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Matrix(ctx, []*relation.Tuple{{}}, []Centroids{centroids{}})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestService_MatrixNoPatterns(t *testing.T) {
	svc := NewService(Weights{Beta: 1}, nil)
	matrix, err := svc.Matrix(context.Background(), []*relation.Tuple{{}, {}}, nil)
	require.NoError(t, err)
	assert.Len(t, matrix, 2)
	assert.Empty(t, matrix[0])
}
