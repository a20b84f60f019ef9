package bootstrap

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/todmy/snowball/internal/clustering"
	"github.com/todmy/snowball/internal/config"
	"github.com/todmy/snowball/internal/pattern"
	"github.com/todmy/snowball/internal/relation"
	"github.com/todmy/snowball/internal/vsm"
)

func tuple(e1, e2, between string, vec vsm.Vector) *relation.Tuple {
	return &relation.Tuple{
		E1:            e1,
		E2:            e2,
		Sentence:      e1 + " " + between + " " + e2,
		BetweenTokens: []relation.TaggedToken{{Word: between, Tag: "VBN"}},
		BetweenVector: vec,
	}
}

func testConfig(iterations int) *config.Config {
	cfg := config.Default()
	cfg.Alpha, cfg.Beta, cfg.Gamma = 0, 1, 0
	cfg.ThresholdSimilarity = 0.5
	cfg.InstanceConfidence = 0.8
	cfg.MinPatternSupport = 1
	cfg.NumberIterations = iterations
	return cfg
}

func TestEngine_RanksSeedMatchAboveUnrelatedTuple(t *testing.T) {
	nokia := tuple("Nokia", "Espoo", "is headquartered in", vsm.Vector{{ID: 0, Weight: 1}})
	microsoft := tuple("Microsoft", "Seattle", "sued", vsm.Vector{{ID: 5, Weight: 1}})

	seeds := relation.NewSeedSet(relation.NewSeed("Nokia", "Espoo"))
	engine := New(testConfig(1), seeds, nil, nil, nil)

	result, err := engine.Run(context.Background(), []*relation.Tuple{nokia, microsoft})
	require.NoError(t, err)

	require.Len(t, result.Relationships, 1)
	rel := result.Relationships[0]
	assert.Equal(t, "Nokia", rel.E1)
	assert.Equal(t, "Espoo", rel.E2)
	assert.Greater(t, rel.Confidence, 0.0)
	assert.Equal(t, nokia.Sentence, rel.Sentence)
	assert.False(t, rel.PassiveVoice)

	// iterations 0 and 1 both run
	require.Len(t, result.Iterations, 2)
	assert.Equal(t, 0, result.Iterations[0].Iteration)
	assert.Equal(t, 1, result.Iterations[1].Iteration)

	assert.Zero(t, microsoft.Confidence)
	assert.InDelta(t, 1.0, nokia.Confidence, 1e-12)
}

func TestEngine_PromotesConfidentCandidates(t *testing.T) {
	nokia := tuple("Nokia", "Espoo", "is headquartered in", vsm.Vector{{ID: 0, Weight: 1}})
	sony := tuple("Sony", "Tokyo", "is headquartered in", vsm.Vector{{ID: 0, Weight: 1}})

	seeds := relation.NewSeedSet(relation.NewSeed("Nokia", "Espoo"))
	engine := New(testConfig(2), seeds, nil, nil, nil)

	result, err := engine.Run(context.Background(), []*relation.Tuple{nokia, sony})
	require.NoError(t, err)

	assert.True(t, result.Seeds.Contains(relation.NewSeed("Sony", "Tokyo")))
	assert.Equal(t, 1, result.Iterations[0].Promoted)
	assert.Equal(t, 2, result.Iterations[1].Matches)

	// the caller's seed set is left alone
	assert.Equal(t, 1, seeds.Len())
	assert.Len(t, result.Relationships, 2)
}

func TestEngine_NoPromotionOnLastIterations(t *testing.T) {
	nokia := tuple("Nokia", "Espoo", "is headquartered in", vsm.Vector{{ID: 0, Weight: 1}})
	sony := tuple("Sony", "Tokyo", "is headquartered in", vsm.Vector{{ID: 0, Weight: 1}})

	seeds := relation.NewSeedSet(relation.NewSeed("Nokia", "Espoo"))
	engine := New(testConfig(1), seeds, nil, nil, nil)

	result, err := engine.Run(context.Background(), []*relation.Tuple{nokia, sony})
	require.NoError(t, err)

	assert.False(t, result.Seeds.Contains(relation.NewSeed("Sony", "Tokyo")))
	for _, it := range result.Iterations {
		assert.Zero(t, it.Promoted)
	}
}

func TestEngine_NoSeedMatches(t *testing.T) {
	seeds := relation.NewSeedSet(relation.NewSeed("Nokia", "Espoo"))
	engine := New(testConfig(1), seeds, nil, nil, nil)

	// matching does not trim
	tuples := []*relation.Tuple{tuple("Nokia ", "Espoo", "in", vsm.Vector{{ID: 0, Weight: 1}})}

	_, err := engine.Run(context.Background(), tuples)
	assert.ErrorIs(t, err, ErrNoSeedMatches)
}

func TestEngine_NoPatternsOnFirstIteration(t *testing.T) {
	cfg := testConfig(1)
	cfg.MinPatternSupport = 2

	seeds := relation.NewSeedSet(relation.NewSeed("Nokia", "Espoo"))
	engine := New(cfg, seeds, nil, nil, nil)

	tuples := []*relation.Tuple{tuple("Nokia", "Espoo", "in", vsm.Vector{{ID: 0, Weight: 1}})}

	_, err := engine.Run(context.Background(), tuples)
	assert.ErrorIs(t, err, ErrNoPatterns)
}

func TestEngine_Cancelled(t *testing.T) {
	seeds := relation.NewSeedSet(relation.NewSeed("Nokia", "Espoo"))
	engine := New(testConfig(1), seeds, nil, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := engine.Run(ctx, []*relation.Tuple{tuple("Nokia", "Espoo", "in", vsm.Vector{{ID: 0, Weight: 1}})})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEngine_NegativeSeedsCountAsNegative(t *testing.T) {
	nokia := tuple("Nokia", "Espoo", "is headquartered in", vsm.Vector{{ID: 0, Weight: 1}})
	sony := tuple("Sony", "Tokyo", "is headquartered in", vsm.Vector{{ID: 0, Weight: 1}})

	seeds := relation.NewSeedSet(relation.NewSeed("Nokia", "Espoo"))
	negatives := relation.NewSeedSet(relation.NewSeed("Sony", "Tokyo"))
	engine := New(testConfig(0), seeds, negatives, nil, nil)

	result, err := engine.Run(context.Background(), []*relation.Tuple{nokia, sony})
	require.NoError(t, err)

	require.Len(t, result.Patterns, 1)
	p := result.Patterns[0]
	assert.Equal(t, 1, p.Positive)
	assert.Equal(t, 1, p.Negative)
	assert.Equal(t, 2, p.Unknown)
	// pos/(pos+neg) normalised by itself
	assert.InDelta(t, 1.0, p.Confidence, 1e-12)

	require.Len(t, result.Relationships, 2)
	assert.InDelta(t, 1.0, result.Relationships[0].Confidence, 1e-12)
}

func TestEngine_ReassociationIsIdempotent(t *testing.T) {
	ax := tuple("A", "X", "is based in", vsm.Vector{{ID: 0, Weight: 1}})
	by := tuple("B", "Y", "is based near", vsm.Vector{{ID: 0, Weight: 0.8}, {ID: 1, Weight: 0.6}})

	cfg := testConfig(1)
	cfg.InstanceConfidence = 0.99
	seeds := relation.NewSeedSet(relation.NewSeed("A", "X"))
	engine := New(cfg, seeds, nil, nil, nil)

	result, err := engine.Run(context.Background(), []*relation.Tuple{ax, by})
	require.NoError(t, err)
	require.Len(t, result.Iterations, 2)

	// one association (confidence 1, score 0.8) in both iterations:
	// 0.5*0.8 + 0.5*0.8. A second association would lift it to 0.88.
	assert.InDelta(t, 0.8, by.Confidence, 1e-12)
	assert.InDelta(t, 0.8, by.PreviousConfidence, 1e-12)
	assert.InDelta(t, 1.0, ax.Confidence, 1e-12)

	key := by.Key()
	require.Contains(t, engine.candidates, key)
	assert.Len(t, engine.candidates[key].associations, 1)
}

func TestEngine_NormalizesPatternConfidence(t *testing.T) {
	tuples := []*relation.Tuple{
		tuple("A", "X", "is based in", vsm.Vector{{ID: 0, Weight: 1}}),
		tuple("C", "W", "acquired", vsm.Vector{{ID: 1, Weight: 1}}),
		tuple("C", "V", "acquired", vsm.Vector{{ID: 1, Weight: 1}}),
		tuple("A", "Y", "is based in", vsm.Vector{{ID: 0, Weight: 1}}),
		tuple("C", "U", "acquired", vsm.Vector{{ID: 1, Weight: 1}}),
	}
	seeds := relation.NewSeedSet(relation.NewSeed("A", "X"), relation.NewSeed("C", "W"))
	engine := New(testConfig(0), seeds, nil, nil, nil)

	result, err := engine.Run(context.Background(), tuples)
	require.NoError(t, err)

	// before rescaling: 1/(1+1) = 0.5 and 1/(1+2) = 1/3
	require.Len(t, result.Patterns, 2)
	assert.Equal(t, 1, result.Patterns[0].Negative)
	assert.Equal(t, 2, result.Patterns[1].Negative)
	assert.InDelta(t, 1.0, result.Patterns[0].Confidence, 1e-12)
	assert.InDelta(t, 2.0/3, result.Patterns[1].Confidence, 1e-12)

	require.Len(t, result.Relationships, 5)
	assert.InDelta(t, 1.0, result.Relationships[0].Confidence, 1e-12)
	assert.InDelta(t, 1.0, result.Relationships[1].Confidence, 1e-12)
	for _, rel := range result.Relationships[2:] {
		assert.Equal(t, "C", rel.E1)
		assert.InDelta(t, 2.0/3, rel.Confidence, 1e-12)
	}
}

func TestNormalizeConfidence(t *testing.T) {
	tests := []struct {
		name string
		in   []float64
		want []float64
	}{
		{name: "half next to one", in: []float64{0.5, 1.0}, want: []float64{0.5, 1.0}},
		{name: "rescaled to max", in: []float64{0.5, 0.25}, want: []float64{1.0, 0.5}},
		{name: "above one", in: []float64{2.0, 0.5}, want: []float64{1.0, 0.25}},
		{name: "all zero", in: []float64{0, 0}, want: []float64{0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := &Engine{}
			for _, c := range tt.in {
				p := pattern.New(nil)
				p.Confidence = c
				e.patterns = append(e.patterns, p)
			}

			e.normalizeConfidence()

			for j, p := range e.patterns {
				assert.InDelta(t, tt.want[j], p.Confidence, 1e-12)
			}
		})
	}
}

func TestDamp(t *testing.T) {
	assert.InDelta(t, 0.6, Damp(0.8, 0.4, 0.5), 1e-12)
	assert.InDelta(t, 0.8, Damp(0.8, 0.4, 1), 1e-12)
	assert.InDelta(t, 0.4, Damp(0.8, 0.4, 0), 1e-12)
}

func TestNoisyOR(t *testing.T) {
	assert.Equal(t, 0.0, NoisyOR(nil, nil))
	assert.InDelta(t, 0.5, NoisyOR([]float64{1}, []float64{0.5}), 1e-12)
	// 1 - (1-0.5)(1-0.5)
	assert.InDelta(t, 0.75, NoisyOR([]float64{1, 0.5}, []float64{0.5, 1}), 1e-12)
}

func TestSummarizePatterns(t *testing.T) {
	dict := vsm.NewDictionary()
	dict.Add([]string{"headquartered"})

	nokia := tuple("Nokia", "Espoo", "is headquartered in", vsm.Vector{{ID: 0, Weight: 1}})
	seeds := relation.NewSeedSet(relation.NewSeed("Nokia", "Espoo"))
	engine := New(testConfig(0), seeds, nil, nil, nil)

	result, err := engine.Run(context.Background(), []*relation.Tuple{nokia})
	require.NoError(t, err)

	summaries := SummarizePatterns(result.Patterns, clustering.NewKeywordExtractor(dict), 5)
	require.Len(t, summaries, 1)
	assert.Equal(t, 1, summaries[0].ID)
	assert.Equal(t, 1, summaries[0].Size)
	assert.Equal(t, []string{nokia.Text(relation.Between)}, summaries[0].BetweenPhrases)
	require.Len(t, summaries[0].Keywords, 1)
	assert.Equal(t, "headquartered", summaries[0].Keywords[0].Word)

	assert.Empty(t, SummarizePatterns(result.Patterns, nil, 5)[0].Keywords)
}
