package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/floats"

	"github.com/todmy/snowball/internal/clustering"
	"github.com/todmy/snowball/internal/config"
	"github.com/todmy/snowball/internal/logging"
	"github.com/todmy/snowball/internal/pattern"
	"github.com/todmy/snowball/internal/relation"
	"github.com/todmy/snowball/internal/similarity"
	"github.com/todmy/snowball/internal/vsm"
	"github.com/todmy/snowball/pkg/models"
)

// Run errors
var (
	ErrNoSeedMatches = errors.New("no tuples match the seed set")
	ErrNoPatterns    = errors.New("no patterns survived pruning")
)

// association links a candidate tuple to a pattern that extracted it
type association struct {
	pattern *pattern.Pattern
	score   float64
}

// candidate is the side-table entry of a tuple extracted by at least one
// pattern. Tuples are looked up by relation.Key, which leaves confidence out.
type candidate struct {
	tuple        *relation.Tuple
	associations []association
	confidence   float64
	previous     float64
}

func (c *candidate) associate(p *pattern.Pattern, score float64) {
	for _, a := range c.associations {
		if a.pattern == p {
			return
		}
	}
	c.associations = append(c.associations, association{pattern: p, score: score})
}

// Engine runs the bootstrapping loop. The seed sets are owned by the engine
// and only grow through promotion at the end of an iteration.
type Engine struct {
	cfg       *config.Config
	positives *relation.SeedSet
	negatives *relation.SeedSet
	scorer    *similarity.Service
	clusterer *clustering.Service
	logger    *slog.Logger

	patterns   []*pattern.Pattern
	candidates map[relation.Key]*candidate
	order      []relation.Key
}

// New creates an engine. The seed sets are copied. A nil provider scores
// with vsm.Cosine and a nil logger discards output.
func New(cfg *config.Config, seeds, negatives *relation.SeedSet, provider vsm.Provider, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = logging.Discard()
	}

	scorer := similarity.NewService(similarity.Weights{
		Alpha: cfg.Alpha,
		Beta:  cfg.Beta,
		Gamma: cfg.Gamma,
	}, provider)

	clusterer := clustering.NewService(scorer, clustering.Config{
		Threshold:  cfg.ThresholdSimilarity,
		MinSupport: cfg.MinPatternSupport,
	})

	return &Engine{
		cfg:        cfg,
		positives:  seeds.Clone(),
		negatives:  negatives.Clone(),
		scorer:     scorer,
		clusterer:  clusterer,
		logger:     logger,
		candidates: make(map[relation.Key]*candidate),
	}
}

// SetWorkers bounds the goroutines used to score tuples against patterns.
func (e *Engine) SetWorkers(n int) {
	e.scorer.SetWorkers(n)
}

// Result is the outcome of a completed run
type Result struct {
	// Relationships are ranked by descending confidence.
	Relationships []models.Relationship
	Patterns      []*pattern.Pattern
	Seeds         *relation.SeedSet
	Iterations    []models.IterationSummary
}

// Run bootstraps over tuples for iterations 0 through NumberIterations
// inclusive. tuples is read but never reordered.
func (e *Engine) Run(ctx context.Context, tuples []*relation.Tuple) (*Result, error) {
	var summaries []models.IterationSummary

	for i := 0; i <= e.cfg.NumberIterations; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		summary, err := e.iterate(ctx, i, tuples)
		if err != nil {
			return nil, fmt.Errorf("iteration %d: %w", i, err)
		}
		summaries = append(summaries, *summary)
	}

	return &Result{
		Relationships: e.ranked(),
		Patterns:      e.patterns,
		Seeds:         e.positives.Clone(),
		Iterations:    summaries,
	}, nil
}

func (e *Engine) iterate(ctx context.Context, i int, tuples []*relation.Tuple) (*models.IterationSummary, error) {
	summary := &models.IterationSummary{Iteration: i, Seeds: e.positives.Len()}
	e.logger.Info("starting iteration", "iteration", i, "seeds", e.positives.Len())
	for _, s := range e.positives.Seeds() {
		e.logger.Debug("seed", "e1", s.E1, "e2", s.E2)
	}

	matched := e.matchSeeds(tuples)
	if len(matched) == 0 {
		return nil, ErrNoSeedMatches
	}
	summary.Matches = len(matched)

	clustered, err := e.clusterer.Cluster(e.patterns, matched)
	if err != nil {
		return nil, err
	}
	e.patterns = clustered.Patterns
	summary.Patterns = len(e.patterns)
	e.logger.Info("clustered seed matches",
		"patterns", len(e.patterns),
		"created", clustered.Created,
		"pruned", clustered.Pruned,
	)
	if i == 0 && len(e.patterns) == 0 {
		return nil, ErrNoPatterns
	}

	if err := e.scoreCandidates(ctx, tuples); err != nil {
		return nil, err
	}
	e.normalizeConfidence()
	if e.cfg.PrintPatterns {
		e.logPatterns()
	}

	e.updateTupleConfidence(i)
	summary.Candidates = len(e.order)

	if i+1 < e.cfg.NumberIterations {
		summary.Promoted = e.promoteSeeds()
		e.logger.Info("promoted seeds",
			"threshold", e.cfg.InstanceConfidence,
			"added", summary.Promoted,
		)
	}

	return summary, nil
}

// matchSeeds returns the tuples whose entity pair is a positive seed, in
// corpus order, and logs the per-pair frequencies.
func (e *Engine) matchSeeds(tuples []*relation.Tuple) []*relation.Tuple {
	var matched []*relation.Tuple
	counts := make(map[relation.Seed]int)
	var pairs []relation.Seed

	for _, t := range tuples {
		seed := relation.NewSeed(t.E1, t.E2)
		if !e.positives.Contains(seed) {
			continue
		}
		matched = append(matched, t)
		if counts[seed] == 0 {
			pairs = append(pairs, seed)
		}
		counts[seed]++
	}

	sort.SliceStable(pairs, func(a, b int) bool {
		return counts[pairs[a]] > counts[pairs[b]]
	})
	for _, s := range pairs {
		e.logger.Debug("seed matches", "e1", s.E1, "e2", s.E2, "count", counts[s])
	}
	e.logger.Info("matched seeds", "tuples", len(matched), "pairs", len(pairs))

	return matched
}

// scoreCandidates scores the whole corpus against the patterns. Scores are
// computed in parallel; selectivity updates and associations are applied
// afterwards in corpus order so the result does not depend on scheduling.
func (e *Engine) scoreCandidates(ctx context.Context, tuples []*relation.Tuple) error {
	centroids := make([]similarity.Centroids, len(e.patterns))
	for j, p := range e.patterns {
		centroids[j] = p
	}

	matrix, err := e.scorer.Matrix(ctx, tuples, centroids)
	if err != nil {
		return err
	}

	threshold := e.cfg.ThresholdSimilarity
	weights := pattern.ConfidenceWeights{WNeg: e.cfg.WNeg, WUnk: e.cfg.WUnk}

	for ti, t := range tuples {
		scores := matrix[ti]
		if len(scores) == 0 {
			continue
		}

		touched := similarity.Above(scores, threshold)
		for _, j := range touched {
			e.patterns[j].UpdateSelectivity(t, e.positives, e.negatives, weights)
		}

		best := similarity.Best(scores)
		if best.Score >= threshold {
			e.candidate(t).associate(e.patterns[best.Index], best.Score)
		}

		for _, j := range touched {
			p := e.patterns[j]
			p.PreviousConfidence = p.Confidence
			p.UpdateConfidence()
		}
	}

	return nil
}

func (e *Engine) candidate(t *relation.Tuple) *candidate {
	key := t.Key()
	c, ok := e.candidates[key]
	if !ok {
		c = &candidate{tuple: t}
		e.candidates[key] = c
		e.order = append(e.order, key)
	}
	return c
}

// normalizeConfidence divides every pattern confidence by the maximum.
func (e *Engine) normalizeConfidence() {
	if len(e.patterns) == 0 {
		return
	}
	confidences := make([]float64, len(e.patterns))
	for j, p := range e.patterns {
		confidences[j] = p.Confidence
	}

	top := floats.Max(confidences)
	if top <= 0 {
		return
	}
	for _, p := range e.patterns {
		p.Confidence /= top
	}
}

func (e *Engine) updateTupleConfidence(iteration int) {
	for _, key := range e.order {
		c := e.candidates[key]
		c.previous = c.confidence

		confs := make([]float64, len(c.associations))
		scores := make([]float64, len(c.associations))
		for k, a := range c.associations {
			confs[k] = a.pattern.Confidence
			scores[k] = a.score
		}

		c.confidence = NoisyOR(confs, scores)
		if iteration > 0 {
			c.confidence = Damp(c.confidence, c.previous, e.cfg.WUpdt)
		}

		c.tuple.PreviousConfidence = c.previous
		c.tuple.Confidence = c.confidence
	}
}

// promoteSeeds adds every candidate at or above the instance confidence
// threshold to the positive seeds and returns how many were new.
func (e *Engine) promoteSeeds() int {
	added := 0
	for _, key := range e.order {
		c := e.candidates[key]
		if c.confidence < e.cfg.InstanceConfidence {
			continue
		}
		if e.positives.Add(relation.NewSeed(c.tuple.E1, c.tuple.E2)) {
			added++
		}
	}
	return added
}

// ranked returns the candidates sorted by descending confidence. Equal
// confidences keep first-extraction order.
func (e *Engine) ranked() []models.Relationship {
	ranked := make([]*candidate, 0, len(e.order))
	for _, key := range e.order {
		ranked = append(ranked, e.candidates[key])
	}
	sort.SliceStable(ranked, func(a, b int) bool {
		return ranked[a].confidence > ranked[b].confidence
	})

	rels := make([]models.Relationship, len(ranked))
	for k, c := range ranked {
		rels[k] = models.Relationship{
			E1:           c.tuple.E1,
			E2:           c.tuple.E2,
			Confidence:   c.confidence,
			Sentence:     c.tuple.Sentence,
			PassiveVoice: c.tuple.Voice.Passive(),
		}
	}
	return rels
}

func (e *Engine) logPatterns() {
	for j, p := range e.patterns {
		e.logger.Info("pattern",
			"index", j,
			"tuples", p.Size(),
			"positive", p.Positive,
			"negative", p.Negative,
			"unknown", p.Unknown,
			"confidence", p.Confidence,
			"between", p.BetweenPhrases(),
		)
	}
}

// NoisyOR combines independent pattern votes into a tuple confidence:
// 1 - prod(1 - confidence[k]*score[k]).
func NoisyOR(confidences, scores []float64) float64 {
	product := 1.0
	for k := range confidences {
		product *= 1 - confidences[k]*scores[k]
	}
	return 1 - product
}

// Damp blends a new confidence with the previous iteration's one.
// wUpdt below 0.5 trusts new evidence less.
func Damp(current, previous, wUpdt float64) float64 {
	return current*wUpdt + previous*(1-wUpdt)
}
