package clustering

import (
	"github.com/todmy/snowball/internal/pattern"
	"github.com/todmy/snowball/internal/relation"
	"github.com/todmy/snowball/internal/similarity"
)

// Service provides clustering functionality
type Service struct {
	scorer     *similarity.Service
	threshold  float64
	minSupport int
}

// Config holds clustering service configuration
type Config struct {
	Threshold  float64
	MinSupport int
}

// DefaultConfig returns default configuration
func DefaultConfig() Config {
	return Config{
		Threshold:  0.6,
		MinSupport: 4,
	}
}

// NewService creates a new clustering service
func NewService(scorer *similarity.Service, config Config) *Service {
	if config.MinSupport <= 0 {
		config.MinSupport = 1
	}
	return &Service{
		scorer:     scorer,
		threshold:  config.Threshold,
		minSupport: config.MinSupport,
	}
}

// ClusterResult represents the result of one clustering round
type ClusterResult struct {
	Patterns []*pattern.Pattern
	Created  int
	Pruned   int
}

// Cluster assigns matched tuples onto patterns and prunes those below the
// minimum support.
func (s *Service) Cluster(patterns []*pattern.Pattern, matched []*relation.Tuple) (*ClusterResult, error) {
	before := len(patterns)
	score := func(t *relation.Tuple, p *pattern.Pattern) float64 {
		return s.scorer.Score(t, p)
	}

	clustered, err := SinglePass(patterns, matched, score, s.threshold)
	if err != nil {
		return nil, err
	}

	kept := Prune(clustered, s.minSupport)
	return &ClusterResult{
		Patterns: kept,
		Created:  len(clustered) - before,
		Pruned:   len(clustered) - len(kept),
	}, nil
}

// Threshold returns the similarity threshold
func (s *Service) Threshold() float64 {
	return s.threshold
}
