package bootstrap

import (
	"github.com/todmy/snowball/internal/clustering"
	"github.com/todmy/snowball/internal/pattern"
	"github.com/todmy/snowball/internal/relation"
	"github.com/todmy/snowball/pkg/models"
)

// SummarizePatterns describes each pattern's support and confidence. When
// keywords is non-nil the topK heaviest between-centroid terms are included.
func SummarizePatterns(patterns []*pattern.Pattern, keywords *clustering.KeywordExtractor, topK int) []models.PatternSummary {
	summaries := make([]models.PatternSummary, len(patterns))
	for i, p := range patterns {
		s := models.PatternSummary{
			ID:             i + 1,
			Size:           p.Size(),
			Positive:       p.Positive,
			Negative:       p.Negative,
			Unknown:        p.Unknown,
			Confidence:     p.Confidence,
			BetweenPhrases: p.BetweenPhrases(),
		}
		if keywords != nil {
			for _, kw := range keywords.ExtractKeywords(p, relation.Between, topK) {
				s.Keywords = append(s.Keywords, models.Keyword{Word: kw.Word, Weight: kw.Score})
			}
		}
		summaries[i] = s
	}
	return summaries
}
