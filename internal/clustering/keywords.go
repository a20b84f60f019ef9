package clustering

import (
	"sort"

	"github.com/todmy/snowball/internal/pattern"
	"github.com/todmy/snowball/internal/relation"
	"github.com/todmy/snowball/internal/vsm"
)

// Keyword represents a centroid term with its weight
type Keyword struct {
	Word  string
	Score float64
}

// KeywordExtractor names the heaviest centroid terms of a pattern
type KeywordExtractor struct {
	dict *vsm.Dictionary
}

// NewKeywordExtractor creates a new keyword extractor. A nil dictionary
// yields no keywords.
func NewKeywordExtractor(dict *vsm.Dictionary) *KeywordExtractor {
	return &KeywordExtractor{dict: dict}
}

// ExtractKeywords returns the topK terms of the pattern's centroid for
// context c, highest weight first. Ties are broken by word.
func (ke *KeywordExtractor) ExtractKeywords(p *pattern.Pattern, c relation.Context, topK int) []Keyword {
	if ke.dict == nil {
		return []Keyword{}
	}

	centroid := p.Centroid(c)
	keywords := make([]Keyword, 0, len(centroid))
	for _, term := range centroid {
		word := ke.dict.Token(term.ID)
		if word == "" {
			continue
		}
		keywords = append(keywords, Keyword{Word: word, Score: term.Weight})
	}

	sort.Slice(keywords, func(i, j int) bool {
		if keywords[i].Score != keywords[j].Score {
			return keywords[i].Score > keywords[j].Score
		}
		return keywords[i].Word < keywords[j].Word
	})

	if topK > 0 && topK < len(keywords) {
		keywords = keywords[:topK]
	}
	return keywords
}
