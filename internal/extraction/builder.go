package extraction

import (
	"strings"

	"github.com/todmy/snowball/internal/relation"
	"github.com/todmy/snowball/internal/reverb"
	"github.com/todmy/snowball/internal/sentence"
	"github.com/todmy/snowball/internal/vsm"
)

// filterPOS are adjective and adverb tags left out of context vectors.
var filterPOS = map[string]bool{
	"JJ": true, "JJR": true, "JJS": true,
	"RB": true, "RBR": true, "RBS": true, "WRB": true,
}

// Builder turns relationships into tuples with context vectors.
type Builder struct {
	provider  vsm.Provider
	stopwords map[string]bool
	useReVerb bool
}

// NewBuilder creates a builder. A nil stopword set uses vsm.Stopwords().
func NewBuilder(provider vsm.Provider, stopwords map[string]bool, useReVerb bool) *Builder {
	if stopwords == nil {
		stopwords = vsm.Stopwords()
	}
	return &Builder{provider: provider, stopwords: stopwords, useReVerb: useReVerb}
}

// Build creates the tuple for one relationship.
//
// Without ReVerb every non-empty context is vectorised from its
// non-stopword words, and empty contexts get an empty vector.
//
// With ReVerb the between vector uses only the words of the relational
// phrase when one is found, and the voice is taken from that phrase. The
// before and after vectors are set only when the context has tokens.
// Adjectives and adverbs are dropped in this mode.
func (b *Builder) Build(rel sentence.Relationship) *relation.Tuple {
	t := &relation.Tuple{
		E1:            rel.E1,
		E2:            rel.E2,
		Sentence:      rel.Sentence,
		BeforeTokens:  rel.Before,
		BetweenTokens: rel.Between,
		AfterTokens:   rel.After,
	}

	if !b.useReVerb {
		t.BeforeVector = b.plainVector(rel.Before)
		t.BetweenVector = b.plainVector(rel.Between)
		t.AfterVector = b.plainVector(rel.After)
		return t
	}

	phrase := reverb.Extract(rel.Between)
	switch {
	case len(phrase) == 0:
		t.BetweenVector = b.filteredVector(rel.Between)
	case phrase[0].Word == "'s":
		// a leading 's is a possessive mistagged as VBZ
		t.Voice = voiceOf(phrase)
		t.BetweenVector = b.filteredVector(rel.Between)
	default:
		t.Voice = voiceOf(phrase)
		t.BetweenVector = b.filteredVector(phrase)
	}

	if len(rel.Before) > 0 {
		t.BeforeVector = b.filteredVector(rel.Before)
	}
	if len(rel.After) > 0 {
		t.AfterVector = b.filteredVector(rel.After)
	}
	return t
}

func voiceOf(phrase []relation.TaggedToken) relation.Voice {
	if reverb.IsPassive(phrase) {
		return relation.VoicePassive
	}
	return relation.VoiceActive
}

func (b *Builder) plainVector(tokens []relation.TaggedToken) vsm.Vector {
	if len(tokens) == 0 {
		return vsm.Vector{}
	}
	words := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if b.stopwords[tok.Word] {
			continue
		}
		words = append(words, strings.ToLower(tok.Word))
	}
	return b.provider.Vectorize(words)
}

func (b *Builder) filteredVector(tokens []relation.TaggedToken) vsm.Vector {
	words := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if b.stopwords[strings.ToLower(tok.Word)] || filterPOS[tok.Tag] {
			continue
		}
		words = append(words, tok.Word)
	}
	return b.provider.Vectorize(words)
}
