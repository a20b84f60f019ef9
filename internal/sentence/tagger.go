package sentence

import (
	"fmt"

	"github.com/jdkato/prose/v2"

	"github.com/todmy/snowball/internal/relation"
)

// Tagger tokenizes text and assigns Penn Treebank part-of-speech tags.
// Tag and Tokenize must split text identically.
type Tagger interface {
	Tokenize(text string) ([]string, error)
	Tag(text string) ([]relation.TaggedToken, error)
}

// ProseTagger is a Tagger backed by the prose averaged perceptron tagger.
type ProseTagger struct{}

// NewProseTagger creates a tagger
func NewProseTagger() *ProseTagger {
	return &ProseTagger{}
}

// Tokenize splits text into treebank-style tokens without tagging.
func (ProseTagger) Tokenize(text string) ([]string, error) {
	doc, err := prose.NewDocument(text,
		prose.WithSegmentation(false),
		prose.WithTagging(false),
		prose.WithExtraction(false),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to tokenize: %w", err)
	}

	tokens := doc.Tokens()
	words := make([]string, len(tokens))
	for i, tok := range tokens {
		words[i] = tok.Text
	}
	return words, nil
}

// Tag tokenizes and tags text.
func (ProseTagger) Tag(text string) ([]relation.TaggedToken, error) {
	doc, err := prose.NewDocument(text,
		prose.WithSegmentation(false),
		prose.WithExtraction(false),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to tag: %w", err)
	}

	tokens := doc.Tokens()
	tagged := make([]relation.TaggedToken, len(tokens))
	for i, tok := range tokens {
		tagged[i] = relation.TaggedToken{Word: tok.Text, Tag: tok.Tag}
	}
	return tagged, nil
}

var _ Tagger = ProseTagger{}
