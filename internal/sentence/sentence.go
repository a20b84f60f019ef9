// Package sentence finds candidate entity pairs in sentences whose named
// entities are marked up inline, e.g. "<ORG>Nokia</ORG> is based in <LOC>Espoo</LOC>".
package sentence

import (
	"fmt"
	"regexp"
	"sort"

	"github.com/todmy/snowball/internal/relation"
	"github.com/todmy/snowball/internal/vsm"
)

var (
	entityRegex = regexp.MustCompile(`<([A-Z]+)>([^<]+)</[A-Z]+>`)
	tagRegex    = regexp.MustCompile(`</?[A-Z]+>`)
)

// badTokens never express a relationship on their own.
var badTokens = []string{",", "(", ")", ";", "''", "``", "'s", "-", "vs.", "v", "'", ":", ".", "--"}

// Options bound which entity pairs become relationships.
type Options struct {
	E1Type    string
	E2Type    string
	MinTokens int
	MaxTokens int
	Window    int
}

// Relationship is an ordered pair of entities with the tagged contexts
// around them.
type Relationship struct {
	Sentence string
	E1       string
	E2       string
	E1Type   string
	E2Type   string
	Before   []relation.TaggedToken
	Between  []relation.TaggedToken
	After    []relation.TaggedToken
}

type entity struct {
	surface   string
	kind      string
	parts     []string
	locations []int
}

// Parser extracts relationships from tagged sentences.
type Parser struct {
	tagger   Tagger
	opts     Options
	notValid map[string]bool
}

// NewParser creates a parser
func NewParser(tagger Tagger, opts Options) *Parser {
	notValid := vsm.Stopwords()
	for _, tok := range badTokens {
		notValid[tok] = true
	}
	return &Parser{tagger: tagger, opts: opts, notValid: notValid}
}

// Parse returns the relationships of one sentence, in text order.
//
// Entities are located by token position. Consecutive entity starts form a
// pair when their distance lies within [MinTokens, MaxTokens] and their
// types match E1Type and E2Type. Pairs of the same surface string, and
// pairs whose between context holds only stopwords or punctuation, are
// skipped. Before and after contexts are capped at Window tokens.
func (p *Parser) Parse(text string) ([]Relationship, error) {
	matches := entityRegex.FindAllStringSubmatch(text, -1)
	if len(matches) < 2 {
		return nil, nil
	}

	clean := tagRegex.ReplaceAllString(text, "")
	tagged, err := p.tagger.Tag(clean)
	if err != nil {
		return nil, err
	}
	words := make([]string, len(tagged))
	for i, tok := range tagged {
		words[i] = tok.Word
	}

	entities, err := p.entities(matches, words)
	if err != nil {
		return nil, err
	}

	// when two entities start at the same token the later one wins
	locations := make(map[int]*entity)
	for _, e := range entities {
		for _, start := range e.locations {
			locations[start] = e
		}
	}
	starts := make([]int, 0, len(locations))
	for start := range locations {
		starts = append(starts, start)
	}
	sort.Ints(starts)

	var rels []Relationship
	for i := 0; i+1 < len(starts); i++ {
		s1, s2 := starts[i], starts[i+1]
		e1, e2 := locations[s1], locations[s2]
		distance := s2 - s1

		if distance < p.opts.MinTokens || distance > p.opts.MaxTokens {
			continue
		}
		if e1.kind != p.opts.E1Type || e2.kind != p.opts.E2Type {
			continue
		}
		if e1.surface == e2.surface {
			continue
		}

		betweenStart := min(s1+len(e1.parts), s2)
		if p.allInvalid(words[betweenStart:s2]) {
			continue
		}

		afterStart := min(s2+len(e2.parts), len(tagged))
		rels = append(rels, Relationship{
			Sentence: text,
			E1:       e1.surface,
			E2:       e2.surface,
			E1Type:   e1.kind,
			E2Type:   e2.kind,
			Before:   clone(tagged[max(0, s1-p.opts.Window):s1]),
			Between:  clone(tagged[betweenStart:s2]),
			After:    clone(tagged[afterStart:min(afterStart+p.opts.Window, len(tagged))]),
		})
	}

	return rels, nil
}

// entities collects distinct (surface, type) entities in order of first
// appearance together with every token position they start at.
func (p *Parser) entities(matches [][]string, words []string) ([]*entity, error) {
	type id struct{ surface, kind string }
	seen := make(map[id]bool)

	var out []*entity
	for _, m := range matches {
		key := id{surface: m[2], kind: m[1]}
		if seen[key] {
			continue
		}
		seen[key] = true

		parts, err := p.entityParts(m[2])
		if err != nil {
			return nil, fmt.Errorf("failed to tokenize entity %q: %w", m[2], err)
		}
		out = append(out, &entity{
			surface:   m[2],
			kind:      m[1],
			parts:     parts,
			locations: findLocations(parts, words),
		})
	}
	return out, nil
}

// entityParts tokenizes an entity, keeping a trailing "." attached to the
// last word so abbreviations like "Inc." survive.
func (p *Parser) entityParts(surface string) ([]string, error) {
	parts, err := p.tagger.Tokenize(surface)
	if err != nil {
		return nil, err
	}
	if n := len(parts); n >= 2 && parts[n-1] == "." {
		parts = append(parts[:n-2], parts[n-2]+".")
	}
	return parts, nil
}

func findLocations(parts, words []string) []int {
	if len(parts) == 0 {
		return nil
	}
	var locations []int
	for i := 0; i+len(parts) <= len(words); i++ {
		match := true
		for j, part := range parts {
			if words[i+j] != part {
				match = false
				break
			}
		}
		if match {
			locations = append(locations, i)
		}
	}
	return locations
}

func (p *Parser) allInvalid(words []string) bool {
	for _, w := range words {
		if !p.notValid[w] {
			return false
		}
	}
	return true
}

func clone(tokens []relation.TaggedToken) []relation.TaggedToken {
	out := make([]relation.TaggedToken, len(tokens))
	copy(out, tokens)
	return out
}
