package relation

import (
	"strings"

	"github.com/todmy/snowball/internal/vsm"
)

// TaggedToken is a word with its Penn Treebank part-of-speech tag.
type TaggedToken struct {
	Word string `json:"word"`
	Tag  string `json:"tag"`
}

// Context identifies one of the three windows around an entity pair.
type Context int

const (
	Before Context = iota
	Between
	After
)

// Contexts lists the windows in the order they are weighted.
var Contexts = [3]Context{Before, Between, After}

func (c Context) String() string {
	switch c {
	case Before:
		return "before"
	case Between:
		return "between"
	case After:
		return "after"
	default:
		return "unknown"
	}
}

// Voice is the grammatical voice detected in the between context.
type Voice int

const (
	VoiceUnknown Voice = iota
	VoiceActive
	VoicePassive
)

// Passive reports true only for a detected passive voice; unknown is false.
func (v Voice) Passive() bool {
	return v == VoicePassive
}

// Tuple is one observed candidate relation instance.
//
// Its identity is Key(): the entity pair plus the three context strings.
// Confidence and PreviousConfidence are excluded from identity so a tuple
// can be looked up consistently while its confidence changes between
// iterations. Context vectors are set once when the tuple is built and are
// never modified afterwards.
type Tuple struct {
	E1       string
	E2       string
	Sentence string

	BeforeTokens  []TaggedToken
	BetweenTokens []TaggedToken
	AfterTokens   []TaggedToken

	BeforeVector  vsm.Vector
	BetweenVector vsm.Vector
	AfterVector   vsm.Vector

	Voice Voice

	Confidence         float64
	PreviousConfidence float64
}

// Key is the immutable identity of a Tuple.
type Key struct {
	E1      string
	E2      string
	Before  string
	Between string
	After   string
}

// Key returns the identity of the tuple.
func (t *Tuple) Key() Key {
	return Key{
		E1:      t.E1,
		E2:      t.E2,
		Before:  joinTagged(t.BeforeTokens),
		Between: joinTagged(t.BetweenTokens),
		After:   joinTagged(t.AfterTokens),
	}
}

// Equal compares tuples by identity, ignoring confidence.
func (t *Tuple) Equal(other *Tuple) bool {
	if t == nil || other == nil {
		return t == other
	}
	return t.Key() == other.Key()
}

// Vector returns the context vector for c.
func (t *Tuple) Vector(c Context) vsm.Vector {
	switch c {
	case Before:
		return t.BeforeVector
	case Between:
		return t.BetweenVector
	case After:
		return t.AfterVector
	}
	return nil
}

// Tokens returns the tagged tokens of context c.
func (t *Tuple) Tokens(c Context) []TaggedToken {
	switch c {
	case Before:
		return t.BeforeTokens
	case Between:
		return t.BetweenTokens
	case After:
		return t.AfterTokens
	}
	return nil
}

// Text returns the words of context c joined by single spaces.
func (t *Tuple) Text(c Context) string {
	tokens := t.Tokens(c)
	words := make([]string, len(tokens))
	for i, tok := range tokens {
		words[i] = tok.Word
	}
	return strings.Join(words, " ")
}

func (t *Tuple) String() string {
	return t.Text(Before) + "  " + t.Text(Between) + "  " + t.Text(After)
}

func joinTagged(tokens []TaggedToken) string {
	var b strings.Builder
	for i, tok := range tokens {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(tok.Word)
		b.WriteByte('/')
		b.WriteString(tok.Tag)
	}
	return b.String()
}
