package vsm

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"math"
	"regexp"
	"strings"
	"unicode"

	"gonum.org/v1/gonum/floats"
)

// Provider turns token sequences into weighted term vectors and compares them.
type Provider interface {
	Vectorize(tokens []string) Vector
	Cosine(a, b Vector) float64
}

// Tokenizer splits raw text into word tokens.
type Tokenizer func(text string) []string

var entityTags = regexp.MustCompile(`<[A-Z]+>[^<]+</[A-Z]+>`)

// Dictionary maps tokens to stable integer ids in first-seen order.
type Dictionary struct {
	ids    map[string]int
	tokens []string
}

// NewDictionary creates an empty dictionary
func NewDictionary() *Dictionary {
	return &Dictionary{ids: make(map[string]int)}
}

// Add registers tokens and returns their ids.
func (d *Dictionary) Add(tokens []string) []int {
	ids := make([]int, len(tokens))
	for i, tok := range tokens {
		id, ok := d.ids[tok]
		if !ok {
			id = len(d.tokens)
			d.ids[tok] = id
			d.tokens = append(d.tokens, tok)
		}
		ids[i] = id
	}
	return ids
}

// ID returns the id of a token.
func (d *Dictionary) ID(token string) (int, bool) {
	id, ok := d.ids[token]
	return id, ok
}

// Token returns the token for an id, or "" when unknown.
func (d *Dictionary) Token(id int) string {
	if id < 0 || id >= len(d.tokens) {
		return ""
	}
	return d.tokens[id]
}

// Len returns the number of distinct tokens.
func (d *Dictionary) Len() int {
	return len(d.tokens)
}

// Model is a TF-IDF vector space built over a sentence corpus.
type Model struct {
	dict      *Dictionary
	df        []int
	docs      int
	stopwords map[string]bool
}

// NewModel creates an empty model. A nil stopword set uses Stopwords().
func NewModel(stopwords map[string]bool) *Model {
	if stopwords == nil {
		stopwords = Stopwords()
	}
	return &Model{
		dict:      NewDictionary(),
		stopwords: stopwords,
	}
}

// BuildModel reads one sentence per line, strips entity markup and stopwords,
// and accumulates document frequencies.
func BuildModel(ctx context.Context, r io.Reader, tokenize Tokenizer, stopwords map[string]bool) (*Model, error) {
	if tokenize == nil {
		tokenize = WordTokenize
	}
	m := NewModel(stopwords)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		if m.docs%1000 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		line := entityTags.ReplaceAllString(scanner.Text(), "")
		m.AddDocument(tokenize(strings.ToLower(line)))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read sentences: %w", err)
	}

	return m, nil
}

// AddDocument counts one document. Stopwords are dropped before counting.
func (m *Model) AddDocument(tokens []string) {
	filtered := m.filter(tokens)
	ids := m.dict.Add(filtered)
	for len(m.df) < m.dict.Len() {
		m.df = append(m.df, 0)
	}

	seen := make(map[int]bool)
	for _, id := range ids {
		if !seen[id] {
			m.df[id]++
			seen[id] = true
		}
	}
	m.docs++
}

// Dictionary exposes the token dictionary
func (m *Model) Dictionary() *Dictionary {
	return m.dict
}

// Documents returns the number of documents seen
func (m *Model) Documents() int {
	return m.docs
}

// Vectorize computes the L2-normalised tf * log2(N/df) vector of tokens.
// Tokens outside the dictionary are ignored and zero-weight terms dropped.
func (m *Model) Vectorize(tokens []string) Vector {
	tf := make(map[int]int)
	for _, tok := range tokens {
		id, ok := m.dict.ID(strings.ToLower(tok))
		if !ok {
			continue
		}
		tf[id]++
	}

	weights := make(map[int]float64, len(tf))
	for id, count := range tf {
		idf := math.Log2(float64(m.docs) / float64(m.df[id]))
		if w := float64(count) * idf; w > 0 {
			weights[id] = w
		}
	}

	v := NewVector(weights)
	if len(v) == 0 {
		return v
	}

	w := v.Weights()
	norm := floats.Norm(w, 2)
	if norm == 0 {
		return Vector{}
	}
	floats.Scale(1/norm, w)
	for i := range v {
		v[i].Weight = w[i]
	}
	return v
}

// Cosine implements Provider
func (m *Model) Cosine(a, b Vector) float64 {
	return Cosine(a, b)
}

func (m *Model) filter(tokens []string) []string {
	result := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if tok == "" || m.stopwords[tok] {
			continue
		}
		result = append(result, tok)
	}
	return result
}

// WordTokenize splits text on anything that is not a letter, number or
// apostrophe. Case is preserved.
func WordTokenize(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r) && r != '\''
	})
}

// CosineProvider is a Provider for corpora whose vectors were computed
// elsewhere; it can compare vectors but not create them.
type CosineProvider struct{}

// Vectorize always returns an empty vector
func (CosineProvider) Vectorize([]string) Vector { return Vector{} }

// Cosine implements Provider
func (CosineProvider) Cosine(a, b Vector) float64 { return Cosine(a, b) }

var (
	_ Provider = (*Model)(nil)
	_ Provider = CosineProvider{}
)
