package sentence

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/todmy/snowball/internal/relation"
)

// fieldsTagger splits on whitespace and tags from a fixed lexicon.
type fieldsTagger struct {
	tags map[string]string
	err  error
}

func (f fieldsTagger) Tokenize(text string) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	return strings.Fields(text), nil
}

func (f fieldsTagger) Tag(text string) ([]relation.TaggedToken, error) {
	words, err := f.Tokenize(text)
	if err != nil {
		return nil, err
	}
	out := make([]relation.TaggedToken, len(words))
	for i, w := range words {
		tag, ok := f.tags[w]
		if !ok {
			tag = "NNP"
		}
		out[i] = relation.TaggedToken{Word: w, Tag: tag}
	}
	return out, nil
}

var lexicon = map[string]string{
	"The": "DT", "company": "NN", "is": "VBZ", "headquartered": "VBN", "in": "IN",
	"and": "CC", ",": ",", ".": ".", "near": "IN", "the": "DT", "city": "NN",
}

func defaultOptions() Options {
	return Options{E1Type: "ORG", E2Type: "LOC", MinTokens: 1, MaxTokens: 6, Window: 2}
}

func TestParse(t *testing.T) {
	p := NewParser(fieldsTagger{tags: lexicon}, defaultOptions())

	rels, err := p.Parse("The company <ORG>Nokia</ORG> is headquartered in <LOC>Espoo</LOC> near the city .")
	require.NoError(t, err)
	require.Len(t, rels, 1)

	rel := rels[0]
	assert.Equal(t, "Nokia", rel.E1)
	assert.Equal(t, "Espoo", rel.E2)
	assert.Equal(t, "ORG", rel.E1Type)
	assert.Equal(t, "LOC", rel.E2Type)
	assert.Equal(t, []relation.TaggedToken{{Word: "The", Tag: "DT"}, {Word: "company", Tag: "NN"}}, rel.Before)
	assert.Equal(t, []relation.TaggedToken{{Word: "is", Tag: "VBZ"}, {Word: "headquartered", Tag: "VBN"}, {Word: "in", Tag: "IN"}}, rel.Between)
	assert.Equal(t, []relation.TaggedToken{{Word: "near", Tag: "IN"}, {Word: "the", Tag: "DT"}}, rel.After)
}

func TestParse_MultiWordEntities(t *testing.T) {
	p := NewParser(fieldsTagger{tags: lexicon}, defaultOptions())

	rels, err := p.Parse("<ORG>Google Inc.</ORG> is headquartered in <LOC>Mountain View</LOC>")
	require.NoError(t, err)
	require.Len(t, rels, 1)
	assert.Equal(t, "Google Inc.", rels[0].E1)
	assert.Equal(t, "Mountain View", rels[0].E2)
	assert.Len(t, rels[0].Between, 3)
	assert.Empty(t, rels[0].Before)
	assert.Empty(t, rels[0].After)
}

func TestParse_Skips(t *testing.T) {
	tests := []struct {
		name string
		text string
		opts Options
	}{
		{name: "single entity", text: "<ORG>Nokia</ORG> is here", opts: defaultOptions()},
		{name: "wrong types", text: "<LOC>Espoo</LOC> is headquartered in <ORG>Nokia</ORG>", opts: defaultOptions()},
		{name: "only stopwords between", text: "<ORG>Nokia</ORG> , and <LOC>Espoo</LOC>", opts: defaultOptions()},
		{name: "adjacent entities", text: "<ORG>Nokia</ORG> <LOC>Espoo</LOC>", opts: defaultOptions()},
		{
			name: "too far apart",
			text: "<ORG>Nokia</ORG> is headquartered in the city near <LOC>Espoo</LOC>",
			opts: Options{E1Type: "ORG", E2Type: "LOC", MinTokens: 1, MaxTokens: 3, Window: 2},
		},
		{
			name: "same surface",
			text: "<ORG>Nokia</ORG> is headquartered in <ORG>Nokia</ORG>",
			opts: Options{E1Type: "ORG", E2Type: "ORG", MinTokens: 1, MaxTokens: 6, Window: 2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewParser(fieldsTagger{tags: lexicon}, tt.opts)
			rels, err := p.Parse(tt.text)
			require.NoError(t, err)
			assert.Empty(t, rels)
		})
	}
}

func TestParse_ConsecutivePairs(t *testing.T) {
	opts := Options{E1Type: "ORG", E2Type: "ORG", MinTokens: 1, MaxTokens: 6, Window: 2}
	p := NewParser(fieldsTagger{tags: lexicon}, opts)

	rels, err := p.Parse("<ORG>A</ORG> is headquartered in <ORG>B</ORG> is headquartered in <ORG>C</ORG>")
	require.NoError(t, err)
	require.Len(t, rels, 2)
	assert.Equal(t, [2]string{"A", "B"}, [2]string{rels[0].E1, rels[0].E2})
	assert.Equal(t, [2]string{"B", "C"}, [2]string{rels[1].E1, rels[1].E2})
}

func TestParse_TaggerError(t *testing.T) {
	boom := errors.New("boom")
	p := NewParser(fieldsTagger{err: boom}, defaultOptions())
	_, err := p.Parse("<ORG>Nokia</ORG> is in <LOC>Espoo</LOC>")
	assert.ErrorIs(t, err, boom)
}

func TestFindLocations(t *testing.T) {
	words := []string{"a", "b", "a", "b", "c"}
	assert.Equal(t, []int{0, 2}, findLocations([]string{"a", "b"}, words))
	assert.Nil(t, findLocations([]string{"x"}, words))
	assert.Nil(t, findLocations(nil, words))
}
