package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pgvector/pgvector-go"

	"github.com/todmy/snowball/internal/relation"
	"github.com/todmy/snowball/internal/vsm"
)

// encodeVector converts a vector to a column value. Postgres stores a
// sparsevec, whose weights are float32. SQLite stores the terms as JSON and
// keeps full float64 precision. A nil vector is stored as NULL.
func (d Dialect) encodeVector(v vsm.Vector) (any, error) {
	if v == nil {
		return nil, nil
	}
	if d != Postgres {
		b, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("failed to encode vector: %w", err)
		}
		return string(b), nil
	}

	elements := make(map[int32]float32, len(v))
	dim := int32(1)
	for _, term := range v {
		elements[int32(term.ID)] = float32(term.Weight)
		if int32(term.ID)+1 > dim {
			dim = int32(term.ID) + 1
		}
	}
	return pgvector.NewSparseVectorFromMap(elements, dim), nil
}

// decodeVector converts a scanned vector column back into a vector.
// NULL becomes nil and an empty stored vector becomes an empty vector.
func (d Dialect) decodeVector(col sql.NullString) (vsm.Vector, error) {
	if !col.Valid {
		return nil, nil
	}
	if d != Postgres {
		v := vsm.Vector{}
		if err := json.Unmarshal([]byte(col.String), &v); err != nil {
			return nil, fmt.Errorf("failed to decode vector %q: %w", col.String, err)
		}
		return v, nil
	}

	if strings.HasPrefix(col.String, "{}") {
		return vsm.Vector{}, nil
	}

	var sv pgvector.SparseVector
	if err := sv.Scan([]byte(col.String)); err != nil {
		return nil, fmt.Errorf("failed to decode vector %q: %w", col.String, err)
	}

	indices := sv.Indices()
	values := sv.Values()
	v := make(vsm.Vector, len(indices))
	for i, idx := range indices {
		v[i] = vsm.Term{ID: int(idx), Weight: float64(values[i])}
	}
	return v, nil
}

func encodeTokens(tokens []relation.TaggedToken) (string, error) {
	if tokens == nil {
		tokens = []relation.TaggedToken{}
	}
	b, err := json.Marshal(tokens)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func decodeTokens(s string) ([]relation.TaggedToken, error) {
	var tokens []relation.TaggedToken
	if err := json.Unmarshal([]byte(s), &tokens); err != nil {
		return nil, fmt.Errorf("failed to decode tokens: %w", err)
	}
	return tokens, nil
}
