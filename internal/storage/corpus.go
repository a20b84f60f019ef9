package storage

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"time"
)

// ErrCorpusNotFound is returned when no tuples are stored under a key
var ErrCorpusNotFound = errors.New("corpus not found")

// Corpus describes one stored set of processed tuples
type Corpus struct {
	Key        string
	Source     string
	TupleCount int
	CreatedAt  time.Time
}

// CorpusKey identifies a processed corpus by the sentence text and every
// setting that shapes its tuples, so that a cached corpus is reused only
// when re-extraction would produce the same tuples.
func CorpusKey(sentences io.Reader, shaping ...string) (string, error) {
	h := sha256.New()
	if _, err := io.Copy(h, sentences); err != nil {
		return "", fmt.Errorf("failed to hash sentences: %w", err)
	}
	for _, s := range shaping {
		h.Write([]byte{0})
		h.Write([]byte(s))
	}
	return hex.EncodeToString(h.Sum(nil))[:16], nil
}
