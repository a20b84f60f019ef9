package extraction

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/todmy/snowball/internal/logging"
	"github.com/todmy/snowball/internal/relation"
	"github.com/todmy/snowball/internal/sentence"
)

const progressEvery = 10000

// Parser finds relationships in one sentence
type Parser interface {
	Parse(text string) ([]sentence.Relationship, error)
}

// Generator reads entity-tagged sentences and builds the tuple corpus.
type Generator struct {
	parser  Parser
	builder *Builder
	e1Type  string
	e2Type  string
	logger  *slog.Logger
}

// NewGenerator creates a generator that keeps only relationships whose
// entity types are e1Type and e2Type.
func NewGenerator(parser Parser, builder *Builder, e1Type, e2Type string, logger *slog.Logger) *Generator {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Generator{
		parser:  parser,
		builder: builder,
		e1Type:  e1Type,
		e2Type:  e2Type,
		logger:  logger,
	}
}

// Generate reads one sentence per line. Sentences that fail to parse are
// logged and skipped.
func (g *Generator) Generate(ctx context.Context, r io.Reader) ([]*relation.Tuple, error) {
	var tuples []*relation.Tuple

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)
	lines := 0
	for scanner.Scan() {
		lines++
		if lines%progressEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			g.logger.Info("generating tuples", "sentences", lines, "tuples", len(tuples))
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		rels, err := g.parser.Parse(line)
		if err != nil {
			g.logger.Warn("skipping sentence", "line", lines, "error", err)
			continue
		}
		for _, rel := range rels {
			if rel.E1Type != g.e1Type || rel.E2Type != g.e2Type {
				continue
			}
			tuples = append(tuples, g.builder.Build(rel))
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read sentences: %w", err)
	}

	g.logger.Info("relationships generated", "sentences", lines, "tuples", len(tuples))
	return tuples, nil
}
