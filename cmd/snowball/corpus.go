package main

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/todmy/snowball/internal/config"
	"github.com/todmy/snowball/internal/extraction"
	"github.com/todmy/snowball/internal/relation"
	"github.com/todmy/snowball/internal/sentence"
	"github.com/todmy/snowball/internal/storage"
	"github.com/todmy/snowball/internal/vsm"
)

var errNoDatabase = errors.New("command needs a database, set --db")

// store bundles the repositories of an open database
type store struct {
	db     *sql.DB
	tuples *storage.SQLTupleRepository
	runs   *storage.SQLRunRepository
}

func openStore(ctx context.Context, dsn string) (*store, error) {
	db, dialect, err := storage.Open(ctx, dsn)
	if err != nil {
		return nil, err
	}
	if err := storage.EnsureSchema(ctx, db, dialect); err != nil {
		db.Close()
		return nil, err
	}
	logger.Debug("opened store", "dialect", dialect.String())
	return &store{
		db:     db,
		tuples: storage.NewSQLTupleRepository(db, dialect),
		runs:   storage.NewSQLRunRepository(db, dialect),
	}, nil
}

func (s *store) Close() error {
	if s == nil {
		return nil
	}
	return s.db.Close()
}

// corpusKey hashes the sentences with every setting that changes the
// generated tuples.
func corpusKey(cfg *config.Config, sentences []byte) (string, error) {
	return storage.CorpusKey(bytes.NewReader(sentences),
		cfg.E1Type,
		cfg.E2Type,
		strconv.Itoa(cfg.ContextWindowSize),
		strconv.Itoa(cfg.MinTokensAway),
		strconv.Itoa(cfg.MaxTokensAway),
		strconv.FormatBool(cfg.UseReVerb),
	)
}

func buildModel(ctx context.Context, sentences []byte) (*vsm.Model, error) {
	model, err := vsm.BuildModel(ctx, bytes.NewReader(sentences), nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build vector space model: %w", err)
	}
	logger.Info("vector space model built", "documents", model.Documents(), "terms", model.Dictionary().Len())
	return model, nil
}

func generateTuples(ctx context.Context, cfg *config.Config, sentences []byte, model *vsm.Model) ([]*relation.Tuple, error) {
	parser := sentence.NewParser(sentence.NewProseTagger(), sentence.Options{
		E1Type:    cfg.E1Type,
		E2Type:    cfg.E2Type,
		MinTokens: cfg.MinTokensAway,
		MaxTokens: cfg.MaxTokensAway,
		Window:    cfg.ContextWindowSize,
	})
	builder := extraction.NewBuilder(model, vsm.Stopwords(), cfg.UseReVerb)
	gen := extraction.NewGenerator(parser, builder, cfg.E1Type, cfg.E2Type, logger)
	return gen.Generate(ctx, bytes.NewReader(sentences))
}

// loadCorpus returns the processed tuples for sentences, reusing a cached
// corpus when st holds one. The model is built when tuples have to be
// generated or when needModel is set; otherwise it is nil.
func loadCorpus(ctx context.Context, cfg *config.Config, st *store, source string, sentences []byte, needModel bool) ([]*relation.Tuple, *vsm.Model, string, error) {
	key, err := corpusKey(cfg, sentences)
	if err != nil {
		return nil, nil, "", err
	}

	if st != nil {
		tuples, err := st.tuples.LoadCorpus(ctx, key)
		switch {
		case err == nil:
			logger.Info("loaded pre-processed tuples", "corpus", key, "tuples", len(tuples))
			var model *vsm.Model
			if needModel {
				if model, err = buildModel(ctx, sentences); err != nil {
					return nil, nil, "", err
				}
			}
			return tuples, model, key, nil
		case !errors.Is(err, storage.ErrCorpusNotFound):
			return nil, nil, "", err
		}
	}

	model, tuples, err := generateCorpus(ctx, cfg, st, key, source, sentences)
	if err != nil {
		return nil, nil, "", err
	}
	return tuples, model, key, nil
}

// generateCorpus extracts tuples from sentences and stores them under key
// when st is non-nil. The stored tuples are read back so that this run
// scores the same vectors a later cached run would.
func generateCorpus(ctx context.Context, cfg *config.Config, st *store, key, source string, sentences []byte) (*vsm.Model, []*relation.Tuple, error) {
	model, err := buildModel(ctx, sentences)
	if err != nil {
		return nil, nil, err
	}

	tuples, err := generateTuples(ctx, cfg, sentences, model)
	if err != nil {
		return nil, nil, err
	}

	if st != nil {
		corpus := &storage.Corpus{Key: key, Source: source}
		if err := st.tuples.SaveCorpus(ctx, corpus, tuples); err != nil {
			return nil, nil, fmt.Errorf("failed to store tuples: %w", err)
		}
		logger.Info("stored pre-processed tuples", "corpus", key, "tuples", len(tuples))

		if tuples, err = st.tuples.LoadCorpus(ctx, key); err != nil {
			return nil, nil, fmt.Errorf("failed to reload tuples: %w", err)
		}
	}
	return model, tuples, nil
}
