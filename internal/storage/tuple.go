package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/todmy/snowball/internal/relation"
)

// TupleRepository defines the interface for processed-tuple storage
type TupleRepository interface {
	SaveCorpus(ctx context.Context, corpus *Corpus, tuples []*relation.Tuple) error
	LoadCorpus(ctx context.Context, key string) ([]*relation.Tuple, error)
	GetCorpus(ctx context.Context, key string) (*Corpus, error)
	DeleteCorpus(ctx context.Context, key string) error
}

// SQLTupleRepository implements TupleRepository on SQLite or PostgreSQL
type SQLTupleRepository struct {
	db      *sql.DB
	dialect Dialect
}

// NewSQLTupleRepository creates a new SQLTupleRepository
func NewSQLTupleRepository(db *sql.DB, dialect Dialect) *SQLTupleRepository {
	return &SQLTupleRepository{db: db, dialect: dialect}
}

// SaveCorpus replaces whatever is stored under corpus.Key with tuples, in
// a single transaction. Tuple order is preserved.
func (r *SQLTupleRepository) SaveCorpus(ctx context.Context, corpus *Corpus, tuples []*relation.Tuple) error {
	if corpus.CreatedAt.IsZero() {
		corpus.CreatedAt = time.Now()
	}
	corpus.TupleCount = len(tuples)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, r.dialect.Rebind(`DELETE FROM tuples WHERE corpus_key = ?`), corpus.Key); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, r.dialect.Rebind(`DELETE FROM corpora WHERE corpus_key = ?`), corpus.Key); err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, r.dialect.Rebind(`
		INSERT INTO corpora (corpus_key, source, tuple_count, created_at)
		VALUES (?, ?, ?, ?)
	`), corpus.Key, corpus.Source, corpus.TupleCount, corpus.CreatedAt)
	if err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, r.dialect.Rebind(`
		INSERT INTO tuples (id, corpus_key, position, e1, e2, sentence,
			before_tokens, between_tokens, after_tokens,
			before_vector, between_vector, after_vector, voice)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`))
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, t := range tuples {
		var (
			tokens  [3]string
			vectors [3]any
		)
		for _, c := range relation.Contexts {
			enc, err := encodeTokens(t.Tokens(c))
			if err != nil {
				return fmt.Errorf("tuple %d: %w", i, err)
			}
			tokens[c] = enc
			if vectors[c], err = r.dialect.encodeVector(t.Vector(c)); err != nil {
				return fmt.Errorf("tuple %d: %w", i, err)
			}
		}

		_, err := stmt.ExecContext(ctx,
			uuid.New(),
			corpus.Key,
			i,
			t.E1,
			t.E2,
			t.Sentence,
			tokens[relation.Before],
			tokens[relation.Between],
			tokens[relation.After],
			vectors[relation.Before],
			vectors[relation.Between],
			vectors[relation.After],
			int(t.Voice),
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// LoadCorpus retrieves the tuples stored under key in their original order.
// Returns ErrCorpusNotFound when the key is unknown.
func (r *SQLTupleRepository) LoadCorpus(ctx context.Context, key string) ([]*relation.Tuple, error) {
	if _, err := r.GetCorpus(ctx, key); err != nil {
		return nil, err
	}

	query := r.dialect.Rebind(`
		SELECT e1, e2, sentence, before_tokens, between_tokens, after_tokens,
			before_vector, between_vector, after_vector, voice
		FROM tuples
		WHERE corpus_key = ?
		ORDER BY position ASC
	`)

	rows, err := r.db.QueryContext(ctx, query, key)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tuples []*relation.Tuple
	for rows.Next() {
		t, err := scanTuple(rows, r.dialect)
		if err != nil {
			return nil, err
		}
		tuples = append(tuples, t)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return tuples, nil
}

func scanTuple(rows *sql.Rows, dialect Dialect) (*relation.Tuple, error) {
	t := &relation.Tuple{}
	var (
		tokens  [3]string
		vectors [3]sql.NullString
		voice   int
	)
	err := rows.Scan(
		&t.E1,
		&t.E2,
		&t.Sentence,
		&tokens[relation.Before],
		&tokens[relation.Between],
		&tokens[relation.After],
		&vectors[relation.Before],
		&vectors[relation.Between],
		&vectors[relation.After],
		&voice,
	)
	if err != nil {
		return nil, err
	}
	t.Voice = relation.Voice(voice)

	if t.BeforeTokens, err = decodeTokens(tokens[relation.Before]); err != nil {
		return nil, err
	}
	if t.BetweenTokens, err = decodeTokens(tokens[relation.Between]); err != nil {
		return nil, err
	}
	if t.AfterTokens, err = decodeTokens(tokens[relation.After]); err != nil {
		return nil, err
	}
	if t.BeforeVector, err = dialect.decodeVector(vectors[relation.Before]); err != nil {
		return nil, err
	}
	if t.BetweenVector, err = dialect.decodeVector(vectors[relation.Between]); err != nil {
		return nil, err
	}
	if t.AfterVector, err = dialect.decodeVector(vectors[relation.After]); err != nil {
		return nil, err
	}
	return t, nil
}

// GetCorpus retrieves the corpus record for key
func (r *SQLTupleRepository) GetCorpus(ctx context.Context, key string) (*Corpus, error) {
	query := r.dialect.Rebind(`
		SELECT corpus_key, source, tuple_count, created_at
		FROM corpora
		WHERE corpus_key = ?
	`)

	corpus := &Corpus{}
	err := r.db.QueryRowContext(ctx, query, key).Scan(
		&corpus.Key,
		&corpus.Source,
		&corpus.TupleCount,
		&corpus.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", ErrCorpusNotFound, key)
	}
	if err != nil {
		return nil, err
	}

	return corpus, nil
}

// DeleteCorpus removes a corpus and its tuples
func (r *SQLTupleRepository) DeleteCorpus(ctx context.Context, key string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, r.dialect.Rebind(`DELETE FROM tuples WHERE corpus_key = ?`), key); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, r.dialect.Rebind(`DELETE FROM corpora WHERE corpus_key = ?`), key); err != nil {
		return err
	}
	return tx.Commit()
}

var _ TupleRepository = (*SQLTupleRepository)(nil)
