package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/todmy/snowball/pkg/models"
)

// ErrRunNotFound is returned when a run id is unknown
var ErrRunNotFound = errors.New("run not found")

// Run is one recorded bootstrapping run
type Run struct {
	ID         uuid.UUID
	CorpusKey  string
	Config     json.RawMessage
	Iterations []models.IterationSummary
	StartedAt  time.Time
	FinishedAt time.Time
}

// RunRepository defines the interface for run storage operations
type RunRepository interface {
	SaveRun(ctx context.Context, run *Run, rels []models.Relationship) error
	GetRun(ctx context.Context, id uuid.UUID) (*Run, error)
	ListRelationships(ctx context.Context, runID uuid.UUID) ([]models.Relationship, error)
}

// SQLRunRepository implements RunRepository on SQLite or PostgreSQL
type SQLRunRepository struct {
	db      *sql.DB
	dialect Dialect
}

// NewSQLRunRepository creates a new SQLRunRepository
func NewSQLRunRepository(db *sql.DB, dialect Dialect) *SQLRunRepository {
	return &SQLRunRepository{db: db, dialect: dialect}
}

// SaveRun inserts a run and its ranked relationships
func (r *SQLRunRepository) SaveRun(ctx context.Context, run *Run, rels []models.Relationship) error {
	if run.ID == uuid.Nil {
		run.ID = uuid.New()
	}
	if run.Config == nil {
		run.Config = json.RawMessage("{}")
	}

	iterations, err := json.Marshal(run.Iterations)
	if err != nil {
		return fmt.Errorf("failed to encode iterations: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, r.dialect.Rebind(`
		INSERT INTO runs (id, corpus_key, config, iterations, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`),
		run.ID,
		run.CorpusKey,
		string(run.Config),
		string(iterations),
		run.StartedAt,
		run.FinishedAt,
	)
	if err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, r.dialect.Rebind(`
		INSERT INTO relationships (run_id, rank, e1, e2, confidence, sentence, passive_voice)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`))
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, rel := range rels {
		_, err := stmt.ExecContext(ctx,
			run.ID,
			i,
			rel.E1,
			rel.E2,
			rel.Confidence,
			rel.Sentence,
			rel.PassiveVoice,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// GetRun retrieves a run by its ID
func (r *SQLRunRepository) GetRun(ctx context.Context, id uuid.UUID) (*Run, error) {
	query := r.dialect.Rebind(`
		SELECT id, corpus_key, config, iterations, started_at, finished_at
		FROM runs
		WHERE id = ?
	`)

	run := &Run{}
	var cfg, iterations string
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&run.ID,
		&run.CorpusKey,
		&cfg,
		&iterations,
		&run.StartedAt,
		&run.FinishedAt,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, err
	}

	run.Config = json.RawMessage(cfg)
	if err := json.Unmarshal([]byte(iterations), &run.Iterations); err != nil {
		return nil, fmt.Errorf("failed to decode iterations: %w", err)
	}

	return run, nil
}

// ListRelationships retrieves the relationships of a run in rank order
func (r *SQLRunRepository) ListRelationships(ctx context.Context, runID uuid.UUID) ([]models.Relationship, error) {
	query := r.dialect.Rebind(`
		SELECT e1, e2, confidence, sentence, passive_voice
		FROM relationships
		WHERE run_id = ?
		ORDER BY rank ASC
	`)

	rows, err := r.db.QueryContext(ctx, query, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rels []models.Relationship
	for rows.Next() {
		var rel models.Relationship
		err := rows.Scan(
			&rel.E1,
			&rel.E2,
			&rel.Confidence,
			&rel.Sentence,
			&rel.PassiveVoice,
		)
		if err != nil {
			return nil, err
		}
		rels = append(rels, rel)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return rels, nil
}

var _ RunRepository = (*SQLRunRepository)(nil)
