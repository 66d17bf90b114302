package sqlite

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/zjrosen/benchschema/internal/domain/history"
)

// runColumns is the list of columns to select for run queries.
const runColumns = `id, identifier, files, records, failed, duration_ms, created_at`

// runRepository implements history.RunRepository using SQLite.
type runRepository struct {
	db *sql.DB
}

func newRunRepository(db *sql.DB) *runRepository {
	return &runRepository{db: db}
}

var _ history.RunRepository = (*runRepository)(nil)

// scanRun scans a row into a RunModel.
func scanRun(scanner interface{ Scan(...any) error }) (*RunModel, error) {
	var model RunModel
	err := scanner.Scan(
		&model.ID, &model.Identifier, &model.Files,
		&model.Records, &model.Failed, &model.DurationMS, &model.CreatedAt,
	)
	return &model, err
}

// Save inserts a run. Runs are immutable, so saving an existing id fails.
func (r *runRepository) Save(run *history.Run) error {
	model := toRunModel(run)
	_, err := r.db.Exec(
		`INSERT INTO runs (`+runColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		model.ID, model.Identifier, model.Files,
		model.Records, model.Failed, model.DurationMS, model.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}
	return nil
}

// FindByID retrieves a run by id.
// Returns RunNotFoundError if no matching run exists.
func (r *runRepository) FindByID(id string) (*history.Run, error) {
	row := r.db.QueryRow(`SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	model, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &history.RunNotFoundError{ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find run: %w", err)
	}
	return model.toDomain()
}

// Recent returns up to limit runs ordered by created_at descending (newest first).
// A limit of 0 returns every run.
func (r *runRepository) Recent(limit int) ([]*history.Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs ORDER BY created_at DESC, rowid DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []*history.Run
	for rows.Next() {
		model, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		run, err := model.toDomain()
		if err != nil {
			return nil, fmt.Errorf("failed to load run %s: %w", model.ID, err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate runs: %w", err)
	}
	return runs, nil
}
