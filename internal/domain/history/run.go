// Package history provides the pure domain layer for validation run history.
//
// This package follows the same Domain-Driven Design rules as the registry domain:
//   - Contains only pure Go code with standard library imports
//   - Defines the Run entity with encapsulated state
//   - Defines the RunRepository interface for persistence abstraction
//   - Provides domain-specific error types
package history

import (
	"errors"
	"fmt"
	"slices"
	"time"
)

var (
	ErrEmptyRunID      = errors.New("run id must not be empty")
	ErrEmptyIdentifier = errors.New("run identifier must not be empty")
	ErrInvalidCounts   = errors.New("failed count must be between 0 and the record count")
)

// RunNotFoundError is returned when no run exists for an id.
type RunNotFoundError struct {
	ID string
}

func (e *RunNotFoundError) Error() string {
	return fmt.Sprintf("run not found: %s", e.ID)
}

// Run is one validation of a batch of records against one spec.
type Run struct {
	id         string
	identifier string
	files      []string
	records    int
	failed     int
	duration   time.Duration
	createdAt  time.Time
}

// NewRun creates a run that finished now.
func NewRun(id, identifier string, files []string, records, failed int, duration time.Duration) (*Run, error) {
	return ReconstituteRun(id, identifier, files, records, failed, duration, time.Now())
}

// ReconstituteRun rebuilds a run from persisted state.
func ReconstituteRun(id, identifier string, files []string, records, failed int, duration time.Duration, createdAt time.Time) (*Run, error) {
	if id == "" {
		return nil, ErrEmptyRunID
	}
	if identifier == "" {
		return nil, ErrEmptyIdentifier
	}
	if failed < 0 || records < 0 || failed > records {
		return nil, fmt.Errorf("%w: %d of %d", ErrInvalidCounts, failed, records)
	}
	return &Run{
		id:         id,
		identifier: identifier,
		files:      slices.Clone(files),
		records:    records,
		failed:     failed,
		duration:   duration,
		createdAt:  createdAt,
	}, nil
}

// ID returns the run's unique id.
func (r *Run) ID() string {
	return r.id
}

// Identifier returns the spec identifier the records were validated against.
func (r *Run) Identifier() string {
	return r.identifier
}

// Files returns the report files of the run.
func (r *Run) Files() []string {
	return slices.Clone(r.files)
}

// Records returns the number of records validated.
func (r *Run) Records() int {
	return r.records
}

// Failed returns the number of records that failed validation.
func (r *Run) Failed() int {
	return r.failed
}

// Passed returns the number of records that passed validation.
func (r *Run) Passed() int {
	return r.records - r.failed
}

// Duration returns how long validation took.
func (r *Run) Duration() time.Duration {
	return r.duration
}

// CreatedAt returns when the run finished.
func (r *Run) CreatedAt() time.Time {
	return r.createdAt
}

// OK reports whether every record passed.
func (r *Run) OK() bool {
	return r.failed == 0
}

// RunRepository defines the persistence interface for runs.
type RunRepository interface {
	// Save persists a run. Saving an id twice is an error.
	Save(run *Run) error

	// FindByID returns RunNotFoundError when no run has the id.
	FindByID(id string) (*Run, error)

	// Recent returns up to limit runs, newest first. A limit of 0 returns all runs.
	Recent(limit int) ([]*Run, error)
}
