package sqlite

import (
	"encoding/json"
	"time"

	"github.com/zjrosen/benchschema/internal/domain/history"
)

// RunModel represents the database row for the runs table.
// Times are stored as Unix milliseconds.
type RunModel struct {
	ID         string
	Identifier string
	Files      *string // nullable, JSON encoded
	Records    int
	Failed     int
	DurationMS int64
	CreatedAt  int64
}

// toRunModel converts a domain Run to a database RunModel.
func toRunModel(r *history.Run) *RunModel {
	m := &RunModel{
		ID:         r.ID(),
		Identifier: r.Identifier(),
		Records:    r.Records(),
		Failed:     r.Failed(),
		DurationMS: r.Duration().Milliseconds(),
		CreatedAt:  r.CreatedAt().UnixMilli(),
	}
	if files := r.Files(); len(files) > 0 {
		filesJSON, err := json.Marshal(files)
		if err == nil {
			encoded := string(filesJSON)
			m.Files = &encoded
		}
	}
	return m
}

// toDomain converts a database RunModel to a domain Run.
func (m *RunModel) toDomain() (*history.Run, error) {
	var files []string
	if m.Files != nil {
		_ = json.Unmarshal([]byte(*m.Files), &files)
	}
	return history.ReconstituteRun(
		m.ID,
		m.Identifier,
		files,
		m.Records,
		m.Failed,
		time.Duration(m.DurationMS)*time.Millisecond,
		time.UnixMilli(m.CreatedAt),
	)
}
