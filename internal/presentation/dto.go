package presentation

import (
	"time"

	"github.com/zjrosen/benchschema/internal/domain/history"
	"github.com/zjrosen/benchschema/internal/domain/registry"
	regapp "github.com/zjrosen/benchschema/internal/registry/application"
)

// RegistryDTO represents one registry and its version keys
type RegistryDTO struct {
	Name     string   `json:"name"`
	Versions []string `json:"versions"` // registration order
	Latest   string   `json:"latest"`
}

// FieldDTO represents one declared field
type FieldDTO struct {
	Name        string   `json:"name"`
	Type        string   `json:"type"`
	Optional    bool     `json:"optional"`
	Allowed     []string `json:"allowed,omitempty"`
	Description string   `json:"description,omitempty"`
}

// SpecDTO represents a record spec for presentation
type SpecDTO struct {
	Identifier  string     `json:"identifier"`
	Registry    string     `json:"registry"`
	Version     string     `json:"version"`
	Description string     `json:"description,omitempty"`
	Source      string     `json:"source"`
	Fields      []FieldDTO `json:"fields"`
}

// FieldChangeDTO represents one field-level difference
type FieldChangeDTO struct {
	Field string `json:"field"`
	Kind  string `json:"kind"`
	From  string `json:"from,omitempty"`
	To    string `json:"to,omitempty"`
}

// DiffDTO represents the schema evolution between two specs
type DiffDTO struct {
	From    string           `json:"from"`
	To      string           `json:"to"`
	Changes []FieldChangeDTO `json:"changes"` // always present, empty when the shapes match
	Text    string           `json:"text"`    // line diff of the two spec renderings
}

// RunDTO represents a recorded validation run
type RunDTO struct {
	ID         string    `json:"id"`
	Identifier string    `json:"identifier"`
	Files      []string  `json:"files"`
	Records    int       `json:"records"`
	Passed     int       `json:"passed"`
	Failed     int       `json:"failed"`
	DurationMs int64     `json:"duration_ms"`
	CreatedAt  time.Time `json:"created_at"`
}

// ViolationDTO represents one failed field of a record
type ViolationDTO struct {
	Field   string `json:"field"`
	Reason  string `json:"reason"`
	Message string `json:"message,omitempty"`
}

// RecordFailureDTO represents one record that failed validation
type RecordFailureDTO struct {
	Location   string         `json:"location"`
	Error      string         `json:"error,omitempty"` // set when the record could not be decoded
	Violations []ViolationDTO `json:"violations"`
}

// ReportDTO is the outcome of a validate command
type ReportDTO struct {
	Run      RunDTO             `json:"run"`
	OK       bool               `json:"ok"`
	Failures []RecordFailureDTO `json:"failures"` // always present, in input order
}

// FromDomainField converts a domain field to a DTO
func FromDomainField(f registry.FieldSpec) FieldDTO {
	return FieldDTO{
		Name:        f.Name(),
		Type:        f.Kind().String(),
		Optional:    f.IsOptional(),
		Allowed:     f.Allowed(),
		Description: f.Description(),
	}
}

// FromDomainSpec converts a domain spec to a DTO
func FromDomainSpec(spec *registry.RecordSpec) SpecDTO {
	fields := make([]FieldDTO, 0, spec.Len())
	for _, f := range spec.Fields() {
		fields = append(fields, FromDomainField(f))
	}

	return SpecDTO{
		Identifier:  spec.Identifier(),
		Registry:    spec.Registry(),
		Version:     spec.Version(),
		Description: spec.Description(),
		Source:      spec.Source().String(),
		Fields:      fields,
	}
}

// FromDomainSpecs converts a slice of domain specs to DTOs
func FromDomainSpecs(specs []*registry.RecordSpec) []SpecDTO {
	dtos := make([]SpecDTO, len(specs))
	for i, spec := range specs {
		dtos[i] = FromDomainSpec(spec)
	}
	return dtos
}

// FromDiff converts a spec diff to a DTO, rendering the line diff of both specs
func FromDiff(d *regapp.SpecDiff) DiffDTO {
	changes := make([]FieldChangeDTO, len(d.Changes))
	for i, c := range d.Changes {
		changes[i] = FieldChangeDTO{
			Field: c.Field,
			Kind:  string(c.Kind),
			From:  c.From,
			To:    c.To,
		}
	}

	return DiffDTO{
		From:    d.From.Identifier(),
		To:      d.To.Identifier(),
		Changes: changes,
		Text:    LineDiff(RenderSpec(d.From), RenderSpec(d.To)),
	}
}

// FromDomainRun converts a domain run to a DTO
func FromDomainRun(run *history.Run) RunDTO {
	files := run.Files()
	if files == nil {
		files = []string{}
	}

	return RunDTO{
		ID:         run.ID(),
		Identifier: run.Identifier(),
		Files:      files,
		Records:    run.Records(),
		Passed:     run.Passed(),
		Failed:     run.Failed(),
		DurationMs: run.Duration().Milliseconds(),
		CreatedAt:  run.CreatedAt(),
	}
}

// FromDomainRuns converts a slice of domain runs to DTOs
func FromDomainRuns(runs []*history.Run) []RunDTO {
	dtos := make([]RunDTO, len(runs))
	for i, run := range runs {
		dtos[i] = FromDomainRun(run)
	}
	return dtos
}

// FromBatchResult converts a batch result to a report
func FromBatchResult(result *regapp.BatchResult) ReportDTO {
	failures := make([]RecordFailureDTO, 0)
	for _, r := range result.Failures() {
		dto := RecordFailureDTO{
			Location:   r.Record.Location(),
			Violations: make([]ViolationDTO, 0),
		}
		if r.Record.Err != nil {
			dto.Error = r.Record.Err.Error()
		}
		if r.Failure != nil {
			for _, v := range r.Failure.Violations {
				dto.Violations = append(dto.Violations, ViolationDTO{
					Field:   v.Field,
					Reason:  string(v.Reason),
					Message: v.Message,
				})
			}
		}
		failures = append(failures, dto)
	}

	return ReportDTO{
		Run:      FromDomainRun(result.Run),
		OK:       result.Run.OK(),
		Failures: failures,
	}
}
