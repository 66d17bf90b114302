package registry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"golang.org/x/sync/errgroup"

	"github.com/zjrosen/benchschema/internal/domain/history"
	"github.com/zjrosen/benchschema/internal/domain/registry"
	"github.com/zjrosen/benchschema/internal/flags"
	"github.com/zjrosen/benchschema/internal/ingest"
	"github.com/zjrosen/benchschema/internal/log"
	"github.com/zjrosen/benchschema/internal/schemaexport"
	"github.com/zjrosen/benchschema/internal/schemas"
	"github.com/zjrosen/benchschema/internal/tracing"
	"github.com/zjrosen/benchschema/internal/versions"
)

// RegistryService errors
var (
	ErrUnknownRegistry = errors.New("unknown registry")
	ErrNoRecords       = errors.New("no records to validate")
)

// DefaultConcurrency is the batch worker count used when none is configured.
const DefaultConcurrency = 4

// RegistryService is the application entry point over a sealed registry.
type RegistryService struct {
	registry    registry.Provider
	exporter    *schemaexport.Exporter
	history     history.RunRepository // nil disables run history
	flags       *flags.Registry
	tracer      trace.Tracer
	concurrency int
}

// ServiceOption configures a RegistryService.
type ServiceOption func(*RegistryService)

// WithConcurrency sets the number of records validated in parallel.
func WithConcurrency(n int) ServiceOption {
	return func(s *RegistryService) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// WithHistory records every batch run in repo.
func WithHistory(repo history.RunRepository) ServiceOption {
	return func(s *RegistryService) {
		s.history = repo
	}
}

// WithFlags sets the feature flags consulted during batch validation.
func WithFlags(f *flags.Registry) ServiceOption {
	return func(s *RegistryService) {
		s.flags = f
	}
}

// WithTracer sets the tracer for batch spans.
func WithTracer(t trace.Tracer) ServiceOption {
	return func(s *RegistryService) {
		if t != nil {
			s.tracer = t
		}
	}
}

// WithExporter sets the JSON Schema exporter.
func WithExporter(e *schemaexport.Exporter) ServiceOption {
	return func(s *RegistryService) {
		if e != nil {
			s.exporter = e
		}
	}
}

// NewRegistryService creates a service over reg.
func NewRegistryService(reg registry.Provider, opts ...ServiceOption) *RegistryService {
	s := &RegistryService{
		registry:    reg,
		exporter:    schemaexport.NewExporter(0),
		tracer:      noop.NewTracerProvider().Tracer("noop"),
		concurrency: DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List returns every registered spec in registration order.
func (s *RegistryService) List() []*registry.RecordSpec {
	return s.registry.List()
}

// Registries returns every registry name in registration order.
func (s *RegistryService) Registries() []string {
	return s.registry.Registries()
}

// Versions returns the version keys of a registry in registration order.
func (s *RegistryService) Versions(name string) ([]string, error) {
	keys := s.registry.ListVersions(name)
	if len(keys) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnknownRegistry, name)
	}
	return keys, nil
}

// Latest returns the newest version key of a registry.
func (s *RegistryService) Latest(name string) (string, error) {
	keys, err := s.Versions(name)
	if err != nil {
		return "", err
	}
	latest, ok := versions.Latest(keys)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownRegistry, name)
	}
	return latest, nil
}

// Lookup resolves an identifier ("registry::version", or a bare registry
// name for single-version registries) to its spec.
func (s *RegistryService) Lookup(ident string) (*registry.RecordSpec, error) {
	parts, err := registry.ParseIdentifier(ident, schemas.DefaultVersion)
	if err != nil {
		return nil, fmt.Errorf("parse identifier: %w", err)
	}

	spec, err := s.registry.Lookup(parts.Registry, parts.Version)
	if err != nil {
		return nil, fmt.Errorf("lookup %s: %w", ident, err)
	}
	return spec, nil
}

// Validate checks one raw record against the spec named by ident.
// A record that fails returns a *registry.ValidationFailure.
func (s *RegistryService) Validate(_ context.Context, ident string, raw registry.RawRecord) (*registry.ValidatedRecord, error) {
	spec, err := s.Lookup(ident)
	if err != nil {
		return nil, err
	}
	return registry.Validate(spec, raw)
}

// RecordResult is the outcome of one record of a batch. A record that could
// not be decoded fails with Record.Err set and no Failure.
type RecordResult struct {
	Record    ingest.Record
	Validated *registry.ValidatedRecord   // nil when the record failed
	Failure   *registry.ValidationFailure // nil when the record passed or was not decoded
}

// OK reports whether the record passed.
func (r RecordResult) OK() bool {
	return r.Failure == nil && r.Record.Err == nil
}

// Err returns why the record failed, or nil when it passed.
func (r RecordResult) Err() error {
	if r.Record.Err != nil {
		return r.Record.Err
	}
	if r.Failure != nil {
		return r.Failure
	}
	return nil
}

// BatchResult is the outcome of ValidateBatch.
type BatchResult struct {
	Run     *history.Run
	Spec    *registry.RecordSpec
	Results []RecordResult // in input order
}

// Failures returns the failed results in input order.
func (b *BatchResult) Failures() []RecordResult {
	var failed []RecordResult
	for _, r := range b.Results {
		if !r.OK() {
			failed = append(failed, r)
		}
	}
	return failed
}

// ValidateBatch validates records concurrently against the spec named by
// ident. A failing record never stops the batch; only context cancellation
// or a history write error aborts it. Results keep the input order.
func (s *RegistryService) ValidateBatch(ctx context.Context, ident string, records []ingest.Record) (*BatchResult, error) {
	spec, err := s.Lookup(ident)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, ErrNoRecords
	}

	runID := uuid.New().String()
	start := time.Now()

	ctx, span := s.tracer.Start(ctx, tracing.SpanValidateBatch, trace.WithAttributes(
		attribute.String(tracing.AttrRunID, runID),
		attribute.String(tracing.AttrSpecID, spec.Identifier()),
		attribute.Int(tracing.AttrRecordCount, len(records)),
		attribute.Int(tracing.AttrConcurrency, s.concurrency),
	))
	defer span.End()

	log.Info(log.CatValidate, "Validating batch",
		"run", runID, "spec", spec.Identifier(), "records", len(records), "concurrency", s.concurrency)

	results := make([]RecordResult, len(records))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for i, rec := range records {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = s.validateOne(gctx, spec, rec)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("validate batch: %w", err)
	}

	failed := 0
	for _, r := range results {
		if r.OK() {
			continue
		}
		failed++
		span.AddEvent(tracing.EventRecordFailed, trace.WithAttributes(
			attribute.String(tracing.AttrRecordLoc, r.Record.Location()),
			attribute.String(tracing.AttrErrorMessage, r.Err().Error()),
		))
	}

	span.SetAttributes(attribute.Int(tracing.AttrFailedCount, failed))
	if failed > 0 {
		span.SetStatus(codes.Error, fmt.Sprintf("%d records failed", failed))
	} else {
		span.SetStatus(codes.Ok, "")
	}

	run, err := history.NewRun(runID, spec.Identifier(), sourceFiles(records), len(records), failed, time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("create run: %w", err)
	}

	log.Info(log.CatValidate, "Batch validated",
		"run", runID, "spec", spec.Identifier(), "passed", run.Passed(), "failed", failed, "duration", run.Duration())

	if err := s.saveRun(ctx, run); err != nil {
		return nil, err
	}

	return &BatchResult{Run: run, Spec: spec, Results: results}, nil
}

func (s *RegistryService) validateOne(ctx context.Context, spec *registry.RecordSpec, rec ingest.Record) RecordResult {
	result := RecordResult{Record: rec}
	if rec.Err != nil {
		log.Warn(log.CatValidate, "Record could not be decoded",
			"record", rec.Location(), "spec", spec.Identifier(), "error", rec.Err.Error())
		return result
	}

	validated, err := registry.Validate(spec, rec.Raw)
	if err != nil {
		var failure *registry.ValidationFailure
		if !errors.As(err, &failure) {
			failure = &registry.ValidationFailure{Spec: spec.Identifier()}
		}
		result.Failure = failure
		log.Warn(log.CatValidate, "Record failed validation",
			"record", rec.Location(), "spec", spec.Identifier(), "error", err.Error())
	} else {
		result.Validated = validated
		if dropped := validated.Dropped(); len(dropped) > 0 && s.flags.Enabled(flags.FlagWarnUndeclaredFields) {
			log.Warn(log.CatValidate, "Dropped undeclared fields",
				"record", rec.Location(), "spec", spec.Identifier(), "fields", dropped)
		}
	}

	if s.flags.Enabled(flags.FlagJSONSchemaCrossCheck) {
		s.crossCheck(ctx, spec, rec, result.OK())
	}

	return result
}

// crossCheck compares the validator's verdict with the exported JSON Schema.
func (s *RegistryService) crossCheck(ctx context.Context, spec *registry.RecordSpec, rec ingest.Record, passed bool) {
	checkErr := s.exporter.Check(ctx, spec, rec.Raw)
	if passed == (checkErr == nil) {
		return
	}

	msg := "validator rejected a record the JSON Schema accepts"
	if checkErr != nil {
		msg = checkErr.Error()
	}
	log.Error(log.CatExport, "JSON Schema disagrees with validator",
		"record", rec.Location(), "spec", spec.Identifier(), "detail", msg)
	trace.SpanFromContext(ctx).AddEvent(tracing.EventCrossCheckMismatch, trace.WithAttributes(
		attribute.String(tracing.AttrRecordLoc, rec.Location()),
		attribute.String(tracing.AttrErrorMessage, msg),
	))
}

func (s *RegistryService) saveRun(ctx context.Context, run *history.Run) error {
	if s.history == nil {
		return nil
	}

	_, span := s.tracer.Start(ctx, tracing.SpanHistorySave, trace.WithAttributes(
		attribute.String(tracing.AttrRunID, run.ID()),
	))
	defer span.End()

	if err := s.history.Save(run); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		log.ErrorErr(log.CatStore, "Saving run failed", err, "run", run.ID())
		return fmt.Errorf("save run: %w", err)
	}
	return nil
}

// sourceFiles returns the distinct files of records in first-seen order.
func sourceFiles(records []ingest.Record) []string {
	seen := make(map[string]bool)
	var files []string
	for _, r := range records {
		if r.File == "" || seen[r.File] {
			continue
		}
		seen[r.File] = true
		files = append(files, r.File)
	}
	return files
}

// RecentRuns returns up to limit recorded runs, newest first.
func (s *RegistryService) RecentRuns(limit int) ([]*history.Run, error) {
	if s.history == nil {
		return nil, nil
	}
	runs, err := s.history.Recent(limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return runs, nil
}

// SpecDiff is the field-level difference between two specs.
type SpecDiff struct {
	From    *registry.RecordSpec
	To      *registry.RecordSpec
	Changes []registry.FieldChange
}

// Diff compares the specs named by identA and identB.
func (s *RegistryService) Diff(identA, identB string) (*SpecDiff, error) {
	a, err := s.Lookup(identA)
	if err != nil {
		return nil, err
	}
	b, err := s.Lookup(identB)
	if err != nil {
		return nil, err
	}
	return &SpecDiff{From: a, To: b, Changes: registry.Diff(a, b)}, nil
}

// JSONSchema renders the JSON Schema document of the spec named by ident.
// The document is compiled (and cached) first, so a returned document is
// always a well-formed schema.
func (s *RegistryService) JSONSchema(ctx context.Context, ident string) ([]byte, error) {
	spec, err := s.Lookup(ident)
	if err != nil {
		return nil, err
	}
	if _, err := s.exporter.Schema(ctx, spec); err != nil {
		return nil, fmt.Errorf("compile json schema %s: %w", spec.Identifier(), err)
	}
	return schemaexport.Render(spec)
}
