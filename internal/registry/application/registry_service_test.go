package registry

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/zjrosen/benchschema/internal/domain/registry"
	"github.com/zjrosen/benchschema/internal/flags"
	"github.com/zjrosen/benchschema/internal/infrastructure/sqlite"
	"github.com/zjrosen/benchschema/internal/ingest"
	"github.com/zjrosen/benchschema/internal/log"
	"github.com/zjrosen/benchschema/internal/schemaexport"
	"github.com/zjrosen/benchschema/internal/schemas"
	"github.com/zjrosen/benchschema/internal/tracing"
)

func newTestService(opts ...ServiceOption) *RegistryService {
	return NewRegistryService(schemas.NewRegistry(), opts...)
}

func crateRecord(file string, index int, status string) ingest.Record {
	return ingest.Record{
		File:  file,
		Index: index,
		Raw: registry.RawRecord{
			"name":           fmt.Sprintf("crate-%d", index),
			"version":        "1.0.0",
			"status":         status,
			"custom_profile": "",
		},
	}
}

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	log.InitWriter(&buf)
	t.Cleanup(log.Reset)
	return &buf
}

func TestRegistryService_List(t *testing.T) {
	svc := newTestService()

	specs := svc.List()
	require.Len(t, specs, 5)
	require.Equal(t, "applications-benchmarks::main", specs[0].Identifier())
	require.Equal(t, []string{
		schemas.ApplicationsBenchmarks,
		schemas.Datasheet,
		schemas.CratesIOValidation,
	}, svc.Registries())
}

func TestRegistryService_Versions(t *testing.T) {
	svc := newTestService()

	keys, err := svc.Versions(schemas.ApplicationsBenchmarks)
	require.NoError(t, err)
	require.Equal(t, []string{"main", "release-1.0", "release-0.21"}, keys)

	_, err = svc.Versions("nope")
	require.ErrorIs(t, err, ErrUnknownRegistry)
}

func TestRegistryService_Latest(t *testing.T) {
	svc := newTestService()

	latest, err := svc.Latest(schemas.ApplicationsBenchmarks)
	require.NoError(t, err)
	require.Equal(t, "release-1.0", latest)

	latest, err = svc.Latest(schemas.Datasheet)
	require.NoError(t, err)
	require.Equal(t, schemas.DefaultVersion, latest)

	_, err = svc.Latest("nope")
	require.ErrorIs(t, err, ErrUnknownRegistry)
}

func TestRegistryService_Lookup(t *testing.T) {
	svc := newTestService()

	tests := []struct {
		ident   string
		want    string
		wantErr error
	}{
		{ident: "applications-benchmarks::release-0.21", want: "applications-benchmarks::release-0.21"},
		{ident: "datasheet", want: "datasheet::default"},
		{ident: "datasheet::default", want: "datasheet::default"},
		{ident: "applications-benchmarks", wantErr: registry.ErrUnknownVersion},
		{ident: "applications-benchmarks::release-2.0", wantErr: registry.ErrUnknownVersion},
		{ident: "nope::v1", wantErr: registry.ErrUnknownVersion},
		{ident: "a::b::c", wantErr: registry.ErrInvalidIdentifier},
		{ident: "", wantErr: registry.ErrInvalidIdentifier},
	}

	for _, tt := range tests {
		t.Run(tt.ident, func(t *testing.T) {
			spec, err := svc.Lookup(tt.ident)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				require.Nil(t, spec)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, spec.Identifier())
		})
	}
}

func TestRegistryService_Lookup_UnknownVersionListsKnown(t *testing.T) {
	svc := newTestService()

	_, err := svc.Lookup("applications-benchmarks::release-2.0")

	var unknown *registry.UnknownVersionError
	require.ErrorAs(t, err, &unknown)
	require.Equal(t, []string{"main", "release-1.0", "release-0.21"}, unknown.Known)
}

func TestRegistryService_Validate(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	rec, err := svc.Validate(ctx, "crates-io-validation", crateRecord("a", 1, "Success").Raw)
	require.NoError(t, err)
	status, ok := rec.String("status")
	require.True(t, ok)
	require.Equal(t, "Success", status)

	_, err = svc.Validate(ctx, "crates-io-validation", crateRecord("a", 1, "Pending").Raw)
	require.ErrorIs(t, err, registry.ErrInvalidEnumValue)

	_, err = svc.Validate(ctx, "crates-io-validation::v9", crateRecord("a", 1, "Success").Raw)
	require.ErrorIs(t, err, registry.ErrUnknownVersion)
}

func TestRegistryService_ValidateBatch(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	provider := tracing.NewProviderWithExporter(exporter)
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	svc := newTestService(WithTracer(provider.Tracer()), WithConcurrency(3))

	records := []ingest.Record{
		crateRecord("a.json", 1, "Success"),
		crateRecord("a.json", 2, "Pending"),
		crateRecord("b.json", 1, "RunFail"),
		crateRecord("b.json", 2, "success"),
		crateRecord("b.json", 3, "Skipped"),
	}

	result, err := svc.ValidateBatch(context.Background(), "crates-io-validation", records)
	require.NoError(t, err)

	require.Equal(t, "crates-io-validation::default", result.Spec.Identifier())
	require.Len(t, result.Results, len(records))
	for i, r := range result.Results {
		require.Equal(t, records[i].Location(), r.Record.Location(), "results keep input order")
	}

	require.True(t, result.Results[0].OK())
	require.False(t, result.Results[1].OK())
	require.Equal(t, 1, result.Results[1].Failure.Count(registry.ReasonInvalidEnumValue))

	failures := result.Failures()
	require.Len(t, failures, 2)
	require.Equal(t, "a.json:2", failures[0].Record.Location())
	require.Equal(t, "b.json:2", failures[1].Record.Location())

	run := result.Run
	require.NotEmpty(t, run.ID())
	require.Equal(t, "crates-io-validation::default", run.Identifier())
	require.Equal(t, []string{"a.json", "b.json"}, run.Files())
	require.Equal(t, 5, run.Records())
	require.Equal(t, 2, run.Failed())
	require.Equal(t, 3, run.Passed())
	require.False(t, run.OK())

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	span := spans[0]
	require.Equal(t, tracing.SpanValidateBatch, span.Name)
	require.Equal(t, codes.Error, span.Status.Code)
	require.Equal(t, "2 records failed", span.Status.Description)
	require.Len(t, span.Events, 2)
	require.Equal(t, tracing.EventRecordFailed, span.Events[0].Name)

	attrs := make(map[string]any)
	for _, kv := range span.Attributes {
		attrs[string(kv.Key)] = kv.Value.AsInterface()
	}
	require.Equal(t, run.ID(), attrs[tracing.AttrRunID])
	require.Equal(t, int64(5), attrs[tracing.AttrRecordCount])
	require.Equal(t, int64(2), attrs[tracing.AttrFailedCount])
	require.Equal(t, int64(3), attrs[tracing.AttrConcurrency])
}

func TestRegistryService_ValidateBatch_AllPass(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	provider := tracing.NewProviderWithExporter(exporter)
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	svc := newTestService(WithTracer(provider.Tracer()))

	result, err := svc.ValidateBatch(context.Background(), "crates-io-validation", []ingest.Record{
		crateRecord("a.json", 1, "Success"),
		crateRecord("a.json", 2, "BuildFail"),
	})
	require.NoError(t, err)
	require.True(t, result.Run.OK())
	require.Empty(t, result.Failures())

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	require.Equal(t, codes.Ok, spans[0].Status.Code)
	require.Empty(t, spans[0].Events)
}

func TestRegistryService_ValidateBatch_ManyRecordsKeepOrder(t *testing.T) {
	svc := newTestService(WithConcurrency(8))

	records := make([]ingest.Record, 200)
	for i := range records {
		status := "Success"
		if i%7 == 0 {
			status = "Pending"
		}
		records[i] = crateRecord("big.jsonl", i+1, status)
	}

	result, err := svc.ValidateBatch(context.Background(), "crates-io-validation", records)
	require.NoError(t, err)

	for i, r := range result.Results {
		require.Equal(t, i+1, r.Record.Index)
		require.Equal(t, i%7 != 0, r.OK(), "record %d", i+1)
	}
	require.Equal(t, 29, result.Run.Failed())
}

func TestRegistryService_ValidateBatch_UndecodedRecordFails(t *testing.T) {
	buf := captureLogs(t)

	decodeErr := fmt.Errorf("line 2: %w", ingest.ErrNotAnObject)
	records := []ingest.Record{
		crateRecord("runs.jsonl", 1, "Success"),
		{File: "runs.jsonl", Index: 2, Err: decodeErr},
		crateRecord("runs.jsonl", 3, "RunFail"),
	}

	svc := newTestService(WithFlags(flags.New(map[string]bool{flags.FlagJSONSchemaCrossCheck: true})))
	result, err := svc.ValidateBatch(context.Background(), "crates-io-validation", records)
	require.NoError(t, err)
	require.Len(t, result.Results, 3)

	require.True(t, result.Results[0].OK())
	require.True(t, result.Results[2].OK())

	bad := result.Results[1]
	require.False(t, bad.OK())
	require.Nil(t, bad.Failure)
	require.Nil(t, bad.Validated)
	require.ErrorIs(t, bad.Err(), ingest.ErrNotAnObject)

	require.Equal(t, 1, result.Run.Failed())
	require.Equal(t, 2, result.Run.Passed())
	require.Contains(t, buf.String(), "Record could not be decoded")
	require.NotContains(t, buf.String(), "JSON Schema disagrees")
}

func TestRegistryService_ValidateBatch_Errors(t *testing.T) {
	svc := newTestService()

	_, err := svc.ValidateBatch(context.Background(), "nope::v1", []ingest.Record{crateRecord("a", 1, "Success")})
	require.ErrorIs(t, err, registry.ErrUnknownVersion)

	_, err = svc.ValidateBatch(context.Background(), "crates-io-validation", nil)
	require.ErrorIs(t, err, ErrNoRecords)
}

func TestRegistryService_ValidateBatch_Cancelled(t *testing.T) {
	svc := newTestService()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.ValidateBatch(ctx, "crates-io-validation", []ingest.Record{crateRecord("a", 1, "Success")})
	require.ErrorIs(t, err, context.Canceled)
}

func TestRegistryService_ValidateBatch_WarnUndeclaredFields(t *testing.T) {
	buf := captureLogs(t)

	rec := crateRecord("a.json", 1, "Success")
	rec.Raw["runtime_ms"] = json.Number("12")

	svc := newTestService(WithFlags(flags.New(map[string]bool{flags.FlagWarnUndeclaredFields: true})))
	result, err := svc.ValidateBatch(context.Background(), "crates-io-validation", []ingest.Record{rec})
	require.NoError(t, err)
	require.Equal(t, []string{"runtime_ms"}, result.Results[0].Validated.Dropped())
	require.Contains(t, buf.String(), "Dropped undeclared fields")
	require.Contains(t, buf.String(), "runtime_ms")
}

func TestRegistryService_ValidateBatch_UndeclaredFieldsSilentByDefault(t *testing.T) {
	buf := captureLogs(t)

	rec := crateRecord("a.json", 1, "Success")
	rec.Raw["runtime_ms"] = json.Number("12")

	_, err := newTestService().ValidateBatch(context.Background(), "crates-io-validation", []ingest.Record{rec})
	require.NoError(t, err)
	require.NotContains(t, buf.String(), "Dropped undeclared fields")
}

func TestRegistryService_ValidateBatch_CrossCheckAgrees(t *testing.T) {
	buf := captureLogs(t)

	svc := newTestService(
		WithFlags(flags.New(map[string]bool{flags.FlagJSONSchemaCrossCheck: true})),
		WithExporter(schemaexport.NewExporter(0)),
	)

	records := []ingest.Record{
		crateRecord("a.json", 1, "Success"),
		crateRecord("a.json", 2, "Pending"),
		{File: "a.json", Index: 3, Raw: registry.RawRecord{"name": "x"}},
	}
	_, err := svc.ValidateBatch(context.Background(), "crates-io-validation", records)
	require.NoError(t, err)
	require.NotContains(t, buf.String(), "JSON Schema disagrees")
}

func TestRegistryService_ValidateBatch_History(t *testing.T) {
	db, err := sqlite.NewDB(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	exporter := tracetest.NewInMemoryExporter()
	provider := tracing.NewProviderWithExporter(exporter)
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	svc := newTestService(WithHistory(db.Runs()), WithTracer(provider.Tracer()))

	first, err := svc.ValidateBatch(context.Background(), "crates-io-validation", []ingest.Record{
		crateRecord("a.json", 1, "Success"),
	})
	require.NoError(t, err)
	second, err := svc.ValidateBatch(context.Background(), "crates-io-validation", []ingest.Record{
		crateRecord("b.json", 1, "Pending"),
	})
	require.NoError(t, err)

	runs, err := svc.RecentRuns(0)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	require.Equal(t, second.Run.ID(), runs[0].ID(), "newest first")
	require.Equal(t, first.Run.ID(), runs[1].ID())
	require.Equal(t, 1, runs[0].Failed())

	stored, err := db.Runs().FindByID(first.Run.ID())
	require.NoError(t, err)
	require.Equal(t, []string{"a.json"}, stored.Files())

	var names []string
	for _, s := range exporter.GetSpans() {
		names = append(names, s.Name)
	}
	require.Contains(t, names, tracing.SpanHistorySave)
}

func TestRegistryService_RecentRuns_NoHistory(t *testing.T) {
	runs, err := newTestService().RecentRuns(10)
	require.NoError(t, err)
	require.Nil(t, runs)
}

func TestRegistryService_Diff(t *testing.T) {
	svc := newTestService()

	diff, err := svc.Diff("applications-benchmarks::main", "applications-benchmarks::release-1.0")
	require.NoError(t, err)
	require.Empty(t, diff.Changes, "main and release-1.0 share a shape")
	require.NotSame(t, diff.From, diff.To)

	diff, err = svc.Diff("applications-benchmarks::release-0.21", "applications-benchmarks::release-1.0")
	require.NoError(t, err)
	require.NotEmpty(t, diff.Changes)

	kinds := make(map[string]registry.ChangeKind)
	for _, c := range diff.Changes {
		kinds[c.Field] = c.Kind
	}
	require.Equal(t, registry.ChangeAdded, kinds["name"])
	require.Equal(t, registry.ChangeRemoved, kinds["job_name"])
	_, changed := kinds["total_duration"]
	require.False(t, changed, "total_duration is declared the same in both")

	_, err = svc.Diff("applications-benchmarks::main", "nope::v1")
	require.ErrorIs(t, err, registry.ErrUnknownVersion)
}

func TestRegistryService_JSONSchema(t *testing.T) {
	svc := newTestService(WithExporter(schemaexport.NewExporter(10 * time.Minute)))

	data, err := svc.JSONSchema(context.Background(), "crates-io-validation")
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	require.Equal(t, "object", doc["type"])
	require.Equal(t, schemaexport.SchemaID(mustLookup(t, svc, "crates-io-validation")), doc["$id"])
	require.ElementsMatch(t, []any{"name", "version", "status", "custom_profile"}, doc["required"])

	_, err = svc.JSONSchema(context.Background(), "datasheet::v2")
	require.ErrorIs(t, err, registry.ErrUnknownVersion)
}

func mustLookup(t *testing.T, svc *RegistryService, ident string) *registry.RecordSpec {
	t.Helper()
	spec, err := svc.Lookup(ident)
	require.NoError(t, err)
	return spec
}
