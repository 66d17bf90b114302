// Package schemaexport renders record specs as JSON Schema (draft 2020-12)
// documents and compiles them for consumers that validate reports outside Go.
package schemaexport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/zjrosen/benchschema/internal/cachemanager"
	"github.com/zjrosen/benchschema/internal/domain/registry"
	"github.com/zjrosen/benchschema/internal/log"
)

// DraftURL is the meta-schema every exported document declares.
const DraftURL = "https://json-schema.org/draft/2020-12/schema"

// baseURL prefixes the $id of exported documents.
const baseURL = "https://benchschema.local/schemas/"

// Schema is an exported JSON Schema document for one record spec.
type Schema struct {
	Schema               string              `json:"$schema"`
	ID                   string              `json:"$id"`
	Title                string              `json:"title"`
	Description          string              `json:"description,omitempty"`
	Type                 string              `json:"type"`
	Properties           map[string]Property `json:"properties"`
	Required             []string            `json:"required"`
	AdditionalProperties bool                `json:"additionalProperties"`
}

// Property describes one field. Type is a string, or a list when the field
// is optional and also accepts null.
type Property struct {
	Type        any    `json:"type"`
	Enum        []any  `json:"enum,omitempty"`
	Description string `json:"description,omitempty"`
}

// SchemaID returns the $id of the document exported for spec.
func SchemaID(spec *registry.RecordSpec) string {
	return baseURL + spec.Registry() + "/" + spec.Version() + ".json"
}

// Document renders spec as a JSON Schema. Undeclared properties are allowed,
// mirroring the validator, which ignores undeclared fields.
func Document(spec *registry.RecordSpec) *Schema {
	doc := &Schema{
		Schema:               DraftURL,
		ID:                   SchemaID(spec),
		Title:                spec.Identifier(),
		Description:          spec.Description(),
		Type:                 "object",
		Properties:           make(map[string]Property, spec.Len()),
		Required:             spec.Required(),
		AdditionalProperties: true,
	}
	if doc.Required == nil {
		doc.Required = []string{}
	}

	for _, f := range spec.Fields() {
		doc.Properties[f.Name()] = property(f)
	}
	return doc
}

func property(f registry.FieldSpec) Property {
	base := "string"
	if f.Kind() == registry.KindNumber {
		base = "number"
	}

	p := Property{Type: base, Description: f.Description()}
	if f.IsOptional() {
		p.Type = []string{base, "null"}
	}
	if f.Kind() == registry.KindEnum {
		for _, v := range f.Allowed() {
			p.Enum = append(p.Enum, v)
		}
		if f.IsOptional() {
			p.Enum = append(p.Enum, nil)
		}
	}
	return p
}

// Render returns the document for spec as indented JSON.
func Render(spec *registry.RecordSpec) ([]byte, error) {
	data, err := json.MarshalIndent(Document(spec), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal schema %s: %w", spec.Identifier(), err)
	}
	return data, nil
}

// Compile renders spec and compiles the document, proving it is a
// well-formed draft 2020-12 schema.
func Compile(spec *registry.RecordSpec) (*jsonschema.Schema, error) {
	data, err := Render(spec)
	if err != nil {
		return nil, err
	}

	id := SchemaID(spec)
	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft2020
	if err := c.AddResource(id, bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("load schema %s: %w", spec.Identifier(), err)
	}
	schema, err := c.Compile(id)
	if err != nil {
		return nil, fmt.Errorf("compile schema %s: %w", spec.Identifier(), err)
	}
	return schema, nil
}

// Exporter compiles schemas on demand and caches them per identifier.
type Exporter struct {
	compiled *cachemanager.ReadThroughCache[string, *jsonschema.Schema, *registry.RecordSpec]
	ttl      time.Duration
}

// NewExporter creates an exporter whose compiled schemas live for ttl.
// A ttl of zero or less disables caching.
func NewExporter(ttl time.Duration) *Exporter {
	cache := cachemanager.NewInMemoryCacheManager[string, *jsonschema.Schema](
		"jsonschema", ttl, cachemanager.DefaultCleanupInterval)

	return &Exporter{
		compiled: cachemanager.NewReadThroughCache[string, *jsonschema.Schema, *registry.RecordSpec](
			cache, compile, ttl <= 0),
		ttl: ttl,
	}
}

func compile(_ context.Context, spec *registry.RecordSpec) (*jsonschema.Schema, error) {
	log.Debug(log.CatExport, "Compiling JSON Schema", "spec", spec.Identifier())
	return Compile(spec)
}

// Schema returns the compiled schema for spec.
func (e *Exporter) Schema(ctx context.Context, spec *registry.RecordSpec) (*jsonschema.Schema, error) {
	return e.compiled.GetWithRefresh(ctx, spec.Identifier(), spec, e.ttl)
}

// Check validates a decoded record against the compiled JSON Schema of spec.
// Numbers are first held to registry.Validate's rules: a malformed or
// non-finite number fails a declared field and is ignored elsewhere, since
// JSON Schema has no notion of either.
func (e *Exporter) Check(ctx context.Context, spec *registry.RecordSpec, raw registry.RawRecord) error {
	schema, err := e.Schema(ctx, spec)
	if err != nil {
		return err
	}
	doc, err := normalizeNumbers(spec, raw)
	if err != nil {
		return fmt.Errorf("json schema %s: %w", spec.Identifier(), err)
	}
	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("json schema %s: %w", spec.Identifier(), err)
	}
	return nil
}

// normalizeNumbers copies raw with every number as float64, the one numeric
// type the JSON Schema validator accepts regardless of Go kind.
func normalizeNumbers(spec *registry.RecordSpec, raw registry.RawRecord) (map[string]any, error) {
	doc := make(map[string]any, len(raw))
	for name, v := range raw {
		if !isNumeric(v) {
			doc[name] = v
			continue
		}
		if n, ok := registry.NumberValue(v); ok {
			doc[name] = n
			continue
		}
		if _, declared := spec.Field(name); declared {
			return nil, fmt.Errorf("field %q: %v is not a finite number", name, v)
		}
	}
	return doc, nil
}

func isNumeric(v any) bool {
	switch v.(type) {
	case json.Number, float32, float64,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64:
		return true
	default:
		return false
	}
}
