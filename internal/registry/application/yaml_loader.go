package registry

import (
	"errors"
	"fmt"
	"io/fs"

	"gopkg.in/yaml.v3"

	"github.com/zjrosen/benchschema/internal/domain/registry"
)

// Loader errors
var (
	ErrNoDeclarations   = errors.New("no schema declarations found")
	ErrAllowedOnNonEnum = errors.New("allowed values are only valid on enum fields")
)

// DeclarationFile is the root structure of a schema declaration file.
type DeclarationFile struct {
	Schemas []SchemaDef `yaml:"schemas"`
}

// SchemaDef declares one record spec in YAML.
type SchemaDef struct {
	Registry    string     `yaml:"registry"`    // e.g., "applications-benchmarks"
	Version     string     `yaml:"version"`     // e.g., "release-1.1"
	Description string     `yaml:"description"` // Optional
	Fields      []FieldDef `yaml:"fields"`
}

// FieldDef declares one field of a record spec.
type FieldDef struct {
	Name        string   `yaml:"name"`
	Type        string   `yaml:"type"` // string, number or enum
	Optional    bool     `yaml:"optional"`
	Allowed     []string `yaml:"allowed"` // enum members, required for type enum
	Description string   `yaml:"description"`
}

// LoadSpecsFromYAML parses the declaration file at path within fsys and
// builds one spec per entry, tagged with source.
func LoadSpecsFromYAML(fsys fs.FS, path string, source registry.Source) ([]*registry.RecordSpec, error) {
	content, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	specs, err := ParseSpecs(content, source)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return specs, nil
}

// ParseSpecs builds specs from declaration YAML.
func ParseSpecs(content []byte, source registry.Source) ([]*registry.RecordSpec, error) {
	var file DeclarationFile
	if err := yaml.Unmarshal(content, &file); err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}

	if len(file.Schemas) == 0 {
		return nil, ErrNoDeclarations
	}

	specs := make([]*registry.RecordSpec, 0, len(file.Schemas))
	for i, def := range file.Schemas {
		spec, err := buildSpecFromDef(def, source)
		if err != nil {
			return nil, fmt.Errorf("schema %d (%s): %w", i+1, registry.BuildIdentifier(def.Registry, def.Version), err)
		}
		specs = append(specs, spec)
	}
	return specs, nil
}

// buildSpecFromDef converts a SchemaDef into a registry.RecordSpec.
func buildSpecFromDef(def SchemaDef, source registry.Source) (*registry.RecordSpec, error) {
	builder := registry.NewBuilder(def.Registry).
		Version(def.Version).
		Description(def.Description).
		Source(source)

	for _, fd := range def.Fields {
		field, err := buildField(fd)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", fd.Name, err)
		}
		builder = builder.Field(field)
	}

	return builder.Build()
}

func buildField(fd FieldDef) (registry.FieldSpec, error) {
	kind, err := registry.ParseKind(fd.Type)
	if err != nil {
		return registry.FieldSpec{}, err
	}

	var field registry.FieldSpec
	switch kind {
	case registry.KindString:
		field = registry.String(fd.Name)
	case registry.KindNumber:
		field = registry.Number(fd.Name)
	case registry.KindEnum:
		field = registry.Enum(fd.Name, fd.Allowed...)
	}
	if len(fd.Allowed) > 0 && kind != registry.KindEnum {
		return registry.FieldSpec{}, fmt.Errorf("%w: type is %s", ErrAllowedOnNonEnum, kind)
	}

	if fd.Optional {
		field = registry.Optional(field)
	}
	if fd.Description != "" {
		field = field.Describe(fd.Description)
	}
	return field, nil
}
