// Package ingest decodes benchmark report files into raw records.
//
// The format is chosen by file extension:
//   - .json: an array of objects or a single object; numbers stay json.Number
//   - .jsonl, .ndjson: one object per line, blank lines skipped
//   - .csv: a header row followed by rows; every cell is a string kept as written
//   - .yaml, .yml: a sequence of mappings or a single mapping
//
// Decoding never interprets values against a schema. That is the validator's job.
// A record that cannot be decoded is kept as a Record with Err set so the
// remaining records of the file still come through. Only an unreadable file or
// a broken top-level container fails the whole file.
package ingest

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/zjrosen/benchschema/internal/domain/registry"
	"github.com/zjrosen/benchschema/internal/log"
)

// Format is a report file encoding.
type Format string

const (
	FormatJSON  Format = "json"
	FormatJSONL Format = "jsonl"
	FormatCSV   Format = "csv"
	FormatYAML  Format = "yaml"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported report format")
	ErrNotAnObject       = errors.New("record is not an object")
)

// maxLineSize bounds a single JSONL record.
const maxLineSize = 16 * 1024 * 1024

// Record is one decoded record and where it came from.
type Record struct {
	File  string
	Index int // 1-based position of the record within File
	Raw   registry.RawRecord
	Err   error // decode error; Raw is nil when set
}

// decoded is one entry of a file before it is numbered.
type decoded struct {
	raw registry.RawRecord
	err error
}

// Location returns "file:index".
func (r Record) Location() string {
	return fmt.Sprintf("%s:%d", r.File, r.Index)
}

// FormatFor picks the format from the extension of path.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".jsonl", ".ndjson":
		return FormatJSONL, nil
	case ".csv":
		return FormatCSV, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// ReadFile decodes every record in the file at path.
func ReadFile(path string) ([]Record, error) {
	format, err := FormatFor(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path) //nolint:gosec // G304: report paths come from the command line
	if err != nil {
		return nil, fmt.Errorf("open report: %w", err)
	}
	defer func() { _ = f.Close() }()

	records, err := Decode(f, format, path)
	if err != nil {
		return nil, err
	}
	log.Debug(log.CatIngest, "Decoded report", "file", path, "format", format, "records", len(records))
	return records, nil
}

// ReadFiles decodes each file in order and concatenates the records.
func ReadFiles(paths []string) ([]Record, error) {
	var all []Record
	for _, p := range paths {
		records, err := ReadFile(p)
		if err != nil {
			return nil, err
		}
		all = append(all, records...)
	}
	return all, nil
}

// Decode reads records of the given format from r. name is recorded as the
// File of each record.
func Decode(r io.Reader, format Format, name string) ([]Record, error) {
	var (
		entries []decoded
		err     error
	)
	switch format {
	case FormatJSON:
		entries, err = decodeJSON(r)
	case FormatJSONL:
		entries, err = decodeJSONL(r)
	case FormatCSV:
		entries, err = decodeCSV(r)
	case FormatYAML:
		entries, err = decodeYAML(r)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", name, err)
	}

	records := make([]Record, len(entries))
	for i, e := range entries {
		records[i] = Record{File: name, Index: i + 1, Raw: e.raw, Err: e.err}
		if e.err != nil {
			log.Warn(log.CatIngest, "Record could not be decoded", "record", records[i].Location(), "error", e.err.Error())
		}
	}
	return records, nil
}

func decodeJSON(r io.Reader) ([]decoded, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, nil
	}

	if data[0] != '[' {
		raw, err := decodeObject(data)
		if err != nil {
			return nil, fmt.Errorf("record 1: %w", err)
		}
		return []decoded{{raw: raw}}, nil
	}

	var elems []json.RawMessage
	if err := json.Unmarshal(data, &elems); err != nil {
		return nil, err
	}
	entries := make([]decoded, len(elems))
	for i, elem := range elems {
		raw, err := decodeObject(elem)
		entries[i] = decoded{raw: raw, err: err}
	}
	return entries, nil
}

// decodeObject decodes one JSON object, keeping numbers as json.Number.
func decodeObject(data []byte) (registry.RawRecord, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '{' {
		return nil, ErrNotAnObject
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, errors.New("trailing data after object")
	}
	return registry.RawRecord(raw), nil
}

func decodeJSONL(r io.Reader) ([]decoded, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var entries []decoded
	line := 0
	for scanner.Scan() {
		line++
		text := bytes.TrimSpace(scanner.Bytes())
		if len(text) == 0 {
			continue
		}
		raw, err := decodeObject(text)
		if err != nil {
			err = fmt.Errorf("line %d: %w", line, err)
		}
		entries = append(entries, decoded{raw: raw, err: err})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("line %d: %w", line+1, err)
	}
	return entries, nil
}

func decodeCSV(r io.Reader) ([]decoded, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	var entries []decoded
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(row) != len(header) {
			line, _ := reader.FieldPos(0)
			entries = append(entries, decoded{
				err: fmt.Errorf("line %d: %w: row has %d cells, header has %d", line, csv.ErrFieldCount, len(row), len(header)),
			})
			continue
		}
		raw := make(registry.RawRecord, len(header))
		for i, column := range header {
			raw[column] = row[i]
		}
		entries = append(entries, decoded{raw: raw})
	}
	return entries, nil
}

func decodeYAML(r io.Reader) ([]decoded, error) {
	var doc yaml.Node
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, err
	}
	if len(doc.Content) == 0 {
		return nil, nil
	}

	root := doc.Content[0]
	switch root.Kind {
	case yaml.MappingNode:
		raw, err := decodeMapping(root)
		if err != nil {
			return nil, fmt.Errorf("record 1: %w", err)
		}
		return []decoded{{raw: raw}}, nil
	case yaml.SequenceNode:
		entries := make([]decoded, len(root.Content))
		for i, item := range root.Content {
			raw, err := decodeMapping(item)
			entries[i] = decoded{raw: raw, err: err}
		}
		return entries, nil
	default:
		return nil, fmt.Errorf("line %d: expected a mapping or a sequence of mappings", root.Line)
	}
}

func decodeMapping(node *yaml.Node) (registry.RawRecord, error) {
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: %w", node.Line, ErrNotAnObject)
	}
	var raw map[string]any
	if err := node.Decode(&raw); err != nil {
		return nil, err
	}
	if raw == nil {
		raw = map[string]any{}
	}
	return registry.RawRecord(raw), nil
}
