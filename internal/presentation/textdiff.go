package presentation

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/zjrosen/benchschema/internal/domain/registry"
)

// RenderSpec renders one line per field, "name: type", in declaration order.
func RenderSpec(spec *registry.RecordSpec) string {
	var b strings.Builder
	for _, f := range spec.Fields() {
		b.WriteString(f.Name())
		b.WriteString(": ")
		b.WriteString(f.TypeName())
		b.WriteByte('\n')
	}
	return b.String()
}

// LineDiff returns a line-level diff of oldText and newText. Unchanged lines
// are prefixed with two spaces, removed lines with "- " and added lines with "+ ".
func LineDiff(oldText, newText string) string {
	dmp := diffmatchpatch.New()

	// Diff whole lines by mapping each distinct line to a single rune
	oldChars, newChars, lines := dmp.DiffLinesToChars(oldText, newText)
	diffs := dmp.DiffMain(oldChars, newChars, false)
	diffs = dmp.DiffCharsToLines(diffs, lines)

	var b strings.Builder
	for _, d := range diffs {
		prefix := "  "
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			prefix = "- "
		case diffmatchpatch.DiffInsert:
			prefix = "+ "
		}

		text := strings.TrimSuffix(d.Text, "\n")
		if text == "" && d.Text == "" {
			continue
		}
		for _, line := range strings.Split(text, "\n") {
			b.WriteString(prefix)
			b.WriteString(line)
			b.WriteByte('\n')
		}
	}
	return b.String()
}
