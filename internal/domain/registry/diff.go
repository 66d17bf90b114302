package registry

// ChangeKind classifies a field difference between two specs.
type ChangeKind string

const (
	ChangeAdded   ChangeKind = "added"
	ChangeRemoved ChangeKind = "removed"
	ChangeChanged ChangeKind = "changed" // type, enum members or optionality differ
)

// FieldChange describes one field that differs between two specs.
type FieldChange struct {
	Field string
	Kind  ChangeKind
	From  string // type name in the old spec, empty when added
	To    string // type name in the new spec, empty when removed
}

// Diff lists the field-level differences going from spec a to spec b.
// Added and changed fields come first in b's declaration order, followed by
// removed fields in a's declaration order. Pure field reordering is not a change.
func Diff(a, b *RecordSpec) []FieldChange {
	changes := make([]FieldChange, 0)

	for _, nf := range b.fields {
		of, ok := a.Field(nf.name)
		switch {
		case !ok:
			changes = append(changes, FieldChange{Field: nf.name, Kind: ChangeAdded, To: nf.TypeName()})
		case !of.Equal(nf):
			changes = append(changes, FieldChange{Field: nf.name, Kind: ChangeChanged, From: of.TypeName(), To: nf.TypeName()})
		}
	}

	for _, of := range a.fields {
		if _, ok := b.Field(of.name); !ok {
			changes = append(changes, FieldChange{Field: of.name, Kind: ChangeRemoved, From: of.TypeName()})
		}
	}

	return changes
}
