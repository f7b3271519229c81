package types

// Origin is the provenance tag of a tracked component.
type Origin string

// Component origins. Origin is immutable once a component exists in the
// index, except that an authored add may update an existing authored record.
const (
	// Authored components were created locally by an add operation.
	Authored Origin = "authored"
	// Imported components were materialized from a remote component source.
	Imported Origin = "imported"
	// Nested components were pulled in transitively as another component's
	// dependency and are never a direct add target.
	Nested Origin = "nested"
)

// Valid reports whether o is one of the known origins.
func (o Origin) Valid() bool {
	switch o {
	case Authored, Imported, Nested:
		return true
	}
	return false
}

func (o Origin) String() string {
	return string(o)
}
