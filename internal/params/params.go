// Package params exposes startup-derived settings as a read-only
// lookup for the CONFIG GET command. The map is populated once before
// any connection is accepted and never mutated afterwards.
package params

// Kind discriminates the value forms a parameter can carry.
type Kind int

const (
	KindString Kind = iota
	KindUint
	KindPath
)

// Value is a single configuration parameter value.
type Value struct {
	Kind Kind
	Str  string // KindString, KindPath
	Uint uint64 // KindUint
}

// String returns a text-valued parameter.
func String(s string) Value {
	return Value{Kind: KindString, Str: s}
}

// Uint returns an unsigned-integer-valued parameter.
func Uint(u uint64) Value {
	return Value{Kind: KindUint, Uint: u}
}

// Path returns a filesystem-path-valued parameter.
func Path(p string) Value {
	return Value{Kind: KindPath, Str: p}
}

// Map is an immutable name -> Value lookup.
type Map struct {
	values map[string]Value
}

// New builds a Map from the given values. The input is copied, so the
// caller's map cannot alias the lookup after construction.
func New(values map[string]Value) *Map {
	copied := make(map[string]Value, len(values))
	for k, v := range values {
		copied[k] = v
	}
	return &Map{values: copied}
}

// Get looks up a parameter by name.
func (m *Map) Get(name string) (Value, bool) {
	v, ok := m.values[name]
	return v, ok
}

// Len returns the number of parameters.
func (m *Map) Len() int {
	return len(m.values)
}
