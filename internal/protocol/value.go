// Package protocol implements the RESP wire format: decoding a byte
// buffer into a typed protocol element and serializing elements back
// to their canonical byte encoding.
//
// The codec knows nothing about commands; it only understands the
// element grammar. Decoding consumes exactly one element prefix and
// reports how many bytes it used so the caller can keep feeding it
// the remainder of a pipelined buffer.
package protocol

// Type identifies a RESP element variant by its wire sigil.
type Type byte

const (
	TypeSimpleString Type = '+'
	TypeSimpleError  Type = '-'
	TypeInteger      Type = ':'
	TypeBulkString   Type = '$'
	TypeArray        Type = '*'
	TypeBoolean      Type = '#'
	TypeNull         Type = '_' // RESP3 unified null

	// The legacy null markers share sigils with bulk strings and
	// arrays, so they get synthetic type tags.
	TypeNullBulk  Type = 'b'
	TypeNullArray Type = 'a'
)

// Value is a single RESP protocol element. Exactly one payload field
// is meaningful for a given Type.
type Value struct {
	Type  Type
	Str   string  // SimpleString, SimpleError
	Int   int64   // Integer
	Bulk  []byte  // BulkString (may be empty, never nil for a real bulk)
	Array []Value // Array
	Bool  bool    // Boolean
}

// SimpleString returns a "+..." status element. The text must not
// contain CR or LF.
func SimpleString(s string) Value {
	return Value{Type: TypeSimpleString, Str: s}
}

// SimpleError returns a "-..." error element.
func SimpleError(s string) Value {
	return Value{Type: TypeSimpleError, Str: s}
}

// Integer returns a ":..." element.
func Integer(n int64) Value {
	return Value{Type: TypeInteger, Int: n}
}

// BulkString returns a length-prefixed binary-safe string element.
func BulkString(b []byte) Value {
	if b == nil {
		b = []byte{}
	}
	return Value{Type: TypeBulkString, Bulk: b}
}

// BulkStringFrom returns a bulk string element built from a Go string.
func BulkStringFrom(s string) Value {
	return Value{Type: TypeBulkString, Bulk: []byte(s)}
}

// Array returns an array element over the given children.
func Array(elems ...Value) Value {
	if elems == nil {
		elems = []Value{}
	}
	return Value{Type: TypeArray, Array: elems}
}

// Boolean returns a "#t"/"#f" element.
func Boolean(b bool) Value {
	return Value{Type: TypeBoolean, Bool: b}
}

// NullBulk returns the legacy "$-1" not-found marker.
func NullBulk() Value {
	return Value{Type: TypeNullBulk}
}

// NullArray returns the legacy "*-1" not-found marker.
func NullArray() Value {
	return Value{Type: TypeNullArray}
}

// Null returns the RESP3 "_" null element.
func Null() Value {
	return Value{Type: TypeNull}
}

// IsNull reports whether v is any of the three null forms.
func (v Value) IsNull() bool {
	switch v.Type {
	case TypeNull, TypeNullBulk, TypeNullArray:
		return true
	}
	return false
}
