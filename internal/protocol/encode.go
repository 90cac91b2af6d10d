package protocol

import (
	"fmt"
	"strconv"
	"strings"
)

// Append serializes v in its canonical encoding and appends it to
// dst. Encoding is total over the closed element set and
// deterministic: every value has exactly one byte encoding.
func Append(dst []byte, v Value) []byte {
	switch v.Type {
	case TypeSimpleString:
		dst = append(dst, '+')
		dst = append(dst, v.Str...)
		return append(dst, '\r', '\n')

	case TypeSimpleError:
		dst = append(dst, '-')
		dst = append(dst, v.Str...)
		return append(dst, '\r', '\n')

	case TypeInteger:
		dst = append(dst, ':')
		dst = strconv.AppendInt(dst, v.Int, 10)
		return append(dst, '\r', '\n')

	case TypeBulkString:
		// Length is the raw byte length, keeping the payload
		// binary-safe.
		dst = append(dst, '$')
		dst = strconv.AppendInt(dst, int64(len(v.Bulk)), 10)
		dst = append(dst, '\r', '\n')
		dst = append(dst, v.Bulk...)
		return append(dst, '\r', '\n')

	case TypeArray:
		dst = append(dst, '*')
		dst = strconv.AppendInt(dst, int64(len(v.Array)), 10)
		dst = append(dst, '\r', '\n')
		for _, elem := range v.Array {
			dst = Append(dst, elem)
		}
		return dst

	case TypeBoolean:
		if v.Bool {
			return append(dst, '#', 't', '\r', '\n')
		}
		return append(dst, '#', 'f', '\r', '\n')

	case TypeNullBulk:
		return append(dst, '$', '-', '1', '\r', '\n')

	case TypeNullArray:
		return append(dst, '*', '-', '1', '\r', '\n')

	case TypeNull:
		return append(dst, '_', '\r', '\n')
	}

	// Unreachable for values built through this package.
	return dst
}

// Encode serializes v into a fresh byte slice.
func Encode(v Value) []byte {
	return Append(nil, v)
}

// String renders v in a human-readable form for logs and CLI output.
// It is not the wire encoding.
func (v Value) String() string {
	switch v.Type {
	case TypeSimpleString:
		return v.Str
	case TypeSimpleError:
		return "(error) " + v.Str
	case TypeInteger:
		return "(integer) " + strconv.FormatInt(v.Int, 10)
	case TypeBulkString:
		return strconv.Quote(string(v.Bulk))
	case TypeArray:
		if len(v.Array) == 0 {
			return "(empty array)"
		}
		var b strings.Builder
		for i, elem := range v.Array {
			if i > 0 {
				b.WriteByte('\n')
			}
			fmt.Fprintf(&b, "%d) %s", i+1, elem.String())
		}
		return b.String()
	case TypeBoolean:
		if v.Bool {
			return "(true)"
		}
		return "(false)"
	case TypeNull, TypeNullBulk, TypeNullArray:
		return "(nil)"
	}
	return "(unknown)"
}
