package protocol

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
)

// Protocol limits to prevent hostile input from pinning memory.
const (
	// MaxArrayLen limits the number of elements in a RESP array.
	MaxArrayLen = 1024

	// MaxBulkLen limits the size of a single bulk string (512KB).
	MaxBulkLen = 512 * 1024
)

var (
	// ErrProtocol reports malformed byte framing.
	ErrProtocol = errors.New("resp: protocol error")

	// ErrIncomplete reports that the buffer ends before a full frame.
	// The caller may read more bytes and retry; no input was consumed.
	ErrIncomplete = errors.New("resp: incomplete frame")

	// ErrLimitExceeded reports input beyond the protocol limits.
	ErrLimitExceeded = errors.New("resp: limit exceeded")
)

// Decode consumes exactly one element from the front of buf and
// returns it together with the number of bytes consumed. On error no
// bytes are considered consumed. The legacy null markers ("$-1",
// "*-1") are matched before the generic bulk-string and array
// grammars they share a sigil with.
func Decode(buf []byte) (Value, int, error) {
	if len(buf) == 0 {
		return Value{}, 0, ErrIncomplete
	}

	switch buf[0] {
	case '+':
		line, n, err := readLine(buf[1:])
		if err != nil {
			return Value{}, 0, err
		}
		if bytes.IndexByte(line, '\r') >= 0 {
			return Value{}, 0, fmt.Errorf("%w: CR in simple string", ErrProtocol)
		}
		return SimpleString(string(line)), 1 + n, nil

	case '-':
		line, n, err := readLine(buf[1:])
		if err != nil {
			return Value{}, 0, err
		}
		if bytes.IndexByte(line, '\r') >= 0 {
			return Value{}, 0, fmt.Errorf("%w: CR in simple error", ErrProtocol)
		}
		return SimpleError(string(line)), 1 + n, nil

	case ':':
		line, n, err := readLine(buf[1:])
		if err != nil {
			return Value{}, 0, err
		}
		i, err := parseInt64(line)
		if err != nil {
			return Value{}, 0, fmt.Errorf("%w: invalid integer", ErrProtocol)
		}
		return Integer(i), 1 + n, nil

	case '$':
		return decodeBulk(buf)

	case '*':
		return decodeArray(buf)

	case '#':
		if len(buf) < 4 {
			return Value{}, 0, ErrIncomplete
		}
		switch {
		case bytes.HasPrefix(buf, []byte("#t\r\n")):
			return Boolean(true), 4, nil
		case bytes.HasPrefix(buf, []byte("#f\r\n")):
			return Boolean(false), 4, nil
		}
		return Value{}, 0, fmt.Errorf("%w: invalid boolean", ErrProtocol)

	case '_':
		if len(buf) < 3 {
			return Value{}, 0, ErrIncomplete
		}
		if !bytes.HasPrefix(buf, []byte("_\r\n")) {
			return Value{}, 0, fmt.Errorf("%w: invalid null", ErrProtocol)
		}
		return Null(), 3, nil
	}

	return Value{}, 0, fmt.Errorf("%w: unknown type sigil %q", ErrProtocol, buf[0])
}

func decodeBulk(buf []byte) (Value, int, error) {
	header, hn, err := readLine(buf[1:])
	if err != nil {
		return Value{}, 0, err
	}
	pos := 1 + hn

	// "$-1\r\n" is the null bulk string, matched before the generic
	// length-prefixed form.
	if string(header) == "-1" {
		return NullBulk(), pos, nil
	}

	length, err := strconv.Atoi(string(header))
	if err != nil || length < 0 {
		return Value{}, 0, fmt.Errorf("%w: invalid bulk length", ErrProtocol)
	}
	if length > MaxBulkLen {
		return Value{}, 0, fmt.Errorf("%w: bulk length %d exceeds limit %d", ErrLimitExceeded, length, MaxBulkLen)
	}

	// Payload counts raw bytes and may itself contain CRLF.
	if len(buf) < pos+length+2 {
		return Value{}, 0, ErrIncomplete
	}
	payload := buf[pos : pos+length]
	if buf[pos+length] != '\r' || buf[pos+length+1] != '\n' {
		return Value{}, 0, fmt.Errorf("%w: invalid bulk terminator", ErrProtocol)
	}

	out := make([]byte, length)
	copy(out, payload)
	return BulkString(out), pos + length + 2, nil
}

func decodeArray(buf []byte) (Value, int, error) {
	header, hn, err := readLine(buf[1:])
	if err != nil {
		return Value{}, 0, err
	}
	pos := 1 + hn

	// "*-1\r\n" is the null array.
	if string(header) == "-1" {
		return NullArray(), pos, nil
	}

	count, err := strconv.Atoi(string(header))
	if err != nil || count < 0 {
		return Value{}, 0, fmt.Errorf("%w: invalid array length", ErrProtocol)
	}
	if count > MaxArrayLen {
		return Value{}, 0, fmt.Errorf("%w: array length %d exceeds limit %d", ErrLimitExceeded, count, MaxArrayLen)
	}

	elems := make([]Value, 0, count)
	for i := 0; i < count; i++ {
		elem, n, err := Decode(buf[pos:])
		if err != nil {
			return Value{}, 0, err
		}
		elems = append(elems, elem)
		pos += n
	}
	return Array(elems...), pos, nil
}

// readLine returns the bytes up to the next CRLF and the number of
// bytes consumed including the terminator.
func readLine(buf []byte) ([]byte, int, error) {
	idx := bytes.Index(buf, []byte("\r\n"))
	if idx < 0 {
		return nil, 0, ErrIncomplete
	}
	return buf[:idx], idx + 2, nil
}

// parseInt64 parses a signed base-10 integer with an optional leading
// '+' or '-'.
func parseInt64(b []byte) (int64, error) {
	if len(b) == 0 {
		return 0, fmt.Errorf("empty integer")
	}
	return strconv.ParseInt(string(b), 10, 64)
}
