// Package command converts decoded protocol elements into a closed
// set of typed commands and executes them against the store.
//
// Parsing and execution are independent contracts: Parse never
// touches the store, and Execute never sees wire bytes, so the
// grammar is testable without a socket or a store behind it.
package command

import (
	"errors"
	"strconv"

	"github.com/okrski/minikv/internal/params"
	"github.com/okrski/minikv/internal/protocol"
	"github.com/okrski/minikv/internal/store"
)

// Command-layer error taxonomy. All four are reported to the client
// as a generic protocol error; none are fatal to the connection.
var (
	// ErrMissingCommand reports an empty command array.
	ErrMissingCommand = errors.New("missing command")

	// ErrInvalidCommand reports a wrong arity or argument type for a
	// known command.
	ErrInvalidCommand = errors.New("invalid command")

	// ErrUnknownCommand reports an unrecognized verb or a malformed
	// top-level shape.
	ErrUnknownCommand = errors.New("unknown command")

	// ErrSyntax reports a malformed option grammar: duplicate or
	// conflicting options, or a missing/non-integer option argument.
	ErrSyntax = errors.New("syntax error")
)

// Command is a parsed, validated operation. A command is immutable
// once constructed and is consumed exactly once by Execute.
type Command interface {
	// Name returns the command verb for logs and metrics.
	Name() string

	// Execute runs the command against the shared store and the
	// read-only configuration lookup and returns the response
	// element.
	Execute(st *store.Store, opts *params.Map) protocol.Value
}

// Parse maps a decoded protocol element (expected to be an array of
// bulk strings) to a typed command.
//
// The verb itself is matched case-sensitively; only SET's option
// keywords fold case (see parseSet).
func Parse(v protocol.Value) (Command, error) {
	if v.Type != protocol.TypeArray {
		return nil, ErrUnknownCommand
	}
	if len(v.Array) == 0 {
		return nil, ErrMissingCommand
	}

	verb := v.Array[0]
	if verb.Type != protocol.TypeBulkString {
		return nil, ErrUnknownCommand
	}

	switch string(verb.Bulk) {
	case "PING":
		return parsePing(v.Array)
	case "ECHO":
		return parseEcho(v.Array)
	case "GET":
		return parseGet(v.Array)
	case "SET":
		return parseSet(v.Array)
	case "CONFIG":
		return parseConfig(v.Array)
	}
	return nil, ErrUnknownCommand
}

// optionInt extracts the integer argument of an expiry option. Both a
// native integer element and a bulk string holding decimal digits are
// accepted; the value must be non-negative.
func optionInt(v protocol.Value) (int64, error) {
	switch v.Type {
	case protocol.TypeInteger:
		if v.Int < 0 {
			return 0, ErrSyntax
		}
		return v.Int, nil
	case protocol.TypeBulkString:
		n, err := strconv.ParseInt(string(v.Bulk), 10, 64)
		if err != nil || n < 0 {
			return 0, ErrSyntax
		}
		return n, nil
	}
	return 0, ErrSyntax
}
