package command

import (
	"github.com/okrski/minikv/internal/params"
	"github.com/okrski/minikv/internal/protocol"
	"github.com/okrski/minikv/internal/store"
)

// GetConfig reads parameters from the startup configuration lookup.
// Unrecognized names are silently omitted; the result is always an
// array of interleaved name/value pairs, never an error.
type GetConfig struct {
	Names []string
}

func parseConfig(args []protocol.Value) (Command, error) {
	if len(args) < 2 {
		return nil, ErrSyntax
	}
	if args[1].Type != protocol.TypeBulkString {
		return nil, ErrSyntax
	}

	switch string(args[1].Bulk) {
	case "GET":
		names := make([]string, 0, len(args)-2)
		for _, arg := range args[2:] {
			if arg.Type != protocol.TypeBulkString {
				return nil, ErrSyntax
			}
			names = append(names, string(arg.Bulk))
		}
		return GetConfig{Names: names}, nil
	}
	return nil, ErrUnknownCommand
}

func (GetConfig) Name() string { return "CONFIG" }

func (c GetConfig) Execute(_ *store.Store, opts *params.Map) protocol.Value {
	elems := make([]protocol.Value, 0, 2*len(c.Names))
	for _, name := range c.Names {
		v, ok := opts.Get(name)
		if !ok {
			continue
		}
		elems = append(elems, protocol.BulkStringFrom(name), paramValue(v))
	}
	return protocol.Array(elems...)
}

func paramValue(v params.Value) protocol.Value {
	switch v.Kind {
	case params.KindUint:
		return protocol.Integer(int64(v.Uint))
	default: // KindString, KindPath
		return protocol.BulkStringFrom(v.Str)
	}
}
