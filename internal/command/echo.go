package command

import (
	"github.com/okrski/minikv/internal/params"
	"github.com/okrski/minikv/internal/protocol"
	"github.com/okrski/minikv/internal/store"
)

// Echo returns its message unmodified as a binary-safe string.
type Echo struct {
	Message []byte
}

func parseEcho(args []protocol.Value) (Command, error) {
	if len(args) != 2 {
		return nil, ErrInvalidCommand
	}
	if args[1].Type != protocol.TypeBulkString {
		return nil, ErrInvalidCommand
	}
	return Echo{Message: args[1].Bulk}, nil
}

func (Echo) Name() string { return "ECHO" }

func (c Echo) Execute(*store.Store, *params.Map) protocol.Value {
	return protocol.BulkString(c.Message)
}
