package command

import (
	"github.com/okrski/minikv/internal/params"
	"github.com/okrski/minikv/internal/protocol"
	"github.com/okrski/minikv/internal/store"
)

// Get looks up a key, evaluating its expiry lazily at read time.
type Get struct {
	Key string
}

func parseGet(args []protocol.Value) (Command, error) {
	if len(args) != 2 {
		return nil, ErrInvalidCommand
	}
	if args[1].Type != protocol.TypeBulkString {
		return nil, ErrInvalidCommand
	}
	return Get{Key: string(args[1].Bulk)}, nil
}

func (Get) Name() string { return "GET" }

func (c Get) Execute(st *store.Store, _ *params.Map) protocol.Value {
	e, ok := st.Read(c.Key)
	if !ok {
		return protocol.NullBulk()
	}
	return protocol.BulkString(e.Payload)
}
