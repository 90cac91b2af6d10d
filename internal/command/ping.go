package command

import (
	"github.com/okrski/minikv/internal/params"
	"github.com/okrski/minikv/internal/protocol"
	"github.com/okrski/minikv/internal/store"
)

// Ping yields a fixed acknowledgement regardless of store state.
type Ping struct{}

func parsePing([]protocol.Value) (Command, error) {
	return Ping{}, nil
}

func (Ping) Name() string { return "PING" }

func (Ping) Execute(*store.Store, *params.Map) protocol.Value {
	return protocol.SimpleString("PONG")
}
