package command

import (
	"strings"
	"time"

	"github.com/okrski/minikv/internal/params"
	"github.com/okrski/minikv/internal/protocol"
	"github.com/okrski/minikv/internal/store"
)

// ConflictMode restricts when a SET may write.
type ConflictMode int

const (
	// ConflictNone writes unconditionally.
	ConflictNone ConflictMode = iota
	// ConflictIfAbsent writes only when the key does not exist (NX).
	ConflictIfAbsent
	// ConflictIfPresent writes only when the key exists (XX).
	ConflictIfPresent
)

// ExpiryKind selects how a SET derives the new entry's deadline.
type ExpiryKind int

const (
	ExpiryNone ExpiryKind = iota
	ExpirySeconds
	ExpiryMillis
	ExpiryAtSeconds
	ExpiryAtMillis
	ExpiryKeepTTL
)

// Set is a parsed SET command. At most one conflict mode and at most
// one expiry form can be present; a second occurrence of either
// family is a syntax error at parse time.
type Set struct {
	Key       string
	Value     []byte
	Conflict  ConflictMode
	ReturnOld bool
	Expiry    ExpiryKind
	ExpiryArg int64 // EX/PX/EXAT/PXAT argument, unused otherwise
}

// parseSet consumes the option tokens after key/value left to right.
// Option keywords are folded to upper case, unlike the command verb
// which stays case-sensitive.
func parseSet(args []protocol.Value) (Command, error) {
	if len(args) < 3 {
		return nil, ErrInvalidCommand
	}
	if args[1].Type != protocol.TypeBulkString || args[2].Type != protocol.TypeBulkString {
		return nil, ErrInvalidCommand
	}

	cmd := Set{
		Key:   string(args[1].Bulk),
		Value: args[2].Bulk,
	}

	// takeExpiry consumes the value token following EX/PX/EXAT/PXAT.
	takeExpiry := func(idx int, kind ExpiryKind) (int, error) {
		if cmd.Expiry != ExpiryNone {
			return 0, ErrSyntax
		}
		if idx+1 >= len(args) {
			return 0, ErrSyntax
		}
		n, err := optionInt(args[idx+1])
		if err != nil {
			return 0, err
		}
		cmd.Expiry = kind
		cmd.ExpiryArg = n
		return idx + 2, nil
	}

	idx := 3
	for idx < len(args) {
		arg := args[idx]
		if arg.Type != protocol.TypeBulkString {
			return nil, ErrInvalidCommand
		}

		var err error
		switch strings.ToUpper(string(arg.Bulk)) {
		case "NX":
			if cmd.Conflict != ConflictNone {
				return nil, ErrSyntax
			}
			cmd.Conflict = ConflictIfAbsent
			idx++
		case "XX":
			if cmd.Conflict != ConflictNone {
				return nil, ErrSyntax
			}
			cmd.Conflict = ConflictIfPresent
			idx++
		case "GET":
			if cmd.ReturnOld {
				return nil, ErrSyntax
			}
			cmd.ReturnOld = true
			idx++
		case "EX":
			if idx, err = takeExpiry(idx, ExpirySeconds); err != nil {
				return nil, err
			}
		case "PX":
			if idx, err = takeExpiry(idx, ExpiryMillis); err != nil {
				return nil, err
			}
		case "EXAT":
			if idx, err = takeExpiry(idx, ExpiryAtSeconds); err != nil {
				return nil, err
			}
		case "PXAT":
			if idx, err = takeExpiry(idx, ExpiryAtMillis); err != nil {
				return nil, err
			}
		case "KEEPTTL":
			if cmd.Expiry != ExpiryNone {
				return nil, ErrSyntax
			}
			cmd.Expiry = ExpiryKeepTTL
			idx++
		default:
			return nil, ErrInvalidCommand
		}
	}

	return cmd, nil
}

func (Set) Name() string { return "SET" }

// Execute performs the conflict check and the insert as one atomic
// step under the key's critical section. A skipped write (NX/XX
// conflict) yields null regardless of the GET option; otherwise the
// prior payload (with GET) or a fixed OK status is returned.
func (c Set) Execute(st *store.Store, _ *params.Map) protocol.Value {
	now := st.Now()

	res := st.Write(c.Key, func(prev store.Entry, exists bool) (store.Entry, bool) {
		switch c.Conflict {
		case ConflictIfAbsent:
			if exists {
				return store.Entry{}, false
			}
		case ConflictIfPresent:
			if !exists {
				return store.Entry{}, false
			}
		}

		next := store.Entry{Payload: c.Value}
		switch c.Expiry {
		case ExpirySeconds:
			next.ExpiresAt = now.Add(time.Duration(c.ExpiryArg) * time.Second)
		case ExpiryMillis:
			next.ExpiresAt = now.Add(time.Duration(c.ExpiryArg) * time.Millisecond)
		case ExpiryAtSeconds:
			next.ExpiresAt = time.Unix(c.ExpiryArg, 0)
		case ExpiryAtMillis:
			next.ExpiresAt = time.UnixMilli(c.ExpiryArg)
		case ExpiryKeepTTL:
			// Carry the previous deadline forward verbatim; a fresh
			// key gets none.
			if exists {
				next.ExpiresAt = prev.ExpiresAt
			}
		}
		return next, true
	})

	if !res.Wrote {
		return protocol.NullBulk()
	}
	if c.ReturnOld {
		if !res.Existed {
			return protocol.NullBulk()
		}
		return protocol.BulkString(res.Prev.Payload)
	}
	return protocol.SimpleString("OK")
}
