package proto

import (
	"errors"
	"strconv"
	"strings"

	"linecached/cache"
)

// Literal reply tokens.
const (
	ReplyOK             = "OK"
	ReplyMiss           = "MISS"
	ReplyExists         = "EXISTS"
	ReplyType           = "TYPE"
	ReplyInvalidCommand = "Invalid command"
	ReplyInvalidArgs    = "Invalid arguments"
	ReplyClosing        = "Closing connection"
)

// Dispatcher is pure glue between parsed commands and the pool. It is
// stateless beyond the pool reference and safe for concurrent use.
type Dispatcher struct {
	pool *cache.Pool
}

// NewDispatcher binds a dispatcher to a pool.
func NewDispatcher(p *cache.Pool) *Dispatcher {
	return &Dispatcher{pool: p}
}

// HandleLine parses and executes one logical line and returns the reply
// to write (without newline). closing is true for the close command; the
// caller is expected to half-close after writing the reply.
func (d *Dispatcher) HandleLine(line string) (reply string, closing bool) {
	// close is matched leniently: case-insensitive with any surrounding
	// whitespace, per the wire contract.
	if strings.EqualFold(strings.TrimSpace(line), "close") {
		return ReplyClosing, true
	}
	cmd, err := Parse(line)
	if err != nil {
		if errors.Is(err, ErrBadArguments) {
			return ReplyInvalidArgs, false
		}
		return ReplyInvalidCommand, false
	}
	if cmd.Verb == VerbClose {
		return ReplyClosing, true
	}
	return d.exec(cmd), false
}

func (d *Dispatcher) exec(cmd Command) string {
	switch cmd.Verb {
	case VerbAdd:
		if d.pool.Add(cmd.Key, cache.ParseTagged(cmd.Raw), cmd.TTL) {
			return ReplyOK
		}
		return ReplyExists

	case VerbSet:
		d.pool.Set(cmd.Key, cache.ParseTagged(cmd.Raw), cmd.TTL)
		return ReplyOK

	case VerbReplace:
		if d.pool.Replace(cmd.Key, cache.ParseTagged(cmd.Raw), cmd.TTL) {
			return ReplyOK
		}
		return ReplyMiss

	case VerbGet:
		v, ok := d.pool.Get(cmd.Key)
		if !ok {
			return ReplyMiss
		}
		return v.Render()

	case VerbHas:
		return strconv.FormatBool(d.pool.Has(cmd.Key))

	case VerbDelete:
		if d.pool.Delete(cmd.Key) {
			return ReplyOK
		}
		return ReplyMiss

	case VerbIncrement:
		n, ok := d.pool.Increment(cmd.Key, cmd.TTL)
		if !ok {
			return ReplyMiss
		}
		return strconv.FormatInt(n, 10)

	case VerbDecrement:
		n, ok := d.pool.Decrement(cmd.Key, cmd.TTL)
		if !ok {
			return ReplyMiss
		}
		return strconv.FormatInt(n, 10)

	case VerbFlush:
		return strconv.Itoa(d.pool.Flush())

	case VerbStatus:
		return d.pool.Status()
	}
	// Parse only produces the verbs above; Close never reaches exec.
	return ReplyInvalidCommand
}
