// Package input produces local keyboard bytes for the relay to
// transmit.  A Source runs its own reader goroutine and delivers
// InputEvents over a channel; the orchestrator consumes them from its
// event loop and performs the socket write itself.  Sources never
// touch the connection — the loop is the single writer.
//
// Two strategies implement the same contract, selected once at
// startup: LineSource delivers one full line per event through a
// buffered reader, CharSource delivers single bytes read with the
// terminal in raw mode.  End of local input is a non-terminating
// condition — the session continues, only the peer or an interrupt
// ends the run.
package input

import (
	"context"

	"gochat/internal/errors"
	"gochat/internal/framing"
	"gochat/util"
)

// Event is one unit of local input: a batch of raw bytes to transmit,
// an end-of-input signal, or an interrupt request raised from raw mode
// (where the terminal no longer turns Ctrl-C into a signal).
type Event struct {
	Data      []byte
	EOF       bool
	Interrupt bool
}

// Source delivers local input events.  Implementations start a
// background reader on Start and close the Events channel after the
// final event.  Close releases any console state the source holds and
// must be safe to call on every exit path.
type Source interface {
	// Start launches the background reader.  It fails only when
	// called twice; console setup problems degrade instead.
	Start(ctx context.Context) error

	// Events returns the delivery channel.  Valid after Start.
	Events() <-chan Event

	// Echo reports whether the orchestrator must echo transmitted
	// bytes locally (raw mode suppresses the OS's own echo).
	Echo() bool

	// Close stops the source best-effort and restores console state.
	Close() error
}

// ErrAlreadyStarted is returned by Start on reuse.
var ErrAlreadyStarted = errors.New("input source already started")

// interruptByte is what Ctrl-C produces once the terminal is raw.
const interruptByte = 0x03

// New selects the input strategy for the given framing mode.
func New(mode framing.Mode, logger *util.Logger) Source {
	if mode == framing.Char {
		return NewCharSource(logger)
	}
	return NewLineSource(logger)
}
