package input

import (
	"context"
	"io"
	"os"
	"sync"

	"gochat/internal/errors"
	"gochat/internal/terminal"
	"gochat/util"
)

// CharSource reads local input one byte at a time with the terminal in
// raw mode, so each keystroke becomes an event the moment it is typed.
// If raw mode cannot be entered (stdin is a pipe, or the switch fails)
// the source degrades: it still reads byte-wise, the terminal just
// keeps its default behaviour.
type CharSource struct {
	// R is the input stream.  Defaults to os.Stdin when nil;
	// override in tests for deterministic input.
	R      io.Reader
	Logger *util.Logger

	// Guard owns the raw-mode switch.  Defaults to a stdin guard.
	Guard *terminal.Guard

	mu      sync.Mutex
	started bool
	events  chan Event
}

// NewCharSource returns an unstarted CharSource reading os.Stdin.
func NewCharSource(logger *util.Logger) *CharSource {
	return &CharSource{
		Logger: logger,
		Guard:  terminal.NewStdinGuard(logger),
	}
}

func (s *CharSource) reader() io.Reader {
	if s.R != nil {
		return s.R
	}
	return os.Stdin
}

// Start enters raw mode (degrading on failure) and launches the
// byte reader goroutine.
func (s *CharSource) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return ErrAlreadyStarted
	}
	s.started = true

	if err := s.Guard.Enter(); err != nil {
		if errors.Is(err, terminal.ErrNotTerminal) {
			s.Logger.Debug("stdin is not a terminal; raw mode skipped")
		} else {
			s.Logger.Warn("raw mode unavailable, continuing with default console behaviour: %v", err)
		}
	}

	s.events = make(chan Event, 1)
	go s.readLoop(ctx)
	return nil
}

// Events returns the delivery channel.
func (s *CharSource) Events() <-chan Event { return s.events }

// Echo reports whether raw mode is active; if so the OS no longer
// echoes keystrokes and the orchestrator must.
func (s *CharSource) Echo() bool { return s.Guard.Active() }

// Close restores the terminal.  The reader goroutine is daemonic: if
// still blocked in a read it exits with the process.
func (s *CharSource) Close() error { return s.Guard.Restore() }

func (s *CharSource) readLoop(ctx context.Context) {
	defer close(s.events)

	r := s.reader()
	var b [1]byte
	for {
		n, err := r.Read(b[:])
		if n > 0 {
			// With the terminal raw, Ctrl-C arrives as a plain
			// byte instead of SIGINT.  Turn it back into an
			// orderly shutdown request.
			if b[0] == interruptByte && s.Guard.Active() {
				s.deliver(ctx, Event{Interrupt: true})
				return
			}
			if !s.deliver(ctx, Event{Data: []byte{b[0]}}) {
				return
			}
		}
		if err != nil {
			if err != io.EOF {
				s.Logger.Debug("local input read: %v", err)
			}
			s.deliver(ctx, Event{EOF: true})
			return
		}
	}
}

func (s *CharSource) deliver(ctx context.Context, ev Event) bool {
	select {
	case s.events <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}
