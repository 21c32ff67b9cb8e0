// Package terminal owns the local console mode.  Char mode needs the
// terminal in raw state (bytes delivered as typed, no line buffering,
// no local echo); everything else needs it restored, including every
// abnormal exit path.  Guard is the scoped switch between the two.
package terminal

import (
	"os"
	"sync"

	"golang.org/x/term"

	"gochat/internal/errors"
	"gochat/util"
)

// ErrNotTerminal is returned by Enter when the descriptor is not an
// interactive terminal (e.g. stdin is a pipe).
var ErrNotTerminal = errors.New("not a terminal")

// Guard captures the console state on Enter and puts it back on
// Restore.  Restore is idempotent and safe to defer on every exit
// path.  A Guard that never entered raw mode restores nothing.
type Guard struct {
	fd     int
	logger *util.Logger

	mu    sync.Mutex
	saved *term.State // nil until Enter succeeds
}

// NewGuard returns a Guard for the given descriptor.
func NewGuard(fd int, logger *util.Logger) *Guard {
	return &Guard{fd: fd, logger: logger}
}

// NewStdinGuard returns a Guard for os.Stdin.
func NewStdinGuard(logger *util.Logger) *Guard {
	return NewGuard(int(os.Stdin.Fd()), logger)
}

// Enter switches the terminal to raw mode, saving the previous state.
// Failure is not fatal to the relay: callers degrade to cooked-mode
// input and keep running.
func (g *Guard) Enter() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.saved != nil {
		return nil // already raw
	}
	if !term.IsTerminal(g.fd) {
		return ErrNotTerminal
	}

	st, err := term.MakeRaw(g.fd)
	if err != nil {
		return errors.Wrap("raw-mode", "stdin", err)
	}
	g.saved = st
	g.logger.Debug("terminal switched to raw mode")
	return nil
}

// Active reports whether the terminal is currently in raw mode.
func (g *Guard) Active() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.saved != nil
}

// Restore puts the terminal back into its original mode.  Calling it
// repeatedly, or without a prior successful Enter, is a no-op.
func (g *Guard) Restore() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.saved == nil {
		return nil
	}
	err := term.Restore(g.fd, g.saved)
	g.saved = nil
	if err != nil {
		return errors.Wrap("restore", "stdin", err)
	}
	g.logger.Debug("terminal mode restored")
	return nil
}
