package terminal

import (
	"os"
	"path/filepath"
	"testing"

	"gochat/internal/errors"
	"gochat/util"
)

// nonTerminalFd returns a descriptor that is guaranteed not to be an
// interactive terminal.
func nonTerminalFd(t *testing.T) int {
	t.Helper()
	f, err := os.Create(filepath.Join(t.TempDir(), "not-a-tty"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { f.Close() })
	return int(f.Fd())
}

// TestGuard_DegradesOnNonTerminal verifies raw-mode entry failure is
// reported but leaves the guard usable: the relay must start anyway.
func TestGuard_DegradesOnNonTerminal(t *testing.T) {
	g := NewGuard(nonTerminalFd(t), util.NewLogger(0))

	err := g.Enter()
	if !errors.Is(err, ErrNotTerminal) {
		t.Fatalf("Enter = %v, want ErrNotTerminal", err)
	}
	if g.Active() {
		t.Error("guard active after failed Enter")
	}
	if err := g.Restore(); err != nil {
		t.Errorf("Restore after failed Enter = %v, want nil", err)
	}
}

// TestGuard_RestoreIdempotent verifies Restore can run on every exit
// path without a prior Enter.
func TestGuard_RestoreIdempotent(t *testing.T) {
	g := NewGuard(nonTerminalFd(t), util.NewLogger(0))

	for i := 0; i < 3; i++ {
		if err := g.Restore(); err != nil {
			t.Errorf("Restore %d = %v", i, err)
		}
	}
}
