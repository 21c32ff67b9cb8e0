package core

import (
	"context"
	"testing"
	"time"

	"gochat/internal/input"
)

// stubInput is a scriptable input.Source for driving the event loop
// without a console.
type stubInput struct {
	ch     chan input.Event
	echo   bool
	closed bool
}

func newStubInput() *stubInput {
	return &stubInput{ch: make(chan input.Event, 8)}
}

func (s *stubInput) Start(ctx context.Context) error { return nil }
func (s *stubInput) Events() <-chan input.Event      { return s.ch }
func (s *stubInput) Echo() bool                      { return s.echo }
func (s *stubInput) Close() error {
	s.closed = true
	return nil
}

func (s *stubInput) send(data string) {
	s.ch <- input.Event{Data: []byte(data)}
}

func (s *stubInput) interrupt() {
	s.ch <- input.Event{Interrupt: true}
}

func (s *stubInput) eof() {
	s.ch <- input.Event{EOF: true}
	close(s.ch)
}

// waitErr receives from ch or fails the test after a deadline.
func waitErr(t *testing.T, ch <-chan error, what string) error {
	t.Helper()
	select {
	case err := <-ch:
		return err
	case <-time.After(3 * time.Second):
		t.Fatalf("%s did not finish in time", what)
		return nil
	}
}
