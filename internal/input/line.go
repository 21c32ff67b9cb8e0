package input

import (
	"bufio"
	"context"
	"io"
	"os"
	"sync"

	"gochat/util"
)

// LineSource reads local input one line at a time, delimiter included,
// through a buffered reader.  The terminal stays in its default cooked
// mode, so the OS handles echo and line editing.
type LineSource struct {
	// R is the input stream.  Defaults to os.Stdin when nil;
	// override in tests for deterministic input.
	R      io.Reader
	Logger *util.Logger

	mu      sync.Mutex
	started bool
	events  chan Event
}

// NewLineSource returns an unstarted LineSource reading os.Stdin.
func NewLineSource(logger *util.Logger) *LineSource {
	return &LineSource{Logger: logger}
}

func (s *LineSource) reader() io.Reader {
	if s.R != nil {
		return s.R
	}
	return os.Stdin
}

// Start launches the line reader goroutine.
func (s *LineSource) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return ErrAlreadyStarted
	}
	s.started = true
	s.events = make(chan Event, 1)
	go s.readLoop(ctx)
	return nil
}

// Events returns the delivery channel.
func (s *LineSource) Events() <-chan Event { return s.events }

// Echo is false for line mode: the cooked terminal echoes by itself.
func (s *LineSource) Echo() bool { return false }

// Close is a no-op; the reader goroutine holds no console state and
// exits with the process if still blocked in a read.
func (s *LineSource) Close() error { return nil }

func (s *LineSource) readLoop(ctx context.Context) {
	defer close(s.events)

	br := bufio.NewReader(s.reader())
	for {
		line, err := br.ReadBytes('\n')
		if len(line) > 0 {
			if !s.deliver(ctx, Event{Data: line}) {
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

// deliver sends ev unless the orchestrator has already gone away.
func (s *LineSource) deliver(ctx context.Context, ev Event) bool {
	select {
	case s.events <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}
