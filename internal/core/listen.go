package core

import (
	"context"
	"fmt"
	"io"
	"net"
	"os"

	"gochat/internal/framing"
	"gochat/internal/input"
	"gochat/internal/metrics"
	"gochat/internal/transport"
	"gochat/util"
)

// ListenMode accepts inbound connections and relays with at most one
// of them at a time.  A connection arriving while a session is active
// is drained, told [BusyNotice], and closed; when the session ends the
// server returns to listening instead of exiting.
type ListenMode struct {
	Address string // ":port"
	Mode    framing.Mode
	Logger  *util.Logger
	Metrics *metrics.Collector

	// Input defaults to the strategy selected for Mode when nil.
	// Stdout defaults to os.Stdout.  Override in tests.
	Input  input.Source
	Stdout io.Writer
}

func (m *ListenMode) input() input.Source {
	if m.Input != nil {
		return m.Input
	}
	return input.New(m.Mode, m.Logger)
}

func (m *ListenMode) stdout() io.Writer {
	if m.Stdout != nil {
		return m.Stdout
	}
	return os.Stdout
}

// Run starts listening and hands control to the event loop.  The
// acceptor goroutine only ever accepts and forwards; admission policy
// runs inside the loop, so registration is never concurrent with
// dispatch.
func (m *ListenMode) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", m.Address)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", m.Address, err)
	}
	defer ln.Close()

	m.Logger.Verbose("listening on %s (tcp)", ln.Addr())

	// Shut the listener down when the context expires so Accept
	// unblocks.
	go func() {
		<-ctx.Done()
		ln.Close() //nolint:errcheck
	}()

	accepts := make(chan net.Conn)
	acceptErrs := make(chan error, 1)
	go acceptLoop(ctx, ln, accepts, acceptErrs)

	l := &loop{
		mode:       m.Mode,
		in:         m.input(),
		stdout:     m.stdout(),
		logger:     m.Logger,
		metrics:    m.Metrics,
		accepts:    accepts,
		acceptErrs: acceptErrs,
		recvs:      make(chan transport.RecvEvent),
	}

	err = l.run(ctx)
	m.Logger.Debug("run stats: %s", m.Metrics.JSON())
	return err
}

// acceptLoop forwards inbound connections to the event loop until the
// listener dies.  Accept failure after cancellation is the expected
// way out; any other failure is fatal to the run.
func acceptLoop(ctx context.Context, ln net.Listener, accepts chan<- net.Conn, acceptErrs chan<- error) {
	for {
		nc, err := ln.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
			case acceptErrs <- fmt.Errorf("accept: %w", err):
			}
			return
		}

		select {
		case accepts <- nc:
		case <-ctx.Done():
			nc.Close() //nolint:errcheck
			return
		}
	}
}
