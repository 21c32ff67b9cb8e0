package core

import (
	"context"
	"fmt"
	"io"
	"os"

	"gochat/internal/framing"
	"gochat/internal/input"
	"gochat/internal/metrics"
	"gochat/internal/session"
	"gochat/internal/transport"
	"gochat/util"
)

// ConnectMode dials the remote peer and relays until the peer closes,
// the interrupt fires, or a connection fault ends the session — the
// client role, where the session's end is the run's end.
type ConnectMode struct {
	Dialer  transport.Dialer
	Address string
	Mode    framing.Mode
	Logger  *util.Logger
	Metrics *metrics.Collector

	// Input defaults to the strategy selected for Mode when nil.
	// Stdout defaults to os.Stdout.  Override in tests.
	Input  input.Source
	Stdout io.Writer
}

func (m *ConnectMode) input() input.Source {
	if m.Input != nil {
		return m.Input
	}
	return input.New(m.Mode, m.Logger)
}

func (m *ConnectMode) stdout() io.Writer {
	if m.Stdout != nil {
		return m.Stdout
	}
	return os.Stdout
}

// Run dials the peer, promotes the connection to the session, and
// hands control to the event loop.
func (m *ConnectMode) Run(ctx context.Context) error {
	defer m.Dialer.Close()

	m.Logger.Verbose("connecting to %s (tcp)", m.Address)

	nc, err := m.Dialer.Dial(ctx, "tcp", m.Address)
	if err != nil {
		return fmt.Errorf("connect to %s: %w", m.Address, err)
	}

	m.Logger.Verbose("connected to %s", nc.RemoteAddr())

	conn := transport.NewConn(nc, m.Logger)
	l := &loop{
		mode:       m.Mode,
		in:         m.input(),
		stdout:     m.stdout(),
		logger:     m.Logger,
		metrics:    m.Metrics,
		recvs:      make(chan transport.RecvEvent),
		sess:       session.New(conn, m.Mode, m.Logger),
		clientRole: true,
	}
	m.Metrics.SessionOpened()

	go conn.ReadPump(ctx, l.recvs)

	err = l.run(ctx)
	m.Logger.Debug("run stats: %s", m.Metrics.JSON())
	return err
}
