package transport

import (
	"io"
	"net"
	"sync/atomic"
	"syscall"

	"gochat/internal/errors"
	"gochat/util"
)

// State is the lifecycle position of a Conn.
type State int32

const (
	// StateConnecting: dial or accept in flight.
	StateConnecting State = iota
	// StateOpen: both directions usable.
	StateOpen
	// StateHalfClosed: the peer stopped sending (zero-length read)
	// but the local descriptor is still open.
	StateHalfClosed
	// StateClosed: descriptor released or unusable.
	StateClosed
)

// String returns a short name for logging.
func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateHalfClosed:
		return "half-closed"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Conn wraps a network connection with the relay's lifecycle rules:
// a zero-length read marks the peer gone (a session-ending event, not
// an error), and any send failure is fatal to the connection — the
// relay has no buffering or retry contract for lost peer state.
//
// Recv and Send are called from different goroutines (read pump vs
// event loop); each direction has exactly one caller.
type Conn struct {
	nc     net.Conn
	state  atomic.Int32
	logger *util.Logger
}

// NewConn wraps an established network connection in the Open state.
func NewConn(nc net.Conn, logger *util.Logger) *Conn {
	c := &Conn{nc: nc, logger: logger}
	c.state.Store(int32(StateOpen))
	return c
}

// State returns the current lifecycle state.
func (c *Conn) State() State { return State(c.state.Load()) }

// RemoteAddr returns the peer's address.
func (c *Conn) RemoteAddr() net.Addr { return c.nc.RemoteAddr() }

// Recv performs one bounded read into buf.  A peer-initiated close
// surfaces as (0, errors.ErrPeerClosed) after transitioning the Conn
// through HalfClosed to Closed.  A connection reset counts as a peer
// close too — the session ends either way.
func (c *Conn) Recv(buf []byte) (int, error) {
	n, err := c.nc.Read(buf)
	if err == nil {
		return n, nil
	}

	if err == io.EOF {
		// Half-close: drain point reached, nothing more will come.
		c.state.Store(int32(StateHalfClosed))
		c.logger.Debug("peer %s half-closed", c.nc.RemoteAddr())
		c.shutdown()
		return n, errors.ErrPeerClosed
	}

	if isReset(err) {
		c.shutdown()
		return n, errors.ErrPeerClosed
	}

	c.shutdown()
	return n, errors.Wrap("read", c.nc.RemoteAddr().String(), err)
}

// Send writes p in full.  Failures (reset, broken pipe, generic OS
// failure) transition the Conn to Closed and are never retried.
func (c *Conn) Send(p []byte) error {
	if c.State() == StateClosed {
		return errors.ErrNotConnected
	}
	if _, err := c.nc.Write(p); err != nil {
		c.shutdown()
		return errors.Wrap("write", c.nc.RemoteAddr().String(), err)
	}
	return nil
}

// Close releases the descriptor.  Idempotent; closing an already
// closed connection is not an error.
func (c *Conn) Close() error {
	if !c.markClosed() {
		return nil
	}
	if err := c.nc.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
		return errors.Wrap("close", c.nc.RemoteAddr().String(), err)
	}
	return nil
}

// shutdown moves to Closed and releases the descriptor quietly.
func (c *Conn) shutdown() {
	if c.markClosed() {
		c.nc.Close() //nolint:errcheck
	}
}

// markClosed transitions to Closed, returning false if already there.
func (c *Conn) markClosed() bool {
	return State(c.state.Swap(int32(StateClosed))) != StateClosed
}

// isReset reports whether err is a connection reset or an operation on
// an already-closed descriptor — both mean the peer state is gone.
func isReset(err error) bool {
	if errors.Is(err, syscall.ECONNRESET) {
		return true
	}
	if errors.Is(err, net.ErrClosed) || errors.Is(err, io.ErrClosedPipe) {
		return true
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return errors.Is(opErr.Err, net.ErrClosed)
	}
	return false
}
