package core

import (
	"context"
	"io"
	"net"

	"gochat/internal/errors"
	"gochat/internal/framing"
	"gochat/internal/input"
	"gochat/internal/metrics"
	"gochat/internal/session"
	"gochat/internal/transport"
	"gochat/util"
)

// BusyNotice is written to an inbound connection that arrives while a
// session is already active, right before it is closed.  Capacity is
// exactly one peer; this is policy, not a limitation to fix.
const BusyNotice = "server busy. try later.\n"

// loop is the event loop: one goroutine multiplexing a closed set of
// tagged sources — pending accepts, peer bytes, local input, and
// cancellation — through a single readiness wait.  Each wake-up
// performs one bounded dispatch per ready source and returns to the
// wait; there is no polling and no deadline.
//
// The loop is the only writer to the active connection and the only
// goroutine that creates or destroys the session, so neither needs a
// lock.
type loop struct {
	mode    framing.Mode
	in      input.Source
	stdout  io.Writer
	logger  *util.Logger
	metrics *metrics.Collector

	// accepts delivers raw inbound connections (server only; nil on
	// the client, which makes its select arm permanently quiet).
	accepts <-chan net.Conn
	// acceptErrs delivers a fatal listener failure (server only).
	acceptErrs <-chan error
	// recvs carries read-pump events for whichever connection is
	// current; stale events from a torn-down one are discarded by
	// connection identity.
	recvs chan transport.RecvEvent

	// sess is the one active session, or nil while idle/listening.
	sess *session.Session

	// clientRole: the run ends when the session does.
	clientRole bool
}

// run drives the relay until an interrupt, a peer close (client), or
// an unrecoverable local error.  Teardown is ordered and runs on every
// exit path: console state first, then the session's connection.
func (l *loop) run(ctx context.Context) error {
	if err := l.in.Start(ctx); err != nil {
		return err
	}
	defer func() {
		// Restore the terminal before anything else gets printed.
		if err := l.in.Close(); err != nil {
			l.logger.Debug("input close: %v", err)
		}
	}()
	defer func() {
		if l.sess != nil {
			l.sess.Close()
			l.metrics.SessionClosed()
		}
	}()

	inputs := l.in.Events()

	for {
		select {
		case <-ctx.Done():
			l.logger.Verbose("interrupt received, shutting down")
			return nil

		case err := <-l.acceptErrs:
			return err

		case nc := <-l.accepts:
			l.admit(ctx, nc)

		case ev := <-l.recvs:
			ended, err := l.handleRecv(ev)
			if err != nil {
				return err
			}
			if ended && l.clientRole {
				return nil
			}

		case ev, ok := <-inputs:
			if !ok {
				// Source gone; stop watching, keep relaying.
				inputs = nil
				continue
			}
			switch {
			case ev.Interrupt:
				l.logger.Verbose("interrupt key pressed, shutting down")
				return nil
			case ev.EOF:
				// End of local input does not end the session:
				// the peer may still be talking.  Flush any
				// undelimited tail first so it isn't lost.
				if err := l.flushOutbound(); err != nil && l.clientRole {
					return nil
				}
				inputs = nil
				l.logger.Verbose("local input closed; still relaying peer data")
			default:
				if err := l.transmit(ev.Data); err != nil {
					return err
				}
				if l.sess == nil && l.clientRole {
					return nil
				}
			}
		}
	}
}

// ── admission (server) ───────────────────────────────────────────────

// admit applies the single-session policy to a freshly accepted
// connection: promote it when idle, or notify-and-close when busy.
// A rejected socket is never registered with the loop and never
// becomes a session.
func (l *loop) admit(ctx context.Context, nc net.Conn) {
	if l.sess != nil {
		l.logger.Verbose("rejecting %s: session already active", nc.RemoteAddr())
		l.metrics.SessionRejected()
		// A bounded write to a just-accepted socket lands in the
		// send buffer without blocking the loop.
		if _, err := nc.Write([]byte(BusyNotice)); err != nil {
			l.logger.Debug("busy notice: %v", err)
		}
		nc.Close() //nolint:errcheck
		return
	}

	conn := transport.NewConn(nc, l.logger)
	l.sess = session.New(conn, l.mode, l.logger)
	l.metrics.SessionOpened()
	l.logger.Verbose("peer connected from %s", nc.RemoteAddr())

	go conn.ReadPump(ctx, l.recvs)
}

// ── inbound path ─────────────────────────────────────────────────────

// handleRecv dispatches one read-pump event.  It reports whether the
// session ended; a non-nil error means the local display failed and
// the run is over.
func (l *loop) handleRecv(ev transport.RecvEvent) (ended bool, err error) {
	defer ev.Release()

	if !l.sess.Owns(ev.Conn) {
		return false, nil // straggler from a torn-down session
	}

	if ev.Err != nil {
		if errors.Is(ev.Err, errors.ErrPeerClosed) {
			l.logger.Verbose("peer disconnected")
		} else {
			l.logger.Error("receive failed: %v", ev.Err)
			l.metrics.RecordError(ev.Err.Error())
		}
		l.endSession()
		return true, nil
	}

	l.metrics.BytesReceived(int64(len(ev.Data)))
	frames := l.sess.Inbound.Feed(ev.Data)
	l.metrics.FramesReceived(int64(len(frames)))
	return false, l.display(frames)
}

// display writes complete inbound frames to the local sink.  Line
// frames are decoded with substitution for invalid UTF-8; char frames
// pass through untouched.
func (l *loop) display(frames [][]byte) error {
	for _, f := range frames {
		var err error
		if l.mode == framing.Line {
			_, err = io.WriteString(l.stdout, framing.DecodeText(f))
		} else {
			_, err = l.stdout.Write(f)
		}
		if err != nil {
			return errors.Wrap("display", "stdout", err)
		}
	}
	return nil
}

// ── outbound path ────────────────────────────────────────────────────

// transmit forwards one batch of local bytes to the peer.  In line
// mode the bytes pass through the outbound reassembler so only
// complete lines hit the wire; in char mode they go out as-is.  A
// non-nil error means the local echo failed; send failures end the
// session instead.
func (l *loop) transmit(data []byte) error {
	if l.sess == nil {
		if l.mode == framing.Line {
			l.logger.Warn("no peer connected yet; input dropped")
			return nil
		}
		// Char mode with raw console: show the keystroke even
		// though there is nobody to send it to.
		return l.echo(data)
	}

	var frames [][]byte
	if l.mode == framing.Line {
		frames = l.sess.Outbound.Feed(data)
	} else {
		frames = [][]byte{data}
	}

	for _, f := range frames {
		if err := l.send(f); err != nil {
			return nil // session ended; fault already reported
		}
	}
	return nil
}

// flushOutbound transmits any buffered partial line at local EOF.
func (l *loop) flushOutbound() error {
	if l.sess == nil {
		return nil
	}
	if tail := l.sess.Outbound.Flush(); len(tail) > 0 {
		return l.send(tail)
	}
	return nil
}

// send writes one frame to the peer and echoes it locally when the
// input source requires it.  A failure is fatal to the session, never
// retried, and always reported.
func (l *loop) send(frame []byte) error {
	if err := l.sess.Conn.Send(frame); err != nil {
		l.logger.Error("failed to send; peer likely disconnected: %v", err)
		l.metrics.RecordError(err.Error())
		l.endSession()
		return err
	}
	l.metrics.BytesSent(int64(len(frame)))
	l.metrics.FramesSent(1)

	if l.in.Echo() {
		if err := l.echo(frame); err != nil {
			l.logger.Debug("local echo: %v", err)
		}
	}
	return nil
}

// echo writes transmitted bytes to the local display (raw mode
// suppresses the OS's own echo).
func (l *loop) echo(data []byte) error {
	if _, err := l.stdout.Write(data); err != nil {
		return errors.Wrap("echo", "stdout", err)
	}
	return nil
}

// ── teardown ─────────────────────────────────────────────────────────

// endSession destroys the active session.  On the server the loop
// falls back to the listening state; the acceptor was never stopped,
// so the next inbound connection is promoted normally.
func (l *loop) endSession() {
	l.sess.Close()
	l.sess = nil
	l.metrics.SessionClosed()
	if l.accepts != nil {
		l.logger.Verbose("listening for a new peer")
	}
}
