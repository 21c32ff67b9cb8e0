package transport

import (
	"context"

	"gochat/util"
)

// RecvEvent is one bounded read delivered to the event loop: a chunk
// of peer bytes, or the reason the connection is done.  Conn tags the
// event so the loop can discard stragglers from a torn-down session.
type RecvEvent struct {
	Conn *Conn
	Data []byte // valid until Release
	Err  error  // errors.ErrPeerClosed on normal peer close

	buf *[]byte // pooled backing storage, nil for terminal events
}

// Release returns the event's buffer to the pool.  Call exactly once
// after the data has been consumed; terminal events release nothing.
func (ev *RecvEvent) Release() {
	if ev.buf != nil {
		util.PutBuf(ev.buf)
		ev.buf = nil
	}
}

// ReadPump performs bounded reads until the peer closes, an error
// occurs, or the context is cancelled, delivering each chunk on out.
// The final event carries a non-nil Err; the channel stays open (it is
// shared across sessions on the server).
//
// Run as a goroutine — one per connection, the connection's only
// reader.
func (c *Conn) ReadPump(ctx context.Context, out chan<- RecvEvent) {
	for {
		buf := util.GetBuf()
		n, err := c.Recv(*buf)
		if err != nil {
			util.PutBuf(buf)
			select {
			case out <- RecvEvent{Conn: c, Err: err}:
			case <-ctx.Done():
			}
			return
		}

		ev := RecvEvent{Conn: c, Data: (*buf)[:n], buf: buf}
		select {
		case out <- ev:
		case <-ctx.Done():
			util.PutBuf(buf)
			return
		}
	}
}
