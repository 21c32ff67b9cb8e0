package session

import (
	"net"
	"testing"

	"gochat/internal/framing"
	"gochat/internal/transport"
	"gochat/util"
)

func newTestSession(t *testing.T, mode framing.Mode) (*Session, net.Conn) {
	t.Helper()
	local, remote := net.Pipe()
	t.Cleanup(func() {
		local.Close()
		remote.Close()
	})
	logger := util.NewLogger(0)
	return New(transport.NewConn(local, logger), mode, logger), remote
}

func TestNew_FreshReassemblers(t *testing.T) {
	s, _ := newTestSession(t, framing.Line)

	if s.Inbound == s.Outbound {
		t.Fatal("directions must not share a reassembler")
	}
	if s.Inbound.Mode() != framing.Line || s.Outbound.Mode() != framing.Line {
		t.Error("reassemblers must carry the session mode")
	}
	if s.Inbound.Pending() != 0 || s.Outbound.Pending() != 0 {
		t.Error("new session must start with empty buffers")
	}
}

func TestOwns(t *testing.T) {
	s, _ := newTestSession(t, framing.Char)
	other, _ := newTestSession(t, framing.Char)

	if !s.Owns(s.Conn) {
		t.Error("session must own its connection")
	}
	if s.Owns(other.Conn) {
		t.Error("session must not own a foreign connection")
	}

	var none *Session
	if none.Owns(s.Conn) {
		t.Error("nil session owns nothing")
	}
}

func TestClose_Idempotent(t *testing.T) {
	s, _ := newTestSession(t, framing.Line)
	s.Close()
	s.Close() // already closed is not an error

	if s.Conn.State() != transport.StateClosed {
		t.Errorf("state = %v, want closed", s.Conn.State())
	}

	var none *Session
	none.Close() // must not panic
}
