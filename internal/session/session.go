// Package session represents the one active peer relationship.
//
// A Session binds an open connection to a fresh pair of frame
// reassemblers, one per direction.  At most one Session exists at any
// time — the event loop owns it exclusively and enforces admission;
// nothing here is shared across goroutines.
package session

import (
	"gochat/internal/framing"
	"gochat/internal/transport"
	"gochat/util"
)

// Session encapsulates the runtime state of the single active peer.
// Created when a connection reaches Open, destroyed when it reaches
// Closed.  Reassemblers are never reused across sessions.
type Session struct {
	Conn *transport.Conn

	// Inbound reassembles peer bytes into display frames.
	Inbound *framing.Reassembler
	// Outbound reassembles local input into wire frames (a
	// pass-through in char mode).
	Outbound *framing.Reassembler

	Logger *util.Logger
}

// New creates a Session over an open connection with fresh
// reassemblers for the given framing mode.
func New(conn *transport.Conn, mode framing.Mode, logger *util.Logger) *Session {
	return &Session{
		Conn:     conn,
		Inbound:  framing.NewReassembler(mode),
		Outbound: framing.NewReassembler(mode),
		Logger:   logger,
	}
}

// Owns reports whether ev originated from this session's connection.
// The event loop uses it to discard stragglers delivered by the read
// pump of an already torn-down session.
func (s *Session) Owns(conn *transport.Conn) bool {
	return s != nil && s.Conn == conn
}

// Close tears the session's connection down, ignoring already-closed
// errors.
func (s *Session) Close() {
	if s == nil {
		return
	}
	if err := s.Conn.Close(); err != nil {
		s.Logger.Debug("session close: %v", err)
	}
}
