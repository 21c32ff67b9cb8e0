// Package core is the orchestration layer.  It composes the transport,
// framing, and input layers into complete operational modes and owns
// the event loop that drives a relay run.
//
// Architecture layers (bottom → top):
//
//	transport / framing / input  →  session  →  core  →  cmd (CLI)
//
// The loop in this package is the single authority over which sources
// are watched: it alone registers connections, promotes them to the
// active session, and tears them down.
package core

import "context"

// Mode represents a complete operational mode of gochat (connect or
// listen).  Each mode owns its full lifecycle from connection
// establishment to teardown.
type Mode interface {
	Run(ctx context.Context) error
}
