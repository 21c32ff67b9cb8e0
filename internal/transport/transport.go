// Package transport provides abstractions for network connection
// establishment and lifecycle.  Transports handle the "how" of byte
// movement — dialing, bounded reads, full writes, half-close
// detection — independent of what the bytes mean (which is the
// framing layer's job).
package transport

import (
	"context"
	"net"
)

// Dialer opens outbound network connections.
type Dialer interface {
	// Dial establishes a connection to the given network address.
	Dial(ctx context.Context, network, address string) (net.Conn, error)

	// Close releases any long-lived resources held by the dialer.
	// Stateless dialers return nil.
	Close() error
}
