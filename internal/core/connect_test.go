package core

import (
	"bytes"
	"context"
	"io"
	"net"
	"testing"
	"time"

	"gochat/internal/framing"
	"gochat/internal/metrics"
	"gochat/internal/transport"
	"gochat/util"
)

func startConnectMode(t *testing.T, addr string, mode framing.Mode, in *stubInput) (*bytes.Buffer, context.CancelFunc, <-chan error) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)

	var out bytes.Buffer
	m := &ConnectMode{
		Dialer:  &transport.TCPDialer{Timeout: 2 * time.Second},
		Address: addr,
		Mode:    mode,
		Logger:  util.NewLogger(0),
		Metrics: metrics.New(),
		Input:   in,
		Stdout:  &out,
	}

	clientErr := make(chan error, 1)
	go func() {
		clientErr <- m.Run(ctx)
	}()

	return &out, cancel, clientErr
}

// TestConnectMode_PeerCloseEndsRun verifies the client role: peer
// closure terminates the run cleanly after the last bytes are shown.
func TestConnectMode_PeerCloseEndsRun(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer ln.Close()

	go func() {
		c, err := ln.Accept()
		if err != nil {
			return
		}
		c.Write([]byte("hello\n")) //nolint:errcheck
		c.Close()
	}()

	out, cancel, clientErr := startConnectMode(t, ln.Addr().String(), framing.Line, newStubInput())
	defer cancel()

	if err := waitErr(t, clientErr, "client"); err != nil {
		t.Errorf("client returned error: %v", err)
	}
	if got := out.String(); got != "hello\n" {
		t.Errorf("displayed %q, want %q", got, "hello\n")
	}
}

// TestConnectMode_TransmitsTypedLine verifies local input reaches the
// peer framed as one complete line.
func TestConnectMode_TransmitsTypedLine(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer ln.Close()

	received := make(chan []byte, 1)
	go func() {
		c, err := ln.Accept()
		if err != nil {
			return
		}
		buf := make([]byte, 16)
		n, _ := io.ReadAtLeast(c, buf, 3)
		received <- buf[:n]
		c.Close()
	}()

	in := newStubInput()
	_, cancel, clientErr := startConnectMode(t, ln.Addr().String(), framing.Line, in)
	defer cancel()

	time.Sleep(100 * time.Millisecond)
	in.send("hi\n")

	select {
	case got := <-received:
		if string(got) != "hi\n" {
			t.Errorf("peer received %q, want %q", got, "hi\n")
		}
	case <-time.After(3 * time.Second):
		t.Fatal("peer never received the line")
	}

	if err := waitErr(t, clientErr, "client"); err != nil {
		t.Errorf("client returned error: %v", err)
	}
}

// TestConnectMode_LocalEOFDoesNotEndSession verifies end of local
// input is non-terminating: the undelimited tail is flushed and the
// relay keeps displaying peer data until the peer closes.
func TestConnectMode_LocalEOFDoesNotEndSession(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer ln.Close()

	received := make(chan []byte, 1)
	go func() {
		c, err := ln.Accept()
		if err != nil {
			return
		}
		buf := make([]byte, 16)
		n, _ := io.ReadAtLeast(c, buf, 7)
		received <- buf[:n]
		// The client already saw local EOF; it must still be here.
		time.Sleep(200 * time.Millisecond)
		c.Write([]byte("bye\n")) //nolint:errcheck
		c.Close()
	}()

	in := newStubInput()
	out, cancel, clientErr := startConnectMode(t, ln.Addr().String(), framing.Line, in)
	defer cancel()

	time.Sleep(100 * time.Millisecond)
	in.send("partial") // no linefeed
	in.eof()

	select {
	case got := <-received:
		if string(got) != "partial" {
			t.Errorf("peer received %q, want %q", got, "partial")
		}
	case <-time.After(3 * time.Second):
		t.Fatal("flushed tail never arrived")
	}

	if err := waitErr(t, clientErr, "client"); err != nil {
		t.Errorf("client returned error: %v", err)
	}
	if got := out.String(); got != "bye\n" {
		t.Errorf("displayed %q, want %q", got, "bye\n")
	}
}

// TestConnectMode_CharEcho verifies raw-mode echo: a transmitted byte
// is written to the local display because the OS no longer echoes it.
func TestConnectMode_CharEcho(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer ln.Close()

	go func() {
		c, err := ln.Accept()
		if err != nil {
			return
		}
		buf := make([]byte, 1)
		io.ReadFull(c, buf) //nolint:errcheck
		c.Close()
	}()

	in := newStubInput()
	in.echo = true
	out, cancel, clientErr := startConnectMode(t, ln.Addr().String(), framing.Char, in)
	defer cancel()

	time.Sleep(100 * time.Millisecond)
	in.send("h")

	if err := waitErr(t, clientErr, "client"); err != nil {
		t.Errorf("client returned error: %v", err)
	}
	if got := out.String(); got != "h" {
		t.Errorf("echo output = %q, want %q", got, "h")
	}
}

func TestConnectMode_DialFailure(t *testing.T) {
	port, err := util.FindFreePort()
	if err != nil {
		t.Fatal(err)
	}

	m := &ConnectMode{
		Dialer:  &transport.TCPDialer{Timeout: time.Second},
		Address: util.FormatAddr("127.0.0.1", port),
		Mode:    framing.Line,
		Logger:  util.NewLogger(0),
		Metrics: metrics.New(),
		Input:   newStubInput(),
		Stdout:  &bytes.Buffer{},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := m.Run(ctx); err == nil {
		t.Error("expected dial failure")
	}
}
