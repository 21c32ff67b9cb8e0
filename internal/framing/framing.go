// Package framing turns a TCP byte stream back into the units the
// relay works with.  TCP gives no message boundaries: a line typed on
// one end may arrive split across several reads, or several lines may
// arrive glued together.  The Reassembler buffers partial data and
// emits only complete frames.
//
// Two framing disciplines exist.  In line mode a frame is everything
// up to and including a linefeed (0x0A).  In char mode every byte is
// its own frame and nothing is ever buffered.
package framing

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"
)

// Mode selects the framing discipline for a run.  It is fixed at
// startup and never negotiated with the peer; both endpoints must
// agree out of band.
type Mode int

const (
	// Line frames on linefeed bytes, delimiter included.
	Line Mode = iota
	// Char treats every byte as a complete frame.
	Char
)

// String returns the CLI spelling of the mode.
func (m Mode) String() string {
	switch m {
	case Line:
		return "line"
	case Char:
		return "char"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode converts a CLI selector into a Mode.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "line":
		return Line, nil
	case "char":
		return Char, nil
	default:
		return 0, fmt.Errorf("invalid mode %q – expected \"line\" or \"char\"", s)
	}
}

// delimiter is the line-mode frame terminator.
const delimiter = '\n'

// Reassembler accumulates stream bytes and extracts complete frames.
// It is not safe for concurrent use; each direction of a session gets
// its own instance and instances are never reused across sessions.
type Reassembler struct {
	mode Mode
	buf  []byte
}

// NewReassembler returns an empty Reassembler for the given mode.
func NewReassembler(mode Mode) *Reassembler {
	return &Reassembler{mode: mode}
}

// Mode returns the framing discipline this Reassembler applies.
func (r *Reassembler) Mode() Mode { return r.mode }

// Feed appends data to the buffer and returns every complete frame now
// available, in stream order.  Unconsumed trailing bytes are never
// discarded; a partial line stays buffered until a later Feed (or
// Flush) completes it.  The returned frames alias freshly copied
// memory and remain valid after the next call.
func (r *Reassembler) Feed(data []byte) [][]byte {
	if len(data) == 0 {
		return nil
	}

	if r.mode == Char {
		// Pass-through: one frame per byte, no delimiter scanning.
		frames := make([][]byte, len(data))
		for i, b := range data {
			frames[i] = []byte{b}
		}
		return frames
	}

	r.buf = append(r.buf, data...)

	var frames [][]byte
	for {
		idx := bytes.IndexByte(r.buf, delimiter)
		if idx < 0 {
			break // no full line yet
		}
		frame := make([]byte, idx+1)
		copy(frame, r.buf[:idx+1])
		r.buf = r.buf[idx+1:]
		frames = append(frames, frame)
	}
	return frames
}

// Pending returns the number of buffered bytes awaiting a delimiter.
func (r *Reassembler) Pending() int { return len(r.buf) }

// Flush returns any buffered partial frame and resets the buffer.
// Used when local input ends without a trailing linefeed: the tail is
// transmitted as-is rather than silently dropped.
func (r *Reassembler) Flush() []byte {
	if len(r.buf) == 0 {
		return nil
	}
	tail := make([]byte, len(r.buf))
	copy(tail, r.buf)
	r.buf = r.buf[:0]
	return tail
}

// DecodeText renders frame bytes as displayable UTF-8.  Invalid bytes
// are each replaced with U+FFFD instead of failing — a display-only
// concern that never touches the byte-level framing used for
// retransmission.
func DecodeText(frame []byte) string {
	if utf8.Valid(frame) {
		return string(frame)
	}
	var sb strings.Builder
	sb.Grow(len(frame))
	for len(frame) > 0 {
		rn, size := utf8.DecodeRune(frame)
		if rn == utf8.RuneError && size == 1 {
			sb.WriteRune(utf8.RuneError)
		} else {
			sb.Write(frame[:size])
		}
		frame = frame[size:]
	}
	return sb.String()
}
