package config

import "time"

// ── Default values ───────────────────────────────────────────────────
//
// All tuneable defaults live here so they are easy to audit and reuse
// across CLI flags and environment variable loading.

const (
	// ModeLine sends complete linefeed-terminated lines.
	ModeLine = "line"

	// ModeChar sends every byte as it is typed.
	ModeChar = "char"

	// DefaultMode is the framing mode when none is selected.
	DefaultMode = ModeChar

	// DefaultConnTimeout is the dial timeout applied when -w is not
	// given.  Zero means the operating system default.
	DefaultConnTimeout = 0 * time.Second
)
