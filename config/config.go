// Package config defines the runtime configuration for gochat and
// provides helpers for parsing and validating ports and framing modes.
package config

import (
	"fmt"
	"strconv"
	"time"
)

// Config holds every tuneable for a single gochat run.
type Config struct {
	// ── Connection ───────────────────────────────────────────────────
	Host      string // remote host (connect mode)
	Port      int    // remote port (connect mode)
	LocalPort int    // -p: listening port (listen mode) or source port (connect mode)
	Listen    bool
	Timeout   time.Duration // dial timeout, 0 = OS default

	// ── Framing ──────────────────────────────────────────────────────
	Mode string // "line" or "char"; fixed for the run, never negotiated

	// ── Output ───────────────────────────────────────────────────────
	Verbose int
}

// ParsePort parses a decimal port number in 1..65535.
func ParsePort(spec string) (int, error) {
	port, err := strconv.Atoi(spec)
	if err != nil {
		return 0, fmt.Errorf("invalid port %q", spec)
	}
	if port < 1 || port > 65535 {
		return 0, fmt.Errorf("port %d out of range 1-65535", port)
	}
	return port, nil
}

// ValidMode reports whether s names a framing mode.
func ValidMode(s string) bool {
	return s == ModeLine || s == ModeChar
}

// Validate checks that the configuration is internally consistent.
func (c *Config) Validate() error {
	if !ValidMode(c.Mode) {
		return fmt.Errorf("invalid mode %q – use %q or %q", c.Mode, ModeLine, ModeChar)
	}

	if c.Listen {
		if c.LocalPort == 0 {
			return fmt.Errorf("listen mode requires -p <port>")
		}
		if c.LocalPort < 1 || c.LocalPort > 65535 {
			return fmt.Errorf("port %d out of range 1-65535", c.LocalPort)
		}
		if c.Host != "" || c.Port != 0 {
			return fmt.Errorf("listen mode takes no destination host/port")
		}
		return nil
	}

	if c.Host == "" {
		return fmt.Errorf("hostname is required (use --help for usage)")
	}
	if c.Port == 0 {
		return fmt.Errorf("destination port is required")
	}
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range 1-65535", c.Port)
	}
	if c.LocalPort < 0 || c.LocalPort > 65535 {
		return fmt.Errorf("source port %d out of range 1-65535", c.LocalPort)
	}
	return nil
}
