// Package cmd wires up the CLI flags and dispatches to the relay core.
package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	flag "github.com/spf13/pflag"

	"gochat/config"
	"gochat/internal/core"
	"gochat/internal/metrics"
	"gochat/util"
)

// version is overridable at link time:
//
//	go build -ldflags "-X gochat/cmd.version=2.0.0"
var version = "1.0.0" //nolint:gochecknoglobals

// Execute parses args and runs the appropriate gochat role.
func Execute(ctx context.Context, args []string) error {
	cfg := &config.Config{Mode: config.DefaultMode, Timeout: config.DefaultConnTimeout}
	config.LoadFromEnv(cfg)

	fs := flag.NewFlagSet("gochat", flag.ContinueOnError)

	// ── connection ───────────────────────────────────────────────
	fs.BoolVarP(&cfg.Listen, "listen", "l", cfg.Listen, "Listen mode")
	fs.IntVarP(&cfg.LocalPort, "port", "p", cfg.LocalPort, "Local port number")

	var timeoutSec int
	fs.IntVarP(&timeoutSec, "timeout", "w", 0, "Dial timeout in seconds")

	// ── framing ──────────────────────────────────────────────────
	fs.StringVarP(&cfg.Mode, "mode", "m", cfg.Mode,
		"Framing mode: \"line\" (send on Enter) or \"char\" (send as you type)")

	// ── output ───────────────────────────────────────────────────
	fs.CountVarP(&cfg.Verbose, "verbose", "v", "Increase verbosity (repeatable)")

	var showVersion, showHelp, dryRun bool
	fs.BoolVar(&showVersion, "version", false, "Print version and exit")
	fs.BoolVarP(&showHelp, "help", "h", false, "Show this help")
	fs.BoolVar(&dryRun, "dry-run", false, "Validate configuration and exit")

	fs.Usage = func() { printUsage(fs) }

	// ── parse ────────────────────────────────────────────────────
	if err := fs.Parse(args); err != nil {
		return err
	}

	if showHelp || len(args) == 0 {
		printUsage(fs)
		return nil
	}
	if showVersion {
		fmt.Printf("gochat %s\n", version)
		return nil
	}

	if timeoutSec > 0 {
		cfg.Timeout = time.Duration(timeoutSec) * time.Second
	}

	// ── positional arguments ─────────────────────────────────────
	if err := parsePositional(cfg, fs.Args()); err != nil {
		return err
	}

	// ── validate ─────────────────────────────────────────────────
	if err := cfg.Validate(); err != nil {
		return err
	}

	// ── build components ─────────────────────────────────────────
	logger := util.NewLogger(cfg.Verbose)
	collector := metrics.New()

	mode, err := core.Build(cfg, logger, collector)
	if err != nil {
		return err
	}
	if dryRun {
		logger.Verbose("configuration valid (dry run)")
		return nil
	}
	return mode.Run(ctx)
}

// ── helpers ──────────────────────────────────────────────────────────

func parsePositional(cfg *config.Config, remaining []string) error {
	if cfg.Listen {
		if len(remaining) > 0 {
			return fmt.Errorf("listen mode takes no positional arguments (got %q)", remaining[0])
		}
		return nil
	}

	// Connect mode: HOST PORT
	if len(remaining) < 1 {
		return fmt.Errorf("hostname required (use --help for usage)")
	}
	cfg.Host = remaining[0]

	if len(remaining) < 2 {
		return fmt.Errorf("port required")
	}
	if len(remaining) > 2 {
		return fmt.Errorf("too many arguments (got %q)", remaining[2])
	}

	port, err := config.ParsePort(remaining[1])
	if err != nil {
		return fmt.Errorf("port: %w", err)
	}
	cfg.Port = port
	return nil
}

func printUsage(fs *flag.FlagSet) {
	fmt.Fprintf(os.Stderr, `gochat – two-party interactive TCP relay v%s

One side listens, the other connects; what you type goes to the peer,
what the peer sends shows up locally.  One peer at a time.

Usage:
  gochat [options] <host> <port>              Connect to a peer
  gochat -l -p <port> [options]               Listen for a peer

Options:
`, version)
	fs.PrintDefaults()
	fmt.Fprintf(os.Stderr, `
Examples:
  gochat -l -p 5000                           Listen on 5000, char mode
  gochat -l -p 5000 -m line                   Listen, send on Enter
  gochat 192.0.2.10 5000                      Connect, char mode
  gochat -v -m line 192.0.2.10 5000           Connect, line mode, verbose
`)
}
