package core

import (
	"fmt"

	"gochat/config"
	"gochat/internal/framing"
	"gochat/internal/metrics"
	"gochat/internal/transport"
	"gochat/util"
)

// Build constructs the appropriate Mode from the given configuration.
// This is the single dispatch point between the CLI and the relay
// core.
func Build(cfg *config.Config, logger *util.Logger, collector *metrics.Collector) (Mode, error) {
	fmode, err := framing.ParseMode(cfg.Mode)
	if err != nil {
		return nil, err
	}

	if cfg.Listen {
		return &ListenMode{
			Address: fmt.Sprintf(":%d", cfg.LocalPort),
			Mode:    fmode,
			Logger:  logger,
			Metrics: collector,
		}, nil
	}

	return &ConnectMode{
		Dialer: &transport.TCPDialer{
			Timeout:   cfg.Timeout,
			LocalPort: cfg.LocalPort,
		},
		Address: util.FormatAddr(cfg.Host, cfg.Port),
		Mode:    fmode,
		Logger:  logger,
		Metrics: collector,
	}, nil
}
