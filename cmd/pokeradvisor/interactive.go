package main

import (
	"fmt"
	"io"
	"os"

	"github.com/lox/pokeradvisor/internal/tui"
)

// InteractiveCmd runs the terminal UI
type InteractiveCmd struct {
	DebugLog string `help:"Write debug logs to this file while the UI owns the terminal"`
}

func (c *InteractiveCmd) Run(g *Globals) error {
	cfg, err := g.loadConfig()
	if err != nil {
		return err
	}

	logger := g.newLogger(cfg)
	logger.SetOutput(io.Discard)
	if c.DebugLog != "" {
		f, err := os.OpenFile(c.DebugLog, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
		if err != nil {
			return fmt.Errorf("failed to create debug log: %w", err)
		}
		defer func() { _ = f.Close() }()
		logger.SetOutput(f)
	}
	logger.Info("Starting interactive analyzer", "config", g.Config)

	a, err := newAnalyzer(cfg, logger)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext(logger)
	defer cancel()
	return tui.Run(ctx, a, logger)
}
