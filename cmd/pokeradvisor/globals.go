package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/lox/pokeradvisor/internal/analyzer"
	"github.com/lox/pokeradvisor/internal/config"
	"github.com/muesli/termenv"
	"github.com/rs/zerolog"
)

// loadConfig reads the config file and applies the global flags, then any
// command specific overrides, on top.
func (g *Globals) loadConfig(overrides ...func(*config.Config)) (*config.Config, error) {
	cfg, err := config.Load(g.Config)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", g.Config, err)
	}
	g.applyOverrides(cfg)
	for _, o := range overrides {
		o(cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (g *Globals) applyOverrides(cfg *config.Config) {
	if g.LogLevel != "" {
		cfg.Server.LogLevel = g.LogLevel
	}
	if g.LogFormat != "" {
		cfg.Server.LogFormat = g.LogFormat
	}
	if g.Trials > 0 {
		cfg.Engine.EquityTrials = g.Trials
	}
	if g.Opponents > 0 {
		cfg.Engine.Opponents = g.Opponents
	}
	if g.Workers > 0 {
		cfg.Engine.Workers = g.Workers
	}
	if g.Seed != nil {
		cfg.Engine.Seed = g.Seed
	}
	if g.Range != "" {
		cfg.Engine.OpponentRange = g.Range
	}
}

func (g *Globals) stdout() io.Writer {
	if g.Stdout == nil {
		return os.Stdout
	}
	return g.Stdout
}

// colorProfile picks the terminal profile, honouring --no-color and NO_COLOR.
func (g *Globals) colorProfile() termenv.Profile {
	if g.NoColor || os.Getenv("NO_COLOR") != "" {
		return termenv.Ascii
	}
	return termenv.EnvColorProfile()
}

// newLogger builds the application logger on stderr.
func (g *Globals) newLogger(cfg *config.Config) *log.Logger {
	level, err := log.ParseLevel(cfg.Server.LogLevel)
	if err != nil {
		level = log.InfoLevel
	}

	logger := log.NewWithOptions(os.Stderr, log.Options{
		Level:           level,
		ReportTimestamp: true,
		TimeFormat:      time.Kitchen,
		Prefix:          "pokeradvisor",
	})
	switch cfg.Server.LogFormat {
	case "json":
		logger.SetFormatter(log.JSONFormatter)
	case "logfmt":
		logger.SetFormatter(log.LogfmtFormatter)
	}

	profile := g.colorProfile()
	logger.SetColorProfile(profile)
	lipgloss.SetColorProfile(profile)
	return logger
}

// newAnalyzer builds the analyzer from the engine settings.
func newAnalyzer(cfg *config.Config, logger *log.Logger) (*analyzer.Analyzer, error) {
	ranges, err := cfg.Engine.Ranges()
	if err != nil {
		return nil, err
	}
	timeout, err := cfg.RequestTimeout()
	if err != nil {
		return nil, err
	}
	return analyzer.New(analyzer.Options{
		EquityTrials:   cfg.Engine.EquityTrials,
		HandOddsTrials: cfg.Engine.HandOddsTrials,
		Opponents:      cfg.Engine.Opponents,
		Workers:        cfg.Engine.Workers,
		Seed:           cfg.Engine.Seed,
		Ranges:         ranges,
		Timeout:        timeout,
		Logger:         logger,
	}), nil
}

// newAccessLogger opens the HTTP access log. An empty path disables it and
// "-" writes JSON lines to stdout.
func newAccessLogger(path string) (zerolog.Logger, io.Closer, error) {
	switch path {
	case "":
		return zerolog.Nop(), nopCloser{}, nil
	case "-":
		return zerolog.New(os.Stdout).Level(zerolog.InfoLevel).With().Timestamp().Logger(), nopCloser{}, nil
	}

	zerolog.TimeFieldFormat = time.RFC3339Nano
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("opening access log: %w", err)
	}
	return zerolog.New(f).Level(zerolog.InfoLevel).With().Timestamp().Logger(), f, nil
}

// signalContext is cancelled on interrupt or SIGTERM.
func signalContext(logger *log.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-sigChan:
			logger.Info("Received signal, shutting down gracefully", "signal", sig.String())
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigChan)
	}()

	return ctx, cancel
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
