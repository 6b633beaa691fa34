package main

import (
	"github.com/charmbracelet/log"
	"github.com/lox/pokeradvisor/internal/config"
	"github.com/lox/pokeradvisor/internal/explain"
	"github.com/lox/pokeradvisor/internal/server"
	"github.com/lox/pokeradvisor/internal/vision"
)

// ServeCmd runs the advisor API
type ServeCmd struct {
	Addr           string   `help:"Listen host, overrides server.address"`
	Port           int      `help:"Listen port, overrides server.port"`
	AccessLog      string   `help:"Access log file, '-' for stdout, overrides server.access_log"`
	AllowedOrigins []string `help:"Allowed CORS and WebSocket origins, overrides server.allowed_origins"`
	RecognizerURL  string   `name:"recognizer-url" help:"Card recognition service URL"`
	ExplainerURL   string   `name:"explainer-url" help:"Explanation service URL"`
}

func (c *ServeCmd) apply(cfg *config.Config) {
	if c.Addr != "" {
		cfg.Server.Address = c.Addr
	}
	if c.Port != 0 {
		cfg.Server.Port = c.Port
	}
	if c.AccessLog != "" {
		cfg.Server.AccessLog = c.AccessLog
	}
	if len(c.AllowedOrigins) > 0 {
		cfg.Server.AllowedOrigins = c.AllowedOrigins
	}
	if c.RecognizerURL != "" {
		cfg.Collaborators.RecognizerURL = c.RecognizerURL
	}
	if c.ExplainerURL != "" {
		cfg.Collaborators.ExplainerURL = c.ExplainerURL
	}
}

func (c *ServeCmd) Run(g *Globals) error {
	cfg, err := g.loadConfig(c.apply)
	if err != nil {
		return err
	}

	logger := g.newLogger(cfg)
	a, err := newAnalyzer(cfg, logger)
	if err != nil {
		return err
	}

	access, closer, err := newAccessLogger(cfg.Server.AccessLog)
	if err != nil {
		return err
	}
	defer func() { _ = closer.Close() }()

	opts, err := collaboratorOptions(cfg, logger)
	if err != nil {
		return err
	}
	opts = append(opts,
		server.WithAccessLog(access),
		server.WithAllowedOrigins(cfg.Server.AllowedOrigins),
	)

	s, err := server.NewServer(a, logger, opts...)
	if err != nil {
		return err
	}

	logger.Info("Starting advisor server",
		"address", cfg.Address(),
		"equity_trials", cfg.Engine.EquityTrials,
		"opponents", cfg.Engine.Opponents,
		"opponent_range", cfg.Engine.OpponentRange,
		"recognizer", cfg.Collaborators.RecognizerURL != "",
		"explainer", cfg.Collaborators.ExplainerURL != "")

	ctx, cancel := signalContext(logger)
	defer cancel()
	return s.ListenAndServe(ctx, cfg.Address())
}

// collaboratorOptions wires the configured external services.
func collaboratorOptions(cfg *config.Config, logger *log.Logger) ([]server.Option, error) {
	timeout, err := cfg.CollaboratorTimeout()
	if err != nil {
		return nil, err
	}
	key := cfg.APIKey()

	var opts []server.Option
	if u := cfg.Collaborators.RecognizerURL; u != "" {
		reader := vision.NewHTTPReader(u, key, timeout, logger)
		opts = append(opts, server.WithRecognizer(vision.NewRecognizer(reader, logger)))
	}
	if u := cfg.Collaborators.ExplainerURL; u != "" {
		opts = append(opts, server.WithExplainer(explain.NewHTTPExplainer(u, key, timeout, logger)))
	}
	return opts, nil
}
