// Package config loads the advisor's HCL configuration file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/lox/pokeradvisor/poker"
	"github.com/lox/pokeradvisor/sdk/analysis"
)

// Opponent range modes accepted by engine.opponent_range besides explicit
// range notation.
const (
	RangeDefault = "default"
	RangeRandom  = "random"
)

// Config represents the complete advisor configuration
type Config struct {
	Server        *ServerSettings        `hcl:"server,block"`
	Engine        *EngineSettings        `hcl:"engine,block"`
	Collaborators *CollaboratorsSettings `hcl:"collaborators,block"`
}

// ServerSettings contains HTTP server configuration
type ServerSettings struct {
	Address        string   `hcl:"address,optional"`
	Port           int      `hcl:"port,optional"`
	LogLevel       string   `hcl:"log_level,optional"`
	LogFormat      string   `hcl:"log_format,optional"`
	AccessLog      string   `hcl:"access_log,optional"`
	RequestTimeout string   `hcl:"request_timeout,optional"`
	AllowedOrigins []string `hcl:"allowed_origins,optional"`
}

// EngineSettings tunes the simulations
type EngineSettings struct {
	EquityTrials   int    `hcl:"equity_trials,optional"`
	HandOddsTrials int    `hcl:"hand_odds_trials,optional"`
	Opponents      int    `hcl:"opponents,optional"`
	Workers        int    `hcl:"workers,optional"`
	Seed           *int64 `hcl:"seed,optional"`
	OpponentRange  string `hcl:"opponent_range,optional"`
}

// CollaboratorsSettings points at the external recognition and explanation
// services. Empty URLs disable them.
type CollaboratorsSettings struct {
	RecognizerURL string `hcl:"recognizer_url,optional"`
	ExplainerURL  string `hcl:"explainer_url,optional"`
	APIKeyEnv     string `hcl:"api_key_env,optional"`
	Timeout       string `hcl:"timeout,optional"`
}

// Default returns the configuration used when no file is present
func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

func (c *Config) applyDefaults() {
	if c.Server == nil {
		c.Server = &ServerSettings{}
	}
	if c.Engine == nil {
		c.Engine = &EngineSettings{}
	}
	if c.Collaborators == nil {
		c.Collaborators = &CollaboratorsSettings{}
	}

	if c.Server.Address == "" {
		c.Server.Address = "localhost"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.LogLevel == "" {
		c.Server.LogLevel = "info"
	}
	if c.Server.LogFormat == "" {
		c.Server.LogFormat = "text"
	}
	if c.Server.RequestTimeout == "" {
		c.Server.RequestTimeout = "15s"
	}
	if len(c.Server.AllowedOrigins) == 0 {
		c.Server.AllowedOrigins = []string{"*"}
	}

	if c.Engine.EquityTrials == 0 {
		c.Engine.EquityTrials = analysis.DefaultTrials
	}
	if c.Engine.HandOddsTrials == 0 {
		c.Engine.HandOddsTrials = 5000
	}
	if c.Engine.Opponents == 0 {
		c.Engine.Opponents = 1
	}
	if c.Engine.OpponentRange == "" {
		c.Engine.OpponentRange = RangeDefault
	}

	if c.Collaborators.APIKeyEnv == "" {
		c.Collaborators.APIKeyEnv = "POKERADVISOR_API_KEY"
	}
	if c.Collaborators.Timeout == "" {
		c.Collaborators.Timeout = "20s"
	}
}

// Load loads configuration from an HCL file. A missing file yields the
// defaults.
func Load(filename string) (*Config, error) {
	if _, err := os.Stat(filename); errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}
	return decode(file.Body)
}

// Parse parses configuration from HCL source. filename is only used in
// diagnostics.
func Parse(src []byte, filename string) (*Config, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL: %s", diags.Error())
	}
	return decode(file.Body)
}

func decode(body hcl.Body) (*Config, error) {
	var c Config
	if diags := gohcl.DecodeBody(body, nil, &c); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}
	c.applyDefaults()
	return &c, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}
	if _, err := log.ParseLevel(c.Server.LogLevel); err != nil {
		return fmt.Errorf("invalid log level %q", c.Server.LogLevel)
	}
	switch c.Server.LogFormat {
	case "text", "json", "logfmt":
	default:
		return fmt.Errorf("invalid log format %q", c.Server.LogFormat)
	}
	if _, err := c.RequestTimeout(); err != nil {
		return err
	}

	if c.Engine.EquityTrials < 100 {
		return fmt.Errorf("engine: equity_trials must be at least 100, got %d", c.Engine.EquityTrials)
	}
	if c.Engine.HandOddsTrials < 100 {
		return fmt.Errorf("engine: hand_odds_trials must be at least 100, got %d", c.Engine.HandOddsTrials)
	}
	if c.Engine.Opponents < 1 || c.Engine.Opponents > 9 {
		return fmt.Errorf("engine: opponents must be between 1 and 9, got %d", c.Engine.Opponents)
	}
	if c.Engine.Workers < 0 {
		return fmt.Errorf("engine: workers must not be negative")
	}
	if _, err := c.Engine.Ranges(); err != nil {
		return err
	}

	if _, err := c.CollaboratorTimeout(); err != nil {
		return err
	}
	for name, u := range map[string]string{
		"recognizer_url": c.Collaborators.RecognizerURL,
		"explainer_url":  c.Collaborators.ExplainerURL,
	} {
		if u != "" && !strings.HasPrefix(u, "http://") && !strings.HasPrefix(u, "https://") {
			return fmt.Errorf("collaborators: %s must be an http(s) URL, got %q", name, u)
		}
	}
	return nil
}

// Address returns the full listen address
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Address, c.Server.Port)
}

// RequestTimeout returns the per-request analysis budget.
func (c *Config) RequestTimeout() (time.Duration, error) {
	return parseDuration("server: request_timeout", c.Server.RequestTimeout)
}

// CollaboratorTimeout returns the timeout for external service calls.
func (c *Config) CollaboratorTimeout() (time.Duration, error) {
	return parseDuration("collaborators: timeout", c.Collaborators.Timeout)
}

// APIKey reads the collaborator API key from the configured environment
// variable.
func (c *Config) APIKey() string {
	return os.Getenv(c.Collaborators.APIKeyEnv)
}

// Ranges resolves opponent_range into a range per variant. A nil entry means
// opponents hold random cards.
func (e EngineSettings) Ranges() (map[poker.Variant]*analysis.Range, error) {
	ranges := make(map[poker.Variant]*analysis.Range, len(poker.Variants))
	switch e.OpponentRange {
	case RangeRandom:
		return ranges, nil
	case RangeDefault, "":
		for _, v := range poker.Variants {
			ranges[v] = analysis.DefaultRange(v)
		}
		return ranges, nil
	}

	r, err := analysis.ParseRange(e.OpponentRange)
	if err != nil {
		return nil, fmt.Errorf("engine: opponent_range: %w", err)
	}
	if r.Size() == 0 {
		return nil, fmt.Errorf("engine: opponent_range %q is empty", e.OpponentRange)
	}
	for _, v := range poker.Variants {
		if v.HoleCards() != 2 {
			continue
		}
		ranges[v] = r.Filter(func(h poker.Hand) bool {
			for _, c := range h.Cards() {
				if !v.ValidRank(c.Rank()) {
					return false
				}
			}
			return true
		})
	}
	return ranges, nil
}

func parseDuration(field, s string) (time.Duration, error) {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", field, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %s", field, s)
	}
	return d, nil
}
