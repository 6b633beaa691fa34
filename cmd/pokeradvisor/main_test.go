package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/lox/pokeradvisor/internal/config"
	"github.com/lox/pokeradvisor/poker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testGlobals(t *testing.T, out *bytes.Buffer) *Globals {
	t.Helper()
	seed := int64(5)
	return &Globals{
		Config:   filepath.Join(t.TempDir(), "missing.hcl"),
		LogLevel: "error",
		NoColor:  true,
		Trials:   300,
		Seed:     &seed,
		Range:    config.RangeRandom,
		Stdout:   out,
	}
}

func float(v float64) *float64 { return &v }

func TestParseCommands(t *testing.T) {
	t.Parallel()
	var cli CLI
	parser, err := kong.New(&cli, kong.Vars{"version": "test"}, kong.Exit(func(int) { t.Fatal("unexpected exit") }))
	require.NoError(t, err)

	ctx, err := parser.Parse([]string{"analyze", "AhKd", "Kc7d2s", "--pot", "100", "--call", "25", "--gto", "--trials", "2000"})
	require.NoError(t, err)
	assert.Equal(t, "analyze <hand> <board>", ctx.Command())
	assert.Equal(t, "AhKd", cli.Analyze.Hand)
	assert.Equal(t, "Kc7d2s", cli.Analyze.Board)
	assert.Equal(t, "texasHoldem", cli.Analyze.Variant)
	require.NotNil(t, cli.Analyze.Pot)
	assert.Equal(t, 100.0, *cli.Analyze.Pot)
	assert.True(t, cli.Analyze.GTO)
	assert.Equal(t, 2000, cli.Trials)

	_, err = parser.Parse([]string{"analyze", "AhKd", "--variant", "razz"})
	assert.Error(t, err)
}

func TestConfigOverrides(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "pokeradvisor.hcl")
	require.NoError(t, os.WriteFile(path, []byte(`
server {
  port = 9000
}

engine {
  equity_trials = 300
  opponents     = 2
}
`), 0o644))

	g := &Globals{Config: path}
	cfg, err := g.loadConfig()
	require.NoError(t, err)
	assert.Equal(t, 300, cfg.Engine.EquityTrials)
	assert.Equal(t, 2, cfg.Engine.Opponents)

	seed := int64(9)
	g = &Globals{Config: path, Trials: 400, Seed: &seed, Range: "random", LogFormat: "json"}
	serve := &ServeCmd{Port: 9100, AccessLog: "-", RecognizerURL: "http://localhost:9200"}
	cfg, err = g.loadConfig(serve.apply)
	require.NoError(t, err)
	assert.Equal(t, 400, cfg.Engine.EquityTrials)
	assert.Equal(t, 2, cfg.Engine.Opponents)
	assert.Equal(t, &seed, cfg.Engine.Seed)
	assert.Equal(t, "random", cfg.Engine.OpponentRange)
	assert.Equal(t, "json", cfg.Server.LogFormat)
	assert.Equal(t, "localhost:9100", cfg.Address())
	assert.Equal(t, "-", cfg.Server.AccessLog)
	assert.Equal(t, "http://localhost:9200", cfg.Collaborators.RecognizerURL)

	g = &Globals{Config: path, Opponents: 12}
	_, err = g.loadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "opponents")

	serve = &ServeCmd{ExplainerURL: "ftp://nope"}
	_, err = (&Globals{Config: path}).loadConfig(serve.apply)
	assert.Error(t, err)
}

func TestCollaboratorOptions(t *testing.T) {
	t.Parallel()
	cfg := config.Default()
	opts, err := collaboratorOptions(cfg, nil)
	require.NoError(t, err)
	assert.Empty(t, opts)

	cfg.Collaborators.RecognizerURL = "http://localhost:1/read"
	cfg.Collaborators.ExplainerURL = "http://localhost:1/explain"
	opts, err = collaboratorOptions(cfg, nil)
	require.NoError(t, err)
	assert.Len(t, opts, 2)
}

// The command tests share lipgloss's global colour profile so they do not
// run in parallel.

func TestAnalyzeCommand(t *testing.T) {
	var out bytes.Buffer
	cmd := &AnalyzeCmd{
		Hand:    "AsKd",
		Board:   "Kc7d2s",
		Variant: "texasHoldem",
		Pot:     float(100),
		Call:    float(50),
	}
	require.NoError(t, cmd.Run(testGlobals(t, &out)))

	text := out.String()
	assert.Contains(t, text, "Texas Hold'em, flop")
	assert.Contains(t, text, "Pair of Kings")
	assert.Contains(t, text, "33.3% (2.0:1)")
	assert.Contains(t, text, "Beaten by")
	assert.Contains(t, text, "Reasoning")
}

func TestAnalyzeCommandJSON(t *testing.T) {
	var out bytes.Buffer
	cmd := &AnalyzeCmd{Hand: "7h8h", Board: "Th9h2c", Variant: "texasHoldem", JSON: true}
	require.NoError(t, cmd.Run(testGlobals(t, &out)))

	var got map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.Equal(t, "flop", got["street"])
	assert.Equal(t, "texasHoldem", got["variant"])
	assert.Nil(t, got["potOdds"])
	assert.NotEmpty(t, got["outs"])
}

func TestAnalyzeCommandExplainFallsBackToTemplate(t *testing.T) {
	var out bytes.Buffer
	cmd := &AnalyzeCmd{Hand: "7h8h", Board: "Th9h2c", Variant: "texasHoldem", JSON: true, Explain: true}
	require.NoError(t, cmd.Run(testGlobals(t, &out)))

	var got map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.NotEmpty(t, got["explanation"])
}

func TestAnalyzeCommandErrors(t *testing.T) {
	var out bytes.Buffer

	err := (&AnalyzeCmd{Hand: "AhAh", Board: "Kc7d2s", Variant: "texasHoldem"}).Run(testGlobals(t, &out))
	var verr *poker.ValidationError
	assert.ErrorAs(t, err, &verr)

	err = (&AnalyzeCmd{Hand: "AhK", Variant: "texasHoldem"}).Run(testGlobals(t, &out))
	assert.ErrorContains(t, err, "hand:")
	assert.Empty(t, out.String())
}

func TestBeatsCommand(t *testing.T) {
	var out bytes.Buffer
	cmd := &BeatsCmd{Hand: "AsKd", Board: "Kc7d2s", Variant: "texasHoldem", Limit: 3}
	require.NoError(t, cmd.Run(testGlobals(t, &out)))

	text := out.String()
	assert.Contains(t, text, "Pair of Kings")
	assert.Contains(t, text, "of 1081 holdings")
	assert.Contains(t, text, "Examples")

	out.Reset()
	cmd.JSON = true
	require.NoError(t, cmd.Run(testGlobals(t, &out)))
	var got map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.Equal(t, 1081.0, got["totalPossibleCombos"])

	// Royal flush on the board: nothing is ahead.
	out.Reset()
	cmd = &BeatsCmd{Hand: "2c3d", Board: "AsKsQsJsTs", Variant: "texasHoldem"}
	require.NoError(t, cmd.Run(testGlobals(t, &out)))
	assert.Contains(t, out.String(), "Nothing beats you")

	assert.Error(t, (&BeatsCmd{Hand: "AsKd", Variant: "texasHoldem"}).Run(testGlobals(t, &out)))
}
