package main

import (
	"io"
	"os"

	"github.com/alecthomas/kong"
)

// version is set by ldflags during build
var version = "dev"

type CLI struct {
	Globals

	Version     kong.VersionFlag `short:"v" help:"Show version"`
	Serve       ServeCmd         `cmd:"" help:"Run the HTTP and WebSocket advisor API"`
	Analyze     AnalyzeCmd       `cmd:"" help:"Analyze a single hand"`
	Interactive InteractiveCmd   `cmd:"" help:"Analyze hands in an interactive terminal UI"`
	Beats       BeatsCmd         `cmd:"" help:"List the opponent holdings that beat a hand"`
}

// Globals are the flags shared by every command. Engine flags override the
// config file when set.
type Globals struct {
	Config    string `help:"Path to the HCL config file" default:"pokeradvisor.hcl" env:"POKERADVISOR_CONFIG"`
	LogLevel  string `help:"Log level (debug, info, warn, error)" env:"POKERADVISOR_LOG_LEVEL"`
	LogFormat string `help:"Log format (text, json, logfmt)"`
	NoColor   bool   `help:"Disable colour output"`

	Trials    int    `help:"Monte Carlo equity trials"`
	Opponents int    `help:"Number of opponents"`
	Workers   int    `help:"Simulation workers per analysis (0 = GOMAXPROCS)"`
	Seed      *int64 `help:"Deterministic RNG seed"`
	Range     string `help:"Opponent range: default, random or range notation like 'QQ+,AKs'"`

	Stdout io.Writer `kong:"-"`
}

func main() {
	cli := CLI{Globals: Globals{Stdout: os.Stdout}}
	ctx := kong.Parse(&cli,
		kong.Name("pokeradvisor"),
		kong.Description("Poker decision support: equity, outs, pot odds and action advice"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		},
		kong.Bind(&cli.Globals),
	)
	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}
