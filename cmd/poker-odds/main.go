package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/lox/pokeradvisor/internal/randutil"
	"github.com/lox/pokeradvisor/internal/tui"
	"github.com/lox/pokeradvisor/poker"
	"github.com/lox/pokeradvisor/sdk/analysis"
)

type CLI struct {
	Hands         []string `arg:"" help:"Hands to evaluate, e.g. 'AcKd QhJs' (space separated)" required:"true"`
	Board         string   `short:"b" help:"Community board cards (e.g., 'Td7s8h')"`
	Variant       string   `default:"texasHoldem" enum:"texasHoldem,omaha,omahaHiLo,shortDeck" help:"Game variant"`
	Opponents     int      `short:"o" default:"1" help:"Random opponents each hand plays against"`
	Possibilities bool     `short:"p" help:"Show detailed hand type probabilities"`
	Iterations    int      `short:"i" help:"Number of Monte Carlo iterations" default:"100000"`
	Seed          *int64   `help:"Random seed for reproducible results"`
}

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Padding(0, 1)

	cellStyle = lipgloss.NewStyle().Padding(0, 1)

	winStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("10")).
			Padding(0, 1)

	tieStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("11")).
			Padding(0, 1)
)

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("poker-odds"),
		kong.Description("Equity of one or more hands against random opponents"),
		kong.UsageOnError(),
	)

	if err := run(context.Background(), cli, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		ctx.Exit(1)
	}
}

// HandResult is the simulation for one hand.
type HandResult struct {
	Hand   []poker.Card
	Equity analysis.EquityResult
	Odds   []analysis.HandOdds
}

func run(ctx context.Context, cli CLI, out io.Writer) error {
	v, err := poker.ParseVariant(cli.Variant)
	if err != nil {
		return err
	}
	hands, board, err := parseHands(v, cli.Hands, cli.Board)
	if err != nil {
		return err
	}

	rng := randutil.FromOptional(cli.Seed)
	start := time.Now()
	results := make([]HandResult, len(hands))
	for i, hand := range hands {
		opts := []analysis.Option{
			analysis.WithVariant(v),
			analysis.WithOpponents(cli.Opponents),
			analysis.WithTrials(cli.Iterations),
			analysis.WithRNG(rng),
		}
		eq, err := analysis.CalculateEquity(ctx, hand, board, opts...)
		if err != nil {
			return fmt.Errorf("hand %d: %w", i+1, err)
		}
		results[i] = HandResult{Hand: hand, Equity: eq}
		if cli.Possibilities {
			if results[i].Odds, err = analysis.CalculateHandOdds(ctx, hand, board, opts...); err != nil {
				return fmt.Errorf("hand %d: %w", i+1, err)
			}
		}
	}

	displayResults(out, results, board, cli.Opponents, cli.Iterations, time.Since(start))
	return nil
}

// parseHands parses each hand against the shared board.
func parseHands(v poker.Variant, handStrings []string, boardString string) ([][]poker.Card, []poker.Card, error) {
	boardCodes, err := tui.SplitCards(boardString)
	if err != nil {
		return nil, nil, fmt.Errorf("board: %w", err)
	}

	var hands [][]poker.Card
	var board []poker.Card
	for i, handStr := range handStrings {
		codes, err := tui.SplitCards(handStr)
		if err != nil {
			return nil, nil, fmt.Errorf("hand %d: %w", i+1, err)
		}
		hole, b, err := poker.ParseHoleAndBoard(v, codes, boardCodes)
		if err != nil {
			return nil, nil, fmt.Errorf("hand %d: %w", i+1, err)
		}
		hands = append(hands, hole)
		board = b
	}
	return hands, board, nil
}

func displayResults(out io.Writer, results []HandResult, board []poker.Card, opponents, iterations int, duration time.Duration) {
	if len(board) > 0 {
		fmt.Fprintf(out, "%s %s\n\n", headerStyle.Render("board"), tui.FormatCards(board))
	}

	t := table.New().
		Border(lipgloss.HiddenBorder()).
		Headers("hand", "win", "tie", "equity").
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col == 1:
				return winStyle
			case col == 2:
				return tieStyle
			}
			return cellStyle
		})
	for _, r := range results {
		t.Row(poker.FormatCards(r.Hand), pct(r.Equity.WinRate()), pct(r.Equity.TieRate()), pct(r.Equity.Equity()))
	}
	fmt.Fprintln(out, t.Render())

	if len(results) > 0 && results[0].Odds != nil {
		fmt.Fprintln(out, possibilitiesTable(results).Render())
	}

	fmt.Fprintf(out, "\n%d iterations against %d opponent(s) in %v\n", iterations, opponents, duration.Truncate(time.Millisecond))
}

// possibilitiesTable shows final hand category odds, one column per hand.
func possibilitiesTable(results []HandResult) *table.Table {
	headers := []string{"hand"}
	for _, r := range results {
		headers = append(headers, poker.FormatCards(r.Hand))
	}
	t := table.New().
		Border(lipgloss.HiddenBorder()).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})

	for i := len(poker.HandTypes) - 1; i >= 0; i-- {
		ht := poker.HandTypes[i]
		row := []string{ht.String()}
		seen := false
		for _, r := range results {
			cell := "."
			for _, o := range r.Odds {
				if o.HandType == ht {
					cell = pct(o.Probability)
					seen = true
				}
			}
			row = append(row, cell)
		}
		if seen {
			t.Row(row...)
		}
	}
	return t
}

func pct(v float64) string {
	return fmt.Sprintf("%.1f%%", v*100)
}
