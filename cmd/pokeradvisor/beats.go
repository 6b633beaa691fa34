package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss/table"
	"github.com/lox/pokeradvisor/internal/tui"
	"github.com/lox/pokeradvisor/poker"
	"github.com/lox/pokeradvisor/sdk/analysis"
)

// BeatsCmd enumerates the opponent holdings ahead of a hand
type BeatsCmd struct {
	Hand    string `arg:"" help:"Hole cards, e.g. AhKd"`
	Board   string `arg:"" help:"Board cards, at least a flop, e.g. Kc7d2s"`
	Variant string `default:"texasHoldem" enum:"texasHoldem,omaha,omahaHiLo,shortDeck" help:"Game variant"`
	Limit   int    `default:"10" help:"Maximum hand categories to show"`
	JSON    bool   `name:"json" help:"Print the full result as JSON"`
}

func (c *BeatsCmd) Run(g *Globals) error {
	cfg, err := g.loadConfig()
	if err != nil {
		return err
	}
	logger := g.newLogger(cfg)

	v, err := poker.ParseVariant(c.Variant)
	if err != nil {
		return err
	}
	holeCodes, err := tui.SplitCards(c.Hand)
	if err != nil {
		return fmt.Errorf("hand: %w", err)
	}
	boardCodes, err := tui.SplitCards(c.Board)
	if err != nil {
		return fmt.Errorf("board: %w", err)
	}
	hole, board, err := poker.ParseHoleAndBoard(v, holeCodes, boardCodes)
	if err != nil {
		return err
	}
	if len(board) < 3 {
		return fmt.Errorf("what beats me needs at least a flop, got %d board cards", len(board))
	}

	ctx, cancel := signalContext(logger)
	defer cancel()

	wb, err := analysis.AnalyzeWhatBeatsMe(ctx, hole, board, analysis.WithVariant(v))
	if err != nil {
		return err
	}

	out := g.stdout()
	if c.JSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(wb)
	}

	fmt.Fprintf(out, "%s  %s on %s\n\n",
		titleStyle.Render(poker.HandName(v, hole, board)),
		tui.FormatCards(hole), tui.FormatCards(board))
	if wb.TotalBeating == 0 {
		fmt.Fprintf(out, "Nothing beats you: 0 of %d holdings are ahead.\n", wb.TotalPossible)
		return nil
	}
	fmt.Fprintln(out, beatsTable(wb, c.Limit).Render())
	fmt.Fprintf(out, "Beaten by %d of %d holdings (%s)\n", wb.TotalBeating, wb.TotalPossible, pct(wb.BeatingProbability))
	return nil
}

// beatsTable lists at most limit beating groups.
func beatsTable(wb analysis.WhatBeatsMe, limit int) *table.Table {
	t := newTable("Beaten by", "Combos", "Probability", "Examples")
	for i, g := range wb.Groups {
		if limit > 0 && i >= limit {
			break
		}
		examples := make([]string, len(g.Examples))
		for j, ex := range g.Examples {
			examples[j] = poker.FormatCards(ex)
		}
		t.Row(g.Name, fmt.Sprintf("%d", g.Combos), pct(g.Probability), strings.Join(examples, ", "))
	}
	return t
}
