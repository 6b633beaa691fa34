package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/lox/pokeradvisor/internal/analyzer"
	"github.com/lox/pokeradvisor/internal/explain"
	"github.com/lox/pokeradvisor/internal/tui"
)

// AnalyzeCmd analyzes one hand and prints the result
type AnalyzeCmd struct {
	Hand    string   `arg:"" help:"Hole cards, e.g. AhKd"`
	Board   string   `arg:"" optional:"" help:"Board cards, e.g. Kc7d2s"`
	Variant string   `default:"texasHoldem" enum:"texasHoldem,omaha,omahaHiLo,shortDeck" help:"Game variant"`
	Pot     *float64 `help:"Pot size before the call"`
	Call    *float64 `help:"Amount to call"`
	GTO     bool     `name:"gto" help:"Explain in GTO terms"`
	JSON    bool     `name:"json" help:"Print the full result as JSON"`
	Explain bool     `help:"Ask the configured explanation service for the explanation"`
}

func (c *AnalyzeCmd) request() (analyzer.Request, error) {
	hole, err := tui.SplitCards(c.Hand)
	if err != nil {
		return analyzer.Request{}, fmt.Errorf("hand: %w", err)
	}
	board, err := tui.SplitCards(c.Board)
	if err != nil {
		return analyzer.Request{}, fmt.Errorf("board: %w", err)
	}
	return analyzer.Request{
		HoleCards:    hole,
		BoardCards:   board,
		Variant:      c.Variant,
		PotSize:      c.Pot,
		AmountToCall: c.Call,
		GTOMode:      c.GTO,
	}, nil
}

func (c *AnalyzeCmd) Run(g *Globals) error {
	cfg, err := g.loadConfig()
	if err != nil {
		return err
	}
	logger := g.newLogger(cfg)
	a, err := newAnalyzer(cfg, logger)
	if err != nil {
		return err
	}

	req, err := c.request()
	if err != nil {
		return err
	}

	ctx, cancel := signalContext(logger)
	defer cancel()

	res, err := a.Analyze(ctx, req)
	if err != nil {
		return err
	}

	if c.Explain {
		timeout, err := cfg.CollaboratorTimeout()
		if err != nil {
			return err
		}
		var remote explain.Explainer
		if u := cfg.Collaborators.ExplainerURL; u != "" {
			remote = explain.NewHTTPExplainer(u, cfg.APIKey(), timeout, logger)
		} else {
			logger.Warn("No explainer_url configured, using the template explanation")
		}
		res.Explanation, _ = explain.WithFallback(remote, logger).Explain(ctx, explain.FromResult(res))
	}

	out := g.stdout()
	if c.JSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}
	renderAnalysis(out, res)
	return nil
}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15"))
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14")).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
}

// renderAnalysis prints a result as a set of tables.
func renderAnalysis(w io.Writer, res *analyzer.Result) {
	fmt.Fprintf(w, "%s  %s on %s\n\n",
		titleStyle.Render(fmt.Sprintf("%s, %s", res.Variant.Label(), res.Street)),
		tui.FormatCards(res.HoleCards), tui.FormatCards(res.BoardCards))

	summary := newTable("", "").Rows(
		[]string{"Hand", res.HandName},
		[]string{"Strength", fmt.Sprintf("%s (%s)", res.HandStrength.Label, res.HandStrength.Tier)},
		[]string{"Equity", fmt.Sprintf("%s (%s to %s)", pct(res.Equity), pct(res.EquityInterval[0]), pct(res.EquityInterval[1]))},
		[]string{"Pot odds", potOddsCell(res)},
		[]string{"Outs", fmt.Sprintf("%d clean, %d dirty", res.TotalCleanOuts, res.TotalDirtyOuts)},
		[]string{"Action", tui.ActionStyle(res.RecommendedAction).Render(strings.ToUpper(res.RecommendedAction.String())) +
			fmt.Sprintf(" (%s)", res.Confidence)},
	)
	fmt.Fprintln(w, summary.Render())

	if len(res.Outs) > 0 {
		t := newTable("Draw", "Outs", "Cards", "Quality")
		for _, o := range res.Outs {
			quality := "clean"
			if !o.Clean {
				quality = "dirty"
			}
			t.Row(o.Type.String(), fmt.Sprintf("%g", o.Count), tui.FormatCards(o.Outs), quality)
		}
		fmt.Fprintln(w, t.Render())
	}

	if len(res.TopActions) > 0 {
		t := newTable("Action", "Confidence", "Reasoning")
		for _, opt := range res.TopActions {
			t.Row(opt.Label, opt.Confidence.String(), opt.Reasoning)
		}
		fmt.Fprintln(w, t.Render())
	}

	if len(res.HandOdds) > 0 {
		t := newTable("Final hand", "Probability")
		for _, ho := range res.HandOdds {
			name := ho.Name
			if ho.CurrentlyHave {
				name += " *"
			}
			t.Row(name, pct(ho.Probability))
		}
		fmt.Fprintln(w, t.Render())
	}

	if wb := res.WhatBeatsMe; wb.TotalPossible > 0 {
		fmt.Fprintln(w, beatsTable(wb, 5).Render())
	}

	fmt.Fprintf(w, "\n%s\n", res.Explanation)
}

func potOddsCell(res *analyzer.Result) string {
	if res.PotOdds == nil {
		return "N/A"
	}
	return fmt.Sprintf("%s (%s)", pct(*res.PotOdds), res.PotOddsRatio)
}

func pct(v float64) string {
	return fmt.Sprintf("%.1f%%", v*100)
}
