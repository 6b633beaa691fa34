package tui

import (
	"fmt"
	"strings"

	"github.com/lox/pokeradvisor/internal/analyzer"
	"github.com/lox/pokeradvisor/poker"
)

// RenderResult turns an analysis into log lines.
func RenderResult(res *analyzer.Result) []string {
	lines := []string{
		HeaderStyle.Render(fmt.Sprintf(" %s, %s ", res.Variant.Label(), res.Street)),
		fmt.Sprintf("Hand: %s  Board: %s", FormatCards(res.HoleCards), FormatCards(res.BoardCards)),
	}

	name := res.HandName
	if res.ImprovedHandName != "" {
		name += ", drawing to " + res.ImprovedHandName
	}
	lines = append(lines,
		HandInfoStyle.Render(name),
		fmt.Sprintf("Strength: %s (%s)", res.HandStrength.Label, res.HandStrength.Tier),
		fmt.Sprintf("Equity: %s (%s to %s)", percent(res.Equity), percent(res.EquityInterval[0]), percent(res.EquityInterval[1])),
	)

	if res.PotOdds != nil {
		lines = append(lines, fmt.Sprintf("Pot odds: %s (%s)", percent(*res.PotOdds), res.PotOddsRatio))
	}

	if len(res.Outs) > 0 {
		lines = append(lines, fmt.Sprintf("Outs: %d clean, %d dirty", res.TotalCleanOuts, res.TotalDirtyOuts))
		for _, o := range res.Outs {
			quality := "clean"
			if !o.Clean {
				quality = "dirty"
			}
			lines = append(lines, fmt.Sprintf("  %s: %g (%s)", o.Type, o.Count, quality))
		}
	}

	lines = append(lines, ActionsStyle.Render("Recommended: ")+
		ActionStyle(res.RecommendedAction).Render(strings.ToUpper(res.RecommendedAction.String()))+
		fmt.Sprintf(" (%s)", res.Confidence))
	for _, opt := range res.TopActions {
		lines = append(lines, fmt.Sprintf("  %s (%s): %s", ActionStyle(opt.Action).Render(opt.Label), opt.Confidence, opt.Reasoning))
	}

	if wb := res.WhatBeatsMe; wb.TotalPossible > 0 {
		lines = append(lines, fmt.Sprintf("Beaten by %s of holdings (%d of %d)",
			percent(wb.BeatingProbability), wb.TotalBeating, wb.TotalPossible))
		for _, g := range wb.Groups {
			examples := make([]string, len(g.Examples))
			for i, ex := range g.Examples {
				examples[i] = poker.FormatCards(ex)
			}
			lines = append(lines, fmt.Sprintf("  %s: %d combos, e.g. %s", g.Name, g.Combos, strings.Join(examples, ", ")))
		}
	}

	if res.Explanation != "" {
		lines = append(lines, res.Explanation)
	}
	lines = append(lines, InfoStyle.Render(fmt.Sprintf("Analyzed in %dms (%s)", res.ElapsedMillis, res.ID)), "")
	return lines
}

func percent(v float64) string {
	return fmt.Sprintf("%.1f%%", v*100)
}
