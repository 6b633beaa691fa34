package advisor

import (
	"fmt"
	"strings"

	"github.com/lox/pokeradvisor/poker"
	"github.com/lox/pokeradvisor/sdk/analysis"
	"github.com/lox/pokeradvisor/sdk/classification"
)

// valueRaiseEquity separates clear value raises from thinner ones in the
// explanation text.
const valueRaiseEquity = 0.6

// Summary is the slice of an analysis that Explain narrates.
type Summary struct {
	Action    Action
	Equity    float64
	PotOdds   *float64
	Street    poker.Street
	HandName  string
	Outs      []classification.OutInfo
	CleanOuts int
	DirtyOuts int
}

// Explain writes a plain-language explanation of the recommended action.
// With gto set it appends the equity spread against pot odds, the rule of
// four and two estimate and a note on balanced raising.
func Explain(s Summary, gto bool) string {
	eq := pct(s.Equity)
	odds := ""
	if s.PotOdds != nil && *s.PotOdds != 0 {
		odds = pct(*s.PotOdds)
	}
	var draws []string
	for _, o := range s.Outs {
		if o.Count > 0 {
			draws = append(draws, o.Type.String())
		}
	}
	drawText := strings.Join(draws, " and ")

	var b strings.Builder
	switch {
	case s.Action == Raise && s.Equity > valueRaiseEquity:
		fmt.Fprintf(&b, "You hold %s with %s%% equity against a balanced range. This is a strong hand that should be raised for value.", s.HandName, eq)
		if s.CleanOuts > 0 {
			fmt.Fprintf(&b, " You also have %d clean outs to improve further.", s.CleanOuts)
		}
	case s.Action == Raise:
		fmt.Fprintf(&b, "Your %s gives you %s%% equity. This exceeds the required threshold significantly, making a raise profitable to build the pot.", s.HandName, eq)
	case s.Action == Call && len(draws) > 0 && odds != "":
		fmt.Fprintf(&b, "You have %s with %d clean outs", drawText, s.CleanOuts)
		if s.DirtyOuts > 0 {
			fmt.Fprintf(&b, " (%d dirty)", s.DirtyOuts)
		}
		fmt.Fprintf(&b, ". Your equity of %s%% exceeds the %s%% required by pot odds, making this a profitable call.", eq, odds)
	case s.Action == Call && odds != "":
		fmt.Fprintf(&b, "Your %s gives you %s%% equity. With pot odds requiring %s%%, you have sufficient equity to call.", s.HandName, eq, odds)
	case s.Action == Call:
		fmt.Fprintf(&b, "Your %s has %s%% equity against a balanced range. This is strong enough to continue.", s.HandName, eq)
	case s.Action == Check:
		fmt.Fprintf(&b, "Your %s gives you %s%% equity. With no bet to call, checking allows you to see the next card and re-evaluate.", s.HandName, eq)
		if len(draws) > 0 {
			fmt.Fprintf(&b, " You have %s to potentially improve.", drawText)
		}
	case s.Action == Fold && odds != "":
		fmt.Fprintf(&b, "Your %s gives you only %s%% equity. With pot odds requiring %s%%, you don't have sufficient equity to call. This is a disciplined fold.", s.HandName, eq, odds)
	case s.Action == Fold:
		fmt.Fprintf(&b, "Your %s only provides %s%% equity against a balanced range. Folding preserves your stack for better spots.", s.HandName, eq)
	}

	if gto {
		writeGTOContext(&b, s, odds)
	}
	return b.String()
}

func writeGTOContext(b *strings.Builder, s Summary, odds string) {
	if odds != "" {
		fmt.Fprintf(b, " From a GTO perspective, this spot has an expected value of %+.1f%% equity spread.", (s.Equity-*s.PotOdds)*100)
	}
	if len(s.Outs) > 0 && (s.Street == poker.Flop || s.Street == poker.Turn) {
		rule, boardCards := "rule of 4", 3
		if s.Street == poker.Turn {
			rule, boardCards = "rule of 2", 4
		}
		approx := analysis.RuleOfFourAndTwo(float64(s.CleanOuts), boardCards)
		fmt.Fprintf(b, " Using the %s, %d outs gives approximately %.0f%% equity to improve.", rule, s.CleanOuts, approx*100)
	}
	if s.Action == Raise {
		b.WriteString(" In a balanced GTO strategy, raising this hand maintains an optimal value-to-bluff ratio.")
	}
}
