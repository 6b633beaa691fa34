package advisor

import (
	"fmt"
	"strings"

	"github.com/lox/pokeradvisor/sdk/classification"
)

// vulnerability above which a called hand gets a warning about later streets
const callWarnVulnerability = 0.3

// vulnerability above which a fold is explained by exposure
const foldVulnerability = 0.5

func pct(v float64) string {
	return fmt.Sprintf("%.1f", v*100)
}

// reasoning renders the template for an action, chosen by the hand's tier
// and whether it holds a draw.
func reasoning(a Action, in Input, noBet bool) string {
	hs := in.Strength
	label, drawLabel := "your hand", ""
	var tier classification.Tier = -1
	var vulnerability float64
	var wet bool
	var draw *classification.DrawStrength
	if hs != nil {
		label = hs.Label
		tier = hs.Tier
		vulnerability = hs.Vulnerability
		wet = hs.Board.IsWet()
		draw = hs.Draw
		if draw != nil {
			drawLabel = draw.Label
		}
	}
	eq := pct(in.Equity)
	odds := ""
	if in.PotOdds != nil && *in.PotOdds != 0 {
		odds = pct(*in.PotOdds)
	}
	strongish := tier == classification.Premium || tier == classification.Strong

	switch a {
	case Raise:
		if noBet {
			switch {
			case strongish:
				s := fmt.Sprintf("Your %s gives you %s%% equity. Bet for value: charge draws and build the pot.", label, eq)
				if wet {
					s += " Protect your hand on this wet board."
				}
				return s
			case tier == classification.Good:
				return fmt.Sprintf("With %s (%s%% equity), a bet builds the pot and denies free cards to opponents on draws.", label, eq)
			case drawLabel != "":
				return fmt.Sprintf("Semi-bluff with your %s. You can win immediately or improve to a strong hand.", drawLabel)
			}
			return fmt.Sprintf("A bet could win the pot immediately. Your %s%% equity supports a value bet.", eq)
		}
		switch {
		case hs != nil && hs.Nutted:
			return fmt.Sprintf("Your %s is the nuts or near-nuts with %s%% equity. Raise for maximum value, you dominate this board.", label, eq)
		case strongish:
			return fmt.Sprintf("Your %s (%s%% equity) far exceeds the %s%% pot odds. Raise to extract value and deny draws.", label, eq, odds)
		case drawLabel != "":
			return fmt.Sprintf("With your %s and %s%% equity (vs %s%% needed), a raise can win now or set up a big pot when you hit.", drawLabel, eq, odds)
		}
		return fmt.Sprintf("Your %s%% equity exceeds the %s%% needed. Raise for value.", eq, odds)

	case Call:
		switch {
		case draw != nil && draw.NutDraw:
			return fmt.Sprintf("Your %s has excellent implied odds: when you hit, you'll have the best hand. %s%% equity supports calling the %s%% pot odds.", drawLabel, eq, odds)
		case draw != nil:
			made := "straight"
			if strings.Contains(drawLabel, "Flush") {
				made = "flush"
			}
			return fmt.Sprintf("Your %s gives you %s%% equity vs %s%% needed, but be aware: even if you hit, a higher %s could beat you.", drawLabel, eq, odds, made)
		case tier == classification.Good || tier == classification.Strong:
			s := fmt.Sprintf("Your %s has %s%% equity against the %s%% pot odds. Calling is profitable.", label, eq, odds)
			if vulnerability > callWarnVulnerability {
				s += " But beware of draws completing on later streets."
			}
			return s
		case in.CleanOuts >= DrawingOuts:
			return fmt.Sprintf("With %d outs, implied odds justify a call despite slightly lacking the %s%% needed.", in.CleanOuts, odds)
		}
		return fmt.Sprintf("Your %s%% equity beats the %s%% pot odds. Calling is +EV.", eq, odds)

	case Check:
		switch {
		case strongish:
			return fmt.Sprintf("Check-trapping with your %s can induce bluffs and disguise your %s%% equity hand.", label, eq)
		case tier == classification.Marginal || tier == classification.Weak:
			return fmt.Sprintf("With %s, checking keeps the pot small and avoids tough decisions. See the next card for free.", label)
		}
		return "Check to control the pot size and see the next card."
	}

	switch {
	case tier == classification.Weak || tier == classification.Trash:
		return fmt.Sprintf("Your %s has only %s%% equity, below the %s%% needed. %s", label, eq, odds, hs.Description)
	case draw != nil && !draw.NutDraw:
		return fmt.Sprintf("Your %s has only %s%% equity vs %s%% needed, and even hitting could lose to a stronger hand. Fold and save chips.", drawLabel, eq, odds)
	case vulnerability > foldVulnerability:
		return fmt.Sprintf("Your %s is too vulnerable with %s%% equity below the %s%% threshold. Folding saves chips for better spots.", label, eq, odds)
	}
	return fmt.Sprintf("Your %s%% equity is below the %s%% needed. Folding is the disciplined play.", eq, odds)
}
