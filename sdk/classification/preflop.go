package classification

import (
	"fmt"

	"github.com/lox/pokeradvisor/poker"
)

// PreflopStrength grades a starting hand. Four-card hands are graded by
// their best two-card pair of hole cards.
func PreflopStrength(hole []poker.Card) HandStrengthInfo {
	if len(hole) < 2 {
		return HandStrengthInfo{
			Tier:          Marginal,
			Label:         "Incomplete Hand",
			Description:   "Not enough cards to evaluate.",
			Vulnerability: 0.5,
			Board:         AnalyzeBoard(nil),
		}
	}
	best := startingHand(hole[0], hole[1])
	for i := 0; i < len(hole); i++ {
		for j := i + 1; j < len(hole); j++ {
			cand := startingHand(hole[i], hole[j])
			if cand.Tier > best.Tier || (cand.Tier == best.Tier && cand.Vulnerability < best.Vulnerability) {
				best = cand
			}
		}
	}
	best.Board = AnalyzeBoard(nil)
	return best
}

func startingHand(a, b poker.Card) HandStrengthInfo {
	high, low := a.Value(), b.Value()
	if low > high {
		high, low = low, high
	}
	suited := a.Suit() == b.Suit()
	gap := high - low

	if high == low {
		return pocketPairStrength(high)
	}

	switch {
	case high == 14 && low >= 12:
		label, extra := "Premium Broadway", ""
		if suited {
			label, extra = "Premium Suited Broadway", " suited"
		}
		return HandStrengthInfo{
			Tier:          Strong,
			Label:         label,
			Description:   fmt.Sprintf("Big broadway cards%s. Strong top-pair potential with a dominant kicker.", extra),
			Vulnerability: 0.3,
			Kicker:        KickerStrong,
		}
	case high >= 12 && low >= 11 && gap <= 2:
		label, extra := "Broadway Cards", ""
		if suited {
			label, extra = "Suited Broadway", " with flush potential"
		}
		kicker := KickerWeak
		if low >= 12 {
			kicker = KickerStrong
		}
		return HandStrengthInfo{
			Tier:          Good,
			Label:         label,
			Description:   fmt.Sprintf("Connected high cards%s. Good top-pair and straight potential.", extra),
			Vulnerability: 0.35,
			Kicker:        kicker,
		}
	case high == 14 && suited:
		kicker := KickerWeak
		if low >= 10 {
			kicker = KickerStrong
		}
		return HandStrengthInfo{
			Tier:          Good,
			Label:         "Suited Ace",
			Description:   "Suited Ace with nut flush draw potential and top pair with the best kicker.",
			Vulnerability: 0.35,
			Kicker:        kicker,
		}
	case suited && gap <= 2 && low >= 6:
		return HandStrengthInfo{
			Tier:          Good,
			Label:         "Suited Connector",
			Description:   "Suited connector with flush and straight draw potential. Plays well in position.",
			Vulnerability: 0.45,
			Kicker:        KickerWeak,
		}
	case high == 14:
		quality, vuln, kicker := "weak", 0.55, KickerWeak
		if low >= 10 {
			quality, vuln, kicker = "decent", 0.4, KickerStrong
		}
		return HandStrengthInfo{
			Tier:          Marginal,
			Label:         "Offsuit Ace",
			Description:   fmt.Sprintf("Ace with a %s kicker. Top-pair potential but kicker problems likely.", quality),
			Vulnerability: vuln,
			Kicker:        kicker,
		}
	case gap <= 2 && low >= 5:
		return HandStrengthInfo{
			Tier:          Marginal,
			Label:         "Connected Cards",
			Description:   "Connected cards with straight potential, but limited flush potential.",
			Vulnerability: 0.5,
			Kicker:        KickerWeak,
		}
	case high >= 10 || suited:
		label := "Weak High Card"
		if suited {
			label = "Weak Suited"
		}
		return HandStrengthInfo{
			Tier:          Weak,
			Label:         label,
			Description:   "A weak starting hand. Difficult to make strong hands post-flop.",
			Vulnerability: 0.65,
			Kicker:        KickerWeak,
		}
	default:
		return HandStrengthInfo{
			Tier:          Trash,
			Label:         "Trash Hand",
			Description:   "Very weak starting hand. Fold in most situations.",
			Vulnerability: 0.8,
			Kicker:        KickerWeak,
		}
	}
}

func pocketPairStrength(value int) HandStrengthInfo {
	name := poker.RankPlural(uint8(value - 2))
	switch {
	case value >= 13:
		return HandStrengthInfo{
			Tier:          Premium,
			Label:         fmt.Sprintf("Premium Pair (%s)", name),
			Description:   fmt.Sprintf("Pocket %s, a top-tier starting hand. Play aggressively.", name),
			Vulnerability: 0.1,
			Nutted:        value == 14,
		}
	case value >= 10:
		return HandStrengthInfo{
			Tier:          Strong,
			Label:         fmt.Sprintf("Strong Pair (%s)", name),
			Description:   fmt.Sprintf("Pocket %s, strong but vulnerable to overcards on the flop.", name),
			Vulnerability: 0.25,
		}
	case value >= 7:
		return HandStrengthInfo{
			Tier:          Good,
			Label:         fmt.Sprintf("Medium Pair (%s)", name),
			Description:   fmt.Sprintf("Pocket %s, a set-mining hand. Strong if you hit a set, but vulnerable otherwise.", name),
			Vulnerability: 0.4,
		}
	default:
		return HandStrengthInfo{
			Tier:          Marginal,
			Label:         fmt.Sprintf("Small Pair (%s)", name),
			Description:   fmt.Sprintf("Pocket %s, a weak pair preflop. Best used for set-mining.", name),
			Vulnerability: 0.55,
		}
	}
}
