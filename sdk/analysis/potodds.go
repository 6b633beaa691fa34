package analysis

import "fmt"

// CalculatePotOdds returns the equity needed to break even on a call:
// call / (pot + call). It is 0 when there is nothing to call.
func CalculatePotOdds(pot, call float64) float64 {
	if call <= 0 {
		return 0
	}
	return call / (pot + call)
}

// FormatPotOddsRatio renders the pot-to-call ratio, e.g. "2.0:1", or "N/A"
// when there is nothing to call.
func FormatPotOddsRatio(pot, call float64) string {
	if call <= 0 {
		return "N/A"
	}
	return fmt.Sprintf("%.1f:1", pot/call)
}

// CalculateImpliedOdds is CalculatePotOdds with expected future winnings
// added to the pot.
func CalculateImpliedOdds(pot, call, future float64) float64 {
	if call <= 0 {
		return 0
	}
	return call / (pot + call + future)
}

// RuleOfFourAndTwo approximates the chance of hitting one of outs by the
// river: 4% per out on the flop, 2% per out on the turn, capped at 1.
func RuleOfFourAndTwo(outs float64, boardCards int) float64 {
	var per float64
	switch boardCards {
	case 3:
		per = 0.04
	case 4:
		per = 0.02
	default:
		return 0
	}
	return min(1, outs*per)
}
