package advisor

import (
	"slices"

	"github.com/lox/pokeradvisor/poker"
	"github.com/lox/pokeradvisor/sdk/classification"
)

// Decision thresholds. Margins are measured in equity above (or below) the
// pot-odds breakeven.
const (
	OpenRaiseEquity   = 0.45
	StrongOpenEquity  = 0.55
	RaiseMargin       = 0.15
	StrongRaiseMargin = 0.25
	StrongCallMargin  = 0.05
	// DrawingOuts is the clean-out count that justifies calling a little
	// short of breakeven on the flop or turn.
	DrawingOuts           = 8
	DrawCallShortfall     = 0.05
	MarginalFoldShortfall = 0.03
	StrongFoldShortfall   = 0.10

	// TopActions lists raises and drawing calls on looser margins than
	// Recommend uses for the single best action.
	OptionRaiseMargin       = 0.10
	OptionStrongRaiseMargin = 0.20
	OptionDrawShortfall     = 0.08

	// MaxOptions caps the ranked action list.
	MaxOptions = 3
)

// Thresholds that move confidence based on hand strength.
const (
	raiseVulnerability = 0.4
	weakDrawMultiplier = 0.9
)

// Input is everything the advisor looks at.
type Input struct {
	Equity float64
	// PotOdds is the breakeven equity of calling, nil when there is no bet.
	PotOdds   *float64
	Street    poker.Street
	CleanOuts int
	Strength  *classification.HandStrengthInfo
}

// breakeven returns the pot odds and whether a bet is being faced.
func (in Input) breakeven() (float64, bool) {
	if in.PotOdds == nil || *in.PotOdds == 0 {
		return 0, false
	}
	return *in.PotOdds, true
}

func (in Input) drawingStreet() bool {
	return in.Street == poker.Flop || in.Street == poker.Turn
}

func (in Input) nutDraw() bool {
	return in.Strength != nil && in.Strength.Draw != nil && in.Strength.Draw.NutDraw
}

// Recommendation is the single best action.
type Recommendation struct {
	Action     Action     `json:"action"`
	Confidence Confidence `json:"confidence"`
}

// Recommend picks the primary action from equity and pot odds alone. Hand
// strength only matters for drawing calls, where a nut draw earns moderate
// rather than marginal confidence.
func Recommend(in Input) Recommendation {
	odds, facing := in.breakeven()
	if !facing {
		switch {
		case in.Equity > StrongOpenEquity:
			return Recommendation{Raise, Strong}
		case in.Equity > OpenRaiseEquity:
			return Recommendation{Raise, Moderate}
		default:
			return Recommendation{Check, Moderate}
		}
	}

	switch {
	case in.Equity > odds+RaiseMargin:
		if in.Equity > odds+StrongRaiseMargin {
			return Recommendation{Raise, Strong}
		}
		return Recommendation{Raise, Moderate}
	case in.Equity >= odds:
		if in.Equity > odds+StrongCallMargin {
			return Recommendation{Call, Strong}
		}
		return Recommendation{Call, Moderate}
	case in.Equity > odds-DrawCallShortfall && in.CleanOuts >= DrawingOuts && in.drawingStreet():
		if in.nutDraw() {
			return Recommendation{Call, Moderate}
		}
		return Recommendation{Call, Marginal}
	case in.Equity > odds-MarginalFoldShortfall:
		return Recommendation{Fold, Marginal}
	case in.Equity < odds-StrongFoldShortfall:
		return Recommendation{Fold, Strong}
	default:
		return Recommendation{Fold, Moderate}
	}
}

// ActionOption is one entry of the ranked advice list.
type ActionOption struct {
	Action     Action     `json:"action"`
	Label      string     `json:"label"`
	Reasoning  string     `json:"reasoning"`
	Confidence Confidence `json:"confidence"`
	Color      string     `json:"color"`
}

// TopActions lists the reasonable actions, each with confidence adjusted
// for hand strength and a templated reasoning, strongest first. At most
// MaxOptions are returned.
func TopActions(in Input) []ActionOption {
	odds, facing := in.breakeven()
	var options []ActionOption
	add := func(a Action, label string, base Confidence) {
		options = append(options, ActionOption{
			Action:     a,
			Label:      label,
			Reasoning:  reasoning(a, in, !facing),
			Confidence: adjustConfidence(base, a, in.Strength),
			Color:      a.Color(),
		})
	}

	if !facing {
		switch {
		case in.Equity > StrongOpenEquity:
			add(Raise, "RAISE", Strong)
		case in.Equity > OpenRaiseEquity:
			add(Raise, "RAISE", Moderate)
		default:
			add(Raise, "RAISE (Bluff)", Marginal)
		}
		if in.Equity > 0.5 {
			add(Check, "CHECK", Moderate)
		} else {
			add(Check, "CHECK", Strong)
		}
	} else {
		if in.Equity > odds+OptionRaiseMargin {
			if in.Equity > odds+OptionStrongRaiseMargin {
				add(Raise, "RAISE", Strong)
			} else {
				add(Raise, "RAISE", Moderate)
			}
		}

		switch {
		case in.Equity >= odds:
			if in.Equity > odds+StrongCallMargin {
				add(Call, "CALL", Strong)
			} else {
				add(Call, "CALL", Moderate)
			}
		case in.CleanOuts >= DrawingOuts && in.Equity > odds-OptionDrawShortfall && in.drawingStreet():
			if in.nutDraw() {
				add(Call, "CALL (Nut Draw)", Marginal)
			} else {
				add(Call, "CALL (Drawing)", Marginal)
			}
		}

		if in.Equity < odds {
			if in.Equity < odds-StrongFoldShortfall {
				add(Fold, "FOLD", Strong)
			} else {
				add(Fold, "FOLD", Marginal)
			}
		}
	}

	slices.SortStableFunc(options, func(a, b ActionOption) int {
		return int(b.Confidence) - int(a.Confidence)
	})
	if len(options) > MaxOptions {
		options = options[:MaxOptions]
	}
	return options
}

// adjustConfidence moves a base confidence up or down a tier per hand
// strength signal. Checks are never adjusted.
func adjustConfidence(base Confidence, a Action, hs *classification.HandStrengthInfo) Confidence {
	if hs == nil {
		return base
	}
	c := base
	tier := hs.Tier
	switch a {
	case Raise:
		if tier == classification.Premium || hs.Nutted {
			c = c.Raise()
		}
		if tier == classification.Weak || tier == classification.Trash {
			c = c.Lower()
		}
		if hs.Vulnerability > raiseVulnerability && hs.Board.IsWet() {
			c = c.Lower()
		}
	case Call:
		if tier == classification.Premium || tier == classification.Strong {
			c = c.Raise()
		}
		if tier == classification.Trash {
			c = c.Lower()
		}
		if d := hs.Draw; d != nil {
			if d.NutDraw {
				c = c.Raise()
			} else if d.Multiplier < weakDrawMultiplier {
				c = c.Lower()
			}
		}
	case Fold:
		if tier == classification.Premium || tier == classification.Strong {
			c = c.Lower()
		}
		if tier == classification.Weak || tier == classification.Trash {
			c = c.Raise()
		}
	}
	return c
}
