package analysis

import (
	"fmt"
	"slices"
	"strings"

	"github.com/lox/pokeradvisor/poker"
)

// Range is a weighted set of two-card holdings. Each holding is stored as a
// two-bit poker.Hand.
type Range struct {
	hands map[poker.Hand]float64
}

// NewRange creates a new empty range.
func NewRange() *Range {
	return &Range{
		hands: make(map[poker.Hand]float64),
	}
}

// defaultRange is a loose heads-up range of roughly the top half of
// starting hands, suited and offsuit alike.
const defaultRange = "22+,A2+,K2+,Q6+,J7+,T8+,97+,87,76,65,54"

// DefaultRange returns the opponent range used when none is configured.
// Short deck drops the holdings with ranks below six. Four-card variants
// have no two-card range and return nil, meaning random holdings.
func DefaultRange(v poker.Variant) *Range {
	if v.HoleCards() != 2 {
		return nil
	}
	r, err := ParseRange(defaultRange)
	if err != nil {
		panic(err)
	}
	return r.Filter(func(h poker.Hand) bool {
		for _, c := range appendCards(nil, h) {
			if !v.ValidRank(c.Rank()) {
				return false
			}
		}
		return true
	})
}

// ParseRange creates a range from standard poker notation.
// Examples: "AA,KK", "AKs,AKo", "TT+", "A5s-A2s", "KTs+", "22-66"
func ParseRange(notation string) (*Range, error) {
	r := NewRange()
	for part := range strings.SplitSeq(notation, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if err := r.addRangePart(part); err != nil {
			return nil, fmt.Errorf("invalid range part %q: %w", part, err)
		}
	}
	return r, nil
}

// addRangePart adds a single range notation part to the range.
func (r *Range) addRangePart(part string) error {
	switch {
	case strings.HasSuffix(part, "+"):
		return r.addPlusRange(strings.TrimSuffix(part, "+"))
	case strings.Contains(part, "-"):
		return r.addDashRange(part)
	default:
		hi, lo, kind, err := parseHolding(part)
		if err != nil {
			return err
		}
		r.addHolding(hi, lo, kind, 1.0)
		return nil
	}
}

// holdingKind says which suit combinations a notation covers.
type holdingKind int

const (
	anySuits holdingKind = iota
	suitedOnly
	offsuitOnly
)

// parseHolding splits "AKs" into its ranks and suitedness. The first rank
// is the higher one for well-formed notation, but either order is accepted.
func parseHolding(notation string) (hi, lo uint8, kind holdingKind, err error) {
	if len(notation) < 2 || len(notation) > 3 {
		return 0, 0, 0, fmt.Errorf("invalid notation length: %s", notation)
	}
	hi, err1 := poker.ParseRank(notation[0])
	lo, err2 := poker.ParseRank(notation[1])
	if err1 != nil || err2 != nil {
		return 0, 0, 0, fmt.Errorf("invalid rank in: %s", notation)
	}
	if lo > hi {
		hi, lo = lo, hi
	}
	if len(notation) == 3 {
		switch notation[2] {
		case 's':
			kind = suitedOnly
		case 'o':
			kind = offsuitOnly
		default:
			return 0, 0, 0, fmt.Errorf("invalid modifier: %c", notation[2])
		}
		if hi == lo {
			return 0, 0, 0, fmt.Errorf("pocket pairs cannot have suited/offsuit modifier: %s", notation)
		}
	}
	return hi, lo, kind, nil
}

// addPlusRange handles "TT+" (pairs upward) and "KTs+" (kicker upward to
// one below the top card).
func (r *Range) addPlusRange(base string) error {
	hi, lo, kind, err := parseHolding(base)
	if err != nil {
		return err
	}
	if hi == lo {
		for rank := hi; rank <= poker.Ace; rank++ {
			r.addHolding(rank, rank, anySuits, 1.0)
		}
		return nil
	}
	for rank := lo; rank < hi; rank++ {
		r.addHolding(hi, rank, kind, 1.0)
	}
	return nil
}

// addDashRange handles "22-66" and "A5s-A2s".
func (r *Range) addDashRange(notation string) error {
	start, end, ok := strings.Cut(notation, "-")
	if !ok || strings.Contains(end, "-") {
		return fmt.Errorf("invalid dash range format")
	}
	sHi, sLo, kind, err := parseHolding(strings.TrimSpace(start))
	if err != nil {
		return err
	}
	eHi, eLo, _, err := parseHolding(strings.TrimSpace(end))
	if err != nil {
		return err
	}

	switch {
	case sHi == sLo && eHi == eLo:
		for rank := min(sHi, eHi); rank <= max(sHi, eHi); rank++ {
			r.addHolding(rank, rank, anySuits, 1.0)
		}
	case sHi == eHi:
		for rank := min(sLo, eLo); rank <= max(sLo, eLo); rank++ {
			r.addHolding(sHi, rank, kind, 1.0)
		}
	default:
		return fmt.Errorf("unsupported range format: %s", notation)
	}
	return nil
}

// addHolding adds every suit combination of a holding: 6 for a pair, 4
// suited and 12 offsuit otherwise.
func (r *Range) addHolding(hi, lo uint8, kind holdingKind, weight float64) {
	for s1 := range uint8(4) {
		for s2 := range uint8(4) {
			switch {
			case hi == lo && s2 <= s1:
				continue
			case hi != lo && s1 == s2 && kind == offsuitOnly:
				continue
			case hi != lo && s1 != s2 && kind == suitedOnly:
				continue
			}
			r.hands[poker.NewHand(poker.NewCard(hi, s1), poker.NewCard(lo, s2))] = weight
		}
	}
}

// Contains checks if a specific hand is in the range using string cards
func (r *Range) Contains(card1, card2 string) bool {
	c1, err1 := poker.ParseCard(card1)
	c2, err2 := poker.ParseCard(card2)
	if err1 != nil || err2 != nil {
		return false
	}
	return r.ContainsCards(c1, c2)
}

// ContainsHand checks if a hand (as poker.Hand) is in the range
func (r *Range) ContainsHand(hand poker.Hand) bool {
	_, ok := r.hands[hand]
	return ok
}

// ContainsCards checks if hole cards are in the range
func (r *Range) ContainsCards(c1, c2 poker.Card) bool {
	return r.ContainsHand(poker.NewHand(c1, c2))
}

// Size returns the number of hand combinations in the range
func (r *Range) Size() int {
	return len(r.hands)
}

// Hands returns every holding in the range in ascending bit order.
func (r *Range) Hands() []poker.Hand {
	hands := make([]poker.Hand, 0, len(r.hands))
	for hand := range r.hands {
		hands = append(hands, hand)
	}
	slices.Sort(hands)
	return hands
}

// Available returns the holdings that share no card with dead, in
// ascending bit order.
func (r *Range) Available(dead poker.Hand) []poker.Hand {
	hands := r.Hands()
	return slices.DeleteFunc(hands, func(h poker.Hand) bool { return h&dead != 0 })
}

// Filter returns a new range with the holdings keep accepts.
func (r *Range) Filter(keep func(poker.Hand) bool) *Range {
	out := NewRange()
	for h, w := range r.hands {
		if keep(h) {
			out.hands[h] = w
		}
	}
	return out
}

// Weight returns the weight of a specific hand in the range
func (r *Range) Weight(hand poker.Hand) float64 {
	return r.hands[hand]
}

// HandNotation returns the range notation of two hole cards: "AA", "AKs"
// or "AKo".
func HandNotation(c1, c2 poker.Card) string {
	hi, lo := c1, c2
	if lo.Rank() > hi.Rank() {
		hi, lo = lo, hi
	}
	code := hi.String()[:1] + lo.String()[:1]
	switch {
	case hi.Rank() == lo.Rank():
		return code
	case hi.Suit() == lo.Suit():
		return code + "s"
	default:
		return code + "o"
	}
}
