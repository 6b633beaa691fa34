package poker

import "fmt"

// Variant selects the deck and hand-construction rules of a game.
type Variant uint8

const (
	TexasHoldem Variant = iota
	Omaha
	OmahaHiLo
	ShortDeck
)

var variantTags = [...]string{"texasHoldem", "omaha", "omahaHiLo", "shortDeck"}

var variantLabels = [...]string{"Texas Hold'em", "Omaha", "Omaha Hi-Lo", "Short Deck"}

// Variants lists every supported variant.
var Variants = []Variant{TexasHoldem, Omaha, OmahaHiLo, ShortDeck}

// String returns the wire tag of the variant ("texasHoldem").
func (v Variant) String() string {
	if int(v) < len(variantTags) {
		return variantTags[v]
	}
	return "unknown"
}

// Label returns a human readable name.
func (v Variant) Label() string {
	if int(v) < len(variantLabels) {
		return variantLabels[v]
	}
	return "Unknown"
}

// ParseVariant parses a wire tag. The empty string selects Texas Hold'em.
func ParseVariant(s string) (Variant, error) {
	if s == "" {
		return TexasHoldem, nil
	}
	for i, tag := range variantTags {
		if tag == s {
			return Variant(i), nil
		}
	}
	return TexasHoldem, fmt.Errorf("unknown variant %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (v Variant) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (v *Variant) UnmarshalText(b []byte) error {
	parsed, err := ParseVariant(string(b))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// HoleCards returns how many private cards each player holds.
func (v Variant) HoleCards() int {
	switch v {
	case Omaha, OmahaHiLo:
		return 4
	default:
		return 2
	}
}

// MinRank returns the lowest rank in the deck.
func (v Variant) MinRank() uint8 {
	if v == ShortDeck {
		return Six
	}
	return Two
}

// DeckSize returns the number of cards in a fresh deck.
func (v Variant) DeckSize() int {
	return int(Ace-v.MinRank()+1) * 4
}

// UsesExactlyTwoHoleCards reports whether a final hand must combine exactly
// two hole cards with three board cards.
func (v Variant) UsesExactlyTwoHoleCards() bool {
	return v == Omaha || v == OmahaHiLo
}

// ValidRank reports whether rank exists in the variant's deck.
func (v Variant) ValidRank(rank uint8) bool {
	return rank >= v.MinRank() && rank <= Ace
}

// Street is the betting round implied by the number of board cards.
type Street uint8

const (
	Preflop Street = iota
	Flop
	Turn
	River
)

var streetNames = [...]string{"preflop", "flop", "turn", "river"}

func (s Street) String() string {
	if int(s) < len(streetNames) {
		return streetNames[s]
	}
	return "unknown"
}

// MarshalText implements encoding.TextMarshaler.
func (s Street) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Street) UnmarshalText(b []byte) error {
	for i, name := range streetNames {
		if name == string(b) {
			*s = Street(i)
			return nil
		}
	}
	return fmt.Errorf("unknown street %q", b)
}

// StreetFromBoard maps a board size of 0, 3, 4 or 5 to its street.
func StreetFromBoard(n int) (Street, error) {
	switch n {
	case 0:
		return Preflop, nil
	case 3:
		return Flop, nil
	case 4:
		return Turn, nil
	case 5:
		return River, nil
	default:
		return Preflop, fmt.Errorf("%w: board must have 0, 3, 4, or 5 cards, got %d", ErrInvalidCardCount, n)
	}
}
