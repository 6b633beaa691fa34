// Package poker provides the card model, deck handling and hand evaluation
// used by the analysis packages.
//
// Cards are single bits in a 64-bit mask (index suit*13 + rank), so sets of
// cards are cheap to combine and compare.
package poker

import (
	"fmt"
	"math/bits"
	"strings"
)

// Card is a single playing card encoded as one set bit.
type Card uint64

// Ranks, lowest first.
const (
	Two uint8 = iota
	Three
	Four
	Five
	Six
	Seven
	Eight
	Nine
	Ten
	Jack
	Queen
	King
	Ace
)

// Suits in bit order.
const (
	Clubs uint8 = iota
	Diamonds
	Hearts
	Spades
)

const (
	rankChars = "23456789TJQKA"
	suitChars = "cdhs"
)

var rankNames = [13]string{"Two", "Three", "Four", "Five", "Six", "Seven", "Eight", "Nine", "Ten", "Jack", "Queen", "King", "Ace"}

var rankPlurals = [13]string{"Twos", "Threes", "Fours", "Fives", "Sixes", "Sevens", "Eights", "Nines", "Tens", "Jacks", "Queens", "Kings", "Aces"}

var suitNames = [4]string{"club", "diamond", "heart", "spade"}

// NewCard creates a card from a rank (Two..Ace) and suit (Clubs..Spades).
func NewCard(rank, suit uint8) Card {
	return Card(1) << (uint(suit)*13 + uint(rank))
}

func (c Card) index() uint8 {
	return uint8(bits.TrailingZeros64(uint64(c)))
}

// Rank returns the card rank, 0 (Two) through 12 (Ace).
func (c Card) Rank() uint8 {
	return c.index() % 13
}

// Suit returns the card suit, 0 (Clubs) through 3 (Spades).
func (c Card) Suit() uint8 {
	return c.index() / 13
}

// Value returns the conventional 2..14 value of the card rank.
func (c Card) Value() int {
	return RankValue(c.Rank())
}

// String returns the two character code, e.g. "Ah".
func (c Card) String() string {
	if bits.OnesCount64(uint64(c)) != 1 || c.index() >= 52 {
		return "??"
	}
	return string([]byte{rankChars[c.Rank()], suitChars[c.Suit()]})
}

// MarshalText implements encoding.TextMarshaler, so cards encode as codes.
func (c Card) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Card) UnmarshalText(b []byte) error {
	parsed, err := ParseCard(string(b))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// RankValue converts a 0-based rank to its 2..14 value.
func RankValue(rank uint8) int {
	return int(rank) + 2
}

// RankName returns the singular name of a rank ("Ace").
func RankName(rank uint8) string {
	if rank > Ace {
		return "Unknown"
	}
	return rankNames[rank]
}

// RankPlural returns the plural name of a rank ("Aces").
func RankPlural(rank uint8) string {
	if rank > Ace {
		return "Unknown"
	}
	return rankPlurals[rank]
}

// SuitName returns the lower-case singular suit name ("heart").
func SuitName(suit uint8) string {
	if suit > Spades {
		return "unknown"
	}
	return suitNames[suit]
}

// ParseRank parses a rank character. Ranks are upper case except digits.
func ParseRank(c byte) (uint8, error) {
	idx := strings.IndexByte(rankChars, c)
	if idx < 0 {
		return 0, fmt.Errorf("unknown rank %q", c)
	}
	return uint8(idx), nil
}

// ParseSuit parses a lower case suit character.
func ParseSuit(c byte) (uint8, error) {
	idx := strings.IndexByte(suitChars, c)
	if idx < 0 {
		return 0, fmt.Errorf("unknown suit %q", c)
	}
	return uint8(idx), nil
}

// ParseCard parses a two character card code such as "Ah" or "Tc".
// Parsing is case-sensitive.
func ParseCard(s string) (Card, error) {
	if len(s) != 2 {
		return 0, fmt.Errorf("invalid card %q: expected 2 characters", s)
	}
	rank, err := ParseRank(s[0])
	if err != nil {
		return 0, fmt.Errorf("invalid card %q: %w", s, err)
	}
	suit, err := ParseSuit(s[1])
	if err != nil {
		return 0, fmt.Errorf("invalid card %q: %w", s, err)
	}
	return NewCard(rank, suit), nil
}

// MustParseCard parses a card and panics on error. Intended for tests and constants.
func MustParseCard(s string) Card {
	c, err := ParseCard(s)
	if err != nil {
		panic(err)
	}
	return c
}

// ParseCards parses a list of card codes.
func ParseCards(codes []string) ([]Card, error) {
	cards := make([]Card, 0, len(codes))
	for _, code := range codes {
		c, err := ParseCard(code)
		if err != nil {
			return nil, err
		}
		cards = append(cards, c)
	}
	return cards, nil
}

// ParseCardString parses concatenated codes such as "AhKd" or "Ah Kd".
func ParseCardString(s string) ([]Card, error) {
	s = strings.Join(strings.Fields(s), "")
	if len(s)%2 != 0 {
		return nil, fmt.Errorf("invalid card string length: %d (must be even)", len(s))
	}
	cards := make([]Card, 0, len(s)/2)
	for i := 0; i < len(s); i += 2 {
		c, err := ParseCard(s[i : i+2])
		if err != nil {
			return nil, err
		}
		cards = append(cards, c)
	}
	return cards, nil
}

// MustParseCards parses a card string and panics on error.
func MustParseCards(s string) []Card {
	cards, err := ParseCardString(s)
	if err != nil {
		panic(err)
	}
	return cards
}

// FormatCards renders cards separated by spaces.
func FormatCards(cards []Card) string {
	parts := make([]string, len(cards))
	for i, c := range cards {
		parts[i] = c.String()
	}
	return strings.Join(parts, " ")
}

// CardStrings returns the card codes of cards.
func CardStrings(cards []Card) []string {
	out := make([]string, len(cards))
	for i, c := range cards {
		out[i] = c.String()
	}
	return out
}

// Hand is an unordered set of cards.
type Hand uint64

// NewHand builds a set from cards.
func NewHand(cards ...Card) Hand {
	var h Hand
	for _, c := range cards {
		h |= Hand(c)
	}
	return h
}

// AddCard adds a card to the set.
func (h *Hand) AddCard(c Card) {
	*h |= Hand(c)
}

// HasCard reports whether c is in the set.
func (h Hand) HasCard(c Card) bool {
	return h&Hand(c) != 0
}

// CountCards returns the number of cards in the set.
func (h Hand) CountCards() int {
	return bits.OnesCount64(uint64(h))
}

// GetSuitMask returns a 13-bit rank mask of the cards in suit.
func (h Hand) GetSuitMask(suit uint8) uint16 {
	return uint16(uint64(h)>>(uint(suit)*13)) & 0x1FFF
}

// GetRankMask returns a 13-bit mask of the ranks present in any suit.
func (h Hand) GetRankMask() uint16 {
	return h.GetSuitMask(Clubs) | h.GetSuitMask(Diamonds) | h.GetSuitMask(Hearts) | h.GetSuitMask(Spades)
}

// RankCount returns how many cards of rank the set holds.
func (h Hand) RankCount(rank uint8) int {
	n := 0
	for suit := range uint8(4) {
		if h.GetSuitMask(suit)&(1<<rank) != 0 {
			n++
		}
	}
	return n
}

// Cards returns the cards in canonical order (suit-major, rank ascending).
func (h Hand) Cards() []Card {
	out := make([]Card, 0, h.CountCards())
	for m := uint64(h); m != 0; m &= m - 1 {
		out = append(out, Card(m&-m))
	}
	return out
}

// String renders the set in canonical order.
func (h Hand) String() string {
	return FormatCards(h.Cards())
}
