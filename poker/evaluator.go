package poker

import (
	"cmp"
	"errors"
	"fmt"
	"math/bits"
	"slices"
)

var (
	// ErrInvalidCardCount is returned when a card set has the wrong cardinality.
	ErrInvalidCardCount = errors.New("invalid card count")
	// ErrDuplicateCard is returned when the same card appears twice.
	ErrDuplicateCard = errors.New("duplicate card")
	// ErrInvalidCard is returned for a card that does not exist in the variant's deck.
	ErrInvalidCard = errors.New("invalid card")
)

// HandType enumerates the categories of poker hands ordered from weakest (1)
// to strongest (10).
type HandType uint8

const (
	HighCard HandType = iota + 1
	Pair
	TwoPair
	ThreeOfAKind
	Straight
	Flush
	FullHouse
	FourOfAKind
	StraightFlush
	RoyalFlush
)

// HandTypes lists every category, weakest first.
var HandTypes = []HandType{HighCard, Pair, TwoPair, ThreeOfAKind, Straight, Flush, FullHouse, FourOfAKind, StraightFlush, RoyalFlush}

var handTypeNames = [...]string{
	"Unknown", "High Card", "Pair", "Two Pair", "Three of a Kind", "Straight",
	"Flush", "Full House", "Four of a Kind", "Straight Flush", "Royal Flush",
}

func (t HandType) String() string {
	if int(t) < len(handTypeNames) {
		return handTypeNames[t]
	}
	return handTypeNames[0]
}

// HandRank totally orders evaluated hands; higher values are stronger.
//
// Bits 20-23 hold the strength tier, followed by up to five 4-bit rank
// nibbles (rank+1, zero when absent) of the hand-defining ranks and kickers.
type HandRank uint32

// Evaluation is the best hand found in a card pool.
type Evaluation struct {
	Category HandType
	Value    HandRank
	// Best holds the five cards making the hand. It is only populated by the
	// validating entry points (Evaluate, EvaluateHand).
	Best []Card
}

// Name returns the category name, e.g. "Two Pair".
func (e Evaluation) Name() string {
	return e.Category.String()
}

// Ranks decodes the hand-defining ranks and kickers in comparison order.
func (e Evaluation) Ranks() []uint8 {
	out := make([]uint8, 0, 5)
	for shift := 16; shift >= 0; shift -= 4 {
		nib := uint8(e.Value>>uint(shift)) & 0xF
		if nib == 0 {
			break
		}
		out = append(out, nib-1)
	}
	return out
}

// Describe returns a descriptive name such as "Pair of Aces" or
// "Full House, Kings over Sevens".
func (e Evaluation) Describe() string {
	r := e.Ranks()
	if len(r) == 0 {
		return e.Category.String()
	}
	switch e.Category {
	case HighCard:
		return RankName(r[0]) + " High"
	case Pair:
		return "Pair of " + RankPlural(r[0])
	case TwoPair:
		if len(r) < 2 {
			break
		}
		return fmt.Sprintf("Two Pair, %s and %s", RankPlural(r[0]), RankPlural(r[1]))
	case ThreeOfAKind:
		return "Three of a Kind, " + RankPlural(r[0])
	case Straight, Flush, StraightFlush:
		return fmt.Sprintf("%s, %s High", e.Category, RankName(r[0]))
	case FullHouse:
		if len(r) < 2 {
			break
		}
		return fmt.Sprintf("Full House, %s over %s", RankPlural(r[0]), RankPlural(r[1]))
	case FourOfAKind:
		return "Four of a Kind, " + RankPlural(r[0])
	}
	return e.Category.String()
}

// Compare orders two evaluations: -1 if a is weaker, +1 if stronger, 0 for a
// split pot.
func Compare(a, b Evaluation) int {
	return cmp.Compare(a.Value, b.Value)
}

// Evaluate returns the best five-card hand in a pool of 5 to 7 cards using
// standard hand rankings.
func Evaluate(cards []Card) (Evaluation, error) {
	if len(cards) < 5 || len(cards) > 7 {
		return Evaluation{}, fmt.Errorf("%w: need 5 to 7 cards, got %d", ErrInvalidCardCount, len(cards))
	}
	h, err := uniqueHand(TexasHoldem, cards)
	if err != nil {
		return Evaluation{}, err
	}
	e := evaluateMask(h, false)
	e.Best = bestFive(TexasHoldem, cards, nil, e.Value)
	return e, nil
}

// EvaluateHand evaluates hole cards against a board of 0 to 5 cards under the
// variant's rules. With fewer than five cards available the result ranks the
// partial holding (e.g. a preflop pocket pair).
func EvaluateHand(v Variant, hole, board []Card) (Evaluation, error) {
	if len(hole) != v.HoleCards() {
		return Evaluation{}, fmt.Errorf("%w: expected %d hole cards for %s, got %d", ErrInvalidCardCount, v.HoleCards(), v.Label(), len(hole))
	}
	if len(board) > 5 {
		return Evaluation{}, fmt.Errorf("%w: board has %d cards, max 5", ErrInvalidCardCount, len(board))
	}
	all := make([]Card, 0, len(hole)+len(board))
	all = append(append(all, hole...), board...)
	if _, err := uniqueHand(v, all); err != nil {
		return Evaluation{}, err
	}
	e := Rank(v, hole, board)
	e.Best = bestFive(v, hole, board, e.Value)
	return e, nil
}

// Rank evaluates hole and board without validation. Callers must pass
// disjoint, correctly sized sets; it is the hot path for the simulators.
func Rank(v Variant, hole, board []Card) Evaluation {
	if v.UsesExactlyTwoHoleCards() {
		return rankOmaha(hole, board)
	}
	return evaluateMask(NewHand(hole...)|NewHand(board...), v == ShortDeck)
}

// RankMask evaluates a pooled set under hold'em style rules (any five cards).
func RankMask(v Variant, pool Hand) Evaluation {
	return evaluateMask(pool, v == ShortDeck)
}

func uniqueHand(v Variant, cards []Card) (Hand, error) {
	var h Hand
	for _, c := range cards {
		if bits.OnesCount64(uint64(c)) != 1 || c.index() >= 52 {
			return 0, fmt.Errorf("%w: malformed card value %#x", ErrInvalidCard, uint64(c))
		}
		if !v.ValidRank(c.Rank()) {
			return 0, fmt.Errorf("%w: %s is not in the %s deck", ErrInvalidCard, c, v.Label())
		}
		if h.HasCard(c) {
			return 0, fmt.Errorf("%w: %s", ErrDuplicateCard, c)
		}
		h.AddCard(c)
	}
	return h, nil
}

// rankOmaha picks the best hand using exactly two hole cards and three board
// cards. Boards shorter than three cards are combined whole.
func rankOmaha(hole, board []Card) Evaluation {
	var best Evaluation
	boardMask := NewHand(board...)
	for i := 0; i < len(hole); i++ {
		for j := i + 1; j < len(hole); j++ {
			pair := Hand(hole[i]) | Hand(hole[j])
			if len(board) < 3 {
				if e := evaluateMask(pair|boardMask, false); e.Value > best.Value {
					best = e
				}
				continue
			}
			for a := 0; a < len(board); a++ {
				for b := a + 1; b < len(board); b++ {
					for c := b + 1; c < len(board); c++ {
						e := evaluateMask(pair|Hand(board[a])|Hand(board[b])|Hand(board[c]), false)
						if e.Value > best.Value {
							best = e
						}
					}
				}
			}
		}
	}
	return best
}

// strengthTier maps a category to its ordering tier. Short deck ranks a
// flush above a full house.
func strengthTier(t HandType, short bool) uint8 {
	if short {
		switch t {
		case Flush:
			return uint8(FullHouse)
		case FullHouse:
			return uint8(Flush)
		}
	}
	return uint8(t)
}

type rankBuilder struct {
	value HandRank
	shift int
}

func newRankBuilder(t HandType, short bool) rankBuilder {
	return rankBuilder{value: HandRank(strengthTier(t, short)) << 20, shift: 16}
}

func (b *rankBuilder) add(rank uint8) {
	if b.shift < 0 {
		return
	}
	b.value |= HandRank(rank+1) << uint(b.shift)
	b.shift -= 4
}

func (b *rankBuilder) addTop(mask uint16, n int) {
	for i := 0; i < n && mask != 0; i++ {
		r := highestRank(mask)
		b.add(r)
		mask &^= 1 << r
	}
}

func evaluateMask(h Hand, short bool) Evaluation {
	var suits [4]uint16
	for s := range uint8(4) {
		suits[s] = h.GetSuitMask(s)
	}
	rankMask := suits[0] | suits[1] | suits[2] | suits[3]

	flushSuit := -1
	for s, m := range suits {
		if bits.OnesCount16(m) >= 5 {
			flushSuit = s
			break
		}
	}

	if flushSuit >= 0 {
		if high, ok := straightHigh(suits[flushSuit], short); ok {
			t := StraightFlush
			if high == Ace {
				t = RoyalFlush
			}
			b := newRankBuilder(t, short)
			b.add(high)
			return Evaluation{Category: t, Value: b.value}
		}
	}

	quads := suits[0] & suits[1] & suits[2] & suits[3]
	tripCandidates := (suits[0] & suits[1] & suits[2]) |
		(suits[0] & suits[1] & suits[3]) |
		(suits[0] & suits[2] & suits[3]) |
		(suits[1] & suits[2] & suits[3])
	trips := tripCandidates &^ quads
	pairs := ((suits[0] & suits[1]) |
		(suits[0] & suits[2]) |
		(suits[0] & suits[3]) |
		(suits[1] & suits[2]) |
		(suits[1] & suits[3]) |
		(suits[2] & suits[3])) &^ tripCandidates

	if quads != 0 {
		q := highestRank(quads)
		b := newRankBuilder(FourOfAKind, short)
		b.add(q)
		b.addTop(rankMask&^(1<<q), 1)
		return Evaluation{Category: FourOfAKind, Value: b.value}
	}

	var fullHouse, flush *Evaluation
	if trips != 0 && (bits.OnesCount16(trips) >= 2 || pairs != 0) {
		t := highestRank(trips)
		b := newRankBuilder(FullHouse, short)
		b.add(t)
		b.add(highestRank((trips &^ (1 << t)) | pairs))
		fullHouse = &Evaluation{Category: FullHouse, Value: b.value}
	}
	if flushSuit >= 0 {
		b := newRankBuilder(Flush, short)
		b.addTop(suits[flushSuit], 5)
		flush = &Evaluation{Category: Flush, Value: b.value}
	}
	switch {
	case short && flush != nil:
		return *flush
	case fullHouse != nil:
		return *fullHouse
	case flush != nil:
		return *flush
	}

	if high, ok := straightHigh(rankMask, short); ok {
		b := newRankBuilder(Straight, short)
		b.add(high)
		return Evaluation{Category: Straight, Value: b.value}
	}

	if trips != 0 {
		t := highestRank(trips)
		b := newRankBuilder(ThreeOfAKind, short)
		b.add(t)
		b.addTop(rankMask&^(1<<t), 2)
		return Evaluation{Category: ThreeOfAKind, Value: b.value}
	}

	if bits.OnesCount16(pairs) >= 2 {
		p1 := highestRank(pairs)
		p2 := highestRank(pairs &^ (1 << p1))
		b := newRankBuilder(TwoPair, short)
		b.add(p1)
		b.add(p2)
		b.addTop(rankMask&^(1<<p1)&^(1<<p2), 1)
		return Evaluation{Category: TwoPair, Value: b.value}
	}

	if pairs != 0 {
		p := highestRank(pairs)
		b := newRankBuilder(Pair, short)
		b.add(p)
		b.addTop(rankMask&^(1<<p), 3)
		return Evaluation{Category: Pair, Value: b.value}
	}

	b := newRankBuilder(HighCard, short)
	b.addTop(rankMask, 5)
	return Evaluation{Category: HighCard, Value: b.value}
}

const (
	wheelMask          uint16 = 0x100F // A2345
	shortDeckWheelMask uint16 = 0x10F0 // A6789
)

// straightHigh returns the top rank of the highest straight in mask. Regular
// sequences are checked before the wheel so a six-high straight beats A-5.
func straightHigh(mask uint16, short bool) (uint8, bool) {
	seq := mask & (mask >> 1) & (mask >> 2) & (mask >> 3) & (mask >> 4)
	if seq != 0 {
		return highestRank(seq) + 4, true
	}
	if short {
		if mask&shortDeckWheelMask == shortDeckWheelMask {
			return Nine, true
		}
		return 0, false
	}
	if mask&wheelMask == wheelMask {
		return Five, true
	}
	return 0, false
}

func highestRank(mask uint16) uint8 {
	if mask == 0 {
		return 0
	}
	return uint8(bits.Len16(mask) - 1)
}

// bestFive finds the five cards producing value. It mirrors the rules used by
// Rank so the search is cheap relative to validation.
func bestFive(v Variant, hole, board []Card, value HandRank) []Card {
	short := v == ShortDeck
	var pick func() []Card
	if v.UsesExactlyTwoHoleCards() && len(board) >= 3 {
		pick = func() []Card {
			for i := 0; i < len(hole); i++ {
				for j := i + 1; j < len(hole); j++ {
					for a := 0; a < len(board); a++ {
						for b := a + 1; b < len(board); b++ {
							for c := b + 1; c < len(board); c++ {
								cards := []Card{hole[i], hole[j], board[a], board[b], board[c]}
								if evaluateMask(NewHand(cards...), short).Value == value {
									return cards
								}
							}
						}
					}
				}
			}
			return nil
		}
	} else {
		pool := append(append([]Card(nil), hole...), board...)
		if len(pool) <= 5 {
			pick = func() []Card { return pool }
		} else {
			pick = func() []Card {
				n := len(pool)
				for mask := 0; mask < 1<<n; mask++ {
					if bits.OnesCount(uint(mask)) != 5 {
						continue
					}
					cards := make([]Card, 0, 5)
					for i := range n {
						if mask&(1<<i) != 0 {
							cards = append(cards, pool[i])
						}
					}
					if evaluateMask(NewHand(cards...), short).Value == value {
						return cards
					}
				}
				return nil
			}
		}
	}
	cards := slices.Clone(pick())
	slices.SortStableFunc(cards, func(a, b Card) int {
		return cmp.Compare(b.Rank(), a.Rank())
	})
	return cards
}
