package analysis

import (
	"context"
	rand "math/rand/v2"
	"slices"

	"github.com/lox/pokeradvisor/poker"
)

const (
	// MinHandOdds is the probability below which a category is dropped from
	// the hand odds table unless the hero already holds it.
	MinHandOdds = 0.001
	// exactRunoutLimit is the largest number of board runouts enumerated
	// instead of sampled. It covers the flop (C(47,2)) and turn.
	exactRunoutLimit = 1081
)

// HandOdds is the chance of finishing the hand with a given category.
type HandOdds struct {
	HandType      poker.HandType `json:"-"`
	Name          string         `json:"handType"`
	Probability   float64        `json:"probability"`
	CurrentlyHave bool           `json:"currentlyHave"`
}

// CalculateHandOdds returns the probability of the hero's final hand landing
// in each category once the board is complete. Postflop runouts are
// enumerated exactly; preflop boards are sampled with the configured trials.
// Categories under MinHandOdds are dropped unless currently held, and the
// table is sorted by probability, strongest category first on ties.
func CalculateHandOdds(ctx context.Context, hole, board []poker.Card, opts ...Option) ([]HandOdds, error) {
	o := newOptions(opts)
	if err := validateSnapshot(o.variant, hole, board); err != nil {
		return nil, err
	}

	var current poker.HandType
	if len(board) >= 3 {
		current = poker.Rank(o.variant, hole, board).Category
	}

	known := poker.NewHand(hole...) | poker.NewHand(board...)
	remaining := poker.RemainingDeck(o.variant, known).Cards()
	need := 5 - len(board)

	var counts [poker.RoyalFlush + 1]int
	total := 0
	if binomial(len(remaining), need) <= exactRunoutLimit {
		full := append(append(make([]poker.Card, 0, 5), board...), make([]poker.Card, need)...)
		if need == 0 {
			counts[poker.Rank(o.variant, hole, board).Category]++
			total = 1
		}
		var err error
		forEachCombination(remaining, need, func(runout []poker.Card) bool {
			if total%cancelCheck == 0 {
				if err = ctx.Err(); err != nil {
					return false
				}
			}
			copy(full[len(board):], runout)
			counts[poker.Rank(o.variant, hole, full).Category]++
			total++
			return true
		})
		if err != nil {
			return nil, err
		}
	} else {
		parts, err := fanOut(ctx, o, func(ctx context.Context, n int, rng *rand.Rand) ([poker.RoyalFlush + 1]int, error) {
			return sampleRunouts(ctx, o.variant, hole, board, n, rng)
		})
		if err != nil {
			return nil, err
		}
		for _, p := range parts {
			for i, c := range p {
				counts[i] += c
				total += c
			}
		}
	}
	if total == 0 {
		return nil, nil
	}

	odds := make([]HandOdds, 0, len(poker.HandTypes))
	for _, ht := range poker.HandTypes {
		p := float64(counts[ht]) / float64(total)
		if p <= MinHandOdds && ht != current {
			continue
		}
		odds = append(odds, HandOdds{
			HandType:      ht,
			Name:          ht.String(),
			Probability:   p,
			CurrentlyHave: ht == current,
		})
	}
	slices.SortStableFunc(odds, func(a, b HandOdds) int {
		if a.Probability != b.Probability {
			if a.Probability > b.Probability {
				return -1
			}
			return 1
		}
		return int(b.HandType) - int(a.HandType)
	})
	return odds, nil
}

func sampleRunouts(ctx context.Context, v poker.Variant, hole, board []poker.Card, n int, rng *rand.Rand) ([poker.RoyalFlush + 1]int, error) {
	var counts [poker.RoyalFlush + 1]int
	deck := poker.RemainingDeck(v, poker.NewHand(hole...)|poker.NewHand(board...))
	full := append(make([]poker.Card, 0, 5), board...)
	need := 5 - len(board)
	for i := range n {
		if i%cancelCheck == 0 {
			if err := ctx.Err(); err != nil {
				return counts, err
			}
		}
		deck.Shuffle(rng)
		runout, _ := deck.Deal(need)
		full = append(full[:len(board)], runout...)
		counts[poker.Rank(v, hole, full).Category]++
	}
	return counts, nil
}
