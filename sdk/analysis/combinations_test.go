package analysis

import (
	"testing"

	"github.com/lox/pokeradvisor/poker"
	"github.com/stretchr/testify/assert"
)

func TestForEachCombination(t *testing.T) {
	t.Parallel()
	cards := poker.NewDeck(poker.TexasHoldem).Cards()[:10]
	for k := 1; k <= 4; k++ {
		seen := map[poker.Hand]bool{}
		forEachCombination(cards, k, func(c []poker.Card) bool {
			h := poker.NewHand(c...)
			assert.Equal(t, k, h.CountCards())
			seen[h] = true
			return true
		})
		assert.Len(t, seen, binomial(10, k), "k=%d", k)
	}
}

func TestForEachCombinationStopsEarly(t *testing.T) {
	t.Parallel()
	calls := 0
	forEachCombination(poker.NewDeck(poker.TexasHoldem).Cards(), 2, func([]poker.Card) bool {
		calls++
		return calls < 5
	})
	assert.Equal(t, 5, calls)
}

func TestForEachCombinationFromPartitions(t *testing.T) {
	t.Parallel()
	cards := poker.NewDeck(poker.TexasHoldem).Cards()[:12]
	total := 0
	for _, block := range [][2]int{{0, 3}, {3, 7}, {7, 12}} {
		forEachCombinationFrom(cards, 3, block[0], block[1], func([]poker.Card) bool {
			total++
			return true
		})
	}
	assert.Equal(t, binomial(12, 3), total)
}

func TestBinomial(t *testing.T) {
	t.Parallel()
	assert.Equal(t, 1081, binomial(47, 2))
	assert.Equal(t, 2598960, binomial(52, 5))
	assert.Equal(t, 1, binomial(5, 0))
	assert.Zero(t, binomial(3, 4))
}
