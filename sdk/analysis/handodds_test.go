package analysis

import (
	"context"
	"testing"

	"github.com/lox/pokeradvisor/internal/randutil"
	"github.com/lox/pokeradvisor/poker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateHandOddsRiver(t *testing.T) {
	t.Parallel()
	odds, err := CalculateHandOdds(context.Background(), poker.MustParseCards("AhAd"), poker.MustParseCards("KsQsJs2c3c"))
	require.NoError(t, err)
	assert.Equal(t, []HandOdds{{HandType: poker.Pair, Name: "Pair", Probability: 1, CurrentlyHave: true}}, odds)
}

func TestCalculateHandOddsFlopIsEnumerated(t *testing.T) {
	t.Parallel()
	hole, board := poker.MustParseCards("7h8h"), poker.MustParseCards("Th9h2c")
	odds, err := CalculateHandOdds(context.Background(), hole, board)
	require.NoError(t, err)
	require.NotEmpty(t, odds)

	byType := map[poker.HandType]HandOdds{}
	sum := 0.0
	for i, o := range odds {
		byType[o.HandType] = o
		sum += o.Probability
		if i > 0 {
			assert.GreaterOrEqual(t, odds[i-1].Probability, o.Probability, "sorted")
		}
	}
	assert.InDelta(t, 1.0, sum, 0.01)
	assert.LessOrEqual(t, sum, 1.0+1e-9)

	require.Contains(t, byType, poker.HighCard)
	assert.True(t, byType[poker.HighCard].CurrentlyHave)
	// Only the 6h and Jh make a straight flush: 91 of 1081 runouts.
	assert.InDelta(t, 91.0/1081.0, byType[poker.StraightFlush].Probability, 1e-12)

	again, err := CalculateHandOdds(context.Background(), hole, board, WithRNG(randutil.New(8)))
	require.NoError(t, err)
	assert.Equal(t, odds, again)
}

func TestCalculateHandOddsPreflopSamples(t *testing.T) {
	t.Parallel()
	run := func() []HandOdds {
		odds, err := CalculateHandOdds(context.Background(), poker.MustParseCards("AsKs"), nil,
			WithTrials(2000), WithWorkers(2), WithRNG(randutil.New(11)))
		require.NoError(t, err)
		return odds
	}
	odds := run()
	require.NotEmpty(t, odds)
	for i, o := range odds {
		assert.False(t, o.CurrentlyHave, "nothing is held preflop")
		assert.Greater(t, o.Probability, MinHandOdds)
		if i > 0 {
			assert.GreaterOrEqual(t, odds[i-1].Probability, o.Probability)
		}
	}
	assert.Equal(t, odds, run())
}

func TestCalculateHandOddsRejectsBadInput(t *testing.T) {
	t.Parallel()
	_, err := CalculateHandOdds(context.Background(), poker.MustParseCards("AsKs"), poker.MustParseCards("As2c3d"))
	assert.ErrorIs(t, err, poker.ErrDuplicateCard)
}
