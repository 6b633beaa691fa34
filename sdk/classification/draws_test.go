package classification

import (
	"errors"
	"testing"

	"github.com/lox/pokeradvisor/internal/randutil"
	"github.com/lox/pokeradvisor/poker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type wantDraw struct {
	kind  DrawType
	count float64
}

func summarize(outs []OutInfo) []wantDraw {
	got := make([]wantDraw, len(outs))
	for i, o := range outs {
		got[i] = wantDraw{o.Type, o.Count}
	}
	return got
}

func TestCalculateOuts(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		variant poker.Variant
		hole    string
		board   string
		want    []wantDraw
	}{
		{
			name:  "flush draw with overcards",
			hole:  "AhKh",
			board: "7h2h9c",
			want:  []wantDraw{{FlushDraw, 9}, {Overcards, 6}},
		},
		{
			name:  "flush and open ended straight draw",
			hole:  "7h8h",
			board: "Th9h2c",
			want:  []wantDraw{{FlushDraw, 9}, {OpenEndedStraightDraw, 8}},
		},
		{
			name:  "open ended straight draw",
			hole:  "9s8s",
			board: "7d6c2h",
			want:  []wantDraw{{OpenEndedStraightDraw, 8}, {Overcards, 6}},
		},
		{
			name:  "gutshot",
			hole:  "9s7d",
			board: "6c5h2d",
			want:  []wantDraw{{GutshotStraightDraw, 4}, {Overcards, 6}},
		},
		{
			name:  "wheel draw open at both ends",
			hole:  "2s3d",
			board: "4c5hKd",
			want:  []wantDraw{{OpenEndedStraightDraw, 8}},
		},
		{
			name:  "ace to four is one ended",
			hole:  "As2d",
			board: "3c4hKd",
			want:  []wantDraw{{GutshotStraightDraw, 4}, {Overcards, 3}},
		},
		{
			name:  "pocket pair set draw",
			hole:  "7s7d",
			board: "Kc2h9d",
			want:  []wantDraw{{SetDraw, 2}},
		},
		{
			name:  "set draws to full house or quads",
			hole:  "7s7d",
			board: "7cKh2d",
			want:  []wantDraw{{FullHouseDraw, 7}},
		},
		{
			name:    "short deck ace plays below six",
			variant: poker.ShortDeck,
			hole:    "9s8s",
			board:   "7d6cKh",
			want:    []wantDraw{{OpenEndedStraightDraw, 8}},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			outs, err := CalculateOuts(tc.variant, poker.MustParseCards(tc.hole), poker.MustParseCards(tc.board), randutil.New(1))
			require.NoError(t, err)
			assert.Equal(t, tc.want, summarize(outs))
			for _, o := range outs {
				assert.Len(t, o.Outs, int(o.Count), "%s outs", o.Type)
				assert.NotEmpty(t, o.Description)
			}
		})
	}
}

func TestCalculateOutsCards(t *testing.T) {
	t.Parallel()

	outs, err := CalculateOuts(poker.TexasHoldem, poker.MustParseCards("2s3d"), poker.MustParseCards("4c5hKd"), randutil.New(2))
	require.NoError(t, err)
	require.Len(t, outs, 1)
	ranks := map[uint8]int{}
	for _, c := range outs[0].Outs {
		ranks[c.Rank()]++
	}
	assert.Equal(t, map[uint8]int{poker.Ace: 4, poker.Six: 4}, ranks)

	outs, err = CalculateOuts(poker.TexasHoldem, poker.MustParseCards("AhKh"), poker.MustParseCards("7h2h9c"), randutil.New(2))
	require.NoError(t, err)
	for _, c := range outs[0].Outs {
		assert.Equal(t, poker.Hearts, c.Suit())
	}
}

func TestCalculateOutsBackdoor(t *testing.T) {
	t.Parallel()
	outs, err := CalculateOuts(poker.TexasHoldem, poker.MustParseCards("AhJd"), poker.MustParseCards("Kh7h2c"), randutil.New(3))
	require.NoError(t, err)

	types := map[DrawType]OutInfo{}
	for _, o := range outs {
		types[o.Type] = o
	}
	require.Contains(t, types, BackdoorFlushDraw)
	assert.Equal(t, BackdoorWeight, types[BackdoorFlushDraw].Count)
	assert.Empty(t, types[BackdoorFlushDraw].Outs)
	assert.True(t, types[BackdoorFlushDraw].Clean)
	require.Contains(t, types, BackdoorStraightDraw)
}

func TestCalculateOutsOmahaNeedsTwoSuitedHoleCards(t *testing.T) {
	t.Parallel()
	outs, err := CalculateOuts(poker.Omaha, poker.MustParseCards("AhKd7s2c"), poker.MustParseCards("9h5h3h"), randutil.New(4))
	require.NoError(t, err)
	for _, o := range outs {
		assert.NotEqual(t, FlushDraw, o.Type)
	}
}

func TestCalculateOutsNoOutsPreflopOrRiver(t *testing.T) {
	t.Parallel()
	outs, err := CalculateOuts(poker.TexasHoldem, poker.MustParseCards("AsKs"), nil, nil)
	require.NoError(t, err)
	assert.Empty(t, outs)

	outs, err = CalculateOuts(poker.TexasHoldem, poker.MustParseCards("AsKs"), poker.MustParseCards("2s3s9dTcJh"), nil)
	require.NoError(t, err)
	assert.Empty(t, outs)
}

func TestCalculateOutsRejectsDuplicates(t *testing.T) {
	t.Parallel()
	_, err := CalculateOuts(poker.TexasHoldem, poker.MustParseCards("AsKs"), poker.MustParseCards("As2c3d"), nil)
	assert.True(t, errors.Is(err, poker.ErrDuplicateCard))
}

func TestCalculateOutsIsReproducible(t *testing.T) {
	t.Parallel()
	hole, board := poker.MustParseCards("AhKh"), poker.MustParseCards("7h2h9c")
	first, err := CalculateOuts(poker.TexasHoldem, hole, board, randutil.New(5))
	require.NoError(t, err)
	second, err := CalculateOuts(poker.TexasHoldem, hole, board, randutil.New(5))
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestSetDrawIsClean(t *testing.T) {
	t.Parallel()
	outs, err := CalculateOuts(poker.TexasHoldem, poker.MustParseCards("7s7d"), poker.MustParseCards("Kc2h9d"), randutil.New(6))
	require.NoError(t, err)
	require.Len(t, outs, 1)
	assert.True(t, outs[0].Clean)
}

func TestTotalOuts(t *testing.T) {
	t.Parallel()
	ah, kh, qh := poker.MustParseCard("Ah"), poker.MustParseCard("Kh"), poker.MustParseCard("Qh")
	summary := TotalOuts([]OutInfo{
		{Type: GutshotStraightDraw, Outs: []poker.Card{kh, qh}, Count: 2, Clean: false},
		{Type: FlushDraw, Outs: []poker.Card{ah, kh}, Count: 2, Clean: true},
		{Type: BackdoorStraightDraw, Count: BackdoorWeight, Clean: true},
	})
	assert.Equal(t, []poker.Card{ah, kh}, summary.Clean)
	assert.Equal(t, []poker.Card{qh}, summary.Dirty)
	assert.Equal(t, 2, summary.CleanCount())
	assert.Equal(t, 1, summary.DirtyCount())
}

func TestTotalOutsDeduplicatesAcrossDraws(t *testing.T) {
	t.Parallel()
	hole, board := poker.MustParseCards("7h8h"), poker.MustParseCards("Th9h2c")
	outs, err := CalculateOuts(poker.TexasHoldem, hole, board, randutil.New(4))
	require.NoError(t, err)

	summary := TotalOuts(outs)
	// 9 hearts plus the 6 non-heart sixes and jacks; 6h and Jh count once.
	assert.Equal(t, 15, summary.CleanCount()+summary.DirtyCount())

	seen := poker.NewHand(hole...) | poker.NewHand(board...)
	for _, c := range append(append([]poker.Card(nil), summary.Clean...), summary.Dirty...) {
		assert.False(t, seen.HasCard(c), "%s counted twice or already dealt", c)
		seen.AddCard(c)
	}
	assert.LessOrEqual(t, summary.CleanCount()+summary.DirtyCount(), 47)
}

func TestPrimaryDraw(t *testing.T) {
	t.Parallel()
	_, ok := PrimaryDraw(nil)
	assert.False(t, ok)

	best, ok := PrimaryDraw([]OutInfo{
		{Type: Overcards, Count: 6},
		{Type: FlushDraw, Count: 9},
		{Type: SetDraw, Count: 2},
	})
	require.True(t, ok)
	assert.Equal(t, FlushDraw, best.Type)
	assert.Equal(t, "Flush", best.Type.ImprovesTo())
}

func TestDrawTypeText(t *testing.T) {
	t.Parallel()
	for dt := FlushDraw; dt <= BackdoorStraightDraw; dt++ {
		text, err := dt.MarshalText()
		require.NoError(t, err)
		var back DrawType
		require.NoError(t, back.UnmarshalText(text))
		assert.Equal(t, dt, back)
	}
	assert.Equal(t, "Open-Ended Straight Draw", OpenEndedStraightDraw.String())
	assert.Equal(t, "gutshotStraightDraw", GutshotStraightDraw.Tag())
}
