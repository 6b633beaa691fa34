package poker

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateCards(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		variant Variant
		hole    []string
		board   []string
		errors  []string
	}{
		{
			name:  "valid flop",
			hole:  []string{"Ah", "Kd"},
			board: []string{"Qs", "Jc", "Th"},
		},
		{
			name:  "wrong counts are both reported",
			hole:  []string{"Ah"},
			board: []string{"Kd", "Qd"},
			errors: []string{
				"Expected 2 hole cards for Texas Hold'em, got 1",
				"Board must have 0, 3, 4, or 5 cards, got 2",
			},
		},
		{
			name:   "lower case rank",
			hole:   []string{"ah", "Kd"},
			errors: []string{`Invalid rank "a" in card "ah"`},
		},
		{
			name:   "upper case suit",
			hole:   []string{"AH", "Kd"},
			errors: []string{`Invalid suit "H" in card "AH"`},
		},
		{
			name:   "ten written as digits",
			hole:   []string{"10h", "Kd"},
			errors: []string{`Invalid card format: "10h"`},
		},
		{
			name:   "duplicate across hole and board",
			hole:   []string{"Ah", "Kd"},
			board:  []string{"Ah", "2c", "3c"},
			errors: []string{"Duplicate card detected: Ah"},
		},
		{
			name:    "short deck rejects low ranks",
			variant: ShortDeck,
			hole:    []string{"2h", "Kd"},
			errors:  []string{`Rank "2" is not used in Short Deck (card "2h")`},
		},
		{
			name:    "omaha needs four hole cards",
			variant: Omaha,
			hole:    []string{"Ah", "Kd"},
			errors:  []string{"Expected 4 hole cards for Omaha, got 2"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			result := ValidateCards(tc.variant, tc.hole, tc.board)
			assert.Equal(t, len(tc.errors) == 0, result.Valid)
			assert.Equal(t, tc.errors, result.Errors)
		})
	}
}

func TestValidationErrorAggregates(t *testing.T) {
	t.Parallel()
	err := ValidateCards(TexasHoldem, []string{"Ah"}, []string{"xx"}).Err()
	require.Error(t, err)

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Len(t, verr.Errors, 3)
	assert.Contains(t, err.Error(), "; ")

	assert.NoError(t, ValidateCards(TexasHoldem, []string{"Ah", "Kd"}, nil).Err())
}

func TestParseHoleAndBoard(t *testing.T) {
	t.Parallel()
	hole, board, err := ParseHoleAndBoard(TexasHoldem, []string{"Ah", "Kd"}, []string{"Qs", "Jc", "Th"})
	require.NoError(t, err)
	assert.Equal(t, "Ah Kd", FormatCards(hole))
	assert.Equal(t, "Qs Jc Th", FormatCards(board))

	_, _, err = ParseHoleAndBoard(TexasHoldem, []string{"Ah", "Ah"}, nil)
	var verr *ValidationError
	assert.True(t, errors.As(err, &verr))
}

func TestStreetFromBoard(t *testing.T) {
	t.Parallel()
	for n, want := range map[int]Street{0: Preflop, 3: Flop, 4: Turn, 5: River} {
		got, err := StreetFromBoard(n)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := StreetFromBoard(2)
	assert.True(t, errors.Is(err, ErrInvalidCardCount))
}

func TestParseVariant(t *testing.T) {
	t.Parallel()
	for _, v := range Variants {
		parsed, err := ParseVariant(v.String())
		require.NoError(t, err)
		assert.Equal(t, v, parsed)
	}
	v, err := ParseVariant("")
	require.NoError(t, err)
	assert.Equal(t, TexasHoldem, v)

	_, err = ParseVariant("razz")
	assert.Error(t, err)
}

func TestHandName(t *testing.T) {
	t.Parallel()
	tests := []struct {
		variant Variant
		hole    string
		board   string
		want    string
	}{
		{TexasHoldem, "AsAh", "", "Pocket Aces"},
		{TexasHoldem, "AsKs", "", "Ace-King suited"},
		{TexasHoldem, "KdAc", "", "Ace-King offsuit"},
		{TexasHoldem, "AsAd", "Kc7h2s", "Pair of Aces"},
		{TexasHoldem, "Kh7d", "KcKs7c2d9h", "Full House, Kings over Sevens"},
		{Omaha, "AsAdKsKd", "", "Pocket Aces, double-suited"},
		{Omaha, "AsKdQcJh", "", "Ace High, rainbow"},
	}
	for _, tc := range tests {
		t.Run(tc.want, func(t *testing.T) {
			t.Parallel()
			var board []Card
			if tc.board != "" {
				board = MustParseCards(tc.board)
			}
			assert.Equal(t, tc.want, HandName(tc.variant, MustParseCards(tc.hole), board))
		})
	}
}
