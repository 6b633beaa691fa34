package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/lox/pokeradvisor/poker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHands(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		variant  poker.Variant
		input    []string
		board    string
		expected int
		hasError bool
	}{
		{name: "Single hand", input: []string{"AcKh"}, expected: 1},
		{name: "Multiple hands", input: []string{"AcKh", "KdQs"}, expected: 2},
		{name: "Hand with spaces", input: []string{"Ac Kh"}, expected: 1},
		{name: "Omaha hand", variant: poker.Omaha, input: []string{"AcKhQdJs"}, expected: 1},
		{name: "With board", input: []string{"AcKh"}, board: "Td7s8h", expected: 1},
		{name: "Invalid hand - too many cards", input: []string{"AcKhQd"}, hasError: true},
		{name: "Invalid hand - too few cards", input: []string{"Ac"}, hasError: true},
		{name: "Invalid card format", input: []string{"AcXy"}, hasError: true},
		{name: "Duplicate between hand and board", input: []string{"AcKh"}, board: "Ac7s8h", hasError: true},
		{name: "Short deck rejects low cards", variant: poker.ShortDeck, input: []string{"2c3d"}, hasError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			hands, _, err := parseHands(tt.variant, tt.input, tt.board)
			if tt.hasError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Len(t, hands, tt.expected)
			for _, hand := range hands {
				assert.Len(t, hand, tt.variant.HoleCards())
			}
		})
	}
}

func TestRun(t *testing.T) {
	t.Parallel()
	seed := int64(42)
	var out bytes.Buffer
	err := run(context.Background(), CLI{
		Hands:         []string{"AsAh", "7c2d"},
		Board:         "Kd9s4c",
		Variant:       "texasHoldem",
		Opponents:     1,
		Possibilities: true,
		Iterations:    2000,
		Seed:          &seed,
	}, &out)
	require.NoError(t, err)

	text := out.String()
	assert.Contains(t, text, "As Ah")
	assert.Contains(t, text, "7c 2d")
	assert.Contains(t, text, "equity")
	assert.Contains(t, text, "Pair")
	assert.Contains(t, text, "2000 iterations against 1 opponent(s)")
}

func TestRunRejectsBadVariant(t *testing.T) {
	t.Parallel()
	var out bytes.Buffer
	err := run(context.Background(), CLI{Hands: []string{"AsAh"}, Variant: "razz", Iterations: 100}, &out)
	assert.Error(t, err)
	assert.Empty(t, out.String())
}
