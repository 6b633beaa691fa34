package analyzer

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/google/uuid"
	"github.com/lox/pokeradvisor/poker"
	"github.com/lox/pokeradvisor/sdk/analysis"
	"github.com/lox/pokeradvisor/sdk/classification"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func float(v float64) *float64 { return &v }

func newTestAnalyzer(t *testing.T, clock quartz.Clock) *Analyzer {
	t.Helper()
	seed := int64(7)
	return New(Options{
		EquityTrials:   800,
		HandOddsTrials: 800,
		Workers:        2,
		Seed:           &seed,
		Ranges:         map[poker.Variant]*analysis.Range{poker.TexasHoldem: analysis.DefaultRange(poker.TexasHoldem)},
		Clock:          clock,
		Logger:         log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel}),
	})
}

func TestAnalyzeFlopDraw(t *testing.T) {
	t.Parallel()
	a := newTestAnalyzer(t, quartz.NewMock(t))

	res, err := a.Analyze(context.Background(), Request{
		HoleCards:    []string{"7h", "8h"},
		BoardCards:   []string{"Th", "9h", "2c"},
		Variant:      "texasHoldem",
		PotSize:      float(100),
		AmountToCall: float(50),
	})
	require.NoError(t, err)

	_, err = uuid.Parse(res.ID)
	assert.NoError(t, err)
	assert.Equal(t, poker.Flop, res.Street)
	assert.Equal(t, poker.TexasHoldem, res.Variant)
	require.NotNil(t, res.PotOdds)
	assert.InDelta(t, 1.0/3.0, *res.PotOdds, 1e-12)
	assert.Equal(t, "2.0:1", res.PotOddsRatio)

	types := map[classification.DrawType]float64{}
	for _, o := range res.Outs {
		types[o.Type] = o.Count
	}
	assert.Equal(t, 9.0, types[classification.FlushDraw])
	assert.Equal(t, 8.0, types[classification.OpenEndedStraightDraw])
	// The 6h and Jh complete both draws and are counted once.
	assert.Equal(t, 15, res.TotalCleanOuts+res.TotalDirtyOuts)
	assert.Equal(t, "Flush", res.ImprovedHandName)

	assert.Greater(t, res.Equity, 0.3)
	assert.LessOrEqual(t, res.EquityInterval[0], res.Equity)
	assert.GreaterOrEqual(t, res.EquityInterval[1], res.Equity)
	assert.NotEmpty(t, res.HandOdds)
	assert.Equal(t, 1081, res.WhatBeatsMe.TotalPossible)
	assert.NotEmpty(t, res.TopActions)
	assert.LessOrEqual(t, len(res.TopActions), 3)
	assert.NotEmpty(t, res.Explanation)
	assert.NotNil(t, res.HandStrength.Draw)
	assert.Zero(t, res.Elapsed, "mock clock does not move")
}

func TestAnalyzeIsReproducibleWithSeed(t *testing.T) {
	t.Parallel()
	a := newTestAnalyzer(t, quartz.NewMock(t))
	req := Request{HoleCards: []string{"As", "Kd"}, BoardCards: []string{"Kc", "7d", "2s", "9h"}}

	first, err := a.Analyze(context.Background(), req)
	require.NoError(t, err)
	second, err := a.Analyze(context.Background(), req)
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, first.Simulation, second.Simulation)
	assert.Equal(t, first.HandOdds, second.HandOdds)
	assert.Equal(t, first.Outs, second.Outs)
	assert.Equal(t, first.TopActions, second.TopActions)
}

func TestAnalyzeRiver(t *testing.T) {
	t.Parallel()
	a := newTestAnalyzer(t, quartz.NewMock(t))
	res, err := a.Analyze(context.Background(), Request{
		HoleCards:  []string{"Ah", "Ad"},
		BoardCards: []string{"Ks", "Qs", "Js", "2c", "3c"},
	})
	require.NoError(t, err)

	assert.Equal(t, poker.River, res.Street)
	assert.Equal(t, "Pair of Aces", res.HandName)
	assert.NotNil(t, res.Outs)
	assert.Empty(t, res.Outs)
	assert.True(t, res.Simulation.Deterministic)
	assert.Equal(t, []analysis.HandOdds{{HandType: poker.Pair, Name: "Pair", Probability: 1, CurrentlyHave: true}}, res.HandOdds)
	assert.Nil(t, res.PotOdds)
	assert.Empty(t, res.ImprovedHandName)
}

func TestAnalyzePreflopOmaha(t *testing.T) {
	t.Parallel()
	a := newTestAnalyzer(t, quartz.NewMock(t))
	res, err := a.Analyze(context.Background(), Request{
		HoleCards: []string{"As", "Ah", "Ks", "Kh"},
		Variant:   "omaha",
	})
	require.NoError(t, err)
	assert.Equal(t, poker.Preflop, res.Street)
	assert.Empty(t, res.Outs)
	assert.Empty(t, res.WhatBeatsMe.Groups)
	assert.Greater(t, res.Equity, 0.5)
}

func TestAnalyzeValidation(t *testing.T) {
	t.Parallel()
	a := newTestAnalyzer(t, quartz.NewMock(t))

	_, err := a.Analyze(context.Background(), Request{
		HoleCards:  []string{"Ah", "Ah", "Kd"},
		BoardCards: []string{"Xx"},
	})
	var verr *poker.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.GreaterOrEqual(t, len(verr.Errors), 3, "every problem is reported at once: %v", verr.Errors)

	_, err = a.Analyze(context.Background(), Request{HoleCards: []string{"Ah", "Kd"}, Variant: "razz"})
	assert.ErrorIs(t, err, ErrInvalidRequest)

	_, err = a.Analyze(context.Background(), Request{HoleCards: []string{"Ah", "Kd"}, PotSize: float(-1), AmountToCall: float(5)})
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestAnalyzeNoBetWhenCallIsZero(t *testing.T) {
	t.Parallel()
	a := newTestAnalyzer(t, quartz.NewMock(t))
	res, err := a.Analyze(context.Background(), Request{
		HoleCards:    []string{"Ah", "Kd"},
		PotSize:      float(100),
		AmountToCall: float(0),
	})
	require.NoError(t, err)
	assert.Nil(t, res.PotOdds)
	assert.Empty(t, res.PotOddsRatio)
}

func TestAnalyzeCancelled(t *testing.T) {
	t.Parallel()
	a := newTestAnalyzer(t, quartz.NewMock(t))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := a.Analyze(ctx, Request{HoleCards: []string{"Ah", "Kd"}, BoardCards: []string{"2c", "3d", "9h"}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.False(t, errors.Is(err, ErrTimeout))
}

func TestAnalyzeTimeout(t *testing.T) {
	t.Parallel()
	a := New(Options{
		EquityTrials: 50_000_000,
		Timeout:      time.Millisecond,
		Logger:       log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel}),
	})
	_, err := a.Analyze(context.Background(), Request{
		HoleCards: []string{"As", "Ah", "Ks", "Kh"},
		Variant:   "omaha",
	})
	assert.ErrorIs(t, err, ErrTimeout)
}
