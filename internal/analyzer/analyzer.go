// Package analyzer runs a complete hand analysis: validation, equity,
// outs, hand odds, what-beats-me, strength and advice.
package analyzer

import (
	"context"
	"errors"
	"fmt"
	rand "math/rand/v2"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/google/uuid"
	"github.com/lox/pokeradvisor/internal/randutil"
	"github.com/lox/pokeradvisor/poker"
	"github.com/lox/pokeradvisor/sdk/advisor"
	"github.com/lox/pokeradvisor/sdk/analysis"
	"github.com/lox/pokeradvisor/sdk/classification"
	"golang.org/x/sync/errgroup"
)

var (
	// ErrInvalidRequest marks malformed requests that are not card problems,
	// such as an unknown variant or a negative pot.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrTimeout means the analysis did not finish within its budget.
	ErrTimeout = errors.New("analysis timed out")
)

// Request is a hand to analyze, with cards as two-character codes.
type Request struct {
	HoleCards    []string `json:"holeCards"`
	BoardCards   []string `json:"boardCards"`
	Variant      string   `json:"variant,omitempty"`
	PotSize      *float64 `json:"potSize,omitempty"`
	AmountToCall *float64 `json:"amountToCall,omitempty"`
	GTOMode      bool     `json:"gtoMode,omitempty"`
}

// Result is a complete analysis. It is only ever returned whole.
type Result struct {
	ID                string                          `json:"id"`
	Variant           poker.Variant                   `json:"variant"`
	HoleCards         []poker.Card                    `json:"holeCards"`
	BoardCards        []poker.Card                    `json:"boardCards"`
	Street            poker.Street                    `json:"street"`
	Equity            float64                         `json:"equity"`
	EquityInterval    [2]float64                      `json:"equityInterval"`
	Simulation        analysis.EquityResult           `json:"simulation"`
	Outs              []classification.OutInfo        `json:"outs"`
	TotalCleanOuts    int                             `json:"totalCleanOuts"`
	TotalDirtyOuts    int                             `json:"totalDirtyOuts"`
	PotOdds           *float64                        `json:"potOdds"`
	PotOddsRatio      string                          `json:"potOddsRatio,omitempty"`
	RecommendedAction advisor.Action                  `json:"recommendedAction"`
	Confidence        advisor.Confidence              `json:"confidence"`
	TopActions        []advisor.ActionOption          `json:"topActions"`
	HandOdds          []analysis.HandOdds             `json:"handOdds"`
	WhatBeatsMe       analysis.WhatBeatsMe            `json:"whatBeatsMe"`
	HandName          string                          `json:"handName"`
	ImprovedHandName  string                          `json:"improvedHandName,omitempty"`
	HandStrength      classification.HandStrengthInfo `json:"handStrength"`
	Explanation       string                          `json:"explanation"`
	Elapsed           time.Duration                   `json:"-"`
	ElapsedMillis     int64                           `json:"elapsedMs"`
}

// Summary returns the fields the advisor narrates.
func (r *Result) Summary() advisor.Summary {
	return advisor.Summary{
		Action:    r.RecommendedAction,
		Equity:    r.Equity,
		PotOdds:   r.PotOdds,
		Street:    r.Street,
		HandName:  r.HandName,
		Outs:      r.Outs,
		CleanOuts: r.TotalCleanOuts,
		DirtyOuts: r.TotalDirtyOuts,
	}
}

// Options configures an Analyzer.
type Options struct {
	EquityTrials   int
	HandOddsTrials int
	Opponents      int
	// Workers caps goroutines per simulation; zero means GOMAXPROCS.
	Workers int
	// Seed pins every request to the same random sequence.
	Seed *int64
	// Ranges maps a variant to its opponent range. Missing or nil entries
	// mean random opponent holdings.
	Ranges  map[poker.Variant]*analysis.Range
	Timeout time.Duration
	Clock   quartz.Clock
	Logger  *log.Logger
}

// Analyzer runs analyses. It is safe for concurrent use.
type Analyzer struct {
	opts   Options
	clock  quartz.Clock
	logger *log.Logger
}

// New creates an Analyzer, filling unset options with defaults.
func New(opts Options) *Analyzer {
	if opts.EquityTrials <= 0 {
		opts.EquityTrials = analysis.DefaultTrials
	}
	if opts.HandOddsTrials <= 0 {
		opts.HandOddsTrials = 5000
	}
	if opts.Opponents <= 0 {
		opts.Opponents = 1
	}
	if opts.Clock == nil {
		opts.Clock = quartz.NewReal()
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	return &Analyzer{
		opts:   opts,
		clock:  opts.Clock,
		logger: opts.Logger.WithPrefix("analyzer"),
	}
}

func (a *Analyzer) newRNG() *rand.Rand {
	return randutil.FromOptional(a.opts.Seed)
}

// Analyze validates req and runs every analysis. Card problems come back as
// a *poker.ValidationError listing all of them; other malformed input wraps
// ErrInvalidRequest.
func (a *Analyzer) Analyze(ctx context.Context, req Request) (*Result, error) {
	start := a.clock.Now()

	variant, err := poker.ParseVariant(req.Variant)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	potOdds, err := potOddsFor(req)
	if err != nil {
		return nil, err
	}
	hole, board, err := poker.ParseHoleAndBoard(variant, req.HoleCards, req.BoardCards)
	if err != nil {
		return nil, err
	}
	street, err := poker.StreetFromBoard(len(board))
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)
	if a.opts.Timeout > 0 {
		timer := a.clock.AfterFunc(a.opts.Timeout, func() { cancel(ErrTimeout) }, "analyzer", "timeout")
		defer timer.Stop()
	}

	res := &Result{
		ID:         uuid.NewString(),
		Variant:    variant,
		HoleCards:  hole,
		BoardCards: board,
		Street:     street,
		PotOdds:    potOdds,
		HandName:   poker.HandName(variant, hole, board),
	}
	if potOdds != nil {
		res.PotOddsRatio = analysis.FormatPotOddsRatio(*req.PotSize, *req.AmountToCall)
	}

	if err := a.simulate(ctx, variant, hole, board, res); err != nil {
		if cause := context.Cause(ctx); errors.Is(cause, ErrTimeout) {
			return nil, fmt.Errorf("%w after %s", ErrTimeout, a.opts.Timeout)
		}
		return nil, err
	}

	summary := classification.TotalOuts(res.Outs)
	res.TotalCleanOuts = summary.CleanCount()
	res.TotalDirtyOuts = summary.DirtyCount()
	if primary, ok := classification.PrimaryDraw(res.Outs); ok {
		res.ImprovedHandName = primary.Type.ImprovesTo()
	}

	strength, err := classification.CategorizeStrength(variant, hole, board, res.Outs)
	if err != nil {
		return nil, fmt.Errorf("categorizing hand strength: %w", err)
	}
	res.HandStrength = strength

	in := advisor.Input{
		Equity:    res.Equity,
		PotOdds:   potOdds,
		Street:    street,
		CleanOuts: res.TotalCleanOuts,
		Strength:  &res.HandStrength,
	}
	rec := advisor.Recommend(in)
	res.RecommendedAction = rec.Action
	res.Confidence = rec.Confidence
	res.TopActions = advisor.TopActions(in)
	res.Explanation = advisor.Explain(res.Summary(), req.GTOMode)

	res.Elapsed = a.clock.Since(start)
	res.ElapsedMillis = res.Elapsed.Milliseconds()
	a.logger.Debug("Analyzed hand",
		"id", res.ID,
		"variant", variant,
		"street", street,
		"hand", res.HandName,
		"equity", fmt.Sprintf("%.3f", res.Equity),
		"action", res.RecommendedAction,
		"elapsed", res.Elapsed)
	return res, nil
}

// simulate runs the independent analyses concurrently and stores their
// results on res.
func (a *Analyzer) simulate(ctx context.Context, v poker.Variant, hole, board []poker.Card, res *Result) error {
	rngs := randutil.Split(a.newRNG(), 3)
	common := []analysis.Option{analysis.WithVariant(v)}
	if a.opts.Workers > 0 {
		common = append(common, analysis.WithWorkers(a.opts.Workers))
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		eq, err := a.equity(gctx, v, hole, board, common, rngs[0])
		if err != nil {
			return fmt.Errorf("calculating equity: %w", err)
		}
		res.Simulation = eq
		res.Equity = eq.Equity()
		lo, hi := eq.ConfidenceInterval()
		res.EquityInterval = [2]float64{lo, hi}
		return nil
	})
	g.Go(func() error {
		opts := append(append([]analysis.Option(nil), common...),
			analysis.WithTrials(a.opts.HandOddsTrials), analysis.WithRNG(rngs[1]))
		odds, err := analysis.CalculateHandOdds(gctx, hole, board, opts...)
		if err != nil {
			return fmt.Errorf("calculating hand odds: %w", err)
		}
		res.HandOdds = odds
		return nil
	})
	g.Go(func() error {
		outs, err := classification.CalculateOuts(v, hole, board, rngs[2])
		if err != nil {
			return fmt.Errorf("calculating outs: %w", err)
		}
		if outs == nil {
			outs = []classification.OutInfo{}
		}
		res.Outs = outs
		return nil
	})
	g.Go(func() error {
		wbm, err := analysis.AnalyzeWhatBeatsMe(gctx, hole, board, common...)
		if err != nil {
			return fmt.Errorf("analyzing what beats me: %w", err)
		}
		res.WhatBeatsMe = wbm
		return nil
	})
	return g.Wait()
}

// equity runs the equity simulation against the configured range, falling
// back to random holdings when the range has no live combination.
func (a *Analyzer) equity(ctx context.Context, v poker.Variant, hole, board []poker.Card, common []analysis.Option, rng *rand.Rand) (analysis.EquityResult, error) {
	opts := append(append([]analysis.Option(nil), common...),
		analysis.WithOpponents(a.opts.Opponents),
		analysis.WithTrials(a.opts.EquityTrials),
		analysis.WithRNG(rng))
	r := a.opts.Ranges[v]
	if r == nil {
		return analysis.CalculateEquity(ctx, hole, board, opts...)
	}

	eq, err := analysis.CalculateEquity(ctx, hole, board, append(opts, analysis.WithOpponentRange(r))...)
	if errors.Is(err, analysis.ErrEmptyRange) {
		a.logger.Warn("Opponent range is dead on this board, using random holdings", "variant", v)
		return analysis.CalculateEquity(ctx, hole, board, opts...)
	}
	return eq, err
}

// potOddsFor returns nil when there is no bet to call.
func potOddsFor(req Request) (*float64, error) {
	if req.PotSize != nil && *req.PotSize < 0 {
		return nil, fmt.Errorf("%w: potSize must not be negative", ErrInvalidRequest)
	}
	if req.AmountToCall != nil && *req.AmountToCall < 0 {
		return nil, fmt.Errorf("%w: amountToCall must not be negative", ErrInvalidRequest)
	}
	if req.PotSize == nil || req.AmountToCall == nil || *req.AmountToCall == 0 {
		return nil, nil
	}
	odds := analysis.CalculatePotOdds(*req.PotSize, *req.AmountToCall)
	return &odds, nil
}
