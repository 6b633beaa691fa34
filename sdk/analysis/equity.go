// Package analysis provides the probabilistic side of the advisor: Monte Carlo
// equity, hand-improvement odds, exhaustive "what beats me" enumeration, pot
// odds and opponent ranges.
//
// Every simulation takes an injected *rand.Rand (see WithRNG) so results are
// reproducible under a fixed seed, and runs its trials across a pool of
// workers fed by child generators split from that source.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"math"
	rand "math/rand/v2"

	"github.com/lox/pokeradvisor/internal/randutil"
	"github.com/lox/pokeradvisor/poker"
	"golang.org/x/sync/errgroup"
)

const (
	// DefaultTrials is the Monte Carlo trial count when none is given.
	DefaultTrials = 10000
	// MaxSkipRate is the share of skipped trials above which a simulation is
	// reported as broken rather than returned.
	MaxSkipRate = 0.01
	// rangeAttempts bounds the draws used to find a range holding that does
	// not collide with cards already dealt in the trial.
	rangeAttempts = 64
	// cancelCheck is how many trials run between context checks.
	cancelCheck = 256
)

var (
	// ErrExcessiveSkips means too many trials could not be dealt, which points
	// at a card accounting bug rather than sampling noise.
	ErrExcessiveSkips = errors.New("too many skipped trials")
	// ErrEmptyRange means no holding in the opponent range is still live.
	ErrEmptyRange = errors.New("opponent range has no live holdings")
)

// EquityResult represents the result of an equity calculation
type EquityResult struct {
	Wins             uint32 `json:"wins"`
	Ties             uint32 `json:"ties"`
	Losses           uint32 `json:"losses"`
	TotalSimulations uint32 `json:"trials"`
	Skipped          uint32 `json:"skipped"`
	// Deterministic is set when every opponent holding was enumerated and
	// no random draws were made.
	Deterministic bool `json:"deterministic"`
}

// WinRate returns the win rate as a percentage (0.0 to 1.0)
func (e EquityResult) WinRate() float64 {
	if e.TotalSimulations == 0 {
		return 0.0
	}
	return float64(e.Wins) / float64(e.TotalSimulations)
}

// TieRate returns the tie rate as a percentage (0.0 to 1.0)
func (e EquityResult) TieRate() float64 {
	if e.TotalSimulations == 0 {
		return 0.0
	}
	return float64(e.Ties) / float64(e.TotalSimulations)
}

// LossRate returns the loss rate as a percentage (0.0 to 1.0)
func (e EquityResult) LossRate() float64 {
	if e.TotalSimulations == 0 {
		return 0.0
	}
	return float64(e.Losses) / float64(e.TotalSimulations)
}

// Equity returns the overall equity (0.0 to 1.0)
// Wins count as 1.0, ties count as 0.5
func (e EquityResult) Equity() float64 {
	if e.TotalSimulations == 0 {
		return 0.0
	}
	winEquity := float64(e.Wins)
	tieEquity := float64(e.Ties) * 0.5
	return (winEquity + tieEquity) / float64(e.TotalSimulations)
}

// StdErr is the binomial standard error of Equity. It is zero for an
// enumerated result.
func (e EquityResult) StdErr() float64 {
	if e.TotalSimulations == 0 || e.Deterministic {
		return 0
	}
	equity := e.Equity()
	return math.Sqrt((equity * (1.0 - equity)) / float64(e.TotalSimulations))
}

// ConfidenceInterval returns the 95% confidence interval for equity
func (e EquityResult) ConfidenceInterval() (lower, upper float64) {
	if e.TotalSimulations == 0 {
		return 0.0, 0.0
	}
	equity := e.Equity()

	// 95% confidence interval (±1.96 * SE)
	margin := 1.96 * e.StdErr()

	lower = math.Max(0.0, equity-margin)
	upper = math.Min(1.0, equity+margin)

	return lower, upper
}

func (e *EquityResult) merge(o EquityResult) {
	e.Wins += o.Wins
	e.Ties += o.Ties
	e.Losses += o.Losses
	e.TotalSimulations += o.TotalSimulations
	e.Skipped += o.Skipped
}

// CalculateEquity estimates the hero's share of the pot against random
// opponent holdings (or holdings drawn from WithOpponentRange) over random
// board completions. A trial is a win when the hero beats every opponent and
// a tie when the hero shares the best hand.
//
// With a complete board and a single opponent every opponent holding is
// enumerated and the result is exact. Cancelling ctx stops the workers at
// trial granularity and returns the context error.
func CalculateEquity(ctx context.Context, hole, board []poker.Card, opts ...Option) (EquityResult, error) {
	o := newOptions(opts)
	if err := validateSnapshot(o.variant, hole, board); err != nil {
		return EquityResult{}, err
	}

	known := poker.NewHand(hole...) | poker.NewHand(board...)
	remaining := poker.RemainingDeck(o.variant, known).Cards()
	need := 5 - len(board)
	holeN := o.variant.HoleCards()
	if len(remaining) < need+o.opponents*holeN {
		return EquityResult{}, fmt.Errorf("%w: %d opponents and %d board cards need %d cards, %d remain",
			poker.ErrInvalidCardCount, o.opponents, need, need+o.opponents*holeN, len(remaining))
	}

	var combos []poker.Hand
	if o.opponentRange != nil && holeN == 2 {
		combos = o.opponentRange.Available(known)
		if len(combos) == 0 {
			return EquityResult{}, ErrEmptyRange
		}
	}

	if need == 0 && o.opponents == 1 {
		return enumerateRiver(ctx, o.variant, hole, board, remaining, combos)
	}

	parts, err := fanOut(ctx, o, func(ctx context.Context, n int, rng *rand.Rand) (EquityResult, error) {
		t := newEquityTrial(o, hole, board, remaining, combos)
		return t.run(ctx, n, rng)
	})
	if err != nil {
		return EquityResult{}, err
	}

	var res EquityResult
	for _, p := range parts {
		res.merge(p)
	}
	if float64(res.Skipped) > MaxSkipRate*float64(o.trials) {
		return res, fmt.Errorf("%w: %d of %d", ErrExcessiveSkips, res.Skipped, o.trials)
	}
	return res, nil
}

// enumerateRiver compares the hero against every live opponent holding on a
// complete board.
func enumerateRiver(ctx context.Context, v poker.Variant, hole, board, remaining []poker.Card, combos []poker.Hand) (EquityResult, error) {
	res := EquityResult{Deterministic: true}
	hero := poker.Rank(v, hole, board)
	tally := func(opp []poker.Card) {
		switch c := poker.Compare(hero, poker.Rank(v, opp, board)); {
		case c > 0:
			res.Wins++
		case c == 0:
			res.Ties++
		default:
			res.Losses++
		}
		res.TotalSimulations++
	}

	if combos != nil {
		buf := make([]poker.Card, 0, 2)
		for _, h := range combos {
			tally(appendCards(buf[:0], h))
		}
		return res, ctx.Err()
	}

	var err error
	forEachCombination(remaining, v.HoleCards(), func(opp []poker.Card) bool {
		if res.TotalSimulations%cancelCheck == 0 {
			if err = ctx.Err(); err != nil {
				return false
			}
		}
		tally(opp)
		return true
	})
	return res, err
}

type outcome int

const (
	loss outcome = iota
	tie
	win
)

// equityTrial holds one worker's scratch state. Nothing is shared between
// workers.
type equityTrial struct {
	variant   poker.Variant
	hole      []poker.Card
	board     []poker.Card
	opponents int
	combos    []poker.Hand
	deck      []poker.Card
	runout    []poker.Card
	oppHoles  [][]poker.Card
}

func newEquityTrial(o options, hole, board, remaining []poker.Card, combos []poker.Hand) *equityTrial {
	t := &equityTrial{
		variant:   o.variant,
		hole:      hole,
		board:     board,
		opponents: o.opponents,
		combos:    combos,
		deck:      append([]poker.Card(nil), remaining...),
		runout:    make([]poker.Card, 0, 5),
		oppHoles:  make([][]poker.Card, o.opponents),
	}
	for i := range t.oppHoles {
		t.oppHoles[i] = make([]poker.Card, 0, o.variant.HoleCards())
	}
	return t
}

func (t *equityTrial) run(ctx context.Context, n int, rng *rand.Rand) (EquityResult, error) {
	var res EquityResult
	for i := range n {
		if i%cancelCheck == 0 {
			if err := ctx.Err(); err != nil {
				return res, err
			}
		}
		result, ok := t.once(rng)
		if !ok {
			res.Skipped++
			continue
		}
		res.TotalSimulations++
		switch result {
		case win:
			res.Wins++
		case tie:
			res.Ties++
		default:
			res.Losses++
		}
	}
	return res, nil
}

// once plays a single trial. Range opponents are seated first, then cards
// are drawn by a partial Fisher-Yates pass that skips anything already used.
func (t *equityTrial) once(rng *rand.Rand) (outcome, bool) {
	var used poker.Hand
	random := t.opponents
	if t.combos != nil {
		random = 0
		for i := range t.oppHoles {
			h, ok := t.pickCombo(rng, used)
			if !ok {
				return loss, false
			}
			used |= h
			t.oppHoles[i] = appendCards(t.oppHoles[i][:0], h)
		}
	}

	pos := 0
	draw := func() (poker.Card, bool) {
		for pos < len(t.deck) {
			j := pos + rng.IntN(len(t.deck)-pos)
			t.deck[pos], t.deck[j] = t.deck[j], t.deck[pos]
			c := t.deck[pos]
			pos++
			if !used.HasCard(c) {
				return c, true
			}
		}
		return 0, false
	}

	holeN := t.variant.HoleCards()
	for i := range random {
		t.oppHoles[i] = t.oppHoles[i][:0]
		for range holeN {
			c, ok := draw()
			if !ok {
				return loss, false
			}
			t.oppHoles[i] = append(t.oppHoles[i], c)
		}
	}
	t.runout = append(t.runout[:0], t.board...)
	for len(t.runout) < 5 {
		c, ok := draw()
		if !ok {
			return loss, false
		}
		t.runout = append(t.runout, c)
	}

	hero := poker.Rank(t.variant, t.hole, t.runout)
	result := win
	for _, opp := range t.oppHoles {
		switch c := poker.Compare(hero, poker.Rank(t.variant, opp, t.runout)); {
		case c < 0:
			return loss, true
		case c == 0:
			result = tie
		}
	}
	return result, true
}

func (t *equityTrial) pickCombo(rng *rand.Rand, used poker.Hand) (poker.Hand, bool) {
	for range rangeAttempts {
		h := t.combos[rng.IntN(len(t.combos))]
		if h&used == 0 {
			return h, true
		}
	}
	return 0, false
}

// fanOut splits o.trials across o.workers goroutines, each with its own
// generator split from o.rng, and returns the per-worker results in worker
// order. The first error cancels the rest.
func fanOut[T any](ctx context.Context, o options, run func(ctx context.Context, n int, rng *rand.Rand) (T, error)) ([]T, error) {
	workers := max(1, min(o.workers, o.trials))
	rngs := randutil.Split(o.rng, workers)
	parts := make([]T, workers)

	g, ctx := errgroup.WithContext(ctx)
	for w := range workers {
		n := o.trials / workers
		if w < o.trials%workers {
			n++
		}
		g.Go(func() error {
			p, err := run(ctx, n, rngs[w])
			parts[w] = p
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return parts, nil
}

// validateSnapshot rejects a hand the evaluator would reject and any board
// that is not preflop, flop, turn or river.
func validateSnapshot(v poker.Variant, hole, board []poker.Card) error {
	if _, err := poker.StreetFromBoard(len(board)); err != nil {
		return err
	}
	if _, err := poker.EvaluateHand(v, hole, board); err != nil {
		return err
	}
	return nil
}

func appendCards(dst []poker.Card, h poker.Hand) []poker.Card {
	for h != 0 {
		low := h & -h
		dst = append(dst, poker.Card(low))
		h &^= low
	}
	return dst
}
