package analysis

import (
	rand "math/rand/v2"
	"runtime"

	"github.com/lox/pokeradvisor/internal/randutil"
	"github.com/lox/pokeradvisor/poker"
)

type options struct {
	variant       poker.Variant
	opponents     int
	trials        int
	workers       int
	rng           *rand.Rand
	opponentRange *Range
}

// Option configures a simulation.
type Option func(*options)

func newOptions(opts []Option) options {
	o := options{
		variant:   poker.TexasHoldem,
		opponents: 1,
		trials:    DefaultTrials,
		workers:   runtime.GOMAXPROCS(0),
	}
	for _, opt := range opts {
		opt(&o)
	}
	o.opponents = max(1, o.opponents)
	o.trials = max(1, o.trials)
	o.workers = max(1, o.workers)
	o.rng = randutil.OrNew(o.rng)
	return o
}

// WithVariant selects the game rules. The default is Texas Hold'em.
func WithVariant(v poker.Variant) Option {
	return func(o *options) { o.variant = v }
}

// WithOpponents sets the number of opponents (default 1).
func WithOpponents(n int) Option {
	return func(o *options) { o.opponents = n }
}

// WithTrials sets the Monte Carlo trial count (default DefaultTrials).
func WithTrials(n int) Option {
	return func(o *options) { o.trials = n }
}

// WithWorkers caps the number of goroutines used (default GOMAXPROCS).
// Results under a fixed seed depend on the worker count.
func WithWorkers(n int) Option {
	return func(o *options) { o.workers = n }
}

// WithRNG injects the random source. Nil means a clock-seeded source.
func WithRNG(rng *rand.Rand) Option {
	return func(o *options) { o.rng = rng }
}

// WithOpponentRange draws opponent holdings from r instead of the whole
// deck. Ranges only apply to two-card variants and are ignored otherwise.
func WithOpponentRange(r *Range) Option {
	return func(o *options) { o.opponentRange = r }
}
