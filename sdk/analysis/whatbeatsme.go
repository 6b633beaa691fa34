package analysis

import (
	"cmp"
	"context"
	"slices"

	"github.com/lox/pokeradvisor/poker"
	"golang.org/x/sync/errgroup"
)

// MaxExamples is how many example holdings each group keeps.
const MaxExamples = 3

// BeatingGroup collects the opponent holdings that beat the hero with one
// hand category.
type BeatingGroup struct {
	HandType    poker.HandType `json:"-"`
	Name        string         `json:"handName"`
	Combos      int            `json:"combos"`
	Probability float64        `json:"probability"`
	Examples    [][]poker.Card `json:"exampleHoldings"`
}

// WhatBeatsMe is the exhaustive breakdown of opponent holdings that are
// strictly ahead of the hero on the current board.
type WhatBeatsMe struct {
	Groups             []BeatingGroup `json:"beatingGroups"`
	TotalBeating       int            `json:"totalBeatingCombos"`
	TotalPossible      int            `json:"totalPossibleCombos"`
	BeatingProbability float64        `json:"beatingProbability"`
}

// AnalyzeWhatBeatsMe enumerates every opponent holding of the variant's hole
// card count from the undealt cards and groups the ones that beat the hero
// by category. Ties do not count. Groups are sorted by probability, then by
// name, and keep the first MaxExamples holdings in enumeration order.
//
// Boards with fewer than three cards return an empty result.
func AnalyzeWhatBeatsMe(ctx context.Context, hole, board []poker.Card, opts ...Option) (WhatBeatsMe, error) {
	o := newOptions(opts)
	if err := validateSnapshot(o.variant, hole, board); err != nil {
		return WhatBeatsMe{}, err
	}
	if len(board) < 3 {
		return WhatBeatsMe{Groups: []BeatingGroup{}}, nil
	}

	remaining := poker.RemainingDeck(o.variant, poker.NewHand(hole...)|poker.NewHand(board...)).Cards()
	holeN := o.variant.HoleCards()
	hero := poker.Rank(o.variant, hole, board)

	// Workers take contiguous blocks of first-card indices so merging the
	// blocks in order preserves enumeration order for the examples.
	firsts := len(remaining) - holeN + 1
	workers := max(1, min(o.workers, firsts))
	blocks := make([]beatingTally, workers)
	g, ctx := errgroup.WithContext(ctx)
	for w := range workers {
		lo, hi := w*firsts/workers, (w+1)*firsts/workers
		g.Go(func() error {
			t := beatingTally{groups: map[poker.HandType]*BeatingGroup{}}
			var err error
			forEachCombinationFrom(remaining, holeN, lo, hi, func(opp []poker.Card) bool {
				if t.total%cancelCheck == 0 {
					if err = ctx.Err(); err != nil {
						return false
					}
				}
				t.total++
				if e := poker.Rank(o.variant, opp, board); poker.Compare(e, hero) > 0 {
					t.add(e.Category, opp)
				}
				return true
			})
			blocks[w] = t
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return WhatBeatsMe{}, err
	}

	merged := beatingTally{groups: map[poker.HandType]*BeatingGroup{}}
	for _, b := range blocks {
		merged.total += b.total
		for _, ht := range b.order {
			src := b.groups[ht]
			dst := merged.group(ht)
			dst.Combos += src.Combos
			merged.beating += src.Combos
			for _, ex := range src.Examples {
				if len(dst.Examples) < MaxExamples {
					dst.Examples = append(dst.Examples, ex)
				}
			}
		}
	}

	res := WhatBeatsMe{
		Groups:        make([]BeatingGroup, 0, len(merged.order)),
		TotalBeating:  merged.beating,
		TotalPossible: merged.total,
	}
	if merged.total == 0 {
		return res, nil
	}
	res.BeatingProbability = float64(merged.beating) / float64(merged.total)
	for _, ht := range merged.order {
		grp := *merged.groups[ht]
		grp.Probability = float64(grp.Combos) / float64(merged.total)
		res.Groups = append(res.Groups, grp)
	}
	slices.SortFunc(res.Groups, func(a, b BeatingGroup) int {
		if c := cmp.Compare(b.Combos, a.Combos); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})
	return res, nil
}

type beatingTally struct {
	groups  map[poker.HandType]*BeatingGroup
	order   []poker.HandType
	total   int
	beating int
}

func (t *beatingTally) group(ht poker.HandType) *BeatingGroup {
	g, ok := t.groups[ht]
	if !ok {
		g = &BeatingGroup{HandType: ht, Name: ht.String()}
		t.groups[ht] = g
		t.order = append(t.order, ht)
	}
	return g
}

func (t *beatingTally) add(ht poker.HandType, opp []poker.Card) {
	g := t.group(ht)
	g.Combos++
	if len(g.Examples) < MaxExamples {
		g.Examples = append(g.Examples, slices.Clone(opp))
	}
}
