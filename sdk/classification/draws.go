package classification

import (
	"fmt"
	rand "math/rand/v2"

	"github.com/lox/pokeradvisor/poker"
)

// DrawType identifies a way the hero's hand can improve.
type DrawType int

const (
	FlushDraw DrawType = iota
	OpenEndedStraightDraw
	GutshotStraightDraw
	Overcards
	SetDraw
	FullHouseDraw
	BackdoorFlushDraw
	BackdoorStraightDraw
)

var drawTypeTags = [...]string{
	"flushDraw", "openEndedStraightDraw", "gutshotStraightDraw", "overcards",
	"setDraw", "fullHouseDraw", "backdoorFlushDraw", "backdoorStraightDraw",
}

var drawTypeNames = [...]string{
	"Flush Draw", "Open-Ended Straight Draw", "Gutshot Straight Draw", "Overcards",
	"Set Draw", "Full House Draw", "Backdoor Flush Draw", "Backdoor Straight Draw",
}

// String returns the display name, e.g. "Gutshot Straight Draw".
func (dt DrawType) String() string {
	if dt >= 0 && int(dt) < len(drawTypeNames) {
		return drawTypeNames[dt]
	}
	return "Unknown Draw"
}

// Tag returns the wire identifier, e.g. "gutshotStraightDraw".
func (dt DrawType) Tag() string {
	if dt >= 0 && int(dt) < len(drawTypeTags) {
		return drawTypeTags[dt]
	}
	return "unknown"
}

// MarshalText implements encoding.TextMarshaler using the wire tag.
func (dt DrawType) MarshalText() ([]byte, error) {
	return []byte(dt.Tag()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (dt *DrawType) UnmarshalText(b []byte) error {
	for i, tag := range drawTypeTags {
		if tag == string(b) {
			*dt = DrawType(i)
			return nil
		}
	}
	return fmt.Errorf("unknown draw type %q", b)
}

// ImprovesTo names the made hand the draw is aiming for.
func (dt DrawType) ImprovesTo() string {
	switch dt {
	case FlushDraw, BackdoorFlushDraw:
		return "Flush"
	case OpenEndedStraightDraw, GutshotStraightDraw, BackdoorStraightDraw:
		return "Straight"
	case Overcards:
		return "Top Pair"
	case SetDraw:
		return "Three of a Kind"
	case FullHouseDraw:
		return "Full House"
	default:
		return ""
	}
}

// Clean/dirty sampling parameters.
const (
	// DirtySampleSize is how many outs of a draw are checked.
	DirtySampleSize = 3
	// OpponentSampleSize caps the opponent holdings tried per out.
	OpponentSampleSize = 20
	// DirtyThreshold is the share of improved opponents that marks an out dirty.
	DirtyThreshold = 0.3
	// BackdoorWeight is the effective out count of a runner-runner draw.
	BackdoorWeight = 1.5
)

// OutInfo is one draw and the cards that complete it.
type OutInfo struct {
	Type        DrawType     `json:"type"`
	Description string       `json:"description"`
	Outs        []poker.Card `json:"outs"`
	// Count is len(Outs), or an effective weight for backdoor draws.
	Count float64 `json:"count"`
	// Clean is false when the outs also tend to improve opponents past us.
	Clean bool `json:"isClean"`
}

// CalculateOuts finds every draw available to the hero on the flop or turn.
// Preflop and river boards have no outs. Straight windows are scanned from
// the wheel upward and only the first open-ended and first gutshot window
// are reported. rng drives opponent sampling for the clean/dirty check; nil
// uses the global source.
func CalculateOuts(v poker.Variant, hole, board []poker.Card, rng *rand.Rand) ([]OutInfo, error) {
	if len(board) == 0 || len(board) == 5 {
		return nil, nil
	}
	current, err := poker.EvaluateHand(v, hole, board)
	if err != nil {
		return nil, fmt.Errorf("evaluate current hand: %w", err)
	}
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	d := drawScan{
		variant:   v,
		hole:      hole,
		board:     board,
		known:     poker.NewHand(hole...) | poker.NewHand(board...),
		current:   current.Category,
		remaining: poker.RemainingDeck(v, poker.NewHand(hole...)|poker.NewHand(board...)).Cards(),
	}

	var outs []OutInfo
	if o, ok := d.flushDraw(); ok {
		outs = append(outs, o)
	}
	if len(board) == 3 {
		if o, ok := d.backdoorFlush(); ok {
			outs = append(outs, o)
		}
	}
	straights := d.straightDraws()
	outs = append(outs, straights...)
	if len(board) == 3 && len(straights) == 0 {
		if o, ok := d.backdoorStraight(); ok {
			outs = append(outs, o)
		}
	}
	if o, ok := d.overcards(); ok {
		outs = append(outs, o)
	}
	if o, ok := d.setDraw(); ok {
		outs = append(outs, o)
	}
	if o, ok := d.fullHouseDraw(); ok {
		outs = append(outs, o)
	}

	for i := range outs {
		outs[i].Clean = d.isClean(outs[i], rng)
	}
	return outs, nil
}

type drawScan struct {
	variant   poker.Variant
	hole      []poker.Card
	board     []poker.Card
	known     poker.Hand
	current   poker.HandType
	remaining []poker.Card
}

// suitCount counts cards of suit that can play together: Omaha caps the hole
// at two and the board at three.
func (d drawScan) suitCount(suit uint8) (total, inHole int) {
	for _, c := range d.hole {
		if c.Suit() == suit {
			inHole++
		}
	}
	onBoard := 0
	for _, c := range d.board {
		if c.Suit() == suit {
			onBoard++
		}
	}
	if d.variant.UsesExactlyTwoHoleCards() {
		return min(inHole, 2) + min(onBoard, 3), inHole
	}
	return inHole + onBoard, inHole
}

// completes keeps only the cards that lift the hand to at least want. It
// guards the Omaha rule that two hole and three board cards must play.
func (d drawScan) completes(cards []poker.Card, want poker.HandType) []poker.Card {
	if !d.variant.UsesExactlyTwoHoleCards() {
		return cards
	}
	var out []poker.Card
	board := append(append([]poker.Card(nil), d.board...), 0)
	for _, c := range cards {
		board[len(board)-1] = c
		if poker.Rank(d.variant, d.hole, board).Category >= want {
			out = append(out, c)
		}
	}
	return out
}

func (d drawScan) flushDraw() (OutInfo, bool) {
	for suit := poker.Clubs; suit <= poker.Spades; suit++ {
		total, _ := d.suitCount(suit)
		if total != 4 {
			continue
		}
		var cards []poker.Card
		for _, c := range d.remaining {
			if c.Suit() == suit {
				cards = append(cards, c)
			}
		}
		cards = d.completes(cards, poker.Flush)
		if len(cards) == 0 {
			return OutInfo{}, false
		}
		return OutInfo{
			Type:        FlushDraw,
			Description: fmt.Sprintf("%d %ss complete the flush", len(cards), poker.SuitName(suit)),
			Outs:        cards,
			Count:       float64(len(cards)),
		}, true
	}
	return OutInfo{}, false
}

func (d drawScan) backdoorFlush() (OutInfo, bool) {
	for suit := poker.Clubs; suit <= poker.Spades; suit++ {
		total, inHole := d.suitCount(suit)
		if total == 3 && inHole > 0 {
			return OutInfo{
				Type:        BackdoorFlushDraw,
				Description: fmt.Sprintf("Runner-runner %ss make a flush", poker.SuitName(suit)),
				Count:       BackdoorWeight,
			}, true
		}
	}
	return OutInfo{}, false
}

// aceLow is the value a low Ace takes in the variant's wheel.
func (d drawScan) aceLow() int {
	if d.variant == poker.ShortDeck {
		return poker.RankValue(poker.Five)
	}
	return 1
}

func (d drawScan) presentValues() map[int]bool {
	present := make(map[int]bool, 8)
	for _, v := range rankValues(d.known.GetRankMask(), d.aceLow()) {
		present[v] = true
	}
	return present
}

// cardsWithValue returns live cards of value, treating the low-Ace value as Aces.
func (d drawScan) cardsWithValue(value int) []poker.Card {
	var out []poker.Card
	for _, c := range d.remaining {
		v := c.Value()
		if v == value || (value == d.aceLow() && c.Rank() == poker.Ace) {
			out = append(out, c)
		}
	}
	return out
}

func (d drawScan) straightDraws() []OutInfo {
	present := d.presentValues()
	low := d.aceLow()

	var results []OutInfo
	foundOpenEnded, foundGutshot := false, false
	for high := low + 4; high <= 14; high++ {
		missing, have := 0, 0
		for v := high - 4; v <= high; v++ {
			if present[v] {
				have++
			} else {
				missing = v
			}
		}
		if have != 4 {
			continue
		}
		fill := d.completes(d.cardsWithValue(missing), poker.Straight)
		if len(fill) == 0 {
			continue
		}

		if !foundOpenEnded && (missing == high-4 || missing == high) {
			other := high - 5
			if missing == high-4 {
				other = high + 1
			}
			if other >= low && other <= 14 && !present[other] {
				if extra := d.completes(d.cardsWithValue(other), poker.Straight); len(extra) > 0 {
					foundOpenEnded = true
					cards := append(append([]poker.Card(nil), fill...), extra...)
					results = append(results, OutInfo{
						Type:        OpenEndedStraightDraw,
						Description: fmt.Sprintf("%d cards complete the straight at either end", len(cards)),
						Outs:        cards,
						Count:       float64(len(cards)),
					})
					continue
				}
			}
		}

		if !foundGutshot && !foundOpenEnded {
			foundGutshot = true
			results = append(results, OutInfo{
				Type:        GutshotStraightDraw,
				Description: fmt.Sprintf("%d cards fill the straight", len(fill)),
				Outs:        fill,
				Count:       float64(len(fill)),
			})
		}
	}
	return results
}

// backdoorStraight finds a five-rank window holding three ranks, at least one
// from the hole, whose two missing ranks are both live.
func (d drawScan) backdoorStraight() (OutInfo, bool) {
	present := d.presentValues()
	holeValues := make(map[int]bool, len(d.hole))
	for _, v := range rankValues(poker.NewHand(d.hole...).GetRankMask(), d.aceLow()) {
		holeValues[v] = true
	}
	low := d.aceLow()
	for high := 14; high >= low+4; high-- {
		have, fromHole := 0, false
		var missing []int
		for v := high - 4; v <= high; v++ {
			if present[v] {
				have++
				fromHole = fromHole || holeValues[v]
			} else {
				missing = append(missing, v)
			}
		}
		if have != 3 || !fromHole {
			continue
		}
		if len(d.cardsWithValue(missing[0])) > 0 && len(d.cardsWithValue(missing[1])) > 0 {
			return OutInfo{
				Type:        BackdoorStraightDraw,
				Description: "Runner-runner cards make a straight",
				Count:       BackdoorWeight,
			}, true
		}
	}
	return OutInfo{}, false
}

func (d drawScan) overcards() (OutInfo, bool) {
	if d.current > poker.Pair {
		return OutInfo{}, false
	}
	boardMax := highestRank(poker.NewHand(d.board...).GetRankMask())
	var cards []poker.Card
	seen := make(map[uint8]bool)
	for _, h := range d.hole {
		r := h.Rank()
		if r <= boardMax || seen[r] {
			continue
		}
		seen[r] = true
		for _, c := range d.remaining {
			if c.Rank() == r {
				cards = append(cards, c)
			}
		}
	}
	if len(cards) == 0 {
		return OutInfo{}, false
	}
	return OutInfo{
		Type:        Overcards,
		Description: fmt.Sprintf("%d cards pair an overcard", len(cards)),
		Outs:        cards,
		Count:       float64(len(cards)),
	}, true
}

func (d drawScan) setDraw() (OutInfo, bool) {
	if d.current >= poker.ThreeOfAKind {
		return OutInfo{}, false
	}
	holeHand := poker.NewHand(d.hole...)
	for rank := int(poker.Ace); rank >= int(poker.Two); rank-- {
		r := uint8(rank)
		if holeHand.RankCount(r) != 2 {
			continue
		}
		var cards []poker.Card
		for _, c := range d.remaining {
			if c.Rank() == r {
				cards = append(cards, c)
			}
		}
		if len(cards) == 0 {
			return OutInfo{}, false
		}
		return OutInfo{
			Type:        SetDraw,
			Description: fmt.Sprintf("%d cards make a set of %s", len(cards), poker.RankPlural(r)),
			Outs:        cards,
			Count:       float64(len(cards)),
		}, true
	}
	return OutInfo{}, false
}

func (d drawScan) fullHouseDraw() (OutInfo, bool) {
	if d.current != poker.ThreeOfAKind {
		return OutInfo{}, false
	}
	board := append(append([]poker.Card(nil), d.board...), 0)
	var cards []poker.Card
	for _, c := range d.remaining {
		board[len(board)-1] = c
		if poker.Rank(d.variant, d.hole, board).Category > poker.ThreeOfAKind {
			cards = append(cards, c)
		}
	}
	if len(cards) == 0 {
		return OutInfo{}, false
	}
	return OutInfo{
		Type:        FullHouseDraw,
		Description: fmt.Sprintf("%d cards improve trips to a full house or better", len(cards)),
		Outs:        cards,
		Count:       float64(len(cards)),
	}, true
}

// isClean samples up to DirtySampleSize outs. An out is dirty when more than
// DirtyThreshold of sampled opponent holdings improve to at least the hero's
// new category; the draw is clean while dirty outs stay under half the sample.
func (d drawScan) isClean(o OutInfo, rng *rand.Rand) bool {
	if len(o.Outs) == 0 {
		return true
	}
	samples := min(len(o.Outs), DirtySampleSize)
	holeN := d.variant.HoleCards()
	dirty := 0

	for i := range samples {
		out := o.Outs[i]
		newBoard := append(append([]poker.Card(nil), d.board...), out)
		heroNew := poker.Rank(d.variant, d.hole, newBoard)

		deck := poker.RemainingDeck(d.variant, d.known|poker.Hand(out))
		deck.Shuffle(rng)
		pool := deck.Cards()

		tests := min(OpponentSampleSize, len(pool)/holeN)
		if tests == 0 {
			continue
		}
		improved := 0
		for j := range tests {
			opp := pool[j*holeN : (j+1)*holeN]
			oldEval := poker.Rank(d.variant, opp, d.board)
			newEval := poker.Rank(d.variant, opp, newBoard)
			if newEval.Category > oldEval.Category && newEval.Category >= heroNew.Category {
				improved++
			}
		}
		if float64(improved)/float64(tests) > DirtyThreshold {
			dirty++
		}
	}
	return dirty*2 < samples
}

// OutsSummary is the de-duplicated set of outs across all draws. A card that
// is clean for any draw counts as clean.
type OutsSummary struct {
	Clean []poker.Card
	Dirty []poker.Card
}

// CleanCount returns the number of distinct clean outs.
func (s OutsSummary) CleanCount() int { return len(s.Clean) }

// DirtyCount returns the number of distinct dirty outs.
func (s OutsSummary) DirtyCount() int { return len(s.Dirty) }

// TotalOuts merges the outs of every draw.
func TotalOuts(outs []OutInfo) OutsSummary {
	var clean, dirty poker.Hand
	var summary OutsSummary
	for _, o := range outs {
		if !o.Clean {
			continue
		}
		for _, c := range o.Outs {
			if !clean.HasCard(c) {
				clean.AddCard(c)
				summary.Clean = append(summary.Clean, c)
			}
		}
	}
	for _, o := range outs {
		if o.Clean {
			continue
		}
		for _, c := range o.Outs {
			if !clean.HasCard(c) && !dirty.HasCard(c) {
				dirty.AddCard(c)
				summary.Dirty = append(summary.Dirty, c)
			}
		}
	}
	return summary
}

// PrimaryDraw returns the draw with the most outs, preferring earlier draws
// on ties.
func PrimaryDraw(outs []OutInfo) (OutInfo, bool) {
	if len(outs) == 0 {
		return OutInfo{}, false
	}
	best := outs[0]
	for _, o := range outs[1:] {
		if o.Count > best.Count {
			best = o
		}
	}
	return best, true
}
