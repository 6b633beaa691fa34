package classification

import (
	"fmt"
	"slices"

	"github.com/lox/pokeradvisor/poker"
)

// Tier is the relative strength of a holding.
type Tier int

const (
	Trash Tier = iota
	Weak
	Marginal
	Good
	Strong
	Premium
)

var tierNames = [...]string{"trash", "weak", "marginal", "good", "strong", "premium"}

func (t Tier) String() string {
	if t >= 0 && int(t) < len(tierNames) {
		return tierNames[t]
	}
	return "unknown"
}

// MarshalText implements encoding.TextMarshaler.
func (t Tier) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// Kicker grades the side card that plays alongside a pair or trips.
type Kicker int

const (
	KickerNA Kicker = iota
	KickerWeak
	KickerStrong
)

func (k Kicker) String() string {
	switch k {
	case KickerWeak:
		return "weak"
	case KickerStrong:
		return "strong"
	default:
		return "n/a"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k Kicker) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// DrawStrength grades the hero's best flush or straight draw.
type DrawStrength struct {
	NutDraw bool   `json:"isNutDraw"`
	Label   string `json:"label"`
	// Multiplier biases call decisions: above 1 for good implied odds,
	// below 1 when hitting may still lose.
	Multiplier float64 `json:"impliedOddsMultiplier"`
}

// HandStrengthInfo is the categorizer's verdict on a holding.
type HandStrengthInfo struct {
	Tier          Tier          `json:"category"`
	Label         string        `json:"label"`
	Description   string        `json:"description"`
	Vulnerability float64       `json:"vulnerability"` // 0 safe .. 1 very exposed
	Kicker        Kicker        `json:"kicker"`
	Nutted        bool          `json:"isNutted"`
	Board         BoardAnalysis `json:"boardTexture"`
	Draw          *DrawStrength `json:"drawStrength"`
}

// CategorizeStrength classifies the hero's holding. Preflop hands use
// starting-hand tiers; postflop hands dispatch on the evaluated category to
// one classifier per hand type. outs feed the draw descriptor.
func CategorizeStrength(v poker.Variant, hole, board []poker.Card, outs []OutInfo) (HandStrengthInfo, error) {
	if len(board) == 0 {
		if len(hole) < 2 {
			return HandStrengthInfo{
				Tier:          Marginal,
				Label:         "Incomplete Hand",
				Description:   "Not enough cards to evaluate.",
				Vulnerability: 0.5,
				Board:         AnalyzeBoard(nil),
			}, nil
		}
		return PreflopStrength(hole), nil
	}

	eval, err := poker.EvaluateHand(v, hole, board)
	if err != nil {
		return HandStrengthInfo{}, err
	}
	f := newHoldingFacts(v, hole, board, eval)
	f.draw = AnalyzeDrawStrength(hole, board, outs)

	classify, ok := classifiers[eval.Category]
	if !ok {
		classify = classifyHighCard
	}
	info := classify(f)
	info.Board = f.board
	info.Draw = f.draw
	return info, nil
}

type classifier func(f holdingFacts) HandStrengthInfo

var classifiers = map[poker.HandType]classifier{
	poker.RoyalFlush:    classifyRoyalFlush,
	poker.StraightFlush: classifyStraightFlush,
	poker.FourOfAKind:   classifyQuads,
	poker.FullHouse:     classifyFullHouse,
	poker.Flush:         classifyFlush,
	poker.Straight:      classifyStraight,
	poker.ThreeOfAKind:  classifyTrips,
	poker.TwoPair:       classifyTwoPair,
	poker.Pair:          classifyPair,
	poker.HighCard:      classifyHighCard,
}

// holdingFacts gathers the rank arithmetic every classifier needs.
type holdingFacts struct {
	variant    poker.Variant
	hole       []poker.Card
	cards      []poker.Card // board cards
	eval       poker.Evaluation
	holeVals   []int // descending
	boardVals  []int // descending, duplicates kept
	pocketPair int   // value of the highest paired hole rank, 0 if none
	board      BoardAnalysis
	draw       *DrawStrength
}

func newHoldingFacts(v poker.Variant, hole, board []poker.Card, eval poker.Evaluation) holdingFacts {
	f := holdingFacts{
		variant:   v,
		hole:      hole,
		cards:     board,
		eval:      eval,
		holeVals:  sortedValues(hole),
		boardVals: sortedValues(board),
		board:     AnalyzeBoard(board),
	}
	for i := 1; i < len(f.holeVals); i++ {
		if f.holeVals[i] == f.holeVals[i-1] {
			f.pocketPair = f.holeVals[i]
			break
		}
	}
	return f
}

func sortedValues(cards []poker.Card) []int {
	out := make([]int, len(cards))
	for i, c := range cards {
		out[i] = c.Value()
	}
	slices.SortFunc(out, func(a, b int) int { return b - a })
	return out
}

func (f holdingFacts) boardMax() int { return f.boardVals[0] }
func (f holdingFacts) boardMin() int { return f.boardVals[len(f.boardVals)-1] }
func (f holdingFacts) holeMax() int  { return f.holeVals[0] }
func (f holdingFacts) wet() bool     { return f.board.IsWet() }

// madeRank is the value of the hand-defining rank (pair, trips, straight top).
func (f holdingFacts) madeRank() int { return poker.RankValue(f.eval.Ranks()[0]) }

func (f holdingFacts) madeRanks() []int {
	ranks := f.eval.Ranks()
	out := make([]int, len(ranks))
	for i, r := range ranks {
		out[i] = poker.RankValue(r)
	}
	return out
}

func (f holdingFacts) holeCount(value int) int {
	n := 0
	for _, v := range f.holeVals {
		if v == value {
			n++
		}
	}
	return n
}

func (f holdingFacts) boardCount(value int) int {
	n := 0
	for _, v := range f.boardVals {
		if v == value {
			n++
		}
	}
	return n
}

// distinctBoard returns the distinct board values, descending.
func (f holdingFacts) distinctBoard() []int {
	return slices.Compact(slices.Clone(f.boardVals))
}

// wetOr picks the wet-board vulnerability when the board is wet.
func (f holdingFacts) wetOr(wet, dry float64) float64 {
	if f.wet() {
		return wet
	}
	return dry
}

func kickerFor(value int) Kicker {
	if value >= 12 {
		return KickerStrong
	}
	return KickerWeak
}

func classifyRoyalFlush(holdingFacts) HandStrengthInfo {
	return HandStrengthInfo{
		Tier:        Premium,
		Label:       "Royal Flush",
		Description: "The absolute nuts. Unbeatable.",
		Nutted:      true,
	}
}

func classifyStraightFlush(holdingFacts) HandStrengthInfo {
	return HandStrengthInfo{
		Tier:        Premium,
		Label:       "Straight Flush",
		Description: "Near-nut hand, virtually unbeatable.",
		Nutted:      true,
	}
}

func classifyQuads(holdingFacts) HandStrengthInfo {
	return HandStrengthInfo{
		Tier:          Premium,
		Label:         "Four of a Kind",
		Description:   "Quads are extremely rare and powerful. Extract maximum value.",
		Vulnerability: 0.02,
		Nutted:        true,
	}
}

func classifyFullHouse(f holdingFacts) HandStrengthInfo {
	if f.pocketPair > 0 && f.pocketPair >= f.boardMax() {
		return HandStrengthInfo{
			Tier:          Premium,
			Label:         "Top Full House",
			Description:   "Top full house with a concealed set. Very difficult for opponents to read.",
			Vulnerability: 0.05,
			Nutted:        true,
		}
	}
	if f.holeMax() >= f.boardMax() {
		return HandStrengthInfo{
			Tier:          Strong,
			Label:         "Strong Full House",
			Description:   "A strong full house. Be cautious only of higher full houses on paired boards.",
			Vulnerability: 0.1,
		}
	}
	return HandStrengthInfo{
		Tier:          Good,
		Label:         "Bottom Full House",
		Description:   "A full house, but a lower one. Watch out for higher boats on this paired board.",
		Vulnerability: 0.2,
	}
}

// flushSuit finds the suit making the flush under the variant's hole-card rule.
func (f holdingFacts) flushSuit() (uint8, bool) {
	for suit := poker.Clubs; suit <= poker.Spades; suit++ {
		inHole := len(cardsOfSuit(f.hole, suit))
		onBoard := len(cardsOfSuit(f.cards, suit))
		if f.variant.UsesExactlyTwoHoleCards() {
			if inHole >= 2 && onBoard >= 3 {
				return suit, true
			}
			continue
		}
		if inHole+onBoard >= 5 {
			return suit, true
		}
	}
	return 0, false
}

func cardsOfSuit(cards []poker.Card, suit uint8) []poker.Card {
	var out []poker.Card
	for _, c := range cards {
		if c.Suit() == suit {
			out = append(out, c)
		}
	}
	return out
}

func classifyFlush(f holdingFacts) HandStrengthInfo {
	suit, ok := f.flushSuit()
	if !ok {
		return HandStrengthInfo{Tier: Strong, Label: "Flush", Description: "You have a flush.", Vulnerability: 0.15}
	}
	suited := cardsOfSuit(f.hole, suit)
	if len(suited) == 0 {
		return HandStrengthInfo{
			Tier:          Weak,
			Label:         "Board Flush",
			Description:   fmt.Sprintf("The flush is entirely on the board. Any opponent with a higher %s beats you.", poker.SuitName(suit)),
			Vulnerability: 0.75,
			Kicker:        KickerWeak,
		}
	}
	top := slices.Max(sortedValues(suited))
	switch {
	case top == 14:
		return HandStrengthInfo{
			Tier:          Premium,
			Label:         "Nut Flush",
			Description:   "Ace-high flush, the best possible flush. Play for maximum value.",
			Vulnerability: 0.05,
			Nutted:        true,
		}
	case top >= 12:
		return HandStrengthInfo{
			Tier:          Strong,
			Label:         "Strong Flush",
			Description:   fmt.Sprintf("%s-high flush. Very strong, but the nut flush (Ace-high) could beat you.", poker.RankName(uint8(top-2))),
			Vulnerability: 0.15,
		}
	case top >= 9:
		return HandStrengthInfo{
			Tier:          Good,
			Label:         "Medium Flush",
			Description:   "A made flush, but not the strongest. Higher flushes are possible. Play cautiously against heavy action.",
			Vulnerability: 0.3,
		}
	default:
		return HandStrengthInfo{
			Tier:          Marginal,
			Label:         "Weak Flush",
			Description:   "A low flush. Vulnerable to any higher flush. Be very cautious if facing large bets.",
			Vulnerability: 0.5,
		}
	}
}

func classifyStraight(f holdingFacts) HandStrengthInfo {
	high := f.madeRank()
	flushVuln := 0.0
	switch {
	case f.board.FlushPossible:
		flushVuln = 0.35
	case f.board.FlushDrawPossible:
		flushVuln = 0.15
	}
	usesBoth := len(f.holeVals) >= 2 && f.holeVals[0] != f.holeVals[1] && f.holeVals[0]-f.holeVals[1] <= 4
	nut := high >= 14 || f.holeMax() > f.boardMax()

	switch {
	case nut && !f.board.FlushPossible:
		desc := "The highest possible straight. No higher straight exists."
		if usesBoth {
			desc = "The highest possible straight using both hole cards (well-disguised). No higher straight exists."
		}
		return HandStrengthInfo{
			Tier:          Premium,
			Label:         "Nut Straight",
			Description:   desc,
			Vulnerability: 0.05 + flushVuln,
			Nutted:        true,
		}
	case nut:
		return HandStrengthInfo{
			Tier:          Good,
			Label:         "Nut Straight (Flush Possible)",
			Description:   "You have the best straight, but a flush is possible on this board. Proceed with caution.",
			Vulnerability: 0.35,
		}
	case high >= 12:
		return HandStrengthInfo{
			Tier:          Good,
			Label:         "Strong Straight",
			Description:   "A high straight, but a higher straight could exist. Watch for opponents with higher connectors.",
			Vulnerability: 0.25 + flushVuln,
		}
	case f.holeMax() <= f.lowestBoardInStraight(high):
		return HandStrengthInfo{
			Tier:          Marginal,
			Label:         "Bottom-End Straight",
			Description:   `You have the low end of the straight (the "idiot end"). Any opponent with a higher card makes a better straight.`,
			Vulnerability: 0.5 + flushVuln,
		}
	default:
		return HandStrengthInfo{
			Tier:          Good,
			Label:         "Straight",
			Description:   "A made straight. Be aware of higher straights and flush possibilities.",
			Vulnerability: 0.2 + flushVuln,
		}
	}
}

// lowestBoardInStraight returns the lowest board value inside the straight
// ending at high. With no board card in range every hole card qualifies.
func (f holdingFacts) lowestBoardInStraight(high int) int {
	lowest := 15
	for _, v := range f.boardVals {
		if v <= high && v >= high-4 && v < lowest {
			lowest = v
		}
	}
	return lowest
}

func classifyTrips(f holdingFacts) HandStrengthInfo {
	trip := f.madeRank()
	switch f.holeCount(trip) {
	case 0:
		return HandStrengthInfo{
			Tier:          Weak,
			Label:         "Board Trips",
			Description:   "The three of a kind is on the board. Everyone shares it, so only your kickers play.",
			Vulnerability: 0.65,
			Kicker:        kickerFor(f.holeMax()),
		}
	case 1:
		kicker := 0
		for _, v := range f.holeVals {
			if v != trip {
				kicker = v
				break
			}
		}
		if kicker >= 12 {
			return HandStrengthInfo{
				Tier:          Strong,
				Label:         "Trips (Strong Kicker)",
				Description:   "Trips with a strong kicker. Good hand but less concealed than a set, since opponents can also have trips with the board pair.",
				Vulnerability: 0.25,
				Kicker:        KickerStrong,
			}
		}
		return HandStrengthInfo{
			Tier:          Good,
			Label:         "Trips (Weak Kicker)",
			Description:   "Trips but with a weak kicker. An opponent with the same trips and a higher kicker dominates you.",
			Vulnerability: 0.4,
			Kicker:        KickerWeak,
		}
	}

	distinct := f.distinctBoard()
	switch {
	case trip >= f.boardMax():
		return HandStrengthInfo{
			Tier:          Premium,
			Label:         "Top Set",
			Description:   "Top set, the best possible three of a kind. Extremely well-disguised and powerful.",
			Vulnerability: f.wetOr(0.2, 0.08),
			Nutted:        true,
		}
	case len(distinct) > 1 && trip >= distinct[1]:
		return HandStrengthInfo{
			Tier:          Strong,
			Label:         "Middle Set",
			Description:   "Middle set. Very strong, but a higher set is possible if an opponent has a higher pocket pair.",
			Vulnerability: f.wetOr(0.25, 0.12),
		}
	default:
		return HandStrengthInfo{
			Tier:          Good,
			Label:         "Bottom Set",
			Description:   "Bottom set. Still strong, but vulnerable to higher sets. Play carefully on wet boards.",
			Vulnerability: f.wetOr(0.35, 0.18),
		}
	}
}

func classifyTwoPair(f holdingFacts) HandStrengthInfo {
	ranks := f.madeRanks()
	high, low := ranks[0], ranks[1]
	// A pair "connects" when one hole card pairs one board card.
	connects := func(v int) bool { return f.holeCount(v) == 1 && f.boardCount(v) >= 1 }
	boardOnly := func(v int) bool { return f.holeCount(v) == 0 }

	distinct := f.distinctBoard()
	second := 0
	if len(distinct) > 1 {
		second = distinct[1]
	}

	switch {
	case connects(high) && connects(low):
		switch {
		case high >= f.boardMax() && low >= second:
			return HandStrengthInfo{
				Tier:          Strong,
				Label:         "Top Two Pair",
				Description:   "Top two pair with both hole cards paired to the highest board cards. Strong hand.",
				Vulnerability: f.wetOr(0.3, 0.15),
			}
		case high >= f.boardMax():
			return HandStrengthInfo{
				Tier:          Good,
				Label:         "Top and Bottom Two Pair",
				Description:   "Two pair with top pair, but the second pair is low. Vulnerable to higher two pairs.",
				Vulnerability: f.wetOr(0.35, 0.2),
			}
		default:
			return HandStrengthInfo{
				Tier:          Marginal,
				Label:         "Bottom Two Pair",
				Description:   "Bottom two pair. Any opponent pairing a higher board card has a better two pair.",
				Vulnerability: f.wetOr(0.5, 0.35),
			}
		}
	case boardOnly(high) && boardOnly(low):
		return HandStrengthInfo{
			Tier:          Weak,
			Label:         "Board Two Pair",
			Description:   "Both pairs are on the board. You are playing your kicker against every opponent.",
			Vulnerability: 0.7,
			Kicker:        kickerFor(f.holeMax()),
		}
	case boardOnly(high) || boardOnly(low):
		return HandStrengthInfo{
			Tier:          Marginal,
			Label:         "Two Pair (Board Paired)",
			Description:   "One of your pairs is the board's own pair, so opponents share it. This plays more like one pair.",
			Vulnerability: f.wetOr(0.45, 0.3),
		}
	default:
		return HandStrengthInfo{
			Tier:          Good,
			Label:         "Two Pair",
			Description:   "Two pair. Watch out for higher two pairs and sets.",
			Vulnerability: f.wetOr(0.35, 0.2),
		}
	}
}

func classifyPair(f holdingFacts) HandStrengthInfo {
	pair := f.madeRank()
	name := poker.RankPlural(uint8(pair - 2))

	if f.holeCount(pair) >= 2 {
		switch {
		case pair > f.boardMax() && pair >= 13:
			return HandStrengthInfo{
				Tier:          Premium,
				Label:         "Premium Overpair",
				Description:   fmt.Sprintf("Pocket %s, an overpair above every board card. Extremely strong. Bet for value and protection.", name),
				Vulnerability: f.wetOr(0.2, 0.1),
				Nutted:        pair == 14,
			}
		case pair > f.boardMax() && pair >= 10:
			return HandStrengthInfo{
				Tier:          Strong,
				Label:         "Overpair",
				Description:   fmt.Sprintf("Pocket %s over the board. Strong but watch for opponents with higher pocket pairs or sets.", name),
				Vulnerability: f.wetOr(0.3, 0.18),
			}
		case pair > f.boardMax():
			return HandStrengthInfo{
				Tier:          Good,
				Label:         "Low Overpair",
				Description:   fmt.Sprintf("Pocket %s over a low board. Currently ahead, but vulnerable to any overcard.", name),
				Vulnerability: f.wetOr(0.4, 0.3),
			}
		case pair < f.boardMin():
			return HandStrengthInfo{
				Tier:          Weak,
				Label:         "Underpair",
				Description:   fmt.Sprintf("Pocket %s below all board cards. Any opponent with a higher card likely has you beat. Consider folding to heavy action.", name),
				Vulnerability: 0.7,
			}
		default:
			return HandStrengthInfo{
				Tier:          Marginal,
				Label:         "Middle Pocket Pair",
				Description:   fmt.Sprintf("Pocket %s sits between board cards. Opponents pairing higher board cards beat you.", name),
				Vulnerability: 0.55,
			}
		}
	}

	if f.holeCount(pair) == 1 {
		idx := slices.Index(f.boardVals, pair)
		kicker := 0
		for _, v := range f.holeVals {
			if v != pair {
				kicker = v
				break
			}
		}
		strength := kickerFor(kicker)
		switch {
		case idx == 0 && strength == KickerStrong:
			return HandStrengthInfo{
				Tier:          Good,
				Label:         "Top Pair, Top Kicker",
				Description:   fmt.Sprintf("Top pair with a %s kicker, a strong made hand. Bet for value, but beware of two pair and sets.", poker.RankName(uint8(kicker-2))),
				Vulnerability: f.wetOr(0.35, 0.2),
				Kicker:        KickerStrong,
			}
		case idx == 0:
			return HandStrengthInfo{
				Tier:          Marginal,
				Label:         "Top Pair, Weak Kicker",
				Description:   "Top pair but with a weak kicker. Vulnerable to opponents who also paired the top card with a better kicker.",
				Vulnerability: f.wetOr(0.5, 0.35),
				Kicker:        KickerWeak,
			}
		case idx == len(f.boardVals)-1:
			return HandStrengthInfo{
				Tier:          Weak,
				Label:         "Bottom Pair",
				Description:   "Bottom pair, the weakest pair on the board. Almost any opponent pairing a higher card beats you. Fold to significant action.",
				Vulnerability: 0.65,
				Kicker:        strength,
			}
		default:
			return HandStrengthInfo{
				Tier:          Marginal,
				Label:         "Middle Pair",
				Description:   "Middle pair. You beat bottom pair and missed hands, but lose to top pair and better.",
				Vulnerability: f.wetOr(0.55, 0.45),
				Kicker:        strength,
			}
		}
	}

	return HandStrengthInfo{
		Tier:          Weak,
		Label:         "Board Pair (No Connection)",
		Description:   "The pair is on the board and your hole cards don't connect. Essentially playing high cards. Very weak.",
		Vulnerability: 0.7,
		Kicker:        KickerWeak,
	}
}

func classifyHighCard(f holdingFacts) HandStrengthInfo {
	kicker := kickerFor(f.holeMax())
	switch {
	case f.draw != nil && f.draw.NutDraw:
		return HandStrengthInfo{
			Tier:          Marginal,
			Label:         fmt.Sprintf("High Card (%s)", f.draw.Label),
			Description:   fmt.Sprintf("No made hand yet, but you have a %s. Drawing to a very strong hand.", f.draw.Label),
			Vulnerability: 0.6,
			Kicker:        kicker,
		}
	case f.draw != nil:
		return HandStrengthInfo{
			Tier:          Weak,
			Label:         fmt.Sprintf("High Card (%s)", f.draw.Label),
			Description:   "No made hand. You're drawing, but even if you hit, your hand may not be the best.",
			Vulnerability: 0.7,
			Kicker:        kicker,
		}
	case f.holeMax() >= 14:
		return HandStrengthInfo{
			Tier:          Weak,
			Label:         "Ace High",
			Description:   "Just Ace high with no pair and no draw. You might win at showdown against missed draws, but fold to any meaningful bet.",
			Vulnerability: 0.75,
			Kicker:        KickerStrong,
		}
	default:
		return HandStrengthInfo{
			Tier:          Trash,
			Label:         "High Card (Nothing)",
			Description:   "No pair, no draw, no showdown value. Fold to any action.",
			Vulnerability: 0.9,
			Kicker:        KickerWeak,
		}
	}
}

// AnalyzeDrawStrength grades the first flush or straight draw in outs. It
// returns nil when the hero has neither.
func AnalyzeDrawStrength(hole, board []poker.Card, outs []OutInfo) *DrawStrength {
	if len(hole) == 0 {
		return nil
	}
	holeMax := slices.Max(sortedValues(hole))
	for _, o := range outs {
		switch o.Type {
		case FlushDraw:
			if len(o.Outs) == 0 {
				continue
			}
			suit := o.Outs[0].Suit()
			top := 0
			for _, c := range cardsOfSuit(hole, suit) {
				top = max(top, c.Value())
			}
			switch {
			case top == 14:
				return &DrawStrength{NutDraw: true, Label: "Nut Flush Draw", Multiplier: 1.3}
			case top >= 12:
				return &DrawStrength{Label: "Strong Flush Draw", Multiplier: 1.15}
			default:
				return &DrawStrength{Label: "Weak Flush Draw", Multiplier: 0.8}
			}
		case OpenEndedStraightDraw, GutshotStraightDraw:
			allMax := holeMax
			for _, c := range board {
				allMax = max(allMax, c.Value())
			}
			kind, nutMult, weakMult := "OESD", 1.2, 0.95
			if o.Type == GutshotStraightDraw {
				kind, nutMult, weakMult = "Gutshot", 1.0, 0.75
			}
			if holeMax >= allMax || holeMax >= 13 {
				return &DrawStrength{NutDraw: true, Label: "Nut " + kind, Multiplier: nutMult}
			}
			return &DrawStrength{Label: "Weak " + kind, Multiplier: weakMult}
		}
	}
	return nil
}
