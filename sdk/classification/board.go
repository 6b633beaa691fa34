// Package classification turns raw cards into poker vocabulary: board
// texture, draws and their outs, and a relative strength tier for the hero's
// holding.
//
// All helpers work on bit-packed poker.Hand masks where possible.
package classification

import (
	"math/bits"
	"strings"

	"github.com/lox/pokeradvisor/poker"
)

// BoardTexture represents the "wetness" of a poker board from dry to very wet
type BoardTexture int

const (
	Dry BoardTexture = iota
	SemiWet
	Wet
	VeryWet
)

func (bt BoardTexture) String() string {
	switch bt {
	case Dry:
		return "dry"
	case SemiWet:
		return "semi-wet"
	case Wet:
		return "wet"
	case VeryWet:
		return "very wet"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (bt BoardTexture) MarshalText() ([]byte, error) {
	return []byte(bt.String()), nil
}

// BoardAnalysis describes the board independent of any hole cards.
type BoardAnalysis struct {
	Texture BoardTexture `json:"texture"`
	// Wetness is the raw draw-potential score behind Texture.
	Wetness           int    `json:"wetness"`
	Paired            bool   `json:"paired"`
	FlushPossible     bool   `json:"flushPossible"`     // three or more of a suit
	FlushDrawPossible bool   `json:"flushDrawPossible"` // two or more of a suit
	StraightPossible  bool   `json:"straightPossible"`  // three ranks inside a five-rank window
	Monotone          bool   `json:"monotone"`
	Rainbow           bool   `json:"rainbow"`
	HighCard          int    `json:"highCard"` // 2..14, 0 preflop
	Description       string `json:"description"`
}

// IsWet reports whether the board offers many draws.
func (b BoardAnalysis) IsWet() bool {
	return b.Texture >= Wet
}

// IsDry reports whether the board offers few draws.
func (b BoardAnalysis) IsDry() bool {
	return b.Texture == Dry
}

// AnalyzeBoard classifies a board of 0 to 5 cards.
func AnalyzeBoard(board []poker.Card) BoardAnalysis {
	if len(board) == 0 {
		return BoardAnalysis{Texture: Dry, Description: "Preflop"}
	}

	h := poker.NewHand(board...)
	rankMask := h.GetRankMask()

	paired := false
	for rank := poker.Two; rank <= poker.Ace; rank++ {
		if h.RankCount(rank) >= 2 {
			paired = true
			break
		}
	}

	flush := AnalyzeFlushPotential(h)
	straightPossible := hasStraightCluster(rankMask)
	high := poker.RankValue(highestRank(rankMask))

	wetness := 0
	if flush.MaxSuitCount >= 2 {
		wetness += 2
	}
	if flush.MaxSuitCount >= 3 {
		wetness += 2
	}
	if straightPossible {
		wetness += 2
	}
	if !paired {
		wetness++
	}
	wetness += closeRankSteps(rankMask)

	analysis := BoardAnalysis{
		Texture:           textureFromWetness(wetness),
		Wetness:           wetness,
		Paired:            paired,
		FlushPossible:     flush.MaxSuitCount >= 3,
		FlushDrawPossible: flush.MaxSuitCount >= 2,
		StraightPossible:  straightPossible,
		Monotone:          flush.IsMonotone,
		Rainbow:           flush.IsRainbow,
		HighCard:          high,
	}
	analysis.Description = describeBoard(analysis)
	return analysis
}

// AnalyzeBoardTexture returns only the texture level of a board.
func AnalyzeBoardTexture(board poker.Hand) BoardTexture {
	return AnalyzeBoard(board.Cards()).Texture
}

func textureFromWetness(wetness int) BoardTexture {
	switch {
	case wetness <= 2:
		return Dry
	case wetness == 3:
		return SemiWet
	case wetness <= 6:
		return Wet
	default:
		return VeryWet
	}
}

func describeBoard(b BoardAnalysis) string {
	var label string
	switch {
	case b.IsWet():
		label = "Wet"
	case b.IsDry():
		label = "Dry"
	default:
		label = "Medium"
	}

	var notes []string
	if b.Paired {
		notes = append(notes, "paired")
	}
	if b.FlushPossible {
		notes = append(notes, "flush-complete")
	} else if b.FlushDrawPossible {
		notes = append(notes, "flush-draw possible")
	}
	if b.StraightPossible {
		notes = append(notes, "connected")
	}
	if b.HighCard >= 12 {
		notes = append(notes, "high-card heavy")
	}
	if b.HighCard <= 8 {
		notes = append(notes, "low")
	}
	if len(notes) == 0 {
		return label + " board"
	}
	return label + " board (" + strings.Join(notes, ", ") + ")"
}

// hasStraightCluster reports whether three distinct ranks (Ace also low) fit
// inside one five-rank window.
func hasStraightCluster(rankMask uint16) bool {
	values := rankValues(rankMask, 1)
	for i := 0; i+2 < len(values); i++ {
		if values[i+2]-values[i] <= 4 {
			return true
		}
	}
	return false
}

// closeRankSteps counts adjacent distinct ranks at most two apart.
func closeRankSteps(rankMask uint16) int {
	values := rankValues(rankMask, 0)
	steps := 0
	for i := 1; i < len(values); i++ {
		if values[i]-values[i-1] <= 2 {
			steps++
		}
	}
	return steps
}

// rankValues lists the distinct 2..14 values in rankMask ascending. A
// non-zero aceLow also lists a present Ace at that value.
func rankValues(rankMask uint16, aceLow int) []int {
	values := make([]int, 0, 6)
	if aceLow > 0 && rankMask&(1<<poker.Ace) != 0 {
		values = append(values, aceLow)
	}
	for rank := poker.Two; rank <= poker.Ace; rank++ {
		if rankMask&(1<<rank) != 0 {
			values = append(values, poker.RankValue(rank))
		}
	}
	return values
}

// FlushInfo contains information about flush potential on a board
type FlushInfo struct {
	MaxSuitCount int
	DominantSuit *uint8
	IsMonotone   bool // Single suit (3+ cards)
	IsRainbow    bool // All different suits
}

// AnalyzeFlushPotential counts suits on the board. Ties for the dominant
// suit go to the suit holding the higher card.
func AnalyzeFlushPotential(board poker.Hand) FlushInfo {
	var info FlushInfo
	bestHigh := -1
	suits := 0
	for suit := poker.Spades; ; suit-- {
		mask := board.GetSuitMask(suit)
		if n := bits.OnesCount16(mask); n > 0 {
			suits++
			high := bits.Len16(mask) - 1
			if n > info.MaxSuitCount || (n == info.MaxSuitCount && high > bestHigh) {
				info.MaxSuitCount = n
				bestHigh = high
				s := suit
				info.DominantSuit = &s
			}
		}
		if suit == poker.Clubs {
			break
		}
	}
	n := board.CountCards()
	info.IsMonotone = suits == 1 && n >= 3
	info.IsRainbow = suits == n && n >= 3
	return info
}

func highestRank(mask uint16) uint8 {
	if mask == 0 {
		return 0
	}
	return uint8(bits.Len16(mask) - 1)
}
