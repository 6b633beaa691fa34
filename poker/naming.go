package poker

import "fmt"

// HandName returns a display name for a holding. Preflop two-card hands are
// named by their ranks ("Pocket Aces", "Ace-King suited"); otherwise the
// evaluated hand is described ("Pair of Aces").
func HandName(v Variant, hole, board []Card) string {
	if len(board) == 0 {
		return startingHandName(hole)
	}
	e := Rank(v, hole, board)
	if e.Category == 0 {
		return "Unknown Hand"
	}
	return e.Describe()
}

func startingHandName(hole []Card) string {
	switch len(hole) {
	case 2:
		hi, lo := hole[0], hole[1]
		if lo.Rank() > hi.Rank() {
			hi, lo = lo, hi
		}
		if hi.Rank() == lo.Rank() {
			return "Pocket " + RankPlural(hi.Rank())
		}
		suited := "offsuit"
		if hi.Suit() == lo.Suit() {
			suited = "suited"
		}
		return fmt.Sprintf("%s-%s %s", RankName(hi.Rank()), RankName(lo.Rank()), suited)
	case 4:
		return omahaStartingHandName(hole)
	default:
		return "Starting Hand"
	}
}

// omahaStartingHandName labels four-card holdings by their highest pair and
// suitedness, e.g. "Aces, double-suited".
func omahaStartingHandName(hole []Card) string {
	h := NewHand(hole...)
	var pairRank uint8
	hasPair := false
	for r := int(Ace); r >= int(Two); r-- {
		if h.RankCount(uint8(r)) >= 2 {
			pairRank, hasPair = uint8(r), true
			break
		}
	}

	suitedPairs := 0
	for suit := range uint8(4) {
		if n := len(cardsOfSuit(hole, suit)); n >= 2 {
			suitedPairs++
		}
	}
	suitedness := "rainbow"
	switch suitedPairs {
	case 1:
		suitedness = "single-suited"
	case 2:
		suitedness = "double-suited"
	}

	if hasPair {
		return fmt.Sprintf("Pocket %s, %s", RankPlural(pairRank), suitedness)
	}
	return fmt.Sprintf("%s High, %s", RankName(highestRank(h.GetRankMask())), suitedness)
}

func cardsOfSuit(cards []Card, suit uint8) []Card {
	var out []Card
	for _, c := range cards {
		if c.Suit() == suit {
			out = append(out, c)
		}
	}
	return out
}
