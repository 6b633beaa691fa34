package poker

import (
	rand "math/rand/v2"
)

// Deck is an ordered collection of unique cards for one variant.
type Deck struct {
	cards []Card
}

// NewDeck returns every card legal in the variant exactly once, in canonical
// suit-major order.
func NewDeck(v Variant) *Deck {
	d := &Deck{cards: make([]Card, 0, v.DeckSize())}
	for suit := range uint8(4) {
		for rank := v.MinRank(); rank <= Ace; rank++ {
			d.cards = append(d.cards, NewCard(rank, suit))
		}
	}
	return d
}

// RemainingDeck returns a fresh deck for v without the known cards.
func RemainingDeck(v Variant, known Hand) *Deck {
	return NewDeck(v).Remove(known)
}

// Remove drops every card in used from the deck and returns the deck.
func (d *Deck) Remove(used Hand) *Deck {
	kept := d.cards[:0]
	for _, c := range d.cards {
		if !used.HasCard(c) {
			kept = append(kept, c)
		}
	}
	d.cards = kept
	return d
}

// Shuffle permutes the deck uniformly using Fisher-Yates. A nil rng falls
// back to the global source.
func (d *Deck) Shuffle(rng *rand.Rand) {
	for i := len(d.cards) - 1; i > 0; i-- {
		var j int
		if rng != nil {
			j = rng.IntN(i + 1)
		} else {
			j = rand.IntN(i + 1)
		}
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	}
}

// Deal splits the deck into the first n cards and the rest. It returns nil
// slices when fewer than n cards remain. The slices alias the deck.
func (d *Deck) Deal(n int) (dealt, remaining []Card) {
	if n < 0 || n > len(d.cards) {
		return nil, nil
	}
	return d.cards[:n], d.cards[n:]
}

// Cards returns the deck contents. The slice aliases the deck.
func (d *Deck) Cards() []Card {
	return d.cards
}

// Len returns the number of cards in the deck.
func (d *Deck) Len() int {
	return len(d.cards)
}

// Hand returns the deck contents as a set.
func (d *Deck) Hand() Hand {
	return NewHand(d.cards...)
}
