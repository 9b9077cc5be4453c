package deck

import "fmt"

// Deck represents a standard 52-card deck. Cards are dealt from the
// front and a deck is never reused across hands.
type Deck struct {
	cards []Card
	next  int
}

// New creates a full 52-card deck permuted by the given shuffler.
func New(shuffler Shuffler) *Deck {
	cards := make([]Card, 0, 52)
	for suit := Spades; suit <= Clubs; suit++ {
		for rank := Two; rank <= Ace; rank++ {
			cards = append(cards, NewCard(rank, suit))
		}
	}
	shuffler.Shuffle(cards)
	return &Deck{cards: cards}
}

// NewOrdered creates a deck with the given cards in the given order,
// dealt front-first. Used for deterministic tests.
func NewOrdered(cards []Card) *Deck {
	c := make([]Card, len(cards))
	copy(c, cards)
	return &Deck{cards: c}
}

// Deal deals n cards from the deck
func (d *Deck) Deal(n int) ([]Card, error) {
	if d.next+n > len(d.cards) {
		return nil, fmt.Errorf("deck exhausted: %d cards requested, %d remaining", n, d.Remaining())
	}
	cards := d.cards[d.next : d.next+n]
	d.next += n
	return cards, nil
}

// Remaining returns the number of cards left in the deck
func (d *Deck) Remaining() int {
	return len(d.cards) - d.next
}

// Clone returns a copy of the deck with the same remaining cards.
func (d *Deck) Clone() *Deck {
	cards := make([]Card, len(d.cards))
	copy(cards, d.cards)
	return &Deck{cards: cards, next: d.next}
}
