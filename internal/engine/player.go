package engine

import "github.com/pokerroom/holdem/internal/deck"

// Player represents a seat in a hand. Seats are fixed for the duration
// of the hand; cross-hand identity is the caller's concern.
type Player struct {
	Seat      int
	Name      string
	Chips     int
	HoleCards [2]deck.Card
	Status    Status
	Bet       int  // chips contributed this street
	TotalBet  int  // chips contributed this hand, for side-pot math
	Acted     bool // has acted since the street opened (or since the last full raise)
}

// Eligible reports whether the player may be given the turn. Folded and
// all-in players are out of the turn rotation, as is anyone with an
// empty stack.
func (p *Player) Eligible() bool {
	return p.Status == StatusActive && p.Chips > 0
}

// InHand reports whether the player can still win a pot.
func (p *Player) InHand() bool {
	return p.Status != StatusFolded
}

// post moves up to amount chips from the stack into the player's
// street and hand contributions, flipping the status to all-in when the
// stack is exhausted. It returns the amount actually posted.
func (p *Player) post(amount int) int {
	if amount > p.Chips {
		amount = p.Chips
	}
	p.Chips -= amount
	p.Bet += amount
	p.TotalBet += amount
	if p.Chips == 0 {
		p.Status = StatusAllIn
	}
	return amount
}

func (p *Player) clone() *Player {
	c := *p
	return &c
}
