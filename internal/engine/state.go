package engine

import "github.com/pokerroom/holdem/internal/deck"

// TableState is the complete state of one hand at one table. Transitions
// return a fresh state and never mutate their input, so callers can
// snapshot, diff or roll back freely.
type TableState struct {
	Players    []*Player
	Button     int
	SmallBlind int
	BigBlind   int

	Street Street
	Board  []deck.Card
	Deck   *deck.Deck

	CurrentBet int
	MinRaise   int // smallest legal raise increment
	LastRaiser int // seat of the last full raise, -1 if none
	ToAct      int // seat to act, -1 once the hand no longer waits on input

	Result *Result // set once the hand ends
}

// Clone returns a deep copy of the state.
func (s *TableState) Clone() *TableState {
	c := *s

	c.Players = make([]*Player, len(s.Players))
	for i, p := range s.Players {
		c.Players[i] = p.clone()
	}

	c.Board = make([]deck.Card, len(s.Board))
	copy(c.Board, s.Board)

	if s.Deck != nil {
		c.Deck = s.Deck.Clone()
	}
	if s.Result != nil {
		c.Result = s.Result.clone()
	}
	return &c
}

// Pot returns the total chips wagered this hand. It is derived from
// player contributions so the conservation invariant holds by
// construction.
func (s *TableState) Pot() int {
	total := 0
	for _, p := range s.Players {
		total += p.TotalBet
	}
	return total
}

// Complete reports whether the hand has ended, by folds or showdown.
func (s *TableState) Complete() bool {
	return s.Result != nil
}

// nextEligible finds the first seat at or after from (wrapping) that
// can be given the turn, or -1 when nobody is left to act.
func (s *TableState) nextEligible(from int) int {
	n := len(s.Players)
	for i := 0; i < n; i++ {
		seat := (from + i) % n
		if s.Players[seat].Eligible() {
			return seat
		}
	}
	return -1
}

// inHandCount returns the number of seats that have not folded.
func (s *TableState) inHandCount() int {
	n := 0
	for _, p := range s.Players {
		if p.InHand() {
			n++
		}
	}
	return n
}

// roundComplete reports whether the current betting round is settled:
// the hand is down to one player, or every seat that can still act has
// acted since the street opened and matched the current bet. Posting a
// blind is not an action, which is what gives the big blind its
// preflop option.
func (s *TableState) roundComplete() bool {
	if s.inHandCount() <= 1 {
		return true
	}
	for _, p := range s.Players {
		if !p.Eligible() {
			continue
		}
		if !p.Acted || p.Bet != s.CurrentBet {
			return false
		}
	}
	return true
}

// ValidActions returns the actions the seat to act may legally take.
// It returns nil when the hand is not waiting on input.
func (s *TableState) ValidActions() []Action {
	if s.Complete() || s.ToAct < 0 {
		return nil
	}

	p := s.Players[s.ToAct]
	actions := []Action{Fold}
	toCall := s.CurrentBet - p.Bet

	if toCall == 0 {
		actions = append(actions, Check)
	} else if toCall < p.Chips {
		actions = append(actions, Call)
	}

	// Raising requires an unspent action: a seat that already acted may
	// not re-raise unless a full raise reopened the betting.
	if !p.Acted {
		if p.Chips > toCall+s.MinRaise {
			actions = append(actions, Raise)
		}
		if p.Chips > 0 {
			actions = append(actions, AllIn)
		}
	} else if toCall >= p.Chips {
		// Short stack facing a bet it cannot cover: calling is an
		// implicit all-in.
		actions = append(actions, AllIn)
	}

	return actions
}
