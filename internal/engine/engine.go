// Package engine implements the authoritative state machine for one
// poker table's hand lifecycle: dealing, blinds, betting rounds across
// streets, turn order, side-pot accounting and showdown.
//
// The engine is a pure transition function over TableState: every
// command either returns a fresh state or an error with the input state
// untouched. It holds no shared mutable resources and is safe for one
// serialized caller per table; randomness and hand ranking come from
// injected capabilities.
package engine

import (
	"fmt"

	"github.com/pokerroom/holdem/internal/deck"
	"github.com/pokerroom/holdem/internal/evaluator"
)

// MaxPlayers bounds a single table. Ten-handed is the largest game a
// 52-card deck comfortably deals.
const MaxPlayers = 10

// PlayerConfig seats one player for a hand.
type PlayerConfig struct {
	Name  string
	Chips int
}

// Engine drives hands for a single table. It owns no cross-hand state;
// callers persist the returned TableState between commands.
type Engine struct {
	shuffler  deck.Shuffler
	evaluator evaluator.Evaluator
}

// New creates an engine with the given shuffle and evaluation
// capabilities.
func New(shuffler deck.Shuffler, ev evaluator.Evaluator) *Engine {
	return &Engine{shuffler: shuffler, evaluator: ev}
}

// StartOption adjusts hand creation, mainly for deterministic tests.
type StartOption func(*startConfig)

type startConfig struct {
	deck *deck.Deck
}

// WithDeck deals from a pre-built deck instead of shuffling a fresh
// one.
func WithDeck(d *deck.Deck) StartOption {
	return func(c *startConfig) {
		c.deck = d
	}
}

// StartHand deals a new hand: fresh deck, hole cards in seat order,
// blinds posted, action on the first seat after the big blind. In
// heads-up play the button posts the small blind and acts first
// preflop. A blind that exceeds a stack puts that player all-in for
// what they have.
func (e *Engine) StartHand(players []PlayerConfig, button, smallBlind, bigBlind int, opts ...StartOption) (*TableState, error) {
	if len(players) < 2 {
		return nil, fmt.Errorf("%w: need at least 2 players, got %d", ErrInvalidConfiguration, len(players))
	}
	if len(players) > MaxPlayers {
		return nil, fmt.Errorf("%w: at most %d players, got %d", ErrInvalidConfiguration, MaxPlayers, len(players))
	}
	if button < 0 || button >= len(players) {
		return nil, fmt.Errorf("%w: button seat %d out of range", ErrInvalidConfiguration, button)
	}
	if smallBlind <= 0 || bigBlind < smallBlind {
		return nil, fmt.Errorf("%w: blinds %d/%d", ErrInvalidConfiguration, smallBlind, bigBlind)
	}
	for i, pc := range players {
		if pc.Chips <= 0 {
			return nil, fmt.Errorf("%w: seat %d has starting stack %d", ErrInvalidConfiguration, i, pc.Chips)
		}
	}

	var cfg startConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	d := cfg.deck
	if d == nil {
		d = deck.New(e.shuffler)
	}

	s := &TableState{
		Button:     button,
		SmallBlind: smallBlind,
		BigBlind:   bigBlind,
		Street:     Preflop,
		Deck:       d,
		MinRaise:   bigBlind,
		LastRaiser: -1,
	}
	s.Players = make([]*Player, len(players))
	for i, pc := range players {
		s.Players[i] = &Player{Seat: i, Name: pc.Name, Chips: pc.Chips}
	}

	for _, p := range s.Players {
		cards, err := d.Deal(2)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidConfiguration, err)
		}
		p.HoleCards = [2]deck.Card{cards[0], cards[1]}
	}

	n := len(s.Players)
	var sbSeat, bbSeat int
	if n == 2 {
		// Heads-up: the button posts the small blind.
		sbSeat = button
		bbSeat = (button + 1) % n
	} else {
		sbSeat = (button + 1) % n
		bbSeat = (button + 2) % n
	}

	s.Players[sbSeat].post(smallBlind)
	s.Players[bbSeat].post(bigBlind)
	s.LastRaiser = bbSeat

	// A short big blind lowers the bet to match; a short small blind
	// does not change it. CurrentBet is always the largest street
	// contribution on the table.
	s.CurrentBet = 0
	for _, p := range s.Players {
		if p.Bet > s.CurrentBet {
			s.CurrentBet = p.Bet
		}
	}

	s.ToAct = s.nextEligible((bbSeat + 1) % n)
	if s.ToAct == -1 {
		// Both blinds went all-in posting: nothing left to decide, run
		// the board out.
		if err := e.finishStreets(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// ApplyAction applies one player action and returns the resulting
// state. The input state is never modified: rejected actions return an
// error and nothing else changes.
func (e *Engine) ApplyAction(state *TableState, seat int, action Action, amount int) (*TableState, error) {
	if state.Complete() {
		return nil, fmt.Errorf("%w: hand is complete", ErrIllegalAction)
	}
	if seat < 0 || seat >= len(state.Players) {
		return nil, fmt.Errorf("%w: no seat %d", ErrIllegalAction, seat)
	}
	if seat != state.ToAct {
		return nil, fmt.Errorf("%w: seat %d acted but seat %d is due", ErrOutOfTurn, seat, state.ToAct)
	}

	s := state.Clone()
	p := s.Players[seat]
	if !p.Eligible() {
		return nil, fmt.Errorf("%w: seat %d is %s", ErrIllegalAction, seat, p.Status)
	}

	switch action {
	case Fold:
		p.Status = StatusFolded
		p.Acted = true

	case Check:
		if p.Bet != s.CurrentBet {
			return nil, fmt.Errorf("%w: cannot check facing a bet of %d", ErrIllegalAction, s.CurrentBet-p.Bet)
		}
		p.Acted = true

	case Call:
		// A call that the stack cannot cover posts the whole stack and
		// becomes an implicit all-in.
		p.post(s.CurrentBet - p.Bet)
		p.Acted = true

	case Raise:
		if amount <= 0 {
			return nil, fmt.Errorf("%w: raise amount must be positive", ErrIllegalAction)
		}
		toCall := s.CurrentBet - p.Bet
		total := toCall + amount
		if total > p.Chips {
			return nil, fmt.Errorf("%w: raise needs %d, stack is %d", ErrInsufficientChips, total, p.Chips)
		}
		isAllIn := total == p.Chips
		if amount < s.MinRaise && !isAllIn {
			return nil, fmt.Errorf("%w: raise of %d is below minimum %d", ErrIllegalAction, amount, s.MinRaise)
		}
		if p.Acted {
			return nil, fmt.Errorf("%w: betting was not reopened", ErrIllegalAction)
		}
		p.post(total)
		s.applyRaise(seat, amount)

	case AllIn:
		if p.Chips == 0 {
			return nil, fmt.Errorf("%w: no chips to wager", ErrIllegalAction)
		}
		newBet := p.Bet + p.Chips
		increment := newBet - s.CurrentBet
		if increment > 0 && p.Acted {
			return nil, fmt.Errorf("%w: betting was not reopened", ErrIllegalAction)
		}
		p.post(p.Chips)
		if increment > 0 {
			s.applyRaise(seat, increment)
		} else {
			p.Acted = true
		}

	default:
		return nil, fmt.Errorf("%w: unknown action %d", ErrIllegalAction, action)
	}

	if err := e.advance(s, seat); err != nil {
		return nil, err
	}
	return s, nil
}

// applyRaise records a bet increase by seat. A full raise (increment at
// or above the minimum) resets the minimum, moves the last-raiser
// marker and reopens the betting for everyone else. An all-in for less
// raises the price to call but reopens nothing.
func (s *TableState) applyRaise(seat, increment int) {
	p := s.Players[seat]
	s.CurrentBet = p.Bet
	if increment >= s.MinRaise {
		s.MinRaise = increment
		s.LastRaiser = seat
		for _, other := range s.Players {
			other.Acted = false
		}
	}
	p.Acted = true
}

// advance moves the hand forward after an action: ends the hand when
// only one seat remains, advances the street when the round is
// settled, otherwise passes the turn to the next eligible seat.
func (e *Engine) advance(s *TableState, actedSeat int) error {
	if s.inHandCount() <= 1 {
		s.resolveFoldWin()
		return nil
	}
	if s.roundComplete() {
		return e.nextStreet(s)
	}
	s.ToAct = s.nextEligible((actedSeat + 1) % len(s.Players))
	if s.ToAct == -1 {
		// Everyone left is all-in; no further input is possible.
		return e.finishStreets(s)
	}
	return nil
}

// nextStreet closes the current betting round and opens the next one,
// dealing community cards as needed. When nobody can act on the new
// street it keeps advancing until showdown.
func (e *Engine) nextStreet(s *TableState) error {
	for _, p := range s.Players {
		p.Bet = 0
		p.Acted = false
	}
	s.CurrentBet = 0
	s.MinRaise = s.BigBlind
	s.LastRaiser = -1
	s.ToAct = -1

	switch s.Street {
	case Preflop:
		s.Street = Flop
		if err := s.dealBoard(3); err != nil {
			return err
		}
	case Flop:
		s.Street = Turn
		if err := s.dealBoard(1); err != nil {
			return err
		}
	case Turn:
		s.Street = River
		if err := s.dealBoard(1); err != nil {
			return err
		}
	case River:
		s.Street = Showdown
		return e.resolveShowdown(s)
	case Showdown:
		return nil
	}

	s.ToAct = s.nextEligible((s.Button + 1) % len(s.Players))
	if s.ToAct == -1 {
		return e.nextStreet(s)
	}
	return nil
}

// finishStreets runs the board out to showdown with no further
// betting.
func (e *Engine) finishStreets(s *TableState) error {
	s.ToAct = -1
	for s.Street != Showdown && !s.Complete() {
		if err := e.nextStreet(s); err != nil {
			return err
		}
		if s.ToAct != -1 {
			// Cannot happen once everyone is all-in, but guard against
			// re-opening a street we meant to run out.
			s.ToAct = -1
		}
	}
	return nil
}

func (s *TableState) dealBoard(n int) error {
	cards, err := s.Deck.Deal(n)
	if err != nil {
		return fmt.Errorf("dealing %s: %w", s.Street, err)
	}
	s.Board = append(s.Board, cards...)
	return nil
}

// resolveFoldWin ends a hand in which all but one seat folded. The
// remaining seat takes the whole pot without a showdown.
func (s *TableState) resolveFoldWin() {
	winner := -1
	for _, p := range s.Players {
		if p.InHand() {
			winner = p.Seat
			break
		}
	}
	s.ToAct = -1

	pot := Pot{Amount: s.Pot(), Eligible: []int{winner}}
	awards := payout(s.Players, s.Button, pot, []int{winner})
	s.Result = &Result{
		Pots:    []PotResult{{Pot: pot, Winners: []int{winner}}},
		Payouts: awards,
		FoldWin: true,
	}
	s.sweep()
}

// sweep clears per-hand player state once the pot has been disbursed.
// Contributions are zeroed so the pot reads empty, and hole cards are
// cleared; anything worth keeping is already in Result.
func (s *TableState) sweep() {
	for _, p := range s.Players {
		p.Bet = 0
		p.TotalBet = 0
		p.HoleCards = [2]deck.Card{}
	}
}

// resolveShowdown ranks every non-folded seat, partitions the wagers
// into main and side pots, and pays each pot to its best hand(s). Ties
// split evenly; odd chips go to the winner closest clockwise from the
// button. An evaluator failure aborts the transition with no winner
// chosen.
func (e *Engine) resolveShowdown(s *TableState) error {
	ranks := make(map[int]evaluator.HandRank)
	for _, p := range s.Players {
		if !p.InHand() {
			continue
		}
		rank, err := e.evaluator.Rank(p.HoleCards, s.Board)
		if err != nil {
			return fmt.Errorf("%w: seat %d: %v", ErrEvaluator, p.Seat, err)
		}
		ranks[p.Seat] = rank
	}

	result := &Result{
		Payouts: make(map[int]int),
		Ranks:   ranks,
	}
	for _, pot := range computePots(s.Players) {
		var winners []int
		var best evaluator.HandRank
		for _, seat := range pot.Eligible {
			rank, ok := ranks[seat]
			if !ok {
				continue
			}
			if len(winners) == 0 || rank > best {
				winners = []int{seat}
				best = rank
			} else if rank == best {
				winners = append(winners, seat)
			}
		}
		awards := payout(s.Players, s.Button, pot, winners)
		for seat, amount := range awards {
			result.Payouts[seat] += amount
		}
		result.Pots = append(result.Pots, PotResult{Pot: pot, Winners: winners})
	}

	s.ToAct = -1
	s.Result = result
	s.sweep()
	return nil
}
