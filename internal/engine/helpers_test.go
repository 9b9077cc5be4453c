package engine

import (
	"testing"

	"github.com/pokerroom/holdem/internal/deck"
	"github.com/pokerroom/holdem/internal/evaluator"
	"github.com/pokerroom/holdem/internal/randutil"
)

// testDeck builds a deterministic deck dealt front-first. Hole cards
// go out two at a time in seat order, then 3/1/1 for the board.
func testDeck(t *testing.T, cards string) *deck.Deck {
	t.Helper()
	cs, err := deck.ParseCards(cards)
	if err != nil {
		t.Fatalf("bad test deck %q: %v", cards, err)
	}
	return deck.NewOrdered(cs)
}

func seededEngine(seed int64) *Engine {
	return New(deck.NewSeededShuffler(randutil.New(seed)), evaluator.New())
}

func uniformPlayers(names []string, chips int) []PlayerConfig {
	players := make([]PlayerConfig, len(names))
	for i, name := range names {
		players[i] = PlayerConfig{Name: name, Chips: chips}
	}
	return players
}

// stubEvaluator ranks hands by the first hole card, so tests pick
// winners by choosing the dealt cards. A non-nil err is returned for
// every rank call.
type stubEvaluator struct {
	ranks map[deck.Card]evaluator.HandRank
	err   error
}

func (s stubEvaluator) Rank(hole [2]deck.Card, board []deck.Card) (evaluator.HandRank, error) {
	if s.err != nil {
		return 0, s.err
	}
	return s.ranks[hole[0]], nil
}

// mustAct applies an action that the test expects to succeed.
func mustAct(t *testing.T, e *Engine, s *TableState, seat int, action Action, amount int) *TableState {
	t.Helper()
	next, err := e.ApplyAction(s, seat, action, amount)
	if err != nil {
		t.Fatalf("seat %d %s(%d) failed: %v", seat, action, amount, err)
	}
	return next
}

// totalChips sums stacks plus outstanding wagers.
func totalChips(s *TableState) int {
	total := s.Pot()
	for _, p := range s.Players {
		total += p.Chips
	}
	return total
}
