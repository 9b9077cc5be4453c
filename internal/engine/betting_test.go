package engine

import (
	"errors"
	"testing"
)

func TestCheckFacingBetIsIllegal(t *testing.T) {
	t.Parallel()
	e := seededEngine(42)

	s, _ := e.StartHand(uniformPlayers([]string{"a", "b", "c"}, 1000), 0, 5, 10)
	_, err := e.ApplyAction(s, 0, Check, 0)
	if !errors.Is(err, ErrIllegalAction) {
		t.Errorf("check facing the big blind: got %v, want ErrIllegalAction", err)
	}
}

func TestOutOfTurnRejected(t *testing.T) {
	t.Parallel()
	e := seededEngine(42)

	s, _ := e.StartHand(uniformPlayers([]string{"a", "b", "c"}, 1000), 0, 5, 10)
	_, err := e.ApplyAction(s, 2, Fold, 0)
	if !errors.Is(err, ErrOutOfTurn) {
		t.Errorf("got %v, want ErrOutOfTurn", err)
	}
}

func TestMinimumRaiseEnforced(t *testing.T) {
	t.Parallel()
	e := seededEngine(42)

	s, _ := e.StartHand(uniformPlayers([]string{"a", "b", "c"}, 1000), 0, 5, 10)

	// First raise must be at least the big blind.
	if _, err := e.ApplyAction(s, 0, Raise, 9); !errors.Is(err, ErrIllegalAction) {
		t.Errorf("raise below big blind: got %v, want ErrIllegalAction", err)
	}

	// Raise of 30 sets the new minimum increment to 30.
	s = mustAct(t, e, s, 0, Raise, 30)
	if s.CurrentBet != 40 {
		t.Fatalf("current bet = %d, want 40", s.CurrentBet)
	}
	if s.MinRaise != 30 {
		t.Fatalf("min raise = %d, want 30", s.MinRaise)
	}
	if _, err := e.ApplyAction(s, 1, Raise, 20); !errors.Is(err, ErrIllegalAction) {
		t.Errorf("re-raise below previous increment: got %v, want ErrIllegalAction", err)
	}
	if _, err := e.ApplyAction(s, 1, Raise, 30); err != nil {
		t.Errorf("re-raise matching previous increment should be legal: %v", err)
	}
}

func TestRaiseInsufficientChips(t *testing.T) {
	t.Parallel()
	e := seededEngine(42)

	s, _ := e.StartHand(uniformPlayers([]string{"a", "b", "c"}, 100), 0, 5, 10)
	_, err := e.ApplyAction(s, 0, Raise, 200)
	if !errors.Is(err, ErrInsufficientChips) {
		t.Errorf("got %v, want ErrInsufficientChips", err)
	}
}

func TestBigBlindGetsPreflopOption(t *testing.T) {
	t.Parallel()
	e := seededEngine(42)

	s, _ := e.StartHand(uniformPlayers([]string{"a", "b", "c"}, 1000), 0, 5, 10)

	s = mustAct(t, e, s, 0, Call, 0) // button limps
	s = mustAct(t, e, s, 1, Call, 0) // small blind completes

	// Everyone has matched, but the big blind posted rather than acted,
	// so the street must still be open with the option on seat 2.
	if s.Street != Preflop {
		t.Fatalf("street advanced to %s before the big blind's option", s.Street)
	}
	if s.ToAct != 2 {
		t.Fatalf("to act = %d, want big blind seat 2", s.ToAct)
	}

	// And the option includes raising.
	s = mustAct(t, e, s, 2, Raise, 20)
	if s.CurrentBet != 30 {
		t.Errorf("current bet = %d, want 30 after the option raise", s.CurrentBet)
	}
	if s.Street != Preflop {
		t.Errorf("street = %s, want preflop still", s.Street)
	}
}

func TestBigBlindCheckClosesPreflop(t *testing.T) {
	t.Parallel()
	e := seededEngine(42)

	s, _ := e.StartHand(uniformPlayers([]string{"a", "b", "c"}, 1000), 0, 5, 10)
	s = mustAct(t, e, s, 0, Call, 0)
	s = mustAct(t, e, s, 1, Call, 0)
	s = mustAct(t, e, s, 2, Check, 0)

	if s.Street != Flop {
		t.Errorf("street = %s, want flop after big blind checks the option", s.Street)
	}
	if s.ToAct != 1 {
		t.Errorf("to act = %d, want first seat after the button", s.ToAct)
	}
}

func TestEveryoneChecksAdvancesStreet(t *testing.T) {
	t.Parallel()
	e := seededEngine(42)

	s, _ := e.StartHand(uniformPlayers([]string{"a", "b", "c"}, 1000), 0, 5, 10)
	s = mustAct(t, e, s, 0, Call, 0)
	s = mustAct(t, e, s, 1, Call, 0)
	s = mustAct(t, e, s, 2, Check, 0)

	// Flop: a single check must not close the round.
	s = mustAct(t, e, s, 1, Check, 0)
	if s.Street != Flop {
		t.Fatalf("round closed after one check on the flop")
	}
	s = mustAct(t, e, s, 2, Check, 0)
	if s.Street != Flop {
		t.Fatalf("round closed before the button checked")
	}
	s = mustAct(t, e, s, 0, Check, 0)
	if s.Street != Turn {
		t.Errorf("street = %s, want turn after all three check", s.Street)
	}
	if len(s.Board) != 4 {
		t.Errorf("board has %d cards, want 4", len(s.Board))
	}
}

func TestFoldRemovesPlayerFromRotation(t *testing.T) {
	t.Parallel()
	e := seededEngine(42)

	s, _ := e.StartHand(uniformPlayers([]string{"a", "b", "c", "d"}, 1000), 0, 5, 10)

	// Seats 3 (UTG) folds; action must skip it for the rest of the hand.
	s = mustAct(t, e, s, 3, Fold, 0)
	if s.Players[3].Status != StatusFolded {
		t.Fatal("seat 3 not folded")
	}
	s = mustAct(t, e, s, 0, Call, 0)
	s = mustAct(t, e, s, 1, Call, 0)
	s = mustAct(t, e, s, 2, Check, 0)

	if s.Street != Flop {
		t.Fatalf("street = %s, want flop", s.Street)
	}
	for !s.Complete() && s.Street == Flop {
		if s.ToAct == 3 {
			t.Fatal("folded seat given the turn")
		}
		s = mustAct(t, e, s, s.ToAct, Check, 0)
	}
}

func TestFoldToOneWinsWithoutShowdown(t *testing.T) {
	t.Parallel()
	e := seededEngine(42)

	s, _ := e.StartHand(uniformPlayers([]string{"a", "b", "c"}, 1000), 0, 5, 10)
	s = mustAct(t, e, s, 0, Raise, 50)
	s = mustAct(t, e, s, 1, Fold, 0)
	s = mustAct(t, e, s, 2, Fold, 0)

	if !s.Complete() {
		t.Fatal("hand should be complete after everyone folds to the raiser")
	}
	if !s.Result.FoldWin {
		t.Error("result should be marked as a fold win")
	}
	if s.Result.Ranks != nil {
		t.Error("fold wins must not consult the evaluator")
	}
	// Raiser contributed 60 and collects sb 5 + bb 10 on top.
	if s.Players[0].Chips != 1015 {
		t.Errorf("winner stack = %d, want 1015", s.Players[0].Chips)
	}
	if got := totalChips(s); got != 3000 {
		t.Errorf("chips in play = %d, want 3000", got)
	}
}

func TestShortAllInDoesNotReopenBetting(t *testing.T) {
	t.Parallel()
	e := seededEngine(42)

	// Seat 1's all-in tops seat 0's raise by less than the minimum
	// increment: seat 0 may call the difference but not raise again.
	players := []PlayerConfig{{"a", 1000}, {"b", 130}, {"c", 1000}}
	s, err := e.StartHand(players, 2, 5, 10) // sb=0, bb=1, utg=2
	if err != nil {
		t.Fatalf("StartHand failed: %v", err)
	}

	s = mustAct(t, e, s, 2, Fold, 0)
	s = mustAct(t, e, s, 0, Raise, 90) // to 100
	s = mustAct(t, e, s, 1, AllIn, 0)  // to 130, increment 30 < min 90

	if s.CurrentBet != 130 {
		t.Fatalf("current bet = %d, want 130", s.CurrentBet)
	}
	if s.Players[1].Status != StatusAllIn {
		t.Fatal("seat 1 should be all-in")
	}
	if s.ToAct != 0 {
		t.Fatalf("to act = %d, want 0 facing the short all-in", s.ToAct)
	}

	if _, err := e.ApplyAction(s, 0, Raise, 90); !errors.Is(err, ErrIllegalAction) {
		t.Errorf("raise after a non-reopening all-in: got %v, want ErrIllegalAction", err)
	}

	// Calling the difference is fine and ends the betting.
	s = mustAct(t, e, s, 0, Call, 0)
	if s.Street == Preflop {
		t.Error("street should have advanced once the short all-in was called")
	}
}

func TestFullAllInReopensBetting(t *testing.T) {
	t.Parallel()
	e := seededEngine(42)

	// Seat 1's all-in tops the raise by at least the minimum increment,
	// so seat 0 may re-raise.
	players := []PlayerConfig{{"a", 1000}, {"b", 200}, {"c", 1000}}
	s, err := e.StartHand(players, 2, 5, 10)
	if err != nil {
		t.Fatalf("StartHand failed: %v", err)
	}

	s = mustAct(t, e, s, 2, Fold, 0)
	s = mustAct(t, e, s, 0, Raise, 90) // to 100, min raise now 90
	s = mustAct(t, e, s, 1, AllIn, 0)  // to 200, increment 100 >= 90

	if s.CurrentBet != 200 {
		t.Fatalf("current bet = %d, want 200", s.CurrentBet)
	}
	if s.LastRaiser != 1 {
		t.Errorf("last raiser = %d, want 1", s.LastRaiser)
	}
	if _, err := e.ApplyAction(s, 0, Raise, 100); err != nil {
		t.Errorf("re-raise after a full all-in raise should be legal: %v", err)
	}
}

func TestValidActionsFacingBet(t *testing.T) {
	t.Parallel()
	e := seededEngine(42)

	s, _ := e.StartHand(uniformPlayers([]string{"a", "b", "c"}, 1000), 0, 5, 10)

	got := s.ValidActions()
	want := map[Action]bool{Fold: true, Call: true, Raise: true, AllIn: true}
	if len(got) != len(want) {
		t.Fatalf("valid actions = %v", got)
	}
	for _, a := range got {
		if !want[a] {
			t.Errorf("unexpected valid action %s", a)
		}
	}
}
