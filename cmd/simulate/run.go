package main

import (
	"fmt"

	"github.com/pokerroom/holdem/internal/deck"
	"github.com/pokerroom/holdem/internal/engine"
	"github.com/pokerroom/holdem/internal/evaluator"
	"github.com/pokerroom/holdem/internal/randutil"
)

type handResult struct {
	Seed     int64
	Pot      int
	FoldWin  bool
	Showdown bool
	Street   engine.Street
	Steps    int
}

// playHand deals one hand and plays it to completion with uniformly
// random legal actions. Chip conservation is checked every step; any
// violation is an error carrying the seed for replay.
func playHand(seed int64, numPlayers, smallBlind, bigBlind, buyIn int) (handResult, error) {
	rng := randutil.New(seed)
	e := engine.New(deck.NewSeededShuffler(randutil.New(seed)), evaluator.New())

	players := make([]engine.PlayerConfig, numPlayers)
	for i := range players {
		players[i] = engine.PlayerConfig{Name: fmt.Sprintf("p%d", i), Chips: buyIn}
	}
	starting := buyIn * numPlayers
	button := rng.IntN(numPlayers)

	s, err := e.StartHand(players, button, smallBlind, bigBlind)
	if err != nil {
		return handResult{}, fmt.Errorf("seed %d: %w", seed, err)
	}

	deepest := s.Street
	steps := 0
	for !s.Complete() {
		steps++
		if steps > 10000 {
			return handResult{}, fmt.Errorf("seed %d: hand did not terminate", seed)
		}
		if got := chipsInPlay(s); got != starting {
			return handResult{}, fmt.Errorf("seed %d: chips in play %d, want %d", seed, got, starting)
		}

		valid := s.ValidActions()
		if len(valid) == 0 {
			return handResult{}, fmt.Errorf("seed %d: no valid actions", seed)
		}
		action := valid[rng.IntN(len(valid))]
		amount := 0
		if action == engine.Raise {
			amount = s.MinRaise
		}
		s, err = e.ApplyAction(s, s.ToAct, action, amount)
		if err != nil {
			return handResult{}, fmt.Errorf("seed %d: %s rejected: %w", seed, action, err)
		}
		if s.Street > deepest {
			deepest = s.Street
		}
	}

	final := 0
	for _, p := range s.Players {
		final += p.Chips
	}
	if final != starting {
		return handResult{}, fmt.Errorf("seed %d: final stacks %d, want %d", seed, final, starting)
	}

	pot := 0
	for _, amount := range s.Result.Payouts {
		pot += amount
	}

	return handResult{
		Seed:     seed,
		Pot:      pot,
		FoldWin:  s.Result.FoldWin,
		Showdown: !s.Result.FoldWin,
		Street:   deepest,
		Steps:    steps,
	}, nil
}

func chipsInPlay(s *engine.TableState) int {
	total := s.Pot()
	for _, p := range s.Players {
		total += p.Chips
	}
	return total
}
