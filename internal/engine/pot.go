package engine

import (
	"sort"

	"github.com/pokerroom/holdem/internal/evaluator"
)

// Pot is a main or side pot: a slice of the total wager that only the
// listed seats can win. Side pots appear when all-in stacks cap how
// much a player could contest.
type Pot struct {
	Amount   int
	Eligible []int // seats, in table order
}

// Result records how a finished hand paid out.
type Result struct {
	Pots    []PotResult
	Payouts map[int]int                // seat -> chips awarded
	Ranks   map[int]evaluator.HandRank // showdown ranks for non-folded seats; nil on fold-wins
	FoldWin bool
}

// PotResult is one pot and the seats that split it.
type PotResult struct {
	Pot
	Winners []int
}

func (r *Result) clone() *Result {
	c := &Result{FoldWin: r.FoldWin}
	c.Pots = make([]PotResult, len(r.Pots))
	for i, pr := range r.Pots {
		c.Pots[i] = PotResult{
			Pot:     Pot{Amount: pr.Amount, Eligible: append([]int(nil), pr.Eligible...)},
			Winners: append([]int(nil), pr.Winners...),
		}
	}
	c.Payouts = make(map[int]int, len(r.Payouts))
	for k, v := range r.Payouts {
		c.Payouts[k] = v
	}
	if r.Ranks != nil {
		c.Ranks = make(map[int]evaluator.HandRank, len(r.Ranks))
		for k, v := range r.Ranks {
			c.Ranks[k] = v
		}
	}
	return c
}

// computePots partitions the hand's wagers into a main pot and side
// pots. Each distinct all-in contribution level caps a layer; everyone
// pays into a layer up to its cap, and only non-folded seats that paid
// past the previous cap can win it.
func computePots(players []*Player) []Pot {
	levels := make([]int, 0, len(players))
	seen := make(map[int]bool)
	for _, p := range players {
		if p.Status == StatusAllIn && p.TotalBet > 0 && !seen[p.TotalBet] {
			levels = append(levels, p.TotalBet)
			seen[p.TotalBet] = true
		}
	}
	sort.Ints(levels)

	// The top layer is open-ended: everything above the highest all-in.
	maxBet := 0
	for _, p := range players {
		if p.TotalBet > maxBet {
			maxBet = p.TotalBet
		}
	}
	if maxBet == 0 {
		return nil
	}
	if len(levels) == 0 || levels[len(levels)-1] < maxBet {
		levels = append(levels, maxBet)
	}

	var pots []Pot
	prev := 0
	for _, level := range levels {
		pot := Pot{}
		for _, p := range players {
			contrib := min(p.TotalBet, level) - prev
			if contrib > 0 {
				pot.Amount += contrib
			}
			if p.InHand() && p.TotalBet > prev {
				pot.Eligible = append(pot.Eligible, p.Seat)
			}
		}
		if pot.Amount > 0 && len(pot.Eligible) > 0 {
			pots = append(pots, pot)
		}
		prev = level
	}
	return pots
}

// payout splits a pot among winners, adding chips directly to stacks.
// Odd chips that cannot split evenly go one each to the winning seats
// closest clockwise from the button.
func payout(players []*Player, button int, pot Pot, winners []int) map[int]int {
	awards := make(map[int]int, len(winners))
	if len(winners) == 0 || pot.Amount <= 0 {
		return awards
	}

	share := pot.Amount / len(winners)
	remainder := pot.Amount % len(winners)

	ordered := make([]int, len(winners))
	copy(ordered, winners)
	n := len(players)
	sort.Slice(ordered, func(i, j int) bool {
		return (ordered[i]-button-1+2*n)%n < (ordered[j]-button-1+2*n)%n
	})

	for i, seat := range ordered {
		amount := share
		if i < remainder {
			amount++
		}
		players[seat].Chips += amount
		awards[seat] = amount
	}
	return awards
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
