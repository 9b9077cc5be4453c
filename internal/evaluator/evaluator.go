// Package evaluator ranks poker hands at showdown.
//
// The engine treats hand strength as an opaque, totally ordered value
// supplied by an injected Evaluator, so the ranking implementation can
// be swapped without touching betting logic. The production
// implementation delegates to github.com/paulhankin/poker.
package evaluator

import (
	"fmt"

	"github.com/paulhankin/poker"

	"github.com/pokerroom/holdem/internal/deck"
)

// HandRank is an opaque hand strength. Higher is better; equal values
// are exact ties.
type HandRank int16

// Evaluator ranks a player's best hand from hole cards plus board.
type Evaluator interface {
	Rank(hole [2]deck.Card, board []deck.Card) (HandRank, error)
}

// Paulhankin evaluates hands with the paulhankin/poker lookup tables.
type Paulhankin struct{}

// New returns the production evaluator.
func New() Paulhankin {
	return Paulhankin{}
}

// Rank returns the strength of the best five-card hand available from
// the hole cards and the board. Boards of three, four or five cards are
// supported; anything shorter cannot form a five-card hand and is an
// error.
func (Paulhankin) Rank(hole [2]deck.Card, board []deck.Card) (HandRank, error) {
	cards := make([]poker.Card, 0, 2+len(board))
	for _, c := range [...]deck.Card{hole[0], hole[1]} {
		pc, err := convert(c)
		if err != nil {
			return 0, err
		}
		cards = append(cards, pc)
	}
	for _, c := range board {
		pc, err := convert(c)
		if err != nil {
			return 0, err
		}
		cards = append(cards, pc)
	}

	switch len(cards) {
	case 5:
		var hand [5]poker.Card
		copy(hand[:], cards)
		return HandRank(poker.Eval5(&hand)), nil
	case 6:
		return best5of6(cards), nil
	case 7:
		var hand [7]poker.Card
		copy(hand[:], cards)
		return HandRank(poker.Eval7(&hand)), nil
	default:
		return 0, fmt.Errorf("cannot rank %d cards: board must have 3 to 5 cards", len(cards))
	}
}

// best5of6 evaluates all six 5-card hands and keeps the strongest.
func best5of6(cards []poker.Card) HandRank {
	var best HandRank
	var hand [5]poker.Card
	for skip := 0; skip < 6; skip++ {
		n := 0
		for i, c := range cards {
			if i == skip {
				continue
			}
			hand[n] = c
			n++
		}
		if r := HandRank(poker.Eval5(&hand)); skip == 0 || r > best {
			best = r
		}
	}
	return best
}

func convert(c deck.Card) (poker.Card, error) {
	var suit poker.Suit
	switch c.Suit {
	case deck.Spades:
		suit = poker.Spade
	case deck.Hearts:
		suit = poker.Heart
	case deck.Diamonds:
		suit = poker.Diamond
	case deck.Clubs:
		suit = poker.Club
	default:
		return 0, fmt.Errorf("invalid suit %d", c.Suit)
	}

	// Our ranks run 2..14 with ace high; paulhankin uses ace = 1.
	rank := poker.Rank(c.Rank)
	if c.Rank == deck.Ace {
		rank = poker.Rank(1)
	}

	pc, err := poker.MakeCard(suit, rank)
	if err != nil {
		return 0, fmt.Errorf("invalid card %s: %w", c, err)
	}
	return pc, nil
}
