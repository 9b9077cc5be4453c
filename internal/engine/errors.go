package engine

import "errors"

// Error kinds returned by the engine. Callers match them with
// errors.Is; the wrapped message carries the specifics. A rejected
// command never mutates table state.
var (
	// ErrInvalidConfiguration means StartHand was given unusable
	// inputs. The hand attempt is fatal, not retried.
	ErrInvalidConfiguration = errors.New("invalid table configuration")

	// ErrOutOfTurn means the acting seat is not the seat to act.
	ErrOutOfTurn = errors.New("out of turn")

	// ErrIllegalAction means the action is not legal in the current
	// state, e.g. checking while facing a bet.
	ErrIllegalAction = errors.New("illegal action")

	// ErrInsufficientChips means the player's stack cannot cover the
	// requested raise.
	ErrInsufficientChips = errors.New("insufficient chips")

	// ErrEvaluator means the hand evaluator failed at showdown. The
	// hand outcome is undetermined; the engine never substitutes a
	// winner.
	ErrEvaluator = errors.New("hand evaluation failed")
)
