package engine

import "fmt"

// Street represents the betting round
type Street int

const (
	Preflop Street = iota
	Flop
	Turn
	River
	Showdown
)

func (s Street) String() string {
	return [...]string{"preflop", "flop", "turn", "river", "showdown"}[s]
}

// Action represents a player action
type Action int

const (
	Fold Action = iota
	Check
	Call
	Raise
	AllIn
)

func (a Action) String() string {
	return [...]string{"fold", "check", "call", "raise", "allin"}[a]
}

// ParseAction parses an action name as it appears on the wire.
func ParseAction(s string) (Action, error) {
	switch s {
	case "fold":
		return Fold, nil
	case "check":
		return Check, nil
	case "call":
		return Call, nil
	case "raise":
		return Raise, nil
	case "allin":
		return AllIn, nil
	default:
		return 0, fmt.Errorf("unknown action %q", s)
	}
}

// Status represents a player's standing within the current hand
type Status int

const (
	// StatusActive players can still act on their turn.
	StatusActive Status = iota
	// StatusFolded players are out of the hand.
	StatusFolded
	// StatusAllIn players have wagered their entire stack and take no
	// further actions, but remain eligible for pots they funded.
	StatusAllIn
)

func (s Status) String() string {
	return [...]string{"active", "folded", "all_in"}[s]
}
