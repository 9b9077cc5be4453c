// Package table serializes access to one table's engine. The engine
// itself is a pure transition function; this runner is the single
// writer that funnels concurrent player actions through it one at a
// time, keeps the current state, enforces turn deadlines and fans
// snapshots out to subscribers.
package table

import (
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/pokerroom/holdem/internal/engine"
	"github.com/pokerroom/holdem/internal/handid"
)

// DefaultTurnTimeout is how long a seat may hold the action before it
// is folded on its behalf.
const DefaultTurnTimeout = 30 * time.Second

// Table owns the live state for one poker table.
type Table struct {
	name    string
	engine  *engine.Engine
	logger  *log.Logger
	clock   quartz.Clock
	timeout time.Duration

	mu     sync.Mutex
	state  *engine.TableState
	handID string
	timer  *quartz.Timer
	gen    int // bumped on every transition to invalidate stale timers
	subs   map[chan *engine.TableState]struct{}
}

// Option configures a Table.
type Option func(*Table)

// WithClock substitutes the wall clock, for tests.
func WithClock(clock quartz.Clock) Option {
	return func(t *Table) {
		t.clock = clock
	}
}

// WithTurnTimeout sets the per-turn deadline. Zero disables the timer.
func WithTurnTimeout(d time.Duration) Option {
	return func(t *Table) {
		t.timeout = d
	}
}

// New creates a table runner around an engine.
func New(name string, e *engine.Engine, logger *log.Logger, opts ...Option) *Table {
	t := &Table{
		name:    name,
		engine:  e,
		logger:  logger.WithPrefix("table").With("table", name),
		clock:   quartz.NewReal(),
		timeout: DefaultTurnTimeout,
		subs:    make(map[chan *engine.TableState]struct{}),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// StartHand begins a new hand. It fails if a hand is already running.
func (t *Table) StartHand(players []engine.PlayerConfig, button, smallBlind, bigBlind int) (*engine.TableState, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state != nil && !t.state.Complete() {
		return nil, fmt.Errorf("table %s: hand in progress", t.name)
	}

	state, err := t.engine.StartHand(players, button, smallBlind, bigBlind)
	if err != nil {
		return nil, err
	}
	t.handID = handid.Generate()
	t.logger.Info("hand started", "hand", t.handID, "players", len(players), "button", button)
	t.transition(state)
	return state.Clone(), nil
}

// Act applies a player action. Rejected actions leave the table
// unchanged and do not reset the turn clock.
func (t *Table) Act(seat int, action engine.Action, amount int) (*engine.TableState, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state == nil {
		return nil, fmt.Errorf("table %s: no hand in progress", t.name)
	}

	state, err := t.engine.ApplyAction(t.state, seat, action, amount)
	if err != nil {
		return nil, err
	}
	t.logger.Debug("action applied", "seat", seat, "action", action.String(), "amount", amount)
	t.transition(state)
	return state.Clone(), nil
}

// HandID returns the identifier of the running or most recent hand.
func (t *Table) HandID() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.handID
}

// State returns a snapshot of the current hand, or nil before the
// first hand.
func (t *Table) State() *engine.TableState {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state == nil {
		return nil
	}
	return t.state.Clone()
}

// Subscribe returns a channel that receives a snapshot after every
// transition. Slow subscribers miss snapshots rather than block the
// table.
func (t *Table) Subscribe() chan *engine.TableState {
	t.mu.Lock()
	defer t.mu.Unlock()
	ch := make(chan *engine.TableState, 16)
	t.subs[ch] = struct{}{}
	return ch
}

// Unsubscribe removes a subscriber channel.
func (t *Table) Unsubscribe(ch chan *engine.TableState) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.subs, ch)
}

// transition installs a new state, re-arms the turn clock and notifies
// subscribers. Callers hold t.mu.
func (t *Table) transition(state *engine.TableState) {
	t.state = state
	t.gen++

	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	if t.timeout > 0 && !state.Complete() && state.ToAct >= 0 {
		gen := t.gen
		seat := state.ToAct
		t.timer = t.clock.AfterFunc(t.timeout, func() {
			t.foldExpired(gen, seat)
		})
	}

	for ch := range t.subs {
		select {
		case ch <- state.Clone():
		default:
		}
	}
}

// foldExpired folds the seat whose turn clock ran out. The generation
// check discards timers that fired after the seat already acted.
func (t *Table) foldExpired(gen, seat int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.gen != gen || t.state == nil || t.state.Complete() || t.state.ToAct != seat {
		return
	}

	state, err := t.engine.ApplyAction(t.state, seat, engine.Fold, 0)
	if err != nil {
		// Folding the seat to act cannot legally fail; if it does the
		// hand is wedged and needs operator attention.
		t.logger.Error("timeout fold rejected", "seat", seat, "error", err)
		return
	}
	t.logger.Warn("seat timed out, folded", "seat", seat)
	t.transition(state)
}
