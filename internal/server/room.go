package server

import (
	"fmt"
	"sort"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/pokerroom/holdem/internal/config"
	"github.com/pokerroom/holdem/internal/deck"
	"github.com/pokerroom/holdem/internal/engine"
	"github.com/pokerroom/holdem/internal/evaluator"
	"github.com/pokerroom/holdem/internal/table"
)

// Room hosts the tables defined in the configuration and tracks who
// sits where between hands.
type Room struct {
	logger *log.Logger

	mu     sync.Mutex
	tables map[string]*roomTable
	names  []string
}

type roomTable struct {
	cfg    config.TableConfig
	table  *table.Table
	button int

	// Seat order is join order. Stacks persist across hands; a hand's
	// final chip counts are harvested back here before the next deal.
	seats  []string
	stacks map[string]int
}

// RoomOption configures a Room.
type RoomOption func(*roomOptions)

type roomOptions struct {
	clock    quartz.Clock
	shuffler deck.Shuffler
}

// WithRoomClock substitutes the wall clock, for tests.
func WithRoomClock(clock quartz.Clock) RoomOption {
	return func(o *roomOptions) {
		o.clock = clock
	}
}

// WithRoomShuffler substitutes the deck shuffler, for tests.
func WithRoomShuffler(s deck.Shuffler) RoomOption {
	return func(o *roomOptions) {
		o.shuffler = s
	}
}

// NewRoom builds a room with one runner per configured table.
func NewRoom(cfg *config.Config, logger *log.Logger, opts ...RoomOption) *Room {
	options := roomOptions{
		clock:    quartz.NewReal(),
		shuffler: deck.CryptoShuffler{},
	}
	for _, opt := range opts {
		opt(&options)
	}

	r := &Room{
		logger: logger.WithPrefix("room"),
		tables: make(map[string]*roomTable),
	}
	eng := engine.New(options.shuffler, evaluator.New())
	for _, tc := range cfg.Tables {
		r.tables[tc.Name] = &roomTable{
			cfg: tc,
			table: table.New(tc.Name, eng, logger,
				table.WithClock(options.clock),
				table.WithTurnTimeout(tc.TurnTimeout())),
			button: -1,
			stacks: make(map[string]int),
		}
		r.names = append(r.names, tc.Name)
	}
	sort.Strings(r.names)
	return r
}

// Tables lists the configured tables with their current occupancy.
func (r *Room) Tables() []TableInfo {
	r.mu.Lock()
	defer r.mu.Unlock()

	infos := make([]TableInfo, 0, len(r.names))
	for _, name := range r.names {
		rt := r.tables[name]
		infos = append(infos, TableInfo{
			Name:        rt.cfg.Name,
			PlayerCount: len(rt.seats),
			MaxPlayers:  rt.cfg.MaxPlayers,
			SmallBlind:  rt.cfg.SmallBlind,
			BigBlind:    rt.cfg.BigBlind,
		})
	}
	return infos
}

// Join seats a player at a table with the configured buy-in. It
// returns the seat index and starting stack.
func (r *Room) Join(tableName, playerName string) (int, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rt, ok := r.tables[tableName]
	if !ok {
		return 0, 0, fmt.Errorf("no such table %q", tableName)
	}
	if playerName == "" {
		return 0, 0, fmt.Errorf("player name required")
	}
	for _, name := range rt.seats {
		if name == playerName {
			return 0, 0, fmt.Errorf("player %q already seated at %s", playerName, tableName)
		}
	}
	if len(rt.seats) >= rt.cfg.MaxPlayers {
		return 0, 0, fmt.Errorf("table %s is full", tableName)
	}

	rt.seats = append(rt.seats, playerName)
	rt.stacks[playerName] = rt.cfg.BuyIn
	r.logger.Info("player joined", "table", tableName, "player", playerName, "seats", len(rt.seats))
	return len(rt.seats) - 1, rt.cfg.BuyIn, nil
}

// Leave removes a player from a table. Players cannot leave while a
// hand they are dealt into is still running.
func (r *Room) Leave(tableName, playerName string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rt, ok := r.tables[tableName]
	if !ok {
		return fmt.Errorf("no such table %q", tableName)
	}
	if state := rt.table.State(); state != nil && !state.Complete() {
		for _, p := range state.Players {
			if p.Name == playerName {
				return fmt.Errorf("player %q is in a hand at %s", playerName, tableName)
			}
		}
	}

	for i, name := range rt.seats {
		if name == playerName {
			rt.seats = append(rt.seats[:i], rt.seats[i+1:]...)
			delete(rt.stacks, playerName)
			r.logger.Info("player left", "table", tableName, "player", playerName)
			return nil
		}
	}
	return fmt.Errorf("player %q not seated at %s", playerName, tableName)
}

// StartHand deals a new hand at the table, advancing the button. Seats
// whose stack has gone to zero sit the hand out.
func (r *Room) StartHand(tableName string) (*engine.TableState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rt, ok := r.tables[tableName]
	if !ok {
		return nil, fmt.Errorf("no such table %q", tableName)
	}
	r.harvest(rt)

	var players []engine.PlayerConfig
	for _, name := range rt.seats {
		if rt.stacks[name] > 0 {
			players = append(players, engine.PlayerConfig{Name: name, Chips: rt.stacks[name]})
		}
	}
	if len(players) < 2 {
		return nil, fmt.Errorf("table %s needs at least two funded players", tableName)
	}

	rt.button = (rt.button + 1) % len(players)
	state, err := rt.table.StartHand(players, rt.button, rt.cfg.SmallBlind, rt.cfg.BigBlind)
	if err != nil {
		return nil, err
	}
	return state, nil
}

// Act applies an action on behalf of a named player.
func (r *Room) Act(tableName, playerName, actionName string, amount int) (*engine.TableState, error) {
	r.mu.Lock()
	rt, ok := r.tables[tableName]
	r.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("no such table %q", tableName)
	}

	action, err := engine.ParseAction(actionName)
	if err != nil {
		return nil, err
	}

	state := rt.table.State()
	if state == nil {
		return nil, fmt.Errorf("no hand in progress at %s", tableName)
	}
	seat := seatOf(state, playerName)
	if seat < 0 {
		return nil, fmt.Errorf("player %q not in the hand at %s", playerName, tableName)
	}

	return rt.table.Act(seat, action, amount)
}

// State returns the current hand snapshot for a table, or nil.
func (r *Room) State(tableName string) (*engine.TableState, error) {
	r.mu.Lock()
	rt, ok := r.tables[tableName]
	r.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("no such table %q", tableName)
	}
	return rt.table.State(), nil
}

// Subscribe follows a table's transitions.
func (r *Room) Subscribe(tableName string) (chan *engine.TableState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rt, ok := r.tables[tableName]
	if !ok {
		return nil, fmt.Errorf("no such table %q", tableName)
	}
	return rt.table.Subscribe(), nil
}

// Unsubscribe stops following a table.
func (r *Room) Unsubscribe(tableName string, ch chan *engine.TableState) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if rt, ok := r.tables[tableName]; ok {
		rt.table.Unsubscribe(ch)
	}
}

// HandID returns the identifier of a table's running or most recent
// hand.
func (r *Room) HandID(tableName string) string {
	r.mu.Lock()
	rt, ok := r.tables[tableName]
	r.mu.Unlock()
	if !ok {
		return ""
	}
	return rt.table.HandID()
}

// SeatOf reports the seat a player holds in the current hand, or -1.
func (r *Room) SeatOf(tableName, playerName string) int {
	r.mu.Lock()
	rt, ok := r.tables[tableName]
	r.mu.Unlock()
	if !ok {
		return -1
	}
	state := rt.table.State()
	if state == nil {
		return -1
	}
	return seatOf(state, playerName)
}

// harvest folds a finished hand's chip counts back into the persistent
// stacks. Callers hold r.mu.
func (r *Room) harvest(rt *roomTable) {
	state := rt.table.State()
	if state == nil || !state.Complete() {
		return
	}
	for _, p := range state.Players {
		rt.stacks[p.Name] = p.Chips
	}
}

func seatOf(state *engine.TableState, playerName string) int {
	for _, p := range state.Players {
		if p.Name == playerName {
			return p.Seat
		}
	}
	return -1
}
