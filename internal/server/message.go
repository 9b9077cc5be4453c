package server

import (
	"encoding/json"
	"time"

	"github.com/pokerroom/holdem/internal/deck"
	"github.com/pokerroom/holdem/internal/engine"
)

// MessageType identifies a WebSocket message.
type MessageType string

const (
	// Client to server messages
	MessageTypeJoinTable  MessageType = "join_table"
	MessageTypeLeaveTable MessageType = "leave_table"
	MessageTypeListTables MessageType = "list_tables"
	MessageTypeStartHand  MessageType = "start_hand"
	MessageTypeAct        MessageType = "act"

	// Server to client messages
	MessageTypeError       MessageType = "error"
	MessageTypeTableJoined MessageType = "table_joined"
	MessageTypeTableLeft   MessageType = "table_left"
	MessageTypeTableList   MessageType = "table_list"
	MessageTypeTableState  MessageType = "table_state"
)

func (mt MessageType) String() string {
	return string(mt)
}

// Message is the WebSocket envelope.
type Message struct {
	Type      MessageType     `json:"type"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewMessage wraps a payload in an envelope with the current timestamp.
func NewMessage(messageType MessageType, data interface{}) (*Message, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	return &Message{
		Type:      messageType,
		Data:      dataBytes,
		Timestamp: time.Now(),
	}, nil
}

// Client → Server payloads

type JoinTableData struct {
	TableName  string `json:"tableName"`
	PlayerName string `json:"playerName"`
}

type LeaveTableData struct {
	TableName string `json:"tableName"`
}

type StartHandData struct {
	TableName string `json:"tableName"`
}

type ActData struct {
	TableName string `json:"tableName"`
	Action    string `json:"action"`
	Amount    int    `json:"amount,omitempty"`
}

// Server → Client payloads

type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type TableJoinedData struct {
	TableName string `json:"tableName"`
	Seat      int    `json:"seat"`
	Chips     int    `json:"chips"`
}

type TableInfo struct {
	Name        string `json:"name"`
	PlayerCount int    `json:"playerCount"`
	MaxPlayers  int    `json:"maxPlayers"`
	SmallBlind  int    `json:"smallBlind"`
	BigBlind    int    `json:"bigBlind"`
}

type TableListData struct {
	Tables []TableInfo `json:"tables"`
}

type SeatView struct {
	Seat      int      `json:"seat"`
	Name      string   `json:"name"`
	Chips     int      `json:"chips"`
	Bet       int      `json:"bet"`
	TotalBet  int      `json:"totalBet"`
	Folded    bool     `json:"folded"`
	AllIn     bool     `json:"allIn"`
	HoleCards []string `json:"holeCards,omitempty"` // Only the viewer's own cards
}

type TableStateData struct {
	TableName  string      `json:"tableName"`
	HandID     string      `json:"handId"`
	Street     string      `json:"street"`
	Board      []string    `json:"board"`
	Pot        int         `json:"pot"`
	CurrentBet int         `json:"currentBet"`
	MinRaise   int         `json:"minRaise"`
	ToAct      int         `json:"toAct"`
	Button     int         `json:"button"`
	Seats      []SeatView  `json:"seats"`
	Result     *ResultView `json:"result,omitempty"`
}

type ResultView struct {
	Payouts map[int]int `json:"payouts"`
	FoldWin bool        `json:"foldWin"`
}

func cardStrings(cards []deck.Card) []string {
	out := make([]string, len(cards))
	for i, c := range cards {
		out[i] = c.String()
	}
	return out
}

// stateView renders a table snapshot for one viewer. Only the viewer's
// own hole cards are included while the hand runs.
func stateView(tableName, handID string, state *engine.TableState, viewerSeat int) TableStateData {
	seats := make([]SeatView, len(state.Players))
	for i, p := range state.Players {
		view := SeatView{
			Seat:     p.Seat,
			Name:     p.Name,
			Chips:    p.Chips,
			Bet:      p.Bet,
			TotalBet: p.TotalBet,
			Folded:   p.Status == engine.StatusFolded,
			AllIn:    p.Status == engine.StatusAllIn,
		}
		if i == viewerSeat && !state.Complete() {
			view.HoleCards = cardStrings(p.HoleCards[:])
		}
		seats[i] = view
	}

	data := TableStateData{
		TableName:  tableName,
		HandID:     handID,
		Street:     state.Street.String(),
		Board:      cardStrings(state.Board),
		Pot:        state.Pot(),
		CurrentBet: state.CurrentBet,
		MinRaise:   state.MinRaise,
		ToAct:      state.ToAct,
		Button:     state.Button,
		Seats:      seats,
	}
	if state.Result != nil {
		data.Result = &ResultView{
			Payouts: state.Result.Payouts,
			FoldWin: state.Result.FoldWin,
		}
	}
	return data
}
