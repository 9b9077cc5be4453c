package server

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/pokerroom/holdem/internal/engine"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 8192
)

// ErrConnectionClosed reports a send on a closed connection.
var ErrConnectionClosed = websocket.ErrCloseSent

// Connection wraps one WebSocket client.
type Connection struct {
	conn      *websocket.Conn
	send      chan *Message
	logger    *log.Logger
	room      *Room
	ctx       context.Context
	cancel    context.CancelFunc
	mu        sync.RWMutex
	closeOnce sync.Once

	playerName string
	tableName  string
	updates    chan *engine.TableState
}

// NewConnection wraps an accepted WebSocket connection.
func NewConnection(conn *websocket.Conn, logger *log.Logger, room *Room) *Connection {
	ctx, cancel := context.WithCancel(context.Background())

	return &Connection{
		conn:   conn,
		send:   make(chan *Message, 256),
		logger: logger.WithPrefix("conn"),
		room:   room,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Start begins handling the connection.
func (c *Connection) Start() {
	go c.writePump()
	go c.readPump()
}

// Close tears the connection down and releases its seat.
func (c *Connection) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.cancel()
		c.detach()
		close(c.send)
		err = c.conn.Close()
	})
	return err
}

// detach unsubscribes from the table and vacates the seat if the
// player is not mid-hand.
func (c *Connection) detach() {
	c.mu.Lock()
	table, player, updates := c.tableName, c.playerName, c.updates
	c.tableName, c.playerName, c.updates = "", "", nil
	c.mu.Unlock()

	if table == "" {
		return
	}
	if updates != nil {
		c.room.Unsubscribe(table, updates)
	}
	if err := c.room.Leave(table, player); err != nil {
		c.logger.Debug("seat not released on disconnect", "table", table, "player", player, "error", err)
	}
}

// SendMessage queues a message for the client. A full buffer closes
// the connection rather than stalling the table.
func (c *Connection) SendMessage(msg *Message) error {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Debug("send on closed connection", "error", r)
		}
	}()

	select {
	case c.send <- msg:
		return nil
	case <-c.ctx.Done():
		return c.ctx.Err()
	default:
		c.logger.Warn("send buffer full, closing connection")
		_ = c.Close()
		return ErrConnectionClosed
	}
}

func (c *Connection) readPump() {
	defer func() { _ = c.Close() }()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		select {
		case <-c.ctx.Done():
			return
		default:
		}

		var msg Message
		err := c.conn.ReadJSON(&msg)
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Error("websocket error", "error", err)
			}
			break
		}

		c.handleMessage(&msg)
	}
}

func (c *Connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteJSON(message); err != nil {
				c.logger.Error("failed to write message", "error", err)
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.ctx.Done():
			return
		}
	}
}

func (c *Connection) handleMessage(msg *Message) {
	c.logger.Debug("received message", "type", msg.Type, "player", c.player())

	switch msg.Type {
	case MessageTypeJoinTable:
		var data JoinTableData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "failed to parse join table data")
			return
		}
		c.handleJoinTable(data)

	case MessageTypeLeaveTable:
		c.handleLeaveTable()

	case MessageTypeListTables:
		c.handleListTables()

	case MessageTypeStartHand:
		c.handleStartHand()

	case MessageTypeAct:
		var data ActData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "failed to parse act data")
			return
		}
		c.handleAct(data)

	default:
		c.sendError("unknown_message_type", "unknown message type: "+msg.Type.String())
	}
}

func (c *Connection) handleJoinTable(data JoinTableData) {
	if c.table() != "" {
		c.sendError("already_seated", "leave the current table first")
		return
	}

	seat, chips, err := c.room.Join(data.TableName, data.PlayerName)
	if err != nil {
		c.sendError("join_failed", err.Error())
		return
	}

	updates, err := c.room.Subscribe(data.TableName)
	if err != nil {
		_ = c.room.Leave(data.TableName, data.PlayerName)
		c.sendError("join_failed", err.Error())
		return
	}

	c.mu.Lock()
	c.tableName = data.TableName
	c.playerName = data.PlayerName
	c.updates = updates
	c.mu.Unlock()

	go c.forwardUpdates(data.TableName, updates)

	response, _ := NewMessage(MessageTypeTableJoined, TableJoinedData{
		TableName: data.TableName,
		Seat:      seat,
		Chips:     chips,
	})
	_ = c.SendMessage(response)
}

func (c *Connection) handleLeaveTable() {
	table, player := c.table(), c.player()
	if table == "" {
		c.sendError("not_seated", "not seated at a table")
		return
	}

	if err := c.room.Leave(table, player); err != nil {
		c.sendError("leave_failed", err.Error())
		return
	}
	c.detach()

	response, _ := NewMessage(MessageTypeTableLeft, LeaveTableData{TableName: table})
	_ = c.SendMessage(response)
}

func (c *Connection) handleListTables() {
	response, _ := NewMessage(MessageTypeTableList, TableListData{Tables: c.room.Tables()})
	_ = c.SendMessage(response)
}

func (c *Connection) handleStartHand() {
	table := c.table()
	if table == "" {
		c.sendError("not_seated", "not seated at a table")
		return
	}

	if _, err := c.room.StartHand(table); err != nil {
		c.sendError("start_failed", err.Error())
	}
	// The snapshot itself arrives through the table subscription.
}

func (c *Connection) handleAct(data ActData) {
	table, player := c.table(), c.player()
	if table == "" {
		c.sendError("not_seated", "not seated at a table")
		return
	}

	if _, err := c.room.Act(table, player, data.Action, data.Amount); err != nil {
		c.sendError(actionErrorCode(err), err.Error())
	}
}

// forwardUpdates turns table snapshots into per-viewer state messages.
func (c *Connection) forwardUpdates(tableName string, updates chan *engine.TableState) {
	for {
		select {
		case state, ok := <-updates:
			if !ok {
				return
			}
			seat := seatOf(state, c.player())
			msg, err := NewMessage(MessageTypeTableState, stateView(tableName, c.room.HandID(tableName), state, seat))
			if err != nil {
				c.logger.Error("failed to encode state", "error", err)
				continue
			}
			_ = c.SendMessage(msg)
		case <-c.ctx.Done():
			return
		}
	}
}

func (c *Connection) sendError(code, message string) {
	errorMsg, err := NewMessage(MessageTypeError, ErrorData{
		Code:    code,
		Message: message,
	})
	if err != nil {
		c.logger.Error("failed to create error message", "error", err)
		return
	}
	_ = c.SendMessage(errorMsg)
}

func (c *Connection) player() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.playerName
}

func (c *Connection) table() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.tableName
}

// actionErrorCode maps engine errors to protocol error codes.
func actionErrorCode(err error) string {
	switch {
	case errors.Is(err, engine.ErrInvalidConfiguration):
		return "invalid_configuration"
	case errors.Is(err, engine.ErrOutOfTurn):
		return "out_of_turn"
	case errors.Is(err, engine.ErrIllegalAction):
		return "illegal_action"
	case errors.Is(err, engine.ErrInsufficientChips):
		return "insufficient_chips"
	case errors.Is(err, engine.ErrEvaluator):
		return "evaluator_error"
	default:
		return "action_failed"
	}
}
