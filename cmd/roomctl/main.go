// Command roomctl is a WebSocket client for tabled. It can list the
// room's tables or sit down and play hands with a simple scripted
// strategy, which makes it useful for exercising a running server.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/pokerroom/holdem/internal/randutil"
	"github.com/pokerroom/holdem/internal/server"
)

var CLI struct {
	Server   string `short:"s" default:"ws://localhost:8080/ws" help:"Server WebSocket URL"`
	LogLevel string `short:"l" default:"info" help:"Log level"`

	List struct{} `cmd:"" help:"List the room's tables"`

	Play struct {
		Table    string `default:"main" help:"Table to join"`
		Name     string `required:"" help:"Player name"`
		Strategy string `default:"call" enum:"call,fold,rand" help:"Decision strategy"`
		Hands    int    `default:"0" help:"Stop after this many hands (0 for no limit)"`
		Seed     int64  `default:"1" help:"RNG seed for the rand strategy"`
	} `cmd:"" help:"Join a table and play"`
}

func main() {
	ctx := kong.Parse(&CLI)

	logger := log.New(os.Stderr)
	if CLI.LogLevel == "debug" {
		logger.SetLevel(log.DebugLevel)
	}

	conn, _, err := websocket.DefaultDialer.Dial(CLI.Server, nil)
	if err != nil {
		logger.Error("failed to connect", "url", CLI.Server, "error", err)
		ctx.Exit(1)
	}
	defer func() { _ = conn.Close() }()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigs
		_ = conn.Close()
		os.Exit(0)
	}()

	switch ctx.Command() {
	case "list":
		err = runList(conn)
	case "play":
		err = runPlay(conn, logger)
	default:
		err = fmt.Errorf("unknown command %q", ctx.Command())
	}
	if err != nil {
		logger.Error("command failed", "error", err)
		ctx.Exit(1)
	}
}

func send(conn *websocket.Conn, messageType server.MessageType, data interface{}) error {
	msg, err := server.NewMessage(messageType, data)
	if err != nil {
		return err
	}
	return conn.WriteJSON(msg)
}

func runList(conn *websocket.Conn) error {
	if err := send(conn, server.MessageTypeListTables, nil); err != nil {
		return err
	}

	var msg server.Message
	if err := conn.ReadJSON(&msg); err != nil {
		return err
	}
	if msg.Type != server.MessageTypeTableList {
		return fmt.Errorf("unexpected response %s", msg.Type)
	}

	var list server.TableListData
	if err := json.Unmarshal(msg.Data, &list); err != nil {
		return err
	}
	for _, table := range list.Tables {
		fmt.Printf("%-12s %d/%d players  blinds %d/%d\n",
			table.Name, table.PlayerCount, table.MaxPlayers, table.SmallBlind, table.BigBlind)
	}
	return nil
}

func runPlay(conn *websocket.Conn, logger *log.Logger) error {
	rng := randutil.New(CLI.Play.Seed)
	logger = logger.With("player", CLI.Play.Name, "table", CLI.Play.Table)

	if err := send(conn, server.MessageTypeJoinTable, server.JoinTableData{
		TableName:  CLI.Play.Table,
		PlayerName: CLI.Play.Name,
	}); err != nil {
		return err
	}

	mySeat := -1
	handsPlayed := 0
	lastHandID := ""

	for {
		var msg server.Message
		if err := conn.ReadJSON(&msg); err != nil {
			return err
		}

		switch msg.Type {
		case server.MessageTypeTableJoined:
			var joined server.TableJoinedData
			if err := json.Unmarshal(msg.Data, &joined); err != nil {
				return err
			}
			mySeat = joined.Seat
			logger.Info("seated", "seat", joined.Seat, "chips", joined.Chips)

			// Kick off play; the server rejects this until the table
			// has a second funded player.
			if err := send(conn, server.MessageTypeStartHand, server.StartHandData{TableName: CLI.Play.Table}); err != nil {
				return err
			}

		case server.MessageTypeTableState:
			var state server.TableStateData
			if err := json.Unmarshal(msg.Data, &state); err != nil {
				return err
			}
			if state.HandID != lastHandID {
				lastHandID = state.HandID
				logger.Info("hand dealt", "hand", state.HandID, "street", state.Street)
			}

			if state.Result != nil {
				handsPlayed++
				logger.Info("hand complete", "hand", state.HandID, "payouts", state.Result.Payouts, "foldWin", state.Result.FoldWin)
				if CLI.Play.Hands > 0 && handsPlayed >= CLI.Play.Hands {
					return nil
				}
				if err := send(conn, server.MessageTypeStartHand, server.StartHandData{TableName: CLI.Play.Table}); err != nil {
					return err
				}
				continue
			}

			seat := seatByName(state, CLI.Play.Name)
			if seat >= 0 {
				mySeat = seat
			}
			if state.ToAct != mySeat {
				continue
			}

			action, amount := decide(state, mySeat, rng)
			logger.Debug("acting", "action", action, "amount", amount, "street", state.Street)
			if err := send(conn, server.MessageTypeAct, server.ActData{
				TableName: CLI.Play.Table,
				Action:    action,
				Amount:    amount,
			}); err != nil {
				return err
			}

		case server.MessageTypeError:
			var errData server.ErrorData
			if err := json.Unmarshal(msg.Data, &errData); err != nil {
				return err
			}
			switch errData.Code {
			case "start_failed":
				logger.Debug("waiting for opponents", "message", errData.Message)
			case "illegal_action", "insufficient_chips":
				// A rejected choice leaves it as our turn; folding is
				// always legal.
				logger.Warn("action rejected, folding", "message", errData.Message)
				if err := send(conn, server.MessageTypeAct, server.ActData{
					TableName: CLI.Play.Table,
					Action:    "fold",
				}); err != nil {
					return err
				}
			default:
				logger.Warn("server error", "code", errData.Code, "message", errData.Message)
			}
		}
	}
}

type intN interface {
	IntN(n int) int
}

// decide picks an action for the seat to act. The strategies are
// deliberately crude; they exist to generate traffic, not to win.
func decide(state server.TableStateData, seat int, rng intN) (string, int) {
	facingBet := state.Seats[seat].Bet < state.CurrentBet

	switch CLI.Play.Strategy {
	case "fold":
		if facingBet {
			return "fold", 0
		}
		return "check", 0

	case "rand":
		if rng.IntN(10) == 0 {
			return "raise", state.MinRaise
		}
		if facingBet {
			if rng.IntN(4) == 0 {
				return "fold", 0
			}
			return "call", 0
		}
		return "check", 0

	default: // call
		if facingBet {
			return "call", 0
		}
		return "check", 0
	}
}

func seatByName(state server.TableStateData, name string) int {
	for _, seat := range state.Seats {
		if seat.Name == name {
			return seat.Seat
		}
	}
	return -1
}
