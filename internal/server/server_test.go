package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pokerroom/holdem/internal/deck"
	"github.com/pokerroom/holdem/internal/randutil"
)

func startTestServer(t *testing.T) (*Server, string) {
	t.Helper()

	room := NewRoom(testConfig(), log.New(io.Discard),
		WithRoomClock(quartz.NewMock(t)),
		WithRoomShuffler(deck.NewSeededShuffler(randutil.New(7))))
	srv := NewServer("127.0.0.1:0", room, log.New(io.Discard))

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()
	t.Cleanup(func() {
		_ = srv.Stop()
		select {
		case err := <-errCh:
			assert.NoError(t, err)
		case <-time.After(2 * time.Second):
			t.Error("server did not shut down")
		}
	})

	require.Eventually(t, func() bool {
		return !strings.HasSuffix(srv.Addr(), ":0")
	}, 2*time.Second, 10*time.Millisecond, "server never bound a port")

	return srv, srv.Addr()
}

func dialTestServer(t *testing.T, addr string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial("ws://"+addr+"/ws", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	return conn
}

func sendMessage(t *testing.T, conn *websocket.Conn, messageType MessageType, data interface{}) {
	t.Helper()
	msg, err := NewMessage(messageType, data)
	require.NoError(t, err)
	require.NoError(t, conn.WriteJSON(msg))
}

// readMessage reads envelopes until one of the wanted type arrives,
// skipping interleaved table_state broadcasts.
func readMessage(t *testing.T, conn *websocket.Conn, want MessageType) *Message {
	t.Helper()
	for i := 0; i < 20; i++ {
		var msg Message
		require.NoError(t, conn.ReadJSON(&msg))
		if msg.Type == want {
			return &msg
		}
		if msg.Type == MessageTypeTableState {
			continue
		}
		t.Fatalf("expected %s, got %s: %s", want, msg.Type, string(msg.Data))
	}
	t.Fatalf("no %s message arrived", want)
	return nil
}

func TestHealthEndpoint(t *testing.T) {
	_, addr := startTestServer(t)

	resp, err := http.Get(fmt.Sprintf("http://%s/health", addr))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestJoinListAndPlayOverWebSocket(t *testing.T) {
	_, addr := startTestServer(t)

	alice := dialTestServer(t, addr)
	bob := dialTestServer(t, addr)

	sendMessage(t, alice, MessageTypeListTables, nil)
	listMsg := readMessage(t, alice, MessageTypeTableList)
	var list TableListData
	require.NoError(t, json.Unmarshal(listMsg.Data, &list))
	require.Len(t, list.Tables, 1)
	assert.Equal(t, "main", list.Tables[0].Name)

	sendMessage(t, alice, MessageTypeJoinTable, JoinTableData{TableName: "main", PlayerName: "alice"})
	joined := readMessage(t, alice, MessageTypeTableJoined)
	var joinedData TableJoinedData
	require.NoError(t, json.Unmarshal(joined.Data, &joinedData))
	assert.Equal(t, 0, joinedData.Seat)
	assert.Equal(t, 1000, joinedData.Chips)

	sendMessage(t, bob, MessageTypeJoinTable, JoinTableData{TableName: "main", PlayerName: "bob"})
	readMessage(t, bob, MessageTypeTableJoined)

	sendMessage(t, alice, MessageTypeStartHand, StartHandData{TableName: "main"})

	stateMsg := readMessage(t, alice, MessageTypeTableState)
	var state TableStateData
	require.NoError(t, json.Unmarshal(stateMsg.Data, &state))
	assert.Equal(t, "preflop", state.Street)
	assert.Len(t, state.HandID, 26)
	assert.Equal(t, 30, state.Pot)
	require.Len(t, state.Seats, 2)
	assert.Len(t, state.Seats[0].HoleCards, 2)
	assert.Empty(t, state.Seats[1].HoleCards)

	// Heads up the button acts first: alice folds, bob wins the blinds.
	sendMessage(t, alice, MessageTypeAct, ActData{TableName: "main", Action: "fold"})

	final := awaitCompletedState(t, bob)
	require.NotNil(t, final.Result)
	assert.True(t, final.Result.FoldWin)
}

func TestActErrorsCarryEngineCodes(t *testing.T) {
	_, addr := startTestServer(t)

	alice := dialTestServer(t, addr)
	bob := dialTestServer(t, addr)

	sendMessage(t, alice, MessageTypeJoinTable, JoinTableData{TableName: "main", PlayerName: "alice"})
	readMessage(t, alice, MessageTypeTableJoined)
	sendMessage(t, bob, MessageTypeJoinTable, JoinTableData{TableName: "main", PlayerName: "bob"})
	readMessage(t, bob, MessageTypeTableJoined)

	sendMessage(t, alice, MessageTypeStartHand, StartHandData{TableName: "main"})
	readMessage(t, alice, MessageTypeTableState)

	// Bob is the big blind and not first to act heads up.
	sendMessage(t, bob, MessageTypeAct, ActData{TableName: "main", Action: "fold"})
	errMsg := readMessage(t, bob, MessageTypeError)
	var errData ErrorData
	require.NoError(t, json.Unmarshal(errMsg.Data, &errData))
	assert.Equal(t, "out_of_turn", errData.Code)

	sendMessage(t, alice, MessageTypeAct, ActData{TableName: "main", Action: "check"})
	errMsg = readMessage(t, alice, MessageTypeError)
	require.NoError(t, json.Unmarshal(errMsg.Data, &errData))
	assert.Equal(t, "illegal_action", errData.Code)
}

func TestJoinErrorsOverWebSocket(t *testing.T) {
	_, addr := startTestServer(t)

	conn := dialTestServer(t, addr)

	sendMessage(t, conn, MessageTypeJoinTable, JoinTableData{TableName: "nope", PlayerName: "alice"})
	errMsg := readMessage(t, conn, MessageTypeError)
	var errData ErrorData
	require.NoError(t, json.Unmarshal(errMsg.Data, &errData))
	assert.Equal(t, "join_failed", errData.Code)

	sendMessage(t, conn, MessageTypeAct, ActData{TableName: "main", Action: "fold"})
	errMsg = readMessage(t, conn, MessageTypeError)
	require.NoError(t, json.Unmarshal(errMsg.Data, &errData))
	assert.Equal(t, "not_seated", errData.Code)
}

// awaitCompletedState reads table_state messages until the hand result
// arrives.
func awaitCompletedState(t *testing.T, conn *websocket.Conn) TableStateData {
	t.Helper()
	for i := 0; i < 20; i++ {
		var msg Message
		require.NoError(t, conn.ReadJSON(&msg))
		if msg.Type != MessageTypeTableState {
			continue
		}
		var state TableStateData
		require.NoError(t, json.Unmarshal(msg.Data, &state))
		if state.Result != nil {
			return state
		}
	}
	t.Fatal("hand never completed")
	return TableStateData{}
}
