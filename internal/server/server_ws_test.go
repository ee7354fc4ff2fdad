package server

import (
	"reflect"
	"testing"
	"time"

	"classbuzz/internal/session"

	"github.com/gorilla/websocket"
)

const wsTimeout = 5 * time.Second

// openRound creates a layout and opens an "all" round, waiting for the grid
// reply so later messages from other connections are ordered after it.
func openRound(t *testing.T, host *websocket.Conn, rows, cols int) {
	t.Helper()
	sendWS(t, host, typeHostCreateGame, map[string]int{"rows": rows, "cols": cols})
	sendWS(t, host, typeHostSetMode, map[string]any{"mode": "all"})
	grid := decodeData[session.GridState](t, waitForWSMessage(t, host, session.TypeHostGridState, wsTimeout))
	if len(grid.Active) != rows*cols || len(grid.Locked) != 0 {
		t.Fatalf("expected all %d seats active, got %#v", rows*cols, grid)
	}
}

func joinSeat(t *testing.T, host, player *websocket.Conn, seat any, want int) {
	t.Helper()
	sendWS(t, player, typePlayerJoin, seat)
	joined := decodeData[int](t, waitForWSMessage(t, host, session.TypeHostPlayerJoined, wsTimeout))
	if joined != want {
		t.Fatalf("expected seat %d joined, got %d", want, joined)
	}
}

func TestWebsocketRoundFlow(t *testing.T) {
	ts := newTestServer(t)
	host, _ := dialWS(t, ts, wsRoleHost)
	near, _ := dialWS(t, ts, "")
	far, _ := dialWS(t, ts, "")

	openRound(t, host, 5, 5)
	joinSeat(t, host, near, "13", 13)
	joinSeat(t, host, far, 1, 1)

	sendWS(t, host, typeHostSetMode, map[string]any{"mode": "square", "target": 13})
	grid := decodeData[session.GridState](t, waitForWSMessage(t, host, session.TypeHostGridState, wsTimeout))
	if want := []int{7, 8, 9, 12, 13, 14, 17, 18, 19}; !reflect.DeepEqual(grid.Active, want) {
		t.Fatalf("expected active %v, got %v", want, grid.Active)
	}
	if state := decodeData[string](t, waitForWSMessage(t, near, session.TypePlayerSetState, wsTimeout)); state != session.StateActive {
		t.Fatalf("expected near seat active, got %s", state)
	}
	if state := decodeData[string](t, waitForWSMessage(t, far, session.TypePlayerSetState, wsTimeout)); state != session.StateLocked {
		t.Fatalf("expected far seat locked, got %s", state)
	}

	sendWS(t, far, typePlayerBuzz, nil)
	buzz := decodeData[session.BuzzEvent](t, waitForWSMessage(t, host, session.TypeHostLogBuzz, wsTimeout))
	if buzz.Seat != 1 || buzz.Valid || buzz.Time != testClockStart.UnixMilli() {
		t.Fatalf("unexpected buzz %#v", buzz)
	}
	if echoed := decodeData[session.BuzzEvent](t, waitForWSMessage(t, near, session.TypeHostLogBuzz, wsTimeout)); echoed.Seat != 1 {
		t.Fatalf("expected buzz broadcast to players, got %#v", echoed)
	}

	sendWS(t, near, typePlayerBuzz, nil)
	sendWS(t, host, typeHostReset, nil)
	for _, conn := range []*websocket.Conn{host, near, far} {
		if state := decodeData[string](t, waitForWSMessage(t, conn, session.TypePlayerSetState, wsTimeout)); state != session.StateStandby {
			t.Fatalf("expected standby, got %s", state)
		}
	}

	_ = far.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	_ = far.Close()
	if left := decodeData[int](t, waitForWSMessage(t, host, session.TypeHostPlayerLeft, wsTimeout)); left != 1 {
		t.Fatalf("expected seat 1 left, got %d", left)
	}
	expectNoWSMessage(t, host, 300*time.Millisecond)
}

func TestWebsocketSecondBuzzIsDropped(t *testing.T) {
	ts := newTestServer(t)
	host, _ := dialWS(t, ts, wsRoleHost)
	first, _ := dialWS(t, ts, "")
	second, _ := dialWS(t, ts, "")

	openRound(t, host, 2, 2)
	joinSeat(t, host, first, 1, 1)
	joinSeat(t, host, second, 2, 2)

	sendWS(t, first, typePlayerBuzz, nil)
	buzz := decodeData[session.BuzzEvent](t, waitForWSMessage(t, host, session.TypeHostLogBuzz, wsTimeout))
	if buzz.Seat != 1 || !buzz.Valid {
		t.Fatalf("unexpected buzz %#v", buzz)
	}
	sendWS(t, second, typePlayerBuzz, nil)
	expectNoWSMessage(t, host, 400*time.Millisecond)
}

func TestWebsocketInvalidSeatOnlyTellsRequester(t *testing.T) {
	ts := newTestServer(t)
	host, _ := dialWS(t, ts, wsRoleHost)
	player, _ := dialWS(t, ts, "")
	openRound(t, host, 3, 3)

	for _, seat := range []any{0, 10, "abc", nil} {
		sendWS(t, player, typePlayerJoin, seat)
		msg := waitForWSMessage(t, player, session.TypePlayerError, wsTimeout)
		if text := decodeData[string](t, msg); text != session.ErrInvalidSeat.Error() {
			t.Fatalf("seat %v: expected invalid seat message, got %q", seat, text)
		}
	}
	expectNoWSMessage(t, host, 300*time.Millisecond)
}

func TestWebsocketSetModeErrors(t *testing.T) {
	ts := newTestServer(t)
	host, _ := dialWS(t, ts, wsRoleHost)
	openRound(t, host, 3, 3)

	sendWS(t, host, typeHostSetMode, map[string]any{"mode": "diagonal", "target": 2})
	if text := decodeData[string](t, waitForWSMessage(t, host, session.TypeHostError, wsTimeout)); text != "mode must be all, cross or square" {
		t.Fatalf("unexpected error %q", text)
	}

	sendWS(t, host, typeHostSetMode, map[string]any{"mode": "cross", "target": 10})
	waitForWSMessage(t, host, session.TypeHostError, wsTimeout)

	sendWS(t, host, typeHostCreateGame, map[string]int{"rows": -1, "cols": 3})
	if text := decodeData[string](t, waitForWSMessage(t, host, session.TypeHostError, wsTimeout)); text != "rows must not be negative" {
		t.Fatalf("unexpected error %q", text)
	}
}

func TestWebsocketMalformedFramesAreIgnored(t *testing.T) {
	ts := newTestServer(t)
	host, _ := dialWS(t, ts, wsRoleHost)

	if err := host.WriteMessage(websocket.TextMessage, []byte("not json")); err != nil {
		t.Fatalf("write: %v", err)
	}
	sendWS(t, host, "host:unknown", nil)
	sendWS(t, host, typeHostSetMode, "not an object")

	openRound(t, host, 1, 2)
}

func TestWebsocketCreateGameClearsSeats(t *testing.T) {
	ts := newTestServer(t)
	host, _ := dialWS(t, ts, wsRoleHost)
	player, _ := dialWS(t, ts, "")

	openRound(t, host, 2, 2)
	joinSeat(t, host, player, 3, 3)
	openRound(t, host, 3, 3)

	sendWS(t, player, typePlayerBuzz, nil)
	sendWS(t, host, typeHostReset, nil)
	waitForWSMessage(t, host, session.TypePlayerSetState, wsTimeout)

	_ = player.Close()
	expectNoWSMessage(t, host, 400*time.Millisecond)
}
