package server

import (
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

type wsMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

func doRequest(t *testing.T, ts *httptest.Server, method, path string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, ts.URL+path, nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	t.Cleanup(func() {
		_ = resp.Body.Close()
	})
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	return body
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return string(data)
}

// dialWS connects with the given role and consumes the welcome message.
func dialWS(t *testing.T, ts *httptest.Server, role string) (*websocket.Conn, string) {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	if role != "" {
		wsURL += "?role=" + role
	}
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Skipf("skipping test; websocket dial unavailable: %v", err)
	}
	t.Cleanup(func() {
		_ = conn.Close()
	})
	msg := readWSMessage(t, conn, 5*time.Second)
	if msg.Type != typeWelcome {
		t.Fatalf("expected welcome message, got %s", msg.Type)
	}
	var welcome welcomePayload
	if err := json.Unmarshal(msg.Data, &welcome); err != nil {
		t.Fatalf("decode welcome: %v", err)
	}
	if welcome.ID == "" {
		t.Fatalf("expected connection id in welcome")
	}
	return conn, string(welcome.ID)
}

func sendWS(t *testing.T, conn *websocket.Conn, messageType string, data any) {
	t.Helper()
	frame := map[string]any{"type": messageType}
	if data != nil {
		frame["data"] = data
	}
	if err := conn.WriteJSON(frame); err != nil {
		t.Fatalf("write websocket message: %v", err)
	}
}

func readWSMessage(t *testing.T, conn *websocket.Conn, timeout time.Duration) wsMessage {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(timeout))
	_, payload, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read websocket message: %v", err)
	}
	var msg wsMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		t.Fatalf("decode websocket message %q: %v", payload, err)
	}
	return msg
}

// waitForWSMessage skips messages until one of messageType arrives.
func waitForWSMessage(t *testing.T, conn *websocket.Conn, messageType string, timeout time.Duration) wsMessage {
	t.Helper()
	deadline := time.Now().Add(timeout)
	seen := make([]string, 0)
	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			t.Fatalf("timed out waiting for %s; seen=%v", messageType, seen)
		}
		msg := readWSMessage(t, conn, remaining)
		if msg.Type == messageType {
			return msg
		}
		seen = append(seen, msg.Type)
	}
}

func expectNoWSMessage(t *testing.T, conn *websocket.Conn, timeout time.Duration) {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(timeout))
	if _, payload, err := conn.ReadMessage(); err == nil {
		t.Fatalf("expected no websocket message within %s, got %s", timeout, payload)
	} else {
		netErr, ok := err.(net.Error)
		if !ok || !netErr.Timeout() {
			t.Fatalf("expected websocket timeout, got %v", err)
		}
	}
}

func decodeData[T any](t *testing.T, msg wsMessage) T {
	t.Helper()
	var value T
	if err := json.Unmarshal(msg.Data, &value); err != nil {
		t.Fatalf("decode %s data %q: %v", msg.Type, msg.Data, err)
	}
	return value
}
