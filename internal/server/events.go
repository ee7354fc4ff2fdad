package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"classbuzz/internal/session"
	"classbuzz/internal/zone"
)

const (
	typeHostCreateGame = "host:createGame"
	typeHostSetMode    = "host:setMode"
	typeHostReset      = "host:reset"
	typePlayerJoin     = "player:joinGame"
	typePlayerBuzz     = "player:buzz"
	typeWelcome        = "session:welcome"
)

const maxGridSide = 100

var (
	errUnknownType = errors.New("unknown message type")
	errPayload     = errors.New("invalid payload")
)

// envelope is the JSON frame exchanged in both directions.
type envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

type outbound struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

type createGamePayload struct {
	Rows int `json:"rows" binding:"min=0,max=100"`
	Cols int `json:"cols" binding:"min=0,max=100"`
}

type setModePayload struct {
	Mode   string     `json:"mode" binding:"required,mode"`
	Target seatNumber `json:"target"`
}

type welcomePayload struct {
	ID   session.ConnID `json:"id"`
	Role string         `json:"role"`
}

var payloadMessages = bindMessages{
	"Rows": {"min": "rows must not be negative", "max": fmt.Sprintf("rows must be %d or fewer", maxGridSide)},
	"Cols": {"min": "cols must not be negative", "max": fmt.Sprintf("cols must be %d or fewer", maxGridSide)},
	"Mode": {"required": "mode is required", "mode": "mode must be all, cross or square"},
}

// seatNumber accepts a JSON number or a numeric string. Anything that is not
// an integer decodes to -1 so that range checks reject it; null and absent
// values stay 0.
type seatNumber int

func (n *seatNumber) UnmarshalJSON(data []byte) error {
	raw := bytes.TrimSpace(data)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		*n = 0
		return nil
	}
	text := string(raw)
	if raw[0] == '"' {
		if err := json.Unmarshal(raw, &text); err != nil {
			*n = -1
			return nil
		}
		text = strings.TrimSpace(text)
	}
	*n = seatNumber(parseSeat(text))
	return nil
}

func parseSeat(text string) int {
	if value, err := strconv.Atoi(text); err == nil {
		return value
	}
	value, err := strconv.ParseFloat(text, 64)
	if err != nil || value != math.Trunc(value) || math.Abs(value) > math.MaxInt32 {
		return -1
	}
	return int(value)
}

// decodeEvent turns one inbound frame into a session event. Buzzes are
// stamped with at, the time the frame was read.
func decodeEvent(conn session.ConnID, frame []byte, at time.Time) (session.Event, error) {
	var env envelope
	if err := json.Unmarshal(frame, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", errPayload, err)
	}
	switch env.Type {
	case typeHostCreateGame:
		var payload createGamePayload
		if err := decodePayload(env.Data, &payload); err != nil {
			return nil, err
		}
		return session.CreateGame{Conn: conn, Layout: zone.Layout{Rows: payload.Rows, Cols: payload.Cols}}, nil
	case typeHostSetMode:
		var payload setModePayload
		if err := decodePayload(env.Data, &payload); err != nil {
			return nil, err
		}
		mode, err := zone.ParseMode(payload.Mode)
		if err != nil {
			return nil, err
		}
		return session.SetMode{Conn: conn, Mode: mode, Target: int(payload.Target)}, nil
	case typeHostReset:
		return session.Reset{Conn: conn}, nil
	case typePlayerJoin:
		var seat seatNumber
		if len(env.Data) > 0 {
			_ = seat.UnmarshalJSON(env.Data)
		}
		return session.Join{Conn: conn, Seat: int(seat)}, nil
	case typePlayerBuzz:
		return session.Buzz{Conn: conn, At: at}, nil
	default:
		return nil, fmt.Errorf("%w: %q", errUnknownType, env.Type)
	}
}

func decodePayload(data json.RawMessage, dest any) error {
	if len(data) == 0 {
		data = json.RawMessage("{}")
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("%w: %v", errPayload, err)
	}
	return validatePayload(dest)
}

// replyTypeFor picks the error channel a client of the given message type
// listens on.
func replyTypeFor(messageType string) string {
	if strings.HasPrefix(messageType, "host:") {
		return session.TypeHostError
	}
	return session.TypePlayerError
}

func encodeNotification(n session.Notification) ([]byte, error) {
	return json.Marshal(outbound{Type: n.Type, Data: n.Data})
}

func peekType(frame []byte) string {
	var env envelope
	if err := json.Unmarshal(frame, &env); err != nil {
		return ""
	}
	return env.Type
}
