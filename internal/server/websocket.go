package server

import (
	"errors"
	"net/http"
	"sync"
	"time"

	"classbuzz/internal/session"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const (
	wsRolePlayer = "player"
	wsRoleHost   = "host"
)

type wsClient struct {
	id   session.ConnID
	role string
	conn *websocket.Conn
	send chan []byte
}

// wsHub tracks live connections and implements session.Deliverer. Sends are
// non-blocking; a client whose queue is full is disconnected.
type wsHub struct {
	mu      sync.Mutex
	clients map[session.ConnID]*wsClient
	log     zerolog.Logger
}

func newWSHub(logger zerolog.Logger) *wsHub {
	return &wsHub{
		clients: make(map[session.ConnID]*wsClient),
		log:     logger.With().Str("component", "ws_hub").Logger(),
	}
}

func (h *wsHub) Add(client *wsClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[client.id] = client
}

// Remove forgets the client and closes its send queue, which stops its write
// pump. It reports whether the client was still registered.
func (h *wsHub) Remove(id session.ConnID) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.removeLocked(id)
}

func (h *wsHub) removeLocked(id session.ConnID) bool {
	client, ok := h.clients[id]
	if !ok {
		return false
	}
	delete(h.clients, id)
	close(client.send)
	return true
}

func (h *wsHub) CloseAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id := range h.clients {
		h.removeLocked(id)
	}
}

func (h *wsHub) Deliver(n session.Notification) {
	data, err := encodeNotification(n)
	if err != nil {
		h.log.Error().Err(err).Str("type", n.Type).Msg("failed to encode notification")
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if !n.To.All {
		if client, ok := h.clients[n.To.Conn]; ok {
			h.enqueueLocked(client, data)
		}
		return
	}
	for _, client := range h.clients {
		h.enqueueLocked(client, data)
	}
}

func (h *wsHub) Send(id session.ConnID, messageType string, payload any) {
	h.Deliver(session.Notification{To: session.ToConn(id), Type: messageType, Data: payload})
}

func (h *wsHub) enqueueLocked(client *wsClient, data []byte) {
	select {
	case client.send <- data:
	default:
		h.log.Warn().Str("conn_id", string(client.id)).Msg("send queue full, dropping connection")
		h.removeLocked(client.id)
		_ = client.conn.Close()
	}
}

type hubStats struct {
	Connections int `json:"connections"`
	Hosts       int `json:"hosts"`
	Players     int `json:"players"`
}

func (h *wsHub) Stats() hubStats {
	h.mu.Lock()
	defer h.mu.Unlock()
	stats := hubStats{Connections: len(h.clients)}
	for _, client := range h.clients {
		if client.role == wsRoleHost {
			stats.Hosts++
		} else {
			stats.Players++
		}
	}
	return stats
}

func (s *Server) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	role := wsRolePlayer
	if r.URL.Query().Get("role") == wsRoleHost {
		role = wsRoleHost
	}
	upgrader := websocket.Upgrader{
		CheckOrigin: s.originAllowed,
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn().Err(err).Str("remote", r.RemoteAddr).Msg("websocket upgrade failed")
		return
	}
	client := &wsClient{
		id:   session.ConnID(uuid.New().String()),
		role: role,
		conn: conn,
		send: make(chan []byte, max(1, s.cfg.SendBuffer)),
	}
	// The welcome frame is queued before registration so it always arrives
	// ahead of any broadcast.
	welcome, err := encodeNotification(session.Notification{
		Type: typeWelcome,
		Data: welcomePayload{ID: client.id, Role: role},
	})
	if err == nil {
		client.send <- welcome
	}
	s.ws.Add(client)
	s.log.Info().
		Str("conn_id", string(client.id)).
		Str("role", role).
		Str("remote", r.RemoteAddr).
		Msg("ws connected")
	go s.writeWS(client)
	go s.readWS(client)
}

func (s *Server) readWS(client *wsClient) {
	defer func() {
		s.ws.Remove(client.id)
		_ = client.conn.Close()
		if err := s.dispatcher.Submit(session.Disconnect{Conn: client.id}); err != nil {
			s.log.Debug().Err(err).Str("conn_id", string(client.id)).Msg("disconnect not submitted")
		}
	}()

	conn := client.conn
	conn.SetReadLimit(s.cfg.MaxMessageBytes)
	_ = conn.SetReadDeadline(time.Now().Add(s.cfg.PongTimeout()))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(s.cfg.PongTimeout()))
	})

	for {
		_, frame, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.log.Warn().Err(err).Str("conn_id", string(client.id)).Msg("ws closed unexpectedly")
			} else {
				s.log.Info().Str("conn_id", string(client.id)).Msg("ws disconnected")
			}
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(s.cfg.PongTimeout()))
		s.handleFrame(client, frame)
	}
}

func (s *Server) handleFrame(client *wsClient, frame []byte) {
	ev, err := decodeEvent(client.id, frame, s.clock.Now())
	if err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			messageType := peekType(frame)
			s.ws.Send(client.id, replyTypeFor(messageType), resolveBindError(err, payloadMessages, "invalid request"))
		}
		s.log.Debug().Err(err).Str("conn_id", string(client.id)).Msg("inbound message ignored")
		return
	}
	if err := s.dispatcher.Submit(ev); err != nil {
		s.log.Warn().Err(err).Str("conn_id", string(client.id)).Msg("event not submitted")
	}
}

func (s *Server) writeWS(client *wsClient) {
	ticker := time.NewTicker(s.cfg.PingInterval())
	defer func() {
		ticker.Stop()
		_ = client.conn.Close()
	}()
	for {
		select {
		case data, ok := <-client.send:
			_ = client.conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout()))
			if !ok {
				_ = client.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := client.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				s.log.Debug().Err(err).Str("conn_id", string(client.id)).Msg("ws write failed")
				return
			}
		case <-ticker.C:
			_ = client.conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout()))
			if err := client.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
