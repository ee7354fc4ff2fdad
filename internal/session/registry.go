package session

import (
	"errors"
	"sort"

	"classbuzz/internal/zone"
)

var (
	ErrInvalidSeat        = errors.New("invalid seat number")
	ErrUnregisteredBuzzer = errors.New("buzz from connection without a seat")
	ErrRoundClosed        = errors.New("buzzing is closed")
)

// ConnID identifies one client connection for its whole lifetime.
type ConnID string

type Player struct {
	Conn ConnID `json:"conn_id"`
	Seat int    `json:"seat"`
}

// Registry maps connections to self-declared seats. Two connections may hold
// the same seat; the newest join does not evict the older one.
type Registry struct {
	seats map[ConnID]int
}

func NewRegistry() *Registry {
	return &Registry{seats: make(map[ConnID]int)}
}

func (r *Registry) Join(conn ConnID, seat int, layout zone.Layout) error {
	if !layout.Contains(seat) {
		return ErrInvalidSeat
	}
	r.seats[conn] = seat
	return nil
}

func (r *Registry) Leave(conn ConnID) (int, bool) {
	seat, ok := r.seats[conn]
	if !ok {
		return 0, false
	}
	delete(r.seats, conn)
	return seat, true
}

func (r *Registry) ResetAll() {
	r.seats = make(map[ConnID]int)
}

func (r *Registry) SeatOf(conn ConnID) (int, bool) {
	seat, ok := r.seats[conn]
	return seat, ok
}

func (r *Registry) Len() int {
	return len(r.seats)
}

// Players lists registrations ordered by seat, then connection id.
func (r *Registry) Players() []Player {
	players := make([]Player, 0, len(r.seats))
	for conn, seat := range r.seats {
		players = append(players, Player{Conn: conn, Seat: seat})
	}
	sort.Slice(players, func(i, j int) bool {
		if players[i].Seat != players[j].Seat {
			return players[i].Seat < players[j].Seat
		}
		return players[i].Conn < players[j].Conn
	})
	return players
}
