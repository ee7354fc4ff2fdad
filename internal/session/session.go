// Package session holds the classroom's authoritative state: the seat
// registry, the current round and the buzz arbitration rule. Session itself
// is not safe for concurrent use; Dispatcher serializes access to it.
package session

import (
	"fmt"
	"time"

	"classbuzz/internal/zone"
)

type Session struct {
	layout   zone.Layout
	registry *Registry
	round    Round
}

func New() *Session {
	return &Session{
		registry: NewRegistry(),
		round:    newRound(),
	}
}

func (s *Session) Layout() zone.Layout {
	return s.layout
}

func (s *Session) Registry() *Registry {
	return s.registry
}

func (s *Session) Round() Round {
	return s.round
}

// CreateGame replaces the layout and drops every seat registration. The round
// is left untouched: its zones describe the old layout until the next SetMode,
// and the host console is expected to issue one before taking buzzes.
func (s *Session) CreateGame(layout zone.Layout) {
	s.layout = layout
	s.registry.ResetAll()
}

func (s *Session) SetMode(mode zone.Mode, target int) error {
	if _, err := zone.ParseMode(string(mode)); err != nil {
		return err
	}
	if !zone.ValidTarget(mode, target, s.layout) {
		return fmt.Errorf("%w: target %d", ErrInvalidSeat, target)
	}
	s.round.Set(mode, target, s.layout)
	return nil
}

func (s *Session) Reset() {
	s.round.Close()
}

func (s *Session) Join(conn ConnID, seat int) error {
	return s.registry.Join(conn, seat, s.layout)
}

func (s *Session) Leave(conn ConnID) (int, bool) {
	return s.registry.Leave(conn)
}

// Buzz arbitrates one attempt. The first attempt from a seated connection
// while the round is open wins and closes the round, whether or not the seat
// was in the active zone.
func (s *Session) Buzz(conn ConnID, at time.Time) (BuzzEvent, error) {
	if !s.round.BuzzesOpen {
		return BuzzEvent{}, ErrRoundClosed
	}
	seat, ok := s.registry.SeatOf(conn)
	if !ok {
		return BuzzEvent{}, ErrUnregisteredBuzzer
	}
	s.round.Close()
	return BuzzEvent{
		Seat:  seat,
		Valid: s.round.IsActive(seat),
		Time:  at.UnixMilli(),
		At:    at,
	}, nil
}

// Apply runs one event to completion and returns the notifications it
// produced. The returned error explains a rejected or dropped event; any
// message the client should see is already among the notifications.
func (s *Session) Apply(ev Event) ([]Notification, error) {
	switch ev := ev.(type) {
	case CreateGame:
		s.CreateGame(ev.Layout)
		return nil, nil
	case SetMode:
		if err := s.SetMode(ev.Mode, ev.Target); err != nil {
			return []Notification{{To: ToConn(ev.Conn), Type: TypeHostError, Data: err.Error()}}, err
		}
		return s.resync(ev.Conn), nil
	case Reset:
		s.Reset()
		return []Notification{{To: ToAll(), Type: TypePlayerSetState, Data: StateStandby}}, nil
	case Join:
		if err := s.Join(ev.Conn, ev.Seat); err != nil {
			return []Notification{{To: ToConn(ev.Conn), Type: TypePlayerError, Data: err.Error()}}, err
		}
		return []Notification{{To: ToAll(), Type: TypeHostPlayerJoined, Data: ev.Seat}}, nil
	case Buzz:
		buzz, err := s.Buzz(ev.Conn, ev.At)
		if err != nil {
			return nil, err
		}
		return []Notification{{To: ToAll(), Type: TypeHostLogBuzz, Data: buzz}}, nil
	case Disconnect:
		seat, ok := s.Leave(ev.Conn)
		if !ok {
			return nil, nil
		}
		return []Notification{{To: ToAll(), Type: TypeHostPlayerLeft, Data: seat}}, nil
	default:
		return nil, fmt.Errorf("unsupported event %T", ev)
	}
}

// resync tells every seated connection its status and hands the initiator
// the full grid. It is a full resend, never a diff.
func (s *Session) resync(initiator ConnID) []Notification {
	players := s.registry.Players()
	out := make([]Notification, 0, len(players)+1)
	for _, player := range players {
		out = append(out, Notification{
			To:   ToConn(player.Conn),
			Type: TypePlayerSetState,
			Data: s.round.StateFor(player.Seat),
		})
	}
	out = append(out, Notification{
		To:   ToConn(initiator),
		Type: TypeHostGridState,
		Data: GridState{
			Active: append([]int{}, s.round.Active...),
			Locked: append([]int{}, s.round.Locked...),
		},
	})
	return out
}

type Snapshot struct {
	Layout     zone.Layout `json:"layout"`
	TotalSeats int         `json:"total_seats"`
	Mode       zone.Mode   `json:"mode"`
	Target     int         `json:"target,omitempty"`
	Active     []int       `json:"active"`
	Locked     []int       `json:"locked"`
	BuzzesOpen bool        `json:"buzzes_open"`
	Players    []Player    `json:"players"`
}

func (s *Session) Snapshot() Snapshot {
	return Snapshot{
		Layout:     s.layout,
		TotalSeats: s.layout.Total(),
		Mode:       s.round.Mode,
		Target:     s.round.Target,
		Active:     append([]int{}, s.round.Active...),
		Locked:     append([]int{}, s.round.Locked...),
		BuzzesOpen: s.round.BuzzesOpen,
		Players:    s.registry.Players(),
	}
}
