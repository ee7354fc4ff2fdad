package session

import (
	"time"

	"classbuzz/internal/zone"
)

// Event is one inbound client action. The set of variants is closed; Apply
// switches over all of them.
type Event interface {
	Origin() ConnID
	isEvent()
}

type CreateGame struct {
	Conn   ConnID
	Layout zone.Layout
}

type SetMode struct {
	Conn   ConnID
	Mode   zone.Mode
	Target int
}

type Reset struct {
	Conn ConnID
}

// Join carries the parsed seat; a seat that could not be parsed arrives as 0.
type Join struct {
	Conn ConnID
	Seat int
}

type Buzz struct {
	Conn ConnID
	At   time.Time
}

type Disconnect struct {
	Conn ConnID
}

func (e CreateGame) Origin() ConnID { return e.Conn }
func (e SetMode) Origin() ConnID    { return e.Conn }
func (e Reset) Origin() ConnID      { return e.Conn }
func (e Join) Origin() ConnID       { return e.Conn }
func (e Buzz) Origin() ConnID       { return e.Conn }
func (e Disconnect) Origin() ConnID { return e.Conn }

func (CreateGame) isEvent() {}
func (SetMode) isEvent()    {}
func (Reset) isEvent()      {}
func (Join) isEvent()       {}
func (Buzz) isEvent()       {}
func (Disconnect) isEvent() {}

const (
	TypePlayerSetState   = "player:setState"
	TypePlayerError      = "player:error"
	TypeHostGridState    = "host:updateGridState"
	TypeHostPlayerJoined = "host:playerJoined"
	TypeHostPlayerLeft   = "host:playerLeft"
	TypeHostLogBuzz      = "host:logBuzz"
	TypeHostError        = "host:error"
)

// Audience selects who receives a notification: one connection, or everyone
// when All is set.
type Audience struct {
	Conn ConnID
	All  bool
}

func ToConn(conn ConnID) Audience { return Audience{Conn: conn} }

func ToAll() Audience { return Audience{All: true} }

// Notification is an outbound message produced by a transition. Delivering it
// is the gateway's job.
type Notification struct {
	To   Audience
	Type string
	Data any
}

type GridState struct {
	Active []int `json:"active"`
	Locked []int `json:"locked"`
}

// BuzzEvent is the outcome of an accepted buzz. It is not retained.
type BuzzEvent struct {
	Seat  int       `json:"seat"`
	Valid bool      `json:"valid"`
	Time  int64     `json:"time"`
	At    time.Time `json:"-"`
}
