package session

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
)

var ErrDispatcherStopped = errors.New("dispatcher stopped")

// Deliverer sends notifications to clients. Deliver must not block on
// network I/O; it is called from the dispatcher goroutine.
type Deliverer interface {
	Deliver(n Notification)
}

type command struct {
	event Event
	query func(*Session)
}

// Dispatcher is the single owner of a Session. Events are applied one at a
// time, in arrival order, each to completion before the next is read. That
// ordering is what makes the first processed buzz the only winner.
type Dispatcher struct {
	session   *Session
	deliverer Deliverer
	inbox     chan command
	done      chan struct{}
	log       zerolog.Logger
}

func NewDispatcher(s *Session, deliverer Deliverer, inboxSize int, logger zerolog.Logger) *Dispatcher {
	if inboxSize <= 0 {
		inboxSize = 1
	}
	return &Dispatcher{
		session:   s,
		deliverer: deliverer,
		inbox:     make(chan command, inboxSize),
		done:      make(chan struct{}),
		log:       logger.With().Str("component", "dispatcher").Logger(),
	}
}

// Run processes commands until ctx is cancelled.
func (d *Dispatcher) Run(ctx context.Context) {
	defer close(d.done)
	d.log.Info().Msg("dispatcher started")
	for {
		select {
		case <-ctx.Done():
			d.log.Info().Msg("dispatcher stopped")
			return
		case cmd := <-d.inbox:
			if cmd.query != nil {
				cmd.query(d.session)
				continue
			}
			d.apply(cmd.event)
		}
	}
}

func (d *Dispatcher) apply(ev Event) {
	notifications, err := d.session.Apply(ev)
	logEvent := d.log.Debug()
	if err != nil {
		logEvent = d.log.Info().Err(err)
		if errors.Is(err, ErrRoundClosed) || errors.Is(err, ErrUnregisteredBuzzer) {
			logEvent = d.log.Debug().Err(err)
		}
	}
	logEvent.
		Str("conn_id", string(ev.Origin())).
		Str("event", eventName(ev)).
		Int("notifications", len(notifications)).
		Msg("event applied")
	for _, n := range notifications {
		d.deliverer.Deliver(n)
	}
}

// Submit queues ev. It blocks only while the inbox is full.
func (d *Dispatcher) Submit(ev Event) error {
	select {
	case <-d.done:
		return ErrDispatcherStopped
	default:
	}
	select {
	case d.inbox <- command{event: ev}:
		return nil
	case <-d.done:
		return ErrDispatcherStopped
	}
}

// Snapshot reads the session from the dispatcher goroutine.
func (d *Dispatcher) Snapshot(ctx context.Context) (Snapshot, error) {
	reply := make(chan Snapshot, 1)
	cmd := command{query: func(s *Session) { reply <- s.Snapshot() }}
	select {
	case d.inbox <- cmd:
	case <-d.done:
		return Snapshot{}, ErrDispatcherStopped
	case <-ctx.Done():
		return Snapshot{}, ctx.Err()
	}
	select {
	case snap := <-reply:
		return snap, nil
	case <-d.done:
		return Snapshot{}, ErrDispatcherStopped
	case <-ctx.Done():
		return Snapshot{}, ctx.Err()
	}
}

func eventName(ev Event) string {
	switch ev.(type) {
	case CreateGame:
		return "create_game"
	case SetMode:
		return "set_mode"
	case Reset:
		return "reset"
	case Join:
		return "join"
	case Buzz:
		return "buzz"
	case Disconnect:
		return "disconnect"
	default:
		return "unknown"
	}
}
