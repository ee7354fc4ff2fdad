package session

import "classbuzz/internal/zone"

const (
	StateActive  = "active"
	StateLocked  = "locked"
	StateStandby = "standby"
)

// Round is the authoritative record of which seats may buzz and whether the
// round is still open. Active and Locked always partition the layout they
// were computed for.
type Round struct {
	Mode       zone.Mode
	Target     int
	Active     []int
	Locked     []int
	BuzzesOpen bool

	active zone.Set
}

func newRound() Round {
	return Round{
		Mode:   zone.ModeAll,
		Active: []int{},
		Locked: []int{},
		active: zone.Set{},
	}
}

// Set recomputes both zones for layout and opens buzzing.
func (r *Round) Set(mode zone.Mode, target int, layout zone.Layout) {
	r.Mode = mode
	r.Target = target
	r.Active, r.Locked = zone.Compute(mode, target, layout)
	r.active = zone.NewSet(r.Active)
	r.BuzzesOpen = true
}

func (r *Round) Close() {
	r.BuzzesOpen = false
}

func (r *Round) IsActive(seat int) bool {
	return r.active.Has(seat)
}

// StateFor classifies seat against the current zones.
func (r *Round) StateFor(seat int) string {
	if r.IsActive(seat) {
		return StateActive
	}
	return StateLocked
}
