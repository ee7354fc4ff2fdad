// Package zone maps a target seat on a row-major seating grid to the seats
// allowed to buzz for each targeting mode. Nothing here holds state.
package zone

import (
	"errors"
	"fmt"
	"strings"
)

type Mode string

const (
	ModeAll    Mode = "all"
	ModeCross  Mode = "cross"
	ModeSquare Mode = "square"
)

var ErrUnknownMode = errors.New("unknown targeting mode")

func ParseMode(raw string) (Mode, error) {
	switch mode := Mode(strings.ToLower(strings.TrimSpace(raw))); mode {
	case ModeAll, ModeCross, ModeSquare:
		return mode, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownMode, raw)
	}
}

// Layout is the seating grid. Seats are numbered 1..Rows*Cols row-major.
type Layout struct {
	Rows int `json:"rows" yaml:"rows"`
	Cols int `json:"cols" yaml:"cols"`
}

func (l Layout) Total() int {
	if l.Rows <= 0 || l.Cols <= 0 {
		return 0
	}
	return l.Rows * l.Cols
}

func (l Layout) Contains(seat int) bool {
	return seat >= 1 && seat <= l.Total()
}

// Position returns the zero-based row and column of seat.
func (l Layout) Position(seat int) (row, col int) {
	return (seat - 1) / l.Cols, (seat - 1) % l.Cols
}

func (l Layout) Seat(row, col int) int {
	return row*l.Cols + col + 1
}

func (l Layout) inBounds(row, col int) bool {
	return row >= 0 && row < l.Rows && col >= 0 && col < l.Cols
}

func All(layout Layout) []int {
	total := layout.Total()
	seats := make([]int, 0, total)
	for seat := 1; seat <= total; seat++ {
		seats = append(seats, seat)
	}
	return seats
}

// Cross returns every seat sharing the target's row or column.
func Cross(target int, layout Layout) []int {
	if !layout.Contains(target) {
		return []int{}
	}
	targetRow, targetCol := layout.Position(target)
	seats := make([]int, 0, layout.Rows+layout.Cols-1)
	for seat := 1; seat <= layout.Total(); seat++ {
		row, col := layout.Position(seat)
		if row == targetRow || col == targetCol {
			seats = append(seats, seat)
		}
	}
	return seats
}

// Square returns the 3x3 block centred on target, clipped to the grid.
func Square(target int, layout Layout) []int {
	if !layout.Contains(target) {
		return []int{}
	}
	targetRow, targetCol := layout.Position(target)
	seats := make([]int, 0, 9)
	for row := targetRow - 1; row <= targetRow+1; row++ {
		for col := targetCol - 1; col <= targetCol+1; col++ {
			if layout.inBounds(row, col) {
				seats = append(seats, layout.Seat(row, col))
			}
		}
	}
	return seats
}

// Locked is the complement of active over every seat of layout.
func Locked(active []int, layout Layout) []int {
	activeSet := NewSet(active)
	locked := make([]int, 0, max(0, layout.Total()-len(activeSet)))
	for seat := 1; seat <= layout.Total(); seat++ {
		if !activeSet.Has(seat) {
			locked = append(locked, seat)
		}
	}
	return locked
}

// Compute resolves the active and locked zones for a round. A target of zero
// means none was supplied, which activates every seat regardless of mode.
func Compute(mode Mode, target int, layout Layout) (active, locked []int) {
	switch {
	case mode == ModeAll || target == 0:
		active = All(layout)
	case mode == ModeCross:
		active = Cross(target, layout)
	case mode == ModeSquare:
		active = Square(target, layout)
	default:
		active = []int{}
	}
	return active, Locked(active, layout)
}

// ValidTarget reports whether target is usable with mode on layout.
func ValidTarget(mode Mode, target int, layout Layout) bool {
	if mode == ModeAll || target == 0 {
		return true
	}
	return layout.Contains(target)
}
