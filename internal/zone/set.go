package zone

import "sort"

type Set map[int]struct{}

func NewSet(seats []int) Set {
	set := make(Set, len(seats))
	for _, seat := range seats {
		set[seat] = struct{}{}
	}
	return set
}

func (s Set) Has(seat int) bool {
	_, ok := s[seat]
	return ok
}

// Sorted returns the seats in ascending order.
func (s Set) Sorted() []int {
	seats := make([]int, 0, len(s))
	for seat := range s {
		seats = append(seats, seat)
	}
	sort.Ints(seats)
	return seats
}
