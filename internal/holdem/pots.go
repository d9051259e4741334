package holdem

import "sort"

// SidePot is one layer of the pot partition. Eligible seats are the
// non-folded seats that committed at least up to the layer's level; folded
// commitments are folded into the layer amounts but never win.
type SidePot struct {
	Level    int
	Amount   int
	Eligible []string
}

// SidePots partitions the pot by the distinct commitment levels of the
// non-folded seats, ascending. The top layer absorbs anything committed
// beyond the highest eligible level (a big raise folded out, for instance),
// so the layer amounts always sum to the pot.
func (t *Table) SidePots() []SidePot {
	active := t.activeSeats()
	if len(active) == 0 {
		return nil
	}

	levelSet := map[int]bool{}
	for _, s := range active {
		if s.Committed > 0 {
			levelSet[s.Committed] = true
		}
	}
	levels := make([]int, 0, len(levelSet))
	for l := range levelSet {
		levels = append(levels, l)
	}
	sort.Ints(levels)

	pots := make([]SidePot, 0, len(levels))
	prev := 0
	for i, level := range levels {
		pot := SidePot{Level: level}
		for _, s := range active {
			if s.Committed >= level {
				pot.Eligible = append(pot.Eligible, s.Nick)
			}
		}
		top := i == len(levels)-1
		for _, s := range t.seats {
			c := s.Committed
			if !top && c > level {
				c = level
			}
			if c > prev {
				pot.Amount += c - prev
			}
		}
		if pot.Amount > 0 {
			pots = append(pots, pot)
		}
		prev = level
	}
	return pots
}
