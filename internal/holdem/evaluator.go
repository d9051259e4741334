package holdem

import (
	"sort"

	"github.com/samifarahneto/gamecartas/internal/deck"
)

// Category is the hand class, 0 = high card through 9 = royal flush.
type Category int

const (
	HighCard Category = iota
	OnePair
	TwoPair
	ThreeOfAKind
	Straight
	Flush
	FullHouse
	FourOfAKind
	StraightFlush
	RoyalFlush
)

func (c Category) String() string {
	return [...]string{
		"high card", "one pair", "two pair", "three of a kind", "straight",
		"flush", "full house", "four of a kind", "straight flush", "royal flush",
	}[c]
}

// HandRank is a comparable hand strength: categories order first, then the
// tiebreaker vector lexicographically. Higher is better.
type HandRank struct {
	Category  Category
	Tiebreaks []int
}

// Compare returns -1, 0 or 1 as r sorts below, equal to or above o.
func (r HandRank) Compare(o HandRank) int {
	if r.Category != o.Category {
		if r.Category < o.Category {
			return -1
		}
		return 1
	}
	for i := 0; i < len(r.Tiebreaks) && i < len(o.Tiebreaks); i++ {
		if r.Tiebreaks[i] != o.Tiebreaks[i] {
			if r.Tiebreaks[i] < o.Tiebreaks[i] {
				return -1
			}
			return 1
		}
	}
	return 0
}

// Beats reports whether r strictly outranks o.
func (r HandRank) Beats(o HandRank) bool {
	return r.Compare(o) > 0
}

// Evaluate returns the best rank achievable from 5 to 7 cards, taking the
// maximum over every 5-card subset. It is pure and order-independent.
func Evaluate(cards []deck.Card) HandRank {
	switch {
	case len(cards) < 5:
		return HandRank{}
	case len(cards) == 5:
		return evaluate5(cards)
	}

	best := HandRank{Category: -1}
	n := len(cards)
	combo := make([]deck.Card, 0, 5)

	// Choose 5 of n by excluding n-5 indices (one for 6 cards, two for 7).
	switch n {
	case 6:
		for skip := 0; skip < 6; skip++ {
			combo = combo[:0]
			for i, c := range cards {
				if i != skip {
					combo = append(combo, c)
				}
			}
			if r := evaluate5(combo); r.Beats(best) {
				best = r
			}
		}
	case 7:
		for skipA := 0; skipA < 7; skipA++ {
			for skipB := skipA + 1; skipB < 7; skipB++ {
				combo = combo[:0]
				for i, c := range cards {
					if i != skipA && i != skipB {
						combo = append(combo, c)
					}
				}
				if r := evaluate5(combo); r.Beats(best) {
					best = r
				}
			}
		}
	default:
		return HandRank{}
	}
	return best
}

// evaluate5 ranks exactly five cards.
func evaluate5(cards []deck.Card) HandRank {
	ranks := make([]int, 5)
	flush := true
	for i, c := range cards {
		ranks[i] = c.Value()
		if c.Suit != cards[0].Suit {
			flush = false
		}
	}
	sort.Sort(sort.Reverse(sort.IntSlice(ranks)))

	counts := map[int]int{}
	for _, r := range ranks {
		counts[r]++
	}
	distinct := make([]int, 0, len(counts))
	for r := range counts {
		distinct = append(distinct, r)
	}
	// By count descending, then rank descending.
	sort.Slice(distinct, func(a, b int) bool {
		if counts[distinct[a]] != counts[distinct[b]] {
			return counts[distinct[a]] > counts[distinct[b]]
		}
		return distinct[a] > distinct[b]
	})

	straightHigh := straightTop(counts)

	switch {
	case straightHigh == 14 && flush:
		return HandRank{Category: RoyalFlush, Tiebreaks: []int{14}}
	case straightHigh > 0 && flush:
		return HandRank{Category: StraightFlush, Tiebreaks: []int{straightHigh}}
	case counts[distinct[0]] == 4:
		return HandRank{Category: FourOfAKind, Tiebreaks: []int{distinct[0], distinct[1]}}
	case counts[distinct[0]] == 3 && counts[distinct[1]] >= 2:
		return HandRank{Category: FullHouse, Tiebreaks: []int{distinct[0], distinct[1]}}
	case flush:
		return HandRank{Category: Flush, Tiebreaks: ranks}
	case straightHigh > 0:
		return HandRank{Category: Straight, Tiebreaks: []int{straightHigh}}
	case counts[distinct[0]] == 3:
		return HandRank{Category: ThreeOfAKind, Tiebreaks: []int{distinct[0], distinct[1], distinct[2]}}
	case counts[distinct[0]] == 2 && counts[distinct[1]] == 2:
		return HandRank{Category: TwoPair, Tiebreaks: []int{distinct[0], distinct[1], distinct[2]}}
	case counts[distinct[0]] == 2:
		return HandRank{Category: OnePair, Tiebreaks: []int{distinct[0], distinct[1], distinct[2], distinct[3]}}
	default:
		return HandRank{Category: HighCard, Tiebreaks: ranks}
	}
}

// straightTop returns the high rank of a five-card straight, 5 for the wheel
// (A-2-3-4-5), or 0 when the cards make no straight. An ace without the
// 2-3-4-5 behind it must not register as a wheel.
func straightTop(counts map[int]int) int {
	if len(counts) < 5 {
		return 0
	}
	for top := 14; top >= 6; top-- {
		run := true
		for r := top; r > top-5; r-- {
			if counts[r] == 0 {
				run = false
				break
			}
		}
		if run {
			return top
		}
	}
	if counts[14] > 0 && counts[2] > 0 && counts[3] > 0 && counts[4] > 0 && counts[5] > 0 {
		return 5
	}
	return 0
}
