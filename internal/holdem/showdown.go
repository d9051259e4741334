package holdem

import "github.com/samifarahneto/gamecartas/internal/deck"

// ResolveShowdown evaluates the surviving hands, distributes every pot layer
// and returns the winners. It runs at most once per hand; repeat calls
// return the stored result without moving chips again.
func (t *Table) ResolveShowdown() []string {
	if !t.started || t.street != Showdown {
		return nil
	}
	if t.resolved {
		return t.winners
	}
	t.resolved = true

	active := t.activeSeats()
	if len(active) == 0 {
		return nil
	}

	// Fold-to-one: the last seat standing takes the whole pot unexamined.
	if len(active) == 1 {
		active[0].Stack += t.pot
		t.awarded = t.pot
		t.pot = 0
		t.winners = []string{active[0].Nick}
		return t.winners
	}

	ranks := make(map[string]HandRank, len(active))
	for _, s := range active {
		cards := make([]deck.Card, 0, len(s.Hole)+len(t.community))
		cards = append(cards, s.Hole...)
		cards = append(cards, t.community...)
		ranks[s.Nick] = Evaluate(cards)
	}

	won := map[string]bool{}
	for _, pot := range t.SidePots() {
		layerWinners := bestOf(pot.Eligible, ranks, t.actionOrder())
		if len(layerWinners) == 0 {
			continue
		}
		share := pot.Amount / len(layerWinners)
		remainder := pot.Amount % len(layerWinners)
		for _, nick := range layerWinners {
			t.seat(nick).Stack += share
			won[nick] = true
		}
		// Indivisible chips go to the earliest winner in action order.
		t.seat(layerWinners[0]).Stack += remainder
		t.awarded += pot.Amount
	}

	t.pot = 0

	t.winners = make([]string, 0, len(won))
	for _, nick := range t.actionOrder() {
		if won[nick] {
			t.winners = append(t.winners, nick)
		}
	}
	return t.winners
}

// bestOf returns the eligible nicknames holding the best hand, ordered by
// action order for deterministic remainder assignment.
func bestOf(eligible []string, ranks map[string]HandRank, order []string) []string {
	inLayer := map[string]bool{}
	for _, nick := range eligible {
		inLayer[nick] = true
	}

	var best HandRank
	bestSet := false
	var winners []string
	for _, nick := range order {
		if !inLayer[nick] {
			continue
		}
		r, ok := ranks[nick]
		if !ok {
			continue
		}
		switch {
		case !bestSet || r.Beats(best):
			best = r
			bestSet = true
			winners = winners[:0]
			winners = append(winners, nick)
		case r.Compare(best) == 0:
			winners = append(winners, nick)
		}
	}
	return winners
}

// actionOrder lists seats clockwise starting left of the button.
func (t *Table) actionOrder() []string {
	n := len(t.seats)
	order := make([]string, 0, n)
	if n == 0 {
		return order
	}
	start := (t.dealerIdx + 1) % n
	for k := 0; k < n; k++ {
		order = append(order, t.seats[(start+k)%n].Nick)
	}
	return order
}

// ShowdownOrder returns the reveal order: the last aggressor shows first,
// then the remaining active seats clockwise from the dealer; with no bettor
// the order is simply clockwise from the dealer.
func (t *Table) ShowdownOrder() []string {
	active := map[string]bool{}
	for _, s := range t.activeSeats() {
		active[s.Nick] = true
	}
	if len(active) == 0 {
		return nil
	}

	var order []string
	if t.lastBettor != "" && active[t.lastBettor] {
		order = append(order, t.lastBettor)
	}
	for _, nick := range t.actionOrder() {
		if active[nick] && nick != t.lastBettor {
			order = append(order, nick)
		}
	}
	return order
}
