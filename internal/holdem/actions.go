package holdem

// Player actions as they appear on the wire.
const (
	ActionFold  = "fold"
	ActionCheck = "check"
	ActionCall  = "call"
	ActionRaise = "raise"
	ActionAllIn = "all_in"
)

// Apply submits an action for nick. The amount is the raise increment above
// the current highest bet and is ignored for other actions. Illegal actions
// are rejected without mutating state; the return reports whether anything
// changed.
func (t *Table) Apply(nick, action string, amount int) bool {
	if !t.started || t.street == Showdown {
		return false
	}
	if nick != t.ToAct() {
		return false
	}
	i := t.seatIndex(nick)
	s := t.seats[i]

	record := ActionRecord{Player: nick, Action: action}

	switch action {
	case ActionFold:
		s.Folded = true
		t.acted[i] = true

	case ActionCheck:
		if s.Bet != t.HighestBet() {
			return false
		}
		t.acted[i] = true

	case ActionCall:
		need := t.HighestBet() - s.Bet
		if need < 0 {
			need = 0
		}
		actual := t.commit(s, need)
		record.Amount = &actual
		if s.AllIn {
			record.Action = ActionAllIn
		}
		t.acted[i] = true

	case ActionRaise:
		// A seat that already acted since the last full raise may only call
		// or fold; a short all-in does not re-open the action for it.
		if t.acted[i] {
			return false
		}
		minRaise := t.MinRaiseAmount()
		increment := amount
		if increment == 0 {
			increment = minRaise
		}
		if increment < minRaise {
			return false
		}
		callNeed := t.HighestBet() - s.Bet
		if callNeed < 0 {
			callNeed = 0
		}
		need := callNeed + increment
		actual := t.commit(s, need)
		if actual < need {
			// Partial all-in. Only a full raise increment re-opens the action.
			record.Action = ActionAllIn
			record.Amount = &actual
			if inc := actual - callNeed; inc >= minRaise {
				t.reopen(i, inc, nick)
			} else {
				t.acted[i] = true
			}
		} else {
			record.Amount = &increment
			t.reopen(i, increment, nick)
		}

	case ActionAllIn:
		if s.Stack == 0 {
			return false
		}
		callNeed := t.HighestBet() - s.Bet
		if callNeed < 0 {
			callNeed = 0
		}
		// Same closure as raise: a seat that already acted since the last
		// full raise may shove only as a call, never as a re-raise.
		if t.acted[i] && s.Stack > callNeed {
			return false
		}
		minRaise := t.MinRaiseAmount()
		actual := t.commit(s, s.Stack)
		record.Action = ActionAllIn
		record.Amount = &actual
		if inc := actual - callNeed; inc >= minRaise {
			t.reopen(i, inc, nick)
		} else {
			t.acted[i] = true
		}

	default:
		return false
	}

	t.currentIdx = (i + 1) % len(t.seats)

	t.recent = append(t.recent, record)
	if len(t.recent) > recentActionLimit {
		t.recent = t.recent[1:]
	}

	t.maybeAdvance()
	return true
}

// reopen records a full raise: the increment becomes the new min-raise and
// every other seat must act again before the street can end.
func (t *Table) reopen(raiserIdx, increment int, nick string) {
	t.lastRaise = increment
	t.lastBettor = nick
	for j := range t.acted {
		t.acted[j] = j == raiserIdx
	}
}
