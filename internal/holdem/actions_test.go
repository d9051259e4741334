package holdem

import (
	"testing"
)

func TestMinRaiseEnforced(t *testing.T) {
	tbl := newTestTable(t, DefaultConfig(), 11, "alice", "bob", "carol")
	if err := tbl.StartHand(); err != nil {
		t.Fatalf("StartHand failed: %v", err)
	}

	// No raise yet, so the minimum increment is the big blind.
	if tbl.MinRaiseAmount() != 10 {
		t.Fatalf("MinRaiseAmount = %d, want 10", tbl.MinRaiseAmount())
	}
	if tbl.Apply("alice", ActionRaise, 5) {
		t.Error("Raise below the big blind should be rejected")
	}
	mustApply(t, tbl, "alice", ActionRaise, 20)

	// The last full raise sets the new minimum.
	if tbl.MinRaiseAmount() != 20 {
		t.Errorf("MinRaiseAmount = %d, want 20", tbl.MinRaiseAmount())
	}
	if tbl.Apply("bob", ActionRaise, 15) {
		t.Error("Raise below the last full raise should be rejected")
	}
	mustApply(t, tbl, "bob", ActionRaise, 20)
}

func TestExactMinRaiseReopensAction(t *testing.T) {
	tbl := newTestTable(t, DefaultConfig(), 11, "alice", "bob")
	if err := tbl.StartHand(); err != nil {
		t.Fatalf("StartHand failed: %v", err)
	}

	// Heads-up: alice is dealer and small blind, first to act.
	mustApply(t, tbl, "alice", ActionRaise, 10)
	mustApply(t, tbl, "bob", ActionRaise, 10)

	// Bob's exact minimum raise re-opened the action; alice may raise again.
	if !tbl.Apply("alice", ActionRaise, 10) {
		t.Error("Exact min-raise should re-open action for the original raiser")
	}
}

func TestRaiseDefaultsToMinimum(t *testing.T) {
	tbl := newTestTable(t, DefaultConfig(), 11, "alice", "bob")
	if err := tbl.StartHand(); err != nil {
		t.Fatalf("StartHand failed: %v", err)
	}

	// Amount 0 means "minimum raise": call 5 plus increment 10.
	mustApply(t, tbl, "alice", ActionRaise, 0)
	if tbl.HighestBet() != 20 {
		t.Errorf("HighestBet = %d after default raise, want 20", tbl.HighestBet())
	}
}

func TestShortAllInDoesNotReopenForActedSeats(t *testing.T) {
	tbl := newTestTable(t, DefaultConfig(), 11, "alice", "bob", "carol", "dave")
	// dave is UTG; alice gets a short stack so her shove is below a full raise.
	tbl.seat("alice").Stack = 40
	if err := tbl.StartHand(); err != nil {
		t.Fatalf("StartHand failed: %v", err)
	}
	if tbl.ToAct() != "dave" {
		t.Fatalf("ToAct = %s, want dave (UTG)", tbl.ToAct())
	}

	// dave raises to 30; min raise is now 20.
	mustApply(t, tbl, "dave", ActionRaise, 20)

	// alice shoves 40 total: only 10 over dave's bet, short of a full raise.
	mustApply(t, tbl, "alice", ActionAllIn, 0)
	if tbl.MinRaiseAmount() != 20 {
		t.Errorf("Short all-in changed the min raise to %d", tbl.MinRaiseAmount())
	}

	mustApply(t, tbl, "bob", ActionFold, 0)
	mustApply(t, tbl, "carol", ActionCall, 0)

	// Action returns to dave, who already acted since the last full raise:
	// he may call or fold but not raise again.
	if tbl.ToAct() != "dave" {
		t.Fatalf("ToAct = %s, want dave", tbl.ToAct())
	}
	if tbl.Apply("dave", ActionRaise, 20) {
		t.Error("Seat that already acted must not re-raise after a short all-in")
	}
	mustApply(t, tbl, "dave", ActionCall, 0)

	if tbl.Street() != Flop {
		t.Errorf("Street = %s after settled preflop, want flop", tbl.Street())
	}
}

func TestBigBlindMayRaiseAfterShortAllIn(t *testing.T) {
	tbl := newTestTable(t, DefaultConfig(), 11, "alice", "bob", "carol", "dave")
	tbl.seat("alice").Stack = 40
	if err := tbl.StartHand(); err != nil {
		t.Fatalf("StartHand failed: %v", err)
	}

	mustApply(t, tbl, "dave", ActionRaise, 20)
	mustApply(t, tbl, "alice", ActionAllIn, 0)
	mustApply(t, tbl, "bob", ActionFold, 0)

	// carol (the big blind) has not acted since dave's full raise, so the
	// short all-in in between does not bar her from raising.
	if !tbl.Apply("carol", ActionRaise, 20) {
		t.Error("Big blind should still be allowed to raise")
	}
}

func TestFullAllInReopensAction(t *testing.T) {
	tbl := newTestTable(t, DefaultConfig(), 11, "alice", "bob", "carol")
	tbl.seat("bob").Stack = 200
	if err := tbl.StartHand(); err != nil {
		t.Fatalf("StartHand failed: %v", err)
	}

	// alice opens to 30, bob shoves 200: an increment of 170, a full raise.
	mustApply(t, tbl, "alice", ActionRaise, 20)
	mustApply(t, tbl, "bob", ActionAllIn, 0)

	if tbl.MinRaiseAmount() != 170 {
		t.Errorf("MinRaiseAmount = %d after full shove, want 170", tbl.MinRaiseAmount())
	}
	mustApply(t, tbl, "carol", ActionFold, 0)

	// alice faces the full raise and may re-raise.
	if !tbl.Apply("alice", ActionRaise, 170) {
		t.Error("Full all-in must re-open action for earlier seats")
	}
}

func TestCallRecordsAllInWhenStackRunsOut(t *testing.T) {
	tbl := newTestTable(t, DefaultConfig(), 11, "alice", "bob", "carol")
	tbl.seat("bob").Stack = 20
	if err := tbl.StartHand(); err != nil {
		t.Fatalf("StartHand failed: %v", err)
	}

	mustApply(t, tbl, "alice", ActionRaise, 40)
	// bob's call consumes his whole stack; the record shows all_in.
	mustApply(t, tbl, "bob", ActionCall, 0)

	recent := tbl.RecentActions()
	last := recent[len(recent)-1]
	if last.Player != "bob" || last.Action != ActionAllIn {
		t.Errorf("Record = %+v, want bob all_in", last)
	}
	if last.Amount == nil || *last.Amount != 15 {
		t.Errorf("Record amount = %v, want 15 (stack remainder)", last.Amount)
	}
}

func TestRecentActionsCappedAtTen(t *testing.T) {
	tbl := newTestTable(t, DefaultConfig(), 11, "alice", "bob")
	if err := tbl.StartHand(); err != nil {
		t.Fatalf("StartHand failed: %v", err)
	}

	// Trade minimum raises to accumulate more than ten actions on one street.
	for i := 0; i < 12; i++ {
		nick := tbl.ToAct()
		if !tbl.Apply(nick, ActionRaise, 0) {
			t.Fatalf("Raise %d by %s rejected", i, nick)
		}
	}
	if n := len(tbl.RecentActions()); n != 10 {
		t.Errorf("RecentActions length = %d, want 10", n)
	}
}

func TestActedSeatMayNotShoveOverTheCall(t *testing.T) {
	tbl := newTestTable(t, DefaultConfig(), 11, "alice", "bob", "carol", "dave")
	tbl.seat("alice").Stack = 40
	if err := tbl.StartHand(); err != nil {
		t.Fatalf("StartHand failed: %v", err)
	}

	mustApply(t, tbl, "dave", ActionRaise, 20)
	mustApply(t, tbl, "alice", ActionAllIn, 0)
	mustApply(t, tbl, "bob", ActionFold, 0)
	mustApply(t, tbl, "carol", ActionCall, 0)

	// dave already acted since his own full raise; shoving for more than
	// the call amount is a re-raise by another name and stays barred.
	if tbl.Apply("dave", ActionAllIn, 0) {
		t.Error("Seat that already acted must not shove over the call amount")
	}
	mustApply(t, tbl, "dave", ActionCall, 0)

	if tbl.Street() != Flop {
		t.Errorf("Street = %s after settled preflop, want flop", tbl.Street())
	}
}

func TestActedSeatMayShoveAsCall(t *testing.T) {
	tbl := newTestTable(t, DefaultConfig(), 11, "alice", "bob", "carol", "dave")
	tbl.seat("alice").Stack = 40
	tbl.seat("dave").Stack = 40
	if err := tbl.StartHand(); err != nil {
		t.Fatalf("StartHand failed: %v", err)
	}

	mustApply(t, tbl, "dave", ActionRaise, 20)
	mustApply(t, tbl, "alice", ActionAllIn, 0)
	mustApply(t, tbl, "bob", ActionFold, 0)
	mustApply(t, tbl, "carol", ActionCall, 0)

	// dave's whole stack no more than covers the call, so the shove is a
	// call and stays legal even though he has already acted.
	if !tbl.Apply("dave", ActionAllIn, 0) {
		t.Error("All-in that only covers the call must stay legal")
	}
}
