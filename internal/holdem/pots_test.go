package holdem

import (
	"testing"
)

func TestSidePotsThreeWayAllIn(t *testing.T) {
	tbl := newTestTable(t, DefaultConfig(), 17, "alice", "bob", "carol")
	tbl.seat("alice").Stack = 100
	tbl.seat("bob").Stack = 200
	tbl.seat("carol").Stack = 300
	if err := tbl.StartHand(); err != nil {
		t.Fatalf("StartHand failed: %v", err)
	}

	// alice dealer, bob sb, carol bb; everyone shoves preflop.
	mustApply(t, tbl, "alice", ActionAllIn, 0)
	mustApply(t, tbl, "bob", ActionAllIn, 0)
	mustApply(t, tbl, "carol", ActionAllIn, 0)

	// The board ran out and the hand resolved; commitment levels still
	// describe the layering.
	if tbl.Street() != Showdown {
		t.Fatalf("Street = %s, want showdown", tbl.Street())
	}

	pots := tbl.SidePots()
	if len(pots) != 3 {
		t.Fatalf("Expected 3 pot layers, got %d: %+v", len(pots), pots)
	}

	expected := []struct {
		level    int
		amount   int
		eligible int
	}{
		{100, 300, 3}, // 100 from each
		{200, 200, 2}, // next 100 from bob and carol
		{300, 100, 1}, // carol's uncalled surplus
	}
	for i, want := range expected {
		if pots[i].Level != want.level {
			t.Errorf("Layer %d level = %d, want %d", i, pots[i].Level, want.level)
		}
		if pots[i].Amount != want.amount {
			t.Errorf("Layer %d amount = %d, want %d", i, pots[i].Amount, want.amount)
		}
		if len(pots[i].Eligible) != want.eligible {
			t.Errorf("Layer %d eligible = %v, want %d seats", i, pots[i].Eligible, want.eligible)
		}
	}

	sum := 0
	for _, p := range pots {
		sum += p.Amount
	}
	if sum != 600 {
		t.Errorf("Layers sum to %d, want the whole pot 600", sum)
	}
	if totalChips(tbl) != 600 {
		t.Errorf("Chips not conserved: %d", totalChips(tbl))
	}
}

func TestSidePotsAbsorbFoldedContributions(t *testing.T) {
	tbl := newTestTable(t, DefaultConfig(), 17, "alice", "bob", "carol")
	tbl.seat("bob").Stack = 50
	if err := tbl.StartHand(); err != nil {
		t.Fatalf("StartHand failed: %v", err)
	}

	// alice opens to 100, bob calls all-in short, carol folds her blind.
	mustApply(t, tbl, "alice", ActionRaise, 90)
	mustApply(t, tbl, "bob", ActionCall, 0)
	mustApply(t, tbl, "carol", ActionFold, 0)

	pots := tbl.SidePots()
	if len(pots) != 2 {
		t.Fatalf("Expected 2 pot layers, got %d: %+v", len(pots), pots)
	}

	// Main pot: 50 from alice, 50 from bob, plus carol's dead 10.
	if pots[0].Level != 50 || pots[0].Amount != 110 {
		t.Errorf("Main pot = level %d amount %d, want 50/110", pots[0].Level, pots[0].Amount)
	}
	if len(pots[0].Eligible) != 2 {
		t.Errorf("Main pot eligible = %v, want alice and bob", pots[0].Eligible)
	}

	// Side pot: alice's surplus, hers alone.
	if pots[1].Level != 100 || pots[1].Amount != 50 {
		t.Errorf("Side pot = level %d amount %d, want 100/50", pots[1].Level, pots[1].Amount)
	}
	if len(pots[1].Eligible) != 1 || pots[1].Eligible[0] != "alice" {
		t.Errorf("Side pot eligible = %v, want [alice]", pots[1].Eligible)
	}

	// Everything committed this hand: 100 + 50 + carol's dead 10.
	sum := pots[0].Amount + pots[1].Amount
	if sum != 160 {
		t.Errorf("Layers sum to %d, want 160", sum)
	}
}

func TestSidePotsSingleLevel(t *testing.T) {
	tbl := newTestTable(t, DefaultConfig(), 17, "alice", "bob")
	if err := tbl.StartHand(); err != nil {
		t.Fatalf("StartHand failed: %v", err)
	}
	mustApply(t, tbl, "alice", ActionCall, 0)

	pots := tbl.SidePots()
	if len(pots) != 1 {
		t.Fatalf("Expected a single pot layer, got %d", len(pots))
	}
	if pots[0].Amount != 20 || len(pots[0].Eligible) != 2 {
		t.Errorf("Pot = %+v, want amount 20 with both eligible", pots[0])
	}
}
