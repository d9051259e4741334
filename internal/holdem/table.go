// Package holdem implements the authoritative No-Limit Texas Hold'em table
// state machine: blind posting, betting-round legality, min-raise re-opening,
// all-in resolution with side pots and 7-card showdown evaluation.
//
// A Table is not safe for concurrent use; callers serialize access per table.
package holdem

import (
	"errors"
	rand "math/rand/v2"

	"github.com/samifarahneto/gamecartas/internal/deck"
	"github.com/samifarahneto/gamecartas/internal/randutil"
)

// Street represents the betting round
type Street int

const (
	Preflop Street = iota
	Flop
	Turn
	River
	Showdown
)

func (s Street) String() string {
	return [...]string{"preflop", "flop", "turn", "river", "showdown"}[s]
}

var (
	ErrTableFull        = errors.New("table full")
	ErrNotEnoughPlayers = errors.New("need at least 2 players with chips")
)

// Seat holds the per-player table state. Folded and AllIn are monotone within
// a hand. Connected tracks whether a live channel is attached to the nickname;
// a disconnected seat stays in the current hand but is not dealt into the next.
type Seat struct {
	Nick      string
	Stack     int
	Hole      []deck.Card
	Bet       int // chips committed this street
	Committed int // chips committed this hand
	Folded    bool
	AllIn     bool
	Connected bool
}

// ActionRecord is one entry of the recent-action history.
type ActionRecord struct {
	Player string `json:"player"`
	Action string `json:"action"`
	Amount *int   `json:"amount,omitempty"`
}

const recentActionLimit = 10

// Config carries the table parameters.
type Config struct {
	MaxPlayers int
	BuyIn      int
	SmallBlind int
	BigBlind   int
}

// DefaultConfig returns the stock table parameters.
func DefaultConfig() Config {
	return Config{MaxPlayers: 9, BuyIn: 1000, SmallBlind: 5, BigBlind: 10}
}

// Table is the in-memory record for one poker table. It owns the deck, hole
// cards and betting accumulators; nothing outside the package mutates them.
type Table struct {
	cfg Config
	rng *rand.Rand

	seats     []*Seat
	deck      *deck.Deck
	community []deck.Card

	started bool
	street  Street
	pot     int
	awarded int

	dealerIdx  int
	currentIdx int
	acted      []bool // per seat, since the last full raise this street
	lastRaise  int
	lastBettor string

	recent   []ActionRecord
	winners  []string
	resolved bool
}

// NewTable creates an idle table.
func NewTable(cfg Config) *Table {
	return NewTableWithRand(cfg, randutil.NewCrypto())
}

// NewTableWithRand creates a table with an injected RNG so deals are
// auditable by seed.
func NewTableWithRand(cfg Config, rng *rand.Rand) *Table {
	return &Table{
		cfg:       cfg,
		rng:       rng,
		dealerIdx: -1, // first hand puts the button on seat 0
		street:    Preflop,
	}
}

// AddSeat seats a nickname with the configured buy-in, or re-attaches an
// existing seat on reconnect. Reconnection preserves stack, hole cards and
// fold/all-in flags.
func (t *Table) AddSeat(nick string) error {
	if s := t.seat(nick); s != nil {
		s.Connected = true
		return nil
	}
	if len(t.seats) >= t.cfg.MaxPlayers {
		return ErrTableFull
	}
	t.seats = append(t.seats, &Seat{
		Nick:      nick,
		Stack:     t.cfg.BuyIn,
		Connected: true,
		// A seat taken mid-hand was never dealt in; it sits the current hand
		// out and plays from the next deal.
		Folded: t.started,
	})
	return nil
}

// SetConnected flips the connected flag for a seated nickname.
func (t *Table) SetConnected(nick string, connected bool) {
	if s := t.seat(nick); s != nil {
		s.Connected = connected
	}
}

// PurgeDisconnected removes disconnected seats between hands. During an
// active hand seats are kept so the hand can finish and players can
// re-attach by nickname.
func (t *Table) PurgeDisconnected() {
	if t.started {
		return
	}
	kept := t.seats[:0]
	for _, s := range t.seats {
		if s.Connected {
			kept = append(kept, s)
		}
	}
	t.seats = kept
}

// StartHand deals a new hand. Zero-stack and disconnected seats are dropped
// first; at least two eligible seats must remain.
func (t *Table) StartHand() error {
	kept := make([]*Seat, 0, len(t.seats))
	for _, s := range t.seats {
		if s.Stack > 0 && s.Connected {
			kept = append(kept, s)
		}
	}
	if len(kept) < 2 {
		return ErrNotEnoughPlayers
	}
	t.seats = kept
	n := len(t.seats)

	t.dealerIdx = (t.dealerIdx + 1) % n

	t.deck = deck.NewWithRand(t.rng)
	t.deck.Shuffle()
	t.community = nil
	t.pot = 0
	t.awarded = 0
	t.winners = nil
	t.resolved = false
	t.recent = nil
	t.lastRaise = 0
	t.lastBettor = ""
	t.acted = make([]bool, n)

	for _, s := range t.seats {
		s.Hole = nil
		s.Bet = 0
		s.Committed = 0
		s.Folded = false
		s.AllIn = false
	}

	t.started = true
	t.street = Preflop

	// Standard positions; heads-up the dealer posts the small blind and acts
	// first preflop.
	var sbIdx, bbIdx int
	if n == 2 {
		sbIdx = t.dealerIdx
		bbIdx = (t.dealerIdx + 1) % n
	} else {
		sbIdx = (t.dealerIdx + 1) % n
		bbIdx = (t.dealerIdx + 2) % n
	}

	// Two passes of one card each, starting from the small blind.
	for pass := 0; pass < 2; pass++ {
		for k := 0; k < n; k++ {
			s := t.seats[(sbIdx+k)%n]
			card, _ := t.deck.Pop()
			s.Hole = append(s.Hole, card)
		}
	}

	// Either blind may put the seat all-in.
	t.commit(t.seats[sbIdx], t.cfg.SmallBlind)
	t.commit(t.seats[bbIdx], t.cfg.BigBlind)

	t.currentIdx = (bbIdx + 1) % n
	return nil
}

// CancelHand aborts an in-progress hand, refunding each seat its committed
// chips, and returns the table to idle.
func (t *Table) CancelHand() {
	if !t.started {
		return
	}
	for _, s := range t.seats {
		s.Stack += s.Committed
		s.Bet = 0
		s.Committed = 0
		s.Folded = false
		s.AllIn = false
		s.Hole = nil
	}
	t.pot = 0
	t.awarded = 0
	t.deck = nil
	t.community = nil
	t.recent = nil
	t.winners = nil
	t.resolved = false
	t.started = false
	t.street = Preflop
}

// commit moves up to amount chips from the seat's stack into the pot and
// returns how many actually moved. Running out of chips marks the seat all-in.
func (t *Table) commit(s *Seat, amount int) int {
	actual := min(amount, s.Stack)
	s.Stack -= actual
	s.Bet += actual
	s.Committed += actual
	t.pot += actual
	if s.Stack == 0 && actual > 0 {
		s.AllIn = true
	}
	return actual
}

func (t *Table) seat(nick string) *Seat {
	for _, s := range t.seats {
		if s.Nick == nick {
			return s
		}
	}
	return nil
}

func (t *Table) seatIndex(nick string) int {
	for i, s := range t.seats {
		if s.Nick == nick {
			return i
		}
	}
	return -1
}

// firstActingFrom walks clockwise from idx and returns the first seat that
// can still act (not folded, not all-in), or -1.
func (t *Table) firstActingFrom(idx int) int {
	n := len(t.seats)
	if n == 0 {
		return -1
	}
	idx %= n
	for range t.seats {
		s := t.seats[idx]
		if !s.Folded && !s.AllIn {
			return idx
		}
		idx = (idx + 1) % n
	}
	return -1
}

// ToAct returns the nickname whose turn it is, or "" when no seat can act.
func (t *Table) ToAct() string {
	if !t.started || t.street == Showdown {
		return ""
	}
	idx := t.firstActingFrom(t.currentIdx)
	if idx < 0 {
		return ""
	}
	return t.seats[idx].Nick
}

// HighestBet returns the largest per-street commitment on the table.
func (t *Table) HighestBet() int {
	hb := 0
	for _, s := range t.seats {
		if s.Bet > hb {
			hb = s.Bet
		}
	}
	return hb
}

// CallAmount returns what nick must pay to call, capped by their stack.
func (t *Table) CallAmount(nick string) int {
	s := t.seat(nick)
	if s == nil {
		return 0
	}
	need := t.HighestBet() - s.Bet
	if need < 0 {
		need = 0
	}
	return min(need, s.Stack)
}

// MinRaiseAmount returns the minimum legal raise increment: the last full
// raise this street, or the big blind when none has happened yet.
func (t *Table) MinRaiseAmount() int {
	if t.lastRaise > 0 {
		return t.lastRaise
	}
	return t.cfg.BigBlind
}

// nextStreet collects bets, deals the next community cards and rearms the
// betting round. From the river it moves straight to showdown.
func (t *Table) nextStreet() {
	if !t.started {
		return
	}
	for _, s := range t.seats {
		s.Bet = 0
	}

	switch t.street {
	case Preflop:
		t.deck.Burn()
		for i := 0; i < 3; i++ {
			card, _ := t.deck.Pop()
			t.community = append(t.community, card)
		}
		t.street = Flop
	case Flop:
		t.deck.Burn()
		card, _ := t.deck.Pop()
		t.community = append(t.community, card)
		t.street = Turn
	case Turn:
		t.deck.Burn()
		card, _ := t.deck.Pop()
		t.community = append(t.community, card)
		t.street = River
	case River:
		t.street = Showdown
		return
	default:
		return
	}

	t.lastRaise = 0
	t.lastBettor = ""
	t.recent = nil
	t.acted = make([]bool, len(t.seats))
	if idx := t.firstActingFrom((t.dealerIdx + 1) % len(t.seats)); idx >= 0 {
		t.currentIdx = idx
	}
}

// activeSeats returns the non-folded seats.
func (t *Table) activeSeats() []*Seat {
	active := make([]*Seat, 0, len(t.seats))
	for _, s := range t.seats {
		if !s.Folded {
			active = append(active, s)
		}
	}
	return active
}

// betsMatched reports whether every seat still acting has matched the
// highest bet, regardless of whether it has had its say this street.
func (t *Table) betsMatched() bool {
	hb := t.HighestBet()
	for _, s := range t.seats {
		if s.Folded || s.AllIn {
			continue
		}
		if s.Bet != hb {
			return false
		}
	}
	return true
}

// streetSettled reports whether every seat still acting has matched the
// highest bet and acted since the last full raise.
func (t *Table) streetSettled() bool {
	hb := t.HighestBet()
	for i, s := range t.seats {
		if s.Folded || s.AllIn {
			continue
		}
		if s.Bet != hb || !t.acted[i] {
			return false
		}
	}
	return true
}

// maybeAdvance ends the betting round when it is settled. With one non-folded
// seat left the hand jumps straight to showdown.
func (t *Table) maybeAdvance() {
	if len(t.activeSeats()) <= 1 {
		t.street = Showdown
		return
	}
	if t.streetSettled() {
		t.nextStreet()
	}
}

// AutoAdvance drives the table forward after an action: fast-forwards to
// showdown on fold-to-one, runs out the board when every active seat is
// all-in, and advances streets that need no further input. Iterations are
// bounded defensively.
func (t *Table) AutoAdvance() {
	for i := 0; i < 10 && t.started && t.street != Showdown; i++ {
		active := t.activeSeats()
		if len(active) <= 1 {
			t.street = Showdown
			break
		}

		// With at most one seat able to act and every live bet matched,
		// betting is moot: deal the board out to showdown.
		canAct := 0
		for _, s := range active {
			if !s.AllIn {
				canAct++
			}
		}
		if canAct <= 1 && t.betsMatched() {
			for t.street != Showdown {
				t.nextStreet()
			}
			break
		}

		if t.ToAct() == "" {
			t.nextStreet()
			if t.ToAct() == "" && t.street != Showdown {
				continue
			}
		}
		break
	}

	if t.started && t.street == Showdown {
		t.ResolveShowdown()
	}
}

// Accessors used by the session layer's per-seat projection.

func (t *Table) Started() bool          { return t.started }
func (t *Table) Street() Street         { return t.street }
func (t *Table) Pot() int               { return t.pot }
func (t *Table) Community() []deck.Card { return t.community }
func (t *Table) SeatCount() int         { return len(t.seats) }
func (t *Table) MaxPlayers() int        { return t.cfg.MaxPlayers }

// Players returns the seated nicknames in seat order.
func (t *Table) Players() []string {
	nicks := make([]string, len(t.seats))
	for i, s := range t.seats {
		nicks[i] = s.Nick
	}
	return nicks
}

// Stacks returns a nickname to chip-count map.
func (t *Table) Stacks() map[string]int {
	stacks := make(map[string]int, len(t.seats))
	for _, s := range t.seats {
		stacks[s.Nick] = s.Stack
	}
	return stacks
}

// Hole returns nick's hole cards, empty when not dealt in.
func (t *Table) Hole(nick string) []deck.Card {
	if s := t.seat(nick); s != nil {
		return s.Hole
	}
	return nil
}

// AllHoles returns the hole cards of every non-folded seat, for showdown.
func (t *Table) AllHoles() map[string][]deck.Card {
	holes := make(map[string][]deck.Card)
	for _, s := range t.seats {
		if !s.Folded && len(s.Hole) > 0 {
			holes[s.Nick] = s.Hole
		}
	}
	return holes
}

// Dealer returns the nickname on the button, "" when the table is empty.
func (t *Table) Dealer() string {
	if len(t.seats) == 0 || t.dealerIdx < 0 {
		return ""
	}
	return t.seats[t.dealerIdx%len(t.seats)].Nick
}

// SmallBlindPlayer returns the small-blind nickname for the current hand.
func (t *Table) SmallBlindPlayer() string {
	if !t.started || len(t.seats) < 2 {
		return ""
	}
	if len(t.seats) == 2 {
		return t.seats[t.dealerIdx].Nick
	}
	return t.seats[(t.dealerIdx+1)%len(t.seats)].Nick
}

// BigBlindPlayer returns the big-blind nickname for the current hand.
func (t *Table) BigBlindPlayer() string {
	if !t.started || len(t.seats) < 2 {
		return ""
	}
	if len(t.seats) == 2 {
		return t.seats[(t.dealerIdx+1)%len(t.seats)].Nick
	}
	return t.seats[(t.dealerIdx+2)%len(t.seats)].Nick
}

// RecentActions returns the trailing action history (at most 10 entries).
func (t *Table) RecentActions() []ActionRecord {
	return t.recent
}

// Winners returns the resolved showdown winners, nil before resolution.
func (t *Table) Winners() []string {
	return t.winners
}

// ConnectedSeats counts seats with a live channel attached.
func (t *Table) ConnectedSeats() int {
	n := 0
	for _, s := range t.seats {
		if s.Connected {
			n++
		}
	}
	return n
}

// EligibleSeats counts seats that could start a hand right now.
func (t *Table) EligibleSeats() int {
	n := 0
	for _, s := range t.seats {
		if s.Stack > 0 && s.Connected {
			n++
		}
	}
	return n
}
