package server

import (
	"encoding/json"

	"github.com/samifarahneto/gamecartas/internal/deck"
	"github.com/samifarahneto/gamecartas/internal/holdem"
)

// Frame type discriminators shared by both directions.
const (
	FrameTypeState = "state"
	FrameTypeError = "error"
	FrameTypeChat  = "chat"

	FrameTypeStart  = "start"
	FrameTypeAction = "action"
)

// ClientFrame is an inbound command frame. Fields beyond Type are populated
// depending on the discriminator.
type ClientFrame struct {
	Type   string `json:"type"`
	From   string `json:"from,omitempty"`
	Text   string `json:"text,omitempty"`
	Action string `json:"action,omitempty"`
	Amount int    `json:"amount,omitempty"` // raise increment above highest bet
}

// StateFrame is the per-connection view of a table. Hole cards are the
// recipient's own; everyone's cards appear in AllHoles only at showdown.
type StateFrame struct {
	Type          string                 `json:"type"`
	Players       []string               `json:"players"`
	Started       bool                   `json:"started"`
	Community     []deck.Card            `json:"community"`
	Hole          []deck.Card            `json:"hole"`
	Pot           int                    `json:"pot"`
	Street        string                 `json:"street"`
	ToAct         *string                `json:"toAct"`
	Winners       []string               `json:"winners"`
	RecentActions []holdem.ActionRecord  `json:"recentActions"`
	CallAmount    *int                   `json:"callAmount"`
	Stacks        map[string]int         `json:"stacks"`
	Dealer        string                 `json:"dealer"`
	SB            string                 `json:"sb"`
	BB            string                 `json:"bb"`
	MinRaise      *int                   `json:"minRaise"`
	AllHoles      map[string][]deck.Card `json:"allHoles"`
}

// ErrorFrame carries a human-readable failure.
type ErrorFrame struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// ChatFrame is fanned out verbatim to a table's connections.
type ChatFrame struct {
	Type string `json:"type"`
	From string `json:"from"`
	Text string `json:"text"`
}

// BuildStateFrame projects table state for one recipient. It is a pure
// function of (table, players, nick) so broadcasts can tailor frames per
// connection without extra locking.
func BuildStateFrame(t *holdem.Table, players []string, nick string) StateFrame {
	frame := StateFrame{
		Type:          FrameTypeState,
		Players:       players,
		Started:       t.Started(),
		Community:     []deck.Card{},
		Hole:          []deck.Card{},
		Pot:           t.Pot(),
		Street:        t.Street().String(),
		RecentActions: t.RecentActions(),
		Stacks:        t.Stacks(),
		Dealer:        t.Dealer(),
		SB:            t.SmallBlindPlayer(),
		BB:            t.BigBlindPlayer(),
		AllHoles:      map[string][]deck.Card{},
	}
	if frame.RecentActions == nil {
		frame.RecentActions = []holdem.ActionRecord{}
	}

	if !t.Started() {
		return frame
	}

	// The board stays hidden until the flop is dealt.
	if t.Street() != holdem.Preflop {
		frame.Community = t.Community()
	}
	if hole := t.Hole(nick); hole != nil {
		frame.Hole = hole
	}

	if toAct := t.ToAct(); toAct != "" {
		frame.ToAct = &toAct
		if toAct == nick {
			call := t.CallAmount(nick)
			minRaise := t.MinRaiseAmount()
			frame.CallAmount = &call
			frame.MinRaise = &minRaise
		}
	}

	if t.Street() == holdem.Showdown {
		frame.Winners = t.Winners()
		frame.AllHoles = t.AllHoles()
	}

	return frame
}

func encodeFrame(v any) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		// Frames are plain data structs; a marshal failure is a programming
		// error, not a runtime condition.
		panic("server: frame marshal: " + err.Error())
	}
	return b
}

func errorFrame(text string) []byte {
	return encodeFrame(ErrorFrame{Type: FrameTypeError, Text: text})
}
