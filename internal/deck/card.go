package deck

import "fmt"

// Suit represents a card suit
type Suit int

const (
	Spades Suit = iota
	Hearts
	Diamonds
	Clubs
)

// String returns the single-letter wire code for a suit
func (s Suit) String() string {
	switch s {
	case Spades:
		return "S"
	case Hearts:
		return "H"
	case Diamonds:
		return "D"
	case Clubs:
		return "C"
	default:
		return "?"
	}
}

// Rank represents a card rank. Deuce is low, ace is high; the ace also
// serves as the low end of the wheel (A-2-3-4-5) during evaluation.
type Rank int

const (
	Two Rank = iota + 2
	Three
	Four
	Five
	Six
	Seven
	Eight
	Nine
	Ten
	Jack
	Queen
	King
	Ace
)

// String returns the single-letter wire code for a rank
func (r Rank) String() string {
	switch r {
	case Ten:
		return "T"
	case Jack:
		return "J"
	case Queen:
		return "Q"
	case King:
		return "K"
	case Ace:
		return "A"
	default:
		if r >= Two && r <= Nine {
			return string(rune('0' + int(r)))
		}
		return "?"
	}
}

// Card represents a playing card
type Card struct {
	Rank Rank
	Suit Suit
}

// NewCard creates a new card
func NewCard(rank Rank, suit Suit) Card {
	return Card{Rank: rank, Suit: suit}
}

// String returns the two-character identifier for a card (e.g. "AS", "TD")
func (c Card) String() string {
	return c.Rank.String() + c.Suit.String()
}

// Value returns the numeric value of the card for comparison (deuce 2, ace 14)
func (c Card) Value() int {
	return int(c.Rank)
}

// Parse converts a two-character identifier back into a Card.
func Parse(code string) (Card, error) {
	if len(code) != 2 {
		return Card{}, fmt.Errorf("invalid card %q", code)
	}

	var rank Rank
	switch code[0] {
	case 'T':
		rank = Ten
	case 'J':
		rank = Jack
	case 'Q':
		rank = Queen
	case 'K':
		rank = King
	case 'A':
		rank = Ace
	default:
		if code[0] < '2' || code[0] > '9' {
			return Card{}, fmt.Errorf("invalid rank in card %q", code)
		}
		rank = Rank(code[0] - '0')
	}

	var suit Suit
	switch code[1] {
	case 'S':
		suit = Spades
	case 'H':
		suit = Hearts
	case 'D':
		suit = Diamonds
	case 'C':
		suit = Clubs
	default:
		return Card{}, fmt.Errorf("invalid suit in card %q", code)
	}

	return Card{Rank: rank, Suit: suit}, nil
}

// MarshalJSON encodes the card as its two-character identifier.
func (c Card) MarshalJSON() ([]byte, error) {
	return []byte(`"` + c.String() + `"`), nil
}

// UnmarshalJSON decodes a two-character identifier.
func (c *Card) UnmarshalJSON(data []byte) error {
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return fmt.Errorf("invalid card literal %s", data)
	}
	card, err := Parse(string(data[1 : len(data)-1]))
	if err != nil {
		return err
	}
	*c = card
	return nil
}
