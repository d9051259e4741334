package deck

import (
	rand "math/rand/v2"

	"github.com/samifarahneto/gamecartas/internal/randutil"
)

// Deck represents an ordered sequence of 52 unique cards. A deck is built at
// hand start, consumed by Pop during dealing and discarded at hand end.
type Deck struct {
	cards []Card
	rng   *rand.Rand
}

// New creates a standard 52-card deck in canonical order, shuffled with a
// CSPRNG-seeded generator.
func New() *Deck {
	return NewWithRand(randutil.NewCrypto())
}

// NewWithRand creates a deck using the provided generator. Tests pass a
// seeded generator so deal order is reproducible.
func NewWithRand(rng *rand.Rand) *Deck {
	d := &Deck{
		cards: make([]Card, 0, 52),
		rng:   rng,
	}
	for suit := Spades; suit <= Clubs; suit++ {
		for rank := Two; rank <= Ace; rank++ {
			d.cards = append(d.cards, NewCard(rank, suit))
		}
	}
	return d
}

// Shuffle performs an in-place Fisher-Yates permutation.
func (d *Deck) Shuffle() {
	for i := len(d.cards) - 1; i > 0; i-- {
		j := d.rng.IntN(i + 1)
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	}
}

// Pop removes and returns the top card. The second return is false when the
// deck is exhausted.
func (d *Deck) Pop() (Card, bool) {
	if len(d.cards) == 0 {
		return Card{}, false
	}
	card := d.cards[len(d.cards)-1]
	d.cards = d.cards[:len(d.cards)-1]
	return card, true
}

// Burn discards the top card. The burn card is irrecoverable.
func (d *Deck) Burn() {
	_, _ = d.Pop()
}

// Remaining returns the number of cards left in the deck.
func (d *Deck) Remaining() int {
	return len(d.cards)
}
