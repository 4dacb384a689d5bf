package swipe

import (
	"slices"

	"github.com/KevDevLee/namens-tinder/internal/domain"
)

// Card is one name shown for swiping.
type Card struct {
	NameID uint64        `json:"name_id"`
	Name   string        `json:"name"`
	Gender domain.Gender `json:"gender"`
}

// Deck is the ordered pile of remaining cards; index 0 is on top.
type Deck struct {
	cards []Card
}

func NewDeck(cards []Card) *Deck {
	return &Deck{cards: slices.Clone(cards)}
}

func (d *Deck) Len() int { return len(d.cards) }

func (d *Deck) Front() (Card, bool) {
	if len(d.cards) == 0 {
		return Card{}, false
	}
	return d.cards[0], true
}

func (d *Deck) Pop() (Card, bool) {
	c, ok := d.Front()
	if ok {
		d.cards = d.cards[1:]
	}
	return c, ok
}

func (d *Deck) PushFront(c Card) {
	d.cards = slices.Insert(d.cards, 0, c)
}

func (d *Deck) Cards() []Card {
	return slices.Clone(d.cards)
}
