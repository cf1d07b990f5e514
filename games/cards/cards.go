// Package cards models a standard 52-card deck and blackjack hand values.
package cards

import (
	"errors"
	"strings"
)

// ErrDeckEmpty is returned when drawing from an exhausted deck
var ErrDeckEmpty = errors.New("deck is empty")

// Ranks in deck order
var Ranks = []string{"A", "2", "3", "4", "5", "6", "7", "8", "9", "10", "J", "Q", "K"}

// Suits in deck order
var Suits = []string{"♠", "♥", "♦", "♣"}

// Card is a single playing card
type Card struct {
	Rank string
	Suit string
}

func (c Card) String() string {
	return c.Rank + c.Suit
}

// IsAce reports whether the card is an ace
func (c Card) IsAce() bool {
	return c.Rank == "A"
}

// Value returns the blackjack value with aces counted as 11
func (c Card) Value() int {
	switch c.Rank {
	case "A":
		return 11
	case "J", "Q", "K", "10":
		return 10
	default:
		// "2".."9"
		return int(c.Rank[0] - '0')
	}
}

// Shuffler reorders n elements through swap
type Shuffler interface {
	Shuffle(n int, swap func(i, j int))
}

// Deck is a single shuffled deck dealt from the top
type Deck struct {
	cards []Card
}

// NewDeck returns all 52 cards in rank-major order
func NewDeck() *Deck {
	cards := make([]Card, 0, len(Ranks)*len(Suits))
	for _, suit := range Suits {
		for _, rank := range Ranks {
			cards = append(cards, Card{Rank: rank, Suit: suit})
		}
	}
	return &Deck{cards: cards}
}

// NewShuffledDeck returns a fresh deck shuffled by rng
func NewShuffledDeck(rng Shuffler) *Deck {
	d := NewDeck()
	rng.Shuffle(len(d.cards), func(i, j int) {
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	})
	return d
}

// NewStackedDeck returns a deck that deals cards in the given order
func NewStackedDeck(cards ...Card) *Deck {
	return &Deck{cards: append([]Card(nil), cards...)}
}

// Draw removes and returns the top card
func (d *Deck) Draw() (Card, error) {
	if len(d.cards) == 0 {
		return Card{}, ErrDeckEmpty
	}
	c := d.cards[0]
	d.cards = d.cards[1:]
	return c, nil
}

// Remaining returns the number of undealt cards
func (d *Deck) Remaining() int {
	return len(d.cards)
}

// Hand is an ordered set of dealt cards
type Hand []Card

// Total returns the best blackjack total, demoting aces from 11 to 1 while over 21
func (h Hand) Total() int {
	total, aces := 0, 0
	for _, c := range h {
		total += c.Value()
		if c.IsAce() {
			aces++
		}
	}
	for total > 21 && aces > 0 {
		total -= 10
		aces--
	}
	return total
}

// IsBlackjack reports a two-card 21
func (h Hand) IsBlackjack() bool {
	return len(h) == 2 && h.Total() == 21
}

// IsBust reports a total over 21
func (h Hand) IsBust() bool {
	return h.Total() > 21
}

func (h Hand) String() string {
	parts := make([]string, len(h))
	for i, c := range h {
		parts[i] = c.String()
	}
	return strings.Join(parts, " ")
}
