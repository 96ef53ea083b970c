package cards

// Card identifies a card in the deck, from 0 to deck size - 1.
type Card int

// NoCard marks an empty board slot.
const NoCard Card = -1

// Rules decides whether cards form a valid set.
// Implementations must be safe for concurrent use.
type Rules interface {
	// IsValidSet reports whether the given cards form a valid set.
	IsValidSet(cards []Card) bool
	// ExistsValidSet reports whether any valid set can be drawn from pool.
	ExistsValidSet(pool []Card) bool
}

// Deck returns the ordered list of card ids for a deck of the given size.
func Deck(size int) []Card {
	deck := make([]Card, size)
	for i := range deck {
		deck[i] = Card(i)
	}
	return deck
}
