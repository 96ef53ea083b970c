package board

import (
	"fmt"
	"sort"
	"sync"

	"github.com/cbodonnell/setgame/pkg/cards"
)

// Board holds the cards dealt to the table and the tokens players have
// placed on them.
//
// All mutation happens inside a single exclusive region. The dealer enters
// it with Freeze and leaves it with Thaw; the card methods must only be
// called while frozen. Players never block on the region: TryPlaceToken and
// TryRemoveToken attempt a non-blocking acquisition and fail closed while
// the dealer holds it.
type Board struct {
	lock       sync.Mutex
	slotToCard []cards.Card
	cardToSlot map[cards.Card]int
	// tokens[slot] is the set of player IDs with a token on slot
	tokens []map[int]struct{}
}

// Slot describes one board slot in a snapshot.
type Slot struct {
	Slot   int        `json:"slot"`
	Card   cards.Card `json:"card"`
	Tokens []int      `json:"tokens"`
}

func New(size int) *Board {
	b := &Board{
		slotToCard: make([]cards.Card, size),
		cardToSlot: make(map[cards.Card]int, size),
		tokens:     make([]map[int]struct{}, size),
	}
	for i := range b.slotToCard {
		b.slotToCard[i] = cards.NoCard
		b.tokens[i] = make(map[int]struct{})
	}
	return b
}

// Size returns the number of slots on the board.
func (b *Board) Size() int {
	return len(b.slotToCard)
}

// Freeze enters the exclusive mutation region, blocking until it is free.
func (b *Board) Freeze() {
	b.lock.Lock()
}

// Thaw leaves the exclusive mutation region.
func (b *Board) Thaw() {
	b.lock.Unlock()
}

func (b *Board) validSlot(slot int) bool {
	return slot >= 0 && slot < len(b.slotToCard)
}

// PlaceCard puts card on an empty slot. The board must be frozen.
func (b *Board) PlaceCard(card cards.Card, slot int) error {
	if !b.validSlot(slot) {
		return fmt.Errorf("slot %d out of range", slot)
	}
	if b.slotToCard[slot] != cards.NoCard {
		return fmt.Errorf("slot %d already holds card %d", slot, b.slotToCard[slot])
	}
	if other, ok := b.cardToSlot[card]; ok {
		return fmt.Errorf("card %d already on slot %d", card, other)
	}
	b.slotToCard[slot] = card
	b.cardToSlot[card] = slot
	return nil
}

// RemoveCard empties slot and drops every token on it. It returns the
// removed card and the IDs of the players whose tokens were dropped.
// The board must be frozen.
func (b *Board) RemoveCard(slot int) (cards.Card, []int) {
	if !b.validSlot(slot) {
		return cards.NoCard, nil
	}
	card := b.slotToCard[slot]
	if card == cards.NoCard {
		return cards.NoCard, nil
	}
	owners := b.owners(slot)
	b.tokens[slot] = make(map[int]struct{})
	b.slotToCard[slot] = cards.NoCard
	delete(b.cardToSlot, card)
	return card, owners
}

// RemoveToken drops playerID's token from slot. The board must be frozen.
func (b *Board) RemoveToken(playerID, slot int) bool {
	if !b.validSlot(slot) {
		return false
	}
	if _, ok := b.tokens[slot][playerID]; !ok {
		return false
	}
	delete(b.tokens[slot], playerID)
	return true
}

// HasToken reports whether playerID has a token on slot. The board must be frozen.
func (b *Board) HasToken(playerID, slot int) bool {
	if !b.validSlot(slot) {
		return false
	}
	_, ok := b.tokens[slot][playerID]
	return ok
}

// Clear removes every card and token and returns the removed cards.
// The board must be frozen.
func (b *Board) Clear() []cards.Card {
	removed := make([]cards.Card, 0, len(b.cardToSlot))
	for slot := range b.slotToCard {
		if card, _ := b.RemoveCard(slot); card != cards.NoCard {
			removed = append(removed, card)
		}
	}
	return removed
}

// CardAt returns the card on slot, or cards.NoCard. The board must be frozen.
func (b *Board) CardAt(slot int) cards.Card {
	if !b.validSlot(slot) {
		return cards.NoCard
	}
	return b.slotToCard[slot]
}

// Cards returns the cards currently dealt. The board must be frozen.
func (b *Board) Cards() []cards.Card {
	dealt := make([]cards.Card, 0, len(b.cardToSlot))
	for _, card := range b.slotToCard {
		if card != cards.NoCard {
			dealt = append(dealt, card)
		}
	}
	return dealt
}

// EmptySlots returns the slots without a card. The board must be frozen.
func (b *Board) EmptySlots() []int {
	var empty []int
	for slot, card := range b.slotToCard {
		if card == cards.NoCard {
			empty = append(empty, slot)
		}
	}
	return empty
}

// TryPlaceToken places playerID's token on slot. It fails if the board is
// frozen, the slot holds no card or the token is already there.
func (b *Board) TryPlaceToken(playerID, slot int) bool {
	if !b.lock.TryLock() {
		return false
	}
	defer b.lock.Unlock()
	if !b.validSlot(slot) || b.slotToCard[slot] == cards.NoCard {
		return false
	}
	if _, ok := b.tokens[slot][playerID]; ok {
		return false
	}
	b.tokens[slot][playerID] = struct{}{}
	return true
}

// TryRemoveToken removes playerID's token from slot. It fails if the board
// is frozen or the token is not there.
func (b *Board) TryRemoveToken(playerID, slot int) bool {
	if !b.lock.TryLock() {
		return false
	}
	defer b.lock.Unlock()
	return b.RemoveToken(playerID, slot)
}

// CountCards returns the number of occupied slots.
func (b *Board) CountCards() int {
	b.lock.Lock()
	defer b.lock.Unlock()
	return len(b.cardToSlot)
}

// Snapshot returns a copy of every slot.
func (b *Board) Snapshot() []Slot {
	b.lock.Lock()
	defer b.lock.Unlock()
	slots := make([]Slot, len(b.slotToCard))
	for slot, card := range b.slotToCard {
		slots[slot] = Slot{
			Slot:   slot,
			Card:   card,
			Tokens: b.owners(slot),
		}
	}
	return slots
}

func (b *Board) owners(slot int) []int {
	owners := make([]int, 0, len(b.tokens[slot]))
	for playerID := range b.tokens[slot] {
		owners = append(owners, playerID)
	}
	sort.Ints(owners)
	return owners
}
