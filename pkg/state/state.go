package state

import (
	"context"
	"time"
)

// StateManager provides shared access to the game snapshot.
// Implementations must be thread-safe.
type StateManager interface {
	// Get returns a copy of the current game snapshot.
	Get(ctx context.Context) (*GameSnapshot, error)
	// Set replaces the current game snapshot.
	Set(ctx context.Context, snapshot *GameSnapshot) error
	// Update applies fn to the current snapshot while holding it exclusively.
	Update(ctx context.Context, fn func(snapshot *GameSnapshot)) error
}

// GameSnapshot is what the display has last been told about a game.
type GameSnapshot struct {
	GameID string `json:"gameId"`
	// Scores and Freezes are keyed by player ID.
	Scores    map[int]int           `json:"scores"`
	Freezes   map[int]time.Duration `json:"freezes"`
	Countdown time.Duration         `json:"countdown"`
	Warn      bool                  `json:"warn"`
	Winners   []int                 `json:"winners,omitempty"`
	Finished  bool                  `json:"finished"`
}

func NewGameSnapshot(gameID string) *GameSnapshot {
	return &GameSnapshot{
		GameID:  gameID,
		Scores:  make(map[int]int),
		Freezes: make(map[int]time.Duration),
	}
}

// Copy returns a deep copy of the snapshot.
func (s *GameSnapshot) Copy() *GameSnapshot {
	copy := &GameSnapshot{
		GameID:    s.GameID,
		Scores:    make(map[int]int, len(s.Scores)),
		Freezes:   make(map[int]time.Duration, len(s.Freezes)),
		Countdown: s.Countdown,
		Warn:      s.Warn,
		Finished:  s.Finished,
	}
	for k, v := range s.Scores {
		copy.Scores[k] = v
	}
	for k, v := range s.Freezes {
		copy.Freezes[k] = v
	}
	if s.Winners != nil {
		copy.Winners = append([]int(nil), s.Winners...)
	}
	return copy
}
