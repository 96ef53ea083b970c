package ui

import (
	"time"

	"github.com/cbodonnell/setgame/pkg/log"
)

// Display receives presentation updates from the game. Calls are fire and
// forget: implementations must return promptly and the game never reads a
// result back.
type Display interface {
	// SetCountdown shows the time left before the board is reshuffled.
	SetCountdown(remaining time.Duration, warn bool)
	// SetScore shows a player's score.
	SetScore(playerID int, score int)
	// SetFreeze shows how long a player stays frozen. Zero clears it.
	SetFreeze(playerID int, remaining time.Duration)
	// AnnounceWinners shows the players sharing the highest score.
	AnnounceWinners(playerIDs []int)
}

// LogDisplay renders display updates as log entries.
// It is not safe for concurrent use; feed it from a single DisplayWorker.
type LogDisplay struct {
	logger *log.Logger
	// last whole second logged, to keep countdown logging coarse
	lastCountdown time.Duration
}

func NewLogDisplay(logger *log.Logger) *LogDisplay {
	return &LogDisplay{
		logger:        logger,
		lastCountdown: -1,
	}
}

func (d *LogDisplay) SetCountdown(remaining time.Duration, warn bool) {
	seconds := remaining.Truncate(time.Second)
	if seconds == d.lastCountdown && !warn {
		return
	}
	d.lastCountdown = seconds
	if warn {
		d.logger.Debug("Reshuffle in %s", remaining.Truncate(10*time.Millisecond))
		return
	}
	d.logger.Trace("Reshuffle in %s", seconds)
}

func (d *LogDisplay) SetScore(playerID int, score int) {
	d.logger.Info("Player %d score: %d", playerID, score)
}

func (d *LogDisplay) SetFreeze(playerID int, remaining time.Duration) {
	if remaining <= 0 {
		d.logger.Debug("Player %d unfrozen", playerID)
		return
	}
	d.logger.Debug("Player %d frozen for %s", playerID, remaining.Truncate(time.Second))
}

func (d *LogDisplay) AnnounceWinners(playerIDs []int) {
	if len(playerIDs) == 1 {
		d.logger.Info("Player %d wins", playerIDs[0])
		return
	}
	d.logger.Info("Draw between players %v", playerIDs)
}
