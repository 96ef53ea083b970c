package workers

import (
	"context"
	"fmt"
	"time"

	"github.com/cbodonnell/setgame/pkg/log"
	"github.com/cbodonnell/setgame/pkg/state"
	"github.com/cbodonnell/setgame/pkg/ui"
)

type DisplayEventType int

const (
	DisplayEventTypeCountdown DisplayEventType = iota
	DisplayEventTypeScore
	DisplayEventTypeFreeze
	DisplayEventTypeWinners
)

func (t DisplayEventType) String() string {
	switch t {
	case DisplayEventTypeCountdown:
		return "countdown"
	case DisplayEventTypeScore:
		return "score"
	case DisplayEventTypeFreeze:
		return "freeze"
	case DisplayEventTypeWinners:
		return "winners"
	default:
		return "unknown"
	}
}

type DisplayEvent struct {
	Type    DisplayEventType
	Message interface{}
}

type CountdownUpdate struct {
	Remaining time.Duration
	Warn      bool
}

type ScoreUpdate struct {
	PlayerID int
	Score    int
}

type FreezeUpdate struct {
	PlayerID  int
	Remaining time.Duration
}

type WinnersAnnouncement struct {
	PlayerIDs []int
}

// DisplayWorker is a ui.Display that hands every update to its own
// goroutine, which forwards it to a downstream display and records it in
// the state manager. Updates are dropped when the buffer is full, except
// the winners announcement which waits for room.
type DisplayWorker struct {
	display      ui.Display
	stateManager state.StateManager
	events       chan DisplayEvent
	done         chan struct{}
	logger       *log.Logger
}

type NewDisplayWorkerOptions struct {
	Display      ui.Display
	StateManager state.StateManager
	BufferSize   int
	Logger       *log.Logger
}

func NewDisplayWorker(opts NewDisplayWorkerOptions) *DisplayWorker {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &DisplayWorker{
		display:      opts.Display,
		stateManager: opts.StateManager,
		events:       make(chan DisplayEvent, opts.BufferSize),
		done:         make(chan struct{}),
		logger:       logger,
	}
}

func (w *DisplayWorker) SetCountdown(remaining time.Duration, warn bool) {
	w.post(DisplayEvent{Type: DisplayEventTypeCountdown, Message: &CountdownUpdate{Remaining: remaining, Warn: warn}})
}

func (w *DisplayWorker) SetScore(playerID int, score int) {
	w.post(DisplayEvent{Type: DisplayEventTypeScore, Message: &ScoreUpdate{PlayerID: playerID, Score: score}})
}

func (w *DisplayWorker) SetFreeze(playerID int, remaining time.Duration) {
	w.post(DisplayEvent{Type: DisplayEventTypeFreeze, Message: &FreezeUpdate{PlayerID: playerID, Remaining: remaining}})
}

func (w *DisplayWorker) AnnounceWinners(playerIDs []int) {
	event := DisplayEvent{
		Type:    DisplayEventTypeWinners,
		Message: &WinnersAnnouncement{PlayerIDs: append([]int(nil), playerIDs...)},
	}
	select {
	case w.events <- event:
	case <-w.done:
		w.logger.Warn("Display worker stopped before winners %v could be announced", playerIDs)
	}
}

func (w *DisplayWorker) post(event DisplayEvent) {
	select {
	case w.events <- event:
	case <-w.done:
	default:
		w.logger.Trace("Display buffer full, dropping %s update", event.Type)
	}
}

// Start processes updates until ctx is done, then flushes what is still
// buffered. It must be called once.
func (w *DisplayWorker) Start(ctx context.Context) {
	defer close(w.done)
	for {
		select {
		case <-ctx.Done():
			w.flush()
			return
		case event := <-w.events:
			w.handle(event)
		}
	}
}

func (w *DisplayWorker) flush() {
	for {
		select {
		case event := <-w.events:
			w.handle(event)
		default:
			return
		}
	}
}

func (w *DisplayWorker) handle(event DisplayEvent) {
	var err error
	switch event.Type {
	case DisplayEventTypeCountdown:
		err = w.handleCountdown(event)
	case DisplayEventTypeScore:
		err = w.handleScore(event)
	case DisplayEventTypeFreeze:
		err = w.handleFreeze(event)
	case DisplayEventTypeWinners:
		err = w.handleWinners(event)
	default:
		err = fmt.Errorf("unknown display event type: %v", event.Type)
	}
	if err != nil {
		w.logger.Error("Failed to handle %s display event: %v", event.Type, err)
	}
}

func (w *DisplayWorker) handleCountdown(e DisplayEvent) error {
	update, ok := e.Message.(*CountdownUpdate)
	if !ok {
		return fmt.Errorf("failed to cast countdown update")
	}
	w.display.SetCountdown(update.Remaining, update.Warn)
	return w.update(func(s *state.GameSnapshot) {
		s.Countdown = update.Remaining
		s.Warn = update.Warn
	})
}

func (w *DisplayWorker) handleScore(e DisplayEvent) error {
	update, ok := e.Message.(*ScoreUpdate)
	if !ok {
		return fmt.Errorf("failed to cast score update")
	}
	w.display.SetScore(update.PlayerID, update.Score)
	return w.update(func(s *state.GameSnapshot) {
		s.Scores[update.PlayerID] = update.Score
	})
}

func (w *DisplayWorker) handleFreeze(e DisplayEvent) error {
	update, ok := e.Message.(*FreezeUpdate)
	if !ok {
		return fmt.Errorf("failed to cast freeze update")
	}
	w.display.SetFreeze(update.PlayerID, update.Remaining)
	return w.update(func(s *state.GameSnapshot) {
		if update.Remaining <= 0 {
			delete(s.Freezes, update.PlayerID)
			return
		}
		s.Freezes[update.PlayerID] = update.Remaining
	})
}

func (w *DisplayWorker) handleWinners(e DisplayEvent) error {
	announcement, ok := e.Message.(*WinnersAnnouncement)
	if !ok {
		return fmt.Errorf("failed to cast winners announcement")
	}
	w.display.AnnounceWinners(announcement.PlayerIDs)
	return w.update(func(s *state.GameSnapshot) {
		s.Winners = announcement.PlayerIDs
		s.Finished = true
	})
}

func (w *DisplayWorker) update(fn func(s *state.GameSnapshot)) error {
	if w.stateManager == nil {
		return nil
	}
	if err := w.stateManager.Update(context.Background(), fn); err != nil {
		return fmt.Errorf("failed to update game state: %v", err)
	}
	return nil
}
