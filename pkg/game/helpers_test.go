package game

import (
	"io"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/cbodonnell/setgame/pkg/cards"
	"github.com/cbodonnell/setgame/pkg/config"
	"github.com/cbodonnell/setgame/pkg/log"
	"github.com/stretchr/testify/require"
)

type countdownUpdate struct {
	remaining time.Duration
	warn      bool
}

// recordingDisplay keeps every display update for assertions.
type recordingDisplay struct {
	lock       sync.Mutex
	countdowns []countdownUpdate
	scores     map[int][]int
	freezes    map[int][]time.Duration
	winners    [][]int
}

func newRecordingDisplay() *recordingDisplay {
	return &recordingDisplay{
		scores:  make(map[int][]int),
		freezes: make(map[int][]time.Duration),
	}
}

func (r *recordingDisplay) SetCountdown(remaining time.Duration, warn bool) {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.countdowns = append(r.countdowns, countdownUpdate{remaining: remaining, warn: warn})
}

func (r *recordingDisplay) SetScore(playerID int, score int) {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.scores[playerID] = append(r.scores[playerID], score)
}

func (r *recordingDisplay) SetFreeze(playerID int, remaining time.Duration) {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.freezes[playerID] = append(r.freezes[playerID], remaining)
}

func (r *recordingDisplay) AnnounceWinners(playerIDs []int) {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.winners = append(r.winners, append([]int(nil), playerIDs...))
}

func (r *recordingDisplay) Winners() [][]int {
	r.lock.Lock()
	defer r.lock.Unlock()
	return append([][]int(nil), r.winners...)
}

func (r *recordingDisplay) Freezes(playerID int) []time.Duration {
	r.lock.Lock()
	defer r.lock.Unlock()
	return append([]time.Duration(nil), r.freezes[playerID]...)
}

func (r *recordingDisplay) Countdowns() []countdownUpdate {
	r.lock.Lock()
	defer r.lock.Unlock()
	return append([]countdownUpdate(nil), r.countdowns...)
}

// fakeRules delegates both predicates to test supplied functions.
type fakeRules struct {
	lock   sync.Mutex
	valid  func(selected []cards.Card) bool
	exists func(pool []cards.Card) bool
}

func (f *fakeRules) IsValidSet(selected []cards.Card) bool {
	f.lock.Lock()
	defer f.lock.Unlock()
	return f.valid(selected)
}

func (f *fakeRules) ExistsValidSet(pool []cards.Card) bool {
	f.lock.Lock()
	defer f.lock.Unlock()
	return f.exists(pool)
}

func (f *fakeRules) setExists(exists func(pool []cards.Card) bool) {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.exists = exists
}

func anyTriple(selected []cards.Card) bool {
	return len(selected) == 3
}

func atLeastThree(pool []cards.Card) bool {
	return len(pool) >= 3
}

func testConfig(players, humans int) config.Config {
	cfg := config.Default()
	cfg.Players = players
	cfg.HumanPlayers = humans
	cfg.TurnTimeout = 10 * time.Second
	cfg.TurnTimeoutWarning = 100 * time.Millisecond
	cfg.PointFreeze = 20 * time.Millisecond
	cfg.PenaltyFreeze = 40 * time.Millisecond
	cfg.FreezeTick = 10 * time.Millisecond
	cfg.SleepInterval = 20 * time.Millisecond
	cfg.WarningSleepInterval = 5 * time.Millisecond
	return cfg
}

func testLogger() *log.Logger {
	return log.New(io.Discard, "", 0, log.LogLevelTrace)
}

func newTestDealer(t *testing.T, cfg config.Config, rules cards.Rules, display *recordingDisplay) *Dealer {
	t.Helper()
	d, err := NewDealer(NewDealerOptions{
		GameID:  "test",
		Config:  cfg,
		Rules:   rules,
		Display: display,
		Logger:  testLogger(),
		Rand:    rand.New(rand.NewSource(1)),
	})
	require.NoError(t, err)
	return d
}

// seedBoard deals the given cards to the given slots and the rest of the
// board at random.
func seedBoard(t *testing.T, d *Dealer, placed map[int]cards.Card) {
	t.Helper()
	d.board.Freeze()
	for slot, card := range placed {
		require.NoError(t, d.board.PlaceCard(card, slot))
		for i, c := range d.deck {
			if c == card {
				d.deck = append(d.deck[:i], d.deck[i+1:]...)
				break
			}
		}
	}
	d.board.Thaw()
	d.placeCardsOnTable()
}

// selectSlots places the player's tokens directly, as its actor would.
// It returns whether the last token completed a selection.
func selectSlots(t *testing.T, p *Player, slots ...int) bool {
	t.Helper()
	complete := false
	for _, slot := range slots {
		complete = p.toggle(slot)
	}
	return complete
}

func receiveVerdict(t *testing.T, p *Player) Verdict {
	t.Helper()
	select {
	case v := <-p.verdicts:
		return v
	case <-time.After(time.Second):
		t.Fatalf("player %d received no verdict", p.ID())
		return VerdictNone
	}
}

func assertNoVerdict(t *testing.T, p *Player) {
	t.Helper()
	select {
	case v := <-p.verdicts:
		t.Fatalf("player %d unexpectedly received verdict %s", p.ID(), v)
	default:
	}
}
