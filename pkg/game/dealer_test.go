package game

import (
	"context"
	"testing"
	"time"

	"github.com/cbodonnell/setgame/pkg/cards"
	"github.com/cbodonnell/setgame/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// With the classic rules cards 0, 1 and 2 differ only in their first
// feature and form a set; 0, 1 and 3 do not.
var (
	validSet   = map[int]cards.Card{0: 0, 1: 1, 2: 2}
	invalidSet = map[int]cards.Card{0: 0, 1: 1, 2: 3}
)

func classicRules() cards.Rules {
	return cards.NewClassicRules(3, 4)
}

func TestNewDealer(t *testing.T) {
	cfg := testConfig(3, 1)
	d := newTestDealer(t, cfg, classicRules(), newRecordingDisplay())

	require.Len(t, d.Players(), 3)
	assert.True(t, d.Players()[0].Human())
	assert.False(t, d.Players()[1].Human())
	assert.Len(t, d.deck, 81)
	assert.Equal(t, 12, d.Board().Size())
	assert.Equal(t, "test", d.GameID())

	cfg.Players = 0
	_, err := NewDealer(NewDealerOptions{Config: cfg, Rules: classicRules(), Display: newRecordingDisplay()})
	assert.Error(t, err)

	_, err = NewDealer(NewDealerOptions{Config: testConfig(1, 0), Display: newRecordingDisplay()})
	assert.Error(t, err, "rules are required")
}

func TestDealer_checkClaim(t *testing.T) {
	tests := []struct {
		name        string
		seed        map[int]cards.Card
		wantVerdict Verdict
		wantScore   int
		wantTokens  []int
		wantCards   int
	}{
		{
			name:        "valid claim",
			seed:        validSet,
			wantVerdict: VerdictPoint,
			wantScore:   1,
			wantTokens:  []int{},
			wantCards:   9,
		},
		{
			name:        "invalid claim",
			seed:        invalidSet,
			wantVerdict: VerdictPenalty,
			wantScore:   0,
			wantTokens:  []int{0, 1, 2},
			wantCards:   12,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			display := newRecordingDisplay()
			d := newTestDealer(t, testConfig(3, 3), classicRules(), display)
			seedBoard(t, d, tt.seed)
			players := d.Players()

			// other players hold tokens on and off the claimed slots
			selectSlots(t, players[1], 2)
			selectSlots(t, players[2], 5)

			require.True(t, selectSlots(t, players[0], 0, 1, 2))
			require.NoError(t, d.SubmitClaim(0))

			d.updateTimerDisplay(true)
			deadline := d.reshuffleAt
			time.Sleep(5 * time.Millisecond)
			d.checkClaim(context.Background())

			assert.Equal(t, tt.wantVerdict, receiveVerdict(t, players[0]))
			assert.Equal(t, tt.wantScore, players[0].Score())
			assert.Equal(t, tt.wantTokens, players[0].Tokens())
			assert.Equal(t, tt.wantCards, d.Board().CountCards())
			assert.Equal(t, 0, d.claims.Size())
			assertNoVerdict(t, players[1])
			assertNoVerdict(t, players[2])

			if tt.wantVerdict == VerdictPoint {
				assert.True(t, d.reshuffleAt.After(deadline), "countdown reset")
				assert.Empty(t, players[1].Tokens(), "token on a claimed slot is cleared")
				assert.Equal(t, []int{5}, players[2].Tokens())
				assert.Equal(t, []int{1}, display.scores[0])

				d.placeCardsOnTable()
				assert.Equal(t, 12, d.Board().CountCards())
			} else {
				assert.Equal(t, deadline, d.reshuffleAt)
				assert.Equal(t, []int{2}, players[1].Tokens())
				assert.Empty(t, display.scores)
			}

			for _, slot := range d.Board().Snapshot() {
				for _, owner := range slot.Tokens {
					assert.Contains(t, players[owner].Tokens(), slot.Slot)
				}
			}
		})
	}
}

func TestDealer_checkClaim_servesClaimsInOrder(t *testing.T) {
	d := newTestDealer(t, testConfig(3, 3), &fakeRules{valid: func([]cards.Card) bool { return false }, exists: atLeastThree}, newRecordingDisplay())
	seedBoard(t, d, nil)
	players := d.Players()

	order := []int{2, 0, 1}
	for _, id := range order {
		require.True(t, selectSlots(t, players[id], 3*id, 3*id+1, 3*id+2))
		require.NoError(t, d.SubmitClaim(id))
	}

	for i, id := range order {
		d.checkClaim(context.Background())
		assert.Equal(t, VerdictPenalty, receiveVerdict(t, players[id]))
		for _, later := range order[i+1:] {
			assertNoVerdict(t, players[later])
		}
	}
}

func TestDealer_checkClaim_recordsSpan(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	d, err := NewDealer(NewDealerOptions{
		GameID:  "traced",
		Config:  testConfig(1, 1),
		Rules:   classicRules(),
		Display: newRecordingDisplay(),
		Logger:  testLogger(),
		Tracer:  provider.Tracer("test"),
	})
	require.NoError(t, err)
	seedBoard(t, d, invalidSet)

	// an empty queue records nothing
	d.checkClaim(context.Background())
	assert.Empty(t, recorder.Ended())

	require.True(t, selectSlots(t, d.Players()[0], 0, 1, 2))
	require.NoError(t, d.SubmitClaim(0))
	d.checkClaim(context.Background())
	assert.Equal(t, VerdictPenalty, receiveVerdict(t, d.Players()[0]))

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "dealer.checkClaim", spans[0].Name())
	assert.Contains(t, spans[0].Attributes(), attribute.String("claim.verdict", "penalty"))
	assert.Contains(t, spans[0].Attributes(), attribute.Int("player.id", 0))
}

func TestDealer_SubmitClaim(t *testing.T) {
	d := newTestDealer(t, testConfig(2, 2), classicRules(), newRecordingDisplay())

	assert.True(t, IsUnknownPlayer(d.SubmitClaim(7)))
	assert.True(t, IsUnknownPlayer(d.SubmitClaim(-1)))
	assert.Equal(t, 0, d.claims.Size(), "unknown players are never queued")
	d.checkClaim(context.Background())

	require.NoError(t, d.SubmitClaim(0))
	err := d.SubmitClaim(0)
	assert.True(t, IsClaimPending(err))
	require.NoError(t, d.SubmitClaim(1))
	assert.Equal(t, 2, d.claims.Size())

	select {
	case <-d.wake:
	default:
		t.Fatal("claim did not wake the dealer")
	}

	d.Terminate()
	assert.True(t, IsTerminated(d.SubmitClaim(1)))
}

func TestDealer_checkClaim_withdrawsStaleClaim(t *testing.T) {
	d := newTestDealer(t, testConfig(2, 2), classicRules(), newRecordingDisplay())
	seedBoard(t, d, validSet)
	players := d.Players()

	require.True(t, selectSlots(t, players[0], 0, 1, 2))
	require.True(t, selectSlots(t, players[1], 2, 3, 4))
	require.NoError(t, d.SubmitClaim(0))
	require.NoError(t, d.SubmitClaim(1))

	d.checkClaim(context.Background())
	assert.Equal(t, VerdictPoint, receiveVerdict(t, players[0]))
	assert.Equal(t, []int{3, 4}, players[1].Tokens())

	d.checkClaim(context.Background())
	assert.Equal(t, VerdictWithdrawn, receiveVerdict(t, players[1]))
	assert.Equal(t, 0, players[1].Score())
	assert.Equal(t, []int{3, 4}, players[1].Tokens())
}

func TestDealer_checkClaim_cleanupPolicy(t *testing.T) {
	tests := []struct {
		name       string
		policy     config.CleanupPolicy
		wantTokens []int
	}{
		{name: "after valid claim only", policy: config.CleanupAfterValidClaim, wantTokens: []int{6, 7}},
		{name: "every iteration", policy: config.CleanupEveryIteration, wantTokens: []int{7}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(2, 2)
			cfg.CleanupPolicy = tt.policy
			d := newTestDealer(t, cfg, classicRules(), newRecordingDisplay())
			seedBoard(t, d, validSet)
			players := d.Players()

			selectSlots(t, players[1], 6, 7)
			// the board loses the token on 6 without the player noticing
			d.board.Freeze()
			d.board.RemoveToken(1, 6)
			d.board.Thaw()

			// no claim queued: only the upkeep pass can run
			d.checkClaim(context.Background())
			assert.Equal(t, tt.wantTokens, players[1].Tokens())

			// a valid claim clears tokens on its slots under either policy
			selectSlots(t, players[1], 0)
			require.True(t, selectSlots(t, players[0], 0, 1, 2))
			require.NoError(t, d.SubmitClaim(0))
			d.checkClaim(context.Background())
			assert.Equal(t, VerdictPoint, receiveVerdict(t, players[0]))
			assert.NotContains(t, players[1].Tokens(), 0)
		})
	}
}

func TestDealer_roundEnd(t *testing.T) {
	d := newTestDealer(t, testConfig(3, 3), classicRules(), newRecordingDisplay())
	seedBoard(t, d, invalidSet)
	players := d.Players()

	require.True(t, selectSlots(t, players[0], 0, 1, 2))
	require.NoError(t, d.SubmitClaim(0))
	selectSlots(t, players[1], 4)
	require.NoError(t, players[2].SubmitToggle(7))
	require.Equal(t, 69, len(d.deck))

	d.removeAllCardsFromTable()
	d.drainClaims()

	assert.Equal(t, 0, d.Board().CountCards())
	assert.Len(t, d.deck, 81)
	assert.Equal(t, 0, d.claims.Size())
	assert.Equal(t, VerdictWithdrawn, receiveVerdict(t, players[0]), "queued claim released unjudged")
	assertNoVerdict(t, players[1])
	for _, p := range players {
		assert.Empty(t, p.Tokens())
		assert.Equal(t, 0, p.Score())
		assert.Equal(t, 0, p.actions.Size())
	}
}

func TestDealer_drainClaims_dropsClaimsOnceTerminated(t *testing.T) {
	d := newTestDealer(t, testConfig(1, 1), classicRules(), newRecordingDisplay())
	require.NoError(t, d.SubmitClaim(0))

	d.Terminate()
	d.drainClaims()

	assert.Equal(t, 0, d.claims.Size())
	assertNoVerdict(t, d.Players()[0])
}

func TestDealer_timerLoop_endsAtDeadline(t *testing.T) {
	cfg := testConfig(1, 1)
	cfg.TurnTimeout = 60 * time.Millisecond
	cfg.TurnTimeoutWarning = 30 * time.Millisecond
	display := newRecordingDisplay()
	d := newTestDealer(t, cfg, classicRules(), display)

	d.placeCardsOnTable()
	start := time.Now()
	d.updateTimerDisplay(true)
	d.timerLoop(context.Background())
	elapsed := time.Since(start)

	assert.GreaterOrEqual(t, elapsed, cfg.TurnTimeout)
	assert.Less(t, elapsed, time.Second)
	assert.False(t, d.Terminated())

	countdowns := display.Countdowns()
	require.NotEmpty(t, countdowns)
	assert.False(t, countdowns[0].warn)
	warned := false
	for _, c := range countdowns {
		assert.Positive(t, c.remaining)
		if c.warn {
			warned = true
			assert.Less(t, c.remaining, cfg.TurnTimeoutWarning)
		}
	}
	assert.True(t, warned, "countdown enters the warning window")
}

func TestDealer_Run_noSetsRemain(t *testing.T) {
	display := newRecordingDisplay()
	rules := &fakeRules{valid: anyTriple, exists: func([]cards.Card) bool { return false }}
	d := newTestDealer(t, testConfig(3, 1), rules, display)

	done := make(chan error, 1)
	go func() { done <- d.Run(context.Background()) }()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("game did not end")
	}
	assert.True(t, d.Terminated())
	assert.Equal(t, 0, d.Board().CountCards(), "nothing dealt")
	assert.Equal(t, [][]int{{0, 1, 2}}, display.Winners())
	for _, p := range d.Players() {
		assert.Equal(t, PlayerStateTerminated, p.State())
	}
}

// toggleUntilPlaced presses slot for a human player until its token lands;
// a press can be dropped while the dealer has the board frozen.
func toggleUntilPlaced(t *testing.T, d *Dealer, playerID, slot int) {
	t.Helper()
	p := d.Players()[playerID]
	require.Eventually(t, func() bool {
		if indexOf(p.Tokens(), slot) >= 0 {
			return true
		}
		if p.actions.Size() == 0 && p.State() == PlayerStateAwaitingInput {
			_ = d.Toggle(playerID, slot)
		}
		return false
	}, 2*time.Second, 5*time.Millisecond)
}

// claimUntilScored presses slot until the completed selection scores.
func claimUntilScored(t *testing.T, d *Dealer, playerID, slot int) {
	t.Helper()
	p := d.Players()[playerID]
	require.Eventually(t, func() bool {
		if p.Score() > 0 {
			return true
		}
		if p.actions.Size() == 0 && p.State() == PlayerStateAwaitingInput {
			_ = d.Toggle(playerID, slot)
		}
		return false
	}, 2*time.Second, 5*time.Millisecond)
}

func TestDealer_Run_pointThenNoSetsRemain(t *testing.T) {
	display := newRecordingDisplay()
	rules := &fakeRules{valid: anyTriple, exists: atLeastThree}
	d := newTestDealer(t, testConfig(2, 2), rules, display)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- d.Run(ctx) }()

	require.Eventually(t, func() bool { return d.Board().CountCards() == 12 }, time.Second, 5*time.Millisecond)

	toggleUntilPlaced(t, d, 0, 0)
	toggleUntilPlaced(t, d, 0, 1)
	claimUntilScored(t, d, 0, 2)
	assert.Equal(t, 1, d.Players()[0].Score())

	rules.setExists(func([]cards.Card) bool { return false })

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("game did not end once no sets remained")
	}
	assert.Equal(t, [][]int{{0}}, display.Winners())
	freezes := display.Freezes(0)
	require.NotEmpty(t, freezes)
	assert.Equal(t, time.Duration(0), freezes[len(freezes)-1])
}

func TestDealer_Run_afterTerminate(t *testing.T) {
	display := newRecordingDisplay()
	d := newTestDealer(t, testConfig(3, 1), classicRules(), display)
	d.Terminate()

	done := make(chan error, 1)
	go func() { done <- d.Run(context.Background()) }()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("game did not end")
	}
	assert.Equal(t, 0, d.Board().CountCards(), "nothing dealt")
	assert.Equal(t, [][]int{{0, 1, 2}}, display.Winners())
	for _, p := range d.Players() {
		p.startLock.Lock()
		assert.False(t, p.started, "no actor launched after termination")
		p.startLock.Unlock()
		assert.Equal(t, PlayerStateTerminated, p.State())
	}
}

func TestDealer_Run_contextCancelTerminates(t *testing.T) {
	display := newRecordingDisplay()
	d := newTestDealer(t, testConfig(3, 0), classicRules(), display)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- d.Run(ctx) }()

	require.Eventually(t, func() bool { return d.Board().CountCards() == 12 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("game did not stop after cancel")
	}
	assert.True(t, d.Terminated())
	require.Len(t, display.Winners(), 1)
}

func TestDealer_Terminate_releasesPlayerAwaitingVerdict(t *testing.T) {
	d := newTestDealer(t, testConfig(1, 1), classicRules(), newRecordingDisplay())
	seedBoard(t, d, validSet)
	p := d.Players()[0]
	p.Start()

	for _, slot := range []int{0, 1, 2} {
		require.NoError(t, p.SubmitToggle(slot))
	}
	require.Eventually(t, func() bool { return d.claims.Size() == 1 }, time.Second, time.Millisecond)
	assert.Equal(t, PlayerStateAwaitingVerdict, p.State())

	terminated := make(chan struct{})
	go func() {
		d.Terminate()
		close(terminated)
	}()

	select {
	case <-terminated:
	case <-time.After(time.Second):
		t.Fatal("player awaiting a verdict did not terminate")
	}
	assert.Equal(t, PlayerStateTerminated, p.State())
	d.Terminate()
}

func TestDealer_Toggle(t *testing.T) {
	d := newTestDealer(t, testConfig(2, 1), classicRules(), newRecordingDisplay())
	seedBoard(t, d, nil)

	assert.NoError(t, d.Toggle(0, 3))
	assert.Equal(t, 1, d.Players()[0].actions.Size())
	assert.ErrorIs(t, d.Toggle(1, 3), ErrComputerPlayer)
	assert.True(t, IsUnknownPlayer(d.Toggle(2, 3)))
	assert.ErrorIs(t, d.Toggle(0, 12), ErrInvalidSlot)

	d.Terminate()
	assert.True(t, IsTerminated(d.Toggle(0, 3)))
}

func TestDealer_Winners(t *testing.T) {
	tests := []struct {
		name   string
		scores []int
		want   []int
	}{
		{name: "single winner", scores: []int{1, 3, 2}, want: []int{1}},
		{name: "tie", scores: []int{2, 0, 2}, want: []int{0, 2}},
		{name: "nobody scored", scores: []int{0, 0}, want: []int{0, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newTestDealer(t, testConfig(len(tt.scores), 0), classicRules(), newRecordingDisplay())
			for id, score := range tt.scores {
				for i := 0; i < score; i++ {
					d.Players()[id].deliver(VerdictPoint)
					<-d.Players()[id].verdicts
				}
			}
			assert.Equal(t, tt.want, d.Winners())
		})
	}
}

func TestDealer_computerPlayersKeepInvariants(t *testing.T) {
	cfg := testConfig(4, 0)
	cfg.PointFreeze = 5 * time.Millisecond
	cfg.PenaltyFreeze = 5 * time.Millisecond
	cfg.ComputerDelay = time.Millisecond
	d := newTestDealer(t, cfg, classicRules(), newRecordingDisplay())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- d.Run(ctx) }()

	deadline := time.Now().Add(300 * time.Millisecond)
	for time.Now().Before(deadline) {
		d.board.Freeze()
		for _, p := range d.Players() {
			tokens := p.Tokens()
			assert.LessOrEqual(t, len(tokens), cfg.FeatureSize)
			for _, slot := range tokens {
				assert.NotEqual(t, cards.NoCard, d.board.CardAt(slot), "token on an empty slot")
				assert.True(t, d.board.HasToken(p.ID(), slot), "player token missing from the board")
			}
		}
		d.board.Thaw()
		time.Sleep(2 * time.Millisecond)
	}

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("game did not stop after cancel")
	}
}
