package game

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cbodonnell/setgame/pkg/board"
	"github.com/cbodonnell/setgame/pkg/cards"
	"github.com/cbodonnell/setgame/pkg/config"
	"github.com/cbodonnell/setgame/pkg/log"
	"github.com/cbodonnell/setgame/pkg/queue"
	"github.com/cbodonnell/setgame/pkg/ui"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/cbodonnell/setgame/pkg/game"

// Dealer runs the game: it deals cards, judges claims in the order they
// were submitted and reshuffles the board when the countdown runs out.
// It is the only writer of cards on the board.
type Dealer struct {
	gameID  string
	cfg     config.Config
	board   *board.Board
	rules   cards.Rules
	display ui.Display
	logger  *log.Logger
	tracer  trace.Tracer
	players []*Player

	// owned by the goroutine running Run
	rand        *rand.Rand
	deck        []cards.Card
	reshuffleAt time.Time

	claims        *queue.UniqueQueue[int]
	wake          chan struct{}
	quit          chan struct{}
	terminated    atomic.Bool
	terminateOnce sync.Once
}

// NewDealerOptions contains options for creating a new Dealer.
type NewDealerOptions struct {
	// GameID identifies the game in logs; a random UUID when empty.
	GameID  string
	Config  config.Config
	Rules   cards.Rules
	Display ui.Display
	Logger  *log.Logger
	// Rand drives dealing and the computer players; seeded from the clock when nil.
	Rand *rand.Rand
	// Tracer records rounds and claim verdicts; the global provider's when nil.
	Tracer trace.Tracer
}

// NewDealer creates a dealer, its board and its players. Player IDs run
// from 0 to Players-1 and the first HumanPlayers of them are human.
func NewDealer(opts NewDealerOptions) (*Dealer, error) {
	if err := opts.Config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %v", err)
	}
	if opts.Rules == nil {
		return nil, fmt.Errorf("rules are required")
	}
	if opts.Display == nil {
		return nil, fmt.Errorf("display is required")
	}

	gameID := opts.GameID
	if gameID == "" {
		gameID = uuid.NewString()
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	logger = logger.With("game", gameID)
	r := opts.Rand
	if r == nil {
		r = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	tracer := opts.Tracer
	if tracer == nil {
		tracer = otel.Tracer(tracerName)
	}

	d := &Dealer{
		gameID:  gameID,
		cfg:     opts.Config,
		board:   board.New(opts.Config.TableSize),
		rules:   opts.Rules,
		display: opts.Display,
		logger:  logger,
		tracer:  tracer,
		rand:    r,
		deck:    cards.Deck(opts.Config.DeckSize),
		claims:  queue.NewUniqueQueue[int](),
		wake:    make(chan struct{}, 1),
		quit:    make(chan struct{}),
	}

	d.players = make([]*Player, opts.Config.Players)
	for id := range d.players {
		d.players[id] = NewPlayer(NewPlayerOptions{
			ID:      id,
			Human:   id < opts.Config.HumanPlayers,
			Config:  opts.Config,
			Board:   d.board,
			Claimer: d,
			Display: opts.Display,
			Logger:  logger,
			Rand:    rand.New(rand.NewSource(r.Int63())),
		})
	}

	return d, nil
}

func (d *Dealer) GameID() string {
	return d.gameID
}

func (d *Dealer) Board() *board.Board {
	return d.board
}

func (d *Dealer) Players() []*Player {
	return d.players
}

func (d *Dealer) PlayerStatuses() []PlayerStatus {
	statuses := make([]PlayerStatus, len(d.players))
	for i, player := range d.players {
		statuses[i] = player.Status()
	}
	return statuses
}

// Player returns the player with the given ID.
func (d *Dealer) Player(playerID int) (*Player, error) {
	if playerID < 0 || playerID >= len(d.players) {
		return nil, fmt.Errorf("player %d: %w", playerID, ErrUnknownPlayer)
	}
	return d.players[playerID], nil
}

// Toggle routes a human player's key press for slot to that player.
func (d *Dealer) Toggle(playerID int, slot int) error {
	player, err := d.Player(playerID)
	if err != nil {
		return err
	}
	if !player.Human() {
		return fmt.Errorf("player %d: %w", playerID, ErrComputerPlayer)
	}
	if d.terminated.Load() {
		return ErrTerminated
	}
	return player.SubmitToggle(slot)
}

// SubmitClaim queues playerID's selection for judging and wakes the
// dealer. A player can have a single claim queued at a time.
func (d *Dealer) SubmitClaim(playerID int) error {
	if _, err := d.Player(playerID); err != nil {
		return err
	}
	if d.terminated.Load() {
		return ErrTerminated
	}
	if err := d.claims.Enqueue(playerID); err != nil {
		if queue.IsDuplicate(err) {
			return fmt.Errorf("player %d: %w", playerID, ErrClaimPending)
		}
		return fmt.Errorf("failed to queue claim for player %d: %v", playerID, err)
	}
	select {
	case d.wake <- struct{}{}:
	default:
	}
	return nil
}

// Run starts the players and deals rounds until the game is terminated or
// no set can be formed from the cards left. It announces the winners and
// returns once every player has exited. Cancelling ctx terminates the game.
func (d *Dealer) Run(ctx context.Context) error {
	d.logger.Info("Dealer starting game %s with %d players", d.gameID, len(d.players))
	for _, player := range d.players {
		player.Start()
	}

	stop := context.AfterFunc(ctx, d.Terminate)
	defer stop()

	for round := 1; !d.shouldFinish(); round++ {
		roundCtx, span := d.tracer.Start(ctx, "dealer.round", trace.WithAttributes(
			attribute.String("game.id", d.gameID),
			attribute.Int("round", round),
		))
		d.placeCardsOnTable()
		span.SetAttributes(attribute.Int("deck.remaining", len(d.deck)))
		d.updateTimerDisplay(true)
		d.timerLoop(roundCtx)
		d.removeAllCardsFromTable()
		d.drainClaims()
		span.End()
	}

	d.Terminate()
	// Terminate may have run before the players were started
	for _, player := range d.players {
		player.Terminate()
	}
	d.announceWinners()
	d.logger.Info("Dealer finished game %s", d.gameID)
	return nil
}

// Terminate ends the game: it wakes the dealer and stops the players in
// reverse ID order, waiting for each. It is safe to call more than once.
func (d *Dealer) Terminate() {
	d.terminateOnce.Do(func() {
		d.logger.Info("Terminating game %s", d.gameID)
		d.terminated.Store(true)
		close(d.quit)
		for i := len(d.players) - 1; i >= 0; i-- {
			d.players[i].Terminate()
		}
	})
}

// Terminated reports whether the game has been terminated.
func (d *Dealer) Terminated() bool {
	return d.terminated.Load()
}

func (d *Dealer) shouldFinish() bool {
	return d.terminated.Load() || !d.rules.ExistsValidSet(d.deck)
}

// timerLoop judges claims and refills the board until the reshuffle
// deadline passes or the game is terminated.
func (d *Dealer) timerLoop(ctx context.Context) {
	for !d.terminated.Load() && time.Now().Before(d.reshuffleAt) {
		d.sleepUntilWokenOrTimeout()
		d.checkClaim(ctx)
		d.updateTimerDisplay(false)
		d.placeCardsOnTable()
		if !d.setsRemain() {
			d.logger.Info("No sets left in the deck or on the board")
			d.Terminate()
		}
	}
}

// sleepUntilWokenOrTimeout waits for a claim, termination or a timeout
// that shortens once the countdown enters the warning window.
func (d *Dealer) sleepUntilWokenOrTimeout() {
	if d.claims.Size() > 0 {
		return
	}
	until := time.Until(d.reshuffleAt)
	interval := d.cfg.SleepInterval
	if until <= d.cfg.TurnTimeoutWarning {
		interval = d.cfg.WarningSleepInterval
	}
	if until > 0 && until < interval {
		interval = until
	}

	timer := time.NewTimer(interval)
	defer timer.Stop()
	select {
	case <-d.quit:
	case <-d.wake:
	case <-timer.C:
	}
}

// checkClaim judges the claim at the head of the queue and hands the
// verdict to its player. A valid set is removed from the board together
// with every token on its slots.
func (d *Dealer) checkClaim(ctx context.Context) {
	if d.terminated.Load() {
		return
	}

	d.board.Freeze()
	playerID, err := d.claims.Peek()
	if err != nil {
		// nothing queued
		if d.cfg.CleanupPolicy == config.CleanupEveryIteration {
			d.reconcileTokens()
		}
		d.board.Thaw()
		return
	}

	_, span := d.tracer.Start(ctx, "dealer.checkClaim", trace.WithAttributes(
		attribute.Int("player.id", playerID),
	))
	defer span.End()

	player := d.players[playerID]
	slots := player.Tokens()
	verdict := d.judge(slots)
	span.SetAttributes(
		attribute.IntSlice("claim.slots", slots),
		attribute.String("claim.verdict", verdict.String()),
	)
	if verdict == VerdictPoint {
		d.removeSet(player, slots)
		d.updateTimerDisplay(true)
	}
	if d.cfg.CleanupPolicy == config.CleanupEveryIteration {
		d.reconcileTokens()
	}
	if _, err := d.claims.Dequeue(); err != nil {
		d.logger.Warn("Claim queue emptied while judging player %d: %v", playerID, err)
	}
	d.board.Thaw()

	d.logger.Debug("Player %d claimed slots %v: %s", playerID, slots, verdict)
	player.deliver(verdict)
	if verdict == VerdictPoint {
		d.display.SetScore(playerID, player.Score())
	}
}

// judge decides the verdict for a selection. The board must be frozen.
func (d *Dealer) judge(slots []int) Verdict {
	if len(slots) != d.cfg.FeatureSize {
		return VerdictWithdrawn
	}
	selected := make([]cards.Card, len(slots))
	for i, slot := range slots {
		card := d.board.CardAt(slot)
		if card == cards.NoCard {
			return VerdictWithdrawn
		}
		selected[i] = card
	}
	if d.rules.IsValidSet(selected) {
		return VerdictPoint
	}
	return VerdictPenalty
}

// removeSet discards the cards of a valid claim and clears every token on
// their slots. The board must be frozen.
func (d *Dealer) removeSet(claimant *Player, slots []int) {
	for _, slot := range slots {
		card, owners := d.board.RemoveCard(slot)
		d.logger.Trace("Removed card %d from slot %d", card, slot)
		for _, owner := range owners {
			if owner == claimant.ID() {
				continue
			}
			d.players[owner].dropToken(slot)
		}
	}
	claimant.clearTokens()
}

// reconcileTokens drops player tokens the board no longer holds.
// The board must be frozen.
func (d *Dealer) reconcileTokens() {
	for _, player := range d.players {
		if dropped := player.reconcileTokens(); dropped > 0 {
			d.logger.Debug("Dropped %d stale tokens of player %d", dropped, player.ID())
		}
	}
}

// placeCardsOnTable deals a random card from the deck to every empty slot.
func (d *Dealer) placeCardsOnTable() {
	d.board.Freeze()
	defer d.board.Thaw()

	for _, slot := range d.board.EmptySlots() {
		if len(d.deck) == 0 {
			return
		}
		i := d.rand.Intn(len(d.deck))
		card := d.deck[i]
		if err := d.board.PlaceCard(card, slot); err != nil {
			d.logger.Error("Failed to place card %d on slot %d: %v", card, slot, err)
			continue
		}
		last := len(d.deck) - 1
		d.deck[i] = d.deck[last]
		d.deck = d.deck[:last]
	}
}

// removeAllCardsFromTable returns every card to the deck and clears all tokens.
func (d *Dealer) removeAllCardsFromTable() {
	d.board.Freeze()
	defer d.board.Thaw()

	for _, player := range d.players {
		player.clearTokens()
	}
	d.deck = append(d.deck, d.board.Clear()...)
}

// drainClaims empties the claim queue without judging it. Unless the game
// is terminating, each drained player is released with a withdrawn verdict.
func (d *Dealer) drainClaims() {
	pending, err := d.claims.ReadAllMessages()
	if err != nil {
		d.logger.Error("Failed to drain claims: %v", err)
	}
	for _, playerID := range pending {
		if d.terminated.Load() {
			d.logger.Debug("Dropped claim of player %d", playerID)
			continue
		}
		d.players[playerID].deliver(VerdictWithdrawn)
	}
	for _, player := range d.players {
		player.drainActions()
	}
}

// updateTimerDisplay optionally restarts the countdown and shows the time
// left while some is.
func (d *Dealer) updateTimerDisplay(reset bool) {
	if reset {
		d.reshuffleAt = time.Now().Add(d.cfg.TurnTimeout)
	}
	remaining := time.Until(d.reshuffleAt)
	if remaining > 0 {
		d.display.SetCountdown(remaining, remaining < d.cfg.TurnTimeoutWarning)
	}
}

// setsRemain reports whether a set can still be formed from the deck and
// the dealt cards together.
func (d *Dealer) setsRemain() bool {
	d.board.Freeze()
	pool := d.board.Cards()
	d.board.Thaw()
	pool = append(pool, d.deck...)
	return d.rules.ExistsValidSet(pool)
}

// Winners returns the IDs of the players sharing the highest score.
func (d *Dealer) Winners() []int {
	best := -1
	var winners []int
	for _, player := range d.players {
		score := player.Score()
		switch {
		case score > best:
			best = score
			winners = []int{player.ID()}
		case score == best:
			winners = append(winners, player.ID())
		}
	}
	sort.Ints(winners)
	return winners
}

func (d *Dealer) announceWinners() {
	winners := d.Winners()
	d.logger.Info("Winners of game %s: %v", d.gameID, winners)
	d.display.AnnounceWinners(winners)
}
