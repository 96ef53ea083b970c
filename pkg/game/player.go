package game

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/cbodonnell/setgame/pkg/board"
	"github.com/cbodonnell/setgame/pkg/config"
	"github.com/cbodonnell/setgame/pkg/log"
	"github.com/cbodonnell/setgame/pkg/queue"
	"github.com/cbodonnell/setgame/pkg/ui"
)

// Claimer accepts completed selections for judging.
type Claimer interface {
	// SubmitClaim queues the player's current selection and wakes the judge.
	SubmitClaim(playerID int) error
}

// Player is the actor for one player. Its token selection, score and state
// are written by its own goroutine and, while the board is frozen, by the
// dealer; both hold lock while doing so.
type Player struct {
	id      int
	human   bool
	cfg     config.Config
	board   *board.Board
	claimer Claimer
	display ui.Display
	logger  *log.Logger
	// rand is only used by the computer helper goroutine
	rand *rand.Rand

	actions        *queue.InMemoryQueue[int]
	verdicts       chan Verdict
	computerSignal chan struct{}

	lock   sync.Mutex
	tokens []int
	score  int
	state  PlayerState

	// startLock orders Start against Terminate so no actor is launched
	// once quit is closed
	startLock     sync.Mutex
	started       bool
	quit          chan struct{}
	terminateOnce sync.Once
	running       sync.WaitGroup
}

// NewPlayerOptions contains options for creating a new Player.
type NewPlayerOptions struct {
	ID      int
	Human   bool
	Config  config.Config
	Board   *board.Board
	Claimer Claimer
	Display ui.Display
	Logger  *log.Logger
	Rand    *rand.Rand
}

func NewPlayer(opts NewPlayerOptions) *Player {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	r := opts.Rand
	if r == nil {
		r = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Player{
		id:             opts.ID,
		human:          opts.Human,
		cfg:            opts.Config,
		board:          opts.Board,
		claimer:        opts.Claimer,
		display:        opts.Display,
		logger:         logger.With("player", opts.ID),
		rand:           r,
		actions:        queue.NewInMemoryQueue[int](opts.Config.FeatureSize),
		verdicts:       make(chan Verdict, 1),
		computerSignal: make(chan struct{}, 1),
		tokens:         make([]int, 0, opts.Config.FeatureSize),
		quit:           make(chan struct{}),
	}
}

func (p *Player) ID() int {
	return p.id
}

func (p *Player) Human() bool {
	return p.human
}

func (p *Player) Score() int {
	p.lock.Lock()
	defer p.lock.Unlock()
	return p.score
}

func (p *Player) State() PlayerState {
	p.lock.Lock()
	defer p.lock.Unlock()
	return p.state
}

// Tokens returns a copy of the player's selected slots in selection order.
func (p *Player) Tokens() []int {
	p.lock.Lock()
	defer p.lock.Unlock()
	tokens := make([]int, len(p.tokens))
	copy(tokens, p.tokens)
	return tokens
}

// PlayerStatus is a point in time view of a player.
type PlayerStatus struct {
	ID     int         `json:"id"`
	Human  bool        `json:"human"`
	Score  int         `json:"score"`
	State  PlayerState `json:"state"`
	Tokens []int       `json:"tokens"`
}

func (p *Player) Status() PlayerStatus {
	p.lock.Lock()
	defer p.lock.Unlock()
	return PlayerStatus{
		ID:     p.id,
		Human:  p.human,
		Score:  p.score,
		State:  p.state,
		Tokens: append([]int{}, p.tokens...),
	}
}

// SubmitToggle asks the player to toggle its token on slot. The request is
// dropped without error while the player waits for a verdict or is frozen,
// when it cannot add another token, or when its action queue is full.
func (p *Player) SubmitToggle(slot int) error {
	if slot < 0 || slot >= p.board.Size() {
		return fmt.Errorf("slot %d: %w", slot, ErrInvalidSlot)
	}

	p.lock.Lock()
	accepting := p.state == PlayerStateAwaitingInput || p.state == PlayerStateActing
	full := len(p.tokens) >= p.cfg.FeatureSize && indexOf(p.tokens, slot) < 0
	p.lock.Unlock()

	if !accepting || full {
		p.logger.Trace("Player %d dropped toggle on slot %d", p.id, slot)
		return nil
	}
	if err := p.actions.Enqueue(slot); err != nil {
		p.logger.Trace("Player %d dropped toggle on slot %d: %v", p.id, slot, err)
	}
	return nil
}

// Start runs the player's actor, and its computer helper for a non-human
// player, until Terminate is called. It does nothing once the player has
// been terminated.
func (p *Player) Start() {
	p.startLock.Lock()
	defer p.startLock.Unlock()
	if p.terminated() || p.started {
		return
	}
	p.started = true
	p.running.Add(1)
	go func() {
		defer p.running.Done()
		p.run()
	}()
}

// Terminate stops the actor and waits for it, and its helper, to exit.
// It is safe to call more than once and before Start.
func (p *Player) Terminate() {
	p.startLock.Lock()
	p.terminateOnce.Do(func() {
		close(p.quit)
	})
	p.startLock.Unlock()
	p.running.Wait()
	p.setState(PlayerStateTerminated)
}

func (p *Player) terminated() bool {
	select {
	case <-p.quit:
		return true
	default:
		return false
	}
}

func (p *Player) run() {
	p.logger.Info("Player %d starting (human: %t)", p.id, p.human)

	var helper sync.WaitGroup
	if !p.human {
		helper.Add(1)
		go func() {
			defer helper.Done()
			p.runComputer()
		}()
	}
	defer func() {
		helper.Wait()
		p.logger.Info("Player %d terminated", p.id)
	}()

	for !p.terminated() {
		if !p.human {
			p.signalComputer()
		}
		select {
		case <-p.quit:
			return
		case slot := <-p.actions.Chan():
			p.act(slot)
		}
	}
}

// act processes one toggle and, when it completes a selection, submits
// the claim and waits for its verdict.
func (p *Player) act(slot int) {
	p.setState(PlayerStateActing)
	if !p.toggle(slot) {
		p.setState(PlayerStateAwaitingInput)
		return
	}
	p.submitClaim()
}

// toggle applies one action to the player and the board. It returns true
// when the selection reached FeatureSize, leaving the player awaiting a
// verdict. Nothing changes while the dealer has the board frozen.
func (p *Player) toggle(slot int) bool {
	p.lock.Lock()
	defer p.lock.Unlock()

	if i := indexOf(p.tokens, slot); i >= 0 {
		if !p.board.TryRemoveToken(p.id, slot) {
			p.logger.Trace("Player %d could not remove token from slot %d", p.id, slot)
			return false
		}
		p.tokens = append(p.tokens[:i], p.tokens[i+1:]...)
		p.logger.Trace("Player %d removed token from slot %d", p.id, slot)
		return false
	}

	if len(p.tokens) >= p.cfg.FeatureSize {
		return false
	}
	if !p.board.TryPlaceToken(p.id, slot) {
		p.logger.Trace("Player %d could not place token on slot %d", p.id, slot)
		return false
	}
	p.tokens = append(p.tokens, slot)
	p.logger.Trace("Player %d placed token on slot %d", p.id, slot)

	if len(p.tokens) < p.cfg.FeatureSize {
		return false
	}
	p.state = PlayerStateAwaitingVerdict
	return true
}

func (p *Player) submitClaim() {
	if err := p.claimer.SubmitClaim(p.id); err != nil {
		switch {
		case IsClaimPending(err):
			// the queued claim is judged against the current selection
			p.logger.Debug("Player %d already has a claim pending", p.id)
		case IsTerminated(err):
			return
		default:
			p.logger.Error("Failed to submit claim for player %d: %v", p.id, err)
			p.setState(PlayerStateAwaitingInput)
			return
		}
	} else {
		p.logger.Debug("Player %d submitted claim %v", p.id, p.Tokens())
	}

	select {
	case <-p.quit:
	case verdict := <-p.verdicts:
		p.applyVerdict(verdict)
	}
}

// deliver hands the verdict of the player's pending claim to its actor.
// Only the dealer calls it, once per claim.
func (p *Player) deliver(verdict Verdict) {
	p.lock.Lock()
	if verdict == VerdictPoint {
		p.score++
	}
	p.lock.Unlock()

	select {
	case p.verdicts <- verdict:
	default:
		p.logger.Warn("Player %d already has an undelivered verdict, dropping %s", p.id, verdict)
	}
}

func (p *Player) applyVerdict(verdict Verdict) {
	p.logger.Debug("Player %d received verdict %s", p.id, verdict)
	switch verdict {
	case VerdictPoint:
		p.freeze(p.cfg.PointFreeze)
		p.logger.Trace("Player %d sees %d cards on the board", p.id, p.board.CountCards())
	case VerdictPenalty:
		p.freeze(p.cfg.PenaltyFreeze)
	}
	if !p.terminated() {
		p.setState(PlayerStateAwaitingInput)
	}
}

// freeze blocks the actor for d, updating the display about once per
// FreezeTick. Termination cuts it short.
func (p *Player) freeze(d time.Duration) {
	p.setState(PlayerStateFrozen)
	defer p.display.SetFreeze(p.id, 0)

	deadline := time.Now().Add(d)
	for remaining := time.Until(deadline); remaining > 0; remaining = time.Until(deadline) {
		p.display.SetFreeze(p.id, remaining)
		timer := time.NewTimer(min(remaining, p.cfg.FreezeTick))
		select {
		case <-p.quit:
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

func (p *Player) signalComputer() {
	select {
	case p.computerSignal <- struct{}{}:
	default:
	}
}

// runComputer offers one random slot per signal from the actor, so the
// helper never produces faster than the actor consumes.
func (p *Player) runComputer() {
	p.logger.Info("Computer for player %d starting", p.id)
	defer p.logger.Info("Computer for player %d terminated", p.id)

	for {
		select {
		case <-p.quit:
			return
		case <-p.computerSignal:
		}

		slot := p.rand.Intn(p.cfg.TableSize)
		if err := p.actions.Enqueue(slot); err != nil {
			p.logger.Trace("Computer for player %d dropped slot %d: %v", p.id, slot, err)
		}

		if p.cfg.ComputerDelay > 0 {
			timer := time.NewTimer(p.cfg.ComputerDelay)
			select {
			case <-p.quit:
				timer.Stop()
				return
			case <-timer.C:
			}
		}
	}
}

func (p *Player) setState(state PlayerState) {
	p.lock.Lock()
	defer p.lock.Unlock()
	if p.state == PlayerStateTerminated {
		return
	}
	p.state = state
}

// The methods below are called by the dealer with the board frozen.

// dropToken forgets slot after the dealer removed its card and tokens.
func (p *Player) dropToken(slot int) {
	p.lock.Lock()
	defer p.lock.Unlock()
	if i := indexOf(p.tokens, slot); i >= 0 {
		p.tokens = append(p.tokens[:i], p.tokens[i+1:]...)
		p.logger.Debug("Player %d lost token on slot %d", p.id, slot)
	}
}

// clearTokens removes every token of the player from itself and the board.
func (p *Player) clearTokens() {
	p.lock.Lock()
	defer p.lock.Unlock()
	for _, slot := range p.tokens {
		p.board.RemoveToken(p.id, slot)
	}
	p.tokens = p.tokens[:0]
}

// reconcileTokens drops tokens the board no longer holds for the player.
func (p *Player) reconcileTokens() int {
	p.lock.Lock()
	defer p.lock.Unlock()
	kept := p.tokens[:0]
	dropped := 0
	for _, slot := range p.tokens {
		if p.board.HasToken(p.id, slot) {
			kept = append(kept, slot)
			continue
		}
		dropped++
	}
	p.tokens = kept
	return dropped
}

func (p *Player) drainActions() {
	p.actions.ClearQueue()
}

func indexOf(slots []int, slot int) int {
	for i, s := range slots {
		if s == slot {
			return i
		}
	}
	return -1
}
