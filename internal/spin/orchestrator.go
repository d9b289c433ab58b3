// Package spin drives one session's wager engine: bet debit, draw, staged
// reel stops, settlement and persistence.
package spin

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/osse101/reelfaucet/internal/betting"
	"github.com/osse101/reelfaucet/internal/domain"
	"github.com/osse101/reelfaucet/internal/ledger"
	"github.com/osse101/reelfaucet/internal/logger"
	"github.com/osse101/reelfaucet/internal/slots"
)

// Timings are the animation delays between stages
type Timings struct {
	Acceleration       time.Duration
	ReelInterval       time.Duration
	WinPresentation    time.Duration
	BigWinPresentation time.Duration
}

// DefaultTimings returns the standard animation pacing
func DefaultTimings() Timings {
	return Timings{
		Acceleration:       DefaultAcceleration,
		ReelInterval:       DefaultReelInterval,
		WinPresentation:    DefaultWinPresentation,
		BigWinPresentation: DefaultBigWinPresentation,
	}
}

// Config assembles an orchestrator. Catalog, Bets and Ledger are required.
type Config struct {
	SessionID string
	Catalog   *slots.Catalog
	Pool      slots.PoolConfig
	Bets      *betting.Controller
	Ledger    ledger.Adapter
	Scheduler Scheduler
	Presenter Presenter
	Timings   Timings
	RNG       func(n int) int  // Symbol draws; nil uses math/rand/v2
	Chance    func() float64   // Pool trigger draws; nil uses math/rand/v2
	Now       func() time.Time // Activity clock; nil uses time.Now
}

// Outcome is delivered once a spin has settled
type Outcome struct {
	Result   domain.SpinResult `json:"result"`
	Bet      int64             `json:"bet"`
	Message  string            `json:"message"`
	Degraded bool              `json:"degraded"`
	Snapshot domain.Snapshot   `json:"snapshot"`
}

type spinRun struct {
	ctx      context.Context
	bet      int64
	result   domain.SpinResult
	fillers  [domain.ReelCount][2]domain.Symbol
	degraded bool
	done     chan Outcome
}

// Orchestrator owns a session's ledger state and pool. All commands other
// than Snapshot are accepted only in PhaseIdle; the phase is checked and
// advanced under one mutex, so a second spin can never start while one is
// in flight. Ledger calls are made outside the mutex.
type Orchestrator struct {
	id        string
	resolver  *slots.Resolver
	gen       *slots.Generator
	pool      *slots.Pool
	bets      *betting.Controller
	ledger    ledger.Adapter
	scheduler Scheduler
	presenter Presenter
	timings   Timings
	now       func() time.Time

	mu         sync.Mutex
	phase      Phase
	state      domain.LedgerState
	lastWin    int64
	lastActive time.Time
	version    uint64

	saveMu       sync.Mutex
	savedVersion uint64

	wg sync.WaitGroup
}

// New loads the session's ledger state and returns an idle orchestrator
func New(ctx context.Context, cfg Config) (*Orchestrator, error) {
	if cfg.Catalog == nil || cfg.Bets == nil || cfg.Ledger == nil {
		return nil, fmt.Errorf("%w: catalog, bets and ledger are required", domain.ErrInvalidInput)
	}
	if cfg.Scheduler == nil {
		cfg.Scheduler = ClockScheduler{}
	}
	if cfg.Presenter == nil {
		cfg.Presenter = nopPresenter{}
	}
	if cfg.Timings == (Timings{}) {
		cfg.Timings = DefaultTimings()
	}
	if cfg.Pool == (slots.PoolConfig{}) {
		cfg.Pool = slots.DefaultPoolConfig()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	state, receipt := cfg.Ledger.Load(ctx)
	if _, err := cfg.Bets.Level(state.Level); err != nil {
		state.Level = betting.DefaultLevels[0].Number
	}
	state.CurrentBet = cfg.Bets.Reconcile(state.CurrentBet, state.Level, state.Credits)

	o := &Orchestrator{
		id:         cfg.SessionID,
		resolver:   slots.NewResolver(cfg.Catalog),
		gen:        slots.NewGenerator(cfg.Catalog, cfg.RNG),
		pool:       slots.NewPool(cfg.Pool, state.PoolValue, cfg.Chance),
		bets:       cfg.Bets,
		ledger:     cfg.Ledger,
		scheduler:  cfg.Scheduler,
		presenter:  cfg.Presenter,
		timings:    cfg.Timings,
		now:        cfg.Now,
		phase:      PhaseIdle,
		state:      state,
		lastActive: cfg.Now(),
	}
	o.state.PoolValue = o.pool.Value()

	if receipt.Degraded {
		o.reportDegraded(ctx, OperationLoad, 0, receipt)
	}
	return o, nil
}

// ID returns the session ID
func (o *Orchestrator) ID() string {
	return o.id
}

// Mode returns the ledger mode fixed at construction
func (o *Orchestrator) Mode() domain.LedgerMode {
	return o.ledger.Mode()
}

// Spin starts a spin with the current bet. The returned channel receives
// exactly one Outcome once the spin has settled. Cancelling ctx does not
// stop a started spin.
func (o *Orchestrator) Spin(ctx context.Context) (<-chan Outcome, error) {
	o.mu.Lock()
	if o.phase != PhaseIdle {
		o.mu.Unlock()
		return nil, domain.ErrSpinInProgress
	}
	bet := o.state.CurrentBet
	credits := o.state.Credits
	if bet > credits {
		o.mu.Unlock()
		return nil, fmt.Errorf("%w: bet %d, credits %d", domain.ErrInsufficientFunds, bet, credits)
	}
	if maxBet := o.bets.MaxBet(o.state.Level); bet < betting.MinBet || bet > maxBet {
		o.mu.Unlock()
		return nil, fmt.Errorf("%w: bet %d, level max %d", domain.ErrBetOutOfRange, bet, maxBet)
	}
	o.phase = PhaseDebiting
	o.lastActive = o.now()
	o.wg.Add(1)
	o.mu.Unlock()

	spinCtx := context.WithoutCancel(ctx)
	o.notify(spinCtx, domain.EventTypeSpinning, domain.SpinningPayload{Spinning: true, Phase: string(PhaseDebiting)})

	receipt := o.ledger.Debit(spinCtx, credits, bet)

	o.mu.Lock()
	o.state.Credits = receipt.Balance
	o.state.TotalSpins++
	o.state.TotalWagered += bet
	o.pool.Contribute(bet)

	o.phase = PhaseDrawing
	var result domain.SpinResult
	if o.pool.ShouldTrigger(o.state.TotalSpins) {
		result = o.pool.BigWin()
	} else {
		result = o.resolver.Draw(o.gen, domain.SpinRequest{
			Bet:             bet,
			LevelMultiplier: o.bets.Multiplier(o.state.Level),
		})
	}
	o.state.PoolValue = o.pool.Value()

	run := &spinRun{
		ctx:      spinCtx,
		bet:      bet,
		result:   result,
		degraded: receipt.Degraded,
		done:     make(chan Outcome, 1),
	}
	for i := range run.fillers {
		run.fillers[i] = [2]domain.Symbol{o.gen.Draw(), o.gen.Draw()}
	}
	o.version++
	o.phase = PhaseAccelerating
	balance := o.state.Credits
	o.mu.Unlock()

	if receipt.Degraded {
		o.reportDegraded(spinCtx, OperationDebit, bet, receipt)
	}
	o.notify(spinCtx, domain.EventTypeBalance, domain.BalancePayload{Credits: balance})
	o.notify(spinCtx, domain.EventTypeSpinning, domain.SpinningPayload{Spinning: true, Phase: string(PhaseAccelerating)})

	o.scheduler.AfterFunc(o.timings.Acceleration, func() { o.fullSpeed(run) })
	return run.done, nil
}

func (o *Orchestrator) fullSpeed(run *spinRun) {
	o.setPhase(PhaseSpinning)
	o.notify(run.ctx, domain.EventTypeSpinning, domain.SpinningPayload{Spinning: true, Phase: string(PhaseSpinning)})
	o.scheduler.AfterFunc(o.timings.ReelInterval, func() { o.stopReel(run, 0) })
}

// stopReel reveals the committed symbol of one reel
func (o *Orchestrator) stopReel(run *spinRun, reel int) {
	o.setPhase(reelStopped[reel])
	o.notify(run.ctx, domain.EventTypeReelStop, domain.ReelStopPayload{
		Reel:   reel + 1,
		Target: run.result.Symbols[reel],
		Above:  run.fillers[reel][0],
		Below:  run.fillers[reel][1],
	})

	if reel+1 < domain.ReelCount {
		o.scheduler.AfterFunc(o.timings.ReelInterval, func() { o.stopReel(run, reel+1) })
		return
	}

	o.setPhase(PhaseSettling)
	switch {
	case run.result.IsBigWin:
		o.scheduler.AfterFunc(o.timings.BigWinPresentation, func() { o.settle(run) })
	case run.result.WinAmount > 0:
		o.scheduler.AfterFunc(o.timings.WinPresentation, func() { o.settle(run) })
	default:
		o.settle(run)
	}
}

func (o *Orchestrator) settle(run *spinRun) {
	defer o.wg.Done()
	ctx := run.ctx
	amount := run.result.WinAmount
	degraded := run.degraded

	var receipt ledger.Receipt
	if amount > 0 {
		receipt = o.ledger.Credit(ctx, o.credits(), amount, domain.ReasonSlotsWin)
		degraded = degraded || receipt.Degraded
	}

	o.mu.Lock()
	if amount > 0 {
		o.state.Credits = receipt.Balance
		o.state.TotalWon += amount
		o.lastWin = amount
	}
	prevBet := o.state.CurrentBet
	o.state.CurrentBet = o.bets.Reconcile(o.state.CurrentBet, o.state.Level, o.state.Credits)
	o.version++
	o.mu.Unlock()

	if receipt.Degraded {
		o.reportDegraded(ctx, OperationCredit, amount, receipt)
	}

	if err := o.persist(ctx); err != nil {
		degraded = true
		o.reportDegraded(ctx, OperationSave, 0, ledger.Receipt{Balance: o.credits(), Degraded: true, Cause: err})
	}

	o.mu.Lock()
	o.phase = PhaseIdle
	o.lastActive = o.now()
	snap := o.snapshotLocked()
	o.mu.Unlock()

	msg := formatMessage(run.result, run.bet)
	logger.FromContext(ctx).Info(LogMsgSpinSettled,
		"session_id", o.id, "bet", run.bet, "win_amount", amount,
		"big_win", run.result.IsBigWin, "credits", snap.Credits, "degraded", degraded)

	if amount > 0 {
		o.notify(ctx, domain.EventTypeBalance, domain.BalancePayload{Credits: snap.Credits})
		o.notify(ctx, domain.EventTypeLastWin, domain.LastWinPayload{Amount: snap.LastWin})
	}
	if snap.CurrentBet != prevBet {
		o.notify(ctx, domain.EventTypeBet, domain.BetPayload{CurrentBet: snap.CurrentBet, MaxBet: snap.MaxBet, Level: snap.Level})
	}
	settled := domain.SpinSettledPayload{Result: run.result, Bet: run.bet, Message: msg}
	o.notify(ctx, domain.EventTypeSpinSettled, settled)
	if run.result.IsBigWin {
		o.notify(ctx, domain.EventTypeBigWin, settled)
	}
	o.notify(ctx, domain.EventTypeSpinning, domain.SpinningPayload{Spinning: false, Phase: string(PhaseIdle)})

	run.done <- Outcome{
		Result:   run.result,
		Bet:      run.bet,
		Message:  msg,
		Degraded: degraded,
		Snapshot: snap,
	}
}

// IncreaseBet raises the bet by one unit
func (o *Orchestrator) IncreaseBet(ctx context.Context) (domain.Snapshot, error) {
	return o.adjustBet(ctx, o.bets.Increase)
}

// DecreaseBet lowers the bet by one unit
func (o *Orchestrator) DecreaseBet(ctx context.Context) (domain.Snapshot, error) {
	return o.adjustBet(ctx, o.bets.Decrease)
}

func (o *Orchestrator) adjustBet(ctx context.Context, adjust func(bet int64, level int, credits int64) (int64, error)) (domain.Snapshot, error) {
	o.mu.Lock()
	if o.phase != PhaseIdle {
		o.mu.Unlock()
		return domain.Snapshot{}, domain.ErrSpinInProgress
	}
	bet, err := adjust(o.state.CurrentBet, o.state.Level, o.state.Credits)
	if err != nil {
		o.mu.Unlock()
		return domain.Snapshot{}, err
	}
	o.state.CurrentBet = bet
	o.lastActive = o.now()
	o.version++
	snap := o.snapshotLocked()
	o.mu.Unlock()

	o.notify(ctx, domain.EventTypeBet, domain.BetPayload{CurrentBet: snap.CurrentBet, MaxBet: snap.MaxBet, Level: snap.Level})
	return snap, nil
}

// Claim acknowledges the last win and clears it. Returns the claimed amount.
func (o *Orchestrator) Claim(ctx context.Context) (int64, error) {
	o.mu.Lock()
	if o.phase != PhaseIdle {
		o.mu.Unlock()
		return 0, domain.ErrSpinInProgress
	}
	amount := o.lastWin
	if amount == 0 {
		o.mu.Unlock()
		return 0, domain.ErrNothingToClaim
	}
	o.lastWin = 0
	o.lastActive = o.now()
	o.mu.Unlock()

	logger.FromContext(ctx).Info("Winnings claimed", "session_id", o.id, "amount", amount)
	o.notify(ctx, domain.EventTypeLastWin, domain.LastWinPayload{Amount: 0})
	return amount, nil
}

// LevelUp moves to the target level when lifetime winnings cover its cost.
// The new level is persisted immediately.
func (o *Orchestrator) LevelUp(ctx context.Context, target int) (domain.Snapshot, error) {
	o.mu.Lock()
	if o.phase != PhaseIdle {
		o.mu.Unlock()
		return domain.Snapshot{}, domain.ErrSpinInProgress
	}
	level, err := o.bets.LevelUp(target, o.state.TotalWon)
	if err != nil {
		o.mu.Unlock()
		return domain.Snapshot{}, err
	}
	o.state.Level = level.Number
	o.state.CurrentBet = o.bets.Reconcile(o.state.CurrentBet, o.state.Level, o.state.Credits)
	o.lastActive = o.now()
	o.version++
	snap := o.snapshotLocked()
	o.mu.Unlock()

	if err := o.persist(ctx); err != nil {
		o.reportDegraded(ctx, OperationSave, 0, ledger.Receipt{Balance: snap.Credits, Degraded: true, Cause: err})
	}
	o.notify(ctx, domain.EventTypeBet, domain.BetPayload{CurrentBet: snap.CurrentBet, MaxBet: snap.MaxBet, Level: snap.Level})
	return snap, nil
}

// Snapshot returns the presentation view. It is available in every phase.
func (o *Orchestrator) Snapshot() domain.Snapshot {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.snapshotLocked()
}

// Phase returns the current state machine phase
func (o *Orchestrator) Phase() Phase {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.phase
}

// IdleSince reports whether the orchestrator is idle and when it was last used
func (o *Orchestrator) IdleSince() (time.Time, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.lastActive, o.phase == PhaseIdle
}

// Checkpoint persists unsaved changes
func (o *Orchestrator) Checkpoint(ctx context.Context) error {
	return o.persist(ctx)
}

// Shutdown waits for an in-flight spin to settle, then checkpoints
func (o *Orchestrator) Shutdown(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		o.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}
	return o.persist(ctx)
}

// persist saves the latest state. Saves are serialised and versioned so an
// older state never overwrites a newer one.
func (o *Orchestrator) persist(ctx context.Context) error {
	o.saveMu.Lock()
	defer o.saveMu.Unlock()

	o.mu.Lock()
	state := o.state
	version := o.version
	o.mu.Unlock()

	if version == o.savedVersion {
		return nil
	}
	if err := o.ledger.Save(ctx, state); err != nil {
		return err
	}
	o.savedVersion = version
	return nil
}

func (o *Orchestrator) snapshotLocked() domain.Snapshot {
	s := o.state
	return domain.Snapshot{
		SessionID:    o.id,
		Mode:         o.ledger.Mode(),
		Phase:        string(o.phase),
		Spinning:     o.phase != PhaseIdle,
		Credits:      s.Credits,
		CurrentBet:   s.CurrentBet,
		MaxBet:       o.bets.MaxBet(s.Level),
		Level:        s.Level,
		LastWin:      o.lastWin,
		TotalSpins:   s.TotalSpins,
		TotalWagered: s.TotalWagered,
		TotalWon:     s.TotalWon,
		PoolValue:    s.PoolValue.StringFixed(2),
		SignupPrompt: o.ledger.Mode() == domain.LedgerModeLocal &&
			s.TotalWon > SignupPromptMinWon &&
			s.TotalSpins > 0 && s.TotalSpins%SignupPromptEvery == 0,
	}
}

func (o *Orchestrator) setPhase(p Phase) {
	o.mu.Lock()
	o.phase = p
	o.mu.Unlock()
}

func (o *Orchestrator) credits() int64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state.Credits
}

func (o *Orchestrator) notify(ctx context.Context, eventType string, payload interface{}) {
	o.presenter.Present(ctx, Notification{SessionID: o.id, Type: eventType, Payload: payload})
}

func (o *Orchestrator) reportDegraded(ctx context.Context, op string, amount int64, receipt ledger.Receipt) {
	reason := "unknown"
	if receipt.Cause != nil {
		reason = receipt.Cause.Error()
	}
	logger.FromContext(ctx).Error(LogMsgLedgerDegraded,
		"session_id", o.id, "operation", op, "amount", amount,
		"balance", receipt.Balance, "degraded", true, "error", reason)
	o.notify(ctx, domain.EventTypeDegraded, domain.DegradedPayload{
		Operation: op,
		Amount:    amount,
		Balance:   receipt.Balance,
		Reason:    reason,
	})
}
