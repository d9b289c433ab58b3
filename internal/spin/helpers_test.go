package spin

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/osse101/reelfaucet/internal/balance"
	"github.com/osse101/reelfaucet/internal/betting"
	"github.com/osse101/reelfaucet/internal/domain"
	"github.com/osse101/reelfaucet/internal/kvstore"
	"github.com/osse101/reelfaucet/internal/ledger"
	"github.com/osse101/reelfaucet/internal/slots"
)

// Generator rolls that land on a given symbol with the default weights
const (
	rollCherry = 0
	rollBanana = 35
	rollOrange = 80
	rollSeven  = 95
)

func never() float64  { return 0.999 }
func always() float64 { return 0 }

// rolls replays a fixed roll sequence, then keeps returning the last roll
func rolls(seq ...int) func(int) int {
	var mu sync.Mutex
	i := 0
	return func(n int) int {
		mu.Lock()
		defer mu.Unlock()
		r := seq[min(i, len(seq)-1)]
		i++
		return r % n
	}
}

type recorder struct {
	mu    sync.Mutex
	notes []Notification
}

func (r *recorder) Present(_ context.Context, n Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notes = append(r.notes, n)
}

func (r *recorder) ofType(eventType string) []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Notification
	for _, n := range r.notes {
		if n.Type == eventType {
			out = append(out, n)
		}
	}
	return out
}

func (r *recorder) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.notes))
	for i, n := range r.notes {
		out[i] = n.Type
	}
	return out
}

type countingAdapter struct {
	ledger.Adapter
	debits  atomic.Int32
	credits atomic.Int32
}

func (c *countingAdapter) Debit(ctx context.Context, current, amount int64) ledger.Receipt {
	c.debits.Add(1)
	return c.Adapter.Debit(ctx, current, amount)
}

func (c *countingAdapter) Credit(ctx context.Context, current, amount int64, reason string) ledger.Receipt {
	c.credits.Add(1)
	return c.Adapter.Credit(ctx, current, amount, reason)
}

type MockBalanceService struct {
	mock.Mock
}

func (m *MockBalanceService) Fetch(ctx context.Context, token string) (balance.Account, error) {
	args := m.Called(ctx, token)
	return args.Get(0).(balance.Account), args.Error(1)
}

func (m *MockBalanceService) Add(ctx context.Context, token string, mut balance.Mutation) (int64, error) {
	args := m.Called(ctx, token, mut)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockBalanceService) Subtract(ctx context.Context, token string, mut balance.Mutation) (int64, error) {
	args := m.Called(ctx, token, mut)
	return args.Get(0).(int64), args.Error(1)
}

type harness struct {
	orch    *Orchestrator
	sched   *ManualScheduler
	rec     *recorder
	store   *kvstore.MemoryStore
	adapter *countingAdapter
}

type harnessOption func(*Config)

func withRNG(rng func(int) int) harnessOption {
	return func(c *Config) { c.RNG = rng }
}

func withChance(chance func() float64) harnessOption {
	return func(c *Config) { c.Chance = chance }
}

func withAdapter(a ledger.Adapter) harnessOption {
	return func(c *Config) { c.Ledger = a }
}

// seedDemo stores a demo record for "demo-1" before the orchestrator loads it
func seedDemo(t *testing.T, store kvstore.Store, state domain.LedgerState) {
	t.Helper()
	require.NoError(t, ledger.NewLocalAdapter(store, "demo-1", 500).Save(context.Background(), state))
}

func newHarness(t *testing.T, store *kvstore.MemoryStore, opts ...harnessOption) *harness {
	t.Helper()
	if store == nil {
		store = kvstore.NewMemoryStore()
	}

	catalog, err := slots.NewProfileCatalog(slots.ProfileTable)
	require.NoError(t, err)
	bets, err := betting.NewController(nil)
	require.NoError(t, err)

	h := &harness{
		sched: NewManualScheduler(),
		rec:   &recorder{},
		store: store,
	}
	cfg := Config{
		SessionID: "sess-1",
		Catalog:   catalog,
		Bets:      bets,
		Ledger:    ledger.NewLocalAdapter(store, "demo-1", 500),
		Scheduler: h.sched,
		Presenter: h.rec,
		Timings:   DefaultTimings(),
		RNG:       rolls(rollBanana, rollCherry, rollOrange),
		Chance:    never,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	h.adapter = &countingAdapter{Adapter: cfg.Ledger}
	cfg.Ledger = h.adapter

	h.orch, err = New(context.Background(), cfg)
	require.NoError(t, err)
	return h
}

// settle runs the scheduler to completion and returns the outcome
func (h *harness) settle(t *testing.T, done <-chan Outcome) Outcome {
	t.Helper()
	h.sched.RunAll()
	select {
	case out := <-done:
		return out
	default:
		t.Fatal("spin did not settle")
		return Outcome{}
	}
}

func resultWith(amount int64, big bool) domain.SpinResult {
	return domain.SpinResult{IsWin: amount > 0, IsBigWin: big, WinAmount: amount}
}
