// Package session owns the live wager engines, one per player session.
package session

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/osse101/reelfaucet/internal/betting"
	"github.com/osse101/reelfaucet/internal/domain"
	"github.com/osse101/reelfaucet/internal/event"
	"github.com/osse101/reelfaucet/internal/kvstore"
	"github.com/osse101/reelfaucet/internal/ledger"
	"github.com/osse101/reelfaucet/internal/logger"
	"github.com/osse101/reelfaucet/internal/metrics"
	"github.com/osse101/reelfaucet/internal/slots"
	"github.com/osse101/reelfaucet/internal/spin"
)

// Publisher delivers engine notifications to the event bus
type Publisher interface {
	PublishWithRetry(ctx context.Context, evt event.Event)
}

// Config wires the shared, read-only parts of every engine
type Config struct {
	Catalog         *slots.Catalog
	Pool            slots.PoolConfig
	Bets            *betting.Controller
	Store           kvstore.Store
	Balance         ledger.BalanceService // nil disables signed-in sessions
	StartingCredits int64
	Timings         spin.Timings
	Scheduler       spin.Scheduler
	Publisher       Publisher
	Size            int
	IdleTTL         time.Duration
}

// Session is a live engine plus the identity it was created with
type Session struct {
	*spin.Orchestrator
	DemoID    string // empty for signed-in sessions
	CreatedAt time.Time

	key string
}

// Manager creates sessions and keeps them in an expiring LRU. Evicted
// sessions are shut down in the background, which saves their state.
//
// At most one live session owns a ledger record. Create on a record that
// is already live returns that session, and a record whose session is
// being loaded or saved is not loaded again until that finishes.
type Manager struct {
	cfg      Config
	sessions *expirable.LRU[string, *Session]
	evicting sync.WaitGroup

	mu      sync.Mutex
	byKey   map[string]*Session
	pending map[string]chan struct{}
}

// NewManager validates the config and creates an empty registry
func NewManager(cfg Config) (*Manager, error) {
	if cfg.Catalog == nil || cfg.Bets == nil || cfg.Store == nil {
		return nil, fmt.Errorf("%w: catalog, bets and store are required", domain.ErrInvalidInput)
	}
	if cfg.Size <= 0 {
		cfg.Size = DefaultCacheSize
	}
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = DefaultIdleTTL
	}

	m := &Manager{
		cfg:     cfg,
		byKey:   make(map[string]*Session),
		pending: make(map[string]chan struct{}),
	}
	m.sessions = expirable.NewLRU[string, *Session](cfg.Size, m.onEvict, cfg.IdleTTL)
	return m, nil
}

// Create starts a session. A non-empty token binds it to the balance
// service; otherwise it is a demo session on the record for demoID, and a
// fresh demo ID is issued when none is given. If a live session already
// owns the same record it is returned instead.
func (m *Manager) Create(ctx context.Context, token, demoID string) (*Session, error) {
	var key string
	if token != "" {
		if m.cfg.Balance == nil {
			return nil, fmt.Errorf("%w: signed-in play is not configured", domain.ErrInvalidInput)
		}
		key = ledger.StatsKey(PlayerID(token))
		demoID = ""
	} else {
		if demoID == "" {
			demoID = uuid.New().String()
		}
		key = ledger.DemoKey(demoID)
	}

	live, reserved, err := m.claim(ctx, key)
	if err != nil || live != nil {
		return live, err
	}

	s, err := m.open(ctx, token, demoID)
	if err != nil {
		m.release(key, reserved, nil)
		return nil, err
	}
	s.key = key
	m.release(key, reserved, s)
	return s, nil
}

// claim returns the live session for key, or reserves key for the caller,
// who must then call release with the returned channel. It waits while
// another load or save of the same record is in progress.
func (m *Manager) claim(ctx context.Context, key string) (*Session, chan struct{}, error) {
	for {
		m.mu.Lock()
		if s, ok := m.byKey[key]; ok {
			m.mu.Unlock()
			// the LRU lock is taken outside m.mu
			if _, err := m.Get(s.ID()); err == nil {
				logger.FromContext(ctx).Info(LogMsgSessionReused, "session_id", s.ID())
				return s, nil, nil
			}
			// evicted in between; its save is now pending
			continue
		}
		wait, busy := m.pending[key]
		if !busy {
			reserved := make(chan struct{})
			m.pending[key] = reserved
			m.mu.Unlock()
			return nil, reserved, nil
		}
		m.mu.Unlock()

		select {
		case <-wait:
		case <-ctx.Done():
			return nil, nil, ctx.Err()
		}
	}
}

// release publishes s (if any) as the owner of key and wakes waiters
func (m *Manager) release(key string, reserved chan struct{}, s *Session) {
	if s != nil {
		m.mu.Lock()
		m.byKey[key] = s
		m.mu.Unlock()

		m.sessions.Add(s.ID(), s)
		metrics.ActiveSessions.Set(float64(m.sessions.Len()))
	}
	m.unreserve(key, reserved)
}

func (m *Manager) open(ctx context.Context, token, demoID string) (*Session, error) {
	id := uuid.New().String()

	var adapter ledger.Adapter
	if token != "" {
		adapter = ledger.NewRemoteAdapter(m.cfg.Balance, token, m.cfg.Store, PlayerID(token))
	} else {
		adapter = ledger.NewLocalAdapter(m.cfg.Store, demoID, m.cfg.StartingCredits)
	}

	orch, err := spin.New(ctx, spin.Config{
		SessionID: id,
		Catalog:   m.cfg.Catalog,
		Pool:      m.cfg.Pool,
		Bets:      m.cfg.Bets,
		Ledger:    adapter,
		Scheduler: m.cfg.Scheduler,
		Presenter: m.presenter(),
		Timings:   m.cfg.Timings,
	})
	if err != nil {
		return nil, err
	}

	mode := string(orch.Mode())
	metrics.SessionsCreated.WithLabelValues(mode).Inc()
	logger.FromContext(ctx).Info(LogMsgSessionCreated, "session_id", id, "mode", mode)
	return &Session{Orchestrator: orch, DemoID: demoID, CreatedAt: time.Now()}, nil
}

// Get returns a live session and renews its idle lease
func (m *Manager) Get(id string) (*Session, error) {
	s, ok := m.sessions.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrSessionNotFound, id)
	}
	m.sessions.Add(id, s)
	return s, nil
}

// Len is the number of live sessions
func (m *Manager) Len() int {
	return m.sessions.Len()
}

// Checkpoint saves every idle session with unsaved changes. Sessions in
// the middle of a spin save themselves on settle and are skipped.
func (m *Manager) Checkpoint(ctx context.Context) (saved, failed int) {
	log := logger.FromContext(ctx)
	for _, s := range m.sessions.Values() {
		if _, idle := s.IdleSince(); !idle {
			continue
		}
		if err := s.Checkpoint(ctx); err != nil {
			failed++
			metrics.CheckpointsTotal.WithLabelValues(metrics.OutcomeFailed).Inc()
			log.Error(LogMsgCheckpointFail, "session_id", s.ID(), "error", err)
			continue
		}
		saved++
		metrics.CheckpointsTotal.WithLabelValues(metrics.OutcomeSaved).Inc()
	}
	metrics.ActiveSessions.Set(float64(m.sessions.Len()))
	return saved, failed
}

// Shutdown waits for in-flight spins and saves every session
func (m *Manager) Shutdown(ctx context.Context) error {
	var errs []error
	for _, s := range m.sessions.Values() {
		if err := s.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("session %s: %w", s.ID(), err))
		}
	}

	done := make(chan struct{})
	go func() {
		m.evicting.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		errs = append(errs, ctx.Err())
	}
	return errors.Join(errs...)
}

// onEvict runs under the LRU lock, so the save happens on its own goroutine.
// The record stays reserved until the save finishes.
func (m *Manager) onEvict(id string, s *Session) {
	var saved chan struct{}
	m.mu.Lock()
	if m.byKey[s.key] == s {
		delete(m.byKey, s.key)
		saved = make(chan struct{})
		m.pending[s.key] = saved
	}
	m.mu.Unlock()

	m.evicting.Add(1)
	go func() {
		defer m.evicting.Done()
		defer m.unreserve(s.key, saved)
		ctx, cancel := context.WithTimeout(context.Background(), EvictionShutdownTimeout)
		defer cancel()

		if err := s.Shutdown(ctx); err != nil {
			logger.FromContext(ctx).Error(LogMsgEvictionFailed, "session_id", id, "error", err)
			return
		}
		logger.FromContext(ctx).Info(LogMsgSessionEvicted, "session_id", id)
	}()
}

func (m *Manager) unreserve(key string, ch chan struct{}) {
	if ch == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.pending[key] == ch {
		delete(m.pending, key)
	}
	close(ch)
}

func (m *Manager) presenter() spin.Presenter {
	if m.cfg.Publisher == nil {
		return nil
	}
	return spin.PresenterFunc(func(ctx context.Context, n spin.Notification) {
		m.cfg.Publisher.PublishWithRetry(ctx, event.NewSessionEvent(n.SessionID, n.Type, n.Payload))
	})
}

// PlayerID derives a stable, non-reversible stats key from a bearer token
func PlayerID(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:16])
}
