package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/osse101/reelfaucet/internal/domain"
	"github.com/osse101/reelfaucet/internal/kvstore"
	"github.com/osse101/reelfaucet/internal/logger"
)

// LocalAdapter keeps demo credits in a key-value record. Balance movements
// are pure arithmetic and never degrade; only Save touches the store.
type LocalAdapter struct {
	store           kvstore.Store
	key             string
	startingCredits int64
	now             func() time.Time
}

// NewLocalAdapter creates a demo adapter for the record under DemoKey(demoID)
func NewLocalAdapter(store kvstore.Store, demoID string, startingCredits int64) *LocalAdapter {
	if startingCredits <= 0 {
		startingCredits = DefaultStartingCredits
	}
	return &LocalAdapter{
		store:           store,
		key:             DemoKey(demoID),
		startingCredits: startingCredits,
		now:             time.Now,
	}
}

func (a *LocalAdapter) Mode() domain.LedgerMode {
	return domain.LedgerModeLocal
}

// Load reads the demo record. A missing record starts a new player; an
// unreadable one also does, with a degraded receipt.
func (a *LocalAdapter) Load(ctx context.Context) (domain.LedgerState, Receipt) {
	raw, err := a.store.Get(ctx, a.key)
	if errors.Is(err, domain.ErrRecordNotFound) {
		state := NewState(a.startingCredits)
		return state, Receipt{Balance: state.Credits}
	}
	if err == nil {
		var state domain.LedgerState
		if state, err = decodeRecord(raw); err == nil {
			return state, Receipt{Balance: state.Credits}
		}
	}

	logger.FromContext(ctx).Error("Failed to load demo record", "key", a.key, "error", err)
	state := NewState(a.startingCredits)
	return state, degraded(state.Credits, err)
}

func (a *LocalAdapter) Debit(_ context.Context, current, amount int64) Receipt {
	return Receipt{Balance: current - amount}
}

func (a *LocalAdapter) Credit(_ context.Context, current, amount int64, _ string) Receipt {
	return Receipt{Balance: current + amount}
}

func (a *LocalAdapter) Save(ctx context.Context, state domain.LedgerState) error {
	raw, err := encodeRecord(state, a.now())
	if err != nil {
		return err
	}
	return a.store.Set(ctx, a.key, raw)
}
