package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/osse101/reelfaucet/internal/balance"
	"github.com/osse101/reelfaucet/internal/domain"
	"github.com/osse101/reelfaucet/internal/kvstore"
	"github.com/osse101/reelfaucet/internal/logger"
)

// BalanceService is the authoritative balance API
type BalanceService interface {
	Fetch(ctx context.Context, token string) (balance.Account, error)
	Add(ctx context.Context, token string, m balance.Mutation) (int64, error)
	Subtract(ctx context.Context, token string, m balance.Mutation) (int64, error)
}

// RemoteAdapter moves credits through the balance service with the
// player's bearer token. Counters and the pool, which the service does
// not track, are backed up to a stats record.
type RemoteAdapter struct {
	service BalanceService
	token   string
	store   kvstore.Store
	key     string
	now     func() time.Time
}

// NewRemoteAdapter creates a signed-in adapter; playerID scopes the stats record
func NewRemoteAdapter(service BalanceService, token string, store kvstore.Store, playerID string) *RemoteAdapter {
	return &RemoteAdapter{
		service: service,
		token:   token,
		store:   store,
		key:     StatsKey(playerID),
		now:     time.Now,
	}
}

func (a *RemoteAdapter) Mode() domain.LedgerMode {
	return domain.LedgerModeRemote
}

// Load merges the service balance and level into the stats backup.
// When the service is unreachable the backup's last confirmed balance is used.
func (a *RemoteAdapter) Load(ctx context.Context) (domain.LedgerState, Receipt) {
	log := logger.FromContext(ctx)

	state := NewState(0)
	raw, err := a.store.Get(ctx, a.key)
	switch {
	case err == nil:
		if decoded, decodeErr := decodeRecord(raw); decodeErr == nil {
			state = decoded
		} else {
			log.Warn("Ignoring unreadable stats record", "key", a.key, "error", decodeErr)
		}
	case !errors.Is(err, domain.ErrRecordNotFound):
		log.Warn("Failed to load stats record", "key", a.key, "error", err)
	}

	account, err := a.service.Fetch(ctx, a.token)
	if err != nil {
		log.Error("Balance fetch failed, using last known balance", "error", err, "balance", state.Credits, "degraded", true)
		return state, degraded(state.Credits, err)
	}

	state.Credits = account.SpendableBalance
	if account.Level >= DefaultLevel {
		state.Level = account.Level
	}
	return state, Receipt{Balance: state.Credits}
}

func (a *RemoteAdapter) Debit(ctx context.Context, current, amount int64) Receipt {
	newBalance, err := a.service.Subtract(ctx, a.token, balance.Mutation{
		Amount:      amount,
		Source:      domain.ReasonSlotsBet,
		Description: fmt.Sprintf(DescriptionBetFormat, amount),
	})
	if err != nil {
		return degraded(current-amount, err)
	}
	return Receipt{Balance: newBalance}
}

func (a *RemoteAdapter) Credit(ctx context.Context, current, amount int64, reason string) Receipt {
	newBalance, err := a.service.Add(ctx, a.token, balance.Mutation{
		Amount:      amount,
		Source:      reason,
		Description: fmt.Sprintf(DescriptionWinFormat, amount),
	})
	if err != nil {
		return degraded(current+amount, err)
	}
	return Receipt{Balance: newBalance}
}

// Save writes the stats backup record
func (a *RemoteAdapter) Save(ctx context.Context, state domain.LedgerState) error {
	raw, err := encodeRecord(state, a.now())
	if err != nil {
		return err
	}
	return a.store.Set(ctx, a.key, raw)
}
