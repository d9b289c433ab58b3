// Package ledger reconciles credit movements against the balance backend a
// session was bound to at construction.
package ledger

import (
	"context"

	"github.com/osse101/reelfaucet/internal/domain"
)

// Receipt is the outcome of a balance movement. Degraded receipts carry the
// locally computed balance and the backend failure in Cause.
type Receipt struct {
	Balance  int64
	Degraded bool
	Cause    error
}

// Adapter is the balance backend of one session. Debit and Credit never
// fail: the worst case is a degraded receipt.
type Adapter interface {
	Mode() domain.LedgerMode
	Load(ctx context.Context) (domain.LedgerState, Receipt)
	Debit(ctx context.Context, current, amount int64) Receipt
	Credit(ctx context.Context, current, amount int64, reason string) Receipt
	Save(ctx context.Context, state domain.LedgerState) error
}

// DemoKey is the local record key of a demo player
func DemoKey(demoID string) string {
	return KeyPrefixDemo + demoID
}

// StatsKey is the stats backup key of a signed-in player
func StatsKey(playerID string) string {
	return KeyPrefixStats + playerID
}

// NewState is the ledger state of a player never seen before
func NewState(credits int64) domain.LedgerState {
	return domain.LedgerState{
		Credits:    credits,
		CurrentBet: DefaultBet,
		Level:      DefaultLevel,
	}
}

func degraded(balance int64, cause error) Receipt {
	return Receipt{Balance: balance, Degraded: true, Cause: cause}
}
