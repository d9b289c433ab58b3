package ledger

import (
	"fmt"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/shopspring/decimal"

	"github.com/osse101/reelfaucet/internal/domain"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// record is the persisted form of a ledger state. In remote mode Credits
// holds the last balance the service confirmed.
type record struct {
	Credits      int64           `json:"credits"`
	TotalSpins   int64           `json:"totalSpins"`
	TotalWagered int64           `json:"totalWagered"`
	TotalWon     int64           `json:"totalWon"`
	CurrentBet   int64           `json:"currentBet"`
	Level        int             `json:"level"`
	BigWinPool   decimal.Decimal `json:"bigWinPool"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

func encodeRecord(state domain.LedgerState, now time.Time) ([]byte, error) {
	raw, err := json.Marshal(record{
		Credits:      state.Credits,
		TotalSpins:   state.TotalSpins,
		TotalWagered: state.TotalWagered,
		TotalWon:     state.TotalWon,
		CurrentBet:   state.CurrentBet,
		Level:        state.Level,
		BigWinPool:   state.PoolValue,
		UpdatedAt:    now.UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode ledger record: %w", err)
	}
	return raw, nil
}

func decodeRecord(raw []byte) (domain.LedgerState, error) {
	var rec record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return domain.LedgerState{}, fmt.Errorf("failed to decode ledger record: %w", err)
	}

	state := domain.LedgerState{
		Credits:      rec.Credits,
		TotalSpins:   rec.TotalSpins,
		TotalWagered: rec.TotalWagered,
		TotalWon:     rec.TotalWon,
		CurrentBet:   rec.CurrentBet,
		Level:        rec.Level,
		PoolValue:    rec.BigWinPool,
	}
	if state.CurrentBet < DefaultBet {
		state.CurrentBet = DefaultBet
	}
	if state.Level < DefaultLevel {
		state.Level = DefaultLevel
	}
	if state.PoolValue.IsNegative() {
		state.PoolValue = decimal.Zero
	}
	return state, nil
}
