package slots

import (
	"fmt"
	"math/rand/v2"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/osse101/reelfaucet/internal/domain"
)

// PoolConfig holds the fixed Big Win Pool parameters
type PoolConfig struct {
	Threshold              float64 `json:"threshold" validate:"gt=0"`
	TriggerProbability     float64 `json:"trigger_probability" validate:"gte=0,lte=1"`
	ContributionRate       float64 `json:"contribution_rate" validate:"gte=0,lte=1"`
	MinimumEngagementSpins int64   `json:"minimum_engagement_spins" validate:"gte=0"`
	PayoutFraction         float64 `json:"payout_fraction" validate:"gt=0,lt=1"`
}

// DefaultPoolConfig returns the production pool parameters
func DefaultPoolConfig() PoolConfig {
	return PoolConfig{
		Threshold:              DefaultPoolThreshold,
		TriggerProbability:     DefaultPoolTriggerProbability,
		ContributionRate:       DefaultPoolContributionRate,
		MinimumEngagementSpins: DefaultPoolMinimumSpins,
		PayoutFraction:         DefaultPoolPayoutFraction,
	}
}

// Validate checks the parameters against their tag bounds
func (c PoolConfig) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("%w: pool config: %v", domain.ErrInvalidInput, err)
	}
	return nil
}

// Pool accumulates a fraction of every wager and occasionally pays most of
// it out as a big win. The value only grows, except on Consume where it is
// scaled by (1 - PayoutFraction) and never zeroed.
//
// A Pool is owned by one session's orchestrator and is not safe for
// concurrent use.
type Pool struct {
	config    PoolConfig
	value     decimal.Decimal
	threshold decimal.Decimal
	chance    func() float64 // Injectable for testing; returns [0, 1)
}

// NewPool creates a pool seeded with a persisted value. A nil chance uses math/rand/v2.
func NewPool(config PoolConfig, initial decimal.Decimal, chance func() float64) *Pool {
	if chance == nil {
		chance = rand.Float64 //nolint:gosec // Game logic randomness, not security critical
	}
	if initial.IsNegative() {
		initial = decimal.Zero
	}
	return &Pool{
		config:    config,
		value:     initial,
		threshold: decimal.NewFromFloat(config.Threshold),
		chance:    chance,
	}
}

// Contribute feeds bet × ContributionRate into the pool
func (p *Pool) Contribute(bet int64) {
	if bet <= 0 {
		return
	}
	p.value = p.value.Add(decimal.NewFromInt(bet).Mul(decimal.NewFromFloat(p.config.ContributionRate)))
}

// ShouldTrigger reports whether the pool pays out on this spin
func (p *Pool) ShouldTrigger(totalSpins int64) bool {
	if p.value.LessThan(p.threshold) {
		return false
	}
	if totalSpins <= p.config.MinimumEngagementSpins {
		return false
	}
	return p.chance() < p.config.TriggerProbability
}

// Consume awards floor(value × PayoutFraction) and retains the remainder
func (p *Pool) Consume() int64 {
	fraction := decimal.NewFromFloat(p.config.PayoutFraction)
	award := p.value.Mul(fraction).Floor().IntPart()
	p.value = p.value.Mul(decimal.NewFromInt(1).Sub(fraction))
	return award
}

// BigWin consumes the pool and builds the celebratory result
func (p *Pool) BigWin() domain.SpinResult {
	amount := p.Consume()
	return domain.SpinResult{
		Symbols:   [domain.ReelCount]domain.Symbol{BigWinSymbol, BigWinSymbol, BigWinSymbol},
		IsWin:     true,
		IsBigWin:  true,
		WinAmount: amount,
	}
}

// Value returns the current pool value
func (p *Pool) Value() decimal.Decimal {
	return p.value
}
