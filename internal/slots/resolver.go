package slots

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/osse101/reelfaucet/internal/domain"
)

// Resolver computes payouts against a catalog's payout table. It holds no
// mutable state, so Resolve is a pure function of its arguments.
type Resolver struct {
	catalog *Catalog
}

// NewResolver creates a resolver for the catalog
func NewResolver(catalog *Catalog) *Resolver {
	return &Resolver{catalog: catalog}
}

// Match returns the payout entry that applies to the symbols.
// Exact triples win over partial rules; partial rules are tried in declaration order.
func (r *Resolver) Match(symbols [domain.ReelCount]domain.Symbol) PayoutEntry {
	var key strings.Builder
	for _, s := range symbols {
		key.WriteString(s.Glyph)
	}
	if multiplier, ok := r.catalog.exact[key.String()]; ok {
		return PayoutEntry{Pattern: key.String(), Multiplier: multiplier}
	}

	for _, rule := range r.catalog.partials {
		if rule.matches(symbols) {
			return PayoutEntry{Pattern: rule.pattern, Multiplier: rule.multiplier}
		}
	}

	return PayoutEntry{Pattern: NoMatchKey, Multiplier: r.catalog.noMatch}
}

// Resolve returns floor(multiplier × bet × levelMultiplier)
func (r *Resolver) Resolve(symbols [domain.ReelCount]domain.Symbol, bet int64, levelMultiplier float64) int64 {
	entry := r.Match(symbols)
	if entry.Multiplier == 0 || bet <= 0 {
		return 0
	}

	return decimal.NewFromInt(int64(entry.Multiplier)).
		Mul(decimal.NewFromInt(bet)).
		Mul(decimal.NewFromFloat(levelMultiplier)).
		Floor().
		IntPart()
}

// Draw builds a regular (non-pool) spin result
func (r *Resolver) Draw(gen *Generator, req domain.SpinRequest) domain.SpinResult {
	symbols := gen.DrawReels()
	amount := r.Resolve(symbols, req.Bet, req.LevelMultiplier)
	return domain.SpinResult{
		Symbols:   symbols,
		IsWin:     amount > 0,
		WinAmount: amount,
	}
}
