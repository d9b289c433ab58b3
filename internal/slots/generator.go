package slots

import (
	"math/rand/v2"

	"github.com/osse101/reelfaucet/internal/domain"
)

// Generator draws symbols using catalog weights
type Generator struct {
	symbols     []domain.Symbol
	totalWeight int
	rng         func(n int) int // Injectable for testing; returns [0, n)
}

// NewGenerator creates a generator over the catalog. A nil rng uses math/rand/v2.
func NewGenerator(catalog *Catalog, rng func(n int) int) *Generator {
	if rng == nil {
		rng = rand.IntN //nolint:gosec // Game logic randomness, not security critical
	}
	return &Generator{
		symbols:     catalog.Symbols(),
		totalWeight: catalog.TotalWeight(),
		rng:         rng,
	}
}

// Draw performs one weighted random selection
func (g *Generator) Draw() domain.Symbol {
	roll := g.rng(g.totalWeight)

	for _, symbol := range g.symbols {
		roll -= symbol.Weight
		if roll < 0 {
			return symbol
		}
	}

	// Unreachable while rng honours [0, total)
	return g.symbols[0]
}

// DrawReels draws each reel independently
func (g *Generator) DrawReels() [domain.ReelCount]domain.Symbol {
	var reels [domain.ReelCount]domain.Symbol
	for i := range reels {
		reels[i] = g.Draw()
	}
	return reels
}
