package slots

import "github.com/osse101/reelfaucet/internal/domain"

// Symbol glyphs
const (
	GlyphCherry     = "🍒"
	GlyphBanana     = "🍌"
	GlyphWatermelon = "🍉"
	GlyphOrange     = "🍊"
	GlyphSeven      = "🔴"
	GlyphBar        = "📊"
	GlyphDiamond    = "💎"
)

// Pattern syntax
const (
	// Wildcard matches any symbol in a partial-match pattern
	Wildcard = "_"

	// NoMatchKey names the mandatory default entry of a payout table
	NoMatchKey = "no_match"
)

// Payout profiles
const (
	ProfileTable       = "table"
	ProfileConsolation = "consolation"

	// ProfileCustom labels a catalog loaded from a file
	ProfileCustom = "custom"
)

// Big Win Pool defaults
const (
	DefaultPoolThreshold          = 1000.0
	DefaultPoolTriggerProbability = 0.02
	DefaultPoolContributionRate   = 0.1
	DefaultPoolMinimumSpins       = 10
	DefaultPoolPayoutFraction     = 0.8
)

// BigWinSymbol is shown on all three reels when the pool pays out.
// It is decorative and never resolved against the payout table.
var BigWinSymbol = domain.Symbol{Glyph: GlyphDiamond, Name: "bigwin", Value: 50}

// DefaultSymbols is the classic fruit set. Weights sum to 100.
var DefaultSymbols = []domain.Symbol{
	{Glyph: GlyphCherry, Name: "cherry", Value: 35, Weight: 35},
	{Glyph: GlyphBanana, Name: "banana", Value: 15, Weight: 25},
	{Glyph: GlyphWatermelon, Name: "watermelon", Value: 12, Weight: 20},
	{Glyph: GlyphOrange, Name: "orange", Value: 8, Weight: 15},
	{Glyph: GlyphSeven, Name: "seven", Value: 400, Weight: 3},
	{Glyph: GlyphBar, Name: "bar", Value: 75, Weight: 2},
}

// triplePayouts are shared by every profile
var triplePayouts = []PayoutEntry{
	{Pattern: "🔴🔴🔴", Multiplier: 400},
	{Pattern: "📊📊📊", Multiplier: 75},
	{Pattern: "🍒🍒🍒", Multiplier: 35},
	{Pattern: "🍌🍌🍌", Multiplier: 15},
	{Pattern: "🍉🍉🍉", Multiplier: 12},
	{Pattern: "🍊🍊🍊", Multiplier: 10},
}

// tablePartials are tried in order; the richer rule is always declared first.
var tablePartials = []PayoutEntry{
	{Pattern: "🔴🍒_", Multiplier: 15},
	{Pattern: "🍒🍒_", Multiplier: 8},
	{Pattern: "🍌🍌_", Multiplier: 6},
	{Pattern: "🍉🍉_", Multiplier: 5},
	{Pattern: "🍒__", Multiplier: 5},
	{Pattern: "🍊🍊_", Multiplier: 4},
}

// consolationPartials extend the table with single-symbol rules for the
// rare symbols; combined with a no_match of 1 no spin loses the stake.
var consolationPartials = []PayoutEntry{
	{Pattern: "🔴__", Multiplier: 3},
	{Pattern: "📊__", Multiplier: 2},
}

// DefaultPayouts returns the payout-table profile entries
func DefaultPayouts() []PayoutEntry {
	entries := make([]PayoutEntry, 0, len(triplePayouts)+len(tablePartials)+1)
	entries = append(entries, triplePayouts...)
	entries = append(entries, tablePartials...)
	return append(entries, PayoutEntry{Pattern: NoMatchKey, Multiplier: 0})
}

// ConsolationPayouts returns the "no net loss" profile entries
func ConsolationPayouts() []PayoutEntry {
	entries := make([]PayoutEntry, 0, len(triplePayouts)+len(tablePartials)+len(consolationPartials)+1)
	entries = append(entries, triplePayouts...)
	entries = append(entries, tablePartials...)
	entries = append(entries, consolationPartials...)
	return append(entries, PayoutEntry{Pattern: NoMatchKey, Multiplier: 1})
}
