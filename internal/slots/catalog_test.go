package slots

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osse101/reelfaucet/internal/domain"
)

func TestNewCatalog_Defaults(t *testing.T) {
	c, err := NewProfileCatalog(ProfileTable)
	require.NoError(t, err)

	assert.Equal(t, 100, c.TotalWeight())
	assert.Len(t, c.Symbols(), 6)
	assert.Len(t, c.partials, 6)
	assert.Equal(t, 0, c.noMatch)

	seven, ok := c.Symbol(GlyphSeven)
	require.True(t, ok)
	assert.Equal(t, "seven", seven.Name)
}

func TestNewCatalog_ConfigurationErrors(t *testing.T) {
	tests := []struct {
		name    string
		symbols []domain.Symbol
		payouts []PayoutEntry
		wantErr error
	}{
		{
			name: "zero total weight",
			symbols: []domain.Symbol{
				{Glyph: GlyphCherry, Name: "cherry", Weight: 0},
				{Glyph: GlyphBanana, Name: "banana", Weight: 0},
			},
			payouts: []PayoutEntry{{Pattern: NoMatchKey}},
			wantErr: domain.ErrZeroTotalWeight,
		},
		{
			name:    "empty symbol set",
			payouts: []PayoutEntry{{Pattern: NoMatchKey}},
			wantErr: domain.ErrZeroTotalWeight,
		},
		{
			name:    "negative weight",
			symbols: []domain.Symbol{{Glyph: GlyphCherry, Name: "cherry", Weight: -1}},
			payouts: []PayoutEntry{{Pattern: NoMatchKey}},
			wantErr: domain.ErrNegativeWeight,
		},
		{
			name:    "missing no_match",
			symbols: DefaultSymbols,
			payouts: []PayoutEntry{{Pattern: "🍒🍒🍒", Multiplier: 35}},
			wantErr: domain.ErrMissingNoMatch,
		},
		{
			name:    "partial rules out of order",
			symbols: DefaultSymbols,
			payouts: []PayoutEntry{
				{Pattern: "🍒__", Multiplier: 5},
				{Pattern: "🍒🍒_", Multiplier: 8},
				{Pattern: NoMatchKey},
			},
			wantErr: domain.ErrPartialRuleOrder,
		},
		{
			name:    "unknown glyph",
			symbols: DefaultSymbols,
			payouts: []PayoutEntry{{Pattern: "🍋🍋🍋", Multiplier: 3}, {Pattern: NoMatchKey}},
			wantErr: domain.ErrInvalidPattern,
		},
		{
			name:    "pattern too long",
			symbols: DefaultSymbols,
			payouts: []PayoutEntry{{Pattern: "🍒🍒🍒🍒", Multiplier: 3}, {Pattern: NoMatchKey}},
			wantErr: domain.ErrInvalidPattern,
		},
		{
			name:    "all wildcards",
			symbols: DefaultSymbols,
			payouts: []PayoutEntry{{Pattern: "___", Multiplier: 1}, {Pattern: NoMatchKey}},
			wantErr: domain.ErrInvalidPattern,
		},
		{
			name: "duplicate glyph",
			symbols: []domain.Symbol{
				{Glyph: GlyphCherry, Name: "cherry", Weight: 1},
				{Glyph: GlyphCherry, Name: "cherry2", Weight: 1},
			},
			payouts: []PayoutEntry{{Pattern: NoMatchKey}},
			wantErr: domain.ErrDuplicateGlyph,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewCatalog(tt.symbols, tt.payouts)
			assert.Nil(t, c)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestNewProfileCatalog(t *testing.T) {
	t.Run("consolation profile pays stake back on no match", func(t *testing.T) {
		c, err := NewProfileCatalog(ProfileConsolation)
		require.NoError(t, err)
		assert.Equal(t, 1, c.noMatch)
		assert.Len(t, c.partials, 8)
	})

	t.Run("unknown profile", func(t *testing.T) {
		_, err := NewProfileCatalog("progressive")
		assert.ErrorIs(t, err, domain.ErrUnknownProfile)
	})
}

func TestLoadCatalog(t *testing.T) {
	dir := t.TempDir()

	t.Run("valid file", func(t *testing.T) {
		path := filepath.Join(dir, "catalog.json")
		content := `{
			"symbols": [
				{"glyph": "🍒", "name": "cherry", "value": 35, "weight": 3},
				{"glyph": "🔴", "name": "seven", "value": 400, "weight": 1}
			],
			"payouts": [
				{"pattern": "🔴🔴🔴", "multiplier": 100},
				{"pattern": "🍒🍒_", "multiplier": 4},
				{"pattern": "no_match", "multiplier": 0}
			]
		}`
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

		c, err := LoadCatalog(path)
		require.NoError(t, err)
		assert.Equal(t, 4, c.TotalWeight())
		assert.Len(t, c.Payouts(), 3)
	})

	t.Run("invalid catalog is rejected", func(t *testing.T) {
		path := filepath.Join(dir, "broken.json")
		content := `{"symbols": [{"glyph": "🍒", "name": "cherry", "weight": 1}], "payouts": []}`
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

		_, err := LoadCatalog(path)
		assert.ErrorIs(t, err, domain.ErrMissingNoMatch)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadCatalog(filepath.Join(dir, "nope.json"))
		assert.Error(t, err)
	})
}

func TestLoadCatalog_ShippedExampleMatchesTableProfile(t *testing.T) {
	loaded, err := LoadCatalog(filepath.Join("..", "..", "configs", "slots", "catalog.example.json"))
	require.NoError(t, err)
	builtin, err := NewProfileCatalog(ProfileTable)
	require.NoError(t, err)

	assert.Equal(t, builtin.Symbols(), loaded.Symbols())
	assert.Equal(t, builtin.Payouts(), loaded.Payouts())
}
