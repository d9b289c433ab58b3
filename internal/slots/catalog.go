package slots

import (
	"fmt"
	"sort"
	"strings"

	"github.com/osse101/reelfaucet/internal/domain"
)

// PayoutEntry maps a glyph pattern to an integer multiplier. Patterns are
// either an exact triple, a partial pattern using Wildcard, or NoMatchKey.
type PayoutEntry struct {
	Pattern    string `json:"pattern"`
	Multiplier int    `json:"multiplier"`
}

type partialRule struct {
	pattern    string
	positions  [domain.ReelCount]string // "" matches any symbol
	multiplier int
}

func (r partialRule) matches(symbols [domain.ReelCount]domain.Symbol) bool {
	for i, glyph := range r.positions {
		if glyph != "" && glyph != symbols[i].Glyph {
			return false
		}
	}
	return true
}

// Catalog is the immutable symbol set and payout table of an engine
type Catalog struct {
	symbols     []domain.Symbol
	byGlyph     map[string]domain.Symbol
	glyphs      []string // longest first, for pattern tokenizing
	totalWeight int
	exact       map[string]int
	partials    []partialRule
	noMatch     int
	entries     []PayoutEntry
}

// NewCatalog validates symbols and payouts and builds a Catalog.
// Any error returned here is a configuration error and must stop startup.
func NewCatalog(symbols []domain.Symbol, payouts []PayoutEntry) (*Catalog, error) {
	c := &Catalog{
		symbols: append([]domain.Symbol(nil), symbols...),
		byGlyph: make(map[string]domain.Symbol, len(symbols)),
		exact:   make(map[string]int),
		noMatch: -1,
		entries: append([]PayoutEntry(nil), payouts...),
	}

	for _, s := range symbols {
		if s.Weight < 0 {
			return nil, fmt.Errorf("%w: %s", domain.ErrNegativeWeight, s.Name)
		}
		if s.Glyph == "" || s.Glyph == Wildcard {
			return nil, fmt.Errorf("%w: symbol %q has reserved glyph %q", domain.ErrInvalidPattern, s.Name, s.Glyph)
		}
		if _, dup := c.byGlyph[s.Glyph]; dup {
			return nil, fmt.Errorf("%w: %s", domain.ErrDuplicateGlyph, s.Glyph)
		}
		c.byGlyph[s.Glyph] = s
		c.glyphs = append(c.glyphs, s.Glyph)
		c.totalWeight += s.Weight
	}
	if c.totalWeight <= 0 {
		return nil, domain.ErrZeroTotalWeight
	}
	sort.SliceStable(c.glyphs, func(i, j int) bool { return len(c.glyphs[i]) > len(c.glyphs[j]) })

	for _, entry := range payouts {
		if entry.Multiplier < 0 {
			return nil, fmt.Errorf("%w: %q has negative multiplier", domain.ErrInvalidPattern, entry.Pattern)
		}
		if entry.Pattern == NoMatchKey {
			c.noMatch = entry.Multiplier
			continue
		}

		positions, wildcards, err := c.tokenize(entry.Pattern)
		if err != nil {
			return nil, err
		}

		if wildcards == 0 {
			key := strings.Join(positions[:], "")
			if _, dup := c.exact[key]; dup {
				return nil, fmt.Errorf("%w: duplicate entry %q", domain.ErrInvalidPattern, entry.Pattern)
			}
			c.exact[key] = entry.Multiplier
			continue
		}
		if wildcards == domain.ReelCount {
			return nil, fmt.Errorf("%w: %q matches everything, use %s", domain.ErrInvalidPattern, entry.Pattern, NoMatchKey)
		}

		rule := partialRule{pattern: entry.Pattern, multiplier: entry.Multiplier}
		for i, glyph := range positions {
			if glyph != Wildcard {
				rule.positions[i] = glyph
			}
		}
		if n := len(c.partials); n > 0 && c.partials[n-1].multiplier < rule.multiplier {
			return nil, fmt.Errorf("%w: %q (%d) declared after %q (%d)",
				domain.ErrPartialRuleOrder, rule.pattern, rule.multiplier,
				c.partials[n-1].pattern, c.partials[n-1].multiplier)
		}
		c.partials = append(c.partials, rule)
	}

	if c.noMatch < 0 {
		return nil, domain.ErrMissingNoMatch
	}

	return c, nil
}

// NewProfileCatalog builds the default symbol set with the named payout profile
func NewProfileCatalog(profile string) (*Catalog, error) {
	switch profile {
	case ProfileTable, "":
		return NewCatalog(DefaultSymbols, DefaultPayouts())
	case ProfileConsolation:
		return NewCatalog(DefaultSymbols, ConsolationPayouts())
	default:
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownProfile, profile)
	}
}

// tokenize splits a pattern into exactly three glyphs or wildcards
func (c *Catalog) tokenize(pattern string) ([domain.ReelCount]string, int, error) {
	var out [domain.ReelCount]string
	rest := pattern
	wildcards := 0

	for i := 0; i < domain.ReelCount; i++ {
		if strings.HasPrefix(rest, Wildcard) {
			out[i] = Wildcard
			rest = rest[len(Wildcard):]
			wildcards++
			continue
		}
		matched := false
		for _, glyph := range c.glyphs {
			if strings.HasPrefix(rest, glyph) {
				out[i] = glyph
				rest = rest[len(glyph):]
				matched = true
				break
			}
		}
		if !matched {
			return out, 0, fmt.Errorf("%w: %q has unknown symbol at position %d", domain.ErrInvalidPattern, pattern, i+1)
		}
	}
	if rest != "" {
		return out, 0, fmt.Errorf("%w: %q is longer than %d symbols", domain.ErrInvalidPattern, pattern, domain.ReelCount)
	}

	return out, wildcards, nil
}

// Symbols returns a copy of the symbol set in declaration order
func (c *Catalog) Symbols() []domain.Symbol {
	return append([]domain.Symbol(nil), c.symbols...)
}

// Symbol looks up a symbol by glyph
func (c *Catalog) Symbol(glyph string) (domain.Symbol, bool) {
	s, ok := c.byGlyph[glyph]
	return s, ok
}

// TotalWeight is the sum of all symbol weights
func (c *Catalog) TotalWeight() int {
	return c.totalWeight
}

// Payouts returns the payout entries as declared
func (c *Catalog) Payouts() []PayoutEntry {
	return append([]PayoutEntry(nil), c.entries...)
}
