package betting

import (
	"fmt"

	"github.com/osse101/reelfaucet/internal/domain"
)

// Controller bounds bets to the level ceiling and the player's credits, and
// validates level changes. It is stateless; callers own the bet and level
// values and apply what the controller returns.
type Controller struct {
	levels levelTable
}

// NewController creates a controller over a level ladder. A nil ladder uses DefaultLevels.
func NewController(levels []Level) (*Controller, error) {
	if levels == nil {
		levels = DefaultLevels
	}
	table, err := newLevelTable(levels)
	if err != nil {
		return nil, err
	}
	return &Controller{levels: table}, nil
}

// Levels returns the ladder in ascending order
func (c *Controller) Levels() []Level {
	return append([]Level(nil), c.levels.ordered...)
}

// Level looks up a level by number
func (c *Controller) Level(number int) (Level, error) {
	return c.levels.lookup(number)
}

// MaxBet is the bet ceiling for a level. Unknown levels fall back to MinBet.
func (c *Controller) MaxBet(level int) int64 {
	l, err := c.levels.lookup(level)
	if err != nil {
		return MinBet
	}
	return l.MaxBet
}

// Multiplier is the payout multiplier for a level. Unknown levels pay ×1.
func (c *Controller) Multiplier(level int) float64 {
	l, err := c.levels.lookup(level)
	if err != nil {
		return 1.0
	}
	return l.Multiplier
}

// Ceiling is the highest bet currently allowed: min(level max bet, credits),
// never below MinBet.
func (c *Controller) Ceiling(level int, credits int64) int64 {
	ceiling := c.MaxBet(level)
	if credits < ceiling {
		ceiling = credits
	}
	if ceiling < MinBet {
		ceiling = MinBet
	}
	return ceiling
}

// Reconcile clamps a bet into [MinBet, Ceiling]
func (c *Controller) Reconcile(bet int64, level int, credits int64) int64 {
	ceiling := c.Ceiling(level, credits)
	switch {
	case bet < MinBet:
		return MinBet
	case bet > ceiling:
		return ceiling
	default:
		return bet
	}
}

// Increase raises the bet by one unit.
// Returns ErrBetOutOfRange, with the reconciled bet, when already at the ceiling.
func (c *Controller) Increase(bet int64, level int, credits int64) (int64, error) {
	return c.adjust(bet, 1, level, credits)
}

// Decrease lowers the bet by one unit.
// Returns ErrBetOutOfRange, with the reconciled bet, when already at MinBet.
func (c *Controller) Decrease(bet int64, level int, credits int64) (int64, error) {
	return c.adjust(bet, -1, level, credits)
}

func (c *Controller) adjust(bet, delta int64, level int, credits int64) (int64, error) {
	current := c.Reconcile(bet, level, credits)
	next := current + delta
	if next < MinBet || next > c.Ceiling(level, credits) {
		return current, fmt.Errorf("%w: %d is outside [%d, %d]", domain.ErrBetOutOfRange, next, MinBet, c.Ceiling(level, credits))
	}
	return next, nil
}

// LevelUp validates a move to the target level against lifetime earnings.
// The cost is a threshold, not a charge.
func (c *Controller) LevelUp(target int, lifetimeEarnings int64) (Level, error) {
	l, err := c.levels.lookup(target)
	if err != nil {
		return Level{}, err
	}
	if lifetimeEarnings < l.Cost {
		return Level{}, fmt.Errorf("%w: level %d needs %d, have %d", domain.ErrInsufficientEarnings, target, l.Cost, lifetimeEarnings)
	}
	return l, nil
}
