package betting

import (
	"fmt"
	"sort"

	"github.com/osse101/reelfaucet/internal/domain"
)

// MinBet is the smallest wager any level accepts
const MinBet int64 = 1

// Level defines the unlock cost, payout multiplier and bet ceiling of a player level
type Level struct {
	Number     int     `json:"level"`
	Cost       int64   `json:"cost"`
	Multiplier float64 `json:"multiplier"`
	MaxBet     int64   `json:"max_bet"`
}

// DefaultLevels is the standard five-level ladder
var DefaultLevels = []Level{
	{Number: 1, Cost: 0, Multiplier: 1.0, MaxBet: 1},
	{Number: 2, Cost: 50, Multiplier: 1.2, MaxBet: 2},
	{Number: 3, Cost: 150, Multiplier: 1.5, MaxBet: 3},
	{Number: 4, Cost: 300, Multiplier: 1.8, MaxBet: 4},
	{Number: 5, Cost: 500, Multiplier: 2.0, MaxBet: 5},
}

type levelTable struct {
	byNumber map[int]Level
	ordered  []Level
}

func newLevelTable(levels []Level) (levelTable, error) {
	t := levelTable{byNumber: make(map[int]Level, len(levels))}
	if len(levels) == 0 {
		return t, fmt.Errorf("%w: no levels defined", domain.ErrInvalidInput)
	}
	for _, l := range levels {
		if l.MaxBet < MinBet {
			return t, fmt.Errorf("%w: level %d max bet %d below %d", domain.ErrInvalidInput, l.Number, l.MaxBet, MinBet)
		}
		if l.Multiplier <= 0 {
			return t, fmt.Errorf("%w: level %d multiplier must be positive", domain.ErrInvalidInput, l.Number)
		}
		if _, dup := t.byNumber[l.Number]; dup {
			return t, fmt.Errorf("%w: level %d declared twice", domain.ErrInvalidInput, l.Number)
		}
		t.byNumber[l.Number] = l
		t.ordered = append(t.ordered, l)
	}
	sort.Slice(t.ordered, func(i, j int) bool { return t.ordered[i].Number < t.ordered[j].Number })
	return t, nil
}

func (t levelTable) lookup(number int) (Level, error) {
	l, ok := t.byNumber[number]
	if !ok {
		return Level{}, fmt.Errorf("%w: %d", domain.ErrUnknownLevel, number)
	}
	return l, nil
}
