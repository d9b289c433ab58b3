package domain

import "github.com/shopspring/decimal"

// ReelCount is the number of independent reels resolved per spin
const ReelCount = 3

// Symbol is a weighted game piece. Symbols are fixed at catalog construction.
type Symbol struct {
	Glyph  string `json:"glyph"`
	Name   string `json:"name"`
	Value  int    `json:"value"`  // Legacy per-symbol multiplier, kept for partial-match display
	Weight int    `json:"weight"` // Selection weight, only read by the generator
}

// SpinRequest is built by the bet controller for one spin
type SpinRequest struct {
	Bet             int64   `json:"bet"`
	LevelMultiplier float64 `json:"level_multiplier"`
}

// SpinResult is the committed outcome of one spin
type SpinResult struct {
	Symbols   [ReelCount]Symbol `json:"symbols"`
	IsWin     bool              `json:"is_win"`
	IsBigWin  bool              `json:"is_big_win"`
	WinAmount int64             `json:"win_amount"`
}

// LedgerState is the persisted unit of a player session: balance, counters
// and the session's Big Win Pool value.
type LedgerState struct {
	Credits      int64           `json:"credits"`
	TotalSpins   int64           `json:"total_spins"`
	TotalWagered int64           `json:"total_wagered"`
	TotalWon     int64           `json:"total_won"`
	CurrentBet   int64           `json:"current_bet"`
	Level        int             `json:"level"`
	PoolValue    decimal.Decimal `json:"pool_value"`
}

// LedgerMode identifies which balance backend a session is bound to
type LedgerMode string

const (
	LedgerModeLocal  LedgerMode = "local"
	LedgerModeRemote LedgerMode = "remote"
)

// Snapshot is the presentation view of a session
type Snapshot struct {
	SessionID    string     `json:"session_id"`
	Mode         LedgerMode `json:"mode"`
	Phase        string     `json:"phase"`
	Spinning     bool       `json:"spinning"`
	Credits      int64      `json:"credits"`
	CurrentBet   int64      `json:"current_bet"`
	MaxBet       int64      `json:"max_bet"`
	Level        int        `json:"level"`
	LastWin      int64      `json:"last_win"`
	TotalSpins   int64      `json:"total_spins"`
	TotalWagered int64      `json:"total_wagered"`
	TotalWon     int64      `json:"total_won"`
	PoolValue    string     `json:"pool_value"`
	SignupPrompt bool       `json:"signup_prompt,omitempty"`
}

// ReelStopPayload is emitted when a single reel stops. Target is the
// committed symbol; Above and Below are decorative filler only.
type ReelStopPayload struct {
	Reel   int    `json:"reel"` // 1-based
	Target Symbol `json:"target"`
	Above  Symbol `json:"filler_above"`
	Below  Symbol `json:"filler_below"`
}

// SpinSettledPayload is emitted once a spin has been fully settled
type SpinSettledPayload struct {
	Result  SpinResult `json:"result"`
	Bet     int64      `json:"bet"`
	Message string     `json:"message"`
}

// DegradedPayload reports a ledger operation that fell back to local arithmetic
type DegradedPayload struct {
	Operation string `json:"operation"`
	Amount    int64  `json:"amount"`
	Balance   int64  `json:"balance"`
	Reason    string `json:"reason"`
}

// BalancePayload carries the displayed balance
type BalancePayload struct {
	Credits int64 `json:"credits"`
}

// BetPayload carries the current bet and its bounds
type BetPayload struct {
	CurrentBet int64 `json:"current_bet"`
	MaxBet     int64 `json:"max_bet"`
	Level      int   `json:"level"`
}

// LastWinPayload carries the claimable last win
type LastWinPayload struct {
	Amount int64 `json:"amount"`
}

// SpinningPayload carries the spin-in-progress flag and the orchestrator phase
type SpinningPayload struct {
	Spinning bool   `json:"spinning"`
	Phase    string `json:"phase"`
}
