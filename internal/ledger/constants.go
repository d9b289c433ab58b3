package ledger

// Record key prefixes
const (
	KeyPrefixDemo  = "slot_machine_demo:"
	KeyPrefixStats = "slot_machine_stats:"
)

// New player defaults
const (
	DefaultStartingCredits int64 = 500
	DefaultBet             int64 = 1
	DefaultLevel                 = 1
)

// Transaction descriptions sent to the balance service
const (
	DescriptionBetFormat = "Slot machine bet: %d credits"
	DescriptionWinFormat = "Slot machine win: %d credits"
)
