package domain

// Event type constants published by the wager engine on the event bus and
// forwarded to session streams.
//
// Event types follow the pattern: <entity>.<action> (e.g., "slots.reel_stop")
const (
	// EventTypeBalance is published whenever the displayed balance changes
	EventTypeBalance = "slots.balance"

	// EventTypeBet is published when the current bet or level changes
	EventTypeBet = "slots.bet"

	// EventTypeLastWin is published when the claimable last win changes
	EventTypeLastWin = "slots.last_win"

	// EventTypeSpinning is published when the spin-in-progress flag or phase changes
	EventTypeSpinning = "slots.spinning"

	// EventTypeReelStop is published as each reel stops on its committed symbol
	EventTypeReelStop = "slots.reel_stop"

	// EventTypeSpinSettled is published after a spin is credited and persisted
	EventTypeSpinSettled = "slots.spin_settled"

	// EventTypeBigWin is published in addition to spin_settled when the pool paid out
	EventTypeBigWin = "slots.big_win"

	// EventTypeDegraded is published when a ledger call failed and local arithmetic was used
	EventTypeDegraded = "slots.degraded"
)

// AllSlotsEventTypes lists every engine event type
var AllSlotsEventTypes = []string{
	EventTypeBalance,
	EventTypeBet,
	EventTypeLastWin,
	EventTypeSpinning,
	EventTypeReelStop,
	EventTypeSpinSettled,
	EventTypeBigWin,
	EventTypeDegraded,
}

// Ledger reason tags sent to the remote balance service
const (
	ReasonSlotsBet = "slots_bet"
	ReasonSlotsWin = "slots_win"
)
