package spin

import "time"

// Animation defaults
const (
	DefaultAcceleration       = 800 * time.Millisecond
	DefaultReelInterval       = 400 * time.Millisecond
	DefaultWinPresentation    = 1500 * time.Millisecond
	DefaultBigWinPresentation = 3000 * time.Millisecond
)

// Sign-up hint for demo players who keep winning
const (
	SignupPromptMinWon = 100
	SignupPromptEvery  = 20
)

// Degraded ledger operations
const (
	OperationLoad   = "load"
	OperationDebit  = "debit"
	OperationCredit = "credit"
	OperationSave   = "save"
)

// Log messages
const (
	LogMsgLedgerDegraded = "Ledger operation degraded, continuing with local balance"
	LogMsgSpinSettled    = "Spin settled"
)
