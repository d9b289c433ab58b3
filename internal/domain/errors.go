package domain

import "errors"

// Error message string constants - single source of truth for error messages
// Use these in assert.Contains() checks when testing error messages
const (
	// Wager validation errors
	ErrMsgInsufficientFunds    = "insufficient funds"
	ErrMsgBetOutOfRange        = "bet outside level bounds"
	ErrMsgSpinInProgress       = "a spin is already in progress"
	ErrMsgNothingToClaim       = "nothing to claim"
	ErrMsgUnknownLevel         = "unknown level"
	ErrMsgInsufficientEarnings = "insufficient lifetime earnings for level"

	// Session errors
	ErrMsgSessionNotFound = "session not found"

	// Catalog configuration errors
	ErrMsgZeroTotalWeight  = "symbol catalog has zero total weight"
	ErrMsgNegativeWeight   = "symbol weight must not be negative"
	ErrMsgMissingNoMatch   = "payout table is missing the no_match default"
	ErrMsgPartialRuleOrder = "partial rules must be declared richest first"
	ErrMsgInvalidPattern   = "invalid payout pattern"
	ErrMsgDuplicateGlyph   = "duplicate symbol glyph"
	ErrMsgUnknownProfile   = "unknown payout profile"

	// Persistence errors
	ErrMsgRecordNotFound     = "record not found"
	ErrMsgBalanceUnavailable = "balance service unavailable"
	ErrMsgUnauthorized       = "balance service rejected credentials"

	// Input errors
	ErrMsgInvalidInput = "invalid input"
)

// Validation errors: rejected before any state mutation, fully recoverable.
var (
	ErrInsufficientFunds    = errors.New(ErrMsgInsufficientFunds)
	ErrBetOutOfRange        = errors.New(ErrMsgBetOutOfRange)
	ErrSpinInProgress       = errors.New(ErrMsgSpinInProgress)
	ErrNothingToClaim       = errors.New(ErrMsgNothingToClaim)
	ErrUnknownLevel         = errors.New(ErrMsgUnknownLevel)
	ErrInsufficientEarnings = errors.New(ErrMsgInsufficientEarnings)
	ErrSessionNotFound      = errors.New(ErrMsgSessionNotFound)
	ErrInvalidInput         = errors.New(ErrMsgInvalidInput)
)

// Configuration errors: fatal at construction.
var (
	ErrZeroTotalWeight  = errors.New(ErrMsgZeroTotalWeight)
	ErrNegativeWeight   = errors.New(ErrMsgNegativeWeight)
	ErrMissingNoMatch   = errors.New(ErrMsgMissingNoMatch)
	ErrPartialRuleOrder = errors.New(ErrMsgPartialRuleOrder)
	ErrInvalidPattern   = errors.New(ErrMsgInvalidPattern)
	ErrDuplicateGlyph   = errors.New(ErrMsgDuplicateGlyph)
	ErrUnknownProfile   = errors.New(ErrMsgUnknownProfile)
)

// Persistence errors: degraded-but-continuing.
var (
	ErrRecordNotFound     = errors.New(ErrMsgRecordNotFound)
	ErrBalanceUnavailable = errors.New(ErrMsgBalanceUnavailable)
	ErrUnauthorized       = errors.New(ErrMsgUnauthorized)
)
