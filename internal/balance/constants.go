package balance

import "time"

// Balance service routes
const (
	PathBalance         = "/api/user/balance"
	PathBalanceAdd      = "/api/user/balance/add"
	PathBalanceSubtract = "/api/user/balance/subtract"
)

// Client defaults
const (
	DefaultTimeout     = 5 * time.Second
	DefaultReadRetries = 2
	RetryDelay         = 200 * time.Millisecond
)
