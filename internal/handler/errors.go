package handler

// Request-level error messages
const (
	ErrMsgInvalidRequest        = "Invalid request body"
	ErrMsgInvalidRequestSummary = "Invalid request"
	ErrMsgInvalidQueryParam     = "Invalid %s query parameter"
	ErrMsgBadAuthorization      = "Authorization header must be a bearer token"
)

// Operation names used in logs
const (
	OpCreateSession = "Create session"
	OpGetSession    = "Get session"
	OpSpin          = "Spin"
	OpIncreaseBet   = "Increase bet"
	OpDecreaseBet   = "Decrease bet"
	OpClaim         = "Claim winnings"
	OpLevelUp       = "Level up"
)

// Header and parameter names
const (
	HeaderAuthorization = "Authorization"
	BearerPrefix        = "Bearer "
	ParamSessionID      = "id"
	QueryWait           = "wait"
)
