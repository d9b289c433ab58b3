package session

import "time"

// Registry defaults
const (
	DefaultCacheSize = 10000
	DefaultIdleTTL   = 30 * time.Minute

	// EvictionShutdownTimeout bounds the final save of an evicted session
	EvictionShutdownTimeout = 10 * time.Second
)

// Log messages
const (
	LogMsgSessionCreated = "Slot session created"
	LogMsgSessionReused  = "Slot session already live for player"
	LogMsgSessionEvicted = "Slot session evicted"
	LogMsgEvictionFailed = "Failed to save evicted session"
	LogMsgCheckpointFail = "Session checkpoint failed"
)
