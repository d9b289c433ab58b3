package jobs

import "time"

// Default schedules
const (
	DefaultCheckpointSpec = "@every 5m"
	DefaultPruneSpec      = "0 4 * * *"
	DefaultRetention      = 30 * 24 * time.Hour
)

// Log messages
const (
	LogMsgSchedulerStarted = "Job scheduler started"
	LogMsgSchedulerStopped = "Job scheduler stopped"
	LogMsgCheckpointDone   = "Session checkpoint finished"
	LogMsgPruneDone        = "Stale demo records pruned"
	LogMsgPruneFailed      = "Demo record prune failed"
)
