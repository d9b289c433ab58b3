package metrics

// HTTP metric names
const (
	MetricNameHTTPRequestsTotal    = "http_requests_total"
	MetricNameHTTPRequestDuration  = "http_request_duration_seconds"
	MetricNameHTTPRequestsInFlight = "http_requests_in_flight"
)

// Event metric names
const (
	MetricNameEventsPublished = "events_published_total"
)

// Engine metric names
const (
	MetricNameSpinsTotal       = "slots_spins_total"
	MetricNameCreditsWagered   = "slots_credits_wagered_total"
	MetricNameCreditsWon       = "slots_credits_won_total"
	MetricNameBigWinsTotal     = "slots_big_wins_total"
	MetricNameLedgerDegraded   = "slots_ledger_degraded_total"
	MetricNameActiveSessions   = "slots_active_sessions"
	MetricNameSessionsCreated  = "slots_sessions_created_total"
	MetricNameCheckpointsTotal = "slots_checkpoints_total"
	MetricNameRecordsPruned    = "slots_records_pruned_total"
)

// HTTP metric help text
const (
	HelpTextHTTPRequestsTotal    = "Total number of HTTP requests"
	HelpTextHTTPRequestDuration  = "HTTP request latency in seconds"
	HelpTextHTTPRequestsInFlight = "Current number of HTTP requests being served"
)

const HelpTextEventsPublished = "Total number of events published"

// Engine metric help text
const (
	HelpTextSpinsTotal       = "Settled spins by result"
	HelpTextCreditsWagered   = "Credits wagered across all sessions"
	HelpTextCreditsWon       = "Credits paid out across all sessions"
	HelpTextBigWinsTotal     = "Big Win Pool payouts"
	HelpTextLedgerDegraded   = "Ledger operations that fell back to local arithmetic"
	HelpTextActiveSessions   = "Sessions currently held in memory"
	HelpTextSessionsCreated  = "Sessions created by ledger mode"
	HelpTextCheckpointsTotal = "Background session checkpoints by outcome"
	HelpTextRecordsPruned    = "Stale demo records deleted"
)

// Label names
const (
	LabelMethod    = "method"
	LabelPath      = "path"
	LabelStatus    = "status"
	LabelType      = "type"
	LabelResult    = "result"
	LabelOperation = "operation"
	LabelMode      = "mode"
	LabelOutcome   = "outcome"
)

// Spin result label values
const (
	ResultLoss   = "loss"
	ResultWin    = "win"
	ResultBigWin = "big_win"
)

// Checkpoint outcome label values
const (
	OutcomeSaved  = "saved"
	OutcomeFailed = "failed"
)

// HTTPLatencyBuckets range from 1ms to 10s
var HTTPLatencyBuckets = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}

const LogMsgMetricsRecorded = "Metrics recorded for event"
