package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP Metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameHTTPRequestsTotal,
			Help: HelpTextHTTPRequestsTotal,
		},
		[]string{LabelMethod, LabelPath, LabelStatus},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    MetricNameHTTPRequestDuration,
			Help:    HelpTextHTTPRequestDuration,
			Buckets: HTTPLatencyBuckets,
		},
		[]string{LabelMethod, LabelPath},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: MetricNameHTTPRequestsInFlight,
			Help: HelpTextHTTPRequestsInFlight,
		},
	)
)

// EventsPublished counts bus events seen by the collector
var EventsPublished = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: MetricNameEventsPublished,
		Help: HelpTextEventsPublished,
	},
	[]string{LabelType},
)

// Engine Metrics
var (
	SpinsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameSpinsTotal,
			Help: HelpTextSpinsTotal,
		},
		[]string{LabelResult},
	)

	CreditsWagered = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameCreditsWagered,
			Help: HelpTextCreditsWagered,
		},
	)

	CreditsWon = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameCreditsWon,
			Help: HelpTextCreditsWon,
		},
	)

	BigWinsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameBigWinsTotal,
			Help: HelpTextBigWinsTotal,
		},
	)

	LedgerDegraded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameLedgerDegraded,
			Help: HelpTextLedgerDegraded,
		},
		[]string{LabelOperation},
	)
)

// Session Metrics
var (
	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: MetricNameActiveSessions,
			Help: HelpTextActiveSessions,
		},
	)

	SessionsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameSessionsCreated,
			Help: HelpTextSessionsCreated,
		},
		[]string{LabelMode},
	)

	CheckpointsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameCheckpointsTotal,
			Help: HelpTextCheckpointsTotal,
		},
		[]string{LabelOutcome},
	)

	RecordsPruned = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameRecordsPruned,
			Help: HelpTextRecordsPruned,
		},
	)
)
