package metrics

import (
	"context"

	"github.com/osse101/reelfaucet/internal/domain"
	"github.com/osse101/reelfaucet/internal/event"
	"github.com/osse101/reelfaucet/internal/logger"
)

// EventMetricsCollector subscribes to engine events and records metrics
type EventMetricsCollector struct{}

// NewEventMetricsCollector creates a new event metrics collector
func NewEventMetricsCollector() *EventMetricsCollector {
	return &EventMetricsCollector{}
}

// Register subscribes to every engine event type
func (e *EventMetricsCollector) Register(bus event.Bus) {
	event.SubscribeAll(bus, domain.AllSlotsEventTypes, e.HandleEvent)
}

// HandleEvent updates counters for one event
func (e *EventMetricsCollector) HandleEvent(ctx context.Context, evt event.Event) error {
	log := logger.FromContext(ctx)
	EventsPublished.WithLabelValues(string(evt.Type)).Inc()

	switch string(evt.Type) {
	case domain.EventTypeSpinSettled:
		settled, err := event.DecodePayload[domain.SpinSettledPayload](evt.Payload)
		if err != nil {
			log.Warn("Unreadable spin_settled payload", "error", err)
			return nil
		}
		CreditsWagered.Add(float64(settled.Bet))
		CreditsWon.Add(float64(settled.Result.WinAmount))
		SpinsTotal.WithLabelValues(resultLabel(settled.Result)).Inc()

	case domain.EventTypeBigWin:
		BigWinsTotal.Inc()

	case domain.EventTypeDegraded:
		degraded, err := event.DecodePayload[domain.DegradedPayload](evt.Payload)
		if err != nil {
			log.Warn("Unreadable degraded payload", "error", err)
			return nil
		}
		LedgerDegraded.WithLabelValues(degraded.Operation).Inc()
	}

	log.Debug(LogMsgMetricsRecorded, "type", evt.Type)
	return nil
}

func resultLabel(r domain.SpinResult) string {
	switch {
	case r.IsBigWin:
		return ResultBigWin
	case r.WinAmount > 0:
		return ResultWin
	default:
		return ResultLoss
	}
}
