package event

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/osse101/reelfaucet/internal/logger"
)

type retryEntry struct {
	event    Event
	attempt  int
	lastErr  error
	due      time.Time
	// handlers is nil when the whole event goes back through the bus
	handlers []Handler
}

// ResilientPublisher publishes on a bus and retries failures in the
// background with exponential backoff. Events that exhaust their retries,
// or that arrive while the retry queue is full, go to a dead-letter file.
type ResilientPublisher struct {
	bus        Bus
	retryQueue chan retryEntry
	maxRetries int
	retryDelay time.Duration
	deadLetter *DeadLetterWriter
	shutdown   chan struct{}
	once       sync.Once
	wg         sync.WaitGroup
}

// NewResilientPublisher starts the retry worker
func NewResilientPublisher(bus Bus, maxRetries int, retryDelay time.Duration, deadLetterPath string) (*ResilientPublisher, error) {
	dl, err := NewDeadLetterWriter(deadLetterPath)
	if err != nil {
		return nil, err
	}

	rp := &ResilientPublisher{
		bus:        bus,
		retryQueue: make(chan retryEntry, RetryQueueBufferSize),
		maxRetries: maxRetries,
		retryDelay: retryDelay,
		deadLetter: dl,
		shutdown:   make(chan struct{}),
	}
	rp.wg.Add(1)
	go rp.retryWorker()
	return rp, nil
}

// PublishWithRetry publishes synchronously once; a failure is queued for
// background retry and never reported to the caller.
func (rp *ResilientPublisher) PublishWithRetry(ctx context.Context, evt Event) {
	err := rp.bus.Publish(ctx, evt)
	if err == nil {
		return
	}

	logger.FromContext(ctx).Warn(LogMsgEventPublishFailed, "event_type", evt.Type, "error", err)
	entry := retryEntry{
		event:   evt,
		attempt: 1,
		lastErr: err,
		due:     time.Now().Add(CalculateRetryDelay(rp.retryDelay, 1)),
	}
	var pubErr *PublishError
	if errors.As(err, &pubErr) && len(pubErr.Failed) > 0 {
		entry.handlers = pubErr.Failed
	}
	rp.enqueue(entry)
}

// deliver reruns the handlers that failed, or republishes the whole event
// when the bus did not say which ones. Handlers that succeed drop out.
func (rp *ResilientPublisher) deliver(ctx context.Context, entry *retryEntry) error {
	if entry.handlers == nil {
		return rp.bus.Publish(ctx, entry.event)
	}

	err := runHandlers(ctx, entry.event, entry.handlers)
	var pubErr *PublishError
	if errors.As(err, &pubErr) {
		entry.handlers = pubErr.Failed
	}
	return err
}

func (rp *ResilientPublisher) enqueue(entry retryEntry) {
	select {
	case rp.retryQueue <- entry:
	default:
		logger.FromContext(context.Background()).Error(LogMsgRetryQueueFull, "event_type", entry.event.Type)
		rp.writeDeadLetter(entry)
	}
}

func (rp *ResilientPublisher) retryWorker() {
	defer rp.wg.Done()

	for {
		select {
		case entry := <-rp.retryQueue:
			if !rp.wait(entry.due) {
				rp.drain(entry)
				return
			}
			rp.retry(entry)
		case <-rp.shutdown:
			rp.drain()
			return
		}
	}
}

// wait sleeps until due; false means shutdown was requested first
func (rp *ResilientPublisher) wait(due time.Time) bool {
	d := time.Until(due)
	if d <= 0 {
		return true
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-rp.shutdown:
		return false
	}
}

func (rp *ResilientPublisher) retry(entry retryEntry) {
	log := logger.FromContext(context.Background())

	err := rp.deliver(context.Background(), &entry)
	if err == nil {
		log.Info(LogMsgEventRetrySucceeded, "event_type", entry.event.Type, "attempt", entry.attempt)
		return
	}

	entry.lastErr = err
	if entry.attempt >= rp.maxRetries {
		log.Error(LogMsgEventRetryExhausted, "event_type", entry.event.Type, "attempts", entry.attempt, "error", err)
		rp.writeDeadLetter(entry)
		return
	}

	entry.attempt++
	entry.due = time.Now().Add(CalculateRetryDelay(rp.retryDelay, entry.attempt))
	log.Warn(LogMsgEventRetryFailed, "event_type", entry.event.Type, "attempt", entry.attempt, "error", err)
	rp.enqueue(entry)
}

// drain makes one last attempt for everything still queued
func (rp *ResilientPublisher) drain(pending ...retryEntry) {
	for {
		select {
		case entry := <-rp.retryQueue:
			pending = append(pending, entry)
		default:
			for _, entry := range pending {
				if err := rp.deliver(context.Background(), &entry); err != nil {
					entry.lastErr = err
					logger.FromContext(context.Background()).Warn(LogMsgEventDroppedShutdown, "event_type", entry.event.Type)
					rp.writeDeadLetter(entry)
				}
			}
			return
		}
	}
}

func (rp *ResilientPublisher) writeDeadLetter(entry retryEntry) {
	if err := rp.deadLetter.Write(entry.event, entry.attempt, entry.lastErr); err != nil {
		logger.FromContext(context.Background()).Error(LogMsgDeadLetterFailed, "event_type", entry.event.Type, "error", err)
	}
}

// Shutdown stops the worker after a final delivery attempt for queued events
func (rp *ResilientPublisher) Shutdown(ctx context.Context) error {
	rp.once.Do(func() { close(rp.shutdown) })

	done := make(chan struct{})
	go func() {
		rp.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return rp.deadLetter.Close()
	case <-ctx.Done():
		logger.FromContext(ctx).Error(LogMsgShutdownTimeout, "error", ctx.Err())
		return ctx.Err()
	}
}
