package event

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osse101/reelfaucet/internal/domain"
)

// flakyBus records every publish and fails while shouldFail says so
type flakyBus struct {
	mu         sync.Mutex
	calls      []time.Time
	shouldFail func(call int) bool
	delay      time.Duration
}

func (b *flakyBus) Publish(_ context.Context, _ Event) error {
	b.mu.Lock()
	b.calls = append(b.calls, time.Now())
	n := len(b.calls)
	b.mu.Unlock()

	if b.delay > 0 {
		time.Sleep(b.delay)
	}
	if b.shouldFail != nil && b.shouldFail(n) {
		return errors.New("subscriber unavailable")
	}
	return nil
}

func (b *flakyBus) Subscribe(Type, Handler) {}

func (b *flakyBus) count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.calls)
}

func (b *flakyBus) times() []time.Time {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]time.Time(nil), b.calls...)
}

func deadLetters(t *testing.T, path string) []DeadLetterEntry {
	t.Helper()
	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	var out []DeadLetterEntry
	sc := bufio.NewScanner(bytes.NewReader(raw))
	for sc.Scan() {
		var e DeadLetterEntry
		require.NoError(t, json.Unmarshal(sc.Bytes(), &e))
		out = append(out, e)
	}
	return out
}

func settledEvent(id string) Event {
	return NewSessionEvent(id, domain.EventTypeSpinSettled, map[string]interface{}{"bet": 1})
}

func TestResilientPublisher_DeliversFirstTime(t *testing.T) {
	path := t.TempDir() + "/dead.jsonl"
	bus := &flakyBus{}

	rp, err := NewResilientPublisher(bus, 3, 20*time.Millisecond, path)
	require.NoError(t, err)

	rp.PublishWithRetry(context.Background(), settledEvent("s1"))
	require.NoError(t, rp.Shutdown(context.Background()))

	assert.Equal(t, 1, bus.count())
	assert.Empty(t, deadLetters(t, path))
}

func TestResilientPublisher_RetrySucceeds(t *testing.T) {
	path := t.TempDir() + "/dead.jsonl"
	bus := &flakyBus{shouldFail: func(call int) bool { return call == 1 }}

	rp, err := NewResilientPublisher(bus, 3, 20*time.Millisecond, path)
	require.NoError(t, err)

	rp.PublishWithRetry(context.Background(), settledEvent("s1"))

	assert.Eventually(t, func() bool { return bus.count() == 2 }, time.Second, 5*time.Millisecond)
	require.NoError(t, rp.Shutdown(context.Background()))
	assert.Empty(t, deadLetters(t, path))
}

func TestResilientPublisher_ExhaustedGoesToDeadLetter(t *testing.T) {
	path := t.TempDir() + "/dead.jsonl"
	bus := &flakyBus{shouldFail: func(int) bool { return true }}

	rp, err := NewResilientPublisher(bus, 3, 10*time.Millisecond, path)
	require.NoError(t, err)

	rp.PublishWithRetry(context.Background(), settledEvent("s-dead"))

	// initial attempt plus three retries
	assert.Eventually(t, func() bool { return bus.count() == 4 }, 2*time.Second, 5*time.Millisecond)
	require.NoError(t, rp.Shutdown(context.Background()))

	entries := deadLetters(t, path)
	require.Len(t, entries, 1)
	assert.Equal(t, Type(domain.EventTypeSpinSettled), entries[0].Event.Type)
	assert.Equal(t, "s-dead", entries[0].Event.SessionID())
	assert.Equal(t, 3, entries[0].Attempts)
	assert.Equal(t, "subscriber unavailable", entries[0].LastError)
	assert.Equal(t, DeadLetterSchemaVersion, entries[0].SchemaVersion)
}

func TestResilientPublisher_QueueOverflow(t *testing.T) {
	path := t.TempDir() + "/dead.jsonl"
	bus := &flakyBus{shouldFail: func(int) bool { return true }}
	dl, err := NewDeadLetterWriter(path)
	require.NoError(t, err)

	// No worker: the queue only fills
	rp := &ResilientPublisher{
		bus:        bus,
		retryQueue: make(chan retryEntry, 2),
		maxRetries: 3,
		retryDelay: time.Hour,
		deadLetter: dl,
		shutdown:   make(chan struct{}),
	}

	for i := 0; i < 5; i++ {
		rp.PublishWithRetry(context.Background(), settledEvent("overflow"))
	}

	assert.Len(t, rp.retryQueue, 2)
	assert.Len(t, deadLetters(t, path), 3)
}

func TestResilientPublisher_ShutdownDrainsQueue(t *testing.T) {
	path := t.TempDir() + "/dead.jsonl"
	bus := &flakyBus{shouldFail: func(call int) bool { return call <= 3 }}

	rp, err := NewResilientPublisher(bus, 5, time.Hour, path)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		rp.PublishWithRetry(context.Background(), settledEvent("drain"))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, rp.Shutdown(ctx))

	assert.Equal(t, 6, bus.count(), "each queued event gets a final attempt")
	assert.Empty(t, deadLetters(t, path))
}

func TestResilientPublisher_ExponentialBackoff(t *testing.T) {
	path := t.TempDir() + "/dead.jsonl"
	bus := &flakyBus{shouldFail: func(call int) bool { return call < 4 }}
	base := 40 * time.Millisecond

	rp, err := NewResilientPublisher(bus, 5, base, path)
	require.NoError(t, err)
	defer rp.Shutdown(context.Background())

	rp.PublishWithRetry(context.Background(), settledEvent("backoff"))

	require.Eventually(t, func() bool { return bus.count() == 4 }, 2*time.Second, 5*time.Millisecond)
	calls := bus.times()

	assert.GreaterOrEqual(t, calls[1].Sub(calls[0]), base)
	assert.GreaterOrEqual(t, calls[2].Sub(calls[1]), 2*base)
	assert.GreaterOrEqual(t, calls[3].Sub(calls[2]), 4*base)
}

func TestResilientPublisher_ConcurrentPublishes(t *testing.T) {
	path := t.TempDir() + "/dead.jsonl"
	bus := &flakyBus{}

	rp, err := NewResilientPublisher(bus, 3, 10*time.Millisecond, path)
	require.NoError(t, err)

	const publishers, each = 10, 5
	var wg sync.WaitGroup
	for i := 0; i < publishers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < each; j++ {
				rp.PublishWithRetry(context.Background(), settledEvent("concurrent"))
			}
		}()
	}
	wg.Wait()
	require.NoError(t, rp.Shutdown(context.Background()))

	assert.Equal(t, publishers*each, bus.count())
}

func TestResilientPublisher_RetriesOnlyFailedHandler(t *testing.T) {
	path := t.TempDir() + "/dead.jsonl"
	bus := NewMemoryBus()

	var mu sync.Mutex
	healthy, flaky := 0, 0
	bus.Subscribe(domain.EventTypeSpinSettled, func(context.Context, Event) error {
		mu.Lock()
		defer mu.Unlock()
		healthy++
		return nil
	})
	bus.Subscribe(domain.EventTypeSpinSettled, func(context.Context, Event) error {
		mu.Lock()
		defer mu.Unlock()
		flaky++
		if flaky == 1 {
			return errors.New("webhook down")
		}
		return nil
	})

	rp, err := NewResilientPublisher(bus, 3, 10*time.Millisecond, path)
	require.NoError(t, err)

	rp.PublishWithRetry(context.Background(), settledEvent("s1"))

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return flaky == 2
	}, time.Second, 5*time.Millisecond)
	require.NoError(t, rp.Shutdown(context.Background()))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, healthy, "a handler that succeeded is not called again")
	assert.Equal(t, 2, flaky)
	assert.Empty(t, deadLetters(t, path))
}

func TestResilientPublisher_PerHandlerDeadLetter(t *testing.T) {
	path := t.TempDir() + "/dead.jsonl"
	bus := NewMemoryBus()

	var mu sync.Mutex
	healthy, failing := 0, 0
	bus.Subscribe(domain.EventTypeSpinSettled, func(context.Context, Event) error {
		mu.Lock()
		defer mu.Unlock()
		healthy++
		return nil
	})
	bus.Subscribe(domain.EventTypeSpinSettled, func(context.Context, Event) error {
		mu.Lock()
		defer mu.Unlock()
		failing++
		return errors.New("webhook down")
	})

	rp, err := NewResilientPublisher(bus, 2, 5*time.Millisecond, path)
	require.NoError(t, err)

	rp.PublishWithRetry(context.Background(), settledEvent("s-dead"))

	// initial attempt plus two retries
	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return failing == 3
	}, 2*time.Second, 5*time.Millisecond)
	require.NoError(t, rp.Shutdown(context.Background()))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, healthy)

	entries := deadLetters(t, path)
	require.Len(t, entries, 1)
	assert.Equal(t, "s-dead", entries[0].Event.SessionID())
}
