package spin

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestManualScheduler_RunsInDueOrder(t *testing.T) {
	s := NewManualScheduler()
	var order []string

	s.AfterFunc(300*time.Millisecond, func() { order = append(order, "c") })
	s.AfterFunc(100*time.Millisecond, func() { order = append(order, "a") })
	s.AfterFunc(100*time.Millisecond, func() { order = append(order, "b") })

	assert.Equal(t, 2, s.Advance(200*time.Millisecond))
	assert.Equal(t, []string{"a", "b"}, order)
	assert.Equal(t, 200*time.Millisecond, s.Now())
	assert.Equal(t, 1, s.Pending())

	assert.Equal(t, 1, s.Advance(100*time.Millisecond))
	assert.Equal(t, []string{"a", "b", "c"}, order)
}

func TestManualScheduler_ChainedTasks(t *testing.T) {
	s := NewManualScheduler()
	var fired []time.Duration

	var step func()
	step = func() {
		fired = append(fired, s.Now())
		if len(fired) < 3 {
			s.AfterFunc(400*time.Millisecond, step)
		}
	}
	s.AfterFunc(800*time.Millisecond, step)

	assert.Equal(t, 3, s.Advance(2*time.Second))
	assert.Equal(t, []time.Duration{800 * time.Millisecond, 1200 * time.Millisecond, 1600 * time.Millisecond}, fired)
	assert.Equal(t, 2*time.Second, s.Now())
}

func TestManualScheduler_RunAll(t *testing.T) {
	s := NewManualScheduler()
	count := 0
	s.AfterFunc(time.Hour, func() {
		count++
		s.AfterFunc(time.Hour, func() { count++ })
	})

	assert.Equal(t, 2, s.RunAll())
	assert.Equal(t, 2, count)
	assert.Equal(t, 2*time.Hour, s.Now())
	assert.Zero(t, s.Pending())
}

func TestFormatMessage(t *testing.T) {
	tests := []struct {
		name   string
		amount int64
		bet    int64
		big    bool
		want   string
	}{
		{"loss", 0, 3, false, "No win this time. You wagered 3 credits."},
		{"stake back", 2, 2, false, "Stake returned: 2 credits."},
		{"win with separator", 12000, 5, false, "🎉 You won 12,000 credits (net +11,995)!"},
		{"big win", 1600, 1, true, "💎 BIG WIN! 💎 The pool paid out 1,600 credits!"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := formatMessage(resultWith(tt.amount, tt.big), tt.bet)
			assert.Equal(t, tt.want, got)
		})
	}
}
