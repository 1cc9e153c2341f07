package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingNotifier struct {
	mu    sync.Mutex
	ticks []int
}

func (n *recordingNotifier) NotifyTimerTick(_ string, remainingSeconds int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.ticks = append(n.ticks, remainingSeconds)
}

func (n *recordingNotifier) recorded() []int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]int(nil), n.ticks...)
}

func TestRoundTimerCompletes(t *testing.T) {
	notifier := &recordingNotifier{}
	timer := NewRoundTimer(notifier, zap.NewNop())

	done := make(chan string, 1)
	timer.Start("t1", 1, func(_ context.Context, tournamentID string) error {
		done <- tournamentID
		return nil
	})

	select {
	case id := <-done:
		assert.Equal(t, "t1", id)
	case <-time.After(3 * time.Second):
		t.Fatal("timer did not complete")
	}

	ticks := notifier.recorded()
	require.NotEmpty(t, ticks)
	assert.Equal(t, 1, ticks[0])
	assert.Equal(t, 0, ticks[len(ticks)-1])
}

func TestRoundTimerStopCancelsCountdown(t *testing.T) {
	timer := NewRoundTimer(&recordingNotifier{}, zap.NewNop())

	done := make(chan struct{}, 1)
	timer.Start("t1", 1, func(context.Context, string) error {
		done <- struct{}{}
		return nil
	})
	timer.Stop("t1")

	select {
	case <-done:
		t.Fatal("stopped timer must not complete")
	case <-time.After(1500 * time.Millisecond):
	}

	// Повторный Stop без таймера — не ошибка.
	timer.Stop("t1")
}

func TestRoundTimerRestartReplacesCountdown(t *testing.T) {
	timer := NewRoundTimer(&recordingNotifier{}, zap.NewNop())

	var mu sync.Mutex
	completions := 0
	complete := func(context.Context, string) error {
		mu.Lock()
		defer mu.Unlock()
		completions++
		return nil
	}

	timer.Start("t1", 30, complete)
	timer.Start("t1", 1, complete)

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return completions == 1
	}, 3*time.Second, 50*time.Millisecond)
}

func TestRoundTimerStopAll(t *testing.T) {
	timer := NewRoundTimer(&recordingNotifier{}, zap.NewNop())

	done := make(chan struct{}, 2)
	complete := func(context.Context, string) error {
		done <- struct{}{}
		return nil
	}
	timer.Start("t1", 1, complete)
	timer.Start("t2", 1, complete)
	timer.StopAll()

	select {
	case <-done:
		t.Fatal("stopped timers must not complete")
	case <-time.After(1500 * time.Millisecond):
	}
}
