package master_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rob-gra/go-dnp3/master"
)

// TestStartPollingInvokesOnResultPeriodically drives a real ticker
// (StartPolling uses time.Ticker, not the injected Clock) at a short
// interval against a transport that always has a class-poll response
// ready, and checks at least one onResult callback fires before Stop.
func TestStartPollingInvokesOnResultPeriodically(t *testing.T) {
	cfg := testConfig()
	cfg.Class1PollInterval = 2 * time.Millisecond

	tr := &fakeTransport{}
	for i := 0; i < 50; i++ {
		tr.attempts = append(tr.attempts,
			readAttempt{err: noDataErr()},
			readAttempt{data: buildResponseFrame(t, testMasterAddr, testOutstationAddr, byte(i%16), false, 0, 0, nil)},
		)
	}
	m, err := master.New(cfg, tr, master.WithClock(newFakeClock()))
	require.NoError(t, err)
	require.NoError(t, m.Open(context.Background()))

	var (
		mu    sync.Mutex
		calls int
	)
	p := m.StartPolling(func(class int, pr *master.PollResult) {
		mu.Lock()
		defer mu.Unlock()
		calls++
		assert.Equal(t, 1, class)
	}, nil)

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return calls > 0
	}, time.Second, time.Millisecond)

	p.Stop()
}

// TestStartPollingSkipsZeroIntervals confirms a Config with every
// class interval left at its zero value starts no background
// goroutines, and Stop on the resulting Poller returns immediately.
func TestStartPollingSkipsZeroIntervals(t *testing.T) {
	tr := &fakeTransport{}
	m, err := master.New(testConfig(), tr, master.WithClock(newFakeClock()))
	require.NoError(t, err)
	require.NoError(t, m.Open(context.Background()))

	p := m.StartPolling(nil, nil)
	done := make(chan struct{})
	go func() {
		p.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Stop did not return promptly with no pollers running")
	}
}
