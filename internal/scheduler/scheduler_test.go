package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestScheduler_RunNowAndInvalidSpec(t *testing.T) {
	s := New(zap.NewNop(), time.Second)
	var runs atomic.Int32

	err := s.Add(context.Background(), "sync", "@every 1h", true, func(ctx context.Context) error {
		runs.Add(1)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, s.Entries())
	assert.Eventually(t, func() bool { return runs.Load() == 1 }, time.Second, 10*time.Millisecond)

	err = s.Add(context.Background(), "broken", "every tuesday", false, func(context.Context) error { return nil })
	assert.Error(t, err)
	assert.Equal(t, 1, s.Entries())
}

func TestScheduler_JobErrorsAndTimeoutDoNotPanic(t *testing.T) {
	s := New(zap.NewNop(), 20*time.Millisecond)
	done := make(chan error, 1)

	require.NoError(t, s.Add(context.Background(), "slow", "@every 1h", true, func(ctx context.Context) error {
		<-ctx.Done()
		done <- ctx.Err()
		return errors.New("gave up")
	}))

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	case <-time.After(time.Second):
		t.Fatal("job never observed its deadline")
	}

	s.Start()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s.Stop(ctx)
}

func TestScheduler_TickDuringRunNowIsSkipped(t *testing.T) {
	s := New(zap.NewNop(), time.Second)
	var runs atomic.Int32
	started, release := make(chan struct{}), make(chan struct{})

	require.NoError(t, s.Add(context.Background(), "sync", "@every 1h", true, func(ctx context.Context) error {
		if runs.Add(1) == 1 {
			close(started)
			<-release
		}
		return nil
	}))
	<-started

	entries := s.cron.Entries()
	require.Len(t, entries, 1)
	entries[0].Job.Run()
	assert.Equal(t, int32(1), runs.Load())

	close(release)
	assert.Eventually(t, func() bool {
		entries[0].Job.Run()
		return runs.Load() == 2
	}, time.Second, 10*time.Millisecond)
}
