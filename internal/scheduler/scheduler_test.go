package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		expr    string
		wantErr bool
	}{
		{"0 3 * * *", false},
		{"*/15 * * * 1-5", false},
		{"@daily", false},
		{"@every 90m", false},
		{"0 3 * *", true},
		{"61 * * * *", true},
		{"", true},
		{"0 0 3 * * *", true}, // seconds field not accepted
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			_, err := Parse(tt.expr)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNext(t *testing.T) {
	s, err := New("30 2 * * *", func(context.Context) error { return nil }, nil)
	require.NoError(t, err)

	from := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 5, 2, 2, 30, 0, 0, time.UTC), s.Next(from))
}

func TestTrigger_SkipsWhileRunning(t *testing.T) {
	release := make(chan struct{})
	var started atomic.Int32
	s, err := New("@hourly", func(context.Context) error {
		started.Add(1)
		<-release
		return nil
	}, nil)
	require.NoError(t, err)

	ctx := context.Background()
	assert.True(t, s.trigger(ctx))
	assert.False(t, s.trigger(ctx))
	assert.False(t, s.trigger(ctx))

	close(release)
	s.wg.Wait()

	assert.EqualValues(t, 1, started.Load())
	assert.EqualValues(t, 1, s.Runs())
	assert.EqualValues(t, 2, s.Skipped())

	// Free again once the run returned.
	assert.True(t, s.trigger(ctx))
	s.wg.Wait()
	assert.EqualValues(t, 2, s.Runs())
}

func TestTrigger_JobErrorReleases(t *testing.T) {
	s, err := New("@hourly", func(context.Context) error { return errors.New("boom") }, nil)
	require.NoError(t, err)

	require.True(t, s.trigger(context.Background()))
	s.wg.Wait()
	assert.True(t, s.trigger(context.Background()))
	s.wg.Wait()
}

func TestRun_FiresAndStops(t *testing.T) {
	fired := make(chan struct{}, 8)
	s, err := New("@every 1s", func(ctx context.Context) error {
		fired <- struct{}{}
		return nil
	}, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	select {
	case <-fired:
	case <-time.After(5 * time.Second):
		t.Fatal("job never fired")
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
