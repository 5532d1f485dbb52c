package task

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gamecenter/nfl-data/internal/metrics"
)

func newTestRunner(t *testing.T, opts ...Option) *Runner {
	t.Helper()
	r := NewRunner(slog.New(slog.NewTextHandler(io.Discard, nil)), opts...)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = r.Shutdown(ctx)
	})
	return r
}

func waitDone(t *testing.T, r *Runner, id string) Run {
	t.Helper()
	var run Run
	require.Eventually(t, func() bool {
		var ok bool
		run, ok = r.Get(id)
		return ok && run.State.Done()
	}, 2*time.Second, 5*time.Millisecond)
	return run
}

func TestRunnerSuccess(t *testing.T) {
	m := metrics.NewMock()
	r := newTestRunner(t, WithMetrics(m))

	run, started, err := r.Start("teams", func(context.Context) (string, any, error) {
		return "created=32 updated=0 failed=0", map[string]int{"created": 32}, nil
	})
	require.NoError(t, err)
	require.True(t, started)
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, "teams", run.Task)

	done := waitDone(t, r, run.ID)
	assert.Equal(t, StateSucceeded, done.State)
	assert.Equal(t, "created=32 updated=0 failed=0", done.Summary)
	assert.Empty(t, done.Error)
	require.NotNil(t, done.StartedAt)
	require.NotNil(t, done.FinishedAt)
	assert.Equal(t, map[string]int{"created": 32}, done.Result)

	latest, ok := r.Latest("teams")
	require.True(t, ok)
	assert.Equal(t, run.ID, latest.ID)
	assert.Eventually(t, func() bool { return m.Tasks("teams", "succeeded") == 1 }, time.Second, 5*time.Millisecond)
}

func TestRunnerFailure(t *testing.T) {
	m := metrics.NewMock()
	r := newTestRunner(t, WithMetrics(m))

	run, _, err := r.Start("stats", func(context.Context) (string, any, error) {
		return "", nil, errors.New("no stats fetched")
	})
	require.NoError(t, err)

	done := waitDone(t, r, run.ID)
	assert.Equal(t, StateFailed, done.State)
	assert.Equal(t, "no stats fetched", done.Error)
	assert.Eventually(t, func() bool { return m.Tasks("stats", "failed") == 1 }, time.Second, 5*time.Millisecond)
}

func TestRunnerRecoversPanic(t *testing.T) {
	r := newTestRunner(t)

	run, _, err := r.Start("boom", func(context.Context) (string, any, error) {
		panic("bad record")
	})
	require.NoError(t, err)

	done := waitDone(t, r, run.ID)
	assert.Equal(t, StateFailed, done.State)
	assert.Contains(t, done.Error, "task panicked")
	assert.Contains(t, done.Error, "bad record")
}

func TestRunnerSingleFlightPerName(t *testing.T) {
	r := newTestRunner(t)
	release := make(chan struct{})
	calls := 0

	first, started, err := r.Start("rosters", func(context.Context) (string, any, error) {
		calls++
		<-release
		return "done", nil, nil
	})
	require.NoError(t, err)
	require.True(t, started)

	second, started, err := r.Start("rosters", func(context.Context) (string, any, error) {
		calls++
		return "", nil, nil
	})
	require.NoError(t, err)
	assert.False(t, started)
	assert.Equal(t, first.ID, second.ID)

	other, started, err := r.Start("teams", func(context.Context) (string, any, error) {
		return "", nil, nil
	})
	require.NoError(t, err)
	assert.True(t, started)
	assert.NotEqual(t, first.ID, other.ID)

	close(release)
	waitDone(t, r, first.ID)
	assert.Equal(t, 1, calls)

	third, started, err := r.Start("rosters", func(context.Context) (string, any, error) {
		return "", nil, nil
	})
	require.NoError(t, err)
	assert.True(t, started)
	assert.NotEqual(t, first.ID, third.ID)
}

func TestRunnerShutdownCancelsRuns(t *testing.T) {
	r := NewRunner(slog.New(slog.NewTextHandler(io.Discard, nil)))

	run, _, err := r.Start("week", func(ctx context.Context) (string, any, error) {
		<-ctx.Done()
		return "", nil, ctx.Err()
	})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, r.Shutdown(ctx))

	done, ok := r.Get(run.ID)
	require.True(t, ok)
	assert.Equal(t, StateFailed, done.State)
	assert.Equal(t, context.Canceled.Error(), done.Error)

	_, _, err = r.Start("week", func(context.Context) (string, any, error) { return "", nil, nil })
	assert.ErrorIs(t, err, ErrShuttingDown)
}

func TestRunnerShutdownWaitsForConcurrentStarts(t *testing.T) {
	r := NewRunner(slog.New(slog.NewTextHandler(io.Discard, nil)))
	block := func(ctx context.Context) (string, any, error) {
		<-ctx.Done()
		return "", nil, ctx.Err()
	}

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		started []string
	)
	for i := 0; i < 40; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			run, ok, err := r.Start(fmt.Sprintf("task-%d", i), block)
			if err != nil {
				assert.ErrorIs(t, err, ErrShuttingDown)
				return
			}
			if ok {
				mu.Lock()
				started = append(started, run.ID)
				mu.Unlock()
			}
		}()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, r.Shutdown(ctx))
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	for _, id := range started {
		run, ok := r.Get(id)
		require.True(t, ok)
		assert.True(t, run.State.Done(), "run %s still %s after Shutdown returned", id, run.State)
	}
}

func TestRunnerHistoryTrim(t *testing.T) {
	r := newTestRunner(t, WithHistory(2))
	noop := func(context.Context) (string, any, error) { return "", nil, nil }

	var ids []string
	for range 4 {
		run, _, err := r.Start("scoreboard", noop)
		require.NoError(t, err)
		waitDone(t, r, run.ID)
		ids = append(ids, run.ID)
	}

	_, ok := r.Get(ids[0])
	assert.False(t, ok)
	_, ok = r.Get(ids[3])
	assert.True(t, ok)
	latest, ok := r.Latest("scoreboard")
	require.True(t, ok)
	assert.Equal(t, ids[3], latest.ID)
}

func TestRunnerUnknownRun(t *testing.T) {
	r := newTestRunner(t)
	_, ok := r.Get("missing")
	assert.False(t, ok)
	_, ok = r.Latest("missing")
	assert.False(t, ok)
}
