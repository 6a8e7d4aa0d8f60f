package scheduler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/albapepper/soccerscore/internal/cache"
	"github.com/albapepper/soccerscore/internal/seed"
)

type fakeRunner struct {
	result  *seed.Result
	err     error
	started chan struct{}
	release chan struct{}
	runs    int
}

func (f *fakeRunner) Run(ctx context.Context) (seed.Result, error) {
	f.runs++
	if f.started != nil {
		close(f.started)
	}
	if f.release != nil {
		<-f.release
	}
	if f.result != nil {
		return *f.result, f.err
	}
	return seed.Result{LeaguesUpserted: 1}, f.err
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNew_InvalidSpec(t *testing.T) {
	_, err := New("every now and then", &fakeRunner{}, nil, quietLogger())
	assert.Error(t, err)

	_, err = New("@every 6h", &fakeRunner{}, nil, quietLogger())
	assert.NoError(t, err)
}

func TestRunOnce_FlushesCacheOnSuccess(t *testing.T) {
	ctx := context.Background()
	c := cache.NewMemory(true)
	defer c.Close()
	c.Set(ctx, "standings:352", []byte("[]"), time.Minute)

	s, err := New("0 */6 * * *", &fakeRunner{}, c, quietLogger())
	require.NoError(t, err)
	require.NoError(t, s.RunOnce(ctx))

	_, _, ok := c.Get(ctx, "standings:352")
	assert.False(t, ok)
}

func TestRunOnce_FlushesCacheAfterPartialRun(t *testing.T) {
	ctx := context.Background()
	c := cache.NewMemory(true)
	defer c.Close()
	c.Set(ctx, "standings:352", []byte("[]"), time.Minute)

	boom := errors.New("upstream down")
	runner := &fakeRunner{result: &seed.Result{LeaguesUpserted: 1, TeamsUpserted: 20}, err: boom}
	s, err := New("0 */6 * * *", runner, c, quietLogger())
	require.NoError(t, err)

	err = s.RunOnce(ctx)
	assert.ErrorIs(t, err, boom)
	_, _, ok := c.Get(ctx, "standings:352")
	assert.False(t, ok)
}

func TestRunOnce_KeepsCacheWhenNothingWritten(t *testing.T) {
	ctx := context.Background()
	c := cache.NewMemory(true)
	defer c.Close()
	c.Set(ctx, "standings:352", []byte("[]"), time.Minute)

	boom := errors.New("upstream down")
	s, err := New("0 */6 * * *", &fakeRunner{result: &seed.Result{}, err: boom}, c, quietLogger())
	require.NoError(t, err)

	err = s.RunOnce(ctx)
	assert.ErrorIs(t, err, boom)
	_, _, ok := c.Get(ctx, "standings:352")
	assert.True(t, ok)
}

func TestRunOnce_SkipsOverlap(t *testing.T) {
	runner := &fakeRunner{started: make(chan struct{}), release: make(chan struct{})}
	s, err := New("@every 1h", runner, nil, quietLogger())
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- s.RunOnce(context.Background()) }()
	<-runner.started

	assert.ErrorIs(t, s.RunOnce(context.Background()), ErrAlreadyRunning)

	close(runner.release)
	require.NoError(t, <-done)
	assert.Equal(t, 1, runner.runs)
}

func TestStartStop(t *testing.T) {
	s, err := New("@every 1h", &fakeRunner{}, nil, quietLogger())
	require.NoError(t, err)

	require.NoError(t, s.Start(context.Background()))
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s.Stop(ctx)
}
