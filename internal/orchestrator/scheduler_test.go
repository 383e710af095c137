package orchestrator

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"autojobfinder/internal/logging"
	"autojobfinder/pkg/models"
)

type blockingRunner struct {
	calls   atomic.Int32
	started chan struct{}
	release chan struct{}
	err     error
}

func newBlockingRunner() *blockingRunner {
	return &blockingRunner{
		started: make(chan struct{}, 10),
		release: make(chan struct{}),
	}
}

func (r *blockingRunner) Run(ctx context.Context) (*models.RunSummary, error) {
	r.calls.Add(1)
	r.started <- struct{}{}
	<-r.release
	if r.err != nil {
		return nil, r.err
	}
	now := time.Now()
	return &models.RunSummary{RunID: "run", StartedAt: now, FinishedAt: now}, nil
}

func waitStarted(t *testing.T, r *blockingRunner) {
	t.Helper()
	select {
	case <-r.started:
	case <-time.After(2 * time.Second):
		t.Fatal("run did not start")
	}
}

func TestScheduler_RunsImmediatelyAndStopsOnCancel(t *testing.T) {
	runner := newBlockingRunner()
	close(runner.release)
	s := NewScheduler("@every 1h", runner, logging.NewMultiLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	waitStarted(t, runner)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop")
	}
	assert.Equal(t, int32(1), runner.calls.Load())
}

func TestScheduler_SkipsTickWhileRunning(t *testing.T) {
	runner := newBlockingRunner()
	s := NewScheduler("@every 1h", runner, logging.NewMultiLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	waitStarted(t, runner)
	s.job.Run()
	assert.Equal(t, int32(1), runner.calls.Load())

	cancel()
	close(runner.release)
	require.NoError(t, <-done)
	assert.Equal(t, int32(1), runner.calls.Load())
}

func TestScheduler_FailedRunKeepsScheduling(t *testing.T) {
	runner := newBlockingRunner()
	runner.err = errors.New("search failed")
	close(runner.release)
	s := NewScheduler("@every 1h", runner, logging.NewMultiLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	waitStarted(t, runner)
	cancel()
	require.NoError(t, <-done)
}

func TestScheduler_InvalidSpec(t *testing.T) {
	s := NewScheduler("every tuesday", newBlockingRunner(), logging.NewMultiLogger())
	err := s.Run(context.Background())
	assert.ErrorContains(t, err, "cron.AddJob")
}

func TestKVFields(t *testing.T) {
	fields := kvFields([]interface{}{"entry", 3, "dangling"})
	assert.Equal(t, map[string]interface{}{"entry": 3}, fields)
}
