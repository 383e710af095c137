package orchestrator

import (
	"context"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"

	"autojobfinder/internal/logging/types"
	"autojobfinder/pkg/models"
	"autojobfinder/pkg/utils"
)

// Runner performs one complete run
type Runner interface {
	Run(ctx context.Context) (*models.RunSummary, error)
}

// Scheduler repeats runs on a cron spec. A tick that arrives while the
// previous run is still going is skipped.
type Scheduler struct {
	cron   *cron.Cron
	spec   string
	runner Runner
	logger types.Logger
	job    cron.Job
}

// NewScheduler creates a scheduler for spec, e.g. "@every 6h"
func NewScheduler(spec string, runner Runner, logger types.Logger) *Scheduler {
	cl := cronLogger{logger: logger}
	return &Scheduler{
		cron:   cron.New(cron.WithLogger(cl), cron.WithChain(cron.Recover(cl))),
		spec:   spec,
		runner: runner,
		logger: logger,
	}
}

// Run starts with an immediate run and then follows the schedule until ctx
// is cancelled. It returns once the in-flight run has finished.
func (s *Scheduler) Run(ctx context.Context) error {
	cl := cronLogger{logger: s.logger}
	s.job = cron.NewChain(cron.SkipIfStillRunning(cl)).Then(cron.FuncJob(func() {
		s.runOnce(ctx)
	}))

	if _, err := s.cron.AddJob(s.spec, s.job); err != nil {
		return fmt.Errorf("cron.AddJob: %w", err)
	}

	s.cron.Start()
	s.logger.Info("Scheduler started", map[string]interface{}{"spec": s.spec})

	var first sync.WaitGroup
	first.Add(1)
	go func() {
		defer first.Done()
		s.job.Run()
	}()

	<-ctx.Done()
	<-s.cron.Stop().Done()
	first.Wait()
	s.logger.Info("Scheduler stopped")
	return nil
}

func (s *Scheduler) runOnce(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}

	summary, err := s.runner.Run(ctx)
	if err != nil {
		s.logger.Error("Scheduled run failed", map[string]interface{}{"error": err.Error()})
		return
	}
	s.logger.Info("Scheduled run finished", map[string]interface{}{
		"run_id":   summary.RunID,
		"found":    summary.TotalFound(),
		"duration": utils.FormatDuration(summary.FinishedAt.Sub(summary.StartedAt)),
	})
}

// cronLogger adapts types.Logger to cron.Logger
type cronLogger struct {
	logger types.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug("cron: "+msg, kvFields(keysAndValues))
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	fields := kvFields(keysAndValues)
	fields["error"] = err.Error()
	l.logger.Error("cron: "+msg, fields)
}

func kvFields(keysAndValues []interface{}) map[string]interface{} {
	fields := make(map[string]interface{}, len(keysAndValues)/2+1)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		fields[fmt.Sprint(keysAndValues[i])] = keysAndValues[i+1]
	}
	return fields
}
