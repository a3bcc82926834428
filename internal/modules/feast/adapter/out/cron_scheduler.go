package out

import (
	"fmt"
	"time"

	hclog "github.com/hashicorp/go-hclog"
	"github.com/robfig/cron/v3"

	feastout "feastly/internal/modules/feast/port/out"
)

// CronScheduler drives periodic jobs with robfig/cron. Jobs that are still
// running when their next slot comes up are skipped, so runs never overlap.
type CronScheduler struct {
	cron *cron.Cron
}

func NewCronScheduler(logger hclog.Logger) feastout.Scheduler {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	cl := cronLogger{log: logger.Named("scheduler")}
	return &CronScheduler{cron: cron.New(
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)}
}

func (s *CronScheduler) Every(interval time.Duration, job func()) error {
	if interval <= 0 {
		return fmt.Errorf("scheduler interval must be positive, got %s", interval)
	}
	if _, err := s.cron.AddFunc("@every "+interval.String(), job); err != nil {
		return fmt.Errorf("schedule job: %w", err)
	}
	return nil
}

func (s *CronScheduler) Start() {
	s.cron.Start()
}

// Stop halts the schedule and waits for a running job to return.
func (s *CronScheduler) Stop() {
	<-s.cron.Stop().Done()
}

type cronLogger struct {
	log hclog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Trace(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error(msg, append([]interface{}{"error", err}, keysAndValues...)...)
}
