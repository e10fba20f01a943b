package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

const jobTimeout = 30 * time.Second

// Job is a named periodic task. Spec uses cron syntax or "@every <duration>".
type Job struct {
	Name string
	Spec string
	Run  func(ctx context.Context) error
}

type Scheduler struct {
	cron *cron.Cron
}

func NewScheduler(jobs ...Job) (*Scheduler, error) {
	logger := cronLogger{}
	c := cron.New(cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)))
	for _, job := range jobs {
		if _, err := c.AddFunc(job.Spec, wrap(job)); err != nil {
			return nil, fmt.Errorf("failed to schedule job %s: %w", job.Name, err)
		}
		log.Debug().Str("job", job.Name).Str("spec", job.Spec).Msg("Scheduled job")
	}
	return &Scheduler{cron: c}, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop prevents new runs and waits for running jobs until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
		log.Warn().Msg("Scheduler stopped before running jobs finished")
	}
}

func wrap(job Job) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()

		start := time.Now()
		if err := job.Run(ctx); err != nil {
			log.Error().Err(err).Str("job", job.Name).Msg("Scheduled job failed")
			return
		}
		log.Debug().Str("job", job.Name).Dur("took", time.Since(start)).Msg("Scheduled job finished")
	}
}

type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	log.Debug().Fields(keysAndValues).Msg(msg)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	log.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
