package jobs

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"animehost/internal/config"
)

const taskOrphanSweep = "orphan_sweep"

// Scheduler enqueues janitor tasks onto the redis stream on a fixed cron
// schedule. The janitor consumer picks them up in the same process.
type Scheduler struct {
	cron     *cron.Cron
	queue    *redis.Client
	cfg      config.JanitorConfig
	sweepDir string
	log      zerolog.Logger
}

func NewScheduler(queue *redis.Client, cfg config.JanitorConfig, sweepDir string, log zerolog.Logger) *Scheduler {
	c := cron.New(cron.WithSeconds())
	return &Scheduler{
		cron:     c,
		queue:    queue,
		cfg:      cfg,
		sweepDir: sweepDir,
		log:      log,
	}
}

// Start registers the sweep schedule. Without a queue or a directory to
// sweep there is nobody to consume the tasks, so nothing is enqueued.
func (s *Scheduler) Start() error {
	if s.queue == nil || s.sweepDir == "" {
		return nil
	}

	if _, err := s.cron.AddFunc("0 0 3 * * *", s.enqueueOrphanSweep); err != nil {
		return err
	}

	s.cron.Start()
	return nil
}

// Stop halts the schedule and returns a func that waits for any running
// job, up to a deadline.
func (s *Scheduler) Stop() context.CancelFunc {
	stopped := s.cron.Stop()
	return func() {
		select {
		case <-stopped.Done():
		case <-time.After(5 * time.Second):
		}
	}
}

func (s *Scheduler) enqueueOrphanSweep() {
	_, err := s.queue.XAdd(context.Background(), &redis.XAddArgs{
		Stream: s.cfg.Stream,
		Values: map[string]any{"type": taskOrphanSweep},
	}).Result()
	if err != nil {
		s.log.Error().Err(err).Msg("enqueue orphan sweep failed")
	}
}
