package jobs

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"redesperanza/web/internal/tasks"
)

const (
	uploadSweepSpec  = "0 0 * * * *"
	sessionSweepSpec = "0 30 3 * * *"
	enqueueTimeout   = 5 * time.Second
)

// Scheduler queues the periodic maintenance tasks for the worker.
type Scheduler struct {
	cron   *cron.Cron
	queue  *redis.Client
	stream string
	log    zerolog.Logger
}

func NewScheduler(queue *redis.Client, stream string, log zerolog.Logger) *Scheduler {
	c := cron.New(cron.WithSeconds())
	return &Scheduler{
		cron:   c,
		queue:  queue,
		stream: stream,
		log:    log,
	}
}

func (s *Scheduler) Start() error {
	if s.queue == nil {
		return nil
	}

	if _, err := s.cron.AddFunc(uploadSweepSpec, func() { s.enqueue(tasks.TypeSweepUploads) }); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc(sessionSweepSpec, func() { s.enqueue(tasks.TypeSweepSessions) }); err != nil {
		return err
	}

	s.cron.Start()
	return nil
}

// Stop halts the scheduler; the returned context is done once running jobs finish.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

func (s *Scheduler) enqueue(taskType string) {
	ctx, cancel := context.WithTimeout(context.Background(), enqueueTimeout)
	defer cancel()

	if err := s.Enqueue(ctx, taskType); err != nil {
		s.log.Error().Err(err).Str("type", taskType).Msg("enqueue task failed")
	}
}

// Enqueue appends a task of taskType to the maintenance stream.
func (s *Scheduler) Enqueue(ctx context.Context, taskType string) error {
	if s.queue == nil {
		return nil
	}
	_, err := s.queue.XAdd(ctx, &redis.XAddArgs{
		Stream: s.stream,
		Values: map[string]any{"type": taskType},
	}).Result()
	return err
}
