package tasks

import (
	"fmt"
	"time"

	"cargodesk/internal/config"
	"cargodesk/internal/utils/logger"

	"github.com/hibiken/asynq"
	"github.com/robfig/cron/v3"
)

// Scheduler handles periodic task scheduling
type Scheduler struct {
	scheduler *asynq.Scheduler
	logger    *logger.Logger
}

// NewScheduler creates a new task scheduler
func NewScheduler(redis config.RedisConfig, logger *logger.Logger) *Scheduler {
	scheduler := asynq.NewScheduler(RedisClientOpt(redis), &asynq.SchedulerOpts{})

	return &Scheduler{
		scheduler: scheduler,
		logger:    logger,
	}
}

// Start registers the periodic tasks and runs the scheduler in the background.
func (s *Scheduler) Start() error {
	if err := s.registerTasks(); err != nil {
		return fmt.Errorf("failed to register tasks: %w", err)
	}

	s.logger.Info("starting task scheduler")
	return s.scheduler.Start()
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	s.scheduler.Shutdown()
	s.logger.Info("task scheduler stopped")
}

// registerTasks registers all periodic tasks
func (s *Scheduler) registerTasks() error {
	if err := s.RegisterPeriodicTask(PurgeSchedule, NewPurgeExpiredOTPTask()); err != nil {
		return err
	}
	s.logger.Info("registered all periodic tasks")
	return nil
}

// NextRun parses spec the way the scheduler does and returns the next fire time after from.
func NextRun(spec string, from time.Time) (time.Time, error) {
	schedule, err := cron.ParseStandard(spec)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid cron spec %q: %w", spec, err)
	}
	return schedule.Next(from), nil
}

// RegisterPeriodicTask validates spec before handing it to asynq so a typo
// fails at startup with a clear message.
func (s *Scheduler) RegisterPeriodicTask(spec string, task *asynq.Task) error {
	next, err := NextRun(spec, time.Now())
	if err != nil {
		return err
	}

	entryID, err := s.scheduler.Register(spec, task)
	if err != nil {
		return fmt.Errorf("failed to register periodic task: %w", err)
	}

	s.logger.Info("registered periodic task %s %s %s, next run %s", task.Type(), spec, entryID, next.Format(time.RFC3339))
	return nil
}
