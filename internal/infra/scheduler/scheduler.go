package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"feedback_reminder_service/internal/app"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// ReminderRunner is the job the scheduler drives.
type ReminderRunner interface {
	Run(ctx context.Context) (app.RunResult, error)
}

// ReminderScheduler invokes the reminder generator every interval. Runs never
// overlap: a tick that fires while a run is in flight is skipped.
type ReminderScheduler struct {
	cronEngine *cron.Cron
	generator  ReminderRunner
	logger     *logrus.Entry
	interval   time.Duration
	runTimeout time.Duration

	entryID   cron.EntryID
	baseCtx   context.Context
	cancelAll context.CancelFunc
	triggered sync.WaitGroup
}

func NewReminderScheduler(
	generator ReminderRunner,
	logger *logrus.Entry,
	interval time.Duration, // e.g. 10 * time.Minute
	runTimeout time.Duration, // budget for a single run, exceeded runs abort and roll back
) *ReminderScheduler {
	cl := cronLogger{entry: logger}
	baseCtx, cancel := context.WithCancel(context.Background())
	s := &ReminderScheduler{
		cronEngine: cron.New(
			cron.WithLocation(time.Local), // sessions are stored in server-local wall time
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		generator:  generator,
		logger:     logger,
		interval:   interval,
		runTimeout: runTimeout,
		baseCtx:    baseCtx,
		cancelAll:  cancel,
	}
	return s
}

// Start registers the reminder job and starts the cron engine.
func (s *ReminderScheduler) Start() error {
	s.logger.WithField("interval", s.interval).Info("Starting reminder scheduler...")

	id, err := s.cronEngine.AddFunc(fmt.Sprintf("@every %s", s.interval), s.runOnce)
	if err != nil {
		return fmt.Errorf("could not add reminder cron job: %w", err)
	}
	s.entryID = id

	s.cronEngine.Start()
	s.logger.Info("Reminder scheduler started.")
	return nil
}

// RunNow executes the job synchronously through the same no-overlap guard as the
// scheduled ticks; if a run is already in flight it returns immediately.
func (s *ReminderScheduler) RunNow() {
	entry := s.cronEngine.Entry(s.entryID)
	if !entry.Valid() {
		s.logger.Warn("Reminder job is not registered, RunNow ignored")
		return
	}
	entry.WrappedJob.Run()
}

// TriggerNow is RunNow in the background. Stop waits for it.
func (s *ReminderScheduler) TriggerNow() {
	s.triggered.Add(1)
	go func() {
		defer s.triggered.Done()
		s.RunNow()
	}()
}

func (s *ReminderScheduler) runOnce() {
	ctx, cancel := context.WithTimeout(s.baseCtx, s.runTimeout)
	defer cancel()

	s.logger.Debug("Reminder job triggered.")
	if _, err := s.generator.Run(ctx); err != nil {
		// Nothing was committed; the next tick starts over.
		s.logger.WithError(err).Error("Reminder run failed, will retry on next tick")
	}
}

// Stop halts scheduling, cancels an in-flight run and waits for it to return.
func (s *ReminderScheduler) Stop() {
	s.logger.Info("Stopping reminder scheduler...")
	ctx := s.cronEngine.Stop()
	s.cancelAll()
	<-ctx.Done()
	s.triggered.Wait()
	s.logger.Info("Reminder scheduler gracefully stopped.")
}
