// internal/app/reminder_generator.go
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"feedback_reminder_service/internal/domain/enrollment"
	"feedback_reminder_service/internal/domain/reminder"
	idb "feedback_reminder_service/internal/infra/database"

	"github.com/sirupsen/logrus"
)

// RunResult summarizes one generator pass.
type RunResult struct {
	LessonCreated int
	CourseCreated int
	Skipped       int // keys that already had a ledger row
	Duration      time.Duration
}

// Created is the total number of new ledger rows.
func (r RunResult) Created() int {
	return r.LessonCreated + r.CourseCreated
}

// ReminderGenerator materializes owed feedback reminders from enrollment and
// session state. Each Run re-evaluates everything from scratch, so a failed run
// is simply retried by the next one.
type ReminderGenerator struct {
	store  reminder.Store
	logger *logrus.Entry
	now    func() time.Time
}

func NewReminderGenerator(store reminder.Store, logger *logrus.Entry) *ReminderGenerator {
	return &ReminderGenerator{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// Run performs the lesson and course scans inside one store transaction. Either
// all new records are committed or none are.
func (g *ReminderGenerator) Run(ctx context.Context) (RunResult, error) {
	startedAt := g.now()
	g.logger.WithField("at", startedAt.Format(time.RFC3339)).Debug("Reminder generation started")

	var result RunResult
	err := g.store.RunInTx(ctx, func(ctx context.Context, tx reminder.Tx) error {
		result = RunResult{}
		seen := make(map[reminder.Key]struct{})

		if err := g.materializeLessonReminders(ctx, tx, startedAt, seen, &result); err != nil {
			return err
		}
		return g.materializeCourseReminders(ctx, tx, seen, &result)
	})
	result.Duration = g.now().Sub(startedAt)

	if err != nil {
		g.logger.WithError(err).WithField("duration", result.Duration).Error("Reminder generation aborted, nothing committed")
		return RunResult{Duration: result.Duration}, fmt.Errorf("reminder generation failed: %w", err)
	}

	g.logger.WithFields(logrus.Fields{
		"lesson_created": result.LessonCreated,
		"course_created": result.CourseCreated,
		"skipped":        result.Skipped,
		"duration":       result.Duration,
	}).Info("Reminder generation completed")
	return result, nil
}

// materializeLessonReminders owes one lesson reminder per active participant for
// every session of their course that has already started.
func (g *ReminderGenerator) materializeLessonReminders(ctx context.Context, tx reminder.Tx, at time.Time, seen map[reminder.Key]struct{}, result *RunResult) error {
	sessions, err := tx.Sessions.ListDue(ctx, at)
	if err != nil {
		return fmt.Errorf("failed to list due sessions: %w", err)
	}
	if len(sessions) == 0 {
		return nil
	}

	courseIDs := make([]int64, 0)
	courseSeen := make(map[int64]bool)
	for _, s := range sessions {
		if !courseSeen[s.CourseID] {
			courseSeen[s.CourseID] = true
			courseIDs = append(courseIDs, s.CourseID)
		}
	}

	participations, err := tx.Enrollments.ListActiveByCourses(ctx, courseIDs)
	if err != nil {
		return fmt.Errorf("failed to list active participations: %w", err)
	}
	byCourse := make(map[int64][]*enrollment.Participation)
	for _, p := range participations {
		if p.IsActive {
			byCourse[p.CourseID] = append(byCourse[p.CourseID], p)
		}
	}

	for _, s := range sessions {
		for _, p := range byCourse[s.CourseID] {
			created, err := g.ensure(ctx, tx.Ledger, reminder.LessonKey(p.ParticipantID, s.CourseID, s.SessionDate), seen)
			if err != nil {
				return err
			}
			if created {
				result.LessonCreated++
			} else {
				result.Skipped++
			}
		}
	}
	return nil
}

// materializeCourseReminders owes one course reminder per deactivated participation.
func (g *ReminderGenerator) materializeCourseReminders(ctx context.Context, tx reminder.Tx, seen map[reminder.Key]struct{}, result *RunResult) error {
	participations, err := tx.Enrollments.ListInactive(ctx)
	if err != nil {
		return fmt.Errorf("failed to list inactive participations: %w", err)
	}

	for _, p := range participations {
		if p.IsActive {
			continue
		}
		created, err := g.ensure(ctx, tx.Ledger, reminder.CourseKey(p.ParticipantID, p.CourseID), seen)
		if err != nil {
			return err
		}
		if created {
			result.CourseCreated++
		} else {
			result.Skipped++
		}
	}
	return nil
}

// ensure inserts a record for key unless one exists. The ledger insert is an
// atomic insert-if-absent, so a duplicate-key rejection, whether the row came
// from an earlier run or a concurrent writer, counts as already satisfied.
func (g *ReminderGenerator) ensure(ctx context.Context, ledger reminder.Ledger, key reminder.Key, seen map[reminder.Key]struct{}) (bool, error) {
	if _, ok := seen[key]; ok {
		return false, nil
	}
	seen[key] = struct{}{}

	rec := reminder.NewRecord(key)
	if err := ledger.Insert(ctx, rec); err != nil {
		if errors.Is(err, idb.ErrDuplicateKey) {
			g.logger.WithFields(reminderFields(key)).Debug("Reminder already recorded, skipping")
			return false, nil
		}
		return false, fmt.Errorf("failed to insert reminder %+v: %w", key, err)
	}

	g.logger.WithFields(reminderFields(key)).WithField("reminder_id", rec.ID).Debug("Reminder materialized")
	return true, nil
}

func reminderFields(key reminder.Key) logrus.Fields {
	return logrus.Fields{
		"participant_id": key.ParticipantID,
		"course_id":      key.CourseID,
		"session_date":   key.SessionDate,
		"type":           key.Type,
	}
}
