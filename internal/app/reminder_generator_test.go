package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"feedback_reminder_service/internal/domain/reminder"
	idb "feedback_reminder_service/internal/infra/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGenerator(store reminder.Store, at *time.Time) *ReminderGenerator {
	g := NewReminderGenerator(store, testLogger())
	g.now = func() time.Time { return *at }
	return g
}

func TestReminderGenerator_LessonReminderAfterSession(t *testing.T) {
	store := newMemStore()
	store.enroll(7, 3, true)
	store.schedule(3, "2025-01-01", "10:00:00")

	at := time.Date(2025, 1, 1, 10, 5, 0, 0, time.UTC)
	g := newGenerator(store, &at)

	result, err := g.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.LessonCreated)
	assert.Equal(t, 0, result.CourseCreated)

	records, err := store.ledger.ListUnsentByParticipant(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, records, 1)
	rec := records[0]
	assert.Equal(t, int64(3), rec.CourseID)
	assert.Equal(t, reminder.TypeLesson, rec.Type)
	assert.True(t, rec.SessionDate.Valid)
	assert.Equal(t, "2025-01-01", rec.SessionDate.Time.Format(reminder.DateLayout))
	assert.False(t, rec.IsSent)

	at = time.Date(2025, 1, 1, 10, 10, 0, 0, time.UTC)
	result, err = g.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, result.Created(), "re-running must not create another record")
	assert.Equal(t, 1, result.Skipped)
	assert.Equal(t, 1, store.ledger.count())
}

func TestReminderGenerator_CourseReminderAfterDeactivation(t *testing.T) {
	store := newMemStore()
	p := store.enroll(7, 3, true)
	at := time.Date(2025, 2, 1, 12, 0, 0, 0, time.UTC)
	g := newGenerator(store, &at)

	result, err := g.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, result.Created())

	p.IsActive = false
	result, err = g.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.CourseCreated)
	assert.True(t, store.ledger.has(reminder.CourseKey(7, 3)))

	records, _ := store.ledger.ListUnsentByParticipant(context.Background(), 7)
	require.Len(t, records, 1)
	assert.Equal(t, reminder.TypeCourse, records[0].Type)
	assert.False(t, records[0].SessionDate.Valid)

	result, err = g.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, result.Created())
	assert.Equal(t, 1, store.ledger.count())
}

func TestReminderGenerator_LessonEligibility(t *testing.T) {
	store := newMemStore()
	store.enroll(1, 10, true)  // active, session passed
	store.enroll(2, 10, false) // inactive: course reminder only
	store.enroll(3, 20, true)  // active, session still in the future
	store.enroll(4, 30, true)  // active, no sessions at all
	store.schedule(10, "2025-03-01", "09:00:00")
	store.schedule(10, "2025-03-01", "18:00:00") // same day, later: not yet due but same key anyway
	store.schedule(20, "2025-03-02", "09:00:00")

	at := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC) // exactly at session start counts
	g := newGenerator(store, &at)

	result, err := g.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.LessonCreated)
	assert.Equal(t, 1, result.CourseCreated)

	assert.True(t, store.ledger.has(reminder.LessonKey(1, 10, day("2025-03-01"))))
	assert.False(t, store.ledger.has(reminder.LessonKey(2, 10, day("2025-03-01"))))
	assert.True(t, store.ledger.has(reminder.CourseKey(2, 10)))
	assert.False(t, store.ledger.has(reminder.LessonKey(3, 20, day("2025-03-02"))))
	assert.Equal(t, 2, store.ledger.count())
}

func TestReminderGenerator_SameDateSessionsShareOneReminder(t *testing.T) {
	store := newMemStore()
	store.enroll(1, 10, true)
	store.schedule(10, "2025-03-01", "09:00:00")
	store.schedule(10, "2025-03-01", "14:00:00")
	store.schedule(10, "2025-03-02", "09:00:00")

	at := time.Date(2025, 3, 2, 12, 0, 0, 0, time.UTC)
	result, err := newGenerator(store, &at).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, result.LessonCreated)
	assert.Equal(t, 2, store.ledger.count())
}

func TestReminderGenerator_ConcurrentInsertIsNotAnError(t *testing.T) {
	store := newMemStore()
	store.enroll(7, 3, false)
	key := reminder.CourseKey(7, 3)
	// another writer committed the key after this run took its snapshot
	store.ledger.failOn = func(k reminder.Key) error {
		if k == key {
			return idb.ErrDuplicateKey
		}
		return nil
	}

	at := time.Now()
	result, err := newGenerator(store, &at).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, result.Created())
	assert.Equal(t, 1, result.Skipped)
}

func TestReminderGenerator_InsertsWithoutSeparateExistenceCheck(t *testing.T) {
	store := newMemStore()
	store.enroll(1, 10, true)
	store.enroll(2, 10, true)
	store.enroll(3, 20, false)
	store.schedule(10, "2025-03-01", "09:00:00")
	store.schedule(10, "2025-03-08", "09:00:00")

	at := time.Date(2025, 3, 9, 12, 0, 0, 0, time.UTC)
	g := newGenerator(store, &at)

	_, err := g.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, store.lastTx.inserts, "one round trip per owed key")
	assert.Zero(t, store.lastTx.checks)

	result, err := g.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, result.Skipped)
	assert.Equal(t, 5, store.lastTx.inserts)
	assert.Zero(t, store.lastTx.checks)
	assert.Equal(t, 5, store.ledger.count())
}

func TestReminderGenerator_FailedRunCommitsNothing(t *testing.T) {
	store := newMemStore()
	store.enroll(1, 10, true)
	store.enroll(2, 10, true)
	store.schedule(10, "2025-03-01", "09:00:00")

	boom := errors.New("storage unavailable")
	failing := reminder.LessonKey(2, 10, day("2025-03-01"))
	store.ledger.failOn = func(k reminder.Key) error {
		if k == failing {
			return boom
		}
		return nil
	}

	at := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	g := newGenerator(store, &at)

	_, err := g.Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, store.ledger.count(), "a failed run must not leave partial inserts")

	store.ledger.failOn = nil
	result, err := g.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, result.LessonCreated)
	assert.Equal(t, 2, store.ledger.count())
}

func TestReminderGenerator_ReadFailureAborts(t *testing.T) {
	store := newMemStore()
	store.schedule(10, "2025-03-01", "09:00:00")
	store.listErr = errors.New("connection refused")

	at := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	_, err := newGenerator(store, &at).Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "active participations")
}
