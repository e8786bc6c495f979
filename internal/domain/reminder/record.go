// internal/domain/reminder/record.go
package reminder

import (
	"database/sql"
	"time"
)

// Record is a materialized "a reminder is owed" fact.
// Corresponds to the 'feedback_reminders' table. Rows are insert-only from this
// service; IsSent belongs to whatever component delivers reminders.
type Record struct {
	ID            int64
	ParticipantID int64
	CourseID      int64
	SessionDate   sql.NullTime // always null for TypeCourse
	Type          Type
	IsSent        bool
	CreatedAt     time.Time
}

// Key is the dedup key of a Record. SessionDate is the DateLayout rendering of the
// session date, or empty for course-level reminders.
type Key struct {
	ParticipantID int64
	CourseID      int64
	SessionDate   string
	Type          Type
}

// LessonKey builds the key for a reminder owed after the session on sessionDate.
func LessonKey(participantID, courseID int64, sessionDate time.Time) Key {
	return Key{
		ParticipantID: participantID,
		CourseID:      courseID,
		SessionDate:   sessionDate.Format(DateLayout),
		Type:          TypeLesson,
	}
}

// CourseKey builds the key for a reminder owed after course completion.
func CourseKey(participantID, courseID int64) Key {
	return Key{ParticipantID: participantID, CourseID: courseID, Type: TypeCourse}
}

// Key returns the dedup key of r.
func (r *Record) Key() Key {
	if r.Type == TypeCourse || !r.SessionDate.Valid {
		return CourseKey(r.ParticipantID, r.CourseID)
	}
	return LessonKey(r.ParticipantID, r.CourseID, r.SessionDate.Time)
}

// NewRecord returns an unsent record for k. A lesson key whose SessionDate does not
// parse yields a record with a null date, which the storage check constraint rejects.
func NewRecord(k Key) *Record {
	rec := &Record{
		ParticipantID: k.ParticipantID,
		CourseID:      k.CourseID,
		Type:          k.Type,
	}
	if k.Type == TypeLesson {
		if d, err := time.Parse(DateLayout, k.SessionDate); err == nil {
			rec.SessionDate = sql.NullTime{Time: d, Valid: true}
		}
	}
	return rec
}
