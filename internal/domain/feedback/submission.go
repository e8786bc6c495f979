package feedback

import (
	"database/sql"
	"time"
)

// Submission is a participant's feedback on a course, or on one session of it when
// SessionDate is set. Corresponds to the 'lesson_feedback' table.
type Submission struct {
	ID                    int64
	ParticipantID         int64
	CourseID              int64
	SessionDate           sql.NullTime
	Comment               string
	ImprovementSuggestion string
	SuggestedTopics       string
	CreatedAt             time.Time
}

// Key identifies at most one Submission. An empty SessionDate means course-level feedback.
type Key struct {
	ParticipantID int64
	CourseID      int64
	SessionDate   string
}

// Key returns the dedup key of s.
func (s *Submission) Key() Key {
	k := Key{ParticipantID: s.ParticipantID, CourseID: s.CourseID}
	if s.SessionDate.Valid {
		k.SessionDate = s.SessionDate.Time.Format("2006-01-02")
	}
	return k
}
