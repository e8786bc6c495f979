// internal/domain/session/session.go
package session

import (
	"database/sql"
	"time"
)

// Session is a scheduled occurrence of a course. Sessions are created by course
// authoring and never modified here.
type Session struct {
	ID          int64
	CourseID    int64
	SessionDate time.Time // calendar date, time-of-day is zero
	SessionTime string    // HH:MM:SS
	Description sql.NullString
}
