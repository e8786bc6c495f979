package enrollment

import "time"

// Participation is one participant's enrollment in one course.
// Rows are owned by the enrollment endpoints; IsActive flipping to false marks the
// course as completed for that participant.
type Participation struct {
	ID            int64
	CourseID      int64
	ParticipantID int64
	IsActive      bool
	CreatedAt     time.Time
}
