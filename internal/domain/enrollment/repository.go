package enrollment

import "context"

// ReadModel exposes the participation facts the reminder generator needs.
type ReadModel interface {
	// ListActiveByCourses returns active participations in any of the given courses.
	ListActiveByCourses(ctx context.Context, courseIDs []int64) ([]*Participation, error)
	// ListInactive returns every participation whose course is completed.
	ListInactive(ctx context.Context) ([]*Participation, error)
}
