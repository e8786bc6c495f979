package database

import (
	"context"
	"fmt"
	"time"

	"feedback_reminder_service/internal/domain/session"
)

type PostgresSessionCatalog struct {
	db DBTX
}

func NewPostgresSessionCatalog(db DBTX) *PostgresSessionCatalog {
	return &PostgresSessionCatalog{db: db}
}

// ListDue compares against the wall-clock date and time of at, since
// course_sessions stores a local DATE and TIME without a zone.
func (c *PostgresSessionCatalog) ListDue(ctx context.Context, at time.Time) ([]*session.Session, error) {
	query := `SELECT id, course_id, session_date, session_time::text, description
               FROM course_sessions
               WHERE session_date < $1::date
                  OR (session_date = $1::date AND session_time <= $2::time)
               ORDER BY session_date, session_time, course_id`
	rows, err := c.db.QueryContext(ctx, query, at.Format("2006-01-02"), at.Format("15:04:05"))
	if err != nil {
		return nil, fmt.Errorf("error querying due sessions: %w", err)
	}
	defer rows.Close()

	sessions := make([]*session.Session, 0)
	for rows.Next() {
		s := session.Session{}
		if err := rows.Scan(&s.ID, &s.CourseID, &s.SessionDate, &s.SessionTime, &s.Description); err != nil {
			return nil, fmt.Errorf("error scanning session row: %w", err)
		}
		sessions = append(sessions, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating session rows: %w", err)
	}
	return sessions, nil
}
