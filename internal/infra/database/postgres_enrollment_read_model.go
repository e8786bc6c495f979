package database

import (
	"context"
	"database/sql"
	"fmt"

	"feedback_reminder_service/internal/domain/enrollment"

	"github.com/lib/pq"
)

// PostgresEnrollmentReadModel reads courses_participants, which is written by the
// enrollment endpoints.
type PostgresEnrollmentReadModel struct {
	db DBTX
}

func NewPostgresEnrollmentReadModel(db DBTX) *PostgresEnrollmentReadModel {
	return &PostgresEnrollmentReadModel{db: db}
}

func (r *PostgresEnrollmentReadModel) ListActiveByCourses(ctx context.Context, courseIDs []int64) ([]*enrollment.Participation, error) {
	if len(courseIDs) == 0 {
		return []*enrollment.Participation{}, nil
	}
	query := `SELECT id, course_id, participant_id, is_active, created_at
               FROM courses_participants
               WHERE is_active = TRUE AND course_id = ANY($1)
               ORDER BY course_id, participant_id`
	rows, err := r.db.QueryContext(ctx, query, pq.Array(courseIDs))
	if err != nil {
		return nil, fmt.Errorf("error querying active participations: %w", err)
	}
	defer rows.Close()
	return scanParticipations(rows)
}

func (r *PostgresEnrollmentReadModel) ListInactive(ctx context.Context) ([]*enrollment.Participation, error) {
	query := `SELECT id, course_id, participant_id, is_active, created_at
               FROM courses_participants
               WHERE is_active = FALSE
               ORDER BY course_id, participant_id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error querying inactive participations: %w", err)
	}
	defer rows.Close()
	return scanParticipations(rows)
}

func scanParticipations(rows *sql.Rows) ([]*enrollment.Participation, error) {
	participations := make([]*enrollment.Participation, 0)
	for rows.Next() {
		p := enrollment.Participation{}
		if err := rows.Scan(&p.ID, &p.CourseID, &p.ParticipantID, &p.IsActive, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning participation row: %w", err)
		}
		participations = append(participations, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating participation rows: %w", err)
	}
	return participations, nil
}
