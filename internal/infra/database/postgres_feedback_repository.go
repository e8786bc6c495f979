package database

import (
	"context"
	"fmt"

	"feedback_reminder_service/internal/domain/feedback"
)

type PostgresFeedbackRepository struct {
	db DBTX
}

func NewPostgresFeedbackRepository(db DBTX) *PostgresFeedbackRepository {
	return &PostgresFeedbackRepository{db: db}
}

func (r *PostgresFeedbackRepository) Exists(ctx context.Context, key feedback.Key) (bool, error) {
	query := `SELECT EXISTS (
                 SELECT 1 FROM lesson_feedback
                 WHERE participant_id = $1 AND course_id = $2
                   AND session_date IS NOT DISTINCT FROM $3::date
               )`
	var exists bool
	if err := r.db.QueryRowContext(ctx, query, key.ParticipantID, key.CourseID, keyDate(key.SessionDate)).Scan(&exists); err != nil {
		return false, fmt.Errorf("error checking feedback existence: %w", err)
	}
	return exists, nil
}

// Create runs as a single statement, so a concurrent duplicate surfaces as a unique
// violation from the dedup index and is mapped to ErrDuplicateKey.
func (r *PostgresFeedbackRepository) Create(ctx context.Context, s *feedback.Submission) error {
	query := `INSERT INTO lesson_feedback (
                 participant_id, course_id, session_date,
                 comment, improvement_suggestion, suggested_topics
               ) VALUES ($1, $2, $3::date, $4, $5, $6)
               RETURNING id, created_at`
	err := r.db.QueryRowContext(ctx, query,
		s.ParticipantID, s.CourseID, nullDate(s.SessionDate),
		s.Comment, s.ImprovementSuggestion, s.SuggestedTopics,
	).Scan(&s.ID, &s.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("error creating lesson feedback: %w", err)
	}
	return nil
}
