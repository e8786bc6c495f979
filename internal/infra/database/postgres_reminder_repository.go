// internal/infra/database/postgres_reminder_repository.go
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"feedback_reminder_service/internal/domain/reminder"
)

type PostgresReminderRepository struct {
	db DBTX
}

func NewPostgresReminderRepository(db DBTX) *PostgresReminderRepository {
	return &PostgresReminderRepository{db: db}
}

func (r *PostgresReminderRepository) Exists(ctx context.Context, key reminder.Key) (bool, error) {
	query := `SELECT EXISTS (
                 SELECT 1 FROM feedback_reminders
                 WHERE participant_id = $1 AND course_id = $2 AND type = $3
                   AND session_date IS NOT DISTINCT FROM $4::date
               )`
	var exists bool
	err := r.db.QueryRowContext(ctx, query, key.ParticipantID, key.CourseID, key.Type, keyDate(key.SessionDate)).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("error checking reminder existence: %w", err)
	}
	return exists, nil
}

// Insert adds rec unless its dedup key is already taken, in which case it returns
// ErrDuplicateKey. ON CONFLICT keeps the surrounding transaction usable, where a
// raised unique violation would abort it.
func (r *PostgresReminderRepository) Insert(ctx context.Context, rec *reminder.Record) error {
	if !rec.Type.Valid() {
		return fmt.Errorf("invalid reminder type %q", rec.Type)
	}
	if (rec.Type == reminder.TypeLesson) != rec.SessionDate.Valid {
		return fmt.Errorf("reminder type %q does not match session date (set=%t)", rec.Type, rec.SessionDate.Valid)
	}
	query := `INSERT INTO feedback_reminders (participant_id, course_id, session_date, type, is_sent)
               VALUES ($1, $2, $3::date, $4, $5)
               ON CONFLICT DO NOTHING
               RETURNING id, created_at`
	err := r.db.QueryRowContext(ctx, query, rec.ParticipantID, rec.CourseID, nullDate(rec.SessionDate), rec.Type, rec.IsSent).
		Scan(&rec.ID, &rec.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || isUniqueViolation(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("error inserting feedback reminder: %w", err)
	}
	return nil
}

func (r *PostgresReminderRepository) ListUnsentByParticipant(ctx context.Context, participantID int64) ([]*reminder.Record, error) {
	query := `SELECT id, participant_id, course_id, session_date, type, is_sent, created_at
               FROM feedback_reminders
               WHERE participant_id = $1 AND is_sent = FALSE
               ORDER BY created_at, id`
	rows, err := r.db.QueryContext(ctx, query, participantID)
	if err != nil {
		return nil, fmt.Errorf("error querying unsent reminders: %w", err)
	}
	defer rows.Close()

	records := make([]*reminder.Record, 0)
	for rows.Next() {
		rec := reminder.Record{}
		if err := rows.Scan(&rec.ID, &rec.ParticipantID, &rec.CourseID, &rec.SessionDate, &rec.Type, &rec.IsSent, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning reminder row: %w", err)
		}
		records = append(records, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating reminder rows: %w", err)
	}
	return records, nil
}
