package database

import (
	"context"
	"fmt"
)

// Only the two ledgers are owned here. courses_participants and course_sessions
// belong to the enrollment and course-authoring code and are only read.
//
// Postgres treats NULLs as distinct in unique indexes, so each ledger gets one
// partial index for dated keys and one for undated keys.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS feedback_reminders (
		id             BIGSERIAL PRIMARY KEY,
		participant_id BIGINT NOT NULL,
		course_id      BIGINT NOT NULL,
		session_date   DATE,
		type           VARCHAR(16) NOT NULL,
		is_sent        BOOLEAN NOT NULL DEFAULT FALSE,
		created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CONSTRAINT feedback_reminders_type_check CHECK (
			(type = 'lesson' AND session_date IS NOT NULL) OR
			(type = 'course' AND session_date IS NULL)
		)
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS feedback_reminders_dated_key
		ON feedback_reminders (participant_id, course_id, session_date, type)
		WHERE session_date IS NOT NULL`,
	`CREATE UNIQUE INDEX IF NOT EXISTS feedback_reminders_undated_key
		ON feedback_reminders (participant_id, course_id, type)
		WHERE session_date IS NULL`,
	`CREATE INDEX IF NOT EXISTS feedback_reminders_unsent_idx
		ON feedback_reminders (participant_id)
		WHERE is_sent = FALSE`,
	`CREATE TABLE IF NOT EXISTS lesson_feedback (
		id                     BIGSERIAL PRIMARY KEY,
		participant_id         BIGINT NOT NULL,
		course_id              BIGINT NOT NULL,
		session_date           DATE,
		comment                TEXT NOT NULL DEFAULT '',
		improvement_suggestion TEXT NOT NULL DEFAULT '',
		suggested_topics       TEXT NOT NULL DEFAULT '',
		created_at             TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS lesson_feedback_dated_key
		ON lesson_feedback (participant_id, course_id, session_date)
		WHERE session_date IS NOT NULL`,
	`CREATE UNIQUE INDEX IF NOT EXISTS lesson_feedback_undated_key
		ON lesson_feedback (participant_id, course_id)
		WHERE session_date IS NULL`,
}

// EnsureSchema creates the ledger tables and their dedup indexes if missing.
func EnsureSchema(ctx context.Context, db DBTX) error {
	for i, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("error applying schema statement %d: %w", i+1, err)
		}
	}
	return nil
}
