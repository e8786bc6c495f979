package database

import (
	"context"
	"database/sql"
	"fmt"

	"feedback_reminder_service/internal/domain/reminder"
)

const maxTxAttempts = 3

// PostgresReminderStore runs generator passes in a REPEATABLE READ transaction:
// the read models share one snapshot and the ledger inserts commit as one unit.
type PostgresReminderStore struct {
	db *sql.DB
}

func NewPostgresReminderStore(db *sql.DB) *PostgresReminderStore {
	return &PostgresReminderStore{db: db}
}

// RunInTx runs fn in a fresh transaction. A serialization failure means a
// concurrent writer committed overlapping ledger rows; the whole pass is then
// re-run on a new snapshot, where those rows are visible and fold into skips.
func (s *PostgresReminderStore) RunInTx(ctx context.Context, fn func(ctx context.Context, tx reminder.Tx) error) error {
	var err error
	for attempt := 1; attempt <= maxTxAttempts; attempt++ {
		err = s.runOnce(ctx, fn)
		if err == nil || !isSerializationFailure(err) || ctx.Err() != nil {
			return err
		}
	}
	return fmt.Errorf("reminder transaction conflicted %d times: %w", maxTxAttempts, err)
}

func (s *PostgresReminderStore) runOnce(ctx context.Context, fn func(ctx context.Context, tx reminder.Tx) error) error {
	txn, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead})
	if err != nil {
		return fmt.Errorf("failed to begin reminder transaction: %w", err)
	}
	defer txn.Rollback() // no-op after Commit

	tx := reminder.Tx{
		Enrollments: NewPostgresEnrollmentReadModel(txn),
		Sessions:    NewPostgresSessionCatalog(txn),
		Ledger:      NewPostgresReminderRepository(txn),
	}
	if err := fn(ctx, tx); err != nil {
		return err
	}

	if err := txn.Commit(); err != nil {
		return fmt.Errorf("failed to commit reminder transaction: %w", err)
	}
	return nil
}
