// internal/domain/reminder/repository.go
package reminder

import (
	"context"

	"feedback_reminder_service/internal/domain/enrollment"
	"feedback_reminder_service/internal/domain/session"
)

// Ledger persists reminder obligations. Storage enforces key uniqueness, so Insert
// reports an already present key with a duplicate-key error rather than writing a
// second row.
type Ledger interface {
	Exists(ctx context.Context, key Key) (bool, error)
	Insert(ctx context.Context, rec *Record) error
	ListUnsentByParticipant(ctx context.Context, participantID int64) ([]*Record, error)
}

// Tx groups the read models and ledger bound to a single storage transaction.
type Tx struct {
	Enrollments enrollment.ReadModel
	Sessions    session.Catalog
	Ledger      Ledger
}

// Store runs fn inside one transaction: every read sees the same snapshot and every
// insert commits together. A non-nil error from fn rolls everything back.
type Store interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}
