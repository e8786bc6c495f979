package feedback

import "context"

// Repository is the submission ledger.
type Repository interface {
	Exists(ctx context.Context, key Key) (bool, error)
	// Create inserts s and fills its ID and CreatedAt. An already present key is
	// reported as a duplicate-key error and nothing is written.
	Create(ctx context.Context, s *Submission) error
}
