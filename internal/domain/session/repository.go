package session

import (
	"context"
	"time"
)

// Catalog is the read-only view over scheduled sessions.
type Catalog interface {
	// ListDue returns sessions whose date and time are at or before at,
	// interpreted in at's location.
	ListDue(ctx context.Context, at time.Time) ([]*Session, error)
}
