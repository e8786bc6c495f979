package identity

import (
	"context"
	"errors"
)

// ErrRejected is returned when a bearer credential does not resolve to a participant.
var ErrRejected = errors.New("credential rejected")

// Verifier resolves an inbound bearer credential to a participant id.
type Verifier interface {
	Verify(ctx context.Context, token string) (int64, error)
}
