package database

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

// ErrDuplicateKey is returned when a ledger row with the same dedup key already exists.
var ErrDuplicateKey = fmt.Errorf("duplicate dedup key")

const (
	uniqueViolation      = pq.ErrorCode("23505")
	serializationFailure = pq.ErrorCode("40001")
)

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

// isSerializationFailure reports a REPEATABLE READ conflict, e.g. an ON CONFLICT
// insert that hits a row committed after the transaction took its snapshot.
func isSerializationFailure(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == serializationFailure
}

// nullDate renders a nullable calendar date as a query argument. Dates travel as
// text and are cast with ::date so the session time zone cannot shift them.
func nullDate(d sql.NullTime) any {
	if !d.Valid {
		return nil
	}
	return d.Time.Format("2006-01-02")
}

// keyDate is nullDate for dedup keys, where an empty string means null.
func keyDate(d string) any {
	if d == "" {
		return nil
	}
	return d
}
