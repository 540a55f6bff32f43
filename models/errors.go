package models

import (
	"errors"
	"fmt"
)

// Default page size for list queries.
const SearchLimitDefault = 10

var (
	errNonPositiveFactor = errors.New("performance_factor must be > 0")
	errNonPositiveAmount = errors.New("performance_amount must be > 0")
)

// PersistenceError wraps a failed upsert batch. The whole transaction is
// rolled back before this is returned, so callers can retry the batch as a
// unit.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
