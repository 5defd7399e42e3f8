package domain

import "errors"

// ErrDuplicateDate reports an insert for a (user, date) pair that already has
// a measurement. It is an expected, recoverable condition: callers convert it
// to a user-facing conflict message and abandon the write.
var ErrDuplicateDate = errors.New("measurement already exists for this date")

// ErrNotFound reports an update targeting a missing row.
var ErrNotFound = errors.New("measurement not found")
