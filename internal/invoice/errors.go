package invoice

import (
	"errors"
	"fmt"
)

var ErrNotFound = errors.New("invoice not found")

// DatabaseError reports a store-level failure of a gateway operation.
// Code carries the SQLSTATE when the driver supplied one.
type DatabaseError struct {
	Op   string
	Code string
	Err  error
}

func (e *DatabaseError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s (sqlstate %s): %v", e.Op, e.Code, e.Err)
	}

	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *DatabaseError) Unwrap() error { return e.Err }
