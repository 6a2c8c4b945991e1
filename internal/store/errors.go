package store

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"

	mysqldriver "github.com/go-sql-driver/mysql"
)

var (
	// ErrStorageUnavailable covers connectivity failures: the database
	// could not be reached or the connection dropped.
	ErrStorageUnavailable = errors.New("storage unavailable")
	// ErrStorageQuery covers a reachable database rejecting the query.
	ErrStorageQuery = errors.New("storage query failed")
)

// Error wraps a storage failure with its kind.
type Error struct {
	Kind error
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%v: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

func unavailable(err error) error {
	return &Error{Kind: ErrStorageUnavailable, Err: err}
}

// classify picks the kind for an error returned by a query.
func classify(err error) error {
	var netErr net.Error
	switch {
	case errors.Is(err, driver.ErrBadConn),
		errors.Is(err, mysqldriver.ErrInvalidConn),
		errors.Is(err, context.DeadlineExceeded),
		errors.As(err, &netErr):
		return &Error{Kind: ErrStorageUnavailable, Err: err}
	default:
		return &Error{Kind: ErrStorageQuery, Err: err}
	}
}
