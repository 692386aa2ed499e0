package backend

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

// ErrUnknownBackend is returned when a backend name is not registered
var ErrUnknownBackend = errors.New("unknown backend")

// ErrorClass categorizes operation errors for the measurement driver
type ErrorClass string

const (
	// ErrorNone is the class of a nil error
	ErrorNone ErrorClass = ""

	// ErrorConnectivity means the database could not be reached or the
	// connection broke mid-operation
	ErrorConnectivity ErrorClass = "connectivity"

	// ErrorConstraint means a uniqueness or foreign-key constraint rejected the
	// statement (SQLSTATE class 23)
	ErrorConstraint ErrorClass = "constraint"

	// ErrorQuery is every other failure
	ErrorQuery ErrorClass = "query"
)

// BatchError reports which element of a batch insert failed
type BatchError struct {
	Index int
	Err   error
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("batch element %d: %v", e.Index, e.Err)
}

func (e *BatchError) Unwrap() error {
	return e.Err
}

// Classify maps an error returned by a Conn to its ErrorClass
func Classify(err error) ErrorClass {
	if err == nil {
		return ErrorNone
	}

	if code := sqlState(err); code != "" {
		switch {
		case strings.HasPrefix(code, "23"):
			return ErrorConstraint
		case strings.HasPrefix(code, "08"), strings.HasPrefix(code, "57P"):
			// connection exception, admin shutdown / cannot connect now
			return ErrorConnectivity
		default:
			return ErrorQuery
		}
	}

	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return ErrorConnectivity
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return ErrorConnectivity
	}

	if errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, sql.ErrConnDone) ||
		errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, context.DeadlineExceeded) ||
		pgconn.Timeout(err) {
		return ErrorConnectivity
	}

	return ErrorQuery
}

// IsConstraintViolation reports whether err is a SQLSTATE class 23 error
func IsConstraintViolation(err error) bool {
	return Classify(err) == ErrorConstraint
}

// sqlState extracts the SQLSTATE code from pgx or lib/pq errors
func sqlState(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}
	return ""
}
