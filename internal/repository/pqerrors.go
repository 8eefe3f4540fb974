package repository

import (
	"context"
	"database/sql/driver"
	stderrors "errors"
	"io"
	"net"

	"github.com/lib/pq"

	"finance-sync/internal/errors"
)

const (
	uniqueViolation      = "23505"
	foreignKeyViolation  = "23503"
	notNullViolation     = "23502"
	serializationFailure = "40001"
	deadlockDetected     = "40P01"
	adminShutdown        = "57P01"
)

// translateError maps a driver error onto the application's error taxonomy.
// Data-shape violations become invalid_record; everything else is a
// persistence_error that keeps the driver error as its cause.
func translateError(op string, err error) *errors.AppError {
	var pqErr *pq.Error
	if stderrors.As(err, &pqErr) {
		switch pqErr.Code {
		case foreignKeyViolation, notNullViolation:
			return errors.Wrap(errors.InvalidRecord, op, err)
		case uniqueViolation:
			return errors.Wrap(errors.PersistenceError, op+": constraint "+pqErr.Constraint, err)
		}
	}
	return errors.Wrap(errors.PersistenceError, op, err)
}

// IsTransient reports whether err is a connectivity or contention failure
// that is worth retrying.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var pqErr *pq.Error
	if stderrors.As(err, &pqErr) {
		switch pqErr.Code {
		case serializationFailure, deadlockDetected, adminShutdown:
			return true
		}
		// Class 08: connection exception
		return pqErr.Code.Class() == "08"
	}

	if stderrors.Is(err, driver.ErrBadConn) || stderrors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}

	var netErr net.Error
	return stderrors.As(err, &netErr)
}
