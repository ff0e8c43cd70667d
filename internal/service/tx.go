package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// runTx executes fn inside a GORM transaction when db is available, or calls
// fn(nil) directly when db is nil (unit test mode). lockTimeout bounds each
// row-lock wait via SET LOCAL, so a blocked claim or stock lock surfaces as a
// timeout instead of hanging past the transaction deadline.
func runTx(ctx context.Context, db *gorm.DB, lockTimeout time.Duration, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if lockTimeout > 0 {
			stmt := fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", lockTimeout.Milliseconds())
			if err := tx.Exec(stmt).Error; err != nil {
				return err
			}
		}
		return fn(tx)
	})
}

// Postgres error codes surfaced when a lock wait or statement exceeds its
// bound: lock_not_available and query_canceled.
const (
	pgLockNotAvailable = "55P03"
	pgQueryCanceled    = "57014"
)

// wrapTimeout translates deadline and lock-wait failures into the engine's
// retryable TransactionTimeoutError; anything else passes through untouched.
func wrapTimeout(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &TransactionTimeoutError{Op: op}
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && (pgErr.Code == pgLockNotAvailable || pgErr.Code == pgQueryCanceled) {
		return &TransactionTimeoutError{Op: op}
	}
	return err
}
