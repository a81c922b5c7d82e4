package db

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"log/slog"
	"time"

	"cart-engine/internal/pkg/errs"
	"cart-engine/internal/pkg/pgconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrTransactionBegin   = errs.New("failed to begin transaction")
	ErrTransactionCommit  = errs.New("failed to commit transaction")
	ErrMaxRetriesExceeded = errs.New("transaction failed after max retries")
)

// DBTX is satisfied by both *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const (
	defaultMaxRetries = 3
	defaultBackoff    = 50 * time.Millisecond
)

// RunInTx runs fn in a read-committed transaction and retries on
// serialization failures and deadlocks. Any other error from fn rolls back
// and is returned as is.
func RunInTx(ctx context.Context, pool *pgxpool.Pool, logger *slog.Logger, fn func(ctx context.Context, tx DBTX) error) error {
	options := pgx.TxOptions{IsoLevel: pgx.ReadCommitted}

	for attempt := 0; attempt <= defaultMaxRetries; attempt++ {
		tx, err := pool.BeginTx(ctx, options)
		if err != nil {
			return errs.Mark(err, ErrTransactionBegin)
		}

		err = fn(ctx, tx)
		if err == nil {
			if err = tx.Commit(ctx); err == nil {
				return nil
			}
			err = errs.Mark(err, ErrTransactionCommit)
		}

		// Rollback inline so retries never stack deferred calls.
		if rollbackErr := tx.Rollback(ctx); rollbackErr != nil && !errors.Is(rollbackErr, pgx.ErrTxClosed) {
			logger.Warn("rollback failed", "attempt", attempt+1, "error", rollbackErr.Error())
		}

		if !pgconv.IsRetryable(err) {
			return err
		}
		if attempt == defaultMaxRetries {
			logger.Error("transaction failed after max retries",
				"attempts", attempt+1,
				"error", err.Error())
			return errs.Mark(err, ErrMaxRetriesExceeded)
		}

		waitTime := backoff(attempt, defaultBackoff)
		logger.Warn("retrying transaction due to retryable error",
			"attempt", attempt+1,
			"wait_ms", waitTime.Milliseconds(),
			"error", err.Error())

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(waitTime):
		}
	}

	return ErrMaxRetriesExceeded
}

func backoff(attempt int, base time.Duration) time.Duration {
	waitTime := time.Duration(1<<attempt) * base
	return waitTime + time.Duration(randInt63n(int64(waitTime/5)))
}

func randInt63n(n int64) int64 {
	if n <= 0 {
		return 0
	}
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return 0
	}
	uval := binary.BigEndian.Uint64(buf[:]) & 0x7FFFFFFFFFFFFFFF
	// #nosec G115 -- high bit masked above
	return int64(uval) % n
}
