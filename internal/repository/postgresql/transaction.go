package postgresql

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hrms-lite/hrms-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type txContextKey struct{}

// WithTransaction executes fn inside a database transaction. If ctx already
// carries a transaction, fn joins it instead of opening a new one.
func WithTransaction(ctx context.Context, db database.Pool, fn func(ctx context.Context, tx pgx.Tx) error) error {
	if tx, ok := ctx.Value(txContextKey{}).(pgx.Tx); ok {
		return fn(ctx, tx)
	}

	tx, err := db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				slog.Error("rollback error during panic recovery", "error", rbErr)
			}
			panic(p)
		}
	}()

	// Execute function
	if err := fn(context.WithValue(ctx, txContextKey{}, tx), tx); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			return fmt.Errorf("rollback error: %v (original error: %w)", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

// GetQuerier returns either transaction or pool
// Used in repositories to support both transactional and non-transactional operations
func GetQuerier(ctx context.Context, db database.Pool) database.Querier {
	if tx, ok := ctx.Value(txContextKey{}).(pgx.Tx); ok {
		return tx
	}
	return db
}
