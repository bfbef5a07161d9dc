package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/leonid6372/cars-bot/pkg/errs"
	"github.com/leonid6372/cars-bot/pkg/log"
	"go.uber.org/zap"
)

// withTx commits when fn returns nil and rolls back otherwise. Errors of fn
// are returned unchanged so callers can match business errors.
func withTx(ctx context.Context, psql *pgxpool.Pool, fn func(tx pgx.Tx) error) error {
	tx, err := psql.Begin(ctx)
	if err != nil {
		return errs.NewStack(err)
	}
	defer func() {
		if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			log.Error("failed to rollback transaction", zap.Error(err))
		}
	}()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return errs.NewStack(err)
	}

	return nil
}

func isPgError(err error, code string) bool {
	var pgErr *pgconn.PgError

	return errors.As(err, &pgErr) && pgErr.Code == code
}
