package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/leonid6372/cars-bot/internal/boterrs"
	"github.com/leonid6372/cars-bot/internal/common/domain"
	"github.com/leonid6372/cars-bot/pkg/errs"
)

type promocodesRepository struct {
	psql *pgxpool.Pool
}

func NewPromocodesRepository(pool *pgxpool.Pool) domain.PromocodesRepository {
	return &promocodesRepository{
		psql: pool,
	}
}

func (pr *promocodesRepository) WithinRedeemTx(ctx context.Context, fn func(tx domain.PromocodesTx) error) error {
	return withTx(ctx, pr.psql, func(tx pgx.Tx) error {
		return fn(&promocodesTx{tx: tx})
	})
}

func (pr *promocodesRepository) ReplacePromocodes(ctx context.Context, codes []*domain.Promocode) error {
	return withTx(ctx, pr.psql, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM cars_bot.promo_codes`); err != nil {
			return errs.NewStack(err)
		}

		_, err := tx.CopyFrom(ctx,
			pgx.Identifier{"cars_bot", "promo_codes"},
			[]string{"code", "category", "reward", "expires_at"},
			pgx.CopyFromSlice(len(codes), func(i int) ([]any, error) {
				return []any{codes[i].Code, string(codes[i].Category), codes[i].Reward, codes[i].ExpiresAt}, nil
			}),
		)
		if err != nil {
			return errs.NewStack(err)
		}

		return nil
	})
}

func (pr *promocodesRepository) GetUserRedemptions(ctx context.Context, userID int64, limit int64) ([]*domain.Redemption, error) {
	query := `SELECT
			user_id,
			code,
			reward,
			redeemed_at
		FROM cars_bot.promo_redemptions
		WHERE user_id = $1
		ORDER BY redeemed_at DESC
		LIMIT $2`
	rows, err := pr.psql.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, errs.NewStack(err)
	}
	defer rows.Close()

	redemptions := []*domain.Redemption{}
	for rows.Next() {
		redemption := &Redemption{}
		if err := rows.Scan(
			&redemption.UserID,
			&redemption.Code,
			&redemption.Reward,
			&redemption.RedeemedAt,
		); err != nil {
			return nil, errs.NewStack(err)
		}
		redemptions = append(redemptions, redemption.CreateDomain())
	}

	if err := rows.Err(); err != nil {
		return nil, errs.NewStack(err)
	}

	return redemptions, nil
}

type promocodesTx struct {
	tx pgx.Tx
}

func (pt *promocodesTx) FindRedemption(ctx context.Context, userID int64, code string) (bool, error) {
	query := `SELECT EXISTS(
			SELECT 1 FROM cars_bot.promo_redemptions WHERE user_id = $1 AND code = $2
		)`
	var exists bool
	if err := pt.tx.QueryRow(ctx, query, userID, code).Scan(&exists); err != nil {
		return false, errs.NewStack(err)
	}

	return exists, nil
}

// FindPromocode holds a share lock on the row so re-seeding cannot delete it
// while the redemption is in flight.
func (pt *promocodesTx) FindPromocode(ctx context.Context, code string) (*domain.Promocode, error) {
	query := `SELECT
			code,
			category,
			reward,
			expires_at
		FROM cars_bot.promo_codes
		WHERE code = $1
		FOR SHARE`
	promocode := &Promocode{}
	if err := pt.tx.QueryRow(ctx, query, code).Scan(
		&promocode.Code,
		&promocode.Category,
		&promocode.Reward,
		&promocode.ExpiresAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, boterrs.ErrPromocodeNotFound
		}

		return nil, errs.NewStack(err)
	}

	return promocode.CreateDomain(), nil
}

// InsertRedemption relies on the (user_id, code) primary key: a concurrent
// insert of the same pair waits for the other transaction and then fails with
// a unique violation.
func (pt *promocodesTx) InsertRedemption(ctx context.Context, userID int64, code string, reward int64) error {
	query := `INSERT INTO cars_bot.promo_redemptions(user_id, code, reward) VALUES ($1, $2, $3)`
	if _, err := pt.tx.Exec(ctx, query, userID, code, reward); err != nil {
		switch {
		case isPgError(err, uniqueViolation):
			return boterrs.ErrPromocodeUsed
		case isPgError(err, foreignKeyViolation):
			return boterrs.ErrUserNotFound
		}

		return errs.NewStack(err)
	}

	return nil
}

func (pt *promocodesTx) AdjustBalance(ctx context.Context, userID int64, delta int64) error {
	query := `UPDATE cars_bot.users SET balance = balance + $1, updated_at = NOW() WHERE id = $2`
	tag, err := pt.tx.Exec(ctx, query, delta, userID)
	if err != nil {
		return errs.NewStack(err)
	}

	if tag.RowsAffected() == 0 {
		return boterrs.ErrUserNotFound
	}

	return nil
}
