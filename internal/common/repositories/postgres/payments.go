package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/leonid6372/cars-bot/internal/boterrs"
	"github.com/leonid6372/cars-bot/internal/common/domain"
	"github.com/leonid6372/cars-bot/pkg/errs"
)

const paymentColumns = `id,
			user_id,
			coins,
			amount::text,
			currency,
			status,
			gateway_uuid,
			url,
			created_at,
			updated_at`

type paymentsRepository struct {
	psql *pgxpool.Pool
}

func NewPaymentsRepository(pool *pgxpool.Pool) domain.PaymentsRepository {
	return &paymentsRepository{
		psql: pool,
	}
}

func scanPayment(row pgx.Row) (*domain.Payment, error) {
	payment := &Payment{}
	if err := row.Scan(
		&payment.ID,
		&payment.UserID,
		&payment.Coins,
		&payment.Amount,
		&payment.Currency,
		&payment.Status,
		&payment.GatewayUUID,
		&payment.URL,
		&payment.CreatedAt,
		&payment.UpdatedAt,
	); err != nil {
		return nil, err
	}

	return payment.CreateDomain()
}

func (pr *paymentsRepository) CreatePayment(ctx context.Context, payment *domain.Payment) error {
	query := `INSERT INTO cars_bot.payments(
			id,
			user_id,
			coins,
			amount,
			currency,
			status,
			gateway_uuid,
			url
		)
		VALUES ($1, $2, $3, $4::numeric, $5, $6, $7, $8)
		RETURNING created_at, updated_at`
	if err := pr.psql.QueryRow(ctx,
		query,
		payment.ID,
		payment.UserID,
		payment.Coins,
		payment.Amount.String(),
		payment.Currency,
		string(payment.Status),
		payment.GatewayUUID,
		payment.URL,
	).Scan(&payment.CreatedAt, &payment.UpdatedAt); err != nil {
		return errs.NewStack(err)
	}

	return nil
}

func (pr *paymentsRepository) GetPaymentByID(ctx context.Context, id uuid.UUID) (*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM cars_bot.payments WHERE id = $1`
	payment, err := scanPayment(pr.psql.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, boterrs.ErrPaymentNotFound
		}

		return nil, errs.NewStack(err)
	}

	return payment, nil
}

func (pr *paymentsRepository) GetPendingPayments(ctx context.Context) ([]*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + `
		FROM cars_bot.payments
		WHERE status = 'pending'
		ORDER BY created_at ASC`
	rows, err := pr.psql.Query(ctx, query)
	if err != nil {
		return nil, errs.NewStack(err)
	}
	defer rows.Close()

	payments := []*domain.Payment{}
	for rows.Next() {
		payment, err := scanPayment(rows)
		if err != nil {
			return nil, errs.NewStack(err)
		}
		payments = append(payments, payment)
	}

	if err := rows.Err(); err != nil {
		return nil, errs.NewStack(err)
	}

	return payments, nil
}

func (pr *paymentsRepository) CompletePayment(ctx context.Context, id uuid.UUID) (*domain.Payment, error) {
	var payment *domain.Payment

	err := withTx(ctx, pr.psql, func(tx pgx.Tx) error {
		var err error

		query := `SELECT ` + paymentColumns + ` FROM cars_bot.payments WHERE id = $1 FOR UPDATE`
		payment, err = scanPayment(tx.QueryRow(ctx, query, id))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return boterrs.ErrPaymentNotFound
			}

			return errs.NewStack(err)
		}

		if payment.Status != domain.PaymentStatusPending {
			return boterrs.ErrPaymentNotPending
		}

		query = `UPDATE cars_bot.payments SET status = 'paid', updated_at = NOW() WHERE id = $1`
		if _, err := tx.Exec(ctx, query, id); err != nil {
			return errs.NewStack(err)
		}

		query = `UPDATE cars_bot.users SET balance = balance + $1, updated_at = NOW() WHERE id = $2`
		tag, err := tx.Exec(ctx, query, payment.Coins, payment.UserID)
		if err != nil {
			return errs.NewStack(err)
		}

		if tag.RowsAffected() == 0 {
			return boterrs.ErrUserNotFound
		}

		query = `INSERT INTO cars_bot.earnings(user_id, amount, source, payment_id) VALUES ($1, $2, $3, $4)`
		if _, err := tx.Exec(ctx, query, payment.UserID, payment.Coins, domain.EarningSourceTopUp, id); err != nil {
			return errs.NewStack(err)
		}

		payment.Status = domain.PaymentStatusPaid

		return nil
	})
	if err != nil {
		return nil, err
	}

	return payment, nil
}

func (pr *paymentsRepository) FailPayment(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE cars_bot.payments SET status = 'failed', updated_at = NOW() WHERE id = $1 AND status = 'pending'`
	if _, err := pr.psql.Exec(ctx, query, id); err != nil {
		return errs.NewStack(err)
	}

	return nil
}

type earningsRepository struct {
	psql *pgxpool.Pool
}

func NewEarningsRepository(pool *pgxpool.Pool) domain.EarningsRepository {
	return &earningsRepository{
		psql: pool,
	}
}

func (er *earningsRepository) GetUserEarnings(ctx context.Context, userID int64, limit int64) ([]*domain.Earning, error) {
	query := `SELECT
			id,
			user_id,
			amount,
			source,
			created_at
		FROM cars_bot.earnings
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2`
	rows, err := er.psql.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, errs.NewStack(err)
	}
	defer rows.Close()

	earnings := []*domain.Earning{}
	for rows.Next() {
		earning := &Earning{}
		if err := rows.Scan(
			&earning.ID,
			&earning.UserID,
			&earning.Amount,
			&earning.Source,
			&earning.CreatedAt,
		); err != nil {
			return nil, errs.NewStack(err)
		}
		earnings = append(earnings, earning.CreateDomain())
	}

	if err := rows.Err(); err != nil {
		return nil, errs.NewStack(err)
	}

	return earnings, nil
}
