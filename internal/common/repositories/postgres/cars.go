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

type carsRepository struct {
	psql *pgxpool.Pool
}

func NewCarsRepository(pool *pgxpool.Pool) domain.CarsRepository {
	return &carsRepository{
		psql: pool,
	}
}

func (cr *carsRepository) GetCarsPagesCount(ctx context.Context) (int64, error) {
	query := `SELECT COUNT(*) FROM cars_bot.cars`
	var carsCount int64
	if err := cr.psql.QueryRow(ctx, query).Scan(&carsCount); err != nil {
		return 0, errs.NewStack(err)
	}

	pagesCount := (carsCount + domain.CarsPerPage - 1) / domain.CarsPerPage

	return pagesCount, nil
}

func (cr *carsRepository) GetCarsByPage(ctx context.Context, page int64) ([]*domain.Car, error) {
	query := `SELECT
			id,
			name,
			price,
			power
		FROM cars_bot.cars
		ORDER BY price ASC, id ASC
		LIMIT $1 OFFSET $2`
	rows, err := cr.psql.Query(ctx, query, domain.CarsPerPage, (page-1)*domain.CarsPerPage)
	if err != nil {
		return nil, errs.NewStack(err)
	}
	defer rows.Close()

	cars := []*domain.Car{}
	for rows.Next() {
		car := &Car{}
		if err := rows.Scan(
			&car.ID,
			&car.Name,
			&car.Price,
			&car.Power,
		); err != nil {
			return nil, errs.NewStack(err)
		}
		cars = append(cars, car.CreateDomain())
	}

	if err := rows.Err(); err != nil {
		return nil, errs.NewStack(err)
	}

	return cars, nil
}

func (cr *carsRepository) GetCarByID(ctx context.Context, id int64) (*domain.Car, error) {
	query := `SELECT id, name, price, power FROM cars_bot.cars WHERE id = $1`
	car := &Car{}
	if err := cr.psql.QueryRow(ctx, query, id).Scan(
		&car.ID,
		&car.Name,
		&car.Price,
		&car.Power,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, boterrs.ErrCarNotFound
		}

		return nil, errs.NewStack(err)
	}

	return car.CreateDomain(), nil
}

func (cr *carsRepository) BuyCar(ctx context.Context, userID, carID int64) (*domain.Purchase, error) {
	purchase := &Purchase{UserID: userID, CarID: carID}

	err := withTx(ctx, cr.psql, func(tx pgx.Tx) error {
		query := `SELECT name, price FROM cars_bot.cars WHERE id = $1`
		if err := tx.QueryRow(ctx, query, carID).Scan(&purchase.CarName, &purchase.Price); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return boterrs.ErrCarNotFound
			}

			return errs.NewStack(err)
		}

		query = `SELECT balance FROM cars_bot.users WHERE id = $1 FOR UPDATE`
		var balance int64
		if err := tx.QueryRow(ctx, query, userID).Scan(&balance); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return boterrs.ErrUserNotFound
			}

			return errs.NewStack(err)
		}

		if balance < purchase.Price {
			return boterrs.ErrInsufficientFunds
		}

		query = `UPDATE cars_bot.users SET balance = balance - $1, updated_at = NOW() WHERE id = $2`
		if _, err := tx.Exec(ctx, query, purchase.Price, userID); err != nil {
			return errs.NewStack(err)
		}

		query = `INSERT INTO cars_bot.purchases(user_id, car_id, price)
			VALUES ($1, $2, $3)
			RETURNING id, created_at`
		if err := tx.QueryRow(ctx, query, userID, carID, purchase.Price).Scan(
			&purchase.ID,
			&purchase.CreatedAt,
		); err != nil {
			return errs.NewStack(err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return purchase.CreateDomain(), nil
}

type purchasesRepository struct {
	psql *pgxpool.Pool
}

func NewPurchasesRepository(pool *pgxpool.Pool) domain.PurchasesRepository {
	return &purchasesRepository{
		psql: pool,
	}
}

func (pr *purchasesRepository) GetUserPurchasesCount(ctx context.Context, userID int64) (int64, error) {
	query := `SELECT COUNT(*) FROM cars_bot.purchases WHERE user_id = $1`
	var purchasesCount int64
	if err := pr.psql.QueryRow(ctx, query, userID).Scan(&purchasesCount); err != nil {
		return 0, errs.NewStack(err)
	}

	return purchasesCount, nil
}

func (pr *purchasesRepository) GetUserPurchases(ctx context.Context, userID int64, limit int64) ([]*domain.Purchase, error) {
	query := `SELECT
			p.id,
			p.user_id,
			p.car_id,
			c.name,
			p.price,
			p.created_at
		FROM cars_bot.purchases p
		JOIN cars_bot.cars c
			ON p.car_id = c.id
		WHERE p.user_id = $1
		ORDER BY p.created_at DESC
		LIMIT $2`
	rows, err := pr.psql.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, errs.NewStack(err)
	}
	defer rows.Close()

	purchases := []*domain.Purchase{}
	for rows.Next() {
		purchase := &Purchase{}
		if err := rows.Scan(
			&purchase.ID,
			&purchase.UserID,
			&purchase.CarID,
			&purchase.CarName,
			&purchase.Price,
			&purchase.CreatedAt,
		); err != nil {
			return nil, errs.NewStack(err)
		}
		purchases = append(purchases, purchase.CreateDomain())
	}

	if err := rows.Err(); err != nil {
		return nil, errs.NewStack(err)
	}

	return purchases, nil
}
