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

type usersRepository struct {
	psql *pgxpool.Pool
}

func NewUsersRepository(pool *pgxpool.Pool) domain.UsersRepository {
	return &usersRepository{
		psql: pool,
	}
}

// CreateUser is a no-op for users that already exist.
func (ur *usersRepository) CreateUser(ctx context.Context, user *domain.User) error {
	query := `INSERT INTO cars_bot.users(
			id,
			username,
			first_name,
			last_name,
			language_code,
			is_premium
		)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO NOTHING`
	_, err := ur.psql.Exec(ctx,
		query,
		user.ID,
		user.Username,
		user.FirstName,
		user.LastName,
		user.LanguageCode,
		user.IsPremium,
	)
	if err != nil {
		return errs.NewStack(err)
	}

	return nil
}

// GetUserByID returns nil, nil when the user does not exist.
func (ur *usersRepository) GetUserByID(ctx context.Context, id int64) (*domain.User, error) {
	query := `SELECT
			id,
			username,
			first_name,
			last_name,
			language_code,
			is_premium,
			balance,
			created_at,
			updated_at
		FROM cars_bot.users WHERE id = $1`
	user := &User{}
	if err := ur.psql.QueryRow(ctx, query, id).Scan(
		&user.ID,
		&user.Username,
		&user.FirstName,
		&user.LastName,
		&user.LanguageCode,
		&user.IsPremium,
		&user.Balance,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}

		return nil, errs.NewStack(err)
	}

	return user.CreateDomain(), nil
}

// UpdateUserTGData updates username, first name, last name and is_premium fields of the user.
func (ur *usersRepository) UpdateUserTGData(ctx context.Context, user *domain.User) error {
	query := `UPDATE cars_bot.users
		SET username = $1,
			first_name = $2,
			last_name = $3,
			is_premium = $4,
			updated_at = NOW()
		WHERE id = $5`
	_, err := ur.psql.Exec(ctx, query, user.Username, user.FirstName, user.LastName, user.IsPremium, user.ID)
	if err != nil {
		return errs.NewStack(err)
	}

	return nil
}

func (ur *usersRepository) UpdateUserLanguage(ctx context.Context, userID int64, languageCode string) error {
	query := `UPDATE cars_bot.users
		SET language_code = $1
		WHERE id = $2`
	_, err := ur.psql.Exec(ctx, query, languageCode, userID)
	if err != nil {
		return errs.NewStack(err)
	}

	return nil
}

func (ur *usersRepository) GetUserBalance(ctx context.Context, userID int64) (int64, error) {
	query := `SELECT balance FROM cars_bot.users WHERE id = $1`
	var balance int64
	if err := ur.psql.QueryRow(ctx, query, userID).Scan(&balance); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, boterrs.ErrUserNotFound
		}

		return 0, errs.NewStack(err)
	}

	return balance, nil
}
