package postgres

import (
	"time"

	"github.com/google/uuid"
	"github.com/leonid6372/cars-bot/internal/common/domain"
	"github.com/shopspring/decimal"
)

const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

type User struct {
	ID int64 `db:"id"`

	Username     string `db:"username"`
	FirstName    string `db:"first_name"`
	LastName     string `db:"last_name"`
	LanguageCode string `db:"language_code"`
	IsPremium    bool   `db:"is_premium"`

	Balance int64 `db:"balance"`

	UpdatedAt time.Time `db:"updated_at"`
	CreatedAt time.Time `db:"created_at"`
}

func (u *User) CreateDomain() *domain.User {
	return &domain.User{
		ID:           u.ID,
		Username:     u.Username,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		LanguageCode: u.LanguageCode,
		IsPremium:    u.IsPremium,
		Balance:      u.Balance,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

type Promocode struct {
	Code      string    `db:"code"`
	Category  string    `db:"category"`
	Reward    int64     `db:"reward"`
	ExpiresAt time.Time `db:"expires_at"`
}

func (p *Promocode) CreateDomain() *domain.Promocode {
	return &domain.Promocode{
		Code:      p.Code,
		Category:  domain.PromocodeCategory(p.Category),
		Reward:    p.Reward,
		ExpiresAt: p.ExpiresAt,
	}
}

type Redemption struct {
	UserID     int64     `db:"user_id"`
	Code       string    `db:"code"`
	Reward     int64     `db:"reward"`
	RedeemedAt time.Time `db:"redeemed_at"`
}

func (r *Redemption) CreateDomain() *domain.Redemption {
	return &domain.Redemption{
		UserID:     r.UserID,
		Code:       r.Code,
		Reward:     r.Reward,
		RedeemedAt: r.RedeemedAt,
	}
}

type Car struct {
	ID    int64   `db:"id"`
	Name  string  `db:"name"`
	Price int64   `db:"price"`
	Power float64 `db:"power"`
}

func (c *Car) CreateDomain() *domain.Car {
	return &domain.Car{
		ID:    c.ID,
		Name:  c.Name,
		Price: c.Price,
		Power: c.Power,
	}
}

type Purchase struct {
	ID        int64     `db:"id"`
	UserID    int64     `db:"user_id"`
	CarID     int64     `db:"car_id"`
	CarName   string    `db:"car_name"`
	Price     int64     `db:"price"`
	CreatedAt time.Time `db:"created_at"`
}

func (p *Purchase) CreateDomain() *domain.Purchase {
	return &domain.Purchase{
		ID:        p.ID,
		UserID:    p.UserID,
		CarID:     p.CarID,
		CarName:   p.CarName,
		Price:     p.Price,
		CreatedAt: p.CreatedAt,
	}
}

type Payment struct {
	ID          uuid.UUID `db:"id"`
	UserID      int64     `db:"user_id"`
	Coins       int64     `db:"coins"`
	Amount      string    `db:"amount"`
	Currency    string    `db:"currency"`
	Status      string    `db:"status"`
	GatewayUUID string    `db:"gateway_uuid"`
	URL         string    `db:"url"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

func (p *Payment) CreateDomain() (*domain.Payment, error) {
	amount, err := decimal.NewFromString(p.Amount)
	if err != nil {
		return nil, err
	}

	return &domain.Payment{
		ID:          p.ID,
		UserID:      p.UserID,
		Coins:       p.Coins,
		Amount:      amount,
		Currency:    p.Currency,
		Status:      domain.PaymentStatus(p.Status),
		GatewayUUID: p.GatewayUUID,
		URL:         p.URL,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}, nil
}

type Earning struct {
	ID        int64     `db:"id"`
	UserID    int64     `db:"user_id"`
	Amount    int64     `db:"amount"`
	Source    string    `db:"source"`
	CreatedAt time.Time `db:"created_at"`
}

func (e *Earning) CreateDomain() *domain.Earning {
	return &domain.Earning{
		ID:        e.ID,
		UserID:    e.UserID,
		Amount:    e.Amount,
		Source:    e.Source,
		CreatedAt: e.CreatedAt,
	}
}
