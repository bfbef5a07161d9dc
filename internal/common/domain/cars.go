package domain

import (
	"context"
	"time"
)

type CarsRepository interface {
	GetCarsPagesCount(ctx context.Context) (int64, error)
	GetCarsByPage(ctx context.Context, page int64) ([]*Car, error)
	GetCarByID(ctx context.Context, id int64) (*Car, error)
	// BuyCar debits the car price from the user balance and records the purchase.
	BuyCar(ctx context.Context, userID, carID int64) (*Purchase, error)
}

type PurchasesRepository interface {
	GetUserPurchasesCount(ctx context.Context, userID int64) (int64, error)
	GetUserPurchases(ctx context.Context, userID int64, limit int64) ([]*Purchase, error)
}

type Car struct {
	ID    int64   `json:"id"`
	Name  string  `json:"name"`
	Price int64   `json:"price"`
	Power float64 `json:"power"`
}

type Purchase struct {
	ID      int64  `json:"id"`
	UserID  int64  `json:"user_id"`
	CarID   int64  `json:"car_id"`
	CarName string `json:"car_name"`
	Price   int64  `json:"price"`

	CreatedAt time.Time `json:"created_at"`
}
