package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusFailed  PaymentStatus = "failed"
)

type PaymentsRepository interface {
	CreatePayment(ctx context.Context, payment *Payment) error
	GetPaymentByID(ctx context.Context, id uuid.UUID) (*Payment, error)
	GetPendingPayments(ctx context.Context) ([]*Payment, error)
	// CompletePayment marks a pending payment paid, credits its coins and logs
	// the earning. Returns boterrs.ErrPaymentNotPending if it was settled before.
	CompletePayment(ctx context.Context, id uuid.UUID) (*Payment, error)
	FailPayment(ctx context.Context, id uuid.UUID) error
}

type EarningsRepository interface {
	GetUserEarnings(ctx context.Context, userID int64, limit int64) ([]*Earning, error)
}

type Payment struct {
	ID     uuid.UUID `json:"id"`
	UserID int64     `json:"user_id"`

	Coins    int64           `json:"coins"`
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`

	Status      PaymentStatus `json:"status"`
	GatewayUUID string        `json:"gateway_uuid"`
	URL         string        `json:"url"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Earning struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Amount    int64     `json:"amount"`
	Source    string    `json:"source"`
	CreatedAt time.Time `json:"created_at"`
}
