package domain

import (
	"context"
	"time"
)

type PromocodeCategory string

const (
	PromocodeCategoryNormal   PromocodeCategory = "normal"
	PromocodeCategorySpecial  PromocodeCategory = "special"
	PromocodeCategoryAdvanced PromocodeCategory = "advanced"
)

func (c PromocodeCategory) Valid() bool {
	switch c {
	case PromocodeCategoryNormal, PromocodeCategorySpecial, PromocodeCategoryAdvanced:
		return true
	}

	return false
}

type PromocodesRepository interface {
	// WithinRedeemTx runs fn inside a single transaction. The transaction is
	// committed only if fn returns nil.
	WithinRedeemTx(ctx context.Context, fn func(tx PromocodesTx) error) error
	// ReplacePromocodes deletes every promo code and inserts codes instead.
	ReplacePromocodes(ctx context.Context, codes []*Promocode) error
	GetUserRedemptions(ctx context.Context, userID int64, limit int64) ([]*Redemption, error)
}

// PromocodesTx is the set of operations a redemption is composed of.
type PromocodesTx interface {
	FindRedemption(ctx context.Context, userID int64, code string) (bool, error)
	// FindPromocode returns boterrs.ErrPromocodeNotFound for unknown codes.
	FindPromocode(ctx context.Context, code string) (*Promocode, error)
	// InsertRedemption returns boterrs.ErrPromocodeUsed if the pair already exists.
	InsertRedemption(ctx context.Context, userID int64, code string, reward int64) error
	// AdjustBalance returns boterrs.ErrUserNotFound for unknown users.
	AdjustBalance(ctx context.Context, userID int64, delta int64) error
}

type Promocode struct {
	Code      string            `json:"code"`
	Category  PromocodeCategory `json:"category"`
	Reward    int64             `json:"reward"`
	ExpiresAt time.Time         `json:"expires_at"`
}

type Redemption struct {
	UserID     int64     `json:"user_id"`
	Code       string    `json:"code"`
	Reward     int64     `json:"reward"`
	RedeemedAt time.Time `json:"redeemed_at"`
}
