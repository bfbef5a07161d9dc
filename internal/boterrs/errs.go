package boterrs

import "errors"

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrCarNotFound       = errors.New("car not found")
	ErrInvalidPromocode  = errors.New("invalid promocode")
	ErrPromocodeNotFound = errors.New("promocode not found")
	ErrPromocodeUsed     = errors.New("used promocode")
	ErrPromocodeExpired  = errors.New("expired promocode")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrPaymentNotFound   = errors.New("payment not found")
	ErrPaymentNotPending = errors.New("payment is not pending")
)
