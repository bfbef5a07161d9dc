package cryptomus

import (
	"github.com/shopspring/decimal"
)

// Invoice statuses after which the invoice will not change anymore.
const (
	StatusPaid       = "paid"
	StatusPaidOver   = "paid_over"
	StatusWrongSum   = "wrong_amount"
	StatusFail       = "fail"
	StatusCancel     = "cancel"
	StatusSystemFail = "system_fail"
	StatusRefundPaid = "refund_paid"
)

type CreateInvoiceRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency"`
	OrderID     string          `json:"order_id"`
	URLReturn   string          `json:"url_return,omitempty"`
	URLSuccess  string          `json:"url_success,omitempty"`
	URLCallback string          `json:"url_callback,omitempty"`
	Lifetime    int64           `json:"lifetime,omitempty"`
}

type invoiceInfoRequest struct {
	OrderID string `json:"order_id"`
}

type response struct {
	State   int      `json:"state"`
	Message string   `json:"message"`
	Result  *Invoice `json:"result"`
}

type Invoice struct {
	UUID          string           `json:"uuid"`
	OrderID       string           `json:"order_id"`
	Amount        decimal.Decimal  `json:"amount"`
	PaymentAmount *decimal.Decimal `json:"payment_amount"`
	Currency      string           `json:"currency"`
	URL           string           `json:"url"`
	PaymentStatus string           `json:"payment_status"`
	IsFinal       bool             `json:"is_final"`
}

// Paid reports whether the invoice was paid for at least amount.
func (i *Invoice) Paid(amount decimal.Decimal) bool {
	if i.PaymentStatus != StatusPaid && i.PaymentStatus != StatusPaidOver {
		return false
	}

	if i.PaymentAmount == nil {
		return i.Amount.GreaterThanOrEqual(amount)
	}

	return i.PaymentAmount.GreaterThanOrEqual(amount)
}

// Failed reports whether the invoice reached a final status without payment.
func (i *Invoice) Failed() bool {
	switch i.PaymentStatus {
	case StatusFail, StatusCancel, StatusSystemFail, StatusWrongSum, StatusRefundPaid:
		return true
	case StatusPaid, StatusPaidOver:
		return false
	}

	return i.IsFinal
}

// Webhook is the part of the Cryptomus callback body the bot relies on.
type Webhook struct {
	Type    string `json:"type"`
	UUID    string `json:"uuid"`
	OrderID string `json:"order_id"`
	Status  string `json:"status"`
}
