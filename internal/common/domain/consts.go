package domain

const (
	CarsPerPage    = 5
	HistoryRecords = 10

	// TimeLayout is the precision promo code expiration is compared at.
	TimeLayout = "2006-01-02 15:04:05"

	EarningSourceTopUp = "topup"
)
