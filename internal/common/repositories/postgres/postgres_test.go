package postgres

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/leonid6372/cars-bot/internal/boterrs"
	"github.com/leonid6372/cars-bot/internal/common/config"
	"github.com/leonid6372/cars-bot/internal/common/domain"
	"github.com/leonid6372/cars-bot/internal/promo"
	"github.com/leonid6372/cars-bot/migrations"
	"github.com/leonid6372/cars-bot/pkg/goosemigrate"
	"github.com/shopspring/decimal"
)

// newTestPool connects to CARS_BOT_TEST_POSTGRES_URL, migrates it and empties
// every table. The database is expected to be disposable.
func newTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	url := os.Getenv("CARS_BOT_TEST_POSTGRES_URL")
	if url == "" {
		t.Skip("CARS_BOT_TEST_POSTGRES_URL is not set")
	}

	if err := goosemigrate.NewMigrator(url, migrations.FS, ".", "cars_bot").Up(); err != nil {
		t.Fatalf("migrations up: %v", err)
	}

	pool, err := pgxpool.New(context.Background(), url)
	if err != nil {
		t.Fatalf("pgxpool.New: %v", err)
	}
	t.Cleanup(pool.Close)

	if _, err := pool.Exec(context.Background(), `TRUNCATE
		cars_bot.earnings,
		cars_bot.payments,
		cars_bot.promo_redemptions,
		cars_bot.promo_codes,
		cars_bot.purchases,
		cars_bot.users`); err != nil {
		t.Fatalf("truncate: %v", err)
	}

	return pool
}

func createUser(t *testing.T, repo domain.UsersRepository, id int64) {
	t.Helper()

	if err := repo.CreateUser(context.Background(), &domain.User{ID: id, Username: "user", LanguageCode: "ru"}); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
}

func TestRedeemIntegration(t *testing.T) {
	pool := newTestPool(t)
	ctx := context.Background()

	users := NewUsersRepository(pool)
	createUser(t, users, 42)
	createUser(t, users, 43)

	service := promo.NewService(NewPromocodesRepository(pool), &config.Promo{
		TTL:       7 * 24 * time.Hour,
		MaxReward: 1000,
	}, time.UTC)

	now := time.Now()
	if _, err := service.Seed(ctx, []config.PromocodeSeed{
		{Code: "CODE1", Category: "normal", Reward: 10},
		{Code: "SPECIAL1", Category: "special", Reward: 100},
	}, now); err != nil {
		t.Fatalf("Seed: %v", err)
	}

	outcome, err := service.Redeem(ctx, 42, "CODE1", now)
	if err != nil || outcome.Status != promo.StatusRedeemed || outcome.Reward != 10 {
		t.Fatalf("Redeem = %+v, %v", outcome, err)
	}

	outcome, err = service.Redeem(ctx, 42, "CODE1", now)
	if err != nil || outcome.Status != promo.StatusAlreadyUsed {
		t.Fatalf("second Redeem = %+v, %v", outcome, err)
	}

	outcome, err = service.Redeem(ctx, 42, "NOPE", now)
	if err != nil || outcome.Status != promo.StatusNotFound {
		t.Fatalf("Redeem unknown = %+v, %v", outcome, err)
	}

	outcome, err = service.Redeem(ctx, 42, "SPECIAL1", now.Add(8*24*time.Hour))
	if err != nil || outcome.Status != promo.StatusExpired {
		t.Fatalf("Redeem expired = %+v, %v", outcome, err)
	}

	outcome, err = service.Redeem(ctx, 7, "SPECIAL1", now)
	if err == nil || outcome.Status != promo.StatusStorageError {
		t.Fatalf("Redeem unknown user = %+v, %v", outcome, err)
	}

	balance, err := users.GetUserBalance(ctx, 42)
	if err != nil || balance != 10 {
		t.Errorf("balance = %d, %v, want 10", balance, err)
	}

	// concurrent attempts of one user: exactly one wins
	var wg sync.WaitGroup
	results := make(chan promo.Status, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			outcome, err := service.Redeem(ctx, 43, "SPECIAL1", now)
			if err != nil {
				t.Errorf("concurrent Redeem: %v", err)
			}
			results <- outcome.Status
		}()
	}
	wg.Wait()
	close(results)

	redeemed := 0
	for status := range results {
		switch status {
		case promo.StatusRedeemed:
			redeemed++
		case promo.StatusAlreadyUsed:
		default:
			t.Errorf("unexpected concurrent status %s", status)
		}
	}
	if redeemed != 1 {
		t.Errorf("redeemed %d times, want 1", redeemed)
	}

	balance, err = users.GetUserBalance(ctx, 43)
	if err != nil || balance != 100 {
		t.Errorf("balance = %d, %v, want 100", balance, err)
	}

	history, err := service.History(ctx, 43)
	if err != nil || len(history) != 1 || history[0].Code != "SPECIAL1" {
		t.Errorf("History = %+v, %v", history, err)
	}
}

func TestBuyCarIntegration(t *testing.T) {
	pool := newTestPool(t)
	ctx := context.Background()

	users := NewUsersRepository(pool)
	cars := NewCarsRepository(pool)
	purchases := NewPurchasesRepository(pool)
	createUser(t, users, 42)

	list, err := cars.GetCarsByPage(ctx, 1)
	if err != nil || len(list) == 0 {
		t.Fatalf("GetCarsByPage = %v, %v", list, err)
	}
	car := list[0]

	if _, err := cars.BuyCar(ctx, 42, car.ID); !errors.Is(err, boterrs.ErrInsufficientFunds) {
		t.Fatalf("BuyCar without money = %v", err)
	}

	if _, err := pool.Exec(ctx, `UPDATE cars_bot.users SET balance = $1 WHERE id = 42`, car.Price); err != nil {
		t.Fatal(err)
	}

	purchase, err := cars.BuyCar(ctx, 42, car.ID)
	if err != nil || purchase.Price != car.Price {
		t.Fatalf("BuyCar = %+v, %v", purchase, err)
	}

	balance, _ := users.GetUserBalance(ctx, 42)
	if balance != 0 {
		t.Errorf("balance = %d, want 0", balance)
	}

	count, err := purchases.GetUserPurchasesCount(ctx, 42)
	if err != nil || count != 1 {
		t.Errorf("purchases count = %d, %v", count, err)
	}

	if _, err := cars.BuyCar(ctx, 42, -1); !errors.Is(err, boterrs.ErrCarNotFound) {
		t.Errorf("BuyCar unknown car = %v", err)
	}
}

func TestCompletePaymentIntegration(t *testing.T) {
	pool := newTestPool(t)
	ctx := context.Background()

	users := NewUsersRepository(pool)
	payments := NewPaymentsRepository(pool)
	earnings := NewEarningsRepository(pool)
	createUser(t, users, 42)

	payment := &domain.Payment{
		ID:       uuid.New(),
		UserID:   42,
		Coins:    500,
		Amount:   decimal.RequireFromString("4.99"),
		Currency: "USDT",
		Status:   domain.PaymentStatusPending,
	}
	if err := payments.CreatePayment(ctx, payment); err != nil {
		t.Fatalf("CreatePayment: %v", err)
	}

	pending, err := payments.GetPendingPayments(ctx)
	if err != nil || len(pending) != 1 || !pending[0].Amount.Equal(payment.Amount) {
		t.Fatalf("GetPendingPayments = %+v, %v", pending, err)
	}

	if _, err := payments.CompletePayment(ctx, payment.ID); err != nil {
		t.Fatalf("CompletePayment: %v", err)
	}
	if _, err := payments.CompletePayment(ctx, payment.ID); !errors.Is(err, boterrs.ErrPaymentNotPending) {
		t.Fatalf("second CompletePayment = %v", err)
	}

	balance, _ := users.GetUserBalance(ctx, 42)
	if balance != 500 {
		t.Errorf("balance = %d, want 500", balance)
	}

	list, err := earnings.GetUserEarnings(ctx, 42, domain.HistoryRecords)
	if err != nil || len(list) != 1 || list[0].Amount != 500 || list[0].Source != domain.EarningSourceTopUp {
		t.Errorf("GetUserEarnings = %+v, %v", list, err)
	}

	if _, err := payments.GetPaymentByID(ctx, uuid.New()); !errors.Is(err, boterrs.ErrPaymentNotFound) {
		t.Errorf("GetPaymentByID unknown = %v", err)
	}
}
