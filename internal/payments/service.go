package payments

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/leonid6372/cars-bot/internal/common/clients/cryptomus"
	"github.com/leonid6372/cars-bot/internal/common/config"
	"github.com/leonid6372/cars-bot/internal/common/domain"
	"github.com/leonid6372/cars-bot/pkg/errs"
	"github.com/leonid6372/cars-bot/pkg/log"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Gateway is the part of the Cryptomus client payments rely on.
type Gateway interface {
	CreateInvoice(ctx context.Context, req *cryptomus.CreateInvoiceRequest) (*cryptomus.Invoice, error)
	InvoiceInfo(ctx context.Context, orderID string) (*cryptomus.Invoice, error)
}

// Package is a top-up offer: Coins credited for Price paid in the gateway currency.
type Package struct {
	Coins int64
	Price decimal.Decimal
}

type Service struct {
	repository domain.PaymentsRepository
	gateway    Gateway
	cfg        *config.Cryptomus
	packages   []Package
}

func NewService(
	repository domain.PaymentsRepository,
	gateway Gateway,
	cfg *config.Cryptomus,
	topUps []config.TopUp,
) (*Service, error) {
	packages := make([]Package, 0, len(topUps))

	for _, topUp := range topUps {
		price, err := decimal.NewFromString(topUp.Price)
		if err != nil {
			return nil, fmt.Errorf("invalid top-up price %q: %w", topUp.Price, err)
		}

		if topUp.Coins <= 0 || !price.IsPositive() {
			return nil, fmt.Errorf("top-up %d coins for %s must be positive", topUp.Coins, topUp.Price)
		}

		packages = append(packages, Package{Coins: topUp.Coins, Price: price})
	}

	return &Service{
		repository: repository,
		gateway:    gateway,
		cfg:        cfg,
		packages:   packages,
	}, nil
}

func (s *Service) Packages() []Package {
	return s.packages
}

func (s *Service) Package(i int) (Package, bool) {
	if i < 0 || i >= len(s.packages) {
		return Package{}, false
	}

	return s.packages[i], true
}

func (s *Service) Currency() string {
	return s.cfg.Currency
}

// CreateTopUp opens a gateway invoice for pkg and stores it as a pending payment.
func (s *Service) CreateTopUp(ctx context.Context, userID int64, pkg Package) (*domain.Payment, error) {
	id := uuid.New()

	invoice, err := s.gateway.CreateInvoice(ctx, &cryptomus.CreateInvoiceRequest{
		Amount:      pkg.Price,
		Currency:    s.cfg.Currency,
		OrderID:     id.String(),
		URLReturn:   s.cfg.ReturnURL,
		URLSuccess:  s.cfg.SuccessURL,
		URLCallback: s.cfg.CallbackURL,
		Lifetime:    int64(s.cfg.Lifetime.Seconds()),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create invoice: %w", err)
	}

	payment := &domain.Payment{
		ID:          id,
		UserID:      userID,
		Coins:       pkg.Coins,
		Amount:      pkg.Price,
		Currency:    s.cfg.Currency,
		Status:      domain.PaymentStatusPending,
		GatewayUUID: invoice.UUID,
		URL:         invoice.URL,
	}

	if err := s.repository.CreatePayment(ctx, payment); err != nil {
		return nil, errs.NewStack(fmt.Errorf("failed to save payment: %w", err))
	}

	log.Info("top-up invoice created",
		zap.Int64("user_id", userID),
		zap.String("payment_id", id.String()),
		zap.Int64("coins", pkg.Coins),
		zap.String("amount", pkg.Price.String()),
	)

	return payment, nil
}
