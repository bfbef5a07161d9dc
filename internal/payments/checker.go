package payments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/leonid6372/cars-bot/internal/boterrs"
	"github.com/leonid6372/cars-bot/internal/common/domain"
	"github.com/leonid6372/cars-bot/pkg/errs"
	"github.com/leonid6372/cars-bot/pkg/log"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Notifier tells the user their top-up was credited.
type Notifier interface {
	NotifyPaid(ctx context.Context, payment *domain.Payment) error
}

type Checker struct {
	repository domain.PaymentsRepository
	gateway    Gateway
	notifier   Notifier

	spec    string
	timeout time.Duration
	cron    *cron.Cron
}

func NewChecker(
	repository domain.PaymentsRepository,
	gateway Gateway,
	notifier Notifier,
	spec string,
	timeout time.Duration,
) *Checker {
	logger := cronLogger{}

	return &Checker{
		repository: repository,
		gateway:    gateway,
		notifier:   notifier,
		spec:       spec,
		timeout:    timeout,
		cron: cron.New(
			cron.WithLogger(logger),
			cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
		),
	}
}

// Start schedules Check with the configured spec. The returned error is about
// a malformed spec only.
func (c *Checker) Start(ctx context.Context) error {
	if _, err := c.cron.AddFunc(c.spec, func() {
		ctx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()

		if err := c.Check(ctx); err != nil {
			log.Error("payments check failed", errs.Field(err))
		}
	}); err != nil {
		return fmt.Errorf("invalid check spec %q: %w", c.spec, err)
	}

	c.cron.Start()
	log.Info("payments checker started", zap.String("spec", c.spec))

	return nil
}

// Stop waits for a running check to finish.
func (c *Checker) Stop() {
	<-c.cron.Stop().Done()
}

// Check polls every pending payment. A failure of one payment does not stop the rest.
func (c *Checker) Check(ctx context.Context) error {
	pending, err := c.repository.GetPendingPayments(ctx)
	if err != nil {
		return err
	}

	for _, payment := range pending {
		if _, err := c.check(ctx, payment); err != nil {
			log.Error("payment check failed",
				zap.String("payment_id", payment.ID.String()),
				errs.Field(err),
			)
		}
	}

	return nil
}

// CheckPayment syncs one payment with the gateway and returns its resulting status.
func (c *Checker) CheckPayment(ctx context.Context, id uuid.UUID) (domain.PaymentStatus, error) {
	payment, err := c.repository.GetPaymentByID(ctx, id)
	if err != nil {
		return "", err
	}

	if payment.Status != domain.PaymentStatusPending {
		return payment.Status, nil
	}

	return c.check(ctx, payment)
}

func (c *Checker) check(ctx context.Context, payment *domain.Payment) (domain.PaymentStatus, error) {
	invoice, err := c.gateway.InvoiceInfo(ctx, payment.ID.String())
	if err != nil {
		return payment.Status, err
	}

	switch {
	case invoice.Paid(payment.Amount):
		completed, err := c.repository.CompletePayment(ctx, payment.ID)
		if errors.Is(err, boterrs.ErrPaymentNotPending) {
			return domain.PaymentStatusPaid, nil
		}
		if err != nil {
			return payment.Status, err
		}

		log.Info("payment completed",
			zap.String("payment_id", completed.ID.String()),
			zap.Int64("user_id", completed.UserID),
			zap.Int64("coins", completed.Coins),
		)

		if err := c.notifier.NotifyPaid(ctx, completed); err != nil {
			log.Warn("failed to notify user about payment",
				zap.Int64("user_id", completed.UserID),
				zap.Error(err),
			)
		}

		return domain.PaymentStatusPaid, nil

	case invoice.Failed():
		if err := c.repository.FailPayment(ctx, payment.ID); err != nil {
			return payment.Status, err
		}

		log.Info("payment failed",
			zap.String("payment_id", payment.ID.String()),
			zap.String("gateway_status", invoice.PaymentStatus),
		)

		return domain.PaymentStatusFailed, nil
	}

	return payment.Status, nil
}

// cronLogger routes cron's own messages to the zap logger.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...any) {
	log.Debug(msg, fields(keysAndValues)...)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...any) {
	log.Error(msg, append(fields(keysAndValues), zap.Error(err))...)
}

func fields(keysAndValues []any) []zap.Field {
	fields := make([]zap.Field, 0, len(keysAndValues)/2)

	for i := 0; i+1 < len(keysAndValues); i += 2 {
		fields = append(fields, zap.Any(fmt.Sprint(keysAndValues[i]), keysAndValues[i+1]))
	}

	return fields
}
