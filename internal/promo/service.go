package promo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/leonid6372/cars-bot/internal/boterrs"
	"github.com/leonid6372/cars-bot/internal/common/config"
	"github.com/leonid6372/cars-bot/internal/common/domain"
	"github.com/leonid6372/cars-bot/pkg/errs"
	"github.com/leonid6372/cars-bot/pkg/log"
	"go.uber.org/zap"
)

type Status int

const (
	StatusRedeemed Status = iota
	StatusInvalidFormat
	StatusAlreadyUsed
	StatusNotFound
	StatusExpired
	StatusStorageError
)

func (s Status) String() string {
	switch s {
	case StatusRedeemed:
		return "redeemed"
	case StatusInvalidFormat:
		return "invalid_format"
	case StatusAlreadyUsed:
		return "already_used"
	case StatusNotFound:
		return "not_found"
	case StatusExpired:
		return "expired"
	case StatusStorageError:
		return "storage_error"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Outcome is the result of a redemption attempt. Reward is set only for
// StatusRedeemed.
type Outcome struct {
	Status Status
	Code   string
	Reward int64
}

type Service struct {
	repository domain.PromocodesRepository

	loc       *time.Location
	ttl       time.Duration
	maxReward int64
}

func NewService(repository domain.PromocodesRepository, cfg *config.Promo, loc *time.Location) *Service {
	if loc == nil {
		loc = time.UTC
	}

	return &Service{
		repository: repository,
		loc:        loc,
		ttl:        cfg.TTL,
		maxReward:  cfg.MaxReward,
	}
}

// Redeem credits the reward of rawCode to the user once. Business results are
// reported through Outcome with a nil error; a non-nil error always comes with
// StatusStorageError and means nothing was applied.
func (s *Service) Redeem(ctx context.Context, userID int64, rawCode string, now time.Time) (Outcome, error) {
	code := strings.TrimSpace(rawCode)
	if code == "" {
		return Outcome{Status: StatusInvalidFormat}, nil
	}

	outcome := Outcome{Code: code}

	err := s.repository.WithinRedeemTx(ctx, func(tx domain.PromocodesTx) error {
		used, err := tx.FindRedemption(ctx, userID, code)
		if err != nil {
			return err
		}

		if used {
			return boterrs.ErrPromocodeUsed
		}

		promocode, err := tx.FindPromocode(ctx, code)
		if err != nil {
			return err
		}

		if s.expired(promocode, now) {
			return boterrs.ErrPromocodeExpired
		}

		if err := tx.InsertRedemption(ctx, userID, code, promocode.Reward); err != nil {
			return err
		}

		if err := tx.AdjustBalance(ctx, userID, promocode.Reward); err != nil {
			return err
		}

		outcome.Reward = promocode.Reward

		return nil
	})

	switch {
	case err == nil:
		outcome.Status = StatusRedeemed
	case errors.Is(err, boterrs.ErrPromocodeUsed):
		outcome.Status = StatusAlreadyUsed
	case errors.Is(err, boterrs.ErrPromocodeNotFound):
		outcome.Status = StatusNotFound
	case errors.Is(err, boterrs.ErrPromocodeExpired):
		outcome.Status = StatusExpired
	default:
		return Outcome{Status: StatusStorageError, Code: code}, errs.NewStack(fmt.Errorf("redeem %q for user %d: %w", code, userID, err))
	}

	if outcome.Status != StatusRedeemed {
		outcome.Reward = 0
	}

	return outcome, nil
}

// expired compares at second precision in the service location, the same
// "YYYY-MM-DD HH:MM:SS" wall clock the codes are seeded with.
func (s *Service) expired(promocode *domain.Promocode, now time.Time) bool {
	current := now.In(s.loc).Format(domain.TimeLayout)
	expiresAt := promocode.ExpiresAt.Format(domain.TimeLayout)

	return current >= expiresAt
}

// Seed replaces every promo code with seeds, each expiring ttl after now.
func (s *Service) Seed(ctx context.Context, seeds []config.PromocodeSeed, now time.Time) ([]*domain.Promocode, error) {
	expiresAt := wallClock(now.In(s.loc).Add(s.ttl))

	codes := make([]*domain.Promocode, 0, len(seeds))
	seen := make(map[string]struct{}, len(seeds))

	for _, seed := range seeds {
		code := strings.TrimSpace(seed.Code)
		if code == "" {
			return nil, fmt.Errorf("%w: empty code", boterrs.ErrInvalidPromocode)
		}

		if _, ok := seen[code]; ok {
			return nil, fmt.Errorf("%w: duplicate code %q", boterrs.ErrInvalidPromocode, code)
		}
		seen[code] = struct{}{}

		category := domain.PromocodeCategory(seed.Category)
		if !category.Valid() {
			return nil, fmt.Errorf("%w: code %q has unknown category %q", boterrs.ErrInvalidPromocode, code, seed.Category)
		}

		if seed.Reward < 0 || seed.Reward > s.maxReward {
			return nil, fmt.Errorf("%w: code %q reward %d is out of [0, %d]",
				boterrs.ErrInvalidPromocode, code, seed.Reward, s.maxReward)
		}

		codes = append(codes, &domain.Promocode{
			Code:      code,
			Category:  category,
			Reward:    seed.Reward,
			ExpiresAt: expiresAt,
		})
	}

	if err := s.repository.ReplacePromocodes(ctx, codes); err != nil {
		return nil, errs.NewStack(fmt.Errorf("replace promocodes: %w", err))
	}

	for _, code := range codes {
		log.Info("promocode seeded",
			zap.String("code", code.Code),
			zap.String("category", string(code.Category)),
			zap.Int64("reward", code.Reward),
			zap.String("expires_at", code.ExpiresAt.Format(domain.TimeLayout)),
		)
	}

	return codes, nil
}

// History returns the latest redemptions of the user.
func (s *Service) History(ctx context.Context, userID int64) ([]*domain.Redemption, error) {
	redemptions, err := s.repository.GetUserRedemptions(ctx, userID, domain.HistoryRecords)
	if err != nil {
		return nil, errs.NewStack(err)
	}

	return redemptions, nil
}

// wallClock drops the location keeping the local date and time, which is what
// a TIMESTAMP column stores.
func wallClock(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, time.UTC)
}
