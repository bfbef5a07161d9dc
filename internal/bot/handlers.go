package bot

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/leonid6372/cars-bot/internal/boterrs"
	"github.com/leonid6372/cars-bot/internal/common/config"
	"github.com/leonid6372/cars-bot/internal/common/conversation"
	"github.com/leonid6372/cars-bot/internal/common/domain"
	"github.com/leonid6372/cars-bot/internal/promo"
	"github.com/leonid6372/cars-bot/pkg/dictionary"
	"github.com/leonid6372/cars-bot/pkg/errs"
	"github.com/leonid6372/cars-bot/pkg/log"
	"go.uber.org/zap"
	"gopkg.in/telebot.v4"
)

func (b *Bot) notSubscribedHandler(c telebot.Context, channels []config.Channel) error {
	defer c.Respond()

	user := b.mustUser(c)

	text := b.deps.Dictionary.Text(user.LanguageCode, msgNeedSubscribe)

	markup := b.subscribeKeyboard(user.LanguageCode, channels)

	if err := c.Send(text, &telebot.SendOptions{ReplyMarkup: markup}); err != nil {
		return errs.NewStack(err)
	}

	return nil
}

func (b *Bot) startHandler(c telebot.Context) error {
	if err := b.resetConversation(c); err != nil {
		return err
	}

	if isNew, _ := c.Get(ctxNewUser).(bool); isNew {
		return b.selectLanguageHandler(c)
	}

	return b.startMsg(c)
}

func (b *Bot) selectLanguageHandler(c telebot.Context) error {
	text := b.deps.Dictionary.Text(dictionary.DefaultLanguage, msgLanguage)

	markup := b.languagesKeyboard()

	if err := c.Send(text, &telebot.SendOptions{ReplyMarkup: markup}); err != nil {
		return errs.NewStack(fmt.Errorf("failed to send message: %v", err))
	}

	return nil
}

func (b *Bot) startMsg(c telebot.Context) error {
	user := b.mustUser(c)

	data := map[string]any{
		"Name":          user.FirstName,
		"ButtonCars":    b.deps.Dictionary.Text(user.LanguageCode, btnCarsList),
		"ButtonPromo":   b.deps.Dictionary.Text(user.LanguageCode, btnEnterPromocode),
		"ButtonTopUp":   b.deps.Dictionary.Text(user.LanguageCode, btnTopUp),
		"ButtonProfile": b.deps.Dictionary.Text(user.LanguageCode, btnProfile),
	}

	text := b.deps.Dictionary.Text(user.LanguageCode, msgStart, data)

	if err := c.Send(text, &telebot.SendOptions{
		ReplyMarkup: b.mainMenuKeyboard(user.LanguageCode),
		ParseMode:   telebot.ModeHTML,
	}); err != nil {
		return errs.NewStack(fmt.Errorf("failed to send message: %v", err))
	}

	return nil
}

func (b *Bot) setLanguageHandler(c telebot.Context) error {
	defer c.Respond()

	ctx := mustContext(c)
	args := c.Args()

	if len(args) != 1 {
		return errs.NewStack(fmt.Errorf("failed to parse data: param language not found"))
	}

	langCode := b.userLanguage(args[0])

	user := *b.mustUser(c)

	if err := b.deps.UsersRepository.UpdateUserLanguage(ctx, user.ID, langCode); err != nil {
		return errs.NewStack(fmt.Errorf("failed to update user language_code in repository: %w", err))
	}

	user.LanguageCode = langCode
	b.users.SetDefault(strconv.FormatInt(user.ID, 10), &user)
	c.Set(ctxUser, &user)

	return b.startMsg(c)
}

func (b *Bot) checkSubscriptionHandler(c telebot.Context) error {
	defer c.Respond()

	user := b.mustUser(c)

	if missing := b.missingSubscriptions(user.ID); len(missing) > 0 {
		text := b.deps.Dictionary.Text(user.LanguageCode, msgSubscriptionFailed)
		return c.Respond(&telebot.CallbackResponse{Text: text, ShowAlert: true})
	}

	if err := c.Delete(); err != nil {
		log.Warn("failed to delete message", zap.Error(err))
	}

	text := b.deps.Dictionary.Text(user.LanguageCode, msgSubscriptionSuccess)
	if err := c.Send(text, &telebot.SendOptions{ReplyMarkup: b.mainMenuKeyboard(user.LanguageCode)}); err != nil {
		return errs.NewStack(fmt.Errorf("failed to send confirmation: %w", err))
	}

	return nil
}

func (b *Bot) profileHandler(c telebot.Context) error {
	ctx := mustContext(c)
	user := b.mustUser(c)

	balance, err := b.deps.UsersRepository.GetUserBalance(ctx, user.ID)
	if err != nil {
		return errs.NewStack(fmt.Errorf("failed to get user balance: %w", err))
	}

	purchasesCount, err := b.deps.PurchasesRepository.GetUserPurchasesCount(ctx, user.ID)
	if err != nil {
		return errs.NewStack(fmt.Errorf("failed to get purchases count: %w", err))
	}

	text := b.deps.Dictionary.Text(user.LanguageCode, msgProfile, map[string]any{
		"ID":             user.ID,
		"Username":       user.Username,
		"Balance":        balance,
		"PurchasesCount": purchasesCount,
		"CreatedAt":      user.CreatedAt.Format(time.DateOnly),
	})

	if err := c.Send(text, &telebot.SendOptions{ParseMode: telebot.ModeHTML}); err != nil {
		return errs.NewStack(fmt.Errorf("failed to send message: %v", err))
	}

	return nil
}

func (b *Bot) carsListHandler(c telebot.Context) error {
	defer c.Respond()

	ctx := mustContext(c)
	user := b.mustUser(c)

	currentPage, err := b.getCurrentPage(c)
	if err != nil {
		return err
	}

	pagesCount, err := b.deps.CarsRepository.GetCarsPagesCount(ctx)
	if err != nil {
		return errs.NewStack(fmt.Errorf("failed to get cars pages count: %v", err))
	}

	if pagesCount == 0 {
		return b.sendOrEdit(c, b.deps.Dictionary.Text(user.LanguageCode, msgCarsListEmpty), nil)
	}

	currentPage = min(max(currentPage, 1), pagesCount)

	cars, err := b.deps.CarsRepository.GetCarsByPage(ctx, currentPage)
	if err != nil {
		return errs.NewStack(fmt.Errorf("failed to get cars by page: %v", err))
	}

	text := b.deps.Dictionary.Text(user.LanguageCode, msgCarsList, map[string]any{
		"CurrentPage": currentPage,
		"PagesCount":  pagesCount,
	})

	markup := b.carsListKeyboard(user.LanguageCode, cars, currentPage, pagesCount)

	return b.sendOrEdit(c, text, markup)
}

func (b *Bot) carHandler(c telebot.Context) error {
	defer c.Respond()

	ctx := mustContext(c)
	user := b.mustUser(c)

	carID, err := argInt64(c)
	if err != nil {
		return err
	}

	car, err := b.deps.CarsRepository.GetCarByID(ctx, carID)
	if err != nil {
		return errs.NewStack(fmt.Errorf("failed to get car: %w", err))
	}

	text := b.deps.Dictionary.Text(user.LanguageCode, msgCar, map[string]any{
		"Name":  car.Name,
		"Price": car.Price,
		"Power": car.Power,
	})

	return b.sendOrEdit(c, text, b.carKeyboard(user.LanguageCode, car))
}

func (b *Bot) buyCarHandler(c telebot.Context) error {
	defer c.Respond()

	ctx := mustContext(c)
	user := b.mustUser(c)

	carID, err := argInt64(c)
	if err != nil {
		return err
	}

	purchase, err := b.deps.CarsRepository.BuyCar(ctx, user.ID, carID)
	if errors.Is(err, boterrs.ErrInsufficientFunds) {
		return c.Send(b.deps.Dictionary.Text(user.LanguageCode, msgInsufficientFunds), &telebot.SendOptions{
			ParseMode: telebot.ModeHTML,
		})
	}
	if err != nil {
		return errs.NewStack(fmt.Errorf("failed to buy car: %w", err))
	}

	log.Info("car bought",
		zap.Int64("user_id", user.ID),
		zap.Int64("car_id", carID),
		zap.Int64("price", purchase.Price),
	)

	balance, err := b.deps.UsersRepository.GetUserBalance(ctx, user.ID)
	if err != nil {
		return errs.NewStack(fmt.Errorf("failed to get user balance: %w", err))
	}

	text := b.deps.Dictionary.Text(user.LanguageCode, msgCarBought, map[string]any{
		"Name":    purchase.CarName,
		"Price":   purchase.Price,
		"Balance": balance,
	})

	if err := c.Send(text, &telebot.SendOptions{ParseMode: telebot.ModeHTML}); err != nil {
		return errs.NewStack(fmt.Errorf("failed to send message: %v", err))
	}

	return nil
}

func (b *Bot) topUpHandler(c telebot.Context) error {
	user := b.mustUser(c)

	if b.deps.Payments == nil || len(b.deps.Payments.Packages()) == 0 {
		return c.Send(b.deps.Dictionary.Text(user.LanguageCode, msgTopUpUnavailable))
	}

	text := b.deps.Dictionary.Text(user.LanguageCode, msgTopUp)
	markup := b.topUpKeyboard(user.LanguageCode, b.deps.Payments.Packages(), b.deps.Payments.Currency())

	if err := c.Send(text, &telebot.SendOptions{ReplyMarkup: markup}); err != nil {
		return errs.NewStack(fmt.Errorf("failed to send message: %v", err))
	}

	return nil
}

func (b *Bot) createTopUpHandler(c telebot.Context) error {
	defer c.Respond()

	ctx := mustContext(c)
	user := b.mustUser(c)

	if b.deps.Payments == nil {
		return c.Send(b.deps.Dictionary.Text(user.LanguageCode, msgTopUpUnavailable))
	}

	index, err := argInt64(c)
	if err != nil {
		return err
	}

	pkg, ok := b.deps.Payments.Package(int(index))
	if !ok {
		return errs.NewStack(fmt.Errorf("top-up package %d not found", index))
	}

	payment, err := b.deps.Payments.CreateTopUp(ctx, user.ID, pkg)
	if err != nil {
		return fmt.Errorf("failed to create top-up: %w", err)
	}

	text := b.deps.Dictionary.Text(user.LanguageCode, msgTopUpInvoice, map[string]any{
		"Coins":    payment.Coins,
		"Price":    payment.Amount.String(),
		"Currency": payment.Currency,
	})

	if err := c.Send(text, &telebot.SendOptions{
		ReplyMarkup: b.payKeyboard(user.LanguageCode, payment.URL),
		ParseMode:   telebot.ModeHTML,
	}); err != nil {
		return errs.NewStack(fmt.Errorf("failed to send message: %v", err))
	}

	return nil
}

func (b *Bot) enterPromocodeHandler(c telebot.Context) error {
	ctx := mustContext(c)
	user := b.mustUser(c)

	if err := b.deps.Conversations.Set(ctx, user.ID, conversation.StateAwaitingPromocode); err != nil {
		return err
	}

	text := b.deps.Dictionary.Text(user.LanguageCode, msgEnterPromocode)

	if err := c.Send(text, &telebot.SendOptions{ReplyMarkup: b.cancelKeyboard(user.LanguageCode)}); err != nil {
		return errs.NewStack(fmt.Errorf("failed to send message: %v", err))
	}

	return nil
}

func (b *Bot) cancelHandler(c telebot.Context) error {
	defer c.Respond()

	user := b.mustUser(c)

	if err := b.resetConversation(c); err != nil {
		return err
	}

	if err := c.Delete(); err != nil {
		log.Warn("failed to delete message", zap.Error(err))
	}

	return c.Send(b.deps.Dictionary.Text(user.LanguageCode, msgCancelled), &telebot.SendOptions{
		ReplyMarkup: b.mainMenuKeyboard(user.LanguageCode),
	})
}

// textHandler receives free text. It is a promo code when the user was asked
// for one, otherwise the main menu is shown again.
func (b *Bot) textHandler(c telebot.Context) error {
	ctx := mustContext(c)
	user := b.mustUser(c)

	state, err := b.deps.Conversations.Get(ctx, user.ID)
	if err != nil {
		return err
	}

	if state != conversation.StateAwaitingPromocode {
		return c.Send(b.deps.Dictionary.Text(user.LanguageCode, msgUnknownCommand), &telebot.SendOptions{
			ReplyMarkup: b.mainMenuKeyboard(user.LanguageCode),
		})
	}

	if err := b.deps.Conversations.Clear(ctx, user.ID); err != nil {
		return err
	}

	return b.redeemPromocode(c, user, c.Text())
}

func (b *Bot) redeemPromocode(c telebot.Context, user *domain.User, rawCode string) error {
	outcome, err := b.deps.Promo.Redeem(mustContext(c), user.ID, rawCode, time.Now())
	if err != nil {
		log.Error("promocode redemption failed",
			zap.Int64("user_id", user.ID),
			zap.String("code", strings.TrimSpace(rawCode)),
			errs.Field(err),
		)
	}

	if outcome.Status == promo.StatusRedeemed {
		log.Info("promocode redeemed",
			zap.Int64("user_id", user.ID),
			zap.String("code", outcome.Code),
			zap.Int64("reward", outcome.Reward),
		)
	}

	text := b.deps.Dictionary.Text(user.LanguageCode, outcomeMessage(outcome.Status), map[string]any{
		"Code":   outcome.Code,
		"Reward": outcome.Reward,
	})

	if err := c.Send(text, &telebot.SendOptions{
		ReplyMarkup: b.mainMenuKeyboard(user.LanguageCode),
		ParseMode:   telebot.ModeHTML,
	}); err != nil {
		return errs.NewStack(fmt.Errorf("failed to send message: %v", err))
	}

	return nil
}

func outcomeMessage(status promo.Status) string {
	switch status {
	case promo.StatusRedeemed:
		return msgPromocodeRedeemed
	case promo.StatusInvalidFormat:
		return msgPromocodeInvalid
	case promo.StatusAlreadyUsed:
		return msgPromocodeUsed
	case promo.StatusNotFound:
		return msgPromocodeNotFound
	case promo.StatusExpired:
		return msgPromocodeExpired
	default:
		return msgPromocodeError
	}
}

func (b *Bot) historyHandler(c telebot.Context) error {
	ctx := mustContext(c)
	user := b.mustUser(c)
	lang := user.LanguageCode

	purchases, err := b.deps.PurchasesRepository.GetUserPurchases(ctx, user.ID, domain.HistoryRecords)
	if err != nil {
		return errs.NewStack(fmt.Errorf("failed to get purchases: %w", err))
	}

	earnings, err := b.deps.EarningsRepository.GetUserEarnings(ctx, user.ID, domain.HistoryRecords)
	if err != nil {
		return errs.NewStack(fmt.Errorf("failed to get earnings: %w", err))
	}

	redemptions, err := b.deps.Promo.History(ctx, user.ID)
	if err != nil {
		return fmt.Errorf("failed to get redemptions: %w", err)
	}

	if len(purchases)+len(earnings)+len(redemptions) == 0 {
		return c.Send(b.deps.Dictionary.Text(lang, msgHistoryEmpty))
	}

	var sb strings.Builder
	sb.WriteString(b.deps.Dictionary.Text(lang, msgHistory))

	for _, p := range purchases {
		sb.WriteString("\n")
		sb.WriteString(b.deps.Dictionary.Text(lang, msgHistoryPurchase, map[string]any{
			"Name":  p.CarName,
			"Price": p.Price,
			"Date":  p.CreatedAt.Format(time.DateOnly),
		}))
	}

	for _, e := range earnings {
		sb.WriteString("\n")
		sb.WriteString(b.deps.Dictionary.Text(lang, msgHistoryEarning, map[string]any{
			"Amount": e.Amount,
			"Date":   e.CreatedAt.Format(time.DateOnly),
		}))
	}

	for _, r := range redemptions {
		sb.WriteString("\n")
		sb.WriteString(b.deps.Dictionary.Text(lang, msgHistoryRedemption, map[string]any{
			"Code":   r.Code,
			"Reward": r.Reward,
			"Date":   r.RedeemedAt.Format(time.DateOnly),
		}))
	}

	if err := c.Send(sb.String(), &telebot.SendOptions{ParseMode: telebot.ModeHTML}); err != nil {
		return errs.NewStack(fmt.Errorf("failed to send message: %v", err))
	}

	return nil
}
