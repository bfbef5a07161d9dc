package bot

import (
	"context"
	"fmt"
	"time"

	"github.com/leonid6372/cars-bot/internal/common/config"
	"github.com/leonid6372/cars-bot/internal/common/conversation"
	"github.com/leonid6372/cars-bot/internal/common/domain"
	"github.com/leonid6372/cars-bot/internal/payments"
	"github.com/leonid6372/cars-bot/internal/promo"
	"github.com/leonid6372/cars-bot/pkg/dictionary"
	"github.com/leonid6372/cars-bot/pkg/errs"
	"github.com/patrickmn/go-cache"
	"gopkg.in/telebot.v4"
)

type Bot struct {
	Telebot *telebot.Bot
	cfg     *config.Bot
	users   *cache.Cache

	ctx  context.Context
	deps *Dependencies
}

// Dependencies of the bot. Payments is nil when the payment gateway is not configured.
type Dependencies struct {
	Dictionary    *dictionary.Dictionary
	Conversations conversation.Store
	Promo         *promo.Service
	Payments      *payments.Service

	UsersRepository     domain.UsersRepository
	CarsRepository      domain.CarsRepository
	PurchasesRepository domain.PurchasesRepository
	EarningsRepository  domain.EarningsRepository
}

func New(ctx context.Context, cfg *config.Bot, deps *Dependencies) (*Bot, error) {
	b, err := telebot.NewBot(telebot.Settings{
		Token:  cfg.APIKey,
		Poller: &telebot.LongPoller{Timeout: cfg.Timeout},
	})
	if err != nil {
		return nil, fmt.Errorf("telebot.NewBot: %w", err)
	}

	bot := newBot(ctx, b, cfg, deps)

	if err := bot.setCommands(); err != nil {
		return nil, fmt.Errorf("bot.setCommands: %w", err)
	}

	return bot, nil
}

func newBot(ctx context.Context, tb *telebot.Bot, cfg *config.Bot, deps *Dependencies) *Bot {
	bot := &Bot{
		Telebot: tb,
		cfg:     cfg,
		users:   cache.New(16*time.Minute, 8*time.Minute),
		ctx:     ctx,
		deps:    deps,
	}

	bot.setupMiddlewares()
	bot.setupMessageRoutes()
	bot.setupCallbackRoutes()

	return bot
}

func (b *Bot) setCommands() error {
	commands := []telebot.Command{
		{Text: "start", Description: "🚗 Get started"},
		{Text: "language", Description: "🌎 Choose language"},
		{Text: "promocode", Description: "🎁 Enter promo code"},
	}

	if err := b.Telebot.SetCommands(commands); err != nil {
		return errs.NewStack(err)
	}

	return nil
}

func (b *Bot) setupMiddlewares() {
	b.Telebot.Use(
		b.recoveryMiddleware,
		b.defaultErrorMiddleware,
		b.timeoutMiddleware,
		b.updateUserInfoMiddleware,
		b.selectUserMiddleware,
		b.subscribeMiddleware,
		b.conversationMiddleware,
	)
}

func (b *Bot) setupMessageRoutes() {
	message := b.Telebot.Group()

	message.Handle("/start", b.startHandler)
	message.Handle("/language", b.selectLanguageHandler)
	message.Handle("/promocode", b.enterPromocodeHandler)

	// Reply keyboard buttons arrive as plain text in the user's language.
	for _, lang := range b.cfg.Languages {
		message.Handle(&telebot.Btn{Text: b.deps.Dictionary.Text(lang, btnProfile)}, b.profileHandler)
		message.Handle(&telebot.Btn{Text: b.deps.Dictionary.Text(lang, btnCarsList)}, b.carsListHandler)
		message.Handle(&telebot.Btn{Text: b.deps.Dictionary.Text(lang, btnTopUp)}, b.topUpHandler)
		message.Handle(&telebot.Btn{Text: b.deps.Dictionary.Text(lang, btnEnterPromocode)}, b.enterPromocodeHandler)
		message.Handle(&telebot.Btn{Text: b.deps.Dictionary.Text(lang, btnHistory)}, b.historyHandler)
	}

	message.Handle(telebot.OnText, b.textHandler)
}

func (b *Bot) setupCallbackRoutes() {
	callback := b.Telebot.Group()

	callback.Handle(&telebot.Btn{Unique: cbkLanguage}, b.setLanguageHandler)
	callback.Handle(&telebot.Btn{Unique: cbkCheckSubscription}, b.checkSubscriptionHandler)
	callback.Handle(&telebot.Btn{Unique: cbkCarsListPage}, b.carsListHandler)
	callback.Handle(&telebot.Btn{Unique: cbkCar}, b.carHandler)
	callback.Handle(&telebot.Btn{Unique: cbkBuyCar}, b.buyCarHandler)
	callback.Handle(&telebot.Btn{Unique: cbkTopUp}, b.createTopUpHandler)
	callback.Handle(&telebot.Btn{Unique: cbkCancel}, b.cancelHandler)
}

func (b *Bot) Start() {
	b.Telebot.Start()
}

func (b *Bot) Stop() {
	b.Telebot.Stop()
}

// NotifyPaid tells the user that a top-up was credited.
func (b *Bot) NotifyPaid(ctx context.Context, payment *domain.Payment) error {
	lang := dictionary.DefaultLanguage

	user, err := b.deps.UsersRepository.GetUserByID(ctx, payment.UserID)
	if err != nil {
		return err
	}
	if user != nil {
		lang = user.LanguageCode
	}

	text := b.deps.Dictionary.Text(lang, msgTopUpPaid, map[string]any{
		"Coins": payment.Coins,
	})

	if _, err := b.Telebot.Send(&telebot.User{ID: payment.UserID}, text, &telebot.SendOptions{
		ParseMode: telebot.ModeHTML,
	}); err != nil {
		return errs.NewStack(err)
	}

	return nil
}

func (b *Bot) mustUser(c telebot.Context) *domain.User {
	user, ok := c.Get(ctxUser).(*domain.User)
	if !ok || user == nil {
		panic("user not found in context")
	}

	return user
}

func mustContext(c telebot.Context) context.Context {
	ctx, ok := c.Get(ctxContext).(context.Context)
	if !ok {
		return context.Background()
	}

	return ctx
}
