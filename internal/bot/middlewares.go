package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/leonid6372/cars-bot/internal/common/config"
	"github.com/leonid6372/cars-bot/internal/common/domain"
	"github.com/leonid6372/cars-bot/pkg/dictionary"
	"github.com/leonid6372/cars-bot/pkg/errs"
	"github.com/leonid6372/cars-bot/pkg/log"
	"go.uber.org/zap"
	"gopkg.in/telebot.v4"
)

func (b *Bot) recoveryMiddleware(next telebot.HandlerFunc) telebot.HandlerFunc {
	return func(c telebot.Context) (err error) {
		defer func() {
			if r := recover(); r != nil {
				log.Error("recovered from panic",
					zap.Any("panic", r),
					zap.Stack("stack"),
				)

				err = b.defaultErrorHandler(c)
			}
		}()

		return next(c)
	}
}

func (b *Bot) defaultErrorMiddleware(next telebot.HandlerFunc) telebot.HandlerFunc {
	return func(c telebot.Context) error {
		if err := next(c); err != nil {
			log.Error("unknown error", errs.Field(err))
			return b.defaultErrorHandler(c)
		}

		return nil
	}
}

func (b *Bot) defaultErrorHandler(c telebot.Context) error {
	lang := dictionary.DefaultLanguage
	if user, ok := c.Get(ctxUser).(*domain.User); ok && user != nil {
		lang = user.LanguageCode
	}

	text := b.deps.Dictionary.Text(lang, msgDefaultError)

	if err := c.Send(text); err != nil {
		return fmt.Errorf("failed to send message: %v", err)
	}

	return nil
}

// timeoutMiddleware bounds every update with bot.handler_timeout.
func (b *Bot) timeoutMiddleware(next telebot.HandlerFunc) telebot.HandlerFunc {
	return func(c telebot.Context) error {
		ctx, cancel := context.WithTimeout(b.ctx, b.cfg.HandlerTimeout)
		defer cancel()

		c.Set(ctxContext, ctx)

		return next(c)
	}
}

func (b *Bot) updateUserInfoMiddleware(next telebot.HandlerFunc) telebot.HandlerFunc {
	return func(c telebot.Context) error {
		sender := c.Sender()
		if sender == nil {
			return next(c)
		}

		user := &domain.User{
			ID:        sender.ID,
			Username:  sender.Username,
			FirstName: sender.FirstName,
			LastName:  sender.LastName,
			IsPremium: sender.IsPremium,
		}

		if err := b.deps.UsersRepository.UpdateUserTGData(mustContext(c), user); err != nil {
			log.Error("failed to update user info", errs.Field(err))
		}

		return next(c)
	}
}

// selectUserMiddleware puts the user into the context, registering it on first contact.
func (b *Bot) selectUserMiddleware(next telebot.HandlerFunc) telebot.HandlerFunc {
	return func(c telebot.Context) error {
		sender := c.Sender()
		if sender == nil {
			return nil
		}

		key := strconv.FormatInt(sender.ID, 10)

		if cached, ok := b.users.Get(key); ok {
			b.users.SetDefault(key, cached)
			c.Set(ctxUser, cached)

			return next(c)
		}

		ctx := mustContext(c)

		user, err := b.deps.UsersRepository.GetUserByID(ctx, sender.ID)
		if err != nil {
			return fmt.Errorf("failed to get user by ID from repository: %w", err)
		}

		if user == nil {
			if err := b.deps.UsersRepository.CreateUser(ctx, &domain.User{
				ID:           sender.ID,
				Username:     sender.Username,
				FirstName:    sender.FirstName,
				LastName:     sender.LastName,
				LanguageCode: b.userLanguage(sender.LanguageCode),
				IsPremium:    sender.IsPremium,
			}); err != nil {
				return fmt.Errorf("failed to create user: %w", err)
			}

			user, err = b.deps.UsersRepository.GetUserByID(ctx, sender.ID)
			if err != nil {
				return fmt.Errorf("failed to get created user: %w", err)
			}
			if user == nil {
				return errs.NewStack(fmt.Errorf("user %d was not created", sender.ID))
			}

			log.Info("new user", zap.Int64("user_id", user.ID), zap.String("username", user.Username))
			c.Set(ctxNewUser, true)
		}

		b.users.SetDefault(key, user)
		c.Set(ctxUser, user)

		return next(c)
	}
}

func (b *Bot) subscribeMiddleware(next telebot.HandlerFunc) telebot.HandlerFunc {
	return func(c telebot.Context) error {
		if len(b.cfg.Channels) == 0 || skipSubscriptionCheck(c) {
			return next(c)
		}

		userID := c.Sender().ID
		log.Debug("checking user subscription", zap.Int64("user_id", userID))

		if missing := b.missingSubscriptions(userID); len(missing) > 0 {
			return b.notSubscribedHandler(c, missing)
		}

		return next(c)
	}
}

// conversationMiddleware drops a pending dialog step once the user moves on
// through a callback, a command or a menu button. Plain text keeps it.
func (b *Bot) conversationMiddleware(next telebot.HandlerFunc) telebot.HandlerFunc {
	return func(c telebot.Context) error {
		if b.leavesConversation(c) {
			if err := b.resetConversation(c); err != nil {
				return err
			}
		}

		return next(c)
	}
}

func (b *Bot) leavesConversation(c telebot.Context) bool {
	if c.Callback() != nil {
		return true
	}

	message := c.Message()
	if message == nil {
		return false
	}

	if strings.HasPrefix(message.Text, "/") {
		return true
	}

	for _, lang := range b.cfg.Languages {
		for _, key := range menuButtons {
			if message.Text == b.deps.Dictionary.Text(lang, key) {
				return true
			}
		}
	}

	return false
}

func skipSubscriptionCheck(c telebot.Context) bool {
	if cb := c.Callback(); cb != nil {
		return cb.Unique == cbkLanguage || cb.Unique == cbkCheckSubscription
	}

	if message := c.Message(); message != nil {
		return strings.HasPrefix(message.Text, "/start") || strings.HasPrefix(message.Text, "/language")
	}

	return false
}

// missingSubscriptions returns the configured channels the user is not a
// member of. A failed lookup counts as not subscribed.
func (b *Bot) missingSubscriptions(userID int64) []config.Channel {
	var missing []config.Channel

	for _, channel := range b.cfg.Channels {
		subscribed, err := b.checkSubscription(channel.ID, userID)
		if err != nil {
			log.Error("failed to check subscription",
				zap.Int64("user_id", userID),
				zap.Int64("channel_id", channel.ID),
				zap.Error(err),
			)
		}

		if !subscribed {
			missing = append(missing, channel)
		}
	}

	return missing
}

func (b *Bot) checkSubscription(channelID int64, userID int64) (bool, error) {
	chat := &telebot.Chat{ID: channelID}
	user := &telebot.User{ID: userID}

	member, err := b.Telebot.ChatMemberOf(chat, user)
	if err != nil {
		if strings.Contains(err.Error(), "user not found") {
			return false, nil
		}

		return false, fmt.Errorf("failed to get chat member: %w", err)
	}

	return member.Role == telebot.Creator ||
		member.Role == telebot.Administrator ||
		member.Role == telebot.Member, nil
}

func (b *Bot) userLanguage(code string) string {
	for _, lang := range b.cfg.Languages {
		if lang == code {
			return code
		}
	}

	return dictionary.DefaultLanguage
}
