package bot

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/leonid6372/cars-bot/pkg/errs"
	"gopkg.in/telebot.v4"
)

func (b *Bot) getCurrentPage(c telebot.Context) (int64, error) {
	args := c.Args()

	if len(args) == 1 && c.Callback() != nil {
		currentPage, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return 0, errs.NewStack(fmt.Errorf("failed to parse current page: %v", err))
		}

		return currentPage, nil
	}

	return 1, nil
}

func argInt64(c telebot.Context) (int64, error) {
	args := c.Args()

	if len(args) != 1 {
		return 0, errs.NewStack(fmt.Errorf("failed to parse data: expected one param, got %v", args))
	}

	n, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return 0, errs.NewStack(fmt.Errorf("failed to parse param %q: %w", args[0], err))
	}

	return n, nil
}

// sendOrEdit edits the message under an inline button and sends a new one otherwise.
func (b *Bot) sendOrEdit(c telebot.Context, text string, markup *telebot.ReplyMarkup) error {
	opts := &telebot.SendOptions{ReplyMarkup: markup, ParseMode: telebot.ModeHTML}

	if c.Callback() != nil {
		if err := c.Edit(text, opts); err != nil && !errors.Is(err, telebot.ErrSameMessageContent) {
			return errs.NewStack(fmt.Errorf("failed to edit message: %v", err))
		}

		return nil
	}

	if err := c.Send(text, opts); err != nil {
		return errs.NewStack(fmt.Errorf("failed to send message: %v", err))
	}

	return nil
}

// resetConversation drops any pending dialog step of the sender.
func (b *Bot) resetConversation(c telebot.Context) error {
	if c.Sender() == nil {
		return nil
	}

	return b.deps.Conversations.Clear(mustContext(c), c.Sender().ID)
}
