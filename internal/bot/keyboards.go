package bot

import (
	"strconv"

	"github.com/leonid6372/cars-bot/internal/common/config"
	"github.com/leonid6372/cars-bot/internal/common/domain"
	"github.com/leonid6372/cars-bot/internal/payments"
	"gopkg.in/telebot.v4"
)

func (b *Bot) mainMenuKeyboard(lang string) *telebot.ReplyMarkup {
	markup := &telebot.ReplyMarkup{}

	btnProfile := telebot.Btn{Text: b.deps.Dictionary.Text(lang, btnProfile)}
	btnCarsList := telebot.Btn{Text: b.deps.Dictionary.Text(lang, btnCarsList)}
	btnTopUp := telebot.Btn{Text: b.deps.Dictionary.Text(lang, btnTopUp)}
	btnEnterPromocode := telebot.Btn{Text: b.deps.Dictionary.Text(lang, btnEnterPromocode)}
	btnHistory := telebot.Btn{Text: b.deps.Dictionary.Text(lang, btnHistory)}

	rows := []telebot.Row{
		{btnCarsList},
		{btnProfile, btnHistory},
		{btnTopUp, btnEnterPromocode},
	}

	markup.Reply(rows...)
	markup.ResizeKeyboard = true
	return markup
}

func (b *Bot) subscribeKeyboard(lang string, channels []config.Channel) *telebot.ReplyMarkup {
	markup := &telebot.ReplyMarkup{}
	rows := make([]telebot.Row, 0, len(channels)+1)

	for _, channel := range channels {
		rows = append(rows, telebot.Row{
			markup.URL(b.deps.Dictionary.Text(lang, btnSubscribe), channel.URL),
		})
	}

	rows = append(rows, telebot.Row{
		markup.Data(b.deps.Dictionary.Text(lang, btnSubscribed), cbkCheckSubscription),
	})

	markup.Inline(rows...)

	return markup
}

func (b *Bot) languagesKeyboard() *telebot.ReplyMarkup {
	markup := &telebot.ReplyMarkup{}
	var rows []telebot.Row

	for _, lang := range b.cfg.Languages {
		text := b.deps.Dictionary.Text(lang, btnLanguage)

		btn := markup.Data(text, cbkLanguage, lang)
		rows = append(rows, telebot.Row{btn})
	}

	markup.Inline(rows...)
	return markup
}

func (b *Bot) carsListKeyboard(lang string, cars []*domain.Car, currentPage, pagesCount int64) *telebot.ReplyMarkup {
	markup := &telebot.ReplyMarkup{}
	rows := make([]telebot.Row, 0, len(cars)+1)

	for _, car := range cars {
		text := b.deps.Dictionary.Text(lang, btnCar, map[string]any{
			"Name":  car.Name,
			"Price": car.Price,
		})

		rows = append(rows, telebot.Row{
			markup.Data(text, cbkCar, strconv.FormatInt(car.ID, 10)),
		})
	}

	rows = b.addPaginationCbkButtons(rows, lang, cbkCarsListPage, currentPage, pagesCount)

	markup.Inline(rows...)
	return markup
}

func (b *Bot) carKeyboard(lang string, car *domain.Car) *telebot.ReplyMarkup {
	markup := &telebot.ReplyMarkup{}

	markup.Inline(
		telebot.Row{markup.Data(b.deps.Dictionary.Text(lang, btnBuy, map[string]any{
			"Name":  car.Name,
			"Price": car.Price,
		}), cbkBuyCar, strconv.FormatInt(car.ID, 10))},
		telebot.Row{markup.Data(b.deps.Dictionary.Text(lang, btnBack), cbkCarsListPage, "1")},
	)

	return markup
}

func (b *Bot) topUpKeyboard(lang string, packages []payments.Package, currency string) *telebot.ReplyMarkup {
	markup := &telebot.ReplyMarkup{}
	rows := make([]telebot.Row, 0, len(packages))

	for i, pkg := range packages {
		text := b.deps.Dictionary.Text(lang, btnTopUpPackage, map[string]any{
			"Coins":    pkg.Coins,
			"Price":    pkg.Price.String(),
			"Currency": currency,
		})

		rows = append(rows, telebot.Row{markup.Data(text, cbkTopUp, strconv.Itoa(i))})
	}

	markup.Inline(rows...)
	return markup
}

func (b *Bot) payKeyboard(lang, url string) *telebot.ReplyMarkup {
	markup := &telebot.ReplyMarkup{}

	markup.Inline(telebot.Row{markup.URL(b.deps.Dictionary.Text(lang, btnPay), url)})

	return markup
}

func (b *Bot) cancelKeyboard(lang string) *telebot.ReplyMarkup {
	markup := &telebot.ReplyMarkup{}

	markup.Inline(telebot.Row{markup.Data(b.deps.Dictionary.Text(lang, btnCancel), cbkCancel)})

	return markup
}

func (b *Bot) addPaginationCbkButtons(
	rows []telebot.Row, lang, cbkName string, currentPage, pagesCount int64,
) []telebot.Row {
	markup := &telebot.ReplyMarkup{}

	if pagesCount < 2 {
		return rows
	}

	var row telebot.Row

	if currentPage > 1 {
		row = append(row, markup.Data(
			b.deps.Dictionary.Text(lang, btnPreviousPage),
			cbkName, strconv.FormatInt(currentPage-1, 10),
		))
	}

	if currentPage < pagesCount {
		row = append(row, markup.Data(
			b.deps.Dictionary.Text(lang, btnNextPage),
			cbkName, strconv.FormatInt(currentPage+1, 10),
		))
	}

	return append(rows, row)
}
