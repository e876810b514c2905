// Package bot is the Telegram front-end of the household board.
package bot

import (
	"context"
	"fmt"
	"html"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"homeboard/internal/logger"
	"homeboard/internal/service"
	"homeboard/internal/weather"
)

// sender is the part of the Telegram API the handlers use.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Deps are the services the bot presents. Weather is optional.
type Deps struct {
	Chores      *service.ChoreService
	Shopping    *service.ShoppingService
	Meals       *service.MealService
	Reminder    *service.ReminderService
	Weather     *weather.Service
	Subscribers *Subscribers
	Location    *time.Location
}

// Bot aggregates Telegram API with services.
type Bot struct {
	api  *tgbotapi.BotAPI
	out  sender
	deps Deps
	now  func() time.Time
}

func New(token string, deps Deps) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}

	logger.Info("bot authorized", "account", api.Self.UserName)

	b := newBot(api, deps)
	b.api = api
	return b, nil
}

func newBot(out sender, deps Deps) *Bot {
	if deps.Location == nil {
		deps.Location = time.Local
	}
	return &Bot{out: out, deps: deps, now: time.Now}
}

func (b *Bot) clock() time.Time {
	return b.now().In(b.deps.Location)
}

// Start begins polling updates until ctx is cancelled.
func (b *Bot) Start(ctx context.Context) error {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updates := b.api.GetUpdatesChan(updateConfig)

	logger.Info("start polling updates")

	go func() {
		<-ctx.Done()
		b.api.StopReceivingUpdates()
	}()

	for update := range updates {
		b.handleUpdate(ctx, update)
	}

	return nil
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.CallbackQuery != nil:
		if err := b.handleCallback(ctx, update.CallbackQuery); err != nil {
			logger.Error("handle callback", "err", err)
		}
	case update.Message != nil:
		if update.Message.Chat == nil {
			return
		}
		if err := b.handleMessage(ctx, update.Message); err != nil {
			logger.Error("handle message", "chat", update.Message.Chat.ID, "err", err)
		}
	}
}

// SendReports sends the summary to every subscribed chat.
func (b *Bot) SendReports(ctx context.Context) error {
	subs, err := b.deps.Subscribers.List()
	if err != nil {
		return err
	}
	if len(subs) == 0 {
		return nil
	}
	text, err := b.deps.Reminder.Summary(ctx, b.clock())
	if err != nil {
		return fmt.Errorf("build summary: %w", err)
	}
	for _, sub := range subs {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if err := b.sendText(sub.ChatID, text); err != nil {
			logger.Warn("send summary failed", "chat", sub.ChatID, "err", err)
		}
	}
	logger.Info("summary sent", "chats", len(subs))
	return nil
}

func (b *Bot) sendText(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = mainMenuKeyboard()
	_, err := b.out.Send(msg)
	return err
}

func (b *Bot) sendWithInline(chatID int64, text string, markup *tgbotapi.InlineKeyboardMarkup) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	if markup != nil {
		msg.ReplyMarkup = *markup
	}
	_, err := b.out.Send(msg)
	return err
}

// editWithInline replaces a list message in place after a button press.
func (b *Bot) editWithInline(chatID int64, messageID int, text string, markup *tgbotapi.InlineKeyboardMarkup) error {
	var edit tgbotapi.EditMessageTextConfig
	if markup != nil {
		edit = tgbotapi.NewEditMessageTextAndMarkup(chatID, messageID, text, *markup)
	} else {
		edit = tgbotapi.NewEditMessageText(chatID, messageID, text)
	}
	edit.ParseMode = tgbotapi.ModeHTML
	_, err := b.out.Send(edit)
	return err
}

func (b *Bot) sendFailure(chatID int64, what string, err error) error {
	logger.Warn(what, "chat", chatID, "err", err)
	return b.sendText(chatID, fmt.Sprintf("⚠️ %s : %s", what, escape(err.Error())))
}

func escape(s string) string {
	return html.EscapeString(s)
}
