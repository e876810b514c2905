package bot

import (
	"context"
	"errors"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"homeboard/internal/logger"
	"homeboard/internal/service"
)

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) error {
	if cb == nil || cb.Message == nil || cb.Message.Chat == nil {
		return nil
	}

	kind, action, id, ok := parseCallback(cb.Data)
	if !ok {
		b.ack(cb, "")
		return nil
	}
	logger.Debug("callback", "chat", cb.Message.Chat.ID, "kind", kind, "action", action, "id", id)

	var (
		notice string
		err    error
	)
	switch kind {
	case kindTask:
		notice, err = b.applyTask(ctx, action, id)
	case kindCourse:
		notice, err = b.applyCourse(ctx, action, id)
	default:
		b.ack(cb, "")
		return nil
	}

	if errors.Is(err, service.ErrNotFound) {
		b.ack(cb, "Élément introuvable")
	} else if err != nil {
		b.ack(cb, "Erreur")
		return err
	} else {
		b.ack(cb, notice)
	}

	var (
		text   string
		markup *tgbotapi.InlineKeyboardMarkup
	)
	if kind == kindTask {
		text, markup, err = b.renderTasks(ctx)
	} else {
		text, markup, err = b.renderCourses(ctx)
	}
	if err != nil {
		return err
	}
	return b.editWithInline(cb.Message.Chat.ID, cb.Message.MessageID, text, markup)
}

func (b *Bot) applyTask(ctx context.Context, action string, id uint) (string, error) {
	now := b.clock()
	switch action {
	case actionToggle:
		task, err := b.deps.Chores.Toggle(ctx, id, now)
		if err != nil {
			return "", err
		}
		if task.Finished {
			return "Bravo, c'est fait !", nil
		}
		return "Remis à faire", nil
	case actionReset:
		if _, err := b.deps.Chores.Reset(ctx, id, now); err != nil {
			return "", err
		}
		return "Compteur remis à zéro", nil
	case actionDelete:
		if err := b.deps.Chores.Delete(ctx, id); err != nil {
			return "", err
		}
		return "Tâche supprimée", nil
	}
	return "", nil
}

func (b *Bot) applyCourse(ctx context.Context, action string, id uint) (string, error) {
	switch action {
	case actionToggle:
		item, err := b.deps.Shopping.ToggleBought(ctx, id)
		if err != nil {
			return "", err
		}
		if item.Bought {
			return "Dans le panier", nil
		}
		return "Remis sur la liste", nil
	case actionDelete:
		if err := b.deps.Shopping.Delete(ctx, id); err != nil {
			return "", err
		}
		return "Article supprimé", nil
	}
	return "", nil
}

func (b *Bot) ack(cb *tgbotapi.CallbackQuery, text string) {
	if _, err := b.out.Request(tgbotapi.NewCallback(cb.ID, text)); err != nil {
		logger.Warn("callback ack", "err", err)
	}
}
