package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"homeboard/internal/logger"
	"homeboard/internal/model"
	"homeboard/internal/service"
	"homeboard/internal/weather"
)

const helpText = "ℹ️ <b>Commandes</b>\n" +
	"• /taches : les tâches ménagères et leur avancement\n" +
	"• /tache Titre | jours | pièce : ajouter une tâche (ex. <code>/tache Aspirateur | 7 | Salon</code>, ou <code>36h</code>)\n" +
	"• /courses : la liste de courses\n" +
	"• /ajout Titre | quantité | catégorie | note : ajouter un article\n" +
	"• /vider : retirer les articles achetés\n" +
	"• /repas : les repas des 7 prochains jours\n" +
	"• /repas_ajout jour moment [semaine] plat : planifier un repas (ex. <code>/repas_ajout jeudi soir Gratin</code>)\n" +
	"• /meteo : la météo du jour\n" +
	"• /rapport : le récapitulatif de la maison\n" +
	"• /stop : ne plus recevoir le récapitulatif"

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) error {
	if msg.IsCommand() {
		logger.Debug("command", "chat", msg.Chat.ID, "command", msg.Command(), "args", msg.CommandArguments())
		return b.handleCommand(ctx, msg)
	}

	switch strings.TrimSpace(msg.Text) {
	case menuLabelTasks:
		return b.handleListTasks(ctx, msg)
	case menuLabelCourses:
		return b.handleListCourses(ctx, msg)
	case menuLabelMeals:
		return b.handleMeals(ctx, msg)
	case menuLabelWeather:
		return b.handleWeather(ctx, msg)
	}

	return b.sendText(msg.Chat.ID, "Je n'ai pas compris. Tape /help pour la liste des commandes.")
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) error {
	switch msg.Command() {
	case "start":
		return b.handleStart(msg)
	case "stop":
		return b.handleStop(msg)
	case "help", "aide":
		return b.sendText(msg.Chat.ID, helpText)
	case "taches":
		return b.handleListTasks(ctx, msg)
	case "tache":
		return b.handleAddTask(ctx, msg)
	case "courses":
		return b.handleListCourses(ctx, msg)
	case "ajout":
		return b.handleAddCourse(ctx, msg)
	case "vider":
		return b.handleClearBought(ctx, msg)
	case "repas":
		return b.handleMeals(ctx, msg)
	case "repas_ajout":
		return b.handleAddMeal(ctx, msg)
	case "meteo":
		return b.handleWeather(ctx, msg)
	case "rapport":
		return b.handleReport(ctx, msg)
	default:
		return b.sendText(msg.Chat.ID, "Commande inconnue. Regarde /help.")
	}
}

func (b *Bot) handleStart(msg *tgbotapi.Message) error {
	sub := model.Subscriber{ChatID: msg.Chat.ID, SubscribedAt: b.clock()}
	if msg.From != nil {
		sub.Username = msg.From.UserName
		sub.FirstName = msg.From.FirstName
	}
	if _, err := b.deps.Subscribers.Add(sub); err != nil {
		return b.sendFailure(msg.Chat.ID, "Inscription impossible", err)
	}

	name := strings.TrimSpace(sub.FirstName)
	if name == "" {
		name = "à toi"
	}
	text := fmt.Sprintf("👋 Bonjour %s !\n<b>Je garde un œil sur la maison : tâches, courses, repas et météo.</b>\n"+
		"Tu recevras le récapitulatif régulièrement.\n\n%s", escape(name), helpText)
	return b.sendText(msg.Chat.ID, text)
}

func (b *Bot) handleStop(msg *tgbotapi.Message) error {
	if err := b.deps.Subscribers.Remove(msg.Chat.ID); err != nil {
		return b.sendFailure(msg.Chat.ID, "Désinscription impossible", err)
	}
	return b.sendText(msg.Chat.ID, "🔕 Tu ne recevras plus le récapitulatif. /start pour le réactiver.")
}

func (b *Bot) handleListTasks(ctx context.Context, msg *tgbotapi.Message) error {
	text, markup, err := b.renderTasks(ctx)
	if err != nil {
		return b.sendFailure(msg.Chat.ID, "Impossible de lire les tâches", err)
	}
	return b.sendWithInline(msg.Chat.ID, text, markup)
}

func (b *Bot) renderTasks(ctx context.Context) (string, *tgbotapi.InlineKeyboardMarkup, error) {
	statuses, err := b.deps.Chores.Statuses(ctx, b.clock())
	if err != nil {
		return "", nil, err
	}
	text, markup := choreList(statuses)
	return text, markup, nil
}

func (b *Bot) handleAddTask(ctx context.Context, msg *tgbotapi.Message) error {
	input, err := parseChoreArgs(msg.CommandArguments())
	if errors.Is(err, errUsage) {
		return b.sendText(msg.Chat.ID, "Utilisation : /tache Titre | jours | pièce")
	}
	if err != nil {
		return b.sendText(msg.Chat.ID, escape(err.Error()))
	}
	task, err := b.deps.Chores.Add(ctx, input, b.clock())
	if errors.Is(err, service.ErrEmptyTitle) {
		return nil
	}
	if err != nil {
		return b.sendFailure(msg.Chat.ID, "Impossible d'ajouter la tâche", err)
	}
	return b.sendText(msg.Chat.ID, fmt.Sprintf("✅ Tâche « %s » ajoutée (tous les %s).", escape(task.Title), periodLabel(task.Periodicity)))
}

func (b *Bot) handleListCourses(ctx context.Context, msg *tgbotapi.Message) error {
	text, markup, err := b.renderCourses(ctx)
	if err != nil {
		return b.sendFailure(msg.Chat.ID, "Impossible de lire la liste", err)
	}
	return b.sendWithInline(msg.Chat.ID, text, markup)
}

func (b *Bot) renderCourses(ctx context.Context) (string, *tgbotapi.InlineKeyboardMarkup, error) {
	items, err := b.deps.Shopping.List(ctx)
	if err != nil {
		return "", nil, err
	}
	text, markup := courseList(items)
	return text, markup, nil
}

func (b *Bot) handleAddCourse(ctx context.Context, msg *tgbotapi.Message) error {
	input, err := parseCourseArgs(msg.CommandArguments())
	if err != nil {
		return b.sendText(msg.Chat.ID, "Utilisation : /ajout Titre | quantité | catégorie | note")
	}
	item, err := b.deps.Shopping.Add(ctx, input)
	if errors.Is(err, service.ErrEmptyTitle) {
		return nil
	}
	if err != nil {
		return b.sendFailure(msg.Chat.ID, "Impossible d'ajouter l'article", err)
	}
	return b.sendText(msg.Chat.ID, fmt.Sprintf("🛒 « %s » ajouté dans %s.", escape(item.Title), escape(string(item.Category))))
}

func (b *Bot) handleClearBought(ctx context.Context, msg *tgbotapi.Message) error {
	report, err := b.deps.Shopping.ClearBought(ctx)
	if err != nil {
		return b.sendFailure(msg.Chat.ID, "Impossible de vider les achats", err)
	}
	text := fmt.Sprintf("🧹 %d article(s) acheté(s) retiré(s).", report.Deleted)
	if len(report.Failed) > 0 {
		text += fmt.Sprintf("\n⚠️ %d article(s) n'ont pas pu être retirés.", len(report.Failed))
	}
	return b.sendText(msg.Chat.ID, text)
}

func (b *Bot) handleMeals(ctx context.Context, msg *tgbotapi.Message) error {
	agenda, err := b.deps.Meals.Upcoming(ctx, b.clock(), 7)
	if err != nil {
		return b.sendFailure(msg.Chat.ID, "Impossible de lire les repas", err)
	}
	if len(agenda.Order) == 0 {
		return b.sendText(msg.Chat.ID, "🍽 Aucun repas prévu cette semaine. /repas_ajout jour moment plat")
	}
	return b.sendText(msg.Chat.ID, "🍽 <b>Repas à venir</b>\n"+strings.TrimSpace(service.FormatAgenda(agenda)))
}

func (b *Bot) handleAddMeal(ctx context.Context, msg *tgbotapi.Message) error {
	args, err := parseMealArgs(msg.CommandArguments())
	if err != nil {
		return b.sendText(msg.Chat.ID, "Utilisation : /repas_ajout jour midi|soir [semaine] plat")
	}
	meal, err := b.deps.Meals.Create(ctx, args.Day, args.Moment, args.Text, args.WeekOffset)
	switch {
	case errors.Is(err, service.ErrEmptyTitle):
		return nil
	case errors.Is(err, service.ErrInvalidDay):
		return b.sendText(msg.Chat.ID, "Jour inconnu : lundi, mardi, mercredi, jeudi, vendredi, samedi ou dimanche.")
	case errors.Is(err, service.ErrInvalidMoment):
		return b.sendText(msg.Chat.ID, "Moment inconnu : midi ou soir.")
	case err != nil:
		return b.sendFailure(msg.Chat.ID, "Impossible de planifier le repas", err)
	}
	week := "cette semaine"
	if meal.WeekOffset != 0 {
		week = fmt.Sprintf("semaine %+d", meal.WeekOffset)
	}
	return b.sendText(msg.Chat.ID, fmt.Sprintf("🍽 %s %s (%s) : %s", meal.Day, meal.Moment, week, escape(meal.Meal)))
}

func (b *Bot) handleWeather(ctx context.Context, msg *tgbotapi.Message) error {
	if b.deps.Weather == nil {
		return b.sendText(msg.Chat.ID, "La météo n'est pas configurée.")
	}
	force := strings.EqualFold(strings.TrimSpace(msg.CommandArguments()), "force")
	payload, err := b.deps.Weather.Load(ctx, force)
	if err != nil {
		return b.sendFailure(msg.Chat.ID, "Météo indisponible", err)
	}
	return b.sendText(msg.Chat.ID, weather.Report(*payload))
}

func (b *Bot) handleReport(ctx context.Context, msg *tgbotapi.Message) error {
	text, err := b.deps.Reminder.Summary(ctx, b.clock())
	if err != nil {
		return b.sendFailure(msg.Chat.ID, "Impossible de construire le récapitulatif", err)
	}
	return b.sendText(msg.Chat.ID, text)
}

func periodLabel(p model.Periodicity) string {
	unit := "jour(s)"
	if p.Unit == model.UnitHours {
		unit = "heure(s)"
	}
	return fmt.Sprintf("%g %s", p.Value, unit)
}
