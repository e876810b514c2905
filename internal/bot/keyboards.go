package bot

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"homeboard/internal/model"
	"homeboard/internal/service"
)

const (
	kindTask   = "t"
	kindCourse = "c"

	actionToggle = "toggle"
	actionReset  = "reset"
	actionDelete = "del"
)

const (
	menuLabelTasks   = "🧹 Tâches"
	menuLabelCourses = "🛒 Courses"
	menuLabelMeals   = "🍽 Repas"
	menuLabelWeather = "🌤 Météo"
)

func mainMenuKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(menuLabelTasks),
			tgbotapi.NewKeyboardButton(menuLabelCourses),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(menuLabelMeals),
			tgbotapi.NewKeyboardButton(menuLabelWeather),
		),
	)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = false
	return kb
}

// choreList renders the task list with one row of buttons per task.
func choreList(statuses []service.ChoreStatus) (string, *tgbotapi.InlineKeyboardMarkup) {
	if len(statuses) == 0 {
		return "Aucune tâche. Ajoute-en une avec /tache Titre | jours | pièce", nil
	}

	var sb strings.Builder
	sb.WriteString("🧹 <b>Tâches</b>\n\n")
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, st := range statuses {
		sb.WriteString(service.FormatChore(st))

		check := "⬜"
		if st.Task.Finished {
			check = "✅"
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("%s %s", check, shortTitle(st.Task.Title, 20)), callbackData(kindTask, actionToggle, st.Task.ID)),
			tgbotapi.NewInlineKeyboardButtonData("🔄", callbackData(kindTask, actionReset, st.Task.ID)),
			tgbotapi.NewInlineKeyboardButtonData("🗑", callbackData(kindTask, actionDelete, st.Task.ID)),
		))
	}
	markup := tgbotapi.NewInlineKeyboardMarkup(rows...)
	return strings.TrimSpace(sb.String()), &markup
}

// courseList renders every item grouped by category, bought ones ticked.
func courseList(items []model.CourseItem) (string, *tgbotapi.InlineKeyboardMarkup) {
	if len(items) == 0 {
		return "🛒 La liste de courses est vide. Ajoute un article avec /ajout Titre | quantité | catégorie | note", nil
	}

	var sb strings.Builder
	sb.WriteString("🛒 <b>Courses</b>\n")
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, group := range service.GroupByCategory(items) {
		sb.WriteString(fmt.Sprintf("\n<b>%s</b>\n", escape(string(group.Category))))
		for _, it := range group.Items {
			check := "⬜"
			if it.Bought {
				check = "✅"
			}
			line := fmt.Sprintf("%s %s", check, escape(it.Title))
			if it.Quantity != "" {
				line += fmt.Sprintf(" · %s", escape(it.Quantity))
			}
			if it.Note != "" {
				line += fmt.Sprintf(" <i>(%s)</i>", escape(it.Note))
			}
			sb.WriteString(line + "\n")

			rows = append(rows, tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("%s %s", check, shortTitle(it.Title, 24)), callbackData(kindCourse, actionToggle, it.ID)),
				tgbotapi.NewInlineKeyboardButtonData("🗑", callbackData(kindCourse, actionDelete, it.ID)),
			))
		}
	}
	markup := tgbotapi.NewInlineKeyboardMarkup(rows...)
	return strings.TrimSpace(sb.String()), &markup
}
