package service

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	"homeboard/internal/mealplan"
	"homeboard/internal/model"
)

// SoonDays is how close to its deadline a chore must be to be reminded.
const SoonDays = 1

// ReminderService builds human-readable summaries for periodic
// notifications.
type ReminderService struct {
	chores   *ChoreService
	shopping *ShoppingService
	meals    *MealService
	mealDays int
}

func NewReminderService(chores *ChoreService, shopping *ShoppingService, meals *MealService) *ReminderService {
	return &ReminderService{chores: chores, shopping: shopping, meals: meals, mealDays: 2}
}

// Summary renders an HTML digest of due chores, open shopping items and
// the meals of today and tomorrow.
func (s *ReminderService) Summary(ctx context.Context, now time.Time) (string, error) {
	statuses, err := s.chores.Statuses(ctx, now)
	if err != nil {
		return "", err
	}
	groups, err := s.shopping.Open(ctx)
	if err != nil {
		return "", err
	}
	agenda, err := s.meals.Upcoming(ctx, now, s.mealDays)
	if err != nil {
		return "", err
	}

	var builder strings.Builder
	builder.WriteString("📋 <b>Récapitulatif de la maison</b>\n")
	builder.WriteString(fmt.Sprintf("🗓 %s\n\n", now.Format("02/01/2006")))

	builder.WriteString("🧹 <b>Tâches</b>\n")
	due := 0
	for _, st := range statuses {
		if st.RemainingDays > SoonDays {
			continue
		}
		builder.WriteString(FormatChore(st))
		due++
	}
	if due == 0 {
		builder.WriteString("— rien à faire pour le moment\n")
	}

	builder.WriteString("\n🛒 <b>Courses</b>\n")
	if len(groups) == 0 {
		builder.WriteString("— liste vide\n")
	}
	for _, g := range groups {
		builder.WriteString(FormatCategoryGroup(g))
	}

	builder.WriteString("\n🍽 <b>Repas</b>\n")
	if len(agenda.Order) == 0 {
		builder.WriteString("— aucun repas prévu\n")
	}
	builder.WriteString(FormatAgenda(agenda))

	return strings.TrimSpace(builder.String()), nil
}

// FormatChore renders one status line.
func FormatChore(st ChoreStatus) string {
	var sb strings.Builder

	icon := "🟢"
	switch {
	case st.RemainingDays < 0:
		icon = "⚠️"
	case st.RemainingDays == 0:
		icon = "🔴"
	case st.RemainingDays <= SoonDays:
		icon = "⏳"
	}
	if st.Task.Finished {
		icon = "✅"
	}

	sb.WriteString(fmt.Sprintf("%s %s", icon, html.EscapeString(st.Task.Title)))
	if room := strings.TrimSpace(st.Task.Room); room != "" {
		sb.WriteString(fmt.Sprintf(" <i>(%s)</i>", html.EscapeString(room)))
	}

	switch {
	case st.RemainingDays < 0:
		sb.WriteString(fmt.Sprintf(" · en retard de %d j", -st.RemainingDays))
	case st.RemainingDays == 0:
		sb.WriteString(" · à faire aujourd'hui")
	default:
		sb.WriteString(fmt.Sprintf(" · reste %d j", st.RemainingDays))
	}
	sb.WriteString(fmt.Sprintf(" · %d%%\n", st.Progress))
	return sb.String()
}

// FormatCategoryGroup renders one aisle on a single line.
func FormatCategoryGroup(g CategoryGroup) string {
	names := make([]string, 0, len(g.Items))
	for _, it := range g.Items {
		name := html.EscapeString(it.Title)
		if q := strings.TrimSpace(it.Quantity); q != "" {
			name += " (" + html.EscapeString(q) + ")"
		}
		names = append(names, name)
	}
	return fmt.Sprintf("<b>%s</b> : %s\n", html.EscapeString(string(g.Category)), strings.Join(names, ", "))
}

// FormatAgenda renders the meals day by day.
func FormatAgenda(agenda mealplan.Agenda) string {
	var sb strings.Builder
	for _, key := range agenda.Order {
		for _, sched := range agenda.ByDay[key] {
			sb.WriteString(fmt.Sprintf("• %s %s · %s : %s\n",
				shortDay(sched.At), sched.At.Format("02/01"), sched.Meal.Moment, html.EscapeString(sched.Meal.Meal)))
		}
	}
	return sb.String()
}

func shortDay(t time.Time) string {
	name := model.Weekdays[(int(t.Weekday())+6)%7]
	return name[:3] + "."
}
