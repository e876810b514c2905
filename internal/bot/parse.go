package bot

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"homeboard/internal/model"
	"homeboard/internal/service"
)

var errUsage = errors.New("usage")

// splitPipes splits "a | b | c" into trimmed parts.
func splitPipes(args string) []string {
	parts := strings.Split(args, "|")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

func part(parts []string, i int) string {
	if i < len(parts) {
		return parts[i]
	}
	return ""
}

// parsePeriod reads "7", "7j", "7 jours" as days and "36h" as hours.
// Decimal commas are accepted.
func parsePeriod(raw string) (model.Periodicity, error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return model.Periodicity{}, nil
	}
	unit := model.UnitDays
	for _, suffix := range []string{"heures", "heure", "h"} {
		if strings.HasSuffix(s, suffix) {
			s, unit = strings.TrimSuffix(s, suffix), model.UnitHours
			break
		}
	}
	if unit == model.UnitDays {
		for _, suffix := range []string{"jours", "jour", "j", "d"} {
			if strings.HasSuffix(s, suffix) {
				s = strings.TrimSuffix(s, suffix)
				break
			}
		}
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(s), ",", "."), 64)
	if err != nil || v <= 0 {
		return model.Periodicity{}, fmt.Errorf("période invalide %q", raw)
	}
	return model.Periodicity{Value: v, Unit: unit}, nil
}

// parseChoreArgs reads "Titre | période | pièce".
func parseChoreArgs(args string) (service.ChoreInput, error) {
	parts := splitPipes(args)
	if part(parts, 0) == "" {
		return service.ChoreInput{}, errUsage
	}
	every, err := parsePeriod(part(parts, 1))
	if err != nil {
		return service.ChoreInput{}, err
	}
	return service.ChoreInput{Title: parts[0], Every: every, Room: part(parts, 2)}, nil
}

// parseCourseArgs reads "Titre | quantité | catégorie | note".
func parseCourseArgs(args string) (service.CourseInput, error) {
	parts := splitPipes(args)
	if part(parts, 0) == "" {
		return service.CourseInput{}, errUsage
	}
	return service.CourseInput{
		Title:    parts[0],
		Quantity: part(parts, 1),
		Category: part(parts, 2),
		Note:     part(parts, 3),
	}, nil
}

type mealArgs struct {
	Day        string
	Moment     string
	WeekOffset int
	Text       string
}

// parseMealArgs reads "jour moment [semaine] texte". The week is a signed
// integer such as 1 or +1.
func parseMealArgs(args string) (mealArgs, error) {
	fields := strings.Fields(args)
	if len(fields) < 3 {
		return mealArgs{}, errUsage
	}
	m := mealArgs{Day: fields[0], Moment: fields[1]}
	rest := fields[2:]
	if len(rest) > 1 {
		if week, err := strconv.Atoi(strings.TrimPrefix(rest[0], "+")); err == nil {
			m.WeekOffset = week
			rest = rest[1:]
		}
	}
	m.Text = strings.Join(rest, " ")
	return m, nil
}

// parseCallback splits "kind:action:id".
func parseCallback(data string) (kind, action string, id uint, ok bool) {
	parts := strings.SplitN(data, ":", 3)
	if len(parts) != 3 {
		return "", "", 0, false
	}
	value, err := strconv.ParseUint(parts[2], 10, 64)
	if err != nil || value == 0 {
		return "", "", 0, false
	}
	return parts[0], parts[1], uint(value), true
}

func callbackData(kind, action string, id uint) string {
	return fmt.Sprintf("%s:%s:%d", kind, action, id)
}

func shortTitle(title string, maxLen int) string {
	clean := strings.Join(strings.Fields(title), " ")
	runes := []rune(clean)
	if len(runes) <= maxLen {
		return clean
	}
	if maxLen <= 1 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-1]) + "…"
}
