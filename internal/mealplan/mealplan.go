// Package mealplan maps meal planner slots (weekday, week offset, moment)
// onto calendar dates and builds the upcoming-meals agenda.
package mealplan

import (
	"sort"
	"strings"
	"time"

	"homeboard/internal/model"
)

// DateKeyLayout formats the day buckets of an Agenda.
const DateKeyLayout = "2006-01-02"

// Placeholder clock times giving each slot a sortable instant.
const (
	lunchHour  = 11
	dinnerHour = 18
)

// Scheduled is a meal resolved to a calendar instant.
type Scheduled struct {
	Meal model.Meal `json:"meal"`
	At   time.Time  `json:"at"`
}

// Agenda groups upcoming meals by calendar day. Order lists the keys of
// ByDay in ascending date order.
type Agenda struct {
	ByDay map[string][]Scheduled `json:"byDay"`
	Order []string               `json:"order"`
}

// DayIndex returns the Monday-based position of a weekday name, or -1.
func DayIndex(name string) int {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, d := range model.Weekdays {
		if d == name {
			return i
		}
	}
	return -1
}

// MondayOfWeek returns midnight of the Monday of the week containing ref,
// in ref's location. Sunday belongs to the week that started six days
// earlier.
func MondayOfWeek(ref time.Time) time.Time {
	wd := int(ref.Weekday())
	shift := 1 - wd
	if wd == 0 {
		shift = -6
	}
	y, m, d := ref.Date()
	return time.Date(y, m, d+shift, 0, 0, 0, 0, ref.Location())
}

// MealToDate resolves the slot of meal relative to the week of ref.
// It reports false when the day name is unknown.
func MealToDate(meal model.Meal, ref time.Time) (time.Time, bool) {
	idx := DayIndex(meal.Day)
	if idx < 0 {
		return time.Time{}, false
	}
	base := MondayOfWeek(ref)
	hour := lunchHour
	if meal.Moment == model.MomentDinner {
		hour = dinnerHour
	}
	y, m, d := base.Date()
	return time.Date(y, m, d+meal.WeekOffset*7+idx, hour, 0, 0, 0, ref.Location()), true
}

// CurrentWeekIndex counts whole weeks since January 1st of t's year. It
// restarts at zero every year and is only meant as a relative offset.
func CurrentWeekIndex(t time.Time) int {
	return (t.YearDay() - 1) / 7
}

// GroupUpcoming keeps the meals falling within daysAhead days starting at
// today's midnight, sorted by date then moment, grouped per day.
func GroupUpcoming(meals []model.Meal, now time.Time, daysAhead int) Agenda {
	y, m, d := now.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	end := start.AddDate(0, 0, daysAhead)

	var upcoming []Scheduled
	for _, meal := range meals {
		at, ok := MealToDate(meal, now)
		if !ok || at.Before(start) || !at.Before(end) {
			continue
		}
		upcoming = append(upcoming, Scheduled{Meal: meal, At: at})
	}

	sort.SliceStable(upcoming, func(i, j int) bool {
		if !upcoming[i].At.Equal(upcoming[j].At) {
			return upcoming[i].At.Before(upcoming[j].At)
		}
		return momentRank(upcoming[i].Meal.Moment) < momentRank(upcoming[j].Meal.Moment)
	})

	agenda := Agenda{ByDay: make(map[string][]Scheduled)}
	for _, s := range upcoming {
		key := s.At.Format(DateKeyLayout)
		if _, seen := agenda.ByDay[key]; !seen {
			agenda.Order = append(agenda.Order, key)
		}
		agenda.ByDay[key] = append(agenda.ByDay[key], s)
	}
	return agenda
}

// PruneOldMeals splits meals into those inside the two-week retention
// window (current and next week) and those to delete.
//
// The week index restarts every January 1st, so around the new year a
// meal may be kept or dropped one week early or late.
func PruneOldMeals(meals []model.Meal, now time.Time) (keep, drop []model.Meal) {
	current := CurrentWeekIndex(now)
	for _, meal := range meals {
		week := current + meal.WeekOffset
		if week >= current && week <= current+1 {
			keep = append(keep, meal)
		} else {
			drop = append(drop, meal)
		}
	}
	return keep, drop
}

func momentRank(m model.Moment) int {
	if m == model.MomentDinner {
		return 1
	}
	return 0
}
