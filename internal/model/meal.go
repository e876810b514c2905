package model

// Moment is the meal slot within a day.
type Moment string

const (
	MomentLunch  Moment = "midi"
	MomentDinner Moment = "soir"
)

// Weekdays are the accepted day names, Monday first.
var Weekdays = []string{"lundi", "mardi", "mercredi", "jeudi", "vendredi", "samedi", "dimanche"}

// Meal is a slot of the weekly meal planner. WeekOffset counts whole weeks
// from the week containing "now": 0 is the current week, 1 the next one.
type Meal struct {
	ID         uint   `json:"id"`
	Day        string `json:"day"`
	Moment     Moment `json:"moment"`
	Meal       string `json:"meal"`
	WeekOffset int    `json:"week_offset"`
}
