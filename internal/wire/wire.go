// Package wire holds the row format of the REST API, compatible with the
// original PHP/MySQL endpoint: snake_case columns, booleans as 0/1 and
// timestamps as "YYYY-MM-DD HH:MM:SS" in UTC.
package wire

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"homeboard/internal/model"
)

// TimeLayout is the SQL datetime layout used on the wire.
const TimeLayout = "2006-01-02 15:04:05"

// Flag is a boolean encoded as 0/1. It also decodes JSON booleans and
// numeric strings.
type Flag bool

func (f Flag) MarshalJSON() ([]byte, error) {
	if f {
		return []byte("1"), nil
	}
	return []byte("0"), nil
}

func (f *Flag) UnmarshalJSON(data []byte) error {
	s := strings.Trim(strings.TrimSpace(string(data)), `"`)
	switch strings.ToLower(s) {
	case "", "0", "false", "null":
		*f = false
	default:
		*f = true
	}
	return nil
}

// Number decodes JSON numbers and numeric strings; anything else is 0.
type Number float64

func (n *Number) UnmarshalJSON(data []byte) error {
	var v float64
	if err := json.Unmarshal(data, &v); err == nil {
		*n = Number(v)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if v, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			*n = Number(v)
			return nil
		}
	}
	*n = 0
	return nil
}

// TaskRow is a task as exchanged with the API.
type TaskRow struct {
	ID           uint   `json:"id,omitempty"`
	Title        string `json:"title"`
	FreqValue    Number `json:"freq_value"`
	FreqUnit     string `json:"freq_unit"`
	Room         string `json:"room"`
	LastDone     string `json:"last_done,omitempty"`
	PrevLastDone string `json:"prev_last_done"`
	Finished     Flag   `json:"finished"`
}

// FromTask encodes a canonical task.
func FromTask(t model.Task) TaskRow {
	row := TaskRow{
		ID:        t.ID,
		Title:     t.Title,
		FreqValue: Number(t.Periodicity.Value),
		FreqUnit:  string(t.Periodicity.Unit),
		Room:      t.Room,
		LastDone:  FormatMillis(t.LastDone),
		Finished:  Flag(t.Finished),
	}
	if t.PrevLastDone != nil {
		row.PrevLastDone = FormatMillis(*t.PrevLastDone)
	}
	return row
}

// Decode converts the row. A missing last_done falls back to now.
func (r TaskRow) Decode(now time.Time) model.Task {
	t := model.Task{
		ID:          r.ID,
		Title:       r.Title,
		Periodicity: model.Periodicity{Value: float64(r.FreqValue), Unit: model.Unit(r.FreqUnit)},
		Room:        r.Room,
		LastDone:    now.UnixMilli(),
		Finished:    bool(r.Finished),
	}
	if ms, ok := ParseMillis(r.LastDone); ok {
		t.LastDone = ms
	}
	if ms, ok := ParseMillis(r.PrevLastDone); ok {
		t.PrevLastDone = &ms
	}
	return t
}

// CourseRow is a shopping list item as exchanged with the API.
type CourseRow struct {
	ID       uint   `json:"id,omitempty"`
	Title    string `json:"title"`
	Quantity string `json:"quantity"`
	Category string `json:"category"`
	Note     string `json:"note"`
	Bought   Flag   `json:"bought"`
}

func FromCourse(c model.CourseItem) CourseRow {
	return CourseRow{
		ID:       c.ID,
		Title:    c.Title,
		Quantity: c.Quantity,
		Category: string(c.Category),
		Note:     c.Note,
		Bought:   Flag(c.Bought),
	}
}

func (r CourseRow) Decode() model.CourseItem {
	return model.CourseItem{
		ID:       r.ID,
		Title:    r.Title,
		Quantity: r.Quantity,
		Category: model.ParseCategory(r.Category),
		Note:     r.Note,
		Bought:   bool(r.Bought),
	}
}

// MealRow is a meal slot as exchanged with the API.
type MealRow struct {
	ID         uint   `json:"id,omitempty"`
	Day        string `json:"day"`
	Moment     string `json:"moment"`
	Meal       string `json:"meal"`
	WeekOffset Number `json:"week_offset"`
}

func FromMeal(m model.Meal) MealRow {
	return MealRow{
		ID:         m.ID,
		Day:        m.Day,
		Moment:     string(m.Moment),
		Meal:       m.Meal,
		WeekOffset: Number(m.WeekOffset),
	}
}

func (r MealRow) Decode() model.Meal {
	return model.Meal{
		ID:         r.ID,
		Day:        r.Day,
		Moment:     model.Moment(r.Moment),
		Meal:       r.Meal,
		WeekOffset: int(r.WeekOffset),
	}
}

// FormatMillis renders epoch milliseconds with TimeLayout, truncated to
// the second. Zero renders as an empty string.
func FormatMillis(ms int64) string {
	if ms == 0 {
		return ""
	}
	return time.UnixMilli(ms).UTC().Format(TimeLayout)
}

// ParseMillis reads TimeLayout or RFC 3339 timestamps.
func ParseMillis(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if t, err := time.Parse(TimeLayout, s); err == nil {
		return t.UnixMilli(), true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UnixMilli(), true
	}
	return 0, false
}
