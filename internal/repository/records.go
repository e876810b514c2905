package repository

import (
	"time"

	"homeboard/internal/model"
)

// Table rows keep the column names of the original MySQL schema. They are
// translated to the canonical model at this boundary only.

type taskRecord struct {
	ID           uint   `gorm:"primaryKey"`
	Title        string `gorm:"not null"`
	FreqValue    float64
	FreqUnit     string `gorm:"size:16"`
	Room         string
	LastDone     *time.Time
	PrevLastDone *time.Time
	Finished     bool `gorm:"default:false"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (taskRecord) TableName() string { return "tasks" }

func newTaskRecord(t model.Task) taskRecord {
	r := taskRecord{
		ID:        t.ID,
		Title:     t.Title,
		FreqValue: t.Periodicity.Value,
		FreqUnit:  string(t.Periodicity.Unit),
		Room:      t.Room,
		Finished:  t.Finished,
	}
	if t.LastDone != 0 {
		at := time.UnixMilli(t.LastDone).UTC()
		r.LastDone = &at
	}
	if t.PrevLastDone != nil {
		at := time.UnixMilli(*t.PrevLastDone).UTC()
		r.PrevLastDone = &at
	}
	return r
}

func (r taskRecord) model() model.Task {
	t := model.Task{
		ID:          r.ID,
		Title:       r.Title,
		Periodicity: model.Periodicity{Value: r.FreqValue, Unit: model.Unit(r.FreqUnit)},
		Room:        r.Room,
		Finished:    r.Finished,
	}
	if r.LastDone != nil {
		t.LastDone = r.LastDone.UnixMilli()
	}
	if r.PrevLastDone != nil {
		ms := r.PrevLastDone.UnixMilli()
		t.PrevLastDone = &ms
	}
	return t
}

type courseRecord struct {
	ID        uint   `gorm:"primaryKey"`
	Title     string `gorm:"not null"`
	Quantity  string
	Category  string `gorm:"size:32;default:Autres"`
	Note      string
	Bought    bool `gorm:"default:false;index"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (courseRecord) TableName() string { return "courses" }

func newCourseRecord(c model.CourseItem) courseRecord {
	return courseRecord{
		ID:       c.ID,
		Title:    c.Title,
		Quantity: c.Quantity,
		Category: string(c.Category),
		Note:     c.Note,
		Bought:   c.Bought,
	}
}

func (r courseRecord) model() model.CourseItem {
	return model.CourseItem{
		ID:       r.ID,
		Title:    r.Title,
		Quantity: r.Quantity,
		Category: model.ParseCategory(r.Category),
		Note:     r.Note,
		Bought:   r.Bought,
	}
}

type mealRecord struct {
	ID         uint   `gorm:"primaryKey"`
	Day        string `gorm:"size:16"`
	Moment     string `gorm:"size:8"`
	Meal       string
	WeekOffset int
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (mealRecord) TableName() string { return "meals" }

func newMealRecord(m model.Meal) mealRecord {
	return mealRecord{
		ID:         m.ID,
		Day:        m.Day,
		Moment:     string(m.Moment),
		Meal:       m.Meal,
		WeekOffset: m.WeekOffset,
	}
}

func (r mealRecord) model() model.Meal {
	return model.Meal{
		ID:         r.ID,
		Day:        r.Day,
		Moment:     model.Moment(r.Moment),
		Meal:       r.Meal,
		WeekOffset: r.WeekOffset,
	}
}
