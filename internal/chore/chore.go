// Package chore computes the cycle state of recurring household tasks:
// how much of the current period has elapsed and how many days remain
// before the task is due again.
package chore

import (
	"math"
	"strings"
	"time"

	"homeboard/internal/model"
)

const day = 24 * time.Hour

// DefaultPeriodicity applies to tasks stored without any periodicity.
var DefaultPeriodicity = model.Periodicity{Value: 7, Unit: model.UnitDays}

// Status is the derived progress of a task within its cycle.
type Status struct {
	Progress      int `json:"progress"`      // 0..100
	RemainingDays int `json:"remainingDays"` // <= 0 when due
}

// IsDue reports whether the task should be done now.
func (s Status) IsDue() bool {
	return s.RemainingDays <= 0
}

// NewTask builds a task as created from the form: the cycle starts one
// day in the past.
func NewTask(title string, p model.Periodicity, room string, now time.Time) model.Task {
	return model.Task{
		Title:       strings.TrimSpace(title),
		Periodicity: p,
		Room:        strings.TrimSpace(room),
		LastDone:    now.Add(-day).UnixMilli(),
	}
}

// Normalize fills the fields older records may lack. A legacy Frequency
// is moved into Periodicity, a missing periodicity becomes 7 days and a
// missing LastDone is set two days before now. Calling it again on the
// result changes nothing.
func Normalize(t *model.Task, now time.Time) *model.Task {
	if t.Frequency != nil {
		if t.Periodicity.IsZero() {
			t.Periodicity = *t.Frequency
		}
		t.Frequency = nil
	}
	if t.Periodicity.IsZero() {
		t.Periodicity = DefaultPeriodicity
	}
	if t.LastDone == 0 {
		t.LastDone = now.Add(-2 * day).UnixMilli()
	}
	return t
}

// CycleDuration returns the length of one period. Values that are not
// strictly positive count as 1 and unknown units count as days, so the
// result is never shorter than one hour.
func CycleDuration(p model.Periodicity) time.Duration {
	v := p.Value
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		v = 1
	}
	unit := day
	if p.Unit == model.UnitHours {
		unit = time.Hour
	}
	return time.Duration(v * float64(unit))
}

// Progress reports the share of the cycle elapsed since LastDone and the
// whole days left before the cycle ends.
func Progress(t model.Task, now time.Time) Status {
	elapsed := now.UnixMilli() - t.LastDone
	total := CycleDuration(t.Periodicity).Milliseconds()
	if total < 1 {
		total = 1
	}

	pct := math.Floor(float64(elapsed) / float64(total) * 100)
	pct = math.Max(0, math.Min(100, pct))

	remaining := math.Ceil(float64(total-elapsed) / float64(day.Milliseconds()))
	return Status{Progress: int(pct), RemainingDays: int(remaining)}
}

// ToggleFinished flips the finished flag. Finishing stamps LastDone with
// now and keeps the previous value aside; un-finishing restores it.
func ToggleFinished(t *model.Task, now time.Time) *model.Task {
	if !t.Finished {
		prev := t.LastDone
		t.PrevLastDone = &prev
		t.LastDone = now.UnixMilli()
		t.Finished = true
		return t
	}
	if t.PrevLastDone != nil {
		t.LastDone = *t.PrevLastDone
		t.PrevLastDone = nil
	}
	t.Finished = false
	return t
}

// ResetTimer restarts the cycle at now.
func ResetTimer(t *model.Task, now time.Time) *model.Task {
	t.LastDone = now.UnixMilli()
	t.Finished = false
	t.PrevLastDone = nil
	return t
}
