package chore

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"homeboard/internal/model"
)

var now = time.Date(2025, 3, 12, 9, 30, 0, 0, time.UTC)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   model.Task
		want model.Task
	}{
		{
			name: "missing fields get defaults",
			in:   model.Task{ID: 1, Title: "Poubelles"},
			want: model.Task{ID: 1, Title: "Poubelles", Periodicity: DefaultPeriodicity, LastDone: now.Add(-48 * time.Hour).UnixMilli()},
		},
		{
			name: "legacy frequency is renamed",
			in:   model.Task{ID: 2, Frequency: &model.Periodicity{Value: 3, Unit: model.UnitHours}, LastDone: 42},
			want: model.Task{ID: 2, Periodicity: model.Periodicity{Value: 3, Unit: model.UnitHours}, LastDone: 42},
		},
		{
			name: "periodicity wins over legacy frequency",
			in: model.Task{
				Periodicity: model.Periodicity{Value: 2, Unit: model.UnitDays},
				Frequency:   &model.Periodicity{Value: 9, Unit: model.UnitHours},
				LastDone:    42,
			},
			want: model.Task{Periodicity: model.Periodicity{Value: 2, Unit: model.UnitDays}, LastDone: 42},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task := tt.in
			got := *Normalize(&task, now)
			assert.Equal(t, tt.want, got)
			assert.Nil(t, got.Frequency)

			again := got
			assert.Equal(t, got, *Normalize(&again, now.Add(time.Hour)), "normalize must be idempotent")
		})
	}
}

func TestNormalizeDecodedLegacyRecord(t *testing.T) {
	var task model.Task
	raw := `{"id":7,"title":"Aspirateur","frequency":{"value":"7","unit":"days"},"room":"Salon","lastDone":1700000000000,"finished":false}`
	require.NoError(t, json.Unmarshal([]byte(raw), &task))

	Normalize(&task, now)

	assert.Equal(t, model.Periodicity{Value: 7, Unit: model.UnitDays}, task.Periodicity)
	assert.Nil(t, task.Frequency)

	out, err := json.Marshal(task)
	require.NoError(t, err)
	assert.NotContains(t, string(out), "frequency")
}

func TestCycleDuration(t *testing.T) {
	tests := []struct {
		name string
		p    model.Periodicity
		want time.Duration
	}{
		{"hours", model.Periodicity{Value: 3, Unit: model.UnitHours}, 3 * time.Hour},
		{"days", model.Periodicity{Value: 7, Unit: model.UnitDays}, 7 * 24 * time.Hour},
		{"unknown unit is days", model.Periodicity{Value: 2, Unit: "weeks"}, 48 * time.Hour},
		{"zero is one unit", model.Periodicity{Value: 0, Unit: model.UnitHours}, time.Hour},
		{"negative is one unit", model.Periodicity{Value: -4, Unit: model.UnitDays}, 24 * time.Hour},
		{"NaN is one unit", model.Periodicity{Value: math.NaN(), Unit: model.UnitDays}, 24 * time.Hour},
		{"fractional", model.Periodicity{Value: 1.5, Unit: model.UnitDays}, 36 * time.Hour},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CycleDuration(tt.p)
			assert.Equal(t, tt.want, got)
			assert.Positive(t, got.Milliseconds())
		})
	}
}

func TestCycleDurationNonNumericValue(t *testing.T) {
	var p model.Periodicity
	require.NoError(t, json.Unmarshal([]byte(`{"value":"abc","unit":"hours"}`), &p))
	assert.Equal(t, time.Hour, CycleDuration(p))
}

func TestProgress(t *testing.T) {
	weekly := model.Periodicity{Value: 7, Unit: model.UnitDays}
	hourly := model.Periodicity{Value: 1, Unit: model.UnitHours}

	tests := []struct {
		name          string
		task          model.Task
		wantProgress  int
		wantRemaining int
		wantDue       bool
	}{
		{
			name:          "full weekly cycle elapsed",
			task:          model.Task{Periodicity: weekly, LastDone: now.Add(-7 * 24 * time.Hour).UnixMilli()},
			wantProgress:  100,
			wantRemaining: 0,
			wantDue:       true,
		},
		{
			name:          "hourly task just done still shows one day",
			task:          model.Task{Periodicity: hourly, LastDone: now.UnixMilli()},
			wantProgress:  0,
			wantRemaining: 1,
		},
		{
			name:          "half way",
			task:          model.Task{Periodicity: weekly, LastDone: now.Add(-84 * time.Hour).UnixMilli()},
			wantProgress:  50,
			wantRemaining: 4,
		},
		{
			name:          "overdue is clamped",
			task:          model.Task{Periodicity: weekly, LastDone: now.Add(-10 * 24 * time.Hour).UnixMilli()},
			wantProgress:  100,
			wantRemaining: -3,
			wantDue:       true,
		},
		{
			name:          "done in the future is clamped at zero",
			task:          model.Task{Periodicity: weekly, LastDone: now.Add(24 * time.Hour).UnixMilli()},
			wantProgress:  0,
			wantRemaining: 8,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Progress(tt.task, now)
			assert.Equal(t, tt.wantProgress, got.Progress)
			assert.Equal(t, tt.wantRemaining, got.RemainingDays)
			assert.Equal(t, tt.wantDue, got.IsDue())
		})
	}
}

func TestToggleFinishedRestoresPreviousLastDone(t *testing.T) {
	original := now.Add(-3 * 24 * time.Hour).UnixMilli()
	task := model.Task{Periodicity: DefaultPeriodicity, LastDone: original}

	ToggleFinished(&task, now)
	assert.True(t, task.Finished)
	assert.Equal(t, now.UnixMilli(), task.LastDone)
	require.NotNil(t, task.PrevLastDone)
	assert.Equal(t, original, *task.PrevLastDone)

	ToggleFinished(&task, now.Add(time.Hour))
	assert.False(t, task.Finished)
	assert.Equal(t, original, task.LastDone)
	assert.Nil(t, task.PrevLastDone)
}

func TestToggleFinishedWithoutPreviousValue(t *testing.T) {
	task := model.Task{Finished: true, LastDone: 123}

	ToggleFinished(&task, now)

	assert.False(t, task.Finished)
	assert.Equal(t, int64(123), task.LastDone)
}

func TestResetTimer(t *testing.T) {
	prev := int64(5)
	task := model.Task{Finished: true, LastDone: 10, PrevLastDone: &prev}

	ResetTimer(&task, now)

	assert.False(t, task.Finished)
	assert.Equal(t, now.UnixMilli(), task.LastDone)
	assert.Nil(t, task.PrevLastDone)
}

func TestNewTask(t *testing.T) {
	task := NewTask("  Arroser les plantes ", model.Periodicity{Value: 3, Unit: model.UnitDays}, " Salon ", now)

	assert.Equal(t, "Arroser les plantes", task.Title)
	assert.Equal(t, "Salon", task.Room)
	assert.Equal(t, now.Add(-24*time.Hour).UnixMilli(), task.LastDone)
	assert.False(t, task.Finished)
	assert.Equal(t, 33, Progress(task, now).Progress)
}
