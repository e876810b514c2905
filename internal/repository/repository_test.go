package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"homeboard/internal/model"
	"homeboard/internal/store"
)

var _ store.Store = (*Store)(nil)
var _ store.BulkCourseDeleter = (*Store)(nil)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := NewDB(filepath.Join(t.TempDir(), "data", "test.db"))
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })
	return NewStore(db)
}

func TestIsPostgres(t *testing.T) {
	assert.True(t, isPostgres("postgres://u:p@localhost/db"))
	assert.True(t, isPostgres("postgresql://localhost/db"))
	assert.True(t, isPostgres("host=localhost user=u dbname=db"))
	assert.False(t, isPostgres("homeboard.db"))
	assert.False(t, isPostgres("file:data/homeboard.db?cache=shared"))
}

func TestSQLiteFile(t *testing.T) {
	tests := []struct {
		dsn  string
		want string
	}{
		{dsn: "homeboard.db", want: "homeboard.db"},
		{dsn: "data/homeboard.db", want: "data/homeboard.db"},
		{dsn: "file:data/homeboard.db?_busy_timeout=5000", want: "data/homeboard.db"},
		{dsn: ":memory:", want: ""},
		{dsn: "file:test?mode=memory&cache=shared", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.dsn, func(t *testing.T) {
			assert.Equal(t, tt.want, sqliteFile(tt.dsn))
		})
	}
}

func TestNewDBCreatesDataDir(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "nested", "dir", "homeboard.db")
	db, err := NewDB(dsn)
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	assert.DirExists(t, filepath.Dir(dsn))
}

func TestTaskRepository(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	done := time.Date(2025, 3, 10, 8, 30, 15, 0, time.UTC).UnixMilli()
	first := model.Task{Title: "Aspirateur", Periodicity: model.Periodicity{Value: 7, Unit: model.UnitDays}, Room: "Salon", LastDone: done}
	second := model.Task{Title: "Plantes", Periodicity: model.Periodicity{Value: 36, Unit: model.UnitHours}, LastDone: done}
	require.NoError(t, s.CreateTask(ctx, &first))
	require.NoError(t, s.CreateTask(ctx, &second))
	assert.NotZero(t, first.ID)
	assert.Greater(t, second.ID, first.ID)

	tasks, err := s.ListTasks(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, second.ID, tasks[0].ID, "newest first")
	assert.Equal(t, first, tasks[1])

	prev := done
	first.Finished = true
	first.PrevLastDone = &prev
	first.LastDone = done + int64(time.Hour/time.Millisecond)
	require.NoError(t, s.UpdateTask(ctx, first))

	got, err := s.Tasks.FindByID(ctx, first.ID)
	require.NoError(t, err)
	assert.True(t, got.Finished)
	require.NotNil(t, got.PrevLastDone)
	assert.Equal(t, done, *got.PrevLastDone)

	// Zero values must be written too.
	first.Finished = false
	first.PrevLastDone = nil
	first.Room = ""
	require.NoError(t, s.UpdateTask(ctx, first))
	got, err = s.Tasks.FindByID(ctx, first.ID)
	require.NoError(t, err)
	assert.False(t, got.Finished)
	assert.Nil(t, got.PrevLastDone)
	assert.Empty(t, got.Room)

	require.NoError(t, s.DeleteTask(ctx, first.ID))
	_, err = s.Tasks.FindByID(ctx, first.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateUnknownID(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	assert.ErrorIs(t, s.UpdateTask(ctx, model.Task{ID: 42, Title: "x"}), store.ErrNotFound)
	assert.ErrorIs(t, s.UpdateCourse(ctx, model.CourseItem{ID: 42, Title: "x"}), store.ErrNotFound)
	assert.ErrorIs(t, s.UpdateMeal(ctx, model.Meal{ID: 42, Day: "lundi"}), store.ErrNotFound)
}

func TestCourseRepository(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	items := []model.CourseItem{
		{Title: "Pommes", Quantity: "1kg", Category: model.CategoryFruits, Bought: true},
		{Title: "Pain", Category: model.CategoryBakery},
		{Title: "Lait", Note: "demi-écrémé", Category: model.CategoryGrocery, Bought: true},
	}
	for i := range items {
		require.NoError(t, s.CreateCourse(ctx, &items[i]))
	}

	listed, err := s.ListCourses(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 3)
	assert.Equal(t, items[2], listed[0])

	n, err := s.DeleteCourses(ctx, []uint{items[0].ID, items[2].ID, 999})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	listed, err = s.ListCourses(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, "Pain", listed[0].Title)

	n, err = s.DeleteCourses(ctx, nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestMealRepository(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	meal := model.Meal{Day: "mardi", Moment: model.MomentDinner, Meal: "Soupe", WeekOffset: 1}
	require.NoError(t, s.CreateMeal(ctx, &meal))

	meal.Meal = "Gratin"
	meal.WeekOffset = 0
	require.NoError(t, s.UpdateMeal(ctx, meal))

	meals, err := s.ListMeals(ctx)
	require.NoError(t, err)
	require.Len(t, meals, 1)
	assert.Equal(t, meal, meals[0])

	require.NoError(t, s.DeleteMeal(ctx, meal.ID))
	meals, err = s.ListMeals(ctx)
	require.NoError(t, err)
	assert.Empty(t, meals)
}
