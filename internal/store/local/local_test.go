package local

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"homeboard/internal/model"
)

var fixedNow = time.Date(2025, 3, 12, 9, 30, 0, 0, time.UTC)

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "data", "homeboard.json"))
	require.NoError(t, err)
	s.now = func() time.Time { return fixedNow }
	return s
}

func TestTaskRoundTrip(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()

	in := model.Task{
		Title:       "Aspirateur",
		Periodicity: model.Periodicity{Value: 7, Unit: model.UnitDays},
		Room:        "Salon",
		LastDone:    fixedNow.Add(-24 * time.Hour).UnixMilli(),
	}
	require.NoError(t, s.CreateTask(ctx, &in))
	assert.Equal(t, uint(1), in.ID)

	second := model.Task{Title: "Poubelles", Periodicity: model.Periodicity{Value: 1, Unit: model.UnitDays}, LastDone: 1}
	require.NoError(t, s.CreateTask(ctx, &second))
	assert.Equal(t, uint(2), second.ID)

	reopened, err := Open(s.Path())
	require.NoError(t, err)
	tasks, err := reopened.ListTasks(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, in, tasks[0])

	in.Finished = true
	require.NoError(t, s.UpdateTask(ctx, in))
	require.NoError(t, s.DeleteTask(ctx, second.ID))

	tasks, err = s.ListTasks(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.True(t, tasks[0].Finished)

	err = s.UpdateTask(ctx, model.Task{ID: 99})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLegacyTasksAreMigratedOnRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "homeboard.json")
	legacy := `{"home_tasks_v1": [
		{"id": 1, "title": "Sortir les poubelles", "frequency": {"value": 1, "unit": "days"}, "room": "Extérieur", "lastDone": 1700000000000, "finished": true, "_prevLastDone": 1699990000000},
		{"id": 2, "title": "Sans rien"}
	]}`
	require.NoError(t, os.WriteFile(path, []byte(legacy), 0o644))

	s, err := Open(path)
	require.NoError(t, err)
	s.now = func() time.Time { return fixedNow }

	tasks, err := s.ListTasks(context.Background())
	require.NoError(t, err)
	require.Len(t, tasks, 2)

	assert.Equal(t, model.Periodicity{Value: 1, Unit: model.UnitDays}, tasks[0].Periodicity)
	assert.Nil(t, tasks[0].Frequency)
	require.NotNil(t, tasks[0].PrevLastDone)
	assert.Equal(t, int64(1699990000000), *tasks[0].PrevLastDone)

	assert.Equal(t, model.Periodicity{Value: 7, Unit: model.UnitDays}, tasks[1].Periodicity)
	assert.Equal(t, fixedNow.Add(-48*time.Hour).UnixMilli(), tasks[1].LastDone)
}

func TestMalformedDataIsEmpty(t *testing.T) {
	dir := t.TempDir()

	broken := filepath.Join(dir, "broken.json")
	require.NoError(t, os.WriteFile(broken, []byte("{not json"), 0o644))
	s, err := Open(broken)
	require.NoError(t, err)
	tasks, err := s.ListTasks(context.Background())
	require.NoError(t, err)
	assert.Empty(t, tasks)

	wrongShape := filepath.Join(dir, "shape.json")
	require.NoError(t, os.WriteFile(wrongShape, []byte(`{"home_courses_v1": "oops"}`), 0o644))
	s, err = Open(wrongShape)
	require.NoError(t, err)
	courses, err := s.ListCourses(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, courses)
	assert.Empty(t, courses)
}

func TestCourses(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()

	items := []model.CourseItem{
		{Title: "Lait", Quantity: "1L", Category: model.CategoryDrinks},
		{Title: "Pain", Quantity: "1", Category: "inconnue", Bought: true},
		{Title: "Pommes", Category: model.CategoryFruits, Bought: true},
	}
	for i := range items {
		require.NoError(t, s.CreateCourse(ctx, &items[i]))
	}

	list, err := s.ListCourses(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, model.CategoryOther, list[1].Category)

	n, err := s.DeleteCourses(ctx, []uint{items[1].ID, items[2].ID, 42})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	list, err = s.ListCourses(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Lait", list[0].Title)
}

func TestMeals(t *testing.T) {
	path := filepath.Join(t.TempDir(), "homeboard.json")
	legacy := `{"home_meals_v1": [{"id": 4, "day": "lundi", "moment": "midi", "meal": "Gratin", "weekOffset": 1}]}`
	require.NoError(t, os.WriteFile(path, []byte(legacy), 0o644))
	s, err := Open(path)
	require.NoError(t, err)
	ctx := context.Background()

	meals, err := s.ListMeals(ctx)
	require.NoError(t, err)
	require.Len(t, meals, 1)
	assert.Equal(t, 1, meals[0].WeekOffset)

	meal := model.Meal{Day: "mardi", Moment: model.MomentDinner, Meal: "Soupe"}
	require.NoError(t, s.CreateMeal(ctx, &meal))
	assert.Equal(t, uint(5), meal.ID)

	meal.Meal = "Soupe de potiron"
	require.NoError(t, s.UpdateMeal(ctx, meal))
	require.NoError(t, s.DeleteMeal(ctx, 4))

	meals, err = s.ListMeals(ctx)
	require.NoError(t, err)
	assert.Equal(t, []model.Meal{meal}, meals)
}

func TestKV(t *testing.T) {
	s := openTemp(t)

	var out map[string]int
	ok, err := s.Get("missing", &out)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Put("counter", map[string]int{"n": 3}))
	ok, err = s.Get("counter", &out)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 3, out["n"])

	require.NoError(t, s.Remove("counter"))
	require.NoError(t, s.Remove("counter"))
	ok, err = s.Get("counter", &out)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestTheme(t *testing.T) {
	s := openTemp(t)

	assert.Equal(t, ThemeSystem, s.Theme())
	require.NoError(t, s.SetTheme(ThemeDark))
	assert.Equal(t, ThemeDark, s.Theme())
	assert.Error(t, s.SetTheme("sepia"))
	assert.Equal(t, ThemeDark, s.Theme())

	require.NoError(t, s.Put(ThemeKey, "neon"))
	assert.Equal(t, ThemeSystem, s.Theme())
}

func TestTwoStoresShareOneFile(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "homeboard.json")

	server, err := Open(path)
	require.NoError(t, err)
	bot, err := Open(path)
	require.NoError(t, err)

	task := model.Task{Title: "Vitres", Periodicity: model.Periodicity{Value: 7, Unit: model.UnitDays}, LastDone: 1}
	require.NoError(t, server.CreateTask(ctx, &task))
	require.NoError(t, bot.Put(BotChatsKey, []model.Subscriber{{ChatID: 7}}))

	tasks, err := bot.ListTasks(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 1)

	other := model.Task{Title: "Poubelles", Periodicity: model.Periodicity{Value: 1, Unit: model.UnitDays}, LastDone: 1}
	require.NoError(t, bot.CreateTask(ctx, &other))
	assert.Equal(t, uint(2), other.ID)

	reopened, err := Open(path)
	require.NoError(t, err)
	tasks, err = reopened.ListTasks(ctx)
	require.NoError(t, err)
	assert.Len(t, tasks, 2)

	var subs []model.Subscriber
	ok, err := reopened.Get(BotChatsKey, &subs)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Len(t, subs, 1)
}

func TestConcurrentWritersKeepEveryItem(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "homeboard.json")

	stores := make([]*Store, 2)
	for i := range stores {
		s, err := Open(path)
		require.NoError(t, err)
		stores[i] = s
	}

	const perStore = 15
	var wg sync.WaitGroup
	errs := make(chan error, len(stores)*perStore)
	for _, s := range stores {
		wg.Add(1)
		go func(s *Store) {
			defer wg.Done()
			for i := 0; i < perStore; i++ {
				errs <- s.CreateCourse(ctx, &model.CourseItem{Title: "Article", Category: model.CategoryOther})
			}
		}(s)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	items, err := stores[0].ListCourses(ctx)
	require.NoError(t, err)
	require.Len(t, items, len(stores)*perStore)
	seen := make(map[uint]bool)
	for _, it := range items {
		seen[it.ID] = true
	}
	assert.Len(t, seen, len(stores)*perStore)
}
