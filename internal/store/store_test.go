package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"homeboard/internal/model"
)

// fakeStore counts calls and fails every operation when err is set.
type fakeStore struct {
	err        error
	tasks      []model.Task
	courses    []model.CourseItem
	meals      []model.Meal
	mealReads  int
	mealWrites int
}

func (f *fakeStore) ListTasks(context.Context) ([]model.Task, error) { return f.tasks, f.err }
func (f *fakeStore) CreateTask(_ context.Context, t *model.Task) error {
	if f.err != nil {
		return f.err
	}
	t.ID = uint(len(f.tasks) + 1)
	f.tasks = append(f.tasks, *t)
	return nil
}
func (f *fakeStore) UpdateTask(context.Context, model.Task) error             { return f.err }
func (f *fakeStore) DeleteTask(context.Context, uint) error                   { return f.err }
func (f *fakeStore) ListCourses(context.Context) ([]model.CourseItem, error)  { return f.courses, f.err }
func (f *fakeStore) CreateCourse(context.Context, *model.CourseItem) error    { return f.err }
func (f *fakeStore) UpdateCourse(context.Context, model.CourseItem) error     { return f.err }
func (f *fakeStore) DeleteCourse(context.Context, uint) error                 { return f.err }
func (f *fakeStore) ListMeals(context.Context) ([]model.Meal, error) {
	f.mealReads++
	return f.meals, f.err
}
func (f *fakeStore) CreateMeal(_ context.Context, m *model.Meal) error {
	f.mealWrites++
	f.meals = append(f.meals, *m)
	return f.err
}
func (f *fakeStore) UpdateMeal(context.Context, model.Meal) error {
	f.mealWrites++
	return f.err
}
func (f *fakeStore) DeleteMeal(context.Context, uint) error {
	f.mealWrites++
	return f.err
}

var errDown = errors.New("connection refused")

func TestResilientFallsBackOnReadFailure(t *testing.T) {
	primary := &fakeStore{err: errDown}
	fallback := &fakeStore{
		tasks:   []model.Task{{ID: 1, Title: "Poubelles"}},
		courses: []model.CourseItem{{ID: 2, Title: "Lait"}},
		meals:   []model.Meal{{ID: 3, Day: "lundi"}},
	}
	r := NewResilient(primary, fallback)
	ctx := context.Background()

	tasks, err := r.ListTasks(ctx)
	require.NoError(t, err)
	assert.Equal(t, fallback.tasks, tasks)

	courses, err := r.ListCourses(ctx)
	require.NoError(t, err)
	assert.Equal(t, fallback.courses, courses)

	meals, err := r.ListMeals(ctx)
	require.NoError(t, err)
	assert.Empty(t, meals, "meals have no fallback")
	assert.NotNil(t, meals)
}

func TestResilientEmptyOnTotalFailure(t *testing.T) {
	r := NewResilient(&fakeStore{err: errDown}, &fakeStore{err: errDown})

	tasks, err := r.ListTasks(context.Background())
	require.NoError(t, err)
	assert.Empty(t, tasks)

	courses, err := NewResilient(&fakeStore{err: errDown}, nil).ListCourses(context.Background())
	require.NoError(t, err)
	assert.Empty(t, courses)
}

func TestResilientWritesReportErrors(t *testing.T) {
	r := NewResilient(&fakeStore{err: errDown}, &fakeStore{})

	err := r.CreateTask(context.Background(), &model.Task{Title: "x"})
	assert.ErrorIs(t, err, errDown)
}

func TestResilientBulkUnsupported(t *testing.T) {
	_, err := NewResilient(&fakeStore{}, nil).DeleteCourses(context.Background(), []uint{1})
	assert.True(t, IsBulkUnsupported(err))
}

func TestMealCache(t *testing.T) {
	backend := &fakeStore{meals: []model.Meal{{ID: 1, Day: "lundi"}}}
	cache := NewMealCache(backend)
	clock := time.Date(2025, 3, 12, 12, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return clock }
	ctx := context.Background()

	_, err := cache.ListMeals(ctx)
	require.NoError(t, err)
	_, err = cache.ListMeals(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, backend.mealReads, "second read is served from cache")

	require.NoError(t, cache.CreateMeal(ctx, &model.Meal{ID: 2, Day: "mardi"}))
	meals, err := cache.ListMeals(ctx)
	require.NoError(t, err)
	assert.Len(t, meals, 2)
	assert.Equal(t, 2, backend.mealReads, "write invalidates the cache")

	clock = clock.Add(MealCacheTTL)
	_, err = cache.ListMeals(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, backend.mealReads, "entry expires after the TTL")
}

func TestMealCacheInvalidatesOnFailedWrite(t *testing.T) {
	backend := &fakeStore{}
	cache := NewMealCache(backend)
	ctx := context.Background()

	_, err := cache.ListMeals(ctx)
	require.NoError(t, err)

	backend.err = errDown
	assert.ErrorIs(t, cache.DeleteMeal(ctx, 1), errDown)

	backend.err = nil
	_, err = cache.ListMeals(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, backend.mealReads)
}

func TestMealCacheReturnsCopies(t *testing.T) {
	backend := &fakeStore{meals: []model.Meal{{ID: 1, Meal: "Soupe"}}}
	cache := NewMealCache(backend)

	first, err := cache.ListMeals(context.Background())
	require.NoError(t, err)
	first[0].Meal = "modifié"

	second, err := cache.ListMeals(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Soupe", second[0].Meal)
}

// blockingMeals holds ListMeals until release is closed.
type blockingMeals struct {
	fakeStore
	started chan struct{}
	release chan struct{}
}

func (b *blockingMeals) ListMeals(ctx context.Context) ([]model.Meal, error) {
	meals := append([]model.Meal(nil), b.meals...)
	close(b.started)
	<-b.release
	return meals, nil
}

func (b *blockingMeals) DeleteMeal(_ context.Context, id uint) error {
	kept := b.meals[:0]
	for _, m := range b.meals {
		if m.ID != id {
			kept = append(kept, m)
		}
	}
	b.meals = kept
	return nil
}

func TestMealCacheIgnoresReadRacingAWrite(t *testing.T) {
	ctx := context.Background()
	backend := &blockingMeals{
		fakeStore: fakeStore{meals: []model.Meal{{ID: 1, Day: "lundi", Moment: model.MomentLunch, Meal: "Soupe"}}},
		started:   make(chan struct{}),
		release:   make(chan struct{}),
	}
	c := NewMealCache(backend)

	done := make(chan []model.Meal)
	go func() {
		meals, _ := c.ListMeals(ctx)
		done <- meals
	}()

	<-backend.started
	require.NoError(t, c.DeleteMeal(ctx, 1))
	close(backend.release)
	assert.Len(t, <-done, 1)

	// The racing read was not cached, so this one reaches the backend.
	backend.started = make(chan struct{})
	meals, err := c.ListMeals(ctx)
	require.NoError(t, err)
	assert.Empty(t, meals)
}
