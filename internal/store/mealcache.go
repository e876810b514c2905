package store

import (
	"context"
	"sync"
	"time"

	"homeboard/internal/model"
)

// MealCacheTTL is how long a meal list stays fresh.
const MealCacheTTL = 30 * time.Second

// MealCache keeps the last meal list for a short time. Every meal write
// invalidates it, whether or not the write succeeded.
type MealCache struct {
	Store
	ttl time.Duration
	now func() time.Time

	mu      sync.Mutex
	meals   []model.Meal
	fetched time.Time
	valid   bool
	// gen is bumped by Invalidate; a read started before a write must not
	// repopulate the cache with what it saw.
	gen uint64
}

// NewMealCache wraps s with a MealCacheTTL read cache on meals.
func NewMealCache(s Store) *MealCache {
	return &MealCache{Store: s, ttl: MealCacheTTL, now: time.Now}
}

func (c *MealCache) ListMeals(ctx context.Context) ([]model.Meal, error) {
	c.mu.Lock()
	if c.valid && c.now().Sub(c.fetched) < c.ttl {
		meals := append([]model.Meal(nil), c.meals...)
		c.mu.Unlock()
		return meals, nil
	}
	gen := c.gen
	c.mu.Unlock()

	meals, err := c.Store.ListMeals(ctx)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	if c.gen == gen {
		c.meals = append([]model.Meal(nil), meals...)
		c.fetched = c.now()
		c.valid = true
	}
	c.mu.Unlock()
	return meals, nil
}

func (c *MealCache) CreateMeal(ctx context.Context, meal *model.Meal) error {
	err := c.Store.CreateMeal(ctx, meal)
	c.Invalidate()
	return err
}

func (c *MealCache) UpdateMeal(ctx context.Context, meal model.Meal) error {
	err := c.Store.UpdateMeal(ctx, meal)
	c.Invalidate()
	return err
}

func (c *MealCache) DeleteMeal(ctx context.Context, id uint) error {
	err := c.Store.DeleteMeal(ctx, id)
	c.Invalidate()
	return err
}

// DeleteCourses keeps the batching capability of the wrapped store.
func (c *MealCache) DeleteCourses(ctx context.Context, ids []uint) (int, error) {
	if bulk, ok := c.Store.(BulkCourseDeleter); ok {
		return bulk.DeleteCourses(ctx, ids)
	}
	return 0, ErrBulkUnsupported
}

// Invalidate drops the cached list.
func (c *MealCache) Invalidate() {
	c.mu.Lock()
	c.gen++
	c.valid = false
	c.meals = nil
	c.mu.Unlock()
}
