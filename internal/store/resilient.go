package store

import (
	"context"

	"homeboard/internal/logger"
	"homeboard/internal/model"
)

// Resilient turns read failures into best-effort results. When the
// primary backend fails, tasks and courses are read from the fallback
// (if any) and meals degrade to an empty list; a read never returns an
// error. Writes go to the primary only and report its errors.
type Resilient struct {
	Store
	fallback Store
}

// NewResilient wraps primary. fallback may be nil.
func NewResilient(primary, fallback Store) *Resilient {
	return &Resilient{Store: primary, fallback: fallback}
}

func (r *Resilient) ListTasks(ctx context.Context) ([]model.Task, error) {
	tasks, err := r.Store.ListTasks(ctx)
	if err == nil {
		return tasks, nil
	}
	logger.Warn("list tasks failed", "err", err)
	if r.fallback != nil {
		if tasks, err = r.fallback.ListTasks(ctx); err == nil {
			return tasks, nil
		}
		logger.Warn("fallback list tasks failed", "err", err)
	}
	return []model.Task{}, nil
}

func (r *Resilient) ListCourses(ctx context.Context) ([]model.CourseItem, error) {
	items, err := r.Store.ListCourses(ctx)
	if err == nil {
		return items, nil
	}
	logger.Warn("list courses failed", "err", err)
	if r.fallback != nil {
		if items, err = r.fallback.ListCourses(ctx); err == nil {
			return items, nil
		}
		logger.Warn("fallback list courses failed", "err", err)
	}
	return []model.CourseItem{}, nil
}

func (r *Resilient) ListMeals(ctx context.Context) ([]model.Meal, error) {
	meals, err := r.Store.ListMeals(ctx)
	if err != nil {
		logger.Warn("list meals failed", "err", err)
		return []model.Meal{}, nil
	}
	return meals, nil
}

// DeleteCourses forwards to the primary when it supports batching.
func (r *Resilient) DeleteCourses(ctx context.Context, ids []uint) (int, error) {
	if bulk, ok := r.Store.(BulkCourseDeleter); ok {
		return bulk.DeleteCourses(ctx, ids)
	}
	return 0, ErrBulkUnsupported
}
