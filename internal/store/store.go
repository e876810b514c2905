// Package store defines the data access contract shared by the local,
// relational and remote backends, plus the wrappers applied on top of
// whichever backend is selected at startup.
package store

import (
	"context"
	"errors"

	"homeboard/internal/model"
)

// ErrUnavailable marks a backend that could not be reached or answered
// with an error status.
var ErrUnavailable = errors.New("store unavailable")

// ErrNotFound is returned by every backend when updating an unknown id.
var ErrNotFound = errors.New("record not found")

// ErrBulkUnsupported is returned by wrappers whose backend lacks batched deletes.
var ErrBulkUnsupported = errors.New("bulk delete not supported")

// IsBulkUnsupported reports whether err comes from a backend lacking
// batched deletes.
func IsBulkUnsupported(err error) bool {
	return errors.Is(err, ErrBulkUnsupported)
}

// Store is the data access contract. Create methods assign the ID of the
// record they are given.
type Store interface {
	ListTasks(ctx context.Context) ([]model.Task, error)
	CreateTask(ctx context.Context, task *model.Task) error
	UpdateTask(ctx context.Context, task model.Task) error
	DeleteTask(ctx context.Context, id uint) error

	ListCourses(ctx context.Context) ([]model.CourseItem, error)
	CreateCourse(ctx context.Context, item *model.CourseItem) error
	UpdateCourse(ctx context.Context, item model.CourseItem) error
	DeleteCourse(ctx context.Context, id uint) error

	ListMeals(ctx context.Context) ([]model.Meal, error)
	CreateMeal(ctx context.Context, meal *model.Meal) error
	UpdateMeal(ctx context.Context, meal model.Meal) error
	DeleteMeal(ctx context.Context, id uint) error
}

// BulkCourseDeleter is implemented by backends able to delete several
// shopping items in one atomic request.
type BulkCourseDeleter interface {
	DeleteCourses(ctx context.Context, ids []uint) (int, error)
}

// KV is a keyed blob store for small settings and caches.
type KV interface {
	Get(key string, out any) (bool, error)
	Put(key string, value any) error
	Remove(key string) error
}
