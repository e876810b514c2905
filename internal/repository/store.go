package repository

import (
	"context"

	"gorm.io/gorm"

	"homeboard/internal/model"
)

// Store exposes the three repositories through the data access contract.
type Store struct {
	Tasks   *TaskRepository
	Courses *CourseRepository
	Meals   *MealRepository
}

func NewStore(db *gorm.DB) *Store {
	return &Store{
		Tasks:   NewTaskRepository(db),
		Courses: NewCourseRepository(db),
		Meals:   NewMealRepository(db),
	}
}

func (s *Store) ListTasks(ctx context.Context) ([]model.Task, error) { return s.Tasks.List(ctx) }
func (s *Store) CreateTask(ctx context.Context, t *model.Task) error  { return s.Tasks.Create(ctx, t) }
func (s *Store) UpdateTask(ctx context.Context, t model.Task) error   { return s.Tasks.Update(ctx, t) }
func (s *Store) DeleteTask(ctx context.Context, id uint) error        { return s.Tasks.Delete(ctx, id) }

func (s *Store) ListCourses(ctx context.Context) ([]model.CourseItem, error) {
	return s.Courses.List(ctx)
}
func (s *Store) CreateCourse(ctx context.Context, c *model.CourseItem) error {
	return s.Courses.Create(ctx, c)
}
func (s *Store) UpdateCourse(ctx context.Context, c model.CourseItem) error {
	return s.Courses.Update(ctx, c)
}
func (s *Store) DeleteCourse(ctx context.Context, id uint) error { return s.Courses.Delete(ctx, id) }
func (s *Store) DeleteCourses(ctx context.Context, ids []uint) (int, error) {
	return s.Courses.DeleteMany(ctx, ids)
}

func (s *Store) ListMeals(ctx context.Context) ([]model.Meal, error) { return s.Meals.List(ctx) }
func (s *Store) CreateMeal(ctx context.Context, m *model.Meal) error  { return s.Meals.Create(ctx, m) }
func (s *Store) UpdateMeal(ctx context.Context, m model.Meal) error   { return s.Meals.Update(ctx, m) }
func (s *Store) DeleteMeal(ctx context.Context, id uint) error        { return s.Meals.Delete(ctx, id) }
