package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"homeboard/internal/model"
	"homeboard/internal/store"
)

// ErrNotFound is returned when a record to update does not exist.
var ErrNotFound = store.ErrNotFound

// TaskRepository handles CRUD for tasks.
type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// List returns tasks newest first.
func (r *TaskRepository) List(ctx context.Context) ([]model.Task, error) {
	var records []taskRecord
	if err := r.db.WithContext(ctx).Order("id DESC").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	tasks := make([]model.Task, 0, len(records))
	for _, rec := range records {
		tasks = append(tasks, rec.model())
	}
	return tasks, nil
}

// FindByID returns ErrNotFound for unknown ids.
func (r *TaskRepository) FindByID(ctx context.Context, id uint) (*model.Task, error) {
	var rec taskRecord
	err := r.db.WithContext(ctx).First(&rec, id).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, ErrNotFound
	case err != nil:
		return nil, fmt.Errorf("find task: %w", err)
	}
	task := rec.model()
	return &task, nil
}

func (r *TaskRepository) Create(ctx context.Context, task *model.Task) error {
	rec := newTaskRecord(*task)
	rec.ID = 0
	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	task.ID = rec.ID
	return nil
}

func (r *TaskRepository) Update(ctx context.Context, task model.Task) error {
	rec := newTaskRecord(task)
	res := r.db.WithContext(ctx).Model(&taskRecord{}).Where("id = ?", task.ID).
		Select("*").Omit("id", "created_at").Updates(&rec)
	if res.Error != nil {
		return fmt.Errorf("update task: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("update task %d: %w", task.ID, ErrNotFound)
	}
	return nil
}

func (r *TaskRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&taskRecord{}, id).Error; err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return nil
}
