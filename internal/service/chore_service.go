package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"homeboard/internal/chore"
	"homeboard/internal/model"
	"homeboard/internal/store"
)

// ChoreInput holds the fields of the chore form.
type ChoreInput struct {
	Title string
	Every model.Periodicity
	Room  string
}

// ChoreStatus is a task with its progress at a given instant.
type ChoreStatus struct {
	Task model.Task
	chore.Status
}

// ChoreService wraps the recurring household tasks.
type ChoreService struct {
	store store.Store
}

func NewChoreService(st store.Store) *ChoreService {
	return &ChoreService{store: st}
}

// List returns the tasks with defaults filled in.
func (s *ChoreService) List(ctx context.Context, now time.Time) ([]model.Task, error) {
	tasks, err := s.store.ListTasks(ctx)
	if err != nil {
		return nil, err
	}
	for i := range tasks {
		chore.Normalize(&tasks[i], now)
	}
	return tasks, nil
}

// Statuses returns every task with its progress, most urgent first.
func (s *ChoreService) Statuses(ctx context.Context, now time.Time) ([]ChoreStatus, error) {
	tasks, err := s.List(ctx, now)
	if err != nil {
		return nil, err
	}
	statuses := make([]ChoreStatus, 0, len(tasks))
	for _, t := range tasks {
		statuses = append(statuses, ChoreStatus{Task: t, Status: chore.Progress(t, now)})
	}
	sort.SliceStable(statuses, func(i, j int) bool {
		if statuses[i].RemainingDays != statuses[j].RemainingDays {
			return statuses[i].RemainingDays < statuses[j].RemainingDays
		}
		return strings.ToLower(statuses[i].Task.Title) < strings.ToLower(statuses[j].Task.Title)
	})
	return statuses, nil
}

// Get finds a task by id.
func (s *ChoreService) Get(ctx context.Context, id uint, now time.Time) (*model.Task, error) {
	tasks, err := s.List(ctx, now)
	if err != nil {
		return nil, err
	}
	for i := range tasks {
		if tasks[i].ID == id {
			return &tasks[i], nil
		}
	}
	return nil, fmt.Errorf("task %d: %w", id, ErrNotFound)
}

// Add creates a task whose cycle started one day ago.
func (s *ChoreService) Add(ctx context.Context, input ChoreInput, now time.Time) (*model.Task, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, ErrEmptyTitle
	}
	every := input.Every
	if every.IsZero() {
		every = chore.DefaultPeriodicity
	}
	if every.Unit == "" {
		every.Unit = model.UnitDays
	}
	task := chore.NewTask(input.Title, every, input.Room, now)
	if err := s.store.CreateTask(ctx, &task); err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}
	return &task, nil
}

// Toggle flips the finished flag, restoring the previous cycle start when
// a task is un-finished.
func (s *ChoreService) Toggle(ctx context.Context, id uint, now time.Time) (*model.Task, error) {
	return s.apply(ctx, id, now, chore.ToggleFinished)
}

// Reset restarts the cycle now.
func (s *ChoreService) Reset(ctx context.Context, id uint, now time.Time) (*model.Task, error) {
	return s.apply(ctx, id, now, chore.ResetTimer)
}

func (s *ChoreService) apply(ctx context.Context, id uint, now time.Time, fn func(*model.Task, time.Time) *model.Task) (*model.Task, error) {
	task, err := s.Get(ctx, id, now)
	if err != nil {
		return nil, err
	}
	fn(task, now)
	if err := s.store.UpdateTask(ctx, *task); err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}
	return task, nil
}

// Update saves an edited task.
func (s *ChoreService) Update(ctx context.Context, task model.Task) error {
	task.Title = strings.TrimSpace(task.Title)
	task.Room = strings.TrimSpace(task.Room)
	if task.Title == "" {
		return ErrEmptyTitle
	}
	if err := s.store.UpdateTask(ctx, task); err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	return nil
}

func (s *ChoreService) Delete(ctx context.Context, id uint) error {
	if err := s.store.DeleteTask(ctx, id); err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return nil
}
