// Package local persists household data in a single JSON file holding
// independently keyed collections, the way the browser app used
// localStorage.
package local

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"

	"homeboard/internal/chore"
	"homeboard/internal/logger"
	"homeboard/internal/model"
	"homeboard/internal/store"
)

// Fixed keys of the persisted collections and settings.
const (
	TasksKey        = "home_tasks_v1"
	CoursesKey      = "home_courses_v1"
	MealsKey        = "home_meals_v1"
	ThemeKey        = "home_theme_v1"
	WeatherCacheKey = "home_weather_cache_v1"
	BotChatsKey     = "home_bot_chats_v1"
)

// ErrNotFound is returned when updating an unknown id.
var ErrNotFound = store.ErrNotFound

// Store is a file-backed key-value store. All methods are safe for
// concurrent use, including by other processes sharing the file: every
// call takes an advisory lock on "<path>.lock" and reloads the document.
type Store struct {
	path string
	now  func() time.Time
	file *flock.Flock

	mu   sync.Mutex
	data map[string]json.RawMessage
}

// Open loads path, creating its directory if needed. A missing file is an
// empty store; a malformed one is logged and treated as empty.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create store dir %q: %w", dir, err)
		}
	}

	s := &Store{
		path: path,
		now:  time.Now,
		file: flock.New(path + ".lock"),
		data: make(map[string]json.RawMessage),
	}
	unlock, err := s.lock(false)
	if err != nil {
		return nil, err
	}
	unlock()
	return s, nil
}

// lock serializes access within the process and, through the lock file,
// with other processes, then reloads the document. Writers take the lock
// exclusively so a read-modify-write never loses a concurrent update.
func (s *Store) lock(exclusive bool) (func(), error) {
	s.mu.Lock()
	var err error
	if exclusive {
		err = s.file.Lock()
	} else {
		err = s.file.RLock()
	}
	if err != nil {
		s.mu.Unlock()
		return nil, fmt.Errorf("lock store: %w", err)
	}
	unlock := func() {
		if err := s.file.Unlock(); err != nil {
			logger.Warn("unlock store", "path", s.path, "err", err)
		}
		s.mu.Unlock()
	}
	if err := s.reload(); err != nil {
		unlock()
		return nil, err
	}
	return unlock, nil
}

func (s *Store) reload() error {
	s.data = make(map[string]json.RawMessage)
	raw, err := os.ReadFile(s.path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return nil
	case err != nil:
		return fmt.Errorf("read store: %w", err)
	}
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, &s.data); err != nil {
		logger.Warn("local store is malformed, reading it as empty", "path", s.path, "err", err)
		s.data = make(map[string]json.RawMessage)
	}
	return nil
}

// Path returns the backing file.
func (s *Store) Path() string {
	return s.path
}

// Get decodes the value under key into out. It reports false when the key
// is absent.
func (s *Store) Get(key string, out any) (bool, error) {
	unlock, err := s.lock(false)
	if err != nil {
		return false, err
	}
	defer unlock()
	return s.get(key, out)
}

// Put stores value under key and flushes the file.
func (s *Store) Put(key string, value any) error {
	unlock, err := s.lock(true)
	if err != nil {
		return err
	}
	defer unlock()
	return s.put(key, value)
}

// Remove deletes key and flushes the file.
func (s *Store) Remove(key string) error {
	unlock, err := s.lock(true)
	if err != nil {
		return err
	}
	defer unlock()
	if _, ok := s.data[key]; !ok {
		return nil
	}
	delete(s.data, key)
	return s.flush()
}

func (s *Store) get(key string, out any) (bool, error) {
	raw, ok := s.data[key]
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return true, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

func (s *Store) put(key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	s.data[key] = raw
	return s.flush()
}

// flush writes the whole document to a temp file and renames it over the
// store so readers never see a partial file.
func (s *Store) flush() error {
	raw, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return fmt.Errorf("encode store: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".homeboard-*.json")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return fmt.Errorf("write store: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close store: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace store: %w", err)
	}
	return nil
}

// list decodes a collection, treating malformed data as empty.
func list[T any](s *Store, key string) []T {
	var items []T
	if _, err := s.get(key, &items); err != nil {
		logger.Warn("ignoring malformed collection", "key", key, "err", err)
		return []T{}
	}
	if items == nil {
		items = []T{}
	}
	return items
}

func nextID(ids []uint) uint {
	var highest uint
	for _, id := range ids {
		if id > highest {
			highest = id
		}
	}
	return highest + 1
}

// taskRecord reads every task shape written by earlier app versions.
type taskRecord struct {
	model.Task
	LegacyPrev *int64 `json:"_prevLastDone,omitempty"`
}

func (s *Store) tasks() []model.Task {
	records := list[taskRecord](s, TasksKey)
	now := s.now()
	tasks := make([]model.Task, 0, len(records))
	for _, r := range records {
		t := r.Task
		if t.PrevLastDone == nil && r.LegacyPrev != nil {
			t.PrevLastDone = r.LegacyPrev
		}
		tasks = append(tasks, *chore.Normalize(&t, now))
	}
	return tasks
}

func (s *Store) ListTasks(context.Context) ([]model.Task, error) {
	unlock, err := s.lock(false)
	if err != nil {
		return nil, err
	}
	defer unlock()
	return s.tasks(), nil
}

func (s *Store) CreateTask(_ context.Context, task *model.Task) error {
	unlock, err := s.lock(true)
	if err != nil {
		return err
	}
	defer unlock()
	tasks := s.tasks()
	ids := make([]uint, len(tasks))
	for i, t := range tasks {
		ids[i] = t.ID
	}
	task.ID = nextID(ids)
	return s.put(TasksKey, append(tasks, *task))
}

func (s *Store) UpdateTask(_ context.Context, task model.Task) error {
	unlock, err := s.lock(true)
	if err != nil {
		return err
	}
	defer unlock()
	tasks := s.tasks()
	for i := range tasks {
		if tasks[i].ID == task.ID {
			tasks[i] = task
			return s.put(TasksKey, tasks)
		}
	}
	return fmt.Errorf("update task %d: %w", task.ID, ErrNotFound)
}

func (s *Store) DeleteTask(_ context.Context, id uint) error {
	unlock, err := s.lock(true)
	if err != nil {
		return err
	}
	defer unlock()
	tasks := s.tasks()
	kept := tasks[:0]
	for _, t := range tasks {
		if t.ID != id {
			kept = append(kept, t)
		}
	}
	return s.put(TasksKey, kept)
}

func (s *Store) courses() []model.CourseItem {
	items := list[model.CourseItem](s, CoursesKey)
	for i := range items {
		items[i].Category = model.ParseCategory(string(items[i].Category))
	}
	return items
}

func (s *Store) ListCourses(context.Context) ([]model.CourseItem, error) {
	unlock, err := s.lock(false)
	if err != nil {
		return nil, err
	}
	defer unlock()
	return s.courses(), nil
}

func (s *Store) CreateCourse(_ context.Context, item *model.CourseItem) error {
	unlock, err := s.lock(true)
	if err != nil {
		return err
	}
	defer unlock()
	items := s.courses()
	ids := make([]uint, len(items))
	for i, c := range items {
		ids[i] = c.ID
	}
	item.ID = nextID(ids)
	return s.put(CoursesKey, append(items, *item))
}

func (s *Store) UpdateCourse(_ context.Context, item model.CourseItem) error {
	unlock, err := s.lock(true)
	if err != nil {
		return err
	}
	defer unlock()
	items := s.courses()
	for i := range items {
		if items[i].ID == item.ID {
			items[i] = item
			return s.put(CoursesKey, items)
		}
	}
	return fmt.Errorf("update course %d: %w", item.ID, ErrNotFound)
}

func (s *Store) DeleteCourse(ctx context.Context, id uint) error {
	_, err := s.DeleteCourses(ctx, []uint{id})
	return err
}

// DeleteCourses removes every listed item with a single write.
func (s *Store) DeleteCourses(_ context.Context, ids []uint) (int, error) {
	unlock, err := s.lock(true)
	if err != nil {
		return 0, err
	}
	defer unlock()
	drop := make(map[uint]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}
	items := s.courses()
	kept := items[:0]
	for _, c := range items {
		if !drop[c.ID] {
			kept = append(kept, c)
		}
	}
	deleted := len(items) - len(kept)
	if err := s.put(CoursesKey, kept); err != nil {
		return 0, err
	}
	return deleted, nil
}

// mealRecord also accepts the camel-cased offset of older versions.
type mealRecord struct {
	model.Meal
	LegacyOffset *int `json:"weekOffset,omitempty"`
}

func (s *Store) meals() []model.Meal {
	var raw []json.RawMessage
	if _, err := s.get(MealsKey, &raw); err != nil {
		logger.Warn("ignoring malformed collection", "key", MealsKey, "err", err)
		return []model.Meal{}
	}
	meals := make([]model.Meal, 0, len(raw))
	for _, item := range raw {
		var r mealRecord
		if err := json.Unmarshal(item, &r); err != nil {
			continue
		}
		if r.Meal.WeekOffset == 0 && r.LegacyOffset != nil {
			r.Meal.WeekOffset = *r.LegacyOffset
		}
		meals = append(meals, r.Meal)
	}
	return meals
}

func (s *Store) ListMeals(context.Context) ([]model.Meal, error) {
	unlock, err := s.lock(false)
	if err != nil {
		return nil, err
	}
	defer unlock()
	return s.meals(), nil
}

func (s *Store) CreateMeal(_ context.Context, meal *model.Meal) error {
	unlock, err := s.lock(true)
	if err != nil {
		return err
	}
	defer unlock()
	meals := s.meals()
	ids := make([]uint, len(meals))
	for i, m := range meals {
		ids[i] = m.ID
	}
	meal.ID = nextID(ids)
	return s.put(MealsKey, append(meals, *meal))
}

func (s *Store) UpdateMeal(_ context.Context, meal model.Meal) error {
	unlock, err := s.lock(true)
	if err != nil {
		return err
	}
	defer unlock()
	meals := s.meals()
	for i := range meals {
		if meals[i].ID == meal.ID {
			meals[i] = meal
			return s.put(MealsKey, meals)
		}
	}
	return fmt.Errorf("update meal %d: %w", meal.ID, ErrNotFound)
}

func (s *Store) DeleteMeal(_ context.Context, id uint) error {
	unlock, err := s.lock(true)
	if err != nil {
		return err
	}
	defer unlock()
	meals := s.meals()
	kept := meals[:0]
	for _, m := range meals {
		if m.ID != id {
			kept = append(kept, m)
		}
	}
	return s.put(MealsKey, kept)
}
