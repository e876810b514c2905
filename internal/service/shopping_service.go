package service

import (
	"context"
	"fmt"
	"strings"

	"homeboard/internal/logger"
	"homeboard/internal/model"
	"homeboard/internal/store"
)

// CourseInput holds the fields of the shopping form.
type CourseInput struct {
	Title    string
	Quantity string
	Category string
	Note     string
}

// CategoryGroup is one aisle of the shopping list.
type CategoryGroup struct {
	Category model.Category
	Items    []model.CourseItem
}

// ClearReport tells what a clear-bought run removed.
type ClearReport struct {
	Deleted int    `json:"deleted"`
	Failed  []uint `json:"failed,omitempty"`
}

// ShoppingService manages the shared shopping list.
type ShoppingService struct {
	store store.Store
}

func NewShoppingService(st store.Store) *ShoppingService {
	return &ShoppingService{store: st}
}

func (s *ShoppingService) List(ctx context.Context) ([]model.CourseItem, error) {
	return s.store.ListCourses(ctx)
}

// Open returns the items not bought yet, grouped by category in display
// order. Empty categories are omitted.
func (s *ShoppingService) Open(ctx context.Context) ([]CategoryGroup, error) {
	items, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	var open []model.CourseItem
	for _, it := range items {
		if !it.Bought {
			open = append(open, it)
		}
	}
	return GroupByCategory(open), nil
}

// GroupByCategory buckets items following model.Categories.
func GroupByCategory(items []model.CourseItem) []CategoryGroup {
	buckets := make(map[model.Category][]model.CourseItem)
	for _, it := range items {
		c := model.ParseCategory(string(it.Category))
		buckets[c] = append(buckets[c], it)
	}
	var groups []CategoryGroup
	for _, c := range model.Categories {
		if len(buckets[c]) > 0 {
			groups = append(groups, CategoryGroup{Category: c, Items: buckets[c]})
		}
	}
	return groups
}

func (s *ShoppingService) Get(ctx context.Context, id uint) (*model.CourseItem, error) {
	items, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range items {
		if items[i].ID == id {
			return &items[i], nil
		}
	}
	return nil, fmt.Errorf("course %d: %w", id, ErrNotFound)
}

// Add creates an item. Unknown categories fall back to Autres.
func (s *ShoppingService) Add(ctx context.Context, input CourseInput) (*model.CourseItem, error) {
	item := model.CourseItem{
		Title:    strings.TrimSpace(input.Title),
		Quantity: strings.TrimSpace(input.Quantity),
		Category: model.ParseCategory(input.Category),
		Note:     strings.TrimSpace(input.Note),
	}
	if item.Title == "" {
		return nil, ErrEmptyTitle
	}
	if err := s.store.CreateCourse(ctx, &item); err != nil {
		return nil, fmt.Errorf("create course: %w", err)
	}
	return &item, nil
}

// ToggleBought flips the bought flag.
func (s *ShoppingService) ToggleBought(ctx context.Context, id uint) (*model.CourseItem, error) {
	item, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	item.Bought = !item.Bought
	if err := s.store.UpdateCourse(ctx, *item); err != nil {
		return nil, fmt.Errorf("update course: %w", err)
	}
	return item, nil
}

func (s *ShoppingService) Update(ctx context.Context, item model.CourseItem) error {
	item.Title = strings.TrimSpace(item.Title)
	if item.Title == "" {
		return ErrEmptyTitle
	}
	item.Category = model.ParseCategory(string(item.Category))
	if err := s.store.UpdateCourse(ctx, item); err != nil {
		return fmt.Errorf("update course: %w", err)
	}
	return nil
}

func (s *ShoppingService) Delete(ctx context.Context, id uint) error {
	if err := s.store.DeleteCourse(ctx, id); err != nil {
		return fmt.Errorf("delete course: %w", err)
	}
	return nil
}

// ClearBought removes every bought item, in one batch when the store
// supports it and item by item otherwise. Items that failed to delete are
// listed in the report.
func (s *ShoppingService) ClearBought(ctx context.Context) (ClearReport, error) {
	items, err := s.List(ctx)
	if err != nil {
		return ClearReport{}, err
	}
	var ids []uint
	for _, it := range items {
		if it.Bought {
			ids = append(ids, it.ID)
		}
	}
	if len(ids) == 0 {
		return ClearReport{}, nil
	}

	if bulk, ok := s.store.(store.BulkCourseDeleter); ok {
		n, err := bulk.DeleteCourses(ctx, ids)
		switch {
		case err == nil:
			return ClearReport{Deleted: n}, nil
		case !store.IsBulkUnsupported(err):
			return ClearReport{Failed: ids}, fmt.Errorf("clear bought: %w", err)
		}
	}

	var report ClearReport
	var lastErr error
	for _, id := range ids {
		if err := s.store.DeleteCourse(ctx, id); err != nil {
			logger.Warn("delete bought item failed", "id", id, "err", err)
			report.Failed = append(report.Failed, id)
			lastErr = err
			continue
		}
		report.Deleted++
	}
	if report.Deleted == 0 && lastErr != nil {
		return report, fmt.Errorf("clear bought: %w", lastErr)
	}
	return report, nil
}
