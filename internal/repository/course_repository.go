package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"homeboard/internal/model"
)

// CourseRepository manages the shopping list.
type CourseRepository struct {
	db *gorm.DB
}

func NewCourseRepository(db *gorm.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

func (r *CourseRepository) List(ctx context.Context) ([]model.CourseItem, error) {
	var records []courseRecord
	if err := r.db.WithContext(ctx).Order("id DESC").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	items := make([]model.CourseItem, 0, len(records))
	for _, rec := range records {
		items = append(items, rec.model())
	}
	return items, nil
}

func (r *CourseRepository) FindByID(ctx context.Context, id uint) (*model.CourseItem, error) {
	var rec courseRecord
	err := r.db.WithContext(ctx).First(&rec, id).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, ErrNotFound
	case err != nil:
		return nil, fmt.Errorf("find course: %w", err)
	}
	item := rec.model()
	return &item, nil
}

func (r *CourseRepository) Create(ctx context.Context, item *model.CourseItem) error {
	rec := newCourseRecord(*item)
	rec.ID = 0
	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return fmt.Errorf("create course: %w", err)
	}
	item.ID = rec.ID
	return nil
}

func (r *CourseRepository) Update(ctx context.Context, item model.CourseItem) error {
	rec := newCourseRecord(item)
	res := r.db.WithContext(ctx).Model(&courseRecord{}).Where("id = ?", item.ID).
		Select("*").Omit("id", "created_at").Updates(&rec)
	if res.Error != nil {
		return fmt.Errorf("update course: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("update course %d: %w", item.ID, ErrNotFound)
	}
	return nil
}

func (r *CourseRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&courseRecord{}, id).Error; err != nil {
		return fmt.Errorf("delete course: %w", err)
	}
	return nil
}

// DeleteMany removes the listed items in one transaction.
func (r *CourseRepository) DeleteMany(ctx context.Context, ids []uint) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	var deleted int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id IN ?", ids).Delete(&courseRecord{})
		deleted = res.RowsAffected
		return res.Error
	})
	if err != nil {
		return 0, fmt.Errorf("delete courses: %w", err)
	}
	return int(deleted), nil
}
