package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"homeboard/internal/model"
)

// MealRepository handles the meal planner slots.
type MealRepository struct {
	db *gorm.DB
}

func NewMealRepository(db *gorm.DB) *MealRepository {
	return &MealRepository{db: db}
}

func (r *MealRepository) List(ctx context.Context) ([]model.Meal, error) {
	var records []mealRecord
	if err := r.db.WithContext(ctx).Order("id DESC").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("list meals: %w", err)
	}
	meals := make([]model.Meal, 0, len(records))
	for _, rec := range records {
		meals = append(meals, rec.model())
	}
	return meals, nil
}

func (r *MealRepository) FindByID(ctx context.Context, id uint) (*model.Meal, error) {
	var rec mealRecord
	err := r.db.WithContext(ctx).First(&rec, id).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, ErrNotFound
	case err != nil:
		return nil, fmt.Errorf("find meal: %w", err)
	}
	meal := rec.model()
	return &meal, nil
}

func (r *MealRepository) Create(ctx context.Context, meal *model.Meal) error {
	rec := newMealRecord(*meal)
	rec.ID = 0
	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return fmt.Errorf("create meal: %w", err)
	}
	meal.ID = rec.ID
	return nil
}

func (r *MealRepository) Update(ctx context.Context, meal model.Meal) error {
	rec := newMealRecord(meal)
	res := r.db.WithContext(ctx).Model(&mealRecord{}).Where("id = ?", meal.ID).
		Select("*").Omit("id", "created_at").Updates(&rec)
	if res.Error != nil {
		return fmt.Errorf("update meal: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("update meal %d: %w", meal.ID, ErrNotFound)
	}
	return nil
}

func (r *MealRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&mealRecord{}, id).Error; err != nil {
		return fmt.Errorf("delete meal: %w", err)
	}
	return nil
}
