package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"homeboard/internal/logger"
	"homeboard/internal/mealplan"
	"homeboard/internal/model"
	"homeboard/internal/store"
)

// SweepReport tells what a retention sweep kept and removed.
type SweepReport struct {
	Kept    int    `json:"kept"`
	Deleted int    `json:"deleted"`
	Failed  []uint `json:"failed,omitempty"`
}

// MealService manages the weekly meal planner.
type MealService struct {
	store store.Store
}

func NewMealService(st store.Store) *MealService {
	return &MealService{store: st}
}

func (s *MealService) List(ctx context.Context) ([]model.Meal, error) {
	return s.store.ListMeals(ctx)
}

// ParseMoment accepts midi and soir in any case.
func ParseMoment(raw string) (model.Moment, error) {
	switch model.Moment(strings.ToLower(strings.TrimSpace(raw))) {
	case model.MomentLunch:
		return model.MomentLunch, nil
	case model.MomentDinner:
		return model.MomentDinner, nil
	}
	return "", ErrInvalidMoment
}

func buildMeal(day, moment, text string, weekOffset int) (model.Meal, error) {
	idx := mealplan.DayIndex(day)
	if idx < 0 {
		return model.Meal{}, fmt.Errorf("%q: %w", day, ErrInvalidDay)
	}
	m, err := ParseMoment(moment)
	if err != nil {
		return model.Meal{}, err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return model.Meal{}, ErrEmptyTitle
	}
	return model.Meal{Day: model.Weekdays[idx], Moment: m, Meal: text, WeekOffset: weekOffset}, nil
}

// Create plans a meal. weekOffset is 0 for the current week.
func (s *MealService) Create(ctx context.Context, day, moment, text string, weekOffset int) (*model.Meal, error) {
	meal, err := buildMeal(day, moment, text, weekOffset)
	if err != nil {
		return nil, err
	}
	if err := s.store.CreateMeal(ctx, &meal); err != nil {
		return nil, fmt.Errorf("create meal: %w", err)
	}
	return &meal, nil
}

func (s *MealService) Update(ctx context.Context, id uint, day, moment, text string, weekOffset int) (*model.Meal, error) {
	meal, err := buildMeal(day, moment, text, weekOffset)
	if err != nil {
		return nil, err
	}
	meal.ID = id
	if err := s.store.UpdateMeal(ctx, meal); err != nil {
		return nil, fmt.Errorf("update meal: %w", err)
	}
	return &meal, nil
}

func (s *MealService) Delete(ctx context.Context, id uint) error {
	if err := s.store.DeleteMeal(ctx, id); err != nil {
		return fmt.Errorf("delete meal: %w", err)
	}
	return nil
}

// Upcoming returns the agenda of the next days meals, today included.
func (s *MealService) Upcoming(ctx context.Context, now time.Time, days int) (mealplan.Agenda, error) {
	if days <= 0 {
		days = 7
	}
	meals, err := s.List(ctx)
	if err != nil {
		return mealplan.Agenda{}, err
	}
	return mealplan.GroupUpcoming(meals, now, days), nil
}

// Sweep deletes meals outside the current and next week.
func (s *MealService) Sweep(ctx context.Context, now time.Time) (SweepReport, error) {
	meals, err := s.List(ctx)
	if err != nil {
		return SweepReport{}, err
	}
	keep, drop := mealplan.PruneOldMeals(meals, now)
	report := SweepReport{Kept: len(keep)}
	for _, m := range drop {
		if err := s.store.DeleteMeal(ctx, m.ID); err != nil {
			logger.Warn("sweep meal failed", "id", m.ID, "err", err)
			report.Failed = append(report.Failed, m.ID)
			continue
		}
		report.Deleted++
	}
	if len(drop) > 0 {
		logger.Info("meal sweep done", "kept", report.Kept, "deleted", report.Deleted, "failed", len(report.Failed))
	}
	return report, nil
}
