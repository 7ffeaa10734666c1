package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"mealsnap/models"
	"mealsnap/utils"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MealStore persists meals and per-user preferences. Dates are compared on the
// date-only column, never on timestamps.
type MealStore interface {
	Insert(ctx context.Context, meal *models.Meal) error
	ListByDate(ctx context.Context, userID uint, date time.Time) ([]models.Meal, error)
	// ListByRange returns meals whose date is in [from, to], inclusive.
	ListByRange(ctx context.Context, userID uint, from, to time.Time) ([]models.Meal, error)
	Delete(ctx context.Context, userID uint, mealID string) error
	// GetPreferences returns defaults when the user has never saved any.
	GetPreferences(ctx context.Context, userID uint) (*models.UserPreferences, error)
	UpsertPreferences(ctx context.Context, prefs *models.UserPreferences) error
}

type GormMealStore struct{ db *gorm.DB }

func NewGormMealStore(db *gorm.DB) *GormMealStore { return &GormMealStore{db: db} }

func (s *GormMealStore) Insert(ctx context.Context, meal *models.Meal) error {
	if meal.UserID == 0 {
		return ErrNotSignedIn
	}
	if err := s.db.WithContext(ctx).Create(meal).Error; err != nil {
		return fmt.Errorf("insert meal: %w", err)
	}
	return nil
}

func (s *GormMealStore) ListByDate(ctx context.Context, userID uint, date time.Time) ([]models.Meal, error) {
	var meals []models.Meal
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND date = ?", userID, utils.FormatDate(date)).
		Order("created_at ASC").
		Find(&meals).Error
	if err != nil {
		return nil, fmt.Errorf("list meals for %s: %w", utils.FormatDate(date), err)
	}
	return meals, nil
}

func (s *GormMealStore) ListByRange(ctx context.Context, userID uint, from, to time.Time) ([]models.Meal, error) {
	var meals []models.Meal
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND date >= ? AND date <= ?", userID, utils.FormatDate(from), utils.FormatDate(to)).
		Order("date DESC").
		Order("created_at ASC").
		Find(&meals).Error
	if err != nil {
		return nil, fmt.Errorf("list meals %s..%s: %w", utils.FormatDate(from), utils.FormatDate(to), err)
	}
	return meals, nil
}

func (s *GormMealStore) Delete(ctx context.Context, userID uint, mealID string) error {
	if userID == 0 {
		return ErrNotSignedIn
	}
	res := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", mealID, userID).
		Delete(&models.Meal{})
	if res.Error != nil {
		return fmt.Errorf("delete meal %s: %w", mealID, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrMealNotFound
	}
	return nil
}

func (s *GormMealStore) GetPreferences(ctx context.Context, userID uint) (*models.UserPreferences, error) {
	var p models.UserPreferences
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		d := models.DefaultPreferences(userID)
		return &d, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get preferences: %w", err)
	}
	return &p, nil
}

func (s *GormMealStore) UpsertPreferences(ctx context.Context, prefs *models.UserPreferences) error {
	if prefs.UserID == 0 {
		return ErrNotSignedIn
	}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			UpdateAll: true,
		}).
		Create(prefs).Error
	if err != nil {
		return fmt.Errorf("upsert preferences: %w", err)
	}
	return nil
}
