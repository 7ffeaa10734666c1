package services

import (
	"context"
	"fmt"

	"mealsnap/models"
	"mealsnap/utils"

	"go.uber.org/zap"
)

// SaveMealRequest is what the client confirms after an analysis.
type SaveMealRequest struct {
	MealType   models.MealType   `json:"meal_type" binding:"required"`
	Foods      []models.FoodItem `json:"foods"`
	Confidence string            `json:"confidence"`
	Notes      string            `json:"notes"`
	Image      string            `json:"image,omitempty"`
}

type MealService struct {
	store  MealStore
	photos PhotoStore
	hub    *RealtimeHub
	clock  utils.Clock
	log    *zap.Logger
}

// NewMealService wires the meal write path. photos and hub may be nil.
func NewMealService(store MealStore, photos PhotoStore, hub *RealtimeHub, clock utils.Clock, log *zap.Logger) *MealService {
	return &MealService{store: store, photos: photos, hub: hub, clock: clock, log: log.Named("meals")}
}

// Save stores a meal dated today. Totals are summed from the foods here and
// frozen; any totals the client computed are ignored.
func (s *MealService) Save(ctx context.Context, userID uint, req SaveMealRequest) (*models.Meal, error) {
	if userID == 0 {
		return nil, ErrNotSignedIn
	}
	if !req.MealType.Valid() {
		return nil, fmt.Errorf("%w: unknown meal type %q", ErrInvalidMeal, req.MealType)
	}

	foods := make([]models.FoodItem, 0, len(req.Foods))
	for _, f := range req.Foods {
		if f.Calories < 0 || f.Protein < 0 || f.Carbs < 0 || f.Fat < 0 {
			return nil, fmt.Errorf("%w: negative nutrition value for %q", ErrInvalidMeal, f.Name)
		}
		foods = append(foods, f)
	}

	now := s.clock.Now()
	meal := &models.Meal{
		UserID:     userID,
		Date:       utils.FormatDate(utils.DateOf(now)),
		CreatedAt:  now,
		MealType:   req.MealType,
		Foods:      foods,
		Confidence: req.Confidence,
		Notes:      req.Notes,
	}
	meal.SetTotals(models.SumFoods(foods))

	if req.Image != "" && s.photos != nil {
		url, err := s.photos.Upload(ctx, userID, req.Image)
		if err != nil {
			// the meal matters more than its picture
			s.log.Warn("photo upload failed", zap.Uint("user_id", userID), zap.Error(err))
		} else {
			meal.ImageURL = url
		}
	}

	if err := s.store.Insert(ctx, meal); err != nil {
		s.log.Error("failed to save meal", zap.Uint("user_id", userID), zap.Error(err))
		return nil, err
	}
	s.log.Info("meal saved",
		zap.Uint("user_id", userID),
		zap.String("meal_id", meal.ID),
		zap.String("date", meal.Date),
		zap.Float64("calories", meal.TotalCalories))

	s.publish(userID, MealEvent{Kind: EventMealCreated, MealID: meal.ID, Date: meal.Date}, nil)
	return meal, nil
}

// Delete removes one of the user's meals. origin is the realtime connection
// that asked for it, if any, so it is not notified of its own change.
func (s *MealService) Delete(ctx context.Context, userID uint, mealID string, origin *WSClient) error {
	if userID == 0 {
		return ErrNotSignedIn
	}
	if err := s.store.Delete(ctx, userID, mealID); err != nil {
		return err
	}
	s.log.Info("meal deleted", zap.Uint("user_id", userID), zap.String("meal_id", mealID))
	s.publish(userID, MealEvent{Kind: EventMealDeleted, MealID: mealID}, origin)
	return nil
}

func (s *MealService) publish(userID uint, ev MealEvent, origin *WSClient) {
	if s.hub != nil {
		s.hub.Publish(userID, ev, origin)
	}
}

// MealRemover deletes a user's meal.
type MealRemover interface {
	Delete(ctx context.Context, userID uint, mealID string) error
}

type connectionRemover struct {
	svc    *MealService
	origin *WSClient
}

func (r connectionRemover) Delete(ctx context.Context, userID uint, mealID string) error {
	return r.svc.Delete(ctx, userID, mealID, r.origin)
}

// RemoverFor returns a MealRemover that attributes deletions to origin.
func (s *MealService) RemoverFor(origin *WSClient) MealRemover {
	return connectionRemover{svc: s, origin: origin}
}
