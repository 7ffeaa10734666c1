package services

import (
	"context"

	"mealsnap/models"
	"mealsnap/utils"

	"go.uber.org/zap"
)

type DayTotals struct {
	models.Totals
	MealCount int `json:"meal_count"`
}

// AggregateDay sums the frozen totals of the given meals.
func AggregateDay(meals []models.Meal) DayTotals {
	var out DayTotals
	for _, m := range meals {
		out.Totals = out.Totals.Add(m.Totals())
	}
	out.MealCount = len(meals)
	return out
}

type NutrientProgress struct {
	Consumed float64 `json:"consumed"`
	Goal     float64 `json:"goal"`
	Percent  float64 `json:"percent"`
}

type TodaySummary struct {
	Date     string                      `json:"date"`
	Label    string                      `json:"label"`
	Meals    []models.Meal               `json:"meals"`
	Summary  DayTotals                   `json:"summary"`
	Goals    PreferencesView             `json:"goals"`
	Progress map[string]NutrientProgress `json:"progress"`
}

type DailySummaryService struct {
	store MealStore
	prefs *PreferencesService
	clock utils.Clock
	log   *zap.Logger
}

func NewDailySummaryService(store MealStore, prefs *PreferencesService, clock utils.Clock, log *zap.Logger) *DailySummaryService {
	return &DailySummaryService{store: store, prefs: prefs, clock: clock, log: log.Named("daily")}
}

// Today never fails: a store error yields an empty day.
func (s *DailySummaryService) Today(ctx context.Context, userID uint) *TodaySummary {
	today := s.clock.Today()

	meals, err := s.store.ListByDate(ctx, userID, today)
	if err != nil {
		s.log.Error("failed to fetch today's meals", zap.Uint("user_id", userID), zap.Error(err))
		meals = nil
	}
	if meals == nil {
		meals = []models.Meal{}
	}

	totals := AggregateDay(meals)
	goals := NewPreferencesView(s.prefs.Resolve(ctx, userID))

	return &TodaySummary{
		Date:    utils.FormatDate(today),
		Label:   today.Format("Monday 2 January 2006"),
		Meals:   meals,
		Summary: totals,
		Goals:   goals,
		Progress: map[string]NutrientProgress{
			"calories": progress(totals.Calories, float64(goals.CalorieTarget)),
			"protein":  progress(totals.Protein, float64(goals.Macros.ProteinG)),
			"carbs":    progress(totals.Carbs, float64(goals.Macros.CarbsG)),
			"fat":      progress(totals.Fat, float64(goals.Macros.FatG)),
		},
	}
}

func progress(consumed, goal float64) NutrientProgress {
	return NutrientProgress{Consumed: consumed, Goal: goal, Percent: utils.Percent(consumed, goal)}
}
