package services

import (
	"context"
	"errors"
	"testing"

	"mealsnap/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestDaily(store *fakeStore) *DailySummaryService {
	log := zap.NewNop()
	return NewDailySummaryService(store, NewPreferencesService(store, nil, log), testClock(), log)
}

func TestAggregateDay(t *testing.T) {
	got := AggregateDay([]models.Meal{
		mkMeal("a", uid, "2026-10-17", 8, 300, 20, 30, 10),
		mkMeal("b", uid, "2026-10-17", 12, 700, 40, 80, 25),
	})
	assert.Equal(t, 2, got.MealCount)
	assert.Equal(t, models.Totals{Calories: 1000, Protein: 60, Carbs: 110, Fat: 35}, got.Totals)

	assert.Equal(t, DayTotals{}, AggregateDay(nil))
}

func TestToday(t *testing.T) {
	svc := newTestDaily(newFakeStore(
		mkMeal("a", uid, "2026-10-17", 8, 500, 75, 50, 20),
		mkMeal("b", uid, "2026-10-17", 13, 1700, 100, 200, 60),
		mkMeal("y", uid, "2026-10-16", 13, 900, 0, 0, 0),
		mkMeal("x", uid+1, "2026-10-17", 13, 900, 0, 0, 0),
	))

	s := svc.Today(context.Background(), uid)

	assert.Equal(t, "2026-10-17", s.Date)
	assert.Equal(t, "Saturday 17 October 2026", s.Label)
	require.Len(t, s.Meals, 2)
	assert.Equal(t, 2200.0, s.Summary.Calories)
	assert.Equal(t, 2, s.Summary.MealCount)

	assert.Equal(t, 2000, s.Goals.CalorieTarget)
	assert.Equal(t, NutrientProgress{Consumed: 2200, Goal: 2000, Percent: 100}, s.Progress["calories"])
	assert.Equal(t, NutrientProgress{Consumed: 175, Goal: 150, Percent: 100}, s.Progress["protein"])
	assert.Equal(t, NutrientProgress{Consumed: 250, Goal: 200, Percent: 100}, s.Progress["carbs"])
	// 80 / 67
	assert.Equal(t, 100.0, s.Progress["fat"].Percent)
}

func TestToday_PartialProgress(t *testing.T) {
	svc := newTestDaily(newFakeStore(mkMeal("a", uid, "2026-10-17", 8, 500, 30, 50, 20)))
	s := svc.Today(context.Background(), uid)

	assert.Equal(t, 25.0, s.Progress["calories"].Percent)
	assert.Equal(t, 20.0, s.Progress["protein"].Percent)
	assert.Equal(t, 25.0, s.Progress["carbs"].Percent)
	assert.Equal(t, 29.85, s.Progress["fat"].Percent)
}

func TestToday_StoreFailureIsEmptyDay(t *testing.T) {
	store := newFakeStore(mkMeal("a", uid, "2026-10-17", 8, 500, 0, 0, 0))
	store.dateErr = errors.New("timeout")

	s := newTestDaily(store).Today(context.Background(), uid)

	assert.NotNil(t, s.Meals)
	assert.Empty(t, s.Meals)
	assert.Zero(t, s.Summary.Calories)
	assert.Zero(t, s.Progress["calories"].Percent)
}
