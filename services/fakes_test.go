package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"mealsnap/models"
	"mealsnap/utils"

	"go.uber.org/zap"
)

// 2026-10-17 is a Saturday.
var testNow = time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)

func testClock() utils.FixedClock { return utils.FixedClock{At: testNow} }

func date(s string) time.Time {
	d, err := utils.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func mkMeal(id string, userID uint, day string, hour int, cal, protein, carbs, fat float64) models.Meal {
	d := date(day)
	m := models.Meal{
		ID:        id,
		UserID:    userID,
		Date:      day,
		CreatedAt: time.Date(d.Year(), d.Month(), d.Day(), hour, 0, 0, 0, time.UTC),
		MealType:  models.Lunch,
		Foods:     []models.FoodItem{{Name: id, Calories: cal, Protein: protein, Carbs: carbs, Fat: fat}},
	}
	m.SetTotals(models.Totals{Calories: cal, Protein: protein, Carbs: carbs, Fat: fat})
	return m
}

type fakeStore struct {
	mu    sync.Mutex
	meals []models.Meal
	prefs map[uint]models.UserPreferences

	// rangeErr, when set, decides the error for a ListByRange call.
	rangeErr  func(from, to time.Time) error
	rangeHook func(from, to time.Time)
	dateErr   error
	insertErr error
	prefsErr  error
	upserts   int
}

func newFakeStore(meals ...models.Meal) *fakeStore {
	return &fakeStore{meals: meals, prefs: map[uint]models.UserPreferences{}}
}

func (f *fakeStore) Insert(_ context.Context, meal *models.Meal) error {
	if meal.UserID == 0 {
		return ErrNotSignedIn
	}
	if f.insertErr != nil {
		return f.insertErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if meal.ID == "" {
		meal.ID = fmt.Sprintf("meal-%d", len(f.meals)+1)
	}
	f.meals = append(f.meals, *meal)
	return nil
}

func (f *fakeStore) ListByDate(_ context.Context, userID uint, d time.Time) ([]models.Meal, error) {
	if f.dateErr != nil {
		return nil, f.dateErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Meal
	for _, m := range f.meals {
		if m.UserID == userID && m.Date == utils.FormatDate(d) {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeStore) ListByRange(_ context.Context, userID uint, from, to time.Time) ([]models.Meal, error) {
	if f.rangeHook != nil {
		f.rangeHook(from, to)
	}
	if f.rangeErr != nil {
		if err := f.rangeErr(from, to); err != nil {
			return nil, err
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	lo, hi := utils.FormatDate(from), utils.FormatDate(to)
	var out []models.Meal
	for _, m := range f.meals {
		if m.UserID == userID && m.Date >= lo && m.Date <= hi {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeStore) Delete(_ context.Context, userID uint, mealID string) error {
	if userID == 0 {
		return ErrNotSignedIn
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, m := range f.meals {
		if m.ID == mealID && m.UserID == userID {
			f.meals = append(f.meals[:i], f.meals[i+1:]...)
			return nil
		}
	}
	return ErrMealNotFound
}

func (f *fakeStore) GetPreferences(_ context.Context, userID uint) (*models.UserPreferences, error) {
	if f.prefsErr != nil {
		return nil, f.prefsErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.prefs[userID]; ok {
		return &p, nil
	}
	d := models.DefaultPreferences(userID)
	return &d, nil
}

func (f *fakeStore) UpsertPreferences(_ context.Context, p *models.UserPreferences) error {
	if p.UserID == 0 {
		return ErrNotSignedIn
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.upserts++
	f.prefs[p.UserID] = *p
	return nil
}

func newTestHistory(store *fakeStore) *HistoryService {
	log := zap.NewNop()
	return NewHistoryService(store, NewPreferencesService(store, nil, log), testClock(), log)
}
