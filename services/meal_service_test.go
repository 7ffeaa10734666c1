package services

import (
	"context"
	"encoding/base64"
	"errors"
	"testing"
	"time"

	"mealsnap/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubPhotos struct {
	url   string
	err   error
	calls int
}

func (s *stubPhotos) Upload(context.Context, uint, string) (string, error) {
	s.calls++
	return s.url, s.err
}

func newTestMeals(store *fakeStore, photos PhotoStore, hub *RealtimeHub) *MealService {
	return NewMealService(store, photos, hub, testClock(), zap.NewNop())
}

func TestMealSave_FreezesTotals(t *testing.T) {
	store := newFakeStore()
	svc := newTestMeals(store, nil, nil)

	meal, err := svc.Save(context.Background(), uid, SaveMealRequest{
		MealType: models.Dinner,
		Foods: []models.FoodItem{
			{Name: "pasta", Calories: 520, Protein: 18, Carbs: 90, Fat: 9},
			{Name: "salad", Calories: 80, Protein: 2, Carbs: 10, Fat: 4},
		},
		Confidence: "high",
	})
	require.NoError(t, err)

	assert.Equal(t, "2026-10-17", meal.Date)
	assert.Equal(t, testNow, meal.CreatedAt)
	assert.Equal(t, models.Totals{Calories: 600, Protein: 20, Carbs: 100, Fat: 13}, meal.Totals())
	require.Len(t, store.meals, 1)
	assert.Equal(t, 600.0, store.meals[0].TotalCalories)
}

func TestMealSave_Validation(t *testing.T) {
	svc := newTestMeals(newFakeStore(), nil, nil)
	ctx := context.Background()

	_, err := svc.Save(ctx, 0, SaveMealRequest{MealType: models.Lunch})
	assert.ErrorIs(t, err, ErrNotSignedIn)

	_, err = svc.Save(ctx, uid, SaveMealRequest{MealType: "elevenses"})
	assert.ErrorIs(t, err, ErrInvalidMeal)

	_, err = svc.Save(ctx, uid, SaveMealRequest{MealType: models.Lunch, Foods: []models.FoodItem{{Name: "x", Fat: -1}}})
	assert.ErrorIs(t, err, ErrInvalidMeal)
}

func TestMealSave_EmptyFoodsIsZeroMeal(t *testing.T) {
	meal, err := newTestMeals(newFakeStore(), nil, nil).Save(context.Background(), uid, SaveMealRequest{MealType: models.Snack})
	require.NoError(t, err)
	assert.Equal(t, models.Totals{}, meal.Totals())
}

func TestMealSave_PhotoUpload(t *testing.T) {
	img := base64.StdEncoding.EncodeToString([]byte("img"))

	ok := &stubPhotos{url: "https://cdn.example.com/meal-photos/7/a.jpg"}
	meal, err := newTestMeals(newFakeStore(), ok, nil).Save(context.Background(), uid, SaveMealRequest{MealType: models.Lunch, Image: img})
	require.NoError(t, err)
	assert.Equal(t, ok.url, meal.ImageURL)

	failing := &stubPhotos{err: errors.New("access denied")}
	store := newFakeStore()
	meal, err = newTestMeals(store, failing, nil).Save(context.Background(), uid, SaveMealRequest{MealType: models.Lunch, Image: img})
	require.NoError(t, err, "a failed upload does not lose the meal")
	assert.Empty(t, meal.ImageURL)
	assert.Len(t, store.meals, 1)
	assert.Equal(t, 1, failing.calls)
}

func TestMealSave_StoreFailureIsSurfaced(t *testing.T) {
	store := newFakeStore()
	store.insertErr = errors.New("connection refused")
	hub := NewRealtimeHub()
	c := NewWSClient(uid)
	hub.Register(c)

	_, err := newTestMeals(store, nil, hub).Save(context.Background(), uid, SaveMealRequest{MealType: models.Lunch})
	assert.EqualError(t, err, "connection refused")
	assert.Empty(t, c.Events, "nothing is announced for a failed save")
}

func TestMealService_PublishesEvents(t *testing.T) {
	hub := NewRealtimeHub()
	mine, other, stranger := NewWSClient(uid), NewWSClient(uid), NewWSClient(uid+1)
	for _, c := range []*WSClient{mine, other, stranger} {
		hub.Register(c)
	}
	svc := newTestMeals(newFakeStore(), nil, hub)
	ctx := context.Background()

	meal, err := svc.Save(ctx, uid, SaveMealRequest{MealType: models.Lunch})
	require.NoError(t, err)
	for _, c := range []*WSClient{mine, other} {
		ev := receive(t, c)
		assert.Equal(t, MealEvent{Kind: EventMealCreated, MealID: meal.ID, Date: "2026-10-17"}, ev)
	}

	require.NoError(t, svc.RemoverFor(mine).Delete(ctx, uid, meal.ID))
	assert.Equal(t, EventMealDeleted, receive(t, other).Kind)
	assert.Empty(t, mine.Events, "the origin is not told about its own delete")
	assert.Empty(t, stranger.Events)
}

func TestMealDelete(t *testing.T) {
	store := newFakeStore(mkMeal("a", uid, "2026-10-17", 8, 100, 0, 0, 0))
	svc := newTestMeals(store, nil, nil)
	ctx := context.Background()

	assert.ErrorIs(t, svc.Delete(ctx, 0, "a", nil), ErrNotSignedIn)
	assert.ErrorIs(t, svc.Delete(ctx, uid+1, "a", nil), ErrMealNotFound)
	require.NoError(t, svc.Delete(ctx, uid, "a", nil))
	assert.ErrorIs(t, svc.Delete(ctx, uid, "a", nil), ErrMealNotFound)
}

func receive(t *testing.T, c *WSClient) MealEvent {
	t.Helper()
	select {
	case ev := <-c.Events:
		return ev
	case <-time.After(time.Second):
		t.Fatal("no event delivered")
		return MealEvent{}
	}
}
