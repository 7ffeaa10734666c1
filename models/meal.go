package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// MealType is one of the four fixed meal categories.
type MealType string

const (
	Breakfast MealType = "breakfast"
	Lunch     MealType = "lunch"
	Dinner    MealType = "dinner"
	Snack     MealType = "snack"
)

// MealTypes lists the categories in display order.
var MealTypes = []MealType{Breakfast, Lunch, Dinner, Snack}

var mealTypeLabels = map[MealType]string{
	Breakfast: "Breakfast",
	Lunch:     "Lunch",
	Dinner:    "Dinner",
	Snack:     "Snack",
}

func (t MealType) Valid() bool {
	_, ok := mealTypeLabels[t]
	return ok
}

// Label returns the display label, or the raw value for unknown types.
func (t MealType) Label() string {
	if l, ok := mealTypeLabels[t]; ok {
		return l
	}
	return string(t)
}

// FoodItem is one detected food inside a meal. It has no identity beyond its
// position in Meal.Foods.
type FoodItem struct {
	Name     string  `json:"name"`
	Quantity string  `json:"quantity,omitempty"`
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
}

// Totals is the calorie/macro sum of a set of foods or meals.
type Totals struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
}

func (t Totals) Add(o Totals) Totals {
	return Totals{
		Calories: t.Calories + o.Calories,
		Protein:  t.Protein + o.Protein,
		Carbs:    t.Carbs + o.Carbs,
		Fat:      t.Fat + o.Fat,
	}
}

// SumFoods adds up the nutrition of every food item.
func SumFoods(foods []FoodItem) Totals {
	var t Totals
	for _, f := range foods {
		t = t.Add(Totals{Calories: f.Calories, Protein: f.Protein, Carbs: f.Carbs, Fat: f.Fat})
	}
	return t
}

// Meal is one logged meal. The Total* columns are a denormalized copy of the
// foods' sum, written once at insert and never recomputed.
type Meal struct {
	ID        string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	UserID    uint      `gorm:"index:idx_meals_user_date;not null" json:"user_id"`
	Date      string    `gorm:"type:varchar(10);index:idx_meals_user_date;not null" json:"date"` // YYYY-MM-DD, local day at save time
	CreatedAt time.Time `json:"created_at"`
	MealType  MealType  `gorm:"type:varchar(16);not null" json:"meal_type"`

	Foods datatypes.JSONSlice[FoodItem] `json:"foods"`

	TotalCalories float64 `json:"total_calories"`
	TotalProtein  float64 `json:"total_protein"`
	TotalCarbs    float64 `json:"total_carbs"`
	TotalFat      float64 `json:"total_fat"`

	Confidence string `gorm:"type:varchar(32)" json:"confidence,omitempty"`
	Notes      string `gorm:"type:text" json:"notes,omitempty"`
	ImageURL   string `json:"image_url,omitempty"`
}

func (m *Meal) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

func (m Meal) Totals() Totals {
	return Totals{
		Calories: m.TotalCalories,
		Protein:  m.TotalProtein,
		Carbs:    m.TotalCarbs,
		Fat:      m.TotalFat,
	}
}

// SetTotals freezes the given totals onto the record.
func (m *Meal) SetTotals(t Totals) {
	m.TotalCalories = t.Calories
	m.TotalProtein = t.Protein
	m.TotalCarbs = t.Carbs
	m.TotalFat = t.Fat
}
