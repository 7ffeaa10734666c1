package models

import "time"

const (
	DefaultWeekStartDay  = 1 // Monday
	DefaultCalorieTarget = 2000
	DefaultProteinPct    = 30
	DefaultCarbsPct      = 40
	DefaultFatPct        = 30
)

// UserPreferences is the per-user singleton holding the week-start day and
// daily goals. A missing row means "all defaults".
type UserPreferences struct {
	UserID        uint      `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	WeekStartDay  int       `gorm:"not null" json:"week_start_day"` // 0=Sunday..6=Saturday
	CalorieTarget int       `gorm:"not null" json:"calorie_target"`
	ProteinPct    int       `gorm:"not null" json:"protein_pct"`
	CarbsPct      int       `gorm:"not null" json:"carbs_pct"`
	FatPct        int       `gorm:"not null" json:"fat_pct"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func DefaultPreferences(userID uint) UserPreferences {
	return UserPreferences{
		UserID:        userID,
		WeekStartDay:  DefaultWeekStartDay,
		CalorieTarget: DefaultCalorieTarget,
		ProteinPct:    DefaultProteinPct,
		CarbsPct:      DefaultCarbsPct,
		FatPct:        DefaultFatPct,
	}
}
