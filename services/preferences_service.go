package services

import (
	"context"

	"mealsnap/models"
	"mealsnap/utils"

	"go.uber.org/zap"
)

type PreferencesService struct {
	store MealStore
	hub   *RealtimeHub
	log   *zap.Logger
}

// NewPreferencesService builds the preferences service. hub may be nil.
func NewPreferencesService(store MealStore, hub *RealtimeHub, log *zap.Logger) *PreferencesService {
	return &PreferencesService{store: store, hub: hub, log: log.Named("preferences")}
}

type Goals struct {
	CalorieTarget int `json:"calorie_target" binding:"required"`
	ProteinPct    int `json:"protein_pct"`
	CarbsPct      int `json:"carbs_pct"`
	FatPct        int `json:"fat_pct"`
}

// PreferencesView is what clients get back: the stored values plus the
// derived gram targets.
type PreferencesView struct {
	models.UserPreferences
	Macros utils.MacroGrams `json:"macros"`
}

func NewPreferencesView(p models.UserPreferences) PreferencesView {
	return PreferencesView{
		UserPreferences: p,
		Macros:          utils.CalcMacroGrams(p.CalorieTarget, p.ProteinPct, p.CarbsPct, p.FatPct),
	}
}

func (s *PreferencesService) Get(ctx context.Context, userID uint) (*models.UserPreferences, error) {
	return s.store.GetPreferences(ctx, userID)
}

// Resolve never fails: store errors fall back to defaults.
func (s *PreferencesService) Resolve(ctx context.Context, userID uint) models.UserPreferences {
	p, err := s.store.GetPreferences(ctx, userID)
	if err != nil {
		s.log.Warn("falling back to default preferences", zap.Uint("user_id", userID), zap.Error(err))
		return models.DefaultPreferences(userID)
	}
	return *p
}

// SetWeekStartDay stores the new day and tells the user's other live
// sessions so they re-anchor. origin, if set, is not notified.
func (s *PreferencesService) SetWeekStartDay(ctx context.Context, userID uint, day int, origin *WSClient) (*models.UserPreferences, error) {
	if userID == 0 {
		return nil, ErrNotSignedIn
	}
	if !utils.ValidWeekStartDay(day) {
		return nil, ErrWeekStartDay
	}
	p, err := s.store.GetPreferences(ctx, userID)
	if err != nil {
		return nil, err
	}
	p.UserID = userID
	p.WeekStartDay = day
	if err := s.store.UpsertPreferences(ctx, p); err != nil {
		return nil, err
	}
	s.log.Info("week start day updated", zap.Uint("user_id", userID), zap.Int("day", day))
	if s.hub != nil {
		s.hub.Publish(userID, MealEvent{Kind: EventPreferencesUpdated, WeekStartDay: &day}, origin)
	}
	return p, nil
}

// SetGoals validates before anything reaches the store.
func (s *PreferencesService) SetGoals(ctx context.Context, userID uint, g Goals) (*models.UserPreferences, error) {
	if userID == 0 {
		return nil, ErrNotSignedIn
	}
	if g.CalorieTarget <= 0 {
		return nil, ErrInvalidGoals
	}
	if err := utils.ValidateMacroSplit(g.ProteinPct, g.CarbsPct, g.FatPct); err != nil {
		return nil, err
	}
	p, err := s.store.GetPreferences(ctx, userID)
	if err != nil {
		return nil, err
	}
	p.UserID = userID
	p.CalorieTarget = g.CalorieTarget
	p.ProteinPct = g.ProteinPct
	p.CarbsPct = g.CarbsPct
	p.FatPct = g.FatPct
	if err := s.store.UpsertPreferences(ctx, p); err != nil {
		return nil, err
	}
	s.log.Info("goals updated", zap.Uint("user_id", userID), zap.Int("calorie_target", g.CalorieTarget))
	return p, nil
}
