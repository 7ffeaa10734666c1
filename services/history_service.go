package services

import (
	"context"
	"sort"
	"time"

	"mealsnap/models"
	"mealsnap/utils"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// SortOrder is the display order of day buckets.
type SortOrder string

const (
	NewestFirst SortOrder = "desc"
	OldestFirst SortOrder = "asc"
)

// ParseSortOrder reads "asc" as OldestFirst and anything else as NewestFirst.
func ParseSortOrder(s string) SortOrder {
	if SortOrder(s) == OldestFirst {
		return OldestFirst
	}
	return NewestFirst
}

// DayBucket groups the meals of one calendar date.
type DayBucket struct {
	Date   string        `json:"date"`
	Label  string        `json:"label"`
	Meals  []models.Meal `json:"meals"`
	Totals models.Totals `json:"totals"`
}

// Navigation tells clients which neighbouring weeks they may open.
type Navigation struct {
	CanGoBack    bool    `json:"can_go_back"`
	CanGoForward bool    `json:"can_go_forward"`
	PrevStart    string  `json:"prev_start"`
	NextStart    *string `json:"next_start"`
}

type WeekView struct {
	WeekStart     string      `json:"week_start"`
	WeekEnd       string      `json:"week_end"`
	Label         string      `json:"label"`
	RangeLabel    string      `json:"range_label"`
	IsCurrentWeek bool        `json:"is_current_week"`
	Order         SortOrder   `json:"order"`
	Days          []DayBucket `json:"days"`
	WeekTotal     float64     `json:"week_total"`
	DailyAverage  float64     `json:"daily_average"`
	// PreviousAverage and AverageDelta are nil when the previous week has no
	// meals or could not be fetched. A zero delta means "same as last week".
	PreviousAverage *float64   `json:"previous_average"`
	AverageDelta    *float64   `json:"average_delta"`
	Navigation      Navigation `json:"navigation"`
}

// GroupByDate buckets meals by calendar date. Only dates with at least one
// meal get a bucket. Meals inside a bucket are ordered by creation time,
// buckets newest date first.
func GroupByDate(meals []models.Meal) []DayBucket {
	idx := map[string]*DayBucket{}
	for _, m := range meals {
		b, ok := idx[m.Date]
		if !ok {
			b = &DayBucket{Date: m.Date, Label: m.Date}
			if d, err := utils.ParseDate(m.Date); err == nil {
				b.Label = utils.DayLabel(d)
			}
			idx[m.Date] = b
		}
		b.Meals = append(b.Meals, m)
		b.Totals = b.Totals.Add(m.Totals())
	}

	out := make([]DayBucket, 0, len(idx))
	for _, b := range idx {
		sort.SliceStable(b.Meals, func(i, j int) bool {
			return b.Meals[i].CreatedAt.Before(b.Meals[j].CreatedAt)
		})
		out = append(out, *b)
	}
	SortDays(out, NewestFirst)
	return out
}

// SortDays orders buckets by calendar date only.
func SortDays(days []DayBucket, order SortOrder) {
	sort.Slice(days, func(i, j int) bool {
		if order == OldestFirst {
			return days[i].Date < days[j].Date
		}
		return days[i].Date > days[j].Date
	})
}

// WeekStats is the calorie summary of one week window.
type WeekStats struct {
	Total         float64 `json:"total"`
	DailyAverage  float64 `json:"daily_average"`
	PopulatedDays int     `json:"populated_days"`
}

// ComputeWeekStats averages over days that have meals, not over seven.
func ComputeWeekStats(days []DayBucket) WeekStats {
	if len(days) == 0 {
		return WeekStats{}
	}
	var total float64
	for _, d := range days {
		total += d.Totals.Calories
	}
	return WeekStats{
		Total:         total,
		DailyAverage:  utils.RoundKcal(total / float64(len(days))),
		PopulatedDays: len(days),
	}
}

// PreviousWeekAverage averages calories over the distinct dates present in
// meals. ok is false when there are no meals at all.
func PreviousWeekAverage(meals []models.Meal) (avg float64, ok bool) {
	if len(meals) == 0 {
		return 0, false
	}
	var total float64
	dates := map[string]struct{}{}
	for _, m := range meals {
		total += m.TotalCalories
		dates[m.Date] = struct{}{}
	}
	return utils.RoundKcal(total / float64(len(dates))), true
}

// HistoryService builds week views from stored meals. It holds no per-user
// state; see HistoryNavigator for live sessions.
type HistoryService struct {
	store MealStore
	prefs *PreferencesService
	clock utils.Clock
	log   *zap.Logger
}

func NewHistoryService(store MealStore, prefs *PreferencesService, clock utils.Clock, log *zap.Logger) *HistoryService {
	return &HistoryService{store: store, prefs: prefs, clock: clock, log: log.Named("history")}
}

// CurrentWeekStart is the start of the week containing today.
func (s *HistoryService) CurrentWeekStart(weekStartDay int) time.Time {
	return utils.WeekStart(s.clock.Today(), weekStartDay)
}

// Week builds the view for the week containing start (the current week when
// start is nil) using the user's week-start preference.
func (s *HistoryService) Week(ctx context.Context, userID uint, start *time.Time, order SortOrder) *WeekView {
	prefs := s.prefs.Resolve(ctx, userID)
	anchor := s.clock.Today()
	if start != nil {
		anchor = *start
	}
	return s.weekFor(ctx, userID, utils.WeekStart(anchor, prefs.WeekStartDay), prefs.WeekStartDay, order)
}

// weekFor never fails. A primary fetch error yields an empty week; a
// comparison fetch error only drops the delta.
func (s *HistoryService) weekFor(ctx context.Context, userID uint, start time.Time, weekStartDay int, order SortOrder) *WeekView {
	current := s.CurrentWeekStart(weekStartDay)
	if start.After(current) {
		start = current
	}
	end := utils.WeekEnd(start)
	prevStart := utils.AddDays(start, -7)
	prevEnd := utils.AddDays(start, -1)

	var (
		meals, prevMeals []models.Meal
		err, prevErr     error
	)
	var g errgroup.Group
	g.Go(func() error {
		meals, err = s.store.ListByRange(ctx, userID, start, end)
		return nil
	})
	g.Go(func() error {
		prevMeals, prevErr = s.store.ListByRange(ctx, userID, prevStart, prevEnd)
		return nil
	})
	_ = g.Wait()

	isCurrent := utils.FormatDate(start) == utils.FormatDate(current)
	view := &WeekView{
		WeekStart:     utils.FormatDate(start),
		WeekEnd:       utils.FormatDate(end),
		RangeLabel:    utils.WeekLabel(start),
		Label:         utils.WeekLabel(start),
		IsCurrentWeek: isCurrent,
		Order:         order,
		Days:          []DayBucket{},
		Navigation: Navigation{
			CanGoBack:    true,
			CanGoForward: !isCurrent,
			PrevStart:    utils.FormatDate(prevStart),
		},
	}
	if isCurrent {
		view.Label = "This week"
	} else {
		next := utils.FormatDate(utils.AddDays(start, 7))
		view.Navigation.NextStart = &next
	}

	if err != nil {
		s.log.Error("failed to fetch week", zap.Uint("user_id", userID), zap.String("week_start", view.WeekStart), zap.Error(err))
		return view
	}

	view.Days = GroupByDate(meals)
	SortDays(view.Days, order)
	stats := ComputeWeekStats(view.Days)
	view.WeekTotal = stats.Total
	view.DailyAverage = stats.DailyAverage

	if prevErr != nil {
		s.log.Warn("failed to fetch comparison week", zap.Uint("user_id", userID), zap.String("week_start", utils.FormatDate(prevStart)), zap.Error(prevErr))
		return view
	}
	if prevAvg, ok := PreviousWeekAverage(prevMeals); ok {
		delta := stats.DailyAverage - prevAvg
		view.PreviousAverage = &prevAvg
		view.AverageDelta = &delta
	}
	return view
}
