package services

import (
	"errors"

	"mealsnap/utils"
)

var (
	// ErrNotSignedIn is returned by every mutation attempted without a user.
	ErrNotSignedIn = errors.New("not signed in")

	ErrMealNotFound   = errors.New("meal not found")
	ErrInvalidMeal    = errors.New("invalid meal")
	ErrWeekStartDay   = errors.New("week start day must be between 0 (Sunday) and 6 (Saturday)")
	ErrInvalidGoals   = errors.New("calorie target must be positive")
	ErrMacroSplit     = utils.ErrMacroSplit
	ErrAnalysisFailed = errors.New("analysis failed")
)
