package utils

import (
	"errors"
	"math"
)

// kcal per gram
const (
	kcalPerGramProtein = 4
	kcalPerGramCarbs   = 4
	kcalPerGramFat     = 9
)

var ErrMacroSplit = errors.New("macro percentages must add up to 100")

type MacroGrams struct {
	ProteinG int `json:"protein_g"`
	CarbsG   int `json:"carbs_g"`
	FatG     int `json:"fat_g"`
}

// CalcMacroGrams converts a calorie target and a percentage split into gram
// targets. The split is not validated here.
func CalcMacroGrams(calorieTarget, proteinPct, carbsPct, fatPct int) MacroGrams {
	grams := func(pct, kcalPerGram int) int {
		return roundHalfUp(float64(calorieTarget) * float64(pct) / 100 / float64(kcalPerGram))
	}
	return MacroGrams{
		ProteinG: grams(proteinPct, kcalPerGramProtein),
		CarbsG:   grams(carbsPct, kcalPerGramCarbs),
		FatG:     grams(fatPct, kcalPerGramFat),
	}
}

func ValidateMacroSplit(proteinPct, carbsPct, fatPct int) error {
	if proteinPct < 0 || carbsPct < 0 || fatPct < 0 || proteinPct+carbsPct+fatPct != 100 {
		return ErrMacroSplit
	}
	return nil
}

func roundHalfUp(v float64) int { return int(math.Floor(v + 0.5)) }

// RoundKcal rounds half-up to a whole number, for averages.
func RoundKcal(v float64) float64 { return math.Floor(v + 0.5) }

// Percent returns consumed/target as a percentage capped at 100.
func Percent(consumed, target float64) float64 {
	if target <= 0 {
		return 0
	}
	p := consumed / target * 100
	if p > 100 {
		return 100
	}
	return math.Round(p*100) / 100
}
