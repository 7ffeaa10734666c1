package controllers

import (
	"net/http"

	"mealsnap/models"
	"mealsnap/services"

	"github.com/gin-gonic/gin"
)

type MealController struct {
	Meals    *services.MealService
	Analysis *services.AnalysisService
	Daily    *services.DailySummaryService
}

func NewMealController(meals *services.MealService, analysis *services.AnalysisService, daily *services.DailySummaryService) *MealController {
	return &MealController{Meals: meals, Analysis: analysis, Daily: daily}
}

type analyzeInput struct {
	Image    string          `json:"image" binding:"required"`
	MealType models.MealType `json:"meal_type" binding:"required"`
}

// POST /api/meals/analyze
func (h *MealController) Analyze(c *gin.Context) {
	var req analyzeInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	res, err := h.Analysis.Analyze(c.Request.Context(), req.Image, req.MealType)
	if err != nil {
		_ = c.Error(err)
		c.JSON(statusFor(err), gin.H{"error": err.Error(), "retryable": statusFor(err) == http.StatusBadGateway})
		return
	}
	c.JSON(http.StatusOK, res)
}

// POST /api/meals
func (h *MealController) LogMeal(c *gin.Context) {
	uid, ok := userIDFromCtx(c)
	if !ok {
		unauthorized(c)
		return
	}
	var req services.SaveMealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	meal, err := h.Meals.Save(c.Request.Context(), uid, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, meal)
}

// GET /api/meals/today
func (h *MealController) Today(c *gin.Context) {
	uid, ok := userIDFromCtx(c)
	if !ok {
		unauthorized(c)
		return
	}
	c.JSON(http.StatusOK, h.Daily.Today(c.Request.Context(), uid))
}

// DELETE /api/meals/:id
func (h *MealController) DeleteMeal(c *gin.Context) {
	uid, ok := userIDFromCtx(c)
	if !ok {
		unauthorized(c)
		return
	}
	if err := h.Meals.Delete(c.Request.Context(), uid, c.Param("id"), nil); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GET /api/meal-types
func MealTypes(c *gin.Context) {
	out := make([]gin.H, 0, len(models.MealTypes))
	for _, t := range models.MealTypes {
		out = append(out, gin.H{"id": t, "label": t.Label()})
	}
	c.JSON(http.StatusOK, out)
}
