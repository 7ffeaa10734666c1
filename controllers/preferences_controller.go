package controllers

import (
	"net/http"

	"mealsnap/services"
	"mealsnap/utils"

	"github.com/gin-gonic/gin"
)

type PreferencesController struct {
	Prefs *services.PreferencesService
}

func NewPreferencesController(p *services.PreferencesService) *PreferencesController {
	return &PreferencesController{Prefs: p}
}

// GET /api/week-start-options
func WeekStartOptions(c *gin.Context) {
	c.JSON(http.StatusOK, utils.WeekStartOptions())
}

func (h *PreferencesController) Get(c *gin.Context) {
	uid, ok := userIDFromCtx(c)
	if !ok {
		unauthorized(c)
		return
	}
	p, err := h.Prefs.Get(c.Request.Context(), uid)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, services.NewPreferencesView(*p))
}

func (h *PreferencesController) UpdateWeekStart(c *gin.Context) {
	uid, ok := userIDFromCtx(c)
	if !ok {
		unauthorized(c)
		return
	}
	var req struct {
		WeekStartDay *int `json:"week_start_day" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	p, err := h.Prefs.SetWeekStartDay(c.Request.Context(), uid, *req.WeekStartDay, nil)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, services.NewPreferencesView(*p))
}

func (h *PreferencesController) UpdateGoals(c *gin.Context) {
	uid, ok := userIDFromCtx(c)
	if !ok {
		unauthorized(c)
		return
	}
	var req services.Goals
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	p, err := h.Prefs.SetGoals(c.Request.Context(), uid, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, services.NewPreferencesView(*p))
}
