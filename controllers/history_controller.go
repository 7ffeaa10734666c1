package controllers

import (
	"net/http"
	"time"

	"mealsnap/services"
	"mealsnap/utils"

	"github.com/gin-gonic/gin"
)

type HistoryController struct {
	History *services.HistoryService
}

func NewHistoryController(h *services.HistoryService) *HistoryController {
	return &HistoryController{History: h}
}

// GET /api/history/week?start=YYYY-MM-DD&order=asc|desc
//
// start may be any day of the wanted week; weeks after the current one are
// clamped to the current one.
func (h *HistoryController) GetWeek(c *gin.Context) {
	uid, ok := userIDFromCtx(c)
	if !ok {
		unauthorized(c)
		return
	}

	var start *time.Time
	if v := c.Query("start"); v != "" {
		d, err := utils.ParseDate(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		start = &d
	}
	order := services.ParseSortOrder(c.DefaultQuery("order", string(services.NewestFirst)))

	c.JSON(http.StatusOK, h.History.Week(c.Request.Context(), uid, start, order))
}
