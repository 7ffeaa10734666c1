package controllers

import (
	"errors"
	"net/http"

	"mealsnap/middlewares"
	"mealsnap/services"

	"github.com/gin-gonic/gin"
)

func userIDFromCtx(c *gin.Context) (uint, bool) {
	v, ok := c.Get(middlewares.UserIDKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok && id != 0
}

// statusFor maps service errors onto HTTP statuses.
func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrNotSignedIn):
		return http.StatusUnauthorized
	case errors.Is(err, services.ErrMealNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrInvalidMeal),
		errors.Is(err, services.ErrWeekStartDay),
		errors.Is(err, services.ErrInvalidGoals),
		errors.Is(err, services.ErrMacroSplit):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrAnalysisFailed):
		return http.StatusBadGateway
	case errors.Is(err, services.ErrEmailTaken):
		return http.StatusConflict
	case errors.Is(err, services.ErrInvalidCredentials):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, err error) {
	_ = c.Error(err)
	c.JSON(statusFor(err), gin.H{"error": err.Error()})
}

func unauthorized(c *gin.Context) {
	c.JSON(http.StatusUnauthorized, gin.H{"error": services.ErrNotSignedIn.Error()})
}

var errUnknownAction = errors.New("unknown action")
