package routes

import (
	"net/http"

	"mealsnap/controllers"
	"mealsnap/middlewares"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handlers struct {
	Auth        *controllers.AuthController
	Meals       *controllers.MealController
	History     *controllers.HistoryController
	Preferences *controllers.PreferencesController
	Realtime    *controllers.RealtimeController
}

func SetupRouter(h Handlers, jwtSecret string, log *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middlewares.RequestLogger(log))

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	// Public auth routes
	auth := r.Group("/auth")
	{
		auth.POST("/register", h.Auth.Register)
		auth.POST("/login", h.Auth.Login)
	}

	api := r.Group("/api")
	api.Use(middlewares.AuthMiddleware(jwtSecret))
	{
		api.GET("/meal-types", controllers.MealTypes)
		api.GET("/week-start-options", controllers.WeekStartOptions)

		api.POST("/meals/analyze", h.Meals.Analyze)
		api.POST("/meals", h.Meals.LogMeal)
		api.GET("/meals/today", h.Meals.Today)
		api.DELETE("/meals/:id", h.Meals.DeleteMeal)

		api.GET("/history/week", h.History.GetWeek)

		api.GET("/preferences", h.Preferences.Get)
		api.PUT("/preferences/week-start", h.Preferences.UpdateWeekStart)
		api.PUT("/preferences/goals", h.Preferences.UpdateGoals)

		api.GET("/ws/history", h.Realtime.HistoryWS)
	}

	return r
}
