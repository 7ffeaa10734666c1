package main

import (
	"context"
	"log"

	"mealsnap/config"
	"mealsnap/controllers"
	"mealsnap/routes"
	"mealsnap/services"
	"mealsnap/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := utils.NewLogger(cfg.IsProduction())
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := config.InitDB(cfg)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}

	ctx := context.Background()
	clock := utils.NewSystemClock(cfg.Timezone)

	var (
		photos services.PhotoStore
		labels services.LabelDetector
	)
	awsCfg, awsOK, err := config.LoadAWS(ctx, cfg)
	if err != nil {
		logger.Fatal("aws", zap.Error(err))
	}
	if awsOK && cfg.S3Bucket != "" {
		photos = services.NewS3PhotoStore(awsCfg, cfg.S3Bucket, cfg.CloudFrontURL)
	}
	if awsOK && cfg.RekognitionEnabled {
		labels = services.NewRekognitionService(awsCfg)
	}

	store := services.NewGormMealStore(db)
	hub := services.NewRealtimeHub()
	prefs := services.NewPreferencesService(store, hub, logger)
	meals := services.NewMealService(store, photos, hub, clock, logger)
	daily := services.NewDailySummaryService(store, prefs, clock, logger)
	history := services.NewHistoryService(store, prefs, clock, logger)
	analysis := services.NewAnalysisService(cfg.AnalysisWebhookURL, cfg.AnalysisTimeout, labels, clock, logger)
	users := services.NewUserService(db, cfg.JWTSecret)

	r := routes.SetupRouter(routes.Handlers{
		Auth:        controllers.NewAuthController(users),
		Meals:       controllers.NewMealController(meals, analysis, daily),
		History:     controllers.NewHistoryController(history),
		Preferences: controllers.NewPreferencesController(prefs),
		Realtime:    controllers.NewRealtimeController(hub, history, meals, prefs, logger),
	}, cfg.JWTSecret, logger)

	logger.Info("listening", zap.String("port", cfg.Port), zap.String("timezone", cfg.Timezone.String()))
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
