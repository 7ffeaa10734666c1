package config

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"mealsnap/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("ANALYSIS_WEBHOOK_URL", "http://localhost:5678/webhook/analyze")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)
	t.Setenv("APP_TIMEZONE", "UTC")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, 60*time.Second, cfg.AnalysisTimeout)
	assert.Equal(t, "UTC", cfg.Timezone.String())
	assert.False(t, cfg.IsProduction())
	assert.Equal(t, "host=localhost user=postgres password=postgres dbname=mealsnap port=5432 sslmode=disable", cfg.DSN())
}

func TestLoad_Overrides(t *testing.T) {
	setRequired(t)
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("ANALYSIS_TIMEOUT_SECONDS", "15")
	t.Setenv("APP_TIMEZONE", "Europe/Berlin")
	t.Setenv("REKOGNITION_ENABLED", "true")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, 15*time.Second, cfg.AnalysisTimeout)
	assert.Equal(t, "Europe/Berlin", cfg.Timezone.String())
	assert.True(t, cfg.RekognitionEnabled)
}

func TestLoad_Invalid(t *testing.T) {
	t.Run("missing secret", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "")
		t.Setenv("ANALYSIS_WEBHOOK_URL", "http://x")
		_, err := Load()
		assert.ErrorContains(t, err, "JWT_SECRET")
	})
	t.Run("missing webhook", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "s")
		t.Setenv("ANALYSIS_WEBHOOK_URL", "")
		_, err := Load()
		assert.ErrorContains(t, err, "ANALYSIS_WEBHOOK_URL")
	})
	t.Run("bad timezone", func(t *testing.T) {
		setRequired(t)
		t.Setenv("APP_TIMEZONE", "Mars/Olympus")
		_, err := Load()
		assert.ErrorContains(t, err, "APP_TIMEZONE")
	})
	t.Run("bad driver", func(t *testing.T) {
		setRequired(t)
		t.Setenv("APP_TIMEZONE", "UTC")
		t.Setenv("DB_DRIVER", "mysql")
		_, err := Load()
		assert.ErrorContains(t, err, "DB_DRIVER")
	})
}

func TestInitDB_SQLite(t *testing.T) {
	cfg := &Config{DBDriver: "sqlite", DBPath: filepath.Join(t.TempDir(), "local.db")}
	db, err := InitDB(cfg)
	require.NoError(t, err)

	for _, m := range []any{&models.User{}, &models.Meal{}, &models.UserPreferences{}} {
		assert.True(t, db.Migrator().HasTable(m))
	}
}

func TestLoadAWS_Disabled(t *testing.T) {
	_, ok, err := LoadAWS(context.Background(), &Config{})
	require.NoError(t, err)
	assert.False(t, ok)
}
