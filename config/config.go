package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"mealsnap/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Config struct {
	Environment string
	Port        string

	// DBDriver is "postgres" or "sqlite"; DBPath is only used by sqlite.
	DBDriver   string
	DBPath     string
	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string

	JWTSecret string

	AnalysisWebhookURL string
	AnalysisTimeout    time.Duration

	// Timezone decides which calendar day "today" is.
	Timezone *time.Location

	AWSRegion          string
	S3Bucket           string
	CloudFrontURL      string
	RekognitionEnabled bool
}

func (c *Config) IsProduction() bool { return c.Environment == "production" }

// Load reads the environment, after an optional .env file.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Environment:        getEnv("ENVIRONMENT", "development"),
		Port:               getEnv("PORT", "8080"),
		DBDriver:           getEnv("DB_DRIVER", "postgres"),
		DBPath:             getEnv("DB_PATH", "mealsnap.db"),
		DBHost:             getEnv("DB_HOST", "localhost"),
		DBUser:             getEnv("DB_USER", "postgres"),
		DBPassword:         getEnv("DB_PASSWORD", "postgres"),
		DBName:             getEnv("DB_NAME", "mealsnap"),
		DBPort:             getEnv("DB_PORT", "5432"),
		JWTSecret:          getEnv("JWT_SECRET", ""),
		AnalysisWebhookURL: getEnv("ANALYSIS_WEBHOOK_URL", ""),
		AWSRegion:          getEnv("AWS_REGION", "us-east-1"),
		S3Bucket:           getEnv("S3_BUCKET", ""),
		CloudFrontURL:      getEnv("CLOUDFRONT_URL", ""),
		RekognitionEnabled: getEnv("REKOGNITION_ENABLED", "false") == "true",
	}

	secs, err := strconv.Atoi(getEnv("ANALYSIS_TIMEOUT_SECONDS", "60"))
	if err != nil || secs <= 0 {
		secs = 60
	}
	cfg.AnalysisTimeout = time.Duration(secs) * time.Second

	cfg.Timezone, err = time.LoadLocation(getEnv("APP_TIMEZONE", "Local"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_TIMEZONE: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET environment variable is required")
	}
	if c.AnalysisWebhookURL == "" {
		return fmt.Errorf("ANALYSIS_WEBHOOK_URL environment variable is required")
	}
	if c.DBDriver != "postgres" && c.DBDriver != "sqlite" {
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	return nil
}

func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort)
}

// InitDB connects to the configured database and migrates this service's
// tables.
func InitDB(cfg *Config) (*gorm.DB, error) {
	dialector := postgres.Open(cfg.DSN())
	if cfg.DBDriver == "sqlite" {
		dialector = sqlite.Open(cfg.DBPath)
	}
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Meal{},
		&models.UserPreferences{},
	); err != nil {
		return fmt.Errorf("AutoMigrate failed: %w", err)
	}
	return nil
}

// LoadAWS returns the shared AWS config, or ok=false when no AWS-backed
// feature is enabled.
func LoadAWS(ctx context.Context, cfg *Config) (awsCfg aws.Config, ok bool, err error) {
	if cfg.S3Bucket == "" && !cfg.RekognitionEnabled {
		return aws.Config{}, false, nil
	}
	awsCfg, err = awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
	if err != nil {
		return aws.Config{}, false, fmt.Errorf("unable to load AWS config: %w", err)
	}
	return awsCfg, true, nil
}

func getEnv(key, defaultValue string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return defaultValue
}
