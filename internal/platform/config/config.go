package config

import (
	"fmt"
	"log"
	"time"

	"github.com/innkeep/pms_backend/internal/utils/calendar"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL   string
	Port          string
	IsProduction  bool
	EnableDBCheck bool

	// MaxAvailabilityHorizonDays caps how many nights a single availability
	// query or reservation may span.
	MaxAvailabilityHorizonDays int

	// BusinessDayCutover is the wall-clock offset past midnight at which the
	// business date rolls over.
	BusinessDayCutover time.Duration

	// NoShowGraceDays widens the no-show window: a confirmed booking is only
	// marked no-show once arrival + grace is strictly before the audited date.
	NoShowGraceDays int

	// NightAuditCron is the cron expression (with seconds) for the scheduled
	// audit trigger. EnableNightAuditScheduler turns the trigger on.
	NightAuditCron            string
	EnableNightAuditScheduler bool

	// RateLimit is a ulule/limiter formatted rate, e.g. "100-M".
	RateLimit string
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("ENABLE_DB_CHECK", false)
	viper.SetDefault("MAX_AVAILABILITY_HORIZON_DAYS", 365)
	viper.SetDefault("BUSINESS_DAY_CUTOVER", "04:00")
	viper.SetDefault("NO_SHOW_GRACE_DAYS", 0)
	viper.SetDefault("NIGHT_AUDIT_CRON", "0 0 4 * * *")
	viper.SetDefault("ENABLE_NIGHT_AUDIT_SCHEDULER", true)
	viper.SetDefault("RATE_LIMIT", "100-M")

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.Port = viper.GetString("PORT")
	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")
	cfg.EnableDBCheck = viper.GetBool("ENABLE_DB_CHECK")

	cfg.MaxAvailabilityHorizonDays = viper.GetInt("MAX_AVAILABILITY_HORIZON_DAYS")
	if cfg.MaxAvailabilityHorizonDays <= 0 {
		return nil, fmt.Errorf("MAX_AVAILABILITY_HORIZON_DAYS must be positive, got %d", cfg.MaxAvailabilityHorizonDays)
	}

	cutover, err := calendar.ParseCutover(viper.GetString("BUSINESS_DAY_CUTOVER"))
	if err != nil {
		return nil, fmt.Errorf("invalid BUSINESS_DAY_CUTOVER: %w", err)
	}
	cfg.BusinessDayCutover = cutover

	cfg.NoShowGraceDays = viper.GetInt("NO_SHOW_GRACE_DAYS")
	if cfg.NoShowGraceDays < 0 {
		return nil, fmt.Errorf("NO_SHOW_GRACE_DAYS must not be negative, got %d", cfg.NoShowGraceDays)
	}

	cfg.NightAuditCron = viper.GetString("NIGHT_AUDIT_CRON")
	cfg.EnableNightAuditScheduler = viper.GetBool("ENABLE_NIGHT_AUDIT_SCHEDULER")
	cfg.RateLimit = viper.GetString("RATE_LIMIT")

	return cfg, nil
}
