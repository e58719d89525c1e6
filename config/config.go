package config

import (
	"fmt"
	"os"

	"github.com/Gobusters/ectoenv"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	AppName    string `env:"APP_NAME" env-default:"clover"`
	LogLevel   string `env:"LOG_LEVEL" env-default:"info"`
	PrettyLogs bool   `env:"PRETTY_LOGS" env-default:"false"`

	// Identity resolution
	HighConfidenceThreshold   float64 `env:"HIGH_CONFIDENCE_THRESHOLD" env-default:"0.8" validate:"gte=0,lte=1"`
	MediumConfidenceThreshold float64 `env:"MEDIUM_CONFIDENCE_THRESHOLD" env-default:"0.5" validate:"gte=0,lte=1"`
	LowConfidenceThreshold    float64 `env:"LOW_CONFIDENCE_THRESHOLD" env-default:"0.3" validate:"gte=0,lte=1"`

	// Enrollment normalization
	GapThresholdDays int `env:"GAP_THRESHOLD_DAYS" env-default:"5" validate:"gte=0"`

	// Reconciliation sampling
	StudentSampleSize int   `env:"STUDENT_SAMPLE_SIZE" env-default:"10" validate:"gt=0"`
	GradeSampleSize   int   `env:"GRADE_SAMPLE_SIZE" env-default:"20" validate:"gt=0"`
	SamplingSeed      int64 `env:"SAMPLING_SEED" env-default:"0"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Load reads .env (when present), binds environment variables onto the
// config, and validates the result.
func Load() (*Config, error) {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return nil, fmt.Errorf("failed to load .env file: %w", err)
		}
	}

	var cfg Config
	if err := ectoenv.BindEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to bind environment variables: %w", err)
	}

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Default returns the configuration used when no environment is bound,
// mirroring the env-default tags. Tests and library consumers start here.
func Default() *Config {
	return &Config{
		AppName:                   "clover",
		LogLevel:                  "info",
		PrettyLogs:                false,
		HighConfidenceThreshold:   0.8,
		MediumConfidenceThreshold: 0.5,
		LowConfidenceThreshold:    0.3,
		GapThresholdDays:          5,
		StudentSampleSize:         10,
		GradeSampleSize:           20,
	}
}
