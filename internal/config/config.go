// Package config provides application configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"log"

	"github.com/spf13/viper"
)

// Config holds application configuration values loaded from file or environment variables.
type Config struct {
	JWTSecret      string `mapstructure:"JWT_SECRET"`
	Port           string `mapstructure:"PORT"`
	DBHost         string `mapstructure:"DB_HOST"`
	DBPort         string `mapstructure:"DB_PORT"`
	DBUser         string `mapstructure:"DB_USER"`
	DBPassword     string `mapstructure:"DB_PASSWORD"`
	DBName         string `mapstructure:"DB_NAME"`
	DBSSLMode      string `mapstructure:"DB_SSLMODE"`
	RedisURL       string `mapstructure:"REDIS_URL"`
	AllowedOrigins string `mapstructure:"ALLOWED_ORIGINS"`
	Env            string `mapstructure:"APP_ENV"`

	// Media storage (dream imagery and audio recordings)
	MediaDir     string `mapstructure:"MEDIA_DIR"`
	MediaBaseURL string `mapstructure:"MEDIA_BASE_URL"`

	// Remote function endpoints (symbol analysis, checkout, video metadata)
	FunctionsBaseURL string `mapstructure:"FUNCTIONS_BASE_URL"`
	FunctionsAPIKey  string `mapstructure:"FUNCTIONS_API_KEY"`

	// Learning path catalog file
	LearningPathsFile string `mapstructure:"LEARNING_PATHS_FILE"`

	// Feature flags, e.g. "dream_analysis=on,audio_journals=25%"
	FeatureFlags string `mapstructure:"FEATURE_FLAGS"`

	// Tracing
	TracingEnabled  bool    `mapstructure:"TRACING_ENABLED"`
	TracingExporter string  `mapstructure:"TRACING_EXPORTER"`
	OTLPEndpoint    string  `mapstructure:"OTLP_ENDPOINT"`
	TracingSampler  float64 `mapstructure:"TRACING_SAMPLER_RATIO"`
}

// LoadConfig loads application configuration from file and environment variables.
func LoadConfig() (*Config, error) {
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")
	viper.AddConfigPath("../..")
	viper.SetConfigName("config")
	viper.SetConfigType("yml")
	viper.AutomaticEnv()

	// Initial read to get APP_ENV if set in base config.
	// The config file may not exist yet; env vars alone are fine.
	_ = viper.ReadInConfig()

	env := viper.GetString("APP_ENV")
	if env == "" {
		env = "development"
	}

	if env != "development" && env != "" {
		viper.SetConfigName("config." + env)
		if err := viper.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("required profile-specific config 'config.%s.yml' not found: %w", env, err)
		}
		log.Printf("Loaded profile-specific configuration: config.%s.yml", env)
	}

	// Development defaults; production must override the sensitive ones
	// (Validate enforces that).
	defaults := map[string]any{
		"PORT":                  "8480",
		"DB_HOST":               "localhost",
		"DB_PORT":               "5432",
		"DB_USER":               "user",
		"DB_PASSWORD":           "password",
		"DB_NAME":               "reverie",
		"DB_SSLMODE":            "disable",
		"REDIS_URL":             "localhost:6379",
		"JWT_SECRET":            "your-secret-key-change-in-production",
		"ALLOWED_ORIGINS":       "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173",
		"APP_ENV":               "development",
		"MEDIA_DIR":             "./media",
		"MEDIA_BASE_URL":        "/media",
		"FUNCTIONS_BASE_URL":    "http://localhost:9000/functions",
		"FUNCTIONS_API_KEY":     "",
		"LEARNING_PATHS_FILE":   "learning_paths.yml",
		"FEATURE_FLAGS":         "dream_analysis=on",
		"TRACING_ENABLED":       false,
		"TRACING_EXPORTER":      "stdout",
		"OTLP_ENDPOINT":         "localhost:4318",
		"TRACING_SAMPLER_RATIO": 1.0,
	}
	for key, value := range defaults {
		viper.SetDefault(key, value)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Validate ensures that required configuration values are present and meet security standards.
func (c *Config) Validate() error {
	if c.Port == "" {
		return errors.New("PORT is required")
	}
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.MediaDir == "" {
		return errors.New("MEDIA_DIR is required")
	}

	isProduction := c.Env == "production" || c.Env == "prod"

	if isProduction {
		if c.JWTSecret == "your-secret-key-change-in-production" {
			return errors.New("JWT_SECRET must be changed from the default value in production")
		}
		if len(c.JWTSecret) < 32 {
			return errors.New("JWT_SECRET must be at least 32 characters in production")
		}
		if c.DBPassword == "password" || c.DBPassword == "" {
			return errors.New("a strong DB_PASSWORD is required in production")
		}
		if c.DBSSLMode == "disable" || c.DBSSLMode == "" {
			log.Println("WARNING: DB_SSLMODE is 'disable' in production. It is highly recommended to use SSL for database connections.")
		}
		if c.AllowedOrigins == "*" {
			log.Println("WARNING: ALLOWED_ORIGINS is set to '*' in production. This is insecure.")
		}
	} else {
		if len(c.JWTSecret) < 32 {
			log.Println("WARNING: JWT_SECRET is shorter than 32 characters. Consider using a stronger secret for production.")
		}
	}

	return nil
}
