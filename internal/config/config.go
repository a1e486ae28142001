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
	Port                string  `mapstructure:"PORT"`
	Env                 string  `mapstructure:"APP_ENV"`
	DBHost              string  `mapstructure:"DB_HOST"`
	DBPort              string  `mapstructure:"DB_PORT"`
	DBUser              string  `mapstructure:"DB_USER"`
	DBPassword          string  `mapstructure:"DB_PASSWORD"`
	DBName              string  `mapstructure:"DB_NAME"`
	DBSSLMode           string  `mapstructure:"DB_SSLMODE"`
	RedisURL            string  `mapstructure:"REDIS_URL"`
	AllowedOrigins      string  `mapstructure:"ALLOWED_ORIGINS"`
	JWTSecret           string  `mapstructure:"JWT_SECRET"`
	JWTExpireHours      int     `mapstructure:"JWT_EXPIRE_HOURS"`
	JWTCookieExpireDays int     `mapstructure:"JWT_COOKIE_EXPIRE_DAYS"`
	GeocoderBaseURL     string  `mapstructure:"GEOCODER_BASE_URL"`
	GeocoderAPIKey      string  `mapstructure:"GEOCODER_API_KEY"`
	FileUploadDir       string  `mapstructure:"FILE_UPLOAD_DIR"`
	MaxFileUploadMB     int     `mapstructure:"MAX_FILE_UPLOAD_MB"`
	SMTPHost            string  `mapstructure:"SMTP_HOST"`
	SMTPPort            string  `mapstructure:"SMTP_PORT"`
	SMTPUser            string  `mapstructure:"SMTP_USER"`
	SMTPPassword        string  `mapstructure:"SMTP_PASSWORD"`
	FromEmail           string  `mapstructure:"FROM_EMAIL"`
	FromName            string  `mapstructure:"FROM_NAME"`
	TracingEnabled      bool    `mapstructure:"TRACING_ENABLED"`
	TracingExporter     string  `mapstructure:"TRACING_EXPORTER"`
	OTLPEndpoint        string  `mapstructure:"OTLP_ENDPOINT"`
	TracingSamplerRatio float64 `mapstructure:"TRACING_SAMPLER_RATIO"`
}

// LoadConfig loads application configuration from file and environment variables.
func LoadConfig() (*Config, error) {
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")
	viper.AddConfigPath("../..")
	viper.SetConfigName("config")
	viper.SetConfigType("yml")
	viper.AutomaticEnv()

	// Initial read to get APP_ENV if set in base config. The base file is
	// optional, so this error is ignored.
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

	// Set default values for development
	viper.SetDefault("PORT", "5000")
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_USER", "user")
	viper.SetDefault("DB_PASSWORD", "password")
	viper.SetDefault("DB_NAME", "campdir")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("REDIS_URL", "localhost:6379")
	viper.SetDefault("ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:3000")
	viper.SetDefault("JWT_SECRET", "your-secret-key-change-in-production")
	viper.SetDefault("JWT_EXPIRE_HOURS", 720)
	viper.SetDefault("JWT_COOKIE_EXPIRE_DAYS", 30)
	viper.SetDefault("GEOCODER_BASE_URL", "https://www.mapquestapi.com/geocoding/v1")
	viper.SetDefault("GEOCODER_API_KEY", "")
	viper.SetDefault("FILE_UPLOAD_DIR", "./public/uploads")
	viper.SetDefault("MAX_FILE_UPLOAD_MB", 1)
	viper.SetDefault("SMTP_HOST", "")
	viper.SetDefault("SMTP_PORT", "587")
	viper.SetDefault("SMTP_USER", "")
	viper.SetDefault("SMTP_PASSWORD", "")
	viper.SetDefault("FROM_EMAIL", "noreply@campdir.dev")
	viper.SetDefault("FROM_NAME", "CampDir")
	viper.SetDefault("TRACING_ENABLED", false)
	viper.SetDefault("TRACING_EXPORTER", "stdout")
	viper.SetDefault("OTLP_ENDPOINT", "localhost:4318")
	viper.SetDefault("TRACING_SAMPLER_RATIO", 1.0)

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
	if c.JWTExpireHours <= 0 {
		return errors.New("JWT_EXPIRE_HOURS must be positive")
	}
	if c.MaxFileUploadMB <= 0 {
		return errors.New("MAX_FILE_UPLOAD_MB must be positive")
	}

	if c.IsProduction() {
		if c.JWTSecret == "your-secret-key-change-in-production" {
			return errors.New("JWT_SECRET must be changed from the default value in production")
		}
		if len(c.JWTSecret) < 32 {
			return errors.New("JWT_SECRET must be at least 32 characters in production")
		}
		if c.DBPassword == "password" || c.DBPassword == "" {
			return errors.New("a strong DB_PASSWORD is required in production")
		}
		if c.GeocoderAPIKey == "" {
			return errors.New("GEOCODER_API_KEY is required in production")
		}
		if c.DBSSLMode == "disable" || c.DBSSLMode == "" {
			log.Println("WARNING: DB_SSLMODE is 'disable' in production. It is highly recommended to use SSL for database connections.")
		}
		if c.AllowedOrigins == "*" {
			log.Println("WARNING: ALLOWED_ORIGINS is set to '*' in production. This is insecure.")
		}
	} else if len(c.JWTSecret) < 32 {
		log.Println("WARNING: JWT_SECRET is shorter than 32 characters. Consider using a stronger secret for production.")
	}

	return nil
}

// IsProduction reports whether the app runs with a production profile.
func (c *Config) IsProduction() bool {
	return c.Env == "production" || c.Env == "prod"
}
