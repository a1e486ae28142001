package config

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func devConfig() *Config {
	return &Config{
		Port:            "5000",
		Env:             "development",
		JWTSecret:       "your-secret-key-change-in-production",
		JWTExpireHours:  720,
		MaxFileUploadMB: 1,
		DBPassword:      "password",
	}
}

func TestValidateDevelopmentDefaults(t *testing.T) {
	require.NoError(t, devConfig().Validate())
}

func TestValidateRequiredFields(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"missing port", func(c *Config) { c.Port = "" }, "PORT is required"},
		{"missing jwt secret", func(c *Config) { c.JWTSecret = "" }, "JWT_SECRET is required"},
		{"zero expiry", func(c *Config) { c.JWTExpireHours = 0 }, "JWT_EXPIRE_HOURS must be positive"},
		{"zero upload limit", func(c *Config) { c.MaxFileUploadMB = 0 }, "MAX_FILE_UPLOAD_MB must be positive"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := devConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateProductionHardening(t *testing.T) {
	cfg := devConfig()
	cfg.Env = "production"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET must be changed")

	cfg.JWTSecret = "short"
	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least 32 characters")

	cfg.JWTSecret = strings.Repeat("s", 32)
	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DB_PASSWORD")

	cfg.DBPassword = "genuinely-strong-password"
	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GEOCODER_API_KEY")

	cfg.GeocoderAPIKey = "key-123"
	cfg.DBSSLMode = "require"
	require.NoError(t, cfg.Validate())
}
