package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigMethods(t *testing.T) {
	t.Run("Addr returns formatted port", func(t *testing.T) {
		cfg := &Config{Port: 3000}
		assert.Equal(t, ":3000", cfg.Addr())
	})

	t.Run("OTPTTL converts minutes to duration", func(t *testing.T) {
		cfg := &Config{OTPTTLMinutes: 10}
		assert.Equal(t, 10*time.Minute, cfg.OTPTTL())
	})

	t.Run("SessionTTL converts hours to duration", func(t *testing.T) {
		cfg := &Config{SessionTTLHours: 24}
		assert.Equal(t, 24*time.Hour, cfg.SessionTTL())
	})
}

func TestValidate(t *testing.T) {
	t.Run("redis backend requires redis url", func(t *testing.T) {
		cfg := &Config{CacheBackend: "redis"}
		assert.Error(t, cfg.Validate())

		cfg.RedisURL = "redis://localhost:6379"
		assert.NoError(t, cfg.Validate())
	})

	t.Run("postgres and memory backends need no redis url", func(t *testing.T) {
		assert.NoError(t, (&Config{CacheBackend: "postgres"}).Validate())
		assert.NoError(t, (&Config{CacheBackend: "memory"}).Validate())
	})

	t.Run("unknown backend is rejected", func(t *testing.T) {
		cfg := &Config{CacheBackend: "memcached"}
		assert.Error(t, cfg.Validate())
	})
}

func TestLoad(t *testing.T) {
	originalEnv := map[string]string{
		"PORT":                os.Getenv("PORT"),
		"DATABASE_URL":        os.Getenv("DATABASE_URL"),
		"REDIS_URL":           os.Getenv("REDIS_URL"),
		"CACHE_BACKEND":       os.Getenv("CACHE_BACKEND"),
		"OTP_TTL_MINUTES":     os.Getenv("OTP_TTL_MINUTES"),
		"SESSION_TTL_HOURS":   os.Getenv("SESSION_TTL_HOURS"),
		"UPLOAD_DIR":          os.Getenv("UPLOAD_DIR"),
		"MAX_UPLOAD_BYTES":    os.Getenv("MAX_UPLOAD_BYTES"),
		"OTP_SEND_PER_MINUTE": os.Getenv("OTP_SEND_PER_MINUTE"),
		"LOG_LEVEL":           os.Getenv("LOG_LEVEL"),
	}

	defer func() {
		for k, v := range originalEnv {
			if v == "" {
				os.Unsetenv(k)
			} else {
				os.Setenv(k, v)
			}
		}
	}()

	t.Run("loads config with defaults", func(t *testing.T) {
		os.Setenv("DATABASE_URL", "postgres://localhost/test")
		os.Setenv("REDIS_URL", "redis://localhost:6379")
		os.Unsetenv("PORT")
		os.Unsetenv("CACHE_BACKEND")
		os.Unsetenv("OTP_TTL_MINUTES")
		os.Unsetenv("SESSION_TTL_HOURS")
		os.Unsetenv("UPLOAD_DIR")
		os.Unsetenv("MAX_UPLOAD_BYTES")
		os.Unsetenv("OTP_SEND_PER_MINUTE")
		os.Unsetenv("LOG_LEVEL")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, 8080, cfg.Port)
		assert.Equal(t, "redis", cfg.CacheBackend)
		assert.Equal(t, 10*time.Minute, cfg.OTPTTL())
		assert.Equal(t, 24*time.Hour, cfg.SessionTTL())
		assert.Equal(t, "uploads", cfg.UploadDir)
		assert.Equal(t, int64(10485760), cfg.MaxUploadBytes)
		assert.Equal(t, 3, cfg.OTPSendPerMinute)
		assert.Equal(t, "info", cfg.LogLevel)
	})

	t.Run("overrides from environment", func(t *testing.T) {
		os.Setenv("DATABASE_URL", "postgres://localhost/test")
		os.Setenv("PORT", "9090")
		os.Setenv("CACHE_BACKEND", "memory")
		os.Setenv("OTP_TTL_MINUTES", "5")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, 9090, cfg.Port)
		assert.Equal(t, "memory", cfg.CacheBackend)
		assert.Equal(t, 5*time.Minute, cfg.OTPTTL())
	})

	t.Run("fails without database url", func(t *testing.T) {
		os.Unsetenv("DATABASE_URL")

		_, err := Load()
		assert.Error(t, err)
	})
}
