package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Port             int    `env:"PORT" envDefault:"8080"`
	DatabaseURL      string `env:"DATABASE_URL,required"`
	RedisURL         string `env:"REDIS_URL"`
	CacheBackend     string `env:"CACHE_BACKEND" envDefault:"redis"`
	OTPTTLMinutes    int    `env:"OTP_TTL_MINUTES" envDefault:"10"`
	SessionTTLHours  int    `env:"SESSION_TTL_HOURS" envDefault:"24"`
	UploadDir        string `env:"UPLOAD_DIR" envDefault:"uploads"`
	MaxUploadBytes   int64  `env:"MAX_UPLOAD_BYTES" envDefault:"10485760"`
	OTPSendPerMinute int    `env:"OTP_SEND_PER_MINUTE" envDefault:"3"`
	LogLevel         string `env:"LOG_LEVEL" envDefault:"info"`
}

func (c *Config) OTPTTL() time.Duration {
	return time.Duration(c.OTPTTLMinutes) * time.Minute
}

func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLHours) * time.Hour
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func (c *Config) Validate() error {
	switch c.CacheBackend {
	case "redis":
		if c.RedisURL == "" {
			return fmt.Errorf("REDIS_URL is required when CACHE_BACKEND=redis")
		}
	case "postgres", "memory":
	default:
		return fmt.Errorf("CACHE_BACKEND must be one of redis, postgres, memory (got %q)", c.CacheBackend)
	}
	return nil
}

func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}
