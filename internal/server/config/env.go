package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// EnvConfig mirrors Config for environment variables. Unset variables stay
// nil and do not override earlier layers.
type EnvConfig struct {
	EndpointAddrHTTP             *string        `env:"PECUNIA_ADDR"`
	GinMode                      *string        `env:"PECUNIA_GIN_MODE"`
	LogLevel                     *string        `env:"PECUNIA_LOG_LEVEL"`
	DatabaseDSN                  *string        `env:"PECUNIA_DATABASE_DSN"`
	RedisAddr                    *string        `env:"PECUNIA_REDIS_ADDR"`
	SecretKey                    *string        `env:"PECUNIA_SECRET_KEY"`
	AccessTokenValidityDuration  *time.Duration `env:"PECUNIA_ACCESS_TOKEN_TTL"`
	RefreshTokenValidityDuration *time.Duration `env:"PECUNIA_REFRESH_TOKEN_TTL"`
	BcryptCost                   *int           `env:"PECUNIA_BCRYPT_COST"`
	HashWorkers                  *int           `env:"PECUNIA_HASH_WORKERS"`
	CORSAllowedOrigins           []string       `env:"PECUNIA_CORS_ORIGINS" envSeparator:","`
	TrustedProxies               []string       `env:"PECUNIA_TRUSTED_PROXIES" envSeparator:","`
	SeedDemoUsers                *bool          `env:"PECUNIA_SEED_DEMO_USERS"`
	LoginMaxAttempts             *int           `env:"PECUNIA_LOGIN_MAX_ATTEMPTS"`
	LoginAttemptWindow           *time.Duration `env:"PECUNIA_LOGIN_WINDOW"`
	LoginLockoutDuration         *time.Duration `env:"PECUNIA_LOGIN_LOCKOUT"`
}

// envFile is loaded into the process environment when present. Variables
// already set in the environment take precedence over the file.
var envFile = ".env"

// parseEnv overlays environment variables onto config.
func parseEnv(config *Config) error {
	_ = godotenv.Load(envFile)

	c := &EnvConfig{}
	if err := env.Parse(c); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}

	setPtr(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setPtr(&config.GinMode, c.GinMode)
	setPtr(&config.LogLevel, c.LogLevel)
	setPtr(&config.DatabaseDSN, c.DatabaseDSN)
	setPtr(&config.RedisAddr, c.RedisAddr)
	setPtr(&config.SecretKey, c.SecretKey)
	setPtr(&config.AccessTokenValidityDuration, c.AccessTokenValidityDuration)
	setPtr(&config.RefreshTokenValidityDuration, c.RefreshTokenValidityDuration)
	setPtr(&config.BcryptCost, c.BcryptCost)
	setPtr(&config.HashWorkers, c.HashWorkers)
	setPtr(&config.SeedDemoUsers, c.SeedDemoUsers)
	setPtr(&config.LoginMaxAttempts, c.LoginMaxAttempts)
	setPtr(&config.LoginAttemptWindow, c.LoginAttemptWindow)
	setPtr(&config.LoginLockoutDuration, c.LoginLockoutDuration)

	if len(c.CORSAllowedOrigins) > 0 {
		config.CORSAllowedOrigins = c.CORSAllowedOrigins
	}
	if len(c.TrustedProxies) > 0 {
		config.TrustedProxies = c.TrustedProxies
	}

	return nil
}

func setPtr[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}
