// Package config handles configuration for the server component,
// including defaults, JSON overlay, environment variables and command-line
// flags.
package config

import (
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Config holds runtime settings for the Pecunia server.
//
// Fields:
//   - EndpointAddrHTTP: bind address for the REST API.
//   - GinMode: gin engine mode ("debug", "release" or "test").
//   - LogLevel: minimum level of the JSON logger.
//   - DatabaseDSN: PostgreSQL DSN (pgx). Empty keeps all data in memory.
//   - RedisAddr: Redis address for refresh tokens. Empty keeps them in the primary store.
//   - SecretKey: HMAC secret for signing JWTs (HS256). Required.
//   - AccessTokenValidityDuration / RefreshTokenValidityDuration: token lifetimes.
//   - BcryptCost / HashWorkers: password hashing work factor and pool size (0 = GOMAXPROCS).
//   - CORSAllowedOrigins: origins allowed by the CORS middleware.
//   - TrustedProxies: proxy addresses/CIDRs whose X-Forwarded-For is believed. Empty trusts none.
//   - SeedDemoUsers: register the demo accounts at start-up.
//   - LoginMaxAttempts / LoginAttemptWindow / LoginLockoutDuration: per-IP login throttle.
type Config struct {
	EndpointAddrHTTP             string
	GinMode                      string
	LogLevel                     string
	DatabaseDSN                  string
	RedisAddr                    string
	SecretKey                    string
	AccessTokenValidityDuration  time.Duration
	RefreshTokenValidityDuration time.Duration
	BcryptCost                   int
	HashWorkers                  int
	CORSAllowedOrigins           []string
	TrustedProxies               []string
	SeedDemoUsers                bool
	LoginMaxAttempts             int
	LoginAttemptWindow           time.Duration
	LoginLockoutDuration         time.Duration
}

// LoadDefaults populates Config with development defaults. SecretKey is
// left empty on purpose and must be supplied.
func (c *Config) LoadDefaults() {
	c.EndpointAddrHTTP = ":8000"
	c.GinMode = "release"
	c.LogLevel = "info"
	c.DatabaseDSN = ""
	c.RedisAddr = ""
	c.SecretKey = ""
	c.AccessTokenValidityDuration = 15 * time.Minute
	c.RefreshTokenValidityDuration = 7 * 24 * time.Hour
	c.BcryptCost = 11
	c.HashWorkers = 0
	c.CORSAllowedOrigins = []string{"*"}
	c.SeedDemoUsers = false
	c.LoginMaxAttempts = 5
	c.LoginAttemptWindow = 15 * time.Minute
	c.LoginLockoutDuration = 10 * time.Minute
}

// Validate rejects settings the server cannot run with.
func (c *Config) Validate() error {
	var errs []error

	if c.SecretKey == "" {
		errs = append(errs, errors.New("secret key is required"))
	}
	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		errs = append(errs, fmt.Errorf("bcrypt cost must be within [%d, %d], got %d", bcrypt.MinCost, bcrypt.MaxCost, c.BcryptCost))
	}
	if c.AccessTokenValidityDuration <= 0 {
		errs = append(errs, errors.New("access token validity must be positive"))
	}
	if c.RefreshTokenValidityDuration <= 0 {
		errs = append(errs, errors.New("refresh token validity must be positive"))
	}
	switch c.GinMode {
	case "debug", "release", "test":
	default:
		errs = append(errs, fmt.Errorf("unknown gin mode %q", c.GinMode))
	}
	if c.HashWorkers < 0 {
		errs = append(errs, errors.New("hash workers must not be negative"))
	}
	if c.LoginMaxAttempts <= 0 || c.LoginAttemptWindow <= 0 || c.LoginLockoutDuration <= 0 {
		errs = append(errs, errors.New("login throttle settings must be positive"))
	}

	return errors.Join(errs...)
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file, the environment (and .env file) and finally
// from command-line flags. The result is validated.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	if err := parseEnv(cfg); err != nil {
		return nil, err
	}
	parseFlags(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
