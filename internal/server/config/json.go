package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/pecunia/internal/flagx"
	"github.com/dmitrijs2005/pecunia/internal/timex"
)

// JsonConfig defines a configuration structure tailored for JSON unmarshalling.
// Duration fields use timex.Duration, which accepts both strings such as
// "15m" and integer nanoseconds. Pointer fields tell an absent key apart
// from a zero value.
type JsonConfig struct {
	EndpointAddrHTTP             string          `json:"endpoint_addr_http"`
	GinMode                      string          `json:"gin_mode"`
	LogLevel                     string          `json:"log_level"`
	DatabaseDSN                  string          `json:"database_dsn"`
	RedisAddr                    string          `json:"redis_addr"`
	SecretKey                    string          `json:"secret_key"`
	AccessTokenValidityDuration  *timex.Duration `json:"access_token_validity_duration"`
	RefreshTokenValidityDuration *timex.Duration `json:"refresh_token_validity_duration"`
	BcryptCost                   *int            `json:"bcrypt_cost"`
	HashWorkers                  *int            `json:"hash_workers"`
	CORSAllowedOrigins           []string        `json:"cors_allowed_origins"`
	TrustedProxies               []string        `json:"trusted_proxies"`
	SeedDemoUsers                *bool           `json:"seed_demo_users"`
	LoginMaxAttempts             *int            `json:"login_max_attempts"`
	LoginAttemptWindow           *timex.Duration `json:"login_attempt_window"`
	LoginLockoutDuration         *timex.Duration `json:"login_lockout_duration"`
}

// parseJson loads configuration values from the JSON file named by the -c or
// -config flag into config. Without the flag nothing is loaded. Keys missing
// from the file leave the current values untouched. An unreadable file or
// invalid JSON panics.
func parseJson(config *Config) {

	// try flags
	jsonConfigFile := flagx.ConfigFileFlag()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	err = json.Unmarshal(file, c)
	if err != nil {
		panic(err)
	}

	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&config.GinMode, c.GinMode)
	setString(&config.LogLevel, c.LogLevel)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.RedisAddr, c.RedisAddr)
	setString(&config.SecretKey, c.SecretKey)

	if c.AccessTokenValidityDuration != nil {
		config.AccessTokenValidityDuration = c.AccessTokenValidityDuration.Duration
	}
	if c.RefreshTokenValidityDuration != nil {
		config.RefreshTokenValidityDuration = c.RefreshTokenValidityDuration.Duration
	}
	if c.BcryptCost != nil {
		config.BcryptCost = *c.BcryptCost
	}
	if c.HashWorkers != nil {
		config.HashWorkers = *c.HashWorkers
	}
	if c.CORSAllowedOrigins != nil {
		config.CORSAllowedOrigins = c.CORSAllowedOrigins
	}
	if c.TrustedProxies != nil {
		config.TrustedProxies = c.TrustedProxies
	}
	if c.SeedDemoUsers != nil {
		config.SeedDemoUsers = *c.SeedDemoUsers
	}
	if c.LoginMaxAttempts != nil {
		config.LoginMaxAttempts = *c.LoginMaxAttempts
	}
	if c.LoginAttemptWindow != nil {
		config.LoginAttemptWindow = c.LoginAttemptWindow.Duration
	}
	if c.LoginLockoutDuration != nil {
		config.LoginLockoutDuration = c.LoginLockoutDuration.Duration
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
