package config

import (
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	tests := []struct {
		start       *Config
		expected    *Config
		name        string
		args        []string
		expectPanic bool
	}{
		{name: "all flags", args: []string{"cmd",
			"-a", "127.0.0.1:9090", "-d", "db", "-redis", "redis:6379", "-s", "secret",
			"-t", "1", "-r", "3", "-k", "12", "-w", "2", "-l", "debug", "-seed",
		},
			start: &Config{},
			expected: &Config{
				EndpointAddrHTTP:             "127.0.0.1:9090",
				DatabaseDSN:                  "db",
				RedisAddr:                    "redis:6379",
				SecretKey:                    "secret",
				AccessTokenValidityDuration:  1 * time.Minute,
				RefreshTokenValidityDuration: 3 * time.Minute,
				BcryptCost:                   12,
				HashWorkers:                  2,
				LogLevel:                     "debug",
				SeedDemoUsers:                true,
			}},
		{name: "absent flags keep values", args: []string{"cmd", "-unknown", "x", "-a", ":1"},
			start: &Config{
				AccessTokenValidityDuration: 90 * time.Second,
				BcryptCost:                  11,
			},
			expected: &Config{
				EndpointAddrHTTP:            ":1",
				AccessTokenValidityDuration: 90 * time.Second,
				BcryptCost:                  11,
			}},
		{name: "bad int panics", args: []string{"cmd", "-k", "eleven"},
			start: &Config{}, expectPanic: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Args = tt.args

			config := tt.start

			if !tt.expectPanic {
				require.NotPanics(t, func() { parseFlags(config) })
				assert.Empty(t, cmp.Diff(tt.expected, config))
			} else {
				require.Panics(t, func() { parseFlags(config) })
			}
		})
	}
}
