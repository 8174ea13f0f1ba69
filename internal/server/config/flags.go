package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/pecunia/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   REST bind address (e.g., ":8000")
//	-d string   PostgreSQL DSN
//	-redis string Redis address for refresh tokens
//	-s string   JWT HMAC secret key
//	-t int      access token validity, minutes
//	-r int      refresh token validity, minutes
//	-k int      bcrypt cost
//	-w int      password hashing workers
//	-l string   log level
//	-seed       register the demo accounts
//
// Notes:
//   - The function first filters os.Args to only the flags it recognizes using
//     flagx.FilterArgs, avoiding collisions with other components.
//   - Duration flags are accepted as integers in minutes and then converted
//     to time.Duration values.
//   - Flags not present on the command line keep the current values.
func parseFlags(config *Config) {
	// Filter args to include only the flags handled here.
	args := flagx.FilterArgs(os.Args[1:],
		[]string{"-a", "-d", "-redis", "-s", "-t", "-r", "-k", "-w", "-l"},
		"-seed")

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.RedisAddr, "redis", config.RedisAddr, "redis address")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	accessTokenValidityDuration := fs.Int("t", int(config.AccessTokenValidityDuration.Minutes()), "access_token_validity_duration (in minutes)")
	refreshTokenValidityDuration := fs.Int("r", int(config.RefreshTokenValidityDuration.Minutes()), "refresh_token_validity_duration (in minutes)")

	fs.IntVar(&config.BcryptCost, "k", config.BcryptCost, "bcrypt cost")
	fs.IntVar(&config.HashWorkers, "w", config.HashWorkers, "password hashing workers (0 = GOMAXPROCS)")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")
	fs.BoolVar(&config.SeedDemoUsers, "seed", config.SeedDemoUsers, "register demo accounts on start-up")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	// only flags given explicitly override, so sub-minute values from
	// earlier layers survive
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "t":
			config.AccessTokenValidityDuration = time.Duration(*accessTokenValidityDuration) * time.Minute
		case "r":
			config.RefreshTokenValidityDuration = time.Duration(*refreshTokenValidityDuration) * time.Minute
		}
	})
}
