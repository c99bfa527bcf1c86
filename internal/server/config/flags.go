package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/projectmanager/internal/flagx"
)

// parseFlags overlays the short command-line flags onto config.
//
//	-a string   HTTP bind address (e.g. ":8080")
//	-b string   public base URL used in email links
//	-d string   PostgreSQL DSN
//	-s string   JWT HMAC secret key
//	-t int      access token validity, minutes
//	-r int      refresh token validity, minutes
//	-e int      verification/reset token TTL, minutes
//	-R string   Redis address for ephemeral tokens
//	-m string   mail provider: log, smtp or mailgun
//	-l string   log level
//
// Other arguments are filtered out with flagx.FilterArgs first.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-b", "-d", "-s", "-t", "-r", "-e", "-R", "-m", "-l"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.HTTPAddr, "a", config.HTTPAddr, "address and port to run server")
	fs.StringVar(&config.BaseURL, "b", config.BaseURL, "public base URL")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	accessTokenValidity := fs.Int("t", int(config.AccessTokenValidityDuration.Minutes()), "access token validity (in minutes)")
	refreshTokenValidity := fs.Int("r", int(config.RefreshTokenValidityDuration.Minutes()), "refresh token validity (in minutes)")
	ephemeralTokenTTL := fs.Int("e", int(config.EphemeralTokenTTL.Minutes()), "verification and reset token TTL (in minutes)")

	fs.StringVar(&config.RedisAddr, "R", config.RedisAddr, "redis address, empty for in-memory tokens")
	fs.StringVar(&config.MailProvider, "m", config.MailProvider, "mail provider")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.AccessTokenValidityDuration = time.Duration(*accessTokenValidity) * time.Minute
	config.RefreshTokenValidityDuration = time.Duration(*refreshTokenValidity) * time.Minute
	config.EphemeralTokenTTL = time.Duration(*ephemeralTokenTTL) * time.Minute
}
