package config

import (
	"flag"
	"io"
	"time"

	"github.com/dmitrijs2005/videotec/internal/flagx"
)

// Flags are the command-line flags read by parseFlags, in every accepted
// spelling.
var Flags = []string{
	"-a", "-address", "--address",
	"-d", "-dsn", "--dsn",
	"-k", "-secret", "--secret",
	"-t", "-access-ttl", "--access-ttl",
	"-r", "-reset-ttl", "--reset-ttl",
	"-storage", "--storage",
}

// parseFlags populates selected Config fields from args.
//
//	-a, --address string   bind address (e.g., "127.0.0.1:8000")
//	-d, --dsn string       PostgreSQL DSN; implies --storage postgres
//	-k, --secret string    JWT HMAC secret key
//	-t, --access-ttl int   access token validity, minutes
//	-r, --reset-ttl int    reset token validity, minutes
//	--storage string       memory or postgres
func parseFlags(cfg *Config, args []string) error {
	fs := flag.NewFlagSet("identityd", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	for _, name := range []string{"a", "address"} {
		fs.StringVar(&cfg.Address, name, cfg.Address, "address and port to run server")
	}
	for _, name := range []string{"d", "dsn"} {
		fs.StringVar(&cfg.DatabaseDSN, name, cfg.DatabaseDSN, "database DSN")
	}
	for _, name := range []string{"k", "secret"} {
		fs.StringVar(&cfg.SecretKey, name, cfg.SecretKey, "secret key")
	}
	fs.StringVar(&cfg.Storage, "storage", cfg.Storage, "storage backend")

	accessTTL := int(cfg.AccessTokenTTL.Minutes())
	resetTTL := int(cfg.ResetTokenTTL.Minutes())
	for _, name := range []string{"t", "access-ttl"} {
		fs.IntVar(&accessTTL, name, accessTTL, "access token validity (in minutes)")
	}
	for _, name := range []string{"r", "reset-ttl"} {
		fs.IntVar(&resetTTL, name, resetTTL, "reset token validity (in minutes)")
	}

	if err := fs.Parse(flagx.FilterArgs(args, Flags)); err != nil {
		return err
	}

	dsnGiven, storageGiven := false, false
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "t", "access-ttl":
			cfg.AccessTokenTTL.Duration = time.Duration(accessTTL) * time.Minute
		case "r", "reset-ttl":
			cfg.ResetTokenTTL.Duration = time.Duration(resetTTL) * time.Minute
		case "d", "dsn":
			dsnGiven = true
		case "storage":
			storageGiven = true
		}
	})
	if dsnGiven && !storageGiven {
		cfg.Storage = StoragePostgres
	}
	return nil
}
