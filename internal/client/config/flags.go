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
	"-a", "-api", "--api",
	"-s", "-scope", "--scope",
	"-b", "-backend", "--backend",
	"-t", "-timeout", "--timeout",
}

// parseFlags populates selected Config fields from args. Arguments other
// than Flags are ignored, so the same args can be handed to the command
// parser as well.
func parseFlags(cfg *Config, args []string) error {
	fs := flag.NewFlagSet("videotec", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.Identity.BaseURL, "a", cfg.Identity.BaseURL, "identity service base URL")
	fs.StringVar(&cfg.Identity.BaseURL, "api", cfg.Identity.BaseURL, "identity service base URL")
	fs.StringVar(&cfg.Session.Scope, "s", cfg.Session.Scope, "session scope")
	fs.StringVar(&cfg.Session.Scope, "scope", cfg.Session.Scope, "session scope")
	fs.StringVar(&cfg.Session.Backend, "b", cfg.Session.Backend, "session store backend")
	fs.StringVar(&cfg.Session.Backend, "backend", cfg.Session.Backend, "session store backend")

	timeout := int(cfg.Identity.RequestTimeout.Seconds())
	fs.IntVar(&timeout, "t", timeout, "identity request timeout (in seconds)")
	fs.IntVar(&timeout, "timeout", timeout, "identity request timeout (in seconds)")

	if err := fs.Parse(flagx.FilterArgs(args, Flags)); err != nil {
		return err
	}

	fs.Visit(func(f *flag.Flag) {
		if f.Name == "t" || f.Name == "timeout" {
			cfg.Identity.RequestTimeout.Duration = time.Duration(timeout) * time.Second
		}
	})
	return nil
}
