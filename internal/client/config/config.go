package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dmitrijs2005/videotec/internal/client/identity"
	"github.com/dmitrijs2005/videotec/internal/client/session"
	"github.com/dmitrijs2005/videotec/internal/logging"
	"github.com/dmitrijs2005/videotec/internal/telemetry"
	"github.com/dmitrijs2005/videotec/internal/timex"
)

// Config holds runtime settings for the console.
type Config struct {
	Identity  identity.Config  `json:"identity" yaml:"identity"`
	Session   session.Config   `json:"session" yaml:"session"`
	Log       logging.Config   `json:"log" yaml:"log"`
	Telemetry telemetry.Config `json:"telemetry" yaml:"telemetry"`
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.Identity.BaseURL = "http://127.0.0.1:8000"
	c.Identity.RequestTimeout = timex.Duration{}

	c.Session.Backend = session.BackendSQLite
	c.Session.Scope = DefaultScope()
	c.Session.DSN = defaultDSN()
	c.Session.TTL = timex.Duration{Duration: session.DefaultTTL}

	c.Log = logging.Config{Level: "warn", Format: "text", Output: "stderr"}
	c.Telemetry.ServiceName = "videotec-console"
}

// DefaultScope names the session scope of the invoking shell, so that every
// console started from one terminal shares a session.
func DefaultScope() string {
	return fmt.Sprintf("ppid-%d", os.Getppid())
}

func defaultDSN() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "videotec", "session.db")
}

// LoadConfig constructs a Config, applies defaults, then overlays values
// from the config file, the environment and args. Later sources take
// precedence over earlier ones.
func LoadConfig(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseFile(cfg, args); err != nil {
		return nil, err
	}
	if err := parseEnv(cfg); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	return cfg, nil
}
