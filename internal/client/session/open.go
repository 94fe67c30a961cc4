package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/videotec/internal/client/storage"
	"github.com/dmitrijs2005/videotec/internal/filex"
	"github.com/dmitrijs2005/videotec/internal/logging"
	"github.com/dmitrijs2005/videotec/internal/timex"
)

const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

var ErrUnknownBackend = errors.New("unknown session backend")

// Config selects and parameterizes a Store backend.
type Config struct {
	Backend  string         `json:"backend" yaml:"backend" env:"SESSION_BACKEND"`
	Scope    string         `json:"scope" yaml:"scope" env:"SESSION_SCOPE"`
	DSN      string         `json:"dsn" yaml:"dsn" env:"SESSION_DSN"`
	RedisURL string         `json:"redis_url" yaml:"redis_url" env:"SESSION_REDIS_URL"`
	TTL      timex.Duration `json:"ttl" yaml:"ttl" env:"SESSION_TTL"`
}

// DefaultTTL bounds an idle redis session scope.
const DefaultTTL = 12 * time.Hour

// Open builds the Store named by cfg.Backend. The returned closer releases
// the backend connection.
func Open(ctx context.Context, cfg Config, log logging.Logger) (Store, func() error, error) {
	nop := func() error { return nil }

	switch cfg.Backend {
	case "", BackendMemory:
		return NewMemoryStore(), nop, nil

	case BackendSQLite:
		if err := ensureDir(cfg.DSN); err != nil {
			return nil, nil, err
		}
		db, err := storage.OpenDatabase(ctx, cfg.DSN)
		if err != nil {
			return nil, nil, fmt.Errorf("open session database: %w", err)
		}
		return NewSQLiteStore(db, cfg.Scope, log), db.Close, nil

	case BackendRedis:
		rdb, err := ConnectRedis(ctx, cfg.RedisURL, 5*time.Second)
		if err != nil {
			return nil, nil, err
		}
		ttl := cfg.TTL.Duration
		if ttl == 0 {
			ttl = DefaultTTL
		}
		return NewRedisStore(rdb, cfg.Scope, ttl, log), rdb.Close, nil
	}

	return nil, nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Backend)
}

// ensureDir creates the parent directory of a file DSN.
func ensureDir(dsn string) error {
	if dsn == "" || strings.HasPrefix(dsn, ":memory:") || strings.HasPrefix(dsn, "file:") {
		return nil
	}
	if _, err := filex.EnsureFileDir(dsn); err != nil {
		return fmt.Errorf("create session database dir: %w", err)
	}
	return nil
}
