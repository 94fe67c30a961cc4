package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dmitrijs2005/videotec/internal/client/models"
	"github.com/dmitrijs2005/videotec/internal/logging"
)

const redisKeyPrefix = "videotec:session:"

var ErrRedisNotReady = errors.New("redis is not ready")

// ConnectRedis parses url and pings the server until it answers or ctx
// (bounded by timeout) expires.
func ConnectRedis(ctx context.Context, url string, timeout time.Duration) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Join(ErrRedisNotReady, err)
	}
	return client, nil
}

// RedisStore keeps the record in one hash per scope. The hash expires
// after ttl without activity, which ends the session scope.
type RedisStore struct {
	rdb redis.Cmdable
	key string
	ttl time.Duration
	log logging.Logger
}

var _ Store = (*RedisStore)(nil)

func NewRedisStore(rdb redis.Cmdable, scope string, ttl time.Duration, log logging.Logger) *RedisStore {
	return &RedisStore{
		rdb: rdb,
		key: redisKeyPrefix + scope,
		ttl: ttl,
		log: log.With("store", "redis", "scope", scope),
	}
}

func (s *RedisStore) Save(ctx context.Context, rec models.PersistedRecord) {
	data, err := encodeProfile(rec.ProfileSnapshot)
	if err != nil {
		s.log.Warn(ctx, "encode session profile", "error", err)
		return
	}

	_, err = s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, s.key)
		pipe.HSet(ctx, s.key, KeyAccessToken, rec.Credential, KeyUserData, data)
		if s.ttl > 0 {
			pipe.Expire(ctx, s.key, s.ttl)
		}
		return nil
	})
	if err != nil {
		s.log.Warn(ctx, "save session record", "error", err)
	}
}

func (s *RedisStore) Load(ctx context.Context) *models.PersistedRecord {
	values, err := s.rdb.HGetAll(ctx, s.key).Result()
	if err != nil {
		s.log.Warn(ctx, "load session record", "error", err)
		return nil
	}
	if len(values) == 0 {
		return nil
	}

	if s.ttl > 0 {
		if err := s.rdb.Expire(ctx, s.key, s.ttl).Err(); err != nil {
			s.log.Debug(ctx, "refresh session ttl", "error", err)
		}
	}

	return decodeRecord(ctx, s.log, []byte(values[KeyAccessToken]), []byte(values[KeyUserData]))
}

func (s *RedisStore) Clear(ctx context.Context) {
	if err := s.rdb.Del(ctx, s.key).Err(); err != nil {
		s.log.Warn(ctx, "clear session record", "error", err)
	}
}
