package tokenstore

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/zbridge-io/zbridge/core/logx"
)

const redisKey = "zbridge:session_token"

// redisStore implements Store backed by a Redis instance.
type redisStore struct {
	client redis.UniversalClient
	ctx    context.Context
}

// NewRedisStore connects to the given Redis URL and returns a Store. Redis
// errors after construction are logged and treated as an absent token, so a
// flaky Redis degrades to session-per-replica rather than failing calls.
func NewRedisStore(addr string) (Store, error) {
	opts, err := parseRedisURL(addr)
	if err != nil {
		return nil, err
	}
	c := redis.NewUniversalClient(opts)
	rs := &redisStore{client: c, ctx: context.Background()}
	if err := c.Ping(rs.ctx).Err(); err != nil {
		return nil, err
	}
	return rs, nil
}

func (r *redisStore) Get() string {
	v, err := r.client.Get(r.ctx, redisKey).Result()
	if err != nil {
		if err != redis.Nil {
			logx.Log.Warn().Err(err).Msg("tokenstore: redis get failed")
		}
		return ""
	}
	return v
}

func (r *redisStore) Put(token string) {
	if err := r.client.Set(r.ctx, redisKey, token, 0).Err(); err != nil {
		logx.Log.Warn().Err(err).Msg("tokenstore: redis set failed")
	}
}

func (r *redisStore) Clear() {
	if err := r.client.Del(r.ctx, redisKey).Err(); err != nil {
		logx.Log.Warn().Err(err).Msg("tokenstore: redis del failed")
	}
}

// parseRedisURL parses addr into UniversalOptions supporting single, cluster,
// and sentinel Redis deployments. If no scheme is present, addr is treated as
// a plain host:port string.
func parseRedisURL(addr string) (*redis.UniversalOptions, error) {
	if !strings.Contains(addr, "://") {
		return &redis.UniversalOptions{Addrs: []string{addr}}, nil
	}

	u, err := url.Parse(addr)
	if err != nil {
		return nil, err
	}

	opts := &redis.UniversalOptions{}
	if u.User != nil {
		opts.Username = u.User.Username()
		if pw, ok := u.User.Password(); ok {
			opts.Password = pw
		}
	}
	opts.Addrs = strings.Split(u.Host, ",")

	q := u.Query()
	tlsCfg := &tls.Config{MinVersion: tls.VersionTLS12}
	switch u.Scheme {
	case "redis", "rediss":
		if u.Path != "" && u.Path != "/" {
			db, err := strconv.Atoi(strings.TrimPrefix(u.Path, "/"))
			if err != nil {
				return nil, fmt.Errorf("redis: invalid db: %v", err)
			}
			opts.DB = db
		} else if dbStr := q.Get("db"); dbStr != "" {
			db, err := strconv.Atoi(dbStr)
			if err != nil {
				return nil, fmt.Errorf("redis: invalid db: %v", err)
			}
			opts.DB = db
		}
		if u.Scheme == "rediss" {
			opts.TLSConfig = tlsCfg
		}
	case "redis-sentinel", "rediss-sentinel":
		opts.MasterName = strings.TrimPrefix(u.Path, "/")
		if dbStr := q.Get("db"); dbStr != "" {
			db, err := strconv.Atoi(dbStr)
			if err != nil {
				return nil, fmt.Errorf("redis: invalid db: %v", err)
			}
			opts.DB = db
		}
		if v := q.Get("sentinel_username"); v != "" {
			opts.SentinelUsername = v
		}
		if v := q.Get("sentinel_password"); v != "" {
			opts.SentinelPassword = v
		}
		if u.Scheme == "rediss-sentinel" {
			opts.TLSConfig = tlsCfg
		}
	default:
		return nil, fmt.Errorf("redis: unsupported scheme %q", u.Scheme)
	}
	return opts, nil
}
