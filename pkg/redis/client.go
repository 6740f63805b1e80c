package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/luismarin/cartbase-backend/pkg/config"
	"github.com/luismarin/cartbase-backend/pkg/logger"
	"github.com/redis/go-redis/v9"
)

const (
	keyNamespace      = "cb"
	basketPrefix      = "basket"
	idempotencyPrefix = "idempotency"
)

const (
	revisionField = "rev"
	payloadField  = "data"
)

// compareAndSwapScript writes the payload only when the stored revision still
// matches ARGV[1], bumping the revision and refreshing the TTL in the same
// atomic step. Missing keys carry the implicit revision 0, which makes an
// expected revision of 0 an insert-if-not-exists.
const compareAndSwapScript = `local rev = redis.call('HGET', KEYS[1], 'rev')
if not rev then rev = '0' end
if rev ~= ARGV[1] then return 0 end
local next = tonumber(rev) + 1
redis.call('HSET', KEYS[1], 'rev', next, 'data', ARGV[2])
redis.call('PEXPIRE', KEYS[1], ARGV[3])
return next`

// compareAndDeleteScript removes the key only when the stored revision still
// matches ARGV[1]. Deleting an absent key with expected revision 0 succeeds.
const compareAndDeleteScript = `local rev = redis.call('HGET', KEYS[1], 'rev')
if not rev then rev = '0' end
if rev ~= ARGV[1] then return 0 end
if rev ~= '0' then redis.call('DEL', KEYS[1]) end
return 1`

type cmdable interface {
	Ping(context.Context) *redis.StatusCmd
	Set(context.Context, string, any, time.Duration) *redis.StatusCmd
	Get(context.Context, string) *redis.StringCmd
	SetNX(context.Context, string, any, time.Duration) *redis.BoolCmd
	Del(context.Context, ...string) *redis.IntCmd
	HMGet(context.Context, string, ...string) *redis.SliceCmd
	Eval(context.Context, string, []string, ...any) *redis.Cmd
}

// Client wraps the redis connection helpers needed by the platform.
type Client struct {
	store cmdable
	raw   *redis.Client
}

// Pinger exposes the health-check surface.
type Pinger interface {
	Ping(context.Context) error
}

// IdempotencyStore exposes minimal operations used by idempotency helpers.
type IdempotencyStore interface {
	Get(context.Context, string) (string, error)
	SetNX(context.Context, string, any, time.Duration) (bool, error)
	IdempotencyKey(scope, id string) string
	Del(context.Context, ...string) error
}

// New bootstraps a Redis client with pooling/timeouts and verifies connectivity.
func New(ctx context.Context, cfg config.RedisConfig, logg *logger.Logger) (*Client, error) {
	opts, err := optionsFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	raw := redis.NewClient(opts)
	if err := raw.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &Client{store: raw, raw: raw}, nil
}

func optionsFromConfig(cfg config.RedisConfig) (*redis.Options, error) {
	if cfg.URL == "" && cfg.Address == "" {
		return nil, errors.New("redis url or address is required")
	}
	var opts *redis.Options
	if cfg.URL != "" {
		parsed, err := redis.ParseURL(cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("parsing redis url: %w", err)
		}
		opts = parsed
	} else {
		opts = &redis.Options{
			Addr:     cfg.Address,
			Password: cfg.Password,
			DB:       cfg.DB,
		}
	}
	if opts.DB == 0 {
		opts.DB = cfg.DB
	}
	if opts.PoolSize == 0 {
		opts.PoolSize = cfg.PoolSize
	}
	if opts.MinIdleConns == 0 {
		opts.MinIdleConns = cfg.MinIdleConns
	}
	if opts.DialTimeout == 0 {
		opts.DialTimeout = cfg.DialTimeout
	}
	if opts.ReadTimeout == 0 {
		opts.ReadTimeout = cfg.ReadTimeout
	}
	if opts.WriteTimeout == 0 {
		opts.WriteTimeout = cfg.WriteTimeout
	}
	return opts, nil
}

// GetVersioned returns the stored payload and its revision. An absent key
// yields an empty payload and revision 0.
func (c *Client) GetVersioned(ctx context.Context, key string) (string, int64, error) {
	if c == nil || c.store == nil {
		return "", 0, errors.New("redis client not initialized")
	}
	vals, err := c.store.HMGet(ctx, key, revisionField, payloadField).Result()
	if err != nil {
		return "", 0, err
	}
	if len(vals) != 2 || vals[0] == nil {
		return "", 0, nil
	}
	raw, ok := vals[0].(string)
	if !ok {
		return "", 0, fmt.Errorf("unexpected revision type %T", vals[0])
	}
	revision, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return "", 0, fmt.Errorf("parsing revision %q: %w", raw, err)
	}
	payload, _ := vals[1].(string)
	return payload, revision, nil
}

// CompareAndSwap stores the payload if the key's revision still equals
// expected, refreshing the TTL. It reports the new revision and whether the
// swap happened; a false result means the stored revision moved.
func (c *Client) CompareAndSwap(ctx context.Context, key, payload string, expected int64, ttl time.Duration) (int64, bool, error) {
	if c == nil || c.store == nil {
		return 0, false, errors.New("redis client not initialized")
	}
	if ttl <= 0 {
		return 0, false, errors.New("ttl must be positive")
	}
	res, err := c.store.Eval(ctx, compareAndSwapScript, []string{key}, expected, payload, ttl.Milliseconds()).Int64()
	if err != nil {
		return 0, false, err
	}
	if res == 0 {
		return 0, false, nil
	}
	return res, true, nil
}

// CompareAndDelete removes the key if its revision still equals expected.
// Deleting an absent key with expected 0 reports success (idempotent delete).
func (c *Client) CompareAndDelete(ctx context.Context, key string, expected int64) (bool, error) {
	if c == nil || c.store == nil {
		return false, errors.New("redis client not initialized")
	}
	res, err := c.store.Eval(ctx, compareAndDeleteScript, []string{key}, expected).Int64()
	if err != nil {
		return false, err
	}
	return res == 1, nil
}

// Set stores a string value with an optional TTL.
func (c *Client) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	if c == nil || c.store == nil {
		return errors.New("redis client not initialized")
	}
	return c.store.Set(ctx, key, value, ttl).Err()
}

// Get returns a string value stored at key.
func (c *Client) Get(ctx context.Context, key string) (string, error) {
	if c == nil || c.store == nil {
		return "", errors.New("redis client not initialized")
	}
	return c.store.Get(ctx, key).Result()
}

// SetNX sets a value only if the key does not exist yet.
func (c *Client) SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error) {
	if c == nil || c.store == nil {
		return false, errors.New("redis client not initialized")
	}
	return c.store.SetNX(ctx, key, value, ttl).Result()
}

// Del removes the provided keys.
func (c *Client) Del(ctx context.Context, keys ...string) error {
	if c == nil || c.store == nil {
		return errors.New("redis client not initialized")
	}
	return c.store.Del(ctx, keys...).Err()
}

// BasketKey returns the namespaced key holding a user's basket record.
func (c *Client) BasketKey(userID string) string {
	return c.buildKey(basketPrefix, userID)
}

// IdempotencyKey returns a namespaced key for idempotency storage.
func (c *Client) IdempotencyKey(scope, id string) string {
	return c.buildKey(idempotencyPrefix, scope, id)
}

// Ping verifies the connection.
func (c *Client) Ping(ctx context.Context) error {
	if c == nil || c.store == nil {
		return errors.New("redis client not initialized")
	}
	return c.store.Ping(ctx).Err()
}

// Close shuts down the underlying client if available.
func (c *Client) Close() error {
	if c == nil || c.raw == nil {
		return nil
	}
	return c.raw.Close()
}

func (c *Client) buildKey(parts ...string) string {
	if len(parts) == 0 {
		return keyNamespace
	}
	clean := []string{keyNamespace}
	for _, part := range parts {
		if part == "" {
			continue
		}
		clean = append(clean, strings.TrimSpace(part))
	}
	return strings.Join(clean, ":")
}
