// Package counter keeps best-effort post view counts in Redis.
package counter

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/redis/go-redis/v9"

	"github.com/clawsite/clawsite/internal/pkg/cache"
	"github.com/clawsite/clawsite/internal/pkg/cms"
	"github.com/clawsite/clawsite/internal/pkg/env"
)

// uniqueWindow is how long one IP counts as a single view.
const uniqueWindow = time.Hour

// Store is the subset of Redis the counter needs.
type Store interface {
	Incr(ctx context.Context, key string) (int64, error)
	// SetNX reports whether the key was newly set.
	SetNX(ctx context.Context, key string, ttl time.Duration) (bool, error)
	// Get returns 0 for a missing key.
	Get(ctx context.Context, key string) (int64, error)
}

// RedisStore adapts a go-redis client to Store.
type RedisStore struct {
	client redis.Cmdable
}

func NewRedisStore(client redis.Cmdable) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Incr(ctx context.Context, key string) (int64, error) {
	return s.client.Incr(ctx, key).Result()
}

func (s *RedisStore) SetNX(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return s.client.SetNX(ctx, key, 1, ttl).Result()
}

func (s *RedisStore) Get(ctx context.Context, key string) (int64, error) {
	n, err := s.client.Get(ctx, key).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return n, err
}

// ViewKey is the counter key of one post in one locale.
func ViewKey(postType, slug, locale string) string {
	return cache.Key("blog", "views", postType, slug, locale)
}

func ipKey(postType, slug, locale, ip string) string {
	return cache.Key("post", "views", "ip", postType, slug, locale, ip)
}

// Counter records and reads view counts per post type configuration.
type Counter struct {
	store   Store
	configs map[string]cms.ViewCountConfig
}

func New(store Store, configs map[string]cms.ViewCountConfig) *Counter {
	return &Counter{store: store, configs: configs}
}

// ConfigsFromEnv starts from the post type defaults and applies
// VIEW_COUNT_<TYPE>=all|unique|off overrides.
func ConfigsFromEnv() map[string]cms.ViewCountConfig {
	out := make(map[string]cms.ViewCountConfig, len(cms.Configs))
	for postType, cfg := range cms.Configs {
		vc := cfg.ViewCount
		switch mode := strings.ToLower(env.GetEnv("VIEW_COUNT_"+strings.ToUpper(postType), "")); mode {
		case cms.ViewModeAll, cms.ViewModeUnique:
			vc.Enabled = true
			vc.Mode = mode
		case "off":
			vc.Enabled = false
		}
		out[postType] = vc
	}
	return out
}

func (c *Counter) config(postType string) (cms.ViewCountConfig, bool) {
	cfg, ok := c.configs[postType]
	return cfg, ok && cfg.Enabled && c.store != nil
}

// Record counts a view. Unique mode counts an IP once per hour. Failures are
// logged and otherwise ignored.
func (c *Counter) Record(ctx context.Context, postType, slug, locale, ip string) {
	cfg, ok := c.config(postType)
	if !ok || slug == "" {
		return
	}

	if cfg.Mode == cms.ViewModeUnique {
		if ip == "" {
			return
		}
		fresh, err := c.store.SetNX(ctx, ipKey(postType, slug, locale, ip), uniqueWindow)
		if err != nil {
			log.Debugf("[Views] unique check for %s/%s failed: %v", postType, slug, err)
			return
		}
		if !fresh {
			return
		}
	}

	if _, err := c.store.Incr(ctx, ViewKey(postType, slug, locale)); err != nil {
		log.Debugf("[Views] increment for %s/%s failed: %v", postType, slug, err)
	}
}

// Get returns the view count, 0 when counting is disabled or unavailable.
func (c *Counter) Get(ctx context.Context, postType, slug, locale string) int64 {
	if _, ok := c.config(postType); !ok {
		return 0
	}
	n, err := c.store.Get(ctx, ViewKey(postType, slug, locale))
	if err != nil {
		log.Warnf("[Views] reading %s/%s failed: %v", postType, slug, err)
		return 0
	}
	return n
}

// ShowInUI reports whether the count should be displayed for a post type.
func (c *Counter) ShowInUI(postType string) bool {
	cfg, ok := c.config(postType)
	return ok && cfg.ShowInUI
}

// FormatCount renders 1234 as "1.2k" for compact display.
func FormatCount(n int64) string {
	switch {
	case n >= 1_000_000:
		return strconv.FormatFloat(float64(n)/1_000_000, 'f', 1, 64) + "m"
	case n >= 1_000:
		return strconv.FormatFloat(float64(n)/1_000, 'f', 1, 64) + "k"
	}
	return strconv.FormatInt(n, 10)
}
