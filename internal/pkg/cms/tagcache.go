package cms

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/redis/go-redis/v9"

	"github.com/clawsite/clawsite/app/models"
	"github.com/clawsite/clawsite/internal/pkg/cache"
)

const tagPostIDsTTL = 24 * time.Hour

// TagIDCache remembers which posts carry a tag. Implementations are best effort.
type TagIDCache interface {
	Get(ctx context.Context, postType, locale, tagID string) ([]string, bool)
	Set(ctx context.Context, postType, locale, tagID string, ids []string)
	Invalidate(ctx context.Context, postType, locale string, tagIDs ...string)
}

func tagPostIDsKey(postType, locale, tagID string) string {
	return cache.Key("cache", "tag-post-ids", postType, locale, tagID)
}

// RedisTagIDCache stores the id lists as JSON arrays with a 24h TTL.
type RedisTagIDCache struct {
	client redis.Cmdable
}

func NewRedisTagIDCache(client redis.Cmdable) *RedisTagIDCache {
	return &RedisTagIDCache{client: client}
}

func (c *RedisTagIDCache) Get(ctx context.Context, postType, locale, tagID string) ([]string, bool) {
	raw, err := c.client.Get(ctx, tagPostIDsKey(postType, locale, tagID)).Bytes()
	if err != nil {
		if !cache.IsMiss(err) {
			log.Warnf("[CMS] tag id cache read failed: %v", err)
		}
		return nil, false
	}
	var ids []string
	if err := json.Unmarshal(raw, &ids); err != nil || ids == nil {
		return nil, false
	}
	return ids, true
}

func (c *RedisTagIDCache) Set(ctx context.Context, postType, locale, tagID string, ids []string) {
	if ids == nil {
		ids = []string{}
	}
	raw, err := json.Marshal(ids)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, tagPostIDsKey(postType, locale, tagID), raw, tagPostIDsTTL).Err(); err != nil {
		log.Warnf("[CMS] tag id cache write failed: %v", err)
	}
}

func (c *RedisTagIDCache) Invalidate(ctx context.Context, postType, locale string, tagIDs ...string) {
	if len(tagIDs) == 0 {
		return
	}
	keys := make([]string, 0, len(tagIDs))
	for _, id := range tagIDs {
		keys = append(keys, tagPostIDsKey(postType, locale, id))
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		log.Warnf("[CMS] tag id cache invalidation failed: %v", err)
	}
}

// NopTagIDCache never caches.
type NopTagIDCache struct{}

func (NopTagIDCache) Get(context.Context, string, string, string) ([]string, bool) { return nil, false }
func (NopTagIDCache) Set(context.Context, string, string, string, []string)       {}
func (NopTagIDCache) Invalidate(context.Context, string, string, ...string)       {}

// TagCache holds the tag list of each post type in memory. Every tag write
// must call Invalidate for its post type.
type TagCache struct {
	mu     sync.RWMutex
	byType map[string][]models.Tag
}

func NewTagCache() *TagCache {
	return &TagCache{byType: map[string][]models.Tag{}}
}

func (c *TagCache) Get(postType string) ([]models.Tag, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	tags, ok := c.byType[postType]
	if !ok {
		return nil, false
	}
	out := make([]models.Tag, len(tags))
	copy(out, tags)
	return out, true
}

func (c *TagCache) Set(postType string, tags []models.Tag) {
	stored := make([]models.Tag, len(tags))
	copy(stored, tags)
	c.mu.Lock()
	c.byType[postType] = stored
	c.mu.Unlock()
}

func (c *TagCache) Invalidate(postType string) {
	c.mu.Lock()
	delete(c.byType, postType)
	c.mu.Unlock()
}
