package cms

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/clawsite/clawsite/app/models"
	"github.com/clawsite/clawsite/app/repository"
	"github.com/clawsite/clawsite/internal/pkg/database/dbtest"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

type testEnv struct {
	db    *gorm.DB
	repos *repository.Repositories
	ctx   context.Context
}

func newTestEnv(t *testing.T) *testEnv {
	db := dbtest.Open(t)
	return &testEnv{db: db, repos: repository.NewRepositories(db), ctx: context.Background()}
}

var baseTime = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

// seedPost inserts a post; the day offset orders publish dates.
func (e *testEnv) seedPost(t *testing.T, p models.Post, day int) *models.Post {
	t.Helper()
	if p.PostType == "" {
		p.PostType = models.PostTypeBlog
	}
	if p.Language == "" {
		p.Language = "en"
	}
	if p.Status == "" {
		p.Status = models.PostStatusPublished
	}
	if p.Visibility == "" {
		p.Visibility = models.VisibilityPublic
	}
	if p.Title == "" {
		p.Title = "Title " + p.Slug
	}
	if p.Status == models.PostStatusPublished && p.PublishedAt == nil {
		at := baseTime.Add(time.Duration(day) * 24 * time.Hour)
		p.PublishedAt = &at
	}
	require.NoError(t, e.repos.Post.Create(e.ctx, &p))
	return &p
}

func (e *testEnv) seedTag(t *testing.T, name, postType string, postIDs ...string) *models.Tag {
	t.Helper()
	tag := &models.Tag{Name: name, PostType: postType}
	require.NoError(t, e.repos.Tag.Create(e.ctx, tag))
	for _, id := range postIDs {
		require.NoError(t, e.db.Create(&models.PostTag{PostID: id, TagID: tag.ID}).Error)
	}
	return tag
}

// memTagIDCache records cache traffic for assertions.
type memTagIDCache struct {
	mu          sync.Mutex
	entries     map[string][]string
	gets, sets  int
	invalidated []string
}

func newMemTagIDCache() *memTagIDCache {
	return &memTagIDCache{entries: map[string][]string{}}
}

func (c *memTagIDCache) key(postType, locale, tagID string) string {
	return postType + ":" + locale + ":" + tagID
}

func (c *memTagIDCache) Get(_ context.Context, postType, locale, tagID string) ([]string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	ids, ok := c.entries[c.key(postType, locale, tagID)]
	return ids, ok
}

func (c *memTagIDCache) Set(_ context.Context, postType, locale, tagID string, ids []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sets++
	c.entries[c.key(postType, locale, tagID)] = ids
}

func (c *memTagIDCache) Invalidate(_ context.Context, postType, locale string, tagIDs ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, id := range tagIDs {
		k := c.key(postType, locale, id)
		delete(c.entries, k)
		c.invalidated = append(c.invalidated, k)
	}
}
