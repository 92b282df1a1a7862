package sitemap

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clawsite/clawsite/app/models"
	"github.com/clawsite/clawsite/app/repository"
	"github.com/clawsite/clawsite/internal/pkg/cms"
	"github.com/clawsite/clawsite/internal/pkg/database/dbtest"
)

func write(t *testing.T, root, rel, content string) {
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func newBuilder(t *testing.T) *Builder {
	db := dbtest.Open(t)
	root := t.TempDir()

	write(t, root, "blogs/en/hello.md", "---\ntitle: Hello\nslug: /blogs/hello\n---\nbody")
	write(t, root, "blogs/en/wip.md", "---\ntitle: WIP\nstatus: draft\n---\nbody")
	write(t, root, "docs/en/index.md", "# Docs")
	write(t, root, "docs/en/setup/install.md", "# Install")
	write(t, root, "docs/ja/setup/install.md", "# インストール")

	at := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	for _, p := range []models.Post{
		{Slug: "hello", PostType: models.PostTypeBlog, Language: "en", Title: "Dup", Visibility: models.VisibilityPublic},
		{Slug: "remote-only", PostType: models.PostTypeBlog, Language: "zh", Title: "Remote", Visibility: models.VisibilityPublic},
		{Slug: "secret", PostType: models.PostTypeBlog, Language: "en", Title: "Secret", Visibility: models.VisibilitySubscribers},
		{Slug: "/glossary/agent", PostType: models.PostTypeGlossary, Language: "en", Title: "Agent", Visibility: models.VisibilityPublic},
	} {
		p := p
		p.Status = models.PostStatusPublished
		p.PublishedAt = &at
		require.NoError(t, db.Create(&p).Error)
	}

	repos := repository.NewRepositories(db)
	reg, err := cms.NewRegistry(cms.Deps{ContentDir: root, Posts: repos.Post, Tags: repos.Tag})
	require.NoError(t, err)

	b := NewBuilder(reg, "https://claw.example/")
	b.now = func() time.Time { return time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC) }
	return b
}

func locs(urls []URL) map[string]URL {
	out := map[string]URL{}
	for _, u := range urls {
		out[u.Loc] = u
	}
	return out
}

func TestBuild(t *testing.T) {
	b := newBuilder(t)
	urls := b.Build(context.Background())
	byLoc := locs(urls)
	assert.Len(t, byLoc, len(urls), "no duplicate urls")

	home := byLoc["https://claw.example"]
	assert.Equal(t, 1.0, home.Priority)
	assert.Equal(t, "daily", home.ChangeFreq)
	assert.Equal(t, 0.8, byLoc["https://claw.example/ja/about"].Priority)
	assert.Equal(t, 1.0, byLoc["https://claw.example/zh"].Priority)
	assert.Equal(t, "monthly", byLoc["https://claw.example/privacy-policy"].ChangeFreq)

	assert.Contains(t, byLoc, "https://claw.example/blog/hello")
	assert.Contains(t, byLoc, "https://claw.example/zh/blog/remote-only")
	assert.NotContains(t, byLoc, "https://claw.example/blog/secret")
	assert.NotContains(t, byLoc, "https://claw.example/blog/wip")

	assert.Contains(t, byLoc, "https://claw.example/ja/glossary")
	assert.Contains(t, byLoc, "https://claw.example/glossary/agent")

	assert.Contains(t, byLoc, "https://claw.example/ru/docs")
	assert.Contains(t, byLoc, "https://claw.example/docs/setup/install")
	assert.Contains(t, byLoc, "https://claw.example/ja/docs/setup/install")
	assert.Equal(t, "weekly", byLoc["https://claw.example/docs/setup/install"].ChangeFreq)
}

func TestRender(t *testing.T) {
	body, err := Render([]URL{{Loc: "https://claw.example/a?b&c", Priority: 0.5, ChangeFreq: "daily"}})
	require.NoError(t, err)
	s := string(body)
	assert.True(t, strings.HasPrefix(s, `<?xml version="1.0" encoding="UTF-8"?>`))
	assert.Contains(t, s, `<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">`)
	assert.Contains(t, s, "<loc>https://claw.example/a?b&amp;c</loc>")
	assert.Contains(t, s, "<priority>0.5</priority>")
}
