package cms

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clawsite/clawsite/app/models"
)

func newBlogSource(t *testing.T) (*LocalSource, string) {
	root := t.TempDir()
	cfg, _ := ConfigFor(models.PostTypeBlog)
	return NewLocalSource(root, cfg), root
}

func TestLocalListAllSkipsDraftsAndReservedPaths(t *testing.T) {
	src, root := newBlogSource(t)
	writeFile(t, root, "blogs/en/first.md", "---\ntitle: First\npublishedAt: 2024-01-01\n---\nbody")
	writeFile(t, root, "blogs/en/second.mdx", "---\ntitle: Second\npublishedAt: 2024-03-01\n---\nbody")
	writeFile(t, root, "blogs/en/wip.md", "---\ntitle: WIP\nstatus: draft\n---\nbody")
	writeFile(t, root, "blogs/en/_partial.md", "---\ntitle: Partial\n---\n")
	writeFile(t, root, "blogs/en/images/caption.md", "---\ntitle: Caption\n---\n")
	writeFile(t, root, "blogs/en/notes.txt", "not markdown")
	writeFile(t, root, "blogs/en/broken.md", "---\ntitle: [unclosed\n---\n")

	posts, err := src.ListAll(context.Background(), "en")
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, "second", posts[0].Slug)
	assert.Equal(t, "first", posts[1].Slug)
	for _, p := range posts {
		assert.Equal(t, "en", p.Locale)
		assert.Equal(t, models.PostStatusPublished, p.Status)
	}
}

func TestLocalListAllPinnedFirst(t *testing.T) {
	src, root := newBlogSource(t)
	writeFile(t, root, "blogs/en/new.md", "---\npublishedAt: 2025-01-01\n---\n# New")
	writeFile(t, root, "blogs/en/old-pinned.md", "---\npublishedAt: 2020-01-01\nisPinned: true\n---\n# Old")

	posts, err := src.ListAll(context.Background(), "en")
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, "old-pinned", posts[0].Slug)
	assert.Equal(t, "Old", posts[0].Title)
}

func TestLocalListAllMissingLocale(t *testing.T) {
	src, _ := newBlogSource(t)
	posts, err := src.ListAll(context.Background(), "ko")
	require.NoError(t, err)
	assert.Empty(t, posts)
}

func TestLocalGetBySlugNormalizesSlashes(t *testing.T) {
	src, root := newBlogSource(t)
	writeFile(t, root, "blogs/en/hello.md", "---\ntitle: Hello\n---\nHi there")

	for _, slug := range []string{"/hello/", "hello/", "hello"} {
		post, err := src.GetBySlug(context.Background(), slug, "en")
		require.NoError(t, err, slug)
		assert.Equal(t, "Hello", post.Title)
		assert.Equal(t, "Hi there", post.Content)
	}
}

func TestLocalGetBySlugFrontmatterSlugWins(t *testing.T) {
	src, root := newBlogSource(t)
	writeFile(t, root, "blogs/en/2024-file-name.md", "---\nslug: /pretty/\n---\nbody")

	post, err := src.GetBySlug(context.Background(), "pretty", "en")
	require.NoError(t, err)
	assert.Equal(t, "pretty", post.Slug)

	_, err = src.GetBySlug(context.Background(), "2024-file-name", "en")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLocalGetBySlugNeverReturnsDrafts(t *testing.T) {
	src, root := newBlogSource(t)
	writeFile(t, root, "blogs/en/secret.md", "---\nstatus: draft\n---\nbody")

	_, err := src.GetBySlug(context.Background(), "secret", "en")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLocalIndexFilesCollapse(t *testing.T) {
	root := t.TempDir()
	cfg, _ := ConfigFor(models.PostTypeDoc)
	src := NewLocalSource(root, cfg)
	writeFile(t, root, "docs/en/guides/setup/index.md", "# Setup")

	post, err := src.GetBySlug(context.Background(), "guides/setup", "en")
	require.NoError(t, err)
	assert.Equal(t, "Setup", post.Title)
}

func TestLocalFallbackLocale(t *testing.T) {
	root := t.TempDir()
	cfg, _ := ConfigFor(models.PostTypeDoc)
	src := NewLocalSource(root, cfg)
	writeFile(t, root, "docs/en/install.md", "# Install")

	post, err := src.GetBySlug(context.Background(), "install", "ja")
	require.NoError(t, err)
	assert.Equal(t, "en", post.Locale)

	blog, _ := newBlogSource(t)
	_, err = blog.GetBySlug(context.Background(), "install", "ja")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLocalAvailableLocales(t *testing.T) {
	src, root := newBlogSource(t)
	writeFile(t, root, "blogs/en/a.md", "# A")
	writeFile(t, root, "blogs/ja/a.md", "# A")

	assert.Equal(t, []string{"en", "ja"}, src.AvailableLocales(context.Background(), "a", []string{"en", "zh", "ja"}))
}

func TestLocalSourceWithoutDirectory(t *testing.T) {
	cfg, _ := ConfigFor(models.PostTypeGlossary)
	src := NewLocalSource(t.TempDir(), cfg)

	posts, err := src.ListAll(context.Background(), "en")
	require.NoError(t, err)
	assert.Empty(t, posts)
}

func TestSidebar(t *testing.T) {
	root := t.TempDir()
	cfg, _ := ConfigFor(models.PostTypeDoc)
	src := NewLocalSource(root, cfg)
	writeFile(t, root, "docs/en/intro.md", "# Intro")
	writeFile(t, root, "docs/en/getting-started/index.md", "# Overview")
	writeFile(t, root, "docs/en/getting-started/install.md", "# Install")
	writeFile(t, root, "docs/en/api/auth.md", "# Auth")

	sections, err := src.Sidebar(context.Background(), "en")
	require.NoError(t, err)
	require.Len(t, sections, 3)

	assert.Equal(t, "General", sections[0].Title)
	assert.Equal(t, []SidebarItem{{Title: "Intro", Slug: "intro"}}, sections[0].Items)
	assert.Equal(t, "Api", sections[1].Title)
	assert.Equal(t, "Getting Started", sections[2].Title)
	assert.Equal(t, []SidebarItem{
		{Title: "Install", Slug: "getting-started/install"},
		{Title: "Overview", Slug: "getting-started"},
	}, sections[2].Items)
}

func TestChainFirstHitWins(t *testing.T) {
	src, root := newBlogSource(t)
	writeFile(t, root, "blogs/en/shared.md", "# Local copy")
	second, root2 := newBlogSource(t)
	writeFile(t, root2, "blogs/en/shared.md", "# Remote copy")
	writeFile(t, root2, "blogs/en/only-second.md", "# Only second")

	chain := Chain{src, second}
	post, err := chain.GetBySlug(context.Background(), "shared", "en")
	require.NoError(t, err)
	assert.Equal(t, "Local copy", post.Title)

	post, err = chain.GetBySlug(context.Background(), "only-second", "en")
	require.NoError(t, err)
	assert.Equal(t, "Only second", post.Title)

	_, err = chain.GetBySlug(context.Background(), "missing", "en")
	assert.ErrorIs(t, err, ErrNotFound)
}
