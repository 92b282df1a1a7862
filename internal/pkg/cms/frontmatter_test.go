package cms

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitFrontmatter(t *testing.T) {
	data, body, err := splitFrontmatter([]byte("---\ntitle: Hello\ntags: [a, b]\n---\n# Body\ntext\n"))
	require.NoError(t, err)
	assert.Equal(t, "Hello", data["title"])
	assert.Equal(t, "# Body\ntext\n", body)

	data, body, err = splitFrontmatter([]byte("no frontmatter"))
	require.NoError(t, err)
	assert.Empty(t, data)
	assert.Equal(t, "no frontmatter", body)

	data, body, err = splitFrontmatter([]byte("---\n---\nbody"))
	require.NoError(t, err)
	assert.Empty(t, data)
	assert.Equal(t, "body", body)

	_, _, err = splitFrontmatter([]byte("---\ntitle: open"))
	assert.Error(t, err)

	_, _, err = splitFrontmatter([]byte("---\n: [broken\n---\n"))
	assert.Error(t, err)
}

func TestSplitFrontmatterCRLF(t *testing.T) {
	data, body, err := splitFrontmatter([]byte("---\r\ntitle: Win\r\n---\r\nline\r\n"))
	require.NoError(t, err)
	assert.Equal(t, "Win", data["title"])
	assert.Equal(t, "line\n", body)
}

func TestToPostBaseDefaults(t *testing.T) {
	now := time.Date(2025, 5, 5, 0, 0, 0, 0, time.UTC)
	p := toPostBase(map[string]interface{}{}, "intro\n# The *Heading*\n", "ja", "guides/setup", now)

	assert.Equal(t, "ja", p.Locale)
	assert.Equal(t, "guides/setup", p.Slug)
	assert.Equal(t, "The Heading", p.Title)
	assert.Equal(t, "published", p.Status)
	assert.Equal(t, "public", p.Visibility)
	assert.True(t, p.PublishedAt.Equal(now))
	assert.False(t, p.IsPinned)
}

func TestToPostBaseFields(t *testing.T) {
	data := map[string]interface{}{
		"id":               "abc",
		"title":            "Explicit",
		"slug":             "/custom/",
		"tags":             []interface{}{"Go", " Web "},
		"publishedAt":      "2024-02-03",
		"status":           "draft",
		"visibility":       "subscribers",
		"isPinned":         true,
		"featuredImageUrl": "https://img/x.png",
	}
	p := toPostBase(data, "body", "en", "file", time.Now())

	assert.Equal(t, "abc", p.ID)
	assert.Equal(t, "Explicit", p.Title)
	assert.Equal(t, "custom", p.Slug)
	assert.Equal(t, "Go, Web", p.Tags)
	assert.Equal(t, time.Date(2024, 2, 3, 0, 0, 0, 0, time.UTC), p.PublishedAt)
	assert.Equal(t, "draft", p.Status)
	assert.Equal(t, "subscribers", p.Visibility)
	assert.True(t, p.IsPinned)
	assert.Equal(t, "https://img/x.png", p.FeaturedImageURL)
	assert.Equal(t, data, p.Metadata)
}

func TestToPostBaseTitleFallsBackToSlug(t *testing.T) {
	p := toPostBase(map[string]interface{}{}, "no heading", "en", "a/b/last-part", time.Now())
	assert.Equal(t, "last-part", p.Title)
}

func TestTimeField(t *testing.T) {
	ts := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	got, ok := timeField(ts)
	assert.True(t, ok)
	assert.Equal(t, ts, got)

	got, ok = timeField("2024-01-01T10:00:00Z")
	assert.True(t, ok)
	assert.True(t, got.Equal(ts))

	_, ok = timeField("yesterday")
	assert.False(t, ok)
}

func TestNormalizeSlug(t *testing.T) {
	for _, in := range []string{"/foo/", "foo/", "foo", " /foo "} {
		assert.Equal(t, "foo", normalizeSlug(in))
	}
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "voice-audio", Slugify("Voice & Audio"))
	assert.Equal(t, "multi-agent-browser", Slugify("  Multi-Agent & Browser "))
	assert.Equal(t, "新手基础", Slugify("新手基础"))
}
