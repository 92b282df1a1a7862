package controllers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/clawsite/clawsite/app/models"
	"github.com/clawsite/clawsite/app/repository"
	"github.com/clawsite/clawsite/internal/pkg/cms"
	"github.com/clawsite/clawsite/internal/pkg/database/dbtest"
	"github.com/clawsite/clawsite/internal/pkg/usercontext"
)

type envelope struct {
	Success    bool            `json:"success"`
	Data       json.RawMessage `json:"data"`
	Error      string          `json:"error"`
	CustomCode string          `json:"customCode"`
}

func decodeEnvelope(t *testing.T, resp *http.Response) envelope {
	t.Helper()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var env envelope
	require.NoError(t, json.Unmarshal(raw, &env), string(raw))
	return env
}

func writeContent(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

type testEnv struct {
	db       *gorm.DB
	repos    *repository.Repositories
	registry *cms.Registry
	root     string
}

func newTestEnv(t *testing.T) *testEnv {
	db := dbtest.Open(t)
	repos := repository.NewRepositories(db)
	root := t.TempDir()
	registry, err := cms.NewRegistry(cms.Deps{ContentDir: root, Posts: repos.Post, Tags: repos.Tag})
	require.NoError(t, err)
	return &testEnv{db: db, repos: repos, registry: registry, root: root}
}

func (e *testEnv) seedPost(t *testing.T, p models.Post) *models.Post {
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
	p.MarkPublished(time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, e.repos.Post.Create(context.Background(), &p))
	return &p
}

// withViewer replaces the session lookup: X-Test-User picks the viewer.
func withViewer(c *fiber.Ctx) error {
	switch c.Get("X-Test-User") {
	case "member":
		usercontext.Set(c, usercontext.UserContext{UserID: "u-member", IsLoggedIn: true})
	case "subscriber":
		usercontext.Set(c, usercontext.UserContext{UserID: "u-sub", IsLoggedIn: true, IsSubscriber: true})
	case "admin":
		usercontext.Set(c, usercontext.UserContext{UserID: "u-admin", IsLoggedIn: true, IsAdmin: true})
	default:
		usercontext.Set(c, usercontext.UserContext{})
	}
	return c.Next()
}
