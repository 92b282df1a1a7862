package cms

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/clawsite/clawsite/app/models"
)

// LocalSource reads Markdown posts from <root>/<localDirectory>/<locale>.
type LocalSource struct {
	root string
	cfg  PostConfig
	now  func() time.Time
}

func NewLocalSource(contentDir string, cfg PostConfig) *LocalSource {
	return &LocalSource{root: contentDir, cfg: cfg, now: time.Now}
}

func (s *LocalSource) Name() string {
	return "local"
}

func (s *LocalSource) localeDir(locale string) string {
	return filepath.Join(s.root, s.cfg.LocalDirectory, locale)
}

func skipEntry(name string) bool {
	return strings.HasPrefix(name, "_") ||
		strings.HasPrefix(name, ".") ||
		name == "assets" ||
		name == "images"
}

func isMarkdown(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".md" || ext == ".mdx"
}

// fileSlug turns "guides/setup/index.mdx" into "guides/setup".
func fileSlug(rel string) string {
	rel = filepath.ToSlash(rel)
	rel = strings.TrimSuffix(rel, filepath.Ext(rel))
	if rel == "index" {
		return ""
	}
	return strings.TrimSuffix(rel, "/index")
}

type localFile struct {
	path string
	rel  string
}

// files lists the Markdown files of a locale. A missing directory yields none.
func (s *LocalSource) files(locale string) []localFile {
	if !s.cfg.HasLocal() {
		return nil
	}
	dir := s.localeDir(locale)
	var out []localFile
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == dir {
				return filepath.SkipDir
			}
			log.Warnf("[CMS] cannot read %s: %v", path, err)
			return nil
		}
		if path == dir {
			return nil
		}
		if skipEntry(d.Name()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !isMarkdown(d.Name()) {
			return nil
		}
		rel, relErr := filepath.Rel(dir, path)
		if relErr != nil {
			return nil
		}
		out = append(out, localFile{path: path, rel: rel})
		return nil
	})
	if err != nil && !os.IsNotExist(err) {
		log.Warnf("[CMS] walking %s: %v", dir, err)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].rel < out[j].rel })
	return out
}

func (s *LocalSource) read(f localFile, locale string) (*PostBase, error) {
	raw, err := os.ReadFile(f.path)
	if err != nil {
		return nil, err
	}
	data, body, err := splitFrontmatter(raw)
	if err != nil {
		return nil, err
	}
	return toPostBase(data, body, locale, fileSlug(f.rel), s.now()), nil
}

// ListAll returns the published posts of a locale, pinned first, newest first.
// Unreadable files are logged and skipped.
func (s *LocalSource) ListAll(ctx context.Context, locale string) ([]PostBase, error) {
	posts := []PostBase{}
	for _, f := range s.files(locale) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		post, err := s.read(f, locale)
		if err != nil {
			log.Errorf("[CMS] skipping %s: %v", f.path, err)
			continue
		}
		if post.Status != models.PostStatusPublished {
			continue
		}
		posts = append(posts, *post)
	}
	SortPosts(posts)
	return posts, nil
}

// GetBySlug scans the locale for a matching slug and falls back to the
// configured fallback locale. Drafts are never returned.
func (s *LocalSource) GetBySlug(ctx context.Context, slug, locale string) (*PostBase, error) {
	post, err := s.find(ctx, normalizeSlug(slug), locale)
	if err == nil || s.cfg.FallbackLocale == "" || locale == s.cfg.FallbackLocale {
		return post, err
	}
	return s.find(ctx, normalizeSlug(slug), s.cfg.FallbackLocale)
}

func (s *LocalSource) find(ctx context.Context, slug, locale string) (*PostBase, error) {
	for _, f := range s.files(locale) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		post, err := s.read(f, locale)
		if err != nil {
			log.Debugf("[CMS] ignoring %s: %v", f.path, err)
			continue
		}
		if post.Slug != slug {
			continue
		}
		if post.Status == models.PostStatusDraft {
			return nil, ErrNotFound
		}
		return post, nil
	}
	return nil, ErrNotFound
}

// ListSlugs returns the slugs of every listable post of a locale.
func (s *LocalSource) ListSlugs(ctx context.Context, locale string) ([]string, error) {
	posts, err := s.ListAll(ctx, locale)
	if err != nil {
		return nil, err
	}
	slugs := make([]string, 0, len(posts))
	for _, p := range posts {
		slugs = append(slugs, p.Slug)
	}
	return slugs, nil
}

// AvailableLocales lists the locales that have their own copy of slug.
func (s *LocalSource) AvailableLocales(ctx context.Context, slug string, locales []string) []string {
	var out []string
	for _, l := range locales {
		if _, err := s.find(ctx, normalizeSlug(slug), l); err == nil {
			out = append(out, l)
		}
	}
	return out
}

// SortPosts orders pinned posts first, then by publish date descending.
func SortPosts(posts []PostBase) {
	sort.SliceStable(posts, func(i, j int) bool {
		if posts[i].IsPinned != posts[j].IsPinned {
			return posts[i].IsPinned
		}
		return posts[i].PublishedAt.After(posts[j].PublishedAt)
	})
}
