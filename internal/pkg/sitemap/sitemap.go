// Package sitemap builds /sitemap.xml from the static pages and the CMS.
package sitemap

import (
	"context"
	"encoding/xml"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/clawsite/clawsite/app/models"
	"github.com/clawsite/clawsite/internal/pkg/cms"
	"github.com/clawsite/clawsite/internal/pkg/i18n"
)

// StaticPages are localized marketing pages. "" is the home page.
var StaticPages = []string{"", "/what-is-openclaw", "/what-is-moltbot", "/what-is-clawdbot", "/about"}

// NonLocalizedPages exist only once, without a locale prefix.
var NonLocalizedPages = []string{"/privacy-policy", "/terms-of-service"}

type URL struct {
	Loc        string  `xml:"loc"`
	LastMod    string  `xml:"lastmod,omitempty"`
	ChangeFreq string  `xml:"changefreq,omitempty"`
	Priority   float64 `xml:"priority"`
}

type urlSet struct {
	XMLName xml.Name `xml:"urlset"`
	XMLNS   string   `xml:"xmlns,attr"`
	URLs    []URL    `xml:"url"`
}

// Modules is the part of the CMS registry the sitemap reads.
type Modules interface {
	Get(postType string) (*cms.Module, error)
}

type Builder struct {
	modules Modules
	siteURL string
	now     func() time.Time
}

func NewBuilder(modules Modules, siteURL string) *Builder {
	return &Builder{modules: modules, siteURL: strings.TrimRight(siteURL, "/"), now: time.Now}
}

// Build returns every sitemap entry. CMS failures drop the affected
// entries but never fail the whole sitemap.
func (b *Builder) Build(ctx context.Context) []URL {
	var urls []URL
	urls = append(urls, b.staticPages()...)
	urls = append(urls, b.blog(ctx)...)
	urls = append(urls, b.glossary(ctx)...)
	urls = append(urls, b.docs(ctx)...)
	return urls
}

// Render encodes urls as a sitemap protocol document.
func Render(urls []URL) ([]byte, error) {
	body, err := xml.MarshalIndent(urlSet{XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9", URLs: urls}, "", "  ")
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), body...), nil
}

func (b *Builder) url(locale, path string) string {
	return b.siteURL + i18n.LocalizedPath(locale, path)
}

func (b *Builder) stamp(t time.Time) string {
	if t.IsZero() {
		t = b.now()
	}
	return t.UTC().Format(time.RFC3339)
}

func (b *Builder) staticPages() []URL {
	var urls []URL
	now := b.stamp(time.Time{})
	for _, locale := range i18n.UILocales {
		for _, page := range StaticPages {
			priority := 0.8
			if page == "" {
				priority = 1.0
			}
			loc := b.url(locale, page)
			if page == "" && locale == i18n.DefaultLocale {
				loc = b.siteURL
			}
			urls = append(urls, URL{Loc: loc, LastMod: now, ChangeFreq: "daily", Priority: priority})
		}
	}
	for _, page := range NonLocalizedPages {
		urls = append(urls, URL{Loc: b.siteURL + page, LastMod: now, ChangeFreq: "monthly", Priority: 0.5})
	}
	return urls
}

func (b *Builder) blog(ctx context.Context) []URL {
	m, err := b.modules.Get(models.PostTypeBlog)
	if err != nil {
		return nil
	}
	d := newDedup()
	for _, locale := range i18n.UILocales {
		local, err := m.GetLocalList(ctx, locale)
		if err != nil {
			log.Warnf("[Sitemap] local blog list %s failed: %v", locale, err)
		}
		for _, p := range local {
			if p.Status == models.PostStatusDraft {
				continue
			}
			if slug := trimSlug(p.Slug, "blogs/"); slug != "" {
				d.add(URL{Loc: b.url(locale, "/blog/"+slug), LastMod: b.stamp(updatedAt(p)), ChangeFreq: "daily", Priority: 0.7})
			}
		}
	}
	for _, locale := range i18n.UILocales {
		for _, p := range b.publicPosts(ctx, m, locale) {
			if slug := trimSlug(p.Slug, "blogs/"); slug != "" {
				d.add(URL{Loc: b.url(locale, "/blog/"+slug), LastMod: b.stamp(p.PublishedAt), ChangeFreq: "daily", Priority: 0.7})
			}
		}
	}
	return d.urls
}

func (b *Builder) glossary(ctx context.Context) []URL {
	m, err := b.modules.Get(models.PostTypeGlossary)
	if err != nil {
		return nil
	}
	d := newDedup()
	now := b.stamp(time.Time{})
	for _, locale := range i18n.UILocales {
		d.add(URL{Loc: b.url(locale, "/glossary"), LastMod: now, ChangeFreq: "daily", Priority: 0.8})
	}
	for _, locale := range i18n.UILocales {
		for _, p := range b.publicPosts(ctx, m, locale) {
			if slug := trimSlug(p.Slug, "glossary/"); slug != "" {
				d.add(URL{Loc: b.url(locale, "/glossary/"+slug), LastMod: b.stamp(p.PublishedAt), ChangeFreq: "daily", Priority: 0.7})
			}
		}
	}
	return d.urls
}

func (b *Builder) docs(ctx context.Context) []URL {
	m, err := b.modules.Get(models.PostTypeDoc)
	if err != nil {
		return nil
	}
	d := newDedup()
	now := b.stamp(time.Time{})
	for _, locale := range i18n.Locales {
		d.add(URL{Loc: b.url(locale, "/docs"), LastMod: now, ChangeFreq: "weekly", Priority: 0.9})
		if m.Local() == nil {
			continue
		}
		slugs, err := m.Local().ListSlugs(ctx, locale)
		if err != nil {
			log.Warnf("[Sitemap] doc slugs %s failed: %v", locale, err)
			continue
		}
		for _, slug := range slugs {
			if slug = strings.Trim(slug, "/"); slug != "" {
				d.add(URL{Loc: b.url(locale, "/docs/"+slug), LastMod: now, ChangeFreq: "weekly", Priority: 0.8})
			}
		}
	}
	return d.urls
}

func (b *Builder) publicPosts(ctx context.Context, m *cms.Module, locale string) []cms.PublicPost {
	r := m.ListPublished(ctx, locale, cms.ListOptions{PageSize: cms.MaxPageSize, Visibility: models.VisibilityPublic})
	if !r.OK() {
		log.Warnf("[Sitemap] %s list %s failed: %s", m.Config().PostType, locale, r.Message)
		return nil
	}
	return r.Data.Posts
}

// trimSlug strips the leading slash and the legacy section prefix.
func trimSlug(slug, prefix string) string {
	slug = strings.TrimPrefix(slug, "/")
	return strings.TrimPrefix(slug, prefix)
}

func updatedAt(p cms.PostBase) time.Time {
	switch v := p.Metadata["updatedAt"].(type) {
	case time.Time:
		return v
	case string:
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			return t
		}
		if t, err := time.Parse("2006-01-02", v); err == nil {
			return t
		}
	}
	return p.PublishedAt
}

type dedup struct {
	seen map[string]bool
	urls []URL
}

func newDedup() *dedup {
	return &dedup{seen: map[string]bool{}}
}

func (d *dedup) add(u URL) {
	if d.seen[u.Loc] {
		return
	}
	d.seen[u.Loc] = true
	d.urls = append(d.urls, u)
}
