package cms

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2/log"

	"github.com/clawsite/clawsite/app/repository"
	"github.com/clawsite/clawsite/internal/pkg/action"
	"github.com/clawsite/clawsite/internal/pkg/i18n"
)

// Deps are the collaborators every Module shares.
type Deps struct {
	ContentDir string
	Posts      repository.PostRepository
	Tags       repository.TagRepository
	TagIDs     TagIDCache
}

// Module is the content facade of one post type. Single post lookups try
// the local source first and the database second; listings come from the
// database only. Nothing is cached.
type Module struct {
	cfg    PostConfig
	local  *LocalSource
	remote *RemoteSource
	chain  Chain
}

func NewModule(postType string, deps Deps) (*Module, error) {
	cfg, ok := ConfigFor(postType)
	if !ok {
		return nil, fmt.Errorf("unknown post type %q", postType)
	}
	m := &Module{
		cfg:    cfg,
		remote: NewRemoteSource(postType, deps.Posts, deps.Tags, deps.TagIDs),
	}
	if cfg.HasLocal() {
		m.local = NewLocalSource(deps.ContentDir, cfg)
		m.chain = append(m.chain, m.local)
	}
	m.chain = append(m.chain, m.remote)
	return m, nil
}

func (m *Module) Config() PostConfig {
	return m.cfg
}

func (m *Module) Remote() *RemoteSource {
	return m.remote
}

// Local is nil when the post type has no local directory.
func (m *Module) Local() *LocalSource {
	return m.local
}

// GetBySlug resolves a post for viewer. A restricted post comes back without
// content and with ErrorCode set.
func (m *Module) GetBySlug(ctx context.Context, slug, locale string, viewer Viewer) GetBySlugResult {
	if locale == "" {
		locale = i18n.DefaultLocale
	}
	post, err := m.chain.GetBySlug(ctx, slug, locale)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return GetBySlugResult{Error: fmt.Sprintf("%s not found.", m.cfg.PostType)}
		}
		log.Errorf("[CMS] get %s %q (%s) failed: %v", m.cfg.PostType, slug, locale, err)
		return GetBySlugResult{Error: action.InternalMessage}
	}

	gated, code := gate(post, viewer)
	if code != "" {
		return GetBySlugResult{Post: gated, Error: gatedResult(gated, code).Message, ErrorCode: code}
	}
	return GetBySlugResult{Post: post}
}

// GetLocalList returns the published local posts of a locale.
func (m *Module) GetLocalList(ctx context.Context, locale string) ([]PostBase, error) {
	if m.local == nil {
		return []PostBase{}, nil
	}
	return m.local.ListAll(ctx, i18n.Normalize(locale))
}

// ListOptions are the optional filters of GetPublishedList.
type ListOptions struct {
	PageIndex  int
	PageSize   int
	TagID      string
	Visibility string
}

// GetPublishedList pages through the published database posts. Failures
// yield an empty page.
func (m *Module) GetPublishedList(ctx context.Context, locale string, opts ListOptions) ListResult {
	r := m.ListPublished(ctx, locale, opts)
	if !r.OK() {
		return ListResult{Posts: []PublicPost{}, Count: 0}
	}
	return r.Data
}

// ListPublished is GetPublishedList with the failure preserved.
func (m *Module) ListPublished(ctx context.Context, locale string, opts ListOptions) action.Result[ListResult] {
	if locale == "" {
		locale = i18n.DefaultLocale
	}
	return m.remote.ListPublished(ctx, ListParams{
		PostType:   m.cfg.PostType,
		Locale:     locale,
		PageIndex:  opts.PageIndex,
		PageSize:   opts.PageSize,
		TagID:      opts.TagID,
		Visibility: opts.Visibility,
	})
}

// GetPostMetadata returns Open Graph data, local first. Nil when not found.
func (m *Module) GetPostMetadata(ctx context.Context, slug, locale string) *PostMetadata {
	if locale == "" {
		locale = i18n.DefaultLocale
	}
	if m.local != nil {
		if post, err := m.local.GetBySlug(ctx, slug, locale); err == nil {
			return post.Meta()
		}
	}
	r := m.remote.GetMetadata(ctx, slug, locale)
	if !r.OK() {
		return nil
	}
	return r.Data
}

// GetRelated returns posts sharing the first tag of postID.
func (m *Module) GetRelated(ctx context.Context, postID, locale string, limit int) action.Result[[]PublicPost] {
	return m.remote.GetRelated(ctx, postID, i18n.Normalize(locale), limit)
}

// StaticParams enumerates (locale, slug) for every listable local post and
// every public database post. Locales are walked one after another.
func (m *Module) StaticParams(ctx context.Context, locales []string) ([]StaticParam, error) {
	var params []StaticParam
	for _, locale := range locales {
		seen := map[string]bool{}
		add := func(slug string) {
			if seen[slug] {
				return
			}
			seen[slug] = true
			params = append(params, StaticParam{Locale: locale, Slug: slug})
		}

		if m.local != nil {
			slugs, err := m.local.ListSlugs(ctx, locale)
			if err != nil {
				return nil, err
			}
			for _, s := range slugs {
				add(s)
			}
		}

		slugs, err := m.remote.PublicSlugs(ctx, locale)
		if err != nil {
			log.Errorf("[CMS] static params for %s/%s failed: %v", m.cfg.PostType, locale, err)
			continue
		}
		for _, s := range slugs {
			add(s)
		}
	}
	return params, nil
}

// Sidebar returns the navigation of local posts; empty without a local directory.
func (m *Module) Sidebar(ctx context.Context, locale string) ([]SidebarSection, error) {
	if m.local == nil {
		return []SidebarSection{}, nil
	}
	sections, err := m.local.Sidebar(ctx, i18n.Normalize(locale))
	if err == nil && len(sections) == 0 && m.cfg.FallbackLocale != "" {
		return m.local.Sidebar(ctx, m.cfg.FallbackLocale)
	}
	return sections, err
}
