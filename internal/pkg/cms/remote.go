package cms

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2/log"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/clawsite/clawsite/app/models"
	"github.com/clawsite/clawsite/app/repository"
	"github.com/clawsite/clawsite/internal/pkg/action"
)

const defaultRelatedLimit = 10

// RemoteSource serves published posts of one post type from the database.
type RemoteSource struct {
	postType string
	posts    repository.PostRepository
	tags     repository.TagRepository
	tagIDs   TagIDCache
}

func NewRemoteSource(postType string, posts repository.PostRepository, tags repository.TagRepository, tagIDs TagIDCache) *RemoteSource {
	if tagIDs == nil {
		tagIDs = NopTagIDCache{}
	}
	return &RemoteSource{postType: postType, posts: posts, tags: tags, tagIDs: tagIDs}
}

func (s *RemoteSource) Name() string {
	return "remote"
}

// GetBySlug returns the published post without applying visibility rules.
func (s *RemoteSource) GetBySlug(ctx context.Context, slug, locale string) (*PostBase, error) {
	post, err := s.posts.GetPublishedBySlug(ctx, s.postType, locale, normalizeSlug(slug))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	names, err := s.tagNames(ctx, []string{post.ID})
	if err != nil {
		return nil, err
	}
	return fromModel(post, names[post.ID]), nil
}

// ListAll returns every published post of the locale without content.
func (s *RemoteSource) ListAll(ctx context.Context, locale string) ([]PostBase, error) {
	filter := repository.PostFilter{PostType: s.postType, Locale: locale}
	rows, err := s.posts.ListPublished(ctx, filter, 0, -1)
	if err != nil {
		return nil, err
	}
	return s.withTags(ctx, rows)
}

// GetPublishedBySlug applies the viewer's session to the post's visibility.
func (s *RemoteSource) GetPublishedBySlug(ctx context.Context, slug, locale string, viewer Viewer) action.Result[*PostBase] {
	if strings.TrimSpace(slug) == "" {
		return action.BadRequest[*PostBase]("Slug is required.")
	}
	post, err := s.GetBySlug(ctx, slug, locale)
	if err != nil {
		return s.lookupFailure(err, slug, locale)
	}
	if gated, code := gate(post, viewer); code != "" {
		return gatedResult(gated, code)
	}
	return action.OK(post)
}

// GetPublishedBySlugForISR is the session-less variant used for static
// rendering. Restricted posts succeed without content and carry their code.
func (s *RemoteSource) GetPublishedBySlugForISR(ctx context.Context, slug, locale string) action.Result[*PostBase] {
	if strings.TrimSpace(slug) == "" {
		return action.BadRequest[*PostBase]("Slug is required.")
	}
	post, err := s.GetBySlug(ctx, slug, locale)
	if err != nil {
		return s.lookupFailure(err, slug, locale)
	}
	if code := isrCode(post.Visibility); code != "" {
		return action.OK(withoutContent(post)).WithCode(code)
	}
	return action.OK(post)
}

// GetMetadata returns title, description, image and visibility only.
func (s *RemoteSource) GetMetadata(ctx context.Context, slug, locale string) action.Result[*PostMetadata] {
	if strings.TrimSpace(slug) == "" {
		return action.BadRequest[*PostMetadata]("Slug is required.")
	}
	post, err := s.posts.GetPublishedBySlug(ctx, s.postType, locale, normalizeSlug(slug))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return action.NotFound[*PostMetadata]("Post not found.")
		}
		log.Errorf("[CMS] metadata lookup failed for %s/%s: %v", locale, slug, err)
		return action.Internal[*PostMetadata]()
	}
	return action.OK(fromModel(post, "").Meta())
}

func (s *RemoteSource) lookupFailure(err error, slug, locale string) action.Result[*PostBase] {
	if errors.Is(err, ErrNotFound) {
		return action.NotFound[*PostBase]("Post not found.")
	}
	log.Errorf("[CMS] get %s post by slug %q (%s) failed: %v", s.postType, slug, locale, err)
	return action.Internal[*PostBase]()
}

// ListPublished returns one page of published posts and the total count.
func (s *RemoteSource) ListPublished(ctx context.Context, p ListParams) action.Result[ListResult] {
	p.PageSize = pageSize(p.PageSize)
	if p.PageIndex < 0 {
		p.PageIndex = 0
	}
	filter := repository.PostFilter{PostType: s.postType, Locale: p.Locale, Visibility: p.Visibility}

	if p.TagID != "" {
		ids, err := s.tagPostIDs(ctx, p.TagID, p.Locale)
		if err != nil {
			log.Errorf("[CMS] resolving tag %s failed: %v", p.TagID, err)
			return action.Internal[ListResult]()
		}
		if len(ids) == 0 {
			return action.OK(ListResult{Posts: []PublicPost{}, Count: 0})
		}
		filter.PostIDs = ids
	}

	var (
		count int64
		rows  []models.Post
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		count, err = s.posts.CountPublished(gctx, filter)
		return err
	})
	g.Go(func() error {
		var err error
		rows, err = s.posts.ListPublished(gctx, filter, p.PageIndex*p.PageSize, p.PageSize)
		return err
	})
	if err := g.Wait(); err != nil {
		log.Errorf("[CMS] list published %s posts failed: %v", s.postType, err)
		return action.Internal[ListResult]()
	}

	posts, err := s.withTags(ctx, rows)
	if err != nil {
		log.Errorf("[CMS] loading tags failed: %v", err)
		return action.Internal[ListResult]()
	}
	out := make([]PublicPost, 0, len(posts))
	for i := range posts {
		out = append(out, posts[i].Public())
	}
	return action.OK(ListResult{Posts: out, Count: count})
}

// GetRelated returns published posts sharing the first tag of postID.
func (s *RemoteSource) GetRelated(ctx context.Context, postID, locale string, limit int) action.Result[[]PublicPost] {
	if limit <= 0 {
		limit = defaultRelatedLimit
	}
	tagsByPost, err := s.tags.TagsByPost(ctx, []string{postID})
	if err != nil {
		log.Errorf("[CMS] related posts for %s failed: %v", postID, err)
		return action.Internal[[]PublicPost]()
	}
	tags := tagsByPost[postID]
	if len(tags) == 0 {
		return action.OK([]PublicPost{})
	}

	rows, err := s.posts.ListRelated(ctx, tags[0].ID, s.postType, locale, postID, limit)
	if err != nil {
		log.Errorf("[CMS] related posts for %s failed: %v", postID, err)
		return action.Internal[[]PublicPost]()
	}
	posts, err := s.withTags(ctx, rows)
	if err != nil {
		log.Errorf("[CMS] loading tags of related posts failed: %v", err)
		return action.Internal[[]PublicPost]()
	}
	out := make([]PublicPost, 0, len(posts))
	for i := range posts {
		out = append(out, posts[i].Public())
	}
	return action.OK(out)
}

// PublicSlugs lists the slugs of published public posts of a locale.
func (s *RemoteSource) PublicSlugs(ctx context.Context, locale string) ([]string, error) {
	return s.posts.ListPublishedSlugs(ctx, s.postType, locale, models.VisibilityPublic)
}

// InvalidateTags drops cached post id lists after tag assignments change.
func (s *RemoteSource) InvalidateTags(ctx context.Context, locale string, tagIDs ...string) {
	s.tagIDs.Invalidate(ctx, s.postType, locale, tagIDs...)
}

func (s *RemoteSource) tagPostIDs(ctx context.Context, tagID, locale string) ([]string, error) {
	if ids, ok := s.tagIDs.Get(ctx, s.postType, locale, tagID); ok {
		return ids, nil
	}
	ids, err := s.tags.PostIDs(ctx, tagID)
	if err != nil {
		return nil, err
	}
	s.tagIDs.Set(ctx, s.postType, locale, tagID, ids)
	return ids, nil
}

func (s *RemoteSource) tagNames(ctx context.Context, postIDs []string) (map[string]string, error) {
	byPost, err := s.tags.TagsByPost(ctx, postIDs)
	if err != nil {
		return nil, fmt.Errorf("load tags: %w", err)
	}
	out := make(map[string]string, len(byPost))
	for id, tags := range byPost {
		names := make([]string, 0, len(tags))
		for _, t := range tags {
			names = append(names, t.Name)
		}
		out[id] = strings.Join(names, ", ")
	}
	return out, nil
}

func (s *RemoteSource) withTags(ctx context.Context, rows []models.Post) ([]PostBase, error) {
	ids := make([]string, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.ID)
	}
	names, err := s.tagNames(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]PostBase, 0, len(rows))
	for i := range rows {
		out = append(out, *fromModel(&rows[i], names[rows[i].ID]))
	}
	return out, nil
}
